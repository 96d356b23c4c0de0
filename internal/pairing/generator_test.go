package pairing

import (
	"math/rand"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRange(t *testing.T) {
	gen := New()

	for i := 0; i < 500; i++ {
		code := gen.Generate()
		require.Len(t, code, 6)

		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 100000)
		assert.LessOrEqual(t, n, 999999)
	}
}

func TestGenerateDeterministic(t *testing.T) {
	a := NewWithEntropy(rand.New(rand.NewSource(7)))
	b := NewWithEntropy(rand.New(rand.NewSource(7)))

	for i := 0; i < 10; i++ {
		assert.Equal(t, a.Generate(), b.Generate())
	}
}

func TestFunc(t *testing.T) {
	gen := Func(func() string { return "123456" })

	assert.Equal(t, "123456", gen.Generate())
}
