// Package pairing produces the rotating 6-digit shared secret that
// authenticates SDK applications to the simulator.
package pairing

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
)

// Generator produces fresh pairing codes. A new code invalidates the
// previous one the instant it is produced; no uniqueness across calls
// is required.
type Generator interface {
	Generate() string
}

// Func adapts a plain function to Generator, mainly for tests
type Func func() string

// Generate implements Generator
func (f Func) Generate() string { return f() }

const (
	codeMin  = 100000
	codeSpan = 900000
)

type cryptoGenerator struct {
	entropy io.Reader
}

// New returns a Generator drawing uniformly from [100000, 999999]
// using crypto/rand.
func New() Generator {
	return &cryptoGenerator{entropy: rand.Reader}
}

// NewWithEntropy returns a Generator reading from a custom entropy
// source. Useful for deterministic tests.
func NewWithEntropy(entropy io.Reader) Generator {
	return &cryptoGenerator{entropy: entropy}
}

func (g *cryptoGenerator) Generate() string {
	n, err := rand.Int(g.entropy, big.NewInt(codeSpan))
	if err != nil {
		// crypto/rand never fails on supported platforms; a broken
		// entropy source is unrecoverable for a secret generator
		panic(fmt.Sprintf("pairing: entropy read failed: %v", err))
	}
	return fmt.Sprintf("%06d", codeMin+n.Int64())
}
