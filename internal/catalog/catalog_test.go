package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetKnownModels(t *testing.T) {
	c := New()

	tests := []struct {
		id      string
		name    string
		camera  bool
		display bool
	}{
		{"demo-all", "Demo Glasses (All Features)", true, true},
		{"even-g1", "Even Realities G1", false, true},
		{"mentra-live", "Mentra Live", true, false},
		{"mentra-mach1", "Mentra Mach 1", false, true},
		{"vuzix-z100", "Vuzix Z100", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			e, ok := c.Get(tt.id)
			require.True(t, ok)

			assert.Equal(t, tt.name, e.DisplayName)

			sdk := e.Capabilities.ForSDK()
			assert.Equal(t, tt.camera, sdk.Camera)
			assert.Equal(t, tt.display, sdk.Display)
		})
	}
}

func TestResolveFallback(t *testing.T) {
	c := New()

	e := c.Resolve("no-such-model")
	assert.Equal(t, FallbackModel, e.ID)

	e = c.Resolve("mentra-live")
	assert.Equal(t, "mentra-live", e.ID)
}

func TestDisplayNameUnknownEchoesID(t *testing.T) {
	c := New()

	assert.Equal(t, "mystery-frame", c.DisplayName("mystery-frame"))
	assert.Equal(t, "Mentra Live", c.DisplayName("mentra-live"))
}

func TestLoadOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "models.yaml")

	data := `
- id: proto-x
  name: Prototype X
  capabilities:
    textDisplay: true
    camera: true
- id: mentra-live
  name: Mentra Live (Rev B)
  capabilities:
    camera: true
    microphone: true
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	c, err := Load(path)
	require.NoError(t, err)

	e, ok := c.Get("proto-x")
	require.True(t, ok)
	assert.Equal(t, "Prototype X", e.DisplayName)
	assert.True(t, e.Capabilities.Camera)

	// Override replaces the built-in entry
	e, ok = c.Get("mentra-live")
	require.True(t, ok)
	assert.Equal(t, "Mentra Live (Rev B)", e.DisplayName)
	assert.False(t, e.Capabilities.Speaker)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load("/nonexistent/models.yaml")
	assert.Error(t, err)

	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- name: no id here"), 0o644))

	_, err = Load(path)
	assert.Error(t, err)
}

func TestLoadEmptyPath(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)

	_, ok := c.Get("demo-all")
	assert.True(t, ok)
}
