// Package catalog holds the static hardware capability table: glasses
// model id to display name and feature flags.
package catalog

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/glasskit/broker/internal/types"
)

// DefaultModel is the model selected at process start
const DefaultModel = "demo-all"

// FallbackModel resolves capabilities when the selected model id is
// not in the catalog. The original broker used even-g1 here while
// echoing the raw id for display naming; we keep even-g1 as the single
// capability fallback.
const FallbackModel = "even-g1"

// Entry describes one glasses model
type Entry struct {
	ID           string             `yaml:"id"`
	DisplayName  string             `yaml:"name"`
	Capabilities types.Capabilities `yaml:"capabilities"`
}

// Catalog is an immutable model id lookup, loaded once at startup
type Catalog struct {
	entries map[string]Entry
}

func builtin() map[string]Entry {
	return map[string]Entry{
		"demo-all": {
			ID:          "demo-all",
			DisplayName: "Demo Glasses (All Features)",
			Capabilities: types.Capabilities{
				TextDisplay:  true,
				ImageDisplay: true,
				Camera:       true,
				Microphone:   true,
				Speaker:      true,
			},
		},
		"even-g1": {
			ID:          "even-g1",
			DisplayName: "Even Realities G1",
			Capabilities: types.Capabilities{
				TextDisplay:  true,
				ImageDisplay: true,
				Microphone:   true,
				Speaker:      true,
			},
		},
		"mentra-live": {
			ID:          "mentra-live",
			DisplayName: "Mentra Live",
			Capabilities: types.Capabilities{
				Camera:     true,
				Microphone: true,
				Speaker:    true,
			},
		},
		"mentra-mach1": {
			ID:          "mentra-mach1",
			DisplayName: "Mentra Mach 1",
			Capabilities: types.Capabilities{
				TextDisplay: true,
				// Microphone via phone, not the frame
			},
		},
		"vuzix-z100": {
			ID:          "vuzix-z100",
			DisplayName: "Vuzix Z100",
			Capabilities: types.Capabilities{
				TextDisplay: true,
				// Microphone via phone, not the frame
			},
		},
	}
}

// New returns the built-in catalog
func New() *Catalog {
	return &Catalog{entries: builtin()}
}

// Load returns the built-in catalog merged with entries from a YAML
// override file. File entries replace built-in ones with the same id.
// An empty path returns the built-in catalog unchanged.
func Load(path string) (*Catalog, error) {
	c := New()
	if path == "" {
		return c, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var overrides []Entry
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file: %w", err)
	}

	for _, e := range overrides {
		if e.ID == "" {
			return nil, fmt.Errorf("catalog entry missing id in %s", path)
		}
		c.entries[e.ID] = e
	}
	return c, nil
}

// Get returns the entry for a model id
func (c *Catalog) Get(modelID string) (Entry, bool) {
	e, ok := c.entries[modelID]
	return e, ok
}

// Resolve returns the entry for a model id, falling back to
// FallbackModel for unknown ids
func (c *Catalog) Resolve(modelID string) Entry {
	if e, ok := c.entries[modelID]; ok {
		return e
	}
	return c.entries[FallbackModel]
}

// DisplayName returns the human name for a model id, or the raw id
// when unknown. Naming deliberately does not use FallbackModel: an
// unknown id in a log should read as itself, not as even-g1. See the
// discrepancy note on FallbackModel.
func (c *Catalog) DisplayName(modelID string) string {
	if e, ok := c.entries[modelID]; ok {
		return e.DisplayName
	}
	return modelID
}

// Models returns all known model ids
func (c *Catalog) Models() []string {
	ids := make([]string, 0, len(c.entries))
	for id := range c.entries {
		ids = append(ids, id)
	}
	return ids
}
