// Package preset stores effect chain routings in JSON files.
package preset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"pipelined.dev/fxchain"
)

// Bank is the JSON schema of a preset bank: routings mapped to preset
// names.
type Bank struct {
	Track   string                     `json:"track,omitempty"`
	Presets map[string]fxchain.Routing `json:"presets"`
}

// Load reads a single routing from a JSON file and validates it.
func Load(path string) (fxchain.Routing, error) {
	var r fxchain.Routing
	if err := readJSON(path, &r); err != nil {
		return fxchain.Routing{}, err
	}
	if err := r.Validate(); err != nil {
		return fxchain.Routing{}, fmt.Errorf("preset %v: %w", path, err)
	}
	return r, nil
}

// Save writes a single routing to a JSON file.
func Save(path string, r fxchain.Routing) error {
	if err := r.Validate(); err != nil {
		return fmt.Errorf("preset %v: %w", path, err)
	}
	return writeJSON(path, r)
}

// LoadBank reads a preset bank and stores every preset in the track.
// Nothing is stored if any preset is invalid.
func LoadBank(path string, t *fxchain.Track) error {
	var b Bank
	if err := readJSON(path, &b); err != nil {
		return err
	}
	for name, r := range b.Presets {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("preset bank %v, preset %q: %w", path, name, err)
		}
	}
	for name, r := range b.Presets {
		t.SetPreset(name, r)
	}
	return nil
}

// SaveBank writes all presets of the track to a JSON file.
func SaveBank(path string, t *fxchain.Track) error {
	b := Bank{
		Track:   t.ID(),
		Presets: make(map[string]fxchain.Routing),
	}
	for _, name := range t.Presets() {
		if r, ok := t.Preset(name); ok {
			b.Presets[name] = r
		}
	}
	return writeJSON(path, b)
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("preset %v: %w", path, err)
	}
	return nil
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
