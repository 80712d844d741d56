// Package brokermeta loads the operator-curated annotation map: brokers,
// minimum-allocation note, and free-text note per company.
package brokermeta

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/seojoon/ipofeed/internal/textutil"
)

// Entry is one company's curated annotation. Absent companies get the zero
// value, so every feed item always carries the three fields.
type Entry struct {
	Brokers  string `yaml:"brokers"`
	EqualMin string `yaml:"equalMin"`
	Note     string `yaml:"note"`
}

// Map is keyed by normalized company name.
type Map map[string]Entry

// Load reads the YAML annotation map. An empty path or a missing file is not
// an error; it just means no annotations this run.
func Load(path string) (Map, error) {
	if path == "" {
		return Map{}, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Map{}, nil
	}
	if err != nil {
		return nil, err
	}
	var raw map[string]Entry
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse broker meta %s: %w", path, err)
	}
	m := make(Map, len(raw))
	for name, entry := range raw {
		m[textutil.Normalize(name)] = entry
	}
	return m, nil
}

// Get returns the entry for a company, zero-valued when absent.
func (m Map) Get(name string) Entry {
	return m[textutil.Normalize(name)]
}
