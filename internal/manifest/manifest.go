// Package manifest reads the bootstrap.json library manifest.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/mcdonaldj/enginesetup/internal/ports"
)

// ErrManifestNotFound is returned when the manifest file does not exist.
var ErrManifestNotFound = errors.New("manifest: bootstrap file not found")

// Source describes where the bootstrap tool fetches a library from.
type Source struct {
	Type     string `json:"type"`
	URL      string `json:"url"`
	Revision string `json:"revision,omitempty"`
}

// Library is one entry of the manifest.
type Library struct {
	Name   string `json:"name"`
	Source Source `json:"source"`
}

type Manifest struct {
	Path      string
	Libraries []Library
}

// Load reads and parses the manifest at path.
func Load(fs ports.FileSystem, path string) (*Manifest, error) {
	data, err := fs.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrManifestNotFound, path)
		}
		return nil, err
	}

	var libs []Library
	if err := json.Unmarshal(data, &libs); err != nil {
		return nil, fmt.Errorf("manifest: parse %s: %w", path, err)
	}

	return &Manifest{Path: path, Libraries: libs}, nil
}

// Names returns library names sorted alphabetically.
func (m *Manifest) Names() []string {
	names := make([]string, 0, len(m.Libraries))
	for _, lib := range m.Libraries {
		names = append(names, lib.Name)
	}
	sort.Strings(names)
	return names
}

// Find returns the library with the given name, or nil.
func (m *Manifest) Find(name string) *Library {
	for i := range m.Libraries {
		if m.Libraries[i].Name == name {
			return &m.Libraries[i]
		}
	}
	return nil
}

// CountByType returns how many libraries use each source type.
func (m *Manifest) CountByType() map[string]int {
	counts := make(map[string]int)
	for _, lib := range m.Libraries {
		counts[lib.Source.Type]++
	}
	return counts
}
