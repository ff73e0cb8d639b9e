// Package catalog maps preconfigured index names to the enrichment
// variables they are computed from. The built-in entries are embedded
// at build time; a user catalog file can add to or override them.
package catalog

import (
	_ "embed"
	"fmt"
	"sort"

	"github.com/BurntSushi/toml"
)

//go:embed catalog.toml
var builtinTOML []byte

// Entry is one preconfigured index: an ordered list of enrichment
// variable names plus a human-readable description.
type Entry struct {
	Description string   `toml:"description"`
	Variables   []string `toml:"variables"`
}

// Catalog holds the preconfigured index entries, keyed by index name.
type Catalog struct {
	Indices map[string]Entry `toml:"indices"`
}

// Load returns the built-in catalog. When path is non-empty the file at
// path is decoded on top of the built-ins, so user entries with the
// same name replace them.
func Load(path string) (*Catalog, error) {
	var c Catalog
	if err := toml.Unmarshal(builtinTOML, &c); err != nil {
		return nil, fmt.Errorf("decoding built-in catalog: %w", err)
	}

	if path != "" {
		var user Catalog
		if _, err := toml.DecodeFile(path, &user); err != nil {
			return nil, fmt.Errorf("decoding catalog file %s: %w", path, err)
		}
		for name, entry := range user.Indices {
			c.Indices[name] = entry
		}
	}

	for name, entry := range c.Indices {
		if len(entry.Variables) == 0 {
			return nil, fmt.Errorf("catalog index %q has no variables", name)
		}
	}
	return &c, nil
}

// Lookup returns the entry for the named index.
func (c *Catalog) Lookup(name string) (Entry, error) {
	entry, ok := c.Indices[name]
	if !ok {
		return Entry{}, fmt.Errorf("unknown index %q: available indices are %v", name, c.Names())
	}
	return entry, nil
}

// Names returns the sorted index names.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.Indices))
	for name := range c.Indices {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
