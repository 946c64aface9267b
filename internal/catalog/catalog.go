// Package catalog loads the target asset catalog and the source-to-target
// mapping tables. Both are read once per run and immutable afterwards.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Entry is one usable asset identifier in the target game. An empty
// MapRestrictions list means the asset is available on every map.
type Entry struct {
	ID              string   `json:"id"`
	Category        string   `json:"category"`
	MapRestrictions []string `json:"map_restrictions,omitempty"`
}

// AllowsMap reports whether this entry may be used on the given target map.
func (e Entry) AllowsMap(m string) bool {
	if len(e.MapRestrictions) == 0 {
		return true
	}
	for _, allowed := range e.MapRestrictions {
		if strings.EqualFold(allowed, m) {
			return true
		}
	}
	return false
}

// Catalog is the full target asset enumeration, indexed by ID and category
// while preserving declaration order for deterministic tie-breaks.
type Catalog struct {
	entries    []Entry
	byID       map[string]int
	byCategory map[string][]int
}

// New builds a Catalog from entries in declaration order. A duplicate ID
// keeps its first declaration.
func New(entries []Entry) *Catalog {
	c := &Catalog{
		entries:    entries,
		byID:       make(map[string]int, len(entries)),
		byCategory: make(map[string][]int),
	}
	for i, e := range entries {
		key := strings.ToLower(e.ID)
		if _, exists := c.byID[key]; !exists {
			c.byID[key] = i
		}
		cat := strings.ToLower(e.Category)
		c.byCategory[cat] = append(c.byCategory[cat], i)
	}
	return c
}

// catalogFile is the on-disk JSON shape.
type catalogFile struct {
	Assets []Entry `json:"assets"`
}

// Load reads the JSON asset catalog at path.
//
// Precondition: path must be a readable JSON file.
// Postcondition: returns a non-empty Catalog or a non-nil error. A parse
// failure here is fatal for the run.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file %s: %w", path, err)
	}
	var file catalogFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing catalog file %s: %w", path, err)
	}
	if len(file.Assets) == 0 {
		return nil, fmt.Errorf("catalog file %s declares no assets", path)
	}
	return New(file.Assets), nil
}

// Entries returns all entries in declaration order. Callers must not mutate
// the returned slice.
func (c *Catalog) Entries() []Entry {
	return c.entries
}

// ByID looks up an entry by identifier, case-insensitively.
func (c *Catalog) ByID(id string) (Entry, bool) {
	i, ok := c.byID[strings.ToLower(id)]
	if !ok {
		return Entry{}, false
	}
	return c.entries[i], true
}

// ByCategory returns all entries of the given category in declaration order.
func (c *Catalog) ByCategory(category string) []Entry {
	idxs := c.byCategory[strings.ToLower(category)]
	out := make([]Entry, 0, len(idxs))
	for _, i := range idxs {
		out = append(out, c.entries[i])
	}
	return out
}

// Len returns the number of catalog entries.
func (c *Catalog) Len() int { return len(c.entries) }

// MapContext identifies the destination of a conversion run. It is
// immutable and passed explicitly to every stage that needs map-specific
// behavior.
type MapContext struct {
	TargetMap string
	Era       string
	MinX      float64
	MaxX      float64
	MinZ      float64
	MaxZ      float64
}
