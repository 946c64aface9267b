package catalog

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// GuessRule maps a source-name substring to a generic fallback asset. Rules
// are applied in declaration order by the best-guess resolver tier.
type GuessRule struct {
	Contains string `yaml:"contains"`
	Target   string `yaml:"target"`
}

// SkipRule marks a source type with no destination equivalent (terrain and
// water features). Skipping is a deliberate outcome, not a failure.
type SkipRule struct {
	Type string `yaml:"type"`
	Note string `yaml:"note"`
}

// MappingTable is the curated source-to-target knowledge for the resolver:
// exact mappings, per-map overrides, semantic category hints, best-guess
// keyword rules, and the intentional skip list.
type MappingTable struct {
	// Exact maps a source type directly to a target asset ID.
	Exact map[string]string `yaml:"exact"`
	// Overrides maps target map name to alternate source-to-target mappings
	// declared specifically for that map.
	Overrides map[string]map[string]string `yaml:"overrides"`
	// Categories assigns a semantic category to source types whose names do
	// not make it obvious.
	Categories map[string]string `yaml:"categories"`
	// Guesses are ordered substring rules for the last-resort tier.
	Guesses []GuessRule `yaml:"guesses"`
	// Skips lists source types converted to nothing, with a reason.
	Skips []SkipRule `yaml:"skips"`

	indexOnce   sync.Once
	exactIdx    map[string]string
	overrideIdx map[string]map[string]string
	categoryIdx map[string]string
	skipIdx     map[string]string
}

// index builds the lowercased lookup maps. Resolution queries the table
// once per object, so lookups go through these instead of scanning the
// declared keys.
func (m *MappingTable) index() {
	m.indexOnce.Do(func() {
		m.exactIdx = lowerKeys(m.Exact)
		m.categoryIdx = lowerKeys(m.Categories)
		m.overrideIdx = make(map[string]map[string]string, len(m.Overrides))
		for mapName, table := range m.Overrides {
			m.overrideIdx[strings.ToLower(mapName)] = lowerKeys(table)
		}
		m.skipIdx = make(map[string]string, len(m.Skips))
		for _, s := range m.Skips {
			key := strings.ToLower(s.Type)
			if _, exists := m.skipIdx[key]; exists {
				continue
			}
			note := s.Note
			if note == "" {
				note = "terrain/water feature with no destination equivalent"
			}
			m.skipIdx[key] = note
		}
	})
}

func lowerKeys(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[strings.ToLower(k)] = v
	}
	return out
}

// LoadMappings reads the YAML mapping table at path. A missing path returns
// an empty table so a run can proceed on heuristics alone.
//
// Postcondition: returns a non-nil MappingTable or a non-nil error for an
// unreadable or unparseable existing file.
func LoadMappings(path string) (*MappingTable, error) {
	if path == "" {
		return &MappingTable{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &MappingTable{}, nil
		}
		return nil, fmt.Errorf("reading mapping file %s: %w", path, err)
	}
	var table MappingTable
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("parsing mapping file %s: %w", path, err)
	}
	return &table, nil
}

// ExactFor returns the direct mapping for a source type, if declared.
// Lookups are case-insensitive.
func (m *MappingTable) ExactFor(sourceType string) (string, bool) {
	m.index()
	target, ok := m.exactIdx[strings.ToLower(sourceType)]
	return target, ok
}

// OverrideFor returns the map-specific mapping for a source type, if one is
// declared for the given target map.
func (m *MappingTable) OverrideFor(sourceType, targetMap string) (string, bool) {
	m.index()
	table, ok := m.overrideIdx[strings.ToLower(targetMap)]
	if !ok {
		return "", false
	}
	target, ok := table[strings.ToLower(sourceType)]
	return target, ok
}

// CategoryFor returns the declared semantic category for a source type.
func (m *MappingTable) CategoryFor(sourceType string) (string, bool) {
	m.index()
	category, ok := m.categoryIdx[strings.ToLower(sourceType)]
	return category, ok
}

// SkipNote reports whether the source type is on the intentional skip list,
// and if so why.
func (m *MappingTable) SkipNote(sourceType string) (string, bool) {
	m.index()
	note, ok := m.skipIdx[strings.ToLower(sourceType)]
	return note, ok
}
