// Copyright 2025 The CityRes Authors
// SPDX-License-Identifier: Apache-2.0

package resolve

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"sort"
	"time"
)

// OverrideEntry maps a literal search string to fixed candidates.
type OverrideEntry struct {
	Search     string   `json:"search"`
	Candidates []string `json:"candidates"`
}

// Validate checks that the entry can be used.
func (e *OverrideEntry) Validate() error {
	if e.Search == "" {
		return errors.New("override: search must not be empty")
	}

	if len(e.Candidates) == 0 {
		return fmt.Errorf("override %q: at least one candidate is required", e.Search)
	}

	return nil
}

// OverrideTable holds candidates for searches the endpoint is known to answer
// with nothing. Keys are compared byte for byte against the unparsed search,
// encoding accidents included. A table is not modified once built.
type OverrideTable struct {
	entries map[string][]string
}

// Searches the endpoint answers with nothing. Keys are exact search strings.
var defaultOverrideEntries = []OverrideEntry{
	{
		Search:     "Noosa;-26.3765921,153.0343404,-26.5340226,153.1197593",
		Candidates: []string{"http://dbpedia.org/resource/Noosa_Heads,_Queensland"},
	},
}

// NewOverrideTable builds a table from entries, later entries win.
func NewOverrideTable(entries ...OverrideEntry) *OverrideTable {
	t := &OverrideTable{entries: make(map[string][]string, len(entries))}
	for _, e := range entries {
		t.entries[e.Search] = slices.Clone(e.Candidates)
	}

	return t
}

// DefaultOverrides returns the built-in table.
func DefaultOverrides() *OverrideTable {
	return NewOverrideTable(defaultOverrideEntries...)
}

// Lookup returns the candidates registered for raw, or nil. The returned
// slice belongs to the caller.
func (t *OverrideTable) Lookup(raw string) []string {
	if t == nil {
		return nil
	}

	return slices.Clone(t.entries[raw])
}

// Len returns the number of entries.
func (t *OverrideTable) Len() int {
	if t == nil {
		return 0
	}

	return len(t.entries)
}

// Each calls fn for every entry, sorted by search string.
func (t *OverrideTable) Each(fn func(OverrideEntry) error) error {
	if t == nil {
		return nil
	}

	keys := make([]string, 0, len(t.entries))
	for k := range t.entries {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	for _, k := range keys {
		if err := fn(OverrideEntry{Search: k, Candidates: slices.Clone(t.entries[k])}); err != nil {
			return err
		}
	}

	return nil
}

// Merge returns a new table with the entries of t and other, other wins.
func (t *OverrideTable) Merge(other *OverrideTable) *OverrideTable {
	var entries []OverrideEntry

	collect := func(e OverrideEntry) error {
		entries = append(entries, e)

		return nil
	}

	_ = t.Each(collect)
	_ = other.Each(collect)

	return NewOverrideTable(entries...)
}

// OverrideFile is the JSON format of an overrides file.
type OverrideFile struct {
	Version     string          `json:"version"`
	LastUpdated time.Time       `json:"last_updated"`
	Overrides   []OverrideEntry `json:"overrides"`
}

// ReadOverrides reads a table in the OverrideFile format.
func ReadOverrides(r io.Reader) (*OverrideTable, error) {
	var f OverrideFile
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	for i := range f.Overrides {
		if err := f.Overrides[i].Validate(); err != nil {
			return nil, err
		}
	}

	return NewOverrideTable(f.Overrides...), nil
}

// LoadOverrides reads a table from a JSON file.
func LoadOverrides(filepath string) (*OverrideTable, error) {
	f, err := os.Open(filepath) // #nosec G304 - filepath is provided by the operator
	if err != nil {
		return nil, fmt.Errorf("reading overrides: %w", err)
	}
	defer f.Close()

	t, err := ReadOverrides(f)
	if err != nil {
		return nil, fmt.Errorf("reading overrides %s: %w", filepath, err)
	}

	return t, nil
}

// WriteJSON writes the table in the format ReadOverrides accepts.
func (t *OverrideTable) WriteJSON(w io.Writer) error {
	f := OverrideFile{
		Version:     "1.0",
		LastUpdated: time.Now().UTC(),
		Overrides:   make([]OverrideEntry, 0, t.Len()),
	}

	_ = t.Each(func(e OverrideEntry) error {
		f.Overrides = append(f.Overrides, e)

		return nil
	})

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)

	return enc.Encode(f)
}
