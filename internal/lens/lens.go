// Package lens provides named traversal/field presets. A Table is built
// from fixed presets, optionally overridden from a YAML file, and passed
// explicitly into the assembler; there is no package-level singleton.
package lens

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/jcfischer/supertag-cli-sub000/internal/store"
)

// ErrUnknownLens is returned for a lens name with no preset or override.
var ErrUnknownLens = errors.New("unknown lens")

// Lens is one traversal/field-inclusion preset.
type Lens struct {
	Name          string           `yaml:"name"`
	MaxDepth      int              `yaml:"max_depth"`
	PriorityTypes []store.EdgeType `yaml:"priority_types"`
	// IncludeFields restricts enrichment to these field names.
	// nil or empty means all fields.
	IncludeFields []string `yaml:"include_fields"`
}

// Table maps lens names to presets.
type Table struct {
	lenses map[string]Lens
}

// Builtin returns the fixed preset table.
func Builtin() *Table {
	presets := []Lens{
		{
			Name:          "default",
			MaxDepth:      2,
			PriorityTypes: store.AllEdgeTypes(),
		},
		{
			Name:          "task",
			MaxDepth:      2,
			PriorityTypes: []store.EdgeType{store.EdgeChild, store.EdgeReference},
			IncludeFields: []string{"status", "due", "priority", "assignee"},
		},
		{
			Name:          "research",
			MaxDepth:      3,
			PriorityTypes: []store.EdgeType{store.EdgeReference, store.EdgeChild},
			IncludeFields: []string{"source", "author", "url", "topic"},
		},
		{
			Name:          "hierarchy",
			MaxDepth:      3,
			PriorityTypes: []store.EdgeType{store.EdgeChild, store.EdgeParent},
		},
	}

	t := &Table{lenses: make(map[string]Lens, len(presets))}
	for _, l := range presets {
		t.lenses[l.Name] = l
	}
	return t
}

// Load merges YAML overrides from path over the builtin presets.
// Presets not named in the file are kept unchanged.
func Load(path string) (*Table, error) {
	t := Builtin()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading lens file: %w", err)
	}

	var overrides []Lens
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("parsing lens file: %w", err)
	}

	for _, l := range overrides {
		if l.Name == "" {
			return nil, fmt.Errorf("lens file %s: entry without a name", path)
		}
		if l.MaxDepth < 1 {
			l.MaxDepth = 1
		}
		if len(l.PriorityTypes) == 0 {
			l.PriorityTypes = store.AllEdgeTypes()
		}
		t.lenses[l.Name] = l
	}
	return t, nil
}

// Get returns the lens for name, or ErrUnknownLens.
func (t *Table) Get(name string) (Lens, error) {
	l, ok := t.lenses[name]
	if !ok {
		return Lens{}, fmt.Errorf("%w: %q (known: %v)", ErrUnknownLens, name, t.Names())
	}
	return l, nil
}

// Names returns all lens names, sorted.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.lenses))
	for name := range t.lenses {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RestrictsFields reports whether the lens limits field enrichment.
func (l Lens) RestrictsFields() bool {
	return len(l.IncludeFields) > 0
}

// AllowsField reports whether fieldName passes the lens allowlist.
func (l Lens) AllowsField(fieldName string) bool {
	if !l.RestrictsFields() {
		return true
	}
	for _, f := range l.IncludeFields {
		if f == fieldName {
			return true
		}
	}
	return false
}
