package lens

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcfischer/supertag-cli-sub000/internal/store"
)

func TestBuiltin_KnownPresets(t *testing.T) {
	table := Builtin()

	assert.Equal(t, []string{"default", "hierarchy", "research", "task"}, table.Names())

	def, err := table.Get("default")
	require.NoError(t, err)
	assert.Equal(t, 2, def.MaxDepth)
	assert.Len(t, def.PriorityTypes, 4)
	assert.False(t, def.RestrictsFields())

	task, err := table.Get("task")
	require.NoError(t, err)
	assert.True(t, task.RestrictsFields())
	assert.True(t, task.AllowsField("status"))
	assert.False(t, task.AllowsField("url"))
}

func TestGet_Unknown(t *testing.T) {
	_, err := Builtin().Get("nope")
	assert.ErrorIs(t, err, ErrUnknownLens)
}

func TestAllowsField_Unrestricted(t *testing.T) {
	l := Lens{Name: "open"}
	assert.True(t, l.AllowsField("anything"))
}

func TestLoad_MergesOverBuiltin(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lenses.yaml")
	content := `
- name: task
  max_depth: 4
  priority_types: [child]
  include_fields: [status]
- name: custom
  max_depth: 1
  priority_types: [reference]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	table, err := Load(path)
	require.NoError(t, err)

	// Overridden preset
	task, err := table.Get("task")
	require.NoError(t, err)
	assert.Equal(t, 4, task.MaxDepth)
	assert.Equal(t, []store.EdgeType{store.EdgeChild}, task.PriorityTypes)

	// New lens
	custom, err := table.Get("custom")
	require.NoError(t, err)
	assert.Equal(t, 1, custom.MaxDepth)

	// Untouched preset survives
	def, err := table.Get("default")
	require.NoError(t, err)
	assert.Equal(t, 2, def.MaxDepth)
}

func TestLoad_DefaultsForSparseEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lenses.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- name: bare\n"), 0o644))

	table, err := Load(path)
	require.NoError(t, err)

	bare, err := table.Get("bare")
	require.NoError(t, err)
	assert.Equal(t, 1, bare.MaxDepth)
	assert.Len(t, bare.PriorityTypes, 4)
}

func TestLoad_RejectsNamelessEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lenses.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- max_depth: 3\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
