package compiler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dbnav/internal/schema"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"file", "testdata/literature.cue"},
		{"directory", "testdata"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := Load(tt.path)
			require.NoError(t, err)
			assert.Equal(t, []schema.Sort{"Author", "Book"}, spec.Model.Sorts())
			require.NotNil(t, spec.Family)
		})
	}
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.cue"))
	assert.True(t, os.IsNotExist(err))
}

func TestLoad_InvalidCUE(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.cue"), []byte("schema: {\n\tsorts: A: print: 1 & \"x\"\n}\n"), 0644))

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestFindFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0755))
	for _, name := range []string{"a.cue", "sub/b.cue", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(""), 0644))
	}

	files, err := FindFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.cue"), filepath.Join(dir, "sub", "b.cue")}, files)
}
