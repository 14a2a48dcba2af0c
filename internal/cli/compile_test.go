package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileValidSpec(t *testing.T) {
	cmd := NewCompileCommand(testOptions(t, "text"))
	out, err := execute(cmd, literatureSpec)
	require.NoError(t, err)

	assert.Contains(t, out, "✓ Compiled 2 sort(s), 6 attribute(s), 7 object(s)")
	assert.Contains(t, out, "Author: {0}.name")
	assert.Contains(t, out, "wrote(Author, Book): derived, prefix")
	assert.Contains(t, out, "published(Book): column, date_interval")
}

func TestCompileValidSpecJSON(t *testing.T) {
	cmd := NewCompileCommand(testOptions(t, "json"))
	out, err := execute(cmd, literatureSpec)
	require.NoError(t, err)

	var resp struct {
		Status string            `json:"status"`
		Data   CompilationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Len(t, resp.Data.Sorts, 2)
	assert.Len(t, resp.Data.Attributes, 6)
	assert.True(t, resp.Data.HasData)
	assert.Equal(t, 7, resp.Data.Objects)
	assert.Equal(t, "author_id", resp.Data.Attributes[4].ID)
	assert.Equal(t, "foreign_key", resp.Data.Attributes[4].Kind)
}

func TestCompileOutputToFile(t *testing.T) {
	outputFile := filepath.Join(t.TempDir(), "compiled.json")

	cmd := NewCompileCommand(testOptions(t, "text"))
	out, err := execute(cmd, literatureSpec, "--output", outputFile)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote canonical records to")

	data, err := os.ReadFile(outputFile)
	require.NoError(t, err)

	var records map[string]any
	require.NoError(t, json.Unmarshal(data, &records))
	assert.Contains(t, records, "model")
	assert.Contains(t, records, "family")
}

func TestCompileSchemaOnlySpec(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shop.cue")
	require.NoError(t, os.WriteFile(path, []byte(`
schema: {
	sorts: Customer: print: "{0}.name"
	attributes: name: {sort: "Customer", datatype: "varchar(32)", scale: "prefix"}
}
`), 0644))

	cmd := NewCompileCommand(testOptions(t, "text"))
	out, err := execute(cmd, path)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Compiled 1 sort(s), 1 attribute(s)\n")
	assert.NotContains(t, out, "object(s)")
}

func TestCompileMissingPath(t *testing.T) {
	cmd := NewCompileCommand(testOptions(t, "text"))
	out, err := execute(cmd, filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, ErrCodeNotFound)
}

func TestCompileEmptyDirectory(t *testing.T) {
	cmd := NewCompileCommand(testOptions(t, "json"))
	out, err := execute(cmd, t.TempDir())
	require.Error(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, ErrCodeNoFiles, resp.Error.Code)
}

func TestCompileUnknownSort(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.cue")
	require.NoError(t, os.WriteFile(path, []byte(`
schema: {
	sorts: Customer: print: "{0}.name"
	attributes: total: {sort: "Order", datatype: "int"}
}
`), 0644))

	cmd := NewCompileCommand(testOptions(t, "text"))
	out, err := execute(cmd, path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, ErrCodeSchema)
}
