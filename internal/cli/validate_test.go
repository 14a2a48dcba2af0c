package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dbnav/internal/compiler"
)

func writeSpec(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "spec.cue")
	require.NoError(t, os.WriteFile(path, []byte(src), 0644))
	return path
}

func TestValidateValidSpec(t *testing.T) {
	cmd := NewValidateCommand(testOptions(t, "text"))
	out, err := execute(cmd, literatureSpec)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Spec valid")
}

func TestValidateValidSpecJSON(t *testing.T) {
	cmd := NewValidateCommand(testOptions(t, "json"))
	out, err := execute(cmd, literatureSpec)
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
}

func TestValidateReportsFindings(t *testing.T) {
	path := writeSpec(t, `
schema: {
	sorts: Customer: print: "'customer'"
	attributes: name: {sort: "Customer", datatype: "varchar(32)"}
}
`)

	cmd := NewValidateCommand(testOptions(t, "json"))
	out, err := execute(cmd, path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.False(t, resp.Data.Valid)

	codes := make([]string, len(resp.Data.Errors))
	for i, e := range resp.Data.Errors {
		codes[i] = e.Code
	}
	assert.ElementsMatch(t, []string{compiler.ErrPrintNoPlaceholder, compiler.ErrUnscaledAttribute}, codes)
}

func TestValidateTextFindings(t *testing.T) {
	path := writeSpec(t, `
schema: {
	sorts: Customer: print: "{0}.name"
	attributes: name: {sort: "Customer", datatype: "varchar(32)"}
}
`)

	cmd := NewValidateCommand(testOptions(t, "text"))
	out, err := execute(cmd, path)
	require.Error(t, err)
	assert.Contains(t, out, "✗ Validation failed")
	assert.Contains(t, out, compiler.ErrUnscaledAttribute+": attributes.name.scale")
}

func TestValidateCompileFailureIsValidationFailure(t *testing.T) {
	path := writeSpec(t, `
schema: {
	sorts: Customer: print: "{0}.name"
	attributes: total: {sort: "Order", datatype: "int"}
}
`)

	cmd := NewValidateCommand(testOptions(t, "text"))
	out, err := execute(cmd, path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, ErrCodeSchema)
}

func TestValidateMissingPath(t *testing.T) {
	cmd := NewValidateCommand(testOptions(t, "text"))
	_, err := execute(cmd, filepath.Join(t.TempDir(), "nope.cue"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
