package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dbnav/internal/ir"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "dbnav", cmd.Use)
	assert.Contains(t, cmd.Long, "query graph")
	assert.Equal(t, ir.ToolVersion, cmd.Version)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := [][]string{
		{"compile"}, {"validate"}, {"bootstrap"}, {"query"}, {"run"},
		{"bindings"}, {"bindings", "list"}, {"bindings", "add"}, {"bindings", "rm"},
		{"sessions"}, {"sessions", "rm"},
	}

	for _, path := range commands {
		t.Run(path[len(path)-1], func(t *testing.T) {
			subCmd, _, err := cmd.Find(path)
			require.NoError(t, err, "Command %v should exist", path)
			require.NotNil(t, subCmd)
			assert.Equal(t, path[len(path)-1], subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	assert.NotNil(t, cmd.PersistentFlags().Lookup("config"))
	assert.NotNil(t, cmd.PersistentFlags().Lookup("store"))
}

func TestCompileCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	compileCmd, _, err := cmd.Find([]string{"compile"})
	require.NoError(t, err)

	outputFlag := compileCmd.Flags().Lookup("output")
	require.NotNil(t, outputFlag)
	assert.Equal(t, "o", outputFlag.Shorthand)
}

func TestRunCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	runCmd, _, err := cmd.Find([]string{"run"})
	require.NoError(t, err)

	updateFlag := runCmd.Flags().Lookup("update")
	require.NotNil(t, updateFlag)
	assert.Equal(t, "false", updateFlag.DefValue)
	assert.NotNil(t, runCmd.Flags().Lookup("filter"))
}

func TestQueryCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	queryCmd, _, err := cmd.Find([]string{"query"})
	require.NoError(t, err)

	for _, name := range []string{"spec", "binding", "node", "edge", "merge", "sort", "display", "window", "rwindow", "save", "resume"} {
		assert.NotNil(t, queryCmd.Flags().Lookup(name), "flag --%s", name)
	}
}

func TestBootstrapCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	bootstrapCmd, _, err := cmd.Find([]string{"bootstrap"})
	require.NoError(t, err)

	for _, name := range []string{"name", "dsn", "dialect", "database"} {
		assert.NotNil(t, bootstrapCmd.Flags().Lookup(name), "flag --%s", name)
	}
}

func TestRootRejectsInvalidFormat(t *testing.T) {
	t.Setenv("DBNAV_CONFIG", filepath.Join(t.TempDir(), "config.yaml"))
	cmd := NewRootCommand()
	_, err := execute(cmd, "--format", "xml", "validate", literatureSpec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestRootStoreFlagOverridesConfig(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DBNAV_CONFIG", filepath.Join(dir, "config.yaml"))
	storePath := filepath.Join(dir, "nested", "custom.db")

	cmd := NewRootCommand()
	out, err := execute(cmd, "--store", storePath, "bindings")
	require.NoError(t, err)
	assert.Contains(t, out, "No bindings")
	assert.FileExists(t, storePath)
}
