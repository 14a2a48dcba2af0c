package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
)

var literatureSpec = filepath.Join("..", "harness", "testdata", "specs", "literature.cue")

// testOptions points the store at a temp dir and the config at a file that
// does not exist, so tests never read the user's settings.
func testOptions(t *testing.T, format string) *RootOptions {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("DBNAV_CONFIG", filepath.Join(dir, "config.yaml"))
	return &RootOptions{Format: format, StorePath: filepath.Join(dir, "dbnav.db")}
}

func execute(cmd *cobra.Command, args ...string) (string, error) {
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}
