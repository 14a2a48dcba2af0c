package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/dbnav/internal/store"
)

// NewSessionsCommand creates the sessions command group.
func NewSessionsCommand(rootOpts *RootOptions) *cobra.Command {
	var binding string

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List and remove saved sessions",
		Long: `List saved navigation sessions, optionally of one binding.

Sessions are saved with "dbnav query --save" and resumed with
"dbnav query --resume".`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSessionsList(rootOpts, binding, cmd)
		},
	}
	cmd.Flags().StringVar(&binding, "binding", "", "only list sessions of this binding")

	cmd.AddCommand(&cobra.Command{
		Use:           "rm <id>",
		Short:         "Remove a saved session",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSessionsRemove(rootOpts, args[0], cmd)
		},
	})

	return cmd
}

func runSessionsList(opts *RootOptions, binding string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	st, err := opts.openStore(formatter)
	if err != nil {
		return err
	}
	defer st.Close()

	infos, err := st.ListSessions(cmd.Context(), binding)
	if err != nil {
		return outputCommandError(formatter, ErrCodeStore, err.Error())
	}
	if formatter.Format == "json" {
		return formatter.Success(infos)
	}
	if len(infos) == 0 {
		fmt.Fprintln(formatter.Writer, "No sessions")
		return nil
	}

	rows := make([][]string, len(infos))
	for i, s := range infos {
		rows[i] = []string{s.ID, s.Binding, shortHash(s.GraphHash), s.UpdatedAt.Format("2006-01-02 15:04:05")}
	}
	return RenderTable(formatter.Writer, []string{"id", "binding", "graph", "updated"}, rows)
}

func runSessionsRemove(opts *RootOptions, id string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	st, err := opts.openStore(formatter)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.DeleteSession(cmd.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return outputCommandError(formatter, ErrCodeBinding, fmt.Sprintf("no session named %s", id))
		}
		return outputCommandError(formatter, ErrCodeStore, err.Error())
	}
	if formatter.Format == "json" {
		return formatter.Success(map[string]string{"removed": id})
	}
	fmt.Fprintf(formatter.Writer, "✓ Removed session %s\n", id)
	return nil
}
