package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/dbnav/internal/querysql"
	"github.com/roach88/dbnav/internal/store"
)

// memoryDialect marks bindings answered by an in-memory context family.
const memoryDialect = "memory"

// NewBindingsCommand creates the bindings command group.
func NewBindingsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bindings",
		Short: "Manage stored bindings",
		Long: `List, add and remove bindings.

A binding names a model together with what answers its queries: a MySQL
or SQLite database, or the context family of a spec's data block.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBindingsList(rootOpts, cmd)
		},
	}

	cmd.AddCommand(newBindingsListCommand(rootOpts))
	cmd.AddCommand(newBindingsAddCommand(rootOpts))
	cmd.AddCommand(newBindingsRemoveCommand(rootOpts))

	return cmd
}

func newBindingsListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List bindings",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBindingsList(rootOpts, cmd)
		},
	}
}

func runBindingsList(opts *RootOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	st, err := opts.openStore(formatter)
	if err != nil {
		return err
	}
	defer st.Close()

	infos, err := st.ListBindings(cmd.Context())
	if err != nil {
		return outputCommandError(formatter, ErrCodeStore, err.Error())
	}
	if formatter.Format == "json" {
		return formatter.Success(infos)
	}
	if len(infos) == 0 {
		fmt.Fprintln(formatter.Writer, "No bindings")
		return nil
	}

	rows := make([][]string, len(infos))
	for i, b := range infos {
		rows[i] = []string{
			b.Name,
			b.Dialect,
			fmt.Sprint(b.Sessions),
			shortHash(b.ModelHash),
			b.UpdatedAt.Format("2006-01-02 15:04:05"),
		}
	}
	return RenderTable(formatter.Writer, []string{"name", "dialect", "sessions", "model", "updated"}, rows)
}

// BindingsAddOptions holds flags for bindings add.
type BindingsAddOptions struct {
	*RootOptions
	DSN     string
	Dialect string
}

func newBindingsAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BindingsAddOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "add <name> <spec>",
		Short: "Store a spec's model as a binding",
		Long: `Compile a spec and store its model under name.

Without --dsn the binding answers queries from the spec's data block,
which must be present. With --dsn the hand-written model is navigated over
that database.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBindingsAdd(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DSN, "dsn", "", "database DSN")
	cmd.Flags().StringVar(&opts.Dialect, "dialect", "", "database dialect (mysql|sqlite); defaults to config")

	return cmd
}

func runBindingsAdd(opts *BindingsAddOptions, name, specPath string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	loaded, err := LoadSpecs(specPath)
	if err != nil {
		return outputLoadError(formatter, err)
	}

	binding := store.Binding{Name: name, Model: loaded.Spec.Model}
	if opts.DSN == "" {
		if loaded.Spec.Family == nil {
			return outputCommandError(formatter, ErrCodeBinding,
				fmt.Sprintf("spec %s has no data block; pass --dsn to bind it to a database", specPath))
		}
		binding.Dialect = memoryDialect
		binding.Family = loaded.Spec.Family
	} else {
		dialectName := opts.Dialect
		if dialectName == "" {
			dialectName = opts.settings().Backend.Dialect
		}
		dialect, err := querysql.ParseDialect(dialectName)
		if err != nil {
			return outputCommandError(formatter, ErrCodeArgument, err.Error())
		}
		binding.Dialect = string(dialect)
		binding.DSN = opts.DSN
	}

	st, err := opts.openStore(formatter)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.PutBinding(cmd.Context(), binding); err != nil {
		return outputCommandError(formatter, ErrCodeStore, err.Error())
	}

	if formatter.Format == "json" {
		return formatter.Success(map[string]string{"binding": name, "dialect": binding.Dialect})
	}
	fmt.Fprintf(formatter.Writer, "✓ Bound %s (%s)\n", name, binding.Dialect)
	return nil
}

func newBindingsRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "rm <name>",
		Short:         "Remove a binding and its sessions",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := rootOpts.formatter(cmd)
			st, err := rootOpts.openStore(formatter)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.DeleteBinding(cmd.Context(), args[0]); err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return outputCommandError(formatter, ErrCodeBinding, fmt.Sprintf("no binding named %s", args[0]))
				}
				return outputCommandError(formatter, ErrCodeStore, err.Error())
			}
			if formatter.Format == "json" {
				return formatter.Success(map[string]string{"removed": args[0]})
			}
			fmt.Fprintf(formatter.Writer, "✓ Removed binding %s\n", args[0])
			return nil
		},
	}
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
