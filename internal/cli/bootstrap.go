package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/dbnav/internal/bootstrap"
	"github.com/roach88/dbnav/internal/querysql"
	"github.com/roach88/dbnav/internal/store"
)

// BootstrapOptions holds flags for the bootstrap command.
type BootstrapOptions struct {
	*RootOptions
	Name     string
	DSN      string
	Dialect  string
	Database string
}

// BootstrapResult describes a stored database binding.
type BootstrapResult struct {
	Binding    string `json:"binding"`
	Dialect    string `json:"dialect"`
	Sorts      int    `json:"sorts"`
	Attributes int    `json:"attributes"`
}

// NewBootstrapCommand creates the bootstrap command.
func NewBootstrapCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BootstrapOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "bootstrap",
		Short: "Derive a model from a live database and store it as a binding",
		Long: `Introspect a MySQL or SQLite database and derive its model.

Every table becomes a sort, every column a scaled attribute and every
foreign key a boolean relation. Date scales are narrowed to the years
stored in each column. The model is stored under --name and can then be
navigated with "dbnav query --binding".

--dsn, --dialect and --database default to the backend section of the
configuration.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBootstrap(cmd.Context(), opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "binding name (required)")
	cmd.Flags().StringVar(&opts.DSN, "dsn", "", "database DSN")
	cmd.Flags().StringVar(&opts.Dialect, "dialect", "", "database dialect (mysql|sqlite)")
	cmd.Flags().StringVar(&opts.Database, "database", "", "MySQL schema to introspect")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func runBootstrap(ctx context.Context, opts *BootstrapOptions, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := opts.formatter(cmd)
	cfg := opts.settings()

	dsn, database, dialectName := opts.DSN, opts.Database, opts.Dialect
	if dsn == "" {
		dsn = cfg.Backend.DSN
	}
	if database == "" {
		database = cfg.Backend.Database
	}
	if dialectName == "" {
		dialectName = cfg.Backend.Dialect
	}
	if dsn == "" {
		return outputCommandError(formatter, ErrCodeArgument, "no DSN: pass --dsn or set backend.dsn")
	}
	dialect, err := querysql.ParseDialect(dialectName)
	if err != nil {
		return outputCommandError(formatter, ErrCodeArgument, err.Error())
	}
	dates, err := cfg.DateInterval()
	if err != nil {
		return outputCommandError(formatter, ErrCodeArgument, err.Error())
	}

	db, err := querysql.Open(ctx, dialect, dsn)
	if err != nil {
		return outputCommandError(formatter, ErrCodeBackend, err.Error())
	}
	defer db.Close()

	formatter.VerboseLog("Introspecting %s database", dialect)
	model, err := bootstrap.Run(ctx, db, database, bootstrap.Options{Dialect: dialect, DateScale: dates})
	if err != nil {
		return outputCommandError(formatter, ErrCodeBackend, fmt.Sprintf("bootstrap: %v", err))
	}

	st, err := opts.openStore(formatter)
	if err != nil {
		return err
	}
	defer st.Close()

	binding := store.Binding{Name: opts.Name, Dialect: string(dialect), DSN: dsn, Model: model}
	if err := st.PutBinding(ctx, binding); err != nil {
		return outputCommandError(formatter, ErrCodeStore, err.Error())
	}

	res := BootstrapResult{
		Binding:    opts.Name,
		Dialect:    string(dialect),
		Sorts:      len(model.Sorts()),
		Attributes: len(model.MVAs()),
	}
	if formatter.Format == "json" {
		return formatter.Success(res)
	}
	fmt.Fprintf(formatter.Writer, "✓ Bound %s: %d sort(s), %d attribute(s)\n", res.Binding, res.Sorts, res.Attributes)
	return nil
}
