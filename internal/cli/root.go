package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/dbnav/internal/config"
	"github.com/roach88/dbnav/internal/ir"
	"github.com/roach88/dbnav/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	StorePath  string

	// Config is loaded before any subcommand runs.
	Config *config.Config
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the dbnav CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:     "dbnav",
		Short:   "dbnav - navigate relational data as a graph",
		Version: ir.ToolVersion,
		Long: `Navigate a relational database by drawing a query graph.

Nodes stand for rows of a table, relation instances constrain them by an
attribute and a label, and every graph is answered as a result table by
SQL or by an in-memory context family.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return opts.load(cmd)
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default ~/.dbnav/config.yaml)")
	cmd.PersistentFlags().StringVar(&opts.StorePath, "store", "", "path to the binding store (overrides config)")

	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewBootstrapCommand(opts))
	cmd.AddCommand(NewBindingsCommand(opts))
	cmd.AddCommand(NewSessionsCommand(opts))
	cmd.AddCommand(NewQueryCommand(opts))
	cmd.AddCommand(NewRunCommand(opts))

	return cmd
}

// load reads the configuration and installs the default logger.
func (o *RootOptions) load(cmd *cobra.Command) error {
	cfg, err := config.LoadWithEnv(config.DiscoverPath(o.ConfigPath))
	if err != nil {
		return outputCommandError(o.formatter(cmd), ErrCodeGeneric, fmt.Sprintf("failed to load config: %v", err))
	}
	if o.StorePath != "" {
		cfg.Store = o.StorePath
	}
	o.Config = cfg

	level := cfg.SlogLevel()
	if o.Verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
	return nil
}

// settings returns the loaded configuration, loading defaults when a
// subcommand runs without the root (as in tests).
func (o *RootOptions) settings() *config.Config {
	if o.Config == nil {
		cfg, err := config.LoadWithEnv(config.DiscoverPath(o.ConfigPath))
		if err != nil {
			cfg, _ = config.Load("")
		}
		if o.StorePath != "" {
			cfg.Store = o.StorePath
		}
		o.Config = cfg
	}
	return o.Config
}

// openStore opens the binding store named by the configuration, reporting
// failures through f.
func (o *RootOptions) openStore(f *OutputFormatter) (*store.Store, error) {
	path := o.settings().Store
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, outputCommandError(f, ErrCodeStore, fmt.Sprintf("failed to create store directory: %v", err))
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, outputCommandError(f, ErrCodeStore, fmt.Sprintf("failed to open store %s: %v", path, err))
	}
	return st, nil
}

// formatter builds the output formatter for a command.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
