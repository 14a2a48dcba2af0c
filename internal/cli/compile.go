package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/dbnav/internal/compiler"
	"github.com/roach88/dbnav/internal/ir"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path
}

// CompilationResult summarizes a compiled spec.
type CompilationResult struct {
	Sorts      []SortSummary      `json:"sorts"`
	Attributes []AttributeSummary `json:"attributes"`
	Objects    int                `json:"objects"`
	HasData    bool               `json:"has_data"`
}

// SortSummary describes one sort.
type SortSummary struct {
	Name  string `json:"name"`
	Print string `json:"print"`
}

// AttributeSummary describes one attribute.
type AttributeSummary struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Kind  string   `json:"kind"`
	Sorts []string `json:"sorts"`
	Scale string   `json:"scale,omitempty"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <spec>",
		Short: "Compile a CUE spec to canonical records",
		Long: `Compile a CUE navigation spec: a schema block and an optional data block.

The spec is a .cue file or a directory holding one CUE package. With
--output the compiled model and family are written as canonical JSON
records, the format bindings are stored in.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}

func runCompile(opts *CompileOptions, specPath string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	loaded, err := LoadSpecs(specPath)
	if err != nil {
		return outputLoadError(formatter, err)
	}
	formatter.VerboseLog("Found %d CUE file(s) in %s", loaded.FileCount, specPath)

	result := summarize(loaded.Spec)

	if opts.Output != "" {
		if err := writeRecords(loaded.Spec, opts.Output); err != nil {
			return outputCommandError(formatter, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err))
		}
	}

	return outputCompileSuccess(formatter, result, opts.Output)
}

func summarize(spec *compiler.Spec) *CompilationResult {
	result := &CompilationResult{
		Sorts:      []SortSummary{},
		Attributes: []AttributeSummary{},
	}
	for _, sort := range spec.Model.Sorts() {
		expr, _ := spec.Model.PrintExpr(sort)
		result.Sorts = append(result.Sorts, SortSummary{Name: string(sort), Print: expr})
	}
	for _, mva := range spec.Model.MVAs() {
		summary := AttributeSummary{ID: mva.ID, Name: mva.Name, Kind: string(mva.Kind)}
		for _, s := range mva.Sorts {
			summary.Sorts = append(summary.Sorts, string(s))
		}
		if mva.Scale != nil {
			summary.Scale = string(mva.Scale.Kind())
		}
		result.Attributes = append(result.Attributes, summary)
	}
	if spec.Family != nil {
		result.HasData = true
		result.Objects = len(spec.Family.Objects().Objects())
	}
	return result
}

// outputCompileSuccess outputs successful compilation results.
func outputCompileSuccess(formatter *OutputFormatter, result *CompilationResult, outputFile string) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "✓ Compiled %d sort(s), %d attribute(s)", len(result.Sorts), len(result.Attributes))
	if result.HasData {
		fmt.Fprintf(w, ", %d object(s)", result.Objects)
	}
	fmt.Fprint(w, "\n\n")

	fmt.Fprintln(w, "Sorts:")
	for _, s := range result.Sorts {
		fmt.Fprintf(w, "  %s: %s\n", s.Name, s.Print)
	}
	fmt.Fprintln(w)

	if len(result.Attributes) > 0 {
		fmt.Fprintln(w, "Attributes:")
		for _, a := range result.Attributes {
			scale := a.Scale
			if scale == "" {
				scale = "unscaled"
			}
			fmt.Fprintf(w, "  %s(%s): %s, %s\n", a.Name, strings.Join(a.Sorts, ", "), a.Kind, scale)
		}
		fmt.Fprintln(w)
	}

	if outputFile != "" {
		fmt.Fprintf(w, "Wrote canonical records to %s\n", outputFile)
	}
	return nil
}

// outputLoadError reports a spec that failed to load or compile.
func outputLoadError(formatter *OutputFormatter, err error) error {
	code, message := ErrCodeGeneric, err.Error()
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		code, message = loadErr.Code, loadErr.Message
		if loadErr.Pos.IsValid() && formatter.Format != "json" {
			fmt.Fprintf(formatter.Writer, "%s:%d:%d\n", loadErr.Pos.Filename(), loadErr.Pos.Line(), loadErr.Pos.Column())
		}
	}
	return outputCommandError(formatter, code, message)
}

// outputCommandError reports a command-level error (exit code 2).
func outputCommandError(formatter *OutputFormatter, code, message string) error {
	_ = formatter.Error(code, message, nil)
	return WrapExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message), nil)
}

// writeRecords writes the model and family records as canonical JSON.
func writeRecords(spec *compiler.Spec, filename string) error {
	records := ir.IRObject{"model": spec.Model.Record()}
	if spec.Family != nil {
		records["family"] = spec.Family.Record()
	}
	data, err := ir.MarshalCanonical(records)
	if err != nil {
		return fmt.Errorf("marshaling records: %w", err)
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	return nil
}
