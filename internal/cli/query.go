package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/dbnav/internal/graph"
	"github.com/roach88/dbnav/internal/ir"
	"github.com/roach88/dbnav/internal/navigator"
	"github.com/roach88/dbnav/internal/querysql"
	"github.com/roach88/dbnav/internal/scale"
	"github.com/roach88/dbnav/internal/schema"
	"github.com/roach88/dbnav/internal/store"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	Spec    string
	Binding string
	Nodes   []string
	Edges   []string
	Merges  []string
	Sorts   []string
	Display []string
	Window  string
	RWindow string
	Save    string
	Resume  string
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Build a navigation graph and print its result table",
		Long: `Build a navigation graph from flags and print its result table.

The graph is answered by a spec's data block (--spec) or by a stored
binding (--binding). A new graph holds one untyped node, x1. Flags apply
in this order:

  --sort N=SORT           type an unconstrained node
  --node SORT             add a node; nodes are numbered x2, x3, ...
  --edge ATTR:E1,E2[=L]   add a relation instance over endpoint nodes,
                          "_" creating a fresh node; L is the label
                          (a date label is written 1810..1819)
  --merge N=TARGET        merge node N into TARGET
  --display N=ATTR        display a property of a node

Example:
  dbnav query --spec lit.cue --sort x1=Author --edge 'wrote:x1,_=The '

--window lists the nodes to print (default: every node) and --rwindow
the relation instances. With --binding a graph can be saved under an id
and resumed later; flags then extend the resumed graph.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd.Context(), opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Spec, "spec", "", "spec with a data block to query in memory")
	cmd.Flags().StringVar(&opts.Binding, "binding", "", "stored binding to query")
	cmd.Flags().StringArrayVar(&opts.Nodes, "node", nil, "add a node of a sort")
	cmd.Flags().StringArrayVar(&opts.Edges, "edge", nil, "add a relation instance ATTR:E1,E2[=LABEL]")
	cmd.Flags().StringArrayVar(&opts.Merges, "merge", nil, "merge nodes N=TARGET")
	cmd.Flags().StringArrayVar(&opts.Sorts, "sort", nil, "retype a node N=SORT")
	cmd.Flags().StringArrayVar(&opts.Display, "display", nil, "display a property N=ATTR")
	cmd.Flags().StringVar(&opts.Window, "window", "", "comma-separated nodes to print")
	cmd.Flags().StringVar(&opts.RWindow, "rwindow", "", "comma-separated relation instances to print")
	cmd.Flags().StringVar(&opts.Save, "save", "", "save the graph as a session")
	cmd.Flags().StringVar(&opts.Resume, "resume", "", "start from a saved session")
	cmd.MarkFlagsMutuallyExclusive("spec", "binding")

	return cmd
}

func runQuery(ctx context.Context, opts *QueryOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	if opts.Spec == "" && opts.Binding == "" {
		return outputCommandError(formatter, ErrCodeArgument, "pass --spec or --binding")
	}
	if opts.Binding == "" && (opts.Save != "" || opts.Resume != "") {
		return outputCommandError(formatter, ErrCodeArgument, "--save and --resume need --binding")
	}

	var (
		model   *schema.Model
		backend navigator.Backend
		st      *store.Store
	)
	if opts.Spec != "" {
		loaded, err := LoadSpecs(opts.Spec)
		if err != nil {
			return outputLoadError(formatter, err)
		}
		if loaded.Spec.Family == nil {
			return outputCommandError(formatter, ErrCodeBinding, fmt.Sprintf("spec %s has no data block", opts.Spec))
		}
		model, backend = loaded.Spec.Model, loaded.Spec.Family
	} else {
		var err error
		if st, err = opts.openStore(formatter); err != nil {
			return err
		}
		defer st.Close()

		b, err := st.GetBinding(ctx, opts.Binding)
		if errors.Is(err, store.ErrNotFound) {
			return outputCommandError(formatter, ErrCodeBinding, fmt.Sprintf("no binding named %s", opts.Binding))
		}
		if err != nil {
			return outputCommandError(formatter, ErrCodeStore, err.Error())
		}
		model = b.Model
		if b.Family != nil {
			backend = b.Family
		} else {
			sqlBackend, closeDB, err := openBinding(ctx, b, opts.settings().CacheSize)
			if err != nil {
				return outputCommandError(formatter, ErrCodeBackend, err.Error())
			}
			defer closeDB()
			backend = sqlBackend
		}
	}

	sessionOpts := []navigator.Option{}
	if opts.Resume != "" {
		rec, err := st.LoadSession(ctx, opts.Resume, model)
		if errors.Is(err, store.ErrNotFound) {
			return outputCommandError(formatter, ErrCodeBinding, fmt.Sprintf("no session named %s", opts.Resume))
		}
		if err != nil {
			return outputCommandError(formatter, ErrCodeStore, err.Error())
		}
		if rec.Binding != opts.Binding {
			return outputCommandError(formatter, ErrCodeBinding,
				fmt.Sprintf("session %s belongs to binding %s", opts.Resume, rec.Binding))
		}
		sessionOpts = append(sessionOpts, navigator.WithID(rec.ID), navigator.WithGraph(rec.Graph))
	}
	session := navigator.New(model, backend, sessionOpts...)

	if err := buildGraph(session, opts); err != nil {
		return outputCommandError(formatter, ErrCodeGraph, err.Error())
	}

	window := splitList(opts.Window)
	if window == nil {
		window = session.Graph().NodeIDs()
	}
	tbl, err := session.ResultTable(ctx, window, splitList(opts.RWindow))
	if err != nil {
		code := ErrCodeBackend
		if graph.CodeOf(err) != "" {
			code = ErrCodeGraph
		}
		return outputCommandError(formatter, code, err.Error())
	}

	if opts.Save != "" {
		if err := st.SaveSession(ctx, opts.Save, opts.Binding, session.Graph()); err != nil {
			return outputCommandError(formatter, ErrCodeStore, err.Error())
		}
		formatter.VerboseLog("Saved session %s", opts.Save)
	}

	return formatter.Table(tbl)
}

// openBinding connects to the database of a binding.
func openBinding(ctx context.Context, b store.Binding, cacheSize int) (*querysql.Backend, func(), error) {
	dialect, err := querysql.ParseDialect(b.Dialect)
	if err != nil {
		return nil, nil, err
	}
	db, err := querysql.Open(ctx, dialect, b.DSN)
	if err != nil {
		return nil, nil, err
	}
	backend, err := querysql.NewBackend(db, b.Model, dialect, cacheSize)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return backend, func() { db.Close() }, nil
}

// buildGraph applies the graph flags to a session in order.
func buildGraph(s *navigator.Session, opts *QueryOptions) error {
	model := s.Model()

	for _, assign := range opts.Sorts {
		node, sort, err := splitPair(assign)
		if err != nil {
			return fmt.Errorf("--sort %s: %w", assign, err)
		}
		if err := s.SetSort(node, schema.Sort(sort)); err != nil {
			return fmt.Errorf("--sort %s: %w", assign, err)
		}
	}

	for _, sort := range opts.Nodes {
		if _, err := s.AddNode(schema.Sort(sort), nil); err != nil {
			return fmt.Errorf("--node %s: %w", sort, err)
		}
	}

	for _, edge := range opts.Edges {
		mva, endpoints, label, err := parseEdge(model, edge)
		if err != nil {
			return fmt.Errorf("--edge %s: %w", edge, err)
		}
		id, err := s.AddRelation(mva.ID, endpoints, nil)
		if err != nil {
			return fmt.Errorf("--edge %s: %w", edge, err)
		}
		if label != "" {
			value, err := parseLabel(mva, label)
			if err != nil {
				return fmt.Errorf("--edge %s: %w", edge, err)
			}
			if err := s.SetLabel(id, value); err != nil {
				return fmt.Errorf("--edge %s: %w", edge, err)
			}
		}
	}

	for _, merge := range opts.Merges {
		node, target, err := splitPair(merge)
		if err != nil {
			return fmt.Errorf("--merge %s: %w", merge, err)
		}
		if err := s.MergeNodes(node, target); err != nil {
			return fmt.Errorf("--merge %s: %w", merge, err)
		}
	}

	for _, display := range opts.Display {
		node, attr, err := splitPair(display)
		if err != nil {
			return fmt.Errorf("--display %s: %w", display, err)
		}
		mva, err := resolveMVA(model, attr)
		if err != nil {
			return fmt.Errorf("--display %s: %w", display, err)
		}
		if err := s.ToggleDisplay(node, mva.ID); err != nil {
			return fmt.Errorf("--display %s: %w", display, err)
		}
	}
	return nil
}

// parseEdge splits ATTR:E1,E2[=LABEL]. An endpoint "_" becomes "", a fresh
// node.
func parseEdge(model *schema.Model, edge string) (schema.MVA, []string, string, error) {
	attr, rest, ok := strings.Cut(edge, ":")
	if !ok || attr == "" {
		return schema.MVA{}, nil, "", fmt.Errorf("want ATTR:E1,E2[=LABEL]")
	}
	eps, label, _ := strings.Cut(rest, "=")

	mva, err := resolveMVA(model, attr)
	if err != nil {
		return schema.MVA{}, nil, "", err
	}
	var endpoints []string
	for _, ep := range strings.Split(eps, ",") {
		ep = strings.TrimSpace(ep)
		if ep == "_" {
			ep = ""
		}
		endpoints = append(endpoints, ep)
	}
	return mva, endpoints, label, nil
}

// resolveMVA finds an attribute by id, then by a name no other attribute
// carries.
func resolveMVA(model *schema.Model, ref string) (schema.MVA, error) {
	if mva, err := model.MVA(ref); err == nil {
		return mva, nil
	}
	var found []schema.MVA
	for _, mva := range model.MVAs() {
		if mva.Name == ref {
			found = append(found, mva)
		}
	}
	switch len(found) {
	case 0:
		return schema.MVA{}, fmt.Errorf("no attribute %s", ref)
	case 1:
		return found[0], nil
	}
	ids := make([]string, len(found))
	for i, mva := range found {
		ids[i] = mva.ID
	}
	return schema.MVA{}, fmt.Errorf("attribute name %s is ambiguous, use one of %s", ref, strings.Join(ids, ", "))
}

// parseLabel reads a label in the notation of the attribute's scale.
func parseLabel(mva schema.MVA, text string) (ir.IRValue, error) {
	if mva.Scale == nil || mva.Scale.Kind() != scale.KindDateInterval {
		return ir.IRString(text), nil
	}
	lo, hi, ok := strings.Cut(text, "..")
	if !ok {
		return nil, fmt.Errorf("date label %q: want FROM..TO", text)
	}
	from, err := strconv.Atoi(strings.TrimSpace(lo))
	if err != nil {
		return nil, fmt.Errorf("date label %q: %w", text, err)
	}
	to, err := strconv.Atoi(strings.TrimSpace(hi))
	if err != nil {
		return nil, fmt.Errorf("date label %q: %w", text, err)
	}
	return scale.Label(from, to), nil
}

func splitPair(s string) (string, string, error) {
	k, v, ok := strings.Cut(s, "=")
	if !ok || k == "" || v == "" {
		return "", "", fmt.Errorf("want KEY=VALUE")
	}
	return k, v, nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
