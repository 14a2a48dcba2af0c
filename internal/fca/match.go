package fca

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/roach88/dbnav/internal/graph"
	"github.com/roach88/dbnav/internal/ir"
	"github.com/roach88/dbnav/internal/result"
)

// cancelCheckInterval is how many search steps run between context checks.
const cancelCheckInterval = 1024

// candidate is a relation tuple a relation instance may map onto.
type candidate struct {
	endpoints []string
	value     ir.IRValue
}

// ResultTable matches g against the family and projects every embedding
// onto window (node columns) and rwindow (relation columns). When window
// holds a single node its displayed properties are added as columns. Rows
// are distinct.
//
// Degenerate graphs: no nodes and no relation instances yield one row with
// no columns; the trivial graph (one unbound node) yields an empty table.
func (f *Family) ResultTable(ctx context.Context, g *graph.Graph, window, rwindow []string) (result.Table, error) {
	if err := ctx.Err(); err != nil {
		return result.Table{}, err
	}
	nodeIDs, rnodeIDs := g.NodeIDs(), g.RNodeIDs()
	if len(nodeIDs) == 0 && len(rnodeIDs) == 0 {
		return result.Unit(), nil
	}
	if g.Trivial() {
		return result.Empty(), nil
	}

	columns, err := f.columns(g, window, rwindow)
	if err != nil {
		return result.Table{}, err
	}

	// Candidate objects per node.
	targets := make(map[string]map[string]bool, len(nodeIDs))
	for _, id := range nodeIDs {
		node, _ := g.Node(id)
		if !node.Sort.Bound() {
			return result.Table{}, &graph.Error{Code: graph.ErrCodeUnboundNode, Message: "cannot match a node without a sort", NodeID: id}
		}
		targets[id] = make(map[string]bool)
		for _, obj := range f.objects.Extent(string(node.Sort)) {
			targets[id][obj] = true
		}
	}

	// Candidate tuples per relation instance.
	rtargets := make([][]candidate, len(rnodeIDs))
	for i, id := range rnodeIDs {
		rtargets[i], err = f.candidates(g, id, targets)
		if err != nil {
			return result.Table{}, err
		}
	}

	var embeddings []map[string]string
	err = search(ctx, g, rnodeIDs, rtargets, func(m map[string]string) {
		embeddings = append(embeddings, m)
	})
	if err != nil {
		return result.Table{}, err
	}

	rows, err := f.project(ctx, g, columns, targets, rnodeIDs, rtargets, embeddings)
	if err != nil {
		return result.Table{}, err
	}

	slog.Debug("in-memory match",
		"nodes", len(nodeIDs),
		"rnodes", len(rnodeIDs),
		"window", window,
		"rows", len(rows))

	return result.Table{Columns: columns, Rows: rows}, nil
}

// columns resolves the result columns of a window.
func (f *Family) columns(g *graph.Graph, window, rwindow []string) ([]result.Column, error) {
	columns := make([]result.Column, 0, len(window)+len(rwindow))
	for _, id := range window {
		node, ok := g.Node(id)
		if !ok {
			return nil, &graph.Error{Code: graph.ErrCodeUnknownNode, Message: "window node not in graph", NodeID: id}
		}
		columns = append(columns, result.NodeColumn(id, string(node.Sort)))
	}
	for _, id := range rwindow {
		rnode, ok := g.RNode(id)
		if !ok {
			return nil, &graph.Error{Code: graph.ErrCodeUnknownRNode, Message: "window relation instance not in graph", RNodeID: id}
		}
		mva, err := f.model.MVA(rnode.MVAID)
		if err != nil {
			return nil, &graph.Error{Code: graph.ErrCodeUnknownMVA, Message: "attribute not in schema", RNodeID: id, MVAID: rnode.MVAID, Err: err}
		}
		columns = append(columns, result.RNodeColumn(id, rnode.MVAID, mva.Name, rnode.Endpoints))
	}
	if len(window) == 1 {
		node, _ := g.Node(window[0])
		for _, mvaID := range node.Display {
			mva, err := f.model.MVA(mvaID)
			if err != nil {
				return nil, &graph.Error{Code: graph.ErrCodeUnknownMVA, Message: "displayed attribute not in schema", NodeID: window[0], MVAID: mvaID, Err: err}
			}
			columns = append(columns, result.DisplayColumn(window[0], mvaID, mva.Name))
		}
	}
	return columns, nil
}

// candidates computes the tuples a relation instance may map onto: those in
// the extent of its label whose repeated endpoints agree and whose every
// object is a candidate of the corresponding node.
func (f *Family) candidates(g *graph.Graph, rnodeID string, targets map[string]map[string]bool) ([]candidate, error) {
	rnode, _ := g.RNode(rnodeID)
	mva, err := f.model.MVA(rnode.MVAID)
	if err != nil {
		return nil, &graph.Error{Code: graph.ErrCodeUnknownMVA, Message: "attribute not in schema", RNodeID: rnodeID, MVAID: rnode.MVAID, Err: err}
	}
	if mva.Scale == nil {
		return nil, &graph.Error{Code: graph.ErrCodeUnscaledRelation, Message: "attribute has no scale", RNodeID: rnodeID, MVAID: rnode.MVAID}
	}
	rc, ok := f.relations[rnode.MVAID]
	if !ok {
		return nil, nil
	}
	matches, err := rc.Extent(mva.Scale, rnode.Label)
	if err != nil {
		return nil, &graph.Error{Code: graph.ErrCodeMalformedLabel, Message: "label rejected", RNodeID: rnodeID, MVAID: rnode.MVAID, Err: err}
	}

	var out []candidate
	for _, m := range matches {
		if !consistent(rnode.Endpoints, m.Endpoints) {
			continue
		}
		if !admissible(rnode.Endpoints, m.Endpoints, targets) {
			continue
		}
		out = append(out, candidate{endpoints: m.Endpoints, value: m.Value})
	}
	return out, nil
}

// consistent reports whether equal pattern endpoints map to equal objects.
func consistent(pattern, objects []string) bool {
	seen := make(map[string]string, len(pattern))
	for i, x := range pattern {
		if obj, ok := seen[x]; ok && obj != objects[i] {
			return false
		}
		seen[x] = objects[i]
	}
	return true
}

// admissible reports whether every object lies in its node's candidate set.
func admissible(pattern, objects []string, targets map[string]map[string]bool) bool {
	for i, x := range pattern {
		if !targets[x][objects[i]] {
			return false
		}
	}
	return true
}

// search enumerates node-to-object mappings under which every relation
// instance, taken in order, maps onto one of its candidates. Partial
// mappings live on a stack, one frame per depth, with a cursor per
// relation instance into its candidate list.
func search(ctx context.Context, g *graph.Graph, order []string, rtargets [][]candidate, emit func(map[string]string)) error {
	if len(order) == 0 {
		emit(map[string]string{})
		return nil
	}

	endpoints := make([][]string, len(order))
	for i, id := range order {
		rnode, _ := g.RNode(id)
		endpoints[i] = rnode.Endpoints
	}

	cursor := make([]int, len(order))
	stack := []map[string]string{{}}
	depth := 0

	for steps := 0; depth >= 0; steps++ {
		if steps%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		if cursor[depth] >= len(rtargets[depth]) {
			cursor[depth] = 0
			stack = stack[:len(stack)-1]
			depth--
			continue
		}

		cand := rtargets[depth][cursor[depth]]
		cursor[depth]++

		extended, ok := extend(stack[len(stack)-1], endpoints[depth], cand.endpoints)
		if !ok {
			continue
		}
		if depth == len(order)-1 {
			emit(extended)
			continue
		}
		stack = append(stack, extended)
		depth++
	}
	return nil
}

// extend applies pattern→objects to mapping, failing when it contradicts an
// existing assignment. The input mapping is not modified.
func extend(mapping map[string]string, pattern, objects []string) (map[string]string, bool) {
	out := make(map[string]string, len(mapping)+len(pattern))
	for k, v := range mapping {
		out[k] = v
	}
	for i, x := range pattern {
		if obj, ok := out[x]; ok && obj != objects[i] {
			return nil, false
		}
		out[x] = objects[i]
	}
	return out, true
}

// project turns embeddings into distinct rows. Nodes no relation instance
// touches range over their whole candidate set, as in a cross join.
func (f *Family) project(ctx context.Context, g *graph.Graph, columns []result.Column, targets map[string]map[string]bool, order []string, rtargets [][]candidate, embeddings []map[string]string) ([][]any, error) {
	var free []string
	for _, id := range g.NodeIDs() {
		if len(g.Neighbors(id)) > 0 {
			continue
		}
		if len(targets[id]) == 0 {
			return [][]any{}, nil
		}
		free = append(free, id)
	}

	// Relation values are re-derived per embedding so that rwindow columns
	// reflect the tuple each instance mapped onto.
	rvalues := func(m map[string]string, rnodeID string) []ir.IRValue {
		i := slices.Index(order, rnodeID)
		rnode, _ := g.RNode(rnodeID)
		var values []ir.IRValue
		for _, c := range rtargets[i] {
			match := true
			for j, x := range rnode.Endpoints {
				if m[x] != c.endpoints[j] {
					match = false
					break
				}
			}
			if match {
				values = append(values, c.value)
			}
		}
		return values
	}

	rows := [][]any{}
	seen := make(map[string]bool)
	for _, base := range embeddings {
		for _, m := range f.expand(base, free, targets) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			for _, row := range f.rowsFor(g, columns, m, rvalues) {
				key := rowKey(row)
				if seen[key] {
					continue
				}
				seen[key] = true
				rows = append(rows, row)
			}
		}
	}
	return rows, nil
}

// expand extends an embedding over free nodes by their candidate objects.
func (f *Family) expand(base map[string]string, free []string, targets map[string]map[string]bool) []map[string]string {
	out := []map[string]string{base}
	for _, x := range free {
		objs := f.objects.Extent()
		var next []map[string]string
		for _, m := range out {
			for _, obj := range objs {
				if !targets[x][obj] {
					continue
				}
				ext := make(map[string]string, len(m)+1)
				for k, v := range m {
					ext[k] = v
				}
				ext[x] = obj
				next = append(next, ext)
			}
		}
		out = next
	}
	return out
}

// rowsFor renders one embedding. A relation or display column with several
// values yields one row per combination.
func (f *Family) rowsFor(g *graph.Graph, columns []result.Column, m map[string]string, rvalues func(map[string]string, string) []ir.IRValue) [][]any {
	rows := [][]any{{}}
	for _, col := range columns {
		var cells []any
		switch col.Kind {
		case result.KindNode:
			name, _ := f.objects.Name(m[col.NodeID])
			cells = []any{name}
		case result.KindRNode:
			for _, v := range rvalues(m, col.RNodeID) {
				cells = append(cells, f.cell(col.MVAID, v))
			}
		case result.KindDisplay:
			if rc, ok := f.relations[col.MVAID]; ok {
				for _, v := range rc.ValuesOf(m[col.NodeID]) {
					cells = append(cells, f.cell(col.MVAID, v))
				}
			}
			if len(cells) == 0 {
				cells = []any{f.cell(col.MVAID, nil)}
			}
		}
		var next [][]any
		for _, row := range rows {
			for _, c := range cells {
				next = append(next, append(slices.Clone(row), c))
			}
		}
		rows = next
	}
	return rows
}

// cell converts a label of mvaID to a table value through the attribute's
// scale, so both backends report the same cell.
func (f *Family) cell(mvaID string, v ir.IRValue) any {
	var value any
	if v != nil {
		value = labelValue(v)
	}
	if mva, err := f.model.MVA(mvaID); err == nil && mva.Scale != nil {
		return mva.Scale.Cell(value)
	}
	return value
}

// labelValue converts a label to a plain value. Year-pair labels become
// []any{lo, hi}.
func labelValue(v ir.IRValue) any {
	switch val := v.(type) {
	case ir.IRString:
		return string(val)
	case ir.IRInt:
		return int64(val)
	case ir.IRBool:
		return bool(val)
	case ir.IRArray:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = labelValue(elem)
		}
		return out
	default:
		return ir.Format(v)
	}
}

func rowKey(row []any) string {
	var b strings.Builder
	for _, v := range row {
		fmt.Fprintf(&b, "%T:%v\x00", v, v)
	}
	return b.String()
}
