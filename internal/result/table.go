// Package result defines the table both query backends produce.
package result

import (
	"fmt"
	"strings"
)

// ColumnKind records where a result column comes from.
type ColumnKind string

const (
	// KindNode columns print the rows matched by a window node.
	KindNode ColumnKind = "node"

	// KindRNode columns carry the value expression of a relation instance.
	KindRNode ColumnKind = "rnode"

	// KindDisplay columns carry a unary attribute displayed on a node.
	KindDisplay ColumnKind = "display"
)

// Column describes one result column and its provenance in the graph.
type Column struct {
	Kind    ColumnKind `json:"kind"`
	NodeID  string     `json:"node,omitempty"`
	RNodeID string     `json:"rnode,omitempty"`
	MVAID   string     `json:"mva,omitempty"`

	// Name is the human-readable header: "Author:x1" for nodes,
	// "wrote(x1,x2)" for relation instances, "x1.name" for display columns.
	Name string `json:"name"`
}

// NodeColumn describes the printed rows of a node of the given sort.
func NodeColumn(nodeID, sort string) Column {
	return Column{Kind: KindNode, NodeID: nodeID, Name: sort + ":" + nodeID}
}

// RNodeColumn describes the value of a relation instance.
func RNodeColumn(rnodeID, mvaID, mvaName string, endpoints []string) Column {
	return Column{
		Kind:    KindRNode,
		RNodeID: rnodeID,
		MVAID:   mvaID,
		Name:    fmt.Sprintf("%s(%s)", mvaName, strings.Join(endpoints, ",")),
	}
}

// DisplayColumn describes a property displayed on a node.
func DisplayColumn(nodeID, mvaID, mvaName string) Column {
	return Column{Kind: KindDisplay, NodeID: nodeID, MVAID: mvaID, Name: nodeID + "." + mvaName}
}

// Table is an ordered list of columns and rows aligned to them. Row order
// is backend-defined.
type Table struct {
	Columns []Column `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// Empty is the table of the trivial graph: no columns and no rows.
func Empty() Table {
	return Table{Columns: []Column{}, Rows: [][]any{}}
}

// Unit is the table of the empty pattern: one row with no columns.
func Unit() Table {
	return Table{Columns: []Column{}, Rows: [][]any{{}}}
}

// Len returns the number of rows.
func (t Table) Len() int { return len(t.Rows) }

// Names returns the column headers.
func (t Table) Names() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Index returns the position of the first column matching kind and id, or
// -1. id is matched against NodeID for node columns and RNodeID for
// relation columns.
func (t Table) Index(kind ColumnKind, id string) int {
	for i, c := range t.Columns {
		if c.Kind != kind {
			continue
		}
		if (kind == KindRNode && c.RNodeID == id) || (kind != KindRNode && c.NodeID == id) {
			return i
		}
	}
	return -1
}

// Values returns column i of every row.
func (t Table) Values(i int) []any {
	values := make([]any, len(t.Rows))
	for r, row := range t.Rows {
		values[r] = row[i]
	}
	return values
}

// Strings renders every cell as text, NULL as "".
func (t Table) Strings() [][]string {
	out := make([][]string, len(t.Rows))
	for r, row := range t.Rows {
		cells := make([]string, len(row))
		for c, v := range row {
			cells[c] = Format(v)
		}
		out[r] = cells
	}
	return out
}

// Format renders one cell value.
func Format(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(val)
	case string:
		return val
	default:
		return fmt.Sprint(val)
	}
}
