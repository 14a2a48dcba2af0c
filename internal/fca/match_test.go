package fca_test

import (
	"context"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dbnav/internal/fca"
	"github.com/roach88/dbnav/internal/graph"
	"github.com/roach88/dbnav/internal/ir"
	"github.com/roach88/dbnav/internal/result"
	"github.com/roach88/dbnav/internal/scale"
	"github.com/roach88/dbnav/internal/schema"
	"github.com/roach88/dbnav/internal/testutil"
)

// rows renders a table as sorted "a|b" strings.
func rows(tbl result.Table) []string {
	var out []string
	for _, row := range tbl.Strings() {
		out = append(out, strings.Join(row, "|"))
	}
	sort.Strings(out)
	return out
}

func sorted(ss []string) []string {
	out := append([]string(nil), ss...)
	sort.Strings(out)
	return out
}

func TestEmptyGraphYieldsOneEmptyRow(t *testing.T) {
	m, _, f := testutil.Literature(t)

	tbl, err := f.ResultTable(context.Background(), graph.NewEmpty(m), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, tbl.Columns)
	require.Equal(t, 1, tbl.Len())
	assert.Empty(t, tbl.Rows[0])
}

func TestTrivialGraphYieldsNoRows(t *testing.T) {
	m, _, f := testutil.Literature(t)

	tbl, err := f.ResultTable(context.Background(), graph.New(m), []string{"x1"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, tbl.Len())
}

func TestSingleNodeYieldsSortExtent(t *testing.T) {
	m, _, f := testutil.Literature(t)
	g := graph.New(m)
	require.NoError(t, g.SetSort("x1", "Author"))

	tbl, err := f.ResultTable(context.Background(), g, []string{"x1"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Author:x1"}, tbl.Names())
	assert.Equal(t, []string{"Austen", "Bronte", "Tolkien"}, rows(tbl))
}

func TestAuthorWroteBook(t *testing.T) {
	m, ids, f := testutil.Literature(t)
	g := graph.New(m)
	require.NoError(t, g.SetSort("x1", "Author"))
	e1, err := g.AddRNode(ids.Wrote, []string{"x1", ""}, nil)
	require.NoError(t, err)

	tbl, err := f.ResultTable(context.Background(), g, []string{"x1", "x2"}, []string{e1})
	require.NoError(t, err)
	assert.Equal(t, []string{"Author:x1", "Book:x2", "wrote(x1,x2)"}, tbl.Names())

	var want []string
	for _, p := range testutil.Pairs() {
		_, title, _ := strings.Cut(p, "|")
		want = append(want, p+"|"+title)
	}
	assert.Equal(t, sorted(want), rows(tbl))
}

func TestLabelsNarrowMatches(t *testing.T) {
	tests := []struct {
		name  string
		mva   func(testutil.LiteratureIDs) string
		label ir.IRValue
		want  []string
	}{
		{"prefix", func(ids testutil.LiteratureIDs) string { return ids.Title }, ir.IRString("The "), []string{"The Hobbit", "The Silmarillion"}},
		{"prefix lower case", func(ids testutil.LiteratureIDs) string { return ids.Title }, ir.IRString("the "), []string{"The Hobbit", "The Silmarillion"}},
		{"prefix top", func(ids testutil.LiteratureIDs) string { return ids.Title }, ir.IRString(""), []string{"Emma", "Persuasion", "The Hobbit", "The Silmarillion"}},
		{"date decade", func(ids testutil.LiteratureIDs) string { return ids.Published }, testutil.YearLabel(1810), []string{"Emma", "Persuasion"}},
		{"date century", func(ids testutil.LiteratureIDs) string { return ids.Published }, scale.Label(1900, 1999), []string{"The Hobbit", "The Silmarillion"}},
		{"boolean", func(ids testutil.LiteratureIDs) string { return ids.InPrint }, scale.BooleanLabel, []string{"Emma", "The Hobbit"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ids, f := testutil.Literature(t)
			g := graph.New(m)
			e1, err := g.AddRNode(tt.mva(ids), []string{"x1"}, nil)
			require.NoError(t, err)
			require.NoError(t, g.SetLabel(e1, tt.label))

			tbl, err := f.ResultTable(context.Background(), g, []string{"x1"}, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, rows(tbl))
		})
	}
}

func TestTwoHopPatternIsDistinct(t *testing.T) {
	m, ids, f := testutil.Literature(t)
	g := graph.New(m)
	require.NoError(t, g.SetSort("x1", "Author"))
	_, err := g.AddRNode(ids.Wrote, []string{"x1", ""}, nil)
	require.NoError(t, err)
	_, err = g.AddRNode(ids.AuthorID, []string{"x2", ""}, nil)
	require.NoError(t, err)

	tbl, err := f.ResultTable(context.Background(), g, []string{"x1", "x3"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Austen|Austen", "Tolkien|Tolkien"}, rows(tbl))
}

func TestConstrainedNodeKeepsItsTuples(t *testing.T) {
	// Regression: relation candidates are filtered by membership of their
	// objects in the node candidate sets. Comparing against anything other
	// than object ids drops every tuple.
	m, ids, f := testutil.Literature(t)
	g := graph.New(m)
	e1, err := g.AddRNode(ids.Name, []string{"x1"}, nil)
	require.NoError(t, err)
	require.NoError(t, g.SetLabel(e1, ir.IRString("Tol")))
	_, err = g.AddRNode(ids.Wrote, []string{"x1", ""}, nil)
	require.NoError(t, err)

	tbl, err := f.ResultTable(context.Background(), g, []string{"x2"}, nil)
	require.NoError(t, err)
	assert.Equal(t, sorted(testutil.Titles(1)), rows(tbl))
}

func TestIsolatedNodesCrossJoin(t *testing.T) {
	m, _, f := testutil.Literature(t)
	g := graph.NewEmpty(m)
	a := g.AddNode("Author", nil)
	b := g.AddNode("Book", nil)

	tbl, err := f.ResultTable(context.Background(), g, []string{a, b}, nil)
	require.NoError(t, err)
	assert.Equal(t, len(testutil.Authors)*len(testutil.Books), tbl.Len())
}

func TestIsolatedNodeWithEmptyExtent(t *testing.T) {
	m, ids, f := testutil.Literature(t)
	require.NoError(t, m.AddSort("Publisher", "{0}.name"))
	g := graph.New(m)
	_, err := g.AddRNode(ids.Title, []string{"x1"}, nil)
	require.NoError(t, err)
	g.AddNode("Publisher", nil)

	tbl, err := f.ResultTable(context.Background(), g, []string{"x1"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, tbl.Len())
}

func TestUnboundNodeInPatternIsAnError(t *testing.T) {
	m, _, f := testutil.Literature(t)
	g := graph.New(m)
	g.AddNode("Author", nil)

	_, err := f.ResultTable(context.Background(), g, []string{"x2"}, nil)
	require.Error(t, err)
	assert.Equal(t, graph.ErrCodeUnboundNode, graph.CodeOf(err))
}

func TestUnknownWindowNode(t *testing.T) {
	m, _, f := testutil.Literature(t)
	g := graph.New(m)
	require.NoError(t, g.SetSort("x1", "Author"))

	_, err := f.ResultTable(context.Background(), g, []string{"x9"}, nil)
	assert.Equal(t, graph.ErrCodeUnknownNode, graph.CodeOf(err))

	_, err = f.ResultTable(context.Background(), g, nil, []string{"e9"})
	assert.Equal(t, graph.ErrCodeUnknownRNode, graph.CodeOf(err))
}

func TestDeletedAttributeFailsQuery(t *testing.T) {
	m, ids, f := testutil.Literature(t)
	g := graph.New(m)
	_, err := g.AddRNode(ids.Wrote, []string{"x1", ""}, nil)
	require.NoError(t, err)
	require.NoError(t, m.DeleteMVA(ids.Wrote))

	_, err = f.ResultTable(context.Background(), g, []string{"x1"}, nil)
	require.Error(t, err)
	assert.Equal(t, graph.ErrCodeUnknownMVA, graph.CodeOf(err))
}

func TestDisplayColumnsOnSingleNodeWindow(t *testing.T) {
	m, ids, f := testutil.Literature(t)
	g := graph.New(m)
	require.NoError(t, g.SetSort("x1", "Book"))
	require.NoError(t, g.ToggleDisplay("x1", ids.InPrint))
	require.NoError(t, g.ToggleDisplay("x1", ids.Title))

	tbl, err := f.ResultTable(context.Background(), g, []string{"x1"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Book:x1", "x1.title", "x1.in_print"}, tbl.Names())
	assert.Contains(t, rows(tbl), "Emma|Emma|1")
	assert.Contains(t, rows(tbl), "Persuasion|Persuasion|0")
}

func TestMergeMatchesUnion(t *testing.T) {
	m, ids, f := testutil.Literature(t)
	ctx := context.Background()

	g := graph.NewEmpty(m)
	a := g.AddNode("Book", nil)
	b := g.AddNode("Book", nil)
	ea, err := g.AddRNode(ids.Published, []string{a}, nil)
	require.NoError(t, err)
	require.NoError(t, g.SetLabel(ea, testutil.YearLabel(1930)))
	eb, err := g.AddRNode(ids.Published, []string{b}, nil)
	require.NoError(t, err)
	require.NoError(t, g.SetLabel(eb, testutil.YearLabel(1970)))

	onA, err := g.Component(a)
	require.NoError(t, err)
	ta, err := f.ResultTable(ctx, onA, []string{a}, nil)
	require.NoError(t, err)
	onB, err := g.Component(b)
	require.NoError(t, err)
	tb, err := f.ResultTable(ctx, onB, []string{b}, nil)
	require.NoError(t, err)

	require.NoError(t, g.Merge(a, b))
	merged, err := f.ResultTable(ctx, g, []string{b}, nil)
	require.NoError(t, err)

	assert.Equal(t, sorted(append(rows(ta), rows(tb)...)), rows(merged))
}

func TestRepeatedEndpointsMatchReflexiveTuples(t *testing.T) {
	m := schema.NewModel()
	require.NoError(t, m.AddSort("Person", "{0}.name"))
	knows, err := m.AddMVA("knows", []schema.Sort{"Person", "Person"}, "varchar", "{0}.note", nil)
	require.NoError(t, err)
	require.NoError(t, m.AttachScale(knows, scale.Prefix{}))

	f := fca.NewFamily(m)
	alice, err := f.AddObject("alice", "Person")
	require.NoError(t, err)
	bob, err := f.AddObject("bob", "Person")
	require.NoError(t, err)
	for _, pair := range [][]string{{alice, alice}, {alice, bob}, {bob, alice}} {
		_, err := f.AddTuple(knows, pair, ir.IRString("note"))
		require.NoError(t, err)
	}

	g := graph.New(m)
	_, err = g.AddRNode(knows, []string{"x1", "x1"}, nil)
	require.NoError(t, err)

	tbl, err := f.ResultTable(context.Background(), g, []string{"x1"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, rows(tbl))

	// A cycle through two instances needs both directions.
	g = graph.New(m)
	_, err = g.AddRNode(knows, []string{"x1", ""}, nil)
	require.NoError(t, err)
	_, err = g.AddRNode(knows, []string{"x2", "x1"}, nil)
	require.NoError(t, err)

	tbl, err = f.ResultTable(context.Background(), g, []string{"x1", "x2"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice|alice", "alice|bob", "bob|alice"}, rows(tbl))
}

func TestCancelledContext(t *testing.T) {
	m, _, f := testutil.Literature(t)
	g := graph.New(m)
	require.NoError(t, g.SetSort("x1", "Author"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.ResultTable(ctx, g, []string{"x1"}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
