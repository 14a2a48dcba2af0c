package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dbnav/internal/graph"
	"github.com/roach88/dbnav/internal/ir"
	"github.com/roach88/dbnav/internal/testutil"
)

func TestSaveLoadSession(t *testing.T) {
	s, _ := createTestStore(t)
	ctx := context.Background()
	m, ids := testutil.LiteratureModel(t)
	require.NoError(t, s.PutBinding(ctx, Binding{Name: "lit", Dialect: "sqlite", Model: m}))

	g := graph.New(m)
	require.NoError(t, g.SetSort("x1", "Author"))
	e1, err := g.AddRNode(ids.Wrote, []string{"x1", ""}, &graph.Point{X: 3, Y: 4})
	require.NoError(t, err)
	require.NoError(t, g.SetLabel(e1, ir.IRString("The")))
	require.NoError(t, g.ToggleDisplay("x1", ids.Name))

	require.NoError(t, s.SaveSession(ctx, "nav-1", "lit", g))
	rec, err := s.LoadSession(ctx, "nav-1", m)
	require.NoError(t, err)

	assert.Equal(t, "lit", rec.Binding)
	assert.True(t, ir.Equal(g.Record(), rec.Graph.Record()))
	want, err := g.Fingerprint()
	require.NoError(t, err)
	assert.Equal(t, want, rec.GraphHash)
}

func TestSaveSession_Overwrites(t *testing.T) {
	s, _ := createTestStore(t)
	ctx := context.Background()
	m, _ := testutil.LiteratureModel(t)
	require.NoError(t, s.PutBinding(ctx, Binding{Name: "lit", Dialect: "sqlite", Model: m}))

	g := graph.New(m)
	require.NoError(t, s.SaveSession(ctx, "nav-1", "lit", g))
	require.NoError(t, g.SetSort("x1", "Book"))
	require.NoError(t, s.SaveSession(ctx, "nav-1", "lit", g))

	rec, err := s.LoadSession(ctx, "nav-1", m)
	require.NoError(t, err)
	n, ok := rec.Graph.Node("x1")
	require.True(t, ok)
	assert.EqualValues(t, "Book", n.Sort)
	assert.True(t, rec.UpdatedAt.After(rec.CreatedAt))
}

func TestSaveSession_RequiresBinding(t *testing.T) {
	s, _ := createTestStore(t)
	m, _ := testutil.LiteratureModel(t)

	err := s.SaveSession(context.Background(), "nav-1", "missing", graph.New(m))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FOREIGN KEY")
}

func TestListSessions(t *testing.T) {
	s, _ := createTestStore(t)
	ctx := context.Background()
	m, _ := testutil.LiteratureModel(t)
	require.NoError(t, s.PutBinding(ctx, Binding{Name: "a", Dialect: "sqlite", Model: m}))
	require.NoError(t, s.PutBinding(ctx, Binding{Name: "b", Dialect: "sqlite", Model: m}))

	require.NoError(t, s.SaveSession(ctx, "s2", "a", graph.New(m)))
	require.NoError(t, s.SaveSession(ctx, "s1", "a", graph.New(m)))
	require.NoError(t, s.SaveSession(ctx, "s3", "b", graph.New(m)))

	ofA, err := s.ListSessions(ctx, "a")
	require.NoError(t, err)
	require.Len(t, ofA, 2)
	assert.Equal(t, "s1", ofA[0].ID)
	assert.Equal(t, "s2", ofA[1].ID)

	all, err := s.ListSessions(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	none, err := s.ListSessions(ctx, "c")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestDeleteSession(t *testing.T) {
	s, _ := createTestStore(t)
	ctx := context.Background()
	m, _ := testutil.LiteratureModel(t)
	require.NoError(t, s.PutBinding(ctx, Binding{Name: "a", Dialect: "sqlite", Model: m}))
	require.NoError(t, s.SaveSession(ctx, "s1", "a", graph.New(m)))

	require.NoError(t, s.DeleteSession(ctx, "s1"))
	_, err := s.LoadSession(ctx, "s1", m)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.Is(s.DeleteSession(ctx, "s1"), ErrNotFound))
}
