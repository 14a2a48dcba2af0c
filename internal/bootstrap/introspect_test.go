package bootstrap_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dbnav/internal/bootstrap"
	"github.com/roach88/dbnav/internal/graph"
	"github.com/roach88/dbnav/internal/querysql"
	"github.com/roach88/dbnav/internal/scale"
	"github.com/roach88/dbnav/internal/schema"
	"github.com/roach88/dbnav/internal/testutil"
)

func TestIntrospect_SQLite(t *testing.T) {
	db := testutil.LiteratureDB(t)

	cat, err := bootstrap.Introspect(context.Background(), db, querysql.SQLite, "")
	require.NoError(t, err)

	assert.Equal(t, []string{"Author", "Book"}, cat.Tables())
	assert.Equal(t, []string{"id", "title", "published", "author_id", "in_print"}, cat.ColumnsOf("Book"))
	assert.Equal(t, []string{"id"}, cat.PrimaryKey("Author"))
	assert.Contains(t, cat.Keys, bootstrap.Key{
		Name: "author_id", Table: "Book", Column: "author_id", RefTable: "Author", RefColumn: "id",
	})
}

func TestRun_SQLite(t *testing.T) {
	db := testutil.LiteratureDB(t)
	ctx := context.Background()

	m, err := bootstrap.Run(ctx, db, "", bootstrap.Options{Dialect: querysql.SQLite})
	require.NoError(t, err)
	assert.Equal(t, []schema.Sort{"Author", "Book"}, m.Sorts())

	var published schema.MVA
	for _, mva := range m.MVAs() {
		if mva.Name == "published" {
			published = mva
		}
	}
	dates, ok := published.Scale.(scale.DateInterval)
	require.True(t, ok)
	assert.Equal(t, 1815, dates.Min())
	assert.Equal(t, 1985, dates.Max())

	backend, err := querysql.NewBackend(db, m, querysql.SQLite, 0)
	require.NoError(t, err)
	g := graph.New(m)
	require.NoError(t, g.SetSort("x1", "Author"))
	tbl, err := backend.ResultTable(ctx, g, []string{"x1"}, nil)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"1"}, {"2"}, {"3"}}, tbl.Strings())
}

func TestRun_EmptyDateColumnKeepsDefault(t *testing.T) {
	db := testutil.OpenSQLite(t)
	_, err := db.Exec(`CREATE TABLE Event (id INTEGER PRIMARY KEY, day DATE)`)
	require.NoError(t, err)

	m, err := bootstrap.Run(context.Background(), db, "", bootstrap.Options{Dialect: querysql.SQLite})
	require.NoError(t, err)
	for _, mva := range m.MVAs() {
		if mva.Name == "day" {
			dates := mva.Scale.(scale.DateInterval)
			assert.Equal(t, 1900, dates.Min())
		}
	}
}
