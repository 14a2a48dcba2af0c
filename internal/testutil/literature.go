// Package testutil holds fixtures shared by the backend, session and CLI
// tests: the Literature catalog in schema, in-memory and SQLite form, plus
// deterministic id and clock sources.
package testutil

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dbnav/internal/fca"
	"github.com/roach88/dbnav/internal/ir"
	"github.com/roach88/dbnav/internal/scale"
	"github.com/roach88/dbnav/internal/schema"
)

// Author is a row of the Author table.
type Author struct {
	ID   int
	Name string
}

// Book is a row of the Book table.
type Book struct {
	ID        int
	Title     string
	Published time.Time
	AuthorID  int
	InPrint   bool
}

// Authors are the Literature authors. Bronte has no books.
var Authors = []Author{
	{1, "Tolkien"},
	{2, "Austen"},
	{3, "Bronte"},
}

// Books are the Literature books.
var Books = []Book{
	{1, "The Hobbit", date(1937, 9, 21), 1, true},
	{2, "The Silmarillion", date(1977, 9, 15), 1, false},
	{3, "Emma", date(1815, 12, 23), 2, true},
	{4, "Persuasion", date(1817, 12, 20), 2, false},
}

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

// LiteratureIDs are the attribute ids of the Literature catalog.
type LiteratureIDs struct {
	Name      string // Author.name, prefix scale
	Title     string // Book.title, prefix scale
	Published string // Book.published, date interval 1800..2000 by 10
	InPrint   string // Book.in_print, boolean scale
	AuthorID  string // Book.author_id -> Author.id, boolean scale
	Wrote     string // wrote(author, book), valued by the book title
}

// WroteExpr is the value expression of the wrote relation.
const WroteExpr = "CASE WHEN {1}.author_id = {0}.id THEN {1}.title END"

// LiteratureModel builds the Author/Book schema with scales attached.
func LiteratureModel(t testing.TB) (*schema.Model, LiteratureIDs) {
	t.Helper()

	m := schema.NewModel()
	require.NoError(t, m.AddSort("Author", "{0}.name"))
	require.NoError(t, m.AddSort("Book", "{0}.title"))

	var ids LiteratureIDs
	var err error
	ids.Name, err = m.AddColumn("name", "Author", "varchar(64)")
	require.NoError(t, err)
	ids.Title, err = m.AddColumn("title", "Book", "varchar(128)")
	require.NoError(t, err)
	ids.Published, err = m.AddColumn("published", "Book", "date")
	require.NoError(t, err)
	ids.InPrint, err = m.AddColumn("in_print", "Book", "tinyint(1)")
	require.NoError(t, err)
	ids.AuthorID, err = m.AddForeignKey("author_id", "Book", "author_id", "Author", "id")
	require.NoError(t, err)
	ids.Wrote, err = m.AddMVA("wrote", []schema.Sort{"Author", "Book"}, "varchar", WroteExpr, []string{"author", "book"})
	require.NoError(t, err)

	published, err := scale.NewDateInterval(1800, 2000, 10)
	require.NoError(t, err)

	require.NoError(t, m.AttachScale(ids.Name, scale.Prefix{}))
	require.NoError(t, m.AttachScale(ids.Title, scale.Prefix{}))
	require.NoError(t, m.AttachScale(ids.Published, published))
	require.NoError(t, m.AttachScale(ids.InPrint, scale.Boolean{}))
	require.NoError(t, m.AttachScale(ids.AuthorID, scale.Boolean{}))
	require.NoError(t, m.AttachScale(ids.Wrote, scale.Prefix{}))
	return m, ids
}

// LiteratureFamily loads Authors and Books into an in-memory family over
// model. Objects are named by their print value, as the SQL backend prints
// them.
func LiteratureFamily(t testing.TB, model *schema.Model, ids LiteratureIDs) *fca.Family {
	t.Helper()

	f := fca.NewFamily(model)
	authors := make(map[int]string)
	for _, a := range Authors {
		obj, err := f.AddObject(a.Name, "Author")
		require.NoError(t, err)
		authors[a.ID] = obj
		_, err = f.AddTuple(ids.Name, []string{obj}, ir.IRString(a.Name))
		require.NoError(t, err)
	}
	for _, b := range Books {
		obj, err := f.AddObject(b.Title, "Book")
		require.NoError(t, err)
		year := b.Published.Year()

		add := func(mvaID string, endpoints []string, label ir.IRValue) {
			_, err := f.AddTuple(mvaID, endpoints, label)
			require.NoError(t, err)
		}
		add(ids.Title, []string{obj}, ir.IRString(b.Title))
		add(ids.Published, []string{obj}, scale.Label(year, year))
		if b.InPrint {
			add(ids.InPrint, []string{obj}, scale.BooleanLabel)
		}
		add(ids.AuthorID, []string{obj, authors[b.AuthorID]}, scale.BooleanLabel)
		add(ids.Wrote, []string{authors[b.AuthorID], obj}, ir.IRString(b.Title))
	}
	return f
}

// Literature returns the schema, its ids and the in-memory family.
func Literature(t testing.TB) (*schema.Model, LiteratureIDs, *fca.Family) {
	t.Helper()
	m, ids := LiteratureModel(t)
	return m, ids, LiteratureFamily(t, m, ids)
}

// LiteratureDDL creates the Literature tables in SQLite.
const LiteratureDDL = `
CREATE TABLE Author (
    id   INTEGER PRIMARY KEY,
    name TEXT NOT NULL
);
CREATE TABLE Book (
    id        INTEGER PRIMARY KEY,
    title     TEXT NOT NULL,
    published DATE,
    author_id INTEGER REFERENCES Author(id),
    in_print  INTEGER NOT NULL DEFAULT 0
);
`

// OpenSQLite opens a private in-memory SQLite database that is closed when
// the test ends. A single connection keeps every statement on the same
// database.
func OpenSQLite(t testing.TB) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

// SeedLiterature creates and fills the Literature tables.
func SeedLiterature(t testing.TB, db *sql.DB) {
	t.Helper()
	_, err := db.Exec(LiteratureDDL)
	require.NoError(t, err)

	for _, a := range Authors {
		_, err := db.Exec(`INSERT INTO Author (id, name) VALUES (?, ?)`, a.ID, a.Name)
		require.NoError(t, err, "insert author %d", a.ID)
	}
	for _, b := range Books {
		inPrint := 0
		if b.InPrint {
			inPrint = 1
		}
		_, err := db.Exec(`INSERT INTO Book (id, title, published, author_id, in_print) VALUES (?, ?, ?, ?, ?)`,
			b.ID, b.Title, b.Published.Format(time.DateOnly), b.AuthorID, inPrint)
		require.NoError(t, err, "insert book %d", b.ID)
	}
}

// LiteratureDB opens an in-memory database seeded with the Literature data.
func LiteratureDB(t testing.TB) *sql.DB {
	t.Helper()
	db := OpenSQLite(t)
	SeedLiterature(t, db)
	return db
}

// Titles returns the titles of books by the given author.
func Titles(authorID int) []string {
	var titles []string
	for _, b := range Books {
		if b.AuthorID == authorID {
			titles = append(titles, b.Title)
		}
	}
	return titles
}

// Pairs returns every "author|title" pair of the wrote relation.
func Pairs() []string {
	names := make(map[int]string)
	for _, a := range Authors {
		names[a.ID] = a.Name
	}
	var pairs []string
	for _, b := range Books {
		pairs = append(pairs, fmt.Sprintf("%s|%s", names[b.AuthorID], b.Title))
	}
	return pairs
}

// YearLabel is the date interval label for the decade starting at year.
func YearLabel(year int) ir.IRValue {
	return scale.Label(year, year+9)
}

