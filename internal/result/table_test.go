package result

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColumnNames(t *testing.T) {
	assert.Equal(t, "Author:x1", NodeColumn("x1", "Author").Name)
	assert.Equal(t, "wrote(x1,x2)", RNodeColumn("e1", "m4", "wrote", []string{"x1", "x2"}).Name)
	assert.Equal(t, "x1.name", DisplayColumn("x1", "m1", "name").Name)
}

func TestIndex(t *testing.T) {
	table := Table{Columns: []Column{
		NodeColumn("x1", "Author"),
		DisplayColumn("x1", "m1", "name"),
		RNodeColumn("x1", "m4", "wrote", []string{"x1", "x2"}),
	}}

	assert.Equal(t, 0, table.Index(KindNode, "x1"))
	assert.Equal(t, 1, table.Index(KindDisplay, "x1"))
	assert.Equal(t, 2, table.Index(KindRNode, "x1"), "relation columns match on the rnode id")
	assert.Equal(t, -1, table.Index(KindNode, "x2"))
}

func TestValuesAndStrings(t *testing.T) {
	table := Table{
		Columns: []Column{NodeColumn("x1", "Author"), NodeColumn("x2", "Book")},
		Rows:    [][]any{{"Tolkien", []byte("The Hobbit")}, {"Herbert", nil}, {int64(7), true}},
	}

	assert.Equal(t, 3, table.Len())
	assert.Equal(t, []string{"Author:x1", "Book:x2"}, table.Names())
	assert.Equal(t, []any{"Tolkien", "Herbert", int64(7)}, table.Values(0))
	assert.Equal(t, [][]string{{"Tolkien", "The Hobbit"}, {"Herbert", ""}, {"7", "true"}}, table.Strings())
}

func TestDegenerateTables(t *testing.T) {
	assert.Equal(t, 0, Empty().Len())
	assert.Empty(t, Empty().Columns)

	unit := Unit()
	assert.Equal(t, 1, unit.Len())
	assert.Empty(t, unit.Columns)
	assert.Empty(t, unit.Rows[0])
}
