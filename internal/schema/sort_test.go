package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortSup(t *testing.T) {
	sorts := []Sort{"Author", "Book", "Publisher"}

	for _, s := range sorts {
		got, err := SortSup(Unbound, s)
		require.NoError(t, err)
		assert.Equal(t, s, got, "sup(unbound, s) == s")

		got, err = SortSup(s, Unbound)
		require.NoError(t, err)
		assert.Equal(t, s, got, "sup(s, unbound) == s")

		got, err = SortSup(s, s)
		require.NoError(t, err)
		assert.Equal(t, s, got, "sup(s, s) == s")
	}

	got, err := SortSup(Unbound, Unbound)
	require.NoError(t, err)
	assert.Equal(t, Unbound, got)
}

func TestSortSupUndefined(t *testing.T) {
	_, err := SortSup("Author", "Book")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSupremumUndefined)
	assert.Contains(t, err.Error(), "Author")
	assert.Contains(t, err.Error(), "Book")
}

func TestSortLeq(t *testing.T) {
	assert.True(t, SortLeq(Unbound, "Author"))
	assert.True(t, SortLeq("Author", "Author"))
	assert.False(t, SortLeq("Author", Unbound))
	assert.False(t, SortLeq("Author", "Book"))
}

func TestSortString(t *testing.T) {
	assert.Equal(t, "<unbound>", Unbound.String())
	assert.Equal(t, "Book", Sort("Book").String())
}
