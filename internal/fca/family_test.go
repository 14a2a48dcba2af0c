package fca_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dbnav/internal/fca"
	"github.com/roach88/dbnav/internal/ir"
	"github.com/roach88/dbnav/internal/scale"
	"github.com/roach88/dbnav/internal/schema"
	"github.com/roach88/dbnav/internal/testutil"
)

func TestSortCounts(t *testing.T) {
	_, _, f := testutil.Literature(t)

	counts, err := f.SortCounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[schema.Sort]int{"Author": 3, "Book": 4}, counts)
}

func TestAddTupleValidation(t *testing.T) {
	_, ids, f := testutil.Literature(t)
	authors := f.Objects().Extent("Author")
	books := f.Objects().Extent("Book")

	_, err := f.AddTuple(ids.Wrote, []string{authors[0]})
	assert.ErrorContains(t, err, "arity is 2")

	_, err = f.AddTuple(ids.Wrote, []string{books[0], authors[0]}, ir.IRString("x"))
	assert.ErrorContains(t, err, "requires Author")

	_, err = f.AddTuple(ids.Published, []string{books[0]}, scale.Label(1700, 1700))
	assert.Error(t, err)

	_, err = f.AddTuple("m99", []string{books[0]})
	assert.True(t, schema.IsUnknownMVA(err))

	_, err = f.AddObject("Nobody", "Publisher")
	assert.ErrorContains(t, err, "unknown sort")
}

func TestFormalContextExtentIntent(t *testing.T) {
	fc := fca.NewFormalContext("a", "b", "c")
	g1 := fc.AddObject("one", "a", "b")
	g2 := fc.AddObject("two", "b", "c")
	g3 := fc.AddObject("three", "b")

	assert.Equal(t, []string{g1, g2, g3}, fc.Extent("b"))
	assert.Equal(t, []string{g1}, fc.Extent("a", "b"))
	assert.Equal(t, []string{g1, g2, g3}, fc.Extent())
	assert.Equal(t, []string{"b"}, fc.Intent(g1, g2))
	assert.Equal(t, []string{"a", "b"}, fc.Intent(g1))

	fc.UnsetIncidence(g1, "a")
	assert.Empty(t, fc.Extent("a"))
	require.NoError(t, fc.SetIncidence(g3, "c"))
	assert.Equal(t, []string{g2, g3}, fc.Extent("c"))
	assert.Error(t, fc.SetIncidence("g99", "a"))

	name, ok := fc.Name(g2)
	assert.True(t, ok)
	assert.Equal(t, "two", name)
}

func TestRelationContextExtent(t *testing.T) {
	rc := fca.NewRelationContext(1)
	t1, err := rc.AddTuple([]string{"g1"}, scale.Label(1937, 1937))
	require.NoError(t, err)
	_, err = rc.AddTuple([]string{"g2"}, scale.Label(1815, 1815))
	require.NoError(t, err)
	require.NoError(t, rc.SetIncidence(t1, scale.Label(1815, 1815)))

	_, err = rc.AddTuple([]string{"g1", "g2"})
	assert.Error(t, err)

	s, err := scale.NewDateInterval(1800, 2000, 10)
	require.NoError(t, err)
	matches, err := rc.Extent(s, testutil.YearLabel(1810))
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, []string{"g1"}, matches[0].Endpoints)
	assert.Equal(t, scale.Label(1815, 1815), matches[0].Value)

	_, err = rc.Extent(s, scale.Label(1990, 1980))
	assert.True(t, scale.IsMalformedLabel(err))

	assert.Len(t, rc.ValuesOf("g1"), 2)
	assert.Empty(t, rc.ValuesOf("g3"))
}

func TestFamilyRecordRoundTrip(t *testing.T) {
	m, _, f := testutil.Literature(t)

	first, err := ir.MarshalCanonical(f.Record())
	require.NoError(t, err)

	decoded, err := ir.UnmarshalIRValue(first)
	require.NoError(t, err)
	back, err := fca.FamilyFromRecord(decoded, m)
	require.NoError(t, err)

	second, err := ir.MarshalCanonical(back.Record())
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
	assert.Len(t, back.Objects().Extent("Author"), 3)
}

func TestFamilyFromRecordRejectsUnknownSort(t *testing.T) {
	_, _, f := testutil.Literature(t)
	rec := f.Record()

	other := schema.NewModel()
	require.NoError(t, other.AddSort("Author", "{0}.name"))
	_, err := fca.FamilyFromRecord(rec, other)
	assert.ErrorContains(t, err, "unknown sort Book")
}
