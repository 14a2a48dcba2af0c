package scale

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dbnav/internal/ir"
	"github.com/roach88/dbnav/internal/queryir"
)

func TestDateIntervalScenario(t *testing.T) {
	d, err := NewDateInterval(1800, 2000, 10)
	require.NoError(t, err)

	assert.True(t, ir.Equal(Label(1800, 2000), d.Top()))

	pred, err := d.Pattern(Label(1990, 1999))
	require.NoError(t, err)
	assert.Equal(t, "{0} BETWEEN '1990-01-01' AND '1999-12-31'", queryir.Template(pred))
}

func TestDateIntervalRoundsMaxUp(t *testing.T) {
	d, err := NewDateInterval(1800, 2005, 10)
	require.NoError(t, err)

	assert.Equal(t, 2010, d.Max())
	assert.Equal(t, 21, d.Bins())
	assert.True(t, ir.Equal(Label(1800, 2010), d.Top()))
}

func TestNewDateIntervalRejectsBadConfig(t *testing.T) {
	_, err := NewDateInterval(1800, 2000, 0)
	require.Error(t, err)

	_, err = NewDateInterval(2000, 1800, 10)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	d, err := NewDateInterval(1800, 2000, 10)
	require.NoError(t, err)

	tests := []struct {
		name  string
		scale Scale
		label ir.IRValue
		ok    bool
	}{
		{"boolean one", Boolean{}, ir.IRString("1"), true},
		{"boolean zero", Boolean{}, ir.IRString("0"), false},
		{"boolean int", Boolean{}, ir.IRInt(1), false},
		{"prefix empty", Prefix{}, ir.IRString(""), true},
		{"prefix text", Prefix{}, ir.IRString("Tol"), true},
		{"prefix int", Prefix{}, ir.IRInt(3), false},
		{"prefix nil", Prefix{}, nil, false},
		{"date in range", d, Label(1990, 1999), true},
		{"date single year", d, Label(1954, 1954), true},
		{"date reversed", d, Label(1999, 1990), false},
		{"date out of range", d, Label(1700, 1990), false},
		{"date wrong shape", d, ir.IRArray{ir.IRInt(1990)}, false},
		{"date strings", d, ir.IRArray{ir.IRString("1990"), ir.IRString("1999")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.scale.Validate(tt.label)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, IsMalformedLabel(err))
		})
	}
}

func TestPatternRejectsMalformedLabel(t *testing.T) {
	_, err := Boolean{}.Pattern(ir.IRString("yes"))
	require.Error(t, err)

	var mle *MalformedLabelError
	require.ErrorAs(t, err, &mle)
	assert.Equal(t, KindBoolean, mle.Scale)
	assert.Contains(t, err.Error(), `"yes"`)
}

func TestPatterns(t *testing.T) {
	pred, err := Boolean{}.Pattern(BooleanLabel)
	require.NoError(t, err)
	assert.Equal(t, "{0} = 1", queryir.Template(pred))

	pred, err = Prefix{}.Pattern(ir.IRString(""))
	require.NoError(t, err)
	assert.Equal(t, "{0} IS NOT NULL", queryir.Template(pred))

	pred, err = Prefix{}.Pattern(ir.IRString("The"))
	require.NoError(t, err)
	assert.Equal(t, "{0} LIKE 'The%'", queryir.Template(pred))
}

func TestTop(t *testing.T) {
	assert.Equal(t, ir.IRString("1"), Boolean{}.Top())
	assert.Equal(t, ir.IRString(""), Prefix{}.Top())
}

func TestMerge(t *testing.T) {
	d, err := NewDateInterval(1800, 2000, 10)
	require.NoError(t, err)

	tests := []struct {
		name     string
		scale    Scale
		a, b     ir.IRValue
		expected ir.IRValue
	}{
		{"boolean", Boolean{}, BooleanLabel, BooleanLabel, BooleanLabel},
		{"prefix common", Prefix{}, ir.IRString("The Hob"), ir.IRString("The Lor"), ir.IRString("The ")},
		{"prefix disjoint", Prefix{}, ir.IRString("A"), ir.IRString("B"), ir.IRString("")},
		{"prefix with top", Prefix{}, ir.IRString("A"), ir.IRString(""), ir.IRString("")},
		{"prefix multibyte", Prefix{}, ir.IRString("Brontë"), ir.IRString("Bronté"), ir.IRString("Bront")},
		{"date hull", d, Label(1990, 1999), Label(1950, 1960), Label(1950, 1999)},
		{"date nested", d, Label(1900, 1999), Label(1950, 1960), Label(1900, 1999)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.scale.Merge(tt.a, tt.b)
			require.NoError(t, err)
			assert.True(t, ir.Equal(tt.expected, got), "got %s", ir.Format(got))

			ok, err := tt.scale.Admits(got, tt.a)
			require.NoError(t, err)
			assert.True(t, ok, "merged label must admit the first input")
			ok, err = tt.scale.Admits(got, tt.b)
			require.NoError(t, err)
			assert.True(t, ok, "merged label must admit the second input")
		})
	}
}

func TestMergeRejectsMalformed(t *testing.T) {
	_, err := Boolean{}.Merge(BooleanLabel, ir.IRString("0"))
	assert.True(t, IsMalformedLabel(err))

	_, err = Prefix{}.Merge(ir.IRInt(1), ir.IRString(""))
	assert.True(t, IsMalformedLabel(err))
}

func TestAdmits(t *testing.T) {
	d, err := NewDateInterval(1800, 2000, 10)
	require.NoError(t, err)

	tests := []struct {
		name              string
		scale             Scale
		general, specific ir.IRValue
		expected          bool
	}{
		{"prefix top admits all", Prefix{}, ir.IRString(""), ir.IRString("anything"), true},
		{"prefix match", Prefix{}, ir.IRString("The"), ir.IRString("The Hobbit"), true},
		{"prefix miss", Prefix{}, ir.IRString("The"), ir.IRString("Dune"), false},
		{"prefix ignores ascii case", Prefix{}, ir.IRString("the h"), ir.IRString("The Hobbit"), true},
		{"prefix keeps non-ascii case", Prefix{}, ir.IRString("é"), ir.IRString("Émile"), false},
		{"prefix non-string value", Prefix{}, ir.IRString(""), ir.IRInt(3), false},
		{"boolean", Boolean{}, BooleanLabel, BooleanLabel, true},
		{"date inside", d, Label(1950, 1959), Label(1954, 1954), true},
		{"date edge", d, Label(1950, 1959), Label(1959, 1959), true},
		{"date outside", d, Label(1950, 1959), Label(1960, 1960), false},
		{"date straddle", d, Label(1950, 1959), Label(1955, 1965), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.scale.Admits(tt.general, tt.specific)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestPrefixStats(t *testing.T) {
	stats := Prefix{}.Stats([]any{"Dune", "Beloved", []byte("Dune"), nil})

	assert.Equal(t, 4, stats.Count)
	assert.Equal(t, []Frequency{{Value: "Beloved", Count: 1}, {Value: "Dune", Count: 2}}, stats.Freq)
}

func TestDateIntervalStats(t *testing.T) {
	d, err := NewDateInterval(1900, 2000, 25)
	require.NoError(t, err)

	stats := d.Stats([]any{
		time.Date(1954, 7, 29, 0, 0, 0, 0, time.UTC),
		"1937-09-21",
		int64(2000),
		"1850-01-01",
		"n/a",
	})

	assert.Equal(t, 5, stats.Count)
	assert.Equal(t, []int{0, 1, 1, 1}, stats.Histogram)
	require.NotNil(t, stats.DataMin)
	require.NotNil(t, stats.DataMax)
	assert.Equal(t, 1850, *stats.DataMin)
	assert.Equal(t, 2000, *stats.DataMax)
	assert.Equal(t, 1900, *stats.ScaleMin)
	assert.Equal(t, 2000, *stats.ScaleMax)
}

func TestBooleanStats(t *testing.T) {
	stats := Boolean{}.Stats([]any{int64(1), int64(1)})
	assert.Equal(t, Stats{Count: 2}, stats)
}

func TestCell(t *testing.T) {
	d, err := NewDateInterval(1800, 2000, 10)
	require.NoError(t, err)

	tests := []struct {
		name     string
		scale    Scale
		value    any
		expected any
	}{
		{"boolean int", Boolean{}, int64(1), int64(1)},
		{"boolean label", Boolean{}, "1", int64(1)},
		{"boolean bytes", Boolean{}, []byte("1"), int64(1)},
		{"boolean true", Boolean{}, true, int64(1)},
		{"boolean zero", Boolean{}, int64(0), int64(0)},
		{"boolean missing", Boolean{}, nil, int64(0)},
		{"prefix string", Prefix{}, "Emma", "Emma"},
		{"prefix bytes", Prefix{}, []byte("Emma"), "Emma"},
		{"prefix null", Prefix{}, nil, nil},
		{"date time", d, time.Date(1815, 12, 23, 0, 0, 0, 0, time.UTC), int64(1815)},
		{"date string", d, "1817-12-20", int64(1817)},
		{"date single year pair", d, []any{int64(1937), int64(1937)}, int64(1937)},
		{"date range pair", d, []any{int64(1810), int64(1819)}, []any{int64(1810), int64(1819)}},
		{"date null", d, nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.scale.Cell(tt.value))
		})
	}
}

func TestRecordRoundTrip(t *testing.T) {
	d, err := NewDateInterval(1800, 2005, 10)
	require.NoError(t, err)

	for _, s := range []Scale{Boolean{}, Prefix{}, d} {
		t.Run(string(s.Kind()), func(t *testing.T) {
			first, err := ir.MarshalCanonical(s.Record())
			require.NoError(t, err)

			decoded, err := FromRecord(s.Record())
			require.NoError(t, err)
			assert.Equal(t, s, decoded)

			second, err := ir.MarshalCanonical(decoded.Record())
			require.NoError(t, err)
			assert.Equal(t, string(first), string(second))
		})
	}
}

func TestFromRecordUnknownClass(t *testing.T) {
	_, err := FromRecord(ir.Tag("OrdinalScale", ir.IRObject{}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OrdinalScale")
}

func TestYearOf(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want int
		ok   bool
	}{
		{"time", time.Date(1937, 9, 21, 0, 0, 0, 0, time.UTC), 1937, true},
		{"iso string", "1815-12-23", 1815, true},
		{"bytes", []byte("1977-09-15"), 1977, true},
		{"int64", int64(1990), 1990, true},
		{"year range", []any{int64(1810), int64(1819)}, 1810, true},
		{"empty range", []any{}, 0, false},
		{"short string", "19", 0, false},
		{"nil", nil, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := YearOf(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
