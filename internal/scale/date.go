package scale

import (
	"fmt"
	"strconv"
	"time"

	"github.com/roach88/dbnav/internal/ir"
	"github.com/roach88/dbnav/internal/queryir"
)

// DateInterval constrains a date value expression to a closed range of
// whole years, [min, max] in labels. The scale is divided into buckets of
// Step years for histograms.
type DateInterval struct {
	min, max, step int
}

// NewDateInterval creates a date scale over [min, max]. When step does not
// divide max-min, max is raised to the next whole bucket.
func NewDateInterval(min, max, step int) (DateInterval, error) {
	if step <= 0 {
		return DateInterval{}, fmt.Errorf("date interval step must be positive, got %d", step)
	}
	if max < min {
		return DateInterval{}, fmt.Errorf("date interval bounds reversed: %d > %d", min, max)
	}
	if rem := (max - min) % step; rem != 0 {
		max += step - rem
	}
	return DateInterval{min: min, max: max, step: step}, nil
}

func (DateInterval) scale() {}

// Min returns the lowest year of the scale.
func (d DateInterval) Min() int { return d.min }

// Max returns the highest year of the scale, rounded to a whole bucket.
func (d DateInterval) Max() int { return d.max }

// Step returns the bucket size in years.
func (d DateInterval) Step() int { return d.step }

// Bins returns the number of histogram buckets (at least one).
func (d DateInterval) Bins() int {
	return max((d.max-d.min)/d.step, 1)
}

// Kind implements Scale.
func (DateInterval) Kind() Kind { return KindDateInterval }

// Label builds a [lo, hi] label.
func Label(lo, hi int) ir.IRValue {
	return ir.IRArray{ir.IRInt(lo), ir.IRInt(hi)}
}

// Years decodes a [lo, hi] label without range checks.
func Years(label ir.IRValue) (lo, hi int, err error) {
	arr, ok := label.(ir.IRArray)
	if !ok || len(arr) != 2 {
		return 0, 0, malformed(KindDateInterval, label, "expected a [min, max] year pair")
	}
	l, ok1 := arr[0].(ir.IRInt)
	h, ok2 := arr[1].(ir.IRInt)
	if !ok1 || !ok2 {
		return 0, 0, malformed(KindDateInterval, label, "years must be integers")
	}
	if l > h {
		return 0, 0, malformed(KindDateInterval, label, "min year exceeds max year")
	}
	return int(l), int(h), nil
}

// Validate implements Scale. Labels must lie within the scale bounds.
func (d DateInterval) Validate(label ir.IRValue) error {
	lo, hi, err := Years(label)
	if err != nil {
		return err
	}
	if lo < d.min || hi > d.max {
		return malformed(KindDateInterval, label, "outside scale [%d, %d]", d.min, d.max)
	}
	return nil
}

// Pattern implements Scale.
func (d DateInterval) Pattern(label ir.IRValue) (queryir.Predicate, error) {
	if err := d.Validate(label); err != nil {
		return nil, err
	}
	lo, hi, _ := Years(label)
	return queryir.Between{
		Low:  ir.IRString(fmt.Sprintf("%04d-01-01", lo)),
		High: ir.IRString(fmt.Sprintf("%04d-12-31", hi)),
	}, nil
}

// Stats implements Scale: a per-bucket histogram plus observed bounds.
// Values outside the scale are counted but not binned.
func (d DateInterval) Stats(values []any) Stats {
	stats := Stats{
		Count:     len(values),
		Histogram: make([]int, d.Bins()),
		ScaleMin:  ptr(d.min),
		ScaleMax:  ptr(d.max),
	}
	for _, v := range values {
		year, ok := YearOf(v)
		if !ok {
			continue
		}
		if stats.DataMin == nil || year < *stats.DataMin {
			stats.DataMin = ptr(year)
		}
		if stats.DataMax == nil || year > *stats.DataMax {
			stats.DataMax = ptr(year)
		}
		if year < d.min || year > d.max {
			continue
		}
		bin := min((year-d.min)/d.step, len(stats.Histogram)-1)
		stats.Histogram[bin]++
	}
	return stats
}

// Top implements Scale.
func (d DateInterval) Top() ir.IRValue { return Label(d.min, d.max) }

// Merge implements Scale: the interval hull.
func (d DateInterval) Merge(x, y ir.IRValue) (ir.IRValue, error) {
	if err := d.Validate(x); err != nil {
		return nil, err
	}
	if err := d.Validate(y); err != nil {
		return nil, err
	}
	xl, xh, _ := Years(x)
	yl, yh, _ := Years(y)
	return Label(min(xl, yl), max(xh, yh)), nil
}

// Admits implements Scale. A specific label that is a single year or a
// year range is admitted when it lies inside general.
func (d DateInterval) Admits(general, specific ir.IRValue) (bool, error) {
	if err := d.Validate(general); err != nil {
		return false, err
	}
	gl, gh, _ := Years(general)
	sl, sh, err := Years(specific)
	if err != nil {
		return false, nil
	}
	return gl <= sl && sh <= gh, nil
}

// Cell implements Scale: dates become their year. A year range that spans
// more than one year stays a [lo, hi] pair.
func (DateInterval) Cell(value any) any {
	if pair, ok := value.([]any); ok && len(pair) == 2 {
		lo, ok1 := YearOf(pair[0])
		hi, ok2 := YearOf(pair[1])
		if ok1 && ok2 && lo != hi {
			return []any{int64(lo), int64(hi)}
		}
	}
	if year, ok := YearOf(value); ok {
		return int64(year)
	}
	return value
}

// Record implements Scale.
func (d DateInterval) Record() ir.IRObject {
	return ir.Tag(classDateInterval, ir.IRObject{
		"min":  ir.IRInt(d.min),
		"max":  ir.IRInt(d.max),
		"step": ir.IRInt(d.step),
	})
}

// YearOf extracts the calendar year from a driver value: time.Time, an
// ISO-8601 date string or its bytes, a bare integer year, or a year range
// given as a slice, which yields its first year.
func YearOf(v any) (int, bool) {
	switch val := v.(type) {
	case time.Time:
		return val.Year(), true
	case int64:
		return int(val), true
	case int:
		return val, true
	case []byte:
		return YearOf(string(val))
	case []any:
		if len(val) == 0 {
			return 0, false
		}
		return YearOf(val[0])
	case string:
		if len(val) < 4 {
			return 0, false
		}
		year, err := strconv.Atoi(val[:4])
		if err != nil {
			return 0, false
		}
		return year, true
	default:
		return 0, false
	}
}

func ptr(n int) *int { return &n }
