package scale

import (
	"github.com/roach88/dbnav/internal/ir"
	"github.com/roach88/dbnav/internal/queryir"
)

// BooleanLabel is the only legal Boolean label.
const BooleanLabel = ir.IRString("1")

// Boolean constrains a 0/1 value expression to 1. Foreign-key attributes are
// Boolean-scaled.
type Boolean struct{}

func (Boolean) scale() {}

// Kind implements Scale.
func (Boolean) Kind() Kind { return KindBoolean }

// Validate implements Scale.
func (Boolean) Validate(label ir.IRValue) error {
	if s, ok := label.(ir.IRString); !ok || s != BooleanLabel {
		return malformed(KindBoolean, label, `only "1" is allowed`)
	}
	return nil
}

// Pattern implements Scale.
func (b Boolean) Pattern(label ir.IRValue) (queryir.Predicate, error) {
	if err := b.Validate(label); err != nil {
		return nil, err
	}
	return queryir.EqualsOne{}, nil
}

// Stats implements Scale. Boolean relations have no summary beyond a count.
func (Boolean) Stats(values []any) Stats {
	return Stats{Count: len(values)}
}

// Top implements Scale.
func (Boolean) Top() ir.IRValue { return BooleanLabel }

// Merge implements Scale. Only equal labels merge.
func (b Boolean) Merge(x, y ir.IRValue) (ir.IRValue, error) {
	if err := b.Validate(x); err != nil {
		return nil, err
	}
	if err := b.Validate(y); err != nil {
		return nil, err
	}
	return BooleanLabel, nil
}

// Admits implements Scale.
func (b Boolean) Admits(general, specific ir.IRValue) (bool, error) {
	if err := b.Validate(general); err != nil {
		return false, err
	}
	return ir.Equal(specific, BooleanLabel), nil
}

// Cell implements Scale: 1 when the value is one, 0 otherwise. A missing
// value is not one.
func (Boolean) Cell(value any) any {
	switch val := value.(type) {
	case int64:
		if val == 1 {
			return int64(1)
		}
	case int:
		if val == 1 {
			return int64(1)
		}
	case float64:
		if val == 1 {
			return int64(1)
		}
	case bool:
		if val {
			return int64(1)
		}
	case []byte:
		if string(val) == "1" {
			return int64(1)
		}
	case string:
		if val == "1" {
			return int64(1)
		}
	}
	return int64(0)
}

// Record implements Scale.
func (Boolean) Record() ir.IRObject {
	return ir.Tag(classBoolean, ir.IRObject{})
}
