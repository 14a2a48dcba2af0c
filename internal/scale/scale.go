package scale

import (
	"fmt"

	"github.com/roach88/dbnav/internal/ir"
	"github.com/roach88/dbnav/internal/queryir"
)

// Kind names a scale variant. Kinds appear in configuration and CUE specs.
type Kind string

const (
	KindBoolean      Kind = "boolean"
	KindPrefix       Kind = "prefix"
	KindDateInterval Kind = "date_interval"
)

// Scale is the contract every constraint strategy honors.
//
// This is a sealed interface - only types in this package implement it.
type Scale interface {
	// Kind identifies the variant.
	Kind() Kind

	// Validate reports a MalformedLabelError when label is outside the
	// scale's legal domain.
	Validate(label ir.IRValue) error

	// Pattern returns the predicate a label imposes on the value expression.
	Pattern(label ir.IRValue) (queryir.Predicate, error)

	// Stats summarizes observed values of the value expression.
	Stats(values []any) Stats

	// Top returns the least restrictive label.
	Top() ir.IRValue

	// Merge returns a label admitting everything either input admits.
	Merge(a, b ir.IRValue) (ir.IRValue, error)

	// Admits reports whether general is at most as restrictive as specific,
	// i.e. every value matched by specific is matched by general.
	Admits(general, specific ir.IRValue) (bool, error)

	// Cell converts a value of the value expression, as either backend
	// reports it, to the value a result table carries.
	Cell(value any) any

	// Record encodes the scale as a tagged record.
	Record() ir.IRObject

	scale() // Marker method - seals interface to this package
}

// Stats is the summary a scale produces over observed values. Fields that do
// not apply to a variant are left empty.
type Stats struct {
	Count     int         `json:"count"`
	Freq      []Frequency `json:"freq,omitempty"`
	Histogram []int       `json:"histogram,omitempty"`
	DataMin   *int        `json:"data_min,omitempty"`
	DataMax   *int        `json:"data_max,omitempty"`
	ScaleMin  *int        `json:"scale_min,omitempty"`
	ScaleMax  *int        `json:"scale_max,omitempty"`
}

// Frequency is one row of a value frequency table.
type Frequency struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Record classes.
const (
	classBoolean      = "BooleanScale"
	classPrefix       = "PrefixScale"
	classDateInterval = "DateIntervalScale"
)

// FromRecord decodes a scale record produced by Scale.Record.
func FromRecord(v ir.IRValue) (Scale, error) {
	cls, err := ir.ClassOf(v)
	if err != nil {
		return nil, fmt.Errorf("decode scale: %w", err)
	}
	rec := v.(ir.IRObject)

	switch cls {
	case classBoolean:
		return Boolean{}, nil
	case classPrefix:
		return Prefix{}, nil
	case classDateInterval:
		lo, err := rec.Int("min")
		if err != nil {
			return nil, fmt.Errorf("decode scale: %w", err)
		}
		hi, err := rec.Int("max")
		if err != nil {
			return nil, fmt.Errorf("decode scale: %w", err)
		}
		step, err := rec.Int("step")
		if err != nil {
			return nil, fmt.Errorf("decode scale: %w", err)
		}
		return NewDateInterval(int(lo), int(hi), int(step))
	default:
		return nil, fmt.Errorf("decode scale: unknown class %q", cls)
	}
}
