package queryir

import (
	"fmt"
	"reflect"

	"github.com/roach88/dbnav/internal/ir"
)

// ValidationResult contains the problems found in a predicate tree.
type ValidationResult struct {
	// Valid is true when the predicate can be compiled by every backend.
	Valid bool

	// Problems lists malformed nodes. Empty when Valid is true.
	Problems []string
}

// Validate checks that a predicate tree is well formed:
//  1. No nil predicates inside And
//  2. HasPrefix carries a non-empty prefix
//  3. Between bounds are non-null and share an IR type
//
// Validate is a pure function with no side effects.
func Validate(p Predicate) ValidationResult {
	v := &validator{
		problems: []string{},
	}
	v.validatePredicate(p)

	return ValidationResult{
		Valid:    len(v.problems) == 0,
		Problems: v.problems,
	}
}

// validator accumulates problems during traversal.
type validator struct {
	problems []string
}

func (v *validator) addProblem(format string, args ...any) {
	v.problems = append(v.problems, fmt.Sprintf(format, args...))
}

func (v *validator) validatePredicate(p Predicate) {
	if p == nil {
		v.addProblem("nil predicate")
		return
	}

	switch pred := p.(type) {
	case IsNotNull, EqualsOne:
		// No operands.
	case HasPrefix:
		if pred.Prefix == "" {
			v.addProblem("empty prefix - use IsNotNull for the unconstrained case")
		}
	case Between:
		v.validateBetween(pred)
	case And:
		for _, sub := range pred.Predicates {
			v.validatePredicate(sub)
		}
	default:
		v.addProblem("unknown predicate type: %T", p)
	}
}

func (v *validator) validateBetween(b Between) {
	if isNull(b.Low) || isNull(b.High) {
		v.addProblem("BETWEEN bound is NULL")
		return
	}
	if reflect.TypeOf(b.Low) != reflect.TypeOf(b.High) {
		v.addProblem("BETWEEN bounds have different types: %T and %T", b.Low, b.High)
		return
	}
	if lo, ok := b.Low.(ir.IRInt); ok && lo > b.High.(ir.IRInt) {
		v.addProblem("BETWEEN bounds are reversed: %d > %d", lo, b.High.(ir.IRInt))
	}
	if lo, ok := b.Low.(ir.IRString); ok && lo > b.High.(ir.IRString) {
		v.addProblem("BETWEEN bounds are reversed: %q > %q", lo, b.High.(ir.IRString))
	}
}

func isNull(v ir.IRValue) bool {
	if v == nil {
		return true
	}
	_, null := v.(ir.IRNull)
	return null
}
