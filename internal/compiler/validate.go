package compiler

import (
	"context"
	"fmt"
	"strings"
)

// Validation error codes (E100-E199)
const (
	ErrPrintNoPlaceholder = "E101" // print expression never references {0}
	ErrUnscaledAttribute  = "E102" // attribute cannot be navigated
	ErrNoExpression       = "E103" // attribute unusable by the SQL backend
	ErrEmptySort          = "E104" // data block has no object of a sort
)

// ValidationError represents a spec validation finding.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate reports everything in a compiled spec that compiles but will
// not navigate well. Returns all findings (does not fail-fast).
func Validate(spec *Spec) []ValidationError {
	var errs []ValidationError

	for _, sort := range spec.Model.Sorts() {
		expr, _ := spec.Model.PrintExpr(sort)
		if !strings.Contains(expr, "{0}") {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("sorts.%s.print", sort),
				Message: fmt.Sprintf("print expression %q does not reference {0}", expr),
				Code:    ErrPrintNoPlaceholder,
			})
		}
	}

	for _, mva := range spec.Model.MVAs() {
		if mva.Scale == nil {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("attributes.%s.scale", mva.ID),
				Message: fmt.Sprintf("attribute %q has no scale and cannot be added to a graph", mva.Name),
				Code:    ErrUnscaledAttribute,
			})
		}
		if mva.Expr == "" {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("attributes.%s.expr", mva.ID),
				Message: fmt.Sprintf("attribute %q has no value expression and only works in memory", mva.Name),
				Code:    ErrNoExpression,
			})
		}
	}

	if spec.Family != nil {
		counts, _ := spec.Family.SortCounts(context.Background())
		for _, sort := range spec.Model.Sorts() {
			if counts[sort] == 0 {
				errs = append(errs, ValidationError{
					Field:   "data.objects",
					Message: fmt.Sprintf("no object of sort %s", sort),
					Code:    ErrEmptySort,
				})
			}
		}
	}

	return errs
}
