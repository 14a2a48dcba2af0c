package harness

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/dbnav/internal/navigator"
	"github.com/roach88/dbnav/internal/result"
	"github.com/roach88/dbnav/internal/schema"
)

// AssertionError is returned when an assertion fails.
// It includes the table for debugging context.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
	Table    result.Table
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Table.Columns) > 0 {
		fmt.Fprintf(&buf, "\nTable:\n  %s\n", strings.Join(e.Table.Names(), " | "))
		for _, row := range e.Table.Strings() {
			fmt.Fprintf(&buf, "  %s\n", strings.Join(row, " | "))
		}
	}
	return buf.String()
}

// AssertionContext gives assertions access to the session.
type AssertionContext struct {
	Ctx     context.Context
	Session *navigator.Session
}

func assertRowCount(tbl result.Table, a Assertion) error {
	if tbl.Len() != *a.Count {
		return &AssertionError{
			Type:     AssertRowCount,
			Expected: fmt.Sprintf("%d rows", *a.Count),
			Actual:   fmt.Sprintf("%d rows", tbl.Len()),
			Table:    tbl,
		}
	}
	return nil
}

// assertRows checks whether some row renders exactly as a.Row; want says
// whether it should.
func assertRows(tbl result.Table, a Assertion, want bool) error {
	found := slices.ContainsFunc(tbl.Strings(), func(row []string) bool {
		return slices.Equal(row, a.Row)
	})
	if found == want {
		return nil
	}

	expected, actual := "row", "not found"
	if !want {
		expected, actual = "no row", "found"
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("%s %q", expected, a.Row),
		Actual:   actual,
		Table:    tbl,
	}
}

func assertColumns(tbl result.Table, a Assertion) error {
	if names := tbl.Names(); !slices.Equal(names, a.Names) {
		return &AssertionError{
			Type:     AssertColumns,
			Expected: fmt.Sprintf("columns %q", a.Names),
			Actual:   fmt.Sprintf("columns %q", names),
			Table:    tbl,
		}
	}
	return nil
}

func assertNodeSort(s *navigator.Session, a Assertion) error {
	node, ok := s.Graph().Node(a.Node)
	if !ok {
		return &AssertionError{
			Type:     AssertNodeSort,
			Expected: fmt.Sprintf("node %s", a.Node),
			Actual:   "no such node",
		}
	}
	if node.Sort != schema.Sort(a.Sort) {
		return &AssertionError{
			Type:     AssertNodeSort,
			Expected: fmt.Sprintf("node %s of sort %s", a.Node, schema.Sort(a.Sort)),
			Actual:   fmt.Sprintf("sort %s", node.Sort),
		}
	}
	return nil
}

func assertSortCount(ctx context.Context, s *navigator.Session, a Assertion) error {
	stats, err := s.Stats(ctx, a.Node)
	if err != nil {
		return err
	}
	for _, st := range stats.Sorts {
		if st.Sort != schema.Sort(a.Sort) {
			continue
		}
		if st.Count != *a.Count {
			return &AssertionError{
				Type:     AssertSortCount,
				Expected: fmt.Sprintf("%d objects of %s at %s", *a.Count, a.Sort, a.Node),
				Actual:   fmt.Sprintf("%d objects", st.Count),
			}
		}
		return nil
	}
	return &AssertionError{
		Type:     AssertSortCount,
		Expected: fmt.Sprintf("statistics for sort %s at %s", a.Sort, a.Node),
		Actual:   "sort not reported",
	}
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
// The actx parameter provides session access for node_sort and sort_count.
func EvaluateAssertions(res *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertRowCount:
			err = assertRowCount(res.Table, assertion)
		case AssertRowsContain:
			err = assertRows(res.Table, assertion, true)
		case AssertRowsExclude:
			err = assertRows(res.Table, assertion, false)
		case AssertColumns:
			err = assertColumns(res.Table, assertion)
		case AssertNodeSort, AssertSortCount:
			if actx == nil || actx.Session == nil {
				err = fmt.Errorf("assertion[%d]: %s requires a session", i, assertion.Type)
			} else if assertion.Type == AssertNodeSort {
				err = assertNodeSort(actx.Session, assertion)
			} else {
				err = assertSortCount(actx.Ctx, actx.Session, assertion)
			}
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
