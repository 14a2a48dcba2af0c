package harness

import (
	"slices"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/dbnav/internal/ir"
)

// TableSnapshot captures the observable outcome of a scenario.
// Rows are rendered as text and sorted, since row order is backend-defined.
type TableSnapshot struct {
	ScenarioName string
	Steps        []StepRecord
	Columns      []string
	Rows         [][]string
}

// NewSnapshot builds the snapshot of a result.
func NewSnapshot(name string, res *Result) TableSnapshot {
	rows := res.Table.Strings()
	slices.SortFunc(rows, func(a, b []string) int {
		return strings.Compare(strings.Join(a, "\x00"), strings.Join(b, "\x00"))
	})
	return TableSnapshot{
		ScenarioName: name,
		Steps:        res.Steps,
		Columns:      res.Table.Names(),
		Rows:         rows,
	}
}

// Record converts the snapshot into an IR object for canonical JSON.
func (s TableSnapshot) Record() ir.IRObject {
	steps := make(ir.IRArray, len(s.Steps))
	for i, st := range s.Steps {
		obj := ir.IRObject{"op": ir.IRString(st.Op)}
		if st.ID != "" {
			obj["id"] = ir.IRString(st.ID)
		}
		if st.Error != "" {
			obj["error"] = ir.IRString(st.Error)
		}
		steps[i] = obj
	}
	rows := make(ir.IRArray, len(s.Rows))
	for i, row := range s.Rows {
		rows[i] = ir.Strings(row)
	}
	return ir.IRObject{
		"scenario_name": ir.IRString(s.ScenarioName),
		"steps":         steps,
		"columns":       ir.Strings(s.Columns),
		"rows":          rows,
	}
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	res, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	return res, AssertGolden(t, scenario.Name, res)
}

// AssertGolden compares an existing result against its golden file.
func AssertGolden(t *testing.T, scenarioName string, res *Result) error {
	t.Helper()

	data, err := ir.MarshalCanonical(NewSnapshot(scenarioName, res).Record())
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}
