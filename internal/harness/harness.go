package harness

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/roach88/dbnav/internal/compiler"
	"github.com/roach88/dbnav/internal/graph"
	"github.com/roach88/dbnav/internal/ir"
	"github.com/roach88/dbnav/internal/navigator"
	"github.com/roach88/dbnav/internal/querysql"
	"github.com/roach88/dbnav/internal/scale"
	"github.com/roach88/dbnav/internal/schema"
)

// Harness executes one scenario against a fresh session.
type Harness struct {
	session *navigator.Session
	logger  *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Execution flow:
//  1. Compile the spec and open the backend
//  2. Apply every step to a fresh session
//  3. Query the window
//  4. Evaluate assertions
//
// Step and assertion failures are reported in the result; the error return
// is reserved for scenarios that cannot run at all.
func Run(scenario *Scenario) (*Result, error) {
	ctx := context.Background()

	spec, err := compiler.Load(scenario.Spec)
	if err != nil {
		return nil, fmt.Errorf("failed to compile spec: %w", err)
	}

	backend, closeBackend, err := openBackend(ctx, scenario, spec)
	if err != nil {
		return nil, err
	}
	defer closeBackend()

	h := &Harness{
		session: navigator.New(spec.Model, backend, navigator.WithID("scenario:"+scenario.Name)),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	result := NewResult()
	h.executeSteps(scenario.Steps, result)

	table, err := h.session.ResultTable(ctx, scenario.Window, scenario.RWindow)
	if err != nil {
		result.AddError(fmt.Sprintf("query failed: %v", err))
		return result, nil
	}
	result.Table = table

	actx := &AssertionContext{Ctx: ctx, Session: h.session}
	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(errMsg)
	}
	return result, nil
}

// openBackend builds the backend a scenario asks for. The returned func
// releases it.
func openBackend(ctx context.Context, scenario *Scenario, spec *compiler.Spec) (navigator.Backend, func(), error) {
	if scenario.Backend != BackendSQLite {
		if spec.Family == nil {
			return nil, nil, fmt.Errorf("spec %s has no data block for the %s backend", scenario.Spec, BackendMemory)
		}
		return spec.Family, func() {}, nil
	}

	db, err := querysql.Open(ctx, querysql.SQLite, ":memory:")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create in-memory database: %w", err)
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	if err := seed(ctx, db, scenario.Seed); err != nil {
		db.Close()
		return nil, nil, err
	}
	backend, err := querysql.NewBackend(db, spec.Model, querysql.SQLite, 0)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return backend, func() { db.Close() }, nil
}

func seed(ctx context.Context, db *sql.DB, path string) error {
	script, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read seed: %w", err)
	}
	if _, err := db.ExecContext(ctx, string(script)); err != nil {
		return fmt.Errorf("failed to load seed %s: %w", path, err)
	}
	return nil
}

// executeSteps applies every step in order. A step that fails against
// expectation is reported and the run continues.
func (h *Harness) executeSteps(steps []Step, result *Result) {
	for i, step := range steps {
		id, err := h.apply(step)
		code := errorCode(err)
		result.AddStep(step.Op, id, code)

		switch {
		case step.ExpectError == "" && err != nil:
			result.AddError(fmt.Sprintf("steps[%d] %s: unexpected error: %v", i, step.Op, err))
		case step.ExpectError != "" && code != step.ExpectError:
			got := "success"
			if err != nil {
				got = code
			}
			result.AddError(fmt.Sprintf("steps[%d] %s: expected error %s, got %s", i, step.Op, step.ExpectError, got))
		}

		h.logger.Info("step completed", "step", i, "op", step.Op, "id", id, "error", code)
	}
}

// apply runs one step and returns the id it created, if any.
func (h *Harness) apply(step Step) (string, error) {
	s := h.session
	switch step.Op {
	case OpAddNode:
		return s.AddNode(schema.Sort(step.Sort), position(step.Position))
	case OpAddRelation:
		return s.AddRelation(step.MVA, step.Endpoints, position(step.Position))
	case OpRemoveRelation:
		return "", s.RemoveRelation(step.RNode, step.Anchor)
	case OpMerge:
		return "", s.MergeNodes(step.Node, step.Target)
	case OpSetLabel:
		label, err := ir.FromAny(step.Label)
		if err != nil {
			return "", fmt.Errorf("label: %w", err)
		}
		return "", s.SetLabel(step.RNode, label)
	case OpToggleDisplay:
		return "", s.ToggleDisplay(step.Node, step.MVA)
	case OpSetSort:
		return "", s.SetSort(step.Node, schema.Sort(step.Sort))
	case OpSetPosition:
		id := step.Node
		if id == "" {
			id = step.RNode
		}
		return "", s.SetPosition(id, *position(step.Position))
	case OpReset:
		s.Reset()
		return "", nil
	default:
		return "", fmt.Errorf("unknown op %q", step.Op)
	}
}

func position(p []int) *graph.Point {
	if len(p) != 2 {
		return nil
	}
	return &graph.Point{X: p[0], Y: p[1]}
}

// errorCode classifies err by the code of the structured error it carries.
func errorCode(err error) string {
	if err == nil {
		return ""
	}
	if code := graph.CodeOf(err); code != "" {
		return string(code)
	}
	if code := schema.CodeOf(err); code != "" {
		return string(code)
	}
	if scale.IsMalformedLabel(err) {
		return string(graph.ErrCodeMalformedLabel)
	}
	return "ERROR"
}
