package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines a navigation scenario: steps that build a graph, the
// window to query and assertions over the result.
type Scenario struct {
	// Name uniquely identifies this scenario. It names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Spec is the CUE file or directory to compile.
	Spec string `yaml:"spec"`

	// Backend selects the query backend: memory (default) or sqlite.
	Backend string `yaml:"backend,omitempty"`

	// Seed is the SQL script loaded into the sqlite backend.
	Seed string `yaml:"seed,omitempty"`

	// Steps are applied in order to a fresh session.
	Steps []Step `yaml:"steps"`

	// Window and RWindow select the result columns.
	Window  []string `yaml:"window"`
	RWindow []string `yaml:"rwindow,omitempty"`

	Assertions []Assertion `yaml:"assertions"`
}

// Step is one session operation. Which fields apply depends on Op.
type Step struct {
	Op string `yaml:"op"`

	Node      string   `yaml:"node,omitempty"`
	Target    string   `yaml:"target,omitempty"`
	RNode     string   `yaml:"rnode,omitempty"`
	Sort      string   `yaml:"sort,omitempty"`
	MVA       string   `yaml:"mva,omitempty"`
	Endpoints []string `yaml:"endpoints,omitempty"`
	Anchor    int      `yaml:"anchor,omitempty"`
	Label     any      `yaml:"label,omitempty"`
	Position  []int    `yaml:"position,omitempty"`

	// ExpectError is the error code the step must fail with. A step
	// without it must succeed.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// Step operations.
const (
	OpAddNode        = "add_node"
	OpAddRelation    = "add_relation"
	OpRemoveRelation = "remove_relation"
	OpMerge          = "merge"
	OpSetLabel       = "set_label"
	OpToggleDisplay  = "toggle_display"
	OpSetSort        = "set_sort"
	OpSetPosition    = "set_position"
	OpReset          = "reset"
)

// Assertion validates the final table or graph.
type Assertion struct {
	// Type specifies the assertion type:
	// - "row_count": exact number of rows
	// - "rows_contain": a row renders exactly as Row
	// - "rows_exclude": no row renders as Row
	// - "columns": column headers equal Names
	// - "node_sort": Node has Sort
	// - "sort_count": node statistics report Count objects of Sort
	Type string `yaml:"type"`

	Count *int     `yaml:"count,omitempty"`
	Row   []string `yaml:"row,omitempty"`
	Names []string `yaml:"names,omitempty"`
	Node  string   `yaml:"node,omitempty"`
	Sort  string   `yaml:"sort,omitempty"`
}

// Assertion type constants.
const (
	AssertRowCount    = "row_count"
	AssertRowsContain = "rows_contain"
	AssertRowsExclude = "rows_exclude"
	AssertColumns     = "columns"
	AssertNodeSort    = "node_sort"
	AssertSortCount   = "sort_count"
)

// Backend names.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// LoadScenario reads and parses a scenario YAML file, resolving Spec and
// Seed relative to the file. Unknown fields are rejected.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Reject unknown fields (catches typos like "assertion:" vs "assertions:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	base := filepath.Dir(path)
	scenario.Spec = resolve(base, scenario.Spec)
	scenario.Seed = resolve(base, scenario.Seed)

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func resolve(base, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Spec == "" {
		return fmt.Errorf("spec is required")
	}
	if _, err := os.Stat(s.Spec); os.IsNotExist(err) {
		return fmt.Errorf("spec not found: %s", s.Spec)
	}

	switch s.Backend {
	case "", BackendMemory:
		if s.Seed != "" {
			return fmt.Errorf("seed is only valid with the %s backend", BackendSQLite)
		}
	case BackendSQLite:
		if s.Seed == "" {
			return fmt.Errorf("seed is required for the %s backend", BackendSQLite)
		}
		if _, err := os.Stat(s.Seed); os.IsNotExist(err) {
			return fmt.Errorf("seed not found: %s", s.Seed)
		}
	default:
		return fmt.Errorf("unknown backend %q", s.Backend)
	}

	if len(s.Window) == 0 && len(s.RWindow) == 0 {
		return fmt.Errorf("window is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}
	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}
	return nil
}

// validateStep checks the fields an operation needs.
func validateStep(index int, st *Step) error {
	need := func(field, value string) error {
		if value == "" {
			return fmt.Errorf("steps[%d]: %s is required for %s", index, field, st.Op)
		}
		return nil
	}

	switch st.Op {
	case "":
		return fmt.Errorf("steps[%d]: op is required", index)
	case OpAddNode, OpReset:
		return nil
	case OpAddRelation:
		if err := need("mva", st.MVA); err != nil {
			return err
		}
		if len(st.Endpoints) == 0 {
			return fmt.Errorf("steps[%d]: endpoints are required for %s", index, st.Op)
		}
	case OpRemoveRelation:
		return need("rnode", st.RNode)
	case OpMerge:
		if err := need("node", st.Node); err != nil {
			return err
		}
		return need("target", st.Target)
	case OpSetLabel:
		if err := need("rnode", st.RNode); err != nil {
			return err
		}
		if st.Label == nil {
			return fmt.Errorf("steps[%d]: label is required for %s", index, st.Op)
		}
	case OpToggleDisplay:
		if err := need("node", st.Node); err != nil {
			return err
		}
		return need("mva", st.MVA)
	case OpSetSort:
		return need("node", st.Node)
	case OpSetPosition:
		if st.Node == "" && st.RNode == "" {
			return fmt.Errorf("steps[%d]: node or rnode is required for %s", index, st.Op)
		}
		if len(st.Position) != 2 {
			return fmt.Errorf("steps[%d]: position must be [x, y]", index)
		}
	default:
		return fmt.Errorf("steps[%d]: unknown op %q", index, st.Op)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertRowCount:
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: non-negative count is required for row_count", index)
		}
	case AssertRowsContain, AssertRowsExclude:
		if a.Row == nil {
			return fmt.Errorf("assertions[%d]: row is required for %s", index, a.Type)
		}
	case AssertColumns:
		if a.Names == nil {
			return fmt.Errorf("assertions[%d]: names is required for columns", index)
		}
	case AssertNodeSort:
		if a.Node == "" {
			return fmt.Errorf("assertions[%d]: node is required for node_sort", index)
		}
	case AssertSortCount:
		if a.Node == "" || a.Sort == "" || a.Count == nil {
			return fmt.Errorf("assertions[%d]: node, sort and count are required for sort_count", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
