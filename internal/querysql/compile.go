package querysql

import (
	"fmt"
	"slices"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/roach88/dbnav/internal/graph"
	"github.com/roach88/dbnav/internal/ir"
	"github.com/roach88/dbnav/internal/queryir"
	"github.com/roach88/dbnav/internal/result"
	"github.com/roach88/dbnav/internal/schema"
)

// likeEscape is the LIKE escape character. It is spelled out in every
// LIKE so MySQL and SQLite agree.
const likeEscape = "!"

// Statement is a compiled graph query.
type Statement struct {
	SQL     string
	Params  []any
	Columns []result.Column

	// Fixed is set for degenerate graphs whose table is known without
	// running anything.
	Fixed *result.Table

	// constant marks a statement whose only column is a placeholder
	// selected because the window was empty. It is dropped when reading.
	constant bool
}

// Compiler translates graphs into SQL against one schema.
//
// Compiled statements are cached by the fingerprints of the graph
// signature, the schema and the window, so repeated queries over an
// unchanged graph skip compilation.
type Compiler struct {
	model   *schema.Model
	dialect Dialect
	cache   *lru.Cache[string, Statement]
}

// NewCompiler creates a compiler. A cacheSize of zero or less disables the
// statement cache.
func NewCompiler(model *schema.Model, dialect Dialect, cacheSize int) (*Compiler, error) {
	c := &Compiler{model: model, dialect: dialect}
	if cacheSize > 0 {
		cache, err := lru.New[string, Statement](cacheSize)
		if err != nil {
			return nil, fmt.Errorf("create statement cache: %w", err)
		}
		c.cache = cache
	}
	return c, nil
}

// Dialect returns the compiler's dialect.
func (c *Compiler) Dialect() Dialect { return c.dialect }

// Compile converts g into a statement projecting window and rwindow.
//
// MANDATORY: label values are parameterized, never interpolated.
// MANDATORY: every statement carries ORDER BY.
func (c *Compiler) Compile(g *graph.Graph, window, rwindow []string) (Statement, error) {
	if len(g.NodeIDs()) == 0 && len(g.RNodeIDs()) == 0 {
		unit := result.Unit()
		return Statement{Columns: unit.Columns, Fixed: &unit}, nil
	}
	if g.Trivial() {
		empty := result.Empty()
		return Statement{Columns: empty.Columns, Fixed: &empty}, nil
	}

	key, err := c.cacheKey(g, window, rwindow)
	if err != nil {
		return Statement{}, err
	}
	if c.cache != nil {
		if stmt, ok := c.cache.Get(key); ok {
			stmt.Columns = slices.Clone(stmt.Columns)
			stmt.Params = slices.Clone(stmt.Params)
			return stmt, nil
		}
	}

	stmt, err := c.compile(g, window, rwindow)
	if err != nil {
		return Statement{}, err
	}
	if c.cache != nil {
		c.cache.Add(key, stmt)
	}
	return stmt, nil
}

// cacheKey fingerprints everything the compiled text depends on.
func (c *Compiler) cacheKey(g *graph.Graph, window, rwindow []string) (string, error) {
	return ir.Fingerprint(ir.DomainQuery, ir.IRObject{
		"graph":   g.Signature(),
		"model":   c.model.Record(),
		"window":  ir.Strings(window),
		"rwindow": ir.Strings(rwindow),
		"dialect": ir.IRString(c.dialect),
	})
}

func (c *Compiler) compile(g *graph.Graph, window, rwindow []string) (Statement, error) {
	var (
		stmt    Statement
		selects []string
	)
	addColumn := func(expr string, col result.Column) {
		selects = append(selects, fmt.Sprintf("%s AS %s", expr, c.dialect.Quote(encodeAlias(col))))
		stmt.Columns = append(stmt.Columns, col)
	}

	// FROM: one table reference per node.
	var from []string
	for _, id := range g.NodeIDs() {
		node, _ := g.Node(id)
		if !node.Sort.Bound() {
			return Statement{}, &graph.Error{Code: graph.ErrCodeUnboundNode, Message: "cannot query a node without a sort", NodeID: id}
		}
		from = append(from, fmt.Sprintf("%s AS %s", c.dialect.Quote(string(node.Sort)), id))
	}

	// SELECT: window nodes, window relation instances, display attributes.
	for _, id := range window {
		node, ok := g.Node(id)
		if !ok {
			return Statement{}, &graph.Error{Code: graph.ErrCodeUnknownNode, Message: "window node not in graph", NodeID: id}
		}
		expr, err := c.model.PrintSQL(node.Sort, id)
		if err != nil {
			return Statement{}, fmt.Errorf("print expression of %s: %w", id, err)
		}
		addColumn(expr, result.NodeColumn(id, string(node.Sort)))
	}
	for _, id := range rwindow {
		rnode, ok := g.RNode(id)
		if !ok {
			return Statement{}, &graph.Error{Code: graph.ErrCodeUnknownRNode, Message: "window relation instance not in graph", RNodeID: id}
		}
		mva, err := c.mva(id, rnode.MVAID)
		if err != nil {
			return Statement{}, err
		}
		addColumn(mva.SQL(rnode.Endpoints), result.RNodeColumn(id, mva.ID, mva.Name, rnode.Endpoints))
	}
	if len(window) == 1 {
		node, _ := g.Node(window[0])
		for _, mvaID := range node.Display {
			mva, err := c.mva("", mvaID)
			if err != nil {
				return Statement{}, err
			}
			addColumn(mva.SQL([]string{window[0]}), result.DisplayColumn(window[0], mva.ID, mva.Name))
		}
	}
	if len(selects) == 0 {
		// DISTINCT over a constant keeps "is there any match" semantics.
		selects = append(selects, "1 AS "+c.dialect.Quote("const"))
		stmt.constant = true
	}

	// WHERE: every relation instance constrains the match.
	var where []string
	for _, id := range g.RNodeIDs() {
		rnode, _ := g.RNode(id)
		mva, err := c.mva(id, rnode.MVAID)
		if err != nil {
			return Statement{}, err
		}
		if mva.Scale == nil {
			return Statement{}, &graph.Error{Code: graph.ErrCodeUnscaledRelation, Message: fmt.Sprintf("attribute %s has no scale", mva.Name), RNodeID: id, MVAID: mva.ID}
		}
		pred, err := mva.Scale.Pattern(rnode.Label)
		if err != nil {
			return Statement{}, &graph.Error{Code: graph.ErrCodeMalformedLabel, Message: "label rejected", RNodeID: id, MVAID: mva.ID, Err: err}
		}
		sql, params, err := compilePredicate(pred, "("+mva.SQL(rnode.Endpoints)+")")
		if err != nil {
			return Statement{}, fmt.Errorf("compile predicate of %s: %w", id, err)
		}
		where = append(where, sql)
		stmt.Params = append(stmt.Params, params...)
	}

	order := make([]string, len(selects))
	for i := range selects {
		order[i] = fmt.Sprint(i + 1)
	}

	var b strings.Builder
	b.WriteString("SELECT DISTINCT ")
	b.WriteString(strings.Join(selects, ", "))
	b.WriteString(" FROM ")
	b.WriteString(strings.Join(from, ", "))
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	// MANDATORY: deterministic row order.
	b.WriteString(" ORDER BY ")
	b.WriteString(strings.Join(order, ", "))
	stmt.SQL = b.String()
	if stmt.Columns == nil {
		stmt.Columns = []result.Column{}
	}
	return stmt, nil
}

// mva resolves an attribute, reporting a graph error when the schema no
// longer holds it.
func (c *Compiler) mva(rnodeID, mvaID string) (schema.MVA, error) {
	mva, err := c.model.MVA(mvaID)
	if err != nil {
		return schema.MVA{}, &graph.Error{Code: graph.ErrCodeUnknownMVA, Message: "attribute not in schema", RNodeID: rnodeID, MVAID: mvaID, Err: err}
	}
	return mva, nil
}

// compilePredicate renders p over term with ? placeholders.
// CRITICAL: values are NEVER interpolated.
func compilePredicate(p queryir.Predicate, term string) (string, []any, error) {
	switch pred := p.(type) {
	case queryir.IsNotNull:
		return term + " IS NOT NULL", nil, nil
	case queryir.EqualsOne:
		return term + " = 1", nil, nil
	case queryir.HasPrefix:
		return fmt.Sprintf("%s LIKE ? ESCAPE '%s'", term, likeEscape), []any{escapeLike(pred.Prefix) + "%"}, nil
	case queryir.Between:
		low, err := irValueToParam(pred.Low)
		if err != nil {
			return "", nil, fmt.Errorf("convert low bound: %w", err)
		}
		high, err := irValueToParam(pred.High)
		if err != nil {
			return "", nil, fmt.Errorf("convert high bound: %w", err)
		}
		return term + " BETWEEN ? AND ?", []any{low, high}, nil
	case queryir.And:
		if len(pred.Predicates) == 0 {
			return "1 = 1", nil, nil // vacuous truth
		}
		var (
			parts  []string
			params []any
		)
		for _, sub := range pred.Predicates {
			sql, ps, err := compilePredicate(sub, term)
			if err != nil {
				return "", nil, err
			}
			if _, nested := sub.(queryir.And); nested {
				sql = "(" + sql + ")"
			}
			parts = append(parts, sql)
			params = append(params, ps...)
		}
		return strings.Join(parts, " AND "), params, nil
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

// escapeLike escapes LIKE wildcards so a prefix matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(likeEscape, likeEscape+likeEscape, "%", likeEscape+"%", "_", likeEscape+"_")
	return r.Replace(s)
}

// irValueToParam converts an ir.IRValue to a Go native type for SQL parameter.
// Arrays and objects are not directly supported as SQL parameters.
func irValueToParam(v ir.IRValue) (any, error) {
	switch val := v.(type) {
	case ir.IRString:
		return string(val), nil
	case ir.IRInt:
		return int64(val), nil
	case ir.IRBool:
		return bool(val), nil
	case ir.IRNull:
		return nil, nil
	case ir.IRArray:
		return nil, fmt.Errorf("IRArray cannot be used as SQL parameter directly")
	case ir.IRObject:
		return nil, fmt.Errorf("IRObject cannot be used as SQL parameter directly")
	default:
		return nil, fmt.Errorf("unsupported IRValue type for SQL parameter: %T", v)
	}
}
