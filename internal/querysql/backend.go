package querysql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/roach88/dbnav/internal/graph"
	"github.com/roach88/dbnav/internal/result"
	"github.com/roach88/dbnav/internal/scale"
	"github.com/roach88/dbnav/internal/schema"
)

// Backend answers graph queries from a live database.
//
// Thread-safety: Backend is safe for concurrent use to the extent *sql.DB
// and the schema model are; the statement cache is synchronized.
type Backend struct {
	db       *sql.DB
	model    *schema.Model
	compiler *Compiler
}

// NewBackend creates a backend over db for the given schema.
func NewBackend(db *sql.DB, model *schema.Model, dialect Dialect, cacheSize int) (*Backend, error) {
	compiler, err := NewCompiler(model, dialect, cacheSize)
	if err != nil {
		return nil, err
	}
	return &Backend{db: db, model: model, compiler: compiler}, nil
}

// Compiler returns the backend's compiler.
func (b *Backend) Compiler() *Compiler { return b.compiler }

// ResultTable compiles g, runs it and maps the returned aliases back to
// columns.
func (b *Backend) ResultTable(ctx context.Context, g *graph.Graph, window, rwindow []string) (result.Table, error) {
	stmt, err := b.compiler.Compile(g, window, rwindow)
	if err != nil {
		return result.Table{}, err
	}
	if stmt.Fixed != nil {
		return *stmt.Fixed, nil
	}

	rows, err := b.query(ctx, stmt.SQL, stmt.Params)
	if err != nil {
		return result.Table{}, err
	}
	defer rows.Close()

	aliases, err := rows.Columns()
	if err != nil {
		return result.Table{}, b.execError(stmt.SQL, stmt.Params, err)
	}
	columns, err := b.mapColumns(stmt, aliases)
	if err != nil {
		return result.Table{}, err
	}

	scales := b.cellScales(columns)
	table := result.Table{Columns: columns, Rows: [][]any{}}
	for rows.Next() {
		values := make([]any, len(aliases))
		ptrs := make([]any, len(aliases))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return result.Table{}, b.execError(stmt.SQL, stmt.Params, fmt.Errorf("scan row: %w", err))
		}
		for i, v := range values {
			if raw, ok := v.([]byte); ok {
				v = string(raw)
			}
			if i < len(scales) && scales[i] != nil {
				v = scales[i].Cell(v)
			}
			values[i] = v
		}
		if stmt.constant {
			values = values[:0]
		}
		table.Rows = append(table.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return result.Table{}, b.execError(stmt.SQL, stmt.Params, err)
	}

	slog.Debug("sql query",
		"sql", stmt.SQL,
		"params", stmt.Params,
		"rows", len(table.Rows))
	return table, nil
}

// cellScales returns the scale of each relation and display column, nil
// for node columns and unscaled attributes.
func (b *Backend) cellScales(columns []result.Column) []scale.Scale {
	scales := make([]scale.Scale, len(columns))
	for i, col := range columns {
		if col.Kind == result.KindNode {
			continue
		}
		if mva, err := b.model.MVA(col.MVAID); err == nil {
			scales[i] = mva.Scale
		}
	}
	return scales
}

// mapColumns decodes the aliases the driver returned and pairs them with
// the compiled columns.
func (b *Backend) mapColumns(stmt Statement, aliases []string) ([]result.Column, error) {
	if stmt.constant {
		return []result.Column{}, nil
	}
	if len(aliases) != len(stmt.Columns) {
		return nil, fmt.Errorf("statement returned %d columns, compiled %d", len(aliases), len(stmt.Columns))
	}
	columns := make([]result.Column, len(aliases))
	for i, alias := range aliases {
		col, err := decodeAlias(alias)
		if err != nil {
			return nil, err
		}
		want := stmt.Columns[i]
		if col.Kind != want.Kind || col.NodeID != want.NodeID || col.RNodeID != want.RNodeID || (col.Kind == result.KindDisplay && col.MVAID != want.MVAID) {
			return nil, fmt.Errorf("column %d: alias %q does not match compiled column %s", i, alias, want.Name)
		}
		columns[i] = want
	}
	return columns, nil
}

// SortCounts returns the row count of every sort's table.
func (b *Backend) SortCounts(ctx context.Context) (map[schema.Sort]int, error) {
	sorts := b.model.Sorts()
	counts := make(map[schema.Sort]int, len(sorts))
	if len(sorts) == 0 {
		return counts, nil
	}

	parts := make([]string, len(sorts))
	params := make([]any, len(sorts))
	for i, s := range sorts {
		parts[i] = "SELECT ? AS sort, COUNT(*) AS n FROM " + b.compiler.dialect.Quote(string(s))
		params[i] = string(s)
	}
	query := strings.Join(parts, " UNION ALL ") + " ORDER BY 1"

	rows, err := b.query(ctx, query, params)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			s string
			n int
		)
		if err := rows.Scan(&s, &n); err != nil {
			return nil, b.execError(query, params, fmt.Errorf("scan count: %w", err))
		}
		counts[schema.Sort(s)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, b.execError(query, params, err)
	}
	slog.Debug("sort counts", "sorts", len(sorts))
	return counts, nil
}

// DateRange probes the observed years of a unary date attribute and returns
// a DateInterval scale covering them in buckets of step years.
func (b *Backend) DateRange(ctx context.Context, mvaID string, step int) (scale.DateInterval, error) {
	mva, err := b.model.MVA(mvaID)
	if err != nil {
		return scale.DateInterval{}, err
	}
	if !mva.Unary() {
		return scale.DateInterval{}, fmt.Errorf("date range of %s: attribute is not unary", mva.Name)
	}
	expr := mva.SQL([]string{"x1"})
	query := fmt.Sprintf("SELECT MIN(%s), MAX(%s) FROM %s AS x1", expr, expr, b.compiler.dialect.Quote(string(mva.Sorts[0])))

	var lo, hi any
	if err := b.db.QueryRowContext(ctx, query).Scan(&lo, &hi); err != nil {
		return scale.DateInterval{}, b.execError(query, nil, err)
	}
	minYear, ok1 := scale.YearOf(lo)
	maxYear, ok2 := scale.YearOf(hi)
	if !ok1 || !ok2 {
		return scale.DateInterval{}, fmt.Errorf("date range of %s: no dated rows", mva.Name)
	}
	slog.Debug("date range", "mva", mvaID, "min", minYear, "max", maxYear)
	return scale.NewDateInterval(minYear, maxYear, step)
}

func (b *Backend) query(ctx context.Context, query string, params []any) (*sql.Rows, error) {
	rows, err := b.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, b.execError(query, params, err)
	}
	return rows, nil
}

func (b *Backend) execError(query string, params []any, err error) error {
	slog.Error("sql execution failed",
		"sql", query,
		"error", err)
	return &ExecError{SQL: query, Params: params, Err: err}
}
