package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/roach88/dbnav/internal/querysql"
	"github.com/roach88/dbnav/internal/scale"
	"github.com/roach88/dbnav/internal/schema"
)

// Options controls how a catalog becomes a model.
type Options struct {
	Dialect querysql.Dialect

	// DateScale is attached to date columns until Run narrows it to the
	// stored years.
	DateScale scale.DateInterval
}

// DefaultOptions returns MySQL options with a 1900-2030 date scale in
// decades.
func DefaultOptions() Options {
	dates, _ := scale.NewDateInterval(1900, 2030, 10)
	return Options{Dialect: querysql.MySQL, DateScale: dates}
}

// PrintExpr returns the expression that prints one row of a table.
//
// A table without a primary key prints all its columns; a single-column key
// prints that column; a composite key prints its columns. Multiple columns
// are joined with ", ".
func PrintExpr(dialect querysql.Dialect, pk, columns []string) string {
	cols := pk
	if len(cols) == 0 {
		cols = columns
	}
	var parts []string
	for i, c := range cols {
		if i > 0 {
			parts = append(parts, "', '")
		}
		parts = append(parts, "{0}."+c)
	}
	return dialect.Concat(parts...)
}

// Build turns a catalog into a model. Every column becomes a column
// attribute carrying the first scale its data type admits; every foreign
// key column becomes a boolean-scaled foreign-key attribute.
func Build(cat Catalog, opts Options) (*schema.Model, error) {
	if opts.Dialect == "" {
		opts.Dialect = querysql.MySQL
	}
	if opts.DateScale.Step() == 0 {
		opts.DateScale = DefaultOptions().DateScale
	}
	m := schema.NewModel()
	for _, table := range cat.Tables() {
		expr := PrintExpr(opts.Dialect, cat.PrimaryKey(table), cat.ColumnsOf(table))
		if err := m.AddSort(schema.Sort(table), expr); err != nil {
			return nil, err
		}
	}

	for _, col := range cat.Columns {
		id, err := m.AddColumn(col.Name, schema.Sort(col.Table), col.Datatype)
		if err != nil {
			return nil, fmt.Errorf("column %s.%s: %w", col.Table, col.Name, err)
		}
		if s := defaultScale(col.Datatype, opts); s != nil {
			if err := m.AttachScale(id, s); err != nil {
				return nil, err
			}
		}
	}

	for _, k := range cat.Keys {
		if k.Primary {
			continue
		}
		if !m.HasSort(schema.Sort(k.RefTable)) {
			slog.Warn("skipping foreign key to unknown table", "key", k.Name, "table", k.Table, "ref", k.RefTable)
			continue
		}
		id, err := m.AddForeignKey(k.Name, schema.Sort(k.Table), k.Column, schema.Sort(k.RefTable), k.RefColumn)
		if err != nil {
			return nil, fmt.Errorf("foreign key %s: %w", k.Name, err)
		}
		if err := m.AttachScale(id, scale.Boolean{}); err != nil {
			return nil, err
		}
	}

	slog.Info("schema built", "sorts", len(m.Sorts()), "attributes", len(m.MVAs()))
	return m, nil
}

func defaultScale(datatype string, opts Options) scale.Scale {
	kinds := scale.KindsFor(datatype)
	if len(kinds) == 0 {
		return nil
	}
	switch kinds[0] {
	case scale.KindPrefix:
		return scale.Prefix{}
	case scale.KindBoolean:
		return scale.Boolean{}
	case scale.KindDateInterval:
		return opts.DateScale
	default:
		return nil
	}
}
