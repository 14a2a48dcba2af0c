package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/roach88/dbnav/internal/querysql"
	"github.com/roach88/dbnav/internal/scale"
	"github.com/roach88/dbnav/internal/schema"
)

const mysqlColumns = `SELECT table_name, column_name, column_type
FROM information_schema.columns
WHERE table_schema = ?
ORDER BY table_name, ordinal_position`

const mysqlKeys = `SELECT t1.constraint_name, t2.constraint_type, t1.table_name, t1.column_name,
       t1.referenced_table_name, t1.referenced_column_name
FROM information_schema.key_column_usage AS t1
LEFT JOIN information_schema.table_constraints AS t2
  ON t1.constraint_name = t2.constraint_name
 AND t1.table_schema = t2.table_schema
 AND t1.table_name = t2.table_name
WHERE t1.table_schema = ?
  AND t2.constraint_type IN ('PRIMARY KEY', 'FOREIGN KEY')
ORDER BY t1.table_name, t1.constraint_name, t1.ordinal_position`

const sqliteTables = `SELECT name FROM sqlite_master
WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
ORDER BY name`

// Introspect reads the catalog of a database. database names the MySQL
// schema and is ignored for SQLite.
func Introspect(ctx context.Context, db *sql.DB, dialect querysql.Dialect, database string) (Catalog, error) {
	var (
		cat Catalog
		err error
	)
	if dialect == querysql.MySQL {
		cat, err = introspectMySQL(ctx, db, database)
	} else {
		cat, err = introspectSQLite(ctx, db)
	}
	if err != nil {
		return Catalog{}, err
	}
	slog.Debug("introspected catalog", "dialect", dialect, "columns", len(cat.Columns), "keys", len(cat.Keys))
	return cat, nil
}

func introspectMySQL(ctx context.Context, db *sql.DB, database string) (Catalog, error) {
	var cat Catalog
	err := each(ctx, db, mysqlColumns, []any{database}, func(rows *sql.Rows) error {
		var c Column
		if err := rows.Scan(&c.Table, &c.Name, &c.Datatype); err != nil {
			return err
		}
		cat.Columns = append(cat.Columns, c)
		return nil
	})
	if err != nil {
		return Catalog{}, err
	}

	err = each(ctx, db, mysqlKeys, []any{database}, func(rows *sql.Rows) error {
		var (
			k             Key
			kind          string
			table, column sql.NullString
		)
		if err := rows.Scan(&k.Name, &kind, &k.Table, &k.Column, &table, &column); err != nil {
			return err
		}
		k.Primary = kind == "PRIMARY KEY"
		k.RefTable, k.RefColumn = table.String, column.String
		cat.Keys = append(cat.Keys, k)
		return nil
	})
	if err != nil {
		return Catalog{}, err
	}
	return cat, nil
}

func introspectSQLite(ctx context.Context, db *sql.DB) (Catalog, error) {
	var tables []string
	err := each(ctx, db, sqliteTables, nil, func(rows *sql.Rows) error {
		var name string
		if err := rows.Scan(&name); err != nil {
			return err
		}
		tables = append(tables, name)
		return nil
	})
	if err != nil {
		return Catalog{}, err
	}

	var cat Catalog
	pks := make(map[string][]string)
	for _, table := range tables {
		type pkCol struct {
			pos  int
			name string
		}
		var pk []pkCol
		err := each(ctx, db, `SELECT name, type, pk FROM pragma_table_info(?) ORDER BY cid`, []any{table}, func(rows *sql.Rows) error {
			var (
				c   = Column{Table: table}
				pos int
			)
			if err := rows.Scan(&c.Name, &c.Datatype, &pos); err != nil {
				return err
			}
			cat.Columns = append(cat.Columns, c)
			if pos > 0 {
				pk = append(pk, pkCol{pos, c.Name})
			}
			return nil
		})
		if err != nil {
			return Catalog{}, err
		}
		names := make([]string, len(pk))
		for _, c := range pk {
			names[c.pos-1] = c.name
		}
		pks[table] = names
		for _, name := range names {
			cat.Keys = append(cat.Keys, Key{Name: "PRIMARY", Primary: true, Table: table, Column: name})
		}
	}

	for _, table := range tables {
		err := each(ctx, db, `SELECT "table", "from", "to" FROM pragma_foreign_key_list(?) ORDER BY id, seq`, []any{table}, func(rows *sql.Rows) error {
			var (
				k  = Key{Table: table}
				to sql.NullString
			)
			if err := rows.Scan(&k.RefTable, &k.Column, &to); err != nil {
				return err
			}
			k.RefColumn = to.String
			if !to.Valid || to.String == "" {
				// REFERENCES t without a column targets t's primary key.
				if pk := pks[k.RefTable]; len(pk) == 1 {
					k.RefColumn = pk[0]
				}
			}
			k.Name = k.Column
			cat.Keys = append(cat.Keys, k)
			return nil
		})
		if err != nil {
			return Catalog{}, err
		}
	}
	return cat, nil
}

// each runs query and calls fn for every row.
func each(ctx context.Context, db *sql.DB, query string, params []any, fn func(*sql.Rows) error) error {
	rows, err := db.QueryContext(ctx, query, params...)
	if err != nil {
		return &querysql.ExecError{SQL: query, Params: params, Err: err}
	}
	defer rows.Close()
	for rows.Next() {
		if err := fn(rows); err != nil {
			return fmt.Errorf("scan catalog row: %w", err)
		}
	}
	if err := rows.Err(); err != nil {
		return &querysql.ExecError{SQL: query, Params: params, Err: err}
	}
	return nil
}

// Run introspects a database, builds its model and narrows every date
// scale to the years stored in its column. Columns with no dated rows keep
// opts.DateScale.
func Run(ctx context.Context, db *sql.DB, database string, opts Options) (*schema.Model, error) {
	cat, err := Introspect(ctx, db, opts.Dialect, database)
	if err != nil {
		return nil, err
	}
	m, err := Build(cat, opts)
	if err != nil {
		return nil, err
	}

	backend, err := querysql.NewBackend(db, m, opts.Dialect, 0)
	if err != nil {
		return nil, err
	}
	step := opts.DateScale.Step()
	if step == 0 {
		step = DefaultOptions().DateScale.Step()
	}
	for _, mva := range m.MVAs() {
		if mva.Scale == nil || mva.Scale.Kind() != scale.KindDateInterval {
			continue
		}
		dates, err := backend.DateRange(ctx, mva.ID, step)
		if err != nil {
			if querysql.IsExecError(err) {
				return nil, err
			}
			slog.Warn("keeping default date scale", "attribute", mva.Name, "sort", mva.Sorts[0], "error", err)
			continue
		}
		if err := m.AttachScale(mva.ID, dates); err != nil {
			return nil, err
		}
	}
	return m, nil
}
