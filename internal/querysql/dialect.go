package querysql

import (
	"fmt"
	"strings"
)

// Dialect selects identifier quoting and driver for a database flavor.
type Dialect string

const (
	// MySQL is the live-database dialect.
	MySQL Dialect = "mysql"

	// SQLite backs tests and local databases.
	SQLite Dialect = "sqlite"
)

// ParseDialect maps a configuration string to a Dialect.
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(s) {
	case "mysql":
		return MySQL, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	default:
		return "", fmt.Errorf("unknown dialect %q (want mysql or sqlite)", s)
	}
}

// Driver returns the database/sql driver name.
func (d Dialect) Driver() string {
	if d == MySQL {
		return "mysql"
	}
	return "sqlite3"
}

// Quote quotes an identifier.
func (d Dialect) Quote(ident string) string {
	if d == MySQL {
		return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
	}
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

// Concat joins string expressions.
func (d Dialect) Concat(exprs ...string) string {
	if len(exprs) == 1 {
		return exprs[0]
	}
	if d == MySQL {
		return "CONCAT(" + strings.Join(exprs, ", ") + ")"
	}
	return strings.Join(exprs, " || ")
}
