package bootstrap

// Column is one table column as the database reports it.
type Column struct {
	Table    string
	Name     string
	Datatype string
}

// Key is one column of a primary or foreign key. Composite keys appear as
// several Keys sharing a Name, in key order.
type Key struct {
	Name      string
	Primary   bool
	Table     string
	Column    string
	RefTable  string
	RefColumn string
}

// Catalog is the raw structure of a database.
type Catalog struct {
	Columns []Column
	Keys    []Key
}

// Tables returns table names in first-seen order.
func (c Catalog) Tables() []string {
	var tables []string
	seen := make(map[string]bool)
	for _, col := range c.Columns {
		if !seen[col.Table] {
			seen[col.Table] = true
			tables = append(tables, col.Table)
		}
	}
	return tables
}

// PrimaryKey returns the primary key columns of a table in key order.
func (c Catalog) PrimaryKey(table string) []string {
	var cols []string
	for _, k := range c.Keys {
		if k.Primary && k.Table == table {
			cols = append(cols, k.Column)
		}
	}
	return cols
}

// ColumnsOf returns the column names of a table in ordinal order.
func (c Catalog) ColumnsOf(table string) []string {
	var cols []string
	for _, col := range c.Columns {
		if col.Table == table {
			cols = append(cols, col.Name)
		}
	}
	return cols
}
