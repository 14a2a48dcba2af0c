package schema

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/dbnav/internal/queryir"
	"github.com/roach88/dbnav/internal/scale"
)

// MVAKind distinguishes how an attribute's value expression was derived.
type MVAKind string

const (
	// KindDerived is an attribute with a hand-written value expression.
	KindDerived MVAKind = "derived"

	// KindColumn is a unary attribute reading one column of its sort.
	KindColumn MVAKind = "column"

	// KindForeignKey is a binary 0/1 attribute equating two columns.
	KindForeignKey MVAKind = "foreign_key"
)

// FKDatatype is the data type of every foreign-key attribute.
const FKDatatype = "bool"

// MVA is a many-valued attribute: a named, arity-tagged relation over sorts.
// Expr is a value expression template with one {i} placeholder per role,
// instantiated with node aliases. Attributes that only live in an in-memory
// context family may leave Expr empty; the SQL backend rejects them.
type MVA struct {
	ID       string
	Name     string
	Kind     MVAKind
	Sorts    []Sort
	Roles    []string
	Datatype string
	Expr     string

	// Columns names the underlying columns of column and foreign-key
	// attributes, one per role.
	Columns []string

	// Scale is nil while the attribute is unscaled.
	Scale scale.Scale
}

// Arity returns the number of roles.
func (m MVA) Arity() int { return len(m.Sorts) }

// Unary reports whether the attribute is a property of a single sort.
func (m MVA) Unary() bool { return m.Arity() == 1 }

// SQL instantiates the value expression over node aliases, one per role.
func (m MVA) SQL(aliases []string) string {
	expr := m.Expr
	for i, alias := range aliases {
		expr = strings.ReplaceAll(expr, "{"+strconv.Itoa(i)+"}", alias)
	}
	return expr
}

// DefaultRoles names roles ATTR for unary attributes and ARG1..ARGn
// otherwise.
func DefaultRoles(arity int) []string {
	if arity == 1 {
		return []string{"ATTR"}
	}
	roles := make([]string, arity)
	for i := range roles {
		roles[i] = fmt.Sprintf("ARG%d", i+1)
	}
	return roles
}

// NewColumn defines a unary attribute reading column of sort.
func NewColumn(column string, sort Sort, datatype string) MVA {
	return MVA{
		Name:     column,
		Kind:     KindColumn,
		Sorts:    []Sort{sort},
		Roles:    DefaultRoles(1),
		Datatype: datatype,
		Expr:     queryir.Placeholder + "." + column,
		Columns:  []string{column},
	}
}

// NewForeignKey defines a binary attribute that is 1 when from.fromCol
// equals to.toCol.
func NewForeignKey(name string, from Sort, fromCol string, to Sort, toCol string) MVA {
	return MVA{
		Name:     name,
		Kind:     KindForeignKey,
		Sorts:    []Sort{from, to},
		Roles:    DefaultRoles(2),
		Datatype: FKDatatype,
		Expr:     fmt.Sprintf("CASE WHEN {0}.%s = {1}.%s THEN 1 ELSE 0 END", fromCol, toCol),
		Columns:  []string{fromCol, toCol},
	}
}

// NewDerived defines an attribute from a hand-written expression. A nil
// roles slice selects DefaultRoles.
func NewDerived(name string, sorts []Sort, datatype, expr string, roles []string) MVA {
	if roles == nil {
		roles = DefaultRoles(len(sorts))
	}
	return MVA{
		Name:     name,
		Kind:     KindDerived,
		Sorts:    sorts,
		Roles:    roles,
		Datatype: datatype,
		Expr:     expr,
	}
}

// validate checks the structural invariants of a definition.
func (m MVA) validate() error {
	invalid := func(format string, args ...any) error {
		return &Error{Code: ErrCodeInvalidMVA, Message: fmt.Sprintf(format, args...), MVAID: m.ID}
	}
	if m.Name == "" {
		return invalid("attribute name is empty")
	}
	if len(m.Sorts) == 0 {
		return invalid("attribute %s has no roles", m.Name)
	}
	if len(m.Roles) != len(m.Sorts) {
		return invalid("attribute %s has %d role names for arity %d", m.Name, len(m.Roles), len(m.Sorts))
	}
	for i, s := range m.Sorts {
		if !s.Bound() {
			return invalid("attribute %s role %d has no sort", m.Name, i+1)
		}
		if m.Expr != "" && !strings.Contains(m.Expr, "{"+strconv.Itoa(i)+"}") {
			return invalid("attribute %s expression %q does not reference role %d", m.Name, m.Expr, i+1)
		}
	}
	return nil
}
