package schema

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/roach88/dbnav/internal/queryir"
	"github.com/roach88/dbnav/internal/scale"
)

// Model is the schema catalog: the declared sorts with their print
// expressions and the many-valued attributes over them.
//
// A Model is not safe for concurrent mutation. Navigation sessions only read
// it; edits happen before a model is shared.
type Model struct {
	prints map[Sort]string
	mvas   map[string]*MVA
	order  []string
	nextID int
}

// Link is an attribute incident to a sort, with the 1-based role position
// at which the sort participates.
type Link struct {
	MVAID string
	Role  int
}

// NewModel creates an empty catalog.
func NewModel() *Model {
	return &Model{
		prints: make(map[Sort]string),
		mvas:   make(map[string]*MVA),
		nextID: 1,
	}
}

// AddSort declares a sort with the expression that prints one of its rows.
// The expression uses {0} for the row alias.
func (m *Model) AddSort(sort Sort, printExpr string) error {
	if !sort.Bound() {
		return &Error{Code: ErrCodeUnknownSort, Message: "cannot declare the unbound sort"}
	}
	if _, ok := m.prints[sort]; ok {
		return &Error{Code: ErrCodeDuplicateSort, Message: "sort already declared", Sort: sort}
	}
	m.prints[sort] = printExpr
	return nil
}

// HasSort reports whether sort is declared.
func (m *Model) HasSort(sort Sort) bool {
	_, ok := m.prints[sort]
	return ok
}

// Sorts returns the declared sorts in lexical order.
func (m *Model) Sorts() []Sort {
	sorts := make([]Sort, 0, len(m.prints))
	for s := range m.prints {
		sorts = append(sorts, s)
	}
	slices.Sort(sorts)
	return sorts
}

// PrintExpr returns the print expression template of sort.
func (m *Model) PrintExpr(sort Sort) (string, error) {
	expr, ok := m.prints[sort]
	if !ok {
		return "", unknownSort(sort)
	}
	return expr, nil
}

// PrintSQL instantiates the print expression of sort for a row alias.
func (m *Model) PrintSQL(sort Sort, alias string) (string, error) {
	expr, err := m.PrintExpr(sort)
	if err != nil {
		return "", err
	}
	return queryir.Instantiate(expr, alias), nil
}

// SetPrintExpr replaces the print expression of a declared sort.
func (m *Model) SetPrintExpr(sort Sort, expr string) error {
	if !m.HasSort(sort) {
		return unknownSort(sort)
	}
	m.prints[sort] = expr
	return nil
}

// AddColumn adds a column attribute and returns its generated id.
func (m *Model) AddColumn(column string, sort Sort, datatype string) (string, error) {
	return m.add(NewColumn(column, sort, datatype))
}

// AddForeignKey adds a foreign-key attribute and returns its generated id.
func (m *Model) AddForeignKey(name string, from Sort, fromCol string, to Sort, toCol string) (string, error) {
	return m.add(NewForeignKey(name, from, fromCol, to, toCol))
}

// AddMVA adds a derived attribute and returns its generated id.
func (m *Model) AddMVA(name string, sorts []Sort, datatype, expr string, roles []string) (string, error) {
	return m.add(NewDerived(name, sorts, datatype, expr, roles))
}

// Insert adds a fully built attribute under its own id. Used by front-ends
// that choose ids themselves.
func (m *Model) Insert(mva MVA) error {
	if mva.ID == "" {
		return &Error{Code: ErrCodeInvalidMVA, Message: "attribute id is empty"}
	}
	if _, ok := m.mvas[mva.ID]; ok {
		return &Error{Code: ErrCodeDuplicateMVA, Message: "attribute id already in use", MVAID: mva.ID}
	}
	if err := mva.validate(); err != nil {
		return err
	}
	for _, s := range mva.Sorts {
		if !m.HasSort(s) {
			return unknownSort(s)
		}
	}
	if mva.Scale != nil && !scale.Admissible(mva.Datatype, mva.Scale.Kind()) {
		return inadmissible(mva, mva.Scale.Kind())
	}
	stored := mva
	stored.Sorts = slices.Clone(mva.Sorts)
	stored.Roles = slices.Clone(mva.Roles)
	stored.Columns = slices.Clone(mva.Columns)
	m.mvas[mva.ID] = &stored
	m.order = append(m.order, mva.ID)
	m.bumpCounter(mva.ID)
	return nil
}

func (m *Model) add(mva MVA) (string, error) {
	mva.ID = "m" + strconv.Itoa(m.nextID)
	for m.hasMVA(mva.ID) {
		m.nextID++
		mva.ID = "m" + strconv.Itoa(m.nextID)
	}
	if err := m.Insert(mva); err != nil {
		return "", err
	}
	return mva.ID, nil
}

// bumpCounter keeps generated ids ahead of explicitly inserted mN ids.
func (m *Model) bumpCounter(id string) {
	n, err := strconv.Atoi(strings.TrimPrefix(id, "m"))
	if err != nil || !strings.HasPrefix(id, "m") {
		return
	}
	if n >= m.nextID {
		m.nextID = n + 1
	}
}

func (m *Model) hasMVA(id string) bool {
	_, ok := m.mvas[id]
	return ok
}

// DeleteMVA removes an attribute together with its scale. Relation
// instances still referring to it fail with UNKNOWN_MVA when queried.
func (m *Model) DeleteMVA(id string) error {
	if !m.hasMVA(id) {
		return unknownMVA(id)
	}
	delete(m.mvas, id)
	m.order = slices.DeleteFunc(m.order, func(x string) bool { return x == id })
	return nil
}

// MVA returns a copy of the attribute with the given id.
func (m *Model) MVA(id string) (MVA, error) {
	mva, ok := m.mvas[id]
	if !ok {
		return MVA{}, unknownMVA(id)
	}
	return *mva, nil
}

// MVAs returns copies of all attributes in insertion order.
func (m *Model) MVAs() []MVA {
	out := make([]MVA, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, *m.mvas[id])
	}
	return out
}

// AttachScale binds s to an attribute, replacing any previous scale. The
// attribute's data type must admit the scale kind.
func (m *Model) AttachScale(id string, s scale.Scale) error {
	mva, ok := m.mvas[id]
	if !ok {
		return unknownMVA(id)
	}
	if !scale.Admissible(mva.Datatype, s.Kind()) {
		return inadmissible(*mva, s.Kind())
	}
	mva.Scale = s
	return nil
}

// DetachScale unbinds the scale of an attribute.
func (m *Model) DetachScale(id string) error {
	mva, ok := m.mvas[id]
	if !ok {
		return unknownMVA(id)
	}
	mva.Scale = nil
	return nil
}

// Neighbors returns the scaled attributes in which sort participates, one
// link per role position.
func (m *Model) Neighbors(sort Sort) []Link {
	var links []Link
	for _, id := range m.order {
		mva := m.mvas[id]
		if mva.Scale == nil {
			continue
		}
		for i, s := range mva.Sorts {
			if s == sort {
				links = append(links, Link{MVAID: id, Role: i + 1})
			}
		}
	}
	return links
}

func inadmissible(mva MVA, kind scale.Kind) *Error {
	return &Error{
		Code:    ErrCodeScaleInadmissible,
		Message: fmt.Sprintf("data type %q does not admit a %s scale", mva.Datatype, kind),
		MVAID:   mva.ID,
	}
}
