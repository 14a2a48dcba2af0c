package schema

import (
	"fmt"

	"github.com/roach88/dbnav/internal/ir"
	"github.com/roach88/dbnav/internal/scale"
)

// Record classes.
const (
	classModel = "Model"
	classMVA   = "MVA"
)

// Record encodes the model as a tagged record. The encoding is canonical:
// equal models re-serialize to identical bytes.
func (m *Model) Record() ir.IRObject {
	sorts := make(ir.IRObject, len(m.prints))
	for s, expr := range m.prints {
		sorts[string(s)] = ir.IRString(expr)
	}
	mvas := make(ir.IRArray, 0, len(m.order))
	for _, id := range m.order {
		mvas = append(mvas, m.mvas[id].Record())
	}
	return ir.Tag(classModel, ir.IRObject{
		"version": ir.IRString(ir.RecordVersion),
		"sorts":   sorts,
		"mvas":    mvas,
		"next_id": ir.IRInt(m.nextID),
	})
}

// Record encodes one attribute.
func (a MVA) Record() ir.IRObject {
	sorts := make([]string, len(a.Sorts))
	for i, s := range a.Sorts {
		sorts[i] = string(s)
	}
	rec := ir.IRObject{
		"id":       ir.IRString(a.ID),
		"name":     ir.IRString(a.Name),
		"kind":     ir.IRString(a.Kind),
		"sorts":    ir.Strings(sorts),
		"roles":    ir.Strings(a.Roles),
		"datatype": ir.IRString(a.Datatype),
		"expr":     ir.IRString(a.Expr),
	}
	if len(a.Columns) > 0 {
		rec["columns"] = ir.Strings(a.Columns)
	}
	if a.Scale != nil {
		rec["scale"] = a.Scale.Record()
	}
	return ir.Tag(classMVA, rec)
}

// ModelFromRecord decodes a record produced by Model.Record.
func ModelFromRecord(v ir.IRValue) (*Model, error) {
	rec, err := ir.ExpectClass(v, classModel)
	if err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}

	m := NewModel()
	sorts, err := rec.Obj("sorts")
	if err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	for _, name := range sorts.SortedKeys() {
		expr, err := sorts.Str(name)
		if err != nil {
			return nil, fmt.Errorf("decode model: sort %s: %w", name, err)
		}
		if err := m.AddSort(Sort(name), expr); err != nil {
			return nil, fmt.Errorf("decode model: %w", err)
		}
	}

	mvas, ok := rec["mvas"].(ir.IRArray)
	if !ok {
		return nil, fmt.Errorf("decode model: field \"mvas\": expected array, got %T", rec["mvas"])
	}
	for i, elem := range mvas {
		mva, err := MVAFromRecord(elem)
		if err != nil {
			return nil, fmt.Errorf("decode model: mvas[%d]: %w", i, err)
		}
		if err := m.Insert(mva); err != nil {
			return nil, fmt.Errorf("decode model: %w", err)
		}
	}

	next, err := rec.Int("next_id")
	if err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	m.nextID = max(m.nextID, int(next))
	return m, nil
}

// MVAFromRecord decodes a record produced by MVA.Record.
func MVAFromRecord(v ir.IRValue) (MVA, error) {
	rec, err := ir.ExpectClass(v, classMVA)
	if err != nil {
		return MVA{}, err
	}

	var a MVA
	var kind string
	for key, dst := range map[string]*string{
		"id":       &a.ID,
		"name":     &a.Name,
		"kind":     &kind,
		"datatype": &a.Datatype,
		"expr":     &a.Expr,
	} {
		if *dst, err = rec.Str(key); err != nil {
			return MVA{}, err
		}
	}
	a.Kind = MVAKind(kind)

	sorts, err := rec.Strs("sorts")
	if err != nil {
		return MVA{}, err
	}
	for _, s := range sorts {
		a.Sorts = append(a.Sorts, Sort(s))
	}
	if a.Roles, err = rec.Strs("roles"); err != nil {
		return MVA{}, err
	}
	if _, ok := rec["columns"]; ok {
		if a.Columns, err = rec.Strs("columns"); err != nil {
			return MVA{}, err
		}
	}
	if s, ok := rec["scale"]; ok {
		if a.Scale, err = scale.FromRecord(s); err != nil {
			return MVA{}, err
		}
	}
	return a, nil
}
