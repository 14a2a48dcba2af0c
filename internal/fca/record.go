package fca

import (
	"fmt"
	"slices"

	"github.com/roach88/dbnav/internal/ir"
	"github.com/roach88/dbnav/internal/schema"
)

// Record classes.
const (
	classFamily = "Family"
	classObject = "Object"
	classTuple  = "Tuple"
)

// Record encodes the family's objects and relation contexts. The schema is
// not part of the record; FamilyFromRecord takes it as an argument.
func (f *Family) Record() ir.IRObject {
	objects := make(ir.IRArray, 0, len(f.objects.order))
	for _, id := range f.objects.order {
		var sorts []string
		for m := range f.objects.incidence[id] {
			sorts = append(sorts, m)
		}
		objects = append(objects, ir.Tag(classObject, ir.IRObject{
			"id":    ir.IRString(id),
			"name":  ir.IRString(f.objects.names[id]),
			"sorts": ir.SetValue(sorts),
		}))
	}

	relations := make(ir.IRObject, len(f.relations))
	for mvaID, rc := range f.relations {
		tuples := make(ir.IRArray, 0, len(rc.order))
		for _, t := range rc.Tuples() {
			tuples = append(tuples, ir.Tag(classTuple, ir.IRObject{
				"endpoints": ir.Strings(t.Endpoints),
				"labels":    ir.IRArray(t.Labels),
			}))
		}
		relations[mvaID] = tuples
	}

	return ir.Tag(classFamily, ir.IRObject{
		"version":   ir.IRString(ir.RecordVersion),
		"objects":   objects,
		"relations": relations,
	})
}

// FamilyFromRecord decodes a record produced by Family.Record against model.
// Tuples are re-validated, so a record that disagrees with the model fails.
func FamilyFromRecord(v ir.IRValue, model *schema.Model) (*Family, error) {
	rec, err := ir.ExpectClass(v, classFamily)
	if err != nil {
		return nil, fmt.Errorf("decode family: %w", err)
	}
	f := NewFamily(model)

	objects, ok := rec["objects"].(ir.IRArray)
	if !ok {
		return nil, fmt.Errorf("decode family: objects must be an array")
	}
	for _, o := range objects {
		obj, err := ir.ExpectClass(o, classObject)
		if err != nil {
			return nil, fmt.Errorf("decode family: %w", err)
		}
		id, err := obj.Str("id")
		if err != nil {
			return nil, fmt.Errorf("decode family: %w", err)
		}
		name, err := obj.Str("name")
		if err != nil {
			return nil, fmt.Errorf("decode family: object %s: %w", id, err)
		}
		sorts, err := ir.ParseSet(obj["sorts"])
		if err != nil {
			return nil, fmt.Errorf("decode family: object %s: %w", id, err)
		}
		for _, s := range sorts {
			if !model.HasSort(schema.Sort(s)) {
				return nil, fmt.Errorf("decode family: object %s: unknown sort %s", id, s)
			}
		}
		if err := f.objects.insert(id, name, sorts); err != nil {
			return nil, fmt.Errorf("decode family: %w", err)
		}
	}

	relations, err := rec.Obj("relations")
	if err != nil {
		return nil, fmt.Errorf("decode family: %w", err)
	}
	for _, mvaID := range relations.SortedKeys() {
		tuples, ok := relations[mvaID].(ir.IRArray)
		if !ok {
			return nil, fmt.Errorf("decode family: relation %s must be an array", mvaID)
		}
		if _, err := f.Relation(mvaID); err != nil {
			return nil, fmt.Errorf("decode family: %w", err)
		}
		for _, tv := range tuples {
			t, err := ir.ExpectClass(tv, classTuple)
			if err != nil {
				return nil, fmt.Errorf("decode family: relation %s: %w", mvaID, err)
			}
			endpoints, err := t.Strs("endpoints")
			if err != nil {
				return nil, fmt.Errorf("decode family: relation %s: %w", mvaID, err)
			}
			labels, ok := t["labels"].(ir.IRArray)
			if !ok {
				return nil, fmt.Errorf("decode family: relation %s: labels must be an array", mvaID)
			}
			if _, err := f.AddTuple(mvaID, endpoints, slices.Clone([]ir.IRValue(labels))...); err != nil {
				return nil, fmt.Errorf("decode family: %w", err)
			}
		}
	}
	return f, nil
}
