package fca

import (
	"context"
	"fmt"

	"github.com/roach88/dbnav/internal/ir"
	"github.com/roach88/dbnav/internal/schema"
)

// Family is a formal context family over a schema: the object context whose
// attributes are sorts, plus one relation context per attribute id.
type Family struct {
	model     *schema.Model
	objects   *FormalContext
	relations map[string]*RelationContext
}

// NewFamily creates an empty family over model. Every declared sort becomes
// an attribute of the object context.
func NewFamily(model *schema.Model) *Family {
	f := &Family{
		model:     model,
		objects:   NewFormalContext(),
		relations: make(map[string]*RelationContext),
	}
	for _, s := range model.Sorts() {
		f.objects.AddAttribute(string(s))
	}
	return f
}

// Model returns the schema the family is typed by.
func (f *Family) Model() *schema.Model { return f.model }

// Objects returns the object context.
func (f *Family) Objects() *FormalContext { return f.objects }

// AddObject adds an object of the given sorts and returns its id.
func (f *Family) AddObject(name string, sorts ...schema.Sort) (string, error) {
	attrs := make([]string, len(sorts))
	for i, s := range sorts {
		if !f.model.HasSort(s) {
			return "", fmt.Errorf("object %q: unknown sort %s", name, s)
		}
		attrs[i] = string(s)
	}
	return f.objects.AddObject(name, attrs...), nil
}

// Relation returns the relation context of an attribute, creating it on
// first use.
func (f *Family) Relation(mvaID string) (*RelationContext, error) {
	if rc, ok := f.relations[mvaID]; ok {
		return rc, nil
	}
	mva, err := f.model.MVA(mvaID)
	if err != nil {
		return nil, err
	}
	rc := NewRelationContext(mva.Arity())
	f.relations[mvaID] = rc
	return rc, nil
}

// AddTuple adds an object tuple to an attribute's relation context. Every
// endpoint must be an object of the attribute's role sort.
func (f *Family) AddTuple(mvaID string, endpoints []string, labels ...ir.IRValue) (string, error) {
	mva, err := f.model.MVA(mvaID)
	if err != nil {
		return "", err
	}
	if len(endpoints) != mva.Arity() {
		return "", fmt.Errorf("attribute %s: tuple has %d endpoints, arity is %d", mva.Name, len(endpoints), mva.Arity())
	}
	for i, obj := range endpoints {
		if !f.objects.Has(obj, string(mva.Sorts[i])) {
			return "", fmt.Errorf("attribute %s: role %d requires %s, object %s is not one", mva.Name, i+1, mva.Sorts[i], obj)
		}
	}
	if mva.Scale != nil {
		for _, l := range labels {
			ok, err := mva.Scale.Admits(mva.Scale.Top(), l)
			if err != nil {
				return "", fmt.Errorf("attribute %s: %w", mva.Name, err)
			}
			if !ok {
				return "", fmt.Errorf("attribute %s: label %s is outside the %s scale", mva.Name, ir.Format(l), mva.Scale.Kind())
			}
		}
	}
	rc, err := f.Relation(mvaID)
	if err != nil {
		return "", err
	}
	return rc.AddTuple(endpoints, labels...)
}

// SortCounts returns the number of objects of every declared sort.
func (f *Family) SortCounts(ctx context.Context) (map[schema.Sort]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	counts := make(map[schema.Sort]int)
	for _, s := range f.model.Sorts() {
		counts[s] = len(f.objects.Extent(string(s)))
	}
	return counts, nil
}
