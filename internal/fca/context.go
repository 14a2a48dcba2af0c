package fca

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/roach88/dbnav/internal/ir"
	"github.com/roach88/dbnav/internal/scale"
)

// FormalContext relates objects to attributes. Object ids are g1, g2, ...;
// every object also carries a display name.
type FormalContext struct {
	names      map[string]string
	order      []string
	attributes map[string]bool
	incidence  map[string]map[string]bool
	nextID     int
}

// NewFormalContext creates an empty context over the given attributes.
func NewFormalContext(attributes ...string) *FormalContext {
	fc := &FormalContext{
		names:      make(map[string]string),
		attributes: make(map[string]bool),
		incidence:  make(map[string]map[string]bool),
		nextID:     1,
	}
	for _, m := range attributes {
		fc.AddAttribute(m)
	}
	return fc
}

// AddObject adds an object incident to attrs and returns its id.
func (fc *FormalContext) AddObject(name string, attrs ...string) string {
	id := "g" + strconv.Itoa(fc.nextID)
	fc.nextID++
	fc.names[id] = name
	fc.order = append(fc.order, id)
	fc.incidence[id] = make(map[string]bool)
	for _, m := range attrs {
		fc.AddAttribute(m)
		fc.incidence[id][m] = true
	}
	return id
}

// AddAttribute declares an attribute.
func (fc *FormalContext) AddAttribute(m string) {
	fc.attributes[m] = true
}

// SetIncidence marks obj as having attribute m.
func (fc *FormalContext) SetIncidence(obj, m string) error {
	if _, ok := fc.names[obj]; !ok {
		return fmt.Errorf("unknown object %s", obj)
	}
	fc.AddAttribute(m)
	fc.incidence[obj][m] = true
	return nil
}

// UnsetIncidence removes attribute m from obj.
func (fc *FormalContext) UnsetIncidence(obj, m string) {
	if atts, ok := fc.incidence[obj]; ok {
		delete(atts, m)
	}
}

// Has reports whether obj has attribute m.
func (fc *FormalContext) Has(obj, m string) bool {
	return fc.incidence[obj][m]
}

// Name returns the display name of an object.
func (fc *FormalContext) Name(obj string) (string, bool) {
	name, ok := fc.names[obj]
	return name, ok
}

// Objects returns all object ids in insertion order.
func (fc *FormalContext) Objects() []string {
	return slices.Clone(fc.order)
}

// Attributes returns all attributes, sorted.
func (fc *FormalContext) Attributes() []string {
	atts := make([]string, 0, len(fc.attributes))
	for m := range fc.attributes {
		atts = append(atts, m)
	}
	slices.Sort(atts)
	return atts
}

// Extent returns the objects having every attribute in attrs, in insertion
// order.
func (fc *FormalContext) Extent(attrs ...string) []string {
	var ext []string
	for _, obj := range fc.order {
		if fc.hasAll(obj, attrs) {
			ext = append(ext, obj)
		}
	}
	return ext
}

// Intent returns the attributes shared by every object in objs, sorted.
func (fc *FormalContext) Intent(objs ...string) []string {
	var intent []string
	for _, m := range fc.Attributes() {
		shared := true
		for _, obj := range objs {
			if !fc.Has(obj, m) {
				shared = false
				break
			}
		}
		if shared {
			intent = append(intent, m)
		}
	}
	return intent
}

func (fc *FormalContext) hasAll(obj string, attrs []string) bool {
	for _, m := range attrs {
		if !fc.Has(obj, m) {
			return false
		}
	}
	return true
}

// Tuple is an object tuple of a relation context with its incident labels.
type Tuple struct {
	ID        string
	Endpoints []string
	Labels    []ir.IRValue
}

// RelationContext relates object tuples of a fixed arity to labels.
// Tuple ids are t1, t2, ...
type RelationContext struct {
	arity  int
	tuples map[string]*Tuple
	order  []string
	nextID int
}

// NewRelationContext creates an empty relation context.
func NewRelationContext(arity int) *RelationContext {
	return &RelationContext{
		arity:  arity,
		tuples: make(map[string]*Tuple),
		nextID: 1,
	}
}

// Arity returns the tuple length.
func (rc *RelationContext) Arity() int { return rc.arity }

// AddTuple adds an object tuple incident to labels and returns its id.
func (rc *RelationContext) AddTuple(endpoints []string, labels ...ir.IRValue) (string, error) {
	if len(endpoints) != rc.arity {
		return "", fmt.Errorf("tuple has %d endpoints, relation arity is %d", len(endpoints), rc.arity)
	}
	id := "t" + strconv.Itoa(rc.nextID)
	rc.nextID++
	rc.tuples[id] = &Tuple{ID: id, Endpoints: slices.Clone(endpoints), Labels: slices.Clone(labels)}
	rc.order = append(rc.order, id)
	return id, nil
}

// SetIncidence adds a label to a tuple.
func (rc *RelationContext) SetIncidence(tupleID string, label ir.IRValue) error {
	t, ok := rc.tuples[tupleID]
	if !ok {
		return fmt.Errorf("unknown tuple %s", tupleID)
	}
	for _, l := range t.Labels {
		if ir.Equal(l, label) {
			return nil
		}
	}
	t.Labels = append(t.Labels, label)
	return nil
}

// Tuples returns copies of all tuples in insertion order.
func (rc *RelationContext) Tuples() []Tuple {
	out := make([]Tuple, 0, len(rc.order))
	for _, id := range rc.order {
		t := rc.tuples[id]
		out = append(out, Tuple{ID: t.ID, Endpoints: slices.Clone(t.Endpoints), Labels: slices.Clone(t.Labels)})
	}
	return out
}

// Match is a tuple admitted by a label, with the first incident label the
// query label admits.
type Match struct {
	Endpoints []string
	Value     ir.IRValue
}

// Extent returns the tuples having a label that label admits under s.
func (rc *RelationContext) Extent(s scale.Scale, label ir.IRValue) ([]Match, error) {
	if err := s.Validate(label); err != nil {
		return nil, err
	}
	var matches []Match
	for _, id := range rc.order {
		t := rc.tuples[id]
		for _, l := range t.Labels {
			ok, err := s.Admits(label, l)
			if err != nil {
				return nil, err
			}
			if ok {
				matches = append(matches, Match{Endpoints: t.Endpoints, Value: l})
				break
			}
		}
	}
	return matches, nil
}

// ValuesOf returns the labels of tuples whose endpoints equal endpoints.
func (rc *RelationContext) ValuesOf(endpoints ...string) []ir.IRValue {
	var values []ir.IRValue
	for _, id := range rc.order {
		t := rc.tuples[id]
		if slices.Equal(t.Endpoints, endpoints) {
			values = append(values, t.Labels...)
		}
	}
	return values
}

// insert adds an object under an explicit id, keeping the id counter ahead.
func (fc *FormalContext) insert(id, name string, attrs []string) error {
	if _, ok := fc.names[id]; ok {
		return fmt.Errorf("duplicate object %s", id)
	}
	fc.names[id] = name
	fc.order = append(fc.order, id)
	fc.incidence[id] = make(map[string]bool)
	for _, m := range attrs {
		fc.AddAttribute(m)
		fc.incidence[id][m] = true
	}
	if n, err := strconv.Atoi(strings.TrimPrefix(id, "g")); err == nil && n >= fc.nextID {
		fc.nextID = n + 1
	}
	return nil
}
