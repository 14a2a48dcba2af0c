package compiler

import (
	"fmt"

	"cuelang.org/go/cue"

	"github.com/roach88/dbnav/internal/fca"
	"github.com/roach88/dbnav/internal/ir"
	"github.com/roach88/dbnav/internal/scale"
	"github.com/roach88/dbnav/internal/schema"
)

// CompileData parses a CUE data block into a context family over model.
// Objects are referenced from tuples by their CUE label.
func CompileData(v cue.Value, model *schema.Model) (*fca.Family, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	f := fca.NewFamily(model)
	refs := make(map[string]string)

	if ov := v.LookupPath(cue.ParsePath("objects")); ov.Exists() {
		iter, err := ov.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for iter.Next() {
			ref := iter.Label()
			obj, err := parseObject(f, ref, iter.Value())
			if err != nil {
				return nil, err
			}
			refs[ref] = obj
		}
	}

	tv := v.LookupPath(cue.ParsePath("tuples"))
	if !tv.Exists() {
		return f, nil
	}
	iter, err := tv.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for i := 0; iter.Next(); i++ {
		if err := parseTuple(f, model, refs, i, iter.Value()); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func parseObject(f *fca.Family, ref string, v cue.Value) (string, error) {
	field := "objects." + ref
	name, ok, err := lookupString(v, "name")
	if err != nil {
		return "", err
	}
	if !ok {
		name = ref
	}

	sortNames, ok, err := lookupStrings(v, "sorts")
	if err != nil {
		return "", err
	}
	if !ok {
		s, err := requireString(v, "sort")
		if err != nil {
			return "", compileErrorf(v, field, "object needs sort or sorts")
		}
		sortNames = []string{s}
	}
	sorts := make([]schema.Sort, len(sortNames))
	for i, s := range sortNames {
		sorts[i] = schema.Sort(s)
	}

	obj, err := f.AddObject(name, sorts...)
	if err != nil {
		return "", &CompileError{Field: field, Message: err.Error(), Pos: v.Pos()}
	}
	return obj, nil
}

func parseTuple(f *fca.Family, model *schema.Model, refs map[string]string, i int, v cue.Value) error {
	field := fmt.Sprintf("tuples[%d]", i)
	mvaID, err := requireString(v, "attribute")
	if err != nil {
		return err
	}
	mva, err := model.MVA(mvaID)
	if err != nil {
		return &CompileError{Field: field, Message: err.Error(), Pos: v.Pos()}
	}

	names, ok, err := lookupStrings(v, "endpoints")
	if err != nil {
		return err
	}
	if !ok {
		return compileErrorf(v, field+".endpoints", "endpoints are required")
	}
	endpoints := make([]string, len(names))
	for j, ref := range names {
		obj, ok := refs[ref]
		if !ok {
			return compileErrorf(v, field+".endpoints", "unknown object %q", ref)
		}
		endpoints[j] = obj
	}

	var raw []cue.Value
	if lv := v.LookupPath(cue.ParsePath("label")); lv.Exists() {
		raw = append(raw, lv)
	}
	if lv := v.LookupPath(cue.ParsePath("labels")); lv.Exists() {
		iter, err := lv.List()
		if err != nil {
			return formatCUEError(err)
		}
		for iter.Next() {
			raw = append(raw, iter.Value())
		}
	}

	var labels []ir.IRValue
	for _, lv := range raw {
		val, err := toIR(lv, field+".label")
		if err != nil {
			return err
		}
		label, err := normalizeLabel(mva.Scale, val)
		if err != nil {
			return &CompileError{Field: field + ".label", Message: err.Error(), Pos: lv.Pos()}
		}
		labels = append(labels, label)
	}
	if len(labels) == 0 {
		if mva.Scale == nil || mva.Scale.Kind() != scale.KindBoolean {
			return compileErrorf(v, field, "tuple of %s needs a label", mva.Name)
		}
		labels = append(labels, scale.BooleanLabel)
	}

	if _, err := f.AddTuple(mvaID, endpoints, labels...); err != nil {
		return &CompileError{Field: field, Message: err.Error(), Pos: v.Pos()}
	}
	return nil
}

// normalizeLabel maps the convenient spellings of a label onto the form
// its scale validates: true for Boolean, a date or year for DateInterval.
func normalizeLabel(s scale.Scale, v ir.IRValue) (ir.IRValue, error) {
	if s == nil {
		return v, nil
	}
	switch s.Kind() {
	case scale.KindBoolean:
		switch val := v.(type) {
		case ir.IRBool:
			if !val {
				return nil, fmt.Errorf("false tuples are omitted, not labeled")
			}
			return scale.BooleanLabel, nil
		case ir.IRInt:
			if val == 1 {
				return scale.BooleanLabel, nil
			}
		}
	case scale.KindDateInterval:
		switch val := v.(type) {
		case ir.IRInt:
			return scale.Label(int(val), int(val)), nil
		case ir.IRString:
			year, ok := scale.YearOf(string(val))
			if !ok {
				return nil, fmt.Errorf("cannot read a year from %q", string(val))
			}
			return scale.Label(year, year), nil
		}
	}
	if err := s.Validate(v); err != nil {
		return nil, err
	}
	return v, nil
}
