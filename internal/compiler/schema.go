package compiler

import (
	"fmt"

	"cuelang.org/go/cue"

	"github.com/roach88/dbnav/internal/scale"
	"github.com/roach88/dbnav/internal/schema"
)

// CompileSchema parses a CUE schema block into a model.
//
// The CUE value should be the schema struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(src)
//	model, err := CompileSchema(v.LookupPath(cue.ParsePath("schema")))
func CompileSchema(v cue.Value) (*schema.Model, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	sortsVal := v.LookupPath(cue.ParsePath("sorts"))
	if !sortsVal.Exists() {
		return nil, compileErrorf(v, "sorts", "at least one sort is required")
	}
	iter, err := sortsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	m := schema.NewModel()
	for iter.Next() {
		name := iter.Label()
		printExpr, err := requireString(iter.Value(), "print")
		if err != nil {
			return nil, err
		}
		if err := m.AddSort(schema.Sort(name), printExpr); err != nil {
			return nil, &CompileError{Field: "sorts." + name, Message: err.Error(), Pos: iter.Value().Pos()}
		}
	}
	if len(m.Sorts()) == 0 {
		return nil, compileErrorf(sortsVal, "sorts", "at least one sort is required")
	}

	attrsVal := v.LookupPath(cue.ParsePath("attributes"))
	if !attrsVal.Exists() {
		return m, nil
	}
	attrs, err := attrsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for attrs.Next() {
		id := attrs.Label()
		av := attrs.Value()
		mva, err := parseAttribute(id, av)
		if err != nil {
			return nil, err
		}
		if err := m.Insert(mva); err != nil {
			return nil, attributeError(av, id, err)
		}

		sv := av.LookupPath(cue.ParsePath("scale"))
		if !sv.Exists() {
			continue
		}
		s, err := parseScale(sv)
		if err != nil {
			return nil, err
		}
		if err := m.AttachScale(id, s); err != nil {
			return nil, attributeError(sv, id+".scale", err)
		}
	}
	return m, nil
}

// parseAttribute builds an attribute definition, inferring its kind from
// the fields present.
func parseAttribute(id string, v cue.Value) (schema.MVA, error) {
	field := "attributes." + id
	name, ok, err := lookupString(v, "name")
	if err != nil {
		return schema.MVA{}, err
	}
	if !ok {
		name = id
	}

	var mva schema.MVA
	switch {
	case v.LookupPath(cue.ParsePath("from")).Exists():
		from, err := parseEnd(v, "from")
		if err != nil {
			return schema.MVA{}, err
		}
		to, err := parseEnd(v, "to")
		if err != nil {
			return schema.MVA{}, err
		}
		mva = schema.NewForeignKey(name, from.sort, from.column, to.sort, to.column)

	case v.LookupPath(cue.ParsePath("sorts")).Exists():
		sortNames, _, err := lookupStrings(v, "sorts")
		if err != nil {
			return schema.MVA{}, err
		}
		roles, _, err := lookupStrings(v, "roles")
		if err != nil {
			return schema.MVA{}, err
		}
		datatype, err := requireString(v, "datatype")
		if err != nil {
			return schema.MVA{}, err
		}
		expr, _, err := lookupString(v, "expr")
		if err != nil {
			return schema.MVA{}, err
		}
		sorts := make([]schema.Sort, len(sortNames))
		for i, s := range sortNames {
			sorts[i] = schema.Sort(s)
		}
		mva = schema.NewDerived(name, sorts, datatype, expr, roles)

	case v.LookupPath(cue.ParsePath("sort")).Exists():
		sort, err := requireString(v, "sort")
		if err != nil {
			return schema.MVA{}, err
		}
		datatype, err := requireString(v, "datatype")
		if err != nil {
			return schema.MVA{}, err
		}
		column, ok, err := lookupString(v, "column")
		if err != nil {
			return schema.MVA{}, err
		}
		if !ok {
			column = name
		}
		mva = schema.NewColumn(column, schema.Sort(sort), datatype)
		mva.Name = name

	default:
		return schema.MVA{}, compileErrorf(v, field, "attribute needs sort, sorts or from/to")
	}
	mva.ID = id
	return mva, nil
}

type end struct {
	sort   schema.Sort
	column string
}

func parseEnd(v cue.Value, path string) (end, error) {
	ev := v.LookupPath(cue.ParsePath(path))
	if !ev.Exists() {
		return end{}, compileErrorf(v, path, "%s is required for a foreign key", path)
	}
	sort, err := requireString(ev, "sort")
	if err != nil {
		return end{}, err
	}
	column, err := requireString(ev, "column")
	if err != nil {
		return end{}, err
	}
	return end{sort: schema.Sort(sort), column: column}, nil
}

// parseScale reads either a bare kind ("prefix", "boolean") or a struct
// with a kind field and date interval bounds.
func parseScale(v cue.Value) (scale.Scale, error) {
	kind, err := v.String()
	if err != nil {
		if kind, err = requireString(v, "kind"); err != nil {
			return nil, err
		}
	}

	switch scale.Kind(kind) {
	case scale.KindBoolean:
		return scale.Boolean{}, nil
	case scale.KindPrefix:
		return scale.Prefix{}, nil
	case scale.KindDateInterval:
		bounds := make(map[string]int)
		for _, key := range []string{"min", "max", "step"} {
			n, ok, err := lookupInt(v, key)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, compileErrorf(v, "scale."+key, "date_interval scale requires %s", key)
			}
			bounds[key] = n
		}
		d, err := scale.NewDateInterval(bounds["min"], bounds["max"], bounds["step"])
		if err != nil {
			return nil, &CompileError{Field: "scale", Message: err.Error(), Pos: v.Pos()}
		}
		return d, nil
	default:
		return nil, compileErrorf(v, "scale", "unknown scale kind %q", kind)
	}
}

func attributeError(v cue.Value, id string, err error) *CompileError {
	return &CompileError{Field: fmt.Sprintf("attributes.%s", id), Message: err.Error(), Pos: v.Pos()}
}
