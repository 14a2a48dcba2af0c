package compiler

import (
	"cuelang.org/go/cue"

	"github.com/roach88/dbnav/internal/ir"
)

// toIR converts a concrete CUE value to an IR value. Floats are forbidden.
func toIR(v cue.Value, field string) (ir.IRValue, error) {
	switch v.IncompleteKind() {
	case cue.NullKind:
		return ir.IRNull{}, nil
	case cue.StringKind:
		s, err := v.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return ir.IRString(s), nil
	case cue.IntKind:
		n, err := v.Int64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return ir.IRInt(n), nil
	case cue.BoolKind:
		b, err := v.Bool()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return ir.IRBool(b), nil
	case cue.ListKind:
		iter, err := v.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		arr := ir.IRArray{}
		for iter.Next() {
			elem, err := toIR(iter.Value(), field)
			if err != nil {
				return nil, err
			}
			arr = append(arr, elem)
		}
		return arr, nil
	case cue.StructKind:
		iter, err := v.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		obj := ir.IRObject{}
		for iter.Next() {
			elem, err := toIR(iter.Value(), field)
			if err != nil {
				return nil, err
			}
			obj[iter.Label()] = elem
		}
		return obj, nil
	case cue.FloatKind, cue.NumberKind:
		return nil, compileErrorf(v, field, "float values are forbidden, use int instead")
	default:
		return nil, compileErrorf(v, field, "unsupported value kind: %v", v.IncompleteKind())
	}
}

// lookupString returns an optional string field.
func lookupString(v cue.Value, path string) (string, bool, error) {
	f := v.LookupPath(cue.ParsePath(path))
	if !f.Exists() {
		return "", false, nil
	}
	s, err := f.String()
	if err != nil {
		return "", false, formatCUEError(err)
	}
	return s, true, nil
}

// requireString returns a mandatory string field.
func requireString(v cue.Value, path string) (string, error) {
	s, ok, err := lookupString(v, path)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", compileErrorf(v, path, "%s is required", path)
	}
	return s, nil
}

// lookupStrings returns an optional list of strings.
func lookupStrings(v cue.Value, path string) ([]string, bool, error) {
	f := v.LookupPath(cue.ParsePath(path))
	if !f.Exists() {
		return nil, false, nil
	}
	iter, err := f.List()
	if err != nil {
		return nil, false, formatCUEError(err)
	}
	var out []string
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, false, formatCUEError(err)
		}
		out = append(out, s)
	}
	return out, true, nil
}

func lookupInt(v cue.Value, path string) (int, bool, error) {
	f := v.LookupPath(cue.ParsePath(path))
	if !f.Exists() {
		return 0, false, nil
	}
	n, err := f.Int64()
	if err != nil {
		return 0, false, formatCUEError(err)
	}
	return int(n), true, nil
}
