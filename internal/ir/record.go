package ir

import (
	"fmt"
	"slices"
	"time"
)

// Record keys reserved by the tagged-record protocol.
const (
	ClassKey = "_cls"
	ValueKey = "_val"
)

// Built-in record classes for values that JSON has no native form for.
const (
	ClassDate     = "date"
	ClassDateTime = "datetime"
	ClassSet      = "set"
)

// DateLayout is the wire layout of ClassDate values.
const DateLayout = "2006-01-02"

// Tag returns a copy of fields carrying the given class tag.
func Tag(class string, fields IRObject) IRObject {
	rec := make(IRObject, len(fields)+1)
	for k, v := range fields {
		rec[k] = v
	}
	rec[ClassKey] = IRString(class)
	return rec
}

// ClassOf returns the class tag of a record.
func ClassOf(v IRValue) (string, error) {
	obj, ok := v.(IRObject)
	if !ok {
		return "", fmt.Errorf("expected tagged record, got %T", v)
	}
	cls, ok := obj[ClassKey].(IRString)
	if !ok {
		return "", fmt.Errorf("record has no %s tag", ClassKey)
	}
	return string(cls), nil
}

// ExpectClass decodes v as a record and verifies its class tag.
func ExpectClass(v IRValue, class string) (IRObject, error) {
	cls, err := ClassOf(v)
	if err != nil {
		return nil, err
	}
	if cls != class {
		return nil, fmt.Errorf("expected %s record, got %s", class, cls)
	}
	return v.(IRObject), nil
}

// DateValue encodes a calendar date.
func DateValue(t time.Time) IRObject {
	return IRObject{ClassKey: IRString(ClassDate), ValueKey: IRString(t.Format(DateLayout))}
}

// DateTimeValue encodes an instant with its offset.
func DateTimeValue(t time.Time) IRObject {
	return IRObject{ClassKey: IRString(ClassDateTime), ValueKey: IRString(t.Format(time.RFC3339Nano))}
}

// ParseTime decodes a ClassDate or ClassDateTime record.
func ParseTime(v IRValue) (time.Time, error) {
	cls, err := ClassOf(v)
	if err != nil {
		return time.Time{}, err
	}
	raw, ok := v.(IRObject)[ValueKey].(IRString)
	if !ok {
		return time.Time{}, fmt.Errorf("%s record has no string %s", cls, ValueKey)
	}
	switch cls {
	case ClassDate:
		return time.Parse(DateLayout, string(raw))
	case ClassDateTime:
		return time.Parse(time.RFC3339Nano, string(raw))
	default:
		return time.Time{}, fmt.Errorf("expected date record, got %s", cls)
	}
}

// SetValue encodes an unordered set of strings. Members are sorted so the
// encoding does not depend on insertion order.
func SetValue(members []string) IRObject {
	sorted := slices.Clone(members)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)
	return IRObject{ClassKey: IRString(ClassSet), ValueKey: Strings(sorted)}
}

// ParseSet decodes a ClassSet record.
func ParseSet(v IRValue) ([]string, error) {
	obj, err := ExpectClass(v, ClassSet)
	if err != nil {
		return nil, err
	}
	return AsStrings(obj[ValueKey])
}

// Str reads a required string field.
func (obj IRObject) Str(key string) (string, error) {
	s, ok := obj[key].(IRString)
	if !ok {
		return "", fmt.Errorf("field %q: expected string, got %T", key, obj[key])
	}
	return string(s), nil
}

// OptStr reads an optional string field; a missing key yields "".
func (obj IRObject) OptStr(key string) (string, error) {
	if _, ok := obj[key]; !ok {
		return "", nil
	}
	return obj.Str(key)
}

// Int reads a required integer field.
func (obj IRObject) Int(key string) (int64, error) {
	n, ok := obj[key].(IRInt)
	if !ok {
		return 0, fmt.Errorf("field %q: expected int, got %T", key, obj[key])
	}
	return int64(n), nil
}

// Obj reads a required object field.
func (obj IRObject) Obj(key string) (IRObject, error) {
	o, ok := obj[key].(IRObject)
	if !ok {
		return nil, fmt.Errorf("field %q: expected object, got %T", key, obj[key])
	}
	return o, nil
}

// Strs reads a required list-of-strings field.
func (obj IRObject) Strs(key string) ([]string, error) {
	ss, err := AsStrings(obj[key])
	if err != nil {
		return nil, fmt.Errorf("field %q: %w", key, err)
	}
	return ss, nil
}

// AsStrings converts an IRArray of IRString into a string slice.
func AsStrings(v IRValue) ([]string, error) {
	arr, ok := v.(IRArray)
	if !ok {
		return nil, fmt.Errorf("expected array, got %T", v)
	}
	out := make([]string, len(arr))
	for i, elem := range arr {
		s, ok := elem.(IRString)
		if !ok {
			return nil, fmt.Errorf("[%d]: expected string, got %T", i, elem)
		}
		out[i] = string(s)
	}
	return out, nil
}
