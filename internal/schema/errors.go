package schema

import (
	"errors"
	"fmt"
)

// Error represents a catalog error raised while editing a Model.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Sort identifies the affected sort, if any.
	Sort Sort

	// MVAID identifies the affected attribute, if any.
	MVAID string
}

// ErrorCode categorizes catalog errors.
type ErrorCode string

const (
	// ErrCodeUnknownSort indicates a sort the model does not declare.
	ErrCodeUnknownSort ErrorCode = "UNKNOWN_SORT"

	// ErrCodeDuplicateSort indicates a sort declared twice.
	ErrCodeDuplicateSort ErrorCode = "DUPLICATE_SORT"

	// ErrCodeUnknownMVA indicates an attribute id the model does not hold.
	ErrCodeUnknownMVA ErrorCode = "UNKNOWN_MVA"

	// ErrCodeDuplicateMVA indicates an attribute id already in use.
	ErrCodeDuplicateMVA ErrorCode = "DUPLICATE_MVA"

	// ErrCodeInvalidMVA indicates an ill-formed attribute definition.
	ErrCodeInvalidMVA ErrorCode = "INVALID_MVA"

	// ErrCodeScaleInadmissible indicates a scale kind the data type rejects.
	ErrCodeScaleInadmissible ErrorCode = "SCALE_INADMISSIBLE"
)

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.MVAID != "":
		return fmt.Sprintf("%s: %s (mva=%s)", e.Code, e.Message, e.MVAID)
	case e.Sort.Bound():
		return fmt.Sprintf("%s: %s (sort=%s)", e.Code, e.Message, e.Sort)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// CodeOf returns the catalog error code carried by err, or "".
func CodeOf(err error) ErrorCode {
	var se *Error
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

// IsUnknownMVA returns true if the error reports a missing attribute.
func IsUnknownMVA(err error) bool {
	return CodeOf(err) == ErrCodeUnknownMVA
}

func unknownMVA(id string) *Error {
	return &Error{Code: ErrCodeUnknownMVA, Message: "no such attribute", MVAID: id}
}

func unknownSort(s Sort) *Error {
	return &Error{Code: ErrCodeUnknownSort, Message: "no such sort", Sort: s}
}
