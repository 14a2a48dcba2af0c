package graph

import (
	"errors"
	"fmt"
	"strings"
)

// Error represents a structural error raised by a graph operation. Errors
// are reported before any mutation, so a failed operation leaves the graph
// unchanged.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// NodeID identifies the offending node, if any.
	NodeID string

	// RNodeID identifies the offending relation instance, if any.
	RNodeID string

	// MVAID identifies the offending attribute, if any.
	MVAID string

	// Err is the underlying cause, if any.
	Err error
}

// ErrorCode categorizes graph errors.
type ErrorCode string

const (
	// ErrCodeSupremumUndefined indicates a merge of incompatible bound sorts.
	ErrCodeSupremumUndefined ErrorCode = "SUPREMUM_UNDEFINED"

	// ErrCodeArityMismatch indicates an endpoint list of the wrong length.
	ErrCodeArityMismatch ErrorCode = "ARITY_MISMATCH"

	// ErrCodeSortIncompatible indicates an endpoint whose sort violates the
	// attribute's role typing.
	ErrCodeSortIncompatible ErrorCode = "SORT_INCOMPATIBLE"

	// ErrCodeUnscaledRelation indicates an attribute without a scale.
	ErrCodeUnscaledRelation ErrorCode = "UNSCALED_RELATION"

	// ErrCodeUnknownNode indicates a node id not in the graph.
	ErrCodeUnknownNode ErrorCode = "UNKNOWN_NODE"

	// ErrCodeUnknownRNode indicates a relation instance id not in the graph.
	ErrCodeUnknownRNode ErrorCode = "UNKNOWN_RNODE"

	// ErrCodeUnknownMVA indicates an attribute the schema does not hold.
	ErrCodeUnknownMVA ErrorCode = "UNKNOWN_MVA"

	// ErrCodeSortLocked indicates a sort change on a constrained node.
	ErrCodeSortLocked ErrorCode = "SORT_LOCKED"

	// ErrCodeNotDisplayable indicates an attribute that cannot be displayed
	// on a node.
	ErrCodeNotDisplayable ErrorCode = "NOT_DISPLAYABLE"

	// ErrCodeMalformedLabel indicates a label the scale rejects.
	ErrCodeMalformedLabel ErrorCode = "MALFORMED_LABEL"

	// ErrCodeInvalidRole indicates a role position outside an attribute's
	// arity.
	ErrCodeInvalidRole ErrorCode = "INVALID_ROLE"

	// ErrCodeUnboundNode indicates a query over a node with no sort.
	ErrCodeUnboundNode ErrorCode = "UNBOUND_NODE"
)

// Error implements the error interface.
func (e *Error) Error() string {
	var ids []string
	if e.NodeID != "" {
		ids = append(ids, "node="+e.NodeID)
	}
	if e.RNodeID != "" {
		ids = append(ids, "rnode="+e.RNodeID)
	}
	if e.MVAID != "" {
		ids = append(ids, "mva="+e.MVAID)
	}
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if len(ids) > 0 {
		msg += " (" + strings.Join(ids, ", ") + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// CodeOf returns the graph error code carried by err, or "".
func CodeOf(err error) ErrorCode {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Code
	}
	return ""
}

// IsSupremumUndefined returns true if the error reports incompatible sorts.
func IsSupremumUndefined(err error) bool {
	return CodeOf(err) == ErrCodeSupremumUndefined
}

func unknownNode(id string) *Error {
	return &Error{Code: ErrCodeUnknownNode, Message: "no such node", NodeID: id}
}

func unknownRNode(id string) *Error {
	return &Error{Code: ErrCodeUnknownRNode, Message: "no such relation instance", RNodeID: id}
}

func unknownMVA(rnodeID, mvaID string, cause error) *Error {
	return &Error{Code: ErrCodeUnknownMVA, Message: "attribute not in schema", RNodeID: rnodeID, MVAID: mvaID, Err: cause}
}
