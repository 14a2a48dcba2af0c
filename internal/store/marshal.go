package store

import (
	"fmt"

	"github.com/roach88/dbnav/internal/ir"
)

// marshalRecord converts a tagged record to canonical JSON TEXT.
// Uses RFC 8785 canonical JSON for deterministic serialization.
func marshalRecord(rec ir.IRObject) (string, error) {
	data, err := ir.MarshalCanonical(rec)
	if err != nil {
		return "", fmt.Errorf("marshal record: %w", err)
	}
	return string(data), nil
}

// unmarshalRecord parses canonical JSON TEXT. Large integers survive
// because decoding goes through json.Number.
func unmarshalRecord(text string) (ir.IRValue, error) {
	v, err := ir.UnmarshalIRValue([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("unmarshal record: %w", err)
	}
	return v, nil
}
