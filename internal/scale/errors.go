package scale

import (
	"errors"
	"fmt"

	"github.com/roach88/dbnav/internal/ir"
)

// MalformedLabelError reports a label outside a scale's legal domain. It
// indicates a programming or data error; labels are never coerced.
type MalformedLabelError struct {
	Scale  Kind
	Label  ir.IRValue
	Reason string
}

func (e *MalformedLabelError) Error() string {
	return fmt.Sprintf("malformed %s label %s: %s", e.Scale, describe(e.Label), e.Reason)
}

// IsMalformedLabel checks if an error is a MalformedLabelError.
func IsMalformedLabel(err error) bool {
	var mle *MalformedLabelError
	return errors.As(err, &mle)
}

func malformed(kind Kind, label ir.IRValue, format string, args ...any) error {
	return &MalformedLabelError{Scale: kind, Label: label, Reason: fmt.Sprintf(format, args...)}
}

func describe(v ir.IRValue) string {
	if v == nil {
		return "<nil>"
	}
	if s, ok := v.(ir.IRString); ok {
		return fmt.Sprintf("%q", string(s))
	}
	return ir.Format(v)
}
