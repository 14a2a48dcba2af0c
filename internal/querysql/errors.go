package querysql

import (
	"errors"
	"fmt"
)

// ExecError reports a failure of the database itself: a lost connection,
// a rejected statement, a scan error. It is distinct from the structural
// errors the graph and scales report, and is never retried here.
type ExecError struct {
	SQL    string
	Params []any
	Err    error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("backend execution failed: %v", e.Err)
}

func (e *ExecError) Unwrap() error { return e.Err }

// IsExecError reports whether err is or wraps an ExecError.
func IsExecError(err error) bool {
	var e *ExecError
	return errors.As(err, &e)
}
