package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"cuelang.org/go/cue/token"

	"github.com/roach88/dbnav/internal/compiler"
)

// LoadResult contains a compiled spec and where it came from.
type LoadResult struct {
	Spec      *compiler.Spec
	FileCount int // Number of CUE files found
}

// LoadError represents an error that occurred during spec loading.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadSpecs compiles the spec at path, a .cue file or a directory of them.
// Every failure is a *LoadError.
func LoadSpecs(path string) (*LoadResult, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("spec path not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing spec path: %v", err)}
	}

	files := []string{path}
	if info.IsDir() {
		files, err = compiler.FindFiles(path)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}
		}
		if len(files) == 0 {
			return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", path)}
		}
	}

	spec, err := compiler.Load(path)
	if err != nil {
		return nil, convertCompileError(err)
	}
	return &LoadResult{Spec: spec, FileCount: len(files)}, nil
}

// convertCompileError converts a compiler error to a LoadError with position info.
func convertCompileError(err error) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    MapFieldToErrorCode(compileErr.Field),
			Message: compileErr.Message,
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{Code: ErrCodeLoadFailed, Message: err.Error()}
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeWriteFailed = "E007" // File write error

	// Backend and store errors
	ErrCodeStore    = "E010" // Store open/read/write failed
	ErrCodeBackend  = "E011" // Database connection or query failed
	ErrCodeBinding  = "E012" // Unknown or unusable binding
	ErrCodeGraph    = "E013" // Rejected navigation operation
	ErrCodeArgument = "E014" // Malformed flag value

	// Spec compile errors (validation findings use E101-E104)
	ErrCodeSchema = "E110" // Invalid schema block
	ErrCodeData   = "E111" // Invalid data block
)

// MapFieldToErrorCode maps a compiler error field to an error code.
func MapFieldToErrorCode(field string) string {
	switch {
	case field == "cue":
		return ErrCodeBuildFailed
	case field == "schema", field == "sorts", field == "print",
		strings.HasPrefix(field, "sorts."), strings.HasPrefix(field, "attributes."):
		return ErrCodeSchema
	case field == "data", strings.HasPrefix(field, "data."),
		strings.HasPrefix(field, "objects"), strings.HasPrefix(field, "tuples"):
		return ErrCodeData
	default:
		return ErrCodeGeneric
	}
}
