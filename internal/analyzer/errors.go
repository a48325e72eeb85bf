package analyzer

import "fmt"

// ErrorKind discriminates pipeline failures for callers.
type ErrorKind string

const (
	// InvalidInput means the post carried nothing analyzable.
	InvalidInput ErrorKind = "invalid_input"
	// InferenceFailed means the model step failed after its retry budget.
	InferenceFailed ErrorKind = "inference_failed"
)

// Error is the pipeline's failure type.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("analysis failed (%s): %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("analysis failed (%s): %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }
