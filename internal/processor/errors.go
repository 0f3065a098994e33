package processor

import "fmt"

// PreconditionError aborts a run before any file is processed.
type PreconditionError struct {
	Reason string
	Err    error
}

func (e *PreconditionError) Error() string {
	if e.Err == nil {
		return e.Reason
	}
	return fmt.Sprintf("%s: %v", e.Reason, e.Err)
}

func (e *PreconditionError) Unwrap() error { return e.Err }
