package frame

import "fmt"

// ConsistencyCode categorizes data-consistency violations.
type ConsistencyCode string

const (
	// CodeNoFrameIndex indicates a frame path with no parseable index
	// segment, so no level can be derived.
	CodeNoFrameIndex ConsistencyCode = "NO_FRAME_INDEX"

	// CodeNoStackOwner indicates a frame with no stack ancestor.
	CodeNoStackOwner ConsistencyCode = "NO_STACK_OWNER"
)

// ConsistencyError reports trace data that violates an invariant the
// producer was required to uphold. It is fatal for the affected object:
// callers must not retry, substitute defaults, or suppress it.
type ConsistencyError struct {
	// Code identifies the violated invariant.
	Code ConsistencyCode

	// Path is the canonical path of the offending object.
	Path string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *ConsistencyError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Path)
}

// Unwrap returns the underlying cause.
func (e *ConsistencyError) Unwrap() error {
	return e.Err
}
