package engine

import (
	"fmt"
	"strings"
)

// ValidationError means the input was rejected before any store
// access. When the rejection was caused by unresolved placeholder
// tokens, Placeholders lists them so the caller can correct the body
// without guessing.
type ValidationError struct {
	Message      string
	Placeholders []string
}

func (e *ValidationError) Error() string { return e.Message }

// PreconditionError means the operation's guard failed against current
// state: the ticket does not exist, is in the wrong column, or the
// migration target is unknown. Nothing was written.
type PreconditionError struct {
	Message string
}

func (e *PreconditionError) Error() string { return e.Message }

func validationf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func preconditionf(format string, args ...any) error {
	return &PreconditionError{Message: fmt.Sprintf(format, args...)}
}

func placeholderError(tokens []string) error {
	return &ValidationError{
		Message:      fmt.Sprintf("body still contains placeholder tokens: %s", strings.Join(tokens, ", ")),
		Placeholders: tokens,
	}
}
