package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation marks malformed or missing caller input. Rejected before
	// any side effect; resolvable by the calling actor.
	ErrValidation = errors.New("validation error")
	// ErrNotFound marks an unknown job or listing identifier.
	ErrNotFound = errors.New("not found")
	// ErrTransient marks a network or upstream-server failure that a later
	// attempt is expected to resolve. Callers of poll never see it.
	ErrTransient = errors.New("transient failure")
	// ErrUpstream marks an explicit failure reported by the external
	// processor, or a failed remote job creation.
	ErrUpstream = errors.New("upstream failure")
	// ErrConflict marks a row that changed between read and write, or an
	// operation invalid for the record's current state. Retryable by an
	// operator, never silently overwritten.
	ErrConflict = errors.New("conflict")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsRetryable reports whether the error is expected to resolve on a later
// attempt without operator intervention.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTransient) || errors.Is(err, ErrConflict)
}

// Kind returns the short classification label for an error, used in logs and
// bulk operation results.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrTransient):
		return "transient"
	case errors.Is(err, ErrUpstream):
		return "upstream"
	case errors.Is(err, ErrConflict):
		return "conflict"
	default:
		return "internal"
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
