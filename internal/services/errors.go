package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrFetch marks a transport-level failure from a single source adapter.
	ErrFetch = errors.New("fetch error")
	// ErrFetchTimeout marks a source adapter that exceeded its per-call budget.
	ErrFetchTimeout = errors.New("fetch timeout")
	// ErrAllSourcesFailed marks a run where no adapter produced a result set.
	ErrAllSourcesFailed = errors.New("all sources failed")
	// ErrGeneration marks a failure from the text-generation collaborator.
	ErrGeneration = errors.New("generation error")
	// ErrGenerationTimeout marks a generation call that exceeded its deadline.
	ErrGenerationTimeout = errors.New("generation timeout")
	// ErrValidation marks data that failed structural validation.
	ErrValidation = errors.New("validation error")
	// ErrConfiguration marks malformed run configuration detected before stages execute.
	ErrConfiguration = errors.New("configuration error")
	// ErrStage marks a graph node that failed after exhausting local retries.
	ErrStage = errors.New("stage failure")
	// ErrTransient marks failures expected to succeed on retry.
	ErrTransient = errors.New("transient failure")
)

// Wrap builds an error message that includes node context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, node, operation, message string, err error) error {
	detail := buildDetail(node, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsFatal reports whether an error should halt the run immediately rather than
// be absorbed as a partial failure. Adapter-level fetch errors are recoverable;
// configuration, stage, and all-sources failures are not.
func IsFatal(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, ErrConfiguration), errors.Is(err, ErrStage), errors.Is(err, ErrAllSourcesFailed):
		return true
	default:
		return false
	}
}

// IsTimeout reports whether an error carries one of the timeout markers.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrFetchTimeout) || errors.Is(err, ErrGenerationTimeout)
}

func buildDetail(node, operation, message string) string {
	parts := make([]string, 0, 3)
	if node = strings.TrimSpace(node); node != "" {
		parts = append(parts, node)
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
