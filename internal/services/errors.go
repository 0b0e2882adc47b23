package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidRange      = errors.New("invalid range")
	ErrInvalidAsset      = errors.New("invalid asset")
	ErrInvalidTimeFormat = errors.New("invalid time format")
	ErrNotFound          = errors.New("not found")
	ErrInvalidProject    = errors.New("invalid project")
	ErrBackendFailure    = errors.New("backend failure")
	ErrCancelled         = errors.New("cancelled")
	ErrRenderBusy        = errors.New("render in progress")
)

// Wrap builds an error message that includes component context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrBackendFailure
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Kind returns a stable short name for the error category, suitable for CLI
// output and log fields. Unclassified errors report as "internal".
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrInvalidRange):
		return "invalid_range"
	case errors.Is(err, ErrInvalidAsset):
		return "invalid_asset"
	case errors.Is(err, ErrInvalidTimeFormat):
		return "invalid_time_format"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidProject):
		return "invalid_project"
	case errors.Is(err, ErrBackendFailure):
		return "backend_failure"
	case errors.Is(err, ErrCancelled):
		return "cancelled"
	case errors.Is(err, ErrRenderBusy):
		return "render_busy"
	default:
		return "internal"
	}
}

// IsUserError reports whether the error stems from user input rather than the
// engine or an external tool. User errors never warrant a stack trace or retry.
func IsUserError(err error) bool {
	return errors.Is(err, ErrInvalidRange) ||
		errors.Is(err, ErrInvalidAsset) ||
		errors.Is(err, ErrInvalidTimeFormat) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInvalidProject)
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
		return "engine failure"
	}
	return strings.Join(parts, ": ")
}
