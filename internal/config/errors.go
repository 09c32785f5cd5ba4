package config

import (
	"errors"
	"fmt"
)

// Error is a configuration error: a required input is missing or invalid.
// Pipelines return it before doing any work.
type Error struct {
	Field  string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

// IsConfigError reports whether err (or anything it wraps or joins) is a *Error.
func IsConfigError(err error) bool {
	var ce *Error
	return errors.As(err, &ce)
}
