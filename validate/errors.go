// Package validate turns untrusted provider records into typed catalog items.
//
// A record is any map decoded from JSON, built by a Lua script or declared
// statically. Validation either yields a fully defaulted source.Item or a
// *ValidationError naming the offending field. Unknown fields are ignored.
package validate

import (
	"errors"
	"fmt"
)

// ErrInvalid is matched by every *ValidationError.
var ErrInvalid = errors.New("invalid record")

// ValidationError reports why a record was rejected.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid field %q: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalid
}

func fieldError(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
