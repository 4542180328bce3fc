package movie

import (
	"errors"
	"fmt"
)

// ErrMalformedRecord is wrapped by every ParseError
var ErrMalformedRecord = errors.New("malformed movie record")

// ParseError reports a detail record that does not match the expected shape
type ParseError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrMalformedRecord, e.Reason)
	}
	return fmt.Sprintf("%s: field %q %s", ErrMalformedRecord, e.Field, e.Reason)
}

// Unwrap returns the underlying decode error, or ErrMalformedRecord
func (e *ParseError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrMalformedRecord
}

// Is lets errors.Is match ErrMalformedRecord even when a decode error is wrapped
func (e *ParseError) Is(target error) bool {
	return target == ErrMalformedRecord
}
