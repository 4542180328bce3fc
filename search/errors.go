package search

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument is matched by every ArgumentError
var ErrInvalidArgument = errors.New("invalid argument")

// Stage names the step of a fan-out task that failed
type Stage string

const (
	// StageFetch is the detail lookup against the catalog
	StageFetch Stage = "fetch"
	// StageParse is the conversion of the raw record into a movie
	StageParse Stage = "parse"
)

// Error types for search operations
type (
	// ArgumentError reports a caller error detected before any catalog call
	ArgumentError struct {
		Name   string
		Reason string
	}

	// SearchError reports a failure of the initial title search. It fails the whole request.
	SearchError struct {
		Title string
		Err   error
	}

	// FetchError reports a single dropped fan-out task
	FetchError struct {
		ID    string
		Stage Stage
		Err   error
	}
)

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrInvalidArgument, e.Name, e.Reason)
}

func (e *ArgumentError) Unwrap() error {
	return ErrInvalidArgument
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("search for %q failed: %v", e.Title, e.Err)
}

func (e *SearchError) Unwrap() error {
	return e.Err
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s %s failed: %v", e.Stage, e.ID, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
