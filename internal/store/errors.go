package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by FetchByID when no place has the requested id.
	ErrNotFound = errors.New("place not found")

	// ErrNotReady is returned for operations issued before InitializeSchema succeeded.
	ErrNotReady = errors.New("place store schema not initialized")

	// ErrIDAssigned is returned when inserting a record that already carries an id.
	ErrIDAssigned = errors.New("place already has an id")

	// ErrNullColumn marks a required column that came back NULL.
	ErrNullColumn = errors.New("required column is NULL")
)

// InitError reports that the engine could not be opened or the schema could
// not be created. The store is unusable after an InitError.
type InitError struct {
	Path string
	Err  error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("place store init %s: %v", e.Path, e.Err)
}

func (e *InitError) Unwrap() error { return e.Err }

// ReadError reports an engine-level failure on a fetch path.
type ReadError struct {
	Op  string
	Err error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("place store %s: %v", e.Op, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// WriteError reports a failed insert or delete.
type WriteError struct {
	Op  string
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("place store %s: %v", e.Op, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// DecodeError reports a stored row that does not map onto a valid place.
type DecodeError struct {
	Column string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("decode place row: %v", e.Err)
	}
	return fmt.Sprintf("decode place row: column %s: %v", e.Column, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
