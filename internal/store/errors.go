package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates that no task with the requested ID exists.
	ErrNotFound = errors.New("task not found")

	// ErrExists indicates that a task with the same ID is already stored.
	ErrExists = errors.New("task already exists")

	errNoRow = errors.New("no row affected")
)

// PersistenceError reports a storage transaction that could not commit.
type PersistenceError struct {
	Op  string
	ID  string
	Err error
}

func (e *PersistenceError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s task %s: %v", e.Op, e.ID, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func persistErr(op, id string, err error) error {
	return &PersistenceError{Op: op, ID: id, Err: err}
}
