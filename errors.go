package folio

import (
	"errors"
	"fmt"

	"github.com/eringen/folio/safepath"
)

var (
	ErrInvalidIdentifier = safepath.ErrInvalidIdentifier
	ErrPathTraversal     = safepath.ErrPathTraversal

	ErrMissingFile      = errors.New("missing file")
	ErrMissingParameter = errors.New("missing parameter")
	ErrInvalidField     = errors.New("invalid field")
	ErrNotFound         = errors.New("not found")
)

// PersistenceError wraps an unexpected I/O failure while reading or writing
// content on disk.
type PersistenceError struct {
	Op   string
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func persistErr(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{Op: op, Path: path, Err: err}
}
