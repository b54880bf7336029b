package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError is implemented by errors that carry their own HTTP status
// code, letting the response layer map them without type switches.
type HTTPError interface {
	error
	StatusCode() int
}

type (
	// NotFoundError indicates a referenced entity does not exist.
	NotFoundError struct {
		Message string
	}

	// ConflictError indicates a sibling-name collision or a move that
	// would make a folder its own ancestor.
	ConflictError struct {
		Message string
	}

	// ValidationError indicates invalid input caught at the boundary.
	ValidationError struct {
		Message string
	}
)

func (e *NotFoundError) Error() string   { return e.Message }
func (e *ConflictError) Error() string   { return e.Message }
func (e *ValidationError) Error() string { return e.Message }

func (e *NotFoundError) StatusCode() int { return http.StatusNotFound }

// Conflicts surface as 400 on this API, matching the client contract.
func (e *ConflictError) StatusCode() int   { return http.StatusBadRequest }
func (e *ValidationError) StatusCode() int { return http.StatusBadRequest }

// Sentinel errors for use with errors.Is().
var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrValidation = errors.New("validation failed")
)

func (e *NotFoundError) Is(target error) bool   { return target == ErrNotFound }
func (e *ConflictError) Is(target error) bool   { return target == ErrConflict }
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// StorageError wraps a blob-store failure. Whether it is fatal depends
// on the operation: uploads roll back and re-raise, deletes only log.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
