package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	// Looking up a missing document, chunk or vector is a normal
	// outcome, not a failure; callers check with errors.Is.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists,
	// such as adding a vector under an id the index already holds.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input:
	// empty content or text, a dimension mismatch, a nil component.
	// Validation failures are never retried automatically.
	ErrInvalidInput = errors.New("invalid input")
)

// StoreError wraps a failure from an embedding or vector-index
// collaborator together with the stage at which it occurred.
// It always carries the underlying cause.
type StoreError struct {
	// Stage names the operation that failed: "embedding",
	// "vector storage", "query embedding", "similarity search",
	// "vector deletion", "chunk lookup".
	Stage string

	// Err is the underlying cause.
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// RollbackError reports that a compensating delete failed after a
// mid-sequence failure, leaving an orphaned document whose chunks have
// no vectors. It is reported distinctly from an ordinary StoreError and
// is never compensated further.
type RollbackError struct {
	// Stage is the stage whose failure triggered the rollback.
	Stage string

	// DocumentID identifies the document left behind.
	DocumentID string

	// Err is the original failure.
	Err error

	// RollbackErr is the failure of the compensation itself.
	RollbackErr error
}

func (e *RollbackError) Error() string {
	return fmt.Sprintf("%s failed and rollback of document %s also failed: %v (rollback: %v)",
		e.Stage, e.DocumentID, e.Err, e.RollbackErr)
}

// Unwrap exposes both the original failure and the rollback failure
// for errors.Is / errors.As matching.
func (e *RollbackError) Unwrap() []error {
	return []error{e.Err, e.RollbackErr}
}
