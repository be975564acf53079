package database

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrStoreUnavailable covers connectivity failures, timeouts and anything
	// the backend did not explicitly refuse.
	ErrStoreUnavailable = errors.New("record store unavailable")
	// ErrWriteRejected means the payload itself was refused: missing fields,
	// malformed or oversized data.
	ErrWriteRejected = errors.New("write rejected")
)

// StoreError carries the kind of failure, the operation and its target.
// errors.Is matches it against ErrStoreUnavailable or ErrWriteRejected.
type StoreError struct {
	Kind   error
	Op     string
	Target string
	Err    error
}

func (e *StoreError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Target, e.Kind)
	}
	return fmt.Sprintf("%s %s: %v: %v", e.Op, e.Target, e.Kind, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) Is(target error) bool { return target == e.Kind }

// Unavailable wraps err as ErrStoreUnavailable unless it is already a StoreError.
func Unavailable(op, target string, err error) error {
	return newStoreError(ErrStoreUnavailable, op, target, err)
}

// Rejected wraps err as ErrWriteRejected unless it is already a StoreError.
func Rejected(op, target string, err error) error {
	return newStoreError(ErrWriteRejected, op, target, err)
}

func newStoreError(kind error, op, target string, err error) error {
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	return &StoreError{Kind: kind, Op: op, Target: target, Err: err}
}
