package store

import (
	"errors"
	"fmt"
)

// Store sentinels. Entity-specific not-found and duplicate errors wrap the
// generic ones so callers can match at either level.
var (
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate reports a unique constraint violation.
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity reports an entity rejected before storage or by a
	// database check constraint.
	ErrInvalidEntity = errors.New("invalid entity")

	ErrUserNotFound = fmt.Errorf("%w: user", ErrNotFound)

	// ErrTaskNotFound covers both a missing task and one owned by someone
	// else.
	ErrTaskNotFound = fmt.Errorf("%w: task", ErrNotFound)

	ErrAvatarNotFound = fmt.Errorf("%w: avatar", ErrNotFound)

	// ErrTokenNotFound means the token is not in the user's live set.
	ErrTokenNotFound = fmt.Errorf("%w: token", ErrNotFound)

	ErrEmailExists = fmt.Errorf("%w: email", ErrDuplicate)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError checks if the error is any kind of "duplicate" error.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// StoreError adds the entity and operation to a failure that has no more
// specific sentinel, e.g. a scan error or a lost connection.
type StoreError struct {
	Entity    string
	Operation string
	Message   string
	Err       error
}

func (e *StoreError) Error() string {
	msg := fmt.Sprintf("%s %s: %s", e.Entity, e.Operation, e.Message)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError wraps err with the entity and operation it belongs to.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{Entity: entity, Operation: operation, Message: message, Err: err}
}
