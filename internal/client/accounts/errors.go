package accounts

import (
	"errors"
	"fmt"
)

var (
	// ErrStorageRead matches failures to read or decode the collection.
	ErrStorageRead = errors.New("account storage read failed")
	// ErrStorageWrite matches failures to encode or persist the collection.
	ErrStorageWrite = errors.New("account storage write failed")

	// ErrIncompleteIdentity is returned when an event lacks user id or email.
	ErrIncompleteIdentity = errors.New("user id and email are required")

	// ErrAuthAttemptFailed is the parent of both per-strategy failures.
	ErrAuthAttemptFailed   = errors.New("auth attempt failed")
	ErrPasswordRejected    = fmt.Errorf("%w: password sign-in", ErrAuthAttemptFailed)
	ErrRefreshTokenInvalid = fmt.Errorf("%w: token refresh", ErrAuthAttemptFailed)

	// ErrAllStrategiesExhausted is carried by Result.Err when a switch ends in
	// StateRequiresLogin.
	ErrAllStrategiesExhausted = errors.New("all reactivation strategies exhausted")

	// ErrSwitchInProgress is returned when Switch is called while another
	// switch is still running. The second call is dropped, not queued.
	ErrSwitchInProgress = errors.New("account switch already in progress")

	// ErrSwitchDismissed is returned together with the result when the
	// caller's context ended while the switch was running.
	ErrSwitchDismissed = errors.New("account switch dismissed")

	// ErrAccountNotFound is returned by lookups for unknown emails.
	ErrAccountNotFound = errors.New("account not found")
)

const (
	opRead  = "read"
	opWrite = "write"
)

// StorageError wraps a persistence failure with the direction it happened in.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("account storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func (e *StorageError) Is(target error) bool {
	switch target {
	case ErrStorageRead:
		return e.Op == opRead
	case ErrStorageWrite:
		return e.Op == opWrite
	}
	return false
}
