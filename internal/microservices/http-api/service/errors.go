package service

import (
	"errors"
	"fmt"
)

var (
	ErrValidation           = errors.New("validation failed")
	ErrStore                = errors.New("store failure")
	ErrBookNotFound         = errors.New("book not found")
	ErrProfileNotFound      = errors.New("profile not found")
	ErrNotificationNotFound = errors.New("notification not found or already read")
	ErrBusy                 = errors.New("another update for this user is in progress")
)

// ValidationError is a user-facing rejection of a request. Nothing is
// written when one is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// StoreError wraps a persistence failure with the step that failed.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func (e *StoreError) Is(target error) bool {
	return target == ErrStore
}

func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}

// DriftError reports stored XP that disagrees with the session log. It is
// informational; Resync repairs it.
type DriftError struct {
	UserID    string
	StoredXP  int64
	CorrectXP int64
}

func (e *DriftError) Error() string {
	return fmt.Sprintf("xp drift for user %s: stored %d, expected %d", e.UserID, e.StoredXP, e.CorrectXP)
}
