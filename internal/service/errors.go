package service

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed Manager operation
type ErrorKind string

const (
	KindValidation         ErrorKind = "validation_error"
	KindDuplicateAccount   ErrorKind = "duplicate_account"
	KindInvalidCredentials ErrorKind = "invalid_credentials"
	KindAccountDeactivated ErrorKind = "account_deactivated"
	KindAccountNotFound    ErrorKind = "account_not_found"
	KindTooManyAttempts    ErrorKind = "too_many_attempts"
	KindStoreFailure       ErrorKind = "store_failure"
)

// Error is the only error type Manager operations return. Message is safe
// to show to the user; Err keeps the underlying cause for logs.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrDuplicateAccount) works
// regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Kind sentinels for errors.Is
var (
	ErrValidation         = &Error{Kind: KindValidation, Message: "validation failed"}
	ErrDuplicateAccount   = &Error{Kind: KindDuplicateAccount, Message: "account already exists"}
	ErrInvalidCredentials = &Error{Kind: KindInvalidCredentials, Message: "invalid email or password"}
	ErrAccountDeactivated = &Error{Kind: KindAccountDeactivated, Message: "account is deactivated"}
	ErrAccountNotFound    = &Error{Kind: KindAccountNotFound, Message: "account not found"}
	ErrTooManyAttempts    = &Error{Kind: KindTooManyAttempts, Message: "too many login attempts"}
	ErrStoreFailure       = &Error{Kind: KindStoreFailure, Message: "store failure"}
)

// KindOf returns the kind of err, or KindStoreFailure for foreign errors
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStoreFailure
}

func validationError(err error) *Error {
	return &Error{Kind: KindValidation, Message: err.Error(), Err: err}
}

func duplicateAccount(message string, err error) *Error {
	return &Error{Kind: KindDuplicateAccount, Message: message, Err: err}
}

func invalidCredentials() *Error {
	return &Error{Kind: KindInvalidCredentials, Message: ErrInvalidCredentials.Message}
}

func accountDeactivated() *Error {
	return &Error{
		Kind:    KindAccountDeactivated,
		Message: "this account has been deactivated, please contact support",
	}
}

func accountNotFound(id string, err error) *Error {
	return &Error{Kind: KindAccountNotFound, Message: fmt.Sprintf("account %s not found", id), Err: err}
}

func tooManyAttempts(err error) *Error {
	return &Error{
		Kind:    KindTooManyAttempts,
		Message: "too many login attempts, please try again later",
		Err:     err,
	}
}

// storeFailure keeps the native message of the underlying error
func storeFailure(op string, err error) *Error {
	return &Error{Kind: KindStoreFailure, Message: fmt.Sprintf("%s: %v", op, err), Err: err}
}
