// Package apperrors defines the error kinds returned by the account store and
// the transfer engine. Each kind carries a stable code that the HTTP boundary
// maps to a status; callers branch on kinds with errors.Is.
package apperrors

import (
	"errors"
	"fmt"
)

// Code is the stable, client-visible identifier of an error kind.
type Code string

const (
	CodeAccountNotFound      Code = "ACCOUNT_NOT_FOUND"
	CodeAccountAlreadyExists Code = "ACCOUNT_ALREADY_EXISTS"
	CodeInsufficientBalance  Code = "INSUFFICIENT_BALANCE"
	CodeInvalidAmount        Code = "INVALID_AMOUNT"
	CodeTransferNotFound     Code = "TRANSFER_NOT_FOUND"
	CodeStorageFailure       Code = "STORAGE_FAILURE"
)

// Error is a domain error with a code, a human readable message and an
// optional cause.
type Error struct {
	Code      Code
	Message   string
	Retryable bool
	Err       error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same code, so the package
// sentinels match any error of their kind regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

var (
	ErrAccountNotFound      = &Error{Code: CodeAccountNotFound, Message: "account not found"}
	ErrAccountAlreadyExists = &Error{Code: CodeAccountAlreadyExists, Message: "account already exists"}
	ErrInsufficientBalance  = &Error{Code: CodeInsufficientBalance, Message: "insufficient balance"}
	ErrInvalidAmount        = &Error{Code: CodeInvalidAmount, Message: "invalid amount"}
	ErrTransferNotFound     = &Error{Code: CodeTransferNotFound, Message: "transfer not found"}
	ErrStorageFailure       = &Error{Code: CodeStorageFailure, Message: "storage failure"}
)

// AccountNotFound reports a missing account. role names which end of a
// transfer was missing ("source", "destination") and may be empty.
func AccountNotFound(accountID int64, role string) error {
	msg := fmt.Sprintf("account not found: %d", accountID)
	if role != "" {
		msg = fmt.Sprintf("%s account not found: %d", role, accountID)
	}
	return &Error{Code: CodeAccountNotFound, Message: msg}
}

func AccountAlreadyExists(accountID int64) error {
	return &Error{Code: CodeAccountAlreadyExists, Message: fmt.Sprintf("account already exists: %d", accountID)}
}

func InsufficientBalance(accountID int64) error {
	return &Error{Code: CodeInsufficientBalance, Message: fmt.Sprintf("insufficient balance in source account: %d", accountID)}
}

func InvalidAmount(message string) error {
	return &Error{Code: CodeInvalidAmount, Message: message}
}

func TransferNotFound(transferID string) error {
	return &Error{Code: CodeTransferNotFound, Message: fmt.Sprintf("transfer not found: %s", transferID)}
}

// StorageFailure wraps an error raised by the underlying store. Retryable
// failures (lock timeouts, deadlocks, lost connections) may succeed if the
// caller repeats the whole operation.
func StorageFailure(op string, err error, retryable bool) error {
	return &Error{Code: CodeStorageFailure, Message: op, Retryable: retryable, Err: err}
}

// CodeOf returns the code of the first *Error in err's chain, or the empty
// code if there is none.
func CodeOf(err error) Code {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// IsRetryable reports whether err is a storage failure the caller may retry.
func IsRetryable(err error) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Retryable
	}
	return false
}
