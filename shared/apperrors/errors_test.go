package apperrors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		target   error
		expected bool
	}{
		{"not found matches sentinel", AccountNotFound(9999, "source"), ErrAccountNotFound, true},
		{"already exists matches sentinel", AccountAlreadyExists(1001), ErrAccountAlreadyExists, true},
		{"insufficient balance matches sentinel", InsufficientBalance(1001), ErrInsufficientBalance, true},
		{"invalid amount matches sentinel", InvalidAmount("amount must be greater than zero"), ErrInvalidAmount, true},
		{"wrapped error still matches", fmt.Errorf("transfer: %w", AccountNotFound(1, "")), ErrAccountNotFound, true},
		{"different code does not match", InsufficientBalance(1001), ErrAccountNotFound, false},
		{"plain error does not match", errors.New("boom"), ErrStorageFailure, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, errors.Is(tt.err, tt.target))
		})
	}
}

func TestAccountNotFoundMessage(t *testing.T) {
	assert.Equal(t, "source account not found: 9999", AccountNotFound(9999, "source").Error())
	assert.Equal(t, "account not found: 42", AccountNotFound(42, "").Error())
}

func TestStorageFailureUnwrapsAndRetryable(t *testing.T) {
	err := StorageFailure("lock account", context.DeadlineExceeded, true)

	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.True(t, errors.Is(err, ErrStorageFailure))
	assert.True(t, IsRetryable(err))
	assert.Equal(t, CodeStorageFailure, CodeOf(err))
	assert.Equal(t, "lock account: context deadline exceeded", err.Error())

	assert.False(t, IsRetryable(StorageFailure("insert account", errors.New("syntax"), false)))
	assert.False(t, IsRetryable(errors.New("boom")))
	assert.Equal(t, Code(""), CodeOf(errors.New("boom")))
}
