package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/Tanisha-99/internal-transfer-system/shared/apperrors"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"lock timeout", &pq.Error{Code: pqLockNotAvailable}, true},
		{"deadlock", &pq.Error{Code: pqDeadlockDetected}, true},
		{"serialization failure", &pq.Error{Code: pqSerializationFailure}, true},
		{"statement cancelled", &pq.Error{Code: pqQueryCanceled}, true},
		{"connection failure", &pq.Error{Code: "08006"}, true},
		{"check violation", &pq.Error{Code: "23514"}, false},
		{"context deadline", fmt.Errorf("query: %w", context.DeadlineExceeded), true},
		{"context cancelled", context.Canceled, true},
		{"bad connection", driver.ErrBadConn, true},
		{"connection done", sql.ErrConnDone, true},
		{"network error", &net.OpError{Op: "dial", Err: errors.New("refused")}, true},
		{"other", errors.New("syntax error"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classifyError("op", tt.err)
			assert.ErrorIs(t, err, apperrors.ErrStorageFailure)
			assert.Equal(t, tt.retryable, apperrors.IsRetryable(err))
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestClassifyError_PassesThroughDomainErrors(t *testing.T) {
	notFound := apperrors.AccountNotFound(1, "")
	assert.Same(t, notFound, classifyError("op", notFound))
	assert.NoError(t, classifyError("op", nil))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pq.Error{Code: pqUniqueViolation}))
	assert.True(t, isUniqueViolation(fmt.Errorf("insert: %w", &pq.Error{Code: pqUniqueViolation})))
	assert.False(t, isUniqueViolation(&pq.Error{Code: "23514"}))
	assert.False(t, isUniqueViolation(errors.New("duplicate")))
}
