package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"

	"github.com/Tanisha-99/internal-transfer-system/shared/apperrors"
	"github.com/lib/pq"
)

// PostgreSQL SQLSTATE codes the repository reacts to.
const (
	pqUniqueViolation      pq.ErrorCode = "23505"
	pqSerializationFailure pq.ErrorCode = "40001"
	pqDeadlockDetected     pq.ErrorCode = "40P01"
	pqLockNotAvailable     pq.ErrorCode = "55P03"
	pqQueryCanceled        pq.ErrorCode = "57014"
	pqConnectionException  pq.ErrorClass = "08"
)

// classifyError turns a driver error into an apperrors storage failure,
// marking the transient kinds as retryable. Errors that already are
// *apperrors.Error pass through unchanged.
func classifyError(op string, err error) error {
	if err == nil {
		return nil
	}

	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return err
	}

	return apperrors.StorageFailure(op, err, isTransient(err))
}

func isTransient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqSerializationFailure, pqDeadlockDetected, pqLockNotAvailable, pqQueryCanceled:
			return true
		}
		return pqErr.Code.Class() == pqConnectionException
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}
