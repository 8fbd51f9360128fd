package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Tanisha-99/internal-transfer-system/shared/apperrors"
	"github.com/Tanisha-99/internal-transfer-system/shared/models"
)

// dbtx is the subset of *sql.DB and *sql.Tx the repository queries through.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// AccountWriteRepository is the PostgreSQL AccountStore. It is the source of
// truth for balances; every balance mutation happens through a value bound
// to a *sql.Tx by WithinTransaction.
type AccountWriteRepository struct {
	db          *sql.DB
	q           dbtx
	tx          *sql.Tx
	lockTimeout time.Duration
}

var _ AccountStore = (*AccountWriteRepository)(nil)

// NewAccountWriteRepository returns a repository over db. A positive
// lockTimeout bounds how long a locking read waits inside a scope before
// failing with a retryable storage error.
func NewAccountWriteRepository(db *sql.DB, lockTimeout time.Duration) *AccountWriteRepository {
	return &AccountWriteRepository{db: db, q: db, lockTimeout: lockTimeout}
}

func (r *AccountWriteRepository) Create(ctx context.Context, account *models.Account) error {
	query := `
		INSERT INTO accounts (account_id, balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (account_id) DO NOTHING
		RETURNING id
	`
	err := r.q.QueryRowContext(ctx, query,
		account.AccountID, account.Balance, account.CreatedAt, account.UpdatedAt,
	).Scan(&account.ID)
	if err == sql.ErrNoRows || isUniqueViolation(err) {
		return apperrors.AccountAlreadyExists(account.AccountID)
	}
	if err != nil {
		return classifyError("failed to create account", err)
	}
	return nil
}

func (r *AccountWriteRepository) FindByIdentifier(ctx context.Context, accountID int64) (*models.Account, error) {
	query := `
		SELECT id, account_id, balance, created_at, updated_at
		FROM accounts
		WHERE account_id = $1
	`
	return r.scanAccount(ctx, "failed to get account", query, accountID)
}

func (r *AccountWriteRepository) FindByIdentifierForUpdate(ctx context.Context, accountID int64) (*models.Account, error) {
	if r.tx == nil {
		return nil, apperrors.StorageFailure("failed to lock account", ErrNoTransaction, false)
	}
	query := `
		SELECT id, account_id, balance, created_at, updated_at
		FROM accounts
		WHERE account_id = $1
		FOR UPDATE
	`
	return r.scanAccount(ctx, "failed to lock account", query, accountID)
}

func (r *AccountWriteRepository) scanAccount(ctx context.Context, op, query string, accountID int64) (*models.Account, error) {
	var account models.Account
	err := r.q.QueryRowContext(ctx, query, accountID).Scan(
		&account.ID, &account.AccountID, &account.Balance,
		&account.CreatedAt, &account.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.AccountNotFound(accountID, "")
	}
	if err != nil {
		return nil, classifyError(op, err)
	}
	return &account, nil
}

func (r *AccountWriteRepository) Save(ctx context.Context, account *models.Account) error {
	if r.tx == nil {
		return apperrors.StorageFailure("failed to save account", ErrNoTransaction, false)
	}
	query := `
		UPDATE accounts
		SET balance = $2, updated_at = $3
		WHERE account_id = $1
	`
	account.UpdatedAt = time.Now().UTC()
	result, err := r.q.ExecContext(ctx, query, account.AccountID, account.Balance, account.UpdatedAt)
	if err != nil {
		return classifyError("failed to save account", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return classifyError("failed to check rows affected", err)
	}
	if rows == 0 {
		return apperrors.AccountNotFound(account.AccountID, "")
	}
	return nil
}

func (r *AccountWriteRepository) RecordTransfer(ctx context.Context, transfer *models.Transfer) error {
	if r.tx == nil {
		return apperrors.StorageFailure("failed to record transfer", ErrNoTransaction, false)
	}
	query := `
		INSERT INTO transfers (id, source_account_id, destination_account_id, amount, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.q.ExecContext(ctx, query,
		transfer.ID, transfer.SourceAccountID, transfer.DestinationAccountID,
		transfer.Amount, string(transfer.Status), transfer.CreatedAt,
	)
	if err != nil {
		return classifyError("failed to record transfer", err)
	}
	return nil
}

func (r *AccountWriteRepository) FindTransfer(ctx context.Context, transferID string) (*models.Transfer, error) {
	query := `
		SELECT id, source_account_id, destination_account_id, amount, status, created_at
		FROM transfers
		WHERE id = $1
	`
	var transfer models.Transfer
	var status string
	err := r.q.QueryRowContext(ctx, query, transferID).Scan(
		&transfer.ID, &transfer.SourceAccountID, &transfer.DestinationAccountID,
		&transfer.Amount, &status, &transfer.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.TransferNotFound(transferID)
	}
	if err != nil {
		return nil, classifyError("failed to get transfer", err)
	}
	transfer.Status = models.TransferStatus(status)
	return &transfer, nil
}

func (r *AccountWriteRepository) WithinTransaction(ctx context.Context, fn func(tx AccountStore) error) (err error) {
	if r.tx != nil {
		return fn(r)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return classifyError("failed to begin transaction", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				err = errors.Join(err, classifyError("failed to roll back transaction", rbErr))
			}
		}
	}()

	if r.lockTimeout > 0 {
		timeout := fmt.Sprintf("%dms", r.lockTimeout.Milliseconds())
		if _, err = tx.ExecContext(ctx, `SELECT set_config('lock_timeout', $1, true)`, timeout); err != nil {
			return classifyError("failed to set lock timeout", err)
		}
	}

	scoped := &AccountWriteRepository{db: r.db, q: tx, tx: tx, lockTimeout: r.lockTimeout}
	if err = fn(scoped); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return classifyError("failed to commit transaction", err)
	}
	return nil
}
