package repository

import (
	"context"
	"errors"

	"github.com/Tanisha-99/internal-transfer-system/shared/models"
)

// ErrNoTransaction is returned by operations that are only meaningful inside
// a transactional scope (locking reads, saves, transfer records).
var ErrNoTransaction = errors.New("operation requires a transactional scope")

// AccountStore is the storage contract used by the command and query
// services. Two implementations exist: AccountWriteRepository (PostgreSQL)
// and MemoryAccountRepository.
type AccountStore interface {
	// Create inserts a new account. Uniqueness of AccountID is enforced by
	// the store itself, so concurrent creates of one identifier cannot both
	// succeed.
	Create(ctx context.Context, account *models.Account) error

	// FindByIdentifier is a non-locking read.
	FindByIdentifier(ctx context.Context, accountID int64) (*models.Account, error)

	// FindByIdentifierForUpdate reads the account and holds an exclusive
	// lock on it until the enclosing scope ends. It blocks while another
	// scope holds the lock, and gives up when ctx is done.
	FindByIdentifierForUpdate(ctx context.Context, accountID int64) (*models.Account, error)

	// Save persists a mutated balance of an account locked in this scope.
	Save(ctx context.Context, account *models.Account) error

	RecordTransfer(ctx context.Context, transfer *models.Transfer) error
	FindTransfer(ctx context.Context, transferID string) (*models.Transfer, error)

	// WithinTransaction runs fn in a single failure-atomic scope. The scope
	// commits only if fn returns nil; on any error or panic it is rolled
	// back and every lock taken inside it is released. Calling it on a store
	// already bound to a scope reuses that scope.
	WithinTransaction(ctx context.Context, fn func(tx AccountStore) error) error
}
