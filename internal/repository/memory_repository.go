package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Tanisha-99/internal-transfer-system/shared/apperrors"
	"github.com/Tanisha-99/internal-transfer-system/shared/models"
)

var errAccountNotLocked = errors.New("account is not locked in this scope")

// memoryRow is one account record. lock is a one-slot semaphore held by at
// most one scope at a time; a scope that inserted the row holds it until
// commit, like an uncommitted row in PostgreSQL.
type memoryRow struct {
	lock      chan struct{}
	account   models.Account
	committed bool
	removed   bool
}

type memoryState struct {
	mu        sync.Mutex
	rows      map[int64]*memoryRow
	transfers map[string]models.Transfer
	nextID    int64
}

type memoryTx struct {
	held      map[int64]*memoryRow
	saved     map[int64]models.Account
	created   []*memoryRow
	transfers []models.Transfer
}

// MemoryAccountRepository is an AccountStore kept in process memory. It
// provides the same locking contract as the PostgreSQL store: row-level
// exclusive locks held for the whole scope, writes invisible to others until
// commit, and uniqueness of account identifiers enforced at insert time.
type MemoryAccountRepository struct {
	state *memoryState
	tx    *memoryTx
}

var _ AccountStore = (*MemoryAccountRepository)(nil)

func NewMemoryAccountRepository() *MemoryAccountRepository {
	return &MemoryAccountRepository{
		state: &memoryState{
			rows:      make(map[int64]*memoryRow),
			transfers: make(map[string]models.Transfer),
		},
	}
}

func (r *MemoryAccountRepository) Create(ctx context.Context, account *models.Account) error {
	if err := ctx.Err(); err != nil {
		return classifyError("failed to create account", err)
	}

	s := r.state
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.rows[account.AccountID]; exists {
		return apperrors.AccountAlreadyExists(account.AccountID)
	}

	s.nextID++
	account.ID = s.nextID
	row := &memoryRow{lock: make(chan struct{}, 1), account: *account}

	if r.tx == nil {
		row.committed = true
	} else {
		row.lock <- struct{}{}
		r.tx.held[account.AccountID] = row
		r.tx.created = append(r.tx.created, row)
	}
	s.rows[account.AccountID] = row
	return nil
}

func (r *MemoryAccountRepository) FindByIdentifier(ctx context.Context, accountID int64) (*models.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, classifyError("failed to get account", err)
	}
	if r.tx != nil {
		if acc, ok := r.tx.saved[accountID]; ok {
			return &acc, nil
		}
	}

	s := r.state
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.rows[accountID]
	if !ok || (!row.committed && !r.holds(accountID)) {
		return nil, apperrors.AccountNotFound(accountID, "")
	}
	acc := row.account
	return &acc, nil
}

func (r *MemoryAccountRepository) FindByIdentifierForUpdate(ctx context.Context, accountID int64) (*models.Account, error) {
	if r.tx == nil {
		return nil, apperrors.StorageFailure("failed to lock account", ErrNoTransaction, false)
	}
	if r.holds(accountID) {
		return r.FindByIdentifier(ctx, accountID)
	}

	s := r.state
	s.mu.Lock()
	row, ok := s.rows[accountID]
	s.mu.Unlock()
	if !ok {
		return nil, apperrors.AccountNotFound(accountID, "")
	}

	select {
	case row.lock <- struct{}{}:
	case <-ctx.Done():
		return nil, classifyError("failed to lock account", ctx.Err())
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if row.removed {
		<-row.lock
		return nil, apperrors.AccountNotFound(accountID, "")
	}
	r.tx.held[accountID] = row
	acc := row.account
	return &acc, nil
}

func (r *MemoryAccountRepository) Save(ctx context.Context, account *models.Account) error {
	if r.tx == nil {
		return apperrors.StorageFailure("failed to save account", ErrNoTransaction, false)
	}
	if !r.holds(account.AccountID) {
		return apperrors.StorageFailure("failed to save account", errAccountNotLocked, false)
	}
	if account.Balance.IsNegative() {
		return apperrors.StorageFailure("failed to save account", errors.New("balance must not be negative"), false)
	}
	if err := ctx.Err(); err != nil {
		return classifyError("failed to save account", err)
	}
	account.UpdatedAt = time.Now().UTC()
	r.tx.saved[account.AccountID] = *account
	return nil
}

func (r *MemoryAccountRepository) RecordTransfer(ctx context.Context, transfer *models.Transfer) error {
	if r.tx == nil {
		return apperrors.StorageFailure("failed to record transfer", ErrNoTransaction, false)
	}
	if err := ctx.Err(); err != nil {
		return classifyError("failed to record transfer", err)
	}
	r.tx.transfers = append(r.tx.transfers, *transfer)
	return nil
}

func (r *MemoryAccountRepository) FindTransfer(ctx context.Context, transferID string) (*models.Transfer, error) {
	if err := ctx.Err(); err != nil {
		return nil, classifyError("failed to get transfer", err)
	}

	s := r.state
	s.mu.Lock()
	defer s.mu.Unlock()

	transfer, ok := s.transfers[transferID]
	if !ok {
		return nil, apperrors.TransferNotFound(transferID)
	}
	return &transfer, nil
}

func (r *MemoryAccountRepository) WithinTransaction(ctx context.Context, fn func(tx AccountStore) error) (err error) {
	if r.tx != nil {
		return fn(r)
	}

	scoped := &MemoryAccountRepository{
		state: r.state,
		tx: &memoryTx{
			held:  make(map[int64]*memoryRow),
			saved: make(map[int64]models.Account),
		},
	}

	defer func() {
		if p := recover(); p != nil {
			scoped.rollback()
			panic(p)
		}
	}()

	if err = fn(scoped); err != nil {
		scoped.rollback()
		return err
	}
	if err = ctx.Err(); err != nil {
		scoped.rollback()
		return classifyError("failed to commit transaction", err)
	}
	scoped.commit()
	return nil
}

func (r *MemoryAccountRepository) holds(accountID int64) bool {
	if r.tx == nil {
		return false
	}
	_, ok := r.tx.held[accountID]
	return ok
}

func (r *MemoryAccountRepository) commit() {
	s := r.state
	s.mu.Lock()
	for id, acc := range r.tx.saved {
		s.rows[id].account = acc
	}
	for _, row := range r.tx.created {
		row.committed = true
	}
	for _, transfer := range r.tx.transfers {
		s.transfers[transfer.ID] = transfer
	}
	s.mu.Unlock()
	r.release()
}

func (r *MemoryAccountRepository) rollback() {
	s := r.state
	s.mu.Lock()
	for _, row := range r.tx.created {
		row.removed = true
		delete(s.rows, row.account.AccountID)
	}
	s.mu.Unlock()
	r.release()
}

func (r *MemoryAccountRepository) release() {
	for id, row := range r.tx.held {
		<-row.lock
		delete(r.tx.held, id)
	}
}
