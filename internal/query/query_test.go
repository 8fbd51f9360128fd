package query

import (
	"context"
	"testing"
	"time"

	"github.com/Tanisha-99/internal-transfer-system/internal/repository"
	"github.com/Tanisha-99/internal-transfer-system/shared/apperrors"
	"github.com/Tanisha-99/internal-transfer-system/shared/cqrs"
	"github.com/Tanisha-99/internal-transfer-system/shared/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTransferReader struct {
	calls int
	view  *models.TransferView
}

func (s *stubTransferReader) GetByID(_ context.Context, transferID string) (*models.TransferView, error) {
	s.calls++
	if s.view != nil && s.view.ID == transferID {
		return s.view, nil
	}
	return nil, apperrors.TransferNotFound(transferID)
}

func TestGetAccount(t *testing.T) {
	store := repository.NewMemoryAccountRepository()
	now := time.Now().UTC()
	require.NoError(t, store.Create(context.Background(), &models.Account{
		AccountID: 1001, Balance: decimal.RequireFromString("1000.00"), CreatedAt: now, UpdatedAt: now,
	}))
	svc := NewAccountQueryService(store)

	view, err := svc.GetAccount(context.Background(), cqrs.GetAccountQuery{AccountID: 1001})
	require.NoError(t, err)
	assert.Equal(t, int64(1001), view.AccountID)
	assert.Equal(t, "1000", view.Balance.String())

	_, err = svc.GetAccount(context.Background(), cqrs.GetAccountQuery{AccountID: 9999})
	assert.ErrorIs(t, err, apperrors.ErrAccountNotFound)
}

func TestGetTransfer(t *testing.T) {
	reader := &stubTransferReader{view: &models.TransferView{ID: "trf-abcdefgh12345678", Status: models.TransferCompleted}}
	svc := NewTransferQueryService(reader)

	view, err := svc.GetTransfer(context.Background(), cqrs.GetTransferQuery{TransferID: "trf-abcdefgh12345678"})
	require.NoError(t, err)
	assert.Equal(t, models.TransferCompleted, view.Status)

	_, err = svc.GetTransfer(context.Background(), cqrs.GetTransferQuery{TransferID: "trf-0000000000000000"})
	assert.ErrorIs(t, err, apperrors.ErrTransferNotFound)
	assert.Equal(t, 2, reader.calls)

	_, err = svc.GetTransfer(context.Background(), cqrs.GetTransferQuery{TransferID: "not-a-transfer"})
	assert.ErrorIs(t, err, apperrors.ErrTransferNotFound)
	assert.Equal(t, 2, reader.calls, "malformed ids must not reach the store")
}
