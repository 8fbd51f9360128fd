package query

import (
	"context"

	"github.com/Tanisha-99/internal-transfer-system/internal/repository"
	"github.com/Tanisha-99/internal-transfer-system/shared/cqrs"
	"github.com/Tanisha-99/internal-transfer-system/shared/models"
)

// AccountReader is the non-locking read the account query needs.
type AccountReader interface {
	FindByIdentifier(ctx context.Context, accountID int64) (*models.Account, error)
}

var _ AccountReader = (repository.AccountStore)(nil)

// AccountQueryService serves account reads straight from the store. Balances
// are never cached, so a read always reflects the last committed transfer.
type AccountQueryService struct {
	accounts AccountReader
}

func NewAccountQueryService(accounts AccountReader) *AccountQueryService {
	return &AccountQueryService{accounts: accounts}
}

func (s *AccountQueryService) GetAccount(ctx context.Context, q cqrs.GetAccountQuery) (*models.AccountView, error) {
	account, err := s.accounts.FindByIdentifier(ctx, q.AccountID)
	if err != nil {
		return nil, err
	}
	return models.NewAccountView(account), nil
}
