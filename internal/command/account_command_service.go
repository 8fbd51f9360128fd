package command

import (
	"context"
	"time"

	"github.com/Tanisha-99/internal-transfer-system/internal/repository"
	"github.com/Tanisha-99/internal-transfer-system/shared/apperrors"
	"github.com/Tanisha-99/internal-transfer-system/shared/cqrs"
	"github.com/Tanisha-99/internal-transfer-system/shared/events"
	"github.com/Tanisha-99/internal-transfer-system/shared/models"
	"go.uber.org/zap"
)

// AccountCommandService opens accounts. Uniqueness of the identifier is left
// to the store's insert so two concurrent creates cannot both succeed.
type AccountCommandService struct {
	store     repository.AccountStore
	publisher EventPublisher
	logger    *zap.Logger
}

func NewAccountCommandService(store repository.AccountStore, publisher EventPublisher, logger *zap.Logger) *AccountCommandService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccountCommandService{store: store, publisher: publisher, logger: logger}
}

func (s *AccountCommandService) CreateAccount(ctx context.Context, cmd cqrs.CreateAccountCommand) (*models.Account, error) {
	if !cmd.InitialBalance.IsPositive() {
		return nil, apperrors.InvalidAmount("initial balance must be greater than zero")
	}
	if !models.FitsScale(cmd.InitialBalance) {
		return nil, apperrors.InvalidAmount("initial balance has more decimal places than balances support")
	}

	now := time.Now().UTC()
	account := &models.Account{
		AccountID: cmd.AccountID,
		Balance:   cmd.InitialBalance,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Create(ctx, account); err != nil {
		return nil, err
	}
	s.logger.Info("account created", zap.Int64("account_id", account.AccountID))

	if err := s.publisher.Publish(ctx, events.AccountEventsStream, events.AccountCreated, events.AccountCreatedEvent{
		AccountID:      account.AccountID,
		InitialBalance: account.Balance,
	}); err != nil {
		s.logger.Warn("failed to publish account.created event", zap.Int64("account_id", account.AccountID), zap.Error(err))
	}
	return account, nil
}
