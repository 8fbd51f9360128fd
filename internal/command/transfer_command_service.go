package command

import (
	"context"
	"errors"
	"time"

	"github.com/Tanisha-99/internal-transfer-system/internal/repository"
	"github.com/Tanisha-99/internal-transfer-system/shared/apperrors"
	"github.com/Tanisha-99/internal-transfer-system/shared/cqrs"
	"github.com/Tanisha-99/internal-transfer-system/shared/events"
	"github.com/Tanisha-99/internal-transfer-system/shared/models"
	"github.com/Tanisha-99/internal-transfer-system/shared/utils"
	"go.uber.org/zap"
)

// EventPublisher is satisfied by events.Publisher and events.NopPublisher.
type EventPublisher interface {
	Publish(ctx context.Context, stream, eventType string, data any) error
}

// TransferCommandService is the transfer engine. It holds no balance state of
// its own; all mutual exclusion comes from row locks taken inside one store
// scope per call, so it is safe for any number of concurrent callers.
type TransferCommandService struct {
	store     repository.AccountStore
	publisher EventPublisher
	logger    *zap.Logger
}

func NewTransferCommandService(store repository.AccountStore, publisher EventPublisher, logger *zap.Logger) *TransferCommandService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TransferCommandService{store: store, publisher: publisher, logger: logger}
}

// Transfer moves cmd.Amount from the source to the destination account.
// Either both balances change and a transfer record is written, or nothing
// changes at all.
func (s *TransferCommandService) Transfer(ctx context.Context, cmd cqrs.TransferCommand) (*models.Transfer, error) {
	if !cmd.Amount.IsPositive() {
		return nil, apperrors.InvalidAmount("amount must be greater than zero")
	}
	if !models.FitsScale(cmd.Amount) {
		return nil, apperrors.InvalidAmount("amount has more decimal places than balances support")
	}

	var transfer *models.Transfer
	err := s.store.WithinTransaction(ctx, func(tx repository.AccountStore) error {
		source, destination, err := lockPair(ctx, tx, cmd.SourceAccountID, cmd.DestinationAccountID)
		if err != nil {
			return err
		}

		if source.Balance.LessThan(cmd.Amount) {
			return apperrors.InsufficientBalance(source.AccountID)
		}

		// For a self-transfer source and destination are the same value, so
		// both steps apply to one balance and net to zero.
		source.Balance = source.Balance.Sub(cmd.Amount)
		destination.Balance = destination.Balance.Add(cmd.Amount)

		if err := tx.Save(ctx, source); err != nil {
			return err
		}
		if destination != source {
			if err := tx.Save(ctx, destination); err != nil {
				return err
			}
		}

		transfer = &models.Transfer{
			ID:                   utils.GenerateID("trf"),
			SourceAccountID:      cmd.SourceAccountID,
			DestinationAccountID: cmd.DestinationAccountID,
			Amount:               cmd.Amount,
			Status:               models.TransferCompleted,
			CreatedAt:            time.Now().UTC(),
		}
		return tx.RecordTransfer(ctx, transfer)
	})
	if err != nil {
		s.logTransferFailure(cmd, err)
		return nil, err
	}

	s.logger.Info("transfer completed",
		zap.String("transfer_id", transfer.ID),
		zap.Int64("source_account_id", transfer.SourceAccountID),
		zap.Int64("destination_account_id", transfer.DestinationAccountID),
		zap.String("amount", transfer.Amount.String()),
	)

	if err := s.publisher.Publish(ctx, events.TransferEventsStream, events.TransferCompleted, events.TransferCompletedEvent{
		TransferID:           transfer.ID,
		SourceAccountID:      transfer.SourceAccountID,
		DestinationAccountID: transfer.DestinationAccountID,
		Amount:               transfer.Amount,
		Status:               string(transfer.Status),
		CreatedAt:            transfer.CreatedAt,
	}); err != nil {
		s.logger.Warn("failed to publish transfer.completed event", zap.String("transfer_id", transfer.ID), zap.Error(err))
	}
	return transfer, nil
}

// lockPair takes the row locks for both ends of a transfer in ascending
// identifier order, whatever the transfer direction. A self-transfer takes a
// single lock and returns the same *Account twice. A missing source is
// reported ahead of a missing destination.
func lockPair(ctx context.Context, tx repository.AccountStore, sourceID, destinationID int64) (source, destination *models.Account, err error) {
	if sourceID == destinationID {
		source, err = tx.FindByIdentifierForUpdate(ctx, sourceID)
		if err != nil {
			return nil, nil, withRole(err, sourceID, "source")
		}
		return source, source, nil
	}

	if sourceID < destinationID {
		if source, err = tx.FindByIdentifierForUpdate(ctx, sourceID); err != nil {
			return nil, nil, withRole(err, sourceID, "source")
		}
		if destination, err = tx.FindByIdentifierForUpdate(ctx, destinationID); err != nil {
			return nil, nil, withRole(err, destinationID, "destination")
		}
		return source, destination, nil
	}

	destination, destErr := tx.FindByIdentifierForUpdate(ctx, destinationID)
	if destErr != nil && !errors.Is(destErr, apperrors.ErrAccountNotFound) {
		return nil, nil, destErr
	}
	if source, err = tx.FindByIdentifierForUpdate(ctx, sourceID); err != nil {
		return nil, nil, withRole(err, sourceID, "source")
	}
	if destErr != nil {
		return nil, nil, withRole(destErr, destinationID, "destination")
	}
	return source, destination, nil
}

func withRole(err error, accountID int64, role string) error {
	if errors.Is(err, apperrors.ErrAccountNotFound) {
		return apperrors.AccountNotFound(accountID, role)
	}
	return err
}

func (s *TransferCommandService) logTransferFailure(cmd cqrs.TransferCommand, err error) {
	fields := []zap.Field{
		zap.Int64("source_account_id", cmd.SourceAccountID),
		zap.Int64("destination_account_id", cmd.DestinationAccountID),
		zap.String("amount", cmd.Amount.String()),
		zap.String("code", string(apperrors.CodeOf(err))),
		zap.Error(err),
	}
	if apperrors.CodeOf(err) == apperrors.CodeStorageFailure {
		s.logger.Error("transfer failed", append(fields, zap.Bool("retryable", apperrors.IsRetryable(err)))...)
		return
	}
	s.logger.Info("transfer rejected", fields...)
}
