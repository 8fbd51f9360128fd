package command

import (
	"context"
	"fmt"

	"github.com/Tanisha-99/internal-transfer-system/shared/events"
	"github.com/Tanisha-99/internal-transfer-system/shared/models"
	"go.uber.org/zap"
)

// TransferViewWriter stores transfer read models.
type TransferViewWriter interface {
	CacheTransferView(ctx context.Context, view *models.TransferView) error
}

// TransferProjector consumes transfer.completed events and keeps the transfer
// read model in Redis. Replaying an event rewrites the same immutable view,
// so redelivery needs no dedup.
type TransferProjector struct {
	views  TransferViewWriter
	logger *zap.Logger
}

func NewTransferProjector(views TransferViewWriter, logger *zap.Logger) *TransferProjector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TransferProjector{views: views, logger: logger}
}

// HandleTransferEvent is an events.Handler.
func (p *TransferProjector) HandleTransferEvent(ctx context.Context, event events.Event) error {
	if event.Type != events.TransferCompleted {
		return nil
	}
	data, err := events.DecodeData[events.TransferCompletedEvent](event)
	if err != nil {
		return err
	}
	if data.TransferID == "" {
		return fmt.Errorf("%w: transfer.completed event has no transfer id", events.ErrMalformed)
	}

	err = p.views.CacheTransferView(ctx, &models.TransferView{
		ID:                   data.TransferID,
		SourceAccountID:      data.SourceAccountID,
		DestinationAccountID: data.DestinationAccountID,
		Amount:               data.Amount,
		Status:               models.TransferStatus(data.Status),
		CreatedAt:            data.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to project transfer %s: %w", data.TransferID, err)
	}
	p.logger.Debug("transfer view projected", zap.String("transfer_id", data.TransferID))
	return nil
}
