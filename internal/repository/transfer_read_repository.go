package repository

import (
	"context"

	"github.com/Tanisha-99/internal-transfer-system/shared/models"
	sharedredis "github.com/Tanisha-99/internal-transfer-system/shared/redis"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const transferViewKeyPrefix = "transfer:view:"

// TransferSource is the durable store transfer records are read from.
type TransferSource interface {
	FindTransfer(ctx context.Context, transferID string) (*models.Transfer, error)
}

// TransferReadRepository handles all read operations for transfers.
// It uses Redis as the primary read store, falling back to the account store
// on a miss. Transfers are immutable once committed, so a cached view never
// goes stale.
type TransferReadRepository struct {
	source TransferSource
	cache  *sharedredis.ViewCache[models.TransferView]
}

// NewTransferReadRepository builds the read side. A nil redisClient disables
// caching and every read goes to source.
func NewTransferReadRepository(source TransferSource, redisClient *goredis.Client, logger *zap.Logger) *TransferReadRepository {
	return &TransferReadRepository{
		source: source,
		cache:  sharedredis.NewViewCache[models.TransferView](redisClient, 0, logger),
	}
}

// GetByID returns a TransferView by attempting Redis first, then the store.
func (r *TransferReadRepository) GetByID(ctx context.Context, transferID string) (*models.TransferView, error) {
	if view, ok := r.cache.Get(ctx, transferViewKeyPrefix+transferID); ok {
		return view, nil
	}

	transfer, err := r.source.FindTransfer(ctx, transferID)
	if err != nil {
		return nil, err
	}

	// Warm the cache
	view := models.NewTransferView(transfer)
	r.cache.Set(ctx, transferViewKeyPrefix+view.ID, view)
	return view, nil
}

// CacheTransferView stores the read model for a transfer in Redis.
// Called by the projector when a transfer.completed event arrives.
func (r *TransferReadRepository) CacheTransferView(ctx context.Context, view *models.TransferView) error {
	return r.cache.Store(ctx, transferViewKeyPrefix+view.ID, view)
}
