package query

import (
	"context"

	"github.com/Tanisha-99/internal-transfer-system/shared/apperrors"
	"github.com/Tanisha-99/internal-transfer-system/shared/cqrs"
	"github.com/Tanisha-99/internal-transfer-system/shared/models"
	"github.com/Tanisha-99/internal-transfer-system/shared/utils"
)

// TransferReader is implemented by repository.TransferReadRepository.
type TransferReader interface {
	GetByID(ctx context.Context, transferID string) (*models.TransferView, error)
}

type TransferQueryService struct {
	readRepo TransferReader
}

func NewTransferQueryService(readRepo TransferReader) *TransferQueryService {
	return &TransferQueryService{readRepo: readRepo}
}

// GetTransfer returns a recorded transfer. Identifiers that could never have
// been issued are answered as not found without a lookup.
func (s *TransferQueryService) GetTransfer(ctx context.Context, q cqrs.GetTransferQuery) (*models.TransferView, error) {
	if !utils.ValidateTransferID(q.TransferID) {
		return nil, apperrors.TransferNotFound(q.TransferID)
	}
	return s.readRepo.GetByID(ctx, q.TransferID)
}
