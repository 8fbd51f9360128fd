package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is the write model. ID is the store-assigned surrogate key;
// AccountID is the client supplied identifier and never changes.
type Account struct {
	ID        int64           `json:"-"`
	AccountID int64           `json:"account_id"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type TransferStatus string

const TransferCompleted TransferStatus = "COMPLETED"

// Transfer is the record written alongside a committed balance move.
type Transfer struct {
	ID                   string          `json:"id"`
	SourceAccountID      int64           `json:"source_account_id"`
	DestinationAccountID int64           `json:"destination_account_id"`
	Amount               decimal.Decimal `json:"amount"`
	Status               TransferStatus  `json:"status"`
	CreatedAt            time.Time       `json:"created_at"`
}
