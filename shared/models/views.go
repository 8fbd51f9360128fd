package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountView is what GetAccount exposes to clients.
type AccountView struct {
	AccountID int64           `json:"account_id"`
	Balance   decimal.Decimal `json:"balance"`
}

// TransferView is the read-optimised projection of a transfer. It is
// immutable once written, which makes it safe to cache.
type TransferView struct {
	ID                   string          `json:"id"`
	SourceAccountID      int64           `json:"source_account_id"`
	DestinationAccountID int64           `json:"destination_account_id"`
	Amount               decimal.Decimal `json:"amount"`
	Status               TransferStatus  `json:"status"`
	CreatedAt            time.Time       `json:"created_at"`
}

func NewAccountView(a *Account) *AccountView {
	return &AccountView{AccountID: a.AccountID, Balance: a.Balance}
}

func NewTransferView(t *Transfer) *TransferView {
	return &TransferView{
		ID:                   t.ID,
		SourceAccountID:      t.SourceAccountID,
		DestinationAccountID: t.DestinationAccountID,
		Amount:               t.Amount,
		Status:               t.Status,
		CreatedAt:            t.CreatedAt,
	}
}
