package cqrs

// ---------- Account queries ----------

// GetAccountQuery fetches a single account by its client identifier.
type GetAccountQuery struct {
	AccountID int64
}

// ---------- Transfer queries ----------

// GetTransferQuery fetches a single recorded transfer.
type GetTransferQuery struct {
	TransferID string
}
