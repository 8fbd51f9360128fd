package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event types
const (
	AccountCreated    = "account.created"
	TransferCompleted = "transfer.completed"
)

// Stream names
const (
	AccountEventsStream  = "account.events"
	TransferEventsStream = "transfer.events"
)

// Base event structure
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// Account events
type AccountCreatedEvent struct {
	AccountID      int64           `json:"accountId"`
	InitialBalance decimal.Decimal `json:"initialBalance"`
}

// Transfer events
type TransferCompletedEvent struct {
	TransferID           string          `json:"transferId"`
	SourceAccountID      int64           `json:"sourceAccountId"`
	DestinationAccountID int64           `json:"destinationAccountId"`
	Amount               decimal.Decimal `json:"amount"`
	Status               string          `json:"status"`
	CreatedAt            time.Time       `json:"createdAt"`
}
