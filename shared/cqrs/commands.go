package cqrs

import "github.com/shopspring/decimal"

type CreateAccountCommand struct {
	AccountID      int64
	InitialBalance decimal.Decimal
}

// TransferCommand moves Amount from SourceAccountID to DestinationAccountID.
// Source and destination may be the same account.
type TransferCommand struct {
	SourceAccountID      int64
	DestinationAccountID int64
	Amount               decimal.Decimal
}
