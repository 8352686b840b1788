package ports

import "context"

// TransferRequest describes one value movement between two ledger
// accounts. Outbound-from-escrow movements are authorized by the market
// authority, inbound ones by the depositing party itself.
type TransferRequest struct {
	From       string
	To         string
	Authorizer string
	Amount     uint64
}

// Ledger is the contract the engine requires from the external transfer
// service holding the payment token accounts.
type Ledger interface {
	// Transfer atomically moves amount from one account to the other and
	// returns the id of the settled transfer. It is exactly-once per call.
	Transfer(
		ctx context.Context, from, to, authorizer string, amount uint64,
	) (string, error)
	// TransferBatch applies all the given transfers or none of them, in
	// order, and returns their ids. Zero-amount entries must be rejected
	// by implementations; callers skip them instead.
	TransferBatch(
		ctx context.Context, transfers []TransferRequest,
	) ([]string, error)
}
