package ledgerinmemory

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/hashmarket/hashmarketd/internal/core/ports"
	"github.com/hashmarket/hashmarketd/pkg/mathutil"
)

var (
	// ErrInvalidTransferAmount ...
	ErrInvalidTransferAmount = errors.New("transfer amount must be a positive quantity")
	// ErrInsufficientFunds ...
	ErrInsufficientFunds = errors.New("account balance is lower than the transfer amount")
	// ErrUnauthorizedTransfer is thrown when the authorizing party owns
	// neither the source account nor its designated authority.
	ErrUnauthorizedTransfer = errors.New("transfer is not authorized by the account owner or its authority")
)

// Ledger is an in-memory implementation of the ports.Ledger contract,
// holding payment token balances keyed by account identity. It is mainly
// intended for tests and local development.
type Ledger struct {
	balances    map[string]uint64
	authorities map[string]string
	locker      *sync.Mutex
}

// NewLedger returns an empty in-memory ledger.
func NewLedger() *Ledger {
	return &Ledger{
		balances:    map[string]uint64{},
		authorities: map[string]string{},
		locker:      &sync.Mutex{},
	}
}

// RegisterAuthority designates an identity allowed to authorize outbound
// transfers from the given account. Escrow accounts are registered with
// the market authority.
func (l *Ledger) RegisterAuthority(account, authority string) {
	l.locker.Lock()
	defer l.locker.Unlock()

	l.authorities[account] = authority
}

// Fund credits the given account, minting new balance.
func (l *Ledger) Fund(account string, amount uint64) error {
	l.locker.Lock()
	defer l.locker.Unlock()

	credited, err := mathutil.Add(l.balances[account], amount)
	if err != nil {
		return err
	}
	l.balances[account] = credited
	return nil
}

// BalanceOf returns the current balance of the given account.
func (l *Ledger) BalanceOf(account string) uint64 {
	l.locker.Lock()
	defer l.locker.Unlock()

	return l.balances[account]
}

// TotalSupply returns the sum of all account balances.
func (l *Ledger) TotalSupply() uint64 {
	l.locker.Lock()
	defer l.locker.Unlock()

	var supply uint64
	for _, balance := range l.balances {
		supply += balance
	}
	return supply
}

func (l *Ledger) Transfer(
	_ context.Context, from, to, authorizer string, amount uint64,
) (string, error) {
	l.locker.Lock()
	defer l.locker.Unlock()

	scratch := l.copyBalances()
	if err := applyTransfer(scratch, l.authorities, from, to, authorizer, amount); err != nil {
		return "", err
	}

	l.balances = scratch
	return uuid.New().String(), nil
}

func (l *Ledger) TransferBatch(
	_ context.Context, transfers []ports.TransferRequest,
) ([]string, error) {
	l.locker.Lock()
	defer l.locker.Unlock()

	scratch := l.copyBalances()
	ids := make([]string, 0, len(transfers))
	for _, transfer := range transfers {
		if err := applyTransfer(
			scratch, l.authorities,
			transfer.From, transfer.To, transfer.Authorizer, transfer.Amount,
		); err != nil {
			return nil, err
		}
		ids = append(ids, uuid.New().String())
	}

	l.balances = scratch
	return ids, nil
}

func (l *Ledger) copyBalances() map[string]uint64 {
	balances := make(map[string]uint64, len(l.balances))
	for account, balance := range l.balances {
		balances[account] = balance
	}
	return balances
}

func applyTransfer(
	balances map[string]uint64, authorities map[string]string,
	from, to, authorizer string, amount uint64,
) error {
	if amount <= 0 {
		return ErrInvalidTransferAmount
	}
	if authorizer != from && authorizer != authorities[from] {
		return ErrUnauthorizedTransfer
	}
	if balances[from] < amount {
		return ErrInsufficientFunds
	}
	credited, err := mathutil.Add(balances[to], amount)
	if err != nil {
		return err
	}

	balances[from] -= amount
	balances[to] = credited
	return nil
}
