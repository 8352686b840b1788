package domain

import (
	"context"
	"errors"
)

var (
	// ErrMarketNotInitialized is returned when reading the market record
	// before Initialize has been called.
	ErrMarketNotInitialized = errors.New("market is not initialized")
	// ErrMarketAlreadyInitialized ...
	ErrMarketAlreadyInitialized = errors.New("market is already initialized")
)

// MarketRepository is the abstraction for any kind of database intended
// to persist the singleton Market record.
type MarketRepository interface {
	// InitMarket stores the market record, failing if one already exists.
	InitMarket(ctx context.Context, market *Market) error
	// GetMarket returns the market record, or ErrMarketNotInitialized.
	GetMarket(ctx context.Context) (*Market, error)
	// UpdateMarket allows to commit multiple changes to the market record
	// in a transactional way.
	UpdateMarket(
		ctx context.Context,
		updateFn func(m *Market) (*Market, error),
	) error
}
