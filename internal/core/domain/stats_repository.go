package domain

import "context"

// StatsRepository is the abstraction for any kind of database intended
// to persist SellerStats.
type StatsRepository interface {
	// GetOrCreateStats returns the stats of the given seller, creating a
	// zeroed record on their first participation.
	GetOrCreateStats(ctx context.Context, seller string) (*SellerStats, error)
	// GetAllStats returns all the seller stats stored in the repository.
	GetAllStats(ctx context.Context) ([]*SellerStats, error)
	// UpdateStats allows to commit multiple changes to the same seller's
	// stats in a transactional way.
	UpdateStats(
		ctx context.Context,
		seller string,
		updateFn func(s *SellerStats) (*SellerStats, error),
	) error
}
