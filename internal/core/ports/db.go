package ports

import (
	"github.com/hashmarket/hashmarketd/internal/core/domain"
)

// RepoManager gives access to the repositories of every domain record
// behind a single storage backend.
type RepoManager interface {
	MarketRepository() domain.MarketRepository
	OrderRepository() domain.OrderRepository
	StatsRepository() domain.StatsRepository

	Close()
}
