package inmemory

import (
	"github.com/hashmarket/hashmarketd/internal/core/domain"
	"github.com/hashmarket/hashmarketd/internal/core/ports"
)

type RepoManager struct {
	marketRepository domain.MarketRepository
	orderRepository  domain.OrderRepository
	statsRepository  domain.StatsRepository
}

// NewRepoManager returns an in-memory ports.RepoManager, mainly intended
// for tests and local development.
func NewRepoManager() ports.RepoManager {
	return &RepoManager{
		marketRepository: NewMarketRepositoryImpl(newMarketInmemoryStore()),
		orderRepository:  NewOrderRepositoryImpl(newOrderInmemoryStore()),
		statsRepository:  NewStatsRepositoryImpl(newStatsInmemoryStore()),
	}
}

func (d *RepoManager) MarketRepository() domain.MarketRepository {
	return d.marketRepository
}

func (d *RepoManager) OrderRepository() domain.OrderRepository {
	return d.orderRepository
}

func (d *RepoManager) StatsRepository() domain.StatsRepository {
	return d.statsRepository
}

func (d *RepoManager) Close() {}
