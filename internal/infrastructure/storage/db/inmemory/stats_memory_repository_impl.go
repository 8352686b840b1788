package inmemory

import (
	"context"
	"sync"

	"github.com/hashmarket/hashmarketd/internal/core/domain"
)

type statsInmemoryStore struct {
	stats  map[string]domain.SellerStats
	locker *sync.Mutex
}

func newStatsInmemoryStore() *statsInmemoryStore {
	return &statsInmemoryStore{
		stats:  map[string]domain.SellerStats{},
		locker: &sync.Mutex{},
	}
}

type statsRepositoryImpl struct {
	store *statsInmemoryStore
}

// NewStatsRepositoryImpl returns a new inmemory StatsRepository
// implementation.
func NewStatsRepositoryImpl(store *statsInmemoryStore) domain.StatsRepository {
	return &statsRepositoryImpl{store}
}

func (r *statsRepositoryImpl) GetOrCreateStats(
	_ context.Context, seller string,
) (*domain.SellerStats, error) {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	return r.getOrCreateStats(seller), nil
}

func (r *statsRepositoryImpl) GetAllStats(
	_ context.Context,
) ([]*domain.SellerStats, error) {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	allStats := make([]*domain.SellerStats, 0, len(r.store.stats))
	for _, stats := range r.store.stats {
		stats := stats
		allStats = append(allStats, &stats)
	}
	return allStats, nil
}

func (r *statsRepositoryImpl) UpdateStats(
	_ context.Context,
	seller string,
	updateFn func(s *domain.SellerStats) (*domain.SellerStats, error),
) error {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	currentStats := r.getOrCreateStats(seller)
	updatedStats, err := updateFn(currentStats)
	if err != nil {
		return err
	}

	r.store.stats[seller] = *updatedStats
	return nil
}

func (r *statsRepositoryImpl) getOrCreateStats(seller string) *domain.SellerStats {
	if stats, ok := r.store.stats[seller]; ok {
		return &stats
	}

	stats := domain.NewSellerStats(seller)
	r.store.stats[seller] = *stats
	return stats
}
