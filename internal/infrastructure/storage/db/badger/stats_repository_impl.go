package dbbadger

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v3"
	"github.com/timshannon/badgerhold/v4"

	"github.com/hashmarket/hashmarketd/internal/core/domain"
)

type statsRepositoryImpl struct {
	store *badgerhold.Store
}

// NewStatsRepositoryImpl initializes a badger implementation of the
// domain.StatsRepository.
func NewStatsRepositoryImpl(store *badgerhold.Store) domain.StatsRepository {
	return &statsRepositoryImpl{store}
}

func (r *statsRepositoryImpl) GetOrCreateStats(
	_ context.Context, seller string,
) (*domain.SellerStats, error) {
	var stats domain.SellerStats
	err := r.store.Get(seller, &stats)
	if err == nil {
		return &stats, nil
	}
	if !errors.Is(err, badgerhold.ErrNotFound) {
		return nil, err
	}

	newStats := domain.NewSellerStats(seller)
	if err := r.store.Upsert(seller, *newStats); err != nil {
		return nil, err
	}
	return newStats, nil
}

func (r *statsRepositoryImpl) GetAllStats(
	_ context.Context,
) ([]*domain.SellerStats, error) {
	var statsBySeller []domain.SellerStats
	if err := r.store.Find(&statsBySeller, &badgerhold.Query{}); err != nil {
		return nil, err
	}

	allStats := make([]*domain.SellerStats, 0, len(statsBySeller))
	for i := range statsBySeller {
		allStats = append(allStats, &statsBySeller[i])
	}
	return allStats, nil
}

func (r *statsRepositoryImpl) UpdateStats(
	_ context.Context,
	seller string,
	updateFn func(s *domain.SellerStats) (*domain.SellerStats, error),
) error {
	return r.store.Badger().Update(func(tx *badger.Txn) error {
		currentStats := domain.NewSellerStats(seller)
		if err := r.store.TxGet(tx, seller, currentStats); err != nil {
			if !errors.Is(err, badgerhold.ErrNotFound) {
				return err
			}
		}

		updatedStats, err := updateFn(currentStats)
		if err != nil {
			return err
		}

		return r.store.TxUpsert(tx, seller, *updatedStats)
	})
}
