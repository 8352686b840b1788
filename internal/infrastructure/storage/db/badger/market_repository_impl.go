package dbbadger

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v3"
	"github.com/timshannon/badgerhold/v4"

	"github.com/hashmarket/hashmarketd/internal/core/domain"
)

// The market is a singleton record stored under a fixed key.
const marketKey = "market"

type marketRepositoryImpl struct {
	store *badgerhold.Store
}

// NewMarketRepositoryImpl initializes a badger implementation of the
// domain.MarketRepository.
func NewMarketRepositoryImpl(store *badgerhold.Store) domain.MarketRepository {
	return &marketRepositoryImpl{store}
}

func (m *marketRepositoryImpl) InitMarket(
	_ context.Context, market *domain.Market,
) error {
	if err := m.store.Insert(marketKey, *market); err != nil {
		if errors.Is(err, badgerhold.ErrKeyExists) {
			return domain.ErrMarketAlreadyInitialized
		}
		return err
	}
	return nil
}

func (m *marketRepositoryImpl) GetMarket(
	_ context.Context,
) (*domain.Market, error) {
	var market domain.Market
	if err := m.store.Get(marketKey, &market); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, domain.ErrMarketNotInitialized
		}
		return nil, err
	}
	return &market, nil
}

func (m *marketRepositoryImpl) UpdateMarket(
	_ context.Context,
	updateFn func(market *domain.Market) (*domain.Market, error),
) error {
	return m.store.Badger().Update(func(tx *badger.Txn) error {
		var currentMarket domain.Market
		if err := m.store.TxGet(tx, marketKey, &currentMarket); err != nil {
			if errors.Is(err, badgerhold.ErrNotFound) {
				return domain.ErrMarketNotInitialized
			}
			return err
		}

		updatedMarket, err := updateFn(&currentMarket)
		if err != nil {
			return err
		}

		return m.store.TxUpdate(tx, marketKey, *updatedMarket)
	})
}
