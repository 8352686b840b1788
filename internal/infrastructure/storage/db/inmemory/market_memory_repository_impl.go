package inmemory

import (
	"context"
	"sync"

	"github.com/hashmarket/hashmarketd/internal/core/domain"
)

type marketInmemoryStore struct {
	market *domain.Market
	locker *sync.Mutex
}

func newMarketInmemoryStore() *marketInmemoryStore {
	return &marketInmemoryStore{locker: &sync.Mutex{}}
}

type marketRepositoryImpl struct {
	store *marketInmemoryStore
}

// NewMarketRepositoryImpl returns a new inmemory MarketRepository
// implementation.
func NewMarketRepositoryImpl(store *marketInmemoryStore) domain.MarketRepository {
	return &marketRepositoryImpl{store}
}

func (r *marketRepositoryImpl) InitMarket(
	_ context.Context, market *domain.Market,
) error {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	if r.store.market != nil {
		return domain.ErrMarketAlreadyInitialized
	}

	m := *market
	r.store.market = &m
	return nil
}

func (r *marketRepositoryImpl) GetMarket(
	_ context.Context,
) (*domain.Market, error) {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	if r.store.market == nil {
		return nil, domain.ErrMarketNotInitialized
	}

	m := *r.store.market
	return &m, nil
}

func (r *marketRepositoryImpl) UpdateMarket(
	_ context.Context,
	updateFn func(m *domain.Market) (*domain.Market, error),
) error {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	if r.store.market == nil {
		return domain.ErrMarketNotInitialized
	}

	currentMarket := *r.store.market
	updatedMarket, err := updateFn(&currentMarket)
	if err != nil {
		return err
	}

	r.store.market = updatedMarket
	return nil
}
