package dbbadger

import (
	"fmt"

	"github.com/dgraph-io/badger/v3"
	"github.com/dgraph-io/badger/v3/options"
	"github.com/timshannon/badgerhold/v4"

	"github.com/hashmarket/hashmarketd/internal/core/domain"
	"github.com/hashmarket/hashmarketd/internal/core/ports"
)

type repoManager struct {
	store *badgerhold.Store

	marketRepository domain.MarketRepository
	orderRepository  domain.OrderRepository
	statsRepository  domain.StatsRepository
}

// NewRepoManager opens (or creates if not exists) the badger store on
// disk and returns a ports.RepoManager backed by it. It expects a data
// dir and an optional logger.
func NewRepoManager(dbDir string, logger badger.Logger) (ports.RepoManager, error) {
	store, err := createDb(dbDir, logger)
	if err != nil {
		return nil, fmt.Errorf("opening market db: %w", err)
	}

	return &repoManager{
		store:            store,
		marketRepository: NewMarketRepositoryImpl(store),
		orderRepository:  NewOrderRepositoryImpl(store),
		statsRepository:  NewStatsRepositoryImpl(store),
	}, nil
}

func (d *repoManager) MarketRepository() domain.MarketRepository {
	return d.marketRepository
}

func (d *repoManager) OrderRepository() domain.OrderRepository {
	return d.orderRepository
}

func (d *repoManager) StatsRepository() domain.StatsRepository {
	return d.statsRepository
}

func (d *repoManager) Close() {
	d.store.Close()
}

func createDb(dbDir string, logger badger.Logger) (*badgerhold.Store, error) {
	opts := badger.DefaultOptions(dbDir)
	opts.Logger = logger
	opts.Compression = options.ZSTD

	return badgerhold.Open(badgerhold.Options{
		Encoder:          badgerhold.DefaultEncode,
		Decoder:          badgerhold.DefaultDecode,
		SequenceBandwith: 100,
		Options:          opts,
	})
}
