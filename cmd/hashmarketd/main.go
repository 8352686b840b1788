package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/hashmarket/hashmarketd/config"
	"github.com/hashmarket/hashmarketd/internal/core/application"
	"github.com/hashmarket/hashmarketd/internal/core/domain"
	"github.com/hashmarket/hashmarketd/internal/core/ports"
	ledgerinmemory "github.com/hashmarket/hashmarketd/internal/infrastructure/ledger/inmemory"
	dbbadger "github.com/hashmarket/hashmarketd/internal/infrastructure/storage/db/badger"
	"github.com/hashmarket/hashmarketd/internal/infrastructure/storage/db/inmemory"
)

func main() {
	log.SetLevel(log.Level(config.GetInt(config.LogLevelKey)))
	if err := config.Validate(); err != nil {
		log.WithError(err).Panic("invalid config")
	}

	authority := config.GetString(config.AuthorityKey)
	escrowAccount := config.GetString(config.EscrowAccountKey)

	repoManager, err := newRepoManager()
	if err != nil {
		log.WithError(err).Panic("error while opening storage")
	}
	defer repoManager.Close()

	ledger := ledgerinmemory.NewLedger()
	ledger.RegisterAuthority(escrowAccount, authority)

	marketSvc := application.NewMarketService(repoManager)
	if err := marketSvc.Initialize(context.Background(), authority); err != nil {
		if !errors.Is(err, domain.ErrMarketAlreadyInitialized) {
			log.WithError(err).Panic("error while initializing market")
		}
	}

	// The trade service is the operation surface an embedding host invokes
	// on behalf of authenticated callers.
	tradeSvc := application.NewTradeService(repoManager, ledger, escrowAccount)

	openOrders, err := tradeSvc.ListOrdersByStatus(
		context.Background(), domain.OrderStatusOpen,
	)
	if err != nil {
		log.WithError(err).Panic("error while reading orders")
	}

	log.Infof("daemon running, %d open orders", len(openOrders))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	<-sigChan

	log.Info("exiting")
}

func newRepoManager() (ports.RepoManager, error) {
	if config.GetString(config.DbTypeKey) == "inmemory" {
		return inmemory.NewRepoManager(), nil
	}

	dbDir := filepath.Join(config.GetDatadir(), config.DbLocation)
	return dbbadger.NewRepoManager(dbDir, nil)
}
