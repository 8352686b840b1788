package application

import (
	"context"

	"github.com/hashmarket/hashmarketd/internal/core/domain"
	"github.com/hashmarket/hashmarketd/internal/core/ports"
)

// MarketService exposes the administrative operations on the market
// singleton.
type MarketService interface {
	// Initialize creates the market record with the default parameters,
	// owned by the given authority.
	Initialize(ctx context.Context, authority string) error
	// UpdateMarketParams overwrites the provided parameters. Authority
	// only.
	UpdateMarketParams(
		ctx context.Context, caller string, params domain.MarketParams,
	) error
	// GetMarketInfo returns the current market parameters.
	GetMarketInfo(ctx context.Context) (*domain.Market, error)
}

type marketService struct {
	repoManager ports.RepoManager
}

// NewMarketService returns a MarketService backed by the given
// repositories.
func NewMarketService(repoManager ports.RepoManager) MarketService {
	return &marketService{repoManager: repoManager}
}

func (s *marketService) Initialize(ctx context.Context, authority string) error {
	market, err := domain.NewMarket(authority)
	if err != nil {
		return err
	}

	return s.repoManager.MarketRepository().InitMarket(ctx, market)
}

func (s *marketService) UpdateMarketParams(
	ctx context.Context, caller string, params domain.MarketParams,
) error {
	return s.repoManager.MarketRepository().UpdateMarket(
		ctx,
		func(m *domain.Market) (*domain.Market, error) {
			if err := m.UpdateParams(caller, params); err != nil {
				return nil, err
			}
			return m, nil
		},
	)
}

func (s *marketService) GetMarketInfo(ctx context.Context) (*domain.Market, error) {
	return s.repoManager.MarketRepository().GetMarket(ctx)
}
