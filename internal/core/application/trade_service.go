package application

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/hashmarket/hashmarketd/internal/core/domain"
	"github.com/hashmarket/hashmarketd/internal/core/ports"
)

// TradeService exposes the order lifecycle operations. Every operation is
// one atomic unit of work: either all its validations, fund movements and
// record mutations apply, or none do. Callers arrive already
// authenticated; the service only performs authorization checks against
// stored identities.
type TradeService interface {
	// CreateBuyOrder escrows the full order value from the buyer and
	// stores an open buy order. Returns the order id.
	CreateBuyOrder(
		ctx context.Context, buyer string,
		amount, price uint64, completionDays uint32, deliveryAddress string,
	) (uint64, error)
	// CreateSellOrder escrows the collateral deposit computed from the
	// maximum capacity and stores an open sell order. Returns the order id.
	CreateSellOrder(
		ctx context.Context, seller string,
		minAmount, maxAmount, price uint64, completionDays uint32,
	) (uint64, error)
	// TakeSellOrder matches a buyer against an open sell order, escrows
	// the payment and releases the unneeded share of the seller's deposit.
	TakeSellOrder(
		ctx context.Context, buyer string,
		orderID uint64, amount uint64, deliveryAddress string,
	) error
	// AcceptBuyOrder matches a seller against an open buy order, escrowing
	// the seller's collateral.
	AcceptBuyOrder(ctx context.Context, seller string, orderID uint64) error
	// CompleteOrder settles an in-progress order at 100%. Buyer only.
	CompleteOrder(ctx context.Context, caller string, orderID uint64) error
	// CancelOrder refunds and closes an open order. Owning party only.
	CancelOrder(ctx context.Context, caller string, orderID uint64) error
	// ResolveDispute settles an in-progress order at the given completion
	// percentage. Market authority only.
	ResolveDispute(
		ctx context.Context, caller string,
		orderID uint64, completionPercentage uint32,
	) error
	// GetOrder returns the order with the given id.
	GetOrder(ctx context.Context, orderID uint64) (*domain.Order, error)
	// ListOrdersByStatus returns all orders currently in the given status.
	ListOrdersByStatus(
		ctx context.Context, status domain.OrderStatus,
	) ([]*domain.Order, error)
	// GetSellerStats returns the lifetime stats of the given seller.
	GetSellerStats(ctx context.Context, seller string) (*domain.SellerStats, error)
}

type tradeService struct {
	repoManager   ports.RepoManager
	ledger        ports.Ledger
	escrowAccount string
	// Holds the pipeline of any operation on an existing order, from
	// validation up to and including the record commit. Without it a
	// concurrent request could move funds based on a state it has not
	// locked in.
	orderLocker *orderLocker
}

// NewTradeService returns a TradeService moving funds through the given
// ledger, with the given account as escrow.
func NewTradeService(
	repoManager ports.RepoManager,
	ledger ports.Ledger,
	escrowAccount string,
) TradeService {
	return &tradeService{
		repoManager:   repoManager,
		ledger:        ledger,
		escrowAccount: escrowAccount,
		orderLocker:   newOrderLocker(),
	}
}

func (s *tradeService) CreateBuyOrder(
	ctx context.Context, buyer string,
	amount, price uint64, completionDays uint32, deliveryAddress string,
) (uint64, error) {
	market, err := s.repoManager.MarketRepository().GetMarket(ctx)
	if err != nil {
		return 0, err
	}

	now := time.Now()
	order, err := domain.NewBuyOrder(
		0, buyer, amount, price, completionDays, deliveryAddress,
		market.MinOrderValue, now,
	)
	if err != nil {
		return 0, err
	}

	if _, err := s.ledger.Transfer(
		ctx, buyer, s.escrowAccount, buyer, order.TotalValue,
	); err != nil {
		return 0, fmt.Errorf("ledger transfer: %w", err)
	}

	orderID, err := s.nextOrderID(ctx)
	if err != nil {
		return 0, err
	}
	order.Id = orderID

	if err := s.repoManager.OrderRepository().AddOrder(ctx, order); err != nil {
		return 0, err
	}

	log.Debugf("created buy order %d for %d units at price %d", orderID, amount, price)
	return orderID, nil
}

func (s *tradeService) CreateSellOrder(
	ctx context.Context, seller string,
	minAmount, maxAmount, price uint64, completionDays uint32,
) (uint64, error) {
	market, err := s.repoManager.MarketRepository().GetMarket(ctx)
	if err != nil {
		return 0, err
	}

	now := time.Now()
	order, err := domain.NewSellOrder(
		0, seller, minAmount, maxAmount, price, completionDays,
		market.DepositPercentage, market.MinOrderValue, now,
	)
	if err != nil {
		return 0, err
	}

	if order.DepositAmount > 0 {
		if _, err := s.ledger.Transfer(
			ctx, seller, s.escrowAccount, seller, order.DepositAmount,
		); err != nil {
			return 0, fmt.Errorf("ledger transfer: %w", err)
		}
	}

	orderID, err := s.nextOrderID(ctx)
	if err != nil {
		return 0, err
	}
	order.Id = orderID

	if err := s.repoManager.OrderRepository().AddOrder(ctx, order); err != nil {
		return 0, err
	}

	if _, err := s.repoManager.StatsRepository().GetOrCreateStats(ctx, seller); err != nil {
		return 0, err
	}

	log.Debugf(
		"created sell order %d for [%d, %d] units at price %d",
		orderID, minAmount, maxAmount, price,
	)
	return orderID, nil
}

func (s *tradeService) TakeSellOrder(
	ctx context.Context, buyer string,
	orderID uint64, amount uint64, deliveryAddress string,
) error {
	defer s.orderLocker.lock(orderID)()

	market, err := s.repoManager.MarketRepository().GetMarket(ctx)
	if err != nil {
		return err
	}
	order, err := s.repoManager.OrderRepository().GetOrderByID(ctx, orderID)
	if err != nil {
		return err
	}
	now := time.Now()
	outcome, err := order.Take(buyer, amount, deliveryAddress, market.MinOrderValue, now)
	if err != nil {
		return err
	}
	seller, _ := order.MatchedSeller()

	transfers := []ports.TransferRequest{{
		From:       buyer,
		To:         s.escrowAccount,
		Authorizer: buyer,
		Amount:     outcome.Payment,
	}}
	if outcome.ReleasedDeposit > 0 {
		transfers = append(transfers, ports.TransferRequest{
			From:       s.escrowAccount,
			To:         seller,
			Authorizer: market.Authority,
			Amount:     outcome.ReleasedDeposit,
		})
	}
	if _, err := s.ledger.TransferBatch(ctx, transfers); err != nil {
		return fmt.Errorf("ledger transfer: %w", err)
	}

	if err := s.repoManager.OrderRepository().UpdateOrder(
		ctx, orderID,
		func(o *domain.Order) (*domain.Order, error) {
			if _, err := o.Take(
				buyer, amount, deliveryAddress, market.MinOrderValue, now,
			); err != nil {
				return nil, err
			}
			return o, nil
		},
	); err != nil {
		return err
	}

	return s.addActiveOrder(ctx, seller)
}

func (s *tradeService) AcceptBuyOrder(
	ctx context.Context, seller string, orderID uint64,
) error {
	defer s.orderLocker.lock(orderID)()

	market, err := s.repoManager.MarketRepository().GetMarket(ctx)
	if err != nil {
		return err
	}
	order, err := s.repoManager.OrderRepository().GetOrderByID(ctx, orderID)
	if err != nil {
		return err
	}

	now := time.Now()
	depositAmount, err := order.Accept(seller, market.DepositPercentage, now)
	if err != nil {
		return err
	}

	if depositAmount > 0 {
		if _, err := s.ledger.Transfer(
			ctx, seller, s.escrowAccount, seller, depositAmount,
		); err != nil {
			return fmt.Errorf("ledger transfer: %w", err)
		}
	}

	if err := s.repoManager.OrderRepository().UpdateOrder(
		ctx, orderID,
		func(o *domain.Order) (*domain.Order, error) {
			if _, err := o.Accept(seller, market.DepositPercentage, now); err != nil {
				return nil, err
			}
			return o, nil
		},
	); err != nil {
		return err
	}

	return s.addActiveOrder(ctx, seller)
}

func (s *tradeService) CompleteOrder(
	ctx context.Context, caller string, orderID uint64,
) error {
	defer s.orderLocker.lock(orderID)()

	market, err := s.repoManager.MarketRepository().GetMarket(ctx)
	if err != nil {
		return err
	}
	order, err := s.repoManager.OrderRepository().GetOrderByID(ctx, orderID)
	if err != nil {
		return err
	}
	if !order.IsInProgress() {
		return domain.ErrOrderMustBeInProgress
	}
	seller, _ := order.MatchedSeller()

	stats, err := s.repoManager.StatsRepository().GetOrCreateStats(ctx, seller)
	if err != nil {
		return err
	}
	feeBasisPoint := market.FeeForVolume(stats.LifetimeVolume)

	outcome, err := order.Complete(caller, feeBasisPoint)
	if err != nil {
		return err
	}

	transfers := make([]ports.TransferRequest, 0, 2)
	if outcome.Fee > 0 {
		transfers = append(transfers, ports.TransferRequest{
			From:       s.escrowAccount,
			To:         market.FeeRecipient,
			Authorizer: market.Authority,
			Amount:     outcome.Fee,
		})
	}
	if outcome.SellerPayment > 0 {
		transfers = append(transfers, ports.TransferRequest{
			From:       s.escrowAccount,
			To:         seller,
			Authorizer: market.Authority,
			Amount:     outcome.SellerPayment,
		})
	}
	if len(transfers) > 0 {
		if _, err := s.ledger.TransferBatch(ctx, transfers); err != nil {
			return fmt.Errorf("ledger transfer: %w", err)
		}
	}

	settledValue := order.TotalValue
	if err := s.repoManager.OrderRepository().UpdateOrder(
		ctx, orderID,
		func(o *domain.Order) (*domain.Order, error) {
			if _, err := o.Complete(caller, feeBasisPoint); err != nil {
				return nil, err
			}
			return o, nil
		},
	); err != nil {
		return err
	}

	return s.recordSettlement(ctx, seller, settledValue)
}

func (s *tradeService) CancelOrder(
	ctx context.Context, caller string, orderID uint64,
) error {
	defer s.orderLocker.lock(orderID)()

	market, err := s.repoManager.MarketRepository().GetMarket(ctx)
	if err != nil {
		return err
	}
	order, err := s.repoManager.OrderRepository().GetOrderByID(ctx, orderID)
	if err != nil {
		return err
	}

	refund, err := order.Cancel(caller)
	if err != nil {
		return err
	}

	if refund > 0 {
		if _, err := s.ledger.Transfer(
			ctx, s.escrowAccount, caller, market.Authority, refund,
		); err != nil {
			return fmt.Errorf("ledger transfer: %w", err)
		}
	}

	return s.repoManager.OrderRepository().UpdateOrder(
		ctx, orderID,
		func(o *domain.Order) (*domain.Order, error) {
			if _, err := o.Cancel(caller); err != nil {
				return nil, err
			}
			return o, nil
		},
	)
}

func (s *tradeService) ResolveDispute(
	ctx context.Context, caller string,
	orderID uint64, completionPercentage uint32,
) error {
	defer s.orderLocker.lock(orderID)()

	market, err := s.repoManager.MarketRepository().GetMarket(ctx)
	if err != nil {
		return err
	}
	if caller != market.Authority {
		return domain.ErrUnauthorized
	}

	order, err := s.repoManager.OrderRepository().GetOrderByID(ctx, orderID)
	if err != nil {
		return err
	}
	if !order.IsInProgress() {
		return domain.ErrOrderMustBeInProgress
	}
	seller, _ := order.MatchedSeller()
	buyer, _ := order.MatchedBuyer()

	stats, err := s.repoManager.StatsRepository().GetOrCreateStats(ctx, seller)
	if err != nil {
		return err
	}
	feeBasisPoint := market.FeeForVolume(stats.LifetimeVolume)

	outcome, err := order.Resolve(completionPercentage, feeBasisPoint)
	if err != nil {
		return err
	}

	transfers := make([]ports.TransferRequest, 0, 3)
	if outcome.PlatformTotal > 0 {
		transfers = append(transfers, ports.TransferRequest{
			From:       s.escrowAccount,
			To:         market.FeeRecipient,
			Authorizer: market.Authority,
			Amount:     outcome.PlatformTotal,
		})
	}
	if outcome.SellerPayment > 0 {
		transfers = append(transfers, ports.TransferRequest{
			From:       s.escrowAccount,
			To:         seller,
			Authorizer: market.Authority,
			Amount:     outcome.SellerPayment,
		})
	}
	if outcome.BuyerTotal > 0 {
		transfers = append(transfers, ports.TransferRequest{
			From:       s.escrowAccount,
			To:         buyer,
			Authorizer: market.Authority,
			Amount:     outcome.BuyerTotal,
		})
	}
	if len(transfers) > 0 {
		if _, err := s.ledger.TransferBatch(ctx, transfers); err != nil {
			return fmt.Errorf("ledger transfer: %w", err)
		}
	}

	if err := s.repoManager.OrderRepository().UpdateOrder(
		ctx, orderID,
		func(o *domain.Order) (*domain.Order, error) {
			if _, err := o.Resolve(completionPercentage, feeBasisPoint); err != nil {
				return nil, err
			}
			return o, nil
		},
	); err != nil {
		return err
	}

	log.Debugf(
		"resolved dispute on order %d at %d%% completion",
		orderID, completionPercentage,
	)
	return s.recordSettlement(ctx, seller, outcome.PaidPortion)
}

func (s *tradeService) GetOrder(
	ctx context.Context, orderID uint64,
) (*domain.Order, error) {
	return s.repoManager.OrderRepository().GetOrderByID(ctx, orderID)
}

func (s *tradeService) ListOrdersByStatus(
	ctx context.Context, status domain.OrderStatus,
) ([]*domain.Order, error) {
	return s.repoManager.OrderRepository().GetOrdersByStatus(ctx, status)
}

func (s *tradeService) GetSellerStats(
	ctx context.Context, seller string,
) (*domain.SellerStats, error) {
	return s.repoManager.StatsRepository().GetOrCreateStats(ctx, seller)
}

func (s *tradeService) nextOrderID(ctx context.Context) (uint64, error) {
	var orderID uint64
	if err := s.repoManager.MarketRepository().UpdateMarket(
		ctx,
		func(m *domain.Market) (*domain.Market, error) {
			orderID = m.NextOrderID()
			return m, nil
		},
	); err != nil {
		return 0, err
	}
	return orderID, nil
}

func (s *tradeService) addActiveOrder(ctx context.Context, seller string) error {
	if _, err := s.repoManager.StatsRepository().GetOrCreateStats(ctx, seller); err != nil {
		return err
	}
	return s.repoManager.StatsRepository().UpdateStats(
		ctx, seller,
		func(stats *domain.SellerStats) (*domain.SellerStats, error) {
			stats.AddActiveOrder()
			return stats, nil
		},
	)
}

func (s *tradeService) recordSettlement(
	ctx context.Context, seller string, volume uint64,
) error {
	return s.repoManager.StatsRepository().UpdateStats(
		ctx, seller,
		func(stats *domain.SellerStats) (*domain.SellerStats, error) {
			if err := stats.RecordSettlement(volume); err != nil {
				return nil, err
			}
			return stats, nil
		},
	)
}
