package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/hashmarket/hashmarketd/internal/core/domain"
)

const (
	buyerAccount    = "buyer"
	sellerAccount   = "seller"
	deliveryAddress = "0x89205A3A3b2A69De6Dbf7f01ED13B2108B2c43e7"

	minOrderValue     = uint64(10 * 1000000)
	depositPercentage = uint32(21)
	baseFee           = uint32(500)
)

func newTestSellOrder(t *testing.T) *domain.Order {
	t.Helper()

	order, err := domain.NewSellOrder(
		0, sellerAccount, 100, 1000, 1000000, 30,
		depositPercentage, minOrderValue, time.Now(),
	)
	require.NoError(t, err)
	return order
}

func newTestBuyOrder(t *testing.T) *domain.Order {
	t.Helper()

	order, err := domain.NewBuyOrder(
		0, buyerAccount, 400, 1000000, 30, deliveryAddress,
		minOrderValue, time.Now(),
	)
	require.NoError(t, err)
	return order
}

func TestNewBuyOrder(t *testing.T) {
	t.Parallel()

	now := time.Now()
	order, err := domain.NewBuyOrder(
		7, buyerAccount, 400, 1000000, 30, deliveryAddress, minOrderValue, now,
	)
	require.NoError(t, err)
	require.Equal(t, uint64(7), order.Id)
	require.Equal(t, domain.OrderTypeBuy, order.Type)
	require.Equal(t, uint64(400000000), order.TotalValue)
	require.Equal(t, domain.OrderStatusOpen, order.Status)
	require.Zero(t, order.DepositAmount)
	require.Zero(t, order.Deadline)
	require.Equal(t, now.Unix(), order.CreatedAt)

	buyer, ok := order.MatchedBuyer()
	require.True(t, ok)
	require.Equal(t, buyerAccount, buyer)
	_, ok = order.MatchedSeller()
	require.False(t, ok)
}

func TestFailingNewBuyOrder(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		amount        uint64
		price         uint64
		days          uint32
		address       string
		expectedError error
	}{
		{
			name:          "zero_amount",
			amount:        0,
			price:         1000000,
			days:          30,
			address:       deliveryAddress,
			expectedError: domain.ErrInvalidAmount,
		},
		{
			name:          "zero_price",
			amount:        400,
			price:         0,
			days:          30,
			address:       deliveryAddress,
			expectedError: domain.ErrInvalidPrice,
		},
		{
			name:          "zero_days",
			amount:        400,
			price:         1000000,
			days:          0,
			address:       deliveryAddress,
			expectedError: domain.ErrInvalidCompletionDays,
		},
		{
			name:          "too_many_days",
			amount:        400,
			price:         1000000,
			days:          181,
			address:       deliveryAddress,
			expectedError: domain.ErrInvalidCompletionDays,
		},
		{
			name:          "missing_address_prefix",
			amount:        400,
			price:         1000000,
			days:          30,
			address:       "89205A3A3b2A69De6Dbf7f01ED13B2108B2c43e7ab",
			expectedError: domain.ErrInvalidDeliveryAddress,
		},
		{
			name:          "short_address",
			amount:        400,
			price:         1000000,
			days:          30,
			address:       "0x1234",
			expectedError: domain.ErrInvalidDeliveryAddress,
		},
		{
			name:          "below_min_order_value",
			amount:        5,
			price:         1000000,
			days:          30,
			address:       deliveryAddress,
			expectedError: domain.ErrOrderTooSmall,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := domain.NewBuyOrder(
				0, buyerAccount, tt.amount, tt.price, tt.days, tt.address,
				minOrderValue, time.Now(),
			)
			require.EqualError(t, err, tt.expectedError.Error())
		})
	}
}

func TestNewSellOrder(t *testing.T) {
	t.Parallel()

	order := newTestSellOrder(t)
	require.Equal(t, domain.OrderTypeSell, order.Type)
	require.Equal(t, domain.OrderStatusOpen, order.Status)
	// 1000 * 1000000 * 21 / 100
	require.Equal(t, uint64(210000000), order.DepositAmount)
	require.Zero(t, order.TotalValue)
	require.Zero(t, order.Amount)
	require.Empty(t, order.DeliveryAddress)

	_, ok := order.MatchedBuyer()
	require.False(t, ok)
	seller, ok := order.MatchedSeller()
	require.True(t, ok)
	require.Equal(t, sellerAccount, seller)
}

func TestFailingNewSellOrder(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		minAmount     uint64
		maxAmount     uint64
		price         uint64
		days          uint32
		expectedError error
	}{
		{
			name:          "zero_min_amount",
			minAmount:     0,
			maxAmount:     1000,
			price:         1000000,
			days:          30,
			expectedError: domain.ErrInvalidAmount,
		},
		{
			name:          "max_below_min",
			minAmount:     100,
			maxAmount:     99,
			price:         1000000,
			days:          30,
			expectedError: domain.ErrInvalidAmount,
		},
		{
			name:          "zero_price",
			minAmount:     100,
			maxAmount:     1000,
			price:         0,
			days:          30,
			expectedError: domain.ErrInvalidPrice,
		},
		{
			name:          "too_many_days",
			minAmount:     100,
			maxAmount:     1000,
			price:         1000000,
			days:          200,
			expectedError: domain.ErrInvalidCompletionDays,
		},
		{
			name:          "below_min_order_value",
			minAmount:     5,
			maxAmount:     1000,
			price:         1000000,
			days:          30,
			expectedError: domain.ErrOrderTooSmall,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := domain.NewSellOrder(
				0, sellerAccount, tt.minAmount, tt.maxAmount, tt.price,
				tt.days, depositPercentage, minOrderValue, time.Now(),
			)
			require.EqualError(t, err, tt.expectedError.Error())
		})
	}
}

func TestTakeSellOrder(t *testing.T) {
	t.Parallel()

	order := newTestSellOrder(t)
	now := time.Now()

	outcome, err := order.Take(buyerAccount, 400, deliveryAddress, minOrderValue, now)
	require.NoError(t, err)
	require.Equal(t, uint64(400000000), outcome.Payment)
	// 210000000 * 400 / 1000
	require.Equal(t, uint64(84000000), outcome.RequiredDeposit)
	require.Equal(t, uint64(126000000), outcome.ReleasedDeposit)

	require.Equal(t, domain.OrderStatusInProgress, order.Status)
	require.Equal(t, uint64(400), order.Amount)
	require.Equal(t, uint64(400000000), order.TotalValue)
	require.Equal(t, uint64(84000000), order.DepositAmount)
	require.Equal(t, deliveryAddress, order.DeliveryAddress)
	require.Equal(t, now.Unix()+30*86400, order.Deadline)

	buyer, ok := order.MatchedBuyer()
	require.True(t, ok)
	require.Equal(t, buyerAccount, buyer)
}

func TestTakeSellOrderFullCapacity(t *testing.T) {
	t.Parallel()

	order := newTestSellOrder(t)

	outcome, err := order.Take(buyerAccount, 1000, deliveryAddress, minOrderValue, time.Now())
	require.NoError(t, err)
	require.Equal(t, uint64(210000000), outcome.RequiredDeposit)
	require.Zero(t, outcome.ReleasedDeposit)
}

func TestFailingTakeSellOrder(t *testing.T) {
	t.Parallel()

	t.Run("wrong_order_type", func(t *testing.T) {
		t.Parallel()
		order := newTestBuyOrder(t)
		_, err := order.Take(buyerAccount, 400, deliveryAddress, minOrderValue, time.Now())
		require.EqualError(t, err, domain.ErrWrongOrderType.Error())
	})

	t.Run("not_open", func(t *testing.T) {
		t.Parallel()
		order := newTestSellOrder(t)
		_, err := order.Take(buyerAccount, 400, deliveryAddress, minOrderValue, time.Now())
		require.NoError(t, err)
		_, err = order.Take("another", 400, deliveryAddress, minOrderValue, time.Now())
		require.EqualError(t, err, domain.ErrOrderMustBeOpen.Error())
	})

	t.Run("amount_below_range", func(t *testing.T) {
		t.Parallel()
		order := newTestSellOrder(t)
		_, err := order.Take(buyerAccount, 99, deliveryAddress, minOrderValue, time.Now())
		require.EqualError(t, err, domain.ErrAmountOutOfRange.Error())
	})

	t.Run("amount_above_range", func(t *testing.T) {
		t.Parallel()
		order := newTestSellOrder(t)
		_, err := order.Take(buyerAccount, 1001, deliveryAddress, minOrderValue, time.Now())
		require.EqualError(t, err, domain.ErrAmountOutOfRange.Error())
	})

	t.Run("invalid_address", func(t *testing.T) {
		t.Parallel()
		order := newTestSellOrder(t)
		_, err := order.Take(buyerAccount, 400, "0xdead", minOrderValue, time.Now())
		require.EqualError(t, err, domain.ErrInvalidDeliveryAddress.Error())
	})

	t.Run("payment_below_min_order_value", func(t *testing.T) {
		t.Parallel()
		// the minimum is resolved at call time, so a raised minimum can
		// make an in-range amount too small
		order := newTestSellOrder(t)
		raisedMinOrderValue := uint64(500 * 1000000)
		_, err := order.Take(buyerAccount, 400, deliveryAddress, raisedMinOrderValue, time.Now())
		require.EqualError(t, err, domain.ErrOrderTooSmall.Error())
	})
}

func TestAcceptBuyOrder(t *testing.T) {
	t.Parallel()

	order := newTestBuyOrder(t)
	now := time.Now()

	depositAmount, err := order.Accept(sellerAccount, depositPercentage, now)
	require.NoError(t, err)
	// 400000000 * 21 / 100
	require.Equal(t, uint64(84000000), depositAmount)
	require.Equal(t, domain.OrderStatusInProgress, order.Status)
	require.Equal(t, uint64(84000000), order.DepositAmount)
	require.Equal(t, now.Unix()+30*86400, order.Deadline)

	seller, ok := order.MatchedSeller()
	require.True(t, ok)
	require.Equal(t, sellerAccount, seller)
}

func TestFailingAcceptBuyOrder(t *testing.T) {
	t.Parallel()

	t.Run("wrong_order_type", func(t *testing.T) {
		t.Parallel()
		order := newTestSellOrder(t)
		_, err := order.Accept(sellerAccount, depositPercentage, time.Now())
		require.EqualError(t, err, domain.ErrWrongOrderType.Error())
	})

	t.Run("not_open", func(t *testing.T) {
		t.Parallel()
		order := newTestBuyOrder(t)
		_, err := order.Accept(sellerAccount, depositPercentage, time.Now())
		require.NoError(t, err)
		_, err = order.Accept("another", depositPercentage, time.Now())
		require.EqualError(t, err, domain.ErrOrderMustBeOpen.Error())
	})
}

func TestCompleteOrder(t *testing.T) {
	t.Parallel()

	order := newTestSellOrder(t)
	_, err := order.Take(buyerAccount, 400, deliveryAddress, minOrderValue, time.Now())
	require.NoError(t, err)

	outcome, err := order.Complete(buyerAccount, baseFee)
	require.NoError(t, err)
	// 400000000 * 500 / 10000
	require.Equal(t, uint64(20000000), outcome.Fee)
	// 400000000 - 20000000 + 84000000
	require.Equal(t, uint64(464000000), outcome.SellerPayment)
	require.Equal(t, domain.OrderStatusCompleted, order.Status)
	require.Equal(t, uint32(100), order.CompletionPercentage)
	require.True(t, order.IsTerminal())
}

func TestFailingCompleteOrder(t *testing.T) {
	t.Parallel()

	t.Run("not_in_progress", func(t *testing.T) {
		t.Parallel()
		order := newTestSellOrder(t)
		_, err := order.Complete(buyerAccount, baseFee)
		require.EqualError(t, err, domain.ErrOrderMustBeInProgress.Error())
	})

	t.Run("unauthorized_caller", func(t *testing.T) {
		t.Parallel()
		order := newTestSellOrder(t)
		_, err := order.Take(buyerAccount, 400, deliveryAddress, minOrderValue, time.Now())
		require.NoError(t, err)
		_, err = order.Complete(sellerAccount, baseFee)
		require.EqualError(t, err, domain.ErrUnauthorized.Error())
	})

	t.Run("already_completed", func(t *testing.T) {
		t.Parallel()
		order := newTestSellOrder(t)
		_, err := order.Take(buyerAccount, 400, deliveryAddress, minOrderValue, time.Now())
		require.NoError(t, err)
		_, err = order.Complete(buyerAccount, baseFee)
		require.NoError(t, err)
		_, err = order.Complete(buyerAccount, baseFee)
		require.EqualError(t, err, domain.ErrOrderMustBeInProgress.Error())
	})
}

func TestCancelOrder(t *testing.T) {
	t.Parallel()

	t.Run("buy_order_refunds_value", func(t *testing.T) {
		t.Parallel()
		order := newTestBuyOrder(t)
		refund, err := order.Cancel(buyerAccount)
		require.NoError(t, err)
		require.Equal(t, uint64(400000000), refund)
		require.Equal(t, domain.OrderStatusCancelled, order.Status)
		require.True(t, order.IsTerminal())
	})

	t.Run("sell_order_refunds_deposit", func(t *testing.T) {
		t.Parallel()
		order := newTestSellOrder(t)
		refund, err := order.Cancel(sellerAccount)
		require.NoError(t, err)
		require.Equal(t, uint64(210000000), refund)
		require.Equal(t, domain.OrderStatusCancelled, order.Status)
	})
}

func TestFailingCancelOrder(t *testing.T) {
	t.Parallel()

	t.Run("unauthorized_buy_caller", func(t *testing.T) {
		t.Parallel()
		order := newTestBuyOrder(t)
		_, err := order.Cancel(sellerAccount)
		require.EqualError(t, err, domain.ErrUnauthorized.Error())
	})

	t.Run("unauthorized_sell_caller", func(t *testing.T) {
		t.Parallel()
		order := newTestSellOrder(t)
		_, err := order.Cancel(buyerAccount)
		require.EqualError(t, err, domain.ErrUnauthorized.Error())
	})

	t.Run("in_progress_not_cancellable", func(t *testing.T) {
		t.Parallel()
		order := newTestSellOrder(t)
		_, err := order.Take(buyerAccount, 400, deliveryAddress, minOrderValue, time.Now())
		require.NoError(t, err)
		_, err = order.Cancel(sellerAccount)
		require.EqualError(t, err, domain.ErrOrderNotCancellable.Error())
	})

	t.Run("cancelled_is_terminal", func(t *testing.T) {
		t.Parallel()
		order := newTestBuyOrder(t)
		_, err := order.Cancel(buyerAccount)
		require.NoError(t, err)
		_, err = order.Cancel(buyerAccount)
		require.EqualError(t, err, domain.ErrOrderNotCancellable.Error())
	})
}

func TestResolveDispute(t *testing.T) {
	t.Parallel()

	order := newTestSellOrder(t)
	_, err := order.Take(buyerAccount, 400, deliveryAddress, minOrderValue, time.Now())
	require.NoError(t, err)

	outcome, err := order.Resolve(60, baseFee)
	require.NoError(t, err)
	// paid portion 240000000, refund 160000000, forfeit 33600000,
	// returned 50400000, regular fee 12000000
	require.Equal(t, uint64(240000000), outcome.PaidPortion)
	require.Equal(t, uint64(278400000), outcome.SellerPayment)
	require.Equal(t, uint64(176800000), outcome.BuyerTotal)
	require.Equal(t, uint64(28800000), outcome.PlatformTotal)
	require.Equal(t, domain.OrderStatusPartiallyCompleted, order.Status)
	require.Equal(t, uint32(60), order.CompletionPercentage)
	require.True(t, order.IsTerminal())

	// conservation
	total := outcome.SellerPayment + outcome.BuyerTotal + outcome.PlatformTotal
	require.Equal(t, uint64(400000000+84000000), total)
}

func TestResolveDisputeAtBounds(t *testing.T) {
	t.Parallel()

	t.Run("zero_percent", func(t *testing.T) {
		t.Parallel()
		order := newTestSellOrder(t)
		_, err := order.Take(buyerAccount, 400, deliveryAddress, minOrderValue, time.Now())
		require.NoError(t, err)

		outcome, err := order.Resolve(0, baseFee)
		require.NoError(t, err)
		require.Zero(t, outcome.PaidPortion)
		require.Zero(t, outcome.SellerPayment)
		// full deposit forfeited, split 50/50 between platform and buyer
		require.Equal(t, uint64(42000000), outcome.PlatformTotal)
		require.Equal(t, uint64(400000000+42000000), outcome.BuyerTotal)
	})

	t.Run("hundred_percent", func(t *testing.T) {
		t.Parallel()
		order := newTestSellOrder(t)
		_, err := order.Take(buyerAccount, 400, deliveryAddress, minOrderValue, time.Now())
		require.NoError(t, err)

		outcome, err := order.Resolve(100, baseFee)
		require.NoError(t, err)
		require.Equal(t, uint64(400000000), outcome.PaidPortion)
		// same as a regular completion
		require.Equal(t, uint64(464000000), outcome.SellerPayment)
		require.Zero(t, outcome.BuyerTotal)
		require.Equal(t, uint64(20000000), outcome.PlatformTotal)
	})
}

func TestFailingResolveDispute(t *testing.T) {
	t.Parallel()

	t.Run("not_in_progress", func(t *testing.T) {
		t.Parallel()
		order := newTestSellOrder(t)
		_, err := order.Resolve(50, baseFee)
		require.EqualError(t, err, domain.ErrOrderMustBeInProgress.Error())
	})

	t.Run("percentage_out_of_range", func(t *testing.T) {
		t.Parallel()
		order := newTestSellOrder(t)
		_, err := order.Take(buyerAccount, 400, deliveryAddress, minOrderValue, time.Now())
		require.NoError(t, err)
		_, err = order.Resolve(101, baseFee)
		require.EqualError(t, err, domain.ErrInvalidPercentage.Error())
	})
}

func TestDisputeConservationProperty(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		minAmount := rapid.Uint64Range(10, 500).Draw(t, "minAmount").(uint64)
		maxAmount := rapid.Uint64Range(minAmount, 2000).Draw(t, "maxAmount").(uint64)
		price := rapid.Uint64Range(1000000, 10000000).Draw(t, "price").(uint64)
		takenAmount := rapid.Uint64Range(minAmount, maxAmount).Draw(t, "takenAmount").(uint64)
		pct := uint32(rapid.IntRange(0, 100).Draw(t, "pct").(int))
		feeBps := uint32(rapid.IntRange(0, 10000).Draw(t, "feeBps").(int))

		order, err := domain.NewSellOrder(
			0, sellerAccount, minAmount, maxAmount, price, 30,
			depositPercentage, minOrderValue, time.Now(),
		)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if _, err := order.Take(
			buyerAccount, takenAmount, deliveryAddress, minOrderValue, time.Now(),
		); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		escrowed := order.TotalValue + order.DepositAmount
		outcome, err := order.Resolve(pct, feeBps)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		settled := outcome.SellerPayment + outcome.BuyerTotal + outcome.PlatformTotal
		if settled != escrowed {
			t.Fatalf(
				"conservation violated: escrowed %d, settled %d",
				escrowed, settled,
			)
		}
	})
}

func TestDepositProportionalityProperty(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		maxAmount := rapid.Uint64Range(10, 100000).Draw(t, "maxAmount").(uint64)
		minAmount := rapid.Uint64Range(10, maxAmount).Draw(t, "minAmount").(uint64)
		price := rapid.Uint64Range(1000000, 10000000).Draw(t, "price").(uint64)
		takenAmount := rapid.Uint64Range(minAmount, maxAmount).Draw(t, "takenAmount").(uint64)

		order, err := domain.NewSellOrder(
			0, sellerAccount, minAmount, maxAmount, price, 30,
			depositPercentage, minOrderValue, time.Now(),
		)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		initialDeposit := order.DepositAmount

		outcome, err := order.Take(
			buyerAccount, takenAmount, deliveryAddress, minOrderValue, time.Now(),
		)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if outcome.RequiredDeposit+outcome.ReleasedDeposit != initialDeposit {
			t.Fatalf(
				"deposit split does not cover the initial deposit: %d + %d != %d",
				outcome.RequiredDeposit, outcome.ReleasedDeposit, initialDeposit,
			)
		}
		if outcome.RequiredDeposit > initialDeposit {
			t.Fatalf("required deposit exceeds the initial deposit")
		}
	})
}
