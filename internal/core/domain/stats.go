package domain

import "github.com/hashmarket/hashmarketd/pkg/mathutil"

// SellerStats tracks a seller's lifetime activity. Records are created
// lazily on a seller's first participation and never deleted.
type SellerStats struct {
	Seller string
	// Cumulative settled notional value, monotonic non-decreasing.
	LifetimeVolume  uint64
	ActiveOrders    uint32
	CompletedOrders uint32
	IsInitialized   bool
}

// NewSellerStats returns zeroed stats for the given seller.
func NewSellerStats(seller string) *SellerStats {
	return &SellerStats{
		Seller:        seller,
		IsInitialized: true,
	}
}

// AddActiveOrder records that the seller entered a new in-progress order.
func (s *SellerStats) AddActiveOrder() {
	s.ActiveOrders++
}

// RecordSettlement credits the settled volume and moves one order from
// active to completed. The active counter saturates at zero.
func (s *SellerStats) RecordSettlement(volume uint64) error {
	lifetimeVolume, err := mathutil.Add(s.LifetimeVolume, volume)
	if err != nil {
		return err
	}

	s.LifetimeVolume = lifetimeVolume
	if s.ActiveOrders > 0 {
		s.ActiveOrders--
	}
	s.CompletedOrders++

	return nil
}
