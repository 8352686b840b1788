package domain

// Default market parameters applied at initialization time. Volumes and
// values are expressed in the payment token's minor unit (6 decimals).
const (
	DefaultDepositPercentage uint32 = 21
	DefaultFeePercentage     uint32 = 500

	DefaultTier1Volume uint64 = 10000 * 1000000
	DefaultTier1Fee    uint32 = 360
	DefaultTier2Volume uint64 = 50000 * 1000000
	DefaultTier2Fee    uint32 = 270
	DefaultTier3Volume uint64 = 100000 * 1000000
	DefaultTier3Fee    uint32 = 200

	DefaultMinOrderValue uint64 = 10 * 1000000
)

// FeeTier pairs a lifetime volume threshold with the discounted fee
// applied once a seller's volume reaches it.
type FeeTier struct {
	// Volume threshold in the payment token's minor unit.
	Volume uint64
	// Fee expressed in basis points.
	Fee uint32
}

// Market defines the Market entity data structure holding the global
// marketplace parameters. It is a singleton record owned by the authority.
type Market struct {
	// Identity allowed to update parameters and resolve disputes.
	Authority string
	// Identity receiving platform fees.
	FeeRecipient string
	// Counter for assigning unique order ids.
	OrderCounter uint64
	// Percentage of an order's value sellers must collateralize.
	DepositPercentage uint32
	// Base fee expressed in basis points.
	FeePercentage uint32
	// Ascending volume tiers with descending fees.
	Tier1 FeeTier
	Tier2 FeeTier
	Tier3 FeeTier
	// Minimum order notional value.
	MinOrderValue uint64
}

// NewMarket returns a market owned by the given authority with the default
// fee schedule, deposit ratio and minimum order value. The authority is
// also the initial fee recipient.
func NewMarket(authority string) (*Market, error) {
	if len(authority) <= 0 {
		return nil, ErrMarketInvalidAuthority
	}

	return &Market{
		Authority:         authority,
		FeeRecipient:      authority,
		OrderCounter:      0,
		DepositPercentage: DefaultDepositPercentage,
		FeePercentage:     DefaultFeePercentage,
		Tier1:             FeeTier{Volume: DefaultTier1Volume, Fee: DefaultTier1Fee},
		Tier2:             FeeTier{Volume: DefaultTier2Volume, Fee: DefaultTier2Fee},
		Tier3:             FeeTier{Volume: DefaultTier3Volume, Fee: DefaultTier3Fee},
		MinOrderValue:     DefaultMinOrderValue,
	}, nil
}

// MarketParams groups the optional fields of an UpdateParams request.
// Nil fields leave the current value untouched.
type MarketParams struct {
	DepositPercentage *uint32
	FeePercentage     *uint32
	FeeRecipient      *string
	Tier1Volume       *uint64
	Tier1Fee          *uint32
	Tier2Volume       *uint64
	Tier2Fee          *uint32
	Tier3Volume       *uint64
	Tier3Fee          *uint32
	MinOrderValue     *uint64
}

// UpdateParams overwrites every parameter for which the request carries a
// value. Only the market authority is allowed to call it.
func (m *Market) UpdateParams(caller string, params MarketParams) error {
	if caller != m.Authority {
		return ErrUnauthorized
	}

	for _, fee := range []*uint32{
		params.FeePercentage, params.Tier1Fee, params.Tier2Fee, params.Tier3Fee,
	} {
		if fee != nil && !isValidPercentageFee(*fee) {
			return ErrMarketInvalidPercentageFee
		}
	}
	if params.DepositPercentage != nil && *params.DepositPercentage > 100 {
		return ErrMarketInvalidDepositPercentage
	}

	if params.DepositPercentage != nil {
		m.DepositPercentage = *params.DepositPercentage
	}
	if params.FeePercentage != nil {
		m.FeePercentage = *params.FeePercentage
	}
	if params.FeeRecipient != nil {
		m.FeeRecipient = *params.FeeRecipient
	}
	if params.Tier1Volume != nil {
		m.Tier1.Volume = *params.Tier1Volume
	}
	if params.Tier1Fee != nil {
		m.Tier1.Fee = *params.Tier1Fee
	}
	if params.Tier2Volume != nil {
		m.Tier2.Volume = *params.Tier2Volume
	}
	if params.Tier2Fee != nil {
		m.Tier2.Fee = *params.Tier2Fee
	}
	if params.Tier3Volume != nil {
		m.Tier3.Volume = *params.Tier3Volume
	}
	if params.Tier3Fee != nil {
		m.Tier3.Fee = *params.Tier3Fee
	}
	if params.MinOrderValue != nil {
		m.MinOrderValue = *params.MinOrderValue
	}

	return nil
}

// FeeForVolume resolves the fee applied to a seller given their lifetime
// completed volume. Thresholds are read from the current parameters, so a
// seller crossing a tier mid-lifecycle gets the discounted rate at
// settlement time.
func (m *Market) FeeForVolume(lifetimeVolume uint64) uint32 {
	if lifetimeVolume >= m.Tier3.Volume {
		return m.Tier3.Fee
	}
	if lifetimeVolume >= m.Tier2.Volume {
		return m.Tier2.Fee
	}
	if lifetimeVolume >= m.Tier1.Volume {
		return m.Tier1.Fee
	}
	return m.FeePercentage
}

// NextOrderID returns the id to assign to a new order and advances the
// counter.
func (m *Market) NextOrderID() uint64 {
	id := m.OrderCounter
	m.OrderCounter++
	return id
}

func isValidPercentageFee(basisPoint uint32) bool {
	return basisPoint <= 10000
}
