package domain

import (
	"strings"
	"time"

	"github.com/hashmarket/hashmarketd/pkg/mathutil"
)

// OrderType discriminates between buy orders (buyers committing payment)
// and sell orders (sellers offering mining capacity).
type OrderType int

const (
	OrderTypeBuy OrderType = iota
	OrderTypeSell
)

// OrderStatus represents the different statuses that an order can assume.
type OrderStatus int

const (
	OrderStatusOpen OrderStatus = iota
	OrderStatusInProgress
	OrderStatusCompleted
	OrderStatusPartiallyCompleted
	OrderStatusCancelled
	// Declared for forward compatibility, currently reached by no
	// transition.
	OrderStatusRefunded
	OrderStatusDisputed
)

func (s OrderStatus) String() string {
	switch s {
	case OrderStatusOpen:
		return "open"
	case OrderStatusInProgress:
		return "in_progress"
	case OrderStatusCompleted:
		return "completed"
	case OrderStatusPartiallyCompleted:
		return "partially_completed"
	case OrderStatusCancelled:
		return "cancelled"
	case OrderStatusRefunded:
		return "refunded"
	case OrderStatusDisputed:
		return "disputed"
	default:
		return "unknown"
	}
}

const (
	// MinCompletionDays is the shortest accepted delivery window.
	MinCompletionDays uint32 = 1
	// MaxCompletionDays is the longest accepted delivery window.
	MaxCompletionDays uint32 = 180

	deliveryAddressLength = 42
	secondsPerDay         = 86400
)

// Order is the data structure representing an order entity. One of Buyer
// and Seller is empty while the order is open; use MatchedBuyer and
// MatchedSeller to read them.
type Order struct {
	Id   uint64
	Type OrderType
	// Buyer identity, empty until a buyer takes a sell order.
	Buyer string
	// Seller identity, empty until a seller accepts a buy order.
	Seller string
	// Amount of the mined asset. Fixed at creation for buy orders, set at
	// match time for sell orders.
	Amount uint64
	// Capacity range declared by the seller, zero for buy orders.
	MinAmount uint64
	MaxAmount uint64
	// Unit price in the payment token's minor unit.
	Price     uint64
	CreatedAt int64
	// Delivery window in days, fixed at creation.
	CompletionDays uint32
	// Unix time by which the seller must deliver, set once matched.
	Deadline int64
	// Address the mined asset is delivered to.
	DeliveryAddress string
	Status          OrderStatus
	// Notional value in the payment token's minor unit.
	TotalValue uint64
	// Collateral currently held in escrow for this order.
	DepositAmount        uint64
	CompletionPercentage uint32
}

// NewBuyOrder returns an open buy order with its notional value computed
// and validated against the market minimum. The full value is expected to
// be escrowed by the caller.
func NewBuyOrder(
	id uint64, buyer string, amount, price uint64, completionDays uint32,
	deliveryAddress string, minOrderValue uint64, now time.Time,
) (*Order, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if price <= 0 {
		return nil, ErrInvalidPrice
	}
	if !isValidCompletionDays(completionDays) {
		return nil, ErrInvalidCompletionDays
	}
	if !isValidDeliveryAddress(deliveryAddress) {
		return nil, ErrInvalidDeliveryAddress
	}

	totalValue, err := mathutil.Mul(amount, price)
	if err != nil {
		return nil, err
	}
	if totalValue < minOrderValue {
		return nil, ErrOrderTooSmall
	}

	return &Order{
		Id:              id,
		Type:            OrderTypeBuy,
		Buyer:           buyer,
		Amount:          amount,
		Price:           price,
		CreatedAt:       now.Unix(),
		CompletionDays:  completionDays,
		DeliveryAddress: deliveryAddress,
		Status:          OrderStatusOpen,
		TotalValue:      totalValue,
	}, nil
}

// NewSellOrder returns an open sell order with the collateral deposit
// computed from the maximum declared capacity. The deposit is expected to
// be escrowed by the caller.
func NewSellOrder(
	id uint64, seller string, minAmount, maxAmount, price uint64,
	completionDays, depositPercentage uint32, minOrderValue uint64,
	now time.Time,
) (*Order, error) {
	if minAmount <= 0 {
		return nil, ErrInvalidAmount
	}
	if maxAmount < minAmount {
		return nil, ErrInvalidAmount
	}
	if price <= 0 {
		return nil, ErrInvalidPrice
	}
	if !isValidCompletionDays(completionDays) {
		return nil, ErrInvalidCompletionDays
	}

	minValue, err := mathutil.Mul(minAmount, price)
	if err != nil {
		return nil, err
	}
	if minValue < minOrderValue {
		return nil, ErrOrderTooSmall
	}

	maxValue, err := mathutil.Mul(maxAmount, price)
	if err != nil {
		return nil, err
	}
	depositAmount, err := mathutil.PercentAmount(maxValue, depositPercentage)
	if err != nil {
		return nil, err
	}

	return &Order{
		Id:             id,
		Type:           OrderTypeSell,
		Seller:         seller,
		MinAmount:      minAmount,
		MaxAmount:      maxAmount,
		Price:          price,
		CreatedAt:      now.Unix(),
		CompletionDays: completionDays,
		Status:         OrderStatusOpen,
		DepositAmount:  depositAmount,
	}, nil
}

// MatchedBuyer returns the buyer identity if one is recorded.
func (o *Order) MatchedBuyer() (string, bool) {
	return o.Buyer, len(o.Buyer) > 0
}

// MatchedSeller returns the seller identity if one is recorded.
func (o *Order) MatchedSeller() (string, bool) {
	return o.Seller, len(o.Seller) > 0
}

// IsOpen returns whether the order is awaiting a counterparty.
func (o *Order) IsOpen() bool {
	return o.Status == OrderStatusOpen
}

// IsInProgress returns whether the order has been matched and awaits
// delivery.
func (o *Order) IsInProgress() bool {
	return o.Status == OrderStatusInProgress
}

// IsTerminal returns whether no further transition applies to the order.
func (o *Order) IsTerminal() bool {
	switch o.Status {
	case OrderStatusCompleted, OrderStatusPartiallyCompleted,
		OrderStatusCancelled, OrderStatusRefunded:
		return true
	default:
		return false
	}
}

// TakeOutcome lists the fund movements triggered by taking a sell order.
type TakeOutcome struct {
	// Payment transferred from the buyer to escrow.
	Payment uint64
	// Portion of the seller's deposit kept in escrow for the taken amount.
	RequiredDeposit uint64
	// Remainder of the deposit released back to the seller.
	ReleasedDeposit uint64
}

// Take brings an open sell order to InProgress by recording the buyer,
// the taken amount and the delivery deadline. The deposit kept in escrow
// shrinks proportionally to the taken amount; the ratio is computed over
// a widened integer and rounded down.
func (o *Order) Take(
	buyer string, amount uint64, deliveryAddress string,
	minOrderValue uint64, now time.Time,
) (*TakeOutcome, error) {
	if o.Type != OrderTypeSell {
		return nil, ErrWrongOrderType
	}
	if !o.IsOpen() {
		return nil, ErrOrderMustBeOpen
	}
	if amount < o.MinAmount || amount > o.MaxAmount {
		return nil, ErrAmountOutOfRange
	}
	if !isValidDeliveryAddress(deliveryAddress) {
		return nil, ErrInvalidDeliveryAddress
	}

	payment, err := mathutil.Mul(amount, o.Price)
	if err != nil {
		return nil, err
	}
	if payment < minOrderValue {
		return nil, ErrOrderTooSmall
	}

	requiredDeposit, err := mathutil.MulDiv(o.DepositAmount, amount, o.MaxAmount)
	if err != nil {
		return nil, err
	}
	releasedDeposit, err := mathutil.Sub(o.DepositAmount, requiredDeposit)
	if err != nil {
		return nil, err
	}

	o.Buyer = buyer
	o.Amount = amount
	o.DeliveryAddress = deliveryAddress
	o.TotalValue = payment
	o.DepositAmount = requiredDeposit
	o.Status = OrderStatusInProgress
	o.setDeadline(now)

	return &TakeOutcome{
		Payment:         payment,
		RequiredDeposit: requiredDeposit,
		ReleasedDeposit: releasedDeposit,
	}, nil
}

// Accept brings an open buy order to InProgress by recording the seller
// and the delivery deadline. It returns the collateral the seller must
// escrow, computed from the order's fixed value.
func (o *Order) Accept(
	seller string, depositPercentage uint32, now time.Time,
) (uint64, error) {
	if o.Type != OrderTypeBuy {
		return 0, ErrWrongOrderType
	}
	if !o.IsOpen() {
		return 0, ErrOrderMustBeOpen
	}

	depositAmount, err := mathutil.PercentAmount(o.TotalValue, depositPercentage)
	if err != nil {
		return 0, err
	}

	o.Seller = seller
	o.DepositAmount = depositAmount
	o.Status = OrderStatusInProgress
	o.setDeadline(now)

	return depositAmount, nil
}

// CompletionOutcome lists the fund movements of a successful settlement.
type CompletionOutcome struct {
	// Fee routed to the platform fee recipient.
	Fee uint64
	// Sale proceeds net of fee plus the recovered deposit, routed to the
	// seller.
	SellerPayment uint64
}

// Complete settles an in-progress order at 100%. Only the recorded buyer
// may confirm delivery. The seller recovers the full deposit plus the
// proceeds net of the tiered fee.
func (o *Order) Complete(caller string, feeBasisPoint uint32) (*CompletionOutcome, error) {
	if !o.IsInProgress() {
		return nil, ErrOrderMustBeInProgress
	}
	if buyer, ok := o.MatchedBuyer(); !ok || caller != buyer {
		return nil, ErrUnauthorized
	}

	proceeds, fee, err := mathutil.LessFee(o.TotalValue, feeBasisPoint)
	if err != nil {
		return nil, err
	}
	sellerPayment, err := mathutil.Add(proceeds, o.DepositAmount)
	if err != nil {
		return nil, err
	}

	o.Status = OrderStatusCompleted
	o.CompletionPercentage = 100

	return &CompletionOutcome{
		Fee:           fee,
		SellerPayment: sellerPayment,
	}, nil
}

// Cancel brings an open order to the Cancelled status and returns the
// escrowed amount to refund: the full order value for buy orders, the
// deposit for sell orders. Only the owning party may cancel.
func (o *Order) Cancel(caller string) (uint64, error) {
	if !o.IsOpen() {
		return 0, ErrOrderNotCancellable
	}

	var refund uint64
	switch o.Type {
	case OrderTypeBuy:
		if buyer, ok := o.MatchedBuyer(); !ok || caller != buyer {
			return 0, ErrUnauthorized
		}
		refund = o.TotalValue
	case OrderTypeSell:
		if seller, ok := o.MatchedSeller(); !ok || caller != seller {
			return 0, ErrUnauthorized
		}
		refund = o.DepositAmount
	default:
		return 0, ErrWrongOrderType
	}

	o.Status = OrderStatusCancelled

	return refund, nil
}

// DisputeOutcome lists the fund movements of an arbitrated settlement.
// SellerPayment + BuyerTotal + PlatformTotal always equals the order's
// TotalValue + DepositAmount.
type DisputeOutcome struct {
	// Portion of the order value earned by the seller, credited to their
	// lifetime volume.
	PaidPortion uint64
	// Paid portion net of the tiered fee plus the returned deposit.
	SellerPayment uint64
	// Unearned value refunded to the buyer plus their share of the
	// forfeited deposit.
	BuyerTotal uint64
	// Tiered fee on the paid portion plus the platform's share of the
	// forfeited deposit.
	PlatformTotal uint64
}

// Resolve settles an in-progress order at the given completion
// percentage. The unearned share of the deposit is forfeited and split
// 50/50 between the platform and the buyer; a regular tiered fee is
// levied on the earned portion.
func (o *Order) Resolve(completionPercentage, feeBasisPoint uint32) (*DisputeOutcome, error) {
	if !o.IsInProgress() {
		return nil, ErrOrderMustBeInProgress
	}
	if completionPercentage > 100 {
		return nil, ErrInvalidPercentage
	}

	paidPortion, err := mathutil.PercentAmount(o.TotalValue, completionPercentage)
	if err != nil {
		return nil, err
	}
	buyerRefund, err := mathutil.Sub(o.TotalValue, paidPortion)
	if err != nil {
		return nil, err
	}

	depositForfeit, err := mathutil.PercentAmount(o.DepositAmount, 100-completionPercentage)
	if err != nil {
		return nil, err
	}
	depositReturned, err := mathutil.Sub(o.DepositAmount, depositForfeit)
	if err != nil {
		return nil, err
	}

	platformShare, err := mathutil.PercentAmount(depositForfeit, 50)
	if err != nil {
		return nil, err
	}
	buyerCompensation, err := mathutil.Sub(depositForfeit, platformShare)
	if err != nil {
		return nil, err
	}

	earned, regularFee, err := mathutil.LessFee(paidPortion, feeBasisPoint)
	if err != nil {
		return nil, err
	}

	platformTotal, err := mathutil.Add(regularFee, platformShare)
	if err != nil {
		return nil, err
	}
	sellerPayment, err := mathutil.Add(earned, depositReturned)
	if err != nil {
		return nil, err
	}
	buyerTotal, err := mathutil.Add(buyerRefund, buyerCompensation)
	if err != nil {
		return nil, err
	}

	o.Status = OrderStatusPartiallyCompleted
	o.CompletionPercentage = completionPercentage

	return &DisputeOutcome{
		PaidPortion:   paidPortion,
		SellerPayment: sellerPayment,
		BuyerTotal:    buyerTotal,
		PlatformTotal: platformTotal,
	}, nil
}

func (o *Order) setDeadline(now time.Time) {
	o.Deadline = now.Unix() + int64(o.CompletionDays)*secondsPerDay
}

func isValidCompletionDays(days uint32) bool {
	return days >= MinCompletionDays && days <= MaxCompletionDays
}

func isValidDeliveryAddress(address string) bool {
	return strings.HasPrefix(address, "0x") && len(address) == deliveryAddressLength
}
