package domain

import "errors"

var (
	// ErrUnauthorized is thrown when the caller is not permitted to act on
	// the market or on the given order.
	ErrUnauthorized = errors.New("caller is not authorized for this operation")
	// ErrMarketInvalidAuthority ...
	ErrMarketInvalidAuthority = errors.New("market authority must not be empty")
	// ErrMarketInvalidPercentageFee ...
	ErrMarketInvalidPercentageFee = errors.New("fee must be expressed in basis points in range [0, 10000]")
	// ErrMarketInvalidDepositPercentage ...
	ErrMarketInvalidDepositPercentage = errors.New("deposit percentage must be in range [0, 100]")
	// ErrInvalidAmount ...
	ErrInvalidAmount = errors.New("amount must be a positive quantity")
	// ErrInvalidPrice ...
	ErrInvalidPrice = errors.New("price must be a positive quantity")
	// ErrInvalidCompletionDays ...
	ErrInvalidCompletionDays = errors.New("days to complete must be in range [1, 180]")
	// ErrInvalidDeliveryAddress ...
	ErrInvalidDeliveryAddress = errors.New("delivery address must be a 0x-prefixed address of 42 characters")
	// ErrOrderTooSmall is thrown when the order notional value is below the
	// market's minimum.
	ErrOrderTooSmall = errors.New("order value is below the market minimum")
	// ErrAmountOutOfRange is thrown when taking a sell order with an amount
	// outside the seller's declared capacity range.
	ErrAmountOutOfRange = errors.New("amount is outside the order capacity range")
	// ErrWrongOrderType ...
	ErrWrongOrderType = errors.New("operation not supported for this order type")
	// ErrOrderMustBeOpen is thrown when matching an order that already has a
	// counterparty or reached a terminal status.
	ErrOrderMustBeOpen = errors.New("order must be in open status")
	// ErrOrderMustBeInProgress is thrown when settling an order that has not
	// been matched yet or is already settled.
	ErrOrderMustBeInProgress = errors.New("order must be in progress")
	// ErrOrderNotCancellable ...
	ErrOrderNotCancellable = errors.New("order can be cancelled only while open")
	// ErrInvalidPercentage ...
	ErrInvalidPercentage = errors.New("completion percentage must be in range [0, 100]")
)
