package domain

import (
	"context"
	"errors"
)

// ErrOrderNotFound is returned when no order matches the requested id.
var ErrOrderNotFound = errors.New("order not found")

// OrderRepository is the abstraction for any kind of database intended
// to persist Orders.
type OrderRepository interface {
	// AddOrder stores a new order keyed by its id.
	AddOrder(ctx context.Context, order *Order) error
	// GetOrderByID returns the order with the given id, or
	// ErrOrderNotFound.
	GetOrderByID(ctx context.Context, id uint64) (*Order, error)
	// GetAllOrders returns all the orders stored in the repository.
	GetAllOrders(ctx context.Context) ([]*Order, error)
	// GetOrdersByStatus returns all the orders currently in the given
	// status.
	GetOrdersByStatus(ctx context.Context, status OrderStatus) ([]*Order, error)
	// UpdateOrder allows to commit multiple changes to the same order in
	// a transactional way. The update function observes the freshest
	// stored record.
	UpdateOrder(
		ctx context.Context,
		id uint64,
		updateFn func(o *Order) (*Order, error),
	) error
}
