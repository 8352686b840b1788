package dbbadger

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v3"
	"github.com/timshannon/badgerhold/v4"

	"github.com/hashmarket/hashmarketd/internal/core/domain"
)

type orderRepositoryImpl struct {
	store *badgerhold.Store
}

// NewOrderRepositoryImpl initializes a badger implementation of the
// domain.OrderRepository.
func NewOrderRepositoryImpl(store *badgerhold.Store) domain.OrderRepository {
	return &orderRepositoryImpl{store}
}

func (r *orderRepositoryImpl) AddOrder(
	_ context.Context, order *domain.Order,
) error {
	return r.store.Upsert(order.Id, *order)
}

func (r *orderRepositoryImpl) GetOrderByID(
	_ context.Context, id uint64,
) (*domain.Order, error) {
	var order domain.Order
	if err := r.store.Get(id, &order); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *orderRepositoryImpl) GetAllOrders(
	_ context.Context,
) ([]*domain.Order, error) {
	return r.findOrders(&badgerhold.Query{})
}

func (r *orderRepositoryImpl) GetOrdersByStatus(
	_ context.Context, status domain.OrderStatus,
) ([]*domain.Order, error) {
	query := badgerhold.Where("Status").Eq(status)
	return r.findOrders(query)
}

func (r *orderRepositoryImpl) UpdateOrder(
	_ context.Context,
	id uint64,
	updateFn func(o *domain.Order) (*domain.Order, error),
) error {
	return r.store.Badger().Update(func(tx *badger.Txn) error {
		var currentOrder domain.Order
		if err := r.store.TxGet(tx, id, &currentOrder); err != nil {
			if errors.Is(err, badgerhold.ErrNotFound) {
				return domain.ErrOrderNotFound
			}
			return err
		}

		updatedOrder, err := updateFn(&currentOrder)
		if err != nil {
			return err
		}

		return r.store.TxUpdate(tx, id, *updatedOrder)
	})
}

func (r *orderRepositoryImpl) findOrders(
	query *badgerhold.Query,
) ([]*domain.Order, error) {
	var ordersByID []domain.Order
	if err := r.store.Find(&ordersByID, query.SortBy("Id")); err != nil {
		return nil, err
	}

	orders := make([]*domain.Order, 0, len(ordersByID))
	for i := range ordersByID {
		orders = append(orders, &ordersByID[i])
	}
	return orders, nil
}
