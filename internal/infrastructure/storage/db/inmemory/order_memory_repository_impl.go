package inmemory

import (
	"context"
	"sort"
	"sync"

	"github.com/hashmarket/hashmarketd/internal/core/domain"
)

type orderInmemoryStore struct {
	orders map[uint64]domain.Order
	locker *sync.Mutex
}

func newOrderInmemoryStore() *orderInmemoryStore {
	return &orderInmemoryStore{
		orders: map[uint64]domain.Order{},
		locker: &sync.Mutex{},
	}
}

type orderRepositoryImpl struct {
	store *orderInmemoryStore
}

// NewOrderRepositoryImpl returns a new inmemory OrderRepository
// implementation.
func NewOrderRepositoryImpl(store *orderInmemoryStore) domain.OrderRepository {
	return &orderRepositoryImpl{store}
}

func (r *orderRepositoryImpl) AddOrder(
	_ context.Context, order *domain.Order,
) error {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	r.store.orders[order.Id] = *order
	return nil
}

func (r *orderRepositoryImpl) GetOrderByID(
	_ context.Context, id uint64,
) (*domain.Order, error) {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	order, ok := r.store.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return &order, nil
}

func (r *orderRepositoryImpl) GetAllOrders(
	_ context.Context,
) ([]*domain.Order, error) {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	allOrders := make([]*domain.Order, 0, len(r.store.orders))
	for _, order := range r.store.orders {
		order := order
		allOrders = append(allOrders, &order)
	}
	sort.Slice(allOrders, func(i, j int) bool {
		return allOrders[i].Id < allOrders[j].Id
	})
	return allOrders, nil
}

func (r *orderRepositoryImpl) GetOrdersByStatus(
	ctx context.Context, status domain.OrderStatus,
) ([]*domain.Order, error) {
	allOrders, err := r.GetAllOrders(ctx)
	if err != nil {
		return nil, err
	}

	orders := make([]*domain.Order, 0)
	for _, order := range allOrders {
		if order.Status == status {
			orders = append(orders, order)
		}
	}
	return orders, nil
}

func (r *orderRepositoryImpl) UpdateOrder(
	_ context.Context,
	id uint64,
	updateFn func(o *domain.Order) (*domain.Order, error),
) error {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	currentOrder, ok := r.store.orders[id]
	if !ok {
		return domain.ErrOrderNotFound
	}

	updatedOrder, err := updateFn(&currentOrder)
	if err != nil {
		return err
	}

	r.store.orders[id] = *updatedOrder
	return nil
}
