package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/guccio85/proximasuite-sub000/internal/domain/order"
)

type orderRepositoryImpl struct {
	store *Store
}

func NewOrderRepository(store *Store) order.OrderRepository {
	return &orderRepositoryImpl{store: store}
}

// Create implements order.OrderRepository.
func (r *orderRepositoryImpl) Create(ctx context.Context, o order.Order) (order.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, existing := range r.store.orders {
		if existing.OrderNumber == o.OrderNumber {
			return order.Order{}, order.ErrOrderNumberExists
		}
	}

	o = o.Clone()
	o.ID = newID()
	o.CreatedAt = r.store.now()
	o.UpdatedAt = o.CreatedAt
	r.store.orders[o.ID] = o

	return o.Clone(), nil
}

// GetByID implements order.OrderRepository.
func (r *orderRepositoryImpl) GetByID(ctx context.Context, id string) (order.Order, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	o, ok := r.store.orders[id]
	if !ok {
		return order.Order{}, order.ErrOrderNotFound
	}
	return o.Clone(), nil
}

// List implements order.OrderRepository.
func (r *orderRepositoryImpl) List(ctx context.Context, filter order.OrderFilter) ([]order.Order, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var search string
	if filter.Search != nil {
		search = strings.ToLower(strings.TrimSpace(*filter.Search))
	}

	var orders []order.Order
	for _, o := range r.store.orders {
		if search != "" &&
			!strings.Contains(strings.ToLower(o.OrderNumber), search) &&
			!strings.Contains(strings.ToLower(o.Client), search) {
			continue
		}
		if filter.From != nil || filter.To != nil {
			if o.ScheduledDate == nil {
				continue
			}
			end := *o.ScheduledDate
			if o.ScheduledEndDate != nil {
				end = *o.ScheduledEndDate
			}
			if filter.From != nil && end.Before(*filter.From) {
				continue
			}
			if filter.To != nil && o.ScheduledDate.After(*filter.To) {
				continue
			}
		}
		orders = append(orders, o.Clone())
	}

	sortOrders(orders)
	return orders, nil
}

// ListByWorker implements order.OrderRepository.
func (r *orderRepositoryImpl) ListByWorker(ctx context.Context, worker string) ([]order.Order, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var orders []order.Order
	for _, o := range r.store.orders {
		if o.Workers().Contains(worker) {
			orders = append(orders, o.Clone())
		}
	}

	sortOrders(orders)
	return orders, nil
}

// Update implements order.OrderRepository.
func (r *orderRepositoryImpl) Update(ctx context.Context, o order.Order) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	existing, ok := r.store.orders[o.ID]
	if !ok {
		return order.ErrOrderNotFound
	}
	for id, other := range r.store.orders {
		if id != o.ID && other.OrderNumber == o.OrderNumber {
			return order.ErrOrderNumberExists
		}
	}

	o = o.Clone()
	o.CreatedAt = existing.CreatedAt
	o.UpdatedAt = r.store.now()
	r.store.orders[o.ID] = o

	return nil
}

// Delete implements order.OrderRepository.
func (r *orderRepositoryImpl) Delete(ctx context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.orders[id]; !ok {
		return order.ErrOrderNotFound
	}
	delete(r.store.orders, id)

	return nil
}

func sortOrders(orders []order.Order) {
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].OrderNumber < orders[j].OrderNumber
	})
}
