package order

import "context"

// OrderRepository - interface for orders and order_tasks tables
type OrderRepository interface {
	Create(ctx context.Context, order Order) (Order, error)
	GetByID(ctx context.Context, id string) (Order, error)
	List(ctx context.Context, filter OrderFilter) ([]Order, error)
	ListByWorker(ctx context.Context, worker string) ([]Order, error)
	Update(ctx context.Context, order Order) error
	Delete(ctx context.Context, id string) error
}
