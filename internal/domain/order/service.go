package order

import "context"

type OrderService interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest) (OrderResponse, error)
	GetOrder(ctx context.Context, id string) (OrderResponse, error)
	ListOrders(ctx context.Context, filter ListOrderRequest) ([]OrderResponse, error)
	UpdateOrder(ctx context.Context, req UpdateOrderRequest) (OrderResponse, error)
	UpdateTask(ctx context.Context, req UpdateTaskRequest) (OrderResponse, error)
	DeleteOrder(ctx context.Context, id string) error

	// RemoveWorker strips a worker from every crew and flags the affected orders.
	RemoveWorker(ctx context.Context, worker string) ([]string, error)
}
