package order

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/guccio85/proximasuite-sub000/internal/domain/order"
	"github.com/guccio85/proximasuite-sub000/internal/pkg/database"
	"github.com/guccio85/proximasuite-sub000/internal/pkg/metrics"
	"github.com/guccio85/proximasuite-sub000/internal/pkg/validator"
	"github.com/guccio85/proximasuite-sub000/internal/pkg/workday"
	"github.com/guccio85/proximasuite-sub000/internal/service/scheduling"
)

type OrderServiceImpl struct {
	tx database.Transactor
	order.OrderRepository
	metrics *metrics.Recorder
}

func NewOrderService(tx database.Transactor, orderRepo order.OrderRepository, rec *metrics.Recorder) order.OrderService {
	return &OrderServiceImpl{
		tx:              tx,
		OrderRepository: orderRepo,
		metrics:         rec,
	}
}

// CreateOrder implements order.OrderService.
func (s *OrderServiceImpl) CreateOrder(ctx context.Context, req order.CreateOrderRequest) (order.OrderResponse, error) {
	if err := req.Validate(); err != nil {
		return order.OrderResponse{}, err
	}

	kinds := order.TaskKinds
	if len(req.RequiredTasks) > 0 {
		kinds = requiredKinds(req.RequiredTasks)
	}
	tasks := make([]order.Task, 0, len(kinds))
	for _, k := range kinds {
		tasks = append(tasks, order.Task{Kind: k, Crew: order.Crew{}})
	}

	newOrder := order.Order{
		OrderNumber:               strings.TrimSpace(req.OrderNumber),
		Client:                    strings.TrimSpace(req.Client),
		ProjectRef:                req.ProjectRef,
		Address:                   req.Address,
		Description:               req.Description,
		ScheduledDate:             parseOptionalDate(req.ScheduledDate),
		IsSubcontracted:           req.IsSubcontracted,
		SubcontractorName:         req.SubcontractorName,
		SubcontractorDeliveryDate: parseOptionalDate(req.SubcontractorDeliveryDate),
		Tasks:                     tasks,
	}
	newOrder = s.recompute(newOrder)

	var created order.Order
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		created, err = s.OrderRepository.Create(ctx, newOrder)
		if err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}
		return nil
	})
	if err != nil {
		return order.OrderResponse{}, err
	}

	slog.Info("Order created", "order_id", created.ID, "order_number", created.OrderNumber)
	return ToOrderResponse(created), nil
}

// GetOrder implements order.OrderService.
func (s *OrderServiceImpl) GetOrder(ctx context.Context, id string) (order.OrderResponse, error) {
	o, err := s.OrderRepository.GetByID(ctx, id)
	if err != nil {
		return order.OrderResponse{}, fmt.Errorf("failed to get order: %w", err)
	}
	return ToOrderResponse(o), nil
}

// ListOrders implements order.OrderService.
func (s *OrderServiceImpl) ListOrders(ctx context.Context, req order.ListOrderRequest) ([]order.OrderResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	orders, err := s.OrderRepository.List(ctx, order.OrderFilter{
		Search: req.Search,
		From:   parseOptionalDate(req.From),
		To:     parseOptionalDate(req.To),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	responses := make([]order.OrderResponse, 0, len(orders))
	for _, o := range orders {
		responses = append(responses, ToOrderResponse(o))
	}
	return responses, nil
}

// UpdateOrder implements order.OrderService.
func (s *OrderServiceImpl) UpdateOrder(ctx context.Context, req order.UpdateOrderRequest) (order.OrderResponse, error) {
	if err := req.Validate(); err != nil {
		return order.OrderResponse{}, err
	}

	var updated order.Order
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		o, err := s.OrderRepository.GetByID(ctx, req.ID)
		if err != nil {
			return fmt.Errorf("failed to get order: %w", err)
		}

		if req.OrderNumber != nil {
			o.OrderNumber = strings.TrimSpace(*req.OrderNumber)
		}
		if req.Client != nil {
			o.Client = strings.TrimSpace(*req.Client)
		}
		if req.ProjectRef != nil {
			o.ProjectRef = req.ProjectRef
		}
		if req.Address != nil {
			o.Address = req.Address
		}
		if req.Description != nil {
			o.Description = req.Description
		}
		if req.ScheduledDate != nil {
			o.ScheduledDate = parseOptionalDate(req.ScheduledDate)
			if o.ScheduledDate == nil {
				o.ScheduledEndDate = nil
			}
		}
		if req.IsSubcontracted != nil {
			o.IsSubcontracted = *req.IsSubcontracted
		}
		if req.SubcontractorName != nil {
			o.SubcontractorName = req.SubcontractorName
		}
		if req.SubcontractorDeliveryDate != nil {
			o.SubcontractorDeliveryDate = parseOptionalDate(req.SubcontractorDeliveryDate)
		}
		if req.MissingAssignment != nil {
			o.MissingAssignment = *req.MissingAssignment
		}

		updated = s.recompute(o)
		if err := s.OrderRepository.Update(ctx, updated); err != nil {
			return fmt.Errorf("failed to update order: %w", err)
		}
		return nil
	})
	if err != nil {
		return order.OrderResponse{}, err
	}

	return ToOrderResponse(updated), nil
}

// UpdateTask implements order.OrderService.
func (s *OrderServiceImpl) UpdateTask(ctx context.Context, req order.UpdateTaskRequest) (order.OrderResponse, error) {
	if err := req.Validate(); err != nil {
		return order.OrderResponse{}, err
	}

	var updated order.Order
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		o, err := s.OrderRepository.GetByID(ctx, req.OrderID)
		if err != nil {
			return fmt.Errorf("failed to get order: %w", err)
		}

		task, ok := o.Task(order.TaskKind(req.Kind))
		if !ok {
			return order.ErrTaskNotFound
		}

		if req.BudgetHours != nil {
			task.BudgetHours = *req.BudgetHours
		}
		if req.Crew != nil {
			task.Crew = order.NewCrew(*req.Crew...)
		}
		if req.StartDate != nil {
			task.StartDate = parseOptionalDate(req.StartDate)
		}
		if req.EndDate != nil {
			task.EndDate = parseOptionalDate(req.EndDate)
		}

		*task = scheduling.RecomputeEndDate(*task)
		s.metrics.Recompute("task")
		if err := checkTaskSpan(task, req.EndDate != nil); err != nil {
			return err
		}

		updated = scheduling.RecomputeOrderEndDate(o)
		s.metrics.Recompute("order")

		if err := s.OrderRepository.Update(ctx, updated); err != nil {
			return fmt.Errorf("failed to update order: %w", err)
		}
		return nil
	})
	if err != nil {
		return order.OrderResponse{}, err
	}

	slog.Info("Task updated",
		"order_id", updated.ID,
		"task", req.Kind,
		"end_date", workday.Format(taskEnd(updated, order.TaskKind(req.Kind))),
	)
	return ToOrderResponse(updated), nil
}

// DeleteOrder implements order.OrderService.
func (s *OrderServiceImpl) DeleteOrder(ctx context.Context, id string) error {
	if err := s.OrderRepository.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	slog.Info("Order deleted", "order_id", id)
	return nil
}

// RemoveWorker implements order.OrderService.
func (s *OrderServiceImpl) RemoveWorker(ctx context.Context, worker string) ([]string, error) {
	worker = strings.TrimSpace(worker)
	if !validator.IsValidWorkerName(worker) {
		return nil, order.ErrWorkerNameRequired
	}

	var affected []string
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		orders, err := s.OrderRepository.ListByWorker(ctx, worker)
		if err != nil {
			return fmt.Errorf("failed to list orders for worker: %w", err)
		}

		for _, o := range orders {
			for i := range o.Tasks {
				o.Tasks[i].Crew = o.Tasks[i].Crew.Without(worker)
			}
			o.MissingAssignment = true

			o = s.recompute(o)
			if err := s.OrderRepository.Update(ctx, o); err != nil {
				return fmt.Errorf("failed to update order %s: %w", o.ID, err)
			}
			affected = append(affected, o.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Worker removed from orders", "worker", worker, "orders", len(affected))
	return affected, nil
}

// recompute runs the task then order chain and counts it.
func (s *OrderServiceImpl) recompute(o order.Order) order.Order {
	o = scheduling.Recompute(o)
	for range o.Tasks {
		s.metrics.Recompute("task")
	}
	s.metrics.Recompute("order")
	return o
}

// ToOrderResponse maps an order to its API shape, including the derived
// display end date and missing assignments.
func ToOrderResponse(o order.Order) order.OrderResponse {
	tasks := make([]order.TaskResponse, 0, len(o.Tasks))
	for _, t := range o.Tasks {
		crew := []string(t.Crew)
		if crew == nil {
			crew = []string{}
		}
		tasks = append(tasks, order.TaskResponse{
			Kind:        string(t.Kind),
			StartDate:   workday.FormatPtr(t.StartDate),
			EndDate:     workday.FormatPtr(t.EndDate),
			BudgetHours: t.BudgetHours,
			Crew:        crew,
			WorkDays:    scheduling.TaskWorkDays(t),
		})
	}

	missing := []string{}
	for _, k := range scheduling.FindMissingAssignments(o) {
		missing = append(missing, string(k))
	}

	return order.OrderResponse{
		ID:                        o.ID,
		OrderNumber:               o.OrderNumber,
		Client:                    o.Client,
		ProjectRef:                o.ProjectRef,
		Address:                   o.Address,
		Description:               o.Description,
		ScheduledDate:             workday.FormatPtr(o.ScheduledDate),
		ScheduledEndDate:          workday.FormatPtr(o.ScheduledEndDate),
		DisplayEndDate:            workday.FormatPtr(o.DisplayEndDate()),
		IsSubcontracted:           o.IsSubcontracted,
		SubcontractorName:         o.SubcontractorName,
		SubcontractorDeliveryDate: workday.FormatPtr(o.SubcontractorDeliveryDate),
		MissingAssignment:         o.MissingAssignment,
		MissingAssignments:        missing,
		Tasks:                     tasks,
		CreatedAt:                 o.CreatedAt.Format(time.RFC3339),
		UpdatedAt:                 o.UpdatedAt.Format(time.RFC3339),
	}
}

// requiredKinds keeps the canonical task order regardless of how the
// caller listed them.
func requiredKinds(names []string) []order.TaskKind {
	want := make(map[order.TaskKind]bool, len(names))
	for _, n := range names {
		want[order.TaskKind(n)] = true
	}
	var kinds []order.TaskKind
	for _, k := range order.TaskKinds {
		if want[k] {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// parseOptionalDate returns nil for nil, empty or malformed input.
func parseOptionalDate(s *string) *time.Time {
	if s == nil {
		return nil
	}
	t, ok := workday.Parse(*s)
	if !ok {
		return nil
	}
	return &t
}

func taskEnd(o order.Order, kind order.TaskKind) time.Time {
	if t, ok := o.Task(kind); ok && t.EndDate != nil {
		return *t.EndDate
	}
	return time.Time{}
}

// checkTaskSpan runs on a recomputed task. An end before the start is an
// error only when the caller pinned it; an end left behind by a moved start
// is dropped.
func checkTaskSpan(task *order.Task, endPinned bool) error {
	if task.StartDate == nil || task.EndDate == nil {
		return nil
	}
	if task.EndDate.Before(*task.StartDate) {
		if endPinned {
			return validator.ValidationErrors{{
				Field:   "end_date",
				Message: "end_date must not be before start_date",
			}}
		}
		task.EndDate = nil
		return nil
	}
	if workday.DaysBetween(*task.StartDate, *task.EndDate)+1 > order.MaxTaskSpanDays {
		return validator.ValidationErrors{{
			Field:   "end_date",
			Message: "task must not span more than 366 days",
		}}
	}
	return nil
}
