package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/guccio85/proximasuite-sub000/internal/domain/order"
	"github.com/guccio85/proximasuite-sub000/internal/handler/http/response"
	"github.com/guccio85/proximasuite-sub000/internal/pkg/sse"
)

type OrderHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	UpdateTask(w http.ResponseWriter, r *http.Request)
}

type orderHandlerImpl struct {
	orderService order.OrderService
	events       sse.Publisher
}

func NewOrderHandler(orderService order.OrderService, events sse.Publisher) OrderHandler {
	return &orderHandlerImpl{orderService: orderService, events: events}
}

// Create implements OrderHandler.
func (h *orderHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req order.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("CreateOrder decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	created, err := h.orderService.CreateOrder(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	sse.Publish(h.events, sse.EventOrderChanged, orderEvent{OrderID: created.ID, OrderNumber: created.OrderNumber})
	response.Created(w, "Order created successfully", created)
}

// Get implements OrderHandler.
func (h *orderHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	o, err := h.orderService.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, o)
}

// List implements OrderHandler.
func (h *orderHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := order.ListOrderRequest{
		Search: queryPtr(q, "search"),
		From:   queryPtr(q, "from"),
		To:     queryPtr(q, "to"),
	}

	orders, err := h.orderService.ListOrders(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.List(w, orders, len(orders))
}

// Update implements OrderHandler.
func (h *orderHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	var req order.UpdateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("UpdateOrder decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")

	updated, err := h.orderService.UpdateOrder(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	sse.Publish(h.events, sse.EventOrderChanged, orderEvent{OrderID: updated.ID, OrderNumber: updated.OrderNumber})
	response.SuccessWithMessage(w, "Order updated successfully", updated)
}

// Delete implements OrderHandler.
func (h *orderHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.orderService.DeleteOrder(r.Context(), id); err != nil {
		response.HandleError(w, err)
		return
	}

	sse.Publish(h.events, sse.EventOrderDeleted, orderEvent{OrderID: id})
	response.SuccessWithMessage(w, "Order deleted successfully", nil)
}

// UpdateTask implements OrderHandler. Changing the start, budget or crew of a
// task recomputes its end date and the order's aggregate end date.
func (h *orderHandlerImpl) UpdateTask(w http.ResponseWriter, r *http.Request) {
	var req order.UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("UpdateTask decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.OrderID = chi.URLParam(r, "id")
	req.Kind = chi.URLParam(r, "kind")

	updated, err := h.orderService.UpdateTask(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	sse.Publish(h.events, sse.EventOrderChanged, orderEvent{OrderID: updated.ID, OrderNumber: updated.OrderNumber, TaskKind: req.Kind})
	response.SuccessWithMessage(w, "Task updated successfully", updated)
}

type orderEvent struct {
	OrderID     string `json:"order_id"`
	OrderNumber string `json:"order_number,omitempty"`
	TaskKind    string `json:"task_kind,omitempty"`
}
