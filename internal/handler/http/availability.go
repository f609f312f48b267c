package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/guccio85/proximasuite-sub000/internal/domain/availability"
	"github.com/guccio85/proximasuite-sub000/internal/handler/http/response"
	"github.com/guccio85/proximasuite-sub000/internal/pkg/sse"
)

type AvailabilityHandler interface {
	CreateRecord(w http.ResponseWriter, r *http.Request)
	ListRecords(w http.ResponseWriter, r *http.Request)
	DeleteRecord(w http.ResponseWriter, r *http.Request)

	CreateRecurringRule(w http.ResponseWriter, r *http.Request)
	ListRecurringRules(w http.ResponseWriter, r *http.Request)
	DeleteRecurringRule(w http.ResponseWriter, r *http.Request)

	SetGlobalDay(w http.ResponseWriter, r *http.Request)
	ListGlobalDays(w http.ResponseWriter, r *http.Request)
	ClearGlobalDay(w http.ResponseWriter, r *http.Request)

	WorkerAbsences(w http.ResponseWriter, r *http.Request)
}

type availabilityHandlerImpl struct {
	availabilityService availability.AvailabilityService
	events              sse.Publisher
}

func NewAvailabilityHandler(availabilityService availability.AvailabilityService, events sse.Publisher) AvailabilityHandler {
	return &availabilityHandlerImpl{availabilityService: availabilityService, events: events}
}

// CreateRecord implements AvailabilityHandler.
func (h *availabilityHandlerImpl) CreateRecord(w http.ResponseWriter, r *http.Request) {
	var req availability.CreateRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("CreateRecord decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	record, err := h.availabilityService.CreateRecord(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	sse.Publish(h.events, sse.EventAvailabilityChanged, availabilityEvent{Worker: record.Worker, Date: record.Date})
	response.Created(w, "Absence recorded successfully", record)
}

// ListRecords implements AvailabilityHandler.
func (h *availabilityHandlerImpl) ListRecords(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	records, err := h.availabilityService.ListRecords(r.Context(), availability.ListRecordRequest{
		Worker: queryPtr(q, "worker"),
		From:   queryPtr(q, "from"),
		To:     queryPtr(q, "to"),
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.List(w, records, len(records))
}

// DeleteRecord implements AvailabilityHandler.
func (h *availabilityHandlerImpl) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	if err := h.availabilityService.DeleteRecord(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}

	sse.Publish(h.events, sse.EventAvailabilityChanged, availabilityEvent{})
	response.SuccessWithMessage(w, "Absence deleted successfully", nil)
}

// CreateRecurringRule implements AvailabilityHandler.
func (h *availabilityHandlerImpl) CreateRecurringRule(w http.ResponseWriter, r *http.Request) {
	var req availability.CreateRecurringRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("CreateRecurringRule decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	rule, err := h.availabilityService.CreateRecurringRule(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	sse.Publish(h.events, sse.EventAvailabilityChanged, availabilityEvent{Worker: rule.Worker})
	response.Created(w, "Recurring absence created successfully", rule)
}

// ListRecurringRules implements AvailabilityHandler.
func (h *availabilityHandlerImpl) ListRecurringRules(w http.ResponseWriter, r *http.Request) {
	rules, err := h.availabilityService.ListRecurringRules(r.Context(), queryPtr(r.URL.Query(), "worker"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.List(w, rules, len(rules))
}

// DeleteRecurringRule implements AvailabilityHandler.
func (h *availabilityHandlerImpl) DeleteRecurringRule(w http.ResponseWriter, r *http.Request) {
	if err := h.availabilityService.DeleteRecurringRule(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}

	sse.Publish(h.events, sse.EventAvailabilityChanged, availabilityEvent{})
	response.SuccessWithMessage(w, "Recurring absence deleted successfully", nil)
}

// SetGlobalDay implements AvailabilityHandler.
func (h *availabilityHandlerImpl) SetGlobalDay(w http.ResponseWriter, r *http.Request) {
	var req availability.SetGlobalDayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("SetGlobalDay decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.Date = chi.URLParam(r, "date")

	day, err := h.availabilityService.SetGlobalDay(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	sse.Publish(h.events, sse.EventAvailabilityChanged, availabilityEvent{Date: day.Date})
	response.SuccessWithMessage(w, "Global day saved successfully", day)
}

// ListGlobalDays implements AvailabilityHandler.
func (h *availabilityHandlerImpl) ListGlobalDays(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	days, err := h.availabilityService.ListGlobalDays(r.Context(), availability.ListGlobalDayRequest{
		From: queryPtr(q, "from"),
		To:   queryPtr(q, "to"),
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.List(w, days, len(days))
}

// ClearGlobalDay implements AvailabilityHandler.
func (h *availabilityHandlerImpl) ClearGlobalDay(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	if err := h.availabilityService.ClearGlobalDay(r.Context(), date); err != nil {
		response.HandleError(w, err)
		return
	}

	sse.Publish(h.events, sse.EventAvailabilityChanged, availabilityEvent{Date: date})
	response.SuccessWithMessage(w, "Global day cleared successfully", nil)
}

// WorkerAbsences implements AvailabilityHandler.
func (h *availabilityHandlerImpl) WorkerAbsences(w http.ResponseWriter, r *http.Request) {
	absences, err := h.availabilityService.WorkerAbsences(r.Context(), availability.WorkerAbsenceRequest{
		Worker: chi.URLParam(r, "name"),
		Date:   r.URL.Query().Get("date"),
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, absences)
}

// availabilityEvent leaves fields empty when a change is not tied to one
// worker or date; screens then refresh everything.
type availabilityEvent struct {
	Worker string `json:"worker,omitempty"`
	Date   string `json:"date,omitempty"`
}

// queryPtr returns nil for absent or empty query parameters.
func queryPtr(q url.Values, key string) *string {
	v := q.Get(key)
	if v == "" {
		return nil
	}
	return &v
}
