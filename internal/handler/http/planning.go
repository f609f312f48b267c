package http

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/guccio85/proximasuite-sub000/internal/domain/order"
	"github.com/guccio85/proximasuite-sub000/internal/domain/planning"
	"github.com/guccio85/proximasuite-sub000/internal/handler/http/response"
	"github.com/guccio85/proximasuite-sub000/internal/pkg/sse"
)

type PlanningHandler interface {
	OrderConflicts(w http.ResponseWriter, r *http.Request)
	AllConflicts(w http.ResponseWriter, r *http.Request)
	WorkerSchedule(w http.ResponseWriter, r *http.Request)
	RemoveWorker(w http.ResponseWriter, r *http.Request)
	DailyAbsenceReport(w http.ResponseWriter, r *http.Request)
}

type planningHandlerImpl struct {
	planningService planning.PlanningService
	orderService    order.OrderService
	events          sse.Publisher
}

func NewPlanningHandler(planningService planning.PlanningService, orderService order.OrderService, events sse.Publisher) PlanningHandler {
	return &planningHandlerImpl{
		planningService: planningService,
		orderService:    orderService,
		events:          events,
	}
}

// OrderConflicts implements PlanningHandler.
func (h *planningHandlerImpl) OrderConflicts(w http.ResponseWriter, r *http.Request) {
	conflicts, err := h.planningService.OrderConflicts(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, conflicts)
}

// AllConflicts implements PlanningHandler.
func (h *planningHandlerImpl) AllConflicts(w http.ResponseWriter, r *http.Request) {
	scan, err := h.planningService.AllConflicts(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, scan)
}

// WorkerSchedule implements PlanningHandler.
func (h *planningHandlerImpl) WorkerSchedule(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	schedule, err := h.planningService.WorkerSchedule(r.Context(), planning.WorkerScheduleRequest{
		Worker: chi.URLParam(r, "name"),
		From:   q.Get("from"),
		To:     q.Get("to"),
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, schedule)
}

// RemoveWorker implements PlanningHandler.
func (h *planningHandlerImpl) RemoveWorker(w http.ResponseWriter, r *http.Request) {
	affected, err := h.orderService.RemoveWorker(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	payload := map[string]interface{}{
		"worker":             chi.URLParam(r, "name"),
		"affected_order_ids": affected,
	}
	sse.Publish(h.events, sse.EventWorkerRemoved, payload)
	response.SuccessWithMessage(w, "Worker removed from all crews", payload)
}

// DailyAbsenceReport implements PlanningHandler. format=pdf returns the
// printable sheet; JSON is the default.
func (h *planningHandlerImpl) DailyAbsenceReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := planning.DailyReportRequest{
		Date:   q.Get("date"),
		Format: q.Get("format"),
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	if req.Format == "pdf" {
		body, err := h.planningService.DailyAbsenceReportPDF(r.Context(), req.Date)
		if err != nil {
			response.HandleError(w, err)
			return
		}
		response.PDF(w, fmt.Sprintf("absences-%s.pdf", req.Date), body)
		return
	}

	report, err := h.planningService.DailyAbsenceReport(r.Context(), req.Date)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, report)
}
