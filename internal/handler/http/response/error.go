package response

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/guccio85/proximasuite-sub000/internal/domain/availability"
	"github.com/guccio85/proximasuite-sub000/internal/domain/order"
	"github.com/guccio85/proximasuite-sub000/internal/pkg/validator"
)

var (
	ErrInvalidToken           = errors.New("invalid token")
	ErrAdminPrivilegeRequired = errors.New("admin privilege required")
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth errors
	case errors.Is(err, ErrInvalidToken):
		Unauthorized(w, "Invalid token")
	case errors.Is(err, ErrAdminPrivilegeRequired):
		Forbidden(w, "Admin privilege required")

	// Order domain errors
	case errors.Is(err, order.ErrOrderNotFound):
		NotFound(w, "Order not found")
	case errors.Is(err, order.ErrTaskNotFound):
		NotFound(w, "Task not found on order")
	case errors.Is(err, order.ErrOrderNumberExists):
		Conflict(w, "Order number already exists")
	case errors.Is(err, order.ErrInvalidTaskKind):
		BadRequest(w, "Invalid task kind", nil)
	case errors.Is(err, order.ErrWorkerNameRequired):
		BadRequest(w, "Worker name is required", nil)

	// Availability domain errors
	case errors.Is(err, availability.ErrRecordNotFound):
		NotFound(w, "Availability record not found")
	case errors.Is(err, availability.ErrRecurringRuleNotFound):
		NotFound(w, "Recurring absence not found")
	case errors.Is(err, availability.ErrGlobalDayNotFound):
		NotFound(w, "Global day not found")
	case errors.Is(err, availability.ErrDuplicateRecord):
		Conflict(w, "Worker already has this absence on that date")
	case errors.Is(err, availability.ErrInvalidAbsenceType):
		BadRequest(w, "Invalid absence type", nil)
	case errors.Is(err, availability.ErrRangeTooLarge):
		BadRequest(w, "Date range too large", nil)

	case errors.Is(err, context.Canceled):
		slog.Warn("request cancelled", "error", err)
		InternalServerError(w, "Request cancelled")

	// Default
	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
