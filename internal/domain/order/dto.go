package order

import (
	"strings"

	"github.com/guccio85/proximasuite-sub000/internal/pkg/validator"
)

type CreateOrderRequest struct {
	OrderNumber   string   `json:"order_number"`
	Client        string   `json:"client"`
	ProjectRef    *string  `json:"project_ref,omitempty"`
	Address       *string  `json:"address,omitempty"`
	Description   *string  `json:"description,omitempty"`
	ScheduledDate *string  `json:"scheduled_date,omitempty"`
	RequiredTasks []string `json:"required_tasks,omitempty"`

	IsSubcontracted           bool    `json:"is_subcontracted"`
	SubcontractorName         *string `json:"subcontractor_name,omitempty"`
	SubcontractorDeliveryDate *string `json:"subcontractor_delivery_date,omitempty"`
}

func (r *CreateOrderRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.OrderNumber) {
		errs = append(errs, validator.ValidationError{
			Field:   "order_number",
			Message: "order_number is required",
		})
	}
	if len(r.OrderNumber) > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "order_number",
			Message: "order_number must not exceed 100 characters",
		})
	}
	if validator.IsEmpty(r.Client) {
		errs = append(errs, validator.ValidationError{
			Field:   "client",
			Message: "client is required",
		})
	}
	if r.ScheduledDate != nil && *r.ScheduledDate != "" {
		if _, ok := validator.IsValidDate(*r.ScheduledDate); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "scheduled_date",
				Message: "scheduled_date must be in YYYY-MM-DD format",
			})
		}
	}
	for _, kind := range r.RequiredTasks {
		if !validator.IsInSlice(kind, TaskKindValues) {
			errs = append(errs, validator.ValidationError{
				Field:   "required_tasks",
				Message: "required_tasks must only contain: " + strings.Join(TaskKindValues, ", "),
			})
			break
		}
	}
	errs = append(errs, validateSubcontracting(r.IsSubcontracted, r.SubcontractorName, r.SubcontractorDeliveryDate)...)

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type UpdateOrderRequest struct {
	ID            string  `json:"-"`
	OrderNumber   *string `json:"order_number,omitempty"`
	Client        *string `json:"client,omitempty"`
	ProjectRef    *string `json:"project_ref,omitempty"`
	Address       *string `json:"address,omitempty"`
	Description   *string `json:"description,omitempty"`
	ScheduledDate *string `json:"scheduled_date,omitempty"` // "" clears the date

	IsSubcontracted           *bool   `json:"is_subcontracted,omitempty"`
	SubcontractorName         *string `json:"subcontractor_name,omitempty"`
	SubcontractorDeliveryDate *string `json:"subcontractor_delivery_date,omitempty"` // "" clears the date

	// MissingAssignment lets a planner acknowledge a flagged order.
	MissingAssignment *bool `json:"missing_assignment,omitempty"`
}

func (r *UpdateOrderRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id is required",
		})
	}
	if r.OrderNumber != nil && validator.IsEmpty(*r.OrderNumber) {
		errs = append(errs, validator.ValidationError{
			Field:   "order_number",
			Message: "order_number must not be empty",
		})
	}
	if r.Client != nil && validator.IsEmpty(*r.Client) {
		errs = append(errs, validator.ValidationError{
			Field:   "client",
			Message: "client must not be empty",
		})
	}
	if r.ScheduledDate != nil && *r.ScheduledDate != "" {
		if _, ok := validator.IsValidDate(*r.ScheduledDate); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "scheduled_date",
				Message: "scheduled_date must be in YYYY-MM-DD format",
			})
		}
	}
	subcontracted := r.IsSubcontracted != nil && *r.IsSubcontracted
	errs = append(errs, validateSubcontracting(subcontracted, r.SubcontractorName, r.SubcontractorDeliveryDate)...)

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// MaxTaskSpanDays caps the calendar days one task may occupy, so conflict
// scans stay bounded.
const MaxTaskSpanDays = 366

// MaxBudgetHours bounds the hour budget of a single task.
const MaxBudgetHours = 10000

type UpdateTaskRequest struct {
	OrderID     string    `json:"-"`
	Kind        string    `json:"-"`
	BudgetHours *float64  `json:"budget_hours,omitempty"`
	Crew        *[]string `json:"crew,omitempty"`
	StartDate   *string   `json:"start_date,omitempty"` // "" clears the date
	// EndDate pins the end manually. It only sticks while the task has no
	// budget or no crew; otherwise it is recomputed.
	EndDate *string `json:"end_date,omitempty"`
}

func (r *UpdateTaskRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.OrderID) {
		errs = append(errs, validator.ValidationError{
			Field:   "order_id",
			Message: "order_id is required",
		})
	}
	if !validator.IsInSlice(r.Kind, TaskKindValues) {
		errs = append(errs, validator.ValidationError{
			Field:   "kind",
			Message: "kind must be one of: " + strings.Join(TaskKindValues, ", "),
		})
	}
	if r.BudgetHours != nil && !validator.IsNonNegative(*r.BudgetHours) {
		errs = append(errs, validator.ValidationError{
			Field:   "budget_hours",
			Message: "budget_hours must be a non-negative number",
		})
	} else if r.BudgetHours != nil && *r.BudgetHours > MaxBudgetHours {
		errs = append(errs, validator.ValidationError{
			Field:   "budget_hours",
			Message: "budget_hours must not exceed 10000",
		})
	}
	if r.Crew != nil {
		for _, w := range *r.Crew {
			if !validator.IsValidWorkerName(w) {
				errs = append(errs, validator.ValidationError{
					Field:   "crew",
					Message: "crew must contain non-empty worker names without '+'",
				})
				break
			}
		}
	}
	if r.StartDate != nil && *r.StartDate != "" {
		if _, ok := validator.IsValidDate(*r.StartDate); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "start_date",
				Message: "start_date must be in YYYY-MM-DD format",
			})
		}
	}
	if r.EndDate != nil && *r.EndDate != "" {
		end, ok := validator.IsValidDate(*r.EndDate)
		if !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must be in YYYY-MM-DD format",
			})
		} else if r.StartDate != nil {
			if start, ok := validator.IsValidDate(*r.StartDate); ok && int(end.Sub(start).Hours()/24)+1 > MaxTaskSpanDays {
				errs = append(errs, validator.ValidationError{
					Field:   "end_date",
					Message: "task must not span more than 366 days",
				})
			}
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ListOrderRequest struct {
	Search *string `json:"search,omitempty"`
	From   *string `json:"from,omitempty"`
	To     *string `json:"to,omitempty"`
}

func (r *ListOrderRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.From != nil {
		if _, ok := validator.IsValidDate(*r.From); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "from",
				Message: "from must be in YYYY-MM-DD format",
			})
		}
	}
	if r.To != nil {
		if _, ok := validator.IsValidDate(*r.To); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "to",
				Message: "to must be in YYYY-MM-DD format",
			})
		}
	}
	if r.From != nil && r.To != nil && len(errs) == 0 && !validator.IsValidDateRange(*r.From, *r.To) {
		errs = append(errs, validator.ValidationError{
			Field:   "to",
			Message: "to must not be before from",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

func validateSubcontracting(subcontracted bool, name, deliveryDate *string) validator.ValidationErrors {
	var errs validator.ValidationErrors

	if deliveryDate != nil && *deliveryDate != "" {
		if _, ok := validator.IsValidDate(*deliveryDate); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "subcontractor_delivery_date",
				Message: "subcontractor_delivery_date must be in YYYY-MM-DD format",
			})
		}
	}
	if name != nil && len(*name) > 255 {
		errs = append(errs, validator.ValidationError{
			Field:   "subcontractor_name",
			Message: "subcontractor_name must not exceed 255 characters",
		})
	}
	if subcontracted && name != nil && validator.IsEmpty(*name) {
		errs = append(errs, validator.ValidationError{
			Field:   "subcontractor_name",
			Message: "subcontractor_name must not be empty for a subcontracted order",
		})
	}

	return errs
}

type TaskResponse struct {
	Kind        string   `json:"kind"`
	StartDate   *string  `json:"start_date,omitempty"`
	EndDate     *string  `json:"end_date,omitempty"`
	BudgetHours float64  `json:"budget_hours"`
	Crew        []string `json:"crew"`
	WorkDays    int      `json:"work_days"`
}

type OrderResponse struct {
	ID          string  `json:"id"`
	OrderNumber string  `json:"order_number"`
	Client      string  `json:"client"`
	ProjectRef  *string `json:"project_ref,omitempty"`
	Address     *string `json:"address,omitempty"`
	Description *string `json:"description,omitempty"`

	ScheduledDate    *string `json:"scheduled_date,omitempty"`
	ScheduledEndDate *string `json:"scheduled_end_date,omitempty"`
	DisplayEndDate   *string `json:"display_end_date,omitempty"`

	IsSubcontracted           bool    `json:"is_subcontracted"`
	SubcontractorName         *string `json:"subcontractor_name,omitempty"`
	SubcontractorDeliveryDate *string `json:"subcontractor_delivery_date,omitempty"`

	MissingAssignment  bool     `json:"missing_assignment"`
	MissingAssignments []string `json:"missing_assignments"`

	Tasks []TaskResponse `json:"tasks"`

	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}
