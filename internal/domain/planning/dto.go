package planning

import (
	"github.com/guccio85/proximasuite-sub000/internal/domain/availability"
	"github.com/guccio85/proximasuite-sub000/internal/pkg/validator"
)

// MaxScheduleDays caps the range a single schedule query may scan.
const MaxScheduleDays = 366

type WorkerScheduleRequest struct {
	Worker string `json:"worker"`
	From   string `json:"from"`
	To     string `json:"to"`
}

func (r *WorkerScheduleRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidWorkerName(r.Worker) {
		errs = append(errs, validator.ValidationError{
			Field:   "worker",
			Message: "worker is required",
		})
	}
	from, okFrom := validator.IsValidDate(r.From)
	if !okFrom {
		errs = append(errs, validator.ValidationError{
			Field:   "from",
			Message: "from must be in YYYY-MM-DD format",
		})
	}
	to, okTo := validator.IsValidDate(r.To)
	if !okTo {
		errs = append(errs, validator.ValidationError{
			Field:   "to",
			Message: "to must be in YYYY-MM-DD format",
		})
	}
	if okFrom && okTo {
		if to.Before(from) {
			errs = append(errs, validator.ValidationError{
				Field:   "to",
				Message: "to must not be before from",
			})
		} else if int(to.Sub(from).Hours()/24)+1 > MaxScheduleDays {
			errs = append(errs, validator.ValidationError{
				Field:   "to",
				Message: "range must not exceed 366 days",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type DailyReportRequest struct {
	Date   string `json:"date"`
	Format string `json:"format"`
}

func (r *DailyReportRequest) Validate() error {
	var errs validator.ValidationErrors

	if _, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		})
	}
	if r.Format == "" {
		r.Format = "json"
	}
	if !validator.IsInSlice(r.Format, []string{"json", "pdf"}) {
		errs = append(errs, validator.ValidationError{
			Field:   "format",
			Message: "format must be one of: json, pdf",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ConflictResponse struct {
	OrderID  string `json:"order_id"`
	TaskKind string `json:"task_kind"`
	Worker   string `json:"worker"`
	Date     string `json:"date"`
	Reason   string `json:"reason"`
	Portion  string `json:"portion"`
	Source   string `json:"source"`
}

type OrderConflictsResponse struct {
	OrderID            string             `json:"order_id"`
	OrderNumber        string             `json:"order_number"`
	DisplayEndDate     *string            `json:"display_end_date,omitempty"`
	MissingAssignment  bool               `json:"missing_assignment"`
	MissingAssignments []string           `json:"missing_assignments"`
	Conflicts          []ConflictResponse `json:"conflicts"`
}

type ConflictScanResponse struct {
	ScannedOrders  int                      `json:"scanned_orders"`
	TotalConflicts int                      `json:"total_conflicts"`
	Orders         []OrderConflictsResponse `json:"orders"`
}

type WorkerAbsencesResponse struct {
	Worker   string                              `json:"worker"`
	Absences []availability.AbsenceMatchResponse `json:"absences"`
}

type DailyAbsenceReportResponse struct {
	Date      string                   `json:"date"`
	GlobalDay *string                  `json:"global_day,omitempty"`
	Workers   []WorkerAbsencesResponse `json:"workers"`
}

type AssignmentResponse struct {
	OrderID     string `json:"order_id"`
	OrderNumber string `json:"order_number"`
	TaskKind    string `json:"task_kind"`
}

type WorkerDayResponse struct {
	Date        string                              `json:"date"`
	Weekend     bool                                `json:"weekend"`
	GlobalDay   *string                             `json:"global_day,omitempty"`
	Conflict    bool                                `json:"conflict"`
	Absences    []availability.AbsenceMatchResponse `json:"absences"`
	Assignments []AssignmentResponse                `json:"assignments"`
}

type WorkerScheduleResponse struct {
	Worker string              `json:"worker"`
	From   string              `json:"from"`
	To     string              `json:"to"`
	Days   []WorkerDayResponse `json:"days"`
}
