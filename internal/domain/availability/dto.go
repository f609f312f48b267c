package availability

import (
	"strings"

	"github.com/guccio85/proximasuite-sub000/internal/pkg/validator"
)

// MaxOccurrenceWeeks bounds a recurring rule to one year.
const MaxOccurrenceWeeks = 52

type CreateRecordRequest struct {
	Worker  string `json:"worker"`
	Date    string `json:"date"`
	Kind    string `json:"kind,omitempty"`
	Portion string `json:"portion,omitempty"`
	// Type accepts the legacy composite notation ("SICK_MORNING") instead
	// of kind + portion.
	Type string `json:"type,omitempty"`
}

func (r *CreateRecordRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidWorkerName(r.Worker) {
		errs = append(errs, validator.ValidationError{
			Field:   "worker",
			Message: "worker is required and must not contain '+'",
		})
	}
	if _, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		})
	}

	if r.Type != "" {
		kind, portion, err := ParseLegacyType(r.Type)
		if err != nil {
			errs = append(errs, validator.ValidationError{
				Field:   "type",
				Message: "type must look like SICK, VACATION_MORNING or ABSENT_AFTERNOON",
			})
		} else {
			r.Kind, r.Portion = string(kind), string(portion)
		}
	} else {
		if !validator.IsInSlice(r.Kind, AbsenceKindValues) {
			errs = append(errs, validator.ValidationError{
				Field:   "kind",
				Message: "kind must be one of: " + strings.Join(AbsenceKindValues, ", "),
			})
		}
		if r.Portion == "" {
			r.Portion = string(PortionFullDay)
		}
		if !validator.IsInSlice(r.Portion, PortionValues) {
			errs = append(errs, validator.ValidationError{
				Field:   "portion",
				Message: "portion must be one of: " + strings.Join(PortionValues, ", "),
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ListRecordRequest struct {
	Worker *string `json:"worker,omitempty"`
	From   *string `json:"from,omitempty"`
	To     *string `json:"to,omitempty"`
}

func (r *ListRecordRequest) Validate() error {
	return validateOptionalRange(r.From, r.To)
}

type CreateRecurringRuleRequest struct {
	Worker  string `json:"worker"`
	Kind    string `json:"kind"`
	Portion string `json:"portion,omitempty"`
	// DayOfWeek defaults to the weekday of StartDate (0=Sunday).
	DayOfWeek     *int    `json:"day_of_week,omitempty"`
	StartDate     string  `json:"start_date"`
	NumberOfWeeks int     `json:"number_of_weeks"`
	Note          *string `json:"note,omitempty"`
}

func (r *CreateRecurringRuleRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidWorkerName(r.Worker) {
		errs = append(errs, validator.ValidationError{
			Field:   "worker",
			Message: "worker is required and must not contain '+'",
		})
	}
	if !validator.IsInSlice(r.Kind, AbsenceKindValues) {
		errs = append(errs, validator.ValidationError{
			Field:   "kind",
			Message: "kind must be one of: " + strings.Join(AbsenceKindValues, ", "),
		})
	}
	if r.Portion == "" {
		r.Portion = string(PortionFullDay)
	}
	if !validator.IsInSlice(r.Portion, PortionValues) {
		errs = append(errs, validator.ValidationError{
			Field:   "portion",
			Message: "portion must be one of: " + strings.Join(PortionValues, ", "),
		})
	}
	if r.DayOfWeek != nil && (*r.DayOfWeek < 0 || *r.DayOfWeek > 6) {
		errs = append(errs, validator.ValidationError{
			Field:   "day_of_week",
			Message: "day_of_week must be between 0 (Sunday) and 6 (Saturday)",
		})
	}
	if _, ok := validator.IsValidDate(r.StartDate); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date must be in YYYY-MM-DD format",
		})
	}
	if r.NumberOfWeeks < 1 || r.NumberOfWeeks > MaxOccurrenceWeeks {
		errs = append(errs, validator.ValidationError{
			Field:   "number_of_weeks",
			Message: "number_of_weeks must be between 1 and 52",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type SetGlobalDayRequest struct {
	Date string `json:"-"`
	Kind string `json:"kind"`
}

func (r *SetGlobalDayRequest) Validate() error {
	var errs validator.ValidationErrors

	if _, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		})
	}
	if !validator.IsInSlice(r.Kind, GlobalDayKindValues) {
		errs = append(errs, validator.ValidationError{
			Field:   "kind",
			Message: "kind must be one of: " + strings.Join(GlobalDayKindValues, ", "),
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ListGlobalDayRequest struct {
	From *string `json:"from,omitempty"`
	To   *string `json:"to,omitempty"`
}

func (r *ListGlobalDayRequest) Validate() error {
	return validateOptionalRange(r.From, r.To)
}

type WorkerAbsenceRequest struct {
	Worker string `json:"worker"`
	Date   string `json:"date"`
}

func (r *WorkerAbsenceRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidWorkerName(r.Worker) {
		errs = append(errs, validator.ValidationError{
			Field:   "worker",
			Message: "worker is required",
		})
	}
	if _, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

func validateOptionalRange(from, to *string) error {
	var errs validator.ValidationErrors

	if from != nil {
		if _, ok := validator.IsValidDate(*from); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "from",
				Message: "from must be in YYYY-MM-DD format",
			})
		}
	}
	if to != nil {
		if _, ok := validator.IsValidDate(*to); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "to",
				Message: "to must be in YYYY-MM-DD format",
			})
		}
	}
	if from != nil && to != nil && len(errs) == 0 && !validator.IsValidDateRange(*from, *to) {
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

type RecordResponse struct {
	ID        string `json:"id"`
	Worker    string `json:"worker"`
	Date      string `json:"date"`
	Kind      string `json:"kind"`
	Portion   string `json:"portion"`
	CreatedAt string `json:"created_at"`
}

type RecurringRuleResponse struct {
	ID              string  `json:"id"`
	Worker          string  `json:"worker"`
	Kind            string  `json:"kind"`
	Portion         string  `json:"portion"`
	DayOfWeek       int     `json:"day_of_week"`
	StartDate       string  `json:"start_date"`
	NumberOfWeeks   int     `json:"number_of_weeks"`
	FirstOccurrence string  `json:"first_occurrence"`
	LastOccurrence  *string `json:"last_occurrence,omitempty"`
	Note            *string `json:"note,omitempty"`
	CreatedAt       string  `json:"created_at"`
}

type GlobalDayResponse struct {
	Date string `json:"date"`
	Kind string `json:"kind"`
}

type AbsenceMatchResponse struct {
	Kind     string `json:"kind"`
	Portion  string `json:"portion"`
	Source   string `json:"source"`
	SourceID string `json:"source_id"`
}

type WorkerAbsencesResponse struct {
	Worker    string                 `json:"worker"`
	Date      string                 `json:"date"`
	Available bool                   `json:"available"`
	GlobalDay *string                `json:"global_day,omitempty"`
	Absences  []AbsenceMatchResponse `json:"absences"`
}
