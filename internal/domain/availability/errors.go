package availability

import "errors"

var (
	ErrRecordNotFound        = errors.New("availability record not found")
	ErrDuplicateRecord       = errors.New("availability record already exists for this worker and date")
	ErrRecurringRuleNotFound = errors.New("recurring absence not found")
	ErrGlobalDayNotFound     = errors.New("global day not found")
	ErrInvalidAbsenceType    = errors.New("invalid absence type")
	ErrRangeTooLarge         = errors.New("date range too large")
)
