package availability

import (
	"fmt"
	"strings"
	"time"
)

type AbsenceKind string

const (
	AbsenceKindSick     AbsenceKind = "sick"
	AbsenceKindVacation AbsenceKind = "vacation"
	AbsenceKindAbsent   AbsenceKind = "absent"
)

var AbsenceKindValues = []string{
	string(AbsenceKindSick),
	string(AbsenceKindVacation),
	string(AbsenceKindAbsent),
}

// Portion is the part of the day an absence covers. Task scheduling is
// whole-day, so every portion blocks the day for conflict purposes.
type Portion string

const (
	PortionMorning   Portion = "morning"
	PortionAfternoon Portion = "afternoon"
	PortionFullDay   Portion = "full_day"
)

var PortionValues = []string{
	string(PortionMorning),
	string(PortionAfternoon),
	string(PortionFullDay),
}

// Record is a one-off absence of a worker on a single day. Records are
// never edited, only deleted.
type Record struct {
	ID        string
	Worker    string
	Date      time.Time
	Kind      AbsenceKind
	Portion   Portion
	CreatedAt time.Time
}

// RecurringRule is a weekly absence pattern, active for OccurrenceWeeks
// occurrences of AnchorDay starting on or after StartDate.
type RecurringRule struct {
	ID              string
	Worker          string
	Kind            AbsenceKind
	Portion         Portion
	AnchorDay       time.Weekday // 0=Sunday, ..., 6=Saturday
	StartDate       time.Time
	OccurrenceWeeks int
	Note            *string
	CreatedAt       time.Time
}

// FirstOccurrence is the first AnchorDay on or after StartDate.
func (r RecurringRule) FirstOccurrence() time.Time {
	offset := (int(r.AnchorDay) - int(r.StartDate.Weekday()) + 7) % 7
	return r.StartDate.AddDate(0, 0, offset)
}

// LastOccurrence is the final active date, or false when the rule never
// fires.
func (r RecurringRule) LastOccurrence() (time.Time, bool) {
	if r.OccurrenceWeeks <= 0 || r.StartDate.IsZero() {
		return time.Time{}, false
	}
	return r.FirstOccurrence().AddDate(0, 0, 7*(r.OccurrenceWeeks-1)), true
}

type GlobalDayKind string

const (
	GlobalDayHoliday GlobalDayKind = "holiday"
	GlobalDayADV     GlobalDayKind = "adv"
)

var GlobalDayKindValues = []string{
	string(GlobalDayHoliday),
	string(GlobalDayADV),
}

// GlobalDay marks a date for every worker, e.g. a public holiday or an
// ADV (working-time reduction) day.
type GlobalDay struct {
	Date      time.Time
	Kind      GlobalDayKind
	CreatedAt time.Time
}

type MatchSource string

const (
	MatchSourceRecord    MatchSource = "record"
	MatchSourceRecurring MatchSource = "recurring"
)

// AbsenceMatch is one reason a worker is unavailable on a date.
type AbsenceMatch struct {
	Worker   string
	Date     time.Time
	Kind     AbsenceKind
	Portion  Portion
	Source   MatchSource
	SourceID string
}

// ParseLegacyType reads the composite availability notation used by older
// exports, e.g. "SICK", "VACATION_MORNING" or "ABSENT_AFTERNOON".
func ParseLegacyType(s string) (AbsenceKind, Portion, error) {
	main, part, _ := strings.Cut(strings.ToUpper(strings.TrimSpace(s)), "_")

	var kind AbsenceKind
	switch main {
	case "SICK":
		kind = AbsenceKindSick
	case "VACATION", "ADV":
		kind = AbsenceKindVacation
	case "ABSENT":
		kind = AbsenceKindAbsent
	default:
		return "", "", fmt.Errorf("%w: %q", ErrInvalidAbsenceType, s)
	}

	switch part {
	case "", "FULL", "ALL_DAY":
		return kind, PortionFullDay, nil
	case "MORNING":
		return kind, PortionMorning, nil
	case "AFTERNOON":
		return kind, PortionAfternoon, nil
	default:
		return "", "", fmt.Errorf("%w: %q", ErrInvalidAbsenceType, s)
	}
}

type RecordFilter struct {
	Worker *string
	From   *time.Time
	To     *time.Time
}
