package planning

import (
	"time"

	"github.com/guccio85/proximasuite-sub000/internal/domain/availability"
	"github.com/guccio85/proximasuite-sub000/internal/domain/order"
)

// ConflictEntry is a task-day-worker triple where the worker is scheduled
// but recorded as unavailable. One entry is produced per absence match.
type ConflictEntry struct {
	OrderID  string
	TaskKind order.TaskKind
	Worker   string
	Date     time.Time
	Reason   availability.AbsenceKind
	Portion  availability.Portion
	Source   availability.MatchSource
}

// OrderConflicts bundles everything the planner flags on one order.
type OrderConflicts struct {
	Order              order.Order
	Conflicts          []ConflictEntry
	MissingAssignments []order.TaskKind
}

type WorkerAbsences struct {
	Worker   string
	Absences []availability.AbsenceMatch
}

// DailyAbsenceReport lists every worker who is away on one date.
type DailyAbsenceReport struct {
	Date      time.Time
	GlobalDay *availability.GlobalDayKind
	Workers   []WorkerAbsences
}

type Assignment struct {
	OrderID     string
	OrderNumber string
	TaskKind    order.TaskKind
}

type WorkerDay struct {
	Date        time.Time
	Weekend     bool
	GlobalDay   *availability.GlobalDayKind
	Absences    []availability.AbsenceMatch
	Assignments []Assignment
}

// HasConflict reports whether the worker is booked on a day they are away.
func (d WorkerDay) HasConflict() bool {
	return len(d.Absences) > 0 && len(d.Assignments) > 0
}

type WorkerSchedule struct {
	Worker string
	From   time.Time
	To     time.Time
	Days   []WorkerDay
}
