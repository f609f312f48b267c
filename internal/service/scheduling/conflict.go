package scheduling

import (
	"time"

	"github.com/guccio85/proximasuite-sub000/internal/domain/availability"
	"github.com/guccio85/proximasuite-sub000/internal/domain/order"
	"github.com/guccio85/proximasuite-sub000/internal/domain/planning"
	"github.com/guccio85/proximasuite-sub000/internal/pkg/workday"
)

// FindConflicts reports every task, day and crew member where an absence
// matches. Weekend days inside a task's range are checked as well.
func FindConflicts(o order.Order, records []availability.Record, rules []availability.RecurringRule) []planning.ConflictEntry {
	return FindConflictsIndexed(o, NewAbsenceIndex(records, rules))
}

// FindConflictsIndexed is FindConflicts against a prebuilt index, for
// callers that check many orders against the same absence data.
func FindConflictsIndexed(o order.Order, idx *AbsenceIndex) []planning.ConflictEntry {
	var conflicts []planning.ConflictEntry
	for _, task := range o.Tasks {
		days := TaskDays(task)
		if len(days) == 0 {
			continue
		}
		crew := order.NewCrew(task.Crew...)
		for _, d := range days {
			for _, worker := range crew {
				for _, m := range idx.On(worker, d) {
					conflicts = append(conflicts, planning.ConflictEntry{
						OrderID:  o.ID,
						TaskKind: task.Kind,
						Worker:   worker,
						Date:     d,
						Reason:   m.Kind,
						Portion:  m.Portion,
						Source:   m.Source,
					})
				}
			}
		}
	}
	return conflicts
}

// TaskDays lists the calendar days a task occupies, or nil when the task has
// no start or no crew. An end before the start collapses to the start day,
// and ranges longer than order.MaxTaskSpanDays are cut at that length.
func TaskDays(task order.Task) []time.Time {
	if task.StartDate == nil || task.StartDate.IsZero() || len(task.Crew) == 0 {
		return nil
	}
	start := *task.StartDate
	end := start
	if task.EndDate != nil && !task.EndDate.IsZero() {
		end = *task.EndDate
	}
	if workday.DaysBetween(start, end) >= order.MaxTaskSpanDays {
		end = workday.Date(start).AddDate(0, 0, order.MaxTaskSpanDays-1)
	}
	return workday.Range(start, end)
}

// FindMissingAssignments returns the kinds of tasks that carry budget but
// nobody to do the work. A named subcontractor covers every task.
func FindMissingAssignments(o order.Order) []order.TaskKind {
	if o.HasSubcontractor() {
		return nil
	}
	var missing []order.TaskKind
	for _, task := range o.Tasks {
		if task.BudgetHours > 0 && task.Crew.Size() == 0 {
			missing = append(missing, task.Kind)
		}
	}
	return missing
}
