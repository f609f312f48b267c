package scheduling

import (
	"github.com/guccio85/proximasuite-sub000/internal/domain/order"
	"github.com/guccio85/proximasuite-sub000/internal/pkg/workday"
)

// RecomputeEndDate derives a task's end date from its start, budget and
// crew. A task missing any of the three keeps whatever end date it has, so
// a manually pinned end survives until the task becomes schedulable.
func RecomputeEndDate(task order.Task) order.Task {
	if task.StartDate == nil || task.StartDate.IsZero() {
		return task
	}
	crewSize := task.Crew.Size()
	if crewSize == 0 || task.BudgetHours <= 0 {
		return task
	}

	end := workday.Advance(*task.StartDate, workday.DaysNeeded(task.BudgetHours, crewSize))
	task.EndDate = &end
	return task
}

// TaskWorkDays is the number of work-days the task's budget needs with its
// current crew, or 0 when it is not schedulable.
func TaskWorkDays(task order.Task) int {
	crewSize := task.Crew.Size()
	if crewSize == 0 {
		return 0
	}
	return workday.DaysNeeded(task.BudgetHours, crewSize)
}
