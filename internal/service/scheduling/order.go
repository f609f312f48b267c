package scheduling

import (
	"github.com/guccio85/proximasuite-sub000/internal/domain/order"
	"github.com/guccio85/proximasuite-sub000/internal/pkg/workday"
)

// RecomputeOrderEndDate estimates the order end from its total budget and
// the distinct workers across all tasks, assuming every task runs in
// parallel. Sequencing between tasks is ignored: this is a best-case bound,
// not a critical path.
func RecomputeOrderEndDate(o order.Order) order.Order {
	if o.ScheduledDate == nil || o.ScheduledDate.IsZero() {
		return o
	}

	var totalBudget float64
	for _, t := range o.Tasks {
		if t.BudgetHours > 0 {
			totalBudget += t.BudgetHours
		}
	}
	if totalBudget <= 0 {
		return o
	}

	workers := len(o.Workers())
	if workers < 1 {
		workers = 1
	}

	end := workday.Advance(*o.ScheduledDate, workday.DaysNeeded(totalBudget, workers))
	o.ScheduledEndDate = &end
	return o
}

// Recompute runs the full chain a host performs after any edit: every task
// end date, then the order end date. The input is not modified.
func Recompute(o order.Order) order.Order {
	o = o.Clone()
	for i := range o.Tasks {
		o.Tasks[i] = RecomputeEndDate(o.Tasks[i])
	}
	return RecomputeOrderEndDate(o)
}
