package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guccio85/proximasuite-sub000/internal/domain/availability"
	"github.com/guccio85/proximasuite-sub000/internal/domain/order"
	"github.com/guccio85/proximasuite-sub000/internal/pkg/workday"
)

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, ok := workday.Parse(s)
	require.True(t, ok, "bad test date %q", s)
	return d
}

func datePtr(t *testing.T, s string) *time.Time {
	d := date(t, s)
	return &d
}

func tuesdayRule(t *testing.T) availability.RecurringRule {
	return availability.RecurringRule{
		ID:              "rule-1",
		Worker:          "Jan",
		Kind:            availability.AbsenceKindAbsent,
		Portion:         availability.PortionFullDay,
		AnchorDay:       time.Tuesday,
		StartDate:       date(t, "2024-01-02"),
		OccurrenceWeeks: 3,
	}
}

func TestIsRecurringActiveOn(t *testing.T) {
	rule := tuesdayRule(t)

	tests := []struct {
		name string
		date string
		want bool
	}{
		{"first occurrence", "2024-01-02", true},
		{"second occurrence", "2024-01-09", true},
		{"third occurrence", "2024-01-16", true},
		{"fourth occurrence is past the bound", "2024-01-23", false},
		{"before start", "2023-12-26", false},
		{"wrong weekday", "2024-01-03", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRecurringActiveOn(rule, date(t, tt.date)))
		})
	}
}

func TestIsRecurringActiveOn_NonPositiveWeeks(t *testing.T) {
	rule := tuesdayRule(t)

	for _, weeks := range []int{0, -1} {
		rule.OccurrenceWeeks = weeks
		assert.False(t, IsRecurringActiveOn(rule, date(t, "2024-01-02")))
	}
}

func TestIsRecurringActiveOn_MatchesEnumeration(t *testing.T) {
	starts := []string{"2024-01-01", "2024-01-03", "2024-02-29", "2024-12-28"}
	for _, s := range starts {
		for anchor := time.Sunday; anchor <= time.Saturday; anchor++ {
			for _, weeks := range []int{1, 2, 5} {
				rule := availability.RecurringRule{
					Worker:          "Piet",
					AnchorDay:       anchor,
					StartDate:       date(t, s),
					OccurrenceWeeks: weeks,
				}

				first := rule.StartDate
				for first.Weekday() != anchor {
					first = first.AddDate(0, 0, 1)
				}
				want := make(map[time.Time]bool, weeks)
				for k := 0; k < weeks; k++ {
					want[first.AddDate(0, 0, 7*k)] = true
				}

				for d := rule.StartDate.AddDate(0, 0, -14); d.Before(rule.StartDate.AddDate(0, 0, 7*weeks+21)); d = d.AddDate(0, 0, 1) {
					assert.Equal(t, want[d], IsRecurringActiveOn(rule, d),
						"start=%s anchor=%s weeks=%d date=%s", s, anchor, weeks, workday.Format(d))
				}
			}
		}
	}
}

func TestAbsencesOn_ReturnsEveryMatch(t *testing.T) {
	d := date(t, "2024-01-09")
	records := []availability.Record{
		{ID: "r1", Worker: "Jan", Date: d, Kind: availability.AbsenceKindSick, Portion: availability.PortionMorning},
		{ID: "r2", Worker: "Jan", Date: d, Kind: availability.AbsenceKindVacation, Portion: availability.PortionAfternoon},
		{ID: "r3", Worker: "Piet", Date: d, Kind: availability.AbsenceKindSick, Portion: availability.PortionFullDay},
		{ID: "r4", Worker: "Jan", Kind: availability.AbsenceKindSick},
	}
	rules := []availability.RecurringRule{tuesdayRule(t)}

	matches := AbsencesOn("Jan", d, records, rules)
	require.Len(t, matches, 3)

	assert.Equal(t, "r1", matches[0].SourceID)
	assert.Equal(t, availability.PortionMorning, matches[0].Portion)
	assert.Equal(t, "r2", matches[1].SourceID)
	assert.Equal(t, availability.MatchSourceRecurring, matches[2].Source)
	assert.Equal(t, "rule-1", matches[2].SourceID)

	assert.Empty(t, AbsencesOn("Kees", d, records, rules))
	assert.Empty(t, AbsencesOn("Jan", time.Time{}, records, rules))
}

func TestAbsenceIndex_Workers(t *testing.T) {
	idx := NewAbsenceIndex(
		[]availability.Record{{Worker: "Piet", Date: date(t, "2024-01-02")}},
		[]availability.RecurringRule{tuesdayRule(t)},
	)

	assert.Equal(t, []string{"Jan", "Piet"}, idx.Workers())
	assert.False(t, idx.IsAvailable("Piet", date(t, "2024-01-02")))
	assert.True(t, idx.IsAvailable("Piet", date(t, "2024-01-03")))
}

func TestRecomputeEndDate(t *testing.T) {
	t.Run("crew of two", func(t *testing.T) {
		task := order.Task{
			Kind:        order.TaskKindInstallation,
			StartDate:   datePtr(t, "2024-01-01"),
			BudgetHours: 40,
			Crew:        order.NewCrew("Jan", "Piet"),
		}
		got := RecomputeEndDate(task)
		require.NotNil(t, got.EndDate)
		assert.Equal(t, "2024-01-03", workday.Format(*got.EndDate))
	})

	t.Run("crew of one stops on friday", func(t *testing.T) {
		task := order.Task{
			Kind:        order.TaskKindInstallation,
			StartDate:   datePtr(t, "2024-01-01"),
			BudgetHours: 40,
			Crew:        order.NewCrew("Jan"),
		}
		got := RecomputeEndDate(task)
		require.NotNil(t, got.EndDate)
		assert.Equal(t, "2024-01-05", workday.Format(*got.EndDate))
	})

	t.Run("duplicate crew names count once", func(t *testing.T) {
		task := order.Task{
			StartDate:   datePtr(t, "2024-01-01"),
			BudgetHours: 16,
			Crew:        order.Crew{"Jan", "Jan"},
		}
		got := RecomputeEndDate(task)
		assert.Equal(t, "2024-01-02", workday.Format(*got.EndDate))
	})

	t.Run("unschedulable tasks keep a pinned end", func(t *testing.T) {
		pinned := datePtr(t, "2024-03-01")
		cases := []order.Task{
			{BudgetHours: 8, Crew: order.NewCrew("Jan"), EndDate: pinned},
			{StartDate: datePtr(t, "2024-01-01"), BudgetHours: 8, EndDate: pinned},
			{StartDate: datePtr(t, "2024-01-01"), Crew: order.NewCrew("Jan"), EndDate: pinned},
		}
		for _, task := range cases {
			got := RecomputeEndDate(task)
			assert.Same(t, pinned, got.EndDate)
		}
	})
}

func TestRecomputeEndDate_Idempotent(t *testing.T) {
	task := order.Task{
		StartDate:   datePtr(t, "2024-01-04"),
		BudgetHours: 52,
		Crew:        order.NewCrew("Jan", "Piet"),
	}
	once := RecomputeEndDate(task)
	twice := RecomputeEndDate(once)
	assert.Equal(t, *once.EndDate, *twice.EndDate)
	assert.Equal(t, "2024-01-09", workday.Format(*twice.EndDate))
}

func TestRecomputeOrderEndDate(t *testing.T) {
	o := order.Order{
		ScheduledDate: datePtr(t, "2024-01-01"),
		Tasks: []order.Task{
			{Kind: order.TaskKindKBW, BudgetHours: 24, Crew: order.NewCrew("Jan")},
			{Kind: order.TaskKindInstallation, BudgetHours: 24, Crew: order.NewCrew("Jan", "Piet")},
			{Kind: order.TaskKindMeasurement},
		},
	}

	// 48h over two distinct workers is three work-days.
	got := RecomputeOrderEndDate(o)
	require.NotNil(t, got.ScheduledEndDate)
	assert.Equal(t, "2024-01-03", workday.Format(*got.ScheduledEndDate))
	assert.Nil(t, o.ScheduledEndDate)
}

func TestRecomputeOrderEndDate_Unchanged(t *testing.T) {
	t.Run("no scheduled date", func(t *testing.T) {
		o := order.Order{Tasks: []order.Task{{BudgetHours: 8}}}
		assert.Nil(t, RecomputeOrderEndDate(o).ScheduledEndDate)
	})

	t.Run("no budget", func(t *testing.T) {
		o := order.Order{ScheduledDate: datePtr(t, "2024-01-01"), Tasks: []order.Task{{Crew: order.NewCrew("Jan")}}}
		assert.Nil(t, RecomputeOrderEndDate(o).ScheduledEndDate)
	})

	t.Run("budget without crew assumes one worker", func(t *testing.T) {
		o := order.Order{ScheduledDate: datePtr(t, "2024-01-01"), Tasks: []order.Task{{BudgetHours: 16}}}
		got := RecomputeOrderEndDate(o)
		require.NotNil(t, got.ScheduledEndDate)
		assert.Equal(t, "2024-01-02", workday.Format(*got.ScheduledEndDate))
	})
}

func TestRecompute_DoesNotMutateInput(t *testing.T) {
	o := order.Order{
		ScheduledDate: datePtr(t, "2024-01-01"),
		Tasks: []order.Task{
			{Kind: order.TaskKindKBW, StartDate: datePtr(t, "2024-01-01"), BudgetHours: 16, Crew: order.NewCrew("Jan")},
		},
	}

	got := Recompute(o)
	assert.Nil(t, o.Tasks[0].EndDate)
	require.NotNil(t, got.Tasks[0].EndDate)
	assert.Equal(t, "2024-01-02", workday.Format(*got.Tasks[0].EndDate))
	assert.Equal(t, "2024-01-02", workday.Format(*got.ScheduledEndDate))
}

func TestFindConflicts(t *testing.T) {
	o := order.Order{
		ID: "order-1",
		Tasks: []order.Task{
			{
				Kind:      order.TaskKindInstallation,
				StartDate: datePtr(t, "2024-01-02"),
				EndDate:   datePtr(t, "2024-01-03"),
				Crew:      order.NewCrew("Jan"),
			},
		},
	}
	records := []availability.Record{
		{ID: "r1", Worker: "Jan", Date: date(t, "2024-01-03"), Kind: availability.AbsenceKindSick, Portion: availability.PortionFullDay},
	}

	conflicts := FindConflicts(o, records, nil)
	require.Len(t, conflicts, 1)
	assert.Equal(t, order.TaskKindInstallation, conflicts[0].TaskKind)
	assert.Equal(t, "Jan", conflicts[0].Worker)
	assert.Equal(t, "2024-01-03", workday.Format(conflicts[0].Date))
	assert.Equal(t, availability.AbsenceKindSick, conflicts[0].Reason)
	assert.Equal(t, "order-1", conflicts[0].OrderID)
}

func TestFindConflicts_ReportsEverything(t *testing.T) {
	o := order.Order{
		Tasks: []order.Task{
			{
				Kind:      order.TaskKindKBW,
				StartDate: datePtr(t, "2024-01-05"),
				EndDate:   datePtr(t, "2024-01-09"),
				Crew:      order.NewCrew("Jan", "Piet"),
			},
			{
				Kind:      order.TaskKindMeasurement,
				StartDate: datePtr(t, "2024-01-09"),
				Crew:      order.NewCrew("Jan"),
			},
			{Kind: order.TaskKindPLW, Crew: order.NewCrew("Jan")},
		},
	}
	records := []availability.Record{
		{Worker: "Piet", Date: date(t, "2024-01-06"), Kind: availability.AbsenceKindVacation},
		{Worker: "Jan", Date: date(t, "2024-01-09"), Kind: availability.AbsenceKindSick, Portion: availability.PortionMorning},
	}
	rules := []availability.RecurringRule{tuesdayRule(t)}

	conflicts := FindConflicts(o, records, rules)

	// Saturday vacation for Piet, then Jan's sick record and recurring rule
	// on Tuesday for both KBW and the measurement visit.
	require.Len(t, conflicts, 5)
	assert.Equal(t, "Piet", conflicts[0].Worker)
	assert.Equal(t, "2024-01-06", workday.Format(conflicts[0].Date))

	var measurement int
	for _, c := range conflicts {
		if c.TaskKind == order.TaskKindMeasurement {
			measurement++
		}
	}
	assert.Equal(t, 2, measurement)
}

func TestFindConflicts_SkipsUndatedAndUnstaffed(t *testing.T) {
	o := order.Order{
		Tasks: []order.Task{
			{Kind: order.TaskKindKBW, Crew: order.NewCrew("Jan")},
			{Kind: order.TaskKindPLW, StartDate: datePtr(t, "2024-01-03")},
		},
	}
	records := []availability.Record{
		{Worker: "Jan", Date: date(t, "2024-01-03"), Kind: availability.AbsenceKindSick},
	}
	assert.Empty(t, FindConflicts(o, records, nil))
}

func TestFindMissingAssignments(t *testing.T) {
	o := order.Order{
		Tasks: []order.Task{
			{Kind: order.TaskKindMeasurement},
			{Kind: order.TaskKindKBW, BudgetHours: 16},
			{Kind: order.TaskKindInstallation, BudgetHours: 8, Crew: order.NewCrew("Jan")},
		},
	}
	assert.Equal(t, []order.TaskKind{order.TaskKindKBW}, FindMissingAssignments(o))

	name := "Staalbouw BV"
	o.IsSubcontracted = true
	o.SubcontractorName = &name
	assert.Empty(t, FindMissingAssignments(o))

	blank := "  "
	o.SubcontractorName = &blank
	assert.Equal(t, []order.TaskKind{order.TaskKindKBW}, FindMissingAssignments(o))
}

func TestTaskDays_CapsLongRanges(t *testing.T) {
	task := order.Task{
		StartDate: datePtr(t, "2024-01-01"),
		EndDate:   datePtr(t, "9999-12-31"),
		Crew:      order.NewCrew("Jan", "Piet", "Kees"),
	}

	days := TaskDays(task)
	require.Len(t, days, order.MaxTaskSpanDays)
	assert.Equal(t, "2024-01-01", workday.Format(days[0]))
	assert.Equal(t, "2024-12-31", workday.Format(days[len(days)-1]))

	task.EndDate = datePtr(t, "2023-12-01")
	assert.Len(t, TaskDays(task), 1)
}
