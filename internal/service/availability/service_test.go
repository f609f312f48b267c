package availability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guccio85/proximasuite-sub000/internal/domain/availability"
	"github.com/guccio85/proximasuite-sub000/internal/pkg/validator"
	"github.com/guccio85/proximasuite-sub000/internal/repository/memory"
)

func newTestService() availability.AvailabilityService {
	store := memory.NewStore()
	return NewAvailabilityService(
		memory.NewRecordRepository(store),
		memory.NewRecurringRuleRepository(store),
		memory.NewGlobalDayRepository(store),
	)
}

func intPtr(i int) *int { return &i }

func strPtr(s string) *string { return &s }

func TestCreateRecord_LegacyType(t *testing.T) {
	svc := newTestService()

	resp, err := svc.CreateRecord(context.Background(), availability.CreateRecordRequest{
		Worker: "Jan",
		Date:   "2024-01-03",
		Type:   "SICK_MORNING",
	})
	require.NoError(t, err)
	assert.Equal(t, "sick", resp.Kind)
	assert.Equal(t, "morning", resp.Portion)
	assert.Equal(t, "2024-01-03", resp.Date)
}

func TestCreateRecord_DefaultsToFullDay(t *testing.T) {
	svc := newTestService()

	resp, err := svc.CreateRecord(context.Background(), availability.CreateRecordRequest{
		Worker: "Jan",
		Date:   "2024-01-03",
		Kind:   "vacation",
	})
	require.NoError(t, err)
	assert.Equal(t, "full_day", resp.Portion)

	_, err = svc.CreateRecord(context.Background(), availability.CreateRecordRequest{
		Worker: "Jan",
		Date:   "2024-01-03",
		Kind:   "vacation",
	})
	assert.ErrorIs(t, err, availability.ErrDuplicateRecord)
}

func TestCreateRecord_Validation(t *testing.T) {
	svc := newTestService()

	_, err := svc.CreateRecord(context.Background(), availability.CreateRecordRequest{
		Worker: "Jan + Piet",
		Date:   "2024-13-01",
		Type:   "HOLIDAY",
	})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	fields := verrs.ToMap()
	assert.Contains(t, fields, "worker")
	assert.Contains(t, fields, "date")
	assert.Contains(t, fields, "type")
}

func TestCreateRecurringRule_AnchorFromStartDate(t *testing.T) {
	svc := newTestService()

	resp, err := svc.CreateRecurringRule(context.Background(), availability.CreateRecurringRuleRequest{
		Worker:        "Jan",
		Kind:          "absent",
		StartDate:     "2024-01-02",
		NumberOfWeeks: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.DayOfWeek)
	assert.Equal(t, "2024-01-02", resp.FirstOccurrence)
	require.NotNil(t, resp.LastOccurrence)
	assert.Equal(t, "2024-01-16", *resp.LastOccurrence)
	assert.Equal(t, "full_day", resp.Portion)
}

func TestCreateRecurringRule_ExplicitAnchor(t *testing.T) {
	svc := newTestService()

	resp, err := svc.CreateRecurringRule(context.Background(), availability.CreateRecurringRuleRequest{
		Worker:        "Piet",
		Kind:          "vacation",
		Portion:       "afternoon",
		DayOfWeek:     intPtr(5),
		StartDate:     "2024-01-02",
		NumberOfWeeks: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, "2024-01-05", resp.FirstOccurrence)
	assert.Equal(t, "2024-01-12", *resp.LastOccurrence)
}

func TestCreateRecurringRule_WeeksBounded(t *testing.T) {
	svc := newTestService()

	for _, weeks := range []int{0, 53} {
		_, err := svc.CreateRecurringRule(context.Background(), availability.CreateRecurringRuleRequest{
			Worker:        "Jan",
			Kind:          "absent",
			StartDate:     "2024-01-02",
			NumberOfWeeks: weeks,
		})
		var verrs validator.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Contains(t, verrs.ToMap(), "number_of_weeks")
	}
}

func TestWorkerAbsences(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.CreateRecurringRule(ctx, availability.CreateRecurringRuleRequest{
		Worker:        "Jan",
		Kind:          "absent",
		StartDate:     "2024-01-02",
		NumberOfWeeks: 3,
	})
	require.NoError(t, err)
	_, err = svc.CreateRecord(ctx, availability.CreateRecordRequest{Worker: "Jan", Date: "2024-01-16", Kind: "sick"})
	require.NoError(t, err)
	_, err = svc.SetGlobalDay(ctx, availability.SetGlobalDayRequest{Date: "2024-01-16", Kind: "adv"})
	require.NoError(t, err)

	resp, err := svc.WorkerAbsences(ctx, availability.WorkerAbsenceRequest{Worker: "Jan", Date: "2024-01-16"})
	require.NoError(t, err)
	assert.False(t, resp.Available)
	require.Len(t, resp.Absences, 2)
	assert.Equal(t, "record", resp.Absences[0].Source)
	assert.Equal(t, "recurring", resp.Absences[1].Source)
	require.NotNil(t, resp.GlobalDay)
	assert.Equal(t, "adv", *resp.GlobalDay)

	resp, err = svc.WorkerAbsences(ctx, availability.WorkerAbsenceRequest{Worker: "Jan", Date: "2024-01-23"})
	require.NoError(t, err)
	assert.True(t, resp.Available)
	assert.Empty(t, resp.Absences)
	assert.Nil(t, resp.GlobalDay)
}

func TestGlobalDays(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.SetGlobalDay(ctx, availability.SetGlobalDayRequest{Date: "2024-12-25", Kind: "holiday"})
	require.NoError(t, err)
	_, err = svc.SetGlobalDay(ctx, availability.SetGlobalDayRequest{Date: "2024-12-27", Kind: "adv"})
	require.NoError(t, err)

	days, err := svc.ListGlobalDays(ctx, availability.ListGlobalDayRequest{From: strPtr("2024-12-26")})
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, "adv", days[0].Kind)

	require.NoError(t, svc.ClearGlobalDay(ctx, "2024-12-27"))
	assert.ErrorIs(t, svc.ClearGlobalDay(ctx, "2024-12-27"), availability.ErrGlobalDayNotFound)
	assert.ErrorIs(t, svc.ClearGlobalDay(ctx, "not-a-date"), availability.ErrGlobalDayNotFound)

	_, err = svc.SetGlobalDay(ctx, availability.SetGlobalDayRequest{Date: "2024-12-25", Kind: "birthday"})
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)
}

func TestListAndDeleteRecords(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	rec, err := svc.CreateRecord(ctx, availability.CreateRecordRequest{Worker: "Jan", Date: "2024-01-03", Kind: "sick"})
	require.NoError(t, err)
	_, err = svc.CreateRecord(ctx, availability.CreateRecordRequest{Worker: "Piet", Date: "2024-01-04", Kind: "sick"})
	require.NoError(t, err)

	list, err := svc.ListRecords(ctx, availability.ListRecordRequest{Worker: strPtr("Jan")})
	require.NoError(t, err)
	require.Len(t, list, 1)

	list, err = svc.ListRecords(ctx, availability.ListRecordRequest{From: strPtr("2024-01-04"), To: strPtr("2024-01-31")})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Piet", list[0].Worker)

	require.NoError(t, svc.DeleteRecord(ctx, rec.ID))
	assert.ErrorIs(t, svc.DeleteRecord(ctx, rec.ID), availability.ErrRecordNotFound)

	rules, err := svc.ListRecurringRules(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, rules)
	assert.ErrorIs(t, svc.DeleteRecurringRule(ctx, "missing"), availability.ErrRecurringRuleNotFound)
}
