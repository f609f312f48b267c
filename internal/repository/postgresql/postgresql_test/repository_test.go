package postgresql_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/guccio85/proximasuite-sub000/internal/domain/availability"
	"github.com/guccio85/proximasuite-sub000/internal/domain/order"
	"github.com/guccio85/proximasuite-sub000/internal/pkg/database"
	"github.com/guccio85/proximasuite-sub000/internal/repository/postgresql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openTestDB connects to TEST_DATABASE_URL, applies the schema and empties
// every table. Tests are skipped when the variable is unset.
func openTestDB(t *testing.T) *database.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := database.NewPostgreSQLDB(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	schema, err := os.ReadFile("../../../../migrations/0001_init.up.sql")
	require.NoError(t, err)
	_, err = db.Exec(ctx, string(schema))
	require.NoError(t, err)

	_, err = db.Exec(ctx, "TRUNCATE TABLE order_tasks, orders, availabilities, recurring_absences, global_days CASCADE")
	require.NoError(t, err)

	return db
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestOrderRepository_RoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := postgresql.NewOrderRepository(db)
	tx := postgresql.NewTransactor(db)

	start := date(2024, 1, 1)
	taskEnd := date(2024, 1, 3)

	var created order.Order
	err := tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		created, err = repo.Create(ctx, order.Order{
			OrderNumber:   "2024-017",
			Client:        "Smederij De Vries",
			ScheduledDate: &start,
			Tasks: []order.Task{
				{Kind: order.TaskKindMeasurement},
				{Kind: order.TaskKindInstallation, StartDate: &start, EndDate: &taskEnd, BudgetHours: 40, Crew: order.NewCrew("Jan", "Piet")},
			},
		})
		return err
	})
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-017", got.OrderNumber)
	require.Len(t, got.Tasks, 2)
	assert.Equal(t, order.TaskKindMeasurement, got.Tasks[0].Kind)
	assert.Empty(t, got.Tasks[0].Crew)
	assert.Equal(t, order.Crew{"Jan", "Piet"}, got.Tasks[1].Crew)
	assert.True(t, got.Tasks[1].EndDate.Equal(taskEnd))

	byWorker, err := repo.ListByWorker(ctx, "Piet")
	require.NoError(t, err)
	require.Len(t, byWorker, 1)

	_, err = repo.Create(ctx, order.Order{OrderNumber: "2024-017", Client: "Dup"})
	assert.ErrorIs(t, err, order.ErrOrderNumberExists)

	got.Tasks[1].Crew = order.NewCrew("Jan")
	got.MissingAssignment = true
	require.NoError(t, repo.Update(ctx, got))

	byWorker, err = repo.ListByWorker(ctx, "Piet")
	require.NoError(t, err)
	assert.Empty(t, byWorker)

	require.NoError(t, repo.Delete(ctx, created.ID))
	_, err = repo.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, order.ErrOrderNotFound)
}

func TestAvailabilityRepositories(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	records := postgresql.NewRecordRepository(db)
	rec, err := records.Create(ctx, availability.Record{
		Worker:  "Jan",
		Date:    date(2024, 1, 3),
		Kind:    availability.AbsenceKindSick,
		Portion: availability.PortionFullDay,
	})
	require.NoError(t, err)

	_, err = records.Create(ctx, availability.Record{
		Worker:  "Jan",
		Date:    date(2024, 1, 3),
		Kind:    availability.AbsenceKindSick,
		Portion: availability.PortionFullDay,
	})
	assert.ErrorIs(t, err, availability.ErrDuplicateRecord)

	worker := "Jan"
	list, err := records.List(ctx, availability.RecordFilter{Worker: &worker})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, rec.ID, list[0].ID)

	rules := postgresql.NewRecurringRuleRepository(db)
	rule, err := rules.Create(ctx, availability.RecurringRule{
		Worker:          "Jan",
		Kind:            availability.AbsenceKindAbsent,
		Portion:         availability.PortionMorning,
		AnchorDay:       time.Tuesday,
		StartDate:       date(2024, 1, 2),
		OccurrenceWeeks: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, time.Tuesday, rule.AnchorDay)

	all, err := rules.List(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, rules.Delete(ctx, rule.ID))
	assert.ErrorIs(t, rules.Delete(ctx, rule.ID), availability.ErrRecurringRuleNotFound)

	days := postgresql.NewGlobalDayRepository(db)
	_, err = days.Upsert(ctx, availability.GlobalDay{Date: date(2024, 12, 25), Kind: availability.GlobalDayADV})
	require.NoError(t, err)
	day, err := days.Upsert(ctx, availability.GlobalDay{Date: date(2024, 12, 25), Kind: availability.GlobalDayHoliday})
	require.NoError(t, err)
	assert.Equal(t, availability.GlobalDayHoliday, day.Kind)

	from := date(2024, 12, 1)
	listed, err := days.List(ctx, &from, nil)
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}
