package availability

import (
	"context"
	"time"
)

// RecordRepository - interface for availabilities table
type RecordRepository interface {
	Create(ctx context.Context, record Record) (Record, error)
	GetByID(ctx context.Context, id string) (Record, error)
	List(ctx context.Context, filter RecordFilter) ([]Record, error)
	Delete(ctx context.Context, id string) error
}

// RecurringRuleRepository - interface for recurring_absences table
type RecurringRuleRepository interface {
	Create(ctx context.Context, rule RecurringRule) (RecurringRule, error)
	GetByID(ctx context.Context, id string) (RecurringRule, error)
	List(ctx context.Context, worker *string) ([]RecurringRule, error)
	Delete(ctx context.Context, id string) error
}

// GlobalDayRepository - interface for global_days table
type GlobalDayRepository interface {
	Upsert(ctx context.Context, day GlobalDay) (GlobalDay, error)
	List(ctx context.Context, from, to *time.Time) ([]GlobalDay, error)
	Delete(ctx context.Context, date time.Time) error
}
