package availability

import (
	"context"
)

type AvailabilityService interface {
	// Record
	CreateRecord(ctx context.Context, req CreateRecordRequest) (RecordResponse, error)
	DeleteRecord(ctx context.Context, id string) error
	ListRecords(ctx context.Context, req ListRecordRequest) ([]RecordResponse, error)
	// Recurring
	CreateRecurringRule(ctx context.Context, req CreateRecurringRuleRequest) (RecurringRuleResponse, error)
	DeleteRecurringRule(ctx context.Context, id string) error
	ListRecurringRules(ctx context.Context, worker *string) ([]RecurringRuleResponse, error)
	// Global days
	SetGlobalDay(ctx context.Context, req SetGlobalDayRequest) (GlobalDayResponse, error)
	ClearGlobalDay(ctx context.Context, date string) error
	ListGlobalDays(ctx context.Context, req ListGlobalDayRequest) ([]GlobalDayResponse, error)
	// Queries
	WorkerAbsences(ctx context.Context, req WorkerAbsenceRequest) (WorkerAbsencesResponse, error)
}
