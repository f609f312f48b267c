package planning

import (
	"context"
)

type PlanningService interface {
	OrderConflicts(ctx context.Context, orderID string) (OrderConflictsResponse, error)
	AllConflicts(ctx context.Context) (ConflictScanResponse, error)
	WorkerSchedule(ctx context.Context, req WorkerScheduleRequest) (WorkerScheduleResponse, error)
	DailyAbsenceReport(ctx context.Context, date string) (DailyAbsenceReportResponse, error)
	DailyAbsenceReportPDF(ctx context.Context, date string) ([]byte, error)
}
