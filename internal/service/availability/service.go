package availability

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/guccio85/proximasuite-sub000/internal/domain/availability"
	"github.com/guccio85/proximasuite-sub000/internal/pkg/workday"
	"github.com/guccio85/proximasuite-sub000/internal/service/scheduling"
)

type AvailabilityServiceImpl struct {
	recordRepo    availability.RecordRepository
	ruleRepo      availability.RecurringRuleRepository
	globalDayRepo availability.GlobalDayRepository
}

func NewAvailabilityService(
	recordRepo availability.RecordRepository,
	ruleRepo availability.RecurringRuleRepository,
	globalDayRepo availability.GlobalDayRepository,
) availability.AvailabilityService {
	return &AvailabilityServiceImpl{
		recordRepo:    recordRepo,
		ruleRepo:      ruleRepo,
		globalDayRepo: globalDayRepo,
	}
}

// CreateRecord implements availability.AvailabilityService.
func (s *AvailabilityServiceImpl) CreateRecord(ctx context.Context, req availability.CreateRecordRequest) (availability.RecordResponse, error) {
	if err := req.Validate(); err != nil {
		return availability.RecordResponse{}, err
	}

	date, _ := workday.Parse(req.Date)
	record, err := s.recordRepo.Create(ctx, availability.Record{
		Worker:  strings.TrimSpace(req.Worker),
		Date:    date,
		Kind:    availability.AbsenceKind(req.Kind),
		Portion: availability.Portion(req.Portion),
	})
	if err != nil {
		return availability.RecordResponse{}, fmt.Errorf("failed to create availability record: %w", err)
	}

	slog.Info("Availability recorded", "worker", record.Worker, "date", req.Date, "kind", record.Kind, "portion", record.Portion)
	return toRecordResponse(record), nil
}

// DeleteRecord implements availability.AvailabilityService.
func (s *AvailabilityServiceImpl) DeleteRecord(ctx context.Context, id string) error {
	if err := s.recordRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete availability record: %w", err)
	}
	return nil
}

// ListRecords implements availability.AvailabilityService.
func (s *AvailabilityServiceImpl) ListRecords(ctx context.Context, req availability.ListRecordRequest) ([]availability.RecordResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	records, err := s.recordRepo.List(ctx, availability.RecordFilter{
		Worker: req.Worker,
		From:   parseOptionalDate(req.From),
		To:     parseOptionalDate(req.To),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list availability records: %w", err)
	}

	responses := make([]availability.RecordResponse, 0, len(records))
	for _, r := range records {
		responses = append(responses, toRecordResponse(r))
	}
	return responses, nil
}

// CreateRecurringRule implements availability.AvailabilityService.
func (s *AvailabilityServiceImpl) CreateRecurringRule(ctx context.Context, req availability.CreateRecurringRuleRequest) (availability.RecurringRuleResponse, error) {
	if err := req.Validate(); err != nil {
		return availability.RecurringRuleResponse{}, err
	}

	start, _ := workday.Parse(req.StartDate)
	anchor := start.Weekday()
	if req.DayOfWeek != nil {
		anchor = time.Weekday(*req.DayOfWeek)
	}

	rule, err := s.ruleRepo.Create(ctx, availability.RecurringRule{
		Worker:          strings.TrimSpace(req.Worker),
		Kind:            availability.AbsenceKind(req.Kind),
		Portion:         availability.Portion(req.Portion),
		AnchorDay:       anchor,
		StartDate:       start,
		OccurrenceWeeks: req.NumberOfWeeks,
		Note:            req.Note,
	})
	if err != nil {
		return availability.RecurringRuleResponse{}, fmt.Errorf("failed to create recurring absence: %w", err)
	}

	slog.Info("Recurring absence created",
		"worker", rule.Worker,
		"day_of_week", int(rule.AnchorDay),
		"start_date", req.StartDate,
		"weeks", rule.OccurrenceWeeks,
	)
	return toRuleResponse(rule), nil
}

// DeleteRecurringRule implements availability.AvailabilityService.
func (s *AvailabilityServiceImpl) DeleteRecurringRule(ctx context.Context, id string) error {
	if err := s.ruleRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete recurring absence: %w", err)
	}
	return nil
}

// ListRecurringRules implements availability.AvailabilityService.
func (s *AvailabilityServiceImpl) ListRecurringRules(ctx context.Context, worker *string) ([]availability.RecurringRuleResponse, error) {
	rules, err := s.ruleRepo.List(ctx, worker)
	if err != nil {
		return nil, fmt.Errorf("failed to list recurring absences: %w", err)
	}

	responses := make([]availability.RecurringRuleResponse, 0, len(rules))
	for _, r := range rules {
		responses = append(responses, toRuleResponse(r))
	}
	return responses, nil
}

// SetGlobalDay implements availability.AvailabilityService.
func (s *AvailabilityServiceImpl) SetGlobalDay(ctx context.Context, req availability.SetGlobalDayRequest) (availability.GlobalDayResponse, error) {
	if err := req.Validate(); err != nil {
		return availability.GlobalDayResponse{}, err
	}

	date, _ := workday.Parse(req.Date)
	day, err := s.globalDayRepo.Upsert(ctx, availability.GlobalDay{
		Date: date,
		Kind: availability.GlobalDayKind(req.Kind),
	})
	if err != nil {
		return availability.GlobalDayResponse{}, fmt.Errorf("failed to set global day: %w", err)
	}

	slog.Info("Global day set", "date", req.Date, "kind", day.Kind)
	return toGlobalDayResponse(day), nil
}

// ClearGlobalDay implements availability.AvailabilityService.
func (s *AvailabilityServiceImpl) ClearGlobalDay(ctx context.Context, date string) error {
	d, ok := workday.Parse(date)
	if !ok {
		return availability.ErrGlobalDayNotFound
	}
	if err := s.globalDayRepo.Delete(ctx, d); err != nil {
		return fmt.Errorf("failed to clear global day: %w", err)
	}
	return nil
}

// ListGlobalDays implements availability.AvailabilityService.
func (s *AvailabilityServiceImpl) ListGlobalDays(ctx context.Context, req availability.ListGlobalDayRequest) ([]availability.GlobalDayResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	days, err := s.globalDayRepo.List(ctx, parseOptionalDate(req.From), parseOptionalDate(req.To))
	if err != nil {
		return nil, fmt.Errorf("failed to list global days: %w", err)
	}

	responses := make([]availability.GlobalDayResponse, 0, len(days))
	for _, d := range days {
		responses = append(responses, toGlobalDayResponse(d))
	}
	return responses, nil
}

// WorkerAbsences implements availability.AvailabilityService.
func (s *AvailabilityServiceImpl) WorkerAbsences(ctx context.Context, req availability.WorkerAbsenceRequest) (availability.WorkerAbsencesResponse, error) {
	if err := req.Validate(); err != nil {
		return availability.WorkerAbsencesResponse{}, err
	}

	worker := strings.TrimSpace(req.Worker)
	date, _ := workday.Parse(req.Date)

	records, err := s.recordRepo.List(ctx, availability.RecordFilter{Worker: &worker, From: &date, To: &date})
	if err != nil {
		return availability.WorkerAbsencesResponse{}, fmt.Errorf("failed to list availability records: %w", err)
	}
	rules, err := s.ruleRepo.List(ctx, &worker)
	if err != nil {
		return availability.WorkerAbsencesResponse{}, fmt.Errorf("failed to list recurring absences: %w", err)
	}
	days, err := s.globalDayRepo.List(ctx, &date, &date)
	if err != nil {
		return availability.WorkerAbsencesResponse{}, fmt.Errorf("failed to list global days: %w", err)
	}

	matches := scheduling.AbsencesOn(worker, date, records, rules)

	resp := availability.WorkerAbsencesResponse{
		Worker:    worker,
		Date:      req.Date,
		Available: len(matches) == 0,
		Absences:  ToAbsenceMatchResponses(matches),
	}
	if len(days) > 0 {
		kind := string(days[0].Kind)
		resp.GlobalDay = &kind
	}
	return resp, nil
}

// ToAbsenceMatchResponses maps matches to their API shape; never nil.
func ToAbsenceMatchResponses(matches []availability.AbsenceMatch) []availability.AbsenceMatchResponse {
	out := make([]availability.AbsenceMatchResponse, 0, len(matches))
	for _, m := range matches {
		out = append(out, availability.AbsenceMatchResponse{
			Kind:     string(m.Kind),
			Portion:  string(m.Portion),
			Source:   string(m.Source),
			SourceID: m.SourceID,
		})
	}
	return out
}

func toRecordResponse(r availability.Record) availability.RecordResponse {
	return availability.RecordResponse{
		ID:        r.ID,
		Worker:    r.Worker,
		Date:      workday.Format(r.Date),
		Kind:      string(r.Kind),
		Portion:   string(r.Portion),
		CreatedAt: r.CreatedAt.Format(time.RFC3339),
	}
}

func toRuleResponse(r availability.RecurringRule) availability.RecurringRuleResponse {
	resp := availability.RecurringRuleResponse{
		ID:              r.ID,
		Worker:          r.Worker,
		Kind:            string(r.Kind),
		Portion:         string(r.Portion),
		DayOfWeek:       int(r.AnchorDay),
		StartDate:       workday.Format(r.StartDate),
		NumberOfWeeks:   r.OccurrenceWeeks,
		FirstOccurrence: workday.Format(r.FirstOccurrence()),
		Note:            r.Note,
		CreatedAt:       r.CreatedAt.Format(time.RFC3339),
	}
	if last, ok := r.LastOccurrence(); ok {
		s := workday.Format(last)
		resp.LastOccurrence = &s
	}
	return resp
}

func toGlobalDayResponse(d availability.GlobalDay) availability.GlobalDayResponse {
	return availability.GlobalDayResponse{
		Date: workday.Format(d.Date),
		Kind: string(d.Kind),
	}
}

func parseOptionalDate(s *string) *time.Time {
	if s == nil {
		return nil
	}
	t, ok := workday.Parse(*s)
	if !ok {
		return nil
	}
	return &t
}
