package planning

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/guccio85/proximasuite-sub000/internal/domain/availability"
	"github.com/guccio85/proximasuite-sub000/internal/domain/order"
	"github.com/guccio85/proximasuite-sub000/internal/domain/planning"
	"github.com/guccio85/proximasuite-sub000/internal/pkg/metrics"
	"github.com/guccio85/proximasuite-sub000/internal/pkg/report"
	"github.com/guccio85/proximasuite-sub000/internal/pkg/validator"
	"github.com/guccio85/proximasuite-sub000/internal/pkg/workday"
	availabilityservice "github.com/guccio85/proximasuite-sub000/internal/service/availability"
	"github.com/guccio85/proximasuite-sub000/internal/service/scheduling"
)

// scanWorkers bounds the goroutines of a full conflict scan.
const scanWorkers = 8

type PlanningServiceImpl struct {
	orderRepo     order.OrderRepository
	recordRepo    availability.RecordRepository
	ruleRepo      availability.RecurringRuleRepository
	globalDayRepo availability.GlobalDayRepository
	metrics       *metrics.Recorder
	companyName   string
}

func NewPlanningService(
	orderRepo order.OrderRepository,
	recordRepo availability.RecordRepository,
	ruleRepo availability.RecurringRuleRepository,
	globalDayRepo availability.GlobalDayRepository,
	rec *metrics.Recorder,
	companyName string,
) planning.PlanningService {
	return &PlanningServiceImpl{
		orderRepo:     orderRepo,
		recordRepo:    recordRepo,
		ruleRepo:      ruleRepo,
		globalDayRepo: globalDayRepo,
		metrics:       rec,
		companyName:   companyName,
	}
}

// OrderConflicts implements planning.PlanningService.
func (s *PlanningServiceImpl) OrderConflicts(ctx context.Context, orderID string) (planning.OrderConflictsResponse, error) {
	o, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return planning.OrderConflictsResponse{}, fmt.Errorf("failed to get order: %w", err)
	}

	filter := availability.RecordFilter{}
	if from, to, ok := orderSpan(o); ok {
		filter.From, filter.To = &from, &to
	}
	idx, err := s.loadIndex(ctx, filter)
	if err != nil {
		return planning.OrderConflictsResponse{}, err
	}

	return toOrderConflictsResponse(planning.OrderConflicts{
		Order:              o,
		Conflicts:          scheduling.FindConflictsIndexed(o, idx),
		MissingAssignments: scheduling.FindMissingAssignments(o),
	}), nil
}

// AllConflicts implements planning.PlanningService.
func (s *PlanningServiceImpl) AllConflicts(ctx context.Context) (planning.ConflictScanResponse, error) {
	start := time.Now()

	orders, err := s.orderRepo.List(ctx, order.OrderFilter{})
	if err != nil {
		return planning.ConflictScanResponse{}, fmt.Errorf("failed to list orders: %w", err)
	}
	idx, err := s.loadIndex(ctx, availability.RecordFilter{})
	if err != nil {
		return planning.ConflictScanResponse{}, err
	}

	results := make([]planning.OrderConflicts, len(orders))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(scanWorkers)
	for i, o := range orders {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = planning.OrderConflicts{
				Order:              o,
				Conflicts:          scheduling.FindConflictsIndexed(o, idx),
				MissingAssignments: scheduling.FindMissingAssignments(o),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return planning.ConflictScanResponse{}, fmt.Errorf("conflict scan aborted: %w", err)
	}

	resp := planning.ConflictScanResponse{
		ScannedOrders: len(orders),
		Orders:        []planning.OrderConflictsResponse{},
	}
	for _, r := range results {
		if len(r.Conflicts) == 0 && len(r.MissingAssignments) == 0 && !r.Order.MissingAssignment {
			continue
		}
		for _, c := range r.Conflicts {
			s.metrics.Conflict(string(c.Reason))
		}
		resp.TotalConflicts += len(r.Conflicts)
		resp.Orders = append(resp.Orders, toOrderConflictsResponse(r))
	}
	sort.SliceStable(resp.Orders, func(i, j int) bool {
		return resp.Orders[i].OrderNumber < resp.Orders[j].OrderNumber
	})

	s.metrics.ScanCompleted(resp.TotalConflicts, time.Since(start).Seconds())
	return resp, nil
}

// WorkerSchedule implements planning.PlanningService.
func (s *PlanningServiceImpl) WorkerSchedule(ctx context.Context, req planning.WorkerScheduleRequest) (planning.WorkerScheduleResponse, error) {
	if err := req.Validate(); err != nil {
		return planning.WorkerScheduleResponse{}, err
	}
	from, _ := workday.Parse(req.From)
	to, _ := workday.Parse(req.To)

	orders, err := s.orderRepo.ListByWorker(ctx, req.Worker)
	if err != nil {
		return planning.WorkerScheduleResponse{}, fmt.Errorf("failed to list orders for worker: %w", err)
	}
	records, err := s.recordRepo.List(ctx, availability.RecordFilter{Worker: &req.Worker, From: &from, To: &to})
	if err != nil {
		return planning.WorkerScheduleResponse{}, fmt.Errorf("failed to list availability records: %w", err)
	}
	rules, err := s.ruleRepo.List(ctx, &req.Worker)
	if err != nil {
		return planning.WorkerScheduleResponse{}, fmt.Errorf("failed to list recurring absences: %w", err)
	}
	globalDays, err := s.globalDayMap(ctx, &from, &to)
	if err != nil {
		return planning.WorkerScheduleResponse{}, err
	}

	assignments := make(map[time.Time][]planning.Assignment)
	for _, o := range orders {
		for _, t := range o.Tasks {
			if !t.Crew.Contains(req.Worker) {
				continue
			}
			for _, d := range scheduling.TaskDays(t) {
				if d.Before(from) || d.After(to) {
					continue
				}
				assignments[d] = append(assignments[d], planning.Assignment{
					OrderID:     o.ID,
					OrderNumber: o.OrderNumber,
					TaskKind:    t.Kind,
				})
			}
		}
	}

	idx := scheduling.NewAbsenceIndex(records, rules)
	schedule := planning.WorkerSchedule{Worker: req.Worker, From: from, To: to}
	for _, d := range workday.Range(from, to) {
		day := planning.WorkerDay{
			Date:        d,
			Weekend:     workday.IsWeekend(d),
			Absences:    idx.On(req.Worker, d),
			Assignments: assignments[d],
		}
		if kind, ok := globalDays[d]; ok {
			day.GlobalDay = &kind
		}
		schedule.Days = append(schedule.Days, day)
	}

	return toWorkerScheduleResponse(schedule), nil
}

// DailyAbsenceReport implements planning.PlanningService.
func (s *PlanningServiceImpl) DailyAbsenceReport(ctx context.Context, date string) (planning.DailyAbsenceReportResponse, error) {
	r, err := s.dailyAbsences(ctx, date)
	if err != nil {
		return planning.DailyAbsenceReportResponse{}, err
	}

	resp := planning.DailyAbsenceReportResponse{
		Date:    workday.Format(r.Date),
		Workers: make([]planning.WorkerAbsencesResponse, 0, len(r.Workers)),
	}
	if r.GlobalDay != nil {
		kind := string(*r.GlobalDay)
		resp.GlobalDay = &kind
	}
	for _, w := range r.Workers {
		resp.Workers = append(resp.Workers, planning.WorkerAbsencesResponse{
			Worker:   w.Worker,
			Absences: availabilityservice.ToAbsenceMatchResponses(w.Absences),
		})
	}
	return resp, nil
}

// DailyAbsenceReportPDF implements planning.PlanningService.
func (s *PlanningServiceImpl) DailyAbsenceReportPDF(ctx context.Context, date string) ([]byte, error) {
	r, err := s.dailyAbsences(ctx, date)
	if err != nil {
		return nil, err
	}

	sheet := report.DailyAbsence{
		Company: s.companyName,
		Date:    workday.Format(r.Date),
	}
	if r.GlobalDay != nil {
		sheet.GlobalDay = string(*r.GlobalDay)
	}
	for _, w := range r.Workers {
		lines := report.WorkerLines{Worker: w.Worker}
		for _, m := range w.Absences {
			lines.Absences = append(lines.Absences, report.AbsenceLine{
				Kind:    string(m.Kind),
				Portion: string(m.Portion),
				Source:  string(m.Source),
			})
		}
		sheet.Workers = append(sheet.Workers, lines)
	}

	out, err := report.RenderDailyAbsencePDF(sheet)
	if err != nil {
		return nil, err
	}
	slog.Info("Daily absence report rendered", "date", sheet.Date, "workers", len(sheet.Workers), "bytes", len(out))
	return out, nil
}

func (s *PlanningServiceImpl) dailyAbsences(ctx context.Context, date string) (planning.DailyAbsenceReport, error) {
	d, ok := workday.Parse(date)
	if !ok {
		return planning.DailyAbsenceReport{}, validator.ValidationErrors{{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		}}
	}

	idx, err := s.loadIndex(ctx, availability.RecordFilter{From: &d, To: &d})
	if err != nil {
		return planning.DailyAbsenceReport{}, err
	}
	globalDays, err := s.globalDayMap(ctx, &d, &d)
	if err != nil {
		return planning.DailyAbsenceReport{}, err
	}

	r := planning.DailyAbsenceReport{Date: d}
	if kind, ok := globalDays[d]; ok {
		r.GlobalDay = &kind
	}
	for _, w := range idx.Workers() {
		if matches := idx.On(w, d); len(matches) > 0 {
			r.Workers = append(r.Workers, planning.WorkerAbsences{Worker: w, Absences: matches})
		}
	}
	return r, nil
}

// loadIndex reads records matching filter and every recurring rule.
func (s *PlanningServiceImpl) loadIndex(ctx context.Context, filter availability.RecordFilter) (*scheduling.AbsenceIndex, error) {
	records, err := s.recordRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list availability records: %w", err)
	}
	rules, err := s.ruleRepo.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list recurring absences: %w", err)
	}
	return scheduling.NewAbsenceIndex(records, rules), nil
}

func (s *PlanningServiceImpl) globalDayMap(ctx context.Context, from, to *time.Time) (map[time.Time]availability.GlobalDayKind, error) {
	days, err := s.globalDayRepo.List(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list global days: %w", err)
	}
	m := make(map[time.Time]availability.GlobalDayKind, len(days))
	for _, d := range days {
		m[workday.Date(d.Date)] = d.Kind
	}
	return m, nil
}

// orderSpan is the first and last day any task of o occupies.
func orderSpan(o order.Order) (time.Time, time.Time, bool) {
	var from, to time.Time
	for _, t := range o.Tasks {
		days := scheduling.TaskDays(t)
		if len(days) == 0 {
			continue
		}
		if from.IsZero() || days[0].Before(from) {
			from = days[0]
		}
		if last := days[len(days)-1]; last.After(to) {
			to = last
		}
	}
	return from, to, !from.IsZero()
}

func toOrderConflictsResponse(oc planning.OrderConflicts) planning.OrderConflictsResponse {
	resp := planning.OrderConflictsResponse{
		OrderID:            oc.Order.ID,
		OrderNumber:        oc.Order.OrderNumber,
		DisplayEndDate:     workday.FormatPtr(oc.Order.DisplayEndDate()),
		MissingAssignment:  oc.Order.MissingAssignment,
		MissingAssignments: make([]string, 0, len(oc.MissingAssignments)),
		Conflicts:          make([]planning.ConflictResponse, 0, len(oc.Conflicts)),
	}
	for _, k := range oc.MissingAssignments {
		resp.MissingAssignments = append(resp.MissingAssignments, string(k))
	}
	for _, c := range oc.Conflicts {
		resp.Conflicts = append(resp.Conflicts, planning.ConflictResponse{
			OrderID:  c.OrderID,
			TaskKind: string(c.TaskKind),
			Worker:   c.Worker,
			Date:     workday.Format(c.Date),
			Reason:   string(c.Reason),
			Portion:  string(c.Portion),
			Source:   string(c.Source),
		})
	}
	return resp
}

func toWorkerScheduleResponse(ws planning.WorkerSchedule) planning.WorkerScheduleResponse {
	resp := planning.WorkerScheduleResponse{
		Worker: ws.Worker,
		From:   workday.Format(ws.From),
		To:     workday.Format(ws.To),
		Days:   make([]planning.WorkerDayResponse, 0, len(ws.Days)),
	}
	for _, d := range ws.Days {
		day := planning.WorkerDayResponse{
			Date:        workday.Format(d.Date),
			Weekend:     d.Weekend,
			Conflict:    d.HasConflict(),
			Absences:    availabilityservice.ToAbsenceMatchResponses(d.Absences),
			Assignments: make([]planning.AssignmentResponse, 0, len(d.Assignments)),
		}
		if d.GlobalDay != nil {
			kind := string(*d.GlobalDay)
			day.GlobalDay = &kind
		}
		for _, a := range d.Assignments {
			day.Assignments = append(day.Assignments, planning.AssignmentResponse{
				OrderID:     a.OrderID,
				OrderNumber: a.OrderNumber,
				TaskKind:    string(a.TaskKind),
			})
		}
		resp.Days = append(resp.Days, day)
	}
	return resp
}
