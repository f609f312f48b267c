package memory

import (
	"context"
	"sort"
	"time"

	"github.com/guccio85/proximasuite-sub000/internal/domain/availability"
	"github.com/guccio85/proximasuite-sub000/internal/pkg/workday"
)

type recordRepositoryImpl struct {
	store *Store
}

func NewRecordRepository(store *Store) availability.RecordRepository {
	return &recordRepositoryImpl{store: store}
}

// Create implements availability.RecordRepository.
func (r *recordRepositoryImpl) Create(ctx context.Context, record availability.Record) (availability.Record, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	record.Date = workday.Date(record.Date)
	for _, existing := range r.store.records {
		if existing.Worker == record.Worker && existing.Date.Equal(record.Date) &&
			existing.Kind == record.Kind && existing.Portion == record.Portion {
			return availability.Record{}, availability.ErrDuplicateRecord
		}
	}

	record.ID = newID()
	record.CreatedAt = r.store.now()
	r.store.records[record.ID] = record

	return record, nil
}

// GetByID implements availability.RecordRepository.
func (r *recordRepositoryImpl) GetByID(ctx context.Context, id string) (availability.Record, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	record, ok := r.store.records[id]
	if !ok {
		return availability.Record{}, availability.ErrRecordNotFound
	}
	return record, nil
}

// List implements availability.RecordRepository.
func (r *recordRepositoryImpl) List(ctx context.Context, filter availability.RecordFilter) ([]availability.Record, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var records []availability.Record
	for _, record := range r.store.records {
		if filter.Worker != nil && record.Worker != *filter.Worker {
			continue
		}
		if !inWindow(record.Date, filter.From, filter.To) {
			continue
		}
		records = append(records, record)
	}

	sort.Slice(records, func(i, j int) bool {
		if !records[i].Date.Equal(records[j].Date) {
			return records[i].Date.Before(records[j].Date)
		}
		if records[i].Worker != records[j].Worker {
			return records[i].Worker < records[j].Worker
		}
		return records[i].ID < records[j].ID
	})
	return records, nil
}

// Delete implements availability.RecordRepository.
func (r *recordRepositoryImpl) Delete(ctx context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.records[id]; !ok {
		return availability.ErrRecordNotFound
	}
	delete(r.store.records, id)

	return nil
}

type recurringRuleRepositoryImpl struct {
	store *Store
}

func NewRecurringRuleRepository(store *Store) availability.RecurringRuleRepository {
	return &recurringRuleRepositoryImpl{store: store}
}

// Create implements availability.RecurringRuleRepository.
func (r *recurringRuleRepositoryImpl) Create(ctx context.Context, rule availability.RecurringRule) (availability.RecurringRule, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	rule.ID = newID()
	rule.StartDate = workday.Date(rule.StartDate)
	rule.CreatedAt = r.store.now()
	r.store.rules[rule.ID] = rule

	return rule, nil
}

// GetByID implements availability.RecurringRuleRepository.
func (r *recurringRuleRepositoryImpl) GetByID(ctx context.Context, id string) (availability.RecurringRule, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	rule, ok := r.store.rules[id]
	if !ok {
		return availability.RecurringRule{}, availability.ErrRecurringRuleNotFound
	}
	return rule, nil
}

// List implements availability.RecurringRuleRepository.
func (r *recurringRuleRepositoryImpl) List(ctx context.Context, worker *string) ([]availability.RecurringRule, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var rules []availability.RecurringRule
	for _, rule := range r.store.rules {
		if worker != nil && rule.Worker != *worker {
			continue
		}
		rules = append(rules, rule)
	}

	sort.Slice(rules, func(i, j int) bool {
		if rules[i].Worker != rules[j].Worker {
			return rules[i].Worker < rules[j].Worker
		}
		if !rules[i].StartDate.Equal(rules[j].StartDate) {
			return rules[i].StartDate.Before(rules[j].StartDate)
		}
		return rules[i].ID < rules[j].ID
	})
	return rules, nil
}

// Delete implements availability.RecurringRuleRepository.
func (r *recurringRuleRepositoryImpl) Delete(ctx context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.rules[id]; !ok {
		return availability.ErrRecurringRuleNotFound
	}
	delete(r.store.rules, id)

	return nil
}

type globalDayRepositoryImpl struct {
	store *Store
}

func NewGlobalDayRepository(store *Store) availability.GlobalDayRepository {
	return &globalDayRepositoryImpl{store: store}
}

// Upsert implements availability.GlobalDayRepository.
func (r *globalDayRepositoryImpl) Upsert(ctx context.Context, day availability.GlobalDay) (availability.GlobalDay, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	day.Date = workday.Date(day.Date)
	if existing, ok := r.store.globalDays[day.Date]; ok {
		day.CreatedAt = existing.CreatedAt
	} else {
		day.CreatedAt = r.store.now()
	}
	r.store.globalDays[day.Date] = day

	return day, nil
}

// List implements availability.GlobalDayRepository.
func (r *globalDayRepositoryImpl) List(ctx context.Context, from, to *time.Time) ([]availability.GlobalDay, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var days []availability.GlobalDay
	for _, day := range r.store.globalDays {
		if inWindow(day.Date, from, to) {
			days = append(days, day)
		}
	}

	sort.Slice(days, func(i, j int) bool {
		return days[i].Date.Before(days[j].Date)
	})
	return days, nil
}

// Delete implements availability.GlobalDayRepository.
func (r *globalDayRepositoryImpl) Delete(ctx context.Context, date time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	date = workday.Date(date)
	if _, ok := r.store.globalDays[date]; !ok {
		return availability.ErrGlobalDayNotFound
	}
	delete(r.store.globalDays, date)

	return nil
}

func inWindow(d time.Time, from, to *time.Time) bool {
	if from != nil && d.Before(workday.Date(*from)) {
		return false
	}
	if to != nil && d.After(workday.Date(*to)) {
		return false
	}
	return true
}
