package scheduling

import (
	"sort"
	"time"

	"github.com/guccio85/proximasuite-sub000/internal/domain/availability"
	"github.com/guccio85/proximasuite-sub000/internal/pkg/workday"
)

// IsRecurringActiveOn reports whether rule blocks date. Rules are never
// expanded; activity is derived from the week offset to StartDate.
func IsRecurringActiveOn(rule availability.RecurringRule, date time.Time) bool {
	if rule.OccurrenceWeeks <= 0 || rule.StartDate.IsZero() || date.IsZero() {
		return false
	}
	if date.Weekday() != rule.AnchorDay {
		return false
	}

	daysElapsed := workday.DaysBetween(rule.StartDate, date)
	if daysElapsed < 0 {
		return false
	}
	return daysElapsed/7 < rule.OccurrenceWeeks
}

// AbsencesOn collects every record and active rule that makes worker
// unavailable on date.
func AbsencesOn(worker string, date time.Time, records []availability.Record, rules []availability.RecurringRule) []availability.AbsenceMatch {
	return NewAbsenceIndex(records, rules).On(worker, date)
}

// AbsenceIndex answers availability questions for many worker/date pairs
// without rescanning every record. It is read-only after construction and
// safe for concurrent use.
type AbsenceIndex struct {
	records map[string]map[time.Time][]availability.Record
	rules   map[string][]availability.RecurringRule
}

// NewAbsenceIndex buckets records by worker and day. Records without a date
// and rules without a start are dropped.
func NewAbsenceIndex(records []availability.Record, rules []availability.RecurringRule) *AbsenceIndex {
	idx := &AbsenceIndex{
		records: make(map[string]map[time.Time][]availability.Record),
		rules:   make(map[string][]availability.RecurringRule),
	}

	for _, r := range records {
		if r.Date.IsZero() {
			continue
		}
		byDay, ok := idx.records[r.Worker]
		if !ok {
			byDay = make(map[time.Time][]availability.Record)
			idx.records[r.Worker] = byDay
		}
		d := workday.Date(r.Date)
		byDay[d] = append(byDay[d], r)
	}

	for _, rule := range rules {
		if rule.StartDate.IsZero() {
			continue
		}
		idx.rules[rule.Worker] = append(idx.rules[rule.Worker], rule)
	}

	return idx
}

// On returns all absence matches for worker on date, records first.
func (idx *AbsenceIndex) On(worker string, date time.Time) []availability.AbsenceMatch {
	if date.IsZero() {
		return nil
	}
	d := workday.Date(date)

	var matches []availability.AbsenceMatch
	for _, r := range idx.records[worker][d] {
		matches = append(matches, availability.AbsenceMatch{
			Worker:   worker,
			Date:     d,
			Kind:     r.Kind,
			Portion:  r.Portion,
			Source:   availability.MatchSourceRecord,
			SourceID: r.ID,
		})
	}
	for _, rule := range idx.rules[worker] {
		if !IsRecurringActiveOn(rule, d) {
			continue
		}
		matches = append(matches, availability.AbsenceMatch{
			Worker:   worker,
			Date:     d,
			Kind:     rule.Kind,
			Portion:  rule.Portion,
			Source:   availability.MatchSourceRecurring,
			SourceID: rule.ID,
		})
	}
	return matches
}

// IsAvailable reports whether worker has no absence on date. Half-day
// absences count as unavailable.
func (idx *AbsenceIndex) IsAvailable(worker string, date time.Time) bool {
	return len(idx.On(worker, date)) == 0
}

// Workers lists every worker the index knows about, sorted.
func (idx *AbsenceIndex) Workers() []string {
	seen := make(map[string]struct{}, len(idx.records)+len(idx.rules))
	for w := range idx.records {
		seen[w] = struct{}{}
	}
	for w := range idx.rules {
		seen[w] = struct{}{}
	}

	workers := make([]string, 0, len(seen))
	for w := range seen {
		workers = append(workers, w)
	}
	sort.Strings(workers)
	return workers
}
