package order

import (
	"strings"
	"time"
)

type TaskKind string

const (
	TaskKindMeasurement     TaskKind = "measurement"
	TaskKindWorkPreparation TaskKind = "work_preparation"
	TaskKindKBW             TaskKind = "kbw"
	TaskKindPLW             TaskKind = "plw"
	TaskKindInstallation    TaskKind = "installation"
)

// TaskKinds lists the kinds every new order starts with, in planning order.
var TaskKinds = []TaskKind{
	TaskKindMeasurement,
	TaskKindWorkPreparation,
	TaskKindKBW,
	TaskKindPLW,
	TaskKindInstallation,
}

var TaskKindValues = []string{
	string(TaskKindMeasurement),
	string(TaskKindWorkPreparation),
	string(TaskKindKBW),
	string(TaskKindPLW),
	string(TaskKindInstallation),
}

func (k TaskKind) IsValid() bool {
	for _, v := range TaskKinds {
		if v == k {
			return true
		}
	}
	return false
}

// Crew is an ordered set of worker names.
type Crew []string

// NewCrew trims names, drops empty ones and collapses duplicates while
// keeping first-seen order.
func NewCrew(names ...string) Crew {
	crew := make(Crew, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		crew = append(crew, n)
	}
	return crew
}

// ParseCrew reads the legacy "Jan + Piet" notation.
func ParseCrew(s string) Crew {
	return NewCrew(strings.Split(s, "+")...)
}

// Size is the number of distinct workers in the crew.
func (c Crew) Size() int {
	return len(NewCrew(c...))
}

func (c Crew) Contains(worker string) bool {
	for _, w := range c {
		if w == worker {
			return true
		}
	}
	return false
}

// Without returns a copy of the crew minus worker.
func (c Crew) Without(worker string) Crew {
	out := make(Crew, 0, len(c))
	for _, w := range c {
		if w != worker {
			out = append(out, w)
		}
	}
	return out
}

func (c Crew) String() string {
	return strings.Join(c, " + ")
}

type Task struct {
	Kind        TaskKind
	StartDate   *time.Time
	EndDate     *time.Time
	BudgetHours float64
	Crew        Crew
}

type Order struct {
	ID          string
	OrderNumber string
	Client      string
	ProjectRef  *string
	Address     *string
	Description *string

	ScheduledDate    *time.Time
	ScheduledEndDate *time.Time

	IsSubcontracted           bool
	SubcontractorName         *string
	SubcontractorDeliveryDate *time.Time

	// MissingAssignment is set when a worker or subcontractor was removed
	// from the order and it needs review.
	MissingAssignment bool

	Tasks []Task

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Task returns the task of the given kind.
func (o *Order) Task(kind TaskKind) (*Task, bool) {
	for i := range o.Tasks {
		if o.Tasks[i].Kind == kind {
			return &o.Tasks[i], true
		}
	}
	return nil, false
}

// HasSubcontractor reports whether the work is handed to a named
// subcontractor.
func (o Order) HasSubcontractor() bool {
	return o.IsSubcontracted && o.SubcontractorName != nil && strings.TrimSpace(*o.SubcontractorName) != ""
}

// DisplayEndDate is the end date callers should surface: the subcontractor
// delivery date for subcontracted orders, the computed end otherwise.
func (o Order) DisplayEndDate() *time.Time {
	if o.IsSubcontracted && o.SubcontractorDeliveryDate != nil {
		return o.SubcontractorDeliveryDate
	}
	return o.ScheduledEndDate
}

// Workers returns the distinct workers across all task crews.
func (o Order) Workers() Crew {
	var all []string
	for _, t := range o.Tasks {
		all = append(all, t.Crew...)
	}
	return NewCrew(all...)
}

// Clone returns a deep copy so callers can recompute without aliasing.
func (o Order) Clone() Order {
	c := o
	c.Tasks = make([]Task, len(o.Tasks))
	for i, t := range o.Tasks {
		t.Crew = append(Crew(nil), t.Crew...)
		c.Tasks[i] = t
	}
	return c
}

type OrderFilter struct {
	Search *string
	From   *time.Time
	To     *time.Time
}
