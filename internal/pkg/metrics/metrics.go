package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder exposes planner metrics. A nil *Recorder is valid and records
// nothing, so services can be built without metrics in tests.
type Recorder struct {
	recomputes    *prometheus.CounterVec
	conflicts     *prometheus.CounterVec
	openConflicts prometheus.Gauge
	scanDuration  prometheus.Histogram

	gatherer prometheus.Gatherer
}

// NewRecorder registers the planner collectors on reg. If reg is nil, the
// default registerer is used. Collectors that are already registered are
// reused.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	recomputes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "planner_recomputes_total",
		Help: "Number of schedule recomputations by scope",
	}, []string{"scope"})
	conflicts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "planner_conflicts_found_total",
		Help: "Conflicts reported by conflict scans, by absence kind",
	}, []string{"reason"})
	openConflicts := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "planner_open_conflicts",
		Help: "Conflicts found by the most recent full scan",
	})
	scanDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "planner_conflict_scan_duration_seconds",
		Help:    "Duration of full conflict scans",
		Buckets: prometheus.DefBuckets,
	})

	var err error
	if recomputes, err = register(reg, recomputes); err != nil {
		return nil, err
	}
	if conflicts, err = register(reg, conflicts); err != nil {
		return nil, err
	}
	if openConflicts, err = register(reg, openConflicts); err != nil {
		return nil, err
	}
	if scanDuration, err = register(reg, scanDuration); err != nil {
		return nil, err
	}

	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	return &Recorder{
		recomputes:    recomputes,
		conflicts:     conflicts,
		openConflicts: openConflicts,
		scanDuration:  scanDuration,
		gatherer:      gatherer,
	}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// Recompute counts one recomputation; scope is "task" or "order".
func (r *Recorder) Recompute(scope string) {
	if r == nil {
		return
	}
	r.recomputes.WithLabelValues(scope).Inc()
}

// Conflict counts one reported conflict.
func (r *Recorder) Conflict(reason string) {
	if r == nil {
		return
	}
	r.conflicts.WithLabelValues(reason).Inc()
}

// ScanCompleted records the outcome of a full conflict scan.
func (r *Recorder) ScanCompleted(total int, seconds float64) {
	if r == nil {
		return
	}
	r.openConflicts.Set(float64(total))
	r.scanDuration.Observe(seconds)
}

// Handler serves the registry the recorder was built on.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})
}
