package telemetry

import (
	"context"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/gitrdm/gokanproof/pkg/chainer"
)

const metricsNamespace = "gokanproof"

const searchSubsystem = "search"

// MetricsTracer is a chainer.Tracer that counts search events in
// Prometheus metrics.
type MetricsTracer struct {
	// ExpansionsTotal counts goals decomposed into an application.
	ExpansionsTotal prometheus.Counter

	// ExpansionDepth observes the remaining depth budget at each expansion.
	// Controlled searches have no budget and are not observed.
	ExpansionDepth prometheus.Histogram

	// MatchesTotal counts base-case matches against stores and environments.
	MatchesTotal prometheus.Counter

	// PrunesTotal counts branches cut by inference control.
	PrunesTotal prometheus.Counter

	// CommitsTotal counts judgments written back by iterative rounds.
	// Labels: added (true, false)
	CommitsTotal *prometheus.CounterVec
}

var _ chainer.Tracer = (*MetricsTracer)(nil)

// NewMetricsTracer creates the search metrics and registers them with reg.
// A nil reg leaves the metrics unregistered.
func NewMetricsTracer(reg prometheus.Registerer) *MetricsTracer {
	factory := promauto.With(reg)
	return &MetricsTracer{
		ExpansionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: searchSubsystem,
			Name:      "expansions_total",
			Help:      "Goals decomposed into an abstraction and its arguments",
		}),
		ExpansionDepth: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: searchSubsystem,
			Name:      "expansion_depth",
			Help:      "Remaining depth budget when a goal is expanded by a depth-bounded search",
			Buckets:   prometheus.LinearBuckets(0, 1, 10),
		}),
		MatchesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: searchSubsystem,
			Name:      "matches_total",
			Help:      "Base-case matches against the knowledge base or environment",
		}),
		PrunesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: searchSubsystem,
			Name:      "prunes_total",
			Help:      "Branches cut by inference control",
		}),
		CommitsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: searchSubsystem,
			Name:      "commits_total",
			Help:      "Judgments written back to the knowledge base by iterative rounds",
		}, []string{"added"}),
	}
}

func (m *MetricsTracer) Expand(_ context.Context, depth int, _ chainer.Judgment) {
	m.ExpansionsTotal.Inc()
	if depth >= 0 {
		m.ExpansionDepth.Observe(float64(depth))
	}
}

func (m *MetricsTracer) Match(context.Context, int, chainer.Judgment) {
	m.MatchesTotal.Inc()
}

func (m *MetricsTracer) Prune(context.Context, chainer.Judgment) {
	m.PrunesTotal.Inc()
}

func (m *MetricsTracer) Commit(_ context.Context, _ chainer.Judgment, added bool) {
	m.CommitsTotal.WithLabelValues(strconv.FormatBool(added)).Inc()
}
