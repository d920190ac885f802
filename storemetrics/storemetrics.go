// Package storemetrics exposes Prometheus instrumentation for a Store-driven
// match host: a single collector wrapping named instruments, backed
// directly by the real github.com/prometheus/client_golang registry
// instead of a hand-rolled exposition-format writer.
package storemetrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/fairhopeweb/arcadeum-state/domain"
	"github.com/fairhopeweb/arcadeum-state/proof"
)

// Metrics holds every instrument a Store host reports.
type Metrics struct {
	DiffsApplied           prometheus.Counter
	DiffsRejectedSlashable prometheus.Counter
	DiffsRejectedHard      prometheus.Counter
	CheckpointsCompacted   prometheus.Counter
	PhaseTransitions       *prometheus.CounterVec
}

// New constructs instruments and registers them against reg. Pass
// prometheus.NewRegistry() for an isolated registry (tests, multiple
// matches in one process) or prometheus.DefaultRegisterer to expose
// process-wide metrics via promhttp.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		DiffsApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "arcadeum_diffs_applied_total",
			Help: "Diffs successfully applied to a Store's proof.",
		}),
		DiffsRejectedSlashable: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "arcadeum_diffs_rejected_slashable_total",
			Help: "Diffs rejected with publishable dispute evidence.",
		}),
		DiffsRejectedHard: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "arcadeum_diffs_rejected_hard_total",
			Help: "Diffs rejected with no evidence (malformed or unsigned).",
		}),
		CheckpointsCompacted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "arcadeum_checkpoints_compacted_total",
			Help: "Times a Proof's freshest checkpoint advanced past its root.",
		}),
		PhaseTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "arcadeum_phase_transitions_total",
			Help: "Commit-reveal and secret-reveal sub-protocol phases entered.",
		}, []string{"phase"}),
	}

	reg.MustRegister(
		m.DiffsApplied,
		m.DiffsRejectedSlashable,
		m.DiffsRejectedHard,
		m.CheckpointsCompacted,
		m.PhaseTransitions,
	)

	return m
}

// ObservePhase increments the counter for the given sub-protocol phase.
func (m *Metrics) ObservePhase(kind domain.PhaseKind) {
	m.PhaseTransitions.WithLabelValues(kind.String()).Inc()
}

// ObserveDiffResult increments the applied/slashable/hard counter matching
// err's classification. err == nil counts as applied.
func (m *Metrics) ObserveDiffResult(err error) {
	switch {
	case err == nil:
		m.DiffsApplied.Inc()
	case isSlashable(err):
		m.DiffsRejectedSlashable.Inc()
	default:
		m.DiffsRejectedHard.Inc()
	}
}

func isSlashable(err error) bool {
	_, ok := err.(*proof.SlashableError)
	return ok
}
