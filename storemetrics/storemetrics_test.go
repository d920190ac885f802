package storemetrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/fairhopeweb/arcadeum-state/domain"
	"github.com/fairhopeweb/arcadeum-state/proof"
)

func TestObserveDiffResult(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveDiffResult(nil)
	m.ObserveDiffResult(proof.NewSlashableError([]byte("evidence"), "bad reveal"))
	m.ObserveDiffResult(proof.NewHardError("malformed diff"))

	if got := testutil.ToFloat64(m.DiffsApplied); got != 1 {
		t.Fatalf("DiffsApplied = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.DiffsRejectedSlashable); got != 1 {
		t.Fatalf("DiffsRejectedSlashable = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.DiffsRejectedHard); got != 1 {
		t.Fatalf("DiffsRejectedHard = %v, want 1", got)
	}
}

func TestObservePhase(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObservePhase(domain.PhaseRandomCommit)
	m.ObservePhase(domain.PhaseRandomCommit)
	m.ObservePhase(domain.PhaseReveal)

	if got := testutil.ToFloat64(m.PhaseTransitions.WithLabelValues("random-commit")); got != 2 {
		t.Fatalf("random-commit count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.PhaseTransitions.WithLabelValues("reveal")); got != 1 {
		t.Fatalf("reveal count = %v, want 1", got)
	}
}
