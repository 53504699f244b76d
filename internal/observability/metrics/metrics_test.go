package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveDialogStarted(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewBookingMetrics(reg)

	m.ObserveDialogStarted(false)
	m.ObserveDialogStarted(true)

	if got := testutil.ToFloat64(m.dialogsStarted); got != 2 {
		t.Errorf("dialogsStarted = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.draftsReplaced); got != 1 {
		t.Errorf("draftsReplaced = %v, want 1", got)
	}
}

func TestObserveConflictByKind(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewBookingMetrics(reg)

	m.ObserveConflict("overlap")
	m.ObserveConflict("overlap")
	m.ObserveConflict("close_gap")

	if got := testutil.ToFloat64(m.conflictsDetected.WithLabelValues("overlap")); got != 2 {
		t.Errorf("overlap count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.conflictsDetected.WithLabelValues("close_gap")); got != 1 {
		t.Errorf("close_gap count = %v, want 1", got)
	}
}

func TestNilReceiverIsSafe(t *testing.T) {
	var m *BookingMetrics
	m.ObserveDialogStarted(true)
	m.ObserveStepRejection("date")
	m.ObserveConflict("overlap")
	m.ObserveLifecycleError("set_travel_fee")
	m.ObserveBookingConfirmed()
	m.ObserveDeliveryFailure()
}
