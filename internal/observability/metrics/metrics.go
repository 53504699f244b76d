package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters for the booking flows.
type BookingMetrics struct {
	dialogsStarted    prometheus.Counter
	draftsReplaced    prometheus.Counter
	stepRejections    *prometheus.CounterVec
	conflictsDetected *prometheus.CounterVec
	lifecycleErrors   *prometheus.CounterVec
	bookingsConfirmed prometheus.Counter
	deliveryFailures  prometheus.Counter
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		dialogsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bookingbot",
			Subsystem: "dialog",
			Name:      "started_total",
			Help:      "Booking dialogs started",
		}),
		draftsReplaced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bookingbot",
			Subsystem: "dialog",
			Name:      "drafts_replaced_total",
			Help:      "In-progress drafts silently replaced by a restart",
		}),
		stepRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bookingbot",
			Subsystem: "dialog",
			Name:      "step_rejections_total",
			Help:      "Inputs rejected by a dialog step",
		}, []string{"step"}),
		conflictsDetected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bookingbot",
			Subsystem: "schedule",
			Name:      "conflicts_total",
			Help:      "Advisory conflict annotations attached to completed drafts",
		}, []string{"kind"}),
		lifecycleErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bookingbot",
			Subsystem: "lifecycle",
			Name:      "errors_total",
			Help:      "Rejected lifecycle commands",
		}, []string{"op"}),
		bookingsConfirmed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bookingbot",
			Subsystem: "lifecycle",
			Name:      "confirmed_total",
			Help:      "Bookings confirmed and appended to the finalized list",
		}),
		deliveryFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bookingbot",
			Subsystem: "notify",
			Name:      "delivery_failures_total",
			Help:      "Outbound notifications that could not be delivered",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(
		m.dialogsStarted,
		m.draftsReplaced,
		m.stepRejections,
		m.conflictsDetected,
		m.lifecycleErrors,
		m.bookingsConfirmed,
		m.deliveryFailures,
	)
	return m
}

func (m *BookingMetrics) ObserveDialogStarted(replaced bool) {
	if m == nil {
		return
	}
	m.dialogsStarted.Inc()
	if replaced {
		m.draftsReplaced.Inc()
	}
}

func (m *BookingMetrics) ObserveStepRejection(step string) {
	if m == nil {
		return
	}
	m.stepRejections.WithLabelValues(step).Inc()
}

func (m *BookingMetrics) ObserveConflict(kind string) {
	if m == nil {
		return
	}
	m.conflictsDetected.WithLabelValues(kind).Inc()
}

func (m *BookingMetrics) ObserveLifecycleError(op string) {
	if m == nil {
		return
	}
	m.lifecycleErrors.WithLabelValues(op).Inc()
}

func (m *BookingMetrics) ObserveBookingConfirmed() {
	if m == nil {
		return
	}
	m.bookingsConfirmed.Inc()
}

func (m *BookingMetrics) ObserveDeliveryFailure() {
	if m == nil {
		return
	}
	m.deliveryFailures.Inc()
}
