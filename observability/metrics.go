package observability

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "kvobserver"

// Metrics holds the Prometheus collectors updated by observation registries.
//
// A nil *Metrics is valid and records nothing, so registries built without
// metrics pay only a nil check.
type Metrics struct {
	Registrations          prometheus.Counter
	DuplicateRegistrations prometheus.Counter
	Deregistrations        prometheus.Counter
	SkippedDeregistrations prometheus.Counter
	ActiveObservations     prometheus.Gauge
	Notifications          *prometheus.CounterVec
	StaleNotifications     prometheus.Counter
	UnknownTokens          prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// leaves the collectors unregistered. Collectors already registered on reg
// (for example by another registry sharing it) are reused.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Registrations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registrations_total",
			Help:      "Observations registered with the underlying primitive.",
		}),
		DuplicateRegistrations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duplicate_registrations_total",
			Help:      "Registrations skipped because an equal observation was active.",
		}),
		Deregistrations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deregistrations_total",
			Help:      "Observations removed from a registry.",
		}),
		SkippedDeregistrations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "skipped_deregistrations_total",
			Help:      "Removals where the observed object was already gone.",
		}),
		ActiveObservations: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_observations",
			Help:      "Observations currently held by registries.",
		}),
		Notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Change notifications routed, by policy kind and dispatch mode.",
		}, []string{"policy", "mode"}),
		StaleNotifications: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_notifications_dropped_total",
			Help:      "Scheduled callbacks dropped because their registry was closed.",
		}),
		UnknownTokens: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unknown_token_notifications_total",
			Help:      "Notifications received for a token with no active observation.",
		}),
	}

	if reg == nil {
		return m, nil
	}

	var errs []error
	m.Registrations = register(reg, m.Registrations, &errs)
	m.DuplicateRegistrations = register(reg, m.DuplicateRegistrations, &errs)
	m.Deregistrations = register(reg, m.Deregistrations, &errs)
	m.SkippedDeregistrations = register(reg, m.SkippedDeregistrations, &errs)
	m.ActiveObservations = register(reg, m.ActiveObservations, &errs)
	m.Notifications = register(reg, m.Notifications, &errs)
	m.StaleNotifications = register(reg, m.StaleNotifications, &errs)
	m.UnknownTokens = register(reg, m.UnknownTokens, &errs)

	return m, errors.Join(errs...)
}

// MustNewMetrics is like NewMetrics but panics on registration errors.
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	m, err := NewMetrics(reg)
	if err != nil {
		panic(err)
	}
	return m
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C, errs *[]error) C {
	err := reg.Register(c)
	if err == nil {
		return c
	}

	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(C); ok {
			return existing
		}
	}

	*errs = append(*errs, err)
	return c
}

// Registered records a new observation.
func (m *Metrics) Registered() {
	if m == nil {
		return
	}
	m.Registrations.Inc()
	m.ActiveObservations.Inc()
}

// Duplicate records a registration skipped by deduplication.
func (m *Metrics) Duplicate() {
	if m == nil {
		return
	}
	m.DuplicateRegistrations.Inc()
}

// Removed records an observation leaving a registry. skipped reports that the
// observed object was gone and no deregistration call was made.
func (m *Metrics) Removed(skipped bool) {
	if m == nil {
		return
	}
	m.Deregistrations.Inc()
	m.ActiveObservations.Dec()
	if skipped {
		m.SkippedDeregistrations.Inc()
	}
}

// Notified records a routed notification.
func (m *Metrics) Notified(policy, mode string) {
	if m == nil {
		return
	}
	m.Notifications.WithLabelValues(policy, mode).Inc()
}

// Stale records a scheduled callback dropped after its registry closed.
func (m *Metrics) Stale() {
	if m == nil {
		return
	}
	m.StaleNotifications.Inc()
}

// UnknownToken records a notification that matched no observation.
func (m *Metrics) UnknownToken() {
	if m == nil {
		return
	}
	m.UnknownTokens.Inc()
}
