package services

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the application-level Prometheus collectors. HTTP-level
// metrics come from the fiberprometheus middleware; these cover domain
// operations.
type Metrics struct {
	logins          *prometheus.CounterVec
	roiComputations *prometheus.CounterVec
	batchDeletions  *prometheus.CounterVec
	ticketsOpened   prometheus.Counter
	timeEntryHours  prometheus.Counter
}

var (
	metricsOnce sync.Once
	metrics     *Metrics
)

// GetMetrics returns the process-wide metrics registry, creating it on first
// use. promauto registers with the default registry, so this must only run
// once.
func GetMetrics() *Metrics {
	metricsOnce.Do(func() {
		metrics = &Metrics{
			logins: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "rpa_manager_logins_total",
				Help: "Login attempts by outcome",
			}, []string{"outcome"}),
			roiComputations: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "rpa_manager_roi_computations_total",
				Help: "ROI computations by outcome",
			}, []string{"outcome"}),
			batchDeletions: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "rpa_manager_milestone_batch_deletions_total",
				Help: "Milestone batch deletions by outcome",
			}, []string{"outcome"}),
			ticketsOpened: promauto.NewCounter(prometheus.CounterOpts{
				Name: "rpa_manager_tickets_opened_total",
				Help: "Support tickets opened",
			}),
			timeEntryHours: promauto.NewCounter(prometheus.CounterOpts{
				Name: "rpa_manager_time_entry_hours_total",
				Help: "Hours logged across all time entries",
			}),
		}
	})
	return metrics
}

// RecordLogin counts a login attempt
func (m *Metrics) RecordLogin(outcome string) {
	m.logins.WithLabelValues(outcome).Inc()
}

// RecordROIComputation counts an ROI computation
func (m *Metrics) RecordROIComputation(outcome string) {
	m.roiComputations.WithLabelValues(outcome).Inc()
}

// RecordBatchDeletion counts a milestone batch deletion
func (m *Metrics) RecordBatchDeletion(outcome string) {
	m.batchDeletions.WithLabelValues(outcome).Inc()
}

// RecordTicketOpened counts a new support ticket
func (m *Metrics) RecordTicketOpened() {
	m.ticketsOpened.Inc()
}

// RecordTimeEntry accumulates logged hours
func (m *Metrics) RecordTimeEntry(hours float64) {
	m.timeEntryHours.Add(hours)
}
