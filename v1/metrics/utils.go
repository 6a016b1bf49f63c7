package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Aleph-Alpha/sqlstd/v1/database"
)

const statusOK = "ok"

// ObserveQuery counts the statement and records its duration.
func (m *Metrics) ObserveQuery(event database.QueryEvent) {
	variant := event.Variant.String()
	m.queriesTotal.WithLabelValues(variant, status(event.Err)).Inc()
	m.queryDuration.WithLabelValues(variant).Observe(event.Duration.Seconds())
}

// ObserveTransaction counts the transaction by outcome and records its
// attempts and duration.
func (m *Metrics) ObserveTransaction(event database.TransactionEvent) {
	variant := event.Variant.String()
	m.transactionsTotal.WithLabelValues(variant, event.Outcome.String(), status(event.Err)).Inc()
	m.transactionAttempts.WithLabelValues(variant).Observe(float64(event.Attempts))
	m.transactionDuration.WithLabelValues(variant).Observe(event.Duration.Seconds())
}

// status is "ok" or the error kind, e.g. "deadlock".
func status(err error) string {
	if err == nil {
		return statusOK
	}
	if kind, ok := database.KindOf(err); ok {
		return kind.String()
	}
	return database.KindEngine.String()
}

// CreateCounter creates a new CounterVec metric and registers it.
func (m *Metrics) CreateCounter(name, help string, labels []string) *prometheus.CounterVec {
	counter := createCounterVec(m.namespace, name, help, labels)
	m.registerer.MustRegister(counter)
	return counter
}

// CreateHistogram creates a new HistogramVec metric and registers it.
func (m *Metrics) CreateHistogram(name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	hist := createHistogramVec(m.namespace, name, help, labels, buckets)
	m.registerer.MustRegister(hist)
	return hist
}

// CreateGauge creates a new GaugeVec metric and registers it.
func (m *Metrics) CreateGauge(name, help string, labels []string) *prometheus.GaugeVec {
	gauge := createGaugeVec(m.namespace, name, help, labels)
	m.registerer.MustRegister(gauge)
	return gauge
}

func createCounterVec(namespace, name, help string, labels []string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		},
		labels,
	)
}

func createHistogramVec(namespace, name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	return prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
			Buckets:   buckets,
		},
		labels,
	)
}

func createGaugeVec(namespace, name, help string, labels []string) *prometheus.GaugeVec {
	return prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		},
		labels,
	)
}
