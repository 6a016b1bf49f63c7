package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus registry, the HTTP server exposing it and
// the database collectors fed through the database.Observer methods.
type Metrics struct {
	// Server serves the registry on /metrics.
	Server *http.Server

	// Registry is the Prometheus registry where all metrics are registered.
	// Each service keeps its own registry to avoid name collisions.
	Registry *prometheus.Registry

	namespace  string
	registerer prometheus.Registerer

	queriesTotal        *prometheus.CounterVec
	queryDuration       *prometheus.HistogramVec
	transactionsTotal   *prometheus.CounterVec
	transactionAttempts *prometheus.HistogramVec
	transactionDuration *prometheus.HistogramVec
}

// attemptBuckets covers perform loops from a single attempt to long
// retry storms.
var attemptBuckets = []float64{1, 2, 3, 5, 8, 13, 21}

// NewMetrics sets up a dedicated registry with the database collectors,
// labels everything with service=cfg.ServiceName and builds the server
// for the /metrics endpoint. The server is not started.
//
//	m := metrics.NewMetrics(metrics.Config{
//	    Address:     ":9090",
//	    ServiceName: "inventory",
//	})
//	conn, err := database.Connect(ctx, uri, database.WithObserver(m))
//	go m.Server.ListenAndServe()
func NewMetrics(cfg Config) *Metrics {
	registry := prometheus.NewRegistry()

	// every metric gets service="<cfg.ServiceName>"
	wrappedRegistry := prometheus.WrapRegistererWith(
		prometheus.Labels{"service": cfg.ServiceName},
		registry,
	)

	m := &Metrics{
		Registry:   registry,
		namespace:  cfg.Namespace,
		registerer: wrappedRegistry,
	}

	m.queriesTotal = createCounterVec(m.namespace, "sql_queries_total",
		"Total number of executed SQL statements", []string{"variant", "status"})
	m.queryDuration = createHistogramVec(m.namespace, "sql_query_duration_seconds",
		"Duration of SQL statements in seconds", []string{"variant"}, prometheus.DefBuckets)
	m.transactionsTotal = createCounterVec(m.namespace, "sql_transactions_total",
		"Total number of performed transactions by final outcome", []string{"variant", "outcome", "status"})
	m.transactionAttempts = createHistogramVec(m.namespace, "sql_transaction_attempts",
		"Attempts needed per performed transaction", []string{"variant"}, attemptBuckets)
	m.transactionDuration = createHistogramVec(m.namespace, "sql_transaction_duration_seconds",
		"Duration of performed transactions including retries", []string{"variant"}, prometheus.DefBuckets)

	wrappedRegistry.MustRegister(
		m.queriesTotal,
		m.queryDuration,
		m.transactionsTotal,
		m.transactionAttempts,
		m.transactionDuration,
	)

	if cfg.EnableDefaultCollectors {
		wrappedRegistry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			collectors.NewBuildInfoCollector(),
		)
	}

	address := cfg.Address
	if address == "" {
		address = DefaultMetricsAddress
	}
	m.Server = &http.Server{
		Addr:    address,
		Handler: m.Handler(),
	}
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))
	return mux
}
