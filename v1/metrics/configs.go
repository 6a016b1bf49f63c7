package metrics

// Default port for metrics server if none is specified.
const DefaultMetricsAddress = ":9090"

// Config defines the configuration structure for the Prometheus metrics server.
type Config struct {
	// Address determines the network address where the Prometheus
	// metrics HTTP server listens, for example ":9090" or "127.0.0.1:9100".
	//
	// Default: ":9090"
	Address string `yaml:"address" envconfig:"METRICS_ADDRESS"`

	// EnableDefaultCollectors registers the Go runtime, process and build
	// info collectors.
	EnableDefaultCollectors bool `yaml:"enable_default_collectors" envconfig:"METRICS_ENABLE_DEFAULT_COLLECTORS"`

	// Namespace prefixes every metric name registered by this package.
	//
	// Example:
	//   Namespace: "inventory"
	//   → "inventory_sql_queries_total"
	Namespace string `yaml:"namespace" envconfig:"METRICS_NAMESPACE"`

	// ServiceName is attached to every metric as the "service" label.
	ServiceName string `yaml:"service_name" envconfig:"METRICS_SERVICE_NAME"`
}
