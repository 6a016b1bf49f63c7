package tracer

// Config configures the tracer provider.
type Config struct {
	// ServiceName is reported as service.name on every span.
	ServiceName string `yaml:"service_name" envconfig:"TRACER_SERVICE_NAME"`

	// AppEnv is reported as deployment.environment.
	AppEnv string `yaml:"app_env" envconfig:"APP_ENV"`

	// EnableExport sends spans to an OTLP HTTP collector configured by the
	// standard OTEL_EXPORTER_OTLP_* environment variables.
	EnableExport bool `yaml:"enable_export" envconfig:"TRACER_ENABLE_EXPORT"`
}
