// Package metrics exposes database activity as Prometheus metrics.
//
// *Metrics implements database.Observer. Attach it to a connection and it
// records every executed statement and every Perform call:
//
//	m := metrics.NewMetrics(metrics.Config{
//		Address:     ":9090",
//		Namespace:   "inventory",
//		ServiceName: "inventory-api",
//	})
//	conn, err := database.Connect(ctx, "mysql://app@db/shop", database.WithObserver(m))
//
// # Metrics
//
//   - sql_queries_total{variant,status}: executed statements; status is "ok"
//     or the error kind ("deadlock", "engine", ...)
//   - sql_query_duration_seconds{variant}: statement latency
//   - sql_transactions_total{variant,outcome,status}: Perform calls by the
//     outcome of the last attempt
//   - sql_transaction_attempts{variant}: attempts per Perform call
//   - sql_transaction_duration_seconds{variant}: Perform latency including
//     retries
//
// Every metric carries service="<ServiceName>" and the names are prefixed
// with Namespace when it is set. CreateCounter, CreateHistogram and
// CreateGauge register application metrics on the same registry.
//
// # FX Module Integration
//
// FXModule provides *Metrics as database.Observer and runs the HTTP
// server between start and stop:
//
//	app := fx.New(
//		logger.FXModule,
//		metrics.FXModule,
//		postgres.FXModule,
//		fx.Provide(func() metrics.Config { return metrics.Config{Address: ":9090"} }),
//	)
//
// # Configuration
//
//	METRICS_ADDRESS=:9090
//	METRICS_ENABLE_DEFAULT_COLLECTORS=true
//	METRICS_NAMESPACE=inventory
//	METRICS_SERVICE_NAME=inventory-api
package metrics
