// Package logger provides structured logging on top of zap.
//
// *Logger satisfies database.Logger. Attach it to a connection with
// database.WithLogger, or let FXModule provide it to database.FXModule:
//
//	log := logger.NewLoggerClient(logger.Config{
//		Level:         logger.Debug,
//		ServiceName:   "inventory",
//		EnableTracing: true,
//	})
//
//	conn, err := database.Connect(ctx, "pgsql://app@db/inventory", database.WithLogger(log))
//
// At debug level every executed statement is logged with its "query" and
// "variant" fields; failures are logged at error level with "sqlstate".
//
// # Context-Aware Logging
//
// The *WithContext methods add "trace_id" and "span_id" when tracing is
// enabled and the context carries an OpenTelemetry span:
//
//	log.ErrorWithContext(ctx, "transfer failed", err, map[string]interface{}{
//		"attempts": 3,
//	})
//
// # Configuration
//
//	ZAP_LOGGER_LEVEL=debug          # debug, info, warning, error
//	LOGGER_SERVICE_NAME=inventory   # value of the "service" field
//	LOGGER_ENABLE_TRACING=true      # trace and span ids in context-aware logs
//
// All methods are safe for concurrent use.
package logger
