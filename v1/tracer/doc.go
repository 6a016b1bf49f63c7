// Package tracer provides OpenTelemetry tracing for database work.
//
// *Tracer implements database.Observer: every statement a connection
// executes becomes a finished "sql.query" client span with db.system,
// db.statement and db.operation, and every Perform call becomes a
// "sql.transaction" span carrying the mode, the number of attempts and the
// final outcome. Failed operations get an error status and db.sqlstate.
//
//	tr := tracer.NewClient(tracer.Config{
//		ServiceName:  "inventory",
//		AppEnv:       "production",
//		EnableExport: true,
//	}, log)
//	defer tr.Shutdown(context.Background())
//
//	conn, err := database.Connect(ctx, "pgsql://app@db/inventory",
//		database.WithObserver(database.Observers(tr, m)))
//
// StartSpan, SetAttributes and RecordErrorOnSpan cover application spans;
// GetCarrier and SetCarrierOnContext move W3C trace context across process
// boundaries.
package tracer
