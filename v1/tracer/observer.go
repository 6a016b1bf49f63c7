package tracer

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	traceSpan "go.opentelemetry.io/otel/trace"

	"github.com/Aleph-Alpha/sqlstd/v1/database"
)

const (
	querySpanName       = "sql.query"
	transactionSpanName = "sql.transaction"
)

// ObserveQuery records one executed statement as a finished client span
// covering the statement's duration, parented to any span in the event's
// context.
func (t *Tracer) ObserveQuery(event database.QueryEvent) {
	attrs := []attribute.KeyValue{
		dbSystem(event.Variant),
		semconv.DBStatementKey.String(event.Statement),
	}
	if op := operation(event.Statement); op != "" {
		attrs = append(attrs, semconv.DBOperationKey.String(op))
	}
	t.record(event.Context, querySpanName, event.Duration, event.Err, attrs)
}

// ObserveTransaction records one Perform call, retries included, as a
// finished client span.
func (t *Tracer) ObserveTransaction(event database.TransactionEvent) {
	t.record(event.Context, transactionSpanName, event.Duration, event.Err, []attribute.KeyValue{
		dbSystem(event.Variant),
		attribute.String("db.transaction.mode", event.Mode.String()),
		attribute.Int("db.transaction.attempts", event.Attempts),
		attribute.String("db.transaction.outcome", event.Outcome.String()),
	})
}

func (t *Tracer) record(ctx context.Context, name string, duration time.Duration, err error, attrs []attribute.KeyValue) {
	if ctx == nil {
		ctx = context.Background()
	}
	end := time.Now()
	_, span := t.tracer.Tracer(instrumentationName).Start(ctx, name,
		traceSpan.WithSpanKind(traceSpan.SpanKindClient),
		traceSpan.WithTimestamp(end.Add(-duration)),
		traceSpan.WithAttributes(attrs...),
	)
	if err != nil {
		span.SetAttributes(attribute.String("db.sqlstate", database.SQLStateOf(err)))
		t.RecordErrorOnSpan(span, err)
	}
	span.End(traceSpan.WithTimestamp(end))
}

func dbSystem(v database.Variant) attribute.KeyValue {
	switch v {
	case database.VariantPostgres:
		return semconv.DBSystemPostgreSQL
	case database.VariantMySQL:
		return semconv.DBSystemMySQL
	case database.VariantSQLite:
		return semconv.DBSystemSqlite
	default:
		return semconv.DBSystemOtherSQL
	}
}

// operation is the statement's leading keyword, upper-cased.
func operation(statement string) string {
	fields := strings.Fields(statement)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToUpper(fields[0])
}
