package engines

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/Aleph-Alpha/sqlstd/v1/database"
	"github.com/Aleph-Alpha/sqlstd/v1/logger"
	"github.com/Aleph-Alpha/sqlstd/v1/metrics"
	"github.com/Aleph-Alpha/sqlstd/v1/tracer"
)

func TestFullStack(t *testing.T) {
	var (
		conn database.Connection
		m    *metrics.Metrics
	)
	app := fxtest.New(t,
		fx.Supply(
			logger.Config{Level: logger.Warning},
			metrics.Config{Address: "127.0.0.1:0", ServiceName: "engines-test"},
			tracer.Config{ServiceName: "engines-test"},
			database.Config{URI: "sqlite://" + t.TempDir() + "/stack.db"},
		),
		logger.FXModule,
		metrics.FXModule,
		tracer.FXModule,
		database.FXModule,
		fx.Populate(&conn, &m),
	)
	app.RequireStart()

	ctx := context.Background()
	require.NoError(t, database.Perform(ctx, conn, func(ctx context.Context, c database.Connection) database.Outcome {
		if err := c.Execute(ctx, "CREATE TABLE t (id INTEGER)"); err != nil {
			return database.Fail
		}
		return database.Commit
	}, 3, database.TxDefault))

	count, err := testutil.GatherAndCount(m.Registry, "sql_transactions_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	app.RequireStop()
	assert.False(t, conn.(interface{ Connected() bool }).Connected())
}
