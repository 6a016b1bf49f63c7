package database

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestUnconnectedConnection(t *testing.T) {
	engine := &fakeEngine{name: "fake"}
	conn := engine.Create()
	ctx := context.Background()

	err := conn.Execute(ctx, "SELECT 1")
	assert.ErrorIs(t, err, ErrNotConnected)
	assert.Equal(t, StateNotConnected, conn.SQLState())
	assert.ErrorIs(t, conn.Begin(ctx, TxDefault), ErrNotConnected)
	assert.Equal(t, 0, conn.Depth())
}

func TestLastErrorTracksFailures(t *testing.T) {
	conn := newFakeConn()
	ctx := context.Background()
	conn.link.hook = func(query string) error {
		if query == "BAD" {
			return errors.New("near \"BAD\": syntax error")
		}
		return nil
	}

	assert.Equal(t, StateOK, conn.SQLState())
	assert.Equal(t, "", conn.ErrorMessage())
	assert.NoError(t, conn.LastError())

	require.Error(t, conn.Execute(ctx, "BAD"))
	assert.Equal(t, StateGeneral, conn.SQLState())
	assert.Equal(t, `near "BAD": syntax error`, conn.ErrorMessage())

	// a later success leaves the record alone
	require.NoError(t, conn.Execute(ctx, "GOOD"))
	assert.Equal(t, StateGeneral, conn.SQLState())
}

func TestCallbacksAreInvoked(t *testing.T) {
	conn := newFakeConn()
	ctx := context.Background()
	conn.link.hook = func(query string) error {
		if query == "BAD" {
			return errors.New("failed")
		}
		return nil
	}

	var queries, errs, notices []string
	conn.SetQueryLog(func(c Connection, q string) { queries = append(queries, q) })
	conn.SetErrorLog(func(c Connection, sqlstate, message string) { errs = append(errs, sqlstate+" "+message) })
	conn.SetNoticeLog(func(c Connection, message string) { notices = append(notices, message) })

	_ = conn.Execute(ctx, "GOOD")
	_ = conn.Execute(ctx, "BAD")
	conn.Notice("relation already exists, skipping")

	assert.Equal(t, []string{"GOOD", "BAD"}, queries)
	assert.Equal(t, []string{"HY000 failed"}, errs)
	assert.Equal(t, []string{"relation already exists, skipping"}, notices)
}

func TestLoggerReceivesEvents(t *testing.T) {
	ctrl := gomock.NewController(t)
	logger := NewMockLogger(ctrl)
	conn := newFakeConn()
	conn.SetLogger(logger)
	conn.link.hook = func(query string) error {
		if query == "BAD" {
			return errors.New("failed")
		}
		return nil
	}

	logger.EXPECT().Debug("executing statement", nil, gomock.Any()).Times(2)
	logger.EXPECT().Error("database operation failed", gomock.Any(), gomock.Any()).Times(1)
	logger.EXPECT().Info("database notice", nil, gomock.Any()).Times(1)
	logger.EXPECT().Debug("database connection closed", nil, gomock.Any()).Times(1)

	_ = conn.Execute(context.Background(), "GOOD")
	_ = conn.Execute(context.Background(), "BAD")
	conn.Notice("hint")
	require.NoError(t, conn.Disconnect())
}

func TestRetainAndDisconnect(t *testing.T) {
	conn := newFakeConn()

	same := conn.Retain()
	assert.Same(t, Connection(conn), same)
	assert.Equal(t, int32(2), conn.Refs())

	require.NoError(t, conn.Disconnect())
	assert.Equal(t, 0, conn.link.closed)
	assert.True(t, conn.Connected())

	require.NoError(t, conn.Disconnect())
	assert.Equal(t, 1, conn.link.closed)
	assert.False(t, conn.Connected())

	assert.ErrorIs(t, conn.Disconnect(), ErrReleased)
	assert.Equal(t, 1, conn.link.closed)
}

func TestAdvisoryLock(t *testing.T) {
	conn := newFakeConn()

	conn.Lock()
	assert.False(t, conn.TryLock())
	conn.Unlock()
	assert.True(t, conn.TryLock())
	conn.Unlock()
}

func TestObserversFanOut(t *testing.T) {
	a, b := &recordingObserver{}, &recordingObserver{}
	conn := newFakeConn()
	conn.SetObserver(Observers(a, nil, b))

	require.NoError(t, conn.Execute(context.Background(), "SELECT 1"))
	assert.Len(t, a.queries, 1)
	assert.Len(t, b.queries, 1)
	assert.Equal(t, "SELECT 1", a.queries[0].Statement)

	assert.Same(t, a, Observers(nil, a))
}
