package database

import (
	"context"
	"time"
)

// DefaultMonitorInterval is the check interval Monitor uses when given a
// non-positive one.
const DefaultMonitorInterval = 10 * time.Second

type monitored interface {
	Ping(ctx context.Context) error
	Reconnect(ctx context.Context) error
}

// Monitor checks conn every interval and reconnects it when the check
// fails. A check is skipped while another goroutine holds the connection's
// advisory lock or a transaction is open. Monitor returns when ctx is
// done; it returns at once for connections that cannot be pinged.
func Monitor(ctx context.Context, conn Connection, interval time.Duration) {
	m, ok := conn.(monitored)
	if !ok {
		return
	}
	if interval <= 0 {
		interval = DefaultMonitorInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			check(ctx, conn, m)
		}
	}
}

func check(ctx context.Context, conn Connection, m monitored) {
	if !conn.TryLock() {
		return
	}
	defer conn.Unlock()

	if conn.Refs() == 0 || conn.Depth() > 0 {
		return
	}
	if err := m.Ping(ctx); err != nil {
		_ = m.Reconnect(ctx)
	}
}
