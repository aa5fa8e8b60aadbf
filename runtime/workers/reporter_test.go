package workers

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"quicktalk/domain/event"
	"quicktalk/observability"

	"github.com/stretchr/testify/require"
)

type staticStats struct{}

func (staticStats) GetLatest() observability.MonitoringStats {
	return observability.MonitoringStats{LiveConnections: 7, MessagesPublished: 12}
}

// syncBuffer guards the log output shared with the worker goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestReporterWorker_Logs_Stats_And_Backlog(t *testing.T) {
	req := require.New(t)
	var out syncBuffer
	log := slog.New(slog.NewTextHandler(&out, &slog.HandlerOptions{Level: slog.LevelDebug}))

	// Given a telemetry channel almost full
	telemetry := make(chan event.DomainEvent, 4)
	for i := 0; i < 4; i++ {
		telemetry <- event.MessagePosted{}
	}
	w := NewReporterWorker(log, staticStats{}, telemetry, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Then the stats and the backlog are reported
	req.Eventually(func() bool {
		logged := out.String()
		return strings.Contains(logged, "live_connections=7") &&
			strings.Contains(logged, "Telemetry channel nearly full")
	}, time.Second, 10*time.Millisecond)

	cancel()
	req.NoError(<-done)
}
