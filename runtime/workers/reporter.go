package workers

import (
	"context"
	"log/slog"
	"time"

	"quicktalk/contract"
	"quicktalk/domain/event"
	"quicktalk/observability"
)

var _ contract.Worker = (*ReporterWorker)(nil)

// backlogWarnRatio is the telemetry fill level above which the reporter warns.
const backlogWarnRatio = 0.8

type StatsSource interface {
	GetLatest() observability.MonitoringStats
}

// ReporterWorker logs a summary of the chat metrics on every tick, together
// with the backlog of the telemetry channel feeding the permanent sinks.
type ReporterWorker struct {
	log       *slog.Logger
	stats     StatsSource
	telemetry chan event.DomainEvent
	interval  time.Duration
}

func NewReporterWorker(log *slog.Logger, stats StatsSource, telemetry chan event.DomainEvent, interval time.Duration) *ReporterWorker {
	return &ReporterWorker{log: log, stats: stats, telemetry: telemetry, interval: interval}
}

// Run starts the reporting loop until context cancellation
func (w *ReporterWorker) Run(ctx context.Context) error {
	startTime := time.Now()
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.report(startTime)
			w.log.Debug("Reporter stopped")
			return nil
		case <-ticker.C:
			w.report(startTime)
		}
	}
}

func (w *ReporterWorker) report(startTime time.Time) {
	stats := w.stats.GetLatest()
	w.log.Info("Chat stats",
		"uptime", time.Since(startTime).Round(time.Second).String(),
		"live_connections", stats.LiveConnections,
		"messages_published", stats.MessagesPublished,
		"messages_per_second", stats.MessagesPerSecond,
		"frames_dropped", stats.FramesDropped,
		"slow_consumers", stats.SlowConsumers,
		"mem_mb", stats.AllocMemMb,
	)

	if w.telemetry == nil || cap(w.telemetry) == 0 {
		return
	}
	length, capacity := len(w.telemetry), cap(w.telemetry)
	if float64(length) >= backlogWarnRatio*float64(capacity) {
		w.log.Warn("Telemetry channel nearly full", "length", length, "capacity", capacity)
	}
}
