package observability

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"quicktalk/contract"
	"quicktalk/domain/event"

	"github.com/shirou/gopsutil/process"
)

var _ contract.EventSink = (*MonitoringManager)(nil)

// MonitoringStats is the snapshot served on /debug/stats.
type MonitoringStats struct {
	// --- CHAT METRICS ---
	MessagesPublished uint64  `json:"messages_published"`
	MessagesPerSecond float64 `json:"messages_per_second"`
	FramesDropped     uint64  `json:"frames_dropped"`
	SlowConsumers     uint64  `json:"slow_consumers"`
	SessionsOpened    uint64  `json:"sessions_opened"`
	SessionsClosed    uint64  `json:"sessions_closed"`
	LiveConnections   int     `json:"live_connections"`

	// --- SYSTEM METRICS ---
	AllocMemMb  uint64  `json:"alloc_mem_mb"`
	NumGC       uint32  `json:"num_gc"`
	Goroutines  int     `json:"goroutines"`
	RSSBytes    uint64  `json:"rss_bytes"`
	CPUPercent  float64 `json:"cpu_percent"`
	ProcStatus  string  `json:"proc_status"`
	LastUpdated string  `json:"last_updated"`
}

// ConnectionCounter is satisfied by the connection registry.
type ConnectionCounter interface {
	Count() int
}

// MonitoringManager aggregates the chat counters.
// Counters are bumped with atomics from the hot path, the snapshot is rebuilt
// by Run on every tick.
type MonitoringManager struct {
	log         *slog.Logger
	connections ConnectionCounter
	interval    time.Duration

	mu          sync.RWMutex
	latestStats MonitoringStats
	lastCheck   time.Time
	lastCount   uint64

	messagesPublished atomic.Uint64
	framesDropped     atomic.Uint64
	slowConsumers     atomic.Uint64
	sessionsOpened    atomic.Uint64
	sessionsClosed    atomic.Uint64
}

func NewMonitoringManager(log *slog.Logger, connections ConnectionCounter, interval time.Duration) *MonitoringManager {
	return &MonitoringManager{
		log:         log,
		connections: connections,
		interval:    interval,
		lastCheck:   time.Now(),
	}
}

// Consume counts the events published on every chat.
// It is registered as a permanent sink of the fanout.
func (mm *MonitoringManager) Consume(_ context.Context, e event.DomainEvent) error {
	if _, ok := e.(event.MessagePosted); ok {
		mm.messagesPublished.Add(1)
	}
	return nil
}

func (mm *MonitoringManager) IncrFramesDropped() {
	mm.framesDropped.Add(1)
}

func (mm *MonitoringManager) IncrSlowConsumers() {
	mm.slowConsumers.Add(1)
}

func (mm *MonitoringManager) IncrSessionsOpened() {
	mm.sessionsOpened.Add(1)
}

func (mm *MonitoringManager) IncrSessionsClosed() {
	mm.sessionsClosed.Add(1)
}

// Run refreshes the snapshot until the context is cancelled.
func (mm *MonitoringManager) Run(ctx context.Context) error {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		mm.log.Warn("Process stats unavailable", "error", err)
		proc = nil
	}

	mm.updateStats(proc)
	ticker := time.NewTicker(mm.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			mm.log.Debug("Monitoring manager stopped")
			return nil
		case <-ticker.C:
			mm.updateStats(proc)
		}
	}
}

func (mm *MonitoringManager) updateStats(proc *process.Process) {
	mm.mu.Lock()
	defer mm.mu.Unlock()

	now := time.Now()
	published := mm.messagesPublished.Load()
	if duration := now.Sub(mm.lastCheck).Seconds(); duration > 0 {
		mm.latestStats.MessagesPerSecond = float64(published-mm.lastCount) / duration
	}
	mm.lastCheck = now
	mm.lastCount = published

	mm.latestStats.MessagesPublished = published
	mm.latestStats.FramesDropped = mm.framesDropped.Load()
	mm.latestStats.SlowConsumers = mm.slowConsumers.Load()
	mm.latestStats.SessionsOpened = mm.sessionsOpened.Load()
	mm.latestStats.SessionsClosed = mm.sessionsClosed.Load()
	if mm.connections != nil {
		mm.latestStats.LiveConnections = mm.connections.Count()
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	mm.latestStats.AllocMemMb = m.Alloc / 1024 / 1024
	mm.latestStats.NumGC = m.NumGC
	mm.latestStats.Goroutines = runtime.NumGoroutine()

	if proc != nil {
		if rss, cpu, status, err := selfStats(proc); err != nil {
			mm.log.Debug("Failed to collect self stats", "error", err)
		} else {
			mm.latestStats.RSSBytes = rss
			mm.latestStats.CPUPercent = cpu
			mm.latestStats.ProcStatus = status
		}
	}
	mm.latestStats.LastUpdated = now.UTC().Format(time.RFC3339)

	mm.log.Debug("Stats updated",
		"messages_published", mm.latestStats.MessagesPublished,
		"live_connections", mm.latestStats.LiveConnections,
		"mem_mb", mm.latestStats.AllocMemMb,
	)
}

// selfStats reads memory, cpu and status of the server process.
func selfStats(p *process.Process) (uint64, float64, string, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, "", err
	}
	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return 0, 0, "", err
	}
	status, err := p.Status()
	if err != nil {
		return 0, 0, "", err
	}
	return memInfo.RSS, cpuPercent, status, nil
}

// GetLatest returns the last snapshot, counters are read live.
func (mm *MonitoringManager) GetLatest() MonitoringStats {
	mm.mu.RLock()
	stats := mm.latestStats
	mm.mu.RUnlock()

	stats.MessagesPublished = mm.messagesPublished.Load()
	stats.FramesDropped = mm.framesDropped.Load()
	stats.SlowConsumers = mm.slowConsumers.Load()
	stats.SessionsOpened = mm.sessionsOpened.Load()
	stats.SessionsClosed = mm.sessionsClosed.Load()
	if mm.connections != nil {
		stats.LiveConnections = mm.connections.Count()
	}
	return stats
}
