package workers

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"quicktalk/contract"
	"quicktalk/errors"
)

const defaultRestartDelay = 200 * time.Millisecond

var _ contract.ISupervisor = (*Supervisor)(nil)

// Supervisor runs the background workers of the server (telemetry fanout,
// stats reporter) and keeps them alive.
// A worker returning nil is done for good, a worker returning an error or
// panicking is restarted after a short delay. Cancelling the parent context
// stops everything, Run returns once every worker goroutine is gone.
type Supervisor struct {
	mu           sync.Mutex
	cancel       context.CancelFunc
	wg           sync.WaitGroup
	log          *slog.Logger
	workers      []contract.Worker
	restartDelay time.Duration
}

func NewSupervisor(log *slog.Logger) *Supervisor {
	return &Supervisor{log: log, restartDelay: defaultRestartDelay}
}

// WithRestartDelay overrides the pause between a crash and the restart.
func (s *Supervisor) WithRestartDelay(delay time.Duration) *Supervisor {
	s.restartDelay = delay
	return s
}

// Run blocks until every worker stopped.
// Stop only cancels the workers started here, not the parent context.
func (s *Supervisor) Run(ctx context.Context) {
	supervisedCtx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	workers := append([]contract.Worker(nil), s.workers...)
	s.mu.Unlock()
	defer cancel()

	for _, worker := range workers {
		s.Start(supervisedCtx, worker)
	}
	s.wg.Wait()
}

func (s *Supervisor) Add(worker ...contract.Worker) contract.ISupervisor {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workers = append(s.workers, worker...)
	return s
}

// Start runs one worker in its own goroutine under supervision.
// A panic is recovered and turned into ErrWorkerPanic so that only this
// worker is restarted.
func (s *Supervisor) Start(ctx context.Context, worker contract.Worker) {
	s.wg.Add(1)
	workerName := contract.GetWorkerName(worker)

	go func() {
		defer s.wg.Done()

		for {
			if ctx.Err() != nil {
				s.log.Info("Stopping worker", "name", workerName)
				return
			}

			err := func() (err error) {
				defer func() {
					if r := recover(); r != nil {
						s.log.Error("Worker panicked", "name", workerName, "panic", r)
						err = errors.ErrWorkerPanic
					}
				}()
				return worker.Run(ctx)
			}()

			if err == nil {
				s.log.Info("Worker finished", "name", workerName)
				return
			}

			if ctx.Err() != nil {
				s.log.Info("Worker stopped (context canceled)", "name", workerName)
				return
			}

			s.log.Warn("Worker crashed, restarting", "name", workerName, "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.restartDelay):
			}
		}
	}()
}

// Stop cancels the workers, Run returns once they are all done.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}
