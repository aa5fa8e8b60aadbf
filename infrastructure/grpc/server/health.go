package server

import (
	"context"
	"log/slog"
	"net"
	"time"

	"quicktalk/contract"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ChatService is the name the chat core reports its health under.
const ChatService = "quicktalk.Chat"

var _ contract.Worker = (*HealthServer)(nil)

// Check reports whether a dependency of the chat core is usable.
type Check func(ctx context.Context) error

// HealthServer serves grpc.health.v1.Health on its own listener.
// Run keeps the reported status in line with the check.
type HealthServer struct {
	log      *slog.Logger
	server   *grpc.Server
	health   *health.Server
	check    Check
	interval time.Duration
}

func NewHealthServer(log *slog.Logger, check Check, interval time.Duration) *HealthServer {
	h := &HealthServer{
		log:      log,
		server:   grpc.NewServer(),
		health:   health.NewServer(),
		check:    check,
		interval: interval,
	}
	healthpb.RegisterHealthServer(h.server, h.health)
	h.health.SetServingStatus(ChatService, healthpb.HealthCheckResponse_NOT_SERVING)
	return h
}

func (h *HealthServer) Serve(listener net.Listener) error {
	h.log.Info("Starting gRPC health server", "address", listener.Addr().String())
	if err := h.server.Serve(listener); err != nil && err != grpc.ErrServerStopped {
		return err
	}
	return nil
}

// Run checks on every tick until ctx is done.
func (h *HealthServer) Run(ctx context.Context) error {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	h.refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			h.refresh(ctx)
		}
	}
}

func (h *HealthServer) refresh(ctx context.Context) {
	status := healthpb.HealthCheckResponse_SERVING
	if h.check != nil {
		if err := h.check(ctx); err != nil {
			h.log.Warn("Health check failed", "error", err)
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	h.health.SetServingStatus("", status)
	h.health.SetServingStatus(ChatService, status)
}

// Stop reports NOT_SERVING to watchers, then drains the server.
func (h *HealthServer) Stop() {
	h.health.Shutdown()
	h.server.GracefulStop()
}
