package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	"unicode/utf8"

	"quicktalk/domain/event"
	"quicktalk/infrastructure/api"
	grpcserver "quicktalk/infrastructure/grpc/server"
	"quicktalk/infrastructure/ws"
	"quicktalk/moderation"
	"quicktalk/observability"
	"quicktalk/repositories"
	"quicktalk/runtime"
	"quicktalk/runtime/workers"
	"quicktalk/services"
	"quicktalk/session"

	"github.com/Netflix/go-env"
	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run wires every component, serves until SIGINT/SIGTERM, then shuts down in
// reverse order so deferred closes always run.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	es, err := env.EnvironToEnvSet(os.Environ())
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	config, err := loadConfig(es)
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Storage: Badger for records, Bluge for group names
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	writer, err := bluge.OpenWriter(bluge.DefaultConfig(config.IndexFilepath))
	if err != nil {
		return fmt.Errorf("search index opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing search index...")
		_ = writer.Close()
	}()

	chatRepository := repositories.NewChatRepository(db, log)
	messageRepository := repositories.NewMessageRepository(db, log)
	userRepository := repositories.NewUserRepository(db)
	chatIndex := repositories.NewChatIndex(writer, log)

	moderator, err := loadModerator(config, repositories.NewBlacklistRepository(db), log)
	if err != nil {
		return err
	}

	// 3. Realtime core
	registry := runtime.NewRegistry()
	lanes := runtime.NewLanes()
	monitoring := observability.NewMonitoringManager(log, registry, config.StatsInterval)
	telemetry := make(chan event.DomainEvent, config.TelemetryBufferSize)
	fanout := workers.NewEventFanout(log, registry, telemetry, config.SinkTimeout, monitoring)
	broadcaster := runtime.NewLocalBroadcaster(log, registry, fanout)
	membership := services.NewMembershipService(chatRepository)

	chatService := services.NewChatService(log, messageRepository, membership, broadcaster, lanes).
		WithModerator(moderator)
	managementService := services.NewChatManagementService(log,
		chatRepository, messageRepository, userRepository, chatIndex, lanes)
	authService := services.NewAuthService(userRepository, []byte(config.JWTSecret), config.AuthTokenDuration)
	userService := services.NewUserService(userRepository)

	// 4. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 5. Background workers
	healthServer := grpcserver.NewHealthServer(log, badgerCheck(db), config.HealthInterval)
	sup := workers.NewSupervisor(log).WithRestartDelay(config.RestartInterval)
	reporter := workers.NewReporterWorker(log, monitoring, telemetry, config.ReportInterval)
	sup.Add(fanout, monitoring, reporter, healthServer)
	supervisorDone := make(chan struct{})
	go func() {
		defer close(supervisorDone)
		sup.Run(ctx)
	}()

	// 6. Transports
	wsCfg := ws.DefaultConfig()
	wsCfg.MaxMessageSize = config.MaxMessageSize
	wsCfg.AllowedOrigins = config.AllowedOrigins
	wsHandler := ws.NewHandler(log, session.Deps{
		Log:         log,
		Membership:  membership,
		Broadcaster: broadcaster,
		Chats:       chatService,
		Observer:    monitoring,
		BufferSize:  config.ConnectionBufferSize,
	}, wsCfg)

	apiServer := api.NewServer(log, []byte(config.JWTSecret), authService, userService, managementService, chatService, monitoring, wsHandler)
	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	httpServer := &http.Server{
		Addr:              address,
		Handler:           apiServer.Routes(),
		ReadHeaderTimeout: config.ReadHeaderTimeout,
	}

	healthAddress := fmt.Sprintf("%s:%d", config.Host, config.HealthPort)
	healthListener, err := net.Listen("tcp", healthAddress)
	if err != nil {
		sup.Stop()
		<-supervisorDone
		return fmt.Errorf("failed to listen on %s: %w", healthAddress, err)
	}

	// Use an error channel to capture Serve() issues
	errChan := make(chan error, 2)
	go func() {
		log.Info("Starting HTTP server", "address", address, "at", time.Now().UTC())
		if err := httpServer.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()
	go func() {
		if err := healthServer.Serve(healthListener); err != nil {
			errChan <- fmt.Errorf("gRPC health server error: %w", err)
		}
	}()

	// 7. Wait for Stop or Error
	var serveErr error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case serveErr = <-errChan:
		log.Error("Server failed, shutting down", "error", serveErr)
	}

	// 8. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP server shutdown incomplete", "error", err)
	}
	wsHandler.Shutdown()
	healthServer.Stop()
	sup.Stop()
	<-supervisorDone
	log.Info("Program stopped cleanly")

	return serveErr
}

// loadModerator merges the configured words into the persisted blacklist and
// builds the censoring automaton. A nil moderator disables censoring.
func loadModerator(config Config, blacklist *repositories.BlacklistRepository, log *slog.Logger) (*moderation.Moderator, error) {
	if len(config.BlacklistWords) > 0 {
		if err := blacklist.Add(config.BlacklistWords...); err != nil {
			return nil, fmt.Errorf("blacklist update failed: %w", err)
		}
	}
	words, err := blacklist.Words()
	if err != nil {
		return nil, fmt.Errorf("blacklist loading failed: %w", err)
	}
	if len(words) == 0 {
		return nil, nil
	}
	char, _ := utf8.DecodeRuneInString(config.ModerationCharReplacement)
	if char == utf8.RuneError {
		char = '*'
	}
	moderator, err := moderation.NewModerator(words, char, log)
	if err != nil {
		return nil, fmt.Errorf("moderator initialization failed: %w", err)
	}
	log.Info("Censoring enabled", "words", len(words))
	return moderator, nil
}

func badgerCheck(db *badger.DB) grpcserver.Check {
	return func(context.Context) error {
		if db.IsClosed() {
			return fmt.Errorf("badger is closed")
		}
		return db.View(func(*badger.Txn) error { return nil })
	}
}
