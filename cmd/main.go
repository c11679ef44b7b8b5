package main

import (
	"context"
	goerrors "errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"talky/infrastructure/summarizer"
	"talky/infrastructure/ws"
	"talky/internal"
	"talky/moderation"
	"talky/observability"
	"talky/runtime"
	"talky/runtime/workers"
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run wires every component and blocks until a signal or a server failure.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if err := internal.Validate(config); err != nil {
		return err
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Runtime
	sup := workers.NewSupervisor(log, config.RestartInterval)
	registry := runtime.NewRegistry()
	monitoring := observability.NewMonitoringManager()
	client := summarizer.NewClient(log, config.SummarizerURL, config.SummarizerTimeout)

	orchestrator := runtime.NewOrchestrator(log, sup, registry, client, monitoring, runtime.Options{
		RollingLogSize:   config.RollingLogSize,
		SummaryWorkers:   config.SummaryWorkers,
		SummaryQueueSize: config.SummaryQueueSize,
		SummaryTimeout:   config.SummarizerTimeout,
		HealthInterval:   config.HealthInterval,
	})

	if config.ModerationEnabled {
		moderator, err := buildModerator(config, log)
		if err != nil {
			return err
		}
		orchestrator.WithCensor(moderator)
	}

	// 3. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	orchestrator.Start(ctx)

	// 4. WebSocket server
	chatServer := ws.NewChatServer(log, orchestrator, ws.Options{
		AllowedOrigins:       internal.SplitOrigins(config.AllowedOrigins),
		ConnectionBufferSize: config.ConnectionBufferSize,
		DeliveryTimeout:      config.DeliveryTimeout,
		MaxMessageSize:       config.MaxMessageSize,
		ProtocolErrors:       config.ProtocolErrors,
	})
	address := net.JoinHostPort(config.Host, strconv.Itoa(config.Port))
	httpServer := &http.Server{
		Addr:              address,
		Handler:           chatServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting chat server", "address", address, "summarizer", config.SummarizerURL)
		if err := httpServer.ListenAndServe(); err != nil && !goerrors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 5. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		orchestrator.Stop()
		return err
	}

	// 6. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	chatServer.Shutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP shutdown incomplete", "error", err)
	}
	orchestrator.Stop()
	log.Info("Program stopped cleanly")

	return nil
}

func buildModerator(config Config, log *slog.Logger) (*moderation.Moderator, error) {
	charReplacement, err := internal.CharacterRune(config.CharacterReplacement)
	if err != nil {
		return nil, err
	}
	data, err := moderation.DefaultLoader().LoadAll("censored")
	if err != nil {
		return nil, fmt.Errorf("loading censored words: %w", err)
	}
	moderator, err := moderation.NewModerator(data.Words, charReplacement, log)
	if err != nil {
		return nil, fmt.Errorf("building moderator: %w", err)
	}
	log.Info("Moderation enabled", "words", len(data.Words), "languages", data.Languages)
	return moderator, nil
}
