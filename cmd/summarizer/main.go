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
	"talky/internal"
	"talky/repositories"
	"talky/summarizer"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Summarizer terminated with error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if err := internal.Validate(config); err != nil {
		return err
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// Empty path keeps the cache in memory only
	options := badger.DefaultOptions(config.BadgerFilepath).WithLoggingLevel(badger.WARNING)
	if config.BadgerFilepath == "" {
		options = options.WithInMemory(true)
	}
	db, err := badger.Open(options)
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	repo := repositories.NewSummaryRepository(db, log, config.CacheTTL)
	server := summarizer.NewServer(log, summarizer.NewService(log, repo), config.AllowedOrigin, config.MaxMessages)

	mux := http.NewServeMux()
	mux.Handle("/", server.Handler())
	if log.Enabled(context.Background(), slog.LevelDebug) {
		mux.Handle("GET /inspect", internal.InspectHandler(repo))
		log.Debug("Summary cache inspector enabled", "endpoint", "/inspect")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	address := net.JoinHostPort(config.Host, strconv.Itoa(config.Port))
	httpServer := &http.Server{Addr: address, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting summarizer", "address", address, "in_memory", config.BadgerFilepath == "")
		if err := httpServer.ListenAndServe(); err != nil && !goerrors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
