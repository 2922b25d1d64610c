package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/obsidianstack/ntfy-bridge/server/internal/api"
	"github.com/obsidianstack/ntfy-bridge/server/internal/auth"
	"github.com/obsidianstack/ntfy-bridge/server/internal/config"
	"github.com/obsidianstack/ntfy-bridge/server/internal/metrics"
	"github.com/obsidianstack/ntfy-bridge/server/internal/ntfy"
)

func main() {
	configPath := flag.String("config", "", "optional path to a YAML config file; NTFY_* environment variables override it")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	slog.Info("ntfy-bridge starting", "config", *configPath)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"ntfy_endpoint", cfg.Ntfy.Endpoint(),
		"ntfy_basic_auth", cfg.Ntfy.HasBasicAuth(),
		"ntfy_timeout", cfg.Ntfy.Timeout,
		"auth_mode", cfg.Auth.Mode,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	m := metrics.New()

	// Dispatcher — one ntfy publish per alert, sequential within an event.
	dispatcher := ntfy.NewDispatcher(cfg.Ntfy, ntfy.Options{Logger: logger, Recorder: m})

	handler := api.New(dispatcher, api.Options{
		Auth:    auth.Middleware(cfg.Auth.Mode, cfg.Auth.Token()),
		Metrics: m,
		Logger:  logger,
	})

	httpSrv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		slog.Info("HTTP server listening", "addr", cfg.ListenAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server stopped", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("ntfy-bridge shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown", "err", err)
	}
}
