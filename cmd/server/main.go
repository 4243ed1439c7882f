package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/ludo-backend/internal/broadcast"
	"github.com/DoyleJ11/ludo-backend/internal/config"
	"github.com/DoyleJ11/ludo-backend/internal/history"
	"github.com/DoyleJ11/ludo-backend/internal/httpapi"
	"github.com/DoyleJ11/ludo-backend/internal/hub"
	"github.com/DoyleJ11/ludo-backend/internal/lobby"
	"github.com/DoyleJ11/ludo-backend/internal/logging"
	"github.com/DoyleJ11/ludo-backend/internal/session"
	"github.com/DoyleJ11/ludo-backend/internal/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogDev)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	layout, err := cfg.Layout()
	if err != nil {
		return err
	}

	fan := broadcast.NewFanout(cfg.SubscriberBuffer, logger)
	defer fan.Close()

	lobbyCfg := lobby.Config{
		Session:   session.Options{Layout: layout, Rules: cfg.Rules},
		Broadcast: fan,
		Logger:    logger,
	}
	deps := httpapi.Deps{
		Fanout:    fan,
		Logger:    logger,
		WSOptions: ws.Options{OriginPatterns: cfg.OriginPatterns},
	}

	if cfg.DatabaseURL != "" {
		store, err := history.Open(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer store.Close()
		lobbyCfg.Recorder = store
		deps.History = store
		logger.Info("match archive enabled")
	}

	h := hub.NewHub(ctx, lobbyCfg)
	deps.Hub = h

	// Build the router *with* the hub injected
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpapi.SetupRoutes(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err = srv.Shutdown(shutdownCtx)

	select {
	case h.Inbox() <- hub.ShutdownHub{}:
	case <-h.Done():
	}
	return err
}
