package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/shopcart/internal/config"
	"github.com/nikolayk812/shopcart/internal/events"
	"github.com/nikolayk812/shopcart/internal/metrics"
	"github.com/nikolayk812/shopcart/internal/repository"
	"github.com/nikolayk812/shopcart/internal/server"
	"github.com/nikolayk812/shopcart/internal/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	poolCfg.MaxConns = int32(cfg.MaxConns)

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return err
	}
	logger.Info("connected to postgres")

	store, err := repository.NewStore(pool)
	if err != nil {
		return err
	}

	var publisher events.Publisher
	if cfg.RabbitURL != "" {
		rabbit, err := events.NewRabbitPublisher(cfg.RabbitURL, cfg.RabbitQueue)
		if err != nil {
			logger.Warn("rabbitmq unavailable, checkout events disabled", "error", err)
		} else {
			defer rabbit.Close()
			publisher = rabbit
			logger.Info("connected to rabbitmq", "queue", cfg.RabbitQueue)
		}
	}

	m := metrics.New("api")

	svc, err := service.New(store, publisher, m, logger)
	if err != nil {
		return err
	}

	handler := server.NewHandler(svc, logger, pool.Ping)
	router := server.NewRouter(handler, m)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
