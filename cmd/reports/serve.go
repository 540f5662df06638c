package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ffcsa/reports/internal/infrastructure/logger"
	"github.com/ffcsa/reports/internal/infrastructure/scheduler"
	"github.com/ffcsa/reports/internal/interfaces/http/handler"
	"github.com/ffcsa/reports/internal/interfaces/http/middleware"
	"github.com/ffcsa/reports/internal/interfaces/http/router"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the report scheduler and HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(ctx context.Context) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	log := a.logger
	log.Info("starting reports service",
		zap.String("app", a.cfg.App.Name),
		zap.String("env", a.cfg.App.Env),
		zap.String("port", a.cfg.App.Port),
	)

	cron, err := scheduler.NewCronScheduler(scheduler.Config{
		Enabled:       a.cfg.Scheduler.Enabled,
		RunAtHour:     a.cfg.Scheduler.RunAtHour,
		JobTimeout:    a.cfg.Scheduler.JobTimeout,
		RetryAttempts: a.cfg.Scheduler.RetryAttempts,
		RetryDelay:    a.cfg.Scheduler.RetryDelay,
	}, a.service, log)
	if err != nil {
		return err
	}
	if err := cron.Start(ctx); err != nil {
		return err
	}

	if a.cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		logger.RequestLog(log),
		logger.Recovery(log),
		middleware.CORS(),
	)

	r := router.NewRouter(engine,
		router.WithAPIVersion("v1"),
		router.WithStaticDir("/files", filepath.Join(a.cfg.Reports.OutputDir, "reports")),
	)
	r.Register(handler.NewSystemHandler(version))
	r.Register(handler.NewReportsHandler(a.service, a.runs, cron, log))
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + a.cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    a.cfg.HTTP.ReadTimeout,
		WriteTimeout:   a.cfg.HTTP.WriteTimeout,
		IdleTimeout:    a.cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: a.cfg.HTTP.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Info("shutting down", zap.String("signal", sig.String()))
	case <-ctx.Done():
		log.Info("shutting down", zap.String("reason", "context canceled"))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := cron.Stop(shutdownCtx); err != nil {
		log.Error("error stopping scheduler", zap.Error(err))
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	log.Info("stopped")
	return nil
}
