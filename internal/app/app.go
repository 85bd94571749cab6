package app

import (
	"context"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"chatnotify/internal/config"
	"chatnotify/internal/core"
	"chatnotify/internal/lifecycle"
	"chatnotify/internal/telemetry"
	"chatnotify/internal/toast"
)

type App struct {
	cfg     *config.Config
	core    *core.Core
	toast   *toast.Manager
	watcher *lifecycle.Watcher
	signals *lifecycle.SignalSource
	server  *http.Server
	logger  *zap.Logger
	wg      sync.WaitGroup

	otelShutdown func(context.Context) error
}

func NewApp(
	cfg *config.Config,
	c *core.Core,
	toastManager *toast.Manager,
	watcher *lifecycle.Watcher,
	signals *lifecycle.SignalSource,
	router *gin.Engine,
	logger *zap.Logger,
) *App {
	return &App{
		cfg:     cfg,
		core:    c,
		toast:   toastManager,
		watcher: watcher,
		signals: signals,
		server: &http.Server{
			Addr:    cfg.StatusAddr,
			Handler: router,
		},
		logger: logger,
	}
}

func (a *App) Run(ctx context.Context) error {
	otelShutdown, err := telemetry.Init(ctx, a.cfg)
	if err != nil {
		return err
	}
	a.otelShutdown = otelShutdown

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.signals.Run(ctx)
	}()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.watcher.Run(ctx)
	}()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.toast.Run(ctx)
	}()

	a.core.Subscribe(a.toast.Notify)
	if err := a.core.Initialize(ctx, a.cfg.UserID); err != nil {
		a.logger.Error("initial session setup failed", zap.Error(err))
	}

	return a.server.ListenAndServe()
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("graceful shutdown started")
	shutdownErr := a.server.Shutdown(ctx)

	a.core.Shutdown(ctx)
	if a.otelShutdown != nil {
		if err := a.otelShutdown(ctx); err != nil {
			a.logger.Warn("telemetry shutdown failed", zap.Error(err))
		}
	}

	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		a.logger.Info("graceful shutdown completed")
		return shutdownErr
	case <-ctx.Done():
		if shutdownErr != nil {
			return shutdownErr
		}
		return ctx.Err()
	}
}

func (a *App) Logger() *zap.Logger {
	return a.logger
}
