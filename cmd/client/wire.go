//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"chatnotify/internal/app"
	"chatnotify/internal/broadcast"
	"chatnotify/internal/config"
	"chatnotify/internal/core"
	"chatnotify/internal/httpapi"
	"chatnotify/internal/httpapi/controller"
	"chatnotify/internal/lifecycle"
	"chatnotify/internal/logging"
	"chatnotify/internal/metrics"
	"chatnotify/internal/names"
	"chatnotify/internal/toast"
	"chatnotify/internal/transport"
)

func InitializeApp() (*app.App, error) {
	wire.Build(
		config.New,
		logging.New,
		metrics.NewRegistry,
		app.ProvideMetrics,
		broadcast.New,
		names.New,
		transport.NewFactory,
		app.ProvideUnreadFetcher,
		core.New,
		lifecycle.NewSignalSource,
		app.ProvideWatcher,
		app.ProvideDisplay,
		toast.NewManager,
		controller.NewHandler,
		httpapi.NewRouter,
		app.NewApp,
	)
	return &app.App{}, nil
}
