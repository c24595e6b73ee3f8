package fxapp

import (
	"log"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/certsentry/certsentry/internal/assistant"
	"github.com/certsentry/certsentry/internal/checker"
	"github.com/certsentry/certsentry/internal/httpapi"
	"github.com/certsentry/certsentry/internal/mcpserver"
	"github.com/certsentry/certsentry/internal/notify"
	"github.com/certsentry/certsentry/internal/scheduler"
	"github.com/certsentry/certsentry/internal/store"
	"github.com/certsentry/certsentry/pkg/config"
	"github.com/certsentry/certsentry/pkg/logger"
)

func New() *fx.App {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// Default to a verbose fx logger only at debug level
	var fxLogger fx.Option = fx.WithLogger(
		func() fxevent.Logger {
			return &fxevent.ConsoleLogger{W: log.Writer()}
		},
	)
	if cfg.LogLevel != "debug" {
		fxLogger = fx.NopLogger
	}

	return fx.New(
		fxLogger,
		fx.Supply(cfg),
		config.Module,
		logger.Module,
		store.Module,
		notify.Module,
		checker.Module,
		scheduler.Module,
		httpapi.Module,
		mcpserver.Module,
		assistant.Module,
	)
}
