package store

import (
	"log/slog"

	"github.com/certsentry/certsentry/pkg/config"
	"go.uber.org/fx"
)

var Module = fx.Module("store",
	fx.Provide(func(cfg *config.ServerConfig, logger *slog.Logger) (*Store, error) {
		return New(cfg.DataDir, cfg.SeedFile, logger)
	}),
)
