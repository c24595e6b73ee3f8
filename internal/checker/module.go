package checker

import (
	"github.com/certsentry/certsentry/internal/probe"
	"github.com/certsentry/certsentry/pkg/config"
	"go.uber.org/fx"
)

var Module = fx.Module("checker",
	fx.Provide(
		fx.Annotate(
			func(cfg *config.ServerConfig) *probe.TLSProber {
				return probe.NewTLSProber(cfg.ProbeTimeout)
			},
			fx.As(new(probe.Prober)),
		),
		New,
	),
)
