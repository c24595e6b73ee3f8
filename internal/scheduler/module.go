package scheduler

import (
	"context"

	"go.uber.org/fx"
)

func registerRunnerHooks(lc fx.Lifecycle, runner *Runner) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return runner.Start(context.Background())
		},
		OnStop: func(ctx context.Context) error {
			return runner.Stop(ctx)
		},
	})
}

var Module = fx.Module("scheduler",
	fx.Provide(NewRunner),
	fx.Invoke(registerRunnerHooks),
)
