package assistant

import (
	"github.com/certsentry/certsentry/internal/mcpserver"
	"go.uber.org/fx"
)

var Module = fx.Module("assistant",
	fx.Provide(
		fx.Annotate(
			NewToolset,
			fx.As(new(mcpserver.Toolset)),
			fx.ResultTags(`group:"toolsets"`),
		),
	),
)
