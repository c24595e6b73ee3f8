package config

import "go.uber.org/fx"

// Module provides specific, smaller configs for consumers. The full
// ServerConfig itself is loaded once at startup and supplied to the fx app.
var Module = fx.Module("config",
	fx.Provide(func(cfg *ServerConfig) TransportConfig { return cfg.Transport }),
	fx.Provide(func(cfg *ServerConfig) HTTPConfig { return cfg.HTTP }),
	fx.Provide(func(cfg *ServerConfig) SNSConfig { return cfg.SNS }),
)
