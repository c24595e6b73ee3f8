package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type TransportConfig struct {
	Type string `mapstructure:"type"` // "stdio" or "sse"
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type HTTPConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type SNSConfig struct {
	TopicARN string `mapstructure:"topic_arn"`
	Region   string `mapstructure:"region"`
}

// ServerConfig is the explicit configuration struct constructed once at
// startup and injected into each component. Business logic never reads the
// process environment directly.
type ServerConfig struct {
	DataDir           string          `mapstructure:"data_dir"`
	SeedFile          string          `mapstructure:"seed_file"`
	ExpiringThreshold int             `mapstructure:"expiring_threshold"`
	ProbeTimeout      time.Duration   `mapstructure:"probe_timeout"`
	CheckSchedule     string          `mapstructure:"check_schedule"`
	LogLevel          string          `mapstructure:"log_level"`
	LogFormat         string          `mapstructure:"log_format"`
	Debug             bool            `mapstructure:"debug"`
	HTTP              HTTPConfig      `mapstructure:"http"`
	Transport         TransportConfig `mapstructure:"transport"`
	SNS               SNSConfig       `mapstructure:"sns"`
}

func DefaultConfig() *ServerConfig {
	return &ServerConfig{
		DataDir:           "data",
		SeedFile:          "seed_websites.json",
		ExpiringThreshold: 30,
		ProbeTimeout:      10 * time.Second,
		CheckSchedule:     "0 8 * * *",
		LogLevel:          "info",
		LogFormat:         "json",
		HTTP: HTTPConfig{
			Host: "0.0.0.0",
			Port: 5000,
		},
		Transport: TransportConfig{
			Type: "stdio",
			Host: "localhost",
			Port: 8080,
		},
		SNS: SNSConfig{
			Region: "us-east-1",
		},
	}
}

func LoadConfig() (*ServerConfig, error) {
	config := DefaultConfig()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/etc/certsentry/")
	viper.AddConfigPath("$HOME/.certsentry/")

	viper.SetEnvPrefix("CERTSENTRY")
	viper.AutomaticEnv()

	viper.SetDefault("data_dir", config.DataDir)
	viper.SetDefault("seed_file", config.SeedFile)
	viper.SetDefault("expiring_threshold", config.ExpiringThreshold)
	viper.SetDefault("probe_timeout", config.ProbeTimeout)
	viper.SetDefault("check_schedule", config.CheckSchedule)
	viper.SetDefault("log_level", config.LogLevel)
	viper.SetDefault("log_format", config.LogFormat)
	viper.SetDefault("debug", config.Debug)

	viper.SetDefault("http.host", config.HTTP.Host)
	viper.SetDefault("http.port", config.HTTP.Port)

	viper.SetDefault("transport.type", config.Transport.Type)
	viper.SetDefault("transport.host", config.Transport.Host)
	viper.SetDefault("transport.port", config.Transport.Port)

	viper.SetDefault("sns.topic_arn", config.SNS.TopicARN)
	viper.SetDefault("sns.region", config.SNS.Region)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read configuration file: %w", err)
		}
	}

	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if config.Debug {
		config.LogLevel = "debug"
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *ServerConfig) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.LogLevel)
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("invalid log format: %s", c.LogFormat)
	}
	switch c.Transport.Type {
	case "stdio", "sse":
	default:
		return fmt.Errorf("unknown transport type: %s", c.Transport.Type)
	}
	if c.ExpiringThreshold <= 0 {
		return fmt.Errorf("expiring_threshold must be positive, got %d", c.ExpiringThreshold)
	}
	if c.ProbeTimeout <= 0 {
		return fmt.Errorf("probe_timeout must be positive, got %s", c.ProbeTimeout)
	}
	return nil
}

// NotificationsEnabled reports whether an alert topic is configured.
func (c *ServerConfig) NotificationsEnabled() bool {
	return c.SNS.TopicARN != ""
}
