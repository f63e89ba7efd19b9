package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type Config struct {
	HttpServerPort uint16 `env:"HTTP_SERVER_PORT" envDefault:"8085"    validate:"min=1000,max=65535"`
	GinMode        string `env:"GIN_MODE"         envDefault:"release" validate:"oneof=debug release test"`

	DefaultRoom        string `env:"DEFAULT_ROOM"        envDefault:"default" validate:"required"`
	SubscriptionBuffer int    `env:"SUBSCRIPTION_BUFFER" envDefault:"64"      validate:"min=1,max=65536"`

	StreamPingPeriod time.Duration `env:"STREAM_PING_PERIOD" envDefault:"15s" validate:"min=1s"`
	WsReadLimit      int64         `env:"WS_READ_LIMIT"      envDefault:"4096" validate:"min=512"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s" validate:"min=0"`
}

func LoadConfig() (*Config, error) {
	// Load environment variables from .env file
	err := godotenv.Load(".env")
	if err != nil {
		zap.L().Debug(".env file not found", zap.Error(err))
	}

	cfg := &Config{}
	// Parse config from environment variables
	if err = env.Parse(cfg); err != nil {
		zap.L().Error("config_load_failed", zap.Error(err))
		return nil, err
	}

	// Validate the config
	validate := validator.New()
	err = validate.Struct(cfg)
	if err != nil {
		zap.L().Error("config_validation_failed", zap.Error(err))
		return nil, err
	}
	return cfg, nil
}
