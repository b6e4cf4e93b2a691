package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type Config struct {
	PostgresHost     string `env:"POSTGRES_HOST"     envDefault:"localhost"`
	PostgresPort     string `env:"POSTGRES_PORT"     envDefault:"5432"`
	PostgresUser     string `env:"POSTGRES_USER"     envDefault:"store_user"`
	PostgresPassword string `env:"POSTGRES_PASSWORD" envDefault:"store_password"`
	PostgresDb       string `env:"POSTGRES_DB"       envDefault:"store_db"`

	RedisHost string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort uint16 `env:"REDIS_PORT" envDefault:"6379" validate:"min=1000,max=65535"`

	DefaultRoom  string `env:"CHAT_DEFAULT_ROOM"  envDefault:"general"`
	HistoryLimit int    `env:"CHAT_HISTORY_LIMIT" envDefault:"50" validate:"min=1,max=500"`

	AutoReplyMinDelayMs int `env:"AUTO_REPLY_MIN_DELAY_MS" envDefault:"1000" validate:"min=0"`
	AutoReplyMaxDelayMs int `env:"AUTO_REPLY_MAX_DELAY_MS" envDefault:"3000" validate:"min=0"`

	PresenceSyncSeconds int `env:"PRESENCE_SYNC_SECONDS" envDefault:"10" validate:"min=1"`

	HttpServerPort uint16 `env:"HTTP_SERVER_PORT" envDefault:"8086" validate:"min=1000,max=65535"`
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

	if cfg.AutoReplyMaxDelayMs < cfg.AutoReplyMinDelayMs {
		cfg.AutoReplyMaxDelayMs = cfg.AutoReplyMinDelayMs
	}
	return cfg, nil
}
