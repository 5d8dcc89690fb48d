package config

import (
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	HTTPAddr string     `env:"HTTP_ADDR" envDefault:":8080"`
	DBPath   string     `env:"DB_PATH" envDefault:"data/campusquest.db"`
	RedisURL string     `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`

	// Proof images go to Cloudflare R2 when the credentials are set,
	// otherwise to UploadsDir on local disk (served under /uploads/).
	R2AccountID   string `env:"R2_ACCOUNT_ID"`
	R2AccessKeyID string `env:"R2_ACCESS_KEY_ID"`
	R2SecretKey   string `env:"R2_SECRET_ACCESS_KEY"`
	R2Bucket      string `env:"R2_BUCKET_NAME"`
	R2PublicBase  string `env:"R2_PUBLIC_BASE_URL"`
	UploadsDir    string `env:"UPLOADS_DIR" envDefault:"data/uploads"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return &cfg, nil
}
