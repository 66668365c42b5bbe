package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	HTTPAddr string     `env:"HTTP_ADDR" envDefault:":8080"`
	DBDir    string     `env:"DB_DIR" envDefault:"data"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	SPADir   string     `env:"SPA_DIR" envDefault:"../web/dist"`

	// RedisURL is optional; when empty, scan cooldowns live in SQLite.
	RedisURL    string `env:"REDIS_URL"`
	CatalogPath string `env:"CATALOG_PATH"`

	NotifyDismiss    time.Duration `env:"NOTIFY_DISMISS" envDefault:"5s"`
	SyncPollInterval time.Duration `env:"SYNC_POLL_INTERVAL" envDefault:"10s"`
	ScanCooldown     time.Duration `env:"SCAN_COOLDOWN" envDefault:"5m"`

	AdminEmail        string `env:"ADMIN_EMAIL" envDefault:"admin@chomp.art"`
	AdminPasswordHash string `env:"ADMIN_PASSWORD_HASH"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return &cfg, nil
}
