package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type DBConfig struct {
	// postgres | sqlite (локальный запуск без внешней БД)
	Driver     string `env:"DB_DRIVER" envDefault:"postgres"`
	SQLitePath string `env:"DB_SQLITE_PATH" envDefault:"booking.db"`

	Host            string `env:"DB_HOST" envDefault:"postgres"`
	Port            int    `env:"DB_PORT" envDefault:"5432"`
	User            string `env:"DB_USER" envDefault:"booking"`
	Password        string `env:"DB_PASSWORD" envDefault:"booking"`
	Name            string `env:"DB_NAME" envDefault:"booking_db"`
	SSLMode         string `env:"DB_SSLMODE" envDefault:"disable"`
	TimeZone        string `env:"DB_TIMEZONE" envDefault:"UTC"`
	MaxOpenConns    int    `env:"DB_MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns    int    `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifeTime int    `env:"DB_CONN_MAX_LIFETIME_MIN" envDefault:"30"` // минут
}

func LoadDBConfig() (*DBConfig, error) {
	cfg := &DBConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse db env: %w", err)
	}

	// минимальная валидация
	switch cfg.Driver {
	case DriverPostgres:
		if cfg.Host == "" || cfg.User == "" || cfg.Name == "" {
			return nil, fmt.Errorf("invalid DB config: host/user/name must not be empty")
		}
	case DriverSQLite:
		if cfg.SQLitePath == "" {
			return nil, fmt.Errorf("invalid DB config: DB_SQLITE_PATH must not be empty")
		}
	default:
		return nil, fmt.Errorf("invalid DB config: unknown driver %q", cfg.Driver)
	}

	return cfg, nil
}
