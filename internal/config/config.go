package config

import (
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/MrJamesThe3rd/tradebook/internal/database"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"Tradebook"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	DB struct {
		Driver   string `envconfig:"DB_DRIVER" default:"sqlite3"`
		Path     string `envconfig:"DB_PATH" default:"tradebook.db"`
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"tradebook"`
	}

	Server struct {
		Timeout        time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		AllowedOrigins []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:5173"`
	}

	Auth struct {
		Secret   string        `envconfig:"AUTH_SECRET" default:""`
		TokenTTL time.Duration `envconfig:"AUTH_TOKEN_TTL" default:"720h"`
	}

	Log struct {
		Level  string `envconfig:"LOG_LEVEL" default:"info"`
		Format string `envconfig:"LOG_FORMAT" default:"text"`
	}
}

// DataSource returns the driver name and DSN for database.New.
func (c *Config) DataSource() (string, string, error) {
	switch c.DB.Driver {
	case database.DriverSQLite:
		return c.DB.Driver, c.DB.Path, nil
	case database.DriverPostgres, "postgres":
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(c.DB.User, c.DB.Password),
			Host:     fmt.Sprintf("%s:%d", c.DB.Host, c.DB.Port),
			Path:     "/" + c.DB.Name,
			RawQuery: "sslmode=disable",
		}

		return database.DriverPostgres, u.String(), nil
	}

	return "", "", fmt.Errorf("unsupported DB_DRIVER %q (want %s or %s)", c.DB.Driver, database.DriverSQLite, database.DriverPostgres)
}

// Logger builds a slog.Logger writing to w at the configured level and format.
func (c *Config) Logger(w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", c.Log.Level, err)
	}

	opts := &slog.HandlerOptions{Level: level}

	switch strings.ToLower(c.Log.Format) {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "text", "":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	}

	return nil, fmt.Errorf("invalid LOG_FORMAT %q (want text or json)", c.Log.Format)
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
