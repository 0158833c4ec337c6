package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"helpdesk/internal/bootstrap/logging"
	"helpdesk/internal/errs"
	cryptoinfra "helpdesk/internal/infrastructure/crypto"
)

const MinKeyIterations = cryptoinfra.MinIterations

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Log      LogConfig      `mapstructure:"log"`
	Database DatabaseConfig `mapstructure:"database"`
	Crypto   CryptoConfig   `mapstructure:"crypto"`
	Report   ReportConfig   `mapstructure:"report"`
	Desk     DeskConfig     `mapstructure:"desk"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type CryptoConfig struct {
	Iterations   int `mapstructure:"iterations"`
	KeyCacheSize int `mapstructure:"key_cache_size"`
}

type ReportConfig struct {
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

type DeskConfig struct {
	SystemIdentity  string `mapstructure:"system_identity"`
	UnassignedLabel string `mapstructure:"unassigned_label"`
}

func Load(ctx context.Context, configFile string) (Config, error) {
	if ctx == nil {
		return Config{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return Config{}, errs.Wrap(err, "check context")
	}

	logCtx := logging.WithComponent(ctx, "bootstrap.config")

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("HD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile == "" && errors.As(err, &notFound) {
			logging.Warn(logCtx, "config file not found, fallback to defaults and env")
		} else {
			return Config{}, errs.Wrap(err, "read config")
		}
	} else {
		logging.Info(logCtx, "using config file", slog.String("path", v.ConfigFileUsed()))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errs.Wrap(err, "unmarshal config")
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	logging.Info(
		logCtx,
		"config loaded",
		slog.String("app", cfg.App.Name),
		slog.String("env", cfg.App.Env),
		slog.String("database_driver", cfg.Database.Driver),
		slog.Int("crypto_iterations", cfg.Crypto.Iterations),
		slog.Duration("report_cache_ttl", cfg.Report.CacheTTL),
	)

	return cfg, nil
}

func (c Config) validate() error {
	if strings.TrimSpace(c.Database.DSN) == "" {
		return errors.New("database.dsn is required")
	}
	if c.Crypto.Iterations < MinKeyIterations {
		return fmt.Errorf("crypto.iterations must be at least %d, got %d", MinKeyIterations, c.Crypto.Iterations)
	}
	if c.Crypto.KeyCacheSize <= 0 {
		return fmt.Errorf("crypto.key_cache_size must be positive, got %d", c.Crypto.KeyCacheSize)
	}
	if c.Report.CacheTTL < 0 {
		return fmt.Errorf("report.cache_ttl must not be negative, got %s", c.Report.CacheTTL)
	}
	if strings.TrimSpace(c.Desk.SystemIdentity) == "" {
		return errors.New("desk.system_identity is required")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "helpdesk")
	v.SetDefault("app.env", "local")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "data/helpdesk.sqlite?_pragma=foreign_keys(1)")
	v.SetDefault("crypto.iterations", MinKeyIterations)
	v.SetDefault("crypto.key_cache_size", 64)
	v.SetDefault("report.cache_ttl", "60s")
	v.SetDefault("desk.system_identity", "System")
	v.SetDefault("desk.unassigned_label", "Unassigned")
}
