// Package config loads runtime configuration from an optional file, a .env
// file and PARKWISE_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "PARKWISE"

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Log      LogConfig      `mapstructure:"log"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Fee      FeeConfig      `mapstructure:"fee"`
	Vehicle  VehicleConfig  `mapstructure:"vehicle"`
	Tracing  TracingConfig  `mapstructure:"tracing"`

	// File is the config file in use, empty when running from env only.
	File string `mapstructure:"-"`
}

type AppConfig struct {
	Name   string `mapstructure:"name"`
	Env    string `mapstructure:"env"`
	NodeID int64  `mapstructure:"node_id"`
}

type HTTPConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type DatabaseConfig struct {
	Driver  string `mapstructure:"driver"`
	DSN     string `mapstructure:"dsn"`
	Metrics bool   `mapstructure:"metrics"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type CacheConfig struct {
	ZoneTTL time.Duration `mapstructure:"zone_ttl"`
}

type FeeConfig struct {
	DiscountRates       map[string]float64 `mapstructure:"discount_rates"`
	DiscountCombination string             `mapstructure:"discount_combination"`
}

type VehicleConfig struct {
	EligibilityRules map[string]string `mapstructure:"eligibility_rules"`
}

// TracingConfig controls the OTLP/HTTP span exporter. Spans are still
// recorded in process when it is disabled.
type TracingConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	Endpoint    string  `mapstructure:"endpoint"`
	Insecure    bool    `mapstructure:"insecure"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
}

// IsProduction reports whether the app runs with production defaults.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.App.Env, "production")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "parkwise")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.node_id", 1)
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.shutdown_timeout", 10*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.dsn", "host=localhost user=postgres password=postgres dbname=parkwise port=5432 sslmode=disable")
	v.SetDefault("database.metrics", true)
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("cache.zone_ttl", 5*time.Minute)
	v.SetDefault("fee.discount_rates", map[string]float64{
		"compact":      0.2,
		"low_emission": 0.5,
	})
	v.SetDefault("fee.discount_combination", "max")
	v.SetDefault("vehicle.eligibility_rules", map[string]string{})
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.endpoint", "localhost:4318")
	v.SetDefault("tracing.insecure", true)
	v.SetDefault("tracing.sample_ratio", 1.0)
}

// New builds a viper instance bound to the environment and, when path is
// non-empty or parkwise.yaml exists in a search path, to a config file.
func New(path string) (*viper.Viper, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("parkwise")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/parkwise")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	return v, nil
}

// Decode unmarshals v into a Config and checks the values the app cannot
// start without.
func Decode(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()

	switch cfg.Database.Driver {
	case "postgres", "mysql", "sqlite":
	default:
		return Config{}, fmt.Errorf("unsupported database.driver %q", cfg.Database.Driver)
	}
	if cfg.App.NodeID < 0 || cfg.App.NodeID > 1023 {
		return Config{}, fmt.Errorf("app.node_id must be within 0..1023, got %d", cfg.App.NodeID)
	}

	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1 {
		return Config{}, fmt.Errorf("tracing.sample_ratio must be within 0..1, got %v", cfg.Tracing.SampleRatio)
	}

	return cfg, nil
}

// Load is New followed by Decode.
func Load(path string) (Config, error) {
	v, err := New(path)
	if err != nil {
		return Config{}, err
	}
	return Decode(v)
}
