package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const namespace = "MARKETPLACE"

type Config struct {
	AppHost                string        `envconfig:"APP_HOST" default:"127.0.0.1"`
	AppPort                string        `envconfig:"APP_PORT" default:"8080"`
	LogLevel               string        `envconfig:"LOG_LEVEL" default:"info"`
	RateLimit              int           `envconfig:"RATE_LIMIT_PER_MINUTE" default:"120"`
	ShutdownTimeoutSeconds int           `envconfig:"SHUTDOWN_TIMEOUT_SECONDS" default:"20"`
	CORSOrigins            []string      `envconfig:"CORS_ORIGINS" default:"*"`
	Timezone               string        `envconfig:"TIMEZONE" default:"UTC"`

	DatabaseConfig
	RedisConfig
	DisputeConfig
	PaymentConfig
	StorageConfig
}

type DatabaseConfig struct {
	DatabaseDriver string `envconfig:"DATABASE_DRIVER" default:"sqlite"`
	DatabaseDSN    string `envconfig:"DATABASE_DSN" default:"marketplace.db"`
}

type RedisConfig struct {
	// Empty RedisAddr disables redis; locks then fall back to in-process ones.
	RedisAddr    string        `envconfig:"REDIS_ADDR"`
	RedisLockTTL time.Duration `envconfig:"REDIS_LOCK_TTL" default:"30s"`
}

type DisputeConfig struct {
	DisputeStaleAfter time.Duration `envconfig:"DISPUTE_STALE_AFTER" default:"336h"`
	SweepSchedule     string        `envconfig:"DISPUTE_SWEEP_SCHEDULE" default:"@hourly"`
	SweepItemTimeout  time.Duration `envconfig:"DISPUTE_SWEEP_ITEM_TIMEOUT" default:"30s"`
	SweepBatchSize    int           `envconfig:"DISPUTE_SWEEP_BATCH_SIZE" default:"100"`
}

type PaymentConfig struct {
	PaymentProvider      string        `envconfig:"PAYMENT_PROVIDER" default:"sandbox"`
	PaymentBaseURL       string        `envconfig:"PAYMENT_BASE_URL"`
	PaymentSecretKey     string        `envconfig:"PAYMENT_SECRET_KEY"`
	PaymentWebhookSecret string        `envconfig:"PAYMENT_WEBHOOK_SECRET"`
	PaymentReturnURL     string        `envconfig:"PAYMENT_RETURN_URL" default:"http://127.0.0.1:8080/payment/return"`
	PaymentTimeout       time.Duration `envconfig:"PAYMENT_TIMEOUT" default:"15s"`
}

type StorageConfig struct {
	StorageType      string `envconfig:"STORAGE_TYPE" default:"local"`
	StorageBaseDir   string `envconfig:"STORAGE_BASE_DIR" default:"uploads"`
	StoragePublicURL string `envconfig:"STORAGE_PUBLIC_URL" default:"/uploads"`
	S3Bucket         string `envconfig:"S3_BUCKET"`
	S3Prefix         string `envconfig:"S3_PREFIX" default:"disputes/"`
	S3Region         string `envconfig:"S3_REGION" default:"ap-southeast-1"`
}

// Load reads .env when present and then the MARKETPLACE_* environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(namespace, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to load env: %w", err)
	}

	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) AppURL() string {
	return fmt.Sprintf("%s:%s", c.AppHost, c.AppPort)
}

func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func validate(cfg Config) error {
	var errs []error
	if cfg.AppPort == "" {
		errs = append(errs, errors.New("APP_PORT must not be empty"))
	}
	if cfg.RateLimit <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_PER_MINUTE must be greater than 0"))
	}
	if cfg.ShutdownTimeoutSeconds <= 0 {
		errs = append(errs, errors.New("SHUTDOWN_TIMEOUT_SECONDS must be greater than 0"))
	}
	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("TIMEZONE %q is not a known location", cfg.Timezone))
	}
	switch cfg.DatabaseDriver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Errorf("DATABASE_DRIVER %q must be sqlite or postgres", cfg.DatabaseDriver))
	}
	if cfg.DatabaseDSN == "" {
		errs = append(errs, errors.New("DATABASE_DSN must not be empty"))
	}
	if cfg.DisputeStaleAfter <= 0 {
		errs = append(errs, errors.New("DISPUTE_STALE_AFTER must be greater than 0"))
	}
	if cfg.SweepItemTimeout <= 0 {
		errs = append(errs, errors.New("DISPUTE_SWEEP_ITEM_TIMEOUT must be greater than 0"))
	}
	if cfg.SweepBatchSize <= 0 {
		errs = append(errs, errors.New("DISPUTE_SWEEP_BATCH_SIZE must be greater than 0"))
	}
	switch cfg.PaymentProvider {
	case "sandbox":
	case "http":
		if cfg.PaymentBaseURL == "" || cfg.PaymentSecretKey == "" {
			errs = append(errs, errors.New("PAYMENT_BASE_URL and PAYMENT_SECRET_KEY are required for the http provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("PAYMENT_PROVIDER %q must be sandbox or http", cfg.PaymentProvider))
	}
	switch cfg.StorageType {
	case "local":
	case "s3":
		if cfg.S3Bucket == "" {
			errs = append(errs, errors.New("S3_BUCKET is required when STORAGE_TYPE is s3"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORAGE_TYPE %q must be local or s3", cfg.StorageType))
	}
	return errors.Join(errs...)
}
