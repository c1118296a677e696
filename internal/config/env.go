// Package config defines environment configuration structs and loaders.
package config

import (
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type AppConfig struct {
	ServerEnvConfig
	RegistryEnvConfig
	LedgerEnvConfig
	RedisEnvConfig
	PolicyEnvConfig
	DaemonEnvConfig
}

func LoadConfig() (*AppConfig, error) {
	cfg := &AppConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ServerEnvConfig configures the scoring HTTP service.
type ServerEnvConfig struct {
	Address       string `env:"POIES_HOST" envDefault:"127.0.0.1"`
	Port          int    `env:"POIES_PORT" envDefault:"8080"`
	BodySizeLimit int    `env:"SERVER_BODY_LIMIT" envDefault:"1048576"`
}

// RegistryEnvConfig configures the provider-metrics registry client.
type RegistryEnvConfig struct {
	RegistryURL     string        `env:"REGISTRY_URL" envDefault:"http://localhost:5003"`
	RegistryTimeout time.Duration `env:"REGISTRY_TIMEOUT" envDefault:"15s"`
}

// LedgerEnvConfig configures the settlement anchor client.
type LedgerEnvConfig struct {
	LedgerURL     string        `env:"LEDGER_URL" envDefault:"http://localhost:5004"`
	LedgerTimeout time.Duration `env:"LEDGER_TIMEOUT" envDefault:"30s"`
}

// RedisEnvConfig configures Redis connection.
type RedisEnvConfig struct {
	RedisHost     string `env:"REDIS_HOST" envDefault:"127.0.0.1"`
	RedisPort     int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	RedisUsername string `env:"REDIS_USERNAME" envDefault:""`
}

// PolicyEnvConfig locates the scoring policy file.
type PolicyEnvConfig struct {
	PolicyPath string `env:"POLICY_PATH" envDefault:"policy.yaml"`
}

// DaemonEnvConfig configures the daemon runtime.
type DaemonEnvConfig struct {
	Environment     string        `env:"ENVIRONMENT" envDefault:"dev"`
	EpochRecordDir  string        `env:"EPOCH_RECORD_DIR" envDefault:"."`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"5s"`
}

type IntervalConfig struct {
	MetricsInterval    time.Duration
	SettlementInterval time.Duration
	FairnessInterval   time.Duration
}

var (
	DevIntervalConfig = &IntervalConfig{
		MetricsInterval:    5 * time.Second,
		SettlementInterval: 15 * time.Second,
		FairnessInterval:   10 * time.Second,
	}
	TestIntervalConfig = &IntervalConfig{
		MetricsInterval:    30 * time.Second,
		SettlementInterval: 2 * time.Minute,
		FairnessInterval:   time.Minute,
	}

	ProdIntervalConfig = &IntervalConfig{
		MetricsInterval:    time.Minute,
		SettlementInterval: 10 * time.Minute,
		FairnessInterval:   time.Minute,
	}
)

func NewIntervalConfig(environment string) *IntervalConfig {
	switch strings.ToLower(environment) {
	case "dev":
		return DevIntervalConfig
	case "test":
		return TestIntervalConfig
	case "prod":
		return ProdIntervalConfig
	}

	return DevIntervalConfig
}
