package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const envPrefix = "RESPONDER"

// Bootstrap holds process-level settings resolved once at start.
type Bootstrap struct {
	HTTPAddr        string        `envconfig:"HTTP_ADDR" default:":8080"`
	SettingsPath    string        `envconfig:"SETTINGS_PATH" default:"settings.yaml"`
	LedgerDriver    string        `envconfig:"LEDGER_DRIVER" default:"sqlite"`
	LedgerDSN       string        `envconfig:"LEDGER_DSN" default:"feedback.db"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat       string        `envconfig:"LOG_FORMAT" default:"text"`
	APIKey          string        `envconfig:"API_KEY" default:""`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	StartRunning    bool          `envconfig:"START_RUNNING" default:"false"`

	// Empty means the production endpoints.
	WildberriesBaseURL string `envconfig:"WILDBERRIES_BASE_URL"`
	OzonBaseURL        string `envconfig:"OZON_BASE_URL"`
}

// LoadBootstrap reads .env (if present) and RESPONDER_* variables.
func LoadBootstrap() (Bootstrap, error) {
	_ = godotenv.Load()

	var cfg Bootstrap
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return Bootstrap{}, fmt.Errorf("load bootstrap config: %w", err)
	}

	switch cfg.LedgerDriver {
	case "sqlite", "postgres":
	default:
		return Bootstrap{}, fmt.Errorf("unsupported ledger driver %q", cfg.LedgerDriver)
	}

	return cfg, nil
}
