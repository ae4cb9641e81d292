package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

const (
	EnvDev  = "dev"
	EnvProd = "prod"

	devAdminToken      = "dev-admin-token-change-in-production"
	minProdTokenLength = 16
)

// Server captures process level configuration.
type Server struct {
	Addr            string        `env:"REGDESK_ADDR" envDefault:":8080" validate:"required"`
	MetricsAddr     string        `env:"REGDESK_METRICS_ADDR" envDefault:":9090"`
	Environment     string        `env:"REGDESK_ENV" envDefault:"dev" validate:"oneof=dev prod"`
	AdminToken      string        `env:"REGDESK_ADMIN_TOKEN"`
	LogLevel        string        `env:"REGDESK_LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`
	LogFormat       string        `env:"REGDESK_LOG_FORMAT" envDefault:"json" validate:"oneof=json text"`
	LogHashKey      string        `env:"REGDESK_LOG_HASH_KEY" validate:"max=64"`
	RequestTimeout  time.Duration `env:"REGDESK_REQUEST_TIMEOUT" envDefault:"10s" validate:"gt=0"`
	ShutdownTimeout time.Duration `env:"REGDESK_SHUTDOWN_TIMEOUT" envDefault:"10s" validate:"gt=0"`
}

// IsProd reports whether the process runs with production settings.
func (s Server) IsProd() bool {
	return s.Environment == EnvProd
}

// FromEnv builds a Server config from the process environment so main stays lean.
func FromEnv() (Server, error) {
	return load(env.Options{})
}

// FromMap builds a Server config from the given variables only.
func FromMap(vars map[string]string) (Server, error) {
	return load(env.Options{Environment: vars})
}

func load(opts env.Options) (Server, error) {
	var cfg Server
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Server{}, fmt.Errorf("parse config: %w", err)
	}
	if cfg.AdminToken == "" && !cfg.IsProd() {
		cfg.AdminToken = devAdminToken
	}
	if err := cfg.Validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

// Validate checks field constraints and the production-only requirements.
func (s Server) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(s); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if s.IsProd() && len(s.AdminToken) < minProdTokenLength {
		return errors.New("invalid config: REGDESK_ADMIN_TOKEN must be at least 16 characters in prod")
	}
	return nil
}
