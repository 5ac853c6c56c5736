// Package config loads the server configuration from an optional YAML
// file, VAULT_* environment variables and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/vault/internal/llm"
)

// devSecret signs tokens in development when no secret is configured.
const devSecret = "vault-development-secret-do-not-deploy"

// AppConfig holds process-wide settings.
type AppConfig struct {
	Env      string `yaml:"env" validate:"required,oneof=development production test"`
	LogLevel string `yaml:"log_level" validate:"oneof=debug info warn error"`
	// LogFormat selects the slog handler: "json" or "text".
	LogFormat string `yaml:"log_format" validate:"oneof=json text"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Addr         string        `yaml:"addr" validate:"required,hostname_port"`
	ReadTimeout  time.Duration `yaml:"read_timeout" validate:"gte=0"`
	WriteTimeout time.Duration `yaml:"write_timeout" validate:"gte=0"`
	CORSOrigins  []string      `yaml:"cors_origins"`
}

// DatabaseConfig locates the SQLite file. Empty means the default path.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// AuthConfig holds token signing settings.
type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret" validate:"required,min=32"`
	TokenTTL  time.Duration `yaml:"token_ttl" validate:"gt=0"`
}

// TutorConfig tunes content generation.
type TutorConfig struct {
	DefaultLanguage   string        `yaml:"default_language" validate:"required"`
	GenerationTimeout time.Duration `yaml:"generation_timeout" validate:"gt=0"`
	MaxTokens         int           `yaml:"max_tokens" validate:"gt=0"`
}

// Config is the root configuration.
type Config struct {
	App      AppConfig      `yaml:"app"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Tutor    TutorConfig    `yaml:"tutor"`
	LLM      llm.Config     `yaml:"llm"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		App: AppConfig{Env: "development", LogLevel: "info", LogFormat: "json"},
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 90 * time.Second,
		},
		Auth: AuthConfig{TokenTTL: 7 * 24 * time.Hour},
		Tutor: TutorConfig{
			DefaultLanguage:   "Python",
			GenerationTimeout: 60 * time.Second,
			MaxTokens:         2048,
		},
		LLM: llm.DefaultConfig(),
	}
}

// Load builds the configuration. path may be empty, in which case only
// defaults and the environment apply. A file that does not exist is an
// error when path was given explicitly.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file %q: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if cfg.Auth.JWTSecret == "" && cfg.App.Env != "production" {
		cfg.Auth.JWTSecret = devSecret
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks struct tags and cross-field rules.
func Validate(cfg *Config) error {
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		var invalid *validator.InvalidValidationError
		if errors.As(err, &invalid) {
			return fmt.Errorf("config validator: %w", err)
		}

		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fmt.Sprintf("%s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
		}
		return fmt.Errorf("invalid config:\n- %s", strings.Join(msgs, "\n- "))
	}

	if cfg.App.Env == "production" && cfg.Auth.JWTSecret == devSecret {
		return errors.New("invalid config: auth.jwt_secret must be set in production")
	}
	return nil
}

// UsesDevSecret reports whether tokens are signed with the built-in
// development secret.
func (c *Config) UsesDevSecret() bool {
	return c.Auth.JWTSecret == devSecret
}

func applyEnv(cfg *Config) {
	str := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	dur := func(dst *time.Duration, key string) {
		if v := os.Getenv(key); v != "" {
			if d, err := time.ParseDuration(v); err == nil {
				*dst = d
			}
		}
	}

	str(&cfg.App.Env, "VAULT_ENV")
	str(&cfg.App.LogLevel, "VAULT_LOG_LEVEL")
	str(&cfg.App.LogFormat, "VAULT_LOG_FORMAT")
	str(&cfg.Server.Addr, "VAULT_ADDR")
	str(&cfg.Database.Path, "VAULT_DB")
	str(&cfg.Auth.JWTSecret, "VAULT_JWT_SECRET")
	dur(&cfg.Auth.TokenTTL, "VAULT_TOKEN_TTL")
	str(&cfg.Tutor.DefaultLanguage, "VAULT_DEFAULT_LANGUAGE")
	dur(&cfg.Tutor.GenerationTimeout, "VAULT_GENERATION_TIMEOUT")

	if v := os.Getenv("VAULT_CORS_ORIGINS"); v != "" {
		cfg.Server.CORSOrigins = strings.Split(v, ",")
	}

	llm.ApplyEnv(&cfg.LLM)
}
