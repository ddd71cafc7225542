package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"
)

// Load reads the TOML file at path on top of the defaults, overlays
// secrets from the environment and validates the result.
//
// An empty path skips the file and uses defaults plus environment only.
func Load(path string) (*Config, error) {
	cfg := NewDefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: failed to unmarshal TOML: %w", err)
		}
	}

	// Secrets never live in the TOML file. envconfig fills the fields
	// tagged with envconfig from DAYBOOK_* variables when set.
	if err := applyEnv(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to apply environment overrides: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}

	return cfg, nil
}

func applyEnv(cfg *Config) error {
	var env struct {
		JwtAuthSecret      string `envconfig:"DAYBOOK_JWT_AUTH_SECRET"`
		BackendURL         string `envconfig:"DAYBOOK_BACKEND_URL"`
		GoogleClientID     string `envconfig:"DAYBOOK_OAUTH2_GOOGLE_CLIENT_ID"`
		GoogleClientSecret string `envconfig:"DAYBOOK_OAUTH2_GOOGLE_CLIENT_SECRET"`
		NotifierWebhookURL string `envconfig:"DAYBOOK_NOTIFIER_WEBHOOK_URL"`
	}
	if err := envconfig.Process("", &env); err != nil {
		return err
	}

	if env.JwtAuthSecret != "" {
		cfg.Jwt.AuthSecret = env.JwtAuthSecret
	}
	if env.BackendURL != "" {
		cfg.Backend.URL = env.BackendURL
	}
	if env.NotifierWebhookURL != "" {
		cfg.Notifier.WebhookURL = env.NotifierWebhookURL
	}
	if p, ok := cfg.OAuth2Providers[OAuth2ProviderGoogle]; ok {
		if env.GoogleClientID != "" {
			p.ClientID = env.GoogleClientID
		}
		if env.GoogleClientSecret != "" {
			p.ClientSecret = env.GoogleClientSecret
		}
		cfg.OAuth2Providers[OAuth2ProviderGoogle] = p
	}
	return nil
}
