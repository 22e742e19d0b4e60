package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds the environment-sourced settings for the gateway. Every
// required value is checked when the process starts; a missing one keeps
// the process from starting at all.
type Config struct {
	// OAuth2 application registered with the provider.
	ClientID     string `env:"CLIENT_ID,required"`
	ClientSecret string `env:"CLIENT_SECRET,required"`
	Scope        string `env:"SCOPE" envDefault:"identify"`

	// Deployment URLs.
	RedirectURL string `env:"REDIRECT_URL,required"`
	EntryPoint  string `env:"ENTRY_POINT,required"`

	// Session cookie scoping and signing.
	CookieDomain  string `env:"DOMAIN,required"`
	SessionSecret string `env:"SECRET,required"`

	// Backing stores.
	MongoURL  string `env:"MONGO_URL,required"`
	DBName    string `env:"DB_NAME,required"`
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`

	Port string `env:"PORT,required"`
}

// Load parses the process environment into a Config.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return &cfg, nil
}
