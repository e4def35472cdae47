package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config represents the client configuration structure
type Config struct {
	// APIURL is the base URL of the bearer-authenticated resource API
	APIURL string `envconfig:"API_URL" default:"http://localhost:8000/api/v1"`

	// AuthURL is the base URL of the authentication endpoints (login/refresh).
	// It is distinct from APIURL and never receives a bearer token.
	AuthURL string `envconfig:"AUTH_URL" default:"http://localhost:8000/auth"`

	// SessionFile is the path of the JSON file the session is persisted to.
	// When empty, sessions are kept in memory only (unless Redis is configured).
	SessionFile string `envconfig:"SESSION_FILE"`

	// RedisURL optionally points the session storage at a Redis instance
	// instead of the local file
	RedisURL      string `envconfig:"REDIS_URL"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`

	// SessionKey is the storage key the session is persisted under
	SessionKey string `envconfig:"SESSION_KEY" default:"ma-crm-auth"`

	// StubAddr is the listen address of the local stub backend
	StubAddr string `envconfig:"STUB_ADDR" default:":8000"`

	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"30s"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// LoadFromEnv loads a new configuration structure using environment variables and an optional .env file
func LoadFromEnv() (*Config, error) {
	// Load a .env file if it exists
	_ = godotenv.Overload()

	config := new(Config)
	if err := envconfig.Process("crm", config); err != nil {
		return nil, err
	}
	return config, nil
}
