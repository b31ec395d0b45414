package config

import (
	"errors"
	"strings"
	"time"

	"github.com/goliatone/go-persistence-bun"

	"github.com/dylanswipeyourbite/squadupv2/migrations"
)

// BaseConfig holds all configuration for the squadup server
type BaseConfig struct {
	Server      ServerConfig      `json:"server"`
	Persistence PersistenceConfig `json:"persistence"`
	Auth        AuthConfig        `json:"auth"`
	Firebase    FirebaseConfig    `json:"firebase"`
	OpenAI      OpenAIConfig      `json:"openai"`
	Features    map[string]bool   `json:"features"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port           string        `json:"port" env:"SERVER_PORT" default:"8978"`
	Host           string        `json:"host" env:"SERVER_HOST" default:"localhost"`
	RequestTimeout time.Duration `json:"request_timeout" env:"SERVER_REQUEST_TIMEOUT" default:"30s"`
}

// AuthConfig configures the session tokens handed out by the auth bridge.
type AuthConfig struct {
	SigningKey string        `json:"signing_key" env:"AUTH_SIGNING_KEY"`
	Issuer     string        `json:"issuer" env:"AUTH_ISSUER" default:"squadup"`
	AccessTTL  time.Duration `json:"access_ttl" default:"168h"`
	RefreshTTL time.Duration `json:"refresh_ttl" default:"720h"`
}

// FirebaseConfig points the ID token verifier at a Firebase project.
type FirebaseConfig struct {
	ProjectID       string        `json:"project_id" env:"FIREBASE_PROJECT_ID"`
	JWKSURL         string        `json:"jwks_url" env:"FIREBASE_JWKS_URL"`
	RefreshInterval time.Duration `json:"refresh_interval" default:"1h"`
}

// OpenAIConfig configures the onboarding assistant. A blank key keeps the
// assistant answering 400.
type OpenAIConfig struct {
	APIKey     string `json:"api_key" env:"OPENAI_API_KEY"`
	BaseURL    string `json:"base_url" env:"OPENAI_BASE_URL"`
	Model      string `json:"model" env:"OPENAI_MODEL" default:"gpt-4-turbo-preview"`
	MaxRetries int    `json:"max_retries" default:"2"`
}

// PersistenceConfig implements persistence.Config interface
type PersistenceConfig struct {
	Debug          bool          `json:"debug" default:"false"`
	Driver         string        `json:"driver" env:"DB_DRIVER" default:"sqlite"`
	Server         string        `json:"server" env:"DB_SERVER" default:"file:squadup.db?_journal_mode=WAL&cache=shared&_fk=1"`
	PingTimeout    time.Duration `json:"ping_timeout" default:"5s"`
	OtelIdentifier string        `json:"otel_identifier" default:"squadup"`
}

func (c PersistenceConfig) GetDebug() bool                { return c.Debug }
func (c PersistenceConfig) GetDriver() string             { return c.Driver }
func (c PersistenceConfig) GetServer() string             { return c.Server }
func (c PersistenceConfig) GetPingTimeout() time.Duration { return c.PingTimeout }
func (c PersistenceConfig) GetOtelIdentifier() string     { return c.OtelIdentifier }

// GetPersistence returns persistence config
func (c *BaseConfig) GetPersistence() persistence.Config {
	return c.Persistence
}

// GetServer returns server config
func (c *BaseConfig) GetServer() ServerConfig {
	return c.Server
}

// GetAuth returns session signing config
func (c *BaseConfig) GetAuth() AuthConfig {
	return c.Auth
}

// GetFirebase returns the ID token verifier config
func (c *BaseConfig) GetFirebase() FirebaseConfig {
	return c.Firebase
}

// GetOpenAI returns the completion client config
func (c *BaseConfig) GetOpenAI() OpenAIConfig {
	return c.OpenAI
}

// GetFeatures returns a copy of the feature switches.
func (c *BaseConfig) GetFeatures() map[string]bool {
	out := make(map[string]bool, len(c.Features))
	for key, enabled := range c.Features {
		out[key] = enabled
	}
	return out
}

// Validate implements config.Validable interface
func (c *BaseConfig) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Auth.SigningKey) == "" {
		errs = append(errs, errors.New("auth.signing_key is required"))
	}
	if strings.TrimSpace(c.Firebase.ProjectID) == "" {
		errs = append(errs, errors.New("firebase.project_id is required"))
	}
	if _, err := migrations.NormalizeDialect(c.Persistence.Driver); err != nil {
		errs = append(errs, err)
	}
	if strings.TrimSpace(c.Persistence.Server) == "" {
		errs = append(errs, errors.New("persistence.server is required"))
	}
	return errors.Join(errs...)
}
