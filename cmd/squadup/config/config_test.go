package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func validConfig() *BaseConfig {
	return &BaseConfig{
		Persistence: PersistenceConfig{Driver: "sqlite", Server: "file::memory:"},
		Auth:        AuthConfig{SigningKey: "secret"},
		Firebase:    FirebaseConfig{ProjectID: "squadup-dev"},
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, validConfig().Validate())

	cfg := validConfig()
	cfg.Persistence.Driver = "postgresql"
	require.NoError(t, cfg.Validate())

	cfg = &BaseConfig{Persistence: PersistenceConfig{Driver: "mysql"}}
	err := cfg.Validate()
	require.ErrorContains(t, err, "auth.signing_key is required")
	require.ErrorContains(t, err, "firebase.project_id is required")
	require.ErrorContains(t, err, `unsupported dialect "mysql"`)
	require.ErrorContains(t, err, "persistence.server is required")
}

func TestGetFeaturesCopies(t *testing.T) {
	cfg := validConfig()
	cfg.Features = map[string]bool{"onboarding.assistant": false}

	features := cfg.GetFeatures()
	features["onboarding.assistant"] = true
	require.False(t, cfg.Features["onboarding.assistant"])
}
