package command

import (
	"context"

	featuregate "github.com/goliatone/go-featuregate/gate"
	"github.com/google/uuid"
)

const (
	// FeatureOnboardingAssistant gates the onboarding chat command.
	FeatureOnboardingAssistant = "onboarding.assistant"
)

func featureEnabled(ctx context.Context, gate featuregate.FeatureGate, key string, profileID uuid.UUID) (bool, error) {
	if gate == nil {
		return true, nil
	}
	if profileID == uuid.Nil {
		return gate.Enabled(ctx, key)
	}
	return gate.Enabled(ctx, key, featuregate.WithScopeChain(featuregate.ScopeChain{
		{Kind: featuregate.ScopeUser, ID: profileID.String()},
	}))
}

// StaticFeatureGate resolves features from a fixed map. Keys absent from the
// map are enabled.
type StaticFeatureGate map[string]bool

var _ featuregate.FeatureGate = StaticFeatureGate(nil)

// Enabled implements featuregate.FeatureGate.
func (g StaticFeatureGate) Enabled(_ context.Context, key string, _ ...featuregate.ResolveOption) (bool, error) {
	enabled, ok := g[key]
	if !ok {
		return true, nil
	}
	return enabled, nil
}
