package command

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	featuregate "github.com/goliatone/go-featuregate/gate"
	"github.com/google/uuid"

	"github.com/dylanswipeyourbite/squadupv2/onboarding"
	"github.com/dylanswipeyourbite/squadupv2/pkg/apperr"
	"github.com/dylanswipeyourbite/squadupv2/pkg/types"
)

// OnboardingChatInput is one turn of the onboarding conversation.
type OnboardingChatInput struct {
	ActorID   uuid.UUID
	ProfileID *uuid.UUID
	Messages  []types.ChatMessage
	Result    *OnboardingChatResult
}

// OnboardingChatResult carries the coach reply and what was learned from the
// transcript so far.
type OnboardingChatResult struct {
	Reply     string
	Extracted onboarding.Data
}

// Type implements gocommand.Message.
func (OnboardingChatInput) Type() string {
	return "command.onboarding.chat"
}

// Validate implements gocommand.Message.
func (input OnboardingChatInput) Validate() error {
	if input.ActorID == uuid.Nil {
		return ErrActorRequired
	}
	if input.ProfileID != nil && *input.ProfileID != uuid.Nil && *input.ProfileID != input.ActorID {
		return forbidden(msgProfileMismatch, "PROFILE_MISMATCH")
	}
	return nil
}

// OnboardingChatCommand asks the coach for the next reply and stores the
// details extracted from the conversation on the caller's profile.
type OnboardingChatCommand struct {
	profiles    types.ProfileRepository
	completer   onboarding.Completer
	featureGate featuregate.FeatureGate
	model       string
	clock       types.Clock
	logger      types.Logger
}

// OnboardingChatCommandConfig wires dependencies for the onboarding command.
type OnboardingChatCommandConfig struct {
	Profiles    types.ProfileRepository
	Completer   onboarding.Completer
	FeatureGate featuregate.FeatureGate
	Model       string
	Clock       types.Clock
	Logger      types.Logger
}

// NewOnboardingChatCommand constructs the onboarding handler.
func NewOnboardingChatCommand(cfg OnboardingChatCommandConfig) *OnboardingChatCommand {
	return &OnboardingChatCommand{
		profiles:    cfg.Profiles,
		completer:   cfg.Completer,
		featureGate: cfg.FeatureGate,
		model:       cfg.Model,
		clock:       safeClock(cfg.Clock),
		logger:      safeLogger(cfg.Logger),
	}
}

var _ gocommand.Commander[OnboardingChatInput] = (*OnboardingChatCommand)(nil)

// Execute runs one completion and persists a non-empty extraction.
func (c *OnboardingChatCommand) Execute(ctx context.Context, input OnboardingChatInput) error {
	if c.profiles == nil {
		return types.ErrMissingProfileRepository
	}
	if err := input.Validate(); err != nil {
		return err
	}

	enabled, err := featureEnabled(ctx, c.featureGate, FeatureOnboardingAssistant, input.ActorID)
	if err != nil {
		return apperr.Internal(err, "onboarding: resolve feature gate")
	}
	if !enabled {
		return forbidden(msgOnboardingDisabled, "ONBOARDING_DISABLED")
	}
	if c.completer == nil {
		return invalid(msgOpenAINotConfigured, "COMPLETION_NOT_CONFIGURED")
	}

	reply, err := c.completer.Complete(ctx, onboarding.NewCompletionRequest(c.model, input.Messages))
	if err != nil {
		var upstream *onboarding.UpstreamError
		switch {
		case errors.Is(err, onboarding.ErrNotConfigured):
			return invalid(msgOpenAINotConfigured, "COMPLETION_NOT_CONFIGURED")
		case errors.As(err, &upstream):
			c.logger.Error("onboarding completion failed", err, "profile_id", input.ActorID)
			return apperr.Upstream(err, msgOpenAIError+upstream.Error())
		default:
			return apperr.Internal(err, "onboarding: completion")
		}
	}

	extracted := onboarding.Extract(input.Messages, reply)
	if !extracted.IsEmpty() {
		if err := c.profiles.UpdateOnboardingData(ctx, input.ActorID, extracted.Map(), now(c.clock)); err != nil {
			return apperr.Internal(err, "onboarding: store extracted data")
		}
	}

	if input.Result != nil {
		*input.Result = OnboardingChatResult{Reply: reply, Extracted: extracted}
	}
	return nil
}
