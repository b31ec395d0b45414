package onboarding

import (
	"context"
	"errors"

	"github.com/dylanswipeyourbite/squadupv2/pkg/types"
)

// Default sampling parameters for the onboarding coach.
const (
	DefaultModel            = "gpt-4-turbo-preview"
	DefaultTemperature      = 0.8
	DefaultMaxTokens        = 200
	DefaultPresencePenalty  = 0.6
	DefaultFrequencyPenalty = 0.3
)

// ErrNotConfigured is returned by completers that have no API key.
var ErrNotConfigured = errors.New("onboarding: completion api key not configured")

// UpstreamError reports a failed call to the completion provider.
type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string {
	if e == nil || e.Err == nil {
		return "onboarding: completion failed"
	}
	return e.Err.Error()
}

func (e *UpstreamError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// CompletionRequest is a chat completion call with the coach persona.
type CompletionRequest struct {
	Model            string
	System           string
	Messages         []types.ChatMessage
	Temperature      float64
	MaxTokens        int
	PresencePenalty  float64
	FrequencyPenalty float64
}

// NewCompletionRequest builds the coach request with the default sampling
// parameters. The system prompt is kept apart from the transcript.
func NewCompletionRequest(model string, messages []types.ChatMessage) CompletionRequest {
	if model == "" {
		model = DefaultModel
	}
	return CompletionRequest{
		Model:            model,
		System:           SystemPrompt,
		Messages:         append([]types.ChatMessage(nil), messages...),
		Temperature:      DefaultTemperature,
		MaxTokens:        DefaultMaxTokens,
		PresencePenalty:  DefaultPresencePenalty,
		FrequencyPenalty: DefaultFrequencyPenalty,
	}
}

// Completer produces the assistant's next reply.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(ctx context.Context, req CompletionRequest) (string, error)

// Complete implements Completer.
func (f CompleterFunc) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	return f(ctx, req)
}
