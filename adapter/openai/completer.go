// Package openai backs the onboarding coach with the OpenAI chat completions
// API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dylanswipeyourbite/squadupv2/onboarding"
	"github.com/dylanswipeyourbite/squadupv2/pkg/types"
	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Config configures the completion client.
type Config struct {
	APIKey  string
	BaseURL string
	// MaxRetries of zero keeps the SDK default, a negative value disables
	// retries.
	MaxRetries int
	HTTPClient *http.Client
}

// Completer implements onboarding.Completer.
type Completer struct {
	client     openaisdk.Client
	configured bool
}

var _ onboarding.Completer = (*Completer)(nil)

// NewCompleter builds a client. A blank API key yields a completer that
// reports onboarding.ErrNotConfigured on every call.
func NewCompleter(cfg Config) *Completer {
	key := strings.TrimSpace(cfg.APIKey)
	opts := []option.RequestOption{option.WithAPIKey(key)}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		opts = append(opts, option.WithBaseURL(base))
	}
	switch {
	case cfg.MaxRetries > 0:
		opts = append(opts, option.WithMaxRetries(cfg.MaxRetries))
	case cfg.MaxRetries < 0:
		opts = append(opts, option.WithMaxRetries(0))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}
	return &Completer{
		client:     openaisdk.NewClient(opts...),
		configured: key != "",
	}
}

// Complete sends the system prompt and transcript and returns the reply text.
func (c *Completer) Complete(ctx context.Context, req onboarding.CompletionRequest) (string, error) {
	if !c.configured {
		return "", onboarding.ErrNotConfigured
	}

	messages := make([]openaisdk.ChatCompletionMessageParamUnion, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, openaisdk.SystemMessage(req.System))
	}
	for _, msg := range req.Messages {
		messages = append(messages, toParam(msg))
	}

	params := openaisdk.ChatCompletionNewParams{
		Model:            openaisdk.ChatModel(req.Model),
		Messages:         messages,
		Temperature:      openaisdk.Float(req.Temperature),
		PresencePenalty:  openaisdk.Float(req.PresencePenalty),
		FrequencyPenalty: openaisdk.Float(req.FrequencyPenalty),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openaisdk.Int(int64(req.MaxTokens))
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", &onboarding.UpstreamError{Err: fmt.Errorf("openai: chat completion: %w", err)}
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", &onboarding.UpstreamError{Err: errors.New("openai: completion returned no choices")}
	}
	return resp.Choices[0].Message.Content, nil
}

func toParam(msg types.ChatMessage) openaisdk.ChatCompletionMessageParamUnion {
	switch strings.ToLower(msg.Role) {
	case "assistant":
		return openaisdk.AssistantMessage(msg.Content)
	case "system":
		return openaisdk.SystemMessage(msg.Content)
	default:
		return openaisdk.UserMessage(msg.Content)
	}
}
