// Package advisor adds a short LLM-written commentary to actionable alerts.
package advisor

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rs/zerolog"

	"SwingSentinel/internal/model"
)

// Unavailable replaces the commentary when the model call fails.
const Unavailable = "AI analysis unavailable"

// Advisor comments on a decision. It never fails: errors become Unavailable.
type Advisor interface {
	Commentary(ctx context.Context, d *model.Decision) string
}

// Noop returns no commentary.
type Noop struct{}

func (Noop) Commentary(context.Context, *model.Decision) string { return "" }

// Claude asks an Anthropic model for a two-to-three sentence recommendation.
type Claude struct {
	messages  anthropic.MessageService
	model     string
	maxTokens int
	logger    zerolog.Logger
}

// NewClaude builds a Claude advisor. Extra request options (base URL, retries)
// are passed to the client.
func NewClaude(apiKey, modelName string, maxTokens int, logger zerolog.Logger, opts ...option.RequestOption) *Claude {
	client := anthropic.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...)
	return &Claude{
		messages:  client.Messages,
		model:     modelName,
		maxTokens: maxTokens,
		logger:    logger.With().Str("component", "advisor").Logger(),
	}
}

// New returns a Claude advisor when apiKey is set, otherwise Noop.
func New(apiKey, modelName string, maxTokens int, logger zerolog.Logger) Advisor {
	if apiKey == "" {
		return Noop{}
	}
	return NewClaude(apiKey, modelName, maxTokens, logger)
}

// Prompt is the user message sent for d.
func Prompt(d *model.Decision) string {
	return fmt.Sprintf(`Analyze %s stock:
Current Price: $%.2f
Technical Signal: %s
Reason: %s

Provide a brief trading recommendation (2-3 sentences max).`, d.Symbol, d.Price, d.Signal, d.Reason)
}

func (c *Claude) Commentary(ctx context.Context, d *model.Decision) string {
	text, err := c.complete(ctx, Prompt(d))
	if err != nil {
		c.logger.Warn().Err(err).Str("symbol", d.Symbol).Msg("commentary failed")
		return Unavailable
	}
	return text
}

func (c *Claude) complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: int64(c.maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("claude API call failed: %w", err)
	}

	var out strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			out.WriteString(block.Text)
		}
	}
	if out.Len() == 0 {
		return "", fmt.Errorf("no text in claude response")
	}
	return strings.TrimSpace(out.String()), nil
}
