// Package ai wraps the text completion provider used to generate leads.
package ai

import (
	"context"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// ErrEmptyCompletion is returned when the provider responds without any text content.
var ErrEmptyCompletion = eris.New("ai: completion returned no content")

// Completer produces a text completion for a system instruction and user prompt.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (*Completion, error)
}

// CompletionRequest is our own request type for Complete.
type CompletionRequest struct {
	Model       string
	System      string
	Prompt      string
	MaxTokens   int64
	Temperature *float64
}

// Completion is the text returned by the provider.
type Completion struct {
	Text       string
	Model      string
	StopReason string
	Usage      TokenUsage
}

// TokenUsage tracks token consumption.
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
}

// modelPricing holds per-million-token pricing for known models.
var modelPricing = map[string][2]float64{
	// model → {input $/MTok, output $/MTok}
	"claude-haiku-4-5-20251001":  {0.80, 4.00},
	"claude-sonnet-4-5-20250929": {3.00, 15.00},
}

// EstimateCost computes an estimated cost in USD. Returns 0 for unknown models.
func (u TokenUsage) EstimateCost(model string) float64 {
	pricing, ok := modelPricing[model]
	if !ok {
		return 0
	}
	return (float64(u.InputTokens)/1e6)*pricing[0] + (float64(u.OutputTokens)/1e6)*pricing[1]
}

// LogCost logs token usage and estimated cost with structured zap fields.
func (u TokenUsage) LogCost(model, phase string) {
	zap.L().Info("ai usage",
		zap.String("model", model),
		zap.String("phase", phase),
		zap.Int64("input_tokens", u.InputTokens),
		zap.Int64("output_tokens", u.OutputTokens),
		zap.Float64("estimated_cost_usd", u.EstimateCost(model)),
	)
}

// sdkClient implements Completer using the official anthropic-sdk-go.
type sdkClient struct {
	client       sdk.Client
	defaultModel string
	maxTokens    int64
}

// NewClient creates a Completer backed by the Anthropic SDK.
// Extra request options (base URL, retries, HTTP client) are passed through to the SDK.
func NewClient(apiKey, defaultModel string, maxTokens int64, opts ...option.RequestOption) Completer {
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	all := append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &sdkClient{
		client:       sdk.NewClient(all...),
		defaultModel: defaultModel,
		maxTokens:    maxTokens,
	}
}

func (c *sdkClient) Complete(ctx context.Context, req CompletionRequest) (*Completion, error) {
	model := req.Model
	if model == "" {
		model = c.defaultModel
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.maxTokens
	}

	params := sdk.MessageNewParams{
		Model:     sdk.Model(model),
		MaxTokens: maxTokens,
		Messages:  []sdk.MessageParam{sdk.NewUserMessage(sdk.NewTextBlock(req.Prompt))},
	}
	if req.System != "" {
		params.System = []sdk.TextBlockParam{{Text: req.System}}
	}
	if req.Temperature != nil {
		params.Temperature = sdk.Float(*req.Temperature)
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, eris.Wrap(err, "ai: create message")
	}

	out := fromSDKMessage(msg)
	out.Usage.LogCost(out.Model, "lead_generation")
	if strings.TrimSpace(out.Text) == "" {
		return nil, ErrEmptyCompletion
	}
	return out, nil
}

func fromSDKMessage(msg *sdk.Message) *Completion {
	var sb strings.Builder
	for _, b := range msg.Content {
		if b.Type == "" || b.Type == "text" {
			sb.WriteString(b.Text)
		}
	}
	return &Completion{
		Text:       sb.String(),
		Model:      string(msg.Model),
		StopReason: string(msg.StopReason),
		Usage: TokenUsage{
			InputTokens:  msg.Usage.InputTokens,
			OutputTokens: msg.Usage.OutputTokens,
		},
	}
}
