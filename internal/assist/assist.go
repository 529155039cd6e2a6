// Package assist suggests clearer wording for deduction descriptions. A
// suggestion is only ever returned to the caller; applying it is a separate,
// explicit user action.
package assist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"depositguard/pkg/money"
	"depositguard/pkg/platform/sentinel"
)

// DeductionContext is what the model sees about one deduction.
type DeductionContext struct {
	Description   string
	Category      string
	Amount        money.Amount
	DamageType    string
	ItemAgeMonths *int
	StateCode     string
}

type Suggestion struct {
	Description string `json:"description"`
	Rationale   string `json:"rationale"`
}

const systemPrompt = `You help landlords describe security deposit deductions.
Rewrite the description so it is specific and factual: name the item, where it is in the unit, the damage and the remedy.
Never present normal wear and tear as a reason to charge. Do not invent facts that are not in the input.
Reply with a JSON object: {"description": "...", "rationale": "..."}.`

// OpenAIImprover calls the chat completions API. Calls share one
// process-wide rate limiter.
type OpenAIImprover struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	limiter *rate.Limiter
	logger  *slog.Logger
}

type settings struct {
	baseURL string
	model   string
	timeout time.Duration
	rps     float64
	burst   int
	logger  *slog.Logger
}

type Option func(*settings)

func WithModel(model string) Option {
	return func(s *settings) { s.model = model }
}

// WithBaseURL points the client at an OpenAI-compatible endpoint.
func WithBaseURL(url string) Option {
	return func(s *settings) { s.baseURL = url }
}

// WithRateLimit allows rps requests per second with the given burst.
func WithRateLimit(rps float64, burst int) Option {
	return func(s *settings) {
		s.rps = rps
		s.burst = burst
	}
}

func WithTimeout(d time.Duration) Option {
	return func(s *settings) { s.timeout = d }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) { s.logger = logger }
}

func NewOpenAI(apiKey string, opts ...Option) (*OpenAIImprover, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key is required")
	}
	s := settings{
		model:   openai.GPT4oMini,
		timeout: 20 * time.Second,
		rps:     2,
		burst:   4,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(&s)
	}
	cfg := openai.DefaultConfig(apiKey)
	if s.baseURL != "" {
		cfg.BaseURL = s.baseURL
	}
	if s.burst <= 0 {
		s.burst = 1
	}
	return &OpenAIImprover{
		client:  openai.NewClientWithConfig(cfg),
		model:   s.model,
		timeout: s.timeout,
		limiter: rate.NewLimiter(rate.Limit(s.rps), s.burst),
		logger:  s.logger,
	}, nil
}

// Improve asks the model for a rewritten description. Transport failures and
// unusable replies are reported as sentinel.ErrUnavailable.
func (i *OpenAIImprover) Improve(ctx context.Context, in DeductionContext) (*Suggestion, error) {
	if err := i.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limit: %v", sentinel.ErrUnavailable, err)
	}
	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	resp, err := i.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: i.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(in)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
		MaxTokens:      400,
		Temperature:    0.2,
	})
	if err != nil {
		i.logger.WarnContext(ctx, "wording suggestion failed", "error", err)
		return nil, fmt.Errorf("%w: openai: %v", sentinel.ErrUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: openai returned no choices", sentinel.ErrUnavailable)
	}

	var out Suggestion
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return nil, fmt.Errorf("%w: decode suggestion: %v", sentinel.ErrUnavailable, err)
	}
	out.Description = strings.TrimSpace(out.Description)
	out.Rationale = strings.TrimSpace(out.Rationale)
	if out.Description == "" {
		return nil, fmt.Errorf("%w: empty suggestion", sentinel.ErrUnavailable)
	}
	return &out, nil
}

func buildPrompt(in DeductionContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Description: %s\n", in.Description)
	fmt.Fprintf(&b, "Category: %s\n", in.Category)
	fmt.Fprintf(&b, "Amount: $%s\n", in.Amount)
	if in.DamageType != "" {
		fmt.Fprintf(&b, "Damage type: %s\n", in.DamageType)
	}
	if in.ItemAgeMonths != nil {
		fmt.Fprintf(&b, "Item age: %d months\n", *in.ItemAgeMonths)
	}
	if in.StateCode != "" {
		fmt.Fprintf(&b, "State: %s\n", in.StateCode)
	}
	return b.String()
}

// Disabled is used when no API key is configured.
type Disabled struct{}

func (Disabled) Improve(context.Context, DeductionContext) (*Suggestion, error) {
	return nil, fmt.Errorf("%w: wording suggestions are not configured", sentinel.ErrUnavailable)
}
