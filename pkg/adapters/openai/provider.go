// Package openai implements ports.ContentProvider on top of the OpenAI chat
// completions API.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/boardgen/internal/logging"
	"github.com/aretw0/boardgen/pkg/domain"
	"github.com/aretw0/boardgen/pkg/retry"
	"github.com/sashabaranov/go-openai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gpt-4o-mini"

// Provider generates board content with a chat model.
type Provider struct {
	client *openai.Client
	model  string
	logger *slog.Logger
}

type options struct {
	model      string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Provider.
type Option func(*options)

// WithModel sets the chat model.
func WithModel(model string) Option {
	return func(o *options) { o.model = model }
}

// WithBaseURL points the client at a compatible endpoint (e.g. a local gateway).
func WithBaseURL(url string) Option {
	return func(o *options) { o.baseURL = url }
}

// WithHTTPClient sets the HTTP client used for API calls.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// New creates a Provider for apiKey.
func New(apiKey string, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		return nil, errors.New("openai: api key is required")
	}
	o := options{model: DefaultModel}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logging.NewNop()
	}

	cfg := openai.DefaultConfig(apiKey)
	if o.baseURL != "" {
		cfg.BaseURL = o.baseURL
	}
	if o.httpClient != nil {
		cfg.HTTPClient = o.httpClient
	}
	return &Provider{
		client: openai.NewClientWithConfig(cfg),
		model:  o.model,
		logger: o.logger,
	}, nil
}

// Generate implements ports.ContentProvider. Retries (Attempt > 0) request
// strict JSON output.
func (p *Provider) Generate(ctx context.Context, req domain.GenerationRequest) (string, error) {
	user, err := json.Marshal(req.Prompt)
	if err != nil {
		return "", &domain.ValidationError{Err: fmt.Errorf("encode prompt: %w", err)}
	}

	system := systemPrompt(req.Scope)
	if req.Attempt > 0 {
		system += "\nYour previous answer could not be parsed. Reply with a single JSON object and nothing else."
	}
	chat := openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: string(user)},
		},
	}
	if req.Attempt > 0 {
		chat.ResponseFormat = &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	}

	p.logger.Debug("requesting completion", "model", p.model, "scope", req.Scope.String(), "attempt", req.Attempt)
	resp, err := p.client.CreateChatCompletion(ctx, chat)
	if err != nil {
		return "", classify(err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", &domain.MalformedResponseError{Scope: req.Scope, Reason: "no choices returned"}
	}
	p.logger.Debug("received completion", "finish_reason", resp.Choices[0].FinishReason)
	return resp.Choices[0].Message.Content, nil
}

// Online implements ports.ConnectivityChecker by listing models.
func (p *Provider) Online(ctx context.Context) error {
	if _, err := p.client.ListModels(ctx); err != nil {
		return fmt.Errorf("openai unreachable: %w", err)
	}
	return nil
}

// classify maps go-openai errors onto the domain taxonomy.
func classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return retry.StatusError(apiErr.HTTPStatusCode, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return retry.StatusError(reqErr.HTTPStatusCode, err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return &domain.TransientProviderError{Err: err}
}

func systemPrompt(scope domain.Scope) string {
	const intro = "You write quiz board content. The user message describes the board as JSON. " +
		"Each cell has a promptText shown to players and a revealedText that answers it. " +
		"Difficulty rises with the cell position. "
	switch scope.Kind {
	case domain.ScopeBoard:
		return intro + `Write every section. Reply as {"sections":[{"title":"...","cells":[{"promptText":"...","revealedText":"...","bonus":false}]}]} ` +
			"with exactly section_count sections of cells_per_section cells. Mark at most one cell per section as bonus."
	case domain.ScopeRefresh:
		return intro + `Rewrite the text of every cell in "existing", keeping the same order and topics. ` +
			`Reply as {"sections":[{"title":"...","cells":[{"promptText":"...","revealedText":"..."}]}]}.`
	case domain.ScopeSection:
		return intro + fmt.Sprintf(`Rewrite section %d, replacing the cells in "existing". `, scope.Section) +
			`Reply as {"cells":[{"promptText":"...","revealedText":"..."}]} with cells_per_section cells.`
	default:
		return intro + fmt.Sprintf(`Replace cell %d of section %d, shown in "existing". `, scope.Cell, scope.Section) +
			`Reply as {"cell":{"promptText":"...","revealedText":"..."}}.`
	}
}
