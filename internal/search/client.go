// Package search wraps the hosted completion endpoint. Search never fails:
// every problem degrades to the templated fallback payload, and the outcome
// records why.
package search

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"

	"github.com/liliang-cn/qualia/internal/config"
	"github.com/liliang-cn/qualia/internal/domain"
	"github.com/liliang-cn/qualia/internal/metrics"
)

// Client is the search API adapter
type Client struct {
	cfg    config.SearchConfig
	llm    *openai.Client
	logger *zap.Logger
	now    func() time.Time
}

// Option configures a Client
type Option func(*clientOptions)

type clientOptions struct {
	httpClient *http.Client
}

// WithHTTPClient overrides the HTTP client used for the completion call.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(o *clientOptions) {
		o.httpClient = httpClient
	}
}

// NewClient creates a search adapter. Without an API key no completion client
// is built and every search returns the fallback payload.
func NewClient(cfg config.SearchConfig, logger *zap.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	o := clientOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	c := &Client{
		cfg:    cfg,
		logger: logger.Named("search"),
		now:    time.Now,
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return c
	}

	httpClient := o.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	baseURL := cfg.BaseURL
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	llm := openai.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(0),
		option.WithHeader("Accept", "application/json"),
	)
	c.llm = &llm
	return c
}

// Configured reports whether a completion credential is present
func (c *Client) Configured() bool {
	return c.llm != nil
}

// Search answers query. It never returns nil and never fails.
func (c *Client) Search(ctx context.Context, query string) *domain.SearchResponse {
	start := time.Now()
	resp := c.search(ctx, query)

	failure := ""
	if resp.Outcome.Failure != nil {
		failure = string(resp.Outcome.Failure.Kind)
	}
	metrics.ObserveSearch(string(resp.Outcome.Source), failure, time.Since(start))
	return resp
}

func (c *Client) search(ctx context.Context, query string) *domain.SearchResponse {
	if c.llm == nil {
		c.logger.Warn("No Perplexity API key provided, using mock data")
		return c.fallback(query, domain.Outcome{Source: domain.SourceMockNoCredential})
	}

	completion, err := c.llm.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.cfg.Model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(c.cfg.SystemPrompt),
			openai.UserMessage(query),
		},
		Temperature: openai.Float(c.cfg.Temperature),
		MaxTokens:   openai.Int(c.cfg.MaxTokens),
	})
	if err != nil {
		failure := Classify(err)
		fields := []zap.Field{
			zap.String("kind", string(failure.Kind)),
			zap.String("reason", failure.Reason),
			zap.Error(err),
		}
		if failure.StatusCode != 0 {
			fields = append(fields, zap.Int("status", failure.StatusCode))
		}
		c.logger.Error("Error querying Perplexity API, falling back to mock data", fields...)

		resp := c.fallback(query, domain.Outcome{Source: domain.SourceMockUpstreamFailure, Failure: &failure})
		resp.Answer = FailureAnswer(query, failure.Reason)
		return resp
	}

	content := ""
	if len(completion.Choices) > 0 {
		content = completion.Choices[0].Message.Content
	}
	if content == "" {
		c.logger.Warn("No content in Perplexity API response, using mock data")
		return c.fallback(query, domain.Outcome{Source: domain.SourceMockEmptyAnswer})
	}

	return &domain.SearchResponse{
		Answer:        content,
		Thinking:      MockThinking(query, c.now().UTC()),
		SearchResults: MockSearchResults(c.cfg.Branding, query),
		Outcome:       domain.Outcome{Source: domain.SourceLive},
	}
}

func (c *Client) fallback(query string, outcome domain.Outcome) *domain.SearchResponse {
	return &domain.SearchResponse{
		Answer:        FallbackAnswer(query),
		Thinking:      MockThinking(query, c.now().UTC()),
		SearchResults: MockSearchResults(c.cfg.Branding, query),
		Outcome:       outcome,
	}
}
