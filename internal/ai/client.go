// Package ai wraps the text-completion service used by the answerer
// and the underspecified-request classifier.
//
// The service is treated as an optional capability: when no credential
// is configured the client reports itself unavailable and every caller
// degrades to a documented fallback instead of failing. Callers that
// need to distinguish "service skipped" from "service found nothing"
// check Available before interpreting an empty result.
package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"golang.org/x/sync/semaphore"

	"github.com/aurorahq/memberqa/internal/config"
)

// ErrUnavailable is returned by Complete when no credential is
// configured. Callers treat it as "skip this feature", not a failure.
var ErrUnavailable = errors.New("completion service not configured")

// Completer is the capability the classifier and answerer depend on.
// Tests substitute a stub; production wires *Client.
type Completer interface {
	// Available reports whether the service can be called at all.
	Available() bool
	// Complete submits one system+user exchange and returns the raw
	// completion text.
	Complete(ctx context.Context, req Request) (string, error)
}

// Request is a single completion call.
type Request struct {
	Operation   string // short label for diagnostics
	System      string
	Prompt      string
	MaxTokens   int64
	Temperature float64
}

// Client talks to the Anthropic messages API with bounded retries and
// a concurrency cap.
type Client struct {
	client    anthropic.Client
	model     string
	retry     RetryConfig
	sem       *semaphore.Weighted
	available bool
	log       *slog.Logger
}

var _ Completer = (*Client)(nil)

// NewClient builds a completion client from configuration. A missing
// API key yields a client that is permanently unavailable rather than
// an error; this is the documented degraded mode.
func NewClient(cfg config.CompletionConfig) *Client {
	model := cfg.Model
	if model == "" {
		model = config.DefaultModel
	}

	retry := DefaultRetryConfig()
	if cfg.Timeout > 0 {
		retry.Timeout = cfg.Timeout
	}

	c := &Client{
		model: model,
		retry: retry,
		log:   slog.Default().With("component", "ai"),
	}
	if cfg.APIKey == "" {
		c.log.Warn("no completion credential configured; classifier and answerer will degrade")
		return c
	}

	c.client = anthropic.NewClient(option.WithAPIKey(cfg.APIKey))
	c.available = true
	if retry.MaxConcurrentCalls > 0 {
		c.sem = semaphore.NewWeighted(int64(retry.MaxConcurrentCalls))
	}
	return c
}

// Available reports whether a credential is configured.
func (c *Client) Available() bool {
	return c.available
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.model
}

// Complete makes one completion call with retry and backoff, returning
// the concatenated text blocks of the response.
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	if !c.available {
		return "", ErrUnavailable
	}

	if c.sem != nil {
		if err := c.sem.Acquire(ctx, 1); err != nil {
			return "", fmt.Errorf("failed to acquire completion slot for %s: %w", req.Operation, err)
		}
		defer c.sem.Release(1)
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 256
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   maxTokens,
		Temperature: anthropic.Float(req.Temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	startTime := time.Now()
	var response *anthropic.Message
	err := c.retryWithBackoff(ctx, req.Operation, func(attemptCtx context.Context) error {
		resp, apiErr := c.client.Messages.New(attemptCtx, params)
		if apiErr != nil {
			return apiErr
		}
		response = resp
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("completion call failed: %w", err)
	}

	var text string
	for _, block := range response.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}

	c.log.Debug("completion call",
		"operation", req.Operation,
		"input_tokens", response.Usage.InputTokens,
		"output_tokens", response.Usage.OutputTokens,
		"duration", time.Since(startTime))

	return text, nil
}
