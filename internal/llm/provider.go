package llm

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/fyrsmithlabs/interviewd/internal/config"
)

// Default provider tuning.
const (
	defaultMaxTokens   = 1024
	defaultTimeout     = 60 * time.Second
	defaultMaxRetries  = 3
	defaultBaseBackoff = 1 * time.Second
)

// Rate limiter defaults: 50 requests per minute for both APIs.
const (
	defaultRateLimit = 50.0 / 60.0
	defaultBurst     = 5
)

// CompletionRequest is a single provider call.
type CompletionRequest struct {
	Model       string
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// Provider performs a completion against an external model API.
type Provider interface {
	// Complete sends the request and returns the generated text.
	Complete(ctx context.Context, req CompletionRequest) (string, error)

	// Available reports whether the provider is configured and usable.
	Available() bool
}

// NewProvider creates a completion provider from configuration.
func NewProvider(cfg config.LLMConfig) (Provider, error) {
	switch cfg.Provider {
	case "disabled":
		return &disabledProvider{}, nil
	case "anthropic":
		return newAnthropicProvider(cfg)
	case "openai":
		return newOpenAIProvider(cfg)
	default:
		return nil, fmt.Errorf("unknown provider: %s", cfg.Provider)
	}
}

// disabledProvider refuses every call; the engine runs fully heuristic.
type disabledProvider struct{}

func (d *disabledProvider) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	return "", fmt.Errorf("llm provider disabled")
}

func (d *disabledProvider) Available() bool { return false }

// newLimiter builds the shared per-provider rate limiter.
func newLimiter() *rate.Limiter {
	return rate.NewLimiter(rate.Limit(defaultRateLimit), defaultBurst)
}

// providerTimeout resolves the HTTP client timeout from config.
func providerTimeout(cfg config.LLMConfig) time.Duration {
	if cfg.Timeout.Duration() > 0 {
		return cfg.Timeout.Duration()
	}
	return defaultTimeout
}

// retryableError wraps an error to indicate it can be retried.
type retryableError struct {
	err error
}

func (e *retryableError) Error() string {
	return e.err.Error()
}

func (e *retryableError) Unwrap() error {
	return e.err
}

// isRetryableError checks if an error should be retried.
func isRetryableError(err error) bool {
	for e := err; e != nil; {
		if _, ok := e.(*retryableError); ok {
			return true
		}
		if unwrapper, ok := e.(interface{ Unwrap() error }); ok {
			e = unwrapper.Unwrap()
		} else {
			break
		}
	}
	return false
}

// withRetries runs fn with exponential backoff on retryable errors.
func withRetries(ctx context.Context, maxRetries int, fn func() (string, error)) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := defaultBaseBackoff * time.Duration(1<<(attempt-1))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		text, err := fn()
		if err == nil {
			return text, nil
		}

		lastErr = err
		if !isRetryableError(err) {
			return "", err
		}
	}

	return "", fmt.Errorf("max retries exceeded: %w", lastErr)
}
