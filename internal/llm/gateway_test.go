package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/interviewd/internal/config"
)

// stubProvider returns canned responses and records call counts.
type stubProvider struct {
	response string
	err      error
	calls    int
}

func (s *stubProvider) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	s.calls++
	return s.response, s.err
}

func (s *stubProvider) Available() bool { return true }

func TestGenerateText(t *testing.T) {
	stub := &stubProvider{response: "Tell me about your last project."}
	g := NewGateway(stub, nil)
	b := NewBudget(5, 0)

	text, ok := g.GenerateText(context.Background(), b, "model-a", "persona", "prompt")
	require.True(t, ok)
	assert.Equal(t, "Tell me about your last project.", text)
	assert.Equal(t, 1, b.Usage().CallsUsed)
}

func TestGenerateTextProviderErrorDegrades(t *testing.T) {
	stub := &stubProvider{err: errors.New("connection refused")}
	g := NewGateway(stub, nil)
	b := NewBudget(5, 0)

	_, ok := g.GenerateText(context.Background(), b, "model-a", "", "prompt")
	assert.False(t, ok)
}

func TestExhaustedBudgetSkipsIO(t *testing.T) {
	stub := &stubProvider{response: "unused"}
	g := NewGateway(stub, nil)
	b := NewBudget(1, 0)

	_, ok := g.GenerateText(context.Background(), b, "m", "", "p")
	require.True(t, ok)

	// Quota spent: the provider must not be contacted again.
	_, ok = g.GenerateText(context.Background(), b, "m", "", "p")
	assert.False(t, ok)
	assert.Equal(t, 1, stub.calls)
	assert.Equal(t, 1, b.Usage().CallsUsed)
}

func TestNilBudgetRefused(t *testing.T) {
	stub := &stubProvider{response: "unused"}
	g := NewGateway(stub, nil)

	_, ok := g.GenerateText(context.Background(), nil, "m", "", "p")
	assert.False(t, ok)
	assert.Zero(t, stub.calls)
}

func TestGenerateStructured(t *testing.T) {
	stub := &stubProvider{response: "```json\n{\"score\": 72, \"quality\": \"good\"}\n```"}
	g := NewGateway(stub, nil)
	b := NewBudget(5, 0)

	var out struct {
		Score   int    `json:"score"`
		Quality string `json:"quality"`
	}
	ok := g.GenerateStructured(context.Background(), b, "m", "", "p", &out)
	require.True(t, ok)
	assert.Equal(t, 72, out.Score)
	assert.Equal(t, "good", out.Quality)
}

func TestGenerateStructuredUnparsable(t *testing.T) {
	stub := &stubProvider{response: "I'd rate this answer quite highly."}
	g := NewGateway(stub, nil)
	b := NewBudget(5, 0)

	var out map[string]any
	ok := g.GenerateStructured(context.Background(), b, "m", "", "p", &out)
	assert.False(t, ok)
}

func TestNewProviderFactory(t *testing.T) {
	p, err := NewProvider(config.LLMConfig{Provider: "disabled"})
	require.NoError(t, err)
	assert.False(t, p.Available())

	_, err = NewProvider(config.LLMConfig{Provider: "anthropic"})
	require.Error(t, err) // API key missing

	p, err = NewProvider(config.LLMConfig{Provider: "anthropic", APIKey: "sk-test"})
	require.NoError(t, err)
	assert.True(t, p.Available())

	p, err = NewProvider(config.LLMConfig{Provider: "openai", APIKey: "sk-test"})
	require.NoError(t, err)
	assert.True(t, p.Available())

	_, err = NewProvider(config.LLMConfig{Provider: "bard"})
	assert.Error(t, err)
}

func TestIsRetryableError(t *testing.T) {
	assert.False(t, isRetryableError(nil))
	assert.False(t, isRetryableError(errors.New("plain")))
	assert.True(t, isRetryableError(&retryableError{err: errors.New("429")}))

	wrapped := &retryableError{err: errors.New("inner")}
	assert.True(t, isRetryableError(wrapped))
}
