package interview

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/interviewd/internal/config"
	"github.com/fyrsmithlabs/interviewd/internal/llm"
)

// scriptedProvider returns queued responses in order, then an error.
type scriptedProvider struct {
	responses []string
	err       error
	calls     int
}

func (p *scriptedProvider) Complete(ctx context.Context, req llm.CompletionRequest) (string, error) {
	p.calls++
	if p.err != nil {
		return "", p.err
	}
	if len(p.responses) == 0 {
		return "", errors.New("script exhausted")
	}
	resp := p.responses[0]
	p.responses = p.responses[1:]
	return resp, nil
}

func (p *scriptedProvider) Available() bool { return p.err == nil }

// failingProvider always errors: every step runs its heuristic path.
func failingProvider() *scriptedProvider {
	return &scriptedProvider{err: errors.New("provider unavailable")}
}

// newTestService builds a service over the given provider with test
// defaults and a deterministic nudge picker (always index 0).
func newTestService(t *testing.T, provider llm.Provider, mutate func(*config.Config)) Service {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.LLM.MinCallInterval = 0
	if mutate != nil {
		mutate(cfg)
	}

	svc, err := NewService(cfg, llm.NewGateway(provider, nil), nil,
		WithPicker(func(n int) int { return 0 }))
	require.NoError(t, err)
	return svc
}

// createTestSession creates a session with a fixed role and language.
func createTestSession(t *testing.T, svc Service, language string) *Session {
	t.Helper()

	sess, err := svc.CreateSession(context.Background(), CreateSessionRequest{
		Role:     "Backend Developer",
		Language: language,
	})
	require.NoError(t, err)
	return sess
}
