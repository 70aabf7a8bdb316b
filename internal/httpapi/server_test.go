package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/interviewd/internal/config"
	"github.com/fyrsmithlabs/interviewd/internal/interview"
	"github.com/fyrsmithlabs/interviewd/internal/llm"
)

// downProvider forces every model-backed step onto its fallback path, so
// handlers exercise deterministic behavior.
type downProvider struct{}

func (downProvider) Complete(ctx context.Context, req llm.CompletionRequest) (string, error) {
	return "", errors.New("provider unavailable")
}

func (downProvider) Available() bool { return false }

func setupTestServer(t *testing.T, mutate func(*config.Config)) *Server {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.LLM.MinCallInterval = 0
	if mutate != nil {
		mutate(cfg)
	}

	svc, err := interview.NewService(cfg, llm.NewGateway(downProvider{}, nil), nil)
	require.NoError(t, err)

	server, err := NewServer(svc, zap.NewNop(), nil)
	require.NoError(t, err)
	return server
}

func doJSON(t *testing.T, server *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	server.echo.ServeHTTP(rec, req)
	return rec
}

func createInterview(t *testing.T, server *Server) InterviewResponse {
	t.Helper()

	rec := doJSON(t, server, http.MethodPost, "/api/v1/interviews",
		interview.CreateSessionRequest{Role: "Backend Developer", Language: "English"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp InterviewResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestNewServer(t *testing.T) {
	t.Run("creates server with valid config", func(t *testing.T) {
		svc, err := interview.NewService(nil, llm.NewGateway(downProvider{}, nil), nil)
		require.NoError(t, err)

		cfg := &Config{Host: "localhost", Port: 8484}
		server, err := NewServer(svc, zap.NewNop(), cfg)
		require.NoError(t, err)
		assert.NotNil(t, server)
		assert.Equal(t, cfg, server.config)
	})

	t.Run("uses defaults when config is nil", func(t *testing.T) {
		svc, err := interview.NewService(nil, llm.NewGateway(downProvider{}, nil), nil)
		require.NoError(t, err)

		server, err := NewServer(svc, zap.NewNop(), nil)
		require.NoError(t, err)
		assert.Equal(t, "localhost", server.config.Host)
		assert.Equal(t, 8484, server.config.Port)
	})

	t.Run("returns error when logger is nil", func(t *testing.T) {
		svc, err := interview.NewService(nil, llm.NewGateway(downProvider{}, nil), nil)
		require.NoError(t, err)

		_, err = NewServer(svc, nil, nil)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "logger is required")
	})

	t.Run("returns error when service is nil", func(t *testing.T) {
		_, err := NewServer(nil, zap.NewNop(), nil)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "service cannot be nil")
	})
}

func TestHandleHealth(t *testing.T) {
	server := setupTestServer(t, nil)

	rec := doJSON(t, server, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestHandleCreateInterview(t *testing.T) {
	t.Run("creates session", func(t *testing.T) {
		server := setupTestServer(t, nil)

		resp := createInterview(t, server)
		assert.NotEmpty(t, resp.ID)
		assert.Equal(t, "Backend Developer", resp.Role)
		assert.Equal(t, interview.StageIntroduction, resp.Stage)
		assert.Equal(t, 2, resp.Difficulty)
		assert.False(t, resp.Finished)
	})

	t.Run("rejects missing role", func(t *testing.T) {
		server := setupTestServer(t, nil)

		rec := doJSON(t, server, http.MethodPost, "/api/v1/interviews",
			interview.CreateSessionRequest{Language: "English"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestInterviewLifecycle(t *testing.T) {
	server := setupTestServer(t, nil)
	sess := createInterview(t, server)
	base := "/api/v1/interviews/" + sess.ID

	// Question: provider is down, so the canned fallback comes back.
	rec := doJSON(t, server, http.MethodPost, base+"/question", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var q QuestionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &q))
	assert.NotEmpty(t, q.Question)

	// Answer.
	rec = doJSON(t, server, http.MethodPost, base+"/answer", AnswerRequest{
		Question: q.Question,
		Answer:   "A detailed answer about connection pooling and backpressure.",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var view InterviewResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, 1, view.Turns)

	// Evaluation.
	rec = doJSON(t, server, http.MethodPost, base+"/evaluation", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var eval EvaluationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &eval))
	require.NotNil(t, eval.Evaluation)
	assert.True(t, eval.Evaluation.HeuristicOnly)

	// Report.
	rec = doJSON(t, server, http.MethodPost, base+"/report", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var result interview.FinalResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "Pending Review", result.Summary.FinalVerdict)
	assert.Equal(t, interview.VerdictClean, result.AntiCheat.Verdict)

	// Events.
	rec = doJSON(t, server, http.MethodGet, base+"/events", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var events EventsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &events))
	assert.NotEmpty(t, events.Events)
}

func TestHandleUnknownSession(t *testing.T) {
	server := setupTestServer(t, nil)

	for _, route := range []struct {
		method, path string
	}{
		{http.MethodGet, "/api/v1/interviews/missing"},
		{http.MethodPost, "/api/v1/interviews/missing/question"},
		{http.MethodPost, "/api/v1/interviews/missing/evaluation"},
		{http.MethodPost, "/api/v1/interviews/missing/report"},
		{http.MethodGet, "/api/v1/interviews/missing/events"},
	} {
		rec := doJSON(t, server, route.method, route.path, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, "%s %s", route.method, route.path)
	}
}

func TestFinishedSessionConflicts(t *testing.T) {
	server := setupTestServer(t, func(c *config.Config) {
		c.Interview.MaxTurnsForEval = 1
	})
	sess := createInterview(t, server)
	base := "/api/v1/interviews/" + sess.ID

	rec := doJSON(t, server, http.MethodPost, base+"/answer", AnswerRequest{
		Question: "Q1",
		Answer:   "the only answer",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, server, http.MethodPost, base+"/question", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, server, http.MethodPost, base+"/answer", AnswerRequest{
		Question: "Q2",
		Answer:   "too late",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandleSubmitAnswerValidation(t *testing.T) {
	server := setupTestServer(t, nil)
	sess := createInterview(t, server)

	rec := doJSON(t, server, http.MethodPost,
		fmt.Sprintf("/api/v1/interviews/%s/answer", sess.ID),
		AnswerRequest{Answer: "an answer with no question"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
