// Package httpapi provides the HTTP API for interviewd.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/interviewd/internal/eventlog"
	"github.com/fyrsmithlabs/interviewd/internal/interview"
)

// Server provides HTTP endpoints for interviewd.
type Server struct {
	echo    *echo.Echo
	service interview.Service
	logger  *zap.Logger
	config  *Config
}

// Config holds HTTP server configuration.
type Config struct {
	Host string
	Port int
}

// NewServer creates a new HTTP server.
func NewServer(service interview.Service, logger *zap.Logger, cfg *Config) (*Server, error) {
	if service == nil {
		return nil, fmt.Errorf("interview service cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if cfg == nil {
		cfg = &Config{
			Host: "localhost",
			Port: 8484,
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(NewHTTPMetrics(logger).MetricsMiddleware())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			duration := time.Since(start)

			logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", duration),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)

			return err
		}
	})

	s := &Server{
		echo:    e,
		service: service,
		logger:  logger,
		config:  cfg,
	}

	// Register routes
	s.registerRoutes()

	return s, nil
}

// registerRoutes sets up the HTTP endpoints.
func (s *Server) registerRoutes() {
	// Health check
	s.echo.GET("/health", s.handleHealth)

	// API v1 routes
	v1 := s.echo.Group("/api/v1")
	v1.POST("/interviews", s.handleCreateInterview)
	v1.GET("/interviews/:id", s.handleGetInterview)
	v1.POST("/interviews/:id/question", s.handleNextQuestion)
	v1.POST("/interviews/:id/answer", s.handleSubmitAnswer)
	v1.POST("/interviews/:id/evaluation", s.handleEvaluate)
	v1.POST("/interviews/:id/report", s.handleReport)
	v1.GET("/interviews/:id/events", s.handleEvents)
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// InterviewResponse is the session view returned by creation and lookup.
type InterviewResponse struct {
	ID         string                 `json:"id"`
	Role       string                 `json:"role"`
	Language   string                 `json:"language"`
	Stage      interview.Stage        `json:"stage"`
	Difficulty int                    `json:"difficulty"`
	Skills     interview.SkillProfile `json:"skills"`
	Turns      int                    `json:"turns"`
	Finished   bool                   `json:"finished"`
	HasPlan    bool                   `json:"has_plan"`
}

// QuestionResponse is the response body for POST /api/v1/interviews/:id/question.
type QuestionResponse struct {
	Question string `json:"question"`
}

// AnswerRequest is the request body for POST /api/v1/interviews/:id/answer.
type AnswerRequest struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// EvaluationResponse is the response body for POST /api/v1/interviews/:id/evaluation.
type EvaluationResponse struct {
	Evaluation *interview.TurnEvaluation `json:"evaluation"`
	Difficulty int                       `json:"difficulty"`
	Skills     interview.SkillProfile    `json:"skills"`
}

// EventsResponse is the response body for GET /api/v1/interviews/:id/events.
type EventsResponse struct {
	Events []eventlog.Event `json:"events"`
}

func sessionView(sess *interview.Session) InterviewResponse {
	return InterviewResponse{
		ID:         sess.ID,
		Role:       sess.Role,
		Language:   sess.Language,
		Stage:      sess.Stage(),
		Difficulty: sess.Difficulty,
		Skills:     sess.Skills,
		Turns:      len(sess.Transcript),
		Finished:   sess.Finished,
		HasPlan:    sess.Strategy != nil,
	}
}

// httpError maps service errors onto HTTP status codes.
func httpError(err error) error {
	switch {
	case errors.Is(err, interview.ErrSessionNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "session not found")
	case errors.Is(err, interview.ErrSessionFinished):
		return echo.NewHTTPError(http.StatusConflict, "session is finished")
	case errors.Is(err, interview.ErrRoleRequired):
		return echo.NewHTTPError(http.StatusBadRequest, "role field is required")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}

// handleHealth returns a simple health check response.
func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// handleCreateInterview creates a new interview session.
func (s *Server) handleCreateInterview(c echo.Context) error {
	var req interview.CreateSessionRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn("invalid create request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	sess, err := s.service.CreateSession(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, sessionView(sess))
}

// handleGetInterview returns the current session view.
func (s *Server) handleGetInterview(c echo.Context) error {
	sess, err := s.service.GetSession(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, sessionView(sess))
}

// handleNextQuestion produces the next question for the session.
func (s *Server) handleNextQuestion(c echo.Context) error {
	question, err := s.service.NextQuestion(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, QuestionResponse{Question: question})
}

// handleSubmitAnswer records a candidate answer as a new turn.
func (s *Server) handleSubmitAnswer(c echo.Context) error {
	var req AnswerRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn("invalid answer request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Question == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "question field is required")
	}

	if err := s.service.SubmitAnswer(c.Request().Context(), c.Param("id"), req.Question, req.Answer); err != nil {
		return httpError(err)
	}

	sess, err := s.service.GetSession(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, sessionView(sess))
}

// handleEvaluate scores the most recent turn.
func (s *Server) handleEvaluate(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	if err := s.service.EvaluateLatestTurn(ctx, id); err != nil {
		return httpError(err)
	}

	sess, err := s.service.GetSession(ctx, id)
	if err != nil {
		return httpError(err)
	}

	resp := EvaluationResponse{
		Difficulty: sess.Difficulty,
		Skills:     sess.Skills,
	}
	if turn := sess.LatestTurn(); turn != nil {
		resp.Evaluation = turn.Evaluation
	}
	return c.JSON(http.StatusOK, resp)
}

// handleReport finalizes the session and returns the aggregated report.
func (s *Server) handleReport(c echo.Context) error {
	result, err := s.service.Finalize(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// handleEvents returns the session's event log.
func (s *Server) handleEvents(c echo.Context) error {
	events, err := s.service.Events(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, EventsResponse{Events: events})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info("starting http server", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}
