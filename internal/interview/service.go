package interview

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/interviewd/internal/config"
	"github.com/fyrsmithlabs/interviewd/internal/eventlog"
	"github.com/fyrsmithlabs/interviewd/internal/llm"
)

const instrumentationName = "github.com/fyrsmithlabs/interviewd/internal/interview"

// Service errors.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionFinished = errors.New("session is finished")
	ErrRoleRequired    = errors.New("role is required")
)

// Service owns interview sessions and sequences the engine's steps.
type Service interface {
	// CreateSession initializes a new interview session, optionally
	// generating a strategy from the job description and résumé.
	CreateSession(ctx context.Context, req CreateSessionRequest) (*Session, error)

	// GetSession retrieves a session by ID.
	GetSession(ctx context.Context, sessionID string) (*Session, error)

	// NextQuestion produces the next question text for the session,
	// handling silence and skip sentinels first.
	NextQuestion(ctx context.Context, sessionID string) (string, error)

	// SubmitAnswer appends a turn. Reaching the configured maximum turn
	// count finishes the session.
	SubmitAnswer(ctx context.Context, sessionID, question, answer string) error

	// EvaluateLatestTurn scores the most recent turn and applies its
	// difficulty and skill updates.
	EvaluateLatestTurn(ctx context.Context, sessionID string) error

	// Finalize produces the final report. It never fails once the
	// session exists.
	Finalize(ctx context.Context, sessionID string) (*FinalResult, error)

	// Events returns the session's event log entries.
	Events(ctx context.Context, sessionID string) ([]eventlog.Event, error)
}

// CreateSessionRequest carries session creation parameters.
type CreateSessionRequest struct {
	Role            string `json:"role"`
	Language        string `json:"language"`
	ExternalContext string `json:"external_context"`

	// ResumeText feeds strategy generation when GenerateStrategy is set.
	ResumeText       string `json:"resume_text"`
	GenerateStrategy bool   `json:"generate_strategy"`
}

// sessionEntry pairs a session with its operation lock. The engine has
// a single-writer model per session; the lock enforces it at the
// service boundary so transport handlers need no further care.
type sessionEntry struct {
	mu   sync.Mutex
	sess *Session
}

// service implements the Service interface.
type service struct {
	cfg     *config.Config
	gateway *llm.Gateway
	logger  *zap.Logger

	// pick selects a nudge phrase index; injectable for deterministic tests.
	pick func(n int) int

	// Telemetry
	tracer            trace.Tracer
	meter             metric.Meter
	sessionCounter    metric.Int64Counter
	questionCounter   metric.Int64Counter
	evaluationCounter metric.Int64Counter
	fallbackCounter   metric.Int64Counter

	mu       sync.RWMutex
	sessions map[string]*sessionEntry
}

// Option customizes the service.
type Option func(*service)

// WithPicker injects the nudge-phrase selection function.
func WithPicker(pick func(n int) int) Option {
	return func(s *service) { s.pick = pick }
}

// NewService creates the interview orchestrator.
func NewService(cfg *config.Config, gateway *llm.Gateway, logger *zap.Logger, opts ...Option) (Service, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if gateway == nil {
		return nil, errors.New("gateway is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &service{
		cfg:      cfg,
		gateway:  gateway,
		logger:   logger,
		pick:     rand.Intn,
		tracer:   otel.Tracer(instrumentationName),
		meter:    otel.Meter(instrumentationName),
		sessions: make(map[string]*sessionEntry),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.initMetrics()

	return s, nil
}

// initMetrics initializes OpenTelemetry metrics.
func (s *service) initMetrics() {
	var err error

	s.sessionCounter, err = s.meter.Int64Counter(
		"interviewd.interview.sessions_total",
		metric.WithDescription("Total interview sessions created"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		s.logger.Warn("failed to create session counter", zap.Error(err))
	}

	s.questionCounter, err = s.meter.Int64Counter(
		"interviewd.interview.questions_total",
		metric.WithDescription("Total questions produced, including nudges and fallbacks"),
		metric.WithUnit("{question}"),
	)
	if err != nil {
		s.logger.Warn("failed to create question counter", zap.Error(err))
	}

	s.evaluationCounter, err = s.meter.Int64Counter(
		"interviewd.interview.evaluations_total",
		metric.WithDescription("Total turn evaluations applied"),
		metric.WithUnit("{evaluation}"),
	)
	if err != nil {
		s.logger.Warn("failed to create evaluation counter", zap.Error(err))
	}

	s.fallbackCounter, err = s.meter.Int64Counter(
		"interviewd.interview.fallbacks_total",
		metric.WithDescription("Model-backed steps that degraded to a heuristic or literal default"),
		metric.WithUnit("{fallback}"),
	)
	if err != nil {
		s.logger.Warn("failed to create fallback counter", zap.Error(err))
	}
}

func (s *service) addFallback(ctx context.Context) {
	if s.fallbackCounter != nil {
		s.fallbackCounter.Add(ctx, 1)
	}
}

// CreateSession implements Service.
func (s *service) CreateSession(ctx context.Context, req CreateSessionRequest) (*Session, error) {
	ctx, span := s.tracer.Start(ctx, "interview.create_session")
	defer span.End()

	if req.Role == "" {
		return nil, ErrRoleRequired
	}
	language := req.Language
	if language == "" {
		language = "English"
	}

	// A fresh budget per session: quota state is scoped to the session,
	// never shared across sessions on the same gateway.
	budget := llm.NewBudget(s.cfg.LLM.MaxCallsPerSession, s.cfg.LLM.MinCallInterval.Duration())

	sess := &Session{
		ID:         uuid.NewString(),
		Role:       req.Role,
		Language:   language,
		Difficulty: s.cfg.Interview.InitialDifficulty,
		Skills: SkillProfile{
			Communication: 0.5,
			Reasoning:     0.5,
			Domain:        0.5,
		},
		ExternalContext: req.ExternalContext,
		CreatedAt:       time.Now(),
		UsedQuestions:   make(map[string]struct{}),
		Budget:          budget,
		Events:          eventlog.New(eventlog.DefaultCapacity),
	}

	if req.GenerateStrategy {
		sess.Strategy = s.GenerateStrategy(ctx, budget, req.Role, req.ResumeText)
		logStrategyEvent(sess.Events, sess.Strategy)
	}

	sess.Events.Append(eventlog.Event{
		Type:    eventlog.TypeStateChange,
		Message: "session created",
		Details: map[string]string{"role": sess.Role, "language": sess.Language},
	})

	s.mu.Lock()
	s.sessions[sess.ID] = &sessionEntry{sess: sess}
	s.mu.Unlock()

	if s.sessionCounter != nil {
		s.sessionCounter.Add(ctx, 1)
	}
	span.SetAttributes(attribute.String("session.id", sess.ID))
	s.logger.Info("session created",
		zap.String("session_id", sess.ID),
		zap.String("role", sess.Role),
		zap.Bool("has_strategy", sess.Strategy != nil),
	)

	return sess, nil
}

// GetSession implements Service.
func (s *service) GetSession(ctx context.Context, sessionID string) (*Session, error) {
	entry, err := s.entry(sessionID)
	if err != nil {
		return nil, err
	}
	return entry.sess, nil
}

// NextQuestion implements Service.
func (s *service) NextQuestion(ctx context.Context, sessionID string) (string, error) {
	ctx, span := s.tracer.Start(ctx, "interview.next_question",
		trace.WithAttributes(attribute.String("session.id", sessionID)))
	defer span.End()

	entry, err := s.entry(sessionID)
	if err != nil {
		return "", err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.sess.Finished {
		return "", ErrSessionFinished
	}

	question := s.nextQuestion(ctx, entry.sess)
	if s.questionCounter != nil {
		s.questionCounter.Add(ctx, 1)
	}
	span.SetAttributes(attribute.String("interview.stage", string(entry.sess.Stage())))

	return question, nil
}

// SubmitAnswer implements Service.
func (s *service) SubmitAnswer(ctx context.Context, sessionID, question, answer string) error {
	_, span := s.tracer.Start(ctx, "interview.submit_answer",
		trace.WithAttributes(attribute.String("session.id", sessionID)))
	defer span.End()

	entry, err := s.entry(sessionID)
	if err != nil {
		return err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	sess := entry.sess
	if sess.Finished {
		return ErrSessionFinished
	}

	sess.Transcript = append(sess.Transcript, Turn{Question: question, Answer: answer})
	sess.Events.Append(eventlog.Event{
		Type:    eventlog.TypeInfo,
		Message: "answer submitted",
		Details: map[string]string{"turn": fmt.Sprintf("%d", len(sess.Transcript))},
	})

	if len(sess.Transcript) >= s.cfg.Interview.MaxTurnsForEval {
		sess.Finished = true
		sess.Events.Append(eventlog.Event{
			Type:    eventlog.TypeStateChange,
			Message: "session finished: turn limit reached",
		})
		s.logger.Info("session finished",
			zap.String("session_id", sess.ID),
			zap.Int("turns", len(sess.Transcript)),
		)
	}

	return nil
}

// EvaluateLatestTurn implements Service.
func (s *service) EvaluateLatestTurn(ctx context.Context, sessionID string) error {
	ctx, span := s.tracer.Start(ctx, "interview.evaluate_latest_turn",
		trace.WithAttributes(attribute.String("session.id", sessionID)))
	defer span.End()

	entry, err := s.entry(sessionID)
	if err != nil {
		return err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	s.updateEvaluationForLatestTurn(ctx, entry.sess)
	if s.evaluationCounter != nil {
		s.evaluationCounter.Add(ctx, 1)
	}

	return nil
}

// Finalize implements Service.
func (s *service) Finalize(ctx context.Context, sessionID string) (*FinalResult, error) {
	ctx, span := s.tracer.Start(ctx, "interview.finalize",
		trace.WithAttributes(attribute.String("session.id", sessionID)))
	defer span.End()

	entry, err := s.entry(sessionID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	result := s.finalize(ctx, entry.sess)
	return &result, nil
}

// Events implements Service.
func (s *service) Events(ctx context.Context, sessionID string) ([]eventlog.Event, error) {
	entry, err := s.entry(sessionID)
	if err != nil {
		return nil, err
	}
	return entry.sess.Events.Events(), nil
}

// entry looks up a session's registry entry.
func (s *service) entry(sessionID string) (*sessionEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	return entry, nil
}
