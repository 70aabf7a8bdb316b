package llm

import (
	"context"
	"encoding/json"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

const instrumentationName = "github.com/fyrsmithlabs/interviewd/internal/llm"

// Gateway dispatches budgeted completion calls to a Provider.
//
// The gateway itself is stateless; all quota bookkeeping lives in the
// per-session Budget passed into each call.
type Gateway struct {
	provider Provider
	logger   *zap.Logger

	meter           metric.Meter
	callCounter     metric.Int64Counter
	rejectedCounter metric.Int64Counter
	failureCounter  metric.Int64Counter
}

// NewGateway creates a gateway over the given provider.
func NewGateway(provider Provider, logger *zap.Logger) *Gateway {
	if provider == nil {
		provider = &disabledProvider{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	g := &Gateway{
		provider: provider,
		logger:   logger,
		meter:    otel.Meter(instrumentationName),
	}
	g.initMetrics()

	return g
}

// initMetrics initializes OpenTelemetry metrics.
func (g *Gateway) initMetrics() {
	var err error

	g.callCounter, err = g.meter.Int64Counter(
		"interviewd.llm.calls_total",
		metric.WithDescription("Total completion calls attempted against the provider"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		g.logger.Warn("failed to create call counter", zap.Error(err))
	}

	g.rejectedCounter, err = g.meter.Int64Counter(
		"interviewd.llm.rejected_total",
		metric.WithDescription("Calls refused by the session budget before any I/O"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		g.logger.Warn("failed to create rejected counter", zap.Error(err))
	}

	g.failureCounter, err = g.meter.Int64Counter(
		"interviewd.llm.failures_total",
		metric.WithDescription("Calls that reached the provider and failed or returned unusable output"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		g.logger.Warn("failed to create failure counter", zap.Error(err))
	}
}

// Available reports whether the underlying provider can serve calls.
func (g *Gateway) Available() bool {
	return g.provider.Available()
}

// GenerateText requests free-form text. ok=false means the caller must
// use its heuristic fallback: the budget refused the call, the
// transport failed, or the provider returned nothing usable.
func (g *Gateway) GenerateText(ctx context.Context, budget *Budget, model, system, prompt string) (string, bool) {
	if budget == nil || !budget.TryAcquire() {
		g.add(ctx, g.rejectedCounter)
		g.logger.Debug("llm call rejected by budget", zap.String("model", model))
		return "", false
	}
	g.add(ctx, g.callCounter)

	text, err := g.provider.Complete(ctx, CompletionRequest{
		Model:       model,
		System:      system,
		Prompt:      prompt,
		Temperature: 0.7,
	})
	if err != nil {
		g.add(ctx, g.failureCounter)
		g.logger.Warn("llm call failed", zap.String("model", model), zap.Error(err))
		return "", false
	}
	if text == "" {
		g.add(ctx, g.failureCounter)
		return "", false
	}

	return text, true
}

// GenerateStructured requests a JSON object and decodes it into out.
// The extraction boundary is the single place where untyped model
// output becomes typed data; callers apply field defaults on their own
// result structs afterwards.
func (g *Gateway) GenerateStructured(ctx context.Context, budget *Budget, model, system, prompt string, out any) bool {
	if budget == nil || !budget.TryAcquire() {
		g.add(ctx, g.rejectedCounter)
		g.logger.Debug("llm call rejected by budget", zap.String("model", model))
		return false
	}
	g.add(ctx, g.callCounter)

	text, err := g.provider.Complete(ctx, CompletionRequest{
		Model:       model,
		System:      system,
		Prompt:      prompt,
		Temperature: 0.3, // low temperature for consistent structured output
	})
	if err != nil {
		g.add(ctx, g.failureCounter)
		g.logger.Warn("llm call failed", zap.String("model", model), zap.Error(err))
		return false
	}

	payload, ok := ExtractJSON(text)
	if !ok {
		g.add(ctx, g.failureCounter)
		g.logger.Warn("llm response not parseable as JSON", zap.String("model", model))
		return false
	}

	if err := json.Unmarshal([]byte(payload), out); err != nil {
		g.add(ctx, g.failureCounter)
		g.logger.Warn("llm response failed to decode", zap.String("model", model), zap.Error(err))
		return false
	}

	return true
}

func (g *Gateway) add(ctx context.Context, counter metric.Int64Counter) {
	if counter != nil {
		counter.Add(ctx, 1)
	}
}
