package interview

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/interviewd/internal/eventlog"
	"github.com/fyrsmithlabs/interviewd/internal/llm"
)

// strategyResponse is the typed shape expected from the strategist model.
type strategyResponse struct {
	CandidateName string `json:"candidate_name"`
	OpeningLine   string `json:"opening_line"`
	Topics        []struct {
		Topic         string `json:"topic"`
		Context       string `json:"context"`
		StartQuestion string `json:"start_question"`
	} `json:"topics"`
	AdaptiveInstruction string `json:"adaptive_instruction"`
}

// GenerateStrategy produces an interview plan from a job description
// and optional résumé text, charged to the given budget.
//
// A nil result is a valid, expected outcome, not an error: callers fall
// back to purely role-driven questioning.
func (s *service) GenerateStrategy(ctx context.Context, budget *llm.Budget, jobDescription, resumeText string) *Strategy {
	prompt := buildStrategyPrompt(jobDescription, resumeText)

	var resp strategyResponse
	if !s.gateway.GenerateStructured(ctx, budget, s.cfg.LLM.Models.Analysis, strategistPersona, prompt, &resp) {
		s.logger.Info("strategy generation unavailable, proceeding without plan")
		return nil
	}

	strategy := &Strategy{
		CandidateName:       resp.CandidateName,
		OpeningLine:         resp.OpeningLine,
		AdaptiveInstruction: resp.AdaptiveInstruction,
	}
	for _, t := range resp.Topics {
		strategy.Topics = append(strategy.Topics, StrategyTopic{
			Topic:         t.Topic,
			Context:       t.Context,
			StartQuestion: t.StartQuestion,
		})
	}

	s.logger.Info("interview strategy generated",
		zap.Int("topics", len(strategy.Topics)),
		zap.Bool("has_opening", strategy.OpeningLine != ""),
	)

	return strategy
}

// buildStrategyPrompt assembles the strategist input. A missing résumé
// is stated explicitly so the model does not invent one.
func buildStrategyPrompt(jobDescription, resumeText string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Job description:\n%s\n\n", strings.TrimSpace(jobDescription))

	if strings.TrimSpace(resumeText) == "" {
		b.WriteString("No resume was provided. Treat the candidate as anonymous.\n")
	} else {
		fmt.Fprintf(&b, "Resume:\n%s\n", strings.TrimSpace(resumeText))
	}

	return b.String()
}

// logStrategyEvent records strategy generation on the session event log.
func logStrategyEvent(log eventlog.Log, strategy *Strategy) {
	if strategy == nil {
		log.Append(eventlog.Event{
			Type:    eventlog.TypeInfo,
			Message: "no interview strategy; role-driven questioning",
		})
		return
	}
	log.Append(eventlog.Event{
		Type:    eventlog.TypeLLMCall,
		Message: "interview strategy generated",
		Details: map[string]string{"topics": fmt.Sprintf("%d", len(strategy.Topics))},
	})
}
