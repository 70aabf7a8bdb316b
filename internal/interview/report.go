package interview

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/interviewd/internal/eventlog"
)

// summaryResponse is the typed shape expected from the summary model.
type summaryResponse struct {
	OverallScore *int     `json:"overall_score"`
	FinalVerdict string   `json:"final_verdict"`
	Strengths    []string `json:"strengths"`
	Improvements []string `json:"improvements"`
	SummaryText  string   `json:"summary_text"`
}

// defaultSummary is the literal substitute used when summary generation
// fails. The session must never fail to produce a report.
func defaultSummary(avgScore float64) Summary {
	return Summary{
		OverallScore: int(math.Round(avgScore)),
		FinalVerdict: "Pending Review",
		Improvements: []string{"Automated summary unavailable; review the transcript manually."},
		SummaryText:  "The summary model was unavailable. Scores reflect per-turn evaluations only.",
	}
}

// finalize aggregates the final report: average score, model summary
// (or its literal default), the unconditional integrity analysis, and
// the session's budget usage.
func (s *service) finalize(ctx context.Context, sess *Session) FinalResult {
	avgScore := sess.AverageScore()

	prompt := fmt.Sprintf(
		"Role: %s\nAverage turn score: %.1f\n\nTranscript:\n%s",
		sess.Role, avgScore, TranscriptText(sess.Transcript),
	)

	summary := defaultSummary(avgScore)
	var resp summaryResponse
	if s.gateway.GenerateStructured(ctx, sess.Budget,
		s.cfg.LLM.Models.Summary, summaryPersona, prompt, &resp) {
		overall := int(math.Round(avgScore))
		if resp.OverallScore != nil {
			overall = *resp.OverallScore
		}
		if overall < 0 {
			overall = 0
		}
		if overall > 100 {
			overall = 100
		}
		verdict := resp.FinalVerdict
		if verdict == "" {
			verdict = "Pending Review"
		}
		summary = Summary{
			OverallScore: overall,
			FinalVerdict: verdict,
			Strengths:    resp.Strengths,
			Improvements: resp.Improvements,
			SummaryText:  resp.SummaryText,
		}
	} else {
		s.addFallback(ctx)
		sess.Events.Append(eventlog.Event{
			Type:    eventlog.TypeError,
			Message: "summary generation degraded to literal default",
		})
	}

	antiCheat := s.analyzeIntegrity(ctx, sess)

	sess.Events.Append(eventlog.Event{
		Type:    eventlog.TypeStateChange,
		Message: "interview finalized",
		Details: map[string]string{
			"overall_score": fmt.Sprintf("%d", summary.OverallScore),
			"verdict":       string(antiCheat.Verdict),
		},
	})
	s.logger.Info("interview finalized",
		zap.String("session_id", sess.ID),
		zap.Int("overall_score", summary.OverallScore),
		zap.String("integrity_verdict", string(antiCheat.Verdict)),
	)

	return FinalResult{
		Summary:   summary,
		AntiCheat: antiCheat,
		LLMUsage:  sess.Budget.Usage(),
	}
}
