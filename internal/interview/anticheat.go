package interview

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/interviewd/internal/eventlog"
)

// Heuristic risk scoring.
const (
	riskBase           = 10
	riskPerKeyword     = 40
	riskLowEffort      = 20
	riskSuspiciousOver = 70
)

// TranscriptText renders the transcript as plain lines for analysis.
func TranscriptText(transcript []Turn) string {
	var b strings.Builder
	for _, turn := range transcript {
		fmt.Fprintf(&b, "Q: %s\n", turn.Question)
		fmt.Fprintf(&b, "A: %s\n", turn.Answer)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// HeuristicAntiCheat assesses integrity risk without the external model.
//
// Each toxic keyword found in the transcript (case-insensitive) adds a
// flag and a fixed risk increment on top of the base risk; a transcript
// of fewer than minLines lines adds a low-effort flag. The score is
// clamped to 100 and the verdict is suspicious only above the threshold.
func HeuristicAntiCheat(transcriptText string, toxicKeywords []string, minLines int) AntiCheatReport {
	risk := riskBase
	var flags []string

	lower := strings.ToLower(transcriptText)
	for _, keyword := range toxicKeywords {
		if keyword == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(keyword)) {
			flags = append(flags, fmt.Sprintf("transcript contains %q", keyword))
			risk += riskPerKeyword
		}
	}

	lines := 0
	if strings.TrimSpace(transcriptText) != "" {
		lines = len(strings.Split(transcriptText, "\n"))
	}
	if lines < minLines {
		flags = append(flags, "low-effort transcript")
		risk += riskLowEffort
	}

	if risk > 100 {
		risk = 100
	}

	verdict := VerdictClean
	if risk > riskSuspiciousOver {
		verdict = VerdictSuspicious
	}

	return AntiCheatReport{
		RiskScore:     risk,
		Flags:         flags,
		Reason:        "keyword and transcript-length scan",
		Verdict:       verdict,
		HeuristicOnly: true,
	}
}

// antiCheatResponse is the typed shape expected from the analyst model.
type antiCheatResponse struct {
	RiskScore *int     `json:"risk_score"`
	Flags     []string `json:"flags"`
	Reason    string   `json:"reason"`
	Verdict   string   `json:"verdict"`
}

// analyzeIntegrity runs the integrity assessment over the session's
// full transcript. The model path is gated on configuration and always
// falls back to the heuristic scan.
func (s *service) analyzeIntegrity(ctx context.Context, sess *Session) AntiCheatReport {
	text := TranscriptText(sess.Transcript)
	heuristic := HeuristicAntiCheat(text, s.cfg.AntiCheat.ToxicKeywords, s.cfg.AntiCheat.MinTurns)

	if !s.cfg.AntiCheat.Enabled {
		return heuristic
	}

	prompt := fmt.Sprintf(
		"Role: %s\nTurns: %d\nHeuristic average score: %.1f\n\nTranscript:\n%s",
		sess.Role, len(sess.Transcript), sess.AverageScore(), text,
	)

	var resp antiCheatResponse
	if !s.gateway.GenerateStructured(ctx, sess.Budget,
		s.cfg.LLM.Models.AntiCheat, antiCheatPersona, prompt, &resp) {
		s.addFallback(ctx)
		sess.Events.Append(eventlog.Event{
			Type:    eventlog.TypeError,
			Message: "integrity analysis degraded to heuristic scan",
		})
		return heuristic
	}

	risk := heuristic.RiskScore
	if resp.RiskScore != nil {
		risk = *resp.RiskScore
	}
	if risk < 0 {
		risk = 0
	}
	if risk > 100 {
		risk = 100
	}

	verdict := VerdictUnknown
	switch Verdict(resp.Verdict) {
	case VerdictClean, VerdictSuspicious, VerdictCheating:
		verdict = Verdict(resp.Verdict)
	}

	s.logger.Info("integrity analysis complete",
		zap.String("session_id", sess.ID),
		zap.Int("risk_score", risk),
		zap.String("verdict", string(verdict)),
	)

	return AntiCheatReport{
		RiskScore: risk,
		Flags:     resp.Flags,
		Reason:    resp.Reason,
		Verdict:   verdict,
	}
}
