package interview

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/interviewd/internal/eventlog"
)

// Heuristic scoring table.
const (
	scoreEmptyAnswer = 5
	scoreShortAnswer = 25
	scorePlainAnswer = 55
)

// evaluationAlpha is the EMA smoothing factor for skill updates.
// Difficulty is deliberately not smoothed: the suggested value replaces
// the current one outright.
const evaluationAlpha = 0.2

// HeuristicEvaluate scores an answer without the external model.
//
// It only looks at answer length, so the note states explicitly that no
// semantic analysis happened. All three skill axes receive the same
// undifferentiated signal (score/100); the difficulty suggestion stays
// at the current value because length alone is no signal to move it.
func HeuristicEvaluate(answer string, shortAnswerChars, currentDifficulty int) TurnEvaluation {
	trimmed := strings.TrimSpace(answer)

	var score int
	var notes string
	switch {
	case trimmed == "":
		score = scoreEmptyAnswer
		notes = "empty answer"
	case len([]rune(trimmed)) < shortAnswerChars:
		score = scoreShortAnswer
		notes = "answer too short for a meaningful assessment"
	default:
		score = scorePlainAnswer
		notes = "scored by length heuristic; no semantic analysis performed"
	}

	signal := float64(score) / 100
	return TurnEvaluation{
		Score:   score,
		Quality: QualityForScore(score),
		SkillUpdates: SkillProfile{
			Communication: signal,
			Reasoning:     signal,
			Domain:        signal,
		},
		SuggestedDifficulty: clampDifficulty(currentDifficulty),
		Notes:               notes,
		HeuristicOnly:       true,
	}
}

// evalResponse is the typed shape expected from the evaluator model.
// Pointer fields distinguish missing values so defaults can be applied
// at this single boundary.
type evalResponse struct {
	Score        *int     `json:"score"`
	Strengths    []string `json:"strengths"`
	Weaknesses   []string `json:"weaknesses"`
	SkillUpdates struct {
		Communication *float64 `json:"communication"`
		Reasoning     *float64 `json:"reasoning"`
		Domain        *float64 `json:"domain"`
	} `json:"skill_updates"`
	SuggestedDifficulty *int   `json:"suggested_difficulty"`
	Notes               string `json:"notes"`
}

// toEvaluation applies field defaults and bounds.
func (r *evalResponse) toEvaluation(currentDifficulty int) TurnEvaluation {
	score := 50
	if r.Score != nil {
		score = *r.Score
	}
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	skill := func(v *float64) float64 {
		if v == nil {
			return 0.5
		}
		return clampUnit(*v)
	}

	difficulty := currentDifficulty
	if r.SuggestedDifficulty != nil {
		difficulty = *r.SuggestedDifficulty
	}

	return TurnEvaluation{
		Score:      score,
		Strengths:  r.Strengths,
		Weaknesses: r.Weaknesses,
		Quality:    QualityForScore(score),
		SkillUpdates: SkillProfile{
			Communication: skill(r.SkillUpdates.Communication),
			Reasoning:     skill(r.SkillUpdates.Reasoning),
			Domain:        skill(r.SkillUpdates.Domain),
		},
		SuggestedDifficulty: clampDifficulty(difficulty),
		Notes:               r.Notes,
	}
}

// evaluateTurn scores one turn, preferring the model and degrading to
// the heuristic.
func (s *service) evaluateTurn(ctx context.Context, sess *Session, turn *Turn) TurnEvaluation {
	if strings.TrimSpace(turn.Answer) != "" {
		var resp evalResponse
		if s.gateway.GenerateStructured(ctx, sess.Budget,
			s.cfg.LLM.Models.Evaluator, evaluatorPersona,
			buildEvaluationPrompt(sess, turn, s.cfg.Interview.SkillWeights.Communication,
				s.cfg.Interview.SkillWeights.Reasoning, s.cfg.Interview.SkillWeights.Domain),
			&resp) {
			return resp.toEvaluation(sess.Difficulty)
		}
		s.addFallback(ctx)
	}

	return HeuristicEvaluate(turn.Answer, s.cfg.Interview.ShortAnswerChars, sess.Difficulty)
}

// updateEvaluationForLatestTurn attaches an evaluation to the most
// recent turn and applies its state updates.
//
// Turns that already carry an evaluation, or whose answer is a sentinel
// token or too short to mean anything, are never scored.
func (s *service) updateEvaluationForLatestTurn(ctx context.Context, sess *Session) {
	turn := sess.LatestTurn()
	if turn == nil || turn.Evaluation != nil {
		return
	}

	answer := strings.TrimSpace(turn.Answer)
	if answer == SentinelSkip || answer == SentinelSilence || answer == NoAudibleAnswer {
		return
	}
	if len([]rune(answer)) < 2 {
		return
	}

	eval := s.evaluateTurn(ctx, sess, turn)
	turn.Evaluation = &eval

	// Difficulty is replaced outright; skills are smoothed per axis.
	sess.Difficulty = clampDifficulty(eval.SuggestedDifficulty)
	sess.Skills = SkillProfile{
		Communication: smooth(sess.Skills.Communication, eval.SkillUpdates.Communication),
		Reasoning:     smooth(sess.Skills.Reasoning, eval.SkillUpdates.Reasoning),
		Domain:        smooth(sess.Skills.Domain, eval.SkillUpdates.Domain),
	}

	sess.Events.Append(eventlog.Event{
		Type:    eventlog.TypeEvaluation,
		Message: "turn evaluated",
		Details: map[string]string{
			"score":      fmt.Sprintf("%d", eval.Score),
			"quality":    string(eval.Quality),
			"difficulty": fmt.Sprintf("%d", sess.Difficulty),
			"heuristic":  fmt.Sprintf("%t", eval.HeuristicOnly),
		},
	})
	s.logger.Info("turn evaluated",
		zap.String("session_id", sess.ID),
		zap.Int("score", eval.Score),
		zap.Bool("heuristic_only", eval.HeuristicOnly),
	)
}

// smooth applies the skill EMA and clamps to [0,1].
func smooth(old, update float64) float64 {
	return clampUnit((1-evaluationAlpha)*old + evaluationAlpha*update)
}

// buildEvaluationPrompt assembles the evaluator input.
func buildEvaluationPrompt(sess *Session, turn *Turn, wComm, wReason, wDomain float64) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Role: %s\n", sess.Role)
	fmt.Fprintf(&b, "Current difficulty: %d of %d\n", sess.Difficulty, MaxDifficulty)
	fmt.Fprintf(&b, "Axis weights: communication %.2f, reasoning %.2f, domain %.2f\n",
		wComm, wReason, wDomain)

	if sess.ExternalContext != "" {
		fmt.Fprintf(&b, "\nCandidate context:\n%s\n", sess.ExternalContext)
	}

	start := len(sess.Transcript) - historyWindow - 1
	if start < 0 {
		start = 0
	}
	if start < len(sess.Transcript)-1 {
		b.WriteString("\nEarlier exchange:\n")
		for _, prev := range sess.Transcript[start : len(sess.Transcript)-1] {
			fmt.Fprintf(&b, "Q: %s\nA: %s\n", prev.Question, prev.Answer)
		}
	}

	fmt.Fprintf(&b, "\nQuestion:\n%s\n\nCandidate answer:\n%s\n", turn.Question, turn.Answer)

	return b.String()
}
