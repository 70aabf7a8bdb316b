package interview

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/interviewd/internal/eventlog"
)

// historyWindow bounds how many recent turns are sent as short-term
// memory. Two turns keeps prompts small and latency low; it is a
// deliberate recency window.
const historyWindow = 2

// isSilentAnswer classifies an answer as silence.
func isSilentAnswer(answer string) bool {
	a := strings.TrimSpace(answer)
	if a == "" || a == SentinelSilence || a == NoAudibleAnswer {
		return true
	}
	return len([]rune(a)) < 2
}

// nextQuestion runs the orchestrator's question step: silence/skip
// handling first, then question generation. The caller holds the
// session exclusively.
func (s *service) nextQuestion(ctx context.Context, sess *Session) string {
	if last := sess.LatestTurn(); last != nil && sess.HasGreeted {
		answer := strings.TrimSpace(last.Answer)

		switch {
		case answer == SentinelSkip:
			// Explicit skip: straight to the next technical question.
			sess.ConsecutiveSilence = 0

		case isSilentAnswer(answer):
			sess.ConsecutiveSilence++
			if sess.ConsecutiveSilence < 2 {
				// First silence is transient: nudge, no new question,
				// no further transcript mutation.
				phrases := nudgePhrases[languageKey(sess.Language)]
				phrase := phrases[s.pick(len(phrases))]
				sess.Events.Append(eventlog.Event{
					Type:    eventlog.TypeInfo,
					Message: "silent answer, nudging candidate",
				})
				return phrase
			}
			// Second consecutive silence: the candidate is stuck.
			// Force the interview forward.
			sess.ConsecutiveSilence = 0
			question := s.generateQuestion(ctx, sess)
			sess.Events.Append(eventlog.Event{
				Type:    eventlog.TypeStateChange,
				Message: "forcing progression after repeated silence",
			})
			return moveOnPrefixes[languageKey(sess.Language)] + question

		default:
			sess.ConsecutiveSilence = 0
		}
	}

	return s.generateQuestion(ctx, sess)
}

// generateQuestion produces the next question text and records it.
func (s *service) generateQuestion(ctx context.Context, sess *Session) string {
	// Opening line from the plan is emitted verbatim on the very first turn.
	if !sess.HasGreeted && len(sess.Transcript) == 0 &&
		sess.Strategy != nil && sess.Strategy.OpeningLine != "" {
		sess.HasGreeted = true
		s.recordQuestion(sess, sess.Strategy.OpeningLine)
		return sess.Strategy.OpeningLine
	}

	atIntroduction := sess.Stage() == StageIntroduction

	question, ok := s.gateway.GenerateText(ctx, sess.Budget,
		s.cfg.LLM.Models.Interviewer, interviewerPersona, buildQuestionPrompt(sess))
	if !ok {
		question = fallbackQuestions[languageKey(sess.Language)]
		s.addFallback(ctx)
		sess.Events.Append(eventlog.Event{
			Type:    eventlog.TypeError,
			Message: "question generation degraded to canned prompt",
		})
	} else {
		question = strings.TrimSpace(question)
		sess.Events.Append(eventlog.Event{
			Type:    eventlog.TypeLLMCall,
			Message: "question generated",
			Details: map[string]string{"stage": string(sess.Stage())},
		})
	}

	// Exact-duplicate questions get a clarifying suffix to force
	// uniqueness before recording.
	if _, used := sess.UsedQuestions[question]; used {
		question += clarifySuffixes[languageKey(sess.Language)]
	}
	s.recordQuestion(sess, question)

	if atIntroduction {
		sess.HasGreeted = true
	}

	return question
}

// recordQuestion marks question text as used.
func (s *service) recordQuestion(sess *Session, question string) {
	sess.UsedQuestions[question] = struct{}{}
	s.logger.Debug("question recorded",
		zap.String("session_id", sess.ID),
		zap.String("stage", string(sess.Stage())),
	)
}

// buildQuestionPrompt assembles the interviewer input: role, stage,
// difficulty, target language, the plan, external context, the latest
// strengths and a short transcript window.
func buildQuestionPrompt(sess *Session) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Role: %s\n", sess.Role)
	fmt.Fprintf(&b, "Interview stage: %s\n", sess.Stage())
	fmt.Fprintf(&b, "Current difficulty: %d of %d\n", sess.Difficulty, MaxDifficulty)
	fmt.Fprintf(&b, "Answer only in %s.\n", sess.Language)

	if sess.Strategy != nil {
		if len(sess.Strategy.Topics) > 0 {
			b.WriteString("\nPlanned topics:\n")
			for _, t := range sess.Strategy.Topics {
				fmt.Fprintf(&b, "- %s", t.Topic)
				if t.Context != "" {
					fmt.Fprintf(&b, " (%s)", t.Context)
				}
				b.WriteString("\n")
			}
		}
		if sess.Strategy.AdaptiveInstruction != "" {
			fmt.Fprintf(&b, "\nAdaptive instruction: %s\n", sess.Strategy.AdaptiveInstruction)
		}
	}

	if sess.ExternalContext != "" {
		fmt.Fprintf(&b, "\nCandidate context:\n%s\n", sess.ExternalContext)
	}

	if last := sess.LatestTurn(); last != nil && last.Evaluation != nil && len(last.Evaluation.Strengths) > 0 {
		fmt.Fprintf(&b, "\nObserved strengths so far: %s\n", strings.Join(last.Evaluation.Strengths, "; "))
	}

	start := len(sess.Transcript) - historyWindow
	if start < 0 {
		start = 0
	}
	if start < len(sess.Transcript) {
		b.WriteString("\nRecent exchange:\n")
		for _, turn := range sess.Transcript[start:] {
			fmt.Fprintf(&b, "Q: %s\nA: %s\n", turn.Question, turn.Answer)
		}
	}

	b.WriteString("\nAsk the next question.")

	return b.String()
}
