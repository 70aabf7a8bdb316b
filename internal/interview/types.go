package interview

import (
	"time"

	"github.com/fyrsmithlabs/interviewd/internal/eventlog"
	"github.com/fyrsmithlabs/interviewd/internal/llm"
)

// Stage is a named phase of the interview, derived from progress.
type Stage string

const (
	StageIntroduction Stage = "introduction"
	StageBackground   Stage = "background"
	StageCore         Stage = "core"
	StageDeepDive     Stage = "deep_dive"
	StageCase         Stage = "case"
	StageDebug        Stage = "debug"
	StageWrapUp       Stage = "wrap_up"
)

// Quality buckets a turn score.
type Quality string

const (
	QualityExcellent    Quality = "excellent"
	QualityGood         Quality = "good"
	QualityAverage      Quality = "average"
	QualityWeak         Quality = "weak"
	QualityUnacceptable Quality = "unacceptable"
	QualityUnknown      Quality = "unknown"
)

// QualityForScore maps a score in [0,100] onto a quality bucket.
func QualityForScore(score int) Quality {
	switch {
	case score >= 80:
		return QualityExcellent
	case score >= 65:
		return QualityGood
	case score >= 45:
		return QualityAverage
	case score >= 25:
		return QualityWeak
	default:
		return QualityUnacceptable
	}
}

// Verdict is the categorical integrity judgment over a transcript.
type Verdict string

const (
	VerdictClean      Verdict = "clean"
	VerdictSuspicious Verdict = "suspicious"
	VerdictCheating   Verdict = "cheating"
	VerdictUnknown    Verdict = "unknown"
)

// Sentinel answer tokens: out-of-band control signals carried in the
// answer channel. Recognized by exact value, language-agnostic.
const (
	// SentinelSkip asks the engine to move on without a nudge.
	SentinelSkip = "[CONTINUE]"
	// SentinelSilence marks a turn where nothing was said.
	SentinelSilence = "[SILENCE]"
	// NoAudibleAnswer is emitted by the speech pipeline when capture
	// produced no usable audio.
	NoAudibleAnswer = "(No audible answer provided)"
)

// Difficulty bounds.
const (
	MinDifficulty = 1
	MaxDifficulty = 5
)

// SkillProfile tracks the candidate along three axes, each in [0,1].
type SkillProfile struct {
	Communication float64 `json:"communication"`
	Reasoning     float64 `json:"reasoning"`
	Domain        float64 `json:"domain"`
}

// Turn is one question/answer exchange. Evaluation is attached at most
// once, after the answer is submitted.
type Turn struct {
	Question   string          `json:"question"`
	Answer     string          `json:"answer"`
	Evaluation *TurnEvaluation `json:"evaluation,omitempty"`
}

// TurnEvaluation scores a single candidate answer.
type TurnEvaluation struct {
	Score               int          `json:"score"` // [0,100]
	Strengths           []string     `json:"strengths,omitempty"`
	Weaknesses          []string     `json:"weaknesses,omitempty"`
	Quality             Quality      `json:"quality"`
	SkillUpdates        SkillProfile `json:"skill_updates"`
	SuggestedDifficulty int          `json:"suggested_difficulty"` // [1,5]
	Notes               string       `json:"notes,omitempty"`

	// HeuristicOnly marks provenance: true means the evaluation was
	// produced without the external model.
	HeuristicOnly bool `json:"heuristic_only"`
}

// StrategyTopic is one planned discussion topic.
type StrategyTopic struct {
	Topic         string `json:"topic"`
	Context       string `json:"context,omitempty"`
	StartQuestion string `json:"start_question,omitempty"`
}

// Strategy is the interview plan generated from the job description and
// résumé. Immutable once generated.
type Strategy struct {
	CandidateName       string          `json:"candidate_name,omitempty"`
	OpeningLine         string          `json:"opening_line,omitempty"`
	Topics              []StrategyTopic `json:"topics,omitempty"`
	AdaptiveInstruction string          `json:"adaptive_instruction,omitempty"`
}

// AntiCheatReport is the integrity assessment over a full transcript.
type AntiCheatReport struct {
	RiskScore     int      `json:"risk_score"` // [0,100] after clamping
	Flags         []string `json:"flags,omitempty"`
	Reason        string   `json:"reason,omitempty"`
	Verdict       Verdict  `json:"verdict"`
	HeuristicOnly bool     `json:"heuristic_only"`
}

// Summary is the hiring summary of a finished interview.
type Summary struct {
	OverallScore int      `json:"overall_score"`
	FinalVerdict string   `json:"final_verdict"`
	Strengths    []string `json:"strengths,omitempty"`
	Improvements []string `json:"improvements,omitempty"`
	SummaryText  string   `json:"summary_text"`
}

// FinalResult is everything Finalize produces. A session never fails to
// produce one.
type FinalResult struct {
	Summary   Summary         `json:"summary"`
	AntiCheat AntiCheatReport `json:"anti_cheat"`
	LLMUsage  llm.Usage       `json:"llm_usage"`
}

// Session is the full mutable state of one candidate's interview.
// Exclusively owned: callers must serialize operations per session.
type Session struct {
	ID                 string       `json:"id"`
	Role               string       `json:"role"`
	Language           string       `json:"language"`
	Difficulty         int          `json:"difficulty"` // [1,5]
	Skills             SkillProfile `json:"skills"`
	Transcript         []Turn       `json:"transcript"` // append-only
	Finished           bool         `json:"finished"`   // monotonic false -> true
	HasGreeted         bool         `json:"has_greeted"`
	ConsecutiveSilence int          `json:"consecutive_silence"`
	Strategy           *Strategy    `json:"strategy,omitempty"`
	ExternalContext    string       `json:"external_context,omitempty"`
	CreatedAt          time.Time    `json:"created_at"`

	// UsedQuestions dedups question text by exact string.
	UsedQuestions map[string]struct{} `json:"-"`

	// Budget is this session's model-call quota.
	Budget *llm.Budget `json:"-"`

	// Events is this session's append-only event log.
	Events eventlog.Log `json:"-"`
}

// Stage derives the current interview phase. It is a pure function of
// greeting state and transcript length and never regresses as the
// transcript grows.
func (s *Session) Stage() Stage {
	return NextStage(s.HasGreeted, len(s.Transcript))
}

// LatestTurn returns the most recent turn, or nil for an empty transcript.
func (s *Session) LatestTurn() *Turn {
	if len(s.Transcript) == 0 {
		return nil
	}
	return &s.Transcript[len(s.Transcript)-1]
}

// AverageScore is the mean of all recorded per-turn scores, 0 if none.
func (s *Session) AverageScore() float64 {
	sum, n := 0, 0
	for _, turn := range s.Transcript {
		if turn.Evaluation != nil {
			sum += turn.Evaluation.Score
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

// clampDifficulty bounds a difficulty value to [1,5].
func clampDifficulty(d int) int {
	if d < MinDifficulty {
		return MinDifficulty
	}
	if d > MaxDifficulty {
		return MaxDifficulty
	}
	return d
}

// clampUnit bounds a skill value to [0,1].
func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
