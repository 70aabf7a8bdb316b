package interview

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSummaryLiteral(t *testing.T) {
	summary := defaultSummary(62.4)
	assert.Equal(t, 62, summary.OverallScore)
	assert.Equal(t, "Pending Review", summary.FinalVerdict)
	assert.NotEmpty(t, summary.Improvements)
	assert.NotEmpty(t, summary.SummaryText)
}

func TestFinalizeDegradesToDefaultSummary(t *testing.T) {
	svc := newTestService(t, failingProvider(), nil)
	sess := createTestSession(t, svc, "English")
	ctx := context.Background()

	require.NoError(t, svc.SubmitAnswer(ctx, sess.ID, "Q",
		"A perfectly honest answer about database indexing strategies."))

	result, err := svc.Finalize(ctx, sess.ID)
	require.NoError(t, err)

	assert.Equal(t, "Pending Review", result.Summary.FinalVerdict)
	assert.Equal(t, VerdictClean, result.AntiCheat.Verdict)
	assert.True(t, result.AntiCheat.HeuristicOnly)

	// Summary and integrity attempts both charged the session budget
	// even though the provider failed.
	assert.Equal(t, 2, result.LLMUsage.CallsUsed)
}

func TestFinalizeUsesModelSummary(t *testing.T) {
	provider := &scriptedProvider{responses: []string{
		`{"overall_score": 87, "final_verdict": "Strong Hire",
		  "strengths": ["clear communication"], "improvements": ["go deeper on internals"],
		  "summary_text": "A confident, well-structured performance."}`,
		`{"risk_score": 5, "flags": [], "reason": "consistent voice throughout", "verdict": "clean"}`,
	}}
	svc := newTestService(t, provider, nil)
	sess := createTestSession(t, svc, "English")
	ctx := context.Background()

	require.NoError(t, svc.SubmitAnswer(ctx, sess.ID, "Q", "An answer."))

	result, err := svc.Finalize(ctx, sess.ID)
	require.NoError(t, err)

	assert.Equal(t, 87, result.Summary.OverallScore)
	assert.Equal(t, "Strong Hire", result.Summary.FinalVerdict)
	assert.Equal(t, []string{"clear communication"}, result.Summary.Strengths)
	assert.Equal(t, "A confident, well-structured performance.", result.Summary.SummaryText)
	assert.Equal(t, VerdictClean, result.AntiCheat.Verdict)
	assert.False(t, result.AntiCheat.HeuristicOnly)
	assert.Equal(t, 2, result.LLMUsage.CallsUsed)
}

func TestFinalizeClampsAndDefaultsModelFields(t *testing.T) {
	provider := &scriptedProvider{responses: []string{
		`{"overall_score": 250, "final_verdict": "", "summary_text": "Off the charts."}`,
		`{"risk_score": 0, "verdict": "clean"}`,
	}}
	svc := newTestService(t, provider, nil)
	sess := createTestSession(t, svc, "English")
	ctx := context.Background()

	result, err := svc.Finalize(ctx, sess.ID)
	require.NoError(t, err)

	assert.Equal(t, 100, result.Summary.OverallScore)
	assert.Equal(t, "Pending Review", result.Summary.FinalVerdict)
}
