package interview

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/interviewd/internal/config"
)

func TestOpeningLineEmittedVerbatim(t *testing.T) {
	provider := &scriptedProvider{responses: []string{
		`{"candidate_name": "Ivan", "opening_line": "Hello Ivan, thanks for joining today!", "topics": [{"topic": "Go internals"}], "adaptive_instruction": "probe concurrency"}`,
	}}
	svc := newTestService(t, provider, nil)

	sess, err := svc.CreateSession(context.Background(), CreateSessionRequest{
		Role:             "Backend Developer",
		Language:         "English",
		ResumeText:       "10 years of Go",
		GenerateStrategy: true,
	})
	require.NoError(t, err)
	require.NotNil(t, sess.Strategy)

	question, err := svc.NextQuestion(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hello Ivan, thanks for joining today!", question)
	assert.True(t, sess.HasGreeted)
	assert.Contains(t, sess.UsedQuestions, question)

	// The opening line comes from the plan, not a second model call.
	assert.Equal(t, 1, provider.calls)
}

func TestFallbackQuestionOnGatewayFailure(t *testing.T) {
	svc := newTestService(t, failingProvider(), nil)

	en := createTestSession(t, svc, "English")
	question, err := svc.NextQuestion(context.Background(), en.ID)
	require.NoError(t, err)
	assert.Equal(t, fallbackQuestions["en"], question)
	assert.True(t, en.HasGreeted)

	ru := createTestSession(t, svc, "Russian")
	question, err = svc.NextQuestion(context.Background(), ru.ID)
	require.NoError(t, err)
	assert.Equal(t, fallbackQuestions["ru"], question)
}

func TestDuplicateQuestionGetsClarifyingSuffix(t *testing.T) {
	provider := &scriptedProvider{responses: []string{
		"What does a goroutine cost?",
		"What does a goroutine cost?",
	}}
	svc := newTestService(t, provider, nil)
	sess := createTestSession(t, svc, "English")
	ctx := context.Background()

	first, err := svc.NextQuestion(ctx, sess.ID)
	require.NoError(t, err)
	require.NoError(t, svc.SubmitAnswer(ctx, sess.ID, first,
		"Roughly a few kilobytes of stack plus scheduler bookkeeping."))

	second, err := svc.NextQuestion(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, first+clarifySuffixes["en"], second)
	assert.Contains(t, sess.UsedQuestions, second)
}

func TestSilenceDebounce(t *testing.T) {
	provider := &scriptedProvider{responses: []string{
		"First question?",
		"Forced question?",
	}}
	svc := newTestService(t, provider, nil)
	sess := createTestSession(t, svc, "English")
	ctx := context.Background()

	first, err := svc.NextQuestion(ctx, sess.ID)
	require.NoError(t, err)
	require.NoError(t, svc.SubmitAnswer(ctx, sess.ID, first, ""))

	// First silence: a nudge, no new question, no transcript mutation.
	nudge, err := svc.NextQuestion(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, nudgePhrases["en"][0], nudge)
	assert.Equal(t, 1, sess.ConsecutiveSilence)
	assert.Len(t, sess.Transcript, 1)
	assert.NotContains(t, sess.UsedQuestions, nudge)

	// Second consecutive silence: forced progression with the move-on prefix.
	require.NoError(t, svc.SubmitAnswer(ctx, sess.ID, nudge, SentinelSilence))
	forced, err := svc.NextQuestion(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, moveOnPrefixes["en"]+"Forced question?", forced)
	assert.Zero(t, sess.ConsecutiveSilence)
}

func TestSkipSentinelProceedsWithoutNudge(t *testing.T) {
	provider := &scriptedProvider{responses: []string{
		"First question?",
		"Second question?",
	}}
	svc := newTestService(t, provider, nil)
	sess := createTestSession(t, svc, "English")
	ctx := context.Background()

	first, err := svc.NextQuestion(ctx, sess.ID)
	require.NoError(t, err)
	require.NoError(t, svc.SubmitAnswer(ctx, sess.ID, first, SentinelSkip))

	next, err := svc.NextQuestion(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "Second question?", next)
	assert.Zero(t, sess.ConsecutiveSilence)
}

func TestNoAudibleAnswerCountsAsSilence(t *testing.T) {
	assert.True(t, isSilentAnswer(""))
	assert.True(t, isSilentAnswer("  "))
	assert.True(t, isSilentAnswer("x"))
	assert.True(t, isSilentAnswer(SentinelSilence))
	assert.True(t, isSilentAnswer(NoAudibleAnswer))
	assert.False(t, isSilentAnswer(SentinelSkip))
	assert.False(t, isSilentAnswer("I used Kafka for event transport."))
}

func TestNoQuestionAfterFinish(t *testing.T) {
	svc := newTestService(t, failingProvider(), func(c *config.Config) {
		c.Interview.MaxTurnsForEval = 1
	})
	sess := createTestSession(t, svc, "English")
	ctx := context.Background()

	require.NoError(t, svc.SubmitAnswer(ctx, sess.ID, "Q", "final answer"))
	require.True(t, sess.Finished)

	_, err := svc.NextQuestion(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrSessionFinished)
}

func TestQuestionPromptCarriesRecentWindow(t *testing.T) {
	svc := newTestService(t, failingProvider(), nil)
	sess := createTestSession(t, svc, "English")
	sess.HasGreeted = true
	sess.Transcript = []Turn{
		{Question: "Q1", Answer: "A1"},
		{Question: "Q2", Answer: "A2"},
		{Question: "Q3", Answer: "A3"},
	}

	prompt := buildQuestionPrompt(sess)
	// Only the last two turns travel as short-term memory.
	assert.NotContains(t, prompt, "Q1")
	assert.Contains(t, prompt, "Q2")
	assert.Contains(t, prompt, "Q3")
	assert.Contains(t, prompt, "Backend Developer")
	assert.True(t, strings.Contains(prompt, "Answer only in English."))
}
