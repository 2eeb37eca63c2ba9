package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// backends runs each test against both the SQLite store and the
// in-memory store, which must behave identically.
func backends(t *testing.T) map[string]Repos {
	t.Helper()

	st, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	return map[string]Repos{
		"sqlite": st,
		"memory": NewMemStore(),
	}
}

func startSession(t *testing.T, repos Repos, userID string, order []int) *QuizSession {
	t.Helper()
	sess, err := repos.Sessions().Start(context.Background(), userID, StartSessionParams{
		QuizID:         "go-basics-quiz-001",
		ContentHash:    "abc123",
		QuestionOrder:  order,
		TotalQuestions: len(order),
	})
	require.NoError(t, err)
	return sess
}

func TestSessionLifecycle(t *testing.T) {
	for name, repos := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			sess := startSession(t, repos, "user-1", []int{2, 0, 1})
			require.Equal(t, StatusInProgress, sess.Status)

			active, err := repos.Sessions().Active(ctx, "user-1", "go-basics-quiz-001")
			require.NoError(t, err)
			require.NotNil(t, active)
			assert.Equal(t, sess.ID, active.ID)
			assert.Equal(t, []int{2, 0, 1}, active.QuestionOrder)

			_, err = repos.Answers().Save(ctx, "user-1", SaveAnswerParams{
				SessionID:      sess.ID,
				QuestionIndex:  2,
				OrderPosition:  0,
				SelectedAnswer: "B",
				Justification:  "slices share backing arrays",
				IsCorrect:      true,
			})
			require.NoError(t, err)

			_, err = repos.Answers().Save(ctx, "user-1", SaveAnswerParams{
				SessionID:      sess.ID,
				QuestionIndex:  0,
				OrderPosition:  1,
				SelectedAnswer: "A",
				IsCorrect:      false,
			})
			require.NoError(t, err)

			require.NoError(t, repos.Sessions().UpdateProgress(ctx, "user-1", sess.ID, 2))

			got, err := repos.Sessions().Get(ctx, "user-1", sess.ID)
			require.NoError(t, err)
			assert.Equal(t, 2, got.CurrentQuestionIndex)

			correct, err := repos.Sessions().Complete(ctx, "user-1", sess.ID, time.Now())
			require.NoError(t, err)
			assert.Equal(t, 1, correct)

			done, err := repos.Sessions().Get(ctx, "user-1", sess.ID)
			require.NoError(t, err)
			assert.Equal(t, StatusCompleted, done.Status)
			assert.Equal(t, 1, done.CorrectCount)
			assert.False(t, done.CompletedAt.IsZero())

			// Completion marks today's activity.
			dates, err := repos.Activity().CompletedDates(ctx, "user-1")
			require.NoError(t, err)
			require.Len(t, dates, 1)
			assert.Equal(t, time.Now().UTC().Format("2006-01-02"), dates[0])

			history, err := repos.Sessions().CompletedByUser(ctx, "user-1", "")
			require.NoError(t, err)
			require.Len(t, history, 1)
			assert.Equal(t, sess.ID, history[0].ID)

			// The session left in_progress, so there is no active one.
			active, err = repos.Sessions().Active(ctx, "user-1", "go-basics-quiz-001")
			require.NoError(t, err)
			assert.Nil(t, active)
		})
	}
}

func TestSave_BacktrackEditUpserts(t *testing.T) {
	for name, repos := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			sess := startSession(t, repos, "user-1", []int{1, 0})

			for _, answer := range []string{"A", "C"} {
				_, err := repos.Answers().Save(ctx, "user-1", SaveAnswerParams{
					SessionID:      sess.ID,
					QuestionIndex:  1,
					OrderPosition:  0,
					SelectedAnswer: answer,
					IsCorrect:      answer == "C",
				})
				require.NoError(t, err)
			}

			answers, err := repos.Answers().ListBySession(ctx, "user-1", sess.ID)
			require.NoError(t, err)
			require.Len(t, answers, 1)
			assert.Equal(t, "C", answers[0].SelectedAnswer)
			assert.True(t, answers[0].IsCorrect)
		})
	}
}

func TestSave_RejectsBadMapping(t *testing.T) {
	for name, repos := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			sess := startSession(t, repos, "user-1", []int{2, 0, 1})

			cases := []struct {
				name          string
				questionIndex int
				orderPosition int
			}{
				{"wrong pairing", 0, 0},
				{"position out of range", 2, 3},
				{"negative position", 2, -1},
			}
			for _, tc := range cases {
				_, err := repos.Answers().Save(ctx, "user-1", SaveAnswerParams{
					SessionID:     sess.ID,
					QuestionIndex: tc.questionIndex,
					OrderPosition: tc.orderPosition,
				})
				if !errors.Is(err, ErrAnswerMapping) {
					t.Errorf("%s: got %v, want ErrAnswerMapping", tc.name, err)
				}
			}

			answers, err := repos.Answers().ListBySession(ctx, "user-1", sess.ID)
			require.NoError(t, err)
			assert.Empty(t, answers)
		})
	}
}

func TestOwnership(t *testing.T) {
	for name, repos := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			sess := startSession(t, repos, "user-1", []int{0})

			_, err := repos.Sessions().Get(ctx, "user-2", sess.ID)
			assert.ErrorIs(t, err, ErrNotOwner)

			err = repos.Sessions().UpdateProgress(ctx, "user-2", sess.ID, 1)
			assert.ErrorIs(t, err, ErrNotOwner)

			_, err = repos.Answers().Save(ctx, "user-2", SaveAnswerParams{
				SessionID: sess.ID, QuestionIndex: 0, OrderPosition: 0,
			})
			assert.ErrorIs(t, err, ErrNotOwner)

			_, err = repos.Sessions().Complete(ctx, "user-2", sess.ID, time.Now())
			assert.ErrorIs(t, err, ErrNotOwner)
		})
	}
}

func TestTerminalSessionRejectsMutations(t *testing.T) {
	for name, repos := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			sess := startSession(t, repos, "user-1", []int{0, 1})
			require.NoError(t, repos.Sessions().Abandon(ctx, "user-1", sess.ID))

			err := repos.Sessions().UpdateProgress(ctx, "user-1", sess.ID, 1)
			assert.ErrorIs(t, err, ErrInvalidState)

			_, err = repos.Answers().Save(ctx, "user-1", SaveAnswerParams{
				SessionID: sess.ID, QuestionIndex: 0, OrderPosition: 0,
			})
			assert.ErrorIs(t, err, ErrInvalidState)

			_, err = repos.Sessions().Complete(ctx, "user-1", sess.ID, time.Now())
			assert.ErrorIs(t, err, ErrInvalidState)

			err = repos.Sessions().Abandon(ctx, "user-1", sess.ID)
			assert.ErrorIs(t, err, ErrInvalidState)
		})
	}
}

func TestUpdateVerification_AfterCompletion(t *testing.T) {
	for name, repos := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			sess := startSession(t, repos, "user-1", []int{0})

			_, err := repos.Answers().Save(ctx, "user-1", SaveAnswerParams{
				SessionID:      sess.ID,
				QuestionIndex:  0,
				OrderPosition:  0,
				SelectedAnswer: "A",
				IsCorrect:      true,
				AiVerification: &AiVerification{Verdict: VerdictFail, Status: VerificationPending},
			})
			require.NoError(t, err)

			_, err = repos.Sessions().Complete(ctx, "user-1", sess.ID, time.Now())
			require.NoError(t, err)

			// A slow verification may land after the session completes.
			err = repos.Answers().UpdateVerification(ctx, "user-1", sess.ID, 0, &AiVerification{
				Verdict:     VerdictPass,
				Explanation: "reasoning holds",
				Status:      VerificationComplete,
			})
			require.NoError(t, err)

			answers, err := repos.Answers().ListBySession(ctx, "user-1", sess.ID)
			require.NoError(t, err)
			require.Len(t, answers, 1)
			require.NotNil(t, answers[0].AiVerification)
			assert.Equal(t, VerdictPass, answers[0].AiVerification.Verdict)
			assert.Equal(t, VerificationComplete, answers[0].AiVerification.Status)
		})
	}
}

func TestUpdateVerification_MissingAnswer(t *testing.T) {
	for name, repos := range backends(t) {
		t.Run(name, func(t *testing.T) {
			sess := startSession(t, repos, "user-1", []int{0})
			err := repos.Answers().UpdateVerification(context.Background(), "user-1", sess.ID, 5,
				&AiVerification{Verdict: VerdictFail, Status: VerificationComplete})
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestScoreAnswers(t *testing.T) {
	complete := func(v Verdict) *AiVerification {
		return &AiVerification{Verdict: v, Status: VerificationComplete}
	}

	answers := []*QuizAnswer{
		// Verified: verdict overrides the original grade both ways.
		{IsCorrect: false, AiVerification: complete(VerdictPass)},
		{IsCorrect: true, AiVerification: complete(VerdictFail)},
		// Verification never finished: original grade stands.
		{IsCorrect: true, AiVerification: &AiVerification{Verdict: VerdictFail, Status: VerificationError}},
		{IsCorrect: true, AiVerification: &AiVerification{Verdict: VerdictFail, Status: VerificationPending}},
		// No verification attempted.
		{IsCorrect: true},
		{IsCorrect: false},
	}

	if got := ScoreAnswers(true, answers); got != 4 {
		t.Errorf("ScoreAnswers(enabled) = %d, want 4", got)
	}
	// With verification off, verdicts are ignored entirely.
	if got := ScoreAnswers(false, answers); got != 4 {
		t.Errorf("ScoreAnswers(disabled) = %d, want 4", got)
	}

	if got := ScoreAnswers(true, nil); got != 0 {
		t.Errorf("ScoreAnswers(empty) = %d, want 0", got)
	}
}

func TestComplete_VerifiedScoring(t *testing.T) {
	for name, repos := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			sess, err := repos.Sessions().Start(ctx, "user-1", StartSessionParams{
				QuizID:              "go-basics-quiz-001",
				ContentHash:         "abc123",
				QuestionOrder:       []int{0, 1},
				TotalQuestions:      2,
				VerificationEnabled: true,
			})
			require.NoError(t, err)

			// Answer marked correct, but the verifier failed the
			// justification.
			_, err = repos.Answers().Save(ctx, "user-1", SaveAnswerParams{
				SessionID:      sess.ID,
				QuestionIndex:  0,
				OrderPosition:  0,
				SelectedAnswer: "A",
				IsCorrect:      true,
				AiVerification: &AiVerification{Verdict: VerdictFail, Status: VerificationComplete},
			})
			require.NoError(t, err)

			// Verification errored, so the original grade stands.
			_, err = repos.Answers().Save(ctx, "user-1", SaveAnswerParams{
				SessionID:      sess.ID,
				QuestionIndex:  1,
				OrderPosition:  1,
				SelectedAnswer: "B",
				IsCorrect:      true,
				AiVerification: &AiVerification{Status: VerificationError, Error: "stream timeout"},
			})
			require.NoError(t, err)

			correct, err := repos.Sessions().Complete(ctx, "user-1", sess.ID, time.Now())
			require.NoError(t, err)
			assert.Equal(t, 1, correct)
		})
	}
}

func TestStudyReveals(t *testing.T) {
	for name, repos := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			now := time.Now()

			active, err := repos.Study().ActiveStudy(ctx, "user-1", "go-basics-001")
			require.NoError(t, err)
			assert.Nil(t, active)

			sess, err := repos.Study().StartStudy(ctx, "user-1", "go-basics-001", 8, now)
			require.NoError(t, err)

			require.NoError(t, repos.Study().RecordReveal(ctx, "user-1", sess.ID, 3, now))
			require.NoError(t, repos.Study().RecordReveal(ctx, "user-1", sess.ID, 0, now))
			// Revealing the same card again must not inflate the count.
			require.NoError(t, repos.Study().RecordReveal(ctx, "user-1", sess.ID, 3, now.Add(time.Minute)))

			active, err = repos.Study().ActiveStudy(ctx, "user-1", "go-basics-001")
			require.NoError(t, err)
			require.NotNil(t, active)
			assert.Equal(t, 2, active.RevealedCount)

			reveals, err := repos.Study().ListReveals(ctx, "user-1", sess.ID)
			require.NoError(t, err)
			require.Len(t, reveals, 2)
			assert.Equal(t, 0, reveals[0].CardIndex)
			assert.Equal(t, 3, reveals[1].CardIndex)

			err = repos.Study().RecordReveal(ctx, "user-2", sess.ID, 1, now)
			assert.ErrorIs(t, err, ErrNotOwner)
		})
	}
}

func TestActivityIdempotent(t *testing.T) {
	for name, repos := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for i := 0; i < 3; i++ {
				require.NoError(t, repos.Activity().RecordQuizCompletion(ctx, "user-1", "2026-09-01"))
			}
			require.NoError(t, repos.Activity().RecordQuizCompletion(ctx, "user-1", "2026-08-31"))

			dates, err := repos.Activity().CompletedDates(ctx, "user-1")
			require.NoError(t, err)
			assert.Equal(t, []string{"2026-09-01", "2026-08-31"}, dates)

			dates, err = repos.Activity().CompletedDates(ctx, "user-2")
			require.NoError(t, err)
			assert.Empty(t, dates)
		})
	}
}

func TestLLMEvents(t *testing.T) {
	for name, repos := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			events := repos.Events()

			require.NoError(t, events.AppendLLMRequest(ctx, LLMRequestEventData{
				Provider: "anthropic", Model: "claude-sonnet-4-5", Purpose: "verification",
				InputTokens: 500, OutputTokens: 80, LatencyMs: 1200, Success: true,
			}))
			require.NoError(t, events.AppendLLMRequest(ctx, LLMRequestEventData{
				Provider: "anthropic", Model: "claude-sonnet-4-5", Purpose: "verification",
				InputTokens: 450, OutputTokens: 0, LatencyMs: 400,
				ErrorMessage: "rate limited",
			}))

			list, err := events.QueryLLMEvents(ctx, QueryOpts{})
			require.NoError(t, err)
			require.Len(t, list, 2)
			// Newest first.
			assert.Equal(t, "rate limited", list[0].ErrorMessage)
			assert.True(t, list[1].Success)

			got, err := events.GetLLMEvent(ctx, list[0].ID)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, "rate limited", got.ErrorMessage)

			missing, err := events.GetLLMEvent(ctx, 9999)
			require.NoError(t, err)
			assert.Nil(t, missing)

			byPurpose, err := events.LLMUsageByPurpose(ctx)
			require.NoError(t, err)
			require.Len(t, byPurpose, 1)
			assert.Equal(t, "verification", byPurpose[0].Purpose)
			assert.Equal(t, 2, byPurpose[0].Calls)
			assert.Equal(t, 950, byPurpose[0].InputTokens)
			assert.Equal(t, 80, byPurpose[0].OutputTokens)
			assert.Equal(t, int64(800), byPurpose[0].AvgLatencyMs)

			byModel, err := events.LLMUsageByModel(ctx)
			require.NoError(t, err)
			require.Len(t, byModel, 1)
			assert.Equal(t, "claude-sonnet-4-5", byModel[0].Model)
		})
	}
}

func TestQueryLLMEvents_Limit(t *testing.T) {
	for name, repos := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for i := 0; i < 5; i++ {
				require.NoError(t, repos.Events().AppendLLMRequest(ctx, LLMRequestEventData{
					Provider: "mock", Model: "mock", Purpose: "verification", Success: true,
				}))
			}
			list, err := repos.Events().QueryLLMEvents(ctx, QueryOpts{Limit: 3})
			require.NoError(t, err)
			assert.Len(t, list, 3)
		})
	}
}

func TestDefaultDBPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("REVISE_DB", filepath.Join(dir, "custom.db"))

	p, err := DefaultDBPath()
	if err != nil {
		t.Fatalf("DefaultDBPath: %v", err)
	}
	if p != filepath.Join(dir, "custom.db") {
		t.Errorf("path = %q", p)
	}

	t.Setenv("REVISE_DB", "")
	t.Setenv("XDG_DATA_HOME", dir)
	p, err = DefaultDBPath()
	if err != nil {
		t.Fatalf("DefaultDBPath: %v", err)
	}
	if p != filepath.Join(dir, "revise", "revise.db") {
		t.Errorf("path = %q", p)
	}
}
