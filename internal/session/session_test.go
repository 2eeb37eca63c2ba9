package session

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/anupamd/revise/internal/content"
	"github.com/anupamd/revise/internal/identity"
	"github.com/anupamd/revise/internal/llm"
	"github.com/anupamd/revise/internal/store"
	"github.com/anupamd/revise/internal/verify"
)

func makeQuiz(n int) *content.Quiz {
	quiz := &content.Quiz{
		Meta: content.Meta{
			ID:          "go-basics-quiz-001",
			Category:    "golang",
			Subcategory: "go-basics",
		},
		Type:  content.QuizTypePatternSelection,
		Title: "Go Basics",
	}
	for i := 0; i < n; i++ {
		quiz.Questions = append(quiz.Questions, content.Question{
			Question: fmt.Sprintf("Question %d?", i+1),
			Options: []content.QuizOption{
				{Label: "A", Text: "first"},
				{Label: "B", Text: "second"},
				{Label: "C", Text: "third"},
				{Label: "D", Text: "fourth"},
			},
			Answer:      "A",
			Explanation: "A is right.",
		})
	}
	return quiz
}

func authedState(t *testing.T, quiz *content.Quiz, verificationEnabled bool) (*State, *store.MemStore) {
	t.Helper()
	mem := store.NewMemStore()
	user := identity.User{ID: "user-1"}
	s := NewState(quiz, user, mem.Sessions(), mem.Answers(), nil, verificationEnabled)
	return s, mem
}

func anonState(quiz *content.Quiz) *State {
	return NewState(quiz, identity.User{ID: identity.AnonymousID}, nil, nil, nil, false)
}

func assertPermutation(t *testing.T, order []int, n int) {
	t.Helper()
	if len(order) != n {
		t.Fatalf("order length = %d, want %d", len(order), n)
	}
	seen := make(map[int]bool)
	for _, qi := range order {
		if qi < 0 || qi >= n || seen[qi] {
			t.Fatalf("order %v is not a permutation of [0..%d)", order, n)
		}
		seen[qi] = true
	}
}

func TestInit_AnonymousGoesStraightToActive(t *testing.T) {
	s := anonState(makeQuiz(5))

	if err := Init(context.Background(), s); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if s.Phase != PhaseActive {
		t.Fatalf("phase = %d, want active", s.Phase)
	}
	assertPermutation(t, s.Order, 5)
	if s.SessionID != "" {
		t.Error("anonymous attempt created a persisted session")
	}
}

func TestInit_RunsOnce(t *testing.T) {
	s, _ := authedState(t, makeQuiz(3), false)
	ctx := context.Background()

	if err := Init(ctx, s); err != nil {
		t.Fatalf("Init: %v", err)
	}
	firstID := s.SessionID
	firstOrder := append([]int(nil), s.Order...)

	// Incidental re-invocation must not re-resolve.
	if err := Init(ctx, s); err != nil {
		t.Fatalf("second Init: %v", err)
	}
	if s.SessionID != firstID {
		t.Error("re-init replaced the session")
	}
	for i, qi := range s.Order {
		if firstOrder[i] != qi {
			t.Fatal("re-init reshuffled the order")
		}
	}
}

func TestInit_CreatesSessionWhenNoneActive(t *testing.T) {
	s, mem := authedState(t, makeQuiz(4), true)
	ctx := context.Background()

	if err := Init(ctx, s); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if s.Phase != PhaseActive {
		t.Fatalf("phase = %d, want active", s.Phase)
	}
	assertPermutation(t, s.Order, 4)

	sess, err := mem.Sessions().Get(ctx, "user-1", s.SessionID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if sess.ContentHash != content.Hash(s.Quiz) {
		t.Error("persisted hash does not match quiz content")
	}
	if !sess.VerificationEnabled {
		t.Error("verification flag not persisted")
	}
}

func TestInit_HashMismatchAbandonsAndRecreates(t *testing.T) {
	quiz := makeQuiz(3)
	s, mem := authedState(t, quiz, false)
	ctx := context.Background()

	stale, err := mem.Sessions().Start(ctx, "user-1", store.StartSessionParams{
		QuizID:         quiz.ID,
		ContentHash:    "outdated-hash",
		QuestionOrder:  []int{2, 1, 0},
		TotalQuestions: 3,
	})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	if err := Init(ctx, s); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if s.Phase != PhaseActive {
		t.Fatalf("phase = %d, want active", s.Phase)
	}
	if s.SessionID == stale.ID {
		t.Fatal("stale session was adopted despite hash mismatch")
	}

	old, err := mem.Sessions().Get(ctx, "user-1", stale.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if old.Status != store.StatusAbandoned {
		t.Errorf("stale session status = %s, want abandoned", old.Status)
	}
}

func TestInit_ZeroProgressAdoptsSilently(t *testing.T) {
	quiz := makeQuiz(3)
	s, mem := authedState(t, quiz, false)
	ctx := context.Background()

	existing, err := mem.Sessions().Start(ctx, "user-1", store.StartSessionParams{
		QuizID:              quiz.ID,
		ContentHash:         content.Hash(quiz),
		QuestionOrder:       []int{2, 0, 1},
		TotalQuestions:      3,
		VerificationEnabled: true,
	})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	if err := Init(ctx, s); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if s.Phase != PhaseActive {
		t.Fatalf("phase = %d, want active (no prompt for zero progress)", s.Phase)
	}
	if s.SessionID != existing.ID {
		t.Error("zero-progress session was not adopted")
	}
	if s.Order[0] != 2 || s.Order[1] != 0 || s.Order[2] != 1 {
		t.Errorf("order = %v, want the persisted shuffle", s.Order)
	}
	if !s.VerificationEnabled {
		t.Error("verification flag not restored from the session")
	}
}

// seedProgress creates a session with one answered question for the
// resume tests.
func seedProgress(t *testing.T, mem *store.MemStore, quiz *content.Quiz, verification *store.AiVerification) *store.QuizSession {
	t.Helper()
	ctx := context.Background()

	sess, err := mem.Sessions().Start(ctx, "user-1", store.StartSessionParams{
		QuizID:         quiz.ID,
		ContentHash:    content.Hash(quiz),
		QuestionOrder:  []int{1, 0, 2},
		TotalQuestions: 3,
	})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	_, err = mem.Answers().Save(ctx, "user-1", store.SaveAnswerParams{
		SessionID:      sess.ID,
		QuestionIndex:  1,
		OrderPosition:  0,
		SelectedAnswer: "A",
		Justification:  "first option matches the definition",
		IsCorrect:      true,
		AiVerification: verification,
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := mem.Sessions().UpdateProgress(ctx, "user-1", sess.ID, 1); err != nil {
		t.Fatalf("UpdateProgress: %v", err)
	}
	return sess
}

func TestResume_ReconstructsResults(t *testing.T) {
	quiz := makeQuiz(3)
	s, mem := authedState(t, quiz, false)
	seedProgress(t, mem, quiz, &store.AiVerification{
		Verdict:     store.VerdictFail,
		Explanation: "partial text",
		Status:      store.VerificationStreaming,
	})

	if err := Init(context.Background(), s); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if s.Phase != PhaseResumePrompt {
		t.Fatalf("phase = %d, want resume prompt", s.Phase)
	}
	if s.ResumeAnswered != 1 {
		t.Errorf("ResumeAnswered = %d, want 1", s.ResumeAnswered)
	}

	if err := Resume(s); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if s.Phase != PhaseActive {
		t.Fatalf("phase = %d, want active", s.Phase)
	}
	if s.Current != 1 {
		t.Errorf("Current = %d, want 1", s.Current)
	}

	r := s.Results[1]
	if r == nil {
		t.Fatal("answered question has no reconstructed result")
	}
	if r.SelectedAnswer != "A" || !r.IsCorrect {
		t.Errorf("result = %+v", r)
	}
	if r.Justification != "first option matches the definition" {
		t.Errorf("justification = %q", r.Justification)
	}
	// In-flight streams do not survive a reload.
	if r.Verification.Status != store.VerificationPending {
		t.Errorf("verification status = %s, want pending", r.Verification.Status)
	}
}

func TestStartFresh_AbandonsAndReshuffles(t *testing.T) {
	quiz := makeQuiz(3)
	s, mem := authedState(t, quiz, false)
	old := seedProgress(t, mem, quiz, nil)
	ctx := context.Background()

	if err := Init(ctx, s); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := StartFresh(ctx, s); err != nil {
		t.Fatalf("StartFresh: %v", err)
	}

	if s.SessionID == old.ID {
		t.Fatal("fresh start kept the old session")
	}
	if len(s.Results) != 0 {
		t.Errorf("fresh start kept %d results", len(s.Results))
	}
	if s.Current != 0 {
		t.Errorf("Current = %d, want 0", s.Current)
	}

	abandoned, err := mem.Sessions().Get(ctx, "user-1", old.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if abandoned.Status != store.StatusAbandoned {
		t.Errorf("old session status = %s, want abandoned", abandoned.Status)
	}
}

func TestSubmitAnswer_BacktrackEditUpdates(t *testing.T) {
	quiz := makeQuiz(3)
	s, mem := authedState(t, quiz, false)
	ctx := context.Background()
	if err := Init(ctx, s); err != nil {
		t.Fatalf("Init: %v", err)
	}

	if _, err := SubmitAnswer(ctx, s, "B", "guessing"); err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	r, err := SubmitAnswer(ctx, s, "A", "on reflection, A")
	if err != nil {
		t.Fatalf("second SubmitAnswer: %v", err)
	}
	if !r.IsCorrect {
		t.Error("corrected answer not graded correct")
	}
	if len(s.Results) != 1 {
		t.Fatalf("results = %d, want 1 (update, not append)", len(s.Results))
	}

	answers, err := mem.Answers().ListBySession(ctx, "user-1", s.SessionID)
	if err != nil {
		t.Fatalf("ListBySession: %v", err)
	}
	if len(answers) != 1 {
		t.Fatalf("persisted answers = %d, want 1", len(answers))
	}
	if answers[0].SelectedAnswer != "A" {
		t.Errorf("persisted answer = %q, want the edit", answers[0].SelectedAnswer)
	}
}

func TestNavigation_PersistsPosition(t *testing.T) {
	quiz := makeQuiz(3)
	s, mem := authedState(t, quiz, false)
	ctx := context.Background()
	if err := Init(ctx, s); err != nil {
		t.Fatalf("Init: %v", err)
	}

	if err := Previous(ctx, s); err == nil {
		t.Error("Previous succeeded at position 0")
	}

	if _, err := SubmitAnswer(ctx, s, "A", "because"); err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	if err := Next(ctx, s); err != nil {
		t.Fatalf("Next: %v", err)
	}
	sess, _ := mem.Sessions().Get(ctx, "user-1", s.SessionID)
	if sess.CurrentQuestionIndex != 1 {
		t.Errorf("persisted index = %d, want 1", sess.CurrentQuestionIndex)
	}

	if err := Previous(ctx, s); err != nil {
		t.Fatalf("Previous: %v", err)
	}
	if s.CurrentResult() == nil {
		t.Error("stepping back discarded the entered result")
	}
	sess, _ = mem.Sessions().Get(ctx, "user-1", s.SessionID)
	if sess.CurrentQuestionIndex != 0 {
		t.Errorf("persisted index = %d, want 0", sess.CurrentQuestionIndex)
	}
}

func TestAnonymousFullRun(t *testing.T) {
	s := anonState(makeQuiz(5))
	ctx := context.Background()
	if err := Init(ctx, s); err != nil {
		t.Fatalf("Init: %v", err)
	}

	for i := 0; i < 5; i++ {
		if _, err := SubmitAnswer(ctx, s, "A", "it is the definition"); err != nil {
			t.Fatalf("SubmitAnswer %d: %v", i, err)
		}
		if err := Next(ctx, s); err != nil {
			t.Fatalf("Next %d: %v", i, err)
		}
	}

	if s.Phase != PhaseCompleted {
		t.Fatalf("phase = %d, want completed", s.Phase)
	}
	if s.CorrectCount != 5 {
		t.Errorf("CorrectCount = %d, want 5", s.CorrectCount)
	}
}

func TestCompletion_ServerAuthoritativeScoring(t *testing.T) {
	quiz := makeQuiz(2)
	s, _ := authedState(t, quiz, true)
	ctx := context.Background()
	if err := Init(ctx, s); err != nil {
		t.Fatalf("Init: %v", err)
	}

	// First position: correct selection, but the verifier failed the
	// justification.
	qi := s.Order[0]
	if _, err := SubmitAnswer(ctx, s, "A", "just a guess"); err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	err := ApplyVerification(ctx, s, verify.Update{
		QuestionIndex: qi,
		Verification: store.AiVerification{
			Verdict:     store.VerdictFail,
			Explanation: "no real reasoning given",
			Status:      store.VerificationComplete,
		},
	})
	if err != nil {
		t.Fatalf("ApplyVerification: %v", err)
	}
	if err := Next(ctx, s); err != nil {
		t.Fatalf("Next: %v", err)
	}

	// Second position: wrong selection.
	if _, err := SubmitAnswer(ctx, s, "B", "seems plausible"); err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	if err := Next(ctx, s); err != nil {
		t.Fatalf("Next: %v", err)
	}

	if s.Phase != PhaseCompleted {
		t.Fatalf("phase = %d, want completed", s.Phase)
	}
	if s.CorrectCount != 0 {
		t.Errorf("CorrectCount = %d, want 0", s.CorrectCount)
	}
}

func TestToggleVerification_StripsStoredVerdicts(t *testing.T) {
	quiz := makeQuiz(2)
	s, mem := authedState(t, quiz, true)
	ctx := context.Background()
	if err := Init(ctx, s); err != nil {
		t.Fatalf("Init: %v", err)
	}

	qi := s.Order[0]
	if _, err := SubmitAnswer(ctx, s, "A", "sound reasoning"); err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	err := ApplyVerification(ctx, s, verify.Update{
		QuestionIndex: qi,
		Verification: store.AiVerification{
			Verdict: store.VerdictFail,
			Status:  store.VerificationComplete,
		},
	})
	if err != nil {
		t.Fatalf("ApplyVerification: %v", err)
	}
	if s.Results[qi].Correct() {
		t.Fatal("completed FAIL verdict should fail the result")
	}

	if err := ToggleVerification(ctx, s); err != nil {
		t.Fatalf("ToggleVerification: %v", err)
	}
	if s.VerificationEnabled {
		t.Fatal("toggle did not disable")
	}
	if s.Results[qi].Verification != nil {
		t.Error("stored verification not stripped")
	}
	if !s.Results[qi].Correct() {
		t.Error("result not recomputed to the plain grade")
	}

	answers, err := mem.Answers().ListBySession(ctx, "user-1", s.SessionID)
	if err != nil {
		t.Fatalf("ListBySession: %v", err)
	}
	if answers[0].AiVerification != nil {
		t.Error("persisted verification not stripped")
	}
}

func TestApplyVerification_KeyedByOriginalIndex(t *testing.T) {
	quiz := makeQuiz(3)
	s, _ := authedState(t, quiz, true)
	ctx := context.Background()
	if err := Init(ctx, s); err != nil {
		t.Fatalf("Init: %v", err)
	}

	qi := s.Order[0]
	if _, err := SubmitAnswer(ctx, s, "A", "because of rule one"); err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	// User moves on before the verdict lands.
	if err := Next(ctx, s); err != nil {
		t.Fatalf("Next: %v", err)
	}

	err := ApplyVerification(ctx, s, verify.Update{
		QuestionIndex: qi,
		Verification: store.AiVerification{
			Verdict:     store.VerdictPass,
			Explanation: "good",
			Status:      store.VerificationComplete,
		},
	})
	if err != nil {
		t.Fatalf("ApplyVerification: %v", err)
	}

	if s.Results[qi].Verification == nil || s.Results[qi].Verification.Verdict != store.VerdictPass {
		t.Error("late verdict did not reach the original question")
	}
	if other := s.Results[s.Order[1]]; other != nil {
		t.Error("late verdict leaked onto the current position")
	}
}

func TestApplyVerification_AutoDisableFlipsFlag(t *testing.T) {
	quiz := makeQuiz(2)
	s, _ := authedState(t, quiz, true)
	ctx := context.Background()
	if err := Init(ctx, s); err != nil {
		t.Fatalf("Init: %v", err)
	}

	err := ApplyVerification(ctx, s, verify.Update{
		QuestionIndex: s.Order[0],
		Verification: store.AiVerification{
			Verdict: store.VerdictFail,
			Status:  store.VerificationError,
			Error:   "stream timeout",
		},
		AutoDisabled: true,
	})
	if err != nil {
		t.Fatalf("ApplyVerification: %v", err)
	}
	if s.VerificationEnabled {
		t.Error("auto-disable did not turn verification off")
	}
}

func TestRestart_FreshSessionSameFlag(t *testing.T) {
	quiz := makeQuiz(3)
	s, mem := authedState(t, quiz, true)
	ctx := context.Background()
	if err := Init(ctx, s); err != nil {
		t.Fatalf("Init: %v", err)
	}
	oldID := s.SessionID
	if _, err := SubmitAnswer(ctx, s, "A", "ok"); err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}

	if err := Restart(ctx, s); err != nil {
		t.Fatalf("Restart: %v", err)
	}
	if s.SessionID == oldID {
		t.Fatal("restart kept the old session")
	}
	if len(s.Results) != 0 || s.Current != 0 {
		t.Error("restart did not reset local state")
	}
	if !s.VerificationEnabled {
		t.Error("restart dropped the verification flag")
	}

	old, err := mem.Sessions().Get(ctx, "user-1", oldID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if old.Status != store.StatusAbandoned {
		t.Errorf("old session status = %s, want abandoned", old.Status)
	}
}

func TestSubmitAnswer_DispatchesVerification(t *testing.T) {
	quiz := makeQuiz(2)
	mem := store.NewMemStore()

	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`{"verdict": "PASS", "explanation": "sound"}`),
	})

	updates := make(chan verify.Update, 8)
	verifier := verify.New(mock, verify.DefaultConfig(), func(u verify.Update) {
		updates <- u
	})

	s := NewState(quiz, identity.User{ID: "user-1"}, mem.Sessions(), mem.Answers(), verifier, true)
	ctx := context.Background()
	if err := Init(ctx, s); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if _, err := SubmitAnswer(ctx, s, "A", "definition"); err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}

	// The pending update arrives synchronously from Verify.
	first := <-updates
	if first.QuestionIndex != s.Order[0] {
		t.Errorf("pending update for question %d, want %d", first.QuestionIndex, s.Order[0])
	}
	if first.Verification.Status != store.VerificationPending {
		t.Errorf("first status = %s, want pending", first.Verification.Status)
	}

	for u := range updates {
		if err := ApplyVerification(ctx, s, u); err != nil {
			t.Fatalf("ApplyVerification: %v", err)
		}
		if u.Verification.Status == store.VerificationComplete || u.Verification.Status == store.VerificationError {
			break
		}
	}

	r := s.Results[s.Order[0]]
	if r.Verification == nil || r.Verification.Verdict != store.VerdictPass {
		t.Fatalf("verification did not complete with a pass: %+v", r.Verification)
	}
	if !r.Correct() {
		t.Error("passed verification should keep the correct grade")
	}
}
