// Package session implements the quiz attempt state machine: resolving
// an existing attempt against the current content, serving questions in
// a fixed shuffle, backtrack-editable answers, optional AI justification
// verification, and server-authoritative scoring at completion.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/anupamd/revise/internal/content"
	"github.com/anupamd/revise/internal/store"
	"github.com/anupamd/revise/internal/verify"
)

// Init runs the session resolution protocol. It executes its decision
// logic exactly once; later calls are no-ops, so incidental re-renders
// cannot re-resolve.
func Init(ctx context.Context, s *State) error {
	if s.initialized {
		return nil
	}
	s.initialized = true

	s.Phase = PhaseResolving
	s.ContentHash = content.Hash(s.Quiz)

	if !s.persistent() {
		s.Order = shuffleOrder(len(s.Quiz.Questions))
		s.Phase = PhaseActive
		return nil
	}

	existing, err := s.Sessions.Active(ctx, s.User.ID, s.Quiz.ID)
	if err != nil {
		return fmt.Errorf("look up active session: %w", err)
	}

	if existing == nil {
		return createSession(ctx, s)
	}

	// Content changed underneath the attempt: old progress is discarded,
	// not merged.
	if existing.ContentHash != s.ContentHash {
		if err := s.Sessions.Abandon(ctx, s.User.ID, existing.ID); err != nil {
			return fmt.Errorf("abandon stale session: %w", err)
		}
		return createSession(ctx, s)
	}

	answers, err := s.Answers.ListBySession(ctx, s.User.ID, existing.ID)
	if err != nil {
		return fmt.Errorf("list session answers: %w", err)
	}

	// Zero progress: adopt silently, same as fresh.
	if existing.CurrentQuestionIndex == 0 && len(answers) == 0 {
		adoptSession(s, existing, nil)
		s.Phase = PhaseActive
		return nil
	}

	s.pendingSession = existing
	s.pendingAnswers = answers
	s.ResumeAnswered = len(answers)
	s.Phase = PhaseResumePrompt
	return nil
}

// Resume adopts the pending session found during Init, reconstructing
// local results from its persisted answers. In-flight streams did not
// survive the reload, so a streaming verification demotes to pending.
func Resume(s *State) error {
	if s.Phase != PhaseResumePrompt || s.pendingSession == nil {
		return fmt.Errorf("no session to resume")
	}
	adoptSession(s, s.pendingSession, s.pendingAnswers)
	s.Phase = PhaseActive
	return nil
}

// StartFresh abandons the pending session and creates a new attempt
// with a new shuffle and no answers.
func StartFresh(ctx context.Context, s *State) error {
	if s.Phase != PhaseResumePrompt || s.pendingSession == nil {
		return fmt.Errorf("no pending session")
	}
	if err := s.Sessions.Abandon(ctx, s.User.ID, s.pendingSession.ID); err != nil {
		return fmt.Errorf("abandon session: %w", err)
	}
	s.pendingSession = nil
	s.pendingAnswers = nil
	s.ResumeAnswered = 0
	clearLocal(s)
	return createSession(ctx, s)
}

// SubmitAnswer records an answer for the current question. Submitting
// again for an already-answered question updates the stored result, it
// never appends. When verification is on, the grade is provisional
// until the verifier's verdict lands.
func SubmitAnswer(ctx context.Context, s *State, selected, justification string) (*QuestionResult, error) {
	if s.Phase != PhaseActive {
		return nil, fmt.Errorf("session is not active")
	}

	qi := s.Order[s.Current]
	q := &s.Quiz.Questions[qi]

	result := &QuestionResult{
		QuestionIndex:  qi,
		SelectedAnswer: selected,
		Justification:  justification,
		IsCorrect:      selected == q.Answer,
	}
	s.Results[qi] = result

	if s.persistent() {
		_, err := s.Answers.Save(ctx, s.User.ID, store.SaveAnswerParams{
			SessionID:      s.SessionID,
			QuestionIndex:  qi,
			OrderPosition:  s.Current,
			SelectedAnswer: selected,
			Justification:  justification,
			IsCorrect:      result.IsCorrect,
		})
		if err != nil {
			return nil, fmt.Errorf("save answer: %w", err)
		}
	}

	if s.VerificationEnabled && s.Verifier != nil {
		s.Verifier.Verify(ctx, verify.Input{
			QuestionIndex:  qi,
			Question:       q.Question,
			Options:        q.Options,
			CorrectAnswer:  q.Answer,
			SelectedAnswer: selected,
			Justification:  justification,
			Explanation:    q.Explanation,
		})
	}

	return result, nil
}

// Next advances to the next question, persisting the new position.
// Advancing past the last question completes the attempt. Navigation
// abandons interest in any in-flight verification via the verifier's
// deferred reset.
func Next(ctx context.Context, s *State) error {
	if s.Phase != PhaseActive {
		return fmt.Errorf("session is not active")
	}
	if s.Verifier != nil {
		s.Verifier.Reset()
	}

	if s.Current+1 >= len(s.Order) {
		return complete(ctx, s)
	}

	s.Current++
	if s.persistent() {
		if err := s.Sessions.UpdateProgress(ctx, s.User.ID, s.SessionID, s.Current); err != nil {
			return fmt.Errorf("update progress: %w", err)
		}
	}
	return nil
}

// Previous steps back one question. The result entered for the question
// being left is kept.
func Previous(ctx context.Context, s *State) error {
	if s.Phase != PhaseActive {
		return fmt.Errorf("session is not active")
	}
	if s.Current == 0 {
		return fmt.Errorf("already at the first question")
	}
	if s.Verifier != nil {
		s.Verifier.Reset()
	}

	s.Current--
	if s.persistent() {
		if err := s.Sessions.UpdateProgress(ctx, s.User.ID, s.SessionID, s.Current); err != nil {
			return fmt.Errorf("update progress: %w", err)
		}
	}
	return nil
}

// ToggleVerification flips the verification flag. Disabling invalidates
// any in-flight attempt, strips every recorded verification, and drops
// results back to the plain grade; re-enabling verifies nothing
// retroactively.
func ToggleVerification(ctx context.Context, s *State) error {
	if s.VerificationEnabled {
		s.VerificationEnabled = false
		if s.Verifier != nil {
			s.Verifier.Invalidate()
		}
		for qi, r := range s.Results {
			if r.Verification == nil {
				continue
			}
			r.Verification = nil
			if s.persistent() {
				if err := s.Answers.UpdateVerification(ctx, s.User.ID, s.SessionID, qi, nil); err != nil {
					return fmt.Errorf("strip verification: %w", err)
				}
			}
		}
		return nil
	}

	s.VerificationEnabled = true
	return nil
}

// Restart abandons the current attempt and starts a fresh one with a
// new shuffle, keeping the verification flag.
func Restart(ctx context.Context, s *State) error {
	if s.Verifier != nil {
		s.Verifier.Invalidate()
	}
	if s.persistent() && s.SessionID != "" && s.Phase == PhaseActive {
		if err := s.Sessions.Abandon(ctx, s.User.ID, s.SessionID); err != nil {
			return fmt.Errorf("abandon session: %w", err)
		}
	}
	clearLocal(s)
	if !s.persistent() {
		s.Order = shuffleOrder(len(s.Quiz.Questions))
		s.Phase = PhaseActive
		return nil
	}
	return createSession(ctx, s)
}

// ApplyVerification folds a verifier update into the matching result,
// keyed by the captured original question index so a result landing
// after navigation still reaches the right question. Streaming updates
// stay local; pending and terminal states are persisted.
func ApplyVerification(ctx context.Context, s *State, u verify.Update) error {
	if u.AutoDisabled {
		s.VerificationEnabled = false
	}

	result, ok := s.Results[u.QuestionIndex]
	if !ok {
		return nil
	}
	v := u.Verification
	result.Verification = &v

	if s.persistent() && v.Status != store.VerificationStreaming {
		if err := s.Answers.UpdateVerification(ctx, s.User.ID, s.SessionID, u.QuestionIndex, &v); err != nil {
			return fmt.Errorf("persist verification: %w", err)
		}
	}
	return nil
}

// complete finishes the attempt. For persisted sessions the correct
// count is re-scored from the durable answers, not the local cache,
// since AI-updated outcomes may not be reflected locally.
func complete(ctx context.Context, s *State) error {
	if s.persistent() {
		correct, err := s.Sessions.Complete(ctx, s.User.ID, s.SessionID, time.Now())
		if err != nil {
			return fmt.Errorf("complete session: %w", err)
		}
		s.CorrectCount = correct
	} else {
		count := 0
		for _, r := range s.Results {
			if localScore(s.VerificationEnabled, r) {
				count++
			}
		}
		s.CorrectCount = count
	}
	s.Phase = PhaseCompleted
	return nil
}

// localScore mirrors store.ScoreAnswers for unpersisted attempts.
func localScore(verificationEnabled bool, r *QuestionResult) bool {
	if verificationEnabled && r.Verification != nil && r.Verification.Status == store.VerificationComplete {
		return r.Verification.Verdict == store.VerdictPass
	}
	return r.IsCorrect
}

func createSession(ctx context.Context, s *State) error {
	s.Order = shuffleOrder(len(s.Quiz.Questions))
	s.Current = 0

	sess, err := s.Sessions.Start(ctx, s.User.ID, store.StartSessionParams{
		QuizID:              s.Quiz.ID,
		ContentHash:         s.ContentHash,
		QuestionOrder:       s.Order,
		TotalQuestions:      len(s.Quiz.Questions),
		VerificationEnabled: s.VerificationEnabled,
	})
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	s.SessionID = sess.ID
	s.Phase = PhaseActive
	return nil
}

// adoptSession restores local state from a persisted session and its
// answers.
func adoptSession(s *State, sess *store.QuizSession, answers []*store.QuizAnswer) {
	s.SessionID = sess.ID
	s.Order = sess.QuestionOrder
	s.Current = sess.CurrentQuestionIndex
	s.VerificationEnabled = sess.VerificationEnabled
	s.Results = make(map[int]*QuestionResult, len(answers))

	for _, a := range answers {
		r := &QuestionResult{
			QuestionIndex:  a.QuestionIndex,
			SelectedAnswer: a.SelectedAnswer,
			Justification:  a.Justification,
			IsCorrect:      a.IsCorrect,
		}
		if a.AiVerification != nil {
			v := *a.AiVerification
			if v.Status == store.VerificationStreaming {
				v.Status = store.VerificationPending
			}
			r.Verification = &v
		}
		s.Results[a.QuestionIndex] = r
	}

	s.pendingSession = nil
	s.pendingAnswers = nil
}

func clearLocal(s *State) {
	s.SessionID = ""
	s.Order = nil
	s.Current = 0
	s.Results = make(map[int]*QuestionResult)
	s.CorrectCount = 0
}
