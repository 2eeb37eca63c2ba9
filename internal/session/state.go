package session

import (
	"math/rand/v2"

	"github.com/anupamd/revise/internal/content"
	"github.com/anupamd/revise/internal/identity"
	"github.com/anupamd/revise/internal/store"
	"github.com/anupamd/revise/internal/verify"
)

// Phase is the lifecycle phase of a quiz attempt.
type Phase int

const (
	PhaseUninitialized Phase = iota
	PhaseResolving           // deciding create vs resume
	PhaseResumePrompt        // waiting for the user's resume decision
	PhaseActive              // serving questions
	PhaseCompleted           // results available
)

// QuestionResult is the local working copy of one answered question. The
// persisted QuizAnswer is the durable source of truth; this copy is
// reconstructed from it on resume.
type QuestionResult struct {
	// QuestionIndex is the original (unshuffled) index.
	QuestionIndex int

	SelectedAnswer string
	Justification  string

	// IsCorrect is the plain selectedAnswer == answer grade. When
	// verification applies, the final grade also requires a PASS verdict
	// (see Correct).
	IsCorrect bool

	Verification *store.AiVerification
}

// Correct is the result's final correctness: the plain grade, tightened
// by a completed verification's verdict when one exists.
func (r *QuestionResult) Correct() bool {
	if r.Verification != nil && r.Verification.Status == store.VerificationComplete {
		return r.IsCorrect && r.Verification.Verdict == store.VerdictPass
	}
	return r.IsCorrect
}

// State is the runtime state of one quiz attempt. It is driven by the
// single-threaded UI loop; verification results re-enter through
// ApplyVerification.
type State struct {
	Quiz *content.Quiz
	User identity.User

	// Sessions and Answers persist authenticated attempts. An anonymous
	// attempt never touches them.
	Sessions store.SessionRepo
	Answers  store.AnswerRepo

	// Verifier runs justification checks. Nil disables verification
	// entirely.
	Verifier *verify.Orchestrator

	Phase       Phase
	SessionID   string
	ContentHash string

	// Order is the shuffled question order, immutable after creation.
	// Current indexes into it.
	Order   []int
	Current int

	// Results is keyed by original question index.
	Results map[int]*QuestionResult

	VerificationEnabled bool

	// CorrectCount is set at completion.
	CorrectCount int

	// ResumeAnswered is the answered-question count shown by the resume
	// prompt.
	ResumeAnswered int

	initialized    bool
	pendingSession *store.QuizSession
	pendingAnswers []*store.QuizAnswer
}

// NewState builds an uninitialized attempt. Call Init before anything
// else.
func NewState(quiz *content.Quiz, user identity.User, sessions store.SessionRepo, answers store.AnswerRepo, verifier *verify.Orchestrator, verificationEnabled bool) *State {
	return &State{
		Quiz:                quiz,
		User:                user,
		Sessions:            sessions,
		Answers:             answers,
		Verifier:            verifier,
		Phase:               PhaseUninitialized,
		Results:             make(map[int]*QuestionResult),
		VerificationEnabled: verificationEnabled,
	}
}

// CurrentQuestion returns the question at the current position.
func (s *State) CurrentQuestion() *content.Question {
	qi := s.Order[s.Current]
	return &s.Quiz.Questions[qi]
}

// CurrentResult returns the current position's result, nil if
// unanswered.
func (s *State) CurrentResult() *QuestionResult {
	return s.Results[s.Order[s.Current]]
}

// AnsweredCount returns how many questions have a recorded result.
func (s *State) AnsweredCount() int {
	return len(s.Results)
}

func (s *State) persistent() bool {
	return !s.User.Anonymous() && s.Sessions != nil
}

// shuffleOrder returns a uniform random permutation of question
// indices.
func shuffleOrder(n int) []int {
	return rand.Perm(n)
}
