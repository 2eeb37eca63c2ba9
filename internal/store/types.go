package store

import (
	"errors"
	"time"
)

// SessionStatus is the lifecycle state of a quiz session.
// Completed and abandoned are terminal.
type SessionStatus string

const (
	StatusInProgress SessionStatus = "in_progress"
	StatusCompleted  SessionStatus = "completed"
	StatusAbandoned  SessionStatus = "abandoned"
)

// Verdict is the AI's PASS/FAIL judgment of a justification.
type Verdict string

const (
	VerdictPass Verdict = "PASS"
	VerdictFail Verdict = "FAIL"
)

// VerificationStatus tracks a verification attempt's lifecycle. A
// completed attempt never reverts to an earlier status; a retry starts a
// fresh pending record.
type VerificationStatus string

const (
	VerificationPending   VerificationStatus = "pending"
	VerificationStreaming VerificationStatus = "streaming"
	VerificationComplete  VerificationStatus = "complete"
	VerificationError     VerificationStatus = "error"
)

// AiVerification is the verification outcome embedded in an answer.
// While Status is pending or streaming the Verdict is a placeholder and
// must never be read as final.
type AiVerification struct {
	Verdict     Verdict            `json:"verdict"`
	Explanation string             `json:"explanation"`
	Status      VerificationStatus `json:"status"`
	Error       string             `json:"error,omitempty"`
}

// QuizSession is one user's attempt run through a quiz. QuestionOrder is
// fixed at creation and never mutated afterwards.
type QuizSession struct {
	ID                   string
	UserID               string
	QuizID               string
	ContentHash          string
	Status               SessionStatus
	QuestionOrder        []int
	CurrentQuestionIndex int
	TotalQuestions       int
	CorrectCount         int
	VerificationEnabled  bool
	StartedAt            time.Time
	CompletedAt          time.Time // zero unless completed
}

// QuizAnswer is the durable record of one answered question, unique per
// (session, questionIndex). QuestionIndex is the original unshuffled
// index; OrderPosition is the position within the session's shuffle.
type QuizAnswer struct {
	ID             string
	SessionID      string
	UserID         string
	QuestionIndex  int
	OrderPosition  int
	SelectedAnswer string
	Justification  string
	IsCorrect      bool
	AiVerification *AiVerification
}

// SaveAnswerParams carries an answer upsert.
type SaveAnswerParams struct {
	SessionID      string
	QuestionIndex  int
	OrderPosition  int
	SelectedAnswer string
	Justification  string
	IsCorrect      bool
	AiVerification *AiVerification
}

// StudySession tracks flashcard study progress for one (user, group).
type StudySession struct {
	ID            string
	UserID        string
	GroupID       string
	TotalCards    int
	RevealedCount int
	LastStudiedAt time.Time
}

// CardReveal records that one card's back was revealed, unique per
// (session, cardIndex).
type CardReveal struct {
	SessionID  string
	CardIndex  int
	RevealedAt time.Time
}

// DailyActivity marks one calendar day's study activity for a user.
// Date is the user's UTC date as YYYY-MM-DD.
type DailyActivity struct {
	UserID        string
	Date          string
	QuizCompleted bool
}

var (
	// ErrNotFound is returned when a session or answer does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrNotOwner is returned when a record is accessed by a user other
	// than its owner.
	ErrNotOwner = errors.New("not the record owner")

	// ErrInvalidState is returned for mutations against a session that is
	// no longer in progress. The operation is rejected atomically.
	ErrInvalidState = errors.New("session is not in progress")

	// ErrAnswerMapping is returned when an answer's orderPosition does not
	// map to its questionIndex through the session's question order.
	ErrAnswerMapping = errors.New("orderPosition does not match questionIndex")
)
