package store

import (
	"context"
	"time"
)

// SessionRepo manages quiz sessions. Every accessor takes the acting
// user's id; operations against records owned by someone else fail with
// ErrNotOwner so callers can't assume partial success.
type SessionRepo interface {
	// Start creates a fresh in-progress session with the given shuffle.
	Start(ctx context.Context, userID string, params StartSessionParams) (*QuizSession, error)

	// Active returns the in-progress session for (user, quiz), or nil.
	Active(ctx context.Context, userID, quizID string) (*QuizSession, error)

	// Get returns a session after an ownership check.
	Get(ctx context.Context, userID, sessionID string) (*QuizSession, error)

	// UpdateProgress persists the current question index.
	UpdateProgress(ctx context.Context, userID, sessionID string, currentQuestionIndex int) error

	// Complete re-scores every persisted answer (server-authoritative),
	// marks the session completed, and records the day's activity. Returns
	// the final correct count.
	Complete(ctx context.Context, userID, sessionID string, now time.Time) (int, error)

	// Abandon marks a session abandoned. Its answers are orphaned, not
	// deleted.
	Abandon(ctx context.Context, userID, sessionID string) error

	// CompletedByUser lists completed sessions, most recent first. quizID
	// narrows to one quiz when non-empty.
	CompletedByUser(ctx context.Context, userID, quizID string) ([]*QuizSession, error)
}

// StartSessionParams carries session creation.
type StartSessionParams struct {
	QuizID              string
	ContentHash         string
	QuestionOrder       []int
	TotalQuestions      int
	VerificationEnabled bool
}

// AnswerRepo manages persisted answers.
type AnswerRepo interface {
	// Save upserts the answer for (session, questionIndex). The session
	// must be in progress and params.OrderPosition must map to
	// params.QuestionIndex through the session's question order;
	// violations reject the whole write.
	Save(ctx context.Context, userID string, params SaveAnswerParams) (*QuizAnswer, error)

	// UpdateVerification replaces the verification outcome on an existing
	// answer. Unlike Save it is accepted after the session leaves
	// in_progress: a slow verification may land after completion.
	UpdateVerification(ctx context.Context, userID, sessionID string, questionIndex int, v *AiVerification) error

	// ListBySession returns a session's answers ordered by orderPosition.
	ListBySession(ctx context.Context, userID, sessionID string) ([]*QuizAnswer, error)
}

// StudyRepo manages flashcard study sessions and card reveals.
type StudyRepo interface {
	// ActiveStudy returns the study session for (user, group), or nil.
	ActiveStudy(ctx context.Context, userID, groupID string) (*StudySession, error)

	// StartStudy creates a study session for (user, group).
	StartStudy(ctx context.Context, userID, groupID string, totalCards int, now time.Time) (*StudySession, error)

	// RecordReveal upserts a reveal for (session, cardIndex) and refreshes
	// the session's revealed count and last-studied time. Revealing the
	// same card twice is a no-op beyond the timestamp.
	RecordReveal(ctx context.Context, userID, sessionID string, cardIndex int, now time.Time) error

	// ListReveals returns a session's reveals ordered by card index.
	ListReveals(ctx context.Context, userID, sessionID string) ([]*CardReveal, error)
}

// ActivityRepo manages per-day activity markers.
type ActivityRepo interface {
	// RecordQuizCompletion marks date's activity for the user. Idempotent:
	// a second completion on the same day updates the existing record.
	RecordQuizCompletion(ctx context.Context, userID, date string) error

	// CompletedDates returns the dates with a completed quiz, unordered.
	CompletedDates(ctx context.Context, userID string) ([]string, error)
}

// QueryOpts configures event queries.
type QueryOpts struct {
	Limit int // max results (0 = a sensible default)
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEvent is a persisted LLM request event.
type LLMEvent struct {
	ID        int
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsage aggregates token usage for one purpose or model.
type LLMUsage struct {
	Purpose      string
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// EventRepo records and queries LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns recent events, newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]*LLMEvent, error)

	// GetLLMEvent returns one event by id, or nil.
	GetLLMEvent(ctx context.Context, id int) (*LLMEvent, error)

	// LLMUsageByPurpose aggregates usage grouped by purpose.
	LLMUsageByPurpose(ctx context.Context) ([]*LLMUsage, error)

	// LLMUsageByModel aggregates usage grouped by model.
	LLMUsageByModel(ctx context.Context) ([]*LLMUsage, error)
}

// Repos bundles every repository the app wires together, so the TUI can
// run against SQLite or the in-memory store interchangeably.
type Repos interface {
	Sessions() SessionRepo
	Answers() AnswerRepo
	Study() StudyRepo
	Activity() ActivityRepo
	Events() EventRepo
}
