package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemStore is an in-memory implementation of Repos with the same
// semantics as the SQLite store. It backs unauthenticated play, where
// nothing should touch disk, and tests.
type MemStore struct {
	mu        sync.Mutex
	sessions  map[string]*QuizSession
	answers   map[string]map[int]*QuizAnswer // sessionID -> questionIndex
	studies   map[string]*StudySession
	reveals   map[string]map[int]*CardReveal // sessionID -> cardIndex
	activity  map[string]map[string]bool     // userID -> date
	events    []*LLMEvent
	nextEvent int
}

var _ Repos = (*MemStore)(nil)

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		sessions:  make(map[string]*QuizSession),
		answers:   make(map[string]map[int]*QuizAnswer),
		studies:   make(map[string]*StudySession),
		reveals:   make(map[string]map[int]*CardReveal),
		activity:  make(map[string]map[string]bool),
		nextEvent: 1,
	}
}

func (m *MemStore) Sessions() SessionRepo  { return (*memSessionRepo)(m) }
func (m *MemStore) Answers() AnswerRepo    { return (*memAnswerRepo)(m) }
func (m *MemStore) Study() StudyRepo       { return (*memStudyRepo)(m) }
func (m *MemStore) Activity() ActivityRepo { return (*memActivityRepo)(m) }
func (m *MemStore) Events() EventRepo      { return (*memEventRepo)(m) }

func (m *MemStore) ownedSession(userID, sessionID string) (*QuizSession, error) {
	sess, ok := m.sessions[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	if sess.UserID != userID {
		return nil, ErrNotOwner
	}
	return sess, nil
}

type memSessionRepo MemStore

func (m *memSessionRepo) Start(_ context.Context, userID string, params StartSessionParams) (*QuizSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess := &QuizSession{
		ID:                  uuid.New().String(),
		UserID:              userID,
		QuizID:              params.QuizID,
		ContentHash:         params.ContentHash,
		Status:              StatusInProgress,
		QuestionOrder:       append([]int(nil), params.QuestionOrder...),
		TotalQuestions:      params.TotalQuestions,
		VerificationEnabled: params.VerificationEnabled,
		StartedAt:           time.Now(),
	}
	m.sessions[sess.ID] = sess
	return copySession(sess), nil
}

func (m *memSessionRepo) Active(_ context.Context, userID, quizID string) (*QuizSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var newest *QuizSession
	for _, sess := range m.sessions {
		if sess.UserID != userID || sess.QuizID != quizID || sess.Status != StatusInProgress {
			continue
		}
		if newest == nil || sess.StartedAt.After(newest.StartedAt) {
			newest = sess
		}
	}
	if newest == nil {
		return nil, nil
	}
	return copySession(newest), nil
}

func (m *memSessionRepo) Get(_ context.Context, userID, sessionID string) (*QuizSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, err := (*MemStore)(m).ownedSession(userID, sessionID)
	if err != nil {
		return nil, err
	}
	return copySession(sess), nil
}

func (m *memSessionRepo) UpdateProgress(_ context.Context, userID, sessionID string, currentQuestionIndex int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, err := (*MemStore)(m).ownedSession(userID, sessionID)
	if err != nil {
		return err
	}
	if sess.Status != StatusInProgress {
		return ErrInvalidState
	}
	sess.CurrentQuestionIndex = currentQuestionIndex
	return nil
}

func (m *memSessionRepo) Complete(_ context.Context, userID, sessionID string, now time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, err := (*MemStore)(m).ownedSession(userID, sessionID)
	if err != nil {
		return 0, err
	}
	if sess.Status != StatusInProgress {
		return 0, ErrInvalidState
	}

	answers := sortedAnswers(m.answers[sessionID])
	correctCount := ScoreAnswers(sess.VerificationEnabled, answers)

	sess.Status = StatusCompleted
	sess.CorrectCount = correctCount
	sess.CompletedAt = now

	date := now.UTC().Format("2006-01-02")
	if m.activity[userID] == nil {
		m.activity[userID] = make(map[string]bool)
	}
	m.activity[userID][date] = true

	return correctCount, nil
}

func (m *memSessionRepo) Abandon(_ context.Context, userID, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, err := (*MemStore)(m).ownedSession(userID, sessionID)
	if err != nil {
		return err
	}
	if sess.Status != StatusInProgress {
		return ErrInvalidState
	}
	sess.Status = StatusAbandoned
	return nil
}

func (m *memSessionRepo) CompletedByUser(_ context.Context, userID, quizID string) ([]*QuizSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*QuizSession
	for _, sess := range m.sessions {
		if sess.UserID != userID || sess.Status != StatusCompleted {
			continue
		}
		if quizID != "" && sess.QuizID != quizID {
			continue
		}
		out = append(out, copySession(sess))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CompletedAt.After(out[j].CompletedAt)
	})
	return out, nil
}

type memAnswerRepo MemStore

func (m *memAnswerRepo) Save(_ context.Context, userID string, params SaveAnswerParams) (*QuizAnswer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, err := (*MemStore)(m).ownedSession(userID, params.SessionID)
	if err != nil {
		return nil, err
	}
	if sess.Status != StatusInProgress {
		return nil, ErrInvalidState
	}
	if params.OrderPosition < 0 || params.OrderPosition >= len(sess.QuestionOrder) ||
		sess.QuestionOrder[params.OrderPosition] != params.QuestionIndex {
		return nil, ErrAnswerMapping
	}

	if m.answers[params.SessionID] == nil {
		m.answers[params.SessionID] = make(map[int]*QuizAnswer)
	}

	answer := &QuizAnswer{
		ID:             uuid.New().String(),
		SessionID:      params.SessionID,
		UserID:         userID,
		QuestionIndex:  params.QuestionIndex,
		OrderPosition:  params.OrderPosition,
		SelectedAnswer: params.SelectedAnswer,
		Justification:  params.Justification,
		IsCorrect:      params.IsCorrect,
		AiVerification: copyVerification(params.AiVerification),
	}
	if prev, ok := m.answers[params.SessionID][params.QuestionIndex]; ok {
		answer.ID = prev.ID
	}
	m.answers[params.SessionID][params.QuestionIndex] = answer
	return copyAnswer(answer), nil
}

func (m *memAnswerRepo) UpdateVerification(_ context.Context, userID, sessionID string, questionIndex int, v *AiVerification) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := (*MemStore)(m).ownedSession(userID, sessionID); err != nil {
		return err
	}
	answer, ok := m.answers[sessionID][questionIndex]
	if !ok {
		return ErrNotFound
	}
	answer.AiVerification = copyVerification(v)
	return nil
}

func (m *memAnswerRepo) ListBySession(_ context.Context, userID, sessionID string) ([]*QuizAnswer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := (*MemStore)(m).ownedSession(userID, sessionID); err != nil {
		return nil, err
	}
	answers := sortedAnswers(m.answers[sessionID])
	out := make([]*QuizAnswer, len(answers))
	for i, a := range answers {
		out[i] = copyAnswer(a)
	}
	return out, nil
}

type memStudyRepo MemStore

func (m *memStudyRepo) ActiveStudy(_ context.Context, userID, groupID string) (*StudySession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, sess := range m.studies {
		if sess.UserID == userID && sess.GroupID == groupID {
			cp := *sess
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memStudyRepo) StartStudy(_ context.Context, userID, groupID string, totalCards int, now time.Time) (*StudySession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess := &StudySession{
		ID:            uuid.New().String(),
		UserID:        userID,
		GroupID:       groupID,
		TotalCards:    totalCards,
		LastStudiedAt: now,
	}
	m.studies[sess.ID] = sess
	cp := *sess
	return &cp, nil
}

func (m *memStudyRepo) RecordReveal(_ context.Context, userID, sessionID string, cardIndex int, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.studies[sessionID]
	if !ok {
		return ErrNotFound
	}
	if sess.UserID != userID {
		return ErrNotOwner
	}

	if m.reveals[sessionID] == nil {
		m.reveals[sessionID] = make(map[int]*CardReveal)
	}
	m.reveals[sessionID][cardIndex] = &CardReveal{
		SessionID:  sessionID,
		CardIndex:  cardIndex,
		RevealedAt: now,
	}
	sess.RevealedCount = len(m.reveals[sessionID])
	sess.LastStudiedAt = now
	return nil
}

func (m *memStudyRepo) ListReveals(_ context.Context, userID, sessionID string) ([]*CardReveal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.studies[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	if sess.UserID != userID {
		return nil, ErrNotOwner
	}

	var out []*CardReveal
	for _, rv := range m.reveals[sessionID] {
		cp := *rv
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CardIndex < out[j].CardIndex })
	return out, nil
}

type memActivityRepo MemStore

func (m *memActivityRepo) RecordQuizCompletion(_ context.Context, userID, date string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.activity[userID] == nil {
		m.activity[userID] = make(map[string]bool)
	}
	m.activity[userID][date] = true
	return nil
}

func (m *memActivityRepo) CompletedDates(_ context.Context, userID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var dates []string
	for d := range m.activity[userID] {
		dates = append(dates, d)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	return dates, nil
}

type memEventRepo MemStore

func (m *memEventRepo) AppendLLMRequest(_ context.Context, data LLMRequestEventData) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.events = append(m.events, &LLMEvent{
		ID:                  m.nextEvent,
		Timestamp:           time.Now(),
		LLMRequestEventData: data,
	})
	m.nextEvent++
	return nil
}

func (m *memEventRepo) QueryLLMEvents(_ context.Context, opts QueryOpts) ([]*LLMEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	limit := opts.Limit
	if limit <= 0 {
		limit = defaultEventLimit
	}
	var out []*LLMEvent
	for i := len(m.events) - 1; i >= 0 && len(out) < limit; i-- {
		cp := *m.events[i]
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memEventRepo) GetLLMEvent(_ context.Context, id int) (*LLMEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, ev := range m.events {
		if ev.ID == id {
			cp := *ev
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memEventRepo) LLMUsageByPurpose(_ context.Context) ([]*LLMUsage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return aggregateUsage(m.events, func(ev *LLMEvent) (string, string) { return ev.Purpose, "" }), nil
}

func (m *memEventRepo) LLMUsageByModel(_ context.Context) ([]*LLMUsage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return aggregateUsage(m.events, func(ev *LLMEvent) (string, string) { return "", ev.Model }), nil
}

func aggregateUsage(events []*LLMEvent, key func(*LLMEvent) (purpose, model string)) []*LLMUsage {
	byKey := make(map[string]*LLMUsage)
	totalLatency := make(map[string]int64)
	for _, ev := range events {
		purpose, model := key(ev)
		k := purpose + "\x00" + model
		u, ok := byKey[k]
		if !ok {
			u = &LLMUsage{Purpose: purpose, Model: model}
			byKey[k] = u
		}
		u.Calls++
		u.InputTokens += ev.InputTokens
		u.OutputTokens += ev.OutputTokens
		totalLatency[k] += ev.LatencyMs
	}

	keys := make([]string, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]*LLMUsage, 0, len(keys))
	for _, k := range keys {
		u := byKey[k]
		u.AvgLatencyMs = totalLatency[k] / int64(u.Calls)
		out = append(out, u)
	}
	return out
}

func sortedAnswers(byIndex map[int]*QuizAnswer) []*QuizAnswer {
	out := make([]*QuizAnswer, 0, len(byIndex))
	for _, a := range byIndex {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderPosition < out[j].OrderPosition })
	return out
}

func copySession(sess *QuizSession) *QuizSession {
	cp := *sess
	cp.QuestionOrder = append([]int(nil), sess.QuestionOrder...)
	return &cp
}

func copyAnswer(a *QuizAnswer) *QuizAnswer {
	cp := *a
	cp.AiVerification = copyVerification(a.AiVerification)
	return &cp
}

func copyVerification(v *AiVerification) *AiVerification {
	if v == nil {
		return nil
	}
	cp := *v
	return &cp
}
