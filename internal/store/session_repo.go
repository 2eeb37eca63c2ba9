package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type sessionRepo struct {
	db *sql.DB
}

func (r *sessionRepo) Start(ctx context.Context, userID string, params StartSessionParams) (*QuizSession, error) {
	order, err := json.Marshal(params.QuestionOrder)
	if err != nil {
		return nil, fmt.Errorf("marshal question order: %w", err)
	}

	sess := &QuizSession{
		ID:                  uuid.New().String(),
		UserID:              userID,
		QuizID:              params.QuizID,
		ContentHash:         params.ContentHash,
		Status:              StatusInProgress,
		QuestionOrder:       params.QuestionOrder,
		TotalQuestions:      params.TotalQuestions,
		VerificationEnabled: params.VerificationEnabled,
		StartedAt:           time.Now(),
	}

	_, err = r.db.ExecContext(ctx, `INSERT INTO quiz_sessions
		(id, user_id, quiz_id, content_hash, status, question_order,
		 current_question_index, total_questions, correct_count,
		 verification_enabled, started_at)
		VALUES (?, ?, ?, ?, ?, ?, 0, ?, 0, ?, ?)`,
		sess.ID, sess.UserID, sess.QuizID, sess.ContentHash, sess.Status,
		string(order), sess.TotalQuestions, sess.VerificationEnabled,
		sess.StartedAt.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	return sess, nil
}

func (r *sessionRepo) Active(ctx context.Context, userID, quizID string) (*QuizSession, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, user_id, quiz_id, content_hash, status,
		question_order, current_question_index, total_questions, correct_count,
		verification_enabled, started_at, completed_at
		FROM quiz_sessions
		WHERE user_id = ? AND quiz_id = ? AND status = ?
		ORDER BY started_at DESC LIMIT 1`,
		userID, quizID, StatusInProgress)
	sess, err := scanSession(row)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return sess, err
}

func (r *sessionRepo) Get(ctx context.Context, userID, sessionID string) (*QuizSession, error) {
	return getOwnedSession(ctx, r.db, userID, sessionID)
}

func (r *sessionRepo) UpdateProgress(ctx context.Context, userID, sessionID string, currentQuestionIndex int) error {
	sess, err := getOwnedSession(ctx, r.db, userID, sessionID)
	if err != nil {
		return err
	}
	if sess.Status != StatusInProgress {
		return ErrInvalidState
	}

	_, err = r.db.ExecContext(ctx,
		`UPDATE quiz_sessions SET current_question_index = ? WHERE id = ?`,
		currentQuestionIndex, sessionID)
	if err != nil {
		return fmt.Errorf("update progress: %w", err)
	}
	return nil
}

func (r *sessionRepo) Complete(ctx context.Context, userID, sessionID string, now time.Time) (int, error) {
	sess, err := getOwnedSession(ctx, r.db, userID, sessionID)
	if err != nil {
		return 0, err
	}
	if sess.Status != StatusInProgress {
		return 0, ErrInvalidState
	}

	answers, err := (&answerRepo{db: r.db}).ListBySession(ctx, userID, sessionID)
	if err != nil {
		return 0, err
	}
	correctCount := ScoreAnswers(sess.VerificationEnabled, answers)

	_, err = r.db.ExecContext(ctx,
		`UPDATE quiz_sessions SET status = ?, correct_count = ?, completed_at = ? WHERE id = ?`,
		StatusCompleted, correctCount, now.UnixMilli(), sessionID)
	if err != nil {
		return 0, fmt.Errorf("complete session: %w", err)
	}

	// One activity marker per calendar day; a second completion on the
	// same day updates the existing record.
	date := now.UTC().Format("2006-01-02")
	if err := (&activityRepo{db: r.db}).RecordQuizCompletion(ctx, userID, date); err != nil {
		return 0, err
	}

	return correctCount, nil
}

func (r *sessionRepo) Abandon(ctx context.Context, userID, sessionID string) error {
	if _, err := getOwnedSession(ctx, r.db, userID, sessionID); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx,
		`UPDATE quiz_sessions SET status = ? WHERE id = ?`, StatusAbandoned, sessionID)
	if err != nil {
		return fmt.Errorf("abandon session: %w", err)
	}
	return nil
}

func (r *sessionRepo) CompletedByUser(ctx context.Context, userID, quizID string) ([]*QuizSession, error) {
	q := `SELECT id, user_id, quiz_id, content_hash, status, question_order,
		current_question_index, total_questions, correct_count,
		verification_enabled, started_at, completed_at
		FROM quiz_sessions WHERE user_id = ? AND status = ?`
	args := []any{userID, StatusCompleted}
	if quizID != "" {
		q += ` AND quiz_id = ?`
		args = append(args, quizID)
	}
	q += ` ORDER BY completed_at DESC`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query completed sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*QuizSession
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// ScoreAnswers computes the server-authoritative correct count. With
// verification enabled, an answer whose verification completed is scored
// by its verdict; everything else falls back to plain correctness.
func ScoreAnswers(verificationEnabled bool, answers []*QuizAnswer) int {
	count := 0
	for _, a := range answers {
		if verificationEnabled && a.AiVerification != nil && a.AiVerification.Status == VerificationComplete {
			if a.AiVerification.Verdict == VerdictPass {
				count++
			}
			continue
		}
		if a.IsCorrect {
			count++
		}
	}
	return count
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*QuizSession, error) {
	var (
		sess        QuizSession
		orderJSON   string
		startedAt   int64
		completedAt sql.NullInt64
	)
	err := row.Scan(&sess.ID, &sess.UserID, &sess.QuizID, &sess.ContentHash,
		&sess.Status, &orderJSON, &sess.CurrentQuestionIndex, &sess.TotalQuestions,
		&sess.CorrectCount, &sess.VerificationEnabled, &startedAt, &completedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan session: %w", err)
	}

	if err := json.Unmarshal([]byte(orderJSON), &sess.QuestionOrder); err != nil {
		return nil, fmt.Errorf("unmarshal question order: %w", err)
	}
	sess.StartedAt = time.UnixMilli(startedAt)
	if completedAt.Valid {
		sess.CompletedAt = time.UnixMilli(completedAt.Int64)
	}
	return &sess, nil
}
