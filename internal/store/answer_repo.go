package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

type answerRepo struct {
	db *sql.DB
}

func (r *answerRepo) Save(ctx context.Context, userID string, params SaveAnswerParams) (*QuizAnswer, error) {
	sess, err := getOwnedSession(ctx, r.db, userID, params.SessionID)
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

	verification, err := marshalVerification(params.AiVerification)
	if err != nil {
		return nil, err
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
		AiVerification: params.AiVerification,
	}

	// The (session_id, question_index) unique key makes a backtrack edit
	// an update, never a duplicate.
	_, err = r.db.ExecContext(ctx, `INSERT INTO quiz_answers
		(id, session_id, user_id, question_index, order_position,
		 selected_answer, justification, is_correct, ai_verification)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (session_id, question_index) DO UPDATE SET
			selected_answer = excluded.selected_answer,
			justification = excluded.justification,
			is_correct = excluded.is_correct,
			ai_verification = excluded.ai_verification`,
		answer.ID, answer.SessionID, answer.UserID, answer.QuestionIndex,
		answer.OrderPosition, answer.SelectedAnswer, answer.Justification,
		answer.IsCorrect, verification)
	if err != nil {
		return nil, fmt.Errorf("save answer: %w", err)
	}
	return answer, nil
}

func (r *answerRepo) UpdateVerification(ctx context.Context, userID, sessionID string, questionIndex int, v *AiVerification) error {
	if _, err := getOwnedSession(ctx, r.db, userID, sessionID); err != nil {
		return err
	}

	verification, err := marshalVerification(v)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `UPDATE quiz_answers SET ai_verification = ?
		WHERE session_id = ? AND question_index = ?`,
		verification, sessionID, questionIndex)
	if err != nil {
		return fmt.Errorf("update verification: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *answerRepo) ListBySession(ctx context.Context, userID, sessionID string) ([]*QuizAnswer, error) {
	if _, err := getOwnedSession(ctx, r.db, userID, sessionID); err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `SELECT id, session_id, user_id, question_index,
		order_position, selected_answer, justification, is_correct, ai_verification
		FROM quiz_answers WHERE session_id = ? ORDER BY order_position`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query answers: %w", err)
	}
	defer rows.Close()

	var answers []*QuizAnswer
	for rows.Next() {
		var (
			a            QuizAnswer
			verification sql.NullString
		)
		if err := rows.Scan(&a.ID, &a.SessionID, &a.UserID, &a.QuestionIndex,
			&a.OrderPosition, &a.SelectedAnswer, &a.Justification, &a.IsCorrect,
			&verification); err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		if verification.Valid && verification.String != "" {
			var v AiVerification
			if err := json.Unmarshal([]byte(verification.String), &v); err != nil {
				return nil, fmt.Errorf("unmarshal verification: %w", err)
			}
			a.AiVerification = &v
		}
		answers = append(answers, &a)
	}
	return answers, rows.Err()
}

func marshalVerification(v *AiVerification) (any, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal verification: %w", err)
	}
	return string(data), nil
}
