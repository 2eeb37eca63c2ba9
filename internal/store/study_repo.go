package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type studyRepo struct {
	db *sql.DB
}

func (r *studyRepo) ActiveStudy(ctx context.Context, userID, groupID string) (*StudySession, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, user_id, group_id, total_cards,
		revealed_count, last_studied_at
		FROM study_sessions WHERE user_id = ? AND group_id = ?`, userID, groupID)
	sess, err := scanStudySession(row)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return sess, err
}

func (r *studyRepo) StartStudy(ctx context.Context, userID, groupID string, totalCards int, now time.Time) (*StudySession, error) {
	sess := &StudySession{
		ID:            uuid.New().String(),
		UserID:        userID,
		GroupID:       groupID,
		TotalCards:    totalCards,
		LastStudiedAt: now,
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO study_sessions
		(id, user_id, group_id, total_cards, revealed_count, last_studied_at)
		VALUES (?, ?, ?, ?, 0, ?)`,
		sess.ID, sess.UserID, sess.GroupID, sess.TotalCards, now.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("insert study session: %w", err)
	}
	return sess, nil
}

func (r *studyRepo) RecordReveal(ctx context.Context, userID, sessionID string, cardIndex int, now time.Time) error {
	if _, err := r.getOwnedStudy(ctx, userID, sessionID); err != nil {
		return err
	}

	_, err := r.db.ExecContext(ctx, `INSERT INTO card_reveals (session_id, card_index, revealed_at)
		VALUES (?, ?, ?)
		ON CONFLICT (session_id, card_index) DO UPDATE SET revealed_at = excluded.revealed_at`,
		sessionID, cardIndex, now.UnixMilli())
	if err != nil {
		return fmt.Errorf("record reveal: %w", err)
	}

	// Recount rather than increment: re-revealing a card must not inflate
	// the count.
	_, err = r.db.ExecContext(ctx, `UPDATE study_sessions SET
		revealed_count = (SELECT COUNT(*) FROM card_reveals WHERE session_id = ?),
		last_studied_at = ?
		WHERE id = ?`, sessionID, now.UnixMilli(), sessionID)
	if err != nil {
		return fmt.Errorf("update study session: %w", err)
	}
	return nil
}

func (r *studyRepo) ListReveals(ctx context.Context, userID, sessionID string) ([]*CardReveal, error) {
	if _, err := r.getOwnedStudy(ctx, userID, sessionID); err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `SELECT session_id, card_index, revealed_at
		FROM card_reveals WHERE session_id = ? ORDER BY card_index`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query reveals: %w", err)
	}
	defer rows.Close()

	var reveals []*CardReveal
	for rows.Next() {
		var (
			rv         CardReveal
			revealedAt int64
		)
		if err := rows.Scan(&rv.SessionID, &rv.CardIndex, &revealedAt); err != nil {
			return nil, fmt.Errorf("scan reveal: %w", err)
		}
		rv.RevealedAt = time.UnixMilli(revealedAt)
		reveals = append(reveals, &rv)
	}
	return reveals, rows.Err()
}

func (r *studyRepo) getOwnedStudy(ctx context.Context, userID, sessionID string) (*StudySession, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, user_id, group_id, total_cards,
		revealed_count, last_studied_at
		FROM study_sessions WHERE id = ?`, sessionID)
	sess, err := scanStudySession(row)
	if err != nil {
		return nil, err
	}
	if sess.UserID != userID {
		return nil, ErrNotOwner
	}
	return sess, nil
}

func scanStudySession(row rowScanner) (*StudySession, error) {
	var (
		sess          StudySession
		lastStudiedAt int64
	)
	err := row.Scan(&sess.ID, &sess.UserID, &sess.GroupID, &sess.TotalCards,
		&sess.RevealedCount, &lastStudiedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan study session: %w", err)
	}
	sess.LastStudiedAt = time.UnixMilli(lastStudiedAt)
	return &sess, nil
}
