package store

import (
	"context"
	"database/sql"
	"fmt"
)

type activityRepo struct {
	db *sql.DB
}

func (r *activityRepo) RecordQuizCompletion(ctx context.Context, userID, date string) error {
	// Idempotent per (user, date): the second completion on the same day is
	// a no-op.
	_, err := r.db.ExecContext(ctx, `INSERT INTO daily_activity (user_id, date, quiz_completed)
		VALUES (?, ?, 1)
		ON CONFLICT (user_id, date) DO UPDATE SET quiz_completed = 1`,
		userID, date)
	if err != nil {
		return fmt.Errorf("record activity: %w", err)
	}
	return nil
}

func (r *activityRepo) CompletedDates(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT date FROM daily_activity
		WHERE user_id = ? AND quiz_completed = 1 ORDER BY date DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query activity: %w", err)
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}
