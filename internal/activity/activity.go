// Package activity computes study streaks over the per-day activity
// markers recorded at quiz completion.
package activity

import (
	"context"
	"time"

	"github.com/anupamd/revise/internal/store"
)

// dateFormat matches the keys written by the store at completion time.
const dateFormat = "2006-01-02"

// DefaultRecentDays is the window shown on the home screen.
const DefaultRecentDays = 30

// Day is one calendar day in a recent-activity window.
type Day struct {
	Date          string
	QuizCompleted bool
}

// Service answers streak and recent-activity queries for one repo.
type Service struct {
	repo store.ActivityRepo
	now  func() time.Time
}

func NewService(repo store.ActivityRepo) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Streak returns the number of consecutive completed days ending today
// (UTC). A day without a completion breaks the run, so the streak is 0
// until today's first quiz is finished.
func (s *Service) Streak(ctx context.Context, userID string) (int, error) {
	dates, err := s.repo.CompletedDates(ctx, userID)
	if err != nil {
		return 0, err
	}
	if len(dates) == 0 {
		return 0, nil
	}

	completed := make(map[string]bool, len(dates))
	for _, d := range dates {
		completed[d] = true
	}

	streak := 0
	day := s.now().UTC()
	for completed[day.Format(dateFormat)] {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak, nil
}

// Recent returns the last `days` calendar days, newest first, with
// each day's completion flag. days <= 0 uses DefaultRecentDays.
func (s *Service) Recent(ctx context.Context, userID string, days int) ([]Day, error) {
	if days <= 0 {
		days = DefaultRecentDays
	}

	dates, err := s.repo.CompletedDates(ctx, userID)
	if err != nil {
		return nil, err
	}
	completed := make(map[string]bool, len(dates))
	for _, d := range dates {
		completed[d] = true
	}

	out := make([]Day, 0, days)
	day := s.now().UTC()
	for i := 0; i < days; i++ {
		key := day.Format(dateFormat)
		out = append(out, Day{Date: key, QuizCompleted: completed[key]})
		day = day.AddDate(0, 0, -1)
	}
	return out, nil
}
