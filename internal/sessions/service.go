package sessions

import (
	"log"
	"time"

	"github.com/b1prep/backend/internal/models"
)

type Service struct {
	store *Store
}

func NewService(store *Store) *Service {
	return &Service{store: store}
}

const dateLayout = "2006-01-02"

// RecordActivity bumps today's daily session and the user's streak. The
// bookkeeping is non-critical: failures are logged, never surfaced, so a
// broken streak row can never block an exercise submission.
func (s *Service) RecordActivity(userID int64, minutes, exercises, correct int) {
	now := time.Now().UTC()
	today := now.Format(dateLayout)

	if err := s.store.upsertDailySession(userID, today, minutes, exercises, correct, now); err != nil {
		log.Printf("WARN: [sessions] daily session for user %d: %v", userID, err)
	}

	row, err := s.store.getStreak(userID)
	if err != nil {
		log.Printf("WARN: [sessions] streak read for user %d: %v", userID, err)
		return
	}

	current, longest := NextStreak(row.Current, row.Longest, row.LastPractice, now)
	if err := s.store.updateStreak(userID, current, longest, now.Truncate(24*time.Hour)); err != nil {
		log.Printf("WARN: [sessions] streak write for user %d: %v", userID, err)
	}
}

// Streak returns the user's current and longest streak. A lapsed streak
// (no practice yesterday or today) reads as 0 without being rewritten;
// the next RecordActivity resets the stored value.
func (s *Service) Streak(userID int64) (current, longest int, err error) {
	row, err := s.store.getStreak(userID)
	if err != nil {
		return 0, 0, err
	}

	current = row.Current
	if row.LastPractice != nil {
		today := time.Now().UTC().Truncate(24 * time.Hour)
		last := row.LastPractice.UTC().Truncate(24 * time.Hour)
		if int(today.Sub(last).Hours()/24) > 1 {
			current = 0
		}
	} else {
		current = 0
	}
	return current, row.Longest, nil
}

// TodaySession returns today's aggregate, or nil when the user has not
// practiced yet today.
func (s *Service) TodaySession(userID int64) (*models.DailySession, error) {
	return s.store.getSession(userID, time.Now().UTC().Format(dateLayout))
}

// RecentSessions returns the last practice days, newest first.
func (s *Service) RecentSessions(userID int64, days int) ([]models.DailySession, error) {
	if days <= 0 {
		days = 14
	}
	sessions, err := s.store.recentSessions(userID, days)
	if err != nil {
		return nil, err
	}
	if sessions == nil {
		sessions = []models.DailySession{}
	}
	return sessions, nil
}

// RolloverDailySessions closes out open sessions from previous days.
// Scheduled nightly.
func (s *Service) RolloverDailySessions() {
	today := time.Now().UTC().Format(dateLayout)
	n, err := s.store.closeSessionsBefore(today)
	if err != nil {
		log.Printf("WARN: [sessions] rollover: %v", err)
		return
	}
	if n > 0 {
		log.Printf("[sessions] rollover closed %d sessions", n)
	}
}
