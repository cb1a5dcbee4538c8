package sessions

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/b1prep/backend/internal/models"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

type streakRow struct {
	Current      int
	Longest      int
	LastPractice *time.Time
}

func (s *Store) getStreak(userID int64) (*streakRow, error) {
	var row streakRow
	err := s.db.QueryRow(
		`SELECT streak_current, streak_longest, last_practice_date FROM users WHERE id = $1`,
		userID,
	).Scan(&row.Current, &row.Longest, &row.LastPractice)
	if err != nil {
		return nil, fmt.Errorf("get streak: %w", err)
	}
	return &row, nil
}

func (s *Store) updateStreak(userID int64, current, longest int, lastPractice time.Time) error {
	_, err := s.db.Exec(
		`UPDATE users SET streak_current = $1, streak_longest = $2, last_practice_date = $3, updated_at = NOW()
		 WHERE id = $4`,
		current, longest, lastPractice, userID,
	)
	if err != nil {
		return fmt.Errorf("update streak: %w", err)
	}
	return nil
}

// upsertDailySession accumulates activity into today's row, one row per user
// per calendar day.
func (s *Store) upsertDailySession(userID int64, date string, minutes, exercises, correct int, now time.Time) error {
	_, err := s.db.Exec(
		`INSERT INTO daily_sessions
		 (user_id, session_date, minutes_practiced, exercises_completed, exercises_correct, started_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (user_id, session_date)
		 DO UPDATE SET minutes_practiced = daily_sessions.minutes_practiced + $3,
		               exercises_completed = daily_sessions.exercises_completed + $4,
		               exercises_correct = daily_sessions.exercises_correct + $5`,
		userID, date, minutes, exercises, correct, now,
	)
	if err != nil {
		return fmt.Errorf("upsert daily session: %w", err)
	}
	return nil
}

func (s *Store) getSession(userID int64, date string) (*models.DailySession, error) {
	var sess models.DailySession
	err := s.db.QueryRow(
		`SELECT id, user_id, session_date, minutes_practiced, exercises_completed,
		        exercises_correct, started_at, ended_at
		 FROM daily_sessions WHERE user_id = $1 AND session_date = $2`,
		userID, date,
	).Scan(&sess.ID, &sess.UserID, &sess.SessionDate, &sess.MinutesPracticed,
		&sess.ExercisesCompleted, &sess.ExercisesCorrect, &sess.StartedAt, &sess.EndedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get daily session: %w", err)
	}
	return &sess, nil
}

func (s *Store) recentSessions(userID int64, limit int) ([]models.DailySession, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, session_date, minutes_practiced, exercises_completed,
		        exercises_correct, started_at, ended_at
		 FROM daily_sessions WHERE user_id = $1
		 ORDER BY session_date DESC LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("recent sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.DailySession
	for rows.Next() {
		var sess models.DailySession
		if err := rows.Scan(&sess.ID, &sess.UserID, &sess.SessionDate, &sess.MinutesPracticed,
			&sess.ExercisesCompleted, &sess.ExercisesCorrect, &sess.StartedAt, &sess.EndedAt); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// closeSessionsBefore stamps ended_at on open sessions from past days.
// Run by the nightly rollover job.
func (s *Store) closeSessionsBefore(date string) (int64, error) {
	res, err := s.db.Exec(
		`UPDATE daily_sessions
		 SET ended_at = (session_date::date + interval '1 day')
		 WHERE ended_at IS NULL AND session_date < $1`,
		date,
	)
	if err != nil {
		return 0, fmt.Errorf("close sessions: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
