package progress

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

type profileRow struct {
	CurrentLevel          models.Level
	ExamDate              *time.Time
	DailyGoalMinutes      int
	HasCompletedPlacement bool
}

func (s *Store) getProfile(userID int64) (*profileRow, error) {
	var row profileRow
	err := s.db.QueryRow(
		`SELECT current_level, exam_date, daily_goal_minutes, has_completed_placement
		 FROM users WHERE id = $1`,
		userID,
	).Scan(&row.CurrentLevel, &row.ExamDate, &row.DailyGoalMinutes, &row.HasCompletedPlacement)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &row, nil
}
