package tutor

import (
	"database/sql"
	"fmt"

	"github.com/b1prep/backend/internal/models"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) SaveMessage(userID int64, role, content string, topicID *int) error {
	_, err := s.db.Exec(
		`INSERT INTO tutor_messages (user_id, role, content, topic_id) VALUES ($1, $2, $3, $4)`,
		userID, role, content, topicID,
	)
	if err != nil {
		return fmt.Errorf("save tutor message: %w", err)
	}
	return nil
}

// RecentMessages returns the last messages in chronological order.
func (s *Store) RecentMessages(userID int64, limit int) ([]models.TutorMessage, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, role, content, topic_id, created_at
		 FROM (
		     SELECT id, user_id, role, content, topic_id, created_at
		     FROM tutor_messages WHERE user_id = $1
		     ORDER BY created_at DESC LIMIT $2
		 ) recent
		 ORDER BY created_at ASC`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("recent tutor messages: %w", err)
	}
	defer rows.Close()

	var messages []models.TutorMessage
	for rows.Next() {
		var m models.TutorMessage
		if err := rows.Scan(&m.ID, &m.UserID, &m.Role, &m.Content, &m.TopicID, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan tutor message: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func (s *Store) GetUserLevel(userID int64) (models.Level, error) {
	var level models.Level
	err := s.db.QueryRow(
		`SELECT current_level FROM users WHERE id = $1`,
		userID,
	).Scan(&level)
	if err != nil {
		return "", fmt.Errorf("get user level: %w", err)
	}
	return level, nil
}
