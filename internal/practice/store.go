package practice

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

// ── Topic Progress ──────────────────────────────────────

func (s *Store) GetProgress(userID int64, topicID int) (*models.UserTopicProgress, error) {
	var p models.UserTopicProgress
	err := s.db.QueryRow(
		`SELECT id, user_id, topic_id, difficulty_level, attempts, correct, proficiency, last_practiced
		 FROM user_topic_progress WHERE user_id = $1 AND topic_id = $2`,
		userID, topicID,
	).Scan(&p.ID, &p.UserID, &p.TopicID, &p.DifficultyLevel, &p.Attempts,
		&p.Correct, &p.Proficiency, &p.LastPracticed)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get progress: %w", err)
	}
	return &p, nil
}

func (s *Store) ListProgress(userID int64) ([]models.UserTopicProgress, error) {
	rows, err := s.db.Query(
		`SELECT p.id, p.user_id, p.topic_id, p.difficulty_level, p.attempts, p.correct,
		        p.proficiency, p.last_practiced,
		        t.id, t.slug, t.name_de, t.name_en, t.level, t.description_de, t.description_en,
		        t.order_index, t.weight
		 FROM user_topic_progress p
		 JOIN grammar_topics t ON t.id = p.topic_id
		 WHERE p.user_id = $1
		 ORDER BY t.order_index`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	defer rows.Close()

	var items []models.UserTopicProgress
	for rows.Next() {
		var p models.UserTopicProgress
		var t models.GrammarTopic
		if err := rows.Scan(&p.ID, &p.UserID, &p.TopicID, &p.DifficultyLevel, &p.Attempts,
			&p.Correct, &p.Proficiency, &p.LastPracticed,
			&t.ID, &t.Slug, &t.NameDE, &t.NameEN, &t.Level, &t.DescriptionDE, &t.DescriptionEN,
			&t.OrderIndex, &t.Weight); err != nil {
			return nil, fmt.Errorf("scan progress: %w", err)
		}
		p.Topic = &t
		items = append(items, p)
	}
	return items, rows.Err()
}

func (s *Store) UpsertProgress(p models.UserTopicProgress) error {
	_, err := s.db.Exec(
		`INSERT INTO user_topic_progress
		 (user_id, topic_id, difficulty_level, attempts, correct, proficiency, last_practiced)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (user_id, topic_id)
		 DO UPDATE SET difficulty_level = $3, attempts = $4, correct = $5,
		               proficiency = $6, last_practiced = $7`,
		p.UserID, p.TopicID, p.DifficultyLevel, p.Attempts, p.Correct,
		p.Proficiency, p.LastPracticed,
	)
	if err != nil {
		return fmt.Errorf("upsert progress: %w", err)
	}
	return nil
}

// AllProgress returns every practiced progress row across users. Used by
// the nightly proficiency-decay job.
func (s *Store) AllProgress() ([]models.UserTopicProgress, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, topic_id, difficulty_level, attempts, correct, proficiency, last_practiced
		 FROM user_topic_progress WHERE attempts > 0`,
	)
	if err != nil {
		return nil, fmt.Errorf("all progress: %w", err)
	}
	defer rows.Close()

	var items []models.UserTopicProgress
	for rows.Next() {
		var p models.UserTopicProgress
		if err := rows.Scan(&p.ID, &p.UserID, &p.TopicID, &p.DifficultyLevel, &p.Attempts,
			&p.Correct, &p.Proficiency, &p.LastPracticed); err != nil {
			return nil, fmt.Errorf("scan progress: %w", err)
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

func (s *Store) SetProficiency(id int64, proficiency int) error {
	_, err := s.db.Exec(
		`UPDATE user_topic_progress SET proficiency = $1 WHERE id = $2`,
		proficiency, id,
	)
	return err
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

// ── Exercise History ────────────────────────────────────

func (s *Store) RecordExercise(rec models.ExerciseRecord) error {
	_, err := s.db.Exec(
		`INSERT INTO exercise_history
		 (user_id, exercise_type, topic_id, prompt_en, prompt_de, correct_answer,
		  user_answer, was_correct, time_taken_seconds, difficulty_level, session_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		rec.UserID, rec.ExerciseType, rec.TopicID, rec.PromptEN, rec.PromptDE,
		rec.CorrectAnswer, rec.UserAnswer, rec.WasCorrect, rec.TimeTakenSeconds,
		rec.DifficultyLevel, rec.SessionID,
	)
	if err != nil {
		return fmt.Errorf("record exercise: %w", err)
	}
	return nil
}

// RecentOutcomes returns (attempts, correct) over the last `window` graded
// exercises for one topic. This is the rolling window the difficulty
// controller looks at.
func (s *Store) RecentOutcomes(userID int64, topicID, window int) (attempts, correct int, err error) {
	err = s.db.QueryRow(
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE was_correct)
		 FROM (
		     SELECT was_correct FROM exercise_history
		     WHERE user_id = $1 AND topic_id = $2 AND was_correct IS NOT NULL
		     ORDER BY created_at DESC
		     LIMIT $3
		 ) recent`,
		userID, topicID, window,
	).Scan(&attempts, &correct)
	if err != nil {
		return 0, 0, fmt.Errorf("recent outcomes: %w", err)
	}
	return attempts, correct, nil
}

func (s *Store) History(userID int64, limit int) ([]models.ExerciseRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, exercise_type, topic_id, prompt_en, prompt_de, correct_answer,
		        user_answer, was_correct, time_taken_seconds, difficulty_level, session_id, created_at
		 FROM exercise_history WHERE user_id = $1
		 ORDER BY created_at DESC LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	defer rows.Close()

	var records []models.ExerciseRecord
	for rows.Next() {
		var rec models.ExerciseRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.ExerciseType, &rec.TopicID,
			&rec.PromptEN, &rec.PromptDE, &rec.CorrectAnswer, &rec.UserAnswer,
			&rec.WasCorrect, &rec.TimeTakenSeconds, &rec.DifficultyLevel,
			&rec.SessionID, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ── Pre-Generated Exercise Cache ────────────────────────

// TakeCachedExercise atomically pops one cached payload for the bucket, or
// returns nil when the cache is empty.
func (s *Store) TakeCachedExercise(topicID int, exType models.ExerciseType, difficulty int) ([]byte, error) {
	var payload []byte
	err := s.db.QueryRow(
		`DELETE FROM generated_exercises
		 WHERE id = (
		     SELECT id FROM generated_exercises
		     WHERE topic_id = $1 AND exercise_type = $2 AND difficulty = $3
		     ORDER BY created_at ASC
		     FOR UPDATE SKIP LOCKED
		     LIMIT 1
		 )
		 RETURNING payload`,
		topicID, exType, difficulty,
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("take cached exercise: %w", err)
	}
	return payload, nil
}

func (s *Store) InsertCachedExercise(topicID int, exType models.ExerciseType, difficulty int, payload []byte) error {
	_, err := s.db.Exec(
		`INSERT INTO generated_exercises (topic_id, exercise_type, difficulty, payload)
		 VALUES ($1, $2, $3, $4)`,
		topicID, exType, difficulty, payload,
	)
	if err != nil {
		return fmt.Errorf("insert cached exercise: %w", err)
	}
	return nil
}

func (s *Store) CountCached(topicID int, exType models.ExerciseType, difficulty int) (int, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM generated_exercises
		 WHERE topic_id = $1 AND exercise_type = $2 AND difficulty = $3`,
		topicID, exType, difficulty,
	).Scan(&count)
	return count, err
}

// ── Generation Queue ────────────────────────────────────

// UpsertGenerationTask queues one pre-generation job unless the same bucket
// is already pending or generating.
func (s *Store) UpsertGenerationTask(topicID int, exType models.ExerciseType, difficulty, needed int) error {
	_, err := s.db.Exec(
		`INSERT INTO generation_queue (topic_id, exercise_type, difficulty, needed)
		 SELECT $1, $2, $3, $4
		 WHERE NOT EXISTS (
		     SELECT 1 FROM generation_queue
		     WHERE topic_id = $1 AND exercise_type = $2 AND difficulty = $3
		     AND status IN ('pending', 'generating')
		 )`,
		topicID, exType, difficulty, needed,
	)
	if err != nil {
		return fmt.Errorf("upsert generation task: %w", err)
	}
	return nil
}

func (s *Store) PendingGenerationTasks(limit int) ([]models.GenerationTask, error) {
	rows, err := s.db.Query(
		`SELECT id, topic_id, exercise_type, difficulty, needed, status,
		        error_message, created_at, completed_at
		 FROM generation_queue
		 WHERE status = 'pending'
		 ORDER BY created_at ASC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("pending generation tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.GenerationTask
	for rows.Next() {
		var task models.GenerationTask
		if err := rows.Scan(&task.ID, &task.TopicID, &task.ExerciseType, &task.Difficulty,
			&task.Needed, &task.Status, &task.ErrorMessage, &task.CreatedAt, &task.CompletedAt); err != nil {
			return nil, fmt.Errorf("scan generation task: %w", err)
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func (s *Store) UpdateGenerationStatus(id int64, status string, errMsg *string) error {
	if status == "completed" || status == "failed" {
		_, err := s.db.Exec(
			`UPDATE generation_queue SET status = $1, error_message = $2, completed_at = NOW() WHERE id = $3`,
			status, errMsg, id,
		)
		return err
	}
	_, err := s.db.Exec(
		`UPDATE generation_queue SET status = $1 WHERE id = $2`,
		status, id,
	)
	return err
}
