package placement

import (
	"context"
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

// ── Topic Catalog ───────────────────────────────────────

func (s *Store) ListTopics() ([]models.GrammarTopic, error) {
	rows, err := s.db.Query(
		`SELECT id, slug, name_de, name_en, level, description_de, description_en, order_index, weight
		 FROM grammar_topics
		 ORDER BY order_index`,
	)
	if err != nil {
		return nil, fmt.Errorf("list topics: %w", err)
	}
	defer rows.Close()

	var topics []models.GrammarTopic
	for rows.Next() {
		var t models.GrammarTopic
		if err := rows.Scan(&t.ID, &t.Slug, &t.NameDE, &t.NameEN, &t.Level,
			&t.DescriptionDE, &t.DescriptionEN, &t.OrderIndex, &t.Weight); err != nil {
			return nil, fmt.Errorf("scan topic: %w", err)
		}
		topics = append(topics, t)
	}
	return topics, rows.Err()
}

func (s *Store) GetTopic(topicID int) (*models.GrammarTopic, error) {
	var t models.GrammarTopic
	err := s.db.QueryRow(
		`SELECT id, slug, name_de, name_en, level, description_de, description_en, order_index, weight
		 FROM grammar_topics WHERE id = $1`,
		topicID,
	).Scan(&t.ID, &t.Slug, &t.NameDE, &t.NameEN, &t.Level,
		&t.DescriptionDE, &t.DescriptionEN, &t.OrderIndex, &t.Weight)
	if err != nil {
		return nil, fmt.Errorf("get topic: %w", err)
	}
	return &t, nil
}

// ── Topic Assessments ───────────────────────────────────

func (s *Store) UpsertAssessment(a models.TopicAssessment) error {
	_, err := s.db.Exec(
		`INSERT INTO topic_assessments
		 (user_id, topic_id, questions_asked, questions_correct, mastery_level, confidence_score, last_assessed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, NOW())
		 ON CONFLICT (user_id, topic_id)
		 DO UPDATE SET questions_asked = $3, questions_correct = $4,
		               mastery_level = $5, confidence_score = $6, last_assessed_at = NOW()`,
		a.UserID, a.TopicID, a.QuestionsAsked, a.QuestionsCorrect, a.MasteryLevel, a.ConfidenceScore,
	)
	return err
}

func (s *Store) GetAssessments(userID int64) ([]models.TopicAssessment, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, topic_id, questions_asked, questions_correct,
		        mastery_level, confidence_score, last_assessed_at
		 FROM topic_assessments WHERE user_id = $1 ORDER BY topic_id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("get assessments: %w", err)
	}
	defer rows.Close()

	var assessments []models.TopicAssessment
	for rows.Next() {
		var a models.TopicAssessment
		if err := rows.Scan(&a.ID, &a.UserID, &a.TopicID, &a.QuestionsAsked, &a.QuestionsCorrect,
			&a.MasteryLevel, &a.ConfidenceScore, &a.LastAssessedAt); err != nil {
			return nil, fmt.Errorf("scan assessment: %w", err)
		}
		assessments = append(assessments, a)
	}
	return assessments, rows.Err()
}

// ── Placement Results ───────────────────────────────────

func (s *Store) InsertResult(r models.PlacementResult) (int64, error) {
	var id int64
	err := s.db.QueryRow(
		`INSERT INTO placement_results
		 (user_id, overall_level, total_questions, correct_answers, time_taken_seconds, completed_at)
		 VALUES ($1, $2, $3, $4, $5, NOW())
		 RETURNING id`,
		r.UserID, r.OverallLevel, r.TotalQuestions, r.CorrectAnswers, r.TimeTakenSeconds,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert placement result: %w", err)
	}
	return id, nil
}

func (s *Store) GetLatestResult(userID int64) (*models.PlacementResult, error) {
	var r models.PlacementResult
	err := s.db.QueryRow(
		`SELECT id, user_id, overall_level, total_questions, correct_answers, time_taken_seconds, completed_at
		 FROM placement_results WHERE user_id = $1
		 ORDER BY completed_at DESC LIMIT 1`,
		userID,
	).Scan(&r.ID, &r.UserID, &r.OverallLevel, &r.TotalQuestions, &r.CorrectAnswers,
		&r.TimeTakenSeconds, &r.CompletedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get latest result: %w", err)
	}
	return &r, nil
}

// ── Learning Path ───────────────────────────────────────

// ReplaceLearningPath swaps the user's path atomically: completing a new
// placement always rebuilds the plan from scratch.
func (s *Store) ReplaceLearningPath(ctx context.Context, userID int64, items []models.LearningPathItem) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM learning_path WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("clear learning path: %w", err)
	}

	for _, item := range items {
		_, err := tx.Exec(
			`INSERT INTO learning_path
			 (user_id, topic_id, priority, status, estimated_sessions, completed_sessions, target_mastery)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			userID, item.TopicID, item.Priority, item.Status,
			item.EstimatedSessions, item.CompletedSessions, item.TargetMastery,
		)
		if err != nil {
			return fmt.Errorf("insert path item: %w", err)
		}
	}

	return tx.Commit()
}

func (s *Store) GetLearningPath(userID int64) ([]models.LearningPathItem, error) {
	rows, err := s.db.Query(
		`SELECT lp.id, lp.user_id, lp.topic_id, lp.priority, lp.status,
		        lp.estimated_sessions, lp.completed_sessions, lp.target_mastery,
		        t.id, t.slug, t.name_de, t.name_en, t.level, t.description_de, t.description_en, t.order_index, t.weight
		 FROM learning_path lp
		 JOIN grammar_topics t ON t.id = lp.topic_id
		 WHERE lp.user_id = $1
		 ORDER BY lp.priority`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("get learning path: %w", err)
	}
	defer rows.Close()

	var items []models.LearningPathItem
	for rows.Next() {
		var item models.LearningPathItem
		var t models.GrammarTopic
		if err := rows.Scan(&item.ID, &item.UserID, &item.TopicID, &item.Priority, &item.Status,
			&item.EstimatedSessions, &item.CompletedSessions, &item.TargetMastery,
			&t.ID, &t.Slug, &t.NameDE, &t.NameEN, &t.Level, &t.DescriptionDE, &t.DescriptionEN,
			&t.OrderIndex, &t.Weight); err != nil {
			return nil, fmt.Errorf("scan path item: %w", err)
		}
		item.Topic = &t
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *Store) UpdatePathItemStatus(userID int64, topicID int, status models.PathStatus) error {
	_, err := s.db.Exec(
		`UPDATE learning_path SET status = $1 WHERE user_id = $2 AND topic_id = $3`,
		status, userID, topicID,
	)
	return err
}

func (s *Store) IncrementPathSessions(userID int64, topicID int) error {
	_, err := s.db.Exec(
		`UPDATE learning_path
		 SET completed_sessions = completed_sessions + 1,
		     status = CASE WHEN status = 'pending' THEN 'in_progress' ELSE status END
		 WHERE user_id = $1 AND topic_id = $2`,
		userID, topicID,
	)
	return err
}

// ── User Profile ────────────────────────────────────────

func (s *Store) MarkPlacementComplete(userID int64, level models.Level) error {
	_, err := s.db.Exec(
		`UPDATE users SET current_level = $1, has_completed_placement = true, updated_at = NOW()
		 WHERE id = $2`,
		level, userID,
	)
	return err
}
