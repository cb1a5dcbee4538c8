package vocabulary

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

const vocabCols = `id, user_id, word_de, word_en, gender, part_of_speech,
	example_sentence_de, example_sentence_en, ease_factor, interval_days,
	next_review, review_count, consecutive_correct, created_at`

func scanItem(row interface{ Scan(...interface{}) error }) (models.VocabularyItem, error) {
	var item models.VocabularyItem
	err := row.Scan(&item.ID, &item.UserID, &item.WordDE, &item.WordEN, &item.Gender,
		&item.PartOfSpeech, &item.ExampleSentenceDE, &item.ExampleSentenceEN,
		&item.EaseFactor, &item.IntervalDays, &item.NextReview,
		&item.ReviewCount, &item.ConsecutiveCorrect, &item.CreatedAt)
	return item, err
}

func (s *Store) AddWord(userID int64, req models.AddWordRequest, now time.Time) (*models.VocabularyItem, error) {
	row := s.db.QueryRow(
		`INSERT INTO vocabulary
		 (user_id, word_de, word_en, gender, part_of_speech, example_sentence_de, example_sentence_en,
		  ease_factor, interval_days, next_review)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (user_id, word_de)
		 DO UPDATE SET word_en = $3, gender = $4, part_of_speech = $5,
		               example_sentence_de = $6, example_sentence_en = $7
		 RETURNING `+vocabCols,
		userID, req.WordDE, req.WordEN, req.Gender, req.PartOfSpeech,
		req.ExampleSentenceDE, req.ExampleSentenceEN, DefaultEaseFactor, InitialIntervalDays, now,
	)

	item, err := scanItem(row)
	if err != nil {
		return nil, fmt.Errorf("add word: %w", err)
	}
	return &item, nil
}

func (s *Store) GetWord(userID, wordID int64) (*models.VocabularyItem, error) {
	row := s.db.QueryRow(
		`SELECT `+vocabCols+` FROM vocabulary WHERE id = $1 AND user_id = $2`,
		wordID, userID,
	)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get word: %w", err)
	}
	return &item, nil
}

func (s *Store) ListWords(userID int64) ([]models.VocabularyItem, error) {
	rows, err := s.db.Query(
		`SELECT `+vocabCols+` FROM vocabulary WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list words: %w", err)
	}
	defer rows.Close()

	var items []models.VocabularyItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan word: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// DueWords returns items whose review is due, most overdue first.
func (s *Store) DueWords(userID int64, now time.Time, limit int) ([]models.VocabularyItem, error) {
	rows, err := s.db.Query(
		`SELECT `+vocabCols+` FROM vocabulary
		 WHERE user_id = $1 AND next_review <= $2
		 ORDER BY next_review ASC
		 LIMIT $3`,
		userID, now, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("due words: %w", err)
	}
	defer rows.Close()

	var items []models.VocabularyItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan word: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *Store) CountDue(userID int64, now time.Time) (int, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM vocabulary WHERE user_id = $1 AND next_review <= $2`,
		userID, now,
	).Scan(&count)
	return count, err
}

func (s *Store) UpdateSchedule(item models.VocabularyItem) error {
	_, err := s.db.Exec(
		`UPDATE vocabulary
		 SET ease_factor = $1, interval_days = $2, next_review = $3,
		     review_count = $4, consecutive_correct = $5
		 WHERE id = $6 AND user_id = $7`,
		item.EaseFactor, item.IntervalDays, item.NextReview,
		item.ReviewCount, item.ConsecutiveCorrect, item.ID, item.UserID,
	)
	return err
}

func (s *Store) DeleteWord(userID, wordID int64) error {
	res, err := s.db.Exec(
		`DELETE FROM vocabulary WHERE id = $1 AND user_id = $2`,
		wordID, userID,
	)
	if err != nil {
		return fmt.Errorf("delete word: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
