package models

import "time"

// VocabularyItem is one word-pair under spaced repetition.
type VocabularyItem struct {
	ID                 int64     `json:"id"`
	UserID             int64     `json:"user_id"`
	WordDE             string    `json:"word_de"`
	WordEN             string    `json:"word_en"`
	Gender             *string   `json:"gender,omitempty"` // der/die/das
	PartOfSpeech       *string   `json:"part_of_speech,omitempty"`
	ExampleSentenceDE  *string   `json:"example_sentence_de,omitempty"`
	ExampleSentenceEN  *string   `json:"example_sentence_en,omitempty"`
	EaseFactor         float64   `json:"ease_factor"`
	IntervalDays       int       `json:"interval_days"`
	NextReview         time.Time `json:"next_review"`
	ReviewCount        int       `json:"review_count"`
	ConsecutiveCorrect int       `json:"consecutive_correct"`
	CreatedAt          time.Time `json:"created_at"`
}

var ValidGenders = map[string]bool{"der": true, "die": true, "das": true}

// ── Request/Response Types ───────────────────────────────

type AddWordRequest struct {
	WordDE            string  `json:"word_de"`
	WordEN            string  `json:"word_en"`
	Gender            *string `json:"gender,omitempty"`
	PartOfSpeech      *string `json:"part_of_speech,omitempty"`
	ExampleSentenceDE *string `json:"example_sentence_de,omitempty"`
	ExampleSentenceEN *string `json:"example_sentence_en,omitempty"`
}

type ReviewWordRequest struct {
	UserAnswer string `json:"user_answer"`
}

type ReviewWordResponse struct {
	Correct bool           `json:"correct"`
	Item    VocabularyItem `json:"item"`
}

type VocabularyListResponse struct {
	Items []VocabularyItem `json:"items"`
	Due   int              `json:"due"`
	Total int              `json:"total"`
}
