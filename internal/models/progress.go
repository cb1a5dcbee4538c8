package models

import "time"

// ExerciseType tags the shape of a practice exercise.
type ExerciseType string

const (
	ExerciseReverseTranslation   ExerciseType = "reverse_translation"
	ExerciseFillGap              ExerciseType = "fill_gap"
	ExerciseSentenceConstruction ExerciseType = "sentence_construction"
	ExerciseGrammarSnap          ExerciseType = "grammar_snap"
	ExerciseErrorCorrection      ExerciseType = "error_correction"
)

var ValidExerciseTypes = map[ExerciseType]bool{
	ExerciseReverseTranslation:   true,
	ExerciseFillGap:              true,
	ExerciseSentenceConstruction: true,
	ExerciseGrammarSnap:          true,
	ExerciseErrorCorrection:      true,
}

// UserTopicProgress is the ongoing-practice counterpart of TopicAssessment,
// tracked continuously and never reset.
type UserTopicProgress struct {
	ID              int64         `json:"id"`
	UserID          int64         `json:"user_id"`
	TopicID         int           `json:"topic_id"`
	Topic           *GrammarTopic `json:"topic,omitempty"`
	DifficultyLevel int           `json:"difficulty_level"` // 1-5
	Attempts        int           `json:"attempts"`
	Correct         int           `json:"correct"`
	Proficiency     int           `json:"proficiency"` // 0-100
	LastPracticed   *time.Time    `json:"last_practiced,omitempty"`
}

// GeneratedExercise is the parsed payload of one AI-generated exercise.
type GeneratedExercise struct {
	Type             ExerciseType  `json:"type"`
	TopicID          int           `json:"topic_id"`
	Topic            *GrammarTopic `json:"topic,omitempty"`
	Difficulty       int           `json:"difficulty"`
	SentenceDE       string        `json:"sentence_de"`
	SentenceEN       string        `json:"sentence_en"`
	CorrectAnswer    string        `json:"correct_answer"`
	HintDE           string        `json:"hint_de,omitempty"`
	HintEN           string        `json:"hint_en,omitempty"`
	ExplanationDE    string        `json:"explanation_de,omitempty"`
	ExplanationEN    string        `json:"explanation_en,omitempty"`
	Words            []string      `json:"words,omitempty"`         // sentence_construction
	ContextHint      string        `json:"context_hint,omitempty"`  // sentence_construction
	SentenceWithErr  string        `json:"sentence_with_error,omitempty"` // error_correction
	TimeLimitSeconds int           `json:"time_limit_seconds,omitempty"`  // grammar_snap
	KeyVocabulary    []VocabHint   `json:"key_vocabulary,omitempty"`
}

// VocabHint is a vocabulary word surfaced by a generated exercise.
type VocabHint struct {
	DE     string  `json:"de"`
	EN     string  `json:"en"`
	Gender *string `json:"gender,omitempty"`
}

// ExerciseRecord is one row of exercise history.
type ExerciseRecord struct {
	ID               int64        `json:"id"`
	UserID           int64        `json:"user_id"`
	ExerciseType     ExerciseType `json:"exercise_type"`
	TopicID          *int         `json:"topic_id,omitempty"`
	PromptEN         *string      `json:"prompt_en,omitempty"`
	PromptDE         *string      `json:"prompt_de,omitempty"`
	CorrectAnswer    string       `json:"correct_answer"`
	UserAnswer       *string      `json:"user_answer,omitempty"`
	WasCorrect       *bool        `json:"was_correct,omitempty"`
	TimeTakenSeconds *float64     `json:"time_taken_seconds,omitempty"`
	DifficultyLevel  *int         `json:"difficulty_level,omitempty"`
	SessionID        *string      `json:"session_id,omitempty"`
	CreatedAt        time.Time    `json:"created_at"`
}

// DailySession aggregates one user's practice for one calendar day.
type DailySession struct {
	ID                 int64      `json:"id"`
	UserID             int64      `json:"user_id"`
	SessionDate        string     `json:"session_date"` // YYYY-MM-DD
	MinutesPracticed   int        `json:"minutes_practiced"`
	ExercisesCompleted int        `json:"exercises_completed"`
	ExercisesCorrect   int        `json:"exercises_correct"`
	StartedAt          time.Time  `json:"started_at"`
	EndedAt            *time.Time `json:"ended_at,omitempty"`
}

// GenerationTask is one queued pre-generation job for the exercise cache.
type GenerationTask struct {
	ID           int64        `json:"id"`
	TopicID      int          `json:"topic_id"`
	ExerciseType ExerciseType `json:"exercise_type"`
	Difficulty   int          `json:"difficulty"`
	Needed       int          `json:"needed"`
	Status       string       `json:"status"`
	ErrorMessage *string      `json:"error_message,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	CompletedAt  *time.Time   `json:"completed_at,omitempty"`
}

// ── Request/Response Types ───────────────────────────────

type GenerateExerciseRequest struct {
	ExerciseType ExerciseType `json:"exercise_type"`
	TopicID      int          `json:"topic_id,omitempty"` // 0 = let the server pick
	SessionID    string       `json:"session_id,omitempty"`
}

type SubmitExerciseRequest struct {
	Exercise         GeneratedExercise `json:"exercise"`
	UserAnswer       string            `json:"user_answer"`
	TimeTakenSeconds float64           `json:"time_taken_seconds"`
	SessionID        string            `json:"session_id,omitempty"`
	MinutesPracticed int               `json:"minutes_practiced,omitempty"`
}

type SubmitExerciseResponse struct {
	Correct     bool               `json:"correct"`
	Acceptable  bool               `json:"acceptable"`
	FeedbackDE  string             `json:"feedback_de"`
	FeedbackEN  string             `json:"feedback_en"`
	Progress    *UserTopicProgress `json:"progress,omitempty"`
	Difficulty  int                `json:"difficulty"`
	AdjustReason string            `json:"adjust_reason,omitempty"`
}

type SessionTopicsResponse struct {
	TopicIDs []int `json:"topic_ids"`
}
