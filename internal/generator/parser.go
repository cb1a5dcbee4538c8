package generator

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/b1prep/backend/internal/models"
)

// ValidationError collects everything wrong with a generated payload. The
// caller treats it as a generation failure and retries or skips.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Errors, "; "))
}

// ParsePlacementQuestion parses and validates one generated quiz question.
// The per-type schema is enforced strictly: a payload that parses but lacks
// the fields its type requires is rejected, never served half-formed.
func ParsePlacementQuestion(responseBody string) (*models.PlacementQuestion, error) {
	cleaned := stripCodeFences(responseBody)

	var q models.PlacementQuestion
	if err := json.Unmarshal([]byte(cleaned), &q); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	var errs []string
	if !models.ValidQuestionTypes[q.Type] {
		errs = append(errs, fmt.Sprintf("invalid question type %q", q.Type))
	}
	if q.CorrectAnswer == "" {
		errs = append(errs, "empty correct_answer")
	}

	switch q.Type {
	case models.QuestionTranslate:
		if q.PromptEN == "" {
			errs = append(errs, "translate: empty prompt_en")
		}
	case models.QuestionFillGap:
		if !strings.Contains(q.PromptDE, "___") {
			errs = append(errs, "fill_gap: prompt_de has no ___ gap")
		}
	case models.QuestionGrammarChoice:
		if !strings.Contains(q.PromptDE, "___") {
			errs = append(errs, "grammar_choice: prompt_de has no ___ gap")
		}
		if len(q.Options) < 3 || len(q.Options) > 5 {
			errs = append(errs, fmt.Sprintf("grammar_choice: expected 3-5 options, got %d", len(q.Options)))
		} else if !containsString(q.Options, q.CorrectAnswer) {
			errs = append(errs, "grammar_choice: correct_answer not among options")
		}
	case models.QuestionErrorDetection:
		if q.PromptDE == "" {
			errs = append(errs, "error_detection: empty prompt_de")
		}
		if q.PromptDE != "" && q.PromptDE == q.CorrectAnswer {
			errs = append(errs, "error_detection: prompt_de already equals the corrected sentence")
		}
	}

	if len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}
	return &q, nil
}

// ParseExercise parses and validates one generated practice exercise.
func ParseExercise(responseBody string) (*models.GeneratedExercise, error) {
	cleaned := stripCodeFences(responseBody)

	var ex models.GeneratedExercise
	if err := json.Unmarshal([]byte(cleaned), &ex); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	var errs []string
	if !models.ValidExerciseTypes[ex.Type] {
		errs = append(errs, fmt.Sprintf("invalid exercise type %q", ex.Type))
	}
	if ex.CorrectAnswer == "" {
		errs = append(errs, "empty correct_answer")
	}

	switch ex.Type {
	case models.ExerciseReverseTranslation:
		if ex.SentenceEN == "" {
			errs = append(errs, "reverse_translation: empty sentence_en")
		}
	case models.ExerciseFillGap:
		if !strings.Contains(ex.SentenceDE, "___") {
			errs = append(errs, "fill_gap: sentence_de has no ___ gap")
		}
	case models.ExerciseSentenceConstruction:
		if len(ex.Words) < 2 {
			errs = append(errs, fmt.Sprintf("sentence_construction: expected at least 2 words, got %d", len(ex.Words)))
		}
	case models.ExerciseGrammarSnap:
		if !strings.Contains(ex.SentenceDE, "___") {
			errs = append(errs, "grammar_snap: sentence_de has no ___ gap")
		}
		if ex.TimeLimitSeconds <= 0 {
			ex.TimeLimitSeconds = 10
		}
	case models.ExerciseErrorCorrection:
		if ex.SentenceWithErr == "" {
			errs = append(errs, "error_correction: empty sentence_with_error")
		}
		if ex.SentenceWithErr != "" && ex.SentenceWithErr == ex.CorrectAnswer {
			errs = append(errs, "error_correction: sentence_with_error already equals the corrected sentence")
		}
	}

	for i, v := range ex.KeyVocabulary {
		if v.DE == "" || v.EN == "" {
			errs = append(errs, fmt.Sprintf("key_vocabulary %d: missing de or en", i+1))
		}
	}

	if len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}
	return &ex, nil
}

// Evaluation is the graded verdict on a learner's free-form answer.
type Evaluation struct {
	Correct    bool   `json:"correct"`
	Acceptable bool   `json:"acceptable"`
	FeedbackDE string `json:"feedback_de"`
	FeedbackEN string `json:"feedback_en"`
}

// ParseEvaluation parses a grading response.
func ParseEvaluation(responseBody string) (*Evaluation, error) {
	cleaned := stripCodeFences(responseBody)

	var ev Evaluation
	if err := json.Unmarshal([]byte(cleaned), &ev); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}
	if ev.FeedbackDE == "" && ev.FeedbackEN == "" {
		return nil, &ValidationError{Errors: []string{"evaluation has no feedback"}}
	}
	// A correct answer is acceptable by definition.
	if ev.Correct {
		ev.Acceptable = true
	}
	return &ev, nil
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimSpace(s)
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSpace(s)
	}
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSuffix(s, "```")
		s = strings.TrimSpace(s)
	}
	return s
}

func containsString(options []string, want string) bool {
	for _, o := range options {
		if o == want {
			return true
		}
	}
	return false
}
