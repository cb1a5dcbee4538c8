package generator

import (
	"fmt"
	"strings"

	"github.com/b1prep/backend/internal/models"
)

// Task markers embedded in user prompts. The mock client keys off these to
// pick a fixture, so they must stay stable.
const (
	taskPlacementQuestion = "Generate one placement question"
	taskExercise          = "Generate one practice exercise"
	taskEvaluate          = "Evaluate the learner's answer"
)

func PlacementSystemPrompt() string {
	return `You are an expert German language examiner creating placement test questions for learners preparing for the Goethe/telc B1 exam.

Rules:
- Questions must test exactly the grammar topic requested, nothing else.
- Vocabulary must stay at or below the topic's CEFR level so vocabulary gaps never mask grammar knowledge.
- Output MUST be a single JSON object, no markdown fences, no commentary.

Output schema by question type:
- translate: {"type":"translate","prompt_en":"<English sentence>","correct_answer":"<German translation>","hint":"<short hint>"}
- fill_gap: {"type":"fill_gap","prompt_en":"<instruction>","prompt_de":"<German sentence with ___ and the base form in parentheses>","correct_answer":"<gap content>","hint":"<short hint>"}
- grammar_choice: {"type":"grammar_choice","prompt_en":"<instruction>","prompt_de":"<German sentence with ___>","correct_answer":"<correct option>","options":["<3-5 options including the correct one>"],"hint":"<short hint>"}
- error_detection: {"type":"error_detection","prompt_en":"<instruction>","prompt_de":"<German sentence containing exactly one grammar error>","correct_answer":"<fully corrected sentence>","hint":"<short hint>"}`
}

func BuildPlacementPrompt(topic models.GrammarTopic, qType models.QuestionType, difficulty int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s.\n\n", taskPlacementQuestion)
	fmt.Fprintf(&b, "Grammar topic: %s (%s), CEFR level %s.\n", topic.NameEN, topic.NameDE, topic.Level)
	if topic.DescriptionEN != nil && *topic.DescriptionEN != "" {
		fmt.Fprintf(&b, "Topic scope: %s\n", *topic.DescriptionEN)
	}
	fmt.Fprintf(&b, "Question type: %s.\n", qType)
	fmt.Fprintf(&b, "Difficulty: %d of 5 within this level.\n", difficulty)
	b.WriteString("Return exactly one JSON object matching the schema for this question type.")
	return b.String()
}

func ExerciseSystemPrompt() string {
	return `You are an expert German teacher creating practice exercises for adult learners working toward B1.

Rules:
- The exercise must drill exactly the grammar topic requested.
- Sentences should be natural, everyday German a B1 candidate would actually use.
- Provide explanations in both German (simple, A2-level German) and English.
- Output MUST be a single JSON object, no markdown fences, no commentary.

Output schema by exercise type:
- reverse_translation: {"type":"reverse_translation","sentence_en":"...","correct_answer":"<German>","hint_de":"...","hint_en":"...","explanation_de":"...","explanation_en":"...","key_vocabulary":[{"de":"...","en":"...","gender":"der|die|das (nouns only)"}]}
- fill_gap: {"type":"fill_gap","sentence_de":"<sentence with ___ and base form in parentheses>","sentence_en":"<English meaning>","correct_answer":"<gap content>","hint_de":"...","hint_en":"...","explanation_de":"...","explanation_en":"..."}
- sentence_construction: {"type":"sentence_construction","words":["<shuffled words/chunks>"],"correct_answer":"<correct sentence>","context_hint":"...","explanation_de":"...","explanation_en":"..."}
- grammar_snap: {"type":"grammar_snap","sentence_de":"<short sentence with ___>","correct_answer":"<gap content>","time_limit_seconds":10,"explanation_de":"...","explanation_en":"..."}
- error_correction: {"type":"error_correction","sentence_with_error":"<sentence with exactly one error>","correct_answer":"<corrected sentence>","explanation_de":"...","explanation_en":"..."}`
}

func BuildExercisePrompt(topic models.GrammarTopic, exType models.ExerciseType, difficulty int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s.\n\n", taskExercise)
	fmt.Fprintf(&b, "Grammar topic: %s (%s), CEFR level %s.\n", topic.NameEN, topic.NameDE, topic.Level)
	if topic.DescriptionEN != nil && *topic.DescriptionEN != "" {
		fmt.Fprintf(&b, "Topic scope: %s\n", *topic.DescriptionEN)
	}
	fmt.Fprintf(&b, "Exercise type: %s.\n", exType)
	fmt.Fprintf(&b, "Difficulty: %d of 5. At 1-2 use short main clauses and core vocabulary; at 4-5 use subordinate clauses and less frequent vocabulary.\n", difficulty)
	b.WriteString("Return exactly one JSON object matching the schema for this exercise type.")
	return b.String()
}

func EvaluationSystemPrompt() string {
	return `You are a German teacher grading a single short answer.

Judge the answer on the grammar point being tested. Accept natural variants (different word order that is still correct, synonyms, du/Sie register) but not grammar errors. "correct" means it matches the expected answer's grammar exactly; "acceptable" means it is valid German that solves the task even if it differs from the expected answer.

Output MUST be a single JSON object, no markdown fences:
{"correct":<bool>,"acceptable":<bool>,"feedback_de":"<one encouraging sentence in simple German>","feedback_en":"<one sentence in English naming what was right or wrong>"}`
}

func BuildEvaluationPrompt(taskPrompt, correctAnswer, userAnswer string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s.\n\n", taskEvaluate)
	fmt.Fprintf(&b, "Task: %s\n", taskPrompt)
	fmt.Fprintf(&b, "Expected answer: %s\n", correctAnswer)
	fmt.Fprintf(&b, "Learner's answer: %s\n", userAnswer)
	b.WriteString("Return exactly one JSON object.")
	return b.String()
}

func TutorSystemPrompt(level models.Level) string {
	return fmt.Sprintf(`You are a friendly German tutor. The learner's current level is %s and their goal is the B1 exam.

- Answer grammar questions with short explanations and two or three concrete German examples with English glosses.
- Write mostly in English, with German examples. Keep German example vocabulary at or below the learner's level.
- If the learner writes German with mistakes, gently correct the mistake relevant to their question and move on.
- Keep replies under 200 words.`, level)
}

func BuildLessonPrompt(topic models.GrammarTopic) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Give a mini-lesson on the grammar topic %s (%s), CEFR level %s.\n", topic.NameEN, topic.NameDE, topic.Level)
	if topic.DescriptionEN != nil && *topic.DescriptionEN != "" {
		fmt.Fprintf(&b, "Topic scope: %s\n", *topic.DescriptionEN)
	}
	b.WriteString("Structure: one-paragraph explanation, three example sentences with English glosses, one common mistake to avoid.")
	return b.String()
}
