package generator

import (
	"context"
	"log"
	"strings"
	"unicode"
)

// EvaluateAnswer grades a learner's answer against the expected one. The LLM
// judges variants and partial credit; if it fails or returns garbage we fall
// back to normalized exact matching so submission never errors out.
func (g *Generator) EvaluateAnswer(ctx context.Context, taskPrompt, correctAnswer, userAnswer string) (*Evaluation, *LLMResponse, error) {
	systemPrompt := EvaluationSystemPrompt()
	userPrompt := BuildEvaluationPrompt(taskPrompt, correctAnswer, userAnswer)

	resp, err := g.llm.Generate(ctx, systemPrompt, userPrompt)
	if err != nil {
		log.Printf("WARN: answer evaluation failed, falling back to exact match: %v", err)
		return fallbackEvaluation(correctAnswer, userAnswer), nil, nil
	}

	ev, err := ParseEvaluation(resp.Content)
	if err != nil {
		log.Printf("WARN: unparseable evaluation response, falling back to exact match: %v", err)
		return fallbackEvaluation(correctAnswer, userAnswer), resp, nil
	}

	return ev, resp, nil
}

func fallbackEvaluation(correctAnswer, userAnswer string) *Evaluation {
	if AnswersMatch(correctAnswer, userAnswer) {
		return &Evaluation{
			Correct:    true,
			Acceptable: true,
			FeedbackDE: "Richtig!",
			FeedbackEN: "Correct!",
		}
	}
	return &Evaluation{
		FeedbackDE: "Leider nicht richtig. Die richtige Antwort: " + correctAnswer,
		FeedbackEN: "Not quite. The expected answer: " + correctAnswer,
	}
}

// AnswersMatch compares two answers ignoring case, surrounding whitespace,
// repeated spaces, and terminal punctuation.
func AnswersMatch(correct, user string) bool {
	return normalizeAnswer(correct) == normalizeAnswer(user)
}

func normalizeAnswer(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	s = strings.TrimRightFunc(s, func(r rune) bool {
		return unicode.IsPunct(r)
	})
	return strings.Join(strings.Fields(s), " ")
}
