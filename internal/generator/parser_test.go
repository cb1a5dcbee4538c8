package generator

import (
	"context"
	"strings"
	"testing"

	"github.com/b1prep/backend/internal/models"
)

func TestParsePlacementQuestion(t *testing.T) {
	body := "```json\n" + `{"type":"fill_gap","prompt_en":"Fill in the verb.","prompt_de":"Er ___ Kaffee. (trinken)","correct_answer":"trinkt","hint":"3rd person singular"}` + "\n```"

	q, err := ParsePlacementQuestion(body)
	if err != nil {
		t.Fatalf("ParsePlacementQuestion() error: %v", err)
	}
	if q.Type != models.QuestionFillGap {
		t.Errorf("Type = %s, want fill_gap", q.Type)
	}
	if q.CorrectAnswer != "trinkt" {
		t.Errorf("CorrectAnswer = %q, want %q", q.CorrectAnswer, "trinkt")
	}
}

func TestParsePlacementQuestionRejectsBadPayloads(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown type", `{"type":"essay","prompt_en":"Write.","correct_answer":"x"}`},
		{"fill gap without gap", `{"type":"fill_gap","prompt_de":"Er trinkt Kaffee.","correct_answer":"trinkt"}`},
		{"missing answer", `{"type":"translate","prompt_en":"I drink coffee."}`},
		{"choice answer not in options", `{"type":"grammar_choice","prompt_de":"___ Haus","correct_answer":"Das","options":["Der","Die","Den"]}`},
		{"too few options", `{"type":"grammar_choice","prompt_de":"___ Haus","correct_answer":"Das","options":["Das","Der"]}`},
		{"error detection with no error", `{"type":"error_detection","prompt_de":"Ich bin gegangen.","correct_answer":"Ich bin gegangen."}`},
		{"not json", `here is your question: fill the gap`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParsePlacementQuestion(tt.body); err == nil {
				t.Errorf("ParsePlacementQuestion(%q) succeeded, want error", tt.body)
			}
		})
	}
}

func TestParseExercise(t *testing.T) {
	body := `{"type":"sentence_construction","words":["ich","morgen","fahre"],"correct_answer":"Morgen fahre ich.","context_hint":"Time first.","explanation_de":"Verb an zweiter Position.","explanation_en":"Verb second."}`

	ex, err := ParseExercise(body)
	if err != nil {
		t.Fatalf("ParseExercise() error: %v", err)
	}
	if ex.Type != models.ExerciseSentenceConstruction {
		t.Errorf("Type = %s, want sentence_construction", ex.Type)
	}
	if len(ex.Words) != 3 {
		t.Errorf("len(Words) = %d, want 3", len(ex.Words))
	}
}

func TestParseExerciseGrammarSnapDefaultsTimeLimit(t *testing.T) {
	body := `{"type":"grammar_snap","sentence_de":"Er ___ krank. (sein)","correct_answer":"war","explanation_de":"Praeteritum.","explanation_en":"Simple past."}`

	ex, err := ParseExercise(body)
	if err != nil {
		t.Fatalf("ParseExercise() error: %v", err)
	}
	if ex.TimeLimitSeconds != 10 {
		t.Errorf("TimeLimitSeconds = %d, want default 10", ex.TimeLimitSeconds)
	}
}

func TestParseExerciseRejectsBadPayloads(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown type", `{"type":"karaoke","correct_answer":"x"}`},
		{"construction with one word", `{"type":"sentence_construction","words":["ich"],"correct_answer":"Ich."}`},
		{"error correction with no error", `{"type":"error_correction","sentence_with_error":"Er ist da.","correct_answer":"Er ist da."}`},
		{"vocab entry missing translation", `{"type":"reverse_translation","sentence_en":"Hi.","correct_answer":"Hallo.","key_vocabulary":[{"de":"Hallo"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseExercise(tt.body)
			if err == nil {
				t.Fatalf("ParseExercise(%q) succeeded, want error", tt.body)
			}
			if !strings.Contains(err.Error(), "validation failed") {
				t.Errorf("error = %v, want a validation error", err)
			}
		})
	}
}

func TestParseEvaluation(t *testing.T) {
	ev, err := ParseEvaluation(`{"correct":true,"acceptable":false,"feedback_de":"Richtig!","feedback_en":"Correct."}`)
	if err != nil {
		t.Fatalf("ParseEvaluation() error: %v", err)
	}
	if !ev.Correct {
		t.Error("Correct = false, want true")
	}
	if !ev.Acceptable {
		t.Error("Acceptable = false, want true (correct implies acceptable)")
	}

	if _, err := ParseEvaluation(`{"correct":false,"acceptable":false}`); err == nil {
		t.Error("ParseEvaluation with no feedback succeeded, want error")
	}
}

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{`{"a":1}`, `{"a":1}`},
	}
	for _, tt := range tests {
		if got := stripCodeFences(tt.in); got != tt.want {
			t.Errorf("stripCodeFences(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAnswersMatch(t *testing.T) {
	tests := []struct {
		correct string
		user    string
		want    bool
	}{
		{"Ich lerne Deutsch.", "ich lerne deutsch", true},
		{"trinkt", "  Trinkt ", true},
		{"Morgen fahre ich.", "Morgen  fahre ich", true},
		{"Ich bin gegangen.", "Ich habe gegangen.", false},
	}
	for _, tt := range tests {
		if got := AnswersMatch(tt.correct, tt.user); got != tt.want {
			t.Errorf("AnswersMatch(%q, %q) = %v, want %v", tt.correct, tt.user, got, tt.want)
		}
	}
}

func TestMockClientRoundTrips(t *testing.T) {
	mock := NewMockClient()
	topic := models.GrammarTopic{ID: 1, NameDE: "Perfekt", NameEN: "Present perfect", Level: models.BandA2, Weight: 1.5}

	for qType := range models.ValidQuestionTypes {
		resp, err := mock.Generate(context.Background(), PlacementSystemPrompt(), BuildPlacementPrompt(topic, qType, 3))
		if err != nil {
			t.Fatalf("mock generate %s: %v", qType, err)
		}
		q, err := ParsePlacementQuestion(resp.Content)
		if err != nil {
			t.Fatalf("mock %s fixture does not parse: %v", qType, err)
		}
		if q.Type != qType {
			t.Errorf("mock fixture type = %s, want %s", q.Type, qType)
		}
	}

	for exType := range models.ValidExerciseTypes {
		resp, err := mock.Generate(context.Background(), ExerciseSystemPrompt(), BuildExercisePrompt(topic, exType, 3))
		if err != nil {
			t.Fatalf("mock generate %s: %v", exType, err)
		}
		ex, err := ParseExercise(resp.Content)
		if err != nil {
			t.Fatalf("mock %s fixture does not parse: %v", exType, err)
		}
		if ex.Type != exType {
			t.Errorf("mock fixture type = %s, want %s", ex.Type, exType)
		}
	}
}
