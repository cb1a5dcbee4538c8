package assessment

import (
	"errors"
	"strings"
	"testing"
)

func TestAdjustDifficulty(t *testing.T) {
	tests := []struct {
		name          string
		perf          Performance
		wantLevel     int
		wantIncreased bool
	}{
		{"too few attempts holds", Performance{Attempts: 4, Correct: 4, CurrentDifficulty: 2}, 2, false},
		{"high rate steps up", Performance{Attempts: 10, Correct: 9, CurrentDifficulty: 3}, 4, true},
		{"exactly 80 percent holds", Performance{Attempts: 10, Correct: 8, CurrentDifficulty: 3}, 3, false},
		{"low rate steps down", Performance{Attempts: 10, Correct: 4, CurrentDifficulty: 3}, 2, false},
		{"exactly 50 percent holds", Performance{Attempts: 10, Correct: 5, CurrentDifficulty: 3}, 3, false},
		{"capped at max", Performance{Attempts: 10, Correct: 10, CurrentDifficulty: 5}, 5, false},
		{"floored at min", Performance{Attempts: 10, Correct: 0, CurrentDifficulty: 1}, 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AdjustDifficulty(tt.perf)
			if err != nil {
				t.Fatalf("AdjustDifficulty(%+v) error: %v", tt.perf, err)
			}
			if got.NewDifficulty != tt.wantLevel {
				t.Errorf("NewDifficulty = %d, want %d", got.NewDifficulty, tt.wantLevel)
			}
			if got.IncreasedChallenge != tt.wantIncreased {
				t.Errorf("IncreasedChallenge = %v, want %v", got.IncreasedChallenge, tt.wantIncreased)
			}
			if got.Reason == "" {
				t.Error("Reason is empty")
			}
		})
	}
}

func TestAdjustDifficultyRampsToMaxAndHolds(t *testing.T) {
	difficulty := 1
	for i := 0; i < 10; i++ {
		adj, err := AdjustDifficulty(Performance{Attempts: 10, Correct: 10, CurrentDifficulty: difficulty})
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		difficulty = adj.NewDifficulty
	}
	if difficulty != MaxDifficulty {
		t.Errorf("difficulty after sustained success = %d, want %d", difficulty, MaxDifficulty)
	}

	difficulty = 5
	for i := 0; i < 10; i++ {
		adj, err := AdjustDifficulty(Performance{Attempts: 10, Correct: 0, CurrentDifficulty: difficulty})
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		difficulty = adj.NewDifficulty
	}
	if difficulty != MinDifficulty {
		t.Errorf("difficulty after sustained failure = %d, want %d", difficulty, MinDifficulty)
	}
}

func TestAdjustDifficultyReasonIncludesRate(t *testing.T) {
	adj, err := AdjustDifficulty(Performance{Attempts: 10, Correct: 9, CurrentDifficulty: 2})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(adj.Reason, "90%") {
		t.Errorf("Reason = %q, want the success percentage included", adj.Reason)
	}
}

func TestAdjustDifficultyInvalidInput(t *testing.T) {
	cases := []Performance{
		{Attempts: -1, Correct: 0, CurrentDifficulty: 3},
		{Attempts: 5, Correct: 6, CurrentDifficulty: 3},
		{Attempts: 5, Correct: 3, CurrentDifficulty: 0},
		{Attempts: 5, Correct: 3, CurrentDifficulty: 6},
	}
	for _, p := range cases {
		if _, err := AdjustDifficulty(p); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("AdjustDifficulty(%+v) error = %v, want ErrInvalidInput", p, err)
		}
	}
}

func TestProficiency(t *testing.T) {
	tests := []struct {
		name       string
		attempts   int
		correct    int
		difficulty int
		days       float64
		want       int
	}{
		{"no attempts", 0, 0, 1, 0, 0},
		{"perfect at difficulty one", 10, 10, 1, 0, 100},
		{"difficulty bonus capped at 100", 10, 10, 5, 0, 100},
		{"eighty percent difficulty three", 10, 8, 3, 0, 96},
		{"staleness decays", 10, 10, 1, 10, 80},
		{"decay floored at half", 10, 10, 1, 365, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Proficiency(tt.attempts, tt.correct, tt.difficulty, tt.days)
			if got != tt.want {
				t.Errorf("Proficiency(%d, %d, %d, %v) = %d, want %d",
					tt.attempts, tt.correct, tt.difficulty, tt.days, got, tt.want)
			}
		})
	}
}
