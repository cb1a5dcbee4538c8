package assessment

import (
	"errors"
	"testing"

	"github.com/b1prep/backend/internal/models"
)

func TestMasteryLevelFor(t *testing.T) {
	tests := []struct {
		name    string
		correct int
		total   int
		want    models.MasteryLevel
	}{
		{"never tested", 0, 0, models.MasteryNotAssessed},
		{"perfect", 6, 6, models.MasteryMastered},
		{"exactly 90 percent", 9, 10, models.MasteryMastered},
		{"just below mastered", 5, 6, models.MasteryPracticed},
		{"exactly 75 percent", 3, 4, models.MasteryPracticed},
		{"exactly 50 percent", 3, 6, models.MasteryLearning},
		{"just below learning", 2, 5, models.MasteryNotLearned},
		{"all wrong", 0, 6, models.MasteryNotLearned},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MasteryLevelFor(tt.correct, tt.total)
			if err != nil {
				t.Fatalf("MasteryLevelFor(%d, %d) error: %v", tt.correct, tt.total, err)
			}
			if got != tt.want {
				t.Errorf("MasteryLevelFor(%d, %d) = %s, want %s", tt.correct, tt.total, got, tt.want)
			}
		})
	}
}

func TestMasteryLevelForInvalidInput(t *testing.T) {
	cases := [][2]int{{-1, 5}, {3, -1}, {6, 5}}
	for _, c := range cases {
		if _, err := MasteryLevelFor(c[0], c[1]); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("MasteryLevelFor(%d, %d) error = %v, want ErrInvalidInput", c[0], c[1], err)
		}
	}
}

func TestConfidence(t *testing.T) {
	tests := []struct {
		name    string
		correct int
		total   int
		want    float64
	}{
		{"never tested", 0, 0, 0},
		{"perfect", 6, 6, 1.0},
		{"two thirds rounds up", 2, 3, 0.67},
		{"one third rounds down", 1, 3, 0.33},
		{"exact half", 3, 6, 0.50},
		{"five sixths", 5, 6, 0.83},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Confidence(tt.correct, tt.total)
			if err != nil {
				t.Fatalf("Confidence(%d, %d) error: %v", tt.correct, tt.total, err)
			}
			if got != tt.want {
				t.Errorf("Confidence(%d, %d) = %v, want %v", tt.correct, tt.total, got, tt.want)
			}
		})
	}
}

func TestConfidenceInvalidInput(t *testing.T) {
	if _, err := Confidence(7, 6); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Confidence(7, 6) error = %v, want ErrInvalidInput", err)
	}
}
