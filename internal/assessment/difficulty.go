package assessment

import (
	"fmt"
	"math"
)

// Difficulty bounds for practice exercises.
const (
	MinDifficulty = 1
	MaxDifficulty = 5

	// Minimum recent attempts before any adjustment is made.
	minAttemptsForAdjustment = 5

	// The controller steps difficulty to hold success inside the 50-80%
	// flow zone (design target 60-75%).
	increaseAboveRate = 0.80
	decreaseBelowRate = 0.50
)

// Performance is a rolling window of recent outcomes for one topic.
// The caller supplies the slice bounds (typically the last 5-10 exercises).
type Performance struct {
	Attempts          int
	Correct           int
	CurrentDifficulty int
}

// Adjustment is the controller's verdict: the difficulty to use next and a
// learner-facing reason for telemetry/UI.
type Adjustment struct {
	NewDifficulty      int
	Reason             string
	IncreasedChallenge bool
}

// AdjustDifficulty computes the next difficulty level from recent performance.
// Stateless and deterministic given its inputs.
func AdjustDifficulty(p Performance) (Adjustment, error) {
	if p.Attempts < 0 || p.Correct < 0 || p.Correct > p.Attempts {
		return Adjustment{}, ErrInvalidInput
	}
	if p.CurrentDifficulty < MinDifficulty || p.CurrentDifficulty > MaxDifficulty {
		return Adjustment{}, ErrInvalidInput
	}

	if p.Attempts < minAttemptsForAdjustment {
		return Adjustment{
			NewDifficulty: p.CurrentDifficulty,
			Reason:        "Noch nicht genug Daten",
		}, nil
	}

	rate := float64(p.Correct) / float64(p.Attempts)
	pct := int(math.Round(rate * 100))

	if rate > increaseAboveRate {
		if p.CurrentDifficulty < MaxDifficulty {
			return Adjustment{
				NewDifficulty:      p.CurrentDifficulty + 1,
				Reason:             fmt.Sprintf("Sehr gut! Erhoehung der Schwierigkeit (%d%% richtig)", pct),
				IncreasedChallenge: true,
			}, nil
		}
		return Adjustment{
			NewDifficulty: MaxDifficulty,
			Reason:        "Maximale Schwierigkeit erreicht",
		}, nil
	}

	if rate < decreaseBelowRate {
		if p.CurrentDifficulty > MinDifficulty {
			return Adjustment{
				NewDifficulty: p.CurrentDifficulty - 1,
				Reason:        fmt.Sprintf("Etwas einfacher machen (%d%% richtig)", pct),
			}, nil
		}
		return Adjustment{
			NewDifficulty: MinDifficulty,
			Reason:        "Minimale Schwierigkeit - weiter ueben!",
		}, nil
	}

	return Adjustment{
		NewDifficulty: p.CurrentDifficulty,
		Reason:        fmt.Sprintf("Optimaler Bereich (%d%% richtig)", pct),
	}, nil
}

// Proficiency estimates topic command (0-100) from cumulative performance.
// Higher difficulty earns a bonus, staleness decays the score down to half.
func Proficiency(attempts, correct, difficulty int, daysSinceLastPractice float64) int {
	if attempts <= 0 {
		return 0
	}

	rate := float64(correct) / float64(attempts)
	difficultyBonus := float64(difficulty-1) * 0.1

	proficiency := rate * 100 * (1 + difficultyBonus)

	decay := math.Max(0.5, 1-daysSinceLastPractice*0.02)
	proficiency *= decay

	return int(math.Min(100, math.Round(proficiency)))
}
