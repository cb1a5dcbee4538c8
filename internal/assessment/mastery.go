package assessment

import (
	"errors"
	"math"

	"github.com/b1prep/backend/internal/models"
)

// ErrInvalidInput marks a contract violation (negative counts, correct > total,
// difficulty outside 1-5). Expected domain situations (zero counts, empty
// pools) never produce errors.
var ErrInvalidInput = errors.New("assessment: invalid input")

// Mastery thresholds on the raw success rate.
const (
	masteredRate  = 0.90
	practicedRate = 0.75
	learningRate  = 0.50
)

// MasteryLevelFor converts raw placement counts into a mastery category.
// total=0 means the topic was never tested.
func MasteryLevelFor(correct, total int) (models.MasteryLevel, error) {
	if err := validateCounts(correct, total); err != nil {
		return models.MasteryNotAssessed, err
	}
	if total == 0 {
		return models.MasteryNotAssessed, nil
	}

	rate := float64(correct) / float64(total)
	switch {
	case rate >= masteredRate:
		return models.MasteryMastered, nil
	case rate >= practicedRate:
		return models.MasteryPracticed, nil
	case rate >= learningRate:
		return models.MasteryLearning, nil
	default:
		return models.MasteryNotLearned, nil
	}
}

// Confidence returns the success rate in [0,1], rounded half-up to 2 decimals.
func Confidence(correct, total int) (float64, error) {
	if err := validateCounts(correct, total); err != nil {
		return 0, err
	}
	if total == 0 {
		return 0, nil
	}
	return math.Round(float64(correct)/float64(total)*100) / 100, nil
}

func validateCounts(correct, total int) error {
	if correct < 0 || total < 0 || correct > total {
		return ErrInvalidInput
	}
	return nil
}
