package vocabulary

import (
	"math"
	"time"

	"github.com/b1prep/backend/internal/models"
)

// SM-2 scheduling constants. A stored interval is always at least one day;
// new words start due immediately with a one-day interval.
const (
	DefaultEaseFactor   = 2.5
	MinEaseFactor       = 1.3
	InitialIntervalDays = firstInterval

	firstInterval  = 1
	secondInterval = 6

	easeGainOnCorrect = 0.1
	easeLossOnWrong   = 0.2
)

// Review applies one SM-2 review outcome to an item and returns the updated
// copy. The next interval grows with the ease factor on success and resets
// to one day on failure; the ease factor never drops below 1.3.
func Review(item models.VocabularyItem, correct bool, now time.Time) models.VocabularyItem {
	if correct {
		// The interval ladder follows the current streak, not lifetime
		// reviews: a lapse restarts at one day and six days again.
		item.ConsecutiveCorrect++
		switch item.ConsecutiveCorrect {
		case 1:
			item.IntervalDays = firstInterval
		case 2:
			item.IntervalDays = secondInterval
		default:
			item.IntervalDays = int(math.Round(float64(item.IntervalDays) * item.EaseFactor))
		}
		item.EaseFactor += easeGainOnCorrect
	} else {
		item.IntervalDays = firstInterval
		item.EaseFactor -= easeLossOnWrong
		item.ConsecutiveCorrect = 0
	}

	if item.EaseFactor < MinEaseFactor {
		item.EaseFactor = MinEaseFactor
	}

	item.ReviewCount++
	item.NextReview = now.AddDate(0, 0, item.IntervalDays)
	return item
}
