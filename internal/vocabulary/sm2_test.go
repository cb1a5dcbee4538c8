package vocabulary

import (
	"math"
	"testing"
	"time"

	"github.com/b1prep/backend/internal/models"
)

func newItem() models.VocabularyItem {
	return models.VocabularyItem{
		WordDE:     "die Verabredung",
		WordEN:     "appointment",
		EaseFactor: DefaultEaseFactor,
	}
}

func TestReviewCorrectProgression(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	item := newItem()

	// First review: 1 day.
	item = Review(item, true, now)
	if item.IntervalDays != 1 {
		t.Errorf("interval after 1st review = %d, want 1", item.IntervalDays)
	}
	if !almostEqual(item.EaseFactor, 2.6) {
		t.Errorf("ease after 1st review = %v, want 2.6", item.EaseFactor)
	}

	// Second review: 6 days.
	item = Review(item, true, now)
	if item.IntervalDays != 6 {
		t.Errorf("interval after 2nd review = %d, want 6", item.IntervalDays)
	}
	if !almostEqual(item.EaseFactor, 2.7) {
		t.Errorf("ease after 2nd review = %v, want 2.7", item.EaseFactor)
	}

	// Third review: round(6 * 2.7) = 16 days.
	item = Review(item, true, now)
	if item.IntervalDays != 16 {
		t.Errorf("interval after 3rd review = %d, want 16", item.IntervalDays)
	}
	if item.ConsecutiveCorrect != 3 {
		t.Errorf("ConsecutiveCorrect = %d, want 3", item.ConsecutiveCorrect)
	}
	if item.ReviewCount != 3 {
		t.Errorf("ReviewCount = %d, want 3", item.ReviewCount)
	}

	wantNext := now.AddDate(0, 0, 16)
	if !item.NextReview.Equal(wantNext) {
		t.Errorf("NextReview = %v, want %v", item.NextReview, wantNext)
	}
}

func TestReviewWrongResets(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	item := newItem()
	item = Review(item, true, now)
	item = Review(item, true, now)
	item = Review(item, true, now)

	item = Review(item, false, now)
	if item.IntervalDays != 1 {
		t.Errorf("interval after failure = %d, want 1", item.IntervalDays)
	}
	if item.ConsecutiveCorrect != 0 {
		t.Errorf("ConsecutiveCorrect after failure = %d, want 0", item.ConsecutiveCorrect)
	}
	if !almostEqual(item.EaseFactor, 2.6) {
		t.Errorf("ease after failure = %v, want 2.6", item.EaseFactor)
	}
	if item.ReviewCount != 4 {
		t.Errorf("ReviewCount = %d, want 4 (failures still count)", item.ReviewCount)
	}
}

func TestReviewLadderRestartsAfterFailure(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	item := newItem()
	item = Review(item, true, now)
	item = Review(item, true, now)
	item = Review(item, false, now)

	// The streak is broken, so the ladder starts over at 1 and 6 days even
	// though the item has been reviewed before.
	item = Review(item, true, now)
	if item.IntervalDays != 1 {
		t.Errorf("interval on first correct after failure = %d, want 1", item.IntervalDays)
	}
	if item.ConsecutiveCorrect != 1 {
		t.Errorf("ConsecutiveCorrect = %d, want 1", item.ConsecutiveCorrect)
	}

	item = Review(item, true, now)
	if item.IntervalDays != 6 {
		t.Errorf("interval on second correct after failure = %d, want 6", item.IntervalDays)
	}

	// Third correct in the new streak grows with the ease factor again:
	// round(6 * 2.7) = 16.
	item = Review(item, true, now)
	if item.IntervalDays != 16 {
		t.Errorf("interval on third correct after failure = %d, want 16", item.IntervalDays)
	}
}

func TestReviewEaseFactorFloor(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	item := newItem()

	for i := 0; i < 20; i++ {
		item = Review(item, false, now)
	}
	if !almostEqual(item.EaseFactor, MinEaseFactor) {
		t.Errorf("ease after sustained failure = %v, want floor %v", item.EaseFactor, MinEaseFactor)
	}
}

func TestIntervalNeverBelowOneDay(t *testing.T) {
	if InitialIntervalDays < 1 {
		t.Errorf("InitialIntervalDays = %d, want >= 1", InitialIntervalDays)
	}

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	item := newItem()
	for i := 0; i < 10; i++ {
		item = Review(item, i%3 == 0, now)
		if item.IntervalDays < 1 {
			t.Fatalf("IntervalDays = %d after review %d, want >= 1", item.IntervalDays, i+1)
		}
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
