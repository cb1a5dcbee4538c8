package sessions

import "time"

// NextStreak computes the new streak counters after practice activity at
// `now`. A second activity on the same UTC day leaves the streak unchanged,
// the next consecutive day extends it, any gap resets it to 1.
func NextStreak(current, longest int, lastPractice *time.Time, now time.Time) (newCurrent, newLongest int) {
	today := now.UTC().Truncate(24 * time.Hour)

	if lastPractice == nil {
		newCurrent = 1
	} else {
		last := lastPractice.UTC().Truncate(24 * time.Hour)
		switch {
		case last.Equal(today):
			newCurrent = current
		case int(today.Sub(last).Hours()/24) == 1:
			newCurrent = current + 1
		default:
			newCurrent = 1
		}
	}

	newLongest = longest
	if newCurrent > newLongest {
		newLongest = newCurrent
	}
	return newCurrent, newLongest
}
