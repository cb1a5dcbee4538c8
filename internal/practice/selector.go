package practice

import (
	"math/rand"
	"sort"
	"time"

	"github.com/b1prep/backend/internal/models"
)

const (
	// How many topics a practice session rotates through.
	sessionTopicCount = 5

	// Share of session slots filled from the weakest topics; the rest are
	// drawn at random for variety.
	prioritySlotShare = 0.7
)

// ScoredTopic is a practice candidate with its priority score. Lower score
// means higher priority.
type ScoredTopic struct {
	TopicID int
	Score   float64
}

// RankSessionTopics scores every topic at or below the user's band for
// practice priority. The score starts from proficiency (weak topics first),
// then drops for staleness, for topics in the user's own band, and for
// exam weight.
func RankSessionTopics(topics []models.GrammarTopic, progress map[int]models.UserTopicProgress, userBand models.GrammarLevel, now time.Time) []ScoredTopic {
	maxBand := models.BandIndex(userBand)

	var ranked []ScoredTopic
	for _, topic := range topics {
		if models.BandIndex(topic.Level) > maxBand {
			continue
		}

		score := 0.0
		if p, ok := progress[topic.ID]; ok {
			score = float64(p.Proficiency)
			if p.LastPracticed != nil {
				staleDays := now.Sub(*p.LastPracticed).Hours() / 24
				if staleDays > 14 {
					staleDays = 14
				}
				score -= staleDays * 2
			}
		}
		if topic.Level == userBand {
			score -= 10
		}
		score -= topic.Weight * 5

		ranked = append(ranked, ScoredTopic{TopicID: topic.ID, Score: score})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score < ranked[j].Score
	})
	return ranked
}

// PickSessionTopics draws n topics from the ranked list: roughly 70% of the
// slots take the weakest remaining topic, the rest pick at random from what
// is left so sessions do not grind the same five topics forever.
func PickSessionTopics(ranked []ScoredTopic, n int, rng *rand.Rand) []int {
	if n <= 0 {
		n = sessionTopicCount
	}

	remaining := make([]ScoredTopic, len(ranked))
	copy(remaining, ranked)

	var picked []int
	for len(picked) < n && len(remaining) > 0 {
		idx := 0
		if rng.Float64() >= prioritySlotShare && len(remaining) > 1 {
			idx = 1 + rng.Intn(len(remaining)-1)
		}
		picked = append(picked, remaining[idx].TopicID)
		remaining = append(remaining[:idx], remaining[idx+1:]...)
	}
	return picked
}
