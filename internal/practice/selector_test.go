package practice

import (
	"math/rand"
	"testing"
	"time"

	"github.com/b1prep/backend/internal/models"
)

func topicFixture(id int, level models.GrammarLevel, weight float64) models.GrammarTopic {
	return models.GrammarTopic{ID: id, Level: level, Weight: weight}
}

func TestRankSessionTopicsExcludesTopicsAboveBand(t *testing.T) {
	topics := []models.GrammarTopic{
		topicFixture(1, models.BandA1, 1.0),
		topicFixture(2, models.BandA2, 1.0),
		topicFixture(3, models.BandB1, 1.0),
	}

	ranked := RankSessionTopics(topics, nil, models.BandA2, time.Now())
	for _, r := range ranked {
		if r.TopicID == 3 {
			t.Fatalf("B1 topic ranked for an A2 learner")
		}
	}
	if len(ranked) != 2 {
		t.Fatalf("ranked %d topics, want 2", len(ranked))
	}
}

func TestRankSessionTopicsWeakestFirst(t *testing.T) {
	topics := []models.GrammarTopic{
		topicFixture(1, models.BandA1, 1.0),
		topicFixture(2, models.BandA1, 1.0),
	}
	progress := map[int]models.UserTopicProgress{
		1: {TopicID: 1, Proficiency: 90},
		2: {TopicID: 2, Proficiency: 20},
	}

	ranked := RankSessionTopics(topics, progress, models.BandA1, time.Now())
	if ranked[0].TopicID != 2 {
		t.Errorf("first ranked topic = %d, want the weak topic 2", ranked[0].TopicID)
	}
}

func TestRankSessionTopicsStalenessLowersScore(t *testing.T) {
	now := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	fresh := now.AddDate(0, 0, -1)
	stale := now.AddDate(0, 0, -10)

	topics := []models.GrammarTopic{
		topicFixture(1, models.BandA1, 1.0),
		topicFixture(2, models.BandA1, 1.0),
	}
	progress := map[int]models.UserTopicProgress{
		1: {TopicID: 1, Proficiency: 60, LastPracticed: &fresh},
		2: {TopicID: 2, Proficiency: 60, LastPracticed: &stale},
	}

	ranked := RankSessionTopics(topics, progress, models.BandA1, now)
	if ranked[0].TopicID != 2 {
		t.Errorf("first ranked topic = %d, want the stale topic 2", ranked[0].TopicID)
	}
}

func TestRankSessionTopicsPrefersUserBandAndWeight(t *testing.T) {
	// Equal proficiency: the A2 topic in the learner's band and the heavier
	// topic both outrank a light off-band one.
	topics := []models.GrammarTopic{
		topicFixture(1, models.BandA1, 1.0),
		topicFixture(2, models.BandA2, 1.0),
		topicFixture(3, models.BandA1, 2.0),
	}

	ranked := RankSessionTopics(topics, nil, models.BandA2, time.Now())
	if ranked[len(ranked)-1].TopicID != 1 {
		t.Errorf("last ranked topic = %d, want the light off-band topic 1", ranked[len(ranked)-1].TopicID)
	}
}

func TestPickSessionTopicsCountAndUniqueness(t *testing.T) {
	var ranked []ScoredTopic
	for i := 1; i <= 10; i++ {
		ranked = append(ranked, ScoredTopic{TopicID: i, Score: float64(i)})
	}

	rng := rand.New(rand.NewSource(7))
	picked := PickSessionTopics(ranked, 5, rng)
	if len(picked) != 5 {
		t.Fatalf("picked %d topics, want 5", len(picked))
	}

	seen := make(map[int]bool)
	for _, id := range picked {
		if seen[id] {
			t.Errorf("topic %d picked twice", id)
		}
		seen[id] = true
	}
}

func TestPickSessionTopicsDeterministicWithSeed(t *testing.T) {
	var ranked []ScoredTopic
	for i := 1; i <= 10; i++ {
		ranked = append(ranked, ScoredTopic{TopicID: i, Score: float64(i)})
	}

	a := PickSessionTopics(ranked, 5, rand.New(rand.NewSource(42)))
	b := PickSessionTopics(ranked, 5, rand.New(rand.NewSource(42)))
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same seed gave different picks: %v vs %v", a, b)
		}
	}
}

func TestPickSessionTopicsFewerCandidatesThanSlots(t *testing.T) {
	ranked := []ScoredTopic{{TopicID: 1}, {TopicID: 2}}
	picked := PickSessionTopics(ranked, 5, rand.New(rand.NewSource(1)))
	if len(picked) != 2 {
		t.Errorf("picked %d topics, want all 2 available", len(picked))
	}
}
