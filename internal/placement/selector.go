package placement

import (
	"math/rand"
	"sort"

	"github.com/b1prep/backend/internal/models"
)

// Per-topic question budget during placement. A topic gets at least 3
// questions so a single slip doesn't decide it, at most 6, and stops one
// early when the outcome is already unambiguous.
const (
	maxQuestionsPerTopic = 6
	minQuestionsPerTopic = 3

	earlyStopAfter    = 5
	earlyStopHighRate = 0.95
	earlyStopLowRate  = 0.15

	// Topics are picked at random from the highest-priority few so repeated
	// placements don't replay the identical question order.
	candidatePoolSize = 3
)

// ShouldContinueTopic reports whether a topic needs more questions given its
// running tally.
func ShouldContinueTopic(tally models.TopicTally) bool {
	if tally.Total >= maxQuestionsPerTopic {
		return false
	}
	if tally.Total < minQuestionsPerTopic {
		return true
	}

	if tally.Total >= earlyStopAfter {
		rate := float64(tally.Correct) / float64(tally.Total)
		if rate >= earlyStopHighRate || rate <= earlyStopLowRate {
			return false
		}
	}

	return true
}

// topicPriority ranks open topics: earlier bands first, then heavier exam
// weight. Lower value means higher priority.
func topicPriority(topic models.GrammarTopic) float64 {
	return float64(models.BandIndex(topic.Level))*100 + (10 - topic.Weight)
}

// SelectNextTopic picks the topic for the next placement question: the open
// topics are ranked by priority and one of the top few is chosen at random.
// Returns nil when every topic has been sufficiently probed or the session's
// question budget is spent.
func SelectNextTopic(state *models.QuizState, topics []models.GrammarTopic, rng *rand.Rand) *models.GrammarTopic {
	if state.CurrentQuestion >= state.TotalQuestions {
		return nil
	}

	var open []models.GrammarTopic
	for _, t := range topics {
		if ShouldContinueTopic(state.TopicResults[t.ID]) {
			open = append(open, t)
		}
	}
	if len(open) == 0 {
		return nil
	}

	sort.SliceStable(open, func(i, j int) bool {
		return topicPriority(open[i]) < topicPriority(open[j])
	})

	pool := candidatePoolSize
	if len(open) < pool {
		pool = len(open)
	}

	picked := open[rng.Intn(pool)]
	return &picked
}

// TargetQuestionDifficulty returns the 1-5 difficulty for a topic's next
// question: learners doing well get probed harder. An untouched topic starts
// in the middle, as if the learner were running at a 50% rate.
func TargetQuestionDifficulty(tally models.TopicTally) int {
	if tally.Total == 0 {
		return 3
	}
	rate := float64(tally.Correct) / float64(tally.Total)
	switch {
	case rate >= 0.75:
		return 4
	case rate >= 0.50:
		return 3
	default:
		return 2
	}
}

// SelectNextQuestion serves the next question from a prepared pool. The
// highest-priority open topic that still has unused pool questions is chosen,
// then the unused question whose difficulty sits closest to that topic's
// target; on a distance tie the easier question wins. Returns nil when no
// open topic has an unused question left (or the quiz is over).
func SelectNextQuestion(state *models.QuizState, pool []models.PlacementQuestion, topics []models.GrammarTopic, rng *rand.Rand) *models.PlacementQuestion {
	used := make(map[string]bool, len(state.Answers))
	for _, a := range state.Answers {
		used[a.QuestionID] = true
	}

	byTopic := make(map[int][]models.PlacementQuestion)
	for _, q := range pool {
		if !used[q.ID] {
			byTopic[q.TopicID] = append(byTopic[q.TopicID], q)
		}
	}

	var eligible []models.GrammarTopic
	for _, t := range topics {
		if len(byTopic[t.ID]) > 0 {
			eligible = append(eligible, t)
		}
	}

	topic := SelectNextTopic(state, eligible, rng)
	if topic == nil {
		return nil
	}

	target := TargetQuestionDifficulty(state.TopicResults[topic.ID])
	candidates := byTopic[topic.ID]
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Difficulty < candidates[j].Difficulty
	})

	best := candidates[0]
	for _, q := range candidates[1:] {
		if difficultyGap(q.Difficulty, target) < difficultyGap(best.Difficulty, target) {
			best = q
		}
	}
	return &best
}

func difficultyGap(difficulty, target int) int {
	if difficulty < target {
		return target - difficulty
	}
	return difficulty - target
}

// RecordAnswer folds one graded answer into the quiz state.
func RecordAnswer(state *models.QuizState, question models.PlacementQuestion, correct bool, timeTakenSeconds float64) {
	if state.TopicResults == nil {
		state.TopicResults = make(map[int]models.TopicTally)
	}

	state.Answers = append(state.Answers, models.QuizAnswer{
		QuestionID:       question.ID,
		TopicID:          question.TopicID,
		Correct:          correct,
		TimeTakenSeconds: timeTakenSeconds,
	})

	tally := state.TopicResults[question.TopicID]
	tally.Total++
	if correct {
		tally.Correct++
	}
	state.TopicResults[question.TopicID] = tally

	state.CurrentQuestion++
}
