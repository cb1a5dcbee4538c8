package assessment

import "github.com/b1prep/backend/internal/models"

// Band rate thresholds for the overall-level decision table. A band only
// counts toward a discrete level if the prior band shows at least partial
// competence (prerequisite chain).
const (
	bandMasteryRate  = 0.75
	bandLearningRate = 0.50
)

// DetermineOverallLevel maps aggregate per-band success rates onto a single
// profile level. Checked in order; first match wins; A1.1 is the floor.
func DetermineOverallLevel(assessments []models.TopicAssessment, topics []models.GrammarTopic) models.Level {
	topicBands := make(map[int]models.GrammarLevel, len(topics))
	for _, t := range topics {
		topicBands[t.ID] = t.Level
	}

	tallies := map[models.GrammarLevel]*models.TopicTally{
		models.BandA1: {},
		models.BandA2: {},
		models.BandB1: {},
	}

	for _, a := range assessments {
		band, ok := topicBands[a.TopicID]
		if !ok {
			continue
		}
		if t, ok := tallies[band]; ok {
			t.Correct += a.QuestionsCorrect
			t.Total += a.QuestionsAsked
		}
	}

	a1 := bandRate(tallies[models.BandA1])
	a2 := bandRate(tallies[models.BandA2])
	b1 := bandRate(tallies[models.BandB1])

	switch {
	case b1 >= bandMasteryRate:
		return models.LevelB12
	case a2 >= bandMasteryRate && b1 >= bandLearningRate:
		return models.LevelB11
	case a2 >= bandMasteryRate:
		return models.LevelA22
	case a1 >= bandMasteryRate && a2 >= bandLearningRate:
		return models.LevelA21
	case a1 >= bandMasteryRate:
		return models.LevelA12
	default:
		return models.LevelA11
	}
}

func bandRate(t *models.TopicTally) float64 {
	if t.Total == 0 {
		return 0
	}
	return float64(t.Correct) / float64(t.Total)
}
