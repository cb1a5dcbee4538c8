package assessment

import (
	"math"
	"sort"

	"github.com/b1prep/backend/internal/models"
)

// DefaultTargetMastery is the confidence every path item aims for.
const DefaultTargetMastery = 0.80

// BuildLearningPath turns completed topic assessments into a prioritized
// remediation plan. Mastered topics are skipped; the rest are ranked by
// band first, then exam weight. UserID on the items is left to the caller.
func BuildLearningPath(assessments []models.TopicAssessment, topics []models.GrammarTopic) []models.LearningPathItem {
	byTopic := make(map[int]*models.TopicAssessment, len(assessments))
	for i := range assessments {
		byTopic[assessments[i].TopicID] = &assessments[i]
	}

	sorted := make([]models.GrammarTopic, len(topics))
	copy(sorted, topics)
	sort.SliceStable(sorted, func(i, j int) bool {
		bi, bj := models.BandIndex(sorted[i].Level), models.BandIndex(sorted[j].Level)
		if bi != bj {
			return bi < bj
		}
		return sorted[i].Weight > sorted[j].Weight
	})

	var path []models.LearningPathItem
	priority := 1

	for _, topic := range sorted {
		assessment := byTopic[topic.ID]
		if assessment != nil && assessment.MasteryLevel == models.MasteryMastered {
			continue
		}

		status := models.PathPending
		estimated := 5 // unassessed: learn from scratch

		if assessment != nil {
			switch c := assessment.ConfidenceScore; {
			case c >= 0.75:
				estimated = 1 // just needs review
			case c >= 0.50:
				estimated = 2
				status = models.PathInProgress
			case c >= 0.25:
				estimated = 4
				status = models.PathInProgress
			default:
				estimated = 5
			}
		}

		t := topic
		path = append(path, models.LearningPathItem{
			TopicID:           topic.ID,
			Topic:             &t,
			Priority:          priority,
			Status:            status,
			EstimatedSessions: estimated,
			CompletedSessions: 0,
			TargetMastery:     DefaultTargetMastery,
		})
		priority++
	}

	return path
}

// BuildKnowledgeMap assembles the final placement picture: assessments
// bucketed by mastery plus a weight-weighted readiness percentage.
func BuildKnowledgeMap(assessments []models.TopicAssessment, topics []models.GrammarTopic) models.KnowledgeMap {
	byTopic := make(map[int]*models.GrammarTopic, len(topics))
	for i := range topics {
		byTopic[topics[i].ID] = &topics[i]
	}

	enriched := make([]models.TopicAssessment, len(assessments))
	copy(enriched, assessments)
	for i := range enriched {
		enriched[i].Topic = byTopic[enriched[i].TopicID]
	}

	var strong, weak, notLearned []models.TopicAssessment
	for _, a := range enriched {
		switch a.MasteryLevel {
		case models.MasteryMastered, models.MasteryPracticed:
			strong = append(strong, a)
		case models.MasteryLearning:
			weak = append(weak, a)
		default:
			notLearned = append(notLearned, a)
		}
	}

	assessedConfidence := make(map[int]float64, len(assessments))
	for _, a := range assessments {
		assessedConfidence[a.TopicID] = a.ConfidenceScore
	}

	var totalWeight, achievedWeight float64
	for _, topic := range topics {
		weight := topic.Weight
		if weight <= 0 {
			weight = 1
		}
		totalWeight += weight
		if c, ok := assessedConfidence[topic.ID]; ok {
			achievedWeight += weight * c
		}
	}

	readiness := 0
	if totalWeight > 0 {
		readiness = int(math.Round(achievedWeight / totalWeight * 100))
	}

	return models.KnowledgeMap{
		Assessments:      enriched,
		OverallLevel:     DetermineOverallLevel(assessments, topics),
		StrongTopics:     strong,
		WeakTopics:       weak,
		NotLearnedTopics: notLearned,
		ReadinessScore:   readiness,
	}
}

// EstimateTimeToB1 projects how long the remaining path will take at the
// given daily practice budget (roughly 5 minutes per session, at least one
// session per practice day).
func EstimateTimeToB1(path []models.LearningPathItem, dailyMinutes int) (days, sessions int) {
	for _, item := range path {
		if item.Status == models.PathCompleted {
			continue
		}
		remaining := item.EstimatedSessions - item.CompletedSessions
		if remaining > 0 {
			sessions += remaining
		}
	}

	sessionsPerDay := dailyMinutes / 5
	if sessionsPerDay < 1 {
		sessionsPerDay = 1
	}
	days = int(math.Ceil(float64(sessions) / float64(sessionsPerDay)))
	return days, sessions
}
