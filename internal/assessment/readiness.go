package assessment

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/b1prep/backend/internal/models"
)

// Overall readiness mixes the band scores with fixed weights: B1 is the exam
// target, the earlier bands are prerequisites.
const (
	weightA1 = 0.15
	weightA2 = 0.30
	weightB1 = 0.55

	// ReadyThreshold is the overall score treated as exam-ready.
	ReadyThreshold = 75

	// Assumed readiness points gained per day of consistent practice.
	pointsPerDay = 0.8
)

// TopicWithProgress pairs a catalog topic with the user's progress record,
// nil when the topic was never practiced.
type TopicWithProgress struct {
	Topic    models.GrammarTopic
	Progress *models.UserTopicProgress
}

// TopicScore is one ranked entry in the weakest/strongest lists.
type TopicScore struct {
	ID          int                 `json:"id"`
	NameDE      string              `json:"name_de"`
	NameEN      string              `json:"name_en"`
	Proficiency int                 `json:"proficiency"`
	Level       models.GrammarLevel `json:"level"`
}

// BandScores holds the per-band readiness averages.
type BandScores struct {
	A1 int `json:"A1"`
	A2 int `json:"A2"`
	B1 int `json:"B1"`
}

// ReadinessScore is the exam-readiness picture shown on the dashboard.
type ReadinessScore struct {
	Overall            int          `json:"overall"`
	ByLevel            BandScores   `json:"by_level"`
	WeakestTopics      []TopicScore `json:"weakest_topics"`
	StrongestTopics    []TopicScore `json:"strongest_topics"`
	DaysUntilExam      *int         `json:"days_until_exam,omitempty"`
	ProjectedReadyDate *time.Time   `json:"projected_ready_date,omitempty"`
	Recommendation     string       `json:"recommendation"`
	RecommendationDE   string       `json:"recommendation_de"`
}

// CalculateReadiness aggregates per-topic proficiency into band scores and a
// weighted overall readiness percentage, plus ranked weak/strong topics and
// a practice recommendation.
func CalculateReadiness(topics []TopicWithProgress, examDate *time.Time, now time.Time) ReadinessScore {
	byBand := map[models.GrammarLevel][]TopicWithProgress{}
	for _, t := range topics {
		byBand[t.Topic.Level] = append(byBand[t.Topic.Level], t)
	}

	a1 := bandScore(byBand[models.BandA1])
	a2 := bandScore(byBand[models.BandA2])
	b1 := bandScore(byBand[models.BandB1])

	overall := a1*weightA1 + a2*weightA2 + b1*weightB1

	type weighted struct {
		TopicScore
		weakness float64
	}
	all := make([]weighted, 0, len(topics))
	for _, t := range topics {
		p := 0
		if t.Progress != nil {
			p = t.Progress.Proficiency
		}
		all = append(all, weighted{
			TopicScore: TopicScore{
				ID:          t.Topic.ID,
				NameDE:      t.Topic.NameDE,
				NameEN:      t.Topic.NameEN,
				Proficiency: p,
				Level:       t.Topic.Level,
			},
			weakness: float64(100-p) * t.Topic.Weight * bandMultiplier(t.Topic.Level),
		})
	}

	byWeakness := make([]weighted, len(all))
	copy(byWeakness, all)
	sort.SliceStable(byWeakness, func(i, j int) bool { return byWeakness[i].weakness > byWeakness[j].weakness })

	byStrength := make([]weighted, len(all))
	copy(byStrength, all)
	sort.SliceStable(byStrength, func(i, j int) bool { return byStrength[i].Proficiency > byStrength[j].Proficiency })

	weakest := make([]TopicScore, 0, 5)
	for _, w := range byWeakness {
		if len(weakest) == 5 {
			break
		}
		weakest = append(weakest, w.TopicScore)
	}
	strongest := make([]TopicScore, 0, 3)
	for _, s := range byStrength {
		if len(strongest) == 3 {
			break
		}
		strongest = append(strongest, s.TopicScore)
	}

	var daysUntilExam *int
	if examDate != nil {
		days := int(math.Ceil(examDate.Sub(now).Hours() / 24))
		if days < 0 {
			days = 0
		}
		daysUntilExam = &days
	}

	var projected *time.Time
	if overall < ReadyThreshold {
		daysToReady := int(math.Ceil(math.Max(0, ReadyThreshold-overall) / pointsPerDay))
		d := now.AddDate(0, 0, daysToReady)
		projected = &d
	}

	scores := BandScores{
		A1: int(math.Round(a1)),
		A2: int(math.Round(a2)),
		B1: int(math.Round(b1)),
	}
	en, de := recommendation(int(math.Round(overall)), scores, weakest, daysUntilExam)

	return ReadinessScore{
		Overall:            int(math.Round(overall)),
		ByLevel:            scores,
		WeakestTopics:      weakest,
		StrongestTopics:    strongest,
		DaysUntilExam:      daysUntilExam,
		ProjectedReadyDate: projected,
		Recommendation:     en,
		RecommendationDE:   de,
	}
}

// bandScore is the weight-weighted proficiency average for one band,
// 0 when the band has no topics. Missing progress counts as 0.
func bandScore(topics []TopicWithProgress) float64 {
	if len(topics) == 0 {
		return 0
	}
	var totalWeight, weightedSum float64
	for _, t := range topics {
		p := 0.0
		if t.Progress != nil {
			p = float64(t.Progress.Proficiency)
		}
		weightedSum += p * t.Topic.Weight
		totalWeight += t.Topic.Weight
	}
	if totalWeight == 0 {
		return 0
	}
	return weightedSum / totalWeight
}

func bandMultiplier(level models.GrammarLevel) float64 {
	switch level {
	case models.BandB1:
		return 1.5
	case models.BandA2:
		return 1.2
	default:
		return 1.0
	}
}

// recommendation picks the practice advice. Condition order is part of the
// contract: earlier checks win.
func recommendation(overall int, byLevel BandScores, weakest []TopicScore, daysUntilExam *int) (en, de string) {
	if byLevel.A1 < 60 {
		return "Focus on A1 basics first. Your foundation needs strengthening before moving to harder topics.",
			"Konzentriere dich zuerst auf A1-Grundlagen. Dein Fundament muss staerker werden."
	}

	if byLevel.A2 < 50 {
		names := topicNames(weakest, models.BandA2, 2)
		return fmt.Sprintf("Strengthen your A2 grammar. Key topics to practice: %s.", names),
			fmt.Sprintf("Staerke deine A2-Grammatik. Wichtige Themen: %s.", names)
	}

	if overall >= ReadyThreshold {
		return "You're exam-ready! Keep practicing to maintain your skills. Focus on any remaining weak spots.",
			"Du bist pruefungsbereit! Uebe weiter, um deine Faehigkeiten zu halten."
	}

	if daysUntilExam != nil && *daysUntilExam < 30 && overall < 60 {
		names := topicNames(weakest, "", 3)
		return fmt.Sprintf("Exam is soon! Intensify practice on: %s. Consider daily sessions.", names),
			fmt.Sprintf("Die Pruefung ist bald! Intensive Uebung bei: %s. Taeglich ueben!", names)
	}

	if len(weakest) == 0 {
		return "Good progress! Practice daily for best results.",
			"Guter Fortschritt! Taeglich ueben fuer beste Ergebnisse."
	}
	top := weakest[0]
	return fmt.Sprintf("Good progress! Next focus: %s (%s). Practice daily for best results.", top.NameDE, top.Level),
		fmt.Sprintf("Guter Fortschritt! Naechster Fokus: %s. Taeglich ueben fuer beste Ergebnisse.", top.NameDE)
}

// topicNames joins the first n weakest topic names, optionally filtered by
// band. Falls back to the unfiltered list if the filter leaves nothing.
func topicNames(weakest []TopicScore, band models.GrammarLevel, n int) string {
	var names []string
	for _, t := range weakest {
		if band != "" && t.Level != band {
			continue
		}
		names = append(names, t.NameDE)
		if len(names) == n {
			break
		}
	}
	if len(names) == 0 {
		for _, t := range weakest {
			names = append(names, t.NameDE)
			if len(names) == n {
				break
			}
		}
	}
	return strings.Join(names, ", ")
}

// DailyGoal sizes the daily practice target from the readiness gap and the
// time remaining before the exam.
func DailyGoal(currentReadiness int, daysUntilExam *int) (minutes, exercises int, urgency string) {
	gap := ReadyThreshold - currentReadiness

	if gap <= 0 || daysUntilExam == nil || *daysUntilExam > 90 {
		return 15, 10, "low"
	}

	if *daysUntilExam > 30 {
		if gap > 30 {
			return 30, 20, "high"
		}
		return 20, 15, "medium"
	}

	return 30, 25, "high"
}
