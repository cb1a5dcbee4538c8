package assessment

import (
	"testing"

	"github.com/b1prep/backend/internal/models"
)

func pathTestTopics() []models.GrammarTopic {
	return []models.GrammarTopic{
		{ID: 1, Slug: "praesens", Level: models.BandA1, Weight: 1.0},
		{ID: 2, Slug: "perfekt", Level: models.BandA2, Weight: 1.5},
		{ID: 3, Slug: "modalverben", Level: models.BandA2, Weight: 1.0},
		{ID: 4, Slug: "konjunktiv2", Level: models.BandB1, Weight: 2.0},
	}
}

func TestBuildLearningPathSkipsMastered(t *testing.T) {
	topics := pathTestTopics()
	assessments := []models.TopicAssessment{
		{TopicID: 1, MasteryLevel: models.MasteryMastered, ConfidenceScore: 1.0},
		{TopicID: 2, MasteryLevel: models.MasteryLearning, ConfidenceScore: 0.5},
	}

	path := BuildLearningPath(assessments, topics)

	for _, item := range path {
		if item.TopicID == 1 {
			t.Fatal("mastered topic appeared in the learning path")
		}
	}
	if len(path) != 3 {
		t.Fatalf("len(path) = %d, want 3", len(path))
	}
}

func TestBuildLearningPathOrdering(t *testing.T) {
	topics := pathTestTopics()
	path := BuildLearningPath(nil, topics)

	// Earlier bands first, and within a band the heavier exam weight first.
	wantOrder := []int{1, 2, 3, 4}
	if len(path) != len(wantOrder) {
		t.Fatalf("len(path) = %d, want %d", len(path), len(wantOrder))
	}
	for i, item := range path {
		if item.TopicID != wantOrder[i] {
			t.Errorf("path[%d].TopicID = %d, want %d", i, item.TopicID, wantOrder[i])
		}
		if item.Priority != i+1 {
			t.Errorf("path[%d].Priority = %d, want %d", i, item.Priority, i+1)
		}
	}
}

func TestBuildLearningPathEstimatedSessions(t *testing.T) {
	topics := []models.GrammarTopic{{ID: 1, Level: models.BandA1, Weight: 1.0}}

	tests := []struct {
		name         string
		assessment   *models.TopicAssessment
		wantSessions int
		wantStatus   models.PathStatus
	}{
		{"unassessed", nil, 5, models.PathPending},
		{"near mastered", &models.TopicAssessment{TopicID: 1, ConfidenceScore: 0.80}, 1, models.PathPending},
		{"solid learning", &models.TopicAssessment{TopicID: 1, ConfidenceScore: 0.60}, 2, models.PathInProgress},
		{"shaky", &models.TopicAssessment{TopicID: 1, ConfidenceScore: 0.30}, 4, models.PathInProgress},
		{"barely started", &models.TopicAssessment{TopicID: 1, ConfidenceScore: 0.10}, 5, models.PathPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var assessments []models.TopicAssessment
			if tt.assessment != nil {
				assessments = []models.TopicAssessment{*tt.assessment}
			}
			path := BuildLearningPath(assessments, topics)
			if len(path) != 1 {
				t.Fatalf("len(path) = %d, want 1", len(path))
			}
			if path[0].EstimatedSessions != tt.wantSessions {
				t.Errorf("EstimatedSessions = %d, want %d", path[0].EstimatedSessions, tt.wantSessions)
			}
			if path[0].Status != tt.wantStatus {
				t.Errorf("Status = %s, want %s", path[0].Status, tt.wantStatus)
			}
			if path[0].TargetMastery != DefaultTargetMastery {
				t.Errorf("TargetMastery = %v, want %v", path[0].TargetMastery, DefaultTargetMastery)
			}
		})
	}
}

func TestBuildKnowledgeMapBuckets(t *testing.T) {
	topics := pathTestTopics()
	assessments := []models.TopicAssessment{
		{TopicID: 1, MasteryLevel: models.MasteryMastered, ConfidenceScore: 1.0, QuestionsCorrect: 6, QuestionsAsked: 6},
		{TopicID: 2, MasteryLevel: models.MasteryPracticed, ConfidenceScore: 0.80, QuestionsCorrect: 4, QuestionsAsked: 5},
		{TopicID: 3, MasteryLevel: models.MasteryLearning, ConfidenceScore: 0.50, QuestionsCorrect: 3, QuestionsAsked: 6},
		{TopicID: 4, MasteryLevel: models.MasteryNotLearned, ConfidenceScore: 0.20, QuestionsCorrect: 1, QuestionsAsked: 5},
	}

	km := BuildKnowledgeMap(assessments, topics)

	if len(km.StrongTopics) != 2 {
		t.Errorf("len(StrongTopics) = %d, want 2", len(km.StrongTopics))
	}
	if len(km.WeakTopics) != 1 {
		t.Errorf("len(WeakTopics) = %d, want 1", len(km.WeakTopics))
	}
	if len(km.NotLearnedTopics) != 1 {
		t.Errorf("len(NotLearnedTopics) = %d, want 1", len(km.NotLearnedTopics))
	}
	for _, a := range km.Assessments {
		if a.Topic == nil {
			t.Errorf("assessment for topic %d not enriched with catalog data", a.TopicID)
		}
	}

	// (1.0*1 + 0.8*1.5 + 0.5*1 + 0.2*2) / 5.5 * 100 = 56.36 -> 56
	if km.ReadinessScore != 56 {
		t.Errorf("ReadinessScore = %d, want 56", km.ReadinessScore)
	}
}

func TestEstimateTimeToB1(t *testing.T) {
	path := []models.LearningPathItem{
		{EstimatedSessions: 5, CompletedSessions: 1, Status: models.PathInProgress},
		{EstimatedSessions: 2, CompletedSessions: 0, Status: models.PathPending},
		{EstimatedSessions: 4, CompletedSessions: 4, Status: models.PathCompleted},
	}

	days, sessions := EstimateTimeToB1(path, 15)
	if sessions != 6 {
		t.Errorf("sessions = %d, want 6", sessions)
	}
	// 15 minutes a day = 3 sessions a day.
	if days != 2 {
		t.Errorf("days = %d, want 2", days)
	}

	days, _ = EstimateTimeToB1(path, 0)
	if days != 6 {
		t.Errorf("days at zero budget = %d, want 6 (one session per day)", days)
	}
}
