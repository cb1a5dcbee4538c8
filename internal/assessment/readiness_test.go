package assessment

import (
	"strings"
	"testing"
	"time"

	"github.com/b1prep/backend/internal/models"
)

func progressAt(proficiency int) *models.UserTopicProgress {
	return &models.UserTopicProgress{Proficiency: proficiency}
}

func readinessFixture(a1, a2, b1 int) []TopicWithProgress {
	return []TopicWithProgress{
		{Topic: models.GrammarTopic{ID: 1, NameDE: "Praesens", NameEN: "Present tense", Level: models.BandA1, Weight: 1.0}, Progress: progressAt(a1)},
		{Topic: models.GrammarTopic{ID: 2, NameDE: "Perfekt", NameEN: "Present perfect", Level: models.BandA2, Weight: 1.0}, Progress: progressAt(a2)},
		{Topic: models.GrammarTopic{ID: 3, NameDE: "Konjunktiv II", NameEN: "Subjunctive II", Level: models.BandB1, Weight: 1.0}, Progress: progressAt(b1)},
	}
}

func TestCalculateReadinessOverall(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// 0.15*80 + 0.30*60 + 0.55*30 = 46.5, rounds half-up.
	score := CalculateReadiness(readinessFixture(80, 60, 30), nil, now)
	if score.Overall != 47 {
		t.Errorf("Overall = %d, want 47", score.Overall)
	}
	if score.ByLevel.A1 != 80 || score.ByLevel.A2 != 60 || score.ByLevel.B1 != 30 {
		t.Errorf("ByLevel = %+v, want {80 60 30}", score.ByLevel)
	}
}

func TestCalculateReadinessBandScoreIsWeightWeighted(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	topics := []TopicWithProgress{
		{Topic: models.GrammarTopic{ID: 1, NameDE: "A", Level: models.BandA1, Weight: 3.0}, Progress: progressAt(100)},
		{Topic: models.GrammarTopic{ID: 2, NameDE: "B", Level: models.BandA1, Weight: 1.0}, Progress: progressAt(0)},
	}

	score := CalculateReadiness(topics, nil, now)
	if score.ByLevel.A1 != 75 {
		t.Errorf("ByLevel.A1 = %d, want 75", score.ByLevel.A1)
	}
}

func TestCalculateReadinessWeakestRanking(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// Equal proficiency everywhere: the B1 multiplier (1.5) must rank the
	// B1 topic as the weakest even though raw gaps are identical.
	topics := []TopicWithProgress{
		{Topic: models.GrammarTopic{ID: 1, NameDE: "A1-Thema", Level: models.BandA1, Weight: 1.0}, Progress: progressAt(50)},
		{Topic: models.GrammarTopic{ID: 2, NameDE: "A2-Thema", Level: models.BandA2, Weight: 1.0}, Progress: progressAt(50)},
		{Topic: models.GrammarTopic{ID: 3, NameDE: "B1-Thema", Level: models.BandB1, Weight: 1.0}, Progress: progressAt(50)},
	}

	score := CalculateReadiness(topics, nil, now)
	if len(score.WeakestTopics) != 3 {
		t.Fatalf("len(WeakestTopics) = %d, want 3", len(score.WeakestTopics))
	}
	if score.WeakestTopics[0].ID != 3 {
		t.Errorf("weakest topic ID = %d, want 3 (B1 multiplier)", score.WeakestTopics[0].ID)
	}
	if score.WeakestTopics[1].ID != 2 {
		t.Errorf("second weakest topic ID = %d, want 2 (A2 multiplier)", score.WeakestTopics[1].ID)
	}
}

func TestCalculateReadinessListSizes(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	var topics []TopicWithProgress
	for i := 1; i <= 10; i++ {
		topics = append(topics, TopicWithProgress{
			Topic:    models.GrammarTopic{ID: i, NameDE: "Thema", Level: models.BandA1, Weight: 1.0},
			Progress: progressAt(i * 10),
		})
	}

	score := CalculateReadiness(topics, nil, now)
	if len(score.WeakestTopics) != 5 {
		t.Errorf("len(WeakestTopics) = %d, want 5", len(score.WeakestTopics))
	}
	if len(score.StrongestTopics) != 3 {
		t.Errorf("len(StrongestTopics) = %d, want 3", len(score.StrongestTopics))
	}
	if score.StrongestTopics[0].Proficiency != 100 {
		t.Errorf("strongest proficiency = %d, want 100", score.StrongestTopics[0].Proficiency)
	}
}

func TestCalculateReadinessExamCountdown(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	exam := now.AddDate(0, 0, 45)

	score := CalculateReadiness(readinessFixture(80, 60, 30), &exam, now)
	if score.DaysUntilExam == nil || *score.DaysUntilExam != 45 {
		t.Fatalf("DaysUntilExam = %v, want 45", score.DaysUntilExam)
	}

	past := now.AddDate(0, 0, -10)
	score = CalculateReadiness(readinessFixture(80, 60, 30), &past, now)
	if score.DaysUntilExam == nil || *score.DaysUntilExam != 0 {
		t.Errorf("DaysUntilExam for past exam = %v, want 0", score.DaysUntilExam)
	}
}

func TestCalculateReadinessProjectedDate(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// Overall 46.5, gap 28.5, at 0.8/day = 35.6 -> 36 days out.
	score := CalculateReadiness(readinessFixture(80, 60, 30), nil, now)
	if score.ProjectedReadyDate == nil {
		t.Fatal("ProjectedReadyDate = nil, want a date below threshold")
	}
	want := now.AddDate(0, 0, 36)
	if !score.ProjectedReadyDate.Equal(want) {
		t.Errorf("ProjectedReadyDate = %v, want %v", score.ProjectedReadyDate, want)
	}

	score = CalculateReadiness(readinessFixture(95, 90, 85), nil, now)
	if score.ProjectedReadyDate != nil {
		t.Errorf("ProjectedReadyDate = %v, want nil when already ready", score.ProjectedReadyDate)
	}
}

func TestCalculateReadinessRecommendationOrder(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	soon := now.AddDate(0, 0, 14)

	tests := []struct {
		name     string
		topics   []TopicWithProgress
		examDate *time.Time
		wantEN   string
		wantDE   string
	}{
		{"weak A1 wins first", readinessFixture(40, 90, 90), nil, "A1 basics", "A1-Grundlagen"},
		{"weak A2 next", readinessFixture(90, 30, 90), nil, "A2 grammar", "A2-Grammatik"},
		{"ready", readinessFixture(95, 90, 85), nil, "exam-ready", "pruefungsbereit"},
		{"exam soon and behind", readinessFixture(70, 55, 20), &soon, "Exam is soon", "Pruefung ist bald"},
		{"default progress", readinessFixture(80, 60, 50), nil, "Good progress", "Guter Fortschritt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := CalculateReadiness(tt.topics, tt.examDate, now)
			if !strings.Contains(score.Recommendation, tt.wantEN) {
				t.Errorf("Recommendation = %q, want it to contain %q", score.Recommendation, tt.wantEN)
			}
			if !strings.Contains(score.RecommendationDE, tt.wantDE) {
				t.Errorf("RecommendationDE = %q, want it to contain %q", score.RecommendationDE, tt.wantDE)
			}
		})
	}
}

func TestDailyGoal(t *testing.T) {
	days := func(n int) *int { return &n }

	tests := []struct {
		name         string
		readiness    int
		daysToExam   *int
		wantMinutes  int
		wantExercise int
		wantUrgency  string
	}{
		{"already ready", 80, days(20), 15, 10, "low"},
		{"no exam date", 40, nil, 15, 10, "low"},
		{"exam far out", 40, days(120), 15, 10, "low"},
		{"big gap medium horizon", 40, days(60), 30, 20, "high"},
		{"small gap medium horizon", 60, days(60), 20, 15, "medium"},
		{"exam close", 60, days(20), 30, 25, "high"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			minutes, exercises, urgency := DailyGoal(tt.readiness, tt.daysToExam)
			if minutes != tt.wantMinutes || exercises != tt.wantExercise || urgency != tt.wantUrgency {
				t.Errorf("DailyGoal(%d, %v) = (%d, %d, %s), want (%d, %d, %s)",
					tt.readiness, tt.daysToExam, minutes, exercises, urgency,
					tt.wantMinutes, tt.wantExercise, tt.wantUrgency)
			}
		})
	}
}
