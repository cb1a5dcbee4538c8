package progress

import (
	"fmt"
	"log"
	"time"

	"github.com/b1prep/backend/internal/assessment"
	"github.com/b1prep/backend/internal/models"
	"github.com/b1prep/backend/internal/placement"
	"github.com/b1prep/backend/internal/practice"
	"github.com/b1prep/backend/internal/sessions"
	"github.com/b1prep/backend/internal/vocabulary"
)

type Service struct {
	store      *Store
	placements *placement.Store
	practice   *practice.Service
	sessions   *sessions.Service
	vocabulary *vocabulary.Store
}

func NewService(store *Store, placements *placement.Store, prac *practice.Service, sess *sessions.Service, vocab *vocabulary.Store) *Service {
	return &Service{
		store:      store,
		placements: placements,
		practice:   prac,
		sessions:   sess,
		vocabulary: vocab,
	}
}

// DailyGoalInfo is today's practice target with progress against it.
type DailyGoalInfo struct {
	Minutes          int    `json:"minutes"`
	Exercises        int    `json:"exercises"`
	Urgency          string `json:"urgency"`
	MinutesDone      int    `json:"minutes_done"`
	ExercisesDone    int    `json:"exercises_done"`
	Completed        bool   `json:"completed"`
}

// StreakInfo is the user's practice streak.
type StreakInfo struct {
	Current int `json:"current"`
	Longest int `json:"longest"`
}

// DashboardResponse is the aggregate the client home screen renders.
type DashboardResponse struct {
	CurrentLevel          models.Level               `json:"current_level"`
	HasCompletedPlacement bool                       `json:"has_completed_placement"`
	ExamDate              *time.Time                 `json:"exam_date,omitempty"`
	Readiness             assessment.ReadinessScore  `json:"readiness"`
	Streak                StreakInfo                 `json:"streak"`
	DailyGoal             DailyGoalInfo              `json:"daily_goal"`
	TodaySession          *models.DailySession       `json:"today_session,omitempty"`
	VocabularyDue         int                        `json:"vocabulary_due"`
	LearningPath          []models.LearningPathItem  `json:"learning_path"`
}

// Dashboard assembles the home-screen aggregate: readiness, streak, today's
// session, the daily goal and the next path items. Non-critical pieces
// degrade to zero values rather than failing the whole response.
func (s *Service) Dashboard(userID int64) (*DashboardResponse, error) {
	profile, err := s.store.getProfile(userID)
	if err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}

	readiness, err := s.Readiness(userID)
	if err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}

	resp := &DashboardResponse{
		CurrentLevel:          profile.CurrentLevel,
		HasCompletedPlacement: profile.HasCompletedPlacement,
		ExamDate:              profile.ExamDate,
		Readiness:             *readiness,
	}

	current, longest, err := s.sessions.Streak(userID)
	if err != nil {
		log.Printf("WARN: [progress] streak for user %d: %v", userID, err)
	}
	resp.Streak = StreakInfo{Current: current, Longest: longest}

	today, err := s.sessions.TodaySession(userID)
	if err != nil {
		log.Printf("WARN: [progress] today session for user %d: %v", userID, err)
	}
	resp.TodaySession = today

	minutes, exercises, urgency := assessment.DailyGoal(readiness.Overall, readiness.DaysUntilExam)
	if profile.DailyGoalMinutes > 0 {
		minutes = profile.DailyGoalMinutes
	}
	goal := DailyGoalInfo{Minutes: minutes, Exercises: exercises, Urgency: urgency}
	if today != nil {
		goal.MinutesDone = today.MinutesPracticed
		goal.ExercisesDone = today.ExercisesCompleted
		goal.Completed = today.MinutesPracticed >= minutes || today.ExercisesCompleted >= exercises
	}
	resp.DailyGoal = goal

	due, err := s.vocabulary.CountDue(userID, time.Now().UTC())
	if err != nil {
		log.Printf("WARN: [progress] due vocabulary for user %d: %v", userID, err)
	}
	resp.VocabularyDue = due

	path, err := s.placements.GetLearningPath(userID)
	if err != nil {
		log.Printf("WARN: [progress] learning path for user %d: %v", userID, err)
	}
	if path == nil {
		path = []models.LearningPathItem{}
	}
	resp.LearningPath = path

	return resp, nil
}

// Readiness computes the current exam-readiness picture from the topic
// catalog and the user's practice progress.
func (s *Service) Readiness(userID int64) (*assessment.ReadinessScore, error) {
	topics, err := s.placements.ListTopics()
	if err != nil {
		return nil, fmt.Errorf("readiness: %w", err)
	}

	progressList, err := s.practice.ListProgress(userID)
	if err != nil {
		return nil, fmt.Errorf("readiness: %w", err)
	}
	byTopic := make(map[int]models.UserTopicProgress, len(progressList))
	for _, p := range progressList {
		byTopic[p.TopicID] = p
	}

	paired := make([]assessment.TopicWithProgress, 0, len(topics))
	now := time.Now().UTC()
	for _, topic := range topics {
		entry := assessment.TopicWithProgress{Topic: topic}
		if p, ok := byTopic[topic.ID]; ok {
			// Apply staleness decay on read so the score does not depend on
			// the nightly refresh having run.
			decayed := p
			if p.LastPracticed != nil {
				days := now.Sub(*p.LastPracticed).Hours() / 24
				decayed.Proficiency = assessment.Proficiency(p.Attempts, p.Correct, p.DifficultyLevel, days)
			}
			entry.Progress = &decayed
		}
		paired = append(paired, entry)
	}

	profile, err := s.store.getProfile(userID)
	if err != nil {
		return nil, fmt.Errorf("readiness: %w", err)
	}

	score := assessment.CalculateReadiness(paired, profile.ExamDate, now)
	return &score, nil
}

// TopicProgress lists the user's per-topic practice progress.
func (s *Service) TopicProgress(userID int64) ([]models.UserTopicProgress, error) {
	return s.practice.ListProgress(userID)
}

// TimeToB1 estimates days and sessions until the learning path is done.
func (s *Service) TimeToB1(userID int64) (days, sessionsNeeded int, err error) {
	path, err := s.placements.GetLearningPath(userID)
	if err != nil {
		return 0, 0, fmt.Errorf("time to b1: %w", err)
	}

	profile, err := s.store.getProfile(userID)
	if err != nil {
		return 0, 0, fmt.Errorf("time to b1: %w", err)
	}
	minutes := profile.DailyGoalMinutes
	if minutes <= 0 {
		minutes = 15
	}

	days, sessionsNeeded = assessment.EstimateTimeToB1(path, minutes)
	return days, sessionsNeeded, nil
}
