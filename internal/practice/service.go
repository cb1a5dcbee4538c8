package practice

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"os"
	"sync"
	"time"

	"github.com/b1prep/backend/internal/assessment"
	"github.com/b1prep/backend/internal/generator"
	"github.com/b1prep/backend/internal/models"
	"github.com/b1prep/backend/internal/placement"
	"github.com/b1prep/backend/internal/sessions"
)

const (
	// The rolling window the difficulty controller inspects.
	recentWindow = 10

	// Cache buckets below this level get a pre-generation task queued.
	cacheLowWater = 2
	cacheTarget   = 3

	defaultDifficulty = 2
)

// exerciseRotation is the order types cycle through when the client does not
// ask for one.
var exerciseRotation = []models.ExerciseType{
	models.ExerciseFillGap,
	models.ExerciseReverseTranslation,
	models.ExerciseSentenceConstruction,
	models.ExerciseErrorCorrection,
	models.ExerciseGrammarSnap,
}

type Service struct {
	store      *Store
	placements *placement.Store
	generator  *generator.Generator
	sessions   *sessions.Service

	mu  sync.Mutex
	rng *rand.Rand

	pregenEnabled bool
}

func NewService(store *Store, placements *placement.Store, gen *generator.Generator, sess *sessions.Service) *Service {
	pregen := os.Getenv("PREGEN_DISABLED") != "true"

	log.Printf("Practice service: recentWindow=%d pregen=%v", recentWindow, pregen)

	return &Service{
		store:         store,
		placements:    placements,
		generator:     gen,
		sessions:      sess,
		rng:           rand.New(rand.NewSource(time.Now().UnixNano())),
		pregenEnabled: pregen,
	}
}

// GenerateExercise produces one practice exercise: cache first, live
// generation on a miss. With no topic requested, the weakest session topic
// is picked.
func (s *Service) GenerateExercise(ctx context.Context, userID int64, req models.GenerateExerciseRequest) (*models.GeneratedExercise, error) {
	topicID := req.TopicID
	if topicID == 0 {
		ids, err := s.SelectSessionTopics(userID, 1)
		if err != nil {
			return nil, fmt.Errorf("pick session topic: %w", err)
		}
		if len(ids) == 0 {
			return nil, fmt.Errorf("no topics available to practice")
		}
		topicID = ids[0]
	}

	topic, err := s.placements.GetTopic(topicID)
	if err != nil {
		return nil, fmt.Errorf("generate exercise: %w", err)
	}
	if topic == nil {
		return nil, fmt.Errorf("unknown topic %d", topicID)
	}

	progress, err := s.store.GetProgress(userID, topicID)
	if err != nil {
		return nil, fmt.Errorf("generate exercise: %w", err)
	}

	difficulty := defaultDifficulty
	attempts := 0
	if progress != nil {
		difficulty = progress.DifficultyLevel
		attempts = progress.Attempts
	}

	exType := req.ExerciseType
	if exType == "" {
		exType = exerciseRotation[attempts%len(exerciseRotation)]
	}
	if !models.ValidExerciseTypes[exType] {
		return nil, fmt.Errorf("unknown exercise type %q", exType)
	}

	exercise := s.takeCached(topicID, exType, difficulty)
	if exercise == nil {
		exercise, _, err = s.generator.GenerateExercise(ctx, *topic, exType, difficulty)
		if err != nil {
			return nil, fmt.Errorf("generate exercise: %w", err)
		}
	}

	exercise.Topic = topic
	s.checkAndQueueGeneration(topicID, exType, difficulty)

	return exercise, nil
}

func (s *Service) takeCached(topicID int, exType models.ExerciseType, difficulty int) *models.GeneratedExercise {
	if !s.pregenEnabled {
		return nil
	}
	payload, err := s.store.TakeCachedExercise(topicID, exType, difficulty)
	if err != nil {
		log.Printf("WARN: [practice] cache read: %v", err)
		return nil
	}
	if payload == nil {
		return nil
	}

	var exercise models.GeneratedExercise
	if err := json.Unmarshal(payload, &exercise); err != nil {
		log.Printf("WARN: [practice] corrupt cached exercise topic=%d type=%s: %v", topicID, exType, err)
		return nil
	}
	return &exercise
}

// SubmitExercise grades one answer, records it, and updates the topic's
// progress row: attempts, correct, difficulty (controller over the recent
// window) and proficiency. Streak and daily-session bookkeeping happen as a
// side effect and never fail the submission.
func (s *Service) SubmitExercise(ctx context.Context, userID int64, req models.SubmitExerciseRequest) (*models.SubmitExerciseResponse, error) {
	exercise := req.Exercise
	if !models.ValidExerciseTypes[exercise.Type] {
		return nil, fmt.Errorf("unknown exercise type %q", exercise.Type)
	}
	if exercise.TopicID == 0 {
		return nil, fmt.Errorf("exercise topic_id is required")
	}

	ev := s.evaluate(ctx, exercise, req.UserAnswer)
	counted := ev.Correct || ev.Acceptable
	now := time.Now().UTC()

	rec := models.ExerciseRecord{
		UserID:        userID,
		ExerciseType:  exercise.Type,
		TopicID:       &exercise.TopicID,
		CorrectAnswer: exercise.CorrectAnswer,
		UserAnswer:    &req.UserAnswer,
		WasCorrect:    &counted,
	}
	if exercise.SentenceEN != "" {
		rec.PromptEN = &exercise.SentenceEN
	}
	if exercise.SentenceDE != "" {
		rec.PromptDE = &exercise.SentenceDE
	}
	if req.TimeTakenSeconds > 0 {
		rec.TimeTakenSeconds = &req.TimeTakenSeconds
	}
	if exercise.Difficulty > 0 {
		rec.DifficultyLevel = &exercise.Difficulty
	}
	if req.SessionID != "" {
		rec.SessionID = &req.SessionID
	}
	if err := s.store.RecordExercise(rec); err != nil {
		return nil, fmt.Errorf("submit exercise: %w", err)
	}

	progress, err := s.store.GetProgress(userID, exercise.TopicID)
	if err != nil {
		return nil, fmt.Errorf("submit exercise: %w", err)
	}
	if progress == nil {
		progress = &models.UserTopicProgress{
			UserID:          userID,
			TopicID:         exercise.TopicID,
			DifficultyLevel: defaultDifficulty,
		}
	}

	progress.Attempts++
	if counted {
		progress.Correct++
	}
	progress.LastPracticed = &now

	adjustReason := ""
	recentAttempts, recentCorrect, err := s.store.RecentOutcomes(userID, exercise.TopicID, recentWindow)
	if err != nil {
		log.Printf("WARN: [practice] recent outcomes for user %d topic %d: %v", userID, exercise.TopicID, err)
	} else {
		adj, err := assessment.AdjustDifficulty(assessment.Performance{
			Attempts:          recentAttempts,
			Correct:           recentCorrect,
			CurrentDifficulty: progress.DifficultyLevel,
		})
		if err != nil {
			log.Printf("WARN: [practice] difficulty adjustment for user %d topic %d: %v", userID, exercise.TopicID, err)
		} else if adj.NewDifficulty != progress.DifficultyLevel {
			progress.DifficultyLevel = adj.NewDifficulty
			adjustReason = adj.Reason
		}
	}

	progress.Proficiency = assessment.Proficiency(progress.Attempts, progress.Correct, progress.DifficultyLevel, 0)

	if err := s.store.UpsertProgress(*progress); err != nil {
		return nil, fmt.Errorf("submit exercise: %w", err)
	}

	if err := s.placements.IncrementPathSessions(userID, exercise.TopicID); err != nil {
		log.Printf("WARN: [practice] path sessions for user %d topic %d: %v", userID, exercise.TopicID, err)
	}
	s.sessions.RecordActivity(userID, req.MinutesPracticed, 1, boolToInt(counted))

	return &models.SubmitExerciseResponse{
		Correct:      ev.Correct,
		Acceptable:   ev.Acceptable,
		FeedbackDE:   ev.FeedbackDE,
		FeedbackEN:   ev.FeedbackEN,
		Progress:     progress,
		Difficulty:   progress.DifficultyLevel,
		AdjustReason: adjustReason,
	}, nil
}

// evaluate grades one answer. Gap and snap exercises have a single right
// token and are matched locally; free-form types go to the evaluator, which
// itself falls back to exact match on provider failure.
func (s *Service) evaluate(ctx context.Context, exercise models.GeneratedExercise, userAnswer string) *generator.Evaluation {
	switch exercise.Type {
	case models.ExerciseFillGap, models.ExerciseGrammarSnap:
		if generator.AnswersMatch(exercise.CorrectAnswer, userAnswer) {
			return &generator.Evaluation{Correct: true, Acceptable: true, FeedbackDE: "Richtig!", FeedbackEN: "Correct!"}
		}
		ev := &generator.Evaluation{
			FeedbackDE: "Leider nicht richtig. Die richtige Antwort: " + exercise.CorrectAnswer,
			FeedbackEN: "Not quite. The expected answer: " + exercise.CorrectAnswer,
		}
		if exercise.ExplanationDE != "" {
			ev.FeedbackDE += "\n" + exercise.ExplanationDE
		}
		if exercise.ExplanationEN != "" {
			ev.FeedbackEN += "\n" + exercise.ExplanationEN
		}
		return ev
	}

	prompt := exercise.SentenceDE
	switch exercise.Type {
	case models.ExerciseReverseTranslation:
		prompt = exercise.SentenceEN
	case models.ExerciseErrorCorrection:
		prompt = exercise.SentenceWithErr
	}

	ev, _, err := s.generator.EvaluateAnswer(ctx, prompt, exercise.CorrectAnswer, userAnswer)
	if err != nil {
		// EvaluateAnswer already falls back internally; this is belt and
		// braces for contract violations.
		log.Printf("WARN: [practice] evaluation failed: %v", err)
		if generator.AnswersMatch(exercise.CorrectAnswer, userAnswer) {
			return &generator.Evaluation{Correct: true, Acceptable: true, FeedbackDE: "Richtig!", FeedbackEN: "Correct!"}
		}
		return &generator.Evaluation{
			FeedbackDE: "Leider nicht richtig. Die richtige Antwort: " + exercise.CorrectAnswer,
			FeedbackEN: "Not quite. The expected answer: " + exercise.CorrectAnswer,
		}
	}
	return ev
}

// SelectSessionTopics picks today's practice topics for the user: mostly the
// weakest topics at or below their level, with some variety mixed in.
func (s *Service) SelectSessionTopics(userID int64, n int) ([]int, error) {
	topics, err := s.placements.ListTopics()
	if err != nil {
		return nil, fmt.Errorf("session topics: %w", err)
	}

	progressList, err := s.store.ListProgress(userID)
	if err != nil {
		return nil, fmt.Errorf("session topics: %w", err)
	}
	progress := make(map[int]models.UserTopicProgress, len(progressList))
	for _, p := range progressList {
		progress[p.TopicID] = p
	}

	level, err := s.userLevel(userID)
	if err != nil {
		return nil, fmt.Errorf("session topics: %w", err)
	}

	ranked := RankSessionTopics(topics, progress, level.Band(), time.Now().UTC())

	s.mu.Lock()
	defer s.mu.Unlock()
	return PickSessionTopics(ranked, n, s.rng), nil
}

func (s *Service) userLevel(userID int64) (models.Level, error) {
	level, err := s.store.GetUserLevel(userID)
	if err != nil {
		return "", err
	}
	if !models.ValidLevels[level] {
		return models.LevelA11, nil
	}
	return level, nil
}

func (s *Service) History(userID int64, limit int) ([]models.ExerciseRecord, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	records, err := s.store.History(userID, limit)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []models.ExerciseRecord{}
	}
	return records, nil
}

func (s *Service) ListProgress(userID int64) ([]models.UserTopicProgress, error) {
	items, err := s.store.ListProgress(userID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.UserTopicProgress{}
	}
	return items, nil
}

// ── Pre-Generation ──────────────────────────────────────

func (s *Service) checkAndQueueGeneration(topicID int, exType models.ExerciseType, difficulty int) {
	if !s.pregenEnabled {
		return
	}
	count, err := s.store.CountCached(topicID, exType, difficulty)
	if err != nil {
		log.Printf("WARN: [gen-queue] count error: %v", err)
		return
	}
	if count >= cacheLowWater {
		return
	}
	if err := s.store.UpsertGenerationTask(topicID, exType, difficulty, cacheTarget-count); err != nil {
		log.Printf("WARN: [gen-queue] queue error: %v", err)
	}
}

// StartGenerationWorker runs the pre-generation loop until the context is
// cancelled.
func (s *Service) StartGenerationWorker(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	log.Println("[gen-worker] Background generation worker started")

	for {
		select {
		case <-ctx.Done():
			log.Println("[gen-worker] Shutting down")
			return
		case <-ticker.C:
			s.processGenerationQueue(ctx)
		}
	}
}

func (s *Service) processGenerationQueue(ctx context.Context) {
	tasks, err := s.store.PendingGenerationTasks(5)
	if err != nil {
		log.Printf("WARN: [gen-queue] error fetching queue: %v", err)
		return
	}

	for _, task := range tasks {
		s.store.UpdateGenerationStatus(task.ID, "generating", nil)

		if err := s.fillCacheBucket(ctx, task); err != nil {
			errMsg := err.Error()
			s.store.UpdateGenerationStatus(task.ID, "failed", &errMsg)
			log.Printf("[gen-queue] failed: topic=%d type=%s difficulty=%d err=%v",
				task.TopicID, task.ExerciseType, task.Difficulty, err)
		} else {
			s.store.UpdateGenerationStatus(task.ID, "completed", nil)
			log.Printf("[gen-queue] completed: topic=%d type=%s difficulty=%d",
				task.TopicID, task.ExerciseType, task.Difficulty)
		}
	}
}

func (s *Service) fillCacheBucket(ctx context.Context, task models.GenerationTask) error {
	topic, err := s.placements.GetTopic(task.TopicID)
	if err != nil {
		return fmt.Errorf("load topic: %w", err)
	}
	if topic == nil {
		return fmt.Errorf("unknown topic %d", task.TopicID)
	}

	needed := task.Needed
	if needed < 1 {
		needed = 1
	}

	for i := 0; i < needed; i++ {
		exercise, _, err := s.generator.GenerateExercise(ctx, *topic, task.ExerciseType, task.Difficulty)
		if err != nil {
			return fmt.Errorf("generate: %w", err)
		}
		payload, err := json.Marshal(exercise)
		if err != nil {
			return fmt.Errorf("marshal: %w", err)
		}
		if err := s.store.InsertCachedExercise(task.TopicID, task.ExerciseType, task.Difficulty, payload); err != nil {
			return err
		}
	}
	return nil
}

// RefreshProficiencies reapplies staleness decay to every stored proficiency
// score. Scheduled nightly so dashboards stay honest without practice.
func (s *Service) RefreshProficiencies() {
	items, err := s.store.AllProgress()
	if err != nil {
		log.Printf("WARN: [srs] proficiency refresh: %v", err)
		return
	}

	now := time.Now().UTC()
	updated := 0
	for _, p := range items {
		days := 0.0
		if p.LastPracticed != nil {
			days = now.Sub(*p.LastPracticed).Hours() / 24
		}
		fresh := assessment.Proficiency(p.Attempts, p.Correct, p.DifficultyLevel, days)
		if fresh == p.Proficiency {
			continue
		}
		if err := s.store.SetProficiency(p.ID, fresh); err != nil {
			log.Printf("WARN: [srs] proficiency write for row %d: %v", p.ID, err)
			continue
		}
		updated++
	}
	log.Printf("[srs] proficiency refresh: %d rows updated", updated)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
