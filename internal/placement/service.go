package placement

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/b1prep/backend/internal/assessment"
	"github.com/b1prep/backend/internal/generator"
	"github.com/b1prep/backend/internal/models"
)

const defaultTotalQuestions = 30

type Service struct {
	store     *Store
	generator *generator.Generator

	mu  sync.Mutex
	rng *rand.Rand

	totalQuestions int
}

func NewService(store *Store, gen *generator.Generator) *Service {
	totalQuestions := defaultTotalQuestions
	if v := os.Getenv("PLACEMENT_TOTAL_QUESTIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			totalQuestions = n
		}
	}

	log.Printf("Placement service: totalQuestions=%d", totalQuestions)

	return &Service{
		store:          store,
		generator:      gen,
		rng:            rand.New(rand.NewSource(time.Now().UnixNano())),
		totalQuestions: totalQuestions,
	}
}

// StartPlacement opens a new quiz session. State is handed to the client and
// passed back on every subsequent call, so nothing is stored until completion.
func (s *Service) StartPlacement(req models.StartPlacementRequest) (*models.StartPlacementResponse, error) {
	total := req.TotalQuestions
	if total <= 0 {
		total = s.totalQuestions
	}

	topics, err := s.store.ListTopics()
	if err != nil {
		return nil, fmt.Errorf("start placement: %w", err)
	}

	return &models.StartPlacementResponse{
		State: models.QuizState{
			SessionID:      uuid.NewString(),
			TotalQuestions: total,
			TopicResults:   make(map[int]models.TopicTally),
			StartedAt:      time.Now().UTC(),
		},
		Topics: topics,
	}, nil
}

// NextQuestion serves the next placement question. A pre-generated pool, if
// supplied, is consulted first: the selector picks the unused question nearest
// the topic's target difficulty. Otherwise a question is generated live; a
// topic whose generation fails is skipped for this call so one bad generation
// never stalls the quiz. The quiz is done when no open topic remains.
func (s *Service) NextQuestion(ctx context.Context, state *models.QuizState, pool []models.PlacementQuestion) (*models.NextQuestionResponse, error) {
	topics, err := s.store.ListTopics()
	if err != nil {
		return nil, fmt.Errorf("next question: %w", err)
	}

	if len(pool) > 0 {
		s.mu.Lock()
		question := SelectNextQuestion(state, pool, topics, s.rng)
		s.mu.Unlock()
		if question != nil {
			return &models.NextQuestionResponse{Question: question}, nil
		}
		// Pool exhausted for every open topic; fall through to live
		// generation (which also decides whether the quiz is done).
	}

	skipped := make(map[int]bool)
	for {
		open := topics[:0:0]
		for _, t := range topics {
			if !skipped[t.ID] {
				open = append(open, t)
			}
		}

		s.mu.Lock()
		topic := SelectNextTopic(state, open, s.rng)
		s.mu.Unlock()
		if topic == nil {
			return &models.NextQuestionResponse{Done: true}, nil
		}

		qType := s.pickQuestionType()
		difficulty := TargetQuestionDifficulty(state.TopicResults[topic.ID])

		question, _, err := s.generator.GeneratePlacementQuestion(ctx, *topic, qType, difficulty)
		if err != nil {
			log.Printf("WARN: placement generation failed for topic %d (%s), skipping: %v", topic.ID, topic.Slug, err)
			skipped[topic.ID] = true
			continue
		}

		question.ID = uuid.NewString()
		return &models.NextQuestionResponse{Question: question}, nil
	}
}

func (s *Service) pickQuestionType() models.QuestionType {
	types := []models.QuestionType{
		models.QuestionTranslate,
		models.QuestionFillGap,
		models.QuestionGrammarChoice,
		models.QuestionErrorDetection,
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return types[s.rng.Intn(len(types))]
}

// SubmitAnswer grades one answer and folds it into the state. Gap and choice
// questions are graded by exact match; free-form answers go to the evaluator.
func (s *Service) SubmitAnswer(ctx context.Context, req models.PlacementAnswerRequest) (*models.PlacementAnswerResponse, error) {
	var ev *generator.Evaluation

	switch req.Question.Type {
	case models.QuestionFillGap, models.QuestionGrammarChoice:
		if generator.AnswersMatch(req.Question.CorrectAnswer, req.UserAnswer) {
			ev = &generator.Evaluation{Correct: true, Acceptable: true, FeedbackDE: "Richtig!", FeedbackEN: "Correct!"}
		} else {
			ev = &generator.Evaluation{
				FeedbackDE: "Leider nicht richtig. Die richtige Antwort: " + req.Question.CorrectAnswer,
				FeedbackEN: "Not quite. The expected answer: " + req.Question.CorrectAnswer,
			}
		}
	default:
		prompt := req.Question.PromptEN
		if req.Question.PromptDE != "" {
			prompt = req.Question.PromptDE
		}
		var err error
		ev, _, err = s.generator.EvaluateAnswer(ctx, prompt, req.Question.CorrectAnswer, req.UserAnswer)
		if err != nil {
			return nil, fmt.Errorf("evaluate answer: %w", err)
		}
	}

	state := req.State
	isCorrect := ev.Correct || ev.Acceptable
	RecordAnswer(&state, req.Question, isCorrect, req.TimeTakenSeconds)

	return &models.PlacementAnswerResponse{
		State:      state,
		Correct:    ev.Correct,
		Acceptable: ev.Acceptable,
		FeedbackDE: ev.FeedbackDE,
		FeedbackEN: ev.FeedbackEN,
	}, nil
}

// CompletePlacement turns the finished session into persisted assessments,
// an overall level, a knowledge map and a fresh learning path. Persistence
// failures are surfaced: a placement that didn't save didn't happen.
func (s *Service) CompletePlacement(ctx context.Context, userID int64, state *models.QuizState) (*models.CompletePlacementResponse, error) {
	topics, err := s.store.ListTopics()
	if err != nil {
		return nil, fmt.Errorf("complete placement: %w", err)
	}

	var assessments []models.TopicAssessment
	for _, topic := range topics {
		tally, ok := state.TopicResults[topic.ID]
		if !ok || tally.Total == 0 {
			continue
		}

		mastery, err := assessment.MasteryLevelFor(tally.Correct, tally.Total)
		if err != nil {
			return nil, fmt.Errorf("topic %d tally: %w", topic.ID, err)
		}
		confidence, err := assessment.Confidence(tally.Correct, tally.Total)
		if err != nil {
			return nil, fmt.Errorf("topic %d tally: %w", topic.ID, err)
		}

		assessments = append(assessments, models.TopicAssessment{
			UserID:           userID,
			TopicID:          topic.ID,
			QuestionsAsked:   tally.Total,
			QuestionsCorrect: tally.Correct,
			MasteryLevel:     mastery,
			ConfidenceScore:  confidence,
			LastAssessedAt:   time.Now().UTC(),
		})
	}

	overallLevel := assessment.DetermineOverallLevel(assessments, topics)
	knowledgeMap := assessment.BuildKnowledgeMap(assessments, topics)
	path := assessment.BuildLearningPath(assessments, topics)
	for i := range path {
		path[i].UserID = userID
	}

	for _, a := range assessments {
		if err := s.store.UpsertAssessment(a); err != nil {
			return nil, fmt.Errorf("save assessment for topic %d: %w", a.TopicID, err)
		}
	}

	timeTaken := int(time.Since(state.StartedAt).Seconds())
	placementID, err := s.store.InsertResult(models.PlacementResult{
		UserID:           userID,
		OverallLevel:     overallLevel,
		TotalQuestions:   len(state.Answers),
		CorrectAnswers:   state.CorrectCount(),
		TimeTakenSeconds: timeTaken,
	})
	if err != nil {
		return nil, fmt.Errorf("save placement result: %w", err)
	}

	if err := s.store.ReplaceLearningPath(ctx, userID, path); err != nil {
		return nil, fmt.Errorf("save learning path: %w", err)
	}

	if err := s.store.MarkPlacementComplete(userID, overallLevel); err != nil {
		return nil, fmt.Errorf("update user level: %w", err)
	}

	log.Printf("Placement complete: user=%d level=%s questions=%d correct=%d",
		userID, overallLevel, len(state.Answers), state.CorrectCount())

	return &models.CompletePlacementResponse{
		PlacementID:  placementID,
		KnowledgeMap: knowledgeMap,
		LearningPath: path,
	}, nil
}

// GetPlacementData returns the user's latest placement picture.
func (s *Service) GetPlacementData(userID int64) (*models.PlacementDataResponse, error) {
	result, err := s.store.GetLatestResult(userID)
	if err != nil {
		return nil, err
	}

	assessments, err := s.store.GetAssessments(userID)
	if err != nil {
		return nil, err
	}

	topics, err := s.store.ListTopics()
	if err != nil {
		return nil, err
	}
	byID := make(map[int]*models.GrammarTopic, len(topics))
	for i := range topics {
		byID[topics[i].ID] = &topics[i]
	}
	for i := range assessments {
		assessments[i].Topic = byID[assessments[i].TopicID]
	}

	path, err := s.store.GetLearningPath(userID)
	if err != nil {
		return nil, err
	}

	return &models.PlacementDataResponse{
		Result:       result,
		Assessments:  assessments,
		LearningPath: path,
	}, nil
}

// GetLearningPath returns the user's current remediation plan.
func (s *Service) GetLearningPath(userID int64) ([]models.LearningPathItem, error) {
	return s.store.GetLearningPath(userID)
}

// SkipPathItem marks a path topic as skipped by learner choice.
func (s *Service) SkipPathItem(userID int64, topicID int) error {
	return s.store.UpdatePathItemStatus(userID, topicID, models.PathSkipped)
}
