package models

import "time"

// MasteryLevel summarizes demonstrated competence in one topic.
type MasteryLevel string

const (
	MasteryNotAssessed MasteryLevel = "not_assessed"
	MasteryNotLearned  MasteryLevel = "not_learned"
	MasteryLearning    MasteryLevel = "learning"
	MasteryPracticed   MasteryLevel = "practiced"
	MasteryMastered    MasteryLevel = "mastered"
)

// QuestionType tags the shape of a placement question payload.
type QuestionType string

const (
	QuestionTranslate      QuestionType = "translate"
	QuestionFillGap        QuestionType = "fill_gap"
	QuestionGrammarChoice  QuestionType = "grammar_choice"
	QuestionErrorDetection QuestionType = "error_detection"
)

var ValidQuestionTypes = map[QuestionType]bool{
	QuestionTranslate:      true,
	QuestionFillGap:        true,
	QuestionGrammarChoice:  true,
	QuestionErrorDetection: true,
}

// PlacementQuestion is a generated quiz question served during placement.
type PlacementQuestion struct {
	ID            string       `json:"id"`
	TopicID       int          `json:"topic_id"`
	Level         GrammarLevel `json:"level"`
	Type          QuestionType `json:"type"`
	PromptEN      string       `json:"prompt_en"`
	PromptDE      string       `json:"prompt_de,omitempty"`
	CorrectAnswer string       `json:"correct_answer"`
	Options       []string     `json:"options,omitempty"`
	Hint          string       `json:"hint,omitempty"`
	Difficulty    int          `json:"difficulty"` // 1-5 within the level
}

// TopicTally is the running (correct, total) count for one topic in a quiz.
type TopicTally struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
}

// QuizAnswer records one answered question within a quiz session.
type QuizAnswer struct {
	QuestionID       string  `json:"question_id"`
	TopicID          int     `json:"topic_id"`
	Correct          bool    `json:"correct"`
	TimeTakenSeconds float64 `json:"time_taken_seconds"`
}

// QuizState is the full state of one in-flight placement session. It is an
// explicit, serializable value: the selector takes it in and hands it back
// updated, so the same logic can run client- or server-side.
type QuizState struct {
	SessionID       string             `json:"session_id"`
	CurrentQuestion int                `json:"current_question"`
	TotalQuestions  int                `json:"total_questions"`
	Answers         []QuizAnswer       `json:"answers"`
	TopicResults    map[int]TopicTally `json:"topic_results"`
	StartedAt       time.Time          `json:"started_at"`
}

// CorrectCount returns how many answers in the session were correct.
func (s *QuizState) CorrectCount() int {
	n := 0
	for _, a := range s.Answers {
		if a.Correct {
			n++
		}
	}
	return n
}

// TopicAssessment is one user's placement result for one topic.
type TopicAssessment struct {
	ID               int64         `json:"id,omitempty"`
	UserID           int64         `json:"user_id"`
	TopicID          int           `json:"topic_id"`
	Topic            *GrammarTopic `json:"topic,omitempty"`
	QuestionsAsked   int           `json:"questions_asked"`
	QuestionsCorrect int           `json:"questions_correct"`
	MasteryLevel     MasteryLevel  `json:"mastery_level"`
	ConfidenceScore  float64       `json:"confidence_score"`
	LastAssessedAt   time.Time     `json:"last_assessed_at"`
}

// PlacementResult is the summary row for one completed placement attempt.
type PlacementResult struct {
	ID               int64     `json:"id"`
	UserID           int64     `json:"user_id"`
	OverallLevel     Level     `json:"overall_level"`
	TotalQuestions   int       `json:"total_questions"`
	CorrectAnswers   int       `json:"correct_answers"`
	TimeTakenSeconds int       `json:"time_taken_seconds"`
	CompletedAt      time.Time `json:"completed_at"`
}

// PathStatus is the lifecycle state of one learning-path item.
type PathStatus string

const (
	PathPending    PathStatus = "pending"
	PathInProgress PathStatus = "in_progress"
	PathCompleted  PathStatus = "completed"
	PathSkipped    PathStatus = "skipped"
)

// LearningPathItem is one topic's position in a user's remediation plan.
type LearningPathItem struct {
	ID                int64         `json:"id,omitempty"`
	UserID            int64         `json:"user_id"`
	TopicID           int           `json:"topic_id"`
	Topic             *GrammarTopic `json:"topic,omitempty"`
	Priority          int           `json:"priority"`
	Status            PathStatus    `json:"status"`
	EstimatedSessions int           `json:"estimated_sessions"`
	CompletedSessions int           `json:"completed_sessions"`
	TargetMastery     float64       `json:"target_mastery"`
}

// KnowledgeMap is the final picture a completed placement produces.
type KnowledgeMap struct {
	Assessments      []TopicAssessment `json:"assessments"`
	OverallLevel     Level             `json:"overall_level"`
	StrongTopics     []TopicAssessment `json:"strong_topics"`
	WeakTopics       []TopicAssessment `json:"weak_topics"`
	NotLearnedTopics []TopicAssessment `json:"not_learned_topics"`
	ReadinessScore   int               `json:"readiness_score"`
}

// ── Request/Response Types ───────────────────────────────

type StartPlacementRequest struct {
	TotalQuestions int `json:"total_questions"`
}

type StartPlacementResponse struct {
	State  QuizState      `json:"state"`
	Topics []GrammarTopic `json:"topics"`
}

type NextQuestionRequest struct {
	State QuizState `json:"state"`
	// Pool is an optional bank of pre-generated questions. When a suitable
	// unused one exists it is served instead of generating live.
	Pool []PlacementQuestion `json:"pool,omitempty"`
}

type NextQuestionResponse struct {
	Question *PlacementQuestion `json:"question"`
	Done     bool               `json:"done"`
}

type PlacementAnswerRequest struct {
	State            QuizState         `json:"state"`
	Question         PlacementQuestion `json:"question"`
	UserAnswer       string            `json:"user_answer"`
	TimeTakenSeconds float64           `json:"time_taken_seconds"`
}

type PlacementAnswerResponse struct {
	State      QuizState `json:"state"`
	Correct    bool      `json:"correct"`
	Acceptable bool      `json:"acceptable"`
	FeedbackDE string    `json:"feedback_de"`
	FeedbackEN string    `json:"feedback_en"`
}

type CompletePlacementRequest struct {
	State QuizState `json:"state"`
}

type CompletePlacementResponse struct {
	PlacementID  int64              `json:"placement_id"`
	KnowledgeMap KnowledgeMap       `json:"knowledge_map"`
	LearningPath []LearningPathItem `json:"learning_path"`
}

type PlacementDataResponse struct {
	Result       *PlacementResult   `json:"result"`
	Assessments  []TopicAssessment  `json:"assessments"`
	LearningPath []LearningPathItem `json:"learning_path"`
}
