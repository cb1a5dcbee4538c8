package tutor

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/b1prep/backend/internal/generator"
	"github.com/b1prep/backend/internal/models"
	"github.com/b1prep/backend/internal/placement"
)

// How many prior turns are replayed into the prompt for context.
const historyWindow = 10

type Service struct {
	store      *Store
	placements *placement.Store
	generator  *generator.Generator
}

func NewService(store *Store, placements *placement.Store, gen *generator.Generator) *Service {
	return &Service{store: store, placements: placements, generator: gen}
}

// Chat answers one tutor message with recent conversation context. History
// persistence is best-effort: a failed insert must not eat the reply.
func (s *Service) Chat(ctx context.Context, userID int64, req models.TutorChatRequest) (*models.TutorChatResponse, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, fmt.Errorf("message is required")
	}

	level, err := s.store.GetUserLevel(userID)
	if err != nil {
		return nil, fmt.Errorf("tutor chat: %w", err)
	}

	var topicID *int
	prompt := s.buildPrompt(userID, message, req.TopicID)
	if req.TopicID != 0 {
		topicID = &req.TopicID
	}

	resp, err := s.generator.Chat(ctx, generator.TutorSystemPrompt(level), prompt)
	if err != nil {
		return nil, fmt.Errorf("tutor chat: %w", err)
	}
	reply := strings.TrimSpace(resp.Content)

	if err := s.store.SaveMessage(userID, "user", message, topicID); err != nil {
		log.Printf("WARN: [tutor] save user message: %v", err)
	}
	if err := s.store.SaveMessage(userID, "assistant", reply, topicID); err != nil {
		log.Printf("WARN: [tutor] save assistant message: %v", err)
	}

	return &models.TutorChatResponse{Reply: reply}, nil
}

// buildPrompt replays recent turns before the new message so the tutor can
// follow the thread. History read failures degrade to a contextless prompt.
func (s *Service) buildPrompt(userID int64, message string, topicID int) string {
	var b strings.Builder

	history, err := s.store.RecentMessages(userID, historyWindow)
	if err != nil {
		log.Printf("WARN: [tutor] history for user %d: %v", userID, err)
	}
	if len(history) > 0 {
		b.WriteString("Conversation so far:\n")
		for _, m := range history {
			role := "Learner"
			if m.Role == "assistant" {
				role = "Tutor"
			}
			fmt.Fprintf(&b, "%s: %s\n", role, m.Content)
		}
		b.WriteString("\n")
	}

	if topicID != 0 {
		if topic, err := s.placements.GetTopic(topicID); err == nil && topic != nil {
			fmt.Fprintf(&b, "The learner is currently practicing %s (%s).\n\n", topic.NameEN, topic.NameDE)
		}
	}

	fmt.Fprintf(&b, "Learner: %s", message)
	return b.String()
}

// History returns the recent conversation, oldest first.
func (s *Service) History(userID int64, limit int) ([]models.TutorMessage, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	messages, err := s.store.RecentMessages(userID, limit)
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []models.TutorMessage{}
	}
	return messages, nil
}

// Lesson generates a mini-lesson for one grammar topic.
func (s *Service) Lesson(ctx context.Context, userID int64, topicID int) (*models.TutorChatResponse, error) {
	topic, err := s.placements.GetTopic(topicID)
	if err != nil {
		return nil, fmt.Errorf("tutor lesson: %w", err)
	}
	if topic == nil {
		return nil, fmt.Errorf("unknown topic %d", topicID)
	}

	level, err := s.store.GetUserLevel(userID)
	if err != nil {
		return nil, fmt.Errorf("tutor lesson: %w", err)
	}

	resp, err := s.generator.Chat(ctx, generator.TutorSystemPrompt(level), generator.BuildLessonPrompt(*topic))
	if err != nil {
		return nil, fmt.Errorf("tutor lesson: %w", err)
	}
	reply := strings.TrimSpace(resp.Content)

	if err := s.store.SaveMessage(userID, "assistant", reply, &topicID); err != nil {
		log.Printf("WARN: [tutor] save lesson: %v", err)
	}

	return &models.TutorChatResponse{Reply: reply}, nil
}
