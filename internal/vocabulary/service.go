package vocabulary

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/b1prep/backend/internal/generator"
	"github.com/b1prep/backend/internal/models"
)

type Service struct {
	store     *Store
	generator *generator.Generator
}

func NewService(store *Store, gen *generator.Generator) *Service {
	return &Service{store: store, generator: gen}
}

func (s *Service) AddWord(userID int64, req models.AddWordRequest) (*models.VocabularyItem, error) {
	req.WordDE = strings.TrimSpace(req.WordDE)
	req.WordEN = strings.TrimSpace(req.WordEN)
	if req.WordDE == "" || req.WordEN == "" {
		return nil, fmt.Errorf("word_de and word_en are required")
	}
	if req.Gender != nil && !models.ValidGenders[*req.Gender] {
		return nil, fmt.Errorf("gender must be der, die or das")
	}

	return s.store.AddWord(userID, req, time.Now().UTC())
}

func (s *Service) ListWords(userID int64) (*models.VocabularyListResponse, error) {
	items, err := s.store.ListWords(userID)
	if err != nil {
		return nil, err
	}
	due, err := s.store.CountDue(userID, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.VocabularyItem{}
	}
	return &models.VocabularyListResponse{
		Items: items,
		Due:   due,
		Total: len(items),
	}, nil
}

func (s *Service) DueWords(userID int64, limit int) ([]models.VocabularyItem, error) {
	if limit <= 0 {
		limit = 20
	}
	items, err := s.store.DueWords(userID, time.Now().UTC(), limit)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.VocabularyItem{}
	}
	return items, nil
}

// ReviewWord grades one answer and reschedules the item with SM-2.
func (s *Service) ReviewWord(userID, wordID int64, userAnswer string) (*models.ReviewWordResponse, error) {
	item, err := s.store.GetWord(userID, wordID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("word not found")
	}

	correct := generator.AnswersMatch(item.WordDE, userAnswer) ||
		generator.AnswersMatch(strippedArticle(item.WordDE), userAnswer)

	updated := Review(*item, correct, time.Now().UTC())
	if err := s.store.UpdateSchedule(updated); err != nil {
		return nil, fmt.Errorf("reschedule word: %w", err)
	}

	return &models.ReviewWordResponse{Correct: correct, Item: updated}, nil
}

func (s *Service) DeleteWord(userID, wordID int64) error {
	return s.store.DeleteWord(userID, wordID)
}

// strippedArticle drops a leading der/die/das so "Haus" is accepted for
// "das Haus".
func strippedArticle(wordDE string) string {
	for _, article := range []string{"der ", "die ", "das "} {
		if strings.HasPrefix(strings.ToLower(wordDE), article) {
			return wordDE[len(article):]
		}
	}
	return wordDE
}

// SuggestWords asks the generator for thematic B1 vocabulary the user does
// not have yet. Suggestion failures are logged and swallowed: the feature is
// additive and must never break the vocabulary page.
func (s *Service) SuggestWords(ctx context.Context, userID int64, theme string) []models.AddWordRequest {
	existing, err := s.store.ListWords(userID)
	if err != nil {
		log.Printf("WARN: vocab suggestions: list words: %v", err)
		return nil
	}
	have := make(map[string]bool, len(existing))
	for _, item := range existing {
		have[strings.ToLower(item.WordDE)] = true
	}

	prompt := fmt.Sprintf(`Suggest 5 German words at B1 level for the theme %q.
Return ONLY a JSON array, no markdown fences:
[{"word_de":"<with article for nouns>","word_en":"...","gender":"der|die|das or null","part_of_speech":"noun|verb|adjective|adverb","example_sentence_de":"...","example_sentence_en":"..."}]`, theme)

	resp, err := s.generator.Chat(ctx, "You are a German vocabulary coach.", prompt)
	if err != nil {
		log.Printf("WARN: vocab suggestions failed: %v", err)
		return nil
	}

	var suggestions []models.AddWordRequest
	if err := json.Unmarshal([]byte(strings.TrimSpace(resp.Content)), &suggestions); err != nil {
		log.Printf("WARN: unparseable vocab suggestions: %v", err)
		return nil
	}

	var fresh []models.AddWordRequest
	for _, sug := range suggestions {
		if sug.WordDE == "" || sug.WordEN == "" || have[strings.ToLower(sug.WordDE)] {
			continue
		}
		if sug.Gender != nil && !models.ValidGenders[*sug.Gender] {
			sug.Gender = nil
		}
		fresh = append(fresh, sug)
	}
	return fresh
}
