package generator

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/param"
	"github.com/b1prep/backend/internal/models"
)

// LLMClient is the interface all generator backends satisfy.
type LLMClient interface {
	Generate(ctx context.Context, systemPrompt string, userPrompt string) (*LLMResponse, error)
}

// LLMResponse holds the raw response content and token usage.
type LLMResponse struct {
	Content      string
	PromptTokens int
	OutputTokens int
}

// Generator wraps an LLMClient and adds German-grammar-specific methods.
type Generator struct {
	llm   LLMClient
	model string
}

func NewGenerator() *Generator {
	var llm LLMClient
	model := "mock"

	if os.Getenv("USE_CLI_GENERATOR") == "true" {
		cliPath := os.Getenv("CLAUDE_CLI_PATH")
		if cliPath == "" {
			cliPath = "claude"
		}
		llm = NewCLIClient(cliPath)
		model = "claude-cli"
		log.Println("Generator using Claude CLI (local plan)")
	} else if os.Getenv("MOCK_GENERATOR") == "true" {
		llm = NewMockClient()
		log.Println("Generator using mock data")
	} else {
		model = os.Getenv("ANTHROPIC_MODEL")
		if model == "" {
			model = "claude-sonnet-4-5-20250929"
		}
		llm = NewAPIClient(model)
		log.Println("Generator using Anthropic API:", model)
	}

	return &Generator{llm: llm, model: model}
}

func (g *Generator) ModelName() string {
	return g.model
}

// GeneratePlacementQuestion produces one quiz question for a topic at the
// given 1-5 difficulty. The caller assigns the question ID.
func (g *Generator) GeneratePlacementQuestion(ctx context.Context, topic models.GrammarTopic, qType models.QuestionType, difficulty int) (*models.PlacementQuestion, *LLMResponse, error) {
	systemPrompt := PlacementSystemPrompt()
	userPrompt := BuildPlacementPrompt(topic, qType, difficulty)

	resp, err := g.llm.Generate(ctx, systemPrompt, userPrompt)
	if err != nil {
		return nil, nil, fmt.Errorf("generate placement question: %w", err)
	}

	question, err := ParsePlacementQuestion(resp.Content)
	if err != nil {
		return nil, resp, fmt.Errorf("parse placement question: %w", err)
	}

	question.TopicID = topic.ID
	question.Level = topic.Level
	question.Difficulty = difficulty
	return question, resp, nil
}

// GenerateExercise produces one practice exercise for a topic.
func (g *Generator) GenerateExercise(ctx context.Context, topic models.GrammarTopic, exType models.ExerciseType, difficulty int) (*models.GeneratedExercise, *LLMResponse, error) {
	systemPrompt := ExerciseSystemPrompt()
	userPrompt := BuildExercisePrompt(topic, exType, difficulty)

	resp, err := g.llm.Generate(ctx, systemPrompt, userPrompt)
	if err != nil {
		return nil, nil, fmt.Errorf("generate exercise: %w", err)
	}

	exercise, err := ParseExercise(resp.Content)
	if err != nil {
		return nil, resp, fmt.Errorf("parse exercise: %w", err)
	}

	exercise.TopicID = topic.ID
	exercise.Difficulty = difficulty
	return exercise, resp, nil
}

// Chat sends a free-form prompt pair and returns the raw response. Used by
// the tutor, which handles its own prompt assembly and response formatting.
func (g *Generator) Chat(ctx context.Context, systemPrompt, userPrompt string) (*LLMResponse, error) {
	return g.llm.Generate(ctx, systemPrompt, userPrompt)
}

// ── APIClient — Anthropic SDK (Production) ─────────────────

type APIClient struct {
	client *anthropic.Client
	model  string
}

func NewAPIClient(model string) *APIClient {
	client := anthropic.NewClient(
		option.WithAPIKey(os.Getenv("ANTHROPIC_API_KEY")),
	)
	return &APIClient{client: &client, model: model}
}

func (c *APIClient) Generate(ctx context.Context, systemPrompt string, userPrompt string) (*LLMResponse, error) {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   2048,
		Temperature: param.NewOpt(0.7),
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	}

	message, err := c.callWithRetry(ctx, params)
	if err != nil {
		return nil, err
	}

	var responseText string
	for _, block := range message.Content {
		if block.Type == "text" {
			responseText = block.Text
			break
		}
	}

	if responseText == "" {
		return nil, fmt.Errorf("no text content in API response")
	}

	return &LLMResponse{
		Content:      responseText,
		PromptTokens: int(message.Usage.InputTokens),
		OutputTokens: int(message.Usage.OutputTokens),
	}, nil
}

func (c *APIClient) callWithRetry(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			sleepDuration := time.Duration(1<<uint(attempt)) * time.Second
			log.Printf("Retrying Anthropic API call in %v (attempt %d)", sleepDuration, attempt+1)
			time.Sleep(sleepDuration)
		}

		message, err := c.client.Messages.New(ctx, params)
		if err == nil {
			return message, nil
		}
		lastErr = err
		log.Printf("Anthropic API attempt %d failed: %v", attempt+1, err)
	}
	return nil, fmt.Errorf("anthropic API failed after retries: %w", lastErr)
}

// ── CLIClient — Local Claude CLI ───────────────────────────

// CLIClient generates through a locally installed claude CLI, so exercises
// can be produced in development without an API key.
type CLIClient struct {
	cliPath string
}

func NewCLIClient(cliPath string) *CLIClient {
	return &CLIClient{cliPath: cliPath}
}

func (c *CLIClient) Generate(ctx context.Context, systemPrompt string, userPrompt string) (*LLMResponse, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	cmd := exec.CommandContext(ctx,
		c.cliPath,
		"--print",
		"--output-format", "text",
		"--system-prompt", systemPrompt,
		"--max-turns", "1",
	)
	cmd.Stdin = strings.NewReader(userPrompt)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("run generation CLI: %w (stderr: %s)", err, strings.TrimSpace(stderr.String()))
	}

	content := strings.TrimSpace(stdout.String())
	if content == "" {
		return nil, fmt.Errorf("generation CLI produced no output")
	}

	// The CLI reports no token usage.
	return &LLMResponse{Content: content}, nil
}

// ── MockClient — Local Development ─────────────────────────

// MockClient returns canned German fixtures keyed off the task marker in the
// user prompt, so every code path can be exercised without an API key.
type MockClient struct{}

func NewMockClient() *MockClient {
	return &MockClient{}
}

func (m *MockClient) Generate(ctx context.Context, systemPrompt string, userPrompt string) (*LLMResponse, error) {
	var content string

	switch {
	case strings.Contains(userPrompt, taskPlacementQuestion):
		content = mockPlacementJSON(userPrompt)
	case strings.Contains(userPrompt, taskExercise):
		content = mockExerciseJSON(userPrompt)
	case strings.Contains(userPrompt, taskEvaluate):
		content = `{"correct":true,"acceptable":true,"feedback_de":"Richtig! Gut gemacht.","feedback_en":"Correct! Well done."}`
	default:
		content = "Gute Frage! Im Deutschen steht das Verb im Hauptsatz immer an zweiter Position. Zum Beispiel: \"Heute lerne ich Deutsch.\" Das Subjekt rueckt hinter das Verb, wenn etwas anderes am Satzanfang steht."
	}

	return &LLMResponse{
		Content:      content,
		PromptTokens: 400,
		OutputTokens: 250,
	}, nil
}

func mockPlacementJSON(userPrompt string) string {
	if strings.Contains(userPrompt, string(models.QuestionGrammarChoice)) {
		return `{"type":"grammar_choice","prompt_en":"Choose the correct article: ___ Haus ist gross.","prompt_de":"___ Haus ist gross.","correct_answer":"Das","options":["Der","Die","Das"],"hint":"Haus is neuter."}`
	}
	if strings.Contains(userPrompt, string(models.QuestionTranslate)) {
		return `{"type":"translate","prompt_en":"I learn German every day.","correct_answer":"Ich lerne jeden Tag Deutsch.","hint":"Time before object."}`
	}
	if strings.Contains(userPrompt, string(models.QuestionErrorDetection)) {
		return `{"type":"error_detection","prompt_en":"Find and correct the error.","prompt_de":"Ich habe gestern ins Kino gegangen.","correct_answer":"Ich bin gestern ins Kino gegangen.","hint":"Verbs of movement take sein."}`
	}
	return `{"type":"fill_gap","prompt_en":"Fill in the correct verb form.","prompt_de":"Er ___ jeden Morgen Kaffee. (trinken)","correct_answer":"trinkt","hint":"Third person singular."}`
}

func mockExerciseJSON(userPrompt string) string {
	switch {
	case strings.Contains(userPrompt, string(models.ExerciseReverseTranslation)):
		return `{"type":"reverse_translation","sentence_en":"Although it was raining, we went for a walk.","correct_answer":"Obwohl es regnete, sind wir spazieren gegangen.","hint_de":"Nebensatz mit obwohl","hint_en":"Subordinate clause sends the verb to the end.","explanation_de":"Nach obwohl steht das Verb am Satzende.","explanation_en":"After obwohl the verb moves to the end of the clause.","key_vocabulary":[{"de":"spazieren gehen","en":"to go for a walk"}]}`
	case strings.Contains(userPrompt, string(models.ExerciseSentenceConstruction)):
		return `{"type":"sentence_construction","words":["ich","morgen","nach Berlin","fahre"],"correct_answer":"Morgen fahre ich nach Berlin.","context_hint":"Start with the time expression.","explanation_de":"Das Verb steht an zweiter Position.","explanation_en":"The verb stays in second position."}`
	case strings.Contains(userPrompt, string(models.ExerciseGrammarSnap)):
		return `{"type":"grammar_snap","sentence_de":"Er ___ gestern krank. (sein)","correct_answer":"war","time_limit_seconds":10,"explanation_de":"Praeteritum von sein.","explanation_en":"Simple past of sein."}`
	case strings.Contains(userPrompt, string(models.ExerciseErrorCorrection)):
		return `{"type":"error_correction","sentence_with_error":"Ich habe gestern nach Hause gegangen.","correct_answer":"Ich bin gestern nach Hause gegangen.","explanation_de":"Bewegungsverben bilden das Perfekt mit sein.","explanation_en":"Verbs of movement form the perfect with sein."}`
	default:
		return `{"type":"fill_gap","sentence_de":"Wenn ich Zeit haette, ___ ich mehr lesen. (werden)","sentence_en":"If I had time, I would read more.","correct_answer":"wuerde","hint_de":"Konjunktiv II","hint_en":"Conditional form of werden.","explanation_de":"Konjunktiv II mit wuerde + Infinitiv.","explanation_en":"Konjunktiv II uses wuerde plus infinitive."}`
	}
}
