package nlquery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/nonsonwune/hostel_admin/filter"
	"github.com/nonsonwune/hostel_admin/models"
	"github.com/nonsonwune/hostel_admin/nlquery/prompts"
)

const queryTimeout = 45 * time.Second

// generator sends one prompt with one API key and returns the text reply.
type generator interface {
	Generate(ctx context.Context, apiKey, prompt string) (string, error)
}

// Engine turns an operator's question into filter criteria over the cached
// student list.
type Engine struct {
	keys    *KeyManager
	gen     generator
	prompts *prompts.PromptBuilder
	backoff []time.Duration
}

func NewEngine(keys []string, modelName string) *Engine {
	return &Engine{
		keys:    NewKeyManager(keys),
		gen:     geminiGenerator{model: modelName},
		prompts: prompts.NewPromptBuilder(),
		backoff: []time.Duration{
			1 * time.Second,
			2 * time.Second,
			4 * time.Second,
		},
	}
}

// UsesModel reports whether questions go to Gemini or to the keyword rules.
func (e *Engine) UsesModel() bool {
	return e.keys.Len() > 0
}

// Translate answers question with criteria. Without API keys, or when every
// model attempt fails, the keyword rules are used instead.
func (e *Engine) Translate(ctx context.Context, question string, students []models.Student) (filter.Criteria, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return filter.Criteria{}, errors.New("empty question")
	}

	hostels := prompts.NewHostelNameMatcher(students)
	if !e.UsesModel() {
		return GenerateCriteria(question, hostels), nil
	}

	queryCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	c, err := e.generateCriteria(queryCtx, question, hostels.Names())
	if err != nil {
		if ctx.Err() != nil {
			return filter.Criteria{}, ctx.Err()
		}
		log.Printf("Gemini translation failed, using keyword rules: %v", err)
		return GenerateCriteria(question, hostels), nil
	}
	return c, nil
}

func (e *Engine) generateCriteria(ctx context.Context, question string, hostels []string) (filter.Criteria, error) {
	prompt := e.prompts.BuildCriteriaPrompt(question, hostels)
	var lastErr error

	for i, wait := range e.backoff {
		if err := ctx.Err(); err != nil {
			return filter.Criteria{}, err
		}

		key := e.keys.GetNextKey()
		text, err := e.gen.Generate(ctx, key, prompt)
		if err == nil {
			var c filter.Criteria
			c, err = parseCriteria(text)
			if err == nil {
				return c, nil
			}
		} else if isRateLimitError(err) {
			e.keys.MarkKeyFailed(key)
		}

		lastErr = err
		log.Printf("Attempt %d failed: %v", i+1, err)
		if i == len(e.backoff)-1 {
			break
		}
		if !sleep(ctx, wait) {
			return filter.Criteria{}, ctx.Err()
		}
	}

	if lastErr != nil {
		return filter.Criteria{}, fmt.Errorf("all attempts failed, last error: %w", lastErr)
	}
	return filter.Criteria{}, errors.New("failed to generate criteria after all attempts")
}

// Helper function to check for rate limit errors
func isRateLimitError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "quota exceeded") ||
		strings.Contains(msg, "resource_exhausted") ||
		strings.Contains(msg, "429")
}

// parseCriteria extracts the JSON object from a reply that may be wrapped in
// a code fence or surrounded by prose.
func parseCriteria(text string) (filter.Criteria, error) {
	text = strings.TrimSpace(text)
	for _, format := range []string{"```json", "```JSON", "```"} {
		if strings.HasPrefix(text, format) {
			text = strings.TrimPrefix(text, format)
			if idx := strings.LastIndex(text, "```"); idx != -1 {
				text = text[:idx]
			}
			break
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end < start {
		return filter.Criteria{}, fmt.Errorf("no JSON object in response: %q", text)
	}

	var c filter.Criteria
	if err := json.Unmarshal([]byte(text[start:end+1]), &c); err != nil {
		return filter.Criteria{}, fmt.Errorf("decoding criteria: %w", err)
	}
	return c, nil
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

type geminiGenerator struct {
	model string
}

func (g geminiGenerator) Generate(ctx context.Context, apiKey, prompt string) (string, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return "", fmt.Errorf("error initializing Gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(g.model)
	model.SetTemperature(0.1)
	model.ResponseMIMEType = "application/json"

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("no response candidates")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", errors.New("empty response")
	}
	return sb.String(), nil
}
