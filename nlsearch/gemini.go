package nlsearch

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"google.golang.org/genai"
)

const defaultModel = "gemini-2.5-flash"

//go:embed prompt.md
var promptTemplate string

// contentGenerator is the slice of the Gemini client the interpreter needs;
// tests substitute a fake.
type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// Generator wraps the Google GenAI client for simple prompt-in, text-out
// calls.
type Generator struct {
	client    *genai.Client
	modelName string
}

// NewGenerator creates a Generator for the Gemini API backend.
func NewGenerator(ctx context.Context, apiKey, model string) (*Generator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}
	return &Generator{client: client, modelName: model}, nil
}

// GenerateContent sends the prompt and returns the concatenated textual
// response.
func (g *Generator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	if g == nil || g.client == nil {
		return "", errors.New("gemini generator is not initialized")
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	output := strings.TrimSpace(builder.String())
	if output == "" {
		return "", errors.New("gemini api returned empty response")
	}
	return output, nil
}

// Gemini interprets queries by prompting a generative model for a JSON
// constraint object.
type Gemini struct {
	generator contentGenerator
}

func NewGemini(generator contentGenerator) *Gemini {
	return &Gemini{generator: generator}
}

func (g *Gemini) Interpret(ctx context.Context, query string, limit int) (*Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	prompt := strings.ReplaceAll(promptTemplate, "{{QUERY}}", query)
	raw, err := g.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	filters, err := parseFilters(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return &Result{Filters: filters}, nil
}

// parseFilters decodes the model response, tolerating markdown code fences
// and loosely typed fields.
func parseFilters(raw string) (*Filters, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse interpreter response: %w", err)
	}

	f := &Filters{
		City:      coerceString(data["city"]),
		MinAge:    coerceInt(data["min_age"]),
		MaxAge:    coerceInt(data["max_age"]),
		Interests: coerceStrings(data["interests"]),
		Skills:    coerceStrings(data["skills"]),
	}
	return f, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func coerceString(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

func coerceInt(v any) int {
	switch val := v.(type) {
	case float64:
		return int(val)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

func coerceStrings(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := coerceString(item); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
