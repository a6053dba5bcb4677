package extractor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/foxseedlab/usterki/internal/extractor"
	"google.golang.org/genai"
)

const (
	geminiTemperature     = 0.2
	geminiMaxOutputTokens = 2048
)

type generateFunc func(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

type GeminiConfig struct {
	APIKey string
	Model  string
}

// GeminiExtractor asks Gemini for the JSON triple and parses it with extractor.ParseFields.
type GeminiExtractor struct {
	apiKey string
	model  string

	mu       sync.Mutex
	generate generateFunc
}

func NewGeminiExtractor(cfg GeminiConfig) extractor.Extractor {
	return &GeminiExtractor{
		apiKey: cfg.APIKey,
		model:  cfg.Model,
	}
}

func (e *GeminiExtractor) Extract(ctx context.Context, systemPrompt, userText string) (extractor.Fields, error) {
	generate, err := e.client(ctx)
	if err != nil {
		return extractor.Fields{}, err
	}
	resp, err := generate(ctx, e.model, genai.Text(userText), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		Temperature:       genai.Ptr[float32](geminiTemperature),
		MaxOutputTokens:   geminiMaxOutputTokens,
		ResponseMIMEType:  "application/json",
	})
	if err != nil {
		return extractor.Fields{}, fmt.Errorf("gemini generate content: %w", err)
	}
	raw := strings.TrimSpace(resp.Text())
	if raw == "" {
		return extractor.Fields{}, fmt.Errorf("%w: empty response", extractor.ErrMalformedResponse)
	}
	fields, err := extractor.ParseFields(raw)
	if err != nil {
		slog.Debug("unparseable gemini response", "raw", raw)
		return extractor.Fields{}, err
	}
	return fields, nil
}

func (e *GeminiExtractor) client(ctx context.Context) (generateFunc, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.generate != nil {
		return e.generate, nil
	}
	client, err := genai.NewClient(context.WithoutCancel(ctx), &genai.ClientConfig{
		APIKey:  e.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	slog.Info("gemini client initialized", "model", e.model)
	e.generate = client.Models.GenerateContent
	return e.generate, nil
}
