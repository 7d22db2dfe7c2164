package service

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GeminiBackend generates advice with Google's Gemini API.
type GeminiBackend struct {
	client *genai.Client
	model  string
}

// NewGeminiBackend creates a Gemini client for model.
func NewGeminiBackend(ctx context.Context, apiKey, model string) (*GeminiBackend, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GeminiBackend{client: client, model: model}, nil
}

func (b *GeminiBackend) Name() string {
	return "gemini:" + b.model
}

// Complete generates one candidate for prompt.
func (b *GeminiBackend) Complete(ctx context.Context, prompt string, cfg GenerationConfig) (string, error) {
	genCfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(cfg.Temperature)),
		MaxOutputTokens: int32(cfg.MaxNewTokens),
		CandidateCount:  1,
	}
	if cfg.TopK > 0 {
		genCfg.TopK = genai.Ptr(float32(cfg.TopK))
	}

	resp, err := b.client.Models.GenerateContent(ctx, b.model, genai.Text(prompt), genCfg)
	if err != nil {
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}
	return resp.Text(), nil
}

// Ready fetches the model's metadata.
func (b *GeminiBackend) Ready(ctx context.Context) error {
	if _, err := b.client.Models.Get(ctx, b.model, nil); err != nil {
		return fmt.Errorf("model %q unavailable: %w", b.model, err)
	}
	return nil
}
