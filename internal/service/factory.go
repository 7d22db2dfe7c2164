package service

import (
	"context"
	"fmt"

	"github.com/pageza/nutrichat/backend/config"
)

// NewGenerationBackend builds the backend selected by cfg.LLMProvider.
func NewGenerationBackend(ctx context.Context, cfg *config.Config) (GenerationBackend, error) {
	switch cfg.LLMProvider {
	case config.ProviderOllama:
		return NewOllamaBackend(cfg.LLMAPIURL, cfg.LLMModel, nil), nil
	case config.ProviderDeepSeek, config.ProviderOpenAI:
		return NewChatCompletionsBackend(cfg.LLMProvider, cfg.LLMAPIURL, cfg.LLMAPIKey, cfg.LLMModel, nil), nil
	case config.ProviderGemini:
		return NewGeminiBackend(ctx, cfg.LLMAPIKey, cfg.LLMModel)
	case config.ProviderStatic:
		return StaticBackend{Text: cfg.LLMStaticText}, nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.LLMProvider)
	}
}

// GenerationConfigFrom converts configuration settings into per-call settings.
func GenerationConfigFrom(s config.GenerationSettings) GenerationConfig {
	return GenerationConfig{
		MaxNewTokens:      s.MaxNewTokens,
		TopK:              s.TopK,
		Temperature:       s.Temperature,
		NoRepeatNGramSize: s.NoRepeatNGramSize,
		Timeout:           s.Timeout,
	}
}
