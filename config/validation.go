package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors aggregates every problem found in one pass
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	lines := make([]string, len(e))
	for i, v := range e {
		lines[i] = v.Error()
	}
	return "configuration validation failed:\n" + strings.Join(lines, "\n")
}

func joinValidation(errs []ValidationError) error {
	if len(errs) == 0 {
		return nil
	}
	return ValidationErrors(errs)
}

// providers that authenticate with LLM_API_KEY
var keyedProviders = map[string]bool{
	ProviderDeepSeek: true,
	ProviderOpenAI:   true,
	ProviderGemini:   true,
}

// ValidateConfig checks if the configuration is usable in the current environment
func ValidateConfig(cfg *Config) error {
	var errs []ValidationError

	if cfg.KnowledgeSource == "" {
		errs = append(errs, ValidationError{Field: "KNOWLEDGE_SOURCE", Message: "is required"})
	}

	switch cfg.LLMProvider {
	case ProviderOllama, ProviderDeepSeek, ProviderOpenAI, ProviderGemini:
	case ProviderStatic:
		if GetEnvironment() == Production {
			errs = append(errs, ValidationError{Field: "LLM_PROVIDER", Message: "static provider is not allowed in production"})
		}
	default:
		errs = append(errs, ValidationError{Field: "LLM_PROVIDER", Message: fmt.Sprintf("unknown provider %q", cfg.LLMProvider)})
	}

	if keyedProviders[cfg.LLMProvider] && cfg.LLMAPIKey == "" {
		errs = append(errs, ValidationError{Field: "LLM_API_KEY", Message: fmt.Sprintf("required for provider %s", cfg.LLMProvider)})
	}
	if cfg.LLMModel == "" {
		errs = append(errs, ValidationError{Field: "LLM_MODEL", Message: "is required"})
	}

	gen := cfg.Generation
	if gen.MaxNewTokens <= 0 {
		errs = append(errs, ValidationError{Field: "GEN_MAX_NEW_TOKENS", Message: "must be positive"})
	}
	if gen.TopK < 0 {
		errs = append(errs, ValidationError{Field: "GEN_TOP_K", Message: "must not be negative"})
	}
	if gen.Temperature < 0 {
		errs = append(errs, ValidationError{Field: "GEN_TEMPERATURE", Message: "must not be negative"})
	}
	if gen.NoRepeatNGramSize < 0 {
		errs = append(errs, ValidationError{Field: "GEN_NO_REPEAT_NGRAM", Message: "must not be negative"})
	}
	if gen.Timeout <= 0 {
		errs = append(errs, ValidationError{Field: "GEN_TIMEOUT", Message: "must be positive"})
	}

	if cfg.CacheTTL < 0 {
		errs = append(errs, ValidationError{Field: "CACHE_TTL", Message: "must not be negative"})
	}
	if cfg.RateLimit < 0 {
		errs = append(errs, ValidationError{Field: "RATE_LIMIT", Message: "must not be negative"})
	}
	if cfg.RateLimit > 0 && cfg.RateWindow <= 0 {
		errs = append(errs, ValidationError{Field: "RATE_WINDOW", Message: "must be positive when RATE_LIMIT is set"})
	}

	if GetEnvironment() == Production && cfg.ServerPort == "" {
		errs = append(errs, ValidationError{Field: "SERVER_PORT", Message: "is required in production"})
	}

	return joinValidation(errs)
}
