package service

import (
	"context"

	"github.com/pageza/nutrichat/backend/internal/models"
)

// GenerationBackend produces a continuation of a prompt with a pretrained model.
type GenerationBackend interface {
	// Complete returns the model's continuation of prompt. Implementations must honour ctx.
	Complete(ctx context.Context, prompt string, cfg GenerationConfig) (string, error)
	// Ready reports whether the configured model is available.
	Ready(ctx context.Context) error
	// Name identifies the provider and model, e.g. "ollama:nutrichat".
	Name() string
}

// KnowledgeBase is the read side of the food/condition table.
type KnowledgeBase interface {
	DistinctFoodNames() []string
	DistinctConditions() []string
	Lookup(foodName, condition string) (models.FoodRecord, bool)
	Len() int
}

// Generator turns a prompt into advice text.
type Generator interface {
	Generate(ctx context.Context, prompt string) GenerationResult
	Model() string
}

// AdviceCache memoizes generated advice by prompt.
type AdviceCache interface {
	Get(ctx context.Context, model, prompt string) (string, bool, error)
	Set(ctx context.Context, model, prompt, text string) error
}

// IAdvisorService is the entry point every presentation layer uses.
type IAdvisorService interface {
	Answer(ctx context.Context, condition, query string) AdviceResult
	Conditions() []string
	Records() int
}
