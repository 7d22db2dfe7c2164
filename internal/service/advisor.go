package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pageza/nutrichat/backend/internal/models"
)

// CompositionState is where a query ended up after lookup.
type CompositionState int

const (
	StateNoFoodFound CompositionState = iota
	StateFoodFoundNoData
	StateFoodFoundWithData
)

// Composition is the outcome of resolving a query against the knowledge table.
type Composition struct {
	State  CompositionState
	Food   string
	Record models.FoodRecord
	// Prompt is set only in StateFoodFoundWithData.
	Prompt string
}

// FindFoodMention returns the first known food, in the given order, whose
// lowercase name occurs anywhere in the lowercase query.
//
// Overlapping names are not disambiguated by length or position: with both
// "Apple" and "Apple Juice" known, whichever comes first in knownFoods wins.
func FindFoodMention(query string, knownFoods []string) (string, bool) {
	q := strings.ToLower(query)
	for _, food := range knownFoods {
		if strings.Contains(q, strings.ToLower(food)) {
			return food, true
		}
	}
	return "", false
}

// BuildPrompt fills the advice template. The trailing cue primes the model
// to continue with explanatory prose.
func BuildPrompt(condition, food, recommendation, explanation string) string {
	return fmt.Sprintf(
		"A user with %s asks about eating %s. "+
			"The recommendation is '%s'. "+
			"Explain why in a helpful, conversational tone, based on this key fact: '%s'"+
			"\n\nHelpful Advice: ",
		condition, food, recommendation, explanation,
	)
}

// ComposeAdvice resolves query and condition into a record and, when one exists, a prompt.
func ComposeAdvice(query, condition string, kb KnowledgeBase) Composition {
	food, ok := FindFoodMention(query, kb.DistinctFoodNames())
	if !ok {
		return Composition{State: StateNoFoodFound}
	}

	rec, ok := kb.Lookup(food, condition)
	if !ok {
		return Composition{State: StateFoodFoundNoData, Food: food}
	}

	return Composition{
		State:  StateFoodFoundWithData,
		Food:   food,
		Record: rec,
		Prompt: BuildPrompt(condition, food, rec.Recommendation, rec.Explanation),
	}
}

// AdviceStatus is the final state of an answered query.
type AdviceStatus string

const (
	StatusNoFoodIdentified   AdviceStatus = "no_food_identified"
	StatusNoDataForCondition AdviceStatus = "no_data_for_condition"
	StatusGenerated          AdviceStatus = "generated"
	StatusEmptyGeneration    AdviceStatus = "empty_generation"
	StatusGenerationFailed   AdviceStatus = "generation_failed"
)

// AdviceResult is the structured answer to one query. Optional fields are nil when absent.
type AdviceResult struct {
	Status          AdviceStatus `json:"status"`
	Condition       string       `json:"condition"`
	MatchedFood     *string      `json:"matched_food"`
	Recommendation  *string      `json:"recommendation"`
	Explanation     *string      `json:"explanation"`
	GeneratedText   *string      `json:"generated_text"`
	GenerationError string       `json:"generation_error,omitempty"`
	Prompt          string       `json:"-"`
}

// Message renders the result the way the chat UI shows it.
func (r AdviceResult) Message() string {
	switch r.Status {
	case StatusNoFoodIdentified:
		return "I couldn't identify a food in your question. Please try rephrasing."
	case StatusNoDataForCondition:
		return fmt.Sprintf("I don't have specific data for '%s' regarding '%s' in my base knowledge.", deref(r.MatchedFood), r.Condition)
	case StatusEmptyGeneration:
		return "The model did not generate a specific reason. This might be a rare case or require more training data."
	case StatusGenerationFailed:
		return r.GenerationError
	default:
		return fmt.Sprintf("Advice for eating '%s' with '%s':", deref(r.MatchedFood), r.Condition)
	}
}

// Render lays the result out for a terminal: the message, then for
// matched records the base recommendation and the generated advice.
func (r AdviceResult) Render() string {
	switch r.Status {
	case StatusNoFoodIdentified, StatusNoDataForCondition:
		return r.Message()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Advice for eating '%s' with '%s':\n", deref(r.MatchedFood), r.Condition)
	fmt.Fprintf(&b, "Base Recommendation: %s\n", deref(r.Recommendation))
	b.WriteString("Generated Advice:\n")
	switch r.Status {
	case StatusGenerated:
		b.WriteString(deref(r.GeneratedText))
	default:
		b.WriteString(r.Message())
	}
	return b.String()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func ptr(s string) *string {
	return &s
}

// Advisor runs the lookup, prompt and generation pipeline for one query at a time.
// Its dependencies are read-only, so one Advisor serves concurrent callers.
type Advisor struct {
	kb     KnowledgeBase
	gen    Generator
	cache  AdviceCache
	logger zerolog.Logger
}

// NewAdvisor creates an Advisor. cache may be nil.
func NewAdvisor(kb KnowledgeBase, gen Generator, cache AdviceCache, logger zerolog.Logger) *Advisor {
	return &Advisor{
		kb:     kb,
		gen:    gen,
		cache:  cache,
		logger: logger.With().Str("component", "advisor").Logger(),
	}
}

// Conditions returns the selectable conditions, sorted.
func (a *Advisor) Conditions() []string {
	return a.kb.DistinctConditions()
}

// Records returns the size of the knowledge table.
func (a *Advisor) Records() int {
	return a.kb.Len()
}

// Answer resolves a question for a condition. It never fails: problems are
// reported through the result's Status. Callers reject empty input first.
func (a *Advisor) Answer(ctx context.Context, condition, query string) AdviceResult {
	comp := ComposeAdvice(query, condition, a.kb)
	res := AdviceResult{Condition: condition}

	switch comp.State {
	case StateNoFoodFound:
		res.Status = StatusNoFoodIdentified
		a.logger.Debug().Str("condition", condition).Msg("No food identified in query")
		return res
	case StateFoodFoundNoData:
		res.Status = StatusNoDataForCondition
		res.MatchedFood = ptr(comp.Food)
		a.logger.Debug().Str("food", comp.Food).Str("condition", condition).Msg("No data for condition")
		return res
	}

	res.MatchedFood = ptr(comp.Food)
	res.Recommendation = ptr(comp.Record.Recommendation)
	res.Explanation = ptr(comp.Record.Explanation)
	res.Prompt = comp.Prompt

	text, ok := a.cached(ctx, comp.Prompt)
	if !ok {
		gen := a.gen.Generate(ctx, comp.Prompt)
		if !gen.OK() {
			res.Status = StatusGenerationFailed
			res.GenerationError = gen.Message()
			return res
		}
		text = gen.Text
		if text != "" {
			a.store(ctx, comp.Prompt, text)
		}
	}

	if text == "" {
		res.Status = StatusEmptyGeneration
		return res
	}

	res.Status = StatusGenerated
	res.GeneratedText = ptr(text)
	a.logger.Info().Str("food", comp.Food).Str("condition", condition).Bool("cached", ok).Msg("Advice generated")
	return res
}

func (a *Advisor) cached(ctx context.Context, prompt string) (string, bool) {
	if a.cache == nil {
		return "", false
	}
	text, ok, err := a.cache.Get(ctx, a.gen.Model(), prompt)
	if err != nil {
		a.logger.Warn().Err(err).Msg("Advice cache read failed")
		return "", false
	}
	return text, ok
}

func (a *Advisor) store(ctx context.Context, prompt, text string) {
	if a.cache == nil {
		return
	}
	if err := a.cache.Set(ctx, a.gen.Model(), prompt, text); err != nil {
		a.logger.Warn().Err(err).Msg("Advice cache write failed")
	}
}
