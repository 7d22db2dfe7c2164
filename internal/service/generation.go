package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pageza/nutrichat/backend/internal/knowledge"
)

// GenerationConfig bounds a single model continuation.
type GenerationConfig struct {
	MaxNewTokens      int
	TopK              int
	Temperature       float64
	NoRepeatNGramSize int
	Timeout           time.Duration
}

// DefaultGenerationConfig returns the tuned defaults for the advice model.
func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		MaxNewTokens:      60,
		TopK:              50,
		Temperature:       0.7,
		NoRepeatNGramSize: 2,
		Timeout:           30 * time.Second,
	}
}

// ErrGenerationTimeout is returned when the backend does not answer within the configured timeout.
var ErrGenerationTimeout = errors.New("generation timed out")

// GenerationError wraps a backend failure.
type GenerationError struct {
	Backend string
	Err     error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Backend, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// GenerationResult carries either generated text or the reason there is none.
type GenerationResult struct {
	Text string
	Err  error
}

// OK reports whether generation succeeded. The text may still be empty.
func (r GenerationResult) OK() bool {
	return r.Err == nil
}

// Message renders the result for display; failures become a readable sentence.
func (r GenerationResult) Message() string {
	if r.Err != nil {
		return "An error occurred during generation: " + r.Err.Error()
	}
	return r.Text
}

// Gateway wraps a generation backend with timeouts, panic recovery and output cleanup.
// It never lets a backend failure escape as a panic or an unhandled error.
type Gateway struct {
	backend GenerationBackend
	cfg     GenerationConfig
	logger  zerolog.Logger
}

// NewGateway creates a Gateway. Zero fields of cfg are not defaulted.
func NewGateway(backend GenerationBackend, cfg GenerationConfig, logger zerolog.Logger) *Gateway {
	return &Gateway{
		backend: backend,
		cfg:     cfg,
		logger:  logger.With().Str("component", "generation").Str("backend", backend.Name()).Logger(),
	}
}

// Model identifies the backend and model, for cache keys and logs.
func (g *Gateway) Model() string {
	return g.backend.Name()
}

// Config returns the generation settings applied to every call.
func (g *Gateway) Config() GenerationConfig {
	return g.cfg
}

// Ready checks that the backend can serve the configured model.
// A failure here is a LoadError: the model artifact is unavailable.
func (g *Gateway) Ready(ctx context.Context) error {
	if err := g.backend.Ready(ctx); err != nil {
		return &knowledge.LoadError{Source: "model " + g.backend.Name(), Err: err}
	}
	return nil
}

type completion struct {
	text string
	err  error
}

// Generate asks the backend to continue prompt and returns only the new text, trimmed.
func (g *Gateway) Generate(ctx context.Context, prompt string) GenerationResult {
	if g.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	done := make(chan completion, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- completion{err: fmt.Errorf("backend panic: %v", r)}
			}
		}()
		text, err := g.backend.Complete(ctx, prompt, g.cfg)
		done <- completion{text: text, err: err}
	}()

	var res completion
	select {
	case res = <-done:
	case <-ctx.Done():
		res = completion{err: ctx.Err()}
	}

	if res.err != nil {
		err := res.err
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w after %s", ErrGenerationTimeout, g.cfg.Timeout)
		}
		g.logger.Warn().Err(err).Dur("elapsed", time.Since(start)).Msg("Generation failed")
		return GenerationResult{Err: &GenerationError{Backend: g.backend.Name(), Err: err}}
	}

	text := stripPrompt(res.text, prompt)
	if n := g.cfg.NoRepeatNGramSize; n > 0 && !enforcesNoRepeat(g.backend) {
		text = truncateRepeatedNGrams(text, n)
	}
	text = strings.TrimSpace(text)

	g.logger.Debug().Dur("elapsed", time.Since(start)).Int("chars", len(text)).Msg("Generation finished")
	return GenerationResult{Text: text}
}

// stripPrompt removes an echoed prompt so only the continuation remains.
func stripPrompt(out, prompt string) string {
	if prompt == "" {
		return out
	}
	if rest, ok := strings.CutPrefix(out, prompt); ok {
		return rest
	}
	if trimmed := strings.TrimSpace(prompt); trimmed != "" {
		if rest, ok := strings.CutPrefix(strings.TrimLeft(out, " \t\r\n"), trimmed); ok {
			return rest
		}
	}
	return out
}

func enforcesNoRepeat(b GenerationBackend) bool {
	e, ok := b.(interface{ EnforcesNoRepeatNGram() bool })
	return ok && e.EnforcesNoRepeatNGram()
}
