package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const ollamaDefaultURL = "http://localhost:11434"

// OllamaBackend serves a local model through Ollama's generate API.
// This is how a fine-tuned checkpoint is usually run next to the service.
type OllamaBackend struct {
	baseURL string
	model   string
	client  *http.Client
}

// NewOllamaBackend creates a backend for baseURL (defaults to localhost:11434).
func NewOllamaBackend(baseURL, model string, client *http.Client) *OllamaBackend {
	if baseURL == "" {
		baseURL = ollamaDefaultURL
	}
	if client == nil {
		client = &http.Client{Timeout: 120 * time.Second}
	}
	return &OllamaBackend{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  client,
	}
}

type ollamaOptions struct {
	NumPredict  int     `json:"num_predict"`
	TopK        int     `json:"top_k,omitempty"`
	Temperature float64 `json:"temperature"`
}

type ollamaGenerateRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Raw     bool          `json:"raw"`
	Stream  bool          `json:"stream"`
	Options ollamaOptions `json:"options"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error,omitempty"`
}

func (b *OllamaBackend) Name() string {
	return "ollama:" + b.model
}

// Complete runs a raw (untemplated) completion so the prompt's trailing cue is continued verbatim.
func (b *OllamaBackend) Complete(ctx context.Context, prompt string, cfg GenerationConfig) (string, error) {
	body, err := json.Marshal(ollamaGenerateRequest{
		Model:  b.model,
		Prompt: prompt,
		Raw:    true,
		Stream: false,
		Options: ollamaOptions{
			NumPredict:  cfg.MaxNewTokens,
			TopK:        cfg.TopK,
			Temperature: cfg.Temperature,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	var out ollamaGenerateResponse
	if err := b.post(ctx, "/api/generate", body, &out); err != nil {
		return "", err
	}
	if out.Error != "" {
		return "", fmt.Errorf("ollama: %s", out.Error)
	}
	return out.Response, nil
}

// Ready asks Ollama to describe the model; unknown models return 404.
func (b *OllamaBackend) Ready(ctx context.Context) error {
	body, err := json.Marshal(map[string]string{"model": b.model})
	if err != nil {
		return err
	}
	var discard json.RawMessage
	if err := b.post(ctx, "/api/show", body, &discard); err != nil {
		return fmt.Errorf("model %q unavailable: %w", b.model, err)
	}
	return nil
}

func (b *OllamaBackend) post(ctx context.Context, path string, body []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
