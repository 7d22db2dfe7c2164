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

const (
	deepSeekAPIURL = "https://api.deepseek.com/v1/chat/completions"
	openAIAPIURL   = "https://api.openai.com/v1/chat/completions"
)

// ChatCompletionsBackend talks to an OpenAI-compatible chat completions API (DeepSeek, OpenAI, vLLM).
type ChatCompletionsBackend struct {
	provider string
	apiKey   string
	apiURL   string
	model    string
	client   *http.Client
}

// NewChatCompletionsBackend creates a backend. An empty apiURL selects the provider's public endpoint.
func NewChatCompletionsBackend(provider, apiURL, apiKey, model string, client *http.Client) *ChatCompletionsBackend {
	if apiURL == "" {
		apiURL = deepSeekAPIURL
		if provider == "openai" {
			apiURL = openAIAPIURL
		}
	}
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &ChatCompletionsBackend{
		provider: provider,
		apiKey:   apiKey,
		apiURL:   apiURL,
		model:    model,
		client:   client,
	}
}

// Message represents a message in the chat
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request represents a chat completions request
type Request struct {
	Model            string    `json:"model"`
	Messages         []Message `json:"messages"`
	MaxTokens        int       `json:"max_tokens,omitempty"`
	Temperature      float64   `json:"temperature"`
	TopK             int       `json:"top_k,omitempty"` // honoured by vLLM-style servers, ignored elsewhere
	FrequencyPenalty float64   `json:"frequency_penalty,omitempty"`
	N                int       `json:"n"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func (b *ChatCompletionsBackend) Name() string {
	return b.provider + ":" + b.model
}

// Complete sends the prompt as a single user message.
func (b *ChatCompletionsBackend) Complete(ctx context.Context, prompt string, cfg GenerationConfig) (string, error) {
	reqBody := Request{
		Model:       b.model,
		Messages:    []Message{{Role: "user", Content: prompt}},
		MaxTokens:   cfg.MaxNewTokens,
		Temperature: cfg.Temperature,
		TopK:        cfg.TopK,
		N:           1,
	}
	if cfg.NoRepeatNGramSize > 0 {
		// Closest server-side knob; the gateway still enforces the exact constraint
		reqBody.FrequencyPenalty = 0.5
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+b.apiKey)

	resp, err := b.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var result chatResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no response from API")
	}

	return result.Choices[0].Message.Content, nil
}

// Ready lists the provider's models and checks ours is among them.
func (b *ChatCompletionsBackend) Ready(ctx context.Context) error {
	modelsURL := strings.TrimSuffix(b.apiURL, "/chat/completions") + "/models"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, modelsURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+b.apiKey)

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to list models: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("model listing failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var listing struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return fmt.Errorf("failed to decode model listing: %w", err)
	}

	for _, m := range listing.Data {
		if m.ID == b.model {
			return nil
		}
	}
	return fmt.Errorf("model %q not found", b.model)
}
