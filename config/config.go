package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// LLM providers understood by the generation backend factory.
const (
	ProviderOllama   = "ollama"
	ProviderDeepSeek = "deepseek"
	ProviderOpenAI   = "openai"
	ProviderGemini   = "gemini"
	ProviderStatic   = "static"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerPort  string
	ServerHost  string
	CORSOrigins []string

	// Knowledge table: file path, s3://bucket/key, or a postgres:// / sqlite:// DSN
	KnowledgeSource string
	KnowledgeTable  string
	AWSRegion       string

	// Generation backend
	LLMProvider   string
	LLMModel      string
	LLMAPIURL     string
	LLMAPIKey     string
	LLMStaticText string // returned verbatim by the static provider
	Generation    GenerationSettings

	// Redis configuration, optional
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisURL      string
	CacheTTL      time.Duration
	RateLimit     int
	RateWindow    time.Duration

	LogLevel string
}

// GenerationSettings bounds each model call.
type GenerationSettings struct {
	MaxNewTokens      int
	TopK              int
	Temperature       float64
	NoRepeatNGramSize int
	Timeout           time.Duration
}

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	env := GetEnvironment()

	// A missing .env file is normal outside development
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	r := &envReader{}
	cfg := &Config{
		ServerPort:      r.str("SERVER_PORT", "8080"),
		ServerHost:      r.str("SERVER_HOST", "0.0.0.0"),
		CORSOrigins:     r.list("CORS_ORIGINS", []string{"http://localhost:5173"}),
		KnowledgeSource: r.str("KNOWLEDGE_SOURCE", "foods.csv"),
		KnowledgeTable:  r.str("KNOWLEDGE_TABLE", "foods"),
		AWSRegion:       r.str("AWS_REGION", ""),
		LLMProvider:     strings.ToLower(r.str("LLM_PROVIDER", ProviderOllama)),
		LLMModel:        r.str("LLM_MODEL", "my-food-chatbot-model-v3"),
		LLMAPIURL:       r.str("LLM_API_URL", ""),
		LLMStaticText:   r.str("LLM_STATIC_TEXT", ""),
		Generation: GenerationSettings{
			MaxNewTokens:      r.integer("GEN_MAX_NEW_TOKENS", 60),
			TopK:              r.integer("GEN_TOP_K", 50),
			Temperature:       r.float("GEN_TEMPERATURE", 0.7),
			NoRepeatNGramSize: r.integer("GEN_NO_REPEAT_NGRAM", 2),
			Timeout:           r.duration("GEN_TIMEOUT", 30*time.Second),
		},
		RedisHost:  r.str("REDIS_HOST", ""),
		RedisPort:  r.str("REDIS_PORT", "6379"),
		RedisDB:    r.integer("REDIS_DB", 0),
		RedisURL:   r.str("REDIS_URL", ""),
		CacheTTL:   r.duration("CACHE_TTL", 0),
		RateLimit:  r.integer("RATE_LIMIT", 30),
		RateWindow: r.duration("RATE_WINDOW", time.Minute),
		LogLevel:   r.str("LOG_LEVEL", "info"),
	}
	if len(r.errs) > 0 {
		return nil, joinValidation(r.errs)
	}

	// Sensitive values: CI passes them as plain environment variables,
	// everywhere else they may also come from Docker secrets.
	if env == CI {
		cfg.LLMAPIKey = os.Getenv("LLM_API_KEY")
		cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	} else {
		key, err := secretOrEnv("llm_api_key", "LLM_API_KEY")
		if err != nil {
			return nil, err
		}
		cfg.LLMAPIKey = key
		cfg.RedisPassword, err = secretOrEnv("redis_password", "REDIS_PASSWORD")
		if err != nil {
			return nil, err
		}
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

// secretOrEnv reads a value from the environment, a *_FILE path, or the secrets directory, in that order
func secretOrEnv(secret, envVar string) (string, error) {
	if v := os.Getenv(envVar); v != "" {
		return v, nil
	}
	if path := os.Getenv(envVar + "_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read %s_FILE: %w", envVar, err)
		}
		return strings.TrimSpace(string(data)), nil
	}
	return readSecret(secret), nil
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	if data, err := os.ReadFile(filepath.Join(secretsDir, name)); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

// envReader reads typed environment variables and collects parse failures.
type envReader struct {
	errs []ValidationError
}

func (r *envReader) str(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func (r *envReader) list(key string, def []string) []string {
	v := r.str(key, "")
	if v == "" {
		return def
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func (r *envReader) integer(key string, def int) int {
	v := r.str(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.errs = append(r.errs, ValidationError{Field: key, Message: fmt.Sprintf("not an integer: %q", v)})
		return def
	}
	return n
}

func (r *envReader) float(key string, def float64) float64 {
	v := r.str(key, "")
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		r.errs = append(r.errs, ValidationError{Field: key, Message: fmt.Sprintf("not a number: %q", v)})
		return def
	}
	return f
}

func (r *envReader) duration(key string, def time.Duration) time.Duration {
	v := r.str(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.errs = append(r.errs, ValidationError{Field: key, Message: fmt.Sprintf("not a duration: %q", v)})
		return def
	}
	return d
}
