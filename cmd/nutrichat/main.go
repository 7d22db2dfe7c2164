package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/pageza/nutrichat/backend/config"
	"github.com/pageza/nutrichat/backend/internal/logging"
)

var (
	verbose  bool
	source   string
	provider string
	model    string

	cfg    *config.Config
	logger zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "nutrichat",
	Short: "Dietary advice for common health conditions",
	Long: `nutrichat answers "can I eat X?" questions for a chosen health condition.

Advice comes from a curated knowledge table (CSV file, S3 object or database
table) and is phrased by a language model. Configuration is read from the
environment and an optional .env file; flags override it.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = loadConfig()
		if err != nil {
			return err
		}
		level := cfg.LogLevel
		if verbose {
			level = "debug"
		}
		logger = logging.NewWithWriter(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()}, level)
		return nil
	},
}

// loadConfig reads the environment and applies flag overrides.
func loadConfig() (*config.Config, error) {
	if source != "" {
		os.Setenv("KNOWLEDGE_SOURCE", source)
	}
	if provider != "" {
		os.Setenv("LLM_PROVIDER", provider)
	}
	if model != "" {
		os.Setenv("LLM_MODEL", model)
	}
	c, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return c, nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&source, "source", "", "Knowledge source: CSV path, s3://bucket/key or database DSN (overrides KNOWLEDGE_SOURCE)")
	rootCmd.PersistentFlags().StringVar(&provider, "provider", "", "Generation provider: ollama, deepseek, openai, gemini or static (overrides LLM_PROVIDER)")
	rootCmd.PersistentFlags().StringVar(&model, "model", "", "Model name (overrides LLM_MODEL)")

	rootCmd.AddCommand(conditionsCmd, askCmd, serveCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
