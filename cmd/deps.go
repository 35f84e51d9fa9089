package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/viper"

	"github.com/joescharf/adosprint/internal/devops"
	"github.com/joescharf/adosprint/internal/llm"
	"github.com/joescharf/adosprint/internal/sprints"
)

// newLogger returns a text slog logger on stderr; --verbose enables debug.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func newDevopsClient(logger *slog.Logger) *devops.Client {
	return devops.NewClient(devops.Config{
		BaseURL:      viper.GetString("base_url"),
		Organization: viper.GetString("org"),
		Project:      viper.GetString("project"),
		Team:         viper.GetString("team"),
	}, logger)
}

func newSprintService(logger *slog.Logger) *sprints.Service {
	return sprints.NewService(newDevopsClient(logger), logger)
}

// localPAT returns the PAT used by terminal commands and the MCP server.
// The HTTP API never uses it.
func localPAT() (string, error) {
	pat := viper.GetString("pat")
	if pat == "" {
		return "", fmt.Errorf("no PAT configured (set AZURE_PAT or pat in config)")
	}
	return pat, nil
}

// newLLMClient creates an LLM client from config/env, or returns nil if no API key is configured.
func newLLMClient() *llm.Client {
	apiKey := viper.GetString("anthropic.api_key")
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil
	}
	return llm.NewClient(apiKey, viper.GetString("anthropic.model"))
}
