package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/theplow-kwak/mcp-confluence/config"
	"github.com/theplow-kwak/mcp-confluence/models"
	gemini_provider "github.com/theplow-kwak/mcp-confluence/provider/gemini"
	openai_provider "github.com/theplow-kwak/mcp-confluence/provider/openai"
)

// Client represents different LLM providers
type Client string

const (
	OpenAI    Client = "openai"
	Gemini    Client = "gemini"
	Anthropic Client = "anthropic"
)

// Provider is the interface all LLM implementations must satisfy. Converse
// drives the tool-calling conversation; Generate issues a plain one-shot
// completion with no tools (used by the report pipeline).
type Provider interface {
	Converse(ctx context.Context, history []models.Message, tools []models.ToolDef) (models.Reply, error)
	Generate(ctx context.Context, prompt string) (string, error)
}

// New creates an LLM provider based on the provided configuration. A
// missing API key is a configuration error, fatal at startup.
func New(cfg config.LLMConfig) (Provider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("llm.api_key not set for provider %q", cfg.Provider)
	}
	switch Client(cfg.Provider) {
	case OpenAI:
		return openai_provider.NewClient(cfg), nil
	case Gemini:
		return gemini_provider.NewClient(cfg), nil
	case Anthropic:
		return nil, errors.New("anthropic client not implemented yet")
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
