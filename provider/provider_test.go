package provider

import (
	"strings"
	"testing"

	"github.com/theplow-kwak/mcp-confluence/config"
)

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New(config.LLMConfig{Provider: "openai"})
	if err == nil || !strings.Contains(err.Error(), "api_key") {
		t.Fatalf("expected missing-key error, got %v", err)
	}
}

func TestNewSelectsProvider(t *testing.T) {
	for _, name := range []string{"openai", "gemini"} {
		p, err := New(config.LLMConfig{Provider: name, APIKey: "k"})
		if err != nil {
			t.Fatalf("New(%s): %v", name, err)
		}
		if p == nil {
			t.Fatalf("New(%s): nil provider", name)
		}
	}
}

func TestNewRejectsUnknownProvider(t *testing.T) {
	if _, err := New(config.LLMConfig{Provider: "oracle", APIKey: "k"}); err == nil {
		t.Fatalf("expected error for unknown provider")
	}
}

func TestNewAnthropicNotImplemented(t *testing.T) {
	if _, err := New(config.LLMConfig{Provider: "anthropic", APIKey: "k"}); err == nil {
		t.Fatalf("expected not-implemented error")
	}
}
