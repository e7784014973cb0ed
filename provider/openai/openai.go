package openai_provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/theplow-kwak/mcp-confluence/config"
	"github.com/theplow-kwak/mcp-confluence/models"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Client implements the provider interface using OpenAI's chat completions
// API, including its function-calling protocol.
type Client struct {
	apiKey      string
	model       string
	baseURL     string
	temperature float64
	maxTokens   int
	httpClient  *http.Client
}

// NewClient creates a new OpenAI client
func NewClient(cfg config.LLMConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = "gpt-4o"
	}
	return &Client{
		apiKey:      cfg.APIKey,
		model:       model,
		baseURL:     strings.TrimRight(baseURL, "/"),
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
	}
}

// wire types for the chat completions endpoint

type chatMessage struct {
	Role       string         `json:"role"`
	Content    string         `json:"content"`
	ToolCalls  []wireToolCall `json:"tool_calls,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
	Name       string         `json:"name,omitempty"`
}

type wireToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function wireFunction `json:"function"`
}

type wireFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"` // JSON-encoded argument object
}

type wireTool struct {
	Type     string        `json:"type"`
	Function wireToolParam `json:"function"`
}

type wireToolParam struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Parameters  map[string]interface{} `json:"parameters,omitempty"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Tools       []wireTool    `json:"tools,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Converse sends the accumulated history plus tool declarations and returns
// either final text or the model's requested tool calls.
func (c *Client) Converse(ctx context.Context, history []models.Message, tools []models.ToolDef) (models.Reply, error) {
	messages := make([]chatMessage, 0, len(history))
	for _, m := range history {
		messages = append(messages, toWire(m))
	}

	var wireTools []wireTool
	for _, t := range tools {
		wireTools = append(wireTools, wireTool{
			Type: "function",
			Function: wireToolParam{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		})
	}

	msg, err := c.sendRequest(ctx, chatRequest{
		Model:       c.model,
		Messages:    messages,
		Tools:       wireTools,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return models.Reply{}, err
	}

	if len(msg.ToolCalls) > 0 {
		calls := make([]models.ToolCall, 0, len(msg.ToolCalls))
		for _, tc := range msg.ToolCalls {
			args := map[string]interface{}{}
			if tc.Function.Arguments != "" {
				if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
					return models.Reply{}, fmt.Errorf("failed to parse tool arguments for %s: %w", tc.Function.Name, err)
				}
			}
			calls = append(calls, models.ToolCall{ID: tc.ID, Name: tc.Function.Name, Arguments: args})
		}
		return models.Reply{ToolCalls: calls}, nil
	}
	return models.Reply{Text: msg.Content}, nil
}

// Generate issues a single completion with no tools.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	msg, err := c.sendRequest(ctx, chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return "", err
	}
	return msg.Content, nil
}

func toWire(m models.Message) chatMessage {
	out := chatMessage{Role: m.Role, Content: m.Content}
	if m.Role == models.RoleTool {
		out.ToolCallID = m.CallID
		out.Name = m.Name
	}
	for _, tc := range m.ToolCalls {
		args, _ := json.Marshal(tc.Arguments)
		out.ToolCalls = append(out.ToolCalls, wireToolCall{
			ID:   tc.ID,
			Type: "function",
			Function: wireFunction{
				Name:      tc.Name,
				Arguments: string(args),
			},
		})
	}
	return out
}

// sendRequest sends a request to the OpenAI API
func (c *Client) sendRequest(ctx context.Context, reqBody chatRequest) (chatMessage, error) {
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return chatMessage{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return chatMessage{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return chatMessage{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(resp.Body)
		return chatMessage{}, fmt.Errorf("OpenAI API returned status %d: %s", resp.StatusCode, strings.TrimSpace(buf.String()))
	}

	var openaiResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&openaiResp); err != nil {
		return chatMessage{}, fmt.Errorf("failed to parse response: %w", err)
	}
	if len(openaiResp.Choices) == 0 {
		return chatMessage{}, fmt.Errorf("no choices in response")
	}
	return openaiResp.Choices[0].Message, nil
}
