package gemini_provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/theplow-kwak/mcp-confluence/config"
	"github.com/theplow-kwak/mcp-confluence/models"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Client implements the provider interface using Google's generateContent
// API with function declarations.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	maxTokens  int
	httpClient *http.Client
}

// NewClient creates a new Gemini client
func NewClient(cfg config.LLMConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = "gemini-1.5-flash"
	}
	return &Client{
		apiKey:     cfg.APIKey,
		model:      model,
		baseURL:    strings.TrimRight(baseURL, "/"),
		maxTokens:  cfg.MaxTokens,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// wire types for generateContent

type part struct {
	Text             string            `json:"text,omitempty"`
	FunctionCall     *functionCall     `json:"functionCall,omitempty"`
	FunctionResponse *functionResponse `json:"functionResponse,omitempty"`
}

type functionCall struct {
	Name string                 `json:"name"`
	Args map[string]interface{} `json:"args,omitempty"`
}

type functionResponse struct {
	Name     string                 `json:"name"`
	Response map[string]interface{} `json:"response"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents          []content   `json:"contents"`
	SystemInstruction *content    `json:"systemInstruction,omitempty"`
	Tools             []toolDecls `json:"tools,omitempty"`
	GenerationConfig  *genConfig  `json:"generationConfig,omitempty"`
}

type toolDecls struct {
	FunctionDeclarations []functionDecl `json:"functionDeclarations"`
}

type functionDecl struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Parameters  map[string]interface{} `json:"parameters,omitempty"`
}

type genConfig struct {
	MaxOutputTokens int `json:"maxOutputTokens,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Converse maps the neutral history onto Gemini contents and decodes the
// first candidate back into either text or tool calls. Gemini does not tag
// function calls with ids, so one is minted locally for correlation.
func (c *Client) Converse(ctx context.Context, history []models.Message, tools []models.ToolDef) (models.Reply, error) {
	req := generateRequest{GenerationConfig: &genConfig{MaxOutputTokens: c.maxTokens}}
	for _, m := range history {
		switch m.Role {
		case models.RoleSystem:
			req.SystemInstruction = &content{Parts: []part{{Text: m.Content}}}
		case models.RoleUser:
			req.Contents = append(req.Contents, content{Role: "user", Parts: []part{{Text: m.Content}}})
		case models.RoleAssistant:
			ct := content{Role: "model"}
			if m.Content != "" {
				ct.Parts = append(ct.Parts, part{Text: m.Content})
			}
			for _, tc := range m.ToolCalls {
				ct.Parts = append(ct.Parts, part{FunctionCall: &functionCall{Name: tc.Name, Args: tc.Arguments}})
			}
			req.Contents = append(req.Contents, ct)
		case models.RoleTool:
			req.Contents = append(req.Contents, content{Role: "user", Parts: []part{{
				FunctionResponse: &functionResponse{
					Name:     m.Name,
					Response: map[string]interface{}{"content": m.Content},
				},
			}}})
		}
	}

	if len(tools) > 0 {
		decls := make([]functionDecl, 0, len(tools))
		for _, t := range tools {
			decls = append(decls, functionDecl{Name: t.Name, Description: t.Description, Parameters: t.Parameters})
		}
		req.Tools = []toolDecls{{FunctionDeclarations: decls}}
	}

	ct, err := c.sendRequest(ctx, req)
	if err != nil {
		return models.Reply{}, err
	}

	var reply models.Reply
	for _, p := range ct.Parts {
		if p.FunctionCall != nil {
			reply.ToolCalls = append(reply.ToolCalls, models.ToolCall{
				ID:        uuid.NewString(),
				Name:      p.FunctionCall.Name,
				Arguments: p.FunctionCall.Args,
			})
			continue
		}
		reply.Text += p.Text
	}
	if len(reply.ToolCalls) > 0 {
		reply.Text = ""
	}
	return reply, nil
}

// Generate issues a single completion with no tools.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	ct, err := c.sendRequest(ctx, generateRequest{
		Contents:         []content{{Role: "user", Parts: []part{{Text: prompt}}}},
		GenerationConfig: &genConfig{MaxOutputTokens: c.maxTokens},
	})
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, p := range ct.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String(), nil
}

func (c *Client) sendRequest(ctx context.Context, reqBody generateRequest) (content, error) {
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return content{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	u := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, "POST", u, bytes.NewBuffer(jsonData))
	if err != nil {
		return content{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return content{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(resp.Body)
		return content{}, fmt.Errorf("Gemini API returned status %d: %s", resp.StatusCode, strings.TrimSpace(buf.String()))
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return content{}, fmt.Errorf("failed to parse response: %w", err)
	}
	if len(out.Candidates) == 0 {
		return content{}, fmt.Errorf("no candidates in response")
	}
	return out.Candidates[0].Content, nil
}
