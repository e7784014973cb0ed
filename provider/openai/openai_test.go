package openai_provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/theplow-kwak/mcp-confluence/config"
	"github.com/theplow-kwak/mcp-confluence/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.LLMConfig{
		Provider: "openai",
		APIKey:   "sk-test",
		Model:    "gpt-4o",
		BaseURL:  srv.URL,
		Timeout:  5 * time.Second,
	})
}

func TestConverseSendsToolsAndHistory(t *testing.T) {
	var got map[string]interface{}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Fatalf("missing bearer auth")
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"hello"}}]}`))
	})

	history := []models.Message{
		{Role: models.RoleSystem, Content: "sys"},
		{Role: models.RoleUser, Content: "hi"},
	}
	tools := []models.ToolDef{{
		Name:        "search_pages",
		Description: "search",
		Parameters:  map[string]interface{}{"type": "object"},
	}}

	reply, err := client.Converse(context.Background(), history, tools)
	if err != nil {
		t.Fatalf("Converse: %v", err)
	}
	if reply.Text != "hello" || len(reply.ToolCalls) != 0 {
		t.Fatalf("unexpected reply: %+v", reply)
	}

	messages := got["messages"].([]interface{})
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
	wireTools := got["tools"].([]interface{})
	fn := wireTools[0].(map[string]interface{})["function"].(map[string]interface{})
	if fn["name"] != "search_pages" {
		t.Fatalf("unexpected tool wire format: %+v", wireTools)
	}
}

func TestConverseParsesToolCalls(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{
			"role":"assistant","content":"",
			"tool_calls":[{"id":"call_abc","type":"function","function":{"name":"create_page","arguments":"{\"space_key\":\"DEV\",\"title\":\"T\"}"}}]
		}}]}`))
	})

	reply, err := client.Converse(context.Background(), []models.Message{{Role: models.RoleUser, Content: "go"}}, nil)
	if err != nil {
		t.Fatalf("Converse: %v", err)
	}
	if reply.Text != "" {
		t.Fatalf("tool-call reply must not carry text, got %q", reply.Text)
	}
	if len(reply.ToolCalls) != 1 {
		t.Fatalf("expected 1 tool call, got %+v", reply.ToolCalls)
	}
	call := reply.ToolCalls[0]
	if call.ID != "call_abc" || call.Name != "create_page" {
		t.Fatalf("unexpected call: %+v", call)
	}
	if call.Arguments["space_key"] != "DEV" || call.Arguments["title"] != "T" {
		t.Fatalf("arguments not decoded: %+v", call.Arguments)
	}
}

func TestConverseRoundTripsToolResults(t *testing.T) {
	var got map[string]interface{}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"done"}}]}`))
	})

	history := []models.Message{
		{Role: models.RoleUser, Content: "go"},
		{Role: models.RoleAssistant, ToolCalls: []models.ToolCall{{
			ID: "call_1", Name: "search_pages",
			Arguments: map[string]interface{}{"cql": "x"},
		}}},
		{Role: models.RoleTool, CallID: "call_1", Name: "search_pages", Content: `{"results":[]}`},
	}
	if _, err := client.Converse(context.Background(), history, nil); err != nil {
		t.Fatalf("Converse: %v", err)
	}

	messages := got["messages"].([]interface{})
	assistant := messages[1].(map[string]interface{})
	calls := assistant["tool_calls"].([]interface{})
	fn := calls[0].(map[string]interface{})["function"].(map[string]interface{})
	if fn["name"] != "search_pages" {
		t.Fatalf("assistant tool call not serialized: %+v", assistant)
	}
	var args map[string]interface{}
	if err := json.Unmarshal([]byte(fn["arguments"].(string)), &args); err != nil || args["cql"] != "x" {
		t.Fatalf("arguments not re-encoded as JSON string: %v %v", fn["arguments"], err)
	}
	toolMsg := messages[2].(map[string]interface{})
	if toolMsg["role"] != "tool" || toolMsg["tool_call_id"] != "call_1" {
		t.Fatalf("tool result not correlated: %+v", toolMsg)
	}
}

func TestGenerate(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if _, hasTools := req["tools"]; hasTools {
			t.Fatalf("Generate must not send tools")
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"the summary"}}]}`))
	})

	out, err := client.Generate(context.Background(), "summarize this")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out != "the summary" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestAPIErrorSurfacesStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"rate limited"}}`, http.StatusTooManyRequests)
	})

	if _, err := client.Generate(context.Background(), "x"); err == nil {
		t.Fatalf("expected error for non-200 response")
	}
}
