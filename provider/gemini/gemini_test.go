package gemini_provider

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
		Provider: "gemini",
		APIKey:   "g-test",
		Model:    "gemini-1.5-flash",
		BaseURL:  srv.URL,
		Timeout:  5 * time.Second,
	})
}

func TestConverseMapsHistory(t *testing.T) {
	var got map[string]interface{}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/gemini-1.5-flash:generateContent" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "g-test" {
			t.Fatalf("missing api key")
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"hi there"}]}}]}`))
	})

	history := []models.Message{
		{Role: models.RoleSystem, Content: "sys prompt"},
		{Role: models.RoleUser, Content: "hello"},
		{Role: models.RoleAssistant, Content: "what space?"},
		{Role: models.RoleUser, Content: "DEV"},
	}
	reply, err := client.Converse(context.Background(), history, []models.ToolDef{{Name: "search_pages"}})
	if err != nil {
		t.Fatalf("Converse: %v", err)
	}
	if reply.Text != "hi there" {
		t.Fatalf("unexpected reply: %+v", reply)
	}

	// the system message becomes systemInstruction, not a content entry
	si := got["systemInstruction"].(map[string]interface{})
	parts := si["parts"].([]interface{})
	if parts[0].(map[string]interface{})["text"] != "sys prompt" {
		t.Fatalf("unexpected systemInstruction: %+v", si)
	}
	contents := got["contents"].([]interface{})
	if len(contents) != 3 {
		t.Fatalf("expected 3 contents, got %d", len(contents))
	}
	if contents[1].(map[string]interface{})["role"] != "model" {
		t.Fatalf("assistant message must map to model role: %+v", contents[1])
	}
	tools := got["tools"].([]interface{})
	decls := tools[0].(map[string]interface{})["functionDeclarations"].([]interface{})
	if decls[0].(map[string]interface{})["name"] != "search_pages" {
		t.Fatalf("unexpected tool declarations: %+v", tools)
	}
}

func TestConverseParsesFunctionCalls(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[
			{"functionCall":{"name":"update_page","args":{"page_id":"42","version":5}}}
		]}}]}`))
	})

	reply, err := client.Converse(context.Background(), []models.Message{{Role: models.RoleUser, Content: "go"}}, nil)
	if err != nil {
		t.Fatalf("Converse: %v", err)
	}
	if len(reply.ToolCalls) != 1 {
		t.Fatalf("expected 1 tool call, got %+v", reply)
	}
	call := reply.ToolCalls[0]
	if call.Name != "update_page" || call.Arguments["page_id"] != "42" {
		t.Fatalf("unexpected call: %+v", call)
	}
	if call.ID == "" {
		t.Fatalf("a correlation id must be minted for gemini calls")
	}
	if reply.Text != "" {
		t.Fatalf("tool-call reply must not carry text")
	}
}

func TestConverseSendsFunctionResponses(t *testing.T) {
	var got map[string]interface{}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"ok"}]}}]}`))
	})

	history := []models.Message{
		{Role: models.RoleUser, Content: "go"},
		{Role: models.RoleAssistant, ToolCalls: []models.ToolCall{{ID: "c1", Name: "search_pages", Arguments: map[string]interface{}{"cql": "x"}}}},
		{Role: models.RoleTool, CallID: "c1", Name: "search_pages", Content: `{"results":[]}`},
	}
	if _, err := client.Converse(context.Background(), history, nil); err != nil {
		t.Fatalf("Converse: %v", err)
	}

	contents := got["contents"].([]interface{})
	last := contents[len(contents)-1].(map[string]interface{})
	parts := last["parts"].([]interface{})
	fr := parts[0].(map[string]interface{})["functionResponse"].(map[string]interface{})
	if fr["name"] != "search_pages" {
		t.Fatalf("unexpected functionResponse: %+v", fr)
	}
}

func TestGenerate(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"part one "},{"text":"part two"}]}}]}`))
	})

	out, err := client.Generate(context.Background(), "summarize")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out != "part one part two" {
		t.Fatalf("unexpected output %q", out)
	}
}
