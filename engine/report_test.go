package engine

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/theplow-kwak/mcp-confluence/models"
)

func draftArgs() map[string]interface{} {
	return map[string]interface{}{
		"cql":            `label = "q1-notes"`,
		"space_key":      "DEV",
		"report_title":   "Q1 Summary",
		"summary_prompt": "summarize the key decisions",
	}
}

func TestDraftReportNoMatches(t *testing.T) {
	backend := &fakeBackend{} // search returns nothing
	exec := NewExecutor(backend, &fakeSummarizer{out: "unused"}, nil)

	result := exec.Execute(context.Background(), models.ToolCall{Name: ToolDraftReport, Arguments: draftArgs()})
	if result.Draft != nil {
		t.Fatalf("expected no draft for zero matches")
	}
	var payload struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal([]byte(result.Content), &payload); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if payload.Status != "failed" || payload.Message != "no matches" {
		t.Fatalf("expected failure-shaped no-matches result, got %+v", payload)
	}
	if len(backend.created) != 0 {
		t.Fatalf("no page may be created, got %+v", backend.created)
	}
}

func TestDraftReportAggregatesInBackendOrder(t *testing.T) {
	backend := &fakeBackend{pages: []models.Page{
		{Title: "A", Body: models.PageBody{Storage: models.PageStorage{Value: "x"}}},
		{Title: "B", Body: models.PageBody{Storage: models.PageStorage{Value: "y"}}},
	}}
	summarizer := &fakeSummarizer{out: "combined summary"}
	exec := NewExecutor(backend, summarizer, nil)

	result := exec.Execute(context.Background(), models.ToolCall{Name: ToolDraftReport, Arguments: draftArgs()})
	if result.Draft == nil {
		t.Fatalf("expected a draft: %q", result.Content)
	}

	blob := summarizer.prompt
	ia, ib := strings.Index(blob, "<h2>A</h2>"), strings.Index(blob, "<h2>B</h2>")
	if ia < 0 || ib < 0 || ia > ib {
		t.Fatalf("expected A before B in aggregated blob, got %q", blob)
	}
	ix, iy := strings.Index(blob, "x"), strings.Index(blob, "y")
	if ix < 0 || iy < 0 || ix > iy {
		t.Fatalf("expected both bodies in order in aggregated blob, got %q", blob)
	}
	if !strings.Contains(blob, "summarize the key decisions") {
		t.Fatalf("expected summary instructions in prompt, got %q", blob)
	}

	if result.Draft.Content != "combined summary" || result.Draft.Title != "Q1 Summary" || result.Draft.SpaceKey != "DEV" {
		t.Fatalf("unexpected draft: %+v", result.Draft)
	}
	if len(backend.created) != 0 {
		t.Fatalf("the pipeline must not persist the draft, got %+v", backend.created)
	}
}

func TestDraftReportMissingArguments(t *testing.T) {
	exec := NewExecutor(&fakeBackend{}, &fakeSummarizer{}, nil)

	args := draftArgs()
	delete(args, "summary_prompt")
	result := exec.Execute(context.Background(), models.ToolCall{Name: ToolDraftReport, Arguments: args})
	if !result.IsError {
		t.Fatalf("expected error-shaped result for missing arguments")
	}
}
