package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/theplow-kwak/mcp-confluence/confluence"
	"github.com/theplow-kwak/mcp-confluence/internal/telemetry"
	"github.com/theplow-kwak/mcp-confluence/models"
)

// searchExpand requests bodies and version numbers with every search so
// results are immediately usable for a follow-up update or summarization.
const searchExpand = "body.storage,version"

// Backend is the document backend collaborator contract.
type Backend interface {
	GetPage(ctx context.Context, id string, expand string) (models.Page, error)
	CreatePage(ctx context.Context, req models.PageCreate) (models.Page, error)
	UpdatePage(ctx context.Context, id string, req models.PageUpdate) (models.Page, error)
	DeletePage(ctx context.Context, id string) error
	SearchPages(ctx context.Context, cql string, expand string) ([]models.Page, error)
}

// Summarizer is the tool-free model call used by the report pipeline.
type Summarizer interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ActionResult is the outcome of one executed tool call. Content is the
// serialized payload appended to history for the model to read. Failures
// are results too, never Go errors; the model is expected to self-correct
// or report them.
type ActionResult struct {
	Name    string
	Content string
	Draft   *models.Draft
	IsError bool
}

type handlerFunc func(ctx context.Context, args map[string]interface{}) ActionResult

// Executor resolves tool calls to handlers and runs them against the
// backend.
type Executor struct {
	backend    Backend
	summarizer Summarizer
	handlers   map[string]handlerFunc
	logger     *log.Logger
}

func NewExecutor(backend Backend, summarizer Summarizer, logger *log.Logger) *Executor {
	if logger == nil {
		logger = log.New(log.Writer(), "[EXEC] ", log.LstdFlags)
	}
	e := &Executor{backend: backend, summarizer: summarizer, logger: logger}
	e.handlers = map[string]handlerFunc{
		ToolSearchPages: e.executeSearch,
		ToolCreatePage:  e.executeCreate,
		ToolUpdatePage:  e.executeUpdate,
		ToolDraftReport: e.executeDraftReport,
	}
	return e
}

// Execute runs one tool call. An unknown tool name produces an error-shaped
// result so the conversation can continue.
func (e *Executor) Execute(ctx context.Context, call models.ToolCall) ActionResult {
	handler, ok := e.handlers[call.Name]
	if !ok {
		e.logger.Printf("unknown tool requested: %s", call.Name)
		return failure(call.Name, fmt.Sprintf("unknown tool %q; available tools: search_pages, create_page, update_page, draft_summary_report", call.Name))
	}
	telemetry.ToolExecutions.WithLabelValues(call.Name).Inc()
	return handler(ctx, call.Arguments)
}

func (e *Executor) executeSearch(ctx context.Context, args map[string]interface{}) ActionResult {
	cql := stringArg(args, "cql")
	if cql == "" {
		return failure(ToolSearchPages, "search_pages requires a cql argument")
	}
	pages, err := e.backend.SearchPages(ctx, cql, searchExpand)
	if err != nil {
		return backendFailure(ToolSearchPages, err)
	}
	// an empty result set is a valid outcome, distinct from a failure
	return success(ToolSearchPages, models.SearchResult{Results: pages, Size: len(pages)})
}

func (e *Executor) executeCreate(ctx context.Context, args map[string]interface{}) ActionResult {
	req := models.PageCreate{
		SpaceKey: stringArg(args, "space_key"),
		Title:    stringArg(args, "title"),
		Content:  stringArg(args, "content"),
		ParentID: stringArg(args, "parent_id"),
	}
	if req.SpaceKey == "" || req.Title == "" || req.Content == "" {
		return failure(ToolCreatePage, "create_page requires space_key, title and content")
	}
	page, err := e.backend.CreatePage(ctx, req)
	if err != nil {
		return backendFailure(ToolCreatePage, err)
	}
	return success(ToolCreatePage, page)
}

func (e *Executor) executeUpdate(ctx context.Context, args map[string]interface{}) ActionResult {
	id := stringArg(args, "page_id")
	title := stringArg(args, "title")
	content := stringArg(args, "content")
	if id == "" || title == "" || content == "" {
		return failure(ToolUpdatePage, "update_page requires page_id, title and content")
	}

	version := intArg(args, "version")
	if version <= 0 {
		// compatibility shim: the catalog asks the model to always supply
		// the known version, but a missing one falls back to reading the
		// current version before writing
		page, err := e.backend.GetPage(ctx, id, "version")
		if err != nil {
			return backendFailure(ToolUpdatePage, err)
		}
		version = page.Version.Number
	}

	page, err := e.backend.UpdatePage(ctx, id, models.PageUpdate{Title: title, Content: content, Version: version})
	if err != nil {
		return backendFailure(ToolUpdatePage, err)
	}
	return success(ToolUpdatePage, page)
}

func success(name string, payload interface{}) ActionResult {
	b, err := json.Marshal(payload)
	if err != nil {
		return failure(name, fmt.Sprintf("failed to serialize result: %v", err))
	}
	return ActionResult{Name: name, Content: string(b)}
}

func failure(name, message string) ActionResult {
	b, _ := json.Marshal(map[string]string{"status": "failed", "message": message})
	return ActionResult{Name: name, Content: string(b), IsError: true}
}

// backendFailure preserves the backend's HTTP status alongside its message
// so the model sees what was rejected and why.
func backendFailure(name string, err error) ActionResult {
	payload := map[string]interface{}{"status": "failed", "message": err.Error()}
	var ae *confluence.APIError
	if errors.As(err, &ae) {
		payload["http_status"] = ae.StatusCode
	}
	b, _ := json.Marshal(payload)
	return ActionResult{Name: name, Content: string(b), IsError: true}
}

func stringArg(args map[string]interface{}, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

func intArg(args map[string]interface{}, key string) int {
	switch v := args[key].(type) {
	case float64: // JSON numbers decode as float64
		return int(v)
	case int:
		return v
	case json.Number:
		n, _ := v.Int64()
		return int(n)
	default:
		return 0
	}
}
