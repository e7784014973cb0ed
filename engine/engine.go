package engine

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/theplow-kwak/mcp-confluence/config"
	"github.com/theplow-kwak/mcp-confluence/internal/telemetry"
	"github.com/theplow-kwak/mcp-confluence/models"
	"github.com/theplow-kwak/mcp-confluence/session"
)

// DefaultSystemPrompt seeds every new session.
const DefaultSystemPrompt = `You are an assistant that operates a Confluence document backend on behalf of the user. Use the provided tools to search, create and update pages, and to draft summary reports. When updating a page, always pass the current version number you obtained from a search or lookup. Answer in plain language once the requested work is done.`

const defaultMaxTurns = 8

// TurnBudgetError reports that the model kept requesting tools past the
// round-trip budget.
type TurnBudgetError struct {
	Turns int
}

func (e *TurnBudgetError) Error() string {
	return fmt.Sprintf("model did not produce a final answer within %d round-trips", e.Turns)
}

// Result is the outcome of one full user turn: either final text or a
// report draft, never both.
type Result struct {
	SessionID string        `json:"session_id"`
	Text      string        `json:"response,omitempty"`
	Draft     *models.Draft `json:"draft,omitempty"`
}

// Engine drives the tool-calling conversation loop for one user turn at a
// time. Concurrent turns on distinct sessions are independent; the
// conversation store is the only shared state.
type Engine struct {
	provider     Conversationalist
	store        session.Store
	executor     *Executor
	maxTurns     int
	ttl          time.Duration
	systemPrompt string
	logger       *log.Logger
}

// Conversationalist is the model collaborator contract: one call returns
// either final text or one-or-more tool calls.
type Conversationalist interface {
	Converse(ctx context.Context, history []models.Message, tools []models.ToolDef) (models.Reply, error)
}

func New(p Conversationalist, store session.Store, executor *Executor, cfg config.EngineConfig, ttl time.Duration, logger *log.Logger) *Engine {
	maxTurns := cfg.MaxTurns
	if maxTurns <= 0 {
		maxTurns = defaultMaxTurns
	}
	systemPrompt := cfg.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}
	if logger == nil {
		logger = log.New(log.Writer(), "[ENGINE] ", log.LstdFlags)
	}
	return &Engine{
		provider:     p,
		store:        store,
		executor:     executor,
		maxTurns:     maxTurns,
		ttl:          ttl,
		systemPrompt: systemPrompt,
		logger:       logger,
	}
}

// ProcessQuery runs one user turn: load or mint the session, round-trip
// the model until it stops requesting tools, and persist the extended
// history. Tool calls within a round-trip run sequentially in the order
// the model issued them.
func (e *Engine) ProcessQuery(ctx context.Context, prompt, sessionID string) (Result, error) {
	start := time.Now()
	defer func() { telemetry.QueryDuration.Observe(time.Since(start).Seconds()) }()

	id, history, err := e.store.Ensure(ctx, sessionID, e.ttl)
	if err != nil {
		return Result{}, fmt.Errorf("session store: %w", err)
	}
	if len(history) == 0 {
		history = append(history, models.Message{Role: models.RoleSystem, Content: e.systemPrompt})
	}
	history = append(history, models.Message{Role: models.RoleUser, Content: prompt})

	catalog := Catalog()
	for turn := 0; turn < e.maxTurns; turn++ {
		reply, err := e.provider.Converse(ctx, history, catalog)
		if err != nil {
			return Result{}, fmt.Errorf("model call failed: %w", err)
		}
		telemetry.ModelRoundTrips.Inc()

		if len(reply.ToolCalls) == 0 {
			history = append(history, models.Message{Role: models.RoleAssistant, Content: reply.Text})
			if err := e.store.Put(ctx, id, history, e.ttl); err != nil {
				return Result{}, fmt.Errorf("session store: %w", err)
			}
			return Result{SessionID: id, Text: reply.Text}, nil
		}

		history = append(history, models.Message{Role: models.RoleAssistant, ToolCalls: reply.ToolCalls})
		for _, call := range reply.ToolCalls {
			e.logger.Printf("executing tool %s (session %s)", call.Name, id)
			result := e.executor.Execute(ctx, call)
			history = append(history, models.Message{
				Role:    models.RoleTool,
				CallID:  call.ID,
				Name:    call.Name,
				Content: result.Content,
			})
			if result.Draft != nil {
				// a draft goes straight to the caller for human review,
				// not back to the model
				if err := e.store.Put(ctx, id, history, e.ttl); err != nil {
					return Result{}, fmt.Errorf("session store: %w", err)
				}
				return Result{SessionID: id, Draft: result.Draft}, nil
			}
		}
	}

	return Result{}, &TurnBudgetError{Turns: e.maxTurns}
}
