package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/theplow-kwak/mcp-confluence/engine"
)

// QueryEngine is the orchestration boundary exposed to the HTTP shell.
type QueryEngine interface {
	ProcessQuery(ctx context.Context, prompt, sessionID string) (engine.Result, error)
}

// QueryHandler routes natural-language prompts into the orchestration
// engine.
type QueryHandler struct {
	Engine QueryEngine
}

func (h *QueryHandler) Register(e *echo.Echo) {
	e.POST("/query", h.query)
}

func (h *QueryHandler) query(c echo.Context) error {
	var req struct {
		Prompt    string `json:"prompt"`
		SessionID string `json:"session_id"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Prompt == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "prompt is required")
	}

	result, err := h.Engine.ProcessQuery(c.Request().Context(), req.Prompt, req.SessionID)
	if err != nil {
		var tbe *engine.TurnBudgetError
		if errors.As(err, &tbe) {
			return echo.NewHTTPError(http.StatusBadGateway, tbe.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, result)
}
