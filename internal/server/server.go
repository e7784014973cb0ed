package server

import (
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/theplow-kwak/mcp-confluence/config"
	"github.com/theplow-kwak/mcp-confluence/confluence"
	"github.com/theplow-kwak/mcp-confluence/engine"
	"github.com/theplow-kwak/mcp-confluence/provider"
	"github.com/theplow-kwak/mcp-confluence/session"
)

// Run wires the collaborators together and serves the HTTP API.
func Run(cfg *config.Config) error {
	client, err := confluence.New(cfg.Confluence)
	if err != nil {
		return fmt.Errorf("confluence client: %w", err)
	}
	llm, err := provider.New(cfg.LLM)
	if err != nil {
		return fmt.Errorf("llm provider: %w", err)
	}
	store, err := session.NewStore(cfg.Session)
	if err != nil {
		return fmt.Errorf("session store: %w", err)
	}

	executor := engine.NewExecutor(client, llm, nil)
	eng := engine.New(llm, store, executor, cfg.Engine, cfg.Session.TTL, nil)

	e := newEcho()
	if cfg.Telemetry.Enabled {
		e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	}

	ph := &PagesHandler{Client: client}
	ph.Register(e)
	qh := &QueryHandler{Engine: eng}
	qh.Register(e)

	return e.Start(cfg.Server.Address)
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	// Unified HTTP error handler with structured JSON and logging
	baseLogger := log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		baseLogger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]interface{}{"error": msg})
		}
	}

	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"message": "Welcome to MCP Server for Confluence"})
	})
	return e
}
