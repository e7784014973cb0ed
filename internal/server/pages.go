package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/theplow-kwak/mcp-confluence/confluence"
	"github.com/theplow-kwak/mcp-confluence/models"
)

// PagesClient is the backend surface the CRUD routes need.
type PagesClient interface {
	GetPage(ctx context.Context, id string, expand string) (models.Page, error)
	CreatePage(ctx context.Context, req models.PageCreate) (models.Page, error)
	UpdatePage(ctx context.Context, id string, req models.PageUpdate) (models.Page, error)
	DeletePage(ctx context.Context, id string) error
	SearchPages(ctx context.Context, cql string, expand string) ([]models.Page, error)
}

// PagesHandler exposes the thin CRUD wrapper over the Confluence client.
type PagesHandler struct {
	Client PagesClient
}

func (h *PagesHandler) Register(e *echo.Echo) {
	e.POST("/pages", h.create)
	e.GET("/pages/search", h.search)
	e.GET("/pages/:id", h.get)
	e.PUT("/pages/:id", h.update)
	e.DELETE("/pages/:id", h.delete)
	e.POST("/drafts/publish", h.publish)
}

func (h *PagesHandler) create(c echo.Context) error {
	var req models.PageCreate
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.SpaceKey == "" || req.Title == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "space_key and title are required")
	}
	page, err := h.Client.CreatePage(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, page)
}

func (h *PagesHandler) get(c echo.Context) error {
	page, err := h.Client.GetPage(c.Request().Context(), c.Param("id"), c.QueryParam("expand"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *PagesHandler) search(c echo.Context) error {
	cql := c.QueryParam("cql")
	if cql == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "cql query parameter is required")
	}
	pages, err := h.Client.SearchPages(c.Request().Context(), cql, c.QueryParam("expand"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, models.SearchResult{Results: pages, Size: len(pages)})
}

func (h *PagesHandler) update(c echo.Context) error {
	var req models.PageUpdate
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	id := c.Param("id")
	if req.Version <= 0 {
		// compatibility shim: read the current version when the caller
		// did not supply one
		current, err := h.Client.GetPage(c.Request().Context(), id, "version")
		if err != nil {
			return httpError(err)
		}
		req.Version = current.Version.Number
	}
	page, err := h.Client.UpdatePage(c.Request().Context(), id, req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *PagesHandler) delete(c echo.Context) error {
	if err := h.Client.DeletePage(c.Request().Context(), c.Param("id")); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// publish is the explicit Draft-to-document path: a reviewed draft becomes
// a real page through a plain create call.
func (h *PagesHandler) publish(c echo.Context) error {
	var draft models.Draft
	if err := c.Bind(&draft); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if draft.SpaceKey == "" || draft.Title == "" || draft.Content == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "space_key, title and content are required")
	}
	page, err := h.Client.CreatePage(c.Request().Context(), models.PageCreate{
		SpaceKey: draft.SpaceKey,
		Title:    draft.Title,
		Content:  draft.Content,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, page)
}

// httpError passes backend status codes through instead of flattening
// everything to 500.
func httpError(err error) error {
	var ae *confluence.APIError
	if errors.As(err, &ae) {
		return echo.NewHTTPError(ae.StatusCode, ae.Message)
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
