package confluence

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/theplow-kwak/mcp-confluence/config"
	"github.com/theplow-kwak/mcp-confluence/models"
)

// APIError carries the Confluence HTTP status and response body so callers
// (and ultimately the model) can see exactly what the backend rejected.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("confluence API error (status %d): %s", e.StatusCode, e.Message)
}

// NotFound reports whether err is an APIError for a missing page.
func NotFound(err error) bool {
	ae, ok := err.(*APIError)
	return ok && ae.StatusCode == http.StatusNotFound
}

// Client talks to the Confluence REST API with basic auth.
type Client struct {
	apiURL     string
	user       string
	token      string
	httpClient *http.Client
}

// New builds a Client from configuration. Credentials never leave this
// package; callers deal in page payloads only.
func New(cfg config.ConfluenceConfig) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Client{
		apiURL:     strings.TrimRight(cfg.URL, "/") + "/rest/api",
		user:       cfg.User,
		token:      cfg.APIToken,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// GetPage fetches a single page by ID. expand selects extra fields, e.g.
// "version" or "body.storage,version".
func (c *Client) GetPage(ctx context.Context, id string, expand string) (models.Page, error) {
	u := c.apiURL + "/content/" + url.PathEscape(id)
	if expand != "" {
		u += "?expand=" + url.QueryEscape(expand)
	}
	var page models.Page
	if err := c.do(ctx, http.MethodGet, u, nil, &page); err != nil {
		if NotFound(err) {
			return models.Page{}, &APIError{StatusCode: http.StatusNotFound, Message: fmt.Sprintf("page with ID %q not found", id)}
		}
		return models.Page{}, err
	}
	return page, nil
}

// CreatePage creates a new page in the given space, optionally under a
// parent page.
func (c *Client) CreatePage(ctx context.Context, req models.PageCreate) (models.Page, error) {
	payload := map[string]interface{}{
		"type":  "page",
		"title": req.Title,
		"space": map[string]string{"key": req.SpaceKey},
		"body": map[string]interface{}{
			"storage": map[string]string{
				"value":          req.Content,
				"representation": "storage",
			},
		},
	}
	if req.ParentID != "" {
		payload["ancestors"] = []map[string]string{{"id": req.ParentID}}
	}

	var page models.Page
	if err := c.do(ctx, http.MethodPost, c.apiURL+"/content", payload, &page); err != nil {
		return models.Page{}, err
	}
	return page, nil
}

// UpdatePage rewrites a page. req.Version must be the page's current
// version; Confluence is told to write Version+1 and rejects stale writes.
func (c *Client) UpdatePage(ctx context.Context, id string, req models.PageUpdate) (models.Page, error) {
	if req.Version <= 0 {
		return models.Page{}, fmt.Errorf("update of page %s requires the current version number", id)
	}
	payload := map[string]interface{}{
		"version": map[string]int{"number": req.Version + 1},
		"type":    "page",
		"title":   req.Title,
		"body": map[string]interface{}{
			"storage": map[string]string{
				"value":          req.Content,
				"representation": "storage",
			},
		},
	}

	var page models.Page
	if err := c.do(ctx, http.MethodPut, c.apiURL+"/content/"+url.PathEscape(id), payload, &page); err != nil {
		return models.Page{}, err
	}
	return page, nil
}

// DeletePage removes a page by ID.
func (c *Client) DeletePage(ctx context.Context, id string) error {
	err := c.do(ctx, http.MethodDelete, c.apiURL+"/content/"+url.PathEscape(id), nil, nil)
	if NotFound(err) {
		return &APIError{StatusCode: http.StatusNotFound, Message: fmt.Sprintf("page with ID %q not found", id)}
	}
	return err
}

// SearchPages runs a CQL query. An empty result list is a valid outcome,
// not an error.
func (c *Client) SearchPages(ctx context.Context, cql string, expand string) ([]models.Page, error) {
	q := url.Values{}
	q.Set("cql", cql)
	if expand != "" {
		q.Set("expand", expand)
	}
	var result models.SearchResult
	if err := c.do(ctx, http.MethodGet, c.apiURL+"/content/search?"+q.Encode(), nil, &result); err != nil {
		return nil, err
	}
	return result.Results, nil
}

func (c *Client) do(ctx context.Context, method, u string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal: %w", err)
		}
		reader = bytes.NewBuffer(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.SetBasicAuth(c.user, c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("confluence request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(b))}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}
