package engine

import "github.com/theplow-kwak/mcp-confluence/models"

// Tool names as declared to the model.
const (
	ToolSearchPages = "search_pages"
	ToolCreatePage  = "create_page"
	ToolUpdatePage  = "update_page"
	ToolDraftReport = "draft_summary_report"
)

// Catalog returns the declarations for every action the model may request.
// It is pure data, sent with each model round-trip and never mutated.
func Catalog() []models.ToolDef {
	return []models.ToolDef{
		{
			Name:        ToolSearchPages,
			Description: "Search Confluence pages with a CQL (Confluence Query Language) query. Page bodies and version numbers are included in the results.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"cql": map[string]interface{}{
						"type":        "string",
						"description": `The CQL query to search with, e.g. 'space = "DEV" and title ~ "meeting notes" and created > "2024-01-01"'.`,
					},
				},
				"required": []string{"cql"},
			},
		},
		{
			Name:        ToolCreatePage,
			Description: "Create a new Confluence page.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"space_key": map[string]interface{}{
						"type":        "string",
						"description": "Key of the Confluence space to create the page in, e.g. 'DEV'.",
					},
					"title": map[string]interface{}{
						"type":        "string",
						"description": "Title of the new page.",
					},
					"content": map[string]interface{}{
						"type":        "string",
						"description": "Page body in HTML storage format.",
					},
					"parent_id": map[string]interface{}{
						"type":        "string",
						"description": "ID of the parent page. Omit to create a top-level page.",
					},
				},
				"required": []string{"space_key", "title", "content"},
			},
		},
		{
			Name:        ToolUpdatePage,
			Description: "Update the title or content of a Confluence page by ID. Always supply the page's current version number, obtained from a search or lookup, so stale writes are rejected.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"page_id": map[string]interface{}{
						"type":        "string",
						"description": "ID of the page to update.",
					},
					"title": map[string]interface{}{
						"type":        "string",
						"description": "New page title.",
					},
					"content": map[string]interface{}{
						"type":        "string",
						"description": "New page body in HTML storage format.",
					},
					"version": map[string]interface{}{
						"type":        "integer",
						"description": "Current version number of the page being updated.",
					},
				},
				"required": []string{"page_id", "title", "content", "version"},
			},
		},
		{
			Name:        ToolDraftReport,
			Description: "Search pages with a CQL query, summarize their contents and produce a report draft for human review. The draft is returned to the caller and is not written to Confluence.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"cql": map[string]interface{}{
						"type":        "string",
						"description": "CQL query selecting the pages to summarize.",
					},
					"space_key": map[string]interface{}{
						"type":        "string",
						"description": "Key of the space the report is intended for.",
					},
					"report_title": map[string]interface{}{
						"type":        "string",
						"description": "Title for the report draft.",
					},
					"summary_prompt": map[string]interface{}{
						"type":        "string",
						"description": "Detailed summarization instructions, e.g. 'summarize the key decisions of each page as a bullet list'.",
					},
				},
				"required": []string{"cql", "space_key", "report_title", "summary_prompt"},
			},
		},
	}
}
