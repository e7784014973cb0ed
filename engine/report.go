package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/theplow-kwak/mcp-confluence/models"
)

// executeDraftReport runs the fixed three-stage report pipeline: retrieve
// matching pages, aggregate their contents, summarize with one tool-free
// model call. The resulting Draft is returned for human review and never
// written to the backend here.
func (e *Executor) executeDraftReport(ctx context.Context, args map[string]interface{}) ActionResult {
	cql := stringArg(args, "cql")
	spaceKey := stringArg(args, "space_key")
	reportTitle := stringArg(args, "report_title")
	summaryPrompt := stringArg(args, "summary_prompt")
	if cql == "" || spaceKey == "" || reportTitle == "" || summaryPrompt == "" {
		return failure(ToolDraftReport, "draft_summary_report requires cql, space_key, report_title and summary_prompt")
	}

	e.logger.Printf("searching pages for report draft (cql: %s)", cql)
	pages, err := e.backend.SearchPages(ctx, cql, searchExpand)
	if err != nil {
		return backendFailure(ToolDraftReport, err)
	}
	if len(pages) == 0 {
		// nothing to summarize; a valid outcome, not a backend failure
		b := `{"status":"failed","message":"no matches"}`
		return ActionResult{Name: ToolDraftReport, Content: b}
	}

	var blob strings.Builder
	for _, page := range pages {
		fmt.Fprintf(&blob, "<h2>%s</h2>\n%s\n\n<hr/>\n\n", page.Title, page.Body.Storage.Value)
	}

	e.logger.Printf("summarizing %d pages for report %q", len(pages), reportTitle)
	summary, err := e.summarizer.Generate(ctx, summarizationPrompt(blob.String(), summaryPrompt))
	if err != nil {
		return failure(ToolDraftReport, fmt.Sprintf("summarization failed: %v", err))
	}

	draft := &models.Draft{Title: reportTitle, SpaceKey: spaceKey, Content: summary}
	result := success(ToolDraftReport, draft)
	result.Draft = draft
	return result
}

func summarizationPrompt(contents, instructions string) string {
	return fmt.Sprintf(`The following is the content of several Confluence pages.
---
%s
---
Write a summary report of the content above according to these instructions: %q`, contents, instructions)
}
