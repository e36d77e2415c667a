package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/leonardcser/docs-mcp/internal/docstore"
	"github.com/leonardcser/docs-mcp/internal/web"
)

// FetchDocsHandler returns the MCP tool handler for "fetch_docs": download a
// documentation page, convert it to Markdown, and store it under the given
// library name.
func FetchDocsHandler(fetcher *web.Fetcher, store *docstore.Store) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := req.RequireString("library_name")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		url, err := req.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		page, err := fetcher.Fetch(ctx, url)
		if err != nil {
			res := CacheDocsResult{Status: "error", Message: fmt.Sprintf("fetch %s: %v", url, err)}
			return mcp.NewToolResultStructured(res, res.Message), nil
		}

		msg, err := store.Put(name, renderDocPage(page))
		if err != nil {
			res := CacheDocsResult{Status: "error", Message: err.Error()}
			return mcp.NewToolResultStructured(res, err.Error()), nil
		}

		res := CacheDocsResult{Status: "success", Message: msg + " from " + page.URL}
		return mcp.NewToolResultStructured(res, res.Message), nil
	}
}

func renderDocPage(page *web.DocPage) string {
	var sb strings.Builder
	if page.Title != "" && !strings.HasPrefix(page.Markdown, "# ") {
		sb.WriteString("# ")
		sb.WriteString(page.Title)
		sb.WriteString("\n\n")
	}
	sb.WriteString(page.Markdown)
	sb.WriteString("\n")
	return sb.String()
}
