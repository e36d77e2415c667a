package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/leonardcser/docs-mcp/internal/docstore"
)

// ListCachedDocsHandler returns the MCP tool handler for "list_cached_docs".
// Read-only: it only enumerates the index.
func ListCachedDocsHandler(store *docstore.Store) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		keys, err := store.Keys()
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		res := ListDocsResult{Status: "success", Count: len(keys), Libraries: keys}
		return mcp.NewToolResultStructured(res, formatLibraryList(keys)), nil
	}
}

func formatLibraryList(keys []string) string {
	if len(keys) == 0 {
		return "No cached documentation."
	}
	var sb strings.Builder
	if len(keys) == 1 {
		sb.WriteString("1 cached library:\n")
	} else {
		fmt.Fprintf(&sb, "%d cached libraries:\n", len(keys))
	}
	for _, k := range keys {
		sb.WriteString("- ")
		sb.WriteString(k)
		sb.WriteString("\n")
	}
	return sb.String()
}
