package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/leonardcser/docs-mcp/internal/docstore"
)

// GetCachedDocsHandler returns the MCP tool handler for "get_cached_docs".
func GetCachedDocsHandler(store *docstore.Store) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if ctx.Err() != nil {
			return mcp.NewToolResultError(ctx.Err().Error()), nil
		}
		name, err := req.RequireString("library_name")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		content, err := store.Get(name)
		if errors.Is(err, docstore.ErrNotFound) {
			res := GetDocsResult{Status: "not_found"}
			return mcp.NewToolResultStructured(res, fmt.Sprintf("No cached documentation for %q", name)), nil
		}
		if err != nil {
			// Index unreadable or corrupt: still a well-formed tool result.
			return mcp.NewToolResultError(err.Error()), nil
		}

		res := GetDocsResult{Status: "found", Content: content}
		return mcp.NewToolResultStructured(res, content), nil
	}
}
