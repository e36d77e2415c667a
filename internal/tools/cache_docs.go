package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/leonardcser/docs-mcp/internal/docstore"
)

// CacheDocsHandler returns the MCP tool handler for "cache_docs".
func CacheDocsHandler(store *docstore.Store) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if ctx.Err() != nil {
			return mcp.NewToolResultError(ctx.Err().Error()), nil
		}
		name, err := req.RequireString("library_name")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		content, err := req.RequireString("content")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		msg, err := store.Put(name, content)
		if err != nil {
			res := CacheDocsResult{Status: "error", Message: err.Error()}
			return mcp.NewToolResultStructured(res, err.Error()), nil
		}

		res := CacheDocsResult{Status: "success", Message: msg}
		return mcp.NewToolResultStructured(res, msg), nil
	}
}
