package tools

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/leonardcser/docs-mcp/internal/docstore"
	"github.com/leonardcser/docs-mcp/internal/web"
)

func newToolRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func newStore(t *testing.T) *docstore.Store {
	t.Helper()
	s, err := docstore.Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return s
}

func TestCacheThenGetDocs(t *testing.T) {
	store := newStore(t)
	put := CacheDocsHandler(store)
	get := GetCachedDocsHandler(store)

	res, err := put(context.Background(), newToolRequest(map[string]any{
		"library_name": "react",
		"content":      "# React docs",
	}))
	if err != nil {
		t.Fatalf("cache_docs handler errored: %v", err)
	}
	cr, ok := res.StructuredContent.(CacheDocsResult)
	if !ok {
		t.Fatalf("cache_docs structured content is %T", res.StructuredContent)
	}
	if cr.Status != "success" {
		t.Fatalf("cache_docs status = %q, message = %q", cr.Status, cr.Message)
	}
	if !strings.Contains(cr.Message, "react") {
		t.Errorf("cache_docs message %q does not mention the library", cr.Message)
	}

	res, err = get(context.Background(), newToolRequest(map[string]any{"library_name": "react"}))
	if err != nil {
		t.Fatalf("get_cached_docs handler errored: %v", err)
	}
	gr, ok := res.StructuredContent.(GetDocsResult)
	if !ok {
		t.Fatalf("get_cached_docs structured content is %T", res.StructuredContent)
	}
	if gr.Status != "found" || gr.Content != "# React docs" {
		t.Errorf("get_cached_docs = %+v, want found with original content", gr)
	}
}

func TestGetDocsNotFound(t *testing.T) {
	store := newStore(t)
	get := GetCachedDocsHandler(store)

	res, err := get(context.Background(), newToolRequest(map[string]any{"library_name": "react-dom"}))
	if err != nil {
		t.Fatalf("handler errored: %v", err)
	}
	gr, ok := res.StructuredContent.(GetDocsResult)
	if !ok {
		t.Fatalf("structured content is %T", res.StructuredContent)
	}
	if gr.Status != "not_found" {
		t.Errorf("status = %q, want not_found", gr.Status)
	}
	if gr.Content != "" {
		t.Errorf("not_found result carries content %q", gr.Content)
	}
}

func TestGetDocsMissingArgument(t *testing.T) {
	get := GetCachedDocsHandler(newStore(t))

	res, err := get(context.Background(), newToolRequest(map[string]any{}))
	if err != nil {
		t.Fatalf("handler errored: %v", err)
	}
	if !res.IsError {
		t.Error("expected an error result for a missing library_name")
	}
}

func TestListCachedDocs(t *testing.T) {
	store := newStore(t)
	list := ListCachedDocsHandler(store)

	res, err := list(context.Background(), newToolRequest(nil))
	if err != nil {
		t.Fatalf("handler errored: %v", err)
	}
	lr := res.StructuredContent.(ListDocsResult)
	if lr.Count != 0 || len(lr.Libraries) != 0 {
		t.Errorf("expected empty listing, got %+v", lr)
	}

	for _, name := range []string{"react", "vue"} {
		if _, err := store.Put(name, "docs"); err != nil {
			t.Fatalf("Put(%q) failed: %v", name, err)
		}
	}
	res, err = list(context.Background(), newToolRequest(nil))
	if err != nil {
		t.Fatalf("handler errored: %v", err)
	}
	lr = res.StructuredContent.(ListDocsResult)
	if lr.Count != 2 {
		t.Errorf("Count = %d, want 2", lr.Count)
	}
}

func TestFormatLibraryList(t *testing.T) {
	if got := formatLibraryList(nil); got != "No cached documentation." {
		t.Errorf("empty listing = %q", got)
	}
	if got := formatLibraryList([]string{"react"}); !strings.HasPrefix(got, "1 cached library:") {
		t.Errorf("singular listing = %q", got)
	}
	got := formatLibraryList([]string{"react", "vue"})
	if !strings.HasPrefix(got, "2 cached libraries:") {
		t.Errorf("plural listing = %q", got)
	}
	if !strings.Contains(got, "- react\n") || !strings.Contains(got, "- vue\n") {
		t.Errorf("plural listing missing entries: %q", got)
	}
}

func TestFetchDocsStoresPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><head><title>Axios</title></head><body><main><p>Promise based HTTP client.</p></main></body></html>"))
	}))
	defer srv.Close()

	store := newStore(t)
	fetch := FetchDocsHandler(web.NewFetcher(nil, 0), store)

	res, err := fetch(context.Background(), newToolRequest(map[string]any{
		"library_name": "axios",
		"url":          srv.URL,
	}))
	if err != nil {
		t.Fatalf("handler errored: %v", err)
	}
	cr := res.StructuredContent.(CacheDocsResult)
	if cr.Status != "success" {
		t.Fatalf("status = %q, message = %q", cr.Status, cr.Message)
	}

	content, err := store.Get("axios")
	if err != nil {
		t.Fatalf("Get after fetch failed: %v", err)
	}
	if !strings.Contains(content, "Promise based HTTP client") {
		t.Errorf("stored content %q missing page body", content)
	}
	if !strings.Contains(content, "# Axios") {
		t.Errorf("stored content %q missing title heading", content)
	}
}

func TestFetchDocsBadURL(t *testing.T) {
	fetch := FetchDocsHandler(web.NewFetcher(nil, 0), newStore(t))

	res, err := fetch(context.Background(), newToolRequest(map[string]any{
		"library_name": "x",
		"url":          "not-a-url",
	}))
	if err != nil {
		t.Fatalf("handler errored: %v", err)
	}
	cr := res.StructuredContent.(CacheDocsResult)
	if cr.Status != "error" || cr.Message == "" {
		t.Errorf("expected error result with message, got %+v", cr)
	}
}
