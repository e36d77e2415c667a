package main

import (
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/leonardcser/docs-mcp/internal/docstore"
	"github.com/leonardcser/docs-mcp/internal/kvcache"
	"github.com/leonardcser/docs-mcp/internal/logger"
	"github.com/leonardcser/docs-mcp/internal/tools"
	"github.com/leonardcser/docs-mcp/internal/web"
)

func main() {
	if err := logger.InitFromEnv(); err != nil {
		panic(err)
	}
	defer logger.Close()

	logger.Infof("Starting Docs MCP server")

	baseDir := dataDir()
	store, err := docstore.Open(baseDir)
	if err != nil {
		logger.Errorf("Failed to open docs store at %s: %v", baseDir, err)
		panic(err)
	}
	logger.Infof("Opened docs store at %s", baseDir)

	// The fetch-response cache lives in a shared daemon so concurrent server
	// instances dedup their downloads. The server still works without it.
	kv := connectOrStartCacheDaemon()
	fetcher := web.NewFetcher(kv, 15*time.Minute)

	s := server.NewMCPServer(
		"Docs MCP",
		"0.1.0",
		server.WithRecovery(),
		server.WithToolCapabilities(false),
	)

	toolGet := mcp.NewTool("get_cached_docs",
		mcp.WithDescription(multiline(
			"Returns previously cached documentation for a library",
			"\nFunctionality:",
			"- Takes a library name as input",
			"- Looks the name up in the local documentation cache",
			"- Returns the cached content when found, or a not_found status",
			"\nUsage notes:",
			"- Check this cache before fetching library documentation from the web",
			"- Lookups are read-only and never modify the cache",
		)),
		mcp.WithString("library_name", mcp.Required(), mcp.Description("The library name to look up")),
	)
	s.AddTool(toolGet, tools.GetCachedDocsHandler(store))

	toolCache := mcp.NewTool("cache_docs",
		mcp.WithDescription(multiline(
			"Stores documentation for a library in the local cache",
			"\nFunctionality:",
			"- Takes a library name and the documentation content",
			"- Persists the content so later get_cached_docs calls return it",
			"- Overwrites any previous entry for the same name",
			"\nUsage notes:",
			"- Use after fetching documentation so repeat fetches are avoided",
			"- Content is stored as-is; markdown is recommended",
		)),
		mcp.WithString("library_name", mcp.Required(), mcp.Description("The library name to store under")),
		mcp.WithString("content", mcp.Required(), mcp.Description("The documentation content to cache")),
	)
	s.AddTool(toolCache, tools.CacheDocsHandler(store))

	toolFetch := mcp.NewTool("fetch_docs",
		mcp.WithDescription(multiline(
			"Fetches a documentation page from a URL and caches it under a library name",
			"\nFunctionality:",
			"- Downloads the page, strips navigation chrome, and converts it to Markdown",
			"- Stores the result in the documentation cache",
			"\nUsage notes:",
			"- The URL must be a fully-formed valid URL",
			"- Binary responses (images, PDFs) are rejected",
			"- Repeated fetches of the same URL within 15 minutes are served from a transient cache",
		)),
		mcp.WithString("library_name", mcp.Required(), mcp.Description("The library name to store under")),
		mcp.WithString("url", mcp.Required(), mcp.Description("The documentation page URL to fetch")),
	)
	s.AddTool(toolFetch, tools.FetchDocsHandler(fetcher, store))

	toolList := mcp.NewTool("list_cached_docs",
		mcp.WithDescription("Lists the library names currently present in the documentation cache"),
	)
	s.AddTool(toolList, tools.ListCachedDocsHandler(store))

	logger.Infof("Registered tools, starting MCP server on stdio")
	if err := server.ServeStdio(s); err != nil {
		logger.Errorf("server error: %v", err)
	}
}

// multiline joins lines with newlines for tool descriptions.
func multiline(lines ...string) string { return strings.Join(lines, "\n") }

// dataDir resolves the base directory holding index.json and cache/.
// Defaults to the directory of the running binary.
func dataDir() string {
	if d := os.Getenv("DOCS_MCP_DATA_DIR"); d != "" {
		return d
	}
	if exePath, err := os.Executable(); err == nil {
		return filepath.Dir(exePath)
	}
	return "."
}

// connectOrStartCacheDaemon tries to reach the fetch-cache daemon, starting
// it when absent. Returns nil when the daemon is unavailable; the fetcher
// then runs uncached.
func connectOrStartCacheDaemon() kvcache.KV {
	sock := defaultSocketPath()
	if kv, err := connectCache(sock); err == nil {
		logger.Infof("Connected to cache daemon at %s", sock)
		return kv
	}
	logger.Warnf("Cache daemon not reachable at %s, attempting to start it", sock)
	if err := startCacheDaemon(); err != nil {
		logger.Warnf("Failed to start cache daemon: %v, fetches will be uncached", err)
		return nil
	}
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if kv, err := connectCache(sock); err == nil {
			logger.Infof("Cache daemon started, connected at %s", sock)
			return kv
		}
		time.Sleep(200 * time.Millisecond)
	}
	logger.Warnf("Cache daemon did not come up in time, fetches will be uncached")
	return nil
}

func defaultSocketPath() string {
	if s := os.Getenv("DOCS_MCP_CACHE_SOCK"); s != "" {
		return s
	}
	home, _ := os.UserHomeDir()
	if home == "" {
		home = "."
	}
	return filepath.Join(home, ".cache", "docs-mcp", "cache.sock")
}

func connectCache(sock string) (kvcache.KV, error) {
	// quick probe
	conn, err := net.DialTimeout("unix", sock, 200*time.Millisecond)
	if err != nil {
		return nil, err
	}
	_ = conn.Close()
	return kvcache.NewClient(sock), nil
}

func startCacheDaemon() error {
	// Prefer the daemon binary next to this executable, then PATH, then cwd.
	candidates := []string{}
	if exePath, err := os.Executable(); err == nil {
		candidates = append(candidates, filepath.Join(filepath.Dir(exePath), "docs-mcp-cache"))
	}
	if path, err := exec.LookPath("docs-mcp-cache"); err == nil {
		candidates = append(candidates, path)
	}
	candidates = append(candidates, "./docs-mcp-cache")

	for _, bin := range candidates {
		if _, err := os.Stat(bin); err != nil {
			continue
		}
		cmd := exec.Command(bin)
		cmd.Stdout = nil
		cmd.Stderr = nil
		cmd.Env = os.Environ()
		return cmd.Start()
	}
	return exec.ErrNotFound
}
