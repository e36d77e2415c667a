package main

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/leonardcser/docs-mcp/internal/kvcache"
	"github.com/leonardcser/docs-mcp/internal/logger"
)

func main() {
	if err := logger.InitFromEnv(); err != nil {
		panic(err)
	}
	defer logger.Close()

	if err := run(); err != nil {
		logger.Errorf("cache daemon: %v", err)
		os.Exit(1)
	}
}

func run() error {
	sock := envOr("DOCS_MCP_CACHE_SOCK", stateFile("cache.sock"))
	dbPath := envOr("DOCS_MCP_CACHE_DB", stateFile("cache.bbolt"))

	store, err := kvcache.Open(dbPath, kvcache.Options{Bucket: "docs", DefaultTTL: 15 * time.Minute})
	if err != nil {
		return fmt.Errorf("open cache db %s: %w", dbPath, err)
	}
	defer store.Close()

	if err := os.MkdirAll(filepath.Dir(sock), 0o755); err != nil {
		return fmt.Errorf("create socket directory: %w", err)
	}
	// A previous run may have left its socket behind.
	_ = os.Remove(sock)

	l, err := net.Listen("unix", sock)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", sock, err)
	}
	defer l.Close()
	_ = os.Chmod(sock, 0o600)

	logger.Infof("Cache daemon serving %s on %s", dbPath, sock)
	for {
		conn, err := l.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			logger.Warnf("accept: %v", err)
			continue
		}
		go kvcache.ServeConn(conn, store)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// stateFile places daemon state under ~/.cache/docs-mcp.
func stateFile(name string) string {
	home, _ := os.UserHomeDir()
	if home == "" {
		home = "."
	}
	return filepath.Join(home, ".cache", "docs-mcp", name)
}
