package logger

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// Environment variable to configure the log file path.
const envLogPath = "DOCS_MCP_LOG"

var (
	std           *log.Logger
	logFile       *os.File
	isInitialized bool
)

// InitFromEnv initializes the logger using DOCS_MCP_LOG or a default path
// next to the executable. Logging to a file keeps stdout clean for the MCP
// stdio transport.
func InitFromEnv() error {
	path := os.Getenv(envLogPath)
	if path == "" {
		if exePath, err := os.Executable(); err == nil {
			path = filepath.Join(filepath.Dir(exePath), "docs-mcp.log")
		} else {
			path = "./docs-mcp.log"
		}
	}
	return Init(path)
}

// Init opens the log file in append mode, creating parent directories as
// needed. Subsequent calls are no-ops.
func Init(path string) error {
	if isInitialized {
		return nil
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	logFile = f
	std = log.New(f, "", log.Ldate|log.Ltime|log.Lmicroseconds)
	isInitialized = true
	return nil
}

// Close closes the underlying log file, if open.
func Close() error {
	if logFile != nil {
		err := logFile.Close()
		logFile = nil
		return err
	}
	return nil
}

// Infof logs informational messages.
func Infof(format string, args ...any) { write("INFO", format, args...) }

// Warnf logs warnings.
func Warnf(format string, args ...any) { write("WARN", format, args...) }

// Errorf logs errors.
func Errorf(format string, args ...any) { write("ERROR", format, args...) }

func write(level string, format string, args ...any) {
	if std == nil {
		_ = InitFromEnv()
	}
	if std != nil {
		std.Printf("[%s] %s", level, fmt.Sprintf(format, args...))
	}
}
