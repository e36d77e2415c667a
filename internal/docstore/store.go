package docstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

const (
	indexFile = "index.json"
	cacheDir  = "cache"
	docExt    = ".md"
)

// ErrNotFound is returned by Get when a name has no usable cache entry.
// A missing index key and an index entry whose content file has gone missing
// are deliberately indistinguishable to the caller.
var ErrNotFound = errors.New("docstore: not found")

// Store is a durable name-to-document cache backed by a flat JSON index and
// one markdown file per entry. It owns its base directory exclusively; no
// other writer may touch the index or the content files. Safe for concurrent
// use within a single process.
type Store struct {
	indexPath string
	docsDir   string
	mu        sync.RWMutex
}

// Open prepares a Store rooted at baseDir, creating the content directory if
// it does not exist yet. The index file itself is created lazily on the first
// Put.
func Open(baseDir string) (*Store, error) {
	docs := filepath.Join(baseDir, cacheDir)
	if err := os.MkdirAll(docs, 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	return &Store{
		indexPath: filepath.Join(baseDir, indexFile),
		docsDir:   docs,
	}, nil
}

// Put stores content under libraryName, replacing any previous entry for the
// same sanitized key, and persists the updated index. On success it returns a
// confirmation message that echoes the original name. A failure after the
// content write may leave an orphaned file; re-running Put repairs it.
func (s *Store) Put(libraryName, content string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	index, err := s.loadIndex()
	if err != nil {
		return "", err
	}

	key := Sanitize(libraryName)
	filename := key + docExt

	if err := os.WriteFile(filepath.Join(s.docsDir, filename), []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write content file: %w", err)
	}

	index[key] = filename
	if err := s.saveIndex(index); err != nil {
		return "", fmt.Errorf("persist index: %w", err)
	}

	return fmt.Sprintf("Cached documentation for %q (%d bytes)", libraryName, len(content)), nil
}

// Get returns the cached content for libraryName. It reports ErrNotFound both
// when the name was never cached and when the index points at a content file
// that no longer exists. Any other index failure is returned as-is.
func (s *Store) Get(libraryName string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	index, err := s.loadIndex()
	if err != nil {
		return "", err
	}

	filename, ok := index[Sanitize(libraryName)]
	if !ok {
		return "", ErrNotFound
	}

	data, err := os.ReadFile(filepath.Join(s.docsDir, filename))
	if err != nil {
		// Index/filesystem drift: treat exactly like a miss.
		return "", ErrNotFound
	}
	return string(data), nil
}

// Keys returns the sanitized names currently present in the index, sorted.
func (s *Store) Keys() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	index, err := s.loadIndex()
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(index))
	for k := range index {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Len returns the number of indexed entries.
func (s *Store) Len() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	index, err := s.loadIndex()
	if err != nil {
		return 0, err
	}
	return len(index), nil
}

// loadIndex reads the whole index from disk. An absent file is the bootstrap
// state and yields an empty map; everything else that goes wrong is a hard
// error for the caller to surface.
func (s *Store) loadIndex() (map[string]string, error) {
	data, err := os.ReadFile(s.indexPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("read index: %w", err)
	}
	if len(data) == 0 {
		return map[string]string{}, nil
	}

	var index map[string]string
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("parse index: %w", err)
	}
	for key, filename := range index {
		if !validEntryPath(filename) {
			return nil, fmt.Errorf("parse index: entry %q has unsafe path %q", key, filename)
		}
	}
	return index, nil
}

// validEntryPath accepts only bare filenames that cannot resolve outside the
// content directory.
func validEntryPath(p string) bool {
	if p == "" || p == "." {
		return false
	}
	if strings.ContainsAny(p, `/\`) || strings.Contains(p, "..") {
		return false
	}
	return true
}

// saveIndex replaces the index file in one atomic step: write a sibling temp
// file, then rename it over the old index so a crash never leaves a truncated
// index behind.
func (s *Store) saveIndex(index map[string]string) error {
	data, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal index: %w", err)
	}

	tmp := s.indexPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp index: %w", err)
	}
	if err := os.Rename(tmp, s.indexPath); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename temp index: %w", err)
	}
	return nil
}
