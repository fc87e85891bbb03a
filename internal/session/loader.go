package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ErrNoData means every configured input document was missing, empty,
// or unparseable. Downstream analysis must not run on an empty table.
var ErrNoData = errors.New("no sessions loaded from any input document")

// LoadResult is the outcome of loading one set of input documents.
type LoadResult struct {
	Sessions []RawSession
	// Provenance holds, per session (same index), the short identifier
	// of the document the session came from.
	Provenance []string
	// Warnings records per-file problems that were skipped over.
	Warnings []string
}

// LoadDocuments reads and parses every path in order, concatenating the
// session collections. A missing or unparseable document is skipped
// with a recorded warning; only a fully empty result is an error
// (ErrNoData). Files are read concurrently but the concatenation order
// always matches the order of paths.
func LoadDocuments(paths []string) (*LoadResult, error) {
	type fileResult struct {
		sessions []RawSession
		warning  string
	}

	results := make([]fileResult, len(paths))

	var g errgroup.Group
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			sessions, err := loadDocument(path)
			if err != nil {
				results[i] = fileResult{warning: fmt.Sprintf("skipping %s: %v", path, err)}
				return nil
			}
			results[i] = fileResult{sessions: sessions}
			return nil
		})
	}
	// Per-file errors are downgraded to warnings, so Wait cannot fail.
	_ = g.Wait()

	out := &LoadResult{}
	for i, r := range results {
		if r.warning != "" {
			out.Warnings = append(out.Warnings, r.warning)
			continue
		}
		source := SourceName(paths[i])
		out.Sessions = append(out.Sessions, r.sessions...)
		for range r.sessions {
			out.Provenance = append(out.Provenance, source)
		}
	}

	if len(out.Sessions) == 0 {
		return nil, ErrNoData
	}
	return out, nil
}

// loadDocument reads one JSON document and returns its sessions.
// A document without a sessions key yields an empty slice.
func loadDocument(path string) ([]RawSession, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing: %w", err)
	}
	return doc.Sessions, nil
}

// SourceName returns the short provenance identifier for a document
// path: its base filename.
func SourceName(path string) string {
	return filepath.Base(path)
}

// Loader loads documents and memoizes the built table so repeated
// recomputation within one process never re-reads from disk. The cache
// is keyed by the set of input paths and cleared explicitly.
type Loader struct {
	mu    sync.Mutex
	cache map[string]*cachedLoad
}

type cachedLoad struct {
	table    Table
	warnings []string
}

// NewLoader returns an empty Loader.
func NewLoader() *Loader {
	return &Loader{cache: make(map[string]*cachedLoad)}
}

// LoadTable loads, normalizes, and assembles the analytical table for
// the given documents, serving repeated calls for the same path set
// from memory.
func (l *Loader) LoadTable(paths []string) (Table, []string, error) {
	key := cacheKey(paths)

	l.mu.Lock()
	if c, ok := l.cache[key]; ok {
		l.mu.Unlock()
		return c.table, c.warnings, nil
	}
	l.mu.Unlock()

	res, err := LoadDocuments(paths)
	if err != nil {
		return Table{}, nil, err
	}
	table := BuildTable(res)

	l.mu.Lock()
	l.cache[key] = &cachedLoad{table: table, warnings: res.Warnings}
	l.mu.Unlock()

	return table, res.Warnings, nil
}

// Clear drops all cached tables.
func (l *Loader) Clear() {
	l.mu.Lock()
	l.cache = make(map[string]*cachedLoad)
	l.mu.Unlock()
}

// cacheKey builds an order-insensitive key for a set of paths.
func cacheKey(paths []string) string {
	sorted := append([]string(nil), paths...)
	sort.Strings(sorted)
	return strings.Join(sorted, "\x00")
}
