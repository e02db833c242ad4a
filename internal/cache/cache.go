// Package cache implements the content-addressed compile cache: a
// (lang, generated_source_hash, toolchain_id) key mapping to a persisted
// compile-check outcome, so identical generated source plus an identical
// compiler version never spawns a second subprocess (spec.md §4.5).
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/polybench/polybench/internal/dsl"
)

// Result is the persisted outcome of a compile-check, stored as
// cache/<lang>/<sha>-<toolchain>/result.json.
type Result struct {
	OK     bool   `json:"ok"`
	Errors string `json:"errors,omitempty"`
}

// Key identifies one cache entry.
type Key struct {
	Lang       dsl.Lang
	SourceHash string
	ToolchainID string
}

// Option configures a Cache.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

func optionsWithDefaults(opts []Option) *options {
	o := &options{
		logger: slog.Default().With(slog.String("module", "cache")),
	}
	for _, apply := range opts {
		apply(o)
	}

	return o
}

// WithLogger overrides the default logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// Cache is the on-disk, content-addressed compile cache rooted at a base
// directory (typically .polybench/cache).
type Cache struct {
	baseDir string
	logger  *slog.Logger

	mu     sync.Mutex
	hits   atomic.Uint64
	misses atomic.Uint64
}

// New constructs a Cache rooted at baseDir. baseDir is created lazily on
// first write.
func New(baseDir string, opts ...Option) *Cache {
	o := optionsWithDefaults(opts)

	return &Cache{
		baseDir: baseDir,
		logger:  o.logger,
	}
}

// HashSource computes the source_hash component of a cache key. The caller
// is responsible for ensuring source includes every byte that affects
// compilation — hooks, fixtures, stdlib injections, and the generator
// template — per spec.md §4.5's invariant.
func HashSource(source string) string {
	sum := sha256.Sum256([]byte(source))

	return hex.EncodeToString(sum[:])
}

func (c *Cache) entryDir(key Key) string {
	return filepath.Join(c.baseDir, string(key.Lang), key.SourceHash+"-"+key.ToolchainID)
}

// Get looks up a cache entry. The second return value reports whether it
// was found (a hit); on a miss, callers run the compile-check subprocess and
// call Put.
func (c *Cache) Get(key Key) (*Result, bool) {
	path := filepath.Join(c.entryDir(key), "result.json")

	data, err := os.ReadFile(path)
	if err != nil {
		c.misses.Add(1)

		return nil, false
	}

	var result Result
	if err := json.Unmarshal(data, &result); err != nil {
		c.logger.Warn("corrupt cache entry, treating as miss", slog.String("path", path), slog.Any("error", err))
		c.misses.Add(1)

		return nil, false
	}

	c.hits.Add(1)

	return &result, true
}

// Put persists a compile-check outcome, atomically via a temp-file-then-rename
// so a crash mid-write never leaves a corrupt result.json behind.
func (c *Cache) Put(key Key, result *Result, stderr []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	dir := c.entryDir(key)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cache: creating entry dir: %w", err)
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("cache: marshaling result: %w", err)
	}

	if err := writeAtomic(filepath.Join(dir, "result.json"), data); err != nil {
		return fmt.Errorf("cache: writing result.json: %w", err)
	}

	if len(stderr) > 0 {
		if err := writeAtomic(filepath.Join(dir, "stderr.txt"), stderr); err != nil {
			return fmt.Errorf("cache: writing stderr.txt: %w", err)
		}
	}

	return nil
}

// writeAtomic writes data to path via a sibling temp file plus rename, so
// concurrent readers never observe a partial write.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)

		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)

		return err
	}

	return os.Rename(tmpName, path)
}

// Stats summarizes the cache's on-disk footprint and this process's
// hit/miss counters.
type Stats struct {
	Entries           int
	TotalBytes        int64
	HitsSinceStart    uint64
	MissesSinceStart  uint64
}

// ErrNoCacheDir is returned by Stats/Clear when the cache directory does not
// exist yet (an empty cache, not an error condition worth surfacing).
var ErrNoCacheDir = errors.New("cache: base directory does not exist")

// Stats walks the cache tree to report entry counts and on-disk size
// alongside this process's lifetime hit/miss counters.
func (c *Cache) Stats() (Stats, error) {
	stats := Stats{
		HitsSinceStart:   c.hits.Load(),
		MissesSinceStart: c.misses.Load(),
	}

	entries, err := os.ReadDir(c.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return stats, nil
		}

		return stats, fmt.Errorf("cache: reading base dir: %w", err)
	}

	for _, langDir := range entries {
		if !langDir.IsDir() {
			continue
		}

		langPath := filepath.Join(c.baseDir, langDir.Name())
		shaEntries, err := os.ReadDir(langPath)
		if err != nil {
			continue
		}

		for _, shaEntry := range shaEntries {
			if !shaEntry.IsDir() {
				continue
			}

			stats.Entries++

			entryPath := filepath.Join(langPath, shaEntry.Name())
			filepath.Walk(entryPath, func(_ string, info os.FileInfo, err error) error {
				if err != nil || info.IsDir() {
					return nil
				}
				stats.TotalBytes += info.Size()

				return nil
			})
		}
	}

	return stats, nil
}

// Clear removes the entire on-disk cache tree. It does not reset this
// process's lifetime hit/miss counters.
func (c *Cache) Clear() error {
	if err := os.RemoveAll(c.baseDir); err != nil {
		return fmt.Errorf("cache: clearing: %w", err)
	}

	return nil
}

// Clean removes cache entries for toolchain versions other than the given
// current ones, keyed by language. This prunes stale entries left behind by
// a compiler upgrade without wiping hits that are still valid.
func (c *Cache) Clean(currentToolchains map[dsl.Lang]string) error {
	entries, err := os.ReadDir(c.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}

		return fmt.Errorf("cache: reading base dir: %w", err)
	}

	for _, langDir := range entries {
		if !langDir.IsDir() {
			continue
		}

		lang := dsl.Lang(langDir.Name())
		current, tracked := currentToolchains[lang]
		langPath := filepath.Join(c.baseDir, langDir.Name())

		shaEntries, err := os.ReadDir(langPath)
		if err != nil {
			continue
		}

		for _, shaEntry := range shaEntries {
			name := shaEntry.Name()
			if tracked && hasToolchainSuffix(name, current) {
				continue
			}

			if err := os.RemoveAll(filepath.Join(langPath, name)); err != nil {
				c.logger.Warn("failed to prune stale cache entry", slog.String("path", name), slog.Any("error", err))
			}
		}
	}

	return nil
}

func hasToolchainSuffix(entryName, toolchainID string) bool {
	suffix := "-" + toolchainID

	return len(entryName) >= len(suffix) && entryName[len(entryName)-len(suffix):] == suffix
}
