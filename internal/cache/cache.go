package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

type Entry struct {
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
	TTL       time.Duration   `json:"ttl"`
}

// Cache is a file-backed TTL cache. It keeps the latest card reports
// across restarts so on-demand checks answer without refetching.
type Cache struct {
	path    string
	entries map[string]Entry
	mu      sync.RWMutex

	// flushMu serializes snapshot-and-rename so a later marshal can never
	// be overwritten by an earlier, staler one.
	flushMu sync.Mutex
}

func New(path string) (*Cache, error) {
	c := &Cache{
		path:    path,
		entries: make(map[string]Entry),
	}

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read cache: %w", err)
		}
		if len(data) > 0 {
			if err := json.Unmarshal(data, &c.entries); err != nil {
				// Corrupt cache is not worth failing startup over
				c.entries = make(map[string]Entry)
			}
		}
	}

	return c, nil
}

// Get unmarshals the entry for key into target and reports whether a live
// entry was found. Expired entries are dropped on access.
func (c *Cache) Get(key string, target interface{}) (bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	if !ok {
		c.mu.RUnlock()
		return false, nil
	}

	expired := entry.TTL > 0 && time.Since(entry.Timestamp) > entry.TTL
	if !expired {
		err := json.Unmarshal(entry.Data, target)
		c.mu.RUnlock()
		if err != nil {
			return false, fmt.Errorf("unmarshal cache entry: %w", err)
		}
		return true, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	if e, exists := c.entries[key]; exists && e.TTL > 0 && time.Since(e.Timestamp) > e.TTL {
		delete(c.entries, key)
	}
	c.mu.Unlock()

	return false, nil
}

// Put stores a value under key. A zero TTL never expires.
func (c *Cache) Put(key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal value: %w", err)
	}

	c.mu.Lock()
	c.entries[key] = Entry{
		Data:      data,
		Timestamp: time.Now(),
		TTL:       ttl,
	}
	c.mu.Unlock()

	return c.flush()
}

// Remove deletes a specific entry.
func (c *Cache) Remove(key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return c.flush()
}

// Clear removes all entries.
func (c *Cache) Clear() error {
	c.mu.Lock()
	c.entries = make(map[string]Entry)
	c.mu.Unlock()
	return c.flush()
}

// flush persists the entries through a temp file and rename, so concurrent
// writers never leave a torn file behind.
func (c *Cache) flush() error {
	c.flushMu.Lock()
	defer c.flushMu.Unlock()

	dir := filepath.Dir(c.path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create cache dir: %w", err)
		}
	}

	c.mu.RLock()
	data, err := json.MarshalIndent(c.entries, "", "  ")
	c.mu.RUnlock()

	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(c.path)+".tmp*")
	if err != nil {
		return fmt.Errorf("create temp cache: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write temp cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp cache: %w", err)
	}

	if err := os.Rename(tmp.Name(), c.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace cache file: %w", err)
	}
	return nil
}

// BuildKey joins parts into a semantic cache key.
func BuildKey(parts ...string) string {
	return strings.Join(parts, "|")
}

// ReportKey is the cache key for a card's latest report. Lookups go through
// the lowered name so command input casing doesn't matter.
func ReportKey(cardName string) string {
	return BuildKey("report", strings.ToLower(strings.TrimSpace(cardName)))
}
