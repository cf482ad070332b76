package app

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// DocCache is the degraded-mode fallback for the document list: a JSON file
// refreshed on every successful list fetch and read back when the backend
// is unreachable, so transient outages don't wipe the panel.
type DocCache struct {
	mu   sync.Mutex
	path string
}

type docCacheFile struct {
	Documents []Document `json:"documents"`
	SavedAt   time.Time  `json:"saved_at"`
}

func NewDocCache(dataDir string) *DocCache {
	return &DocCache{path: filepath.Join(dataDir, "documents.json")}
}

func (c *DocCache) Save(documents []Document) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.write(documents)
}

// Load returns an empty list when no cache exists.
func (c *DocCache) Load() ([]Document, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.read()
}

// Remove drops one entry from the cached copy, used when a delete succeeds
// only locally.
func (c *DocCache) Remove(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	docs, err := c.read()
	if err != nil {
		return err
	}
	kept := docs[:0]
	for _, d := range docs {
		if d.ID != id {
			kept = append(kept, d)
		}
	}
	return c.write(kept)
}

func (c *DocCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := os.Remove(c.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (c *DocCache) write(documents []Document) error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(docCacheFile{Documents: documents, SavedAt: time.Now().UTC()}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.path, data, 0600)
}

func (c *DocCache) read() ([]Document, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Document{}, nil
		}
		return nil, err
	}
	var file docCacheFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	if file.Documents == nil {
		file.Documents = []Document{}
	}
	return file.Documents, nil
}
