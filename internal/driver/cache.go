package driver

import (
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"pasres/internal/project"
)

// IndexCache хранит индексы использований на диске по хешу бандла.
// Thread-safe for concurrent access.
type IndexCache struct {
	mu  sync.RWMutex
	dir string
}

// OpenIndexCache opens the cache under $XDG_CACHE_HOME/app (or ~/.cache/app).
func OpenIndexCache(app string) (*IndexCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenIndexCacheAt(filepath.Join(base, app))
}

// OpenIndexCacheAt opens the cache rooted at dir.
func OpenIndexCacheAt(dir string) (*IndexCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &IndexCache{dir: dir}, nil
}

func (c *IndexCache) pathFor(key project.Digest) string {
	hexKey := hex.EncodeToString(key[:])
	// подкаталог "usages" упрощает ручную очистку
	return filepath.Join(c.dir, "usages", hexKey+".mp")
}

// Put stores ix under key.
func (c *IndexCache) Put(key project.Digest, ix *UsageIndex) error {
	if c == nil || ix == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return WriteIndex(c.pathFor(key), ix)
}

// Get loads the index stored under key. A missing entry, an entry of another
// schema and an entry built from other bundle bytes are misses.
func (c *IndexCache) Get(key project.Digest) (*UsageIndex, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	ix, err := ReadIndex(c.pathFor(key))
	switch {
	case errors.Is(err, os.ErrNotExist), errors.Is(err, ErrIndexSchema):
		return nil, false, nil
	case err != nil:
		return nil, false, err
	}
	if ix.Source != key {
		return nil, false, nil
	}
	return ix, true, nil
}

// DropAll invalidates the cache.
func (c *IndexCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	// переименуем каталог, потом удалим
	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := os.RemoveAll(old); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o755)
}
