package input

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/multierr"

	"github.com/Faultbox/z64forge/pkg/errs"
	"github.com/Faultbox/z64forge/pkg/o2r"
)

// Resolver finds referenced files in search directories and .o2r
// archives. Sources are searched in reverse order of addition, so the
// last added has the highest priority.
type Resolver struct {
	dirs     []string
	archives []*o2r.Archive
	cache    *Cache
	mu       sync.RWMutex
}

// NewResolver creates a resolver searching dirs.
func NewResolver(dirs ...string) *Resolver {
	return &Resolver{
		dirs:  dirs,
		cache: NewCache(),
	}
}

// AddDir adds a search directory.
func (r *Resolver) AddDir(dir string) {
	r.mu.Lock()
	r.dirs = append(r.dirs, dir)
	r.mu.Unlock()
}

// AddArchive adds an .o2r archive.
func (r *Resolver) AddArchive(path string) error {
	archive, err := o2r.OpenArchive(path)
	if err != nil {
		return errs.Resource("input", err, "opening archive %s", path)
	}

	r.mu.Lock()
	r.archives = append(r.archives, archive)
	r.mu.Unlock()

	return nil
}

// Load returns the contents of name. Absolute names are read directly.
// A name found nowhere is a resource error wrapping fs.ErrNotExist.
func (r *Resolver) Load(name string) ([]byte, error) {
	if data, ok := r.cache.Get(name); ok {
		return data, nil
	}

	if filepath.IsAbs(name) {
		data, err := os.ReadFile(name)
		if err != nil {
			return nil, errs.Resource("input", err, "reading %s", name)
		}
		r.cache.Set(name, data)
		return data, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := len(r.archives) - 1; i >= 0; i-- {
		if !r.archives[i].Contains(name) {
			continue
		}
		data, err := r.archives[i].Read(name)
		if err != nil {
			return nil, errs.Resource("input", err, "reading %s from archive", name)
		}
		r.cache.Set(name, data)
		return data, nil
	}

	for i := len(r.dirs) - 1; i >= 0; i-- {
		data, err := os.ReadFile(filepath.Join(r.dirs[i], filepath.FromSlash(name)))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, errs.Resource("input", err, "reading %s", name)
		}
		r.cache.Set(name, data)
		return data, nil
	}

	return nil, errs.Resource("input", fs.ErrNotExist, "file %s not found", name)
}

// Close closes all archives and clears the cache.
func (r *Resolver) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var err error
	for _, archive := range r.archives {
		err = multierr.Append(err, archive.Close())
	}
	r.archives = nil
	r.cache.Clear()
	return err
}

// Cache is a simple in-memory cache for loaded files.
type Cache struct {
	data map[string][]byte
	mu   sync.RWMutex

	// Stats
	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string][]byte),
	}
}

// Get retrieves an item from cache.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return data, ok
}

// Set stores an item in cache.
func (c *Cache) Set(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
}

// Clear clears the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string][]byte)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}
