// Package libcache caches dlopen'd FMI 2.0 library handles keyed by resolved
// absolute binary path, refcounted, so that two Fmu facades (or two
// instances of the same FMU) opened from the same unpacked binary share one
// handle instead of dlopen-ing it twice.
package libcache

import (
	"os"
	"sync"

	"github.com/containerd/log"
	"github.com/opencontainers/go-digest"

	"github.com/fmi4go/fmi2/internal/cabi"
)

// Entry is a shared, refcounted Library handle. Digest is logged as an
// integrity line on first open; it is not part of the cache key (the cache
// is keyed by resolved binary path, see Cache.Open).
type Entry struct {
	Library *cabi.Library
	Digest  digest.Digest

	mu       sync.Mutex
	refcount int
	path     string
	cache    *Cache
}

// Release drops one reference; when the last reference drops, the
// underlying library is closed and the entry is evicted from the cache.
func (e *Entry) Release() error {
	e.mu.Lock()
	e.refcount--
	last := e.refcount == 0
	e.mu.Unlock()

	if !last {
		return nil
	}

	e.cache.evict(e.path)
	return e.Library.Close()
}

// Acquire adds one reference and returns the entry, for a second caller
// sharing a handle already held elsewhere.
func (e *Entry) Acquire() *Entry {
	e.mu.Lock()
	e.refcount++
	e.mu.Unlock()
	return e
}

// Cache is a process-wide, mutex-guarded table of open library handles.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*Entry
}

// New returns an empty Cache. Most callers should use the package-level
// Default cache; New exists for tests that want isolation.
func New() *Cache {
	return &Cache{entries: make(map[string]*Entry)}
}

// Default is the process-wide cache used by the fmi package's facade.
var Default = New()

// Open returns a shared Entry for path, dlopen-ing it only if no cached
// handle already exists for that exact path.
func (c *Cache) Open(path string, kind cabi.Kind) (*Entry, error) {
	c.mu.Lock()
	if e, ok := c.entries[path]; ok {
		c.mu.Unlock()
		log.L.WithField("path", path).Debug("library cache hit")
		return e.Acquire(), nil
	}
	c.mu.Unlock()

	lib, err := cabi.Open(path, kind)
	if err != nil {
		return nil, err
	}

	d, derr := digestFile(path)
	if derr != nil {
		log.L.WithField("path", path).WithError(derr).Warn("library cache: failed to digest binary")
		d = ""
	}

	e := &Entry{Library: lib, Digest: d, refcount: 1, path: path, cache: c}
	log.L.WithField("path", path).WithField("digest", d).Debug("library cache miss: opened and cached")

	c.mu.Lock()
	if existing, ok := c.entries[path]; ok {
		// Lost a race with a concurrent Open of the same path; keep the
		// winner, discard ours.
		c.mu.Unlock()
		lib.Close()
		return existing.Acquire(), nil
	}
	c.entries[path] = e
	c.mu.Unlock()

	return e, nil
}

func (c *Cache) evict(path string) {
	c.mu.Lock()
	delete(c.entries, path)
	c.mu.Unlock()
}

func digestFile(path string) (digest.Digest, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return digest.FromReader(f)
}
