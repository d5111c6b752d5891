package gw2api

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"fortio.org/log"
)

type entry struct {
	data    json.RawMessage
	expires time.Time
}

// Cache keeps API responses in memory and, when Dir is set, on disk so they
// survive restarts. A Cache is safe for concurrent use; the zero value is a
// memory only cache.
type Cache struct {
	// Dir holds one file per endpoint; empty means memory only.
	Dir string

	mu  sync.Mutex
	mem map[string]entry
	now func() time.Time
}

// NewCache returns a cache backed by dir, or memory only when dir is empty.
func NewCache(dir string) *Cache {
	return &Cache{Dir: dir, mem: make(map[string]entry), now: time.Now}
}

// DefaultCacheDir is gw2_api under the user cache directory.
func DefaultCacheDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("user cache dir: %w", err)
	}
	return filepath.Join(base, "gw2_api"), nil
}

// Now returns the cache clock.
func (c *Cache) Now() time.Time {
	if c.now == nil {
		return time.Now()
	}
	return c.now()
}

// path maps an endpoint to its disk file: "maps/15" is stored as "maps.15".
func (c *Cache) path(endpoint string) string {
	return filepath.Join(c.Dir, strings.ReplaceAll(endpoint, "/", "."))
}

// Lookup returns the cached response for endpoint if it has not expired,
// checking memory first and then disk.
func (c *Cache) Lookup(endpoint string) (json.RawMessage, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.mem[endpoint]
	if !ok {
		e, ok = c.readDisk(endpoint)
		if ok {
			c.put(endpoint, e)
		}
	}
	if !ok || !c.Now().Before(e.expires) {
		return nil, false
	}
	return e.data, true
}

// Store records data for endpoint until expires, in memory and on disk.
// Disk failures are logged and otherwise ignored.
func (c *Cache) Store(endpoint string, data json.RawMessage, expires time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.put(endpoint, entry{data: data, expires: expires})
	if c.Dir == "" {
		return
	}
	if err := c.writeDisk(endpoint, data, expires); err != nil {
		log.Warnf("gw2api cache write %s: %v", endpoint, err)
	}
}

func (c *Cache) put(endpoint string, e entry) {
	if c.mem == nil {
		c.mem = make(map[string]entry)
	}
	c.mem[endpoint] = e
}

// Disk files hold a two element JSON array: [result, expiry unix seconds].
func (c *Cache) readDisk(endpoint string) (entry, bool) {
	if c.Dir == "" {
		return entry{}, false
	}
	b, err := os.ReadFile(c.path(endpoint))
	if err != nil {
		return entry{}, false
	}
	var pair []json.RawMessage
	if err := json.Unmarshal(b, &pair); err != nil || len(pair) != 2 {
		log.Debugf("gw2api cache %s: unreadable entry", endpoint)
		return entry{}, false
	}
	var expiry float64
	if err := json.Unmarshal(pair[1], &expiry); err != nil {
		log.Debugf("gw2api cache %s: bad expiry: %v", endpoint, err)
		return entry{}, false
	}
	sec := int64(expiry)
	nsec := int64((expiry - float64(sec)) * 1e9)
	return entry{data: pair[0], expires: time.Unix(sec, nsec)}, true
}

func (c *Cache) writeDisk(endpoint string, data json.RawMessage, expires time.Time) error {
	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return err
	}
	expiry := float64(expires.UnixNano()) / 1e9
	b, err := json.Marshal([]any{data, expiry})
	if err != nil {
		return err
	}
	return os.WriteFile(c.path(endpoint), b, 0o644)
}
