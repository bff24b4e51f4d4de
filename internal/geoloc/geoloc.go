// Package geoloc resolves IP addresses to coordinates for the optional
// geolocation MCDA criterion, caching results on disk so repeated runs
// against the same crawl don't re-query a provider for every node.
package geoloc

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/runziggurat/ips/pkg/metrics"
	"github.com/runziggurat/ips/pkg/model"
)

// Provider resolves a single IP address to coordinates.
type Provider interface {
	Lookup(ip string) (model.Coordinates, error)
}

type cachedEntry struct {
	LastUpdated time.Time         `json:"last_updated"`
	Coordinates model.Coordinates `json:"coordinates"`
}

// Cache looks up IP coordinates through a chain of providers, tried in
// order until one succeeds, caching the result for keepDays.
type Cache struct {
	mu        sync.RWMutex
	entries   map[string]cachedEntry
	providers []Provider
	cacheFile string
	keepDays  int
}

// NewCache creates a cache backed by cacheFile, retaining entries for
// keepDays before they're treated as stale and re-fetched.
func NewCache(cacheFile string, keepDays int) *Cache {
	return &Cache{
		entries:   make(map[string]cachedEntry),
		cacheFile: cacheFile,
		keepDays:  keepDays,
	}
}

// AddProvider appends a provider to the lookup chain; providers are tried
// in the order they were added.
func (c *Cache) AddProvider(p Provider) {
	c.providers = append(c.providers, p)
}

// Load reads cached entries from the cache file, if it exists.
func (c *Cache) Load() error {
	data, err := os.ReadFile(c.cacheFile)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("geoloc: reading cache %s: %w", c.cacheFile, err)
	}

	var entries map[string]cachedEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("geoloc: decoding cache %s: %w", c.cacheFile, err)
	}

	c.mu.Lock()
	c.entries = entries
	c.mu.Unlock()
	return nil
}

// Save writes the current cache entries to the cache file.
func (c *Cache) Save() error {
	c.mu.RLock()
	data, err := json.Marshal(c.entries)
	c.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("geoloc: encoding cache: %w", err)
	}
	if err := os.WriteFile(c.cacheFile, data, 0o644); err != nil {
		return fmt.Errorf("geoloc: writing cache %s: %w", c.cacheFile, err)
	}
	return nil
}

// Lookup returns coordinates for ip, consulting the cache first and
// falling through the provider chain on a miss or stale entry.
func (c *Cache) Lookup(ip string) (model.Coordinates, bool) {
	defer metrics.Timer(metrics.GeolocationLookup)()

	if coords, ok := c.checkCache(ip); ok {
		return coords, true
	}

	for _, p := range c.providers {
		coords, err := p.Lookup(ip)
		if err != nil {
			continue
		}
		c.mu.Lock()
		c.entries[ip] = cachedEntry{LastUpdated: time.Now(), Coordinates: coords}
		c.mu.Unlock()
		return coords, true
	}

	return model.Coordinates{}, false
}

func (c *Cache) checkCache(ip string) (model.Coordinates, bool) {
	c.mu.RLock()
	entry, ok := c.entries[ip]
	c.mu.RUnlock()
	if !ok {
		return model.Coordinates{}, false
	}

	maxAge := time.Duration(c.keepDays) * 24 * time.Hour
	if time.Since(entry.LastUpdated) >= maxAge {
		c.mu.Lock()
		delete(c.entries, ip)
		c.mu.Unlock()
		return model.Coordinates{}, false
	}
	return entry.Coordinates, true
}
