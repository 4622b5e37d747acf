package storage

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Cache holds serialized read responses. A miss is (nil, false, nil).
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// DeletePrefix drops every key starting with prefix.
	DeletePrefix(ctx context.Context, prefix string) error
}

// TournamentPrefix is the key prefix of everything cached for one tournament.
func TournamentPrefix(tournamentID int) string {
	return "tournament:" + strconv.Itoa(tournamentID) + ":"
}

// TournamentKey builds the cache key of a resource of a tournament, e.g.
// "tournament:7:zones".
func TournamentKey(tournamentID int, resource string) string {
	return TournamentPrefix(tournamentID) + resource
}

// TournamentGenerationKey holds the current generation token of a tournament.
// It lives outside TournamentPrefix so invalidation does not remove it.
func TournamentGenerationKey(tournamentID int) string {
	return "generation:tournament:" + strconv.Itoa(tournamentID)
}

type NoopCache struct{}

func (NoopCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, nil
}

func (NoopCache) Set(context.Context, string, []byte, time.Duration) error {
	return nil
}

func (NoopCache) DeletePrefix(context.Context, string) error {
	return nil
}

type memoryEntry struct {
	value   []byte
	expires time.Time
}

type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryEntry), now: time.Now}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !e.expires.IsZero() && !c.now().Before(e.expires) {
		delete(c.entries, key)
		return nil, false, nil
	}
	return e.value, true, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := memoryEntry{value: value}
	if ttl > 0 {
		e.expires = c.now().Add(ttl)
	}
	c.entries[key] = e
	return nil
}

func (c *MemoryCache) DeletePrefix(_ context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
	return nil
}
