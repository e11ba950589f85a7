package policy

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/refset/returns-assistant/internal/returns"
)

// Cache memoizes Extract by the SHA-256 of the policy text. It is safe for
// concurrent use. Cached policies share their slices between callers, which
// is fine because StructuredPolicy is never mutated after extraction.
type Cache struct {
	entries *lru.Cache[string, returns.StructuredPolicy]
}

// NewCache creates a cache holding at most size extracted policies
func NewCache(size int) (*Cache, error) {
	entries, err := lru.New[string, returns.StructuredPolicy](size)
	if err != nil {
		return nil, fmt.Errorf("create policy cache: %w", err)
	}
	return &Cache{entries: entries}, nil
}

// Extract returns the cached extraction for text, extracting on a miss
func (c *Cache) Extract(text string) returns.StructuredPolicy {
	key := digest(text)
	if p, ok := c.entries.Get(key); ok {
		return p
	}
	p := Extract(text)
	c.entries.Add(key, p)
	return p
}

// Parse is Parse backed by the cache. Each call gets its own policy id.
func (c *Cache) Parse(text, sellerID, name string, now time.Time) returns.StructuredPolicy {
	return stamp(c.Extract(text), sellerID, name, now)
}

// Len reports how many extractions are cached
func (c *Cache) Len() int {
	return c.entries.Len()
}

func digest(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
