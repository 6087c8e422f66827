// internal/extract/cache.go
package extract

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/mwiater/fieldreport/internal/resultstree"
)

// DefaultCacheSize is used when a non-positive size is requested.
const DefaultCacheSize = 16

// Cache memoizes Extract by document digest. The returned slices are shared
// between callers and must not be modified.
type Cache struct {
	entries *lru.Cache[string, []TestCaseRecord]
	misses  int
}

// NewCache builds a cache holding at most size documents.
func NewCache(size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	entries, err := lru.New[string, []TestCaseRecord](size)
	if err != nil {
		return nil, fmt.Errorf("create extraction cache: %w", err)
	}
	return &Cache{entries: entries}, nil
}

// Records returns the test cases of doc, extracting them on first use.
func (c *Cache) Records(doc *resultstree.Document) []TestCaseRecord {
	if records, ok := c.entries.Get(doc.Digest); ok {
		return records
	}
	c.misses++
	records := Extract(doc.Root)
	c.entries.Add(doc.Digest, records)
	return records
}

// Misses reports how many lookups ran the extractor.
func (c *Cache) Misses() int { return c.misses }

// Len reports the number of cached documents.
func (c *Cache) Len() int { return c.entries.Len() }
