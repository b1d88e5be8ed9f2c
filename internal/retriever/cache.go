package retriever

import (
	"container/list"
	"sync"

	"github.com/rs/zerolog/log"

	"chatbot-rag/internal/vectordb"
)

// Cache is a bounded LRU of loaded index bundles keyed by bot ID. Loaded
// stores are read-only, so concurrent Get calls may share one store. Load
// failures are not cached; the next Get retries the disk.
type Cache struct {
	mu       sync.Mutex
	capacity int
	order    *list.List
	items    map[string]*list.Element
	load     func(botID string) (*vectordb.Store, error)
}

type cacheEntry struct {
	key   string
	store *vectordb.Store
}

func NewCache(capacity int, load func(botID string) (*vectordb.Store, error)) *Cache {
	if capacity < 1 {
		capacity = 1
	}
	return &Cache{
		capacity: capacity,
		order:    list.New(),
		items:    make(map[string]*list.Element),
		load:     load,
	}
}

// Get returns the loaded bundle for botID, loading it on first use and
// evicting the least recently used bundle when the cache is full.
func (c *Cache) Get(botID string) (*vectordb.Store, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[botID]; ok {
		c.order.MoveToFront(el)
		return el.Value.(*cacheEntry).store, nil
	}

	store, err := c.load(botID)
	if err != nil {
		return nil, err
	}

	c.items[botID] = c.order.PushFront(&cacheEntry{key: botID, store: store})
	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		evicted := oldest.Value.(*cacheEntry)
		delete(c.items, evicted.key)
		log.Debug().Str("bot", evicted.key).Msg("evicted index bundle from cache")
	}
	return store, nil
}

// Invalidate drops botID from the cache, e.g. after re-ingestion or delete.
func (c *Cache) Invalidate(botID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[botID]; ok {
		c.order.Remove(el)
		delete(c.items, botID)
	}
}
