package pipeline

import (
	"container/list"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/text/unicode/norm"
)

// Cache stores pipeline results by key. A value past its TTL is a miss;
// ttl <= 0 never expires. *store.Store and *MemoryCache implement it.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Key identifies one Improve call: the NFC-normalized text, the sorted
// capability set, the language and the web flag.
func Key(text string, opts Options) string {
	caps := slices.Clone(opts.Capabilities)
	if len(caps) == 0 {
		caps = slices.Clone(DefaultCapabilities)
	}
	slices.Sort(caps)
	caps = slices.Compact(caps)

	h := sha256.New()
	h.Write([]byte(norm.NFC.String(text)))
	h.Write([]byte{0})
	h.Write([]byte(strings.Join(caps, ",")))
	h.Write([]byte{0})
	h.Write([]byte(strings.ToLower(opts.Lang)))
	if opts.Web {
		h.Write([]byte{0, 'w'})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Cached serves repeated Improve calls from a Cache. Cache failures are
// logged and treated as misses.
type Cached struct {
	next   Pipeline
	cache  Cache
	ttl    time.Duration
	logger *slog.Logger

	hits, misses atomic.Int64
}

// NewCached wraps p with cache.
func NewCached(p Pipeline, cache Cache, ttl time.Duration) *Cached {
	return &Cached{next: p, cache: cache, ttl: ttl, logger: slog.New(slog.DiscardHandler)}
}

// WithLogger sets the logger for cache failures.
func (c *Cached) WithLogger(l *slog.Logger) *Cached {
	c.logger = l
	return c
}

func (c *Cached) Improve(ctx context.Context, text string, opts Options) (*Result, error) {
	key := Key(text, opts)

	data, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.Warn("cache read failed", "error", err)
	}
	if ok {
		var res Result
		if err := json.Unmarshal(data, &res); err == nil {
			c.hits.Add(1)
			return &res, nil
		}
		c.logger.Warn("discarding unreadable cache entry", "key", key)
	}
	c.misses.Add(1)

	res, err := c.next.Improve(ctx, text, opts)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(res); err == nil {
		if err := c.cache.Put(ctx, key, data, c.ttl); err != nil {
			c.logger.Warn("cache write failed", "error", err)
		}
	}
	return res, nil
}

// Hits and Misses count lookups since construction. The watch loop logs
// them per run next to the MemoryCache totals.
func (c *Cached) Hits() int64   { return c.hits.Load() }
func (c *Cached) Misses() int64 { return c.misses.Load() }

// DefaultMemoryCacheSize bounds a MemoryCache built with size <= 0.
const DefaultMemoryCacheSize = 200

// MemoryCache is an in-process LRU cache with per-entry expiry. It is safe
// for concurrent use.
type MemoryCache struct {
	mu      sync.Mutex
	maxSize int
	order   *list.List
	items   map[string]*list.Element
	now     func() time.Time

	hits, misses int
}

type memoryEntry struct {
	key     string
	value   []byte
	expires time.Time
}

// MemoryStats describes a MemoryCache.
type MemoryStats struct {
	Size    int     `json:"size"`
	MaxSize int     `json:"max_size"`
	Hits    int     `json:"hits"`
	Misses  int     `json:"misses"`
	HitRate float64 `json:"hit_rate"`
}

func NewMemoryCache(maxSize int) *MemoryCache {
	if maxSize <= 0 {
		maxSize = DefaultMemoryCacheSize
	}
	return &MemoryCache{
		maxSize: maxSize,
		order:   list.New(),
		items:   make(map[string]*list.Element),
		now:     time.Now,
	}
}

func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	el, ok := m.items[key]
	if !ok {
		m.misses++
		return nil, false, nil
	}
	e := el.Value.(*memoryEntry)
	if !e.expires.IsZero() && !m.now().Before(e.expires) {
		m.order.Remove(el)
		delete(m.items, key)
		m.misses++
		return nil, false, nil
	}
	m.order.MoveToFront(el)
	m.hits++
	return slices.Clone(e.value), true, nil
}

func (m *MemoryCache) Put(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var expires time.Time
	if ttl > 0 {
		expires = m.now().Add(ttl)
	}
	if el, ok := m.items[key]; ok {
		e := el.Value.(*memoryEntry)
		e.value, e.expires = slices.Clone(value), expires
		m.order.MoveToFront(el)
		return nil
	}
	if m.order.Len() >= m.maxSize {
		if oldest := m.order.Back(); oldest != nil {
			m.order.Remove(oldest)
			delete(m.items, oldest.Value.(*memoryEntry).key)
		}
	}
	m.items[key] = m.order.PushFront(&memoryEntry{key: key, value: slices.Clone(value), expires: expires})
	return nil
}

// Clear drops every entry and resets the counters.
func (m *MemoryCache) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.order.Init()
	m.items = make(map[string]*list.Element)
	m.hits, m.misses = 0, 0
}

func (m *MemoryCache) Stats() MemoryStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := MemoryStats{Size: m.order.Len(), MaxSize: m.maxSize, Hits: m.hits, Misses: m.misses}
	if total := m.hits + m.misses; total > 0 {
		s.HitRate = float64(m.hits) / float64(total)
	}
	return s
}
