package cache

import (
	"sync"
	"time"
)

// MemCache is a small in-memory TTL cache safe for concurrent use.
// A background cleanup goroutine runs when NewMemCache is given a
// positive cleanupInterval; Close stops it.
type MemCache[K comparable, V any] struct {
	mu    sync.RWMutex
	items map[K]item[V]
	ttl   time.Duration
	stop  chan struct{}
	wg    sync.WaitGroup
	once  sync.Once
}

type item[V any] struct {
	value      V
	expiration int64 // unix nano; 0 means no expiration
}

// NewMemCache creates a cache whose entries live for ttl (forever when ttl <= 0).
func NewMemCache[K comparable, V any](ttl, cleanupInterval time.Duration) *MemCache[K, V] {
	m := &MemCache[K, V]{
		items: make(map[K]item[V]),
		ttl:   ttl,
		stop:  make(chan struct{}),
	}
	if cleanupInterval > 0 {
		m.wg.Add(1)
		go func() {
			ticker := time.NewTicker(cleanupInterval)
			defer ticker.Stop()
			defer m.wg.Done()
			for {
				select {
				case <-ticker.C:
					m.cleanup()
				case <-m.stop:
					return
				}
			}
		}()
	}
	return m
}

func (m *MemCache[K, V]) Set(key K, value V) {
	var exp int64
	if m.ttl > 0 {
		exp = time.Now().Add(m.ttl).UnixNano()
	}
	m.mu.Lock()
	m.items[key] = item[V]{value: value, expiration: exp}
	m.mu.Unlock()
}

func (m *MemCache[K, V]) Get(key K) (V, bool) {
	m.mu.RLock()
	it, ok := m.items[key]
	m.mu.RUnlock()

	if !ok || it.isExpired(time.Now().UnixNano()) {
		var zero V
		return zero, false
	}
	return it.value, true
}

func (m *MemCache[K, V]) Close() {
	m.once.Do(func() {
		close(m.stop)
		m.wg.Wait()
	})
}

func (it item[V]) isExpired(now int64) bool {
	return it.expiration != 0 && now > it.expiration
}

func (m *MemCache[K, V]) cleanup() {
	now := time.Now().UnixNano()
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, it := range m.items {
		if it.isExpired(now) {
			delete(m.items, k)
		}
	}
}
