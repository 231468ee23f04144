package wishlist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"storefront/internal/domain/catalog"

	"github.com/redis/go-redis/v9"
)

// Persister stores one serialized entry list per key.
type Persister interface {
	Load(ctx context.Context, key string) ([]Entry, error)
	Save(ctx context.Context, key string, entries []Entry) error
}

func encodeEntries(entries []Entry) ([]byte, error) {
	if entries == nil {
		entries = []Entry{}
	}
	return json.Marshal(entries)
}

func decodeEntries(raw []byte) ([]Entry, error) {
	if len(raw) == 0 {
		return []Entry{}, nil
	}
	var entries []Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("decode wishlist snapshot: %w", err)
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}

// ------------------------------------
// memory
// ------------------------------------

// MemoryPersister keeps serialized snapshots in process memory. Snapshots
// survive a store being rebuilt but not a restart.
type MemoryPersister struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{data: make(map[string][]byte)}
}

func (m *MemoryPersister) Load(ctx context.Context, key string) ([]Entry, error) {
	m.mu.RLock()
	raw := m.data[key]
	m.mu.RUnlock()
	return decodeEntries(raw)
}

func (m *MemoryPersister) Save(ctx context.Context, key string, entries []Entry) error {
	raw, err := encodeEntries(entries)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data[key] = raw
	m.mu.Unlock()
	return nil
}

// ------------------------------------
// redis
// ------------------------------------

// RedisPersister keeps snapshots as JSON strings. A zero ttl keeps them
// forever.
type RedisPersister struct {
	kv  catalog.KV
	ttl time.Duration
}

func NewRedisPersister(kv catalog.KV, ttl time.Duration) *RedisPersister {
	return &RedisPersister{kv: kv, ttl: ttl}
}

func (r *RedisPersister) Load(ctx context.Context, key string) ([]Entry, error) {
	raw, err := r.kv.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return []Entry{}, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeEntries(raw)
}

func (r *RedisPersister) Save(ctx context.Context, key string, entries []Entry) error {
	raw, err := encodeEntries(entries)
	if err != nil {
		return err
	}
	return r.kv.Set(ctx, key, raw, r.ttl).Err()
}
