package wishlist

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultIdleTimeout is how long a loaded store stays in memory without use.
const DefaultIdleTimeout = 30 * time.Minute

type slot struct {
	store    *Store
	lastUsed time.Time
}

// Registry hands out one Store per visitor, loading it on first use. Stores
// that sit idle are dropped by Sweep; their snapshot stays in the persister.
type Registry struct {
	namespace string
	persister Persister
	exporter  Exporter
	logger    *zap.SugaredLogger
	now       func() time.Time

	mu     sync.Mutex
	stores map[string]*slot
}

func NewRegistry(namespace string, persister Persister, exporter Exporter, logger *zap.SugaredLogger) *Registry {
	if namespace == "" {
		namespace = Namespace
	}
	return &Registry{
		namespace: namespace,
		persister: persister,
		exporter:  exporter,
		logger:    logger,
		now:       time.Now,
		stores:    make(map[string]*slot),
	}
}

func (r *Registry) Key(visitorID string) string {
	return r.namespace + ":" + visitorID
}

// Get returns the visitor's store, creating and hydrating it when needed.
// When hydration fails the store is still returned, not Ready, together with
// the error; a later Get retries.
func (r *Registry) Get(ctx context.Context, visitorID string) (*Store, error) {
	r.mu.Lock()
	sl, ok := r.stores[visitorID]
	if !ok {
		sl = &slot{store: NewStore(r.Key(visitorID), r.persister, r.exporter, r.logger)}
		r.stores[visitorID] = sl
	}
	sl.lastUsed = r.now()
	s := sl.store
	r.mu.Unlock()

	if err := s.Load(ctx); err != nil {
		r.logger.Warnw("wishlist hydration failed", "visitor", visitorID, "error", err.Error())
		return s, err
	}
	return s, nil
}

// Peek returns the visitor's store only if it is already in memory. It never
// creates a store nor touches the persister.
func (r *Registry) Peek(visitorID string) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()
	sl, ok := r.stores[visitorID]
	if !ok {
		return nil
	}
	sl.lastUsed = r.now()
	return sl.store
}

// Sweep drops stores unused for longer than idle and reports how many went.
func (r *Registry) Sweep(idle time.Duration) int {
	cutoff := r.now().Add(-idle)

	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, sl := range r.stores {
		if sl.lastUsed.Before(cutoff) {
			delete(r.stores, id)
			n++
		}
	}
	return n
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stores)
}
