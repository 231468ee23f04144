package wishlist

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"storefront/internal/domain/catalog"

	"go.uber.org/zap"
)

// Namespace prefixes every persisted wishlist key.
const Namespace = "compugeeks-wishlist"

// ErrNotReady is returned by mutations attempted before the persisted
// snapshot was loaded. Writing then would overwrite the stored list.
var ErrNotReady = errors.New("wishlist not loaded yet")

// Entry is a product snapshot taken when it was added.
type Entry struct {
	Product catalog.Product `json:"product"`
	AddedAt time.Time       `json:"addedAt"`
}

// Store is one visitor's quote list. Insertion order is kept and is the
// display and export order. At most one entry exists per product id.
type Store struct {
	key       string
	persister Persister
	exporter  Exporter
	logger    *zap.SugaredLogger
	now       func() time.Time

	mu      sync.Mutex
	entries []Entry
	ready   bool
}

func NewStore(key string, persister Persister, exporter Exporter, logger *zap.SugaredLogger) *Store {
	return &Store{
		key:       key,
		persister: persister,
		exporter:  exporter,
		logger:    logger,
		now:       time.Now,
		entries:   []Entry{},
	}
}

// Load hydrates the store from its persisted snapshot. Until it succeeds the
// store is not Ready and refuses mutations.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready {
		return nil
	}

	entries, err := s.persister.Load(ctx, s.key)
	if err != nil {
		return fmt.Errorf("load wishlist %s: %w", s.key, err)
	}
	s.entries = dedupe(entries)
	s.ready = true
	return nil
}

func (s *Store) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

// Add appends a snapshot of p. It reports false when p is already present,
// in which case the existing entry (and its addedAt) is kept.
func (s *Store) Add(ctx context.Context, p catalog.Product) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return false, ErrNotReady
	}
	if s.indexOf(p.ID) >= 0 {
		return false, nil
	}

	s.entries = append(s.entries, Entry{Product: p.Clone(), AddedAt: s.now().UTC()})
	s.persist(ctx)
	return true, nil
}

// Remove deletes the entry for productID. Absent ids are a no-op.
func (s *Store) Remove(ctx context.Context, productID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return false, ErrNotReady
	}
	i := s.indexOf(productID)
	if i < 0 {
		return false, nil
	}

	s.entries = append(s.entries[:i:i], s.entries[i+1:]...)
	s.persist(ctx)
	return true, nil
}

func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return ErrNotReady
	}
	s.entries = []Entry{}
	s.persist(ctx)
	return nil
}

func (s *Store) Contains(productID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexOf(productID) >= 0
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Items returns a copy of the entries in insertion order.
func (s *Store) Items() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, len(s.entries))
	for i, e := range s.entries {
		out[i] = Entry{Product: e.Product.Clone(), AddedAt: e.AddedAt}
	}
	return out
}

// ExportLink renders the list into the configured channel link, or "" when
// the list is empty.
func (s *Store) ExportLink() string {
	return s.exporter.Link(s.Items())
}

func (s *Store) indexOf(productID string) int {
	for i, e := range s.entries {
		if e.Product.ID == productID {
			return i
		}
	}
	return -1
}

// persist writes the full snapshot. Called with mu held so saves land in
// mutation order. Failures keep the in-memory state.
func (s *Store) persist(ctx context.Context) {
	if err := s.persister.Save(ctx, s.key, s.entries); err != nil {
		s.logger.Errorw("failed to persist wishlist", "key", s.key, "items", len(s.entries), "error", err.Error())
	}
}

func dedupe(entries []Entry) []Entry {
	out := make([]Entry, 0, len(entries))
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		if seen[e.Product.ID] {
			continue
		}
		seen[e.Product.ID] = true
		out = append(out, e)
	}
	return out
}
