// Package state holds the single in-memory source of truth for the
// currently displayed catalog and merges asynchronous per-item updates.
package state

import (
	"log/slog"
	"sync"

	"github.com/drake/gamevault/internal/domain"
)

// Store owns the current CatalogSnapshot. Exactly one snapshot is current
// at a time; merges from a superseded load are discarded by version so a
// stale run can never corrupt a newer snapshot. Construct one per app and
// inject it; never shared globally.
type Store struct {
	logger *slog.Logger

	mu       sync.RWMutex
	snapshot domain.CatalogSnapshot
	index    map[string]int // itemID -> position in snapshot.Items
	version  uint64
}

// New creates an empty state store.
func New(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		logger: logger,
		index:  make(map[string]int),
	}
}

// SetSnapshot replaces the current snapshot wholesale, rebuilds the item
// index, and bumps the version. Returns the new version, which enrichment
// passes back to MergeItem to gate stale merges.
func (s *Store) SetSnapshot(snap domain.CatalogSnapshot) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.version++
	snap.Version = s.version
	s.snapshot = snap

	s.index = make(map[string]int, len(snap.Items))
	for i, item := range snap.Items {
		s.index[item.ItemID] = i
	}

	s.logger.Debug("snapshot replaced", "owner", snap.OwnerID, "items", len(snap.Items), "version", s.version)
	return s.version
}

// MergeItem updates the matching item within the current snapshot. Merges
// carrying a stale version, or targeting an unknown itemID, are silently
// discarded. Items are never appended outside a full replace.
func (s *Store) MergeItem(version uint64, item domain.ItemSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if version != s.version {
		s.logger.Debug("discarded stale merge", "itemID", item.ItemID, "mergeVersion", version, "current", s.version)
		return
	}
	i, ok := s.index[item.ItemID]
	if !ok {
		return
	}
	s.snapshot.Items[i] = item
}

// Snapshot returns a defensive copy of the current snapshot. The copy is
// point-in-time: callers must not hold it across blocking calls and expect
// it to reflect later merges.
func (s *Store) Snapshot() domain.CatalogSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Items = make([]domain.ItemSummary, len(s.snapshot.Items))
	copy(snap.Items, s.snapshot.Items)
	return snap
}

// Version returns the current snapshot version.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// HasSnapshot reports whether a catalog is currently loaded.
func (s *Store) HasSnapshot() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot.OwnerID != ""
}

// Clear resets to an empty snapshot and resets the version.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot = domain.CatalogSnapshot{}
	s.index = make(map[string]int)
	s.version = 0
}
