// Package kvstore implements an expiring key-value store partitioned by
// domain tags, persisted in BoltDB with an authoritative in-memory map.
package kvstore

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/drake/gamevault/internal/resolver"
)

var bucketEntries = []byte("entries")

// Domain tags used by the loaders. Entries carry their tag so bulk
// operations and key migration can work without out-of-band context.
const (
	DomainIdentity   = "identity"
	DomainCatalog    = "catalog"
	DomainItemDetail = "itemDetail"
)

// Entry is a stored value with its expiry and domain tag. A nil ExpiresAt
// means the entry never expires.
type Entry struct {
	Value     json.RawMessage `json:"value"`
	CreatedAt time.Time       `json:"createdAt"`
	ExpiresAt *time.Time      `json:"expiresAt,omitempty"`
	Domain    string          `json:"domain"`
}

func (e Entry) expired(now time.Time) bool {
	return e.ExpiresAt != nil && now.After(*e.ExpiresAt)
}

// Options configures a Set call. A zero TTL means the entry never expires.
type Options struct {
	Domain string
	TTL    time.Duration
}

// Store is a TTL/domain KV store. The in-memory map is authoritative;
// BoltDB mirrors it for persistence across runs. Memory-only when opened
// without a directory.
type Store struct {
	db     *bolt.DB
	logger *slog.Logger
	now    func() time.Time

	mu      sync.RWMutex
	entries map[string]Entry
	domains map[string]map[string]struct{} // domain -> keyset index
}

// Option customizes a Store.
type Option func(*Store)

// WithClock overrides the time source. Tests use this for TTL expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New opens a store at dir/gamevault.db, or a memory-only store when dir
// is empty. Persisted entries are loaded eagerly; legacy bare keys are
// migrated to the prefixed convention once at open.
func New(dir string, logger *slog.Logger, opts ...Option) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Store{
		logger:  logger,
		now:     time.Now,
		entries: make(map[string]Entry),
		domains: make(map[string]map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	if dir == "" {
		return s, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(filepath.Join(dir, "gamevault.db"), 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketEntries)
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}
	s.db = db

	if err := s.loadEntries(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// loadEntries populates the memory map from disk, dropping entries that
// expired between runs and migrating legacy bare keys.
func (s *Store) loadEntries() error {
	now := s.now()
	migrated := 0

	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketEntries)
		c := b.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var e Entry
			if err := json.Unmarshal(v, &e); err != nil {
				s.logger.Warn("dropping unreadable cache entry", "key", string(k))
				if err := b.Delete(k); err != nil {
					return err
				}
				continue
			}
			if e.expired(now) {
				if err := b.Delete(k); err != nil {
					return err
				}
				continue
			}

			key := string(k)
			canonical := resolver.CanonicalizeKey(kindForDomain(e.Domain), key)
			if canonical != key {
				data := make([]byte, len(v))
				copy(data, v)
				if err := b.Put([]byte(canonical), data); err != nil {
					return err
				}
				if err := b.Delete(k); err != nil {
					return err
				}
				key = canonical
				migrated++
			}

			s.entries[key] = e
			s.indexAdd(e.Domain, key)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if migrated > 0 {
		s.logger.Info("migrated legacy cache keys", "count", migrated)
	}
	s.logger.Debug("loaded cache entries", "count", len(s.entries))
	return nil
}

func kindForDomain(domain string) resolver.Kind {
	switch domain {
	case DomainIdentity:
		return resolver.KindIdentity
	case DomainCatalog:
		return resolver.KindCatalog
	case DomainItemDetail:
		return resolver.KindItemDetail
	default:
		return resolver.Kind(domain)
	}
}

// Set stores value under key, marshaled to JSON. A positive TTL sets the
// expiry relative to the store clock.
func (s *Store) Set(key string, value any, opts Options) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	now := s.now()
	e := Entry{Value: data, CreatedAt: now, Domain: opts.Domain}
	if opts.TTL > 0 {
		exp := now.Add(opts.TTL)
		e.ExpiresAt = &exp
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.entries[key]; ok && old.Domain != e.Domain {
		s.indexRemove(old.Domain, key)
	}
	s.entries[key] = e
	s.indexAdd(e.Domain, key)

	return s.persist(key, e)
}

// Get returns the stored raw value. Expired entries are lazily evicted
// and reported as absent.
func (s *Store) Get(key string) (json.RawMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	if e.expired(s.now()) {
		s.evict(key, e)
		return nil, false
	}
	return e.Value, true
}

// GetAs unmarshals the stored value into dest. Returns false when the key
// is absent, expired, or the stored JSON does not fit dest.
func (s *Store) GetAs(key string, dest any) bool {
	raw, ok := s.Get(key)
	if !ok {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

// Has reports whether a live (non-expired) entry exists for key.
func (s *Store) Has(key string) bool {
	_, ok := s.Get(key)
	return ok
}

// Delete removes key if present.
func (s *Store) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return
	}
	s.evict(key, e)
}

// Sweep evicts every entry expired as of now and returns the count.
// Correctness does not depend on it running; reads expire lazily.
func (s *Store) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for key, e := range s.entries {
		if e.expired(now) {
			s.evict(key, e)
			evicted++
		}
	}
	if evicted > 0 {
		s.logger.Debug("swept expired entries", "count", evicted)
	}
	return evicted
}

// GetByDomain returns the live entries tagged with domain, keyed by cache
// key. Expired entries encountered during the scan are evicted.
func (s *Store) GetByDomain(domain string) map[string]json.RawMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := s.domains[domain]
	out := make(map[string]json.RawMessage, len(keys))
	now := s.now()
	for key := range keys {
		e, ok := s.entries[key]
		if !ok {
			continue
		}
		if e.expired(now) {
			s.evict(key, e)
			continue
		}
		out[key] = e.Value
	}
	return out
}

// ClearDomain removes every entry tagged with domain and returns how many
// were deleted. Other domains are untouched.
func (s *Store) ClearDomain(domain string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := 0
	for key := range s.domains[domain] {
		if e, ok := s.entries[key]; ok {
			s.evict(key, e)
			deleted++
		}
	}
	delete(s.domains, domain)
	s.logger.Info("cleared cache domain", "domain", domain, "deleted", deleted)
	return deleted
}

// Len returns the number of resident entries, including any not yet
// lazily expired.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Domains returns the domain tags that currently have at least one key.
func (s *Store) Domains() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.domains))
	for d, keys := range s.domains {
		if len(keys) > 0 {
			out = append(out, d)
		}
	}
	return out
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// === internals (callers hold s.mu) ===

func (s *Store) indexAdd(domain, key string) {
	set, ok := s.domains[domain]
	if !ok {
		set = make(map[string]struct{})
		s.domains[domain] = set
	}
	set[key] = struct{}{}
}

func (s *Store) indexRemove(domain, key string) {
	if set, ok := s.domains[domain]; ok {
		delete(set, key)
		if len(set) == 0 {
			delete(s.domains, domain)
		}
	}
}

func (s *Store) evict(key string, e Entry) {
	delete(s.entries, key)
	s.indexRemove(e.Domain, key)
	if s.db == nil {
		return
	}
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketEntries).Delete([]byte(key))
	})
	if err != nil {
		s.logger.Error("failed to delete cache entry", "error", err, "key", key)
	}
}

func (s *Store) persist(key string, e Entry) error {
	if s.db == nil {
		return nil
	}
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketEntries).Put([]byte(key), data)
	})
}
