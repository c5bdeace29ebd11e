// Package assetcache stores downloaded artwork blobs keyed by source URL,
// persisted in BoltDB, with aggregate size and quota reporting.
package assetcache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/drake/gamevault/internal/domain"
)

var bucketAssets = []byte("assets")

// record is one stored blob with its bookkeeping fields.
type record struct {
	URL      string    `json:"url"`
	Blob     []byte    `json:"blob"`
	ByteSize int64     `json:"byteSize"`
	StoredAt time.Time `json:"storedAt"`
}

// Cache is the artwork blob store. The in-memory map is authoritative;
// BoltDB mirrors it for persistence. totalBytes always equals the sum of
// resident record sizes.
type Cache struct {
	db     *bolt.DB
	quota  domain.QuotaEstimator
	logger *slog.Logger
	now    func() time.Time

	mu         sync.RWMutex
	records    map[string]record
	totalBytes int64
}

// Option customizes a Cache.
type Option func(*Cache)

// WithClock overrides the time source used for StoredAt stamps.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// New opens an asset cache at dir/assets.db, or memory-only when dir is
// empty. quota may be nil; stats then report zero quota figures.
func New(dir string, quota domain.QuotaEstimator, logger *slog.Logger, opts ...Option) (*Cache, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if quota == nil {
		quota = nullQuota{}
	}

	c := &Cache{
		quota:   quota,
		logger:  logger,
		now:     time.Now,
		records: make(map[string]record),
	}
	for _, opt := range opts {
		opt(c)
	}

	if dir == "" {
		return c, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(filepath.Join(dir, "assets.db"), 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open asset db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketAssets)
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}
	c.db = db

	if err := c.loadRecords(); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

func (c *Cache) loadRecords() error {
	err := c.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketAssets).ForEach(func(k, v []byte) error {
			var r record
			if err := json.Unmarshal(v, &r); err != nil {
				c.logger.Warn("skipping unreadable asset record", "url", string(k))
				return nil
			}
			c.records[r.URL] = r
			c.totalBytes += r.ByteSize
			return nil
		})
	})
	if err != nil {
		return err
	}
	c.logger.Debug("loaded asset cache", "count", len(c.records), "totalBytes", c.totalBytes)
	return nil
}

// Store upserts a blob under its source URL and recomputes the aggregate
// size. Empty blobs are ignored.
func (c *Cache) Store(url string, blob []byte) error {
	if url == "" || len(blob) == 0 {
		return nil
	}

	r := record{
		URL:      url,
		Blob:     blob,
		ByteSize: int64(len(blob)),
		StoredAt: c.now(),
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if old, ok := c.records[url]; ok {
		c.totalBytes -= old.ByteSize
	}
	c.records[url] = r
	c.totalBytes += r.ByteSize

	return c.persist(r)
}

// Get returns the blob stored for url, or false when absent.
func (c *Cache) Get(url string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	r, ok := c.records[url]
	if !ok {
		return nil, false
	}
	return r.Blob, true
}

// Has reports whether a blob is cached for url.
func (c *Cache) Has(url string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.records[url]
	return ok
}

// Delete removes one blob if present.
func (c *Cache) Delete(url string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, ok := c.records[url]
	if !ok {
		return
	}
	delete(c.records, url)
	c.totalBytes -= r.ByteSize

	if c.db == nil {
		return
	}
	err := c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketAssets).Delete([]byte(url))
	})
	if err != nil {
		c.logger.Error("failed to delete asset", "error", err, "url", url)
	}
}

// Stats reports cache contents plus a best-effort quota estimate. Quota
// failures degrade to zero figures rather than failing the call.
func (c *Cache) Stats(ctx context.Context) domain.AssetStats {
	c.mu.RLock()
	stats := domain.AssetStats{
		Count:      len(c.records),
		TotalBytes: c.totalBytes,
	}
	for _, r := range c.records {
		if stats.OldestStoredAt.IsZero() || r.StoredAt.Before(stats.OldestStoredAt) {
			stats.OldestStoredAt = r.StoredAt
		}
		if r.StoredAt.After(stats.NewestStoredAt) {
			stats.NewestStoredAt = r.StoredAt
		}
	}
	c.mu.RUnlock()

	quota, err := c.quota.Estimate(ctx)
	if err != nil {
		c.logger.Warn("quota estimate unavailable", "error", err)
		quota = domain.QuotaInfo{}
	}
	stats.Quota = quota
	stats.QuotaNearLimit = quota.IsNearLimit()
	return stats
}

// Clear evicts every blob and zeroes the aggregates.
func (c *Cache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.records = make(map[string]record)
	c.totalBytes = 0

	if c.db == nil {
		return nil
	}
	err := c.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(bucketAssets); err != nil {
			return err
		}
		_, err := tx.CreateBucket(bucketAssets)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to clear asset cache: %w", err)
	}
	c.logger.Info("cleared asset cache")
	return nil
}

func (c *Cache) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

func (c *Cache) persist(r record) error {
	if c.db == nil {
		return nil
	}
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketAssets).Put([]byte(r.URL), data)
	})
}

// nullQuota is the capability object used when no estimator is injected.
type nullQuota struct{}

func (nullQuota) Estimate(context.Context) (domain.QuotaInfo, error) {
	return domain.QuotaInfo{}, nil
}
