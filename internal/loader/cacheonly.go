package loader

import (
	"fmt"
	"log/slog"

	"github.com/drake/gamevault/internal/artwork"
	"github.com/drake/gamevault/internal/domain"
	"github.com/drake/gamevault/internal/kvstore"
	"github.com/drake/gamevault/internal/resolver"
	"github.com/drake/gamevault/internal/state"
)

// Cache-only progress contract: the replay path reports percentages on a
// 0–100 scale so UI behavior stays consistent with the live path's final
// 100%. Setup (identity + catalog reads) covers 0–20; item replay 20–100.
const (
	replayProgressIdentity = 5
	replayProgressCatalog  = 10
	replayProgressSnapshot = 20
	replayProgressDone     = 100
)

// CacheOnly replays a previously resolved identity and catalog from the
// KV store without any live network calls. When a per-item detail record
// is missing, it synthesizes the artwork URLs from the deterministic CDN
// templates, which match what the live path would have stored.
type CacheOnly struct {
	cache  *kvstore.Store
	state  *state.Store
	logger *slog.Logger
	cfg    Config
}

// NewCacheOnly creates a cache-only loader.
func NewCacheOnly(cache *kvstore.Store, st *state.Store, cfg Config, logger *slog.Logger) *CacheOnly {
	if logger == nil {
		logger = slog.Default()
	}
	return &CacheOnly{cache: cache, state: st, logger: logger, cfg: cfg}
}

// LoadFromCache replays a cached library. The state store is left
// untouched when no cached identity or catalog exists. clearExisting
// resets the current snapshot before the replayed one is installed.
func (l *CacheOnly) LoadFromCache(rawInput string, cbs domain.LoadCallbacks, clearExisting bool) error {
	normalized, err := resolver.Normalize(rawInput)
	if err != nil {
		cbs.Status("Enter a profile name, URL, or numeric ID.", domain.SeverityError)
		return err
	}

	// Setup: both cache reads happen before any state mutation so a miss
	// leaves the current snapshot intact.
	var identity domain.Identity
	identityKey := resolver.DeriveKey(resolver.KindIdentity, normalized)
	if !l.cache.GetAs(identityKey, &identity) {
		cbs.Status(fmt.Sprintf("No cached identity for %q. Run a live load first.", rawInput), domain.SeverityError)
		return domain.ErrNoCachedIdentity
	}
	cbs.Progressf(replayProgressIdentity, replayProgressDone, "Resolved identity from cache")

	var cached domain.CatalogSnapshot
	catalogKey := resolver.DeriveKey(resolver.KindCatalog, identity.CanonicalID)
	if !l.cache.GetAs(catalogKey, &cached) {
		cbs.Status(fmt.Sprintf("No cached library for %s. Run a live load first.", identity.DisplayName), domain.SeverityError)
		return domain.ErrNoCachedCatalog
	}
	cbs.Progressf(replayProgressCatalog, replayProgressDone, "Read catalog from cache")

	if clearExisting {
		l.state.Clear()
	}

	// Same ordering policy as the live path
	cached.Items = orderItems(cached.Items, l.cfg.MaxItems)
	version := l.state.SetSnapshot(cached)
	cbs.Progressf(replayProgressSnapshot, replayProgressDone, "Replaying cached library")

	// Item replay: cached detail when present, synthesized artwork when not
	total := len(cached.Items)
	for i, item := range cached.Items {
		item = l.replayItem(item)

		l.state.MergeItem(version, item)
		cbs.ItemLoaded(item)
		pct := replayProgressSnapshot + (i+1)*(replayProgressDone-replayProgressSnapshot)/total
		cbs.Progressf(pct, replayProgressDone, fmt.Sprintf("Restored %s", item.Name))
	}

	cbs.Progressf(replayProgressDone, replayProgressDone, "Library restored from cache")
	cbs.Status(fmt.Sprintf("Restored %d games for %s from cache", total, identity.DisplayName), domain.SeverityInfo)
	l.logger.Info("cache-only load complete", "owner", identity.CanonicalID, "items", total)
	return nil
}

// replayItem attaches artwork from the cached detail record, or
// synthesizes the URL set from the item's id and icon/logo hashes.
func (l *CacheOnly) replayItem(item domain.ItemSummary) domain.ItemSummary {
	detailKey := resolver.DeriveKey(resolver.KindItemDetail, item.ItemID)

	var detail domain.ItemDetail
	if l.cache.GetAs(detailKey, &detail) && detail.Artwork != nil {
		item.Artwork = detail.Artwork
		if item.Name == "" {
			item.Name = detail.Name
		}
		return item
	}

	item.Artwork = artwork.SetFor(item.ItemID, item.IconHash, item.LogoHash)
	return item
}
