// Package loader orchestrates library loads: the live progressive path
// against the catalog provider, and the cache-only replay path.
package loader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/drake/gamevault/internal/artwork"
	"github.com/drake/gamevault/internal/assetcache"
	"github.com/drake/gamevault/internal/domain"
	"github.com/drake/gamevault/internal/kvstore"
	"github.com/drake/gamevault/internal/resolver"
	"github.com/drake/gamevault/internal/state"
)

// Phase is the live loader's state machine position.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseResolvingIdentity
	PhaseFetchingCatalog
	PhaseEnrichingItems
	PhaseComplete
	PhaseFailed
)

// String returns a human-readable representation of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseResolvingIdentity:
		return "resolving identity"
	case PhaseFetchingCatalog:
		return "fetching catalog"
	case PhaseEnrichingItems:
		return "enriching items"
	case PhaseComplete:
		return "complete"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Config tunes a load run.
type Config struct {
	// MaxItems truncates the catalog after sorting; 0 keeps everything.
	MaxItems int

	// CatalogTTL bounds how long a cached catalog stays replayable.
	CatalogTTL time.Duration

	// DetailTTL bounds how long cached per-item details stay fresh.
	DetailTTL time.Duration
}

// Progressive is the live loader. It resolves an identity, fetches the
// catalog, then enriches items strictly sequentially, one outbound
// request at a time against the catalog API and asset CDN. A run is not
// cancellable mid-loop; starting a new load supersedes it and the state
// store discards the old run's late merges by version.
//
// Progress contract (live path): OnProgress reports item counts
// (completed, total); total is 0 until the catalog list is known.
type Progressive struct {
	provider domain.CatalogProvider
	cache    *kvstore.Store
	assets   *assetcache.Cache
	state    *state.Store
	logger   *slog.Logger
	cfg      Config

	mu    sync.Mutex
	phase Phase
}

// NewProgressive creates a live loader.
func NewProgressive(
	provider domain.CatalogProvider,
	cache *kvstore.Store,
	assets *assetcache.Cache,
	st *state.Store,
	cfg Config,
	logger *slog.Logger,
) *Progressive {
	if logger == nil {
		logger = slog.Default()
	}
	return &Progressive{
		provider: provider,
		cache:    cache,
		assets:   assets,
		state:    st,
		logger:   logger,
		cfg:      cfg,
	}
}

// Phase returns the loader's current state machine position.
func (l *Progressive) Phase() Phase {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.phase
}

func (l *Progressive) setPhase(p Phase) {
	l.mu.Lock()
	l.phase = p
	l.mu.Unlock()
}

// LoadForIdentifier runs a full live load for a raw owner reference.
// Identity- and catalog-level failures abort the run; item- and
// artwork-level failures are logged and the loop continues, so a run that
// ends with missing artwork still completes at 100%.
func (l *Progressive) LoadForIdentifier(ctx context.Context, rawInput string, cbs domain.LoadCallbacks) error {
	normalized, err := resolver.Normalize(rawInput)
	if err != nil {
		l.setPhase(PhaseFailed)
		cbs.Status("Enter a profile name, URL, or numeric ID.", domain.SeverityError)
		return err
	}

	// 1. Resolve identity (cache first; identities never expire)
	l.setPhase(PhaseResolvingIdentity)
	cbs.Progressf(0, 0, "Resolving identity…")

	identity, err := l.resolveIdentity(ctx, normalized)
	if err != nil {
		l.setPhase(PhaseFailed)
		cbs.Status(identityFailureMessage(rawInput, err), domain.SeverityError)
		return err
	}

	// 2. Fetch catalog list
	l.setPhase(PhaseFetchingCatalog)
	cbs.Progressf(0, 0, fmt.Sprintf("Fetching library for %s…", identity.DisplayName))

	items, totalCount, err := l.provider.FetchCatalog(ctx, identity.CanonicalID)
	if err != nil {
		l.setPhase(PhaseFailed)
		l.logger.Error("catalog fetch failed", "error", err, "owner", identity.CanonicalID)
		cbs.Status("Couldn't fetch the library. The account may be private.", domain.SeverityError)
		return err
	}

	// Persist the raw catalog so the cache-only path can replay it with
	// the same sort/truncate policy applied at read time.
	snapshot := domain.CatalogSnapshot{
		OwnerID:        identity.CanonicalID,
		DisplayName:    identity.DisplayName,
		TotalItemCount: totalCount,
		Items:          items,
		RetrievedAt:    time.Now(),
	}
	catalogKey := resolver.DeriveKey(resolver.KindCatalog, identity.CanonicalID)
	if err := l.cache.Set(catalogKey, snapshot, kvstore.Options{Domain: kvstore.DomainCatalog, TTL: l.cfg.CatalogTTL}); err != nil {
		l.logger.Error("failed to cache catalog", "error", err, "owner", identity.CanonicalID)
	}

	// 3. Deterministic ordering: usage descending, then name, then ID
	snapshot.Items = orderItems(items, l.cfg.MaxItems)
	version := l.state.SetSnapshot(snapshot)

	// 4. Sequential enrichment
	l.setPhase(PhaseEnrichingItems)
	total := len(snapshot.Items)
	for i, item := range snapshot.Items {
		enriched := l.enrichItem(ctx, item)

		l.state.MergeItem(version, enriched)
		cbs.ItemLoaded(enriched)
		cbs.Progressf(i+1, total, fmt.Sprintf("Loaded %s", enriched.Name))
	}

	// 5. Completion is unconditional on per-item partial failures
	l.setPhase(PhaseComplete)
	cbs.Progressf(total, total, "Library loaded")
	cbs.Status(fmt.Sprintf("Loaded %d of %d games for %s", total, totalCount, identity.DisplayName), domain.SeverityInfo)
	l.logger.Info("load complete", "owner", identity.CanonicalID, "items", total, "total", totalCount)
	return nil
}

// Refresh re-runs the load for the currently displayed snapshot's owner.
func (l *Progressive) Refresh(ctx context.Context, cbs domain.LoadCallbacks) error {
	if !l.state.HasSnapshot() {
		return domain.ErrNoActiveSnapshot
	}
	snap := l.state.Snapshot()
	return l.LoadForIdentifier(ctx, snap.OwnerID, cbs)
}

// resolveIdentity checks the identity cache before going to the provider.
// Freshly resolved identities persist without expiry.
func (l *Progressive) resolveIdentity(ctx context.Context, normalized string) (domain.Identity, error) {
	key := resolver.DeriveKey(resolver.KindIdentity, normalized)

	var identity domain.Identity
	if l.cache.GetAs(key, &identity) {
		l.logger.Debug("identity cache hit", "key", key)
		return identity, nil
	}

	identity, err := l.provider.ResolveIdentity(ctx, normalized)
	if err != nil {
		return domain.Identity{}, err
	}

	if err := l.cache.Set(key, identity, kvstore.Options{Domain: kvstore.DomainIdentity}); err != nil {
		l.logger.Error("failed to cache identity", "error", err, "key", key)
	}
	return identity, nil
}

// enrichItem fetches detail and artwork for one item. Failures at this
// granularity are non-fatal: the item comes back with whatever fields
// could be filled.
func (l *Progressive) enrichItem(ctx context.Context, item domain.ItemSummary) domain.ItemSummary {
	item.Artwork = artwork.SetFor(item.ItemID, item.IconHash, item.LogoHash)

	detailKey := resolver.DeriveKey(resolver.KindItemDetail, item.ItemID)
	var detail domain.ItemDetail
	if !l.cache.GetAs(detailKey, &detail) {
		fetched, err := l.provider.FetchItemDetail(ctx, item.ItemID)
		if err != nil {
			l.logger.Warn("item enrichment failed", "error", err, "itemID", item.ItemID, "name", item.Name)
		} else {
			detail = fetched
			detail.Artwork = item.Artwork
			if err := l.cache.Set(detailKey, detail, kvstore.Options{Domain: kvstore.DomainItemDetail, TTL: l.cfg.DetailTTL}); err != nil {
				l.logger.Error("failed to cache item detail", "error", err, "itemID", item.ItemID)
			}
		}
	}
	if detail.Name != "" && item.Name == "" {
		item.Name = detail.Name
	}

	l.downloadArtwork(ctx, item)
	return item
}

// downloadArtwork fetches the item's header and icon blobs into the asset
// cache. Download failures are logged and skipped.
func (l *Progressive) downloadArtwork(ctx context.Context, item domain.ItemSummary) {
	if item.Artwork == nil {
		return
	}
	for _, u := range []string{item.Artwork.HeaderURL, item.Artwork.IconURL} {
		if u == "" || l.assets.Has(u) {
			continue
		}
		blob, err := l.provider.FetchArtwork(ctx, u)
		if err != nil {
			l.logger.Warn("artwork download failed", "error", err, "itemID", item.ItemID, "url", u)
			continue
		}
		if blob == nil {
			continue
		}
		if err := l.assets.Store(u, blob); err != nil {
			l.logger.Error("failed to store artwork", "error", err, "url", u)
		}
	}
}

// orderItems applies the load ordering policy: usage metric descending,
// with name then ID as deterministic tie-breakers, truncated to maxItems.
func orderItems(items []domain.ItemSummary, maxItems int) []domain.ItemSummary {
	ordered := make([]domain.ItemSummary, len(items))
	copy(ordered, items)

	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].PlaytimeMinutes != ordered[j].PlaytimeMinutes {
			return ordered[i].PlaytimeMinutes > ordered[j].PlaytimeMinutes
		}
		if ordered[i].Name != ordered[j].Name {
			return ordered[i].Name < ordered[j].Name
		}
		return ordered[i].ItemID < ordered[j].ItemID
	})

	if maxItems > 0 && len(ordered) > maxItems {
		ordered = ordered[:maxItems]
	}
	return ordered
}

// identityFailureMessage maps identity errors to user-actionable text.
func identityFailureMessage(rawInput string, err error) string {
	switch {
	case errors.Is(err, domain.ErrIdentityNotFound):
		return fmt.Sprintf("No account found for %q. Check the name or URL.", rawInput)
	case errors.Is(err, domain.ErrInvalidIdentifier):
		return "Enter a profile name, URL, or numeric ID."
	default:
		return "Couldn't reach the catalog service. Try again in a moment."
	}
}
