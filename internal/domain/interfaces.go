package domain

import "context"

// CatalogProvider is the remote inventory API boundary. Implementations own
// their transport concerns; no retry logic lives behind this interface's
// callers.
type CatalogProvider interface {
	// ResolveIdentity resolves a normalized owner reference to an identity.
	// Returns ErrIdentityNotFound when the reference does not exist.
	ResolveIdentity(ctx context.Context, ref string) (Identity, error)

	// FetchCatalog returns the owner's item list and the total count.
	FetchCatalog(ctx context.Context, canonicalID string) ([]ItemSummary, int, error)

	// FetchItemDetail returns the enriched record for one item.
	FetchItemDetail(ctx context.Context, itemID string) (ItemDetail, error)

	// FetchArtwork downloads one artwork blob. A nil blob with nil error
	// means the asset host had nothing for this URL.
	FetchArtwork(ctx context.Context, url string) ([]byte, error)
}

// QuotaEstimator reports best-effort storage usage. Resolved once at
// construction: either a real implementation or a null object returning
// zero estimates.
type QuotaEstimator interface {
	Estimate(ctx context.Context) (QuotaInfo, error)
}
