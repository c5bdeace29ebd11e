package domain

import "errors"

// Sentinel errors for load and cache operations.
//
// Identity- and catalog-level errors abort a load. Item-, artwork- and
// quota-level errors are non-fatal: they are logged at the item boundary
// and the run continues with partial fields.
var (
	// ErrInvalidIdentifier indicates an empty or unusable owner reference
	ErrInvalidIdentifier = errors.New("identifier is empty or invalid")

	// ErrIdentityNotFound indicates the provider could not resolve the reference
	ErrIdentityNotFound = errors.New("identity not found")

	// ErrCatalogFetchFailed indicates the catalog list could not be retrieved
	ErrCatalogFetchFailed = errors.New("catalog fetch failed")

	// ErrItemEnrichmentFailed indicates a per-item detail fetch failed (non-fatal)
	ErrItemEnrichmentFailed = errors.New("item enrichment failed")

	// ErrArtworkDownloadFailed indicates an artwork download failed (non-fatal)
	ErrArtworkDownloadFailed = errors.New("artwork download failed")

	// ErrNoCachedIdentity indicates no resolved identity exists in the cache
	ErrNoCachedIdentity = errors.New("no cached identity")

	// ErrNoCachedCatalog indicates no catalog entry exists in the cache
	ErrNoCachedCatalog = errors.New("no cached catalog")

	// ErrNoActiveSnapshot indicates refresh was called with nothing loaded
	ErrNoActiveSnapshot = errors.New("no active snapshot")

	// ErrQuotaUnavailable indicates the quota estimate failed (degrades to zero)
	ErrQuotaUnavailable = errors.New("storage quota unavailable")
)
