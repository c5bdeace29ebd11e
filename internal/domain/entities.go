package domain

import (
	"fmt"
	"time"
)

// Identity is the resolved canonical form of a user-supplied owner reference.
// Resolved once per normalized input and cached without expiry.
type Identity struct {
	RawInput    string `json:"rawInput"`    // What the user typed
	CanonicalID string `json:"canonicalId"` // Stable ID from the catalog provider
	DisplayName string `json:"displayName"` // Human-readable owner name
}

// ArtworkSet holds the CDN URLs for one item's artwork variants.
type ArtworkSet struct {
	IconURL    string `json:"iconUrl"`
	LogoURL    string `json:"logoUrl"`
	HeaderURL  string `json:"headerUrl"`
	LibraryURL string `json:"libraryUrl"`
}

// ItemSummary is a single catalog entry. Artwork is nil until enrichment
// fills it in; callers detect degraded items by its absence.
type ItemSummary struct {
	ItemID          string      `json:"itemId"`
	Name            string      `json:"name"`
	PlaytimeMinutes int         `json:"playtimeMinutes"` // Usage metric, drives sort order
	IconHash        string      `json:"iconHash"`
	LogoHash        string      `json:"logoHash"`
	Artwork         *ArtworkSet `json:"artwork,omitempty"`
}

// FormattedPlaytime returns the playtime in a human-readable format.
func (i ItemSummary) FormattedPlaytime() string {
	h := i.PlaytimeMinutes / 60
	m := i.PlaytimeMinutes % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

// ItemDetail is the enriched per-item record fetched from the store API
// and cached under the itemDetail domain.
type ItemDetail struct {
	ItemID           string      `json:"itemId"`
	Name             string      `json:"name"`
	ShortDescription string      `json:"shortDescription"`
	Developers       []string    `json:"developers,omitempty"`
	Genres           []string    `json:"genres,omitempty"`
	Artwork          *ArtworkSet `json:"artwork,omitempty"`
}

// CatalogSnapshot is the full ordered catalog for one identity. It is
// exclusively owned by the state store: replaced wholesale on a new load,
// mutated item-by-item during enrichment. Version gates stale merges.
type CatalogSnapshot struct {
	OwnerID        string        `json:"ownerId"`
	DisplayName    string        `json:"displayName"`
	TotalItemCount int           `json:"totalItemCount"`
	Items          []ItemSummary `json:"items"`
	RetrievedAt    time.Time     `json:"retrievedAt"`
	Version        uint64        `json:"version"`
}

// Progress is a transient load-progress report. Never persisted.
type Progress struct {
	Completed int
	Total     int
	Message   string
}

// QuotaInfo is a best-effort storage quota estimate.
type QuotaInfo struct {
	UsedBytes  int64 `json:"usedBytes"`
	TotalBytes int64 `json:"totalBytes"`
}

// quotaNearLimitRatio is the usage fraction at which IsNearLimit trips.
const quotaNearLimitRatio = 0.9

// IsNearLimit reports whether usage is at or above 90% of the total.
func (q QuotaInfo) IsNearLimit() bool {
	if q.TotalBytes <= 0 {
		return false
	}
	return float64(q.UsedBytes) >= quotaNearLimitRatio*float64(q.TotalBytes)
}

// AssetStats summarizes the asset cache contents plus quota state.
type AssetStats struct {
	Count          int
	TotalBytes     int64
	OldestStoredAt time.Time
	NewestStoredAt time.Time
	Quota          QuotaInfo
	QuotaNearLimit bool
}
