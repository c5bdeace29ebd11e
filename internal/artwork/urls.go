// Package artwork builds the deterministic CDN URLs for item artwork.
// The templates are a compatibility contract with the remote asset host:
// the cache-only loader synthesizes exactly what the live path stores.
package artwork

import (
	"fmt"

	"github.com/drake/gamevault/internal/domain"
)

const (
	// MediaCDNBase hosts icon/logo assets addressed by content hash.
	MediaCDNBase = "https://media.steampowered.com/steamcommunity/public/images"

	// SharedCDNBase hosts header and library capsule assets.
	SharedCDNBase = "https://shared.akamai.steamstatic.com/store_item_assets/steam"
)

// IconURL returns the icon asset URL for an item, or "" without a hash.
func IconURL(itemID, iconHash string) string {
	if iconHash == "" {
		return ""
	}
	return fmt.Sprintf("%s/apps/%s/%s.jpg", MediaCDNBase, itemID, iconHash)
}

// LogoURL returns the logo asset URL for an item, or "" without a hash.
func LogoURL(itemID, logoHash string) string {
	if logoHash == "" {
		return ""
	}
	return fmt.Sprintf("%s/apps/%s/%s.jpg", MediaCDNBase, itemID, logoHash)
}

// HeaderURL returns the header capsule URL for an item.
func HeaderURL(itemID string) string {
	return fmt.Sprintf("%s/apps/%s/header.jpg", SharedCDNBase, itemID)
}

// LibraryURL returns the 600x900 library capsule URL for an item.
func LibraryURL(itemID string) string {
	return fmt.Sprintf("%s/apps/%s/library_600x900.jpg", SharedCDNBase, itemID)
}

// SetFor synthesizes the full artwork set for an item from its id and
// icon/logo hashes.
func SetFor(itemID, iconHash, logoHash string) *domain.ArtworkSet {
	return &domain.ArtworkSet{
		IconURL:    IconURL(itemID, iconHash),
		LogoURL:    LogoURL(itemID, logoHash),
		HeaderURL:  HeaderURL(itemID),
		LibraryURL: LibraryURL(itemID),
	}
}
