// Package resolver normalizes user-supplied owner references and derives
// the deterministic cache keys shared by the live and cache-only load paths.
package resolver

import (
	"strings"

	"github.com/drake/gamevault/internal/domain"
)

// Kind selects a cache key namespace.
type Kind string

const (
	KindIdentity   Kind = "identity"
	KindCatalog    Kind = "catalog"
	KindItemDetail Kind = "itemDetail"
)

// Key prefixes are a compatibility contract: persisted entries and the
// cache-only loader must agree with the live path byte-for-byte.
const (
	prefixIdentity   = "resolve_"
	prefixCatalog    = "catalog_"
	prefixItemDetail = "item_"
)

// Known profile URL path markers. Input like
// "https://steamcommunity.com/id/gabe/" normalizes to "gabe".
var urlPathMarkers = []string{"profiles/", "id/"}

// Normalize canonicalizes a raw owner reference: trims whitespace,
// lowercases, and unwraps profile URLs down to the vanity name or numeric
// ID. Equivalent inputs (differing only by whitespace, case, or URL
// wrapping) normalize to one identical string.
func Normalize(raw string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return "", domain.ErrInvalidIdentifier
	}

	// Strip URL scheme if present
	for _, scheme := range []string{"https://", "http://"} {
		s = strings.TrimPrefix(s, scheme)
	}

	// Unwrap profile URLs: take the segment after the last known marker
	for _, marker := range urlPathMarkers {
		if idx := strings.LastIndex(s, marker); idx >= 0 {
			s = s[idx+len(marker):]
		}
	}

	// Drop any trailing path or query noise
	if idx := strings.IndexAny(s, "/?#"); idx >= 0 {
		s = s[:idx]
	}

	s = strings.TrimSpace(s)
	if s == "" {
		return "", domain.ErrInvalidIdentifier
	}
	return s, nil
}

// IsCanonicalID reports whether the normalized reference already is a
// provider-issued numeric ID and needs no vanity resolution.
func IsCanonicalID(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// DeriveKey returns the cache key for a value in the given namespace.
// Pure and deterministic; other components depend on the exact format.
func DeriveKey(kind Kind, value string) string {
	switch kind {
	case KindIdentity:
		return prefixIdentity + value
	case KindCatalog:
		return prefixCatalog + value
	case KindItemDetail:
		return prefixItemDetail + value
	default:
		return string(kind) + "_" + value
	}
}

// CanonicalizeKey migrates a legacy bare key (no namespace prefix) to the
// prefixed convention. Already-prefixed keys pass through unchanged. This
// is a one-time migration helper for old cache files, not a lookup branch.
func CanonicalizeKey(kind Kind, key string) string {
	for _, p := range []string{prefixIdentity, prefixCatalog, prefixItemDetail} {
		if strings.HasPrefix(key, p) {
			return key
		}
	}
	return DeriveKey(kind, key)
}
