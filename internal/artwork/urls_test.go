package artwork

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIconURL(t *testing.T) {
	got := IconURL("440", "abc123")
	assert.Equal(t, "https://media.steampowered.com/steamcommunity/public/images/apps/440/abc123.jpg", got)
}

func TestIconURL_EmptyHash(t *testing.T) {
	assert.Empty(t, IconURL("440", ""))
}

func TestLogoURL(t *testing.T) {
	got := LogoURL("440", "def456")
	assert.Equal(t, "https://media.steampowered.com/steamcommunity/public/images/apps/440/def456.jpg", got)
}

func TestHeaderURL(t *testing.T) {
	got := HeaderURL("440")
	assert.Equal(t, "https://shared.akamai.steamstatic.com/store_item_assets/steam/apps/440/header.jpg", got)
}

func TestLibraryURL(t *testing.T) {
	got := LibraryURL("440")
	assert.Equal(t, "https://shared.akamai.steamstatic.com/store_item_assets/steam/apps/440/library_600x900.jpg", got)
}

func TestSetFor(t *testing.T) {
	set := SetFor("440", "abc", "def")
	require.NotNil(t, set)
	assert.Equal(t, IconURL("440", "abc"), set.IconURL)
	assert.Equal(t, LogoURL("440", "def"), set.LogoURL)
	assert.Equal(t, HeaderURL("440"), set.HeaderURL)
	assert.Equal(t, LibraryURL("440"), set.LibraryURL)
}

func TestSetFor_MissingHashes(t *testing.T) {
	set := SetFor("440", "", "")
	require.NotNil(t, set)
	assert.Empty(t, set.IconURL)
	assert.Empty(t, set.LogoURL)
	// Header and library never depend on hashes
	assert.NotEmpty(t, set.HeaderURL)
	assert.NotEmpty(t, set.LibraryURL)
}
