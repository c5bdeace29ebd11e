package loader

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drake/gamevault/internal/artwork"
	"github.com/drake/gamevault/internal/domain"
	"github.com/drake/gamevault/internal/log"
	"github.com/drake/gamevault/internal/state"
)

// seedCache runs a live load so the KV store holds identity, catalog, and
// detail records the replay path can find.
func seedCache(t *testing.T) (*CacheOnly, *state.Store) {
	t.Helper()
	_, live, replay, st := newReplayDeps(t)
	require.NoError(t, live.LoadForIdentifier(context.Background(), "gabe", (&recorder{}).callbacks()))
	return replay, st
}

func newReplayDeps(t *testing.T) (*fakeProvider, *Progressive, *CacheOnly, *state.Store) {
	t.Helper()
	cache, assets, st := newTestDeps(t)
	provider := &fakeProvider{
		identity:   domain.Identity{RawInput: "gabe", CanonicalID: "76561197960287930", DisplayName: "Gabe"},
		items:      threeGames(),
		totalCount: 3,
	}
	cfg := Config{}
	live := NewProgressive(provider, cache, assets, st, cfg, log.NullLogger())
	replay := NewCacheOnly(cache, st, cfg, log.NullLogger())
	return provider, live, replay, st
}

func TestLoadFromCache_ReplaysSeededLibrary(t *testing.T) {
	replay, st := seedCache(t)
	st.Clear()

	rec := &recorder{}
	require.NoError(t, replay.LoadFromCache("gabe", rec.callbacks(), false))

	snap := st.Snapshot()
	assert.Equal(t, "76561197960287930", snap.OwnerID)
	require.Len(t, snap.Items, 3)
	assert.Equal(t, "440", snap.Items[0].ItemID)

	assert.Len(t, rec.items, 3)
	assert.Equal(t, progressCall{100, 100, "Library restored from cache"}, rec.lastProgress())
}

func TestLoadFromCache_NoIdentityLeavesStateUntouched(t *testing.T) {
	_, _, replay, st := newReplayDeps(t)

	// Existing snapshot from some earlier run
	before := st.SetSnapshot(domain.CatalogSnapshot{OwnerID: "other", Items: []domain.ItemSummary{{ItemID: "1"}}})

	rec := &recorder{}
	err := replay.LoadFromCache("gabe", rec.callbacks(), true)
	assert.ErrorIs(t, err, domain.ErrNoCachedIdentity)

	// Failure before any mutation: version and contents unchanged even
	// though clearExisting was requested
	assert.Equal(t, before, st.Version())
	assert.Equal(t, "other", st.Snapshot().OwnerID)

	require.NotEmpty(t, rec.statuses)
	assert.Equal(t, domain.SeverityError, rec.statuses[len(rec.statuses)-1].severity)
}

func TestLoadFromCache_NoCatalog(t *testing.T) {
	cache, assets, st := newTestDeps(t)

	// A failed live run leaves the identity cached but no catalog
	provider := &fakeProvider{
		identity:   domain.Identity{CanonicalID: "76561197960287930", DisplayName: "Gabe"},
		catalogErr: domain.ErrCatalogFetchFailed,
	}
	live := NewProgressive(provider, cache, assets, st, Config{}, log.NullLogger())
	require.Error(t, live.LoadForIdentifier(context.Background(), "gabe", (&recorder{}).callbacks()))

	replay := NewCacheOnly(cache, st, Config{}, log.NullLogger())
	err := replay.LoadFromCache("gabe", (&recorder{}).callbacks(), false)
	assert.ErrorIs(t, err, domain.ErrNoCachedCatalog)
	assert.False(t, st.HasSnapshot())
}

func TestLoadFromCache_ProgressIsMonotonicPercentage(t *testing.T) {
	replay, st := seedCache(t)
	st.Clear()

	rec := &recorder{}
	require.NoError(t, replay.LoadFromCache("gabe", rec.callbacks(), false))

	require.NotEmpty(t, rec.progress)
	prev := -1
	for _, p := range rec.progress {
		assert.Equal(t, 100, p.total)
		assert.GreaterOrEqual(t, p.current, prev)
		assert.LessOrEqual(t, p.current, 100)
		prev = p.current
	}
	assert.Equal(t, 100, rec.lastProgress().current)
}

func TestLoadFromCache_SynthesizedArtworkMatchesTemplates(t *testing.T) {
	replay, st := seedCache(t)
	st.Clear()

	rec := &recorder{}
	require.NoError(t, replay.LoadFromCache("gabe", rec.callbacks(), false))

	for _, item := range rec.items {
		require.NotNil(t, item.Artwork, "item %s", item.ItemID)
		want := artwork.SetFor(item.ItemID, item.IconHash, item.LogoHash)
		assert.Equal(t, want, item.Artwork, "item %s", item.ItemID)
	}
}

func TestLoadFromCache_EquivalentInputsReplaySameLibrary(t *testing.T) {
	replay, st := seedCache(t)
	st.Clear()

	require.NoError(t, replay.LoadFromCache("https://steamcommunity.com/id/Gabe/", (&recorder{}).callbacks(), false))
	assert.Equal(t, "76561197960287930", st.Snapshot().OwnerID)
}

func TestLoadFromCache_ClearExisting(t *testing.T) {
	replay, st := seedCache(t)

	// Different owner currently displayed
	st.SetSnapshot(domain.CatalogSnapshot{OwnerID: "other", Items: []domain.ItemSummary{{ItemID: "999"}}})

	require.NoError(t, replay.LoadFromCache("gabe", (&recorder{}).callbacks(), true))
	snap := st.Snapshot()
	assert.Equal(t, "76561197960287930", snap.OwnerID)
	assert.Len(t, snap.Items, 3)
}

func TestLoadFromCache_TruncatesLikeLivePath(t *testing.T) {
	cache, assets, st := newTestDeps(t)
	provider := &fakeProvider{
		identity:   domain.Identity{CanonicalID: "76561197960287930", DisplayName: "Gabe"},
		items:      threeGames(),
		totalCount: 3,
	}
	// Live run caches all three; replay truncates at read time
	live := NewProgressive(provider, cache, assets, st, Config{}, log.NullLogger())
	require.NoError(t, live.LoadForIdentifier(context.Background(), "gabe", (&recorder{}).callbacks()))

	replay := NewCacheOnly(cache, st, Config{MaxItems: 1}, log.NullLogger())
	require.NoError(t, replay.LoadFromCache("gabe", (&recorder{}).callbacks(), true))

	snap := st.Snapshot()
	require.Len(t, snap.Items, 1)
	assert.Equal(t, "440", snap.Items[0].ItemID)
	assert.Equal(t, 3, snap.TotalItemCount)
}

func TestLoadFromCache_InvalidInput(t *testing.T) {
	_, _, replay, _ := newReplayDeps(t)

	err := replay.LoadFromCache("", (&recorder{}).callbacks(), false)
	assert.ErrorIs(t, err, domain.ErrInvalidIdentifier)
}
