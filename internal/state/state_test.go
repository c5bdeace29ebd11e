package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drake/gamevault/internal/domain"
	"github.com/drake/gamevault/internal/log"
)

func snapshotWith(owner string, ids ...string) domain.CatalogSnapshot {
	items := make([]domain.ItemSummary, len(ids))
	for i, id := range ids {
		items[i] = domain.ItemSummary{ItemID: id, Name: "game " + id}
	}
	return domain.CatalogSnapshot{OwnerID: owner, Items: items, TotalItemCount: len(items)}
}

func TestSetSnapshotBumpsVersion(t *testing.T) {
	s := New(log.NullLogger())

	v1 := s.SetSnapshot(snapshotWith("owner", "1"))
	v2 := s.SetSnapshot(snapshotWith("owner", "1"))
	assert.Greater(t, v2, v1)
	assert.Equal(t, v2, s.Version())
}

func TestMergeItem(t *testing.T) {
	s := New(log.NullLogger())
	v := s.SetSnapshot(snapshotWith("owner", "1", "2"))

	s.MergeItem(v, domain.ItemSummary{ItemID: "2", Name: "enriched", Artwork: &domain.ArtworkSet{HeaderURL: "h"}})

	snap := s.Snapshot()
	require.Len(t, snap.Items, 2)
	assert.Equal(t, "enriched", snap.Items[1].Name)
	require.NotNil(t, snap.Items[1].Artwork)
	assert.Equal(t, "h", snap.Items[1].Artwork.HeaderURL)
}

func TestMergeItem_UnknownIDIsNoop(t *testing.T) {
	s := New(log.NullLogger())
	v := s.SetSnapshot(snapshotWith("owner", "1", "2"))

	s.MergeItem(v, domain.ItemSummary{ItemID: "99", Name: "ghost"})

	snap := s.Snapshot()
	assert.Len(t, snap.Items, 2)
	assert.Equal(t, "game 1", snap.Items[0].Name)
	assert.Equal(t, "game 2", snap.Items[1].Name)
}

func TestMergeItem_StaleVersionDiscarded(t *testing.T) {
	s := New(log.NullLogger())

	// Load A starts, then load B supersedes it
	vA := s.SetSnapshot(snapshotWith("ownerA", "1", "2"))
	s.SetSnapshot(snapshotWith("ownerB", "1", "2"))

	// Late merge from the superseded run must not alter B
	s.MergeItem(vA, domain.ItemSummary{ItemID: "1", Name: "from stale run"})

	snap := s.Snapshot()
	assert.Equal(t, "ownerB", snap.OwnerID)
	assert.Equal(t, "game 1", snap.Items[0].Name)
}

func TestSnapshotIsDefensiveCopy(t *testing.T) {
	s := New(log.NullLogger())
	v := s.SetSnapshot(snapshotWith("owner", "1"))

	snap := s.Snapshot()
	snap.Items[0].Name = "mutated by caller"

	s.MergeItem(v, domain.ItemSummary{ItemID: "1", Name: "merged"})
	assert.Equal(t, "merged", s.Snapshot().Items[0].Name)

	// Caller's copy mutation never reached the store
	fresh := s.Snapshot()
	fresh.Items[0] = domain.ItemSummary{}
	assert.Equal(t, "merged", s.Snapshot().Items[0].Name)
}

func TestClear(t *testing.T) {
	s := New(log.NullLogger())
	s.SetSnapshot(snapshotWith("owner", "1"))

	s.Clear()
	assert.False(t, s.HasSnapshot())
	assert.Equal(t, uint64(0), s.Version())
	assert.Empty(t, s.Snapshot().Items)
}

func TestHasSnapshot(t *testing.T) {
	s := New(log.NullLogger())
	assert.False(t, s.HasSnapshot())

	s.SetSnapshot(snapshotWith("owner", "1"))
	assert.True(t, s.HasSnapshot())
}
