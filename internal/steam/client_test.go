package steam

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drake/gamevault/internal/domain"
	"github.com/drake/gamevault/internal/log"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient("test-key", log.NullLogger())
	c.apiBase = srv.URL
	c.storeBase = srv.URL
	return c
}

func TestResolveIdentity_Vanity(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ISteamUser/ResolveVanityURL/v1/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.Equal(t, "gabe", r.URL.Query().Get("vanityurl"))
		fmt.Fprint(w, `{"response":{"success":1,"steamid":"76561197960287930"}}`)
	})
	mux.HandleFunc("/ISteamUser/GetPlayerSummaries/v2/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "76561197960287930", r.URL.Query().Get("steamids"))
		fmt.Fprint(w, `{"response":{"players":[{"steamid":"76561197960287930","personaname":"Gabe"}]}}`)
	})

	c := newTestClient(t, mux)
	identity, err := c.ResolveIdentity(context.Background(), "gabe")
	require.NoError(t, err)
	assert.Equal(t, "76561197960287930", identity.CanonicalID)
	assert.Equal(t, "Gabe", identity.DisplayName)
	assert.Equal(t, "gabe", identity.RawInput)
}

func TestResolveIdentity_NumericSkipsVanity(t *testing.T) {
	vanityCalled := false
	mux := http.NewServeMux()
	mux.HandleFunc("/ISteamUser/ResolveVanityURL/v1/", func(w http.ResponseWriter, r *http.Request) {
		vanityCalled = true
	})
	mux.HandleFunc("/ISteamUser/GetPlayerSummaries/v2/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"response":{"players":[{"steamid":"76561197960287930","personaname":"Gabe"}]}}`)
	})

	c := newTestClient(t, mux)
	identity, err := c.ResolveIdentity(context.Background(), "76561197960287930")
	require.NoError(t, err)
	assert.Equal(t, "76561197960287930", identity.CanonicalID)
	assert.False(t, vanityCalled)
}

func TestResolveIdentity_VanityNotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ISteamUser/ResolveVanityURL/v1/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"response":{"success":42,"message":"No match"}}`)
	})

	c := newTestClient(t, mux)
	_, err := c.ResolveIdentity(context.Background(), "nobody")
	assert.ErrorIs(t, err, domain.ErrIdentityNotFound)
}

func TestResolveIdentity_NoPlayerSummary(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ISteamUser/GetPlayerSummaries/v2/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"response":{"players":[]}}`)
	})

	c := newTestClient(t, mux)
	_, err := c.ResolveIdentity(context.Background(), "76561197960287930")
	assert.ErrorIs(t, err, domain.ErrIdentityNotFound)
}

func TestFetchCatalog(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/IPlayerService/GetOwnedGames/v1/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("include_appinfo"))
		assert.Equal(t, "1", r.URL.Query().Get("include_played_free_games"))
		fmt.Fprint(w, `{"response":{"game_count":2,"games":[
			{"appid":440,"name":"Team Fortress 2","playtime_forever":3000,"img_icon_url":"ic440","img_logo_url":"lg440"},
			{"appid":570,"name":"Dota 2","playtime_forever":500,"img_icon_url":"ic570","img_logo_url":"lg570"}
		]}}`)
	})

	c := newTestClient(t, mux)
	items, total, err := c.FetchCatalog(context.Background(), "76561197960287930")
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, items, 2)
	assert.Equal(t, "440", items[0].ItemID)
	assert.Equal(t, "Team Fortress 2", items[0].Name)
	assert.Equal(t, 3000, items[0].PlaytimeMinutes)
	assert.Equal(t, "ic440", items[0].IconHash)
	assert.Equal(t, "lg440", items[0].LogoHash)
	assert.Nil(t, items[0].Artwork)
}

func TestFetchCatalog_Private(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/IPlayerService/GetOwnedGames/v1/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	c := newTestClient(t, mux)
	_, _, err := c.FetchCatalog(context.Background(), "76561197960287930")
	assert.ErrorIs(t, err, domain.ErrCatalogFetchFailed)
}

func TestFetchItemDetail(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/appdetails", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "440", r.URL.Query().Get("appids"))
		// Store endpoint never receives the API key
		assert.Empty(t, r.URL.Query().Get("key"))
		fmt.Fprint(w, `{"440":{"success":true,"data":{
			"name":"Team Fortress 2",
			"short_description":"Nine classes.",
			"developers":["Valve"],
			"genres":[{"description":"Action"},{"description":"Free To Play"}]
		}}}`)
	})

	c := newTestClient(t, mux)
	detail, err := c.FetchItemDetail(context.Background(), "440")
	require.NoError(t, err)
	assert.Equal(t, "440", detail.ItemID)
	assert.Equal(t, "Team Fortress 2", detail.Name)
	assert.Equal(t, "Nine classes.", detail.ShortDescription)
	assert.Equal(t, []string{"Valve"}, detail.Developers)
	assert.Equal(t, []string{"Action", "Free To Play"}, detail.Genres)
}

func TestFetchItemDetail_Unsuccessful(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/appdetails", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"999":{"success":false}}`)
	})

	c := newTestClient(t, mux)
	_, err := c.FetchItemDetail(context.Background(), "999")
	assert.ErrorIs(t, err, domain.ErrItemEnrichmentFailed)
}

func TestFetchArtwork(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("image-bytes"))
	}))
	defer srv.Close()

	c := NewClient("test-key", log.NullLogger())
	blob, err := c.FetchArtwork(context.Background(), srv.URL+"/apps/440/header.jpg")
	require.NoError(t, err)
	assert.Equal(t, []byte("image-bytes"), blob)
}

func TestFetchArtwork_NotFoundIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient("test-key", log.NullLogger())
	blob, err := c.FetchArtwork(context.Background(), srv.URL+"/apps/440/header.jpg")
	require.NoError(t, err)
	assert.Nil(t, blob)
}

func TestFetchArtwork_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient("test-key", log.NullLogger())
	_, err := c.FetchArtwork(context.Background(), srv.URL+"/apps/440/header.jpg")
	assert.ErrorIs(t, err, domain.ErrArtworkDownloadFailed)
}

func TestFetchArtwork_EmptyURL(t *testing.T) {
	c := NewClient("test-key", log.NullLogger())
	blob, err := c.FetchArtwork(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, blob)
}
