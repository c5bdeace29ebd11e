// Package steam implements domain.CatalogProvider against the Steam Web
// API, the store appdetails endpoint, and the artwork CDNs.
package steam

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/drake/gamevault/internal/domain"
	"github.com/drake/gamevault/internal/resolver"
)

const (
	defaultTimeout = 30 * time.Second
	userAgent      = "Gamevault/1.0"

	apiBase   = "https://api.steampowered.com"
	storeBase = "https://store.steampowered.com"
)

// Client implements domain.CatalogProvider for Steam.
type Client struct {
	apiKey     string
	apiBase    string
	storeBase  string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a Steam Web API client.
func NewClient(apiKey string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		apiKey:    apiKey,
		apiBase:   apiBase,
		storeBase: storeBase,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logger,
	}
}

// doRequest performs an authenticated GET against the Web API.
func (c *Client) doRequest(ctx context.Context, base, path string, query url.Values) ([]byte, error) {
	if query == nil {
		query = url.Values{}
	}
	if base == c.apiBase {
		query.Set("key", c.apiKey)
	}
	reqURL := fmt.Sprintf("%s%s?%s", base, path, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	c.logger.Debug("steam request", "path", path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("steam request failed", "error", err, "path", path)
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, fmt.Errorf("steam api key rejected (status %d)", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.Error("steam request error", "status", resp.StatusCode, "path", path)
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return body, nil
}

// ResolveIdentity resolves a normalized reference to a canonical SteamID64
// plus display name. Pure numeric references skip vanity resolution.
func (c *Client) ResolveIdentity(ctx context.Context, ref string) (domain.Identity, error) {
	canonicalID := ref
	if !resolver.IsCanonicalID(ref) {
		id, err := c.resolveVanity(ctx, ref)
		if err != nil {
			return domain.Identity{}, err
		}
		canonicalID = id
	}

	// Display name is best-effort; an unresolvable numeric ID is still an
	// identity failure.
	name, err := c.playerName(ctx, canonicalID)
	if err != nil {
		return domain.Identity{}, err
	}

	return domain.Identity{
		RawInput:    ref,
		CanonicalID: canonicalID,
		DisplayName: name,
	}, nil
}

func (c *Client) resolveVanity(ctx context.Context, vanity string) (string, error) {
	q := url.Values{"vanityurl": {vanity}}
	body, err := c.doRequest(ctx, c.apiBase, "/ISteamUser/ResolveVanityURL/v1/", q)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrIdentityNotFound, err)
	}

	var resp vanityResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to parse vanity response: %w", err)
	}
	if resp.Response.Success != vanitySuccess || resp.Response.SteamID == "" {
		return "", domain.ErrIdentityNotFound
	}
	return resp.Response.SteamID, nil
}

func (c *Client) playerName(ctx context.Context, steamID string) (string, error) {
	q := url.Values{"steamids": {steamID}}
	body, err := c.doRequest(ctx, c.apiBase, "/ISteamUser/GetPlayerSummaries/v2/", q)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrIdentityNotFound, err)
	}

	var resp playerSummariesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to parse player summaries: %w", err)
	}
	if len(resp.Response.Players) == 0 {
		return "", domain.ErrIdentityNotFound
	}
	return resp.Response.Players[0].PersonaName, nil
}

// FetchCatalog returns the owner's game list with basic app info.
func (c *Client) FetchCatalog(ctx context.Context, canonicalID string) ([]domain.ItemSummary, int, error) {
	q := url.Values{
		"steamid":                   {canonicalID},
		"include_appinfo":           {"1"},
		"include_played_free_games": {"1"},
	}
	body, err := c.doRequest(ctx, c.apiBase, "/IPlayerService/GetOwnedGames/v1/", q)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", domain.ErrCatalogFetchFailed, err)
	}

	var resp ownedGamesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", domain.ErrCatalogFetchFailed, err)
	}

	items := mapOwnedGames(resp.Response.Games)
	c.logger.Debug("fetched catalog", "owner", canonicalID, "count", resp.Response.GameCount)
	return items, resp.Response.GameCount, nil
}

// FetchItemDetail returns the enriched store record for one item.
func (c *Client) FetchItemDetail(ctx context.Context, itemID string) (domain.ItemDetail, error) {
	q := url.Values{"appids": {itemID}}
	body, err := c.doRequest(ctx, c.storeBase, "/api/appdetails", q)
	if err != nil {
		return domain.ItemDetail{}, fmt.Errorf("%w: %v", domain.ErrItemEnrichmentFailed, err)
	}

	var resp map[string]appDetailsEnvelope
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.ItemDetail{}, fmt.Errorf("%w: %v", domain.ErrItemEnrichmentFailed, err)
	}
	env, ok := resp[itemID]
	if !ok || !env.Success {
		return domain.ItemDetail{}, domain.ErrItemEnrichmentFailed
	}

	return mapAppDetails(itemID, env.Data), nil
}

// FetchArtwork downloads one artwork blob. A 404 from the CDN returns a
// nil blob without an error; missing artwork is expected for some items.
func (c *Client) FetchArtwork(ctx context.Context, artURL string) ([]byte, error) {
	if artURL == "" {
		return nil, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, artURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrArtworkDownloadFailed, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrArtworkDownloadFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", domain.ErrArtworkDownloadFailed, resp.StatusCode)
	}

	blob, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrArtworkDownloadFailed, err)
	}
	return blob, nil
}
