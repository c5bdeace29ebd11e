package steam

import (
	"strconv"

	"github.com/drake/gamevault/internal/domain"
)

// mapOwnedGames converts GetOwnedGames DTOs into catalog summaries.
// Artwork stays nil here; enrichment fills it in item by item.
func mapOwnedGames(games []gameDTO) []domain.ItemSummary {
	items := make([]domain.ItemSummary, 0, len(games))
	for _, g := range games {
		items = append(items, domain.ItemSummary{
			ItemID:          strconv.FormatInt(g.AppID, 10),
			Name:            g.Name,
			PlaytimeMinutes: g.PlaytimeForever,
			IconHash:        g.ImgIconURL,
			LogoHash:        g.ImgLogoURL,
		})
	}
	return items
}

// mapAppDetails converts a store appdetails record into the enriched
// domain form. Artwork URLs are not taken from the store payload; the
// loader attaches the deterministic CDN templates so the cache-only path
// reproduces them exactly.
func mapAppDetails(itemID string, d appDetailsDTO) domain.ItemDetail {
	detail := domain.ItemDetail{
		ItemID:           itemID,
		Name:             d.Name,
		ShortDescription: d.ShortDescription,
		Developers:       d.Developers,
	}
	for _, g := range d.Genres {
		detail.Genres = append(detail.Genres, g.Description)
	}
	return detail
}
