package steam

// Wire DTOs for the Steam Web API and store endpoints.

const vanitySuccess = 1

type vanityResponse struct {
	Response struct {
		Success int    `json:"success"`
		SteamID string `json:"steamid"`
		Message string `json:"message"`
	} `json:"response"`
}

type playerSummariesResponse struct {
	Response struct {
		Players []playerDTO `json:"players"`
	} `json:"response"`
}

type playerDTO struct {
	SteamID     string `json:"steamid"`
	PersonaName string `json:"personaname"`
}

type ownedGamesResponse struct {
	Response struct {
		GameCount int       `json:"game_count"`
		Games     []gameDTO `json:"games"`
	} `json:"response"`
}

type gameDTO struct {
	AppID           int64  `json:"appid"`
	Name            string `json:"name"`
	PlaytimeForever int    `json:"playtime_forever"`
	ImgIconURL      string `json:"img_icon_url"`
	ImgLogoURL      string `json:"img_logo_url"`
}

type appDetailsEnvelope struct {
	Success bool          `json:"success"`
	Data    appDetailsDTO `json:"data"`
}

type appDetailsDTO struct {
	Name             string     `json:"name"`
	ShortDescription string     `json:"short_description"`
	HeaderImage      string     `json:"header_image"`
	Developers       []string   `json:"developers"`
	Genres           []genreDTO `json:"genres"`
}

type genreDTO struct {
	Description string `json:"description"`
}
