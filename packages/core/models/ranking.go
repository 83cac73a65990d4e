package models

type PlayerStanding struct {
	PlayerID   uint    `json:"player_id"`
	Name       string  `json:"name"`
	Color      string  `json:"color"`
	EloRating  float64 `json:"elo_rating"`
	GamesWon   int64   `json:"games_won"`
	GamesLost  int64   `json:"games_lost"`
	TotalGames int64   `json:"total_games"`
}

// WinGauge is the share of games won by one of the top players.
type WinGauge struct {
	Name  string  `json:"name"`
	Color string  `json:"color"`
	Title string  `json:"title"`
	Value float64 `json:"value"`
}

type Rankings struct {
	League     League            `json:"league"`
	WindowDays int               `json:"window_days"`
	Standings  []PlayerStanding  `json:"standings"`
	EloSeries  []PlayerEloSeries `json:"elo_series"`
	Gauges     []WinGauge        `json:"gauges"`
}
