package models

import "time"

// EloDelta is one signed rating change applied to a player by a match.
type EloDelta struct {
	MatchID   uint      `json:"match_id"`
	PlayerID  uint      `json:"player_id"`
	CreatedAt time.Time `json:"created_at"`
	EloChange float64   `json:"elo_change"`
}

// EloPoint is a point on a rating trend line.
type EloPoint struct {
	EloRating float64   `json:"elo_rating"`
	Date      time.Time `json:"date"`
}

type PlayerEloSeries struct {
	PlayerID   uint       `json:"player_id"`
	PlayerName string     `json:"player_name"`
	Color      string     `json:"color"`
	Points     []EloPoint `json:"points"`
}
