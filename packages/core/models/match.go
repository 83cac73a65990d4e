package models

import "time"

// Match is immutable once recorded. The stored elo changes are exactly what was added to
// each player's rating, so subtracting them restores the previous ratings.
type Match struct {
	ID              uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	LeagueID        uint      `gorm:"not null;index:idx_matches_league_created,priority:1" json:"league_id"`
	WinnerID        uint      `gorm:"not null;index" json:"winner_id"`
	LoserID         uint      `gorm:"not null;index" json:"loser_id"`
	WinnerScore     int       `gorm:"not null" json:"winner_score"`
	LoserScore      int       `gorm:"not null" json:"loser_score"`
	WinnerEloChange float64   `gorm:"not null" json:"winner_elo_change"`
	LoserEloChange  float64   `gorm:"not null" json:"loser_elo_change"`
	CreatedAt       time.Time `gorm:"not null;index:idx_matches_league_created,priority:2" json:"created_at"`

	// Relationships
	Winner *Player `gorm:"foreignKey:WinnerID;references:ID" json:"winner,omitempty"`
	Loser  *Player `gorm:"foreignKey:LoserID;references:ID" json:"loser,omitempty"`
}

func (Match) TableName() string {
	return "matches"
}

type RecordMatchRequest struct {
	WinnerID   uint `json:"winner_id" binding:"required"`
	LoserID    uint `json:"loser_id" binding:"required"`
	LoserScore *int `json:"loser_score" binding:"required"`
}
