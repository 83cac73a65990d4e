package models

import "time"

// Player is a league-scoped player. EloRating is the membership rating for its league.
type Player struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	LeagueID  uint      `gorm:"not null;index" json:"league_id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Color     string    `gorm:"size:7;not null;default:'#000000'" json:"color"`
	EloRating float64   `gorm:"not null;default:1000" json:"elo_rating"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Player) TableName() string {
	return "league_players"
}

type PlayersResponse struct {
	Active   []Player `json:"active"`
	Inactive []Player `json:"inactive"`
}

type CreatePlayerRequest struct {
	Name  string `json:"name" binding:"required"`
	Color string `json:"color" binding:"required"`
}

type UpdatePlayerRequest struct {
	Name  string `json:"name" binding:"required"`
	Color string `json:"color" binding:"required"`
}
