package models

import "time"

// LeagueAccessGrant lets a visitor read a password protected league until ExpiresAt.
type LeagueAccessGrant struct {
	Token     string    `gorm:"primaryKey;size:64" json:"token"`
	LeagueID  uint      `gorm:"not null;index" json:"league_id"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

func (LeagueAccessGrant) TableName() string {
	return "league_access"
}

// IsExpired reports whether the grant is no longer valid at now.
func (g *LeagueAccessGrant) IsExpired(now time.Time) bool {
	return !now.Before(g.ExpiresAt)
}

type LeagueAccessRequest struct {
	Password string `json:"password" binding:"required"`
}
