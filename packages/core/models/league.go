package models

import (
	"time"

	"gorm.io/gorm"
)

type League struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	ShortName    string    `gorm:"size:64;uniqueIndex;not null" json:"short_name"`
	MaxScore     int       `gorm:"not null;default:8" json:"max_score"`
	PasswordHash *string   `gorm:"column:password;size:255" json:"-"`
	OwnerID      uint      `gorm:"not null;index" json:"owner_id"`
	IsActive     bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	HasPassword bool `gorm:"-" json:"has_password"`
}

func (League) TableName() string {
	return "leagues"
}

// AfterFind derives HasPassword so the hash itself never has to leave the service layer.
func (l *League) AfterFind(tx *gorm.DB) error {
	l.HasPassword = l.PasswordHash != nil
	return nil
}

type OwnedLeaguesResponse struct {
	Active   []League `json:"active"`
	Inactive []League `json:"inactive"`
}

type CreateLeagueRequest struct {
	Name      string `json:"name" binding:"required"`
	ShortName string `json:"short_name" binding:"required"`
	MaxScore  int    `json:"max_score" binding:"omitempty,min=1"`
	Password  string `json:"password,omitempty"`
}

type UpdateLeagueRequest struct {
	Name      string `json:"name" binding:"required"`
	ShortName string `json:"short_name" binding:"required"`
	MaxScore  int    `json:"max_score" binding:"required,min=1"`
}

type ChangeLeaguePasswordRequest struct {
	CurrentPassword    string `json:"current_password"`
	RemovePassword     bool   `json:"remove_password"`
	NewPassword        string `json:"new_password"`
	NewPasswordConfirm string `json:"new_password_confirm"`
}

type TransferLeagueRequest struct {
	OwnerID uint `json:"owner_id" binding:"required"`
}

type ResetLeagueRequest struct {
	ShortName string `json:"short_name" binding:"required"`
}
