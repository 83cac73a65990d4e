package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type Roles []string

// Value stores the roles as a JSON array.
func (r Roles) Value() (driver.Value, error) {
	if len(r) == 0 {
		r = GetDefaultRoles()
	}
	b, err := json.Marshal([]string(r))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (r *Roles) Scan(value any) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*r = GetDefaultRoles()
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported roles value %T", value)
	}
	return json.Unmarshal(raw, (*[]string)(r))
}

// User is a league owner account.
type User struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	Email       string     `json:"email" gorm:"size:255;uniqueIndex;not null"`
	Username    string     `json:"username" gorm:"size:255;uniqueIndex;not null"`
	Password    string     `json:"-" gorm:"size:255;not null"`
	Enabled     bool       `json:"enabled" gorm:"not null;default:true"`
	Roles       Roles      `json:"roles" gorm:"type:text;not null"`
	LastLogin   *time.Time `json:"last_login"`
	NbConnexion int        `json:"nb_connexion" gorm:"not null;default:0"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (u *User) AddRole(role string) {
	if !u.HasRole(role) {
		u.Roles = append(u.Roles, role)
	}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
}

type AuthResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	TokenType   string `json:"token_type"`
	User        User   `json:"user"`
}
