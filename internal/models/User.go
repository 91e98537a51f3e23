package models

import (
	"time"

	"github.com/lib/pq"
)

const (
	RoleAdmin  = "ADMIN"
	RoleDriver = "DRIVER"
)

type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `json:"name"`
	Email     string         `gorm:"size:255" json:"email"`
	Mobile    string         `json:"mobile"`
	Username  string         `gorm:"uniqueIndex;size:64;not null" json:"username"`
	Password  string         `json:"-"`
	Roles     pq.StringArray `gorm:"type:text[]" json:"roles"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}
