package models

import "time"

// Route is a named path between two points served by scheduled buses.
type Route struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	RouteName     string    `gorm:"uniqueIndex;size:128;not null" json:"route_name"`
	StartingPoint string    `json:"starting_point"`
	EndingPoint   string    `json:"ending_point"`
	Distance      float64   `json:"distance"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
