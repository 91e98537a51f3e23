package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	LocationOnline  = "online"
	LocationActive  = "active"
	LocationOffline = "offline"

	BusNotAssigned = "Not Assigned"
)

// DriverLocation is the last known position of a driver. There is exactly one row per username.
type DriverLocation struct {
	ID             string    `gorm:"primaryKey;size:36" json:"id"`
	DriverUsername string    `gorm:"uniqueIndex;size:64;not null" json:"driver_username"`
	Latitude       float64   `json:"latitude"`
	Longitude      float64   `json:"longitude"`
	Accuracy       *float64  `json:"accuracy,omitempty"` // meters
	Status         string    `gorm:"index;size:16" json:"status"`
	BusNumber      string    `gorm:"size:64" json:"bus_number"`
	Timestamp      time.Time `json:"timestamp"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `gorm:"index" json:"updated_at"`
}

func (l *DriverLocation) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}
