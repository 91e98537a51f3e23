package models

import "time"

const (
	BusAvailable   = "available"
	BusUnavailable = "unavailable"
)

// Bus is a vehicle in the fleet. DriverID points at a User holding the DRIVER role.
type Bus struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	BusNumber string    `gorm:"uniqueIndex;size:64;not null" json:"bus_number"`
	Capacity  int       `json:"capacity"`
	Model     string    `json:"model"`
	Status    string    `gorm:"index;size:32;not null;default:available" json:"status"`
	DriverID  *uint     `gorm:"index" json:"driver_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
