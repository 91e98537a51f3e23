package models

import "time"

const (
	ScheduleUpcoming          = "upcoming"
	ScheduleOngoing           = "ongoing"
	ScheduleNeedsReassignment = "needs_reassignment"
	ScheduleCompleted         = "completed"
)

// Schedule is a planned run of a bus on a route. BusID is nil while the
// schedule waits for reassignment.
type Schedule struct {
	ScheduleNumber string    `gorm:"primaryKey;size:32" json:"schedule_number"`
	BusID          *uint     `gorm:"index" json:"bus_id"`
	RouteID        uint      `gorm:"index;not null" json:"route_id"`
	DepartureTime  string    `gorm:"size:5" json:"departure_time"` // HH:MM
	ArrivalTime    string    `gorm:"size:5" json:"arrival_time"`   // HH:MM
	Date           string    `gorm:"size:10;index" json:"date"`    // YYYY-MM-DD
	Status         string    `gorm:"index;size:32" json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
