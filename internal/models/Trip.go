package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Trip records what actually happened on a schedule. ScheduleNumber is a plain
// column so a trip can outlive its schedule.
type Trip struct {
	ID                  string    `gorm:"primaryKey;size:36" json:"id"`
	ScheduleNumber      string    `gorm:"index;size:32" json:"schedule_number"`
	Date                string    `gorm:"size:10;index" json:"date"`
	ActualDepartureTime string    `gorm:"size:5" json:"actual_departure_time"`
	ActualArrivalTime   string    `gorm:"size:5" json:"actual_arrival_time"`
	PassengerCount      int       `json:"passenger_count"`
	Income              int       `json:"income"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

func (t *Trip) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
