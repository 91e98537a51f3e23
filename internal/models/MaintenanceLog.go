package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MaintenanceLog struct {
	ID                string    `gorm:"primaryKey;size:36" json:"id"`
	BusNumber         string    `gorm:"index;size:64;not null" json:"bus_number"`
	MaintenanceDate   string    `gorm:"size:10;index" json:"maintenance_date"`
	MaintenanceType   string    `json:"maintenance_type"`
	Cost              float64   `json:"cost"`
	MaintenanceStatus string    `gorm:"size:32" json:"maintenance_status"`
	Notes             string    `json:"notes"`
	CreatedAt         time.Time `gorm:"index" json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (m *MaintenanceLog) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
