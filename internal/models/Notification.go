package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationType string

const (
	NotificationMaintenance NotificationType = "MAINTENANCE"
	NotificationAlert       NotificationType = "ALERT"
	NotificationInfo        NotificationType = "INFO"
	NotificationWarning     NotificationType = "WARNING"
)

func (t NotificationType) Valid() bool {
	switch t {
	case NotificationMaintenance, NotificationAlert, NotificationInfo, NotificationWarning:
		return true
	}
	return false
}

const (
	ReceiverAdmin     = "admin"
	ReceiverBroadcast = "ALL"
	SenderSystem      = "SYSTEM"
)

// Notification is addressed to a driver username, to "admin", or to "ALL".
type Notification struct {
	ID        string           `gorm:"primaryKey;size:36" json:"id"`
	Sender    string           `gorm:"index;size:64" json:"sender"`
	Receiver  string           `gorm:"index;size:64;not null" json:"receiver"`
	Type      NotificationType `gorm:"index;size:16;not null" json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	BusNumber string           `gorm:"index;size:64" json:"bus_number,omitempty"`
	IsRead    bool             `gorm:"index;not null;default:false" json:"is_read"`
	CreatedAt time.Time        `gorm:"index" json:"created_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}
