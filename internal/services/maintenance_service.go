package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"fleet_tracker/internal/apperr"
	"fleet_tracker/internal/models"
	"fleet_tracker/internal/repository"
)

type MaintenanceInput struct {
	BusNumber         string
	MaintenanceDate   string
	MaintenanceType   string
	Cost              float64
	MaintenanceStatus string
	Notes             string
}

func (in MaintenanceInput) validate() error {
	if err := required("bus_number", in.BusNumber); err != nil {
		return err
	}
	if err := required("maintenance_type", in.MaintenanceType); err != nil {
		return err
	}
	if err := validDate("maintenance_date", in.MaintenanceDate); err != nil {
		return err
	}
	if in.Cost < 0 {
		return apperr.Validation("cost cannot be negative")
	}
	return nil
}

func (in MaintenanceInput) apply(m *models.MaintenanceLog) {
	m.BusNumber = in.BusNumber
	m.MaintenanceDate = in.MaintenanceDate
	m.MaintenanceType = in.MaintenanceType
	m.Cost = in.Cost
	m.MaintenanceStatus = in.MaintenanceStatus
	m.Notes = in.Notes
}

// MaintenanceService keeps the maintenance log and warns drivers about upcoming work.
type MaintenanceService struct {
	store         repository.Store
	notifications *NotificationService
}

func NewMaintenanceService(store repository.Store, notifications *NotificationService) *MaintenanceService {
	return &MaintenanceService{store: store, notifications: notifications}
}

// Create logs a maintenance entry and tells the bus's driver about it.
func (s *MaintenanceService) Create(ctx context.Context, in MaintenanceInput) (*models.MaintenanceLog, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	bus, err := s.store.FindBusByNumber(ctx, in.BusNumber)
	if err != nil {
		return nil, err
	}
	entry := &models.MaintenanceLog{}
	in.apply(entry)
	if err := s.store.CreateMaintenanceLog(ctx, entry); err != nil {
		return nil, apperr.Persistence("create maintenance log", err)
	}
	logrus.WithFields(logrus.Fields{
		"bus_number": entry.BusNumber,
		"type":       entry.MaintenanceType,
		"cost":       entry.Cost,
	}).Info("Maintenance logged.")

	s.notifications.notifyDriver(ctx, driverUsername(ctx, s.store, bus), NotificationInput{
		Sender:    models.SenderSystem,
		Type:      models.NotificationMaintenance,
		Title:     "Maintenance Required",
		Message:   fmt.Sprintf("Bus %s is booked for %s on %s.", bus.BusNumber, entry.MaintenanceType, entry.MaintenanceDate),
		BusNumber: bus.BusNumber,
	})
	return entry, nil
}

// Update replaces every field of the entry.
func (s *MaintenanceService) Update(ctx context.Context, id string, in MaintenanceInput) (*models.MaintenanceLog, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	entry, err := s.store.FindMaintenanceLog(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.BusNumber != entry.BusNumber {
		if _, err := s.store.FindBusByNumber(ctx, in.BusNumber); err != nil {
			return nil, err
		}
	}
	in.apply(entry)
	if err := s.store.SaveMaintenanceLog(ctx, entry); err != nil {
		return nil, apperr.Persistence("update maintenance log", err)
	}
	return entry, nil
}

func (s *MaintenanceService) Get(ctx context.Context, id string) (*models.MaintenanceLog, error) {
	return s.store.FindMaintenanceLog(ctx, id)
}

// List returns logs newest first, limited to busNumber when it is set.
func (s *MaintenanceService) List(ctx context.Context, busNumber string) ([]models.MaintenanceLog, error) {
	return s.store.ListMaintenanceLogs(ctx, busNumber)
}

// ForDriver lists the maintenance log of the driver's current bus.
func (s *MaintenanceService) ForDriver(ctx context.Context, username string) ([]models.MaintenanceLog, error) {
	bus, err := busOfDriver(ctx, s.store, username)
	if err != nil || bus == nil {
		return []models.MaintenanceLog{}, err
	}
	return s.store.ListMaintenanceLogs(ctx, bus.BusNumber)
}

func (s *MaintenanceService) Delete(ctx context.Context, id string) error {
	return s.store.DeleteMaintenanceLog(ctx, id)
}
