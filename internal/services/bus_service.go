package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"fleet_tracker/internal/apperr"
	"fleet_tracker/internal/models"
	"fleet_tracker/internal/repository"
)

type BusInput struct {
	BusNumber string
	Capacity  int
	Model     string
	DriverID  *uint
}

// BusService manages buses and the available/unavailable status machine.
type BusService struct {
	store         repository.Store
	schedules     *ScheduleService
	notifications *NotificationService
}

func NewBusService(store repository.Store, schedules *ScheduleService, notifications *NotificationService) *BusService {
	return &BusService{store: store, schedules: schedules, notifications: notifications}
}

func normalizeBusStatus(status string) (string, error) {
	switch s := strings.ToLower(strings.TrimSpace(status)); s {
	case models.BusAvailable, models.BusUnavailable:
		return s, nil
	default:
		return "", apperr.Validation("bus status must be %q or %q", models.BusAvailable, models.BusUnavailable)
	}
}

func (s *BusService) checkDriver(ctx context.Context, driverID *uint) error {
	if driverID == nil {
		return nil
	}
	user, err := s.store.FindUserByID(ctx, *driverID)
	if err != nil {
		return err
	}
	if !user.HasRole(models.RoleDriver) {
		return apperr.Validation("user %s is not a driver", user.Username)
	}
	return nil
}

// Create registers a bus as available. The driver, if any, must exist and hold
// the DRIVER role.
func (s *BusService) Create(ctx context.Context, in BusInput) (*models.Bus, error) {
	if err := required("bus_number", in.BusNumber); err != nil {
		return nil, err
	}
	if in.Capacity < 0 {
		return nil, apperr.Validation("capacity cannot be negative")
	}
	if _, err := s.store.FindBusByNumber(ctx, in.BusNumber); err == nil {
		return nil, apperr.Conflict("bus number %q already exists", in.BusNumber)
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}
	if err := s.checkDriver(ctx, in.DriverID); err != nil {
		return nil, err
	}

	bus := &models.Bus{
		BusNumber: in.BusNumber,
		Capacity:  in.Capacity,
		Model:     in.Model,
		Status:    models.BusAvailable,
		DriverID:  in.DriverID,
	}
	if err := s.store.CreateBus(ctx, bus); err != nil {
		return nil, apperr.Persistence("create bus", err)
	}
	logrus.WithField("bus_number", bus.BusNumber).Info("Bus created.")
	return bus, nil
}

// Update changes the descriptive fields of a bus. Status changes go through SetBusStatus.
func (s *BusService) Update(ctx context.Context, id uint, in BusInput) (*models.Bus, error) {
	if err := required("bus_number", in.BusNumber); err != nil {
		return nil, err
	}
	bus, err := s.store.FindBusByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.BusNumber != bus.BusNumber {
		if _, err := s.store.FindBusByNumber(ctx, in.BusNumber); err == nil {
			return nil, apperr.Conflict("bus number %q already exists", in.BusNumber)
		} else if !errors.Is(err, apperr.ErrNotFound) {
			return nil, err
		}
	}
	if err := s.checkDriver(ctx, in.DriverID); err != nil {
		return nil, err
	}

	bus.BusNumber = in.BusNumber
	bus.Capacity = in.Capacity
	bus.Model = in.Model
	bus.DriverID = in.DriverID
	if err := s.store.SaveBus(ctx, bus); err != nil {
		return nil, apperr.Persistence("update bus", err)
	}
	return bus, nil
}

func (s *BusService) Get(ctx context.Context, id uint) (*models.Bus, error) {
	return s.store.FindBusByID(ctx, id)
}

// List returns every bus regardless of status.
func (s *BusService) List(ctx context.Context) ([]models.Bus, error) {
	return s.store.ListBuses(ctx, "")
}

func (s *BusService) ListAvailable(ctx context.Context) ([]models.Bus, error) {
	return s.store.ListBuses(ctx, models.BusAvailable)
}

// ListWithoutDriver returns the buses nobody is assigned to drive.
func (s *BusService) ListWithoutDriver(ctx context.Context) ([]models.Bus, error) {
	all, err := s.store.ListBuses(ctx, "")
	if err != nil {
		return nil, err
	}
	out := make([]models.Bus, 0, len(all))
	for _, b := range all {
		if b.DriverID == nil {
			out = append(out, b)
		}
	}
	return out, nil
}

// ForDriver returns the bus assigned to username.
func (s *BusService) ForDriver(ctx context.Context, username string) (*models.Bus, error) {
	user, err := s.store.FindUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.store.FindBusByDriver(ctx, user.ID)
}

// Delete removes the bus record only.
func (s *BusService) Delete(ctx context.Context, id uint) error {
	if err := s.store.DeleteBus(ctx, id); err != nil {
		return err
	}
	logrus.WithField("bus_id", id).Info("Bus deleted.")
	return nil
}

// SetBusStatus moves a bus between available and unavailable. It reports false when
// the bus does not exist. Going unavailable flags the bus's schedules for reassignment
// in the same transaction, then tells the driver and the admin.
func (s *BusService) SetBusStatus(ctx context.Context, busID uint, status string) (bool, error) {
	next, err := normalizeBusStatus(status)
	if err != nil {
		return false, err
	}

	var (
		bus        *models.Bus
		driver     string
		reassigned int
	)
	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		b, err := tx.FindBusByID(ctx, busID)
		if err != nil {
			return err
		}
		b.Status = next
		if err := tx.SaveBus(ctx, b); err != nil {
			return err
		}
		bus = b
		if next != models.BusUnavailable {
			return nil
		}
		driver = driverUsername(ctx, tx, b)
		reassigned, err = s.schedules.withStore(tx).ReassignAwayFromBus(ctx, busID)
		return err
	})
	if errors.Is(err, apperr.ErrNotFound) {
		logrus.WithField("bus_id", busID).Warn("Bus status change for unknown bus.")
		return false, nil
	}
	if err != nil {
		return false, apperr.Persistence("set bus status", err)
	}
	logrus.WithFields(logrus.Fields{
		"bus_number": bus.BusNumber,
		"status":     next,
		"reassigned": reassigned,
	}).Info("Bus status changed.")

	if next == models.BusUnavailable {
		s.notifications.notifyDriver(ctx, driver, NotificationInput{
			Sender:    models.SenderSystem,
			Type:      models.NotificationInfo,
			Title:     "Bus In Maintenance",
			Message:   fmt.Sprintf("Your bus %s has been taken out of service for maintenance. Your schedules will be reassigned.", bus.BusNumber),
			BusNumber: bus.BusNumber,
		})
		s.notifications.notify(ctx, NotificationInput{
			Sender:    models.SenderSystem,
			Receiver:  models.ReceiverAdmin,
			Type:      models.NotificationAlert,
			Title:     fmt.Sprintf("Bus %s is Under Maintenance", bus.BusNumber),
			Message:   fmt.Sprintf("Bus %s is under maintenance and %d schedule(s) need a new bus. Go to Scheduling and resolve the conflicts.", bus.BusNumber, reassigned),
			BusNumber: bus.BusNumber,
		})
	}
	return true, nil
}
