package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"fleet_tracker/internal/apperr"
	"fleet_tracker/internal/models"
	"fleet_tracker/internal/repository"
)

const scheduleSequence = "schedule"

// TripDeletePolicy decides what happens to trips when their schedule is deleted.
type TripDeletePolicy string

const (
	TripsOrphan  TripDeletePolicy = "orphan"
	TripsCascade TripDeletePolicy = "cascade"
)

func ParseTripDeletePolicy(v string) (TripDeletePolicy, error) {
	switch p := TripDeletePolicy(strings.ToLower(strings.TrimSpace(v))); p {
	case "", TripsOrphan:
		return TripsOrphan, nil
	case TripsCascade:
		return TripsCascade, nil
	default:
		return "", fmt.Errorf("unknown trip delete policy %q", v)
	}
}

type ScheduleInput struct {
	BusID         uint
	RouteID       uint
	DepartureTime string
	ArrivalTime   string
	Date          string
	Status        string
}

func (in ScheduleInput) validate() error {
	if in.BusID == 0 {
		return apperr.Validation("bus_id is required")
	}
	if in.RouteID == 0 {
		return apperr.Validation("route_id is required")
	}
	if err := validClock("departure_time", in.DepartureTime); err != nil {
		return err
	}
	if err := validClock("arrival_time", in.ArrivalTime); err != nil {
		return err
	}
	if err := validDate("date", in.Date); err != nil {
		return err
	}
	if in.Status != "" && !validScheduleStatus(in.Status) {
		return apperr.Validation("unknown schedule status %q", in.Status)
	}
	return nil
}

func validScheduleStatus(v string) bool {
	switch strings.ToLower(v) {
	case models.ScheduleUpcoming, models.ScheduleOngoing, models.ScheduleNeedsReassignment, models.ScheduleCompleted:
		return true
	}
	return false
}

// ScheduleService owns schedule status transitions and bus (un)assignment.
type ScheduleService struct {
	store         repository.Store
	notifications *NotificationService
	tripPolicy    TripDeletePolicy
}

func NewScheduleService(store repository.Store, notifications *NotificationService, policy TripDeletePolicy) *ScheduleService {
	if policy == "" {
		policy = TripsOrphan
	}
	return &ScheduleService{store: store, notifications: notifications, tripPolicy: policy}
}

// withStore returns a copy bound to tx so callers can join an open transaction.
func (s *ScheduleService) withStore(tx repository.Store) *ScheduleService {
	c := *s
	c.store = tx
	return &c
}

// assignedStatus is the status stored for a schedule that has a bus. A schedule
// flagged for reassignment goes back to upcoming as soon as it gets one.
func assignedStatus(requested string) string {
	if requested == "" || strings.EqualFold(requested, models.ScheduleNeedsReassignment) {
		return models.ScheduleUpcoming
	}
	return strings.ToLower(requested)
}

// Create books a bus on a route. The schedule number comes from a shared
// sequence and is never reused.
func (s *ScheduleService) Create(ctx context.Context, in ScheduleInput) (*models.Schedule, error) {
	// 1. validate and resolve the bus and route
	if err := in.validate(); err != nil {
		return nil, err
	}
	bus, err := s.store.FindBusByID(ctx, in.BusID)
	if err != nil {
		return nil, err
	}
	route, err := s.store.FindRouteByID(ctx, in.RouteID)
	if err != nil {
		return nil, err
	}
	// 2. allocate the number and store
	seq, err := s.store.NextSequence(ctx, scheduleSequence)
	if err != nil {
		return nil, apperr.Persistence("next schedule number", err)
	}

	schedule := &models.Schedule{
		ScheduleNumber: fmt.Sprintf("SCH-%04d", seq),
		BusID:          &bus.ID,
		RouteID:        route.ID,
		DepartureTime:  in.DepartureTime,
		ArrivalTime:    in.ArrivalTime,
		Date:           in.Date,
		Status:         assignedStatus(in.Status),
	}
	if err := s.store.CreateSchedule(ctx, schedule); err != nil {
		return nil, apperr.Persistence("create schedule", err)
	}
	logrus.WithFields(logrus.Fields{
		"schedule_number": schedule.ScheduleNumber,
		"bus_number":      bus.BusNumber,
		"route":           route.RouteName,
	}).Info("Schedule created.")

	// 3. tell the driver
	s.notifications.notifyDriver(ctx, driverUsername(ctx, s.store, bus), NotificationInput{
		Sender:    models.SenderSystem,
		Type:      models.NotificationInfo,
		Title:     "New Schedule Created!",
		Message:   fmt.Sprintf("Schedule %s has been created for your bus %s on route %s, %s at %s.", schedule.ScheduleNumber, bus.BusNumber, route.RouteName, schedule.Date, schedule.DepartureTime),
		BusNumber: bus.BusNumber,
	})
	return schedule, nil
}

// Update rewrites every field of a schedule. The status is required; asking for
// needs_reassignment while giving a bus stores upcoming instead.
func (s *ScheduleService) Update(ctx context.Context, scheduleNumber string, in ScheduleInput) (*models.Schedule, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if err := required("status", in.Status); err != nil {
		return nil, err
	}
	schedule, err := s.store.FindSchedule(ctx, scheduleNumber)
	if err != nil {
		return nil, err
	}
	bus, err := s.store.FindBusByID(ctx, in.BusID)
	if err != nil {
		return nil, err
	}
	route, err := s.store.FindRouteByID(ctx, in.RouteID)
	if err != nil {
		return nil, err
	}

	schedule.BusID = &bus.ID
	schedule.RouteID = route.ID
	schedule.DepartureTime = in.DepartureTime
	schedule.ArrivalTime = in.ArrivalTime
	schedule.Date = in.Date
	schedule.Status = assignedStatus(in.Status)
	if err := s.store.SaveSchedule(ctx, schedule); err != nil {
		return nil, apperr.Persistence("update schedule", err)
	}
	logrus.WithFields(logrus.Fields{
		"schedule_number": schedule.ScheduleNumber,
		"bus_number":      bus.BusNumber,
		"status":          schedule.Status,
	}).Info("Schedule updated.")

	s.announce(ctx, schedule, bus, route)
	return schedule, nil
}

// SetStatusForDriver moves one of the driver's own schedules to ongoing or
// completed. Schedules on any other bus read as not found.
func (s *ScheduleService) SetStatusForDriver(ctx context.Context, username, scheduleNumber, status string) (*models.Schedule, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if status != models.ScheduleOngoing && status != models.ScheduleCompleted {
		return nil, apperr.Validation("drivers may only set status to %s or %s", models.ScheduleOngoing, models.ScheduleCompleted)
	}

	// 1. resolve the caller's bus
	bus, err := busOfDriver(ctx, s.store, username)
	if err != nil {
		return nil, err
	}
	if bus == nil {
		return nil, apperr.NotFound("schedule %s not found", scheduleNumber)
	}

	// 2. the schedule must be running on that bus
	schedule, err := s.store.FindSchedule(ctx, scheduleNumber)
	if err != nil {
		return nil, err
	}
	if schedule.BusID == nil || *schedule.BusID != bus.ID {
		return nil, apperr.NotFound("schedule %s not found", scheduleNumber)
	}
	route, err := s.store.FindRouteByID(ctx, schedule.RouteID)
	if err != nil {
		return nil, err
	}

	// 3. store and announce
	schedule.Status = status
	if err := s.store.SaveSchedule(ctx, schedule); err != nil {
		return nil, apperr.Persistence("update schedule status", err)
	}
	logrus.WithFields(logrus.Fields{
		"schedule_number": schedule.ScheduleNumber,
		"bus_number":      bus.BusNumber,
		"driver":          username,
		"status":          status,
	}).Info("Schedule status set by driver.")

	s.announce(ctx, schedule, bus, route)
	return schedule, nil
}

// announce sends the notification that goes with the schedule's new status:
// upcoming tells the driver, ongoing tells the admins.
func (s *ScheduleService) announce(ctx context.Context, schedule *models.Schedule, bus *models.Bus, route *models.Route) {
	switch schedule.Status {
	case models.ScheduleUpcoming:
		s.notifications.notifyDriver(ctx, driverUsername(ctx, s.store, bus), NotificationInput{
			Sender:    models.SenderSystem,
			Type:      models.NotificationInfo,
			Title:     "Schedule updated!",
			Message:   fmt.Sprintf("Schedule %s for your bus %s has been updated: %s at %s.", schedule.ScheduleNumber, bus.BusNumber, schedule.Date, schedule.DepartureTime),
			BusNumber: bus.BusNumber,
		})
	case models.ScheduleOngoing:
		s.notifications.notify(ctx, NotificationInput{
			Sender:    models.SenderSystem,
			Receiver:  models.ReceiverAdmin,
			Type:      models.NotificationInfo,
			Title:     fmt.Sprintf("Bus %s Started Trip!", bus.BusNumber),
			Message:   fmt.Sprintf("Bus %s started its journey on route %s.", bus.BusNumber, route.RouteName),
			BusNumber: bus.BusNumber,
		})
	}
}

// ReassignAwayFromBus flags every schedule of busID for reassignment and detaches the bus.
func (s *ScheduleService) ReassignAwayFromBus(ctx context.Context, busID uint) (int, error) {
	schedules, err := s.store.ListSchedulesByBus(ctx, busID, "")
	if err != nil {
		return 0, err
	}
	if len(schedules) == 0 {
		logrus.WithField("bus_id", busID).Info("No schedules tied to bus, nothing to reassign.")
		return 0, nil
	}
	for i := range schedules {
		schedules[i].Status = models.ScheduleNeedsReassignment
		schedules[i].BusID = nil
	}
	if err := s.store.SaveSchedules(ctx, schedules); err != nil {
		return 0, err
	}
	logrus.WithFields(logrus.Fields{
		"bus_id": busID,
		"count":  len(schedules),
	}).Info("Schedules flagged for reassignment.")
	return len(schedules), nil
}

func (s *ScheduleService) Delete(ctx context.Context, scheduleNumber string) error {
	var trips int64
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		if err := tx.DeleteSchedule(ctx, scheduleNumber); err != nil {
			return err
		}
		if s.tripPolicy != TripsCascade {
			return nil
		}
		n, err := tx.DeleteTripsBySchedule(ctx, scheduleNumber)
		trips = n
		return err
	})
	if err != nil {
		return apperr.Persistence("delete schedule", err)
	}
	logrus.WithFields(logrus.Fields{
		"schedule_number": scheduleNumber,
		"trip_policy":     s.tripPolicy,
		"trips_deleted":   trips,
	}).Info("Schedule deleted.")
	return nil
}

func (s *ScheduleService) Get(ctx context.Context, scheduleNumber string) (*models.Schedule, error) {
	return s.store.FindSchedule(ctx, scheduleNumber)
}

// List returns every schedule, or only those with status when it is set.
func (s *ScheduleService) List(ctx context.Context, status string) ([]models.Schedule, error) {
	return s.store.ListSchedules(ctx, status)
}

// UpcomingForDriver lists the driver's bus schedules still waiting to depart.
func (s *ScheduleService) UpcomingForDriver(ctx context.Context, username string) ([]models.Schedule, error) {
	return s.forDriver(ctx, username, models.ScheduleUpcoming)
}

func (s *ScheduleService) OngoingForDriver(ctx context.Context, username string) ([]models.Schedule, error) {
	return s.forDriver(ctx, username, models.ScheduleOngoing)
}

// forDriver resolves username to its bus; a driver without a bus has no schedules.
func (s *ScheduleService) forDriver(ctx context.Context, username, status string) ([]models.Schedule, error) {
	bus, err := busOfDriver(ctx, s.store, username)
	if err != nil || bus == nil {
		return []models.Schedule{}, err
	}
	return s.store.ListSchedulesByBus(ctx, bus.ID, status)
}

// driverUsername looks up the username of the bus's driver. Any failure yields "".
func driverUsername(ctx context.Context, users repository.UserRepository, bus *models.Bus) string {
	if bus == nil || bus.DriverID == nil {
		return ""
	}
	user, err := users.FindUserByID(ctx, *bus.DriverID)
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"bus_number": bus.BusNumber,
			"driver_id":  *bus.DriverID,
		}).Warn("Could not resolve driver for bus.")
		return ""
	}
	return user.Username
}
