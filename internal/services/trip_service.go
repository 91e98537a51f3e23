package services

import (
	"context"
	"sort"

	"github.com/sirupsen/logrus"

	"fleet_tracker/internal/apperr"
	"fleet_tracker/internal/models"
	"fleet_tracker/internal/repository"
)

type TripInput struct {
	ScheduleNumber      string
	Date                string
	ActualDepartureTime string
	ActualArrivalTime   string
	PassengerCount      int
	Income              int
}

func (in TripInput) validate() error {
	if err := required("schedule_number", in.ScheduleNumber); err != nil {
		return err
	}
	if err := validDate("date", in.Date); err != nil {
		return err
	}
	if in.ActualDepartureTime != "" {
		if err := validClock("actual_departure_time", in.ActualDepartureTime); err != nil {
			return err
		}
	}
	if in.ActualArrivalTime != "" {
		if err := validClock("actual_arrival_time", in.ActualArrivalTime); err != nil {
			return err
		}
	}
	if in.PassengerCount < 0 || in.Income < 0 {
		return apperr.Validation("passenger_count and income cannot be negative")
	}
	return nil
}

// TripService records trips against existing schedules.
type TripService struct {
	store repository.Store
}

func NewTripService(store repository.Store) *TripService {
	return &TripService{store: store}
}

func (in TripInput) apply(t *models.Trip) {
	t.ScheduleNumber = in.ScheduleNumber
	t.Date = in.Date
	t.ActualDepartureTime = in.ActualDepartureTime
	t.ActualArrivalTime = in.ActualArrivalTime
	t.PassengerCount = in.PassengerCount
	t.Income = in.Income
}

// Create records a completed run of a schedule.
func (s *TripService) Create(ctx context.Context, in TripInput) (*models.Trip, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if _, err := s.store.FindSchedule(ctx, in.ScheduleNumber); err != nil {
		return nil, err
	}
	trip := &models.Trip{}
	in.apply(trip)
	if err := s.store.CreateTrip(ctx, trip); err != nil {
		return nil, apperr.Persistence("create trip", err)
	}
	logrus.WithFields(logrus.Fields{
		"trip_id":         trip.ID,
		"schedule_number": trip.ScheduleNumber,
	}).Info("Trip recorded.")
	return trip, nil
}

// Update replaces every field of the trip.
func (s *TripService) Update(ctx context.Context, id string, in TripInput) (*models.Trip, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	trip, err := s.store.FindTrip(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.ScheduleNumber != trip.ScheduleNumber {
		if _, err := s.store.FindSchedule(ctx, in.ScheduleNumber); err != nil {
			return nil, err
		}
	}
	in.apply(trip)
	if err := s.store.SaveTrip(ctx, trip); err != nil {
		return nil, apperr.Persistence("update trip", err)
	}
	return trip, nil
}

func (s *TripService) Get(ctx context.Context, id string) (*models.Trip, error) {
	return s.store.FindTrip(ctx, id)
}

// List returns all trips, or only those of scheduleNumber when it is set.
func (s *TripService) List(ctx context.Context, scheduleNumber string) ([]models.Trip, error) {
	return s.store.ListTrips(ctx, scheduleNumber)
}

// ForDriver lists the trips run on the schedules of the driver's current bus,
// newest first. A driver without a bus has none.
func (s *TripService) ForDriver(ctx context.Context, username string) ([]models.Trip, error) {
	bus, err := busOfDriver(ctx, s.store, username)
	if err != nil || bus == nil {
		return []models.Trip{}, err
	}
	schedules, err := s.store.ListSchedulesByBus(ctx, bus.ID, "")
	if err != nil {
		return nil, err
	}
	out := []models.Trip{}
	for _, sc := range schedules {
		trips, err := s.store.ListTrips(ctx, sc.ScheduleNumber)
		if err != nil {
			return nil, err
		}
		out = append(out, trips...)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}

func (s *TripService) Delete(ctx context.Context, id string) error {
	return s.store.DeleteTrip(ctx, id)
}
