package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"fleet_tracker/internal/apperr"
	"fleet_tracker/internal/models"
	"fleet_tracker/internal/realtime"
	"fleet_tracker/internal/repository"
)

// LocationUpdate is a position report from a driver. Latitude and Longitude are required.
type LocationUpdate struct {
	Latitude  *float64
	Longitude *float64
	Accuracy  *float64
	Status    string
	BusNumber string
}

func (u LocationUpdate) validate() error {
	if u.Latitude == nil || u.Longitude == nil {
		return apperr.Validation("latitude and longitude are required")
	}
	if *u.Latitude < -90 || *u.Latitude > 90 {
		return apperr.Validation("latitude %v out of range [-90, 90]", *u.Latitude)
	}
	if *u.Longitude < -180 || *u.Longitude > 180 {
		return apperr.Validation("longitude %v out of range [-180, 180]", *u.Longitude)
	}
	if u.Accuracy != nil && *u.Accuracy < 0 {
		return apperr.Validation("accuracy cannot be negative")
	}
	return nil
}

var activeStatuses = []string{models.LocationOnline, models.LocationActive}

// LocationService keeps exactly one current position per driver.
type LocationService struct {
	store repository.Store
	push  Publisher
	now   Clock
}

func NewLocationService(store repository.Store, push Publisher) *LocationService {
	return &LocationService{store: store, push: push, now: time.Now}
}

// Upsert records the driver's position. Without a supplied bus number the driver's
// assigned bus is used, or "Not Assigned".
func (s *LocationService) Upsert(ctx context.Context, username string, in LocationUpdate) (*models.DriverLocation, error) {
	if err := required("driver username", username); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	existing, err := s.store.FindLocation(ctx, username)
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.Persistence("load driver location", err)
	}

	status := strings.ToLower(strings.TrimSpace(in.Status))
	if status == "" {
		status = models.LocationOnline
	}
	busNumber := strings.TrimSpace(in.BusNumber)
	if busNumber == "" {
		busNumber = s.assignedBusNumber(ctx, username)
	}
	accuracy := in.Accuracy
	if accuracy == nil && existing != nil {
		accuracy = existing.Accuracy
	}

	now := s.now()
	loc := &models.DriverLocation{
		DriverUsername: username,
		Latitude:       *in.Latitude,
		Longitude:      *in.Longitude,
		Accuracy:       accuracy,
		Status:         status,
		BusNumber:      busNumber,
		Timestamp:      now,
		UpdatedAt:      now,
	}
	if err := s.store.UpsertLocation(ctx, loc); err != nil {
		return nil, apperr.Persistence("save driver location", err)
	}
	logrus.WithFields(logrus.Fields{
		"driver":     username,
		"bus_number": loc.BusNumber,
		"status":     loc.Status,
		"created":    existing == nil,
	}).Debug("Driver location recorded.")

	s.broadcast(ctx, loc)
	return loc, nil
}

func (s *LocationService) assignedBusNumber(ctx context.Context, username string) string {
	user, err := s.store.FindUserByUsername(ctx, username)
	if err != nil {
		return models.BusNotAssigned
	}
	bus, err := s.store.FindBusByDriver(ctx, user.ID)
	if err != nil {
		return models.BusNotAssigned
	}
	return bus.BusNumber
}

// SetOffline marks the driver offline. A driver that never reported is left alone.
func (s *LocationService) SetOffline(ctx context.Context, username string) error {
	loc, err := s.store.FindLocation(ctx, username)
	if errors.Is(err, apperr.ErrNotFound) {
		logrus.WithField("driver", username).Info("No location record to mark offline.")
		return nil
	}
	if err != nil {
		return apperr.Persistence("load driver location", err)
	}
	now := s.now()
	loc.Status = models.LocationOffline
	loc.Timestamp = now
	loc.UpdatedAt = now
	if err := s.store.SaveLocation(ctx, loc); err != nil {
		return apperr.Persistence("mark driver offline", err)
	}
	logrus.WithField("driver", username).Info("Driver went offline.")
	s.broadcast(ctx, loc)
	return nil
}

func (s *LocationService) Get(ctx context.Context, username string) (*models.DriverLocation, error) {
	return s.store.FindLocation(ctx, username)
}

func (s *LocationService) All(ctx context.Context) ([]models.DriverLocation, error) {
	return s.store.ListLocations(ctx, repository.LocationFilter{})
}

// Active lists drivers that are online or active, most recently updated first.
func (s *LocationService) Active(ctx context.Context) ([]models.DriverLocation, error) {
	return s.store.ListLocations(ctx, repository.LocationFilter{Statuses: activeStatuses})
}

// Recent lists locations updated within the last minutes.
func (s *LocationService) Recent(ctx context.Context, minutes int) ([]models.DriverLocation, error) {
	if minutes <= 0 {
		return nil, apperr.Validation("minutes must be positive")
	}
	since := s.now().Add(-time.Duration(minutes) * time.Minute)
	return s.store.ListLocations(ctx, repository.LocationFilter{UpdatedSince: since})
}

// ActiveCount counts drivers whose status is online.
func (s *LocationService) ActiveCount(ctx context.Context) (int64, error) {
	return s.store.CountLocations(ctx, repository.LocationFilter{Statuses: activeStatuses})
}

// ActiveGeoJSON renders the active drivers as a FeatureCollection of points.
func (s *LocationService) ActiveGeoJSON(ctx context.Context) (*geojson.FeatureCollection, error) {
	locs, err := s.Active(ctx)
	if err != nil {
		return nil, err
	}
	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(locs))}
	for _, l := range locs {
		props := map[string]interface{}{
			"driver_username": l.DriverUsername,
			"bus_number":      l.BusNumber,
			"status":          l.Status,
			"updated_at":      l.UpdatedAt.UTC().Format(time.RFC3339),
		}
		if l.Accuracy != nil {
			props["accuracy"] = *l.Accuracy
		}
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:         l.DriverUsername,
			Geometry:   geom.NewPointFlat(geom.XY, []float64{l.Longitude, l.Latitude}),
			Properties: props,
		})
	}
	return fc, nil
}

func (s *LocationService) broadcast(ctx context.Context, loc *models.DriverLocation) {
	if s.push == nil {
		return
	}
	if err := s.push.Publish(ctx, realtime.LocationsTopic, loc); err != nil {
		logrus.WithError(err).WithField("driver", loc.DriverUsername).Warn("Live location push failed.")
	}
}
