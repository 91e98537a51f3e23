package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fleet_tracker/internal/models"
)

func (s *GormStore) FindLocation(ctx context.Context, driverUsername string) (*models.DriverLocation, error) {
	var loc models.DriverLocation
	q := s.db.WithContext(ctx).Where("driver_username = ?", driverUsername)
	if err := first(q, &loc, "location for driver", driverUsername); err != nil {
		return nil, err
	}
	return &loc, nil
}

func (s *GormStore) SaveLocation(ctx context.Context, loc *models.DriverLocation) error {
	return wrap("save location for "+loc.DriverUsername, s.db.WithContext(ctx).Save(loc).Error)
}

func (s *GormStore) UpsertLocation(ctx context.Context, loc *models.DriverLocation) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "driver_username"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"latitude", "longitude", "accuracy", "status", "bus_number", "timestamp", "updated_at",
		}),
	}).Create(loc).Error
	if err != nil {
		return wrap("upsert location for "+loc.DriverUsername, err)
	}
	stored, err := s.FindLocation(ctx, loc.DriverUsername)
	if err != nil {
		return err
	}
	*loc = *stored
	return nil
}

func (s *GormStore) ListLocations(ctx context.Context, filter LocationFilter) ([]models.DriverLocation, error) {
	var out []models.DriverLocation
	q := locationQuery(s.db.WithContext(ctx), filter).Order("updated_at DESC")
	if err := q.Find(&out).Error; err != nil {
		return nil, wrap("list locations", err)
	}
	return out, nil
}

func (s *GormStore) CountLocations(ctx context.Context, filter LocationFilter) (int64, error) {
	return count(locationQuery(s.db.WithContext(ctx), filter), "count locations")
}

func locationQuery(db *gorm.DB, f LocationFilter) *gorm.DB {
	q := db.Model(&models.DriverLocation{})
	if len(f.Statuses) > 0 {
		q = q.Where("status IN ?", f.Statuses)
	}
	if !f.UpdatedSince.IsZero() {
		q = q.Where("updated_at >= ?", f.UpdatedSince)
	}
	return q
}
