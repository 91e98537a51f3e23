package repository

import (
	"context"

	"fleet_tracker/internal/models"
)

const scheduleOrder = "date ASC, departure_time ASC"

func (s *GormStore) CreateSchedule(ctx context.Context, schedule *models.Schedule) error {
	return wrap("create schedule "+schedule.ScheduleNumber, s.db.WithContext(ctx).Create(schedule).Error)
}

func (s *GormStore) SaveSchedule(ctx context.Context, schedule *models.Schedule) error {
	return wrap("save schedule "+schedule.ScheduleNumber, s.db.WithContext(ctx).Save(schedule).Error)
}

func (s *GormStore) SaveSchedules(ctx context.Context, schedules []models.Schedule) error {
	if len(schedules) == 0 {
		return nil
	}
	return wrap("save schedules", s.db.WithContext(ctx).Save(&schedules).Error)
}

func (s *GormStore) FindSchedule(ctx context.Context, scheduleNumber string) (*models.Schedule, error) {
	var schedule models.Schedule
	q := s.db.WithContext(ctx).Where("schedule_number = ?", scheduleNumber)
	if err := first(q, &schedule, "schedule", scheduleNumber); err != nil {
		return nil, err
	}
	return &schedule, nil
}

func (s *GormStore) ListSchedules(ctx context.Context, status string) ([]models.Schedule, error) {
	var schedules []models.Schedule
	q := s.db.WithContext(ctx).Order(scheduleOrder)
	if status != "" {
		q = q.Where("LOWER(status) = LOWER(?)", status)
	}
	if err := q.Find(&schedules).Error; err != nil {
		return nil, wrap("list schedules", err)
	}
	return schedules, nil
}

func (s *GormStore) ListSchedulesByBus(ctx context.Context, busID uint, status string) ([]models.Schedule, error) {
	var schedules []models.Schedule
	q := s.db.WithContext(ctx).Where("bus_id = ?", busID).Order(scheduleOrder)
	if status != "" {
		q = q.Where("LOWER(status) = LOWER(?)", status)
	}
	if err := q.Find(&schedules).Error; err != nil {
		return nil, wrap("list schedules for bus", err)
	}
	return schedules, nil
}

func (s *GormStore) DeleteSchedule(ctx context.Context, scheduleNumber string) error {
	q := s.db.WithContext(ctx).Where("schedule_number = ?", scheduleNumber)
	return deleteOne(q, &models.Schedule{}, "schedule", scheduleNumber)
}

func (s *GormStore) CountSchedules(ctx context.Context) (int64, error) {
	return count(s.db.WithContext(ctx).Model(&models.Schedule{}), "count schedules")
}

func (s *GormStore) CreateTrip(ctx context.Context, trip *models.Trip) error {
	return wrap("create trip", s.db.WithContext(ctx).Create(trip).Error)
}

func (s *GormStore) SaveTrip(ctx context.Context, trip *models.Trip) error {
	return wrap("save trip "+trip.ID, s.db.WithContext(ctx).Save(trip).Error)
}

func (s *GormStore) FindTrip(ctx context.Context, id string) (*models.Trip, error) {
	var trip models.Trip
	if err := first(s.db.WithContext(ctx).Where("id = ?", id), &trip, "trip", id); err != nil {
		return nil, err
	}
	return &trip, nil
}

func (s *GormStore) ListTrips(ctx context.Context, scheduleNumber string) ([]models.Trip, error) {
	var trips []models.Trip
	q := s.db.WithContext(ctx).Order("date DESC, actual_departure_time DESC")
	if scheduleNumber != "" {
		q = q.Where("schedule_number = ?", scheduleNumber)
	}
	if err := q.Find(&trips).Error; err != nil {
		return nil, wrap("list trips", err)
	}
	return trips, nil
}

func (s *GormStore) DeleteTrip(ctx context.Context, id string) error {
	return deleteOne(s.db.WithContext(ctx).Where("id = ?", id), &models.Trip{}, "trip", id)
}

func (s *GormStore) DeleteTripsBySchedule(ctx context.Context, scheduleNumber string) (int64, error) {
	res := s.db.WithContext(ctx).Where("schedule_number = ?", scheduleNumber).Delete(&models.Trip{})
	if res.Error != nil {
		return 0, wrap("delete trips of schedule "+scheduleNumber, res.Error)
	}
	return res.RowsAffected, nil
}

func (s *GormStore) CountTrips(ctx context.Context) (int64, error) {
	return count(s.db.WithContext(ctx).Model(&models.Trip{}), "count trips")
}

func (s *GormStore) SumTripIncome(ctx context.Context, from, to string) (int64, error) {
	var total int64
	err := s.db.WithContext(ctx).Model(&models.Trip{}).
		Where("date BETWEEN ? AND ?", from, to).
		Select("COALESCE(SUM(income), 0)").Scan(&total).Error
	if err != nil {
		return 0, wrap("sum trip income", err)
	}
	return total, nil
}

func (s *GormStore) CreateMaintenanceLog(ctx context.Context, log *models.MaintenanceLog) error {
	return wrap("create maintenance log", s.db.WithContext(ctx).Create(log).Error)
}

func (s *GormStore) SaveMaintenanceLog(ctx context.Context, log *models.MaintenanceLog) error {
	return wrap("save maintenance log "+log.ID, s.db.WithContext(ctx).Save(log).Error)
}

func (s *GormStore) FindMaintenanceLog(ctx context.Context, id string) (*models.MaintenanceLog, error) {
	var log models.MaintenanceLog
	if err := first(s.db.WithContext(ctx).Where("id = ?", id), &log, "maintenance log", id); err != nil {
		return nil, err
	}
	return &log, nil
}

func (s *GormStore) ListMaintenanceLogs(ctx context.Context, busNumber string) ([]models.MaintenanceLog, error) {
	var logs []models.MaintenanceLog
	q := s.db.WithContext(ctx).Order("created_at DESC")
	if busNumber != "" {
		q = q.Where("bus_number = ?", busNumber)
	}
	if err := q.Find(&logs).Error; err != nil {
		return nil, wrap("list maintenance logs", err)
	}
	return logs, nil
}

func (s *GormStore) DeleteMaintenanceLog(ctx context.Context, id string) error {
	q := s.db.WithContext(ctx).Where("id = ?", id)
	return deleteOne(q, &models.MaintenanceLog{}, "maintenance log", id)
}

func (s *GormStore) SumMaintenanceCost(ctx context.Context, from, to string) (float64, error) {
	var total float64
	err := s.db.WithContext(ctx).Model(&models.MaintenanceLog{}).
		Where("maintenance_date BETWEEN ? AND ?", from, to).
		Select("COALESCE(SUM(cost), 0)").Scan(&total).Error
	if err != nil {
		return 0, wrap("sum maintenance cost", err)
	}
	return total, nil
}
