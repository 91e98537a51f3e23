// Package repository persists the fleet model. GormStore talks to PostgreSQL,
// MemoryStore keeps everything in process for local runs and tests.
package repository

import (
	"context"
	"time"

	"fleet_tracker/internal/models"
)

type BusRepository interface {
	CreateBus(ctx context.Context, bus *models.Bus) error
	SaveBus(ctx context.Context, bus *models.Bus) error
	FindBusByID(ctx context.Context, id uint) (*models.Bus, error)
	FindBusByNumber(ctx context.Context, busNumber string) (*models.Bus, error)
	FindBusByDriver(ctx context.Context, driverID uint) (*models.Bus, error)
	// ListBuses returns every bus when status is empty.
	ListBuses(ctx context.Context, status string) ([]models.Bus, error)
	DeleteBus(ctx context.Context, id uint) error
	CountBuses(ctx context.Context) (int64, error)
}

type RouteRepository interface {
	CreateRoute(ctx context.Context, route *models.Route) error
	SaveRoute(ctx context.Context, route *models.Route) error
	FindRouteByID(ctx context.Context, id uint) (*models.Route, error)
	FindRouteByName(ctx context.Context, name string) (*models.Route, error)
	ListRoutes(ctx context.Context) ([]models.Route, error)
	DeleteRoute(ctx context.Context, id uint) error
	CountRoutes(ctx context.Context) (int64, error)
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	SaveUser(ctx context.Context, user *models.User) error
	FindUserByID(ctx context.Context, id uint) (*models.User, error)
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
	// ListUsers returns every user when role is empty.
	ListUsers(ctx context.Context, role string) ([]models.User, error)
	CountUsers(ctx context.Context, role string) (int64, error)
}

// ScheduleRepository lists are ordered by date, then departure time, ascending.
type ScheduleRepository interface {
	CreateSchedule(ctx context.Context, schedule *models.Schedule) error
	SaveSchedule(ctx context.Context, schedule *models.Schedule) error
	SaveSchedules(ctx context.Context, schedules []models.Schedule) error
	FindSchedule(ctx context.Context, scheduleNumber string) (*models.Schedule, error)
	ListSchedules(ctx context.Context, status string) ([]models.Schedule, error)
	ListSchedulesByBus(ctx context.Context, busID uint, status string) ([]models.Schedule, error)
	DeleteSchedule(ctx context.Context, scheduleNumber string) error
	CountSchedules(ctx context.Context) (int64, error)
}

type TripRepository interface {
	CreateTrip(ctx context.Context, trip *models.Trip) error
	SaveTrip(ctx context.Context, trip *models.Trip) error
	FindTrip(ctx context.Context, id string) (*models.Trip, error)
	ListTrips(ctx context.Context, scheduleNumber string) ([]models.Trip, error)
	DeleteTrip(ctx context.Context, id string) error
	DeleteTripsBySchedule(ctx context.Context, scheduleNumber string) (int64, error)
	CountTrips(ctx context.Context) (int64, error)
	// SumTripIncome adds up income of trips dated within [from, to] (YYYY-MM-DD).
	SumTripIncome(ctx context.Context, from, to string) (int64, error)
}

type MaintenanceRepository interface {
	CreateMaintenanceLog(ctx context.Context, log *models.MaintenanceLog) error
	SaveMaintenanceLog(ctx context.Context, log *models.MaintenanceLog) error
	FindMaintenanceLog(ctx context.Context, id string) (*models.MaintenanceLog, error)
	// ListMaintenanceLogs returns newest first; an empty bus number lists every log.
	ListMaintenanceLogs(ctx context.Context, busNumber string) ([]models.MaintenanceLog, error)
	DeleteMaintenanceLog(ctx context.Context, id string) error
	SumMaintenanceCost(ctx context.Context, from, to string) (float64, error)
}

// NotificationFilter narrows notification queries. Zero fields match everything.
type NotificationFilter struct {
	Receiver   string
	Sender     string
	Type       models.NotificationType
	BusNumber  string
	UnreadOnly bool
}

// NotificationRepository lists are ordered newest first.
type NotificationRepository interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
	SaveNotification(ctx context.Context, n *models.Notification) error
	FindNotification(ctx context.Context, id string) (*models.Notification, error)
	ListNotifications(ctx context.Context, filter NotificationFilter) ([]models.Notification, error)
	CountNotifications(ctx context.Context, filter NotificationFilter) (int64, error)
	MarkAllRead(ctx context.Context, receiver string) (int64, error)
	DeleteNotification(ctx context.Context, id string) error
	DeleteNotificationsByReceiver(ctx context.Context, receiver string) (int64, error)
	DeleteNotificationsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// LocationFilter narrows location queries. Zero fields match everything.
type LocationFilter struct {
	Statuses     []string
	UpdatedSince time.Time
}

// LocationRepository lists are ordered by most recent update first.
type LocationRepository interface {
	FindLocation(ctx context.Context, driverUsername string) (*models.DriverLocation, error)
	SaveLocation(ctx context.Context, loc *models.DriverLocation) error
	// UpsertLocation inserts loc or overwrites the row with the same driver username,
	// then reloads loc from the stored row.
	UpsertLocation(ctx context.Context, loc *models.DriverLocation) error
	ListLocations(ctx context.Context, filter LocationFilter) ([]models.DriverLocation, error)
	CountLocations(ctx context.Context, filter LocationFilter) (int64, error)
}

type Sequencer interface {
	// NextSequence increments the named counter and returns the new value, starting at 1.
	NextSequence(ctx context.Context, name string) (int64, error)
}

// Store is the full persistence surface. Transaction runs fn against a store bound
// to one transaction; an error from fn rolls everything back.
type Store interface {
	BusRepository
	RouteRepository
	UserRepository
	ScheduleRepository
	TripRepository
	MaintenanceRepository
	NotificationRepository
	LocationRepository
	Sequencer

	Transaction(ctx context.Context, fn func(tx Store) error) error
}
