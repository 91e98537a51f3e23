package repository

import (
	"context"
	"fmt"

	"fleet_tracker/internal/models"
)

func (s *GormStore) CreateBus(ctx context.Context, bus *models.Bus) error {
	return wrap("create bus "+bus.BusNumber, s.db.WithContext(ctx).Create(bus).Error)
}

func (s *GormStore) SaveBus(ctx context.Context, bus *models.Bus) error {
	return wrap(fmt.Sprintf("save bus %d", bus.ID), s.db.WithContext(ctx).Save(bus).Error)
}

func (s *GormStore) FindBusByID(ctx context.Context, id uint) (*models.Bus, error) {
	var bus models.Bus
	if err := first(s.db.WithContext(ctx).Where("id = ?", id), &bus, "bus", id); err != nil {
		return nil, err
	}
	return &bus, nil
}

func (s *GormStore) FindBusByNumber(ctx context.Context, busNumber string) (*models.Bus, error) {
	var bus models.Bus
	if err := first(s.db.WithContext(ctx).Where("bus_number = ?", busNumber), &bus, "bus", busNumber); err != nil {
		return nil, err
	}
	return &bus, nil
}

func (s *GormStore) FindBusByDriver(ctx context.Context, driverID uint) (*models.Bus, error) {
	var bus models.Bus
	q := s.db.WithContext(ctx).Where("driver_id = ?", driverID).Order("id")
	if err := first(q, &bus, "bus for driver", driverID); err != nil {
		return nil, err
	}
	return &bus, nil
}

func (s *GormStore) ListBuses(ctx context.Context, status string) ([]models.Bus, error) {
	var buses []models.Bus
	q := s.db.WithContext(ctx).Order("bus_number")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Find(&buses).Error; err != nil {
		return nil, wrap("list buses", err)
	}
	return buses, nil
}

func (s *GormStore) DeleteBus(ctx context.Context, id uint) error {
	return deleteOne(s.db.WithContext(ctx).Where("id = ?", id), &models.Bus{}, "bus", id)
}

func (s *GormStore) CountBuses(ctx context.Context) (int64, error) {
	return count(s.db.WithContext(ctx).Model(&models.Bus{}), "count buses")
}

func (s *GormStore) CreateRoute(ctx context.Context, route *models.Route) error {
	return wrap("create route "+route.RouteName, s.db.WithContext(ctx).Create(route).Error)
}

func (s *GormStore) SaveRoute(ctx context.Context, route *models.Route) error {
	return wrap(fmt.Sprintf("save route %d", route.ID), s.db.WithContext(ctx).Save(route).Error)
}

func (s *GormStore) FindRouteByID(ctx context.Context, id uint) (*models.Route, error) {
	var route models.Route
	if err := first(s.db.WithContext(ctx).Where("id = ?", id), &route, "route", id); err != nil {
		return nil, err
	}
	return &route, nil
}

func (s *GormStore) FindRouteByName(ctx context.Context, name string) (*models.Route, error) {
	var route models.Route
	if err := first(s.db.WithContext(ctx).Where("route_name = ?", name), &route, "route", name); err != nil {
		return nil, err
	}
	return &route, nil
}

func (s *GormStore) ListRoutes(ctx context.Context) ([]models.Route, error) {
	var routes []models.Route
	if err := s.db.WithContext(ctx).Order("route_name").Find(&routes).Error; err != nil {
		return nil, wrap("list routes", err)
	}
	return routes, nil
}

func (s *GormStore) DeleteRoute(ctx context.Context, id uint) error {
	return deleteOne(s.db.WithContext(ctx).Where("id = ?", id), &models.Route{}, "route", id)
}

func (s *GormStore) CountRoutes(ctx context.Context) (int64, error) {
	return count(s.db.WithContext(ctx).Model(&models.Route{}), "count routes")
}

func (s *GormStore) CreateUser(ctx context.Context, user *models.User) error {
	return wrap("create user "+user.Username, s.db.WithContext(ctx).Create(user).Error)
}

func (s *GormStore) SaveUser(ctx context.Context, user *models.User) error {
	return wrap("save user "+user.Username, s.db.WithContext(ctx).Save(user).Error)
}

func (s *GormStore) FindUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := first(s.db.WithContext(ctx).Where("id = ?", id), &user, "user", id); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *GormStore) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := first(s.db.WithContext(ctx).Where("username = ?", username), &user, "user", username); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *GormStore) ListUsers(ctx context.Context, role string) ([]models.User, error) {
	var users []models.User
	q := s.db.WithContext(ctx).Order("username")
	if role != "" {
		q = q.Where("? = ANY(roles)", role)
	}
	if err := q.Find(&users).Error; err != nil {
		return nil, wrap("list users", err)
	}
	return users, nil
}

func (s *GormStore) CountUsers(ctx context.Context, role string) (int64, error) {
	q := s.db.WithContext(ctx).Model(&models.User{})
	if role != "" {
		q = q.Where("? = ANY(roles)", role)
	}
	return count(q, "count users")
}
