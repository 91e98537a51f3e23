package services

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"fleet_tracker/internal/apperr"
	"fleet_tracker/internal/models"
	"fleet_tracker/internal/repository"
)

type RouteInput struct {
	RouteName     string
	StartingPoint string
	EndingPoint   string
	Distance      float64
}

type RouteService struct {
	store repository.RouteRepository
}

func NewRouteService(store repository.RouteRepository) *RouteService {
	return &RouteService{store: store}
}

func (in RouteInput) validate() error {
	if err := required("route_name", in.RouteName); err != nil {
		return err
	}
	if in.Distance < 0 {
		return apperr.Validation("distance cannot be negative")
	}
	return nil
}

func (s *RouteService) ensureNameFree(ctx context.Context, name string) error {
	_, err := s.store.FindRouteByName(ctx, name)
	switch {
	case err == nil:
		return apperr.Conflict("route %q already exists", name)
	case errors.Is(err, apperr.ErrNotFound):
		return nil
	default:
		return err
	}
}

// Create adds a route. Route names are unique.
func (s *RouteService) Create(ctx context.Context, in RouteInput) (*models.Route, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if err := s.ensureNameFree(ctx, in.RouteName); err != nil {
		return nil, err
	}
	route := &models.Route{
		RouteName:     in.RouteName,
		StartingPoint: in.StartingPoint,
		EndingPoint:   in.EndingPoint,
		Distance:      in.Distance,
	}
	if err := s.store.CreateRoute(ctx, route); err != nil {
		return nil, apperr.Persistence("create route", err)
	}
	logrus.WithField("route", route.RouteName).Info("Route created.")
	return route, nil
}

func (s *RouteService) Update(ctx context.Context, id uint, in RouteInput) (*models.Route, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	route, err := s.store.FindRouteByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.RouteName != route.RouteName {
		if err := s.ensureNameFree(ctx, in.RouteName); err != nil {
			return nil, err
		}
	}
	route.RouteName = in.RouteName
	route.StartingPoint = in.StartingPoint
	route.EndingPoint = in.EndingPoint
	route.Distance = in.Distance
	if err := s.store.SaveRoute(ctx, route); err != nil {
		return nil, apperr.Persistence("update route", err)
	}
	return route, nil
}

func (s *RouteService) Get(ctx context.Context, id uint) (*models.Route, error) {
	return s.store.FindRouteByID(ctx, id)
}

func (s *RouteService) List(ctx context.Context) ([]models.Route, error) {
	return s.store.ListRoutes(ctx)
}

func (s *RouteService) Delete(ctx context.Context, id uint) error {
	return s.store.DeleteRoute(ctx, id)
}
