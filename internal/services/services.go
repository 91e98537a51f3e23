// Package services holds the fleet state machines: bus status, schedule status,
// notification dispatch and driver location tracking, plus the plain CRUD around them.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"fleet_tracker/internal/apperr"
	"fleet_tracker/internal/models"
	"fleet_tracker/internal/repository"
)

// Publisher is the live push channel. Implementations deliver best-effort.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) error
}

// Clock returns the current time. Services default to time.Now.
type Clock func() time.Time

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return apperr.Validation("%s is required", field)
	}
	return nil
}

func validDate(field, value string) error {
	if _, err := time.Parse(dateLayout, value); err != nil {
		return apperr.Validation("%s must be a YYYY-MM-DD date", field)
	}
	return nil
}

func validClock(field, value string) error {
	if _, err := time.Parse(timeLayout, value); err != nil {
		return apperr.Validation("%s must be an HH:MM time", field)
	}
	return nil
}

// busOfDriver resolves username to the bus they drive. A driver with no bus
// yields a nil bus and no error; an unknown username is not found.
func busOfDriver(ctx context.Context, store repository.Store, username string) (*models.Bus, error) {
	user, err := store.FindUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	bus, err := store.FindBusByDriver(ctx, user.ID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return bus, nil
}
