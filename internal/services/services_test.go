package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"fleet_tracker/internal/models"
	"fleet_tracker/internal/repository"
)

type published struct {
	topic   string
	payload any
}

type recordingPublisher struct {
	mu   sync.Mutex
	sent []published
	fail error
}

func (p *recordingPublisher) Publish(ctx context.Context, topic string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, published{topic: topic, payload: payload})
	return p.fail
}

func (p *recordingPublisher) topics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.sent))
	for i, m := range p.sent {
		out[i] = m.topic
	}
	return out
}

type fixture struct {
	store         *repository.MemoryStore
	push          *recordingPublisher
	notifications *NotificationService
	schedules     *ScheduleService
	buses         *BusService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := repository.NewMemoryStore()
	push := &recordingPublisher{}
	notifications := NewNotificationService(store, push)
	schedules := NewScheduleService(store, notifications, TripsOrphan)
	return &fixture{
		store:         store,
		push:          push,
		notifications: notifications,
		schedules:     schedules,
		buses:         NewBusService(store, schedules, notifications),
	}
}

func (f *fixture) driver(t *testing.T, username string) *models.User {
	t.Helper()
	u := &models.User{Username: username, Roles: []string{models.RoleDriver}}
	if err := f.store.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return u
}

func (f *fixture) bus(t *testing.T, number string, driver *models.User) *models.Bus {
	t.Helper()
	in := BusInput{BusNumber: number, Capacity: 33, Model: "Isuzu NQR"}
	if driver != nil {
		in.DriverID = &driver.ID
	}
	b, err := f.buses.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("Create bus: %v", err)
	}
	return b
}

func (f *fixture) route(t *testing.T, name string) *models.Route {
	t.Helper()
	r := &models.Route{RouteName: name, StartingPoint: "Colombo", EndingPoint: "Kandy", Distance: 115}
	if err := f.store.CreateRoute(context.Background(), r); err != nil {
		t.Fatalf("CreateRoute: %v", err)
	}
	return r
}

func (f *fixture) schedule(t *testing.T, bus *models.Bus, route *models.Route, date, departure string) *models.Schedule {
	t.Helper()
	sc, err := f.schedules.Create(context.Background(), ScheduleInput{
		BusID: bus.ID, RouteID: route.ID, DepartureTime: departure, ArrivalTime: "23:00", Date: date,
	})
	if err != nil {
		t.Fatalf("Create schedule: %v", err)
	}
	return sc
}

func (f *fixture) inbox(t *testing.T, receiver string) []models.Notification {
	t.Helper()
	list, err := f.notifications.ListForReceiver(context.Background(), receiver)
	if err != nil {
		t.Fatalf("ListForReceiver: %v", err)
	}
	return list
}

func withTitle(list []models.Notification, title string) *models.Notification {
	for i := range list {
		if list[i].Title == title {
			return &list[i]
		}
	}
	return nil
}

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

func contains(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
