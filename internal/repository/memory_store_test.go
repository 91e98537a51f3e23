package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"fleet_tracker/internal/apperr"
	"fleet_tracker/internal/models"
)

func TestMemoryStoreSequenceIsMonotonic(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	for want := int64(1); want <= 3; want++ {
		got, err := s.NextSequence(ctx, "schedule")
		if err != nil {
			t.Fatalf("NextSequence: %v", err)
		}
		if got != want {
			t.Fatalf("NextSequence = %d, want %d", got, want)
		}
	}
	if got, _ := s.NextSequence(ctx, "other"); got != 1 {
		t.Fatalf("independent counter started at %d", got)
	}
}

func TestMemoryStoreBusNumberIsUnique(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	if err := s.CreateBus(ctx, &models.Bus{BusNumber: "B001"}); err != nil {
		t.Fatalf("CreateBus: %v", err)
	}
	err := s.CreateBus(ctx, &models.Bus{BusNumber: "B001"})
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestMemoryStoreTransactionRollsBack(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	bus := &models.Bus{BusNumber: "B001", Status: models.BusAvailable}
	if err := s.CreateBus(ctx, bus); err != nil {
		t.Fatalf("CreateBus: %v", err)
	}

	boom := errors.New("boom")
	err := s.Transaction(ctx, func(tx Store) error {
		b, err := tx.FindBusByID(ctx, bus.ID)
		if err != nil {
			return err
		}
		b.Status = models.BusUnavailable
		if err := tx.SaveBus(ctx, b); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Transaction error = %v", err)
	}
	got, _ := s.FindBusByID(ctx, bus.ID)
	if got.Status != models.BusAvailable {
		t.Fatalf("status after rollback = %q", got.Status)
	}
}

func TestMemoryStoreRollbackKeepsOutsideWrites(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	bus := &models.Bus{BusNumber: "B001", Status: models.BusAvailable}
	if err := s.CreateBus(ctx, bus); err != nil {
		t.Fatalf("CreateBus: %v", err)
	}

	boom := errors.New("boom")
	err := s.Transaction(ctx, func(tx Store) error {
		b, _ := tx.FindBusByID(ctx, bus.ID)
		b.Status = models.BusUnavailable
		if err := tx.SaveBus(ctx, b); err != nil {
			return err
		}
		// written straight to the store while the transaction is open
		if err := s.CreateNotification(ctx, &models.Notification{Receiver: "driverA", Title: "hello"}); err != nil {
			return err
		}
		if err := s.UpsertLocation(ctx, &models.DriverLocation{DriverUsername: "driverA", Status: models.LocationOnline}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Transaction error = %v", err)
	}

	if got, _ := s.FindBusByID(ctx, bus.ID); got.Status != models.BusAvailable {
		t.Fatalf("status after rollback = %q", got.Status)
	}
	if n, _ := s.CountNotifications(ctx, NotificationFilter{Receiver: "driverA"}); n != 1 {
		t.Fatalf("notifications after rollback = %d, want 1", n)
	}
	if _, err := s.FindLocation(ctx, "driverA"); err != nil {
		t.Fatalf("location lost on rollback: %v", err)
	}
}

func TestMemoryStoreCommitMergesChangedRows(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	a := &models.Bus{BusNumber: "B001", Status: models.BusAvailable}
	b := &models.Bus{BusNumber: "B002", Status: models.BusAvailable}
	for _, bus := range []*models.Bus{a, b} {
		if err := s.CreateBus(ctx, bus); err != nil {
			t.Fatalf("CreateBus: %v", err)
		}
	}

	err := s.Transaction(ctx, func(tx Store) error {
		got, _ := tx.FindBusByID(ctx, a.ID)
		got.Status = models.BusUnavailable
		if err := tx.SaveBus(ctx, got); err != nil {
			return err
		}
		outside, _ := s.FindBusByID(ctx, b.ID)
		outside.Capacity = 70
		return s.SaveBus(ctx, outside)
	})
	if err != nil {
		t.Fatalf("Transaction: %v", err)
	}

	if got, _ := s.FindBusByID(ctx, a.ID); got.Status != models.BusUnavailable {
		t.Fatalf("committed status = %q", got.Status)
	}
	if got, _ := s.FindBusByID(ctx, b.ID); got.Capacity != 70 {
		t.Fatalf("outside write overwritten: capacity = %d", got.Capacity)
	}
}

func TestMemoryStoreUpsertLocationKeepsOneRow(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		loc := &models.DriverLocation{DriverUsername: "driverA", Latitude: float64(i), Status: models.LocationOnline}
		if err := s.UpsertLocation(ctx, loc); err != nil {
			t.Fatalf("UpsertLocation: %v", err)
		}
	}
	all, _ := s.ListLocations(ctx, LocationFilter{})
	if len(all) != 1 {
		t.Fatalf("got %d rows, want 1", len(all))
	}
	if all[0].Latitude != 2 {
		t.Fatalf("latitude = %v, want last write", all[0].Latitude)
	}
}

func TestMemoryStoreNotificationFilterAndOrder(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	notes := []models.Notification{
		{Receiver: "alice", Sender: "SYSTEM", Type: models.NotificationInfo, CreatedAt: base},
		{Receiver: "alice", Sender: "SYSTEM", Type: models.NotificationAlert, BusNumber: "B001", CreatedAt: base.Add(time.Minute)},
		{Receiver: "bob", Sender: "admin", Type: models.NotificationInfo, CreatedAt: base.Add(2 * time.Minute)},
	}
	for i := range notes {
		if err := s.CreateNotification(ctx, &notes[i]); err != nil {
			t.Fatalf("CreateNotification: %v", err)
		}
	}

	alice, _ := s.ListNotifications(ctx, NotificationFilter{Receiver: "alice"})
	if len(alice) != 2 || alice[0].Type != models.NotificationAlert {
		t.Fatalf("alice list = %+v, want newest first", alice)
	}
	byBus, _ := s.ListNotifications(ctx, NotificationFilter{BusNumber: "B001"})
	if len(byBus) != 1 {
		t.Fatalf("bus filter returned %d", len(byBus))
	}
	bySender, _ := s.ListNotifications(ctx, NotificationFilter{Sender: "admin"})
	if len(bySender) != 1 || bySender[0].Receiver != "bob" {
		t.Fatalf("sender filter = %+v", bySender)
	}

	removed, _ := s.DeleteNotificationsBefore(ctx, base.Add(90*time.Second))
	if removed != 2 {
		t.Fatalf("removed %d, want 2", removed)
	}
}

func TestMemoryStoreSchedulesOrderedByDateThenDeparture(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	busID := uint(9)
	for _, sc := range []models.Schedule{
		{ScheduleNumber: "SCH-0003", BusID: &busID, Date: "2026-05-02", DepartureTime: "07:00", Status: models.ScheduleUpcoming},
		{ScheduleNumber: "SCH-0001", BusID: &busID, Date: "2026-05-01", DepartureTime: "18:00", Status: models.ScheduleUpcoming},
		{ScheduleNumber: "SCH-0002", BusID: &busID, Date: "2026-05-01", DepartureTime: "06:30", Status: models.ScheduleUpcoming},
	} {
		sc := sc
		if err := s.CreateSchedule(ctx, &sc); err != nil {
			t.Fatalf("CreateSchedule: %v", err)
		}
	}
	got, _ := s.ListSchedulesByBus(ctx, busID, "UPCOMING")
	want := []string{"SCH-0002", "SCH-0001", "SCH-0003"}
	if len(got) != len(want) {
		t.Fatalf("got %d schedules", len(got))
	}
	for i := range want {
		if got[i].ScheduleNumber != want[i] {
			t.Fatalf("position %d = %s, want %s", i, got[i].ScheduleNumber, want[i])
		}
	}
}
