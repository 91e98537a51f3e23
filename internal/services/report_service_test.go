package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"fleet_tracker/internal/apperr"
	"fleet_tracker/internal/models"
)

func TestPeriodRange(t *testing.T) {
	now := time.Date(2025, 3, 15, 14, 0, 0, 0, time.UTC)
	tests := []struct {
		period   string
		from, to string
	}{
		{PeriodToday, "2025-03-15", "2025-03-15"},
		{PeriodThisMonth, "2025-03-01", "2025-03-31"},
		{PeriodLastMonth, "2025-02-01", "2025-02-28"},
	}
	for _, tt := range tests {
		from, to, err := periodRange(tt.period, now)
		if err != nil {
			t.Fatalf("periodRange(%s): %v", tt.period, err)
		}
		if from != tt.from || to != tt.to {
			t.Errorf("periodRange(%s) = %s..%s, want %s..%s", tt.period, from, to, tt.from, tt.to)
		}
	}

	january := time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)
	if from, to, _ := periodRange(PeriodLastMonth, january); from != "2024-12-01" || to != "2024-12-31" {
		t.Errorf("last month from january = %s..%s", from, to)
	}
	if _, _, err := periodRange("fortnight", now); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("unknown period = %v", err)
	}
}

func TestDashboardTotals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bus := f.bus(t, "B040", f.driver(t, "driverT"))
	f.driver(t, "driverU")
	sc := f.schedule(t, bus, f.route(t, "Express"), "2025-03-10", "08:00")

	trips := NewTripService(f.store)
	for _, in := range []TripInput{
		{ScheduleNumber: sc.ScheduleNumber, Date: "2025-03-10", Income: 5000},
		{ScheduleNumber: sc.ScheduleNumber, Date: "2025-03-12", Income: 7000},
		{ScheduleNumber: sc.ScheduleNumber, Date: "2025-02-27", Income: 9999},
	} {
		if _, err := trips.Create(ctx, in); err != nil {
			t.Fatalf("Create trip: %v", err)
		}
	}
	logs := NewMaintenanceService(f.store, f.notifications)
	if _, err := logs.Create(ctx, MaintenanceInput{BusNumber: "B040", MaintenanceDate: "2025-03-11", MaintenanceType: "Tyres", Cost: 2500}); err != nil {
		t.Fatalf("Create log: %v", err)
	}

	reports := NewReportService(f.store)
	reports.now = fixedClock(time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC))
	d, err := reports.Dashboard(ctx, "THIS_MONTH")
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if d.Buses != 1 || d.Drivers != 2 || d.Routes != 1 || d.Schedules != 1 || d.Trips != 3 {
		t.Fatalf("counts = %+v", d)
	}
	if d.Income != 12000 || d.MaintenanceCost != 2500 || d.Profit != 9500 {
		t.Fatalf("money = income %d cost %v profit %v", d.Income, d.MaintenanceCost, d.Profit)
	}

	if _, err := reports.Dashboard(ctx, "yesterday"); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("bad period = %v", err)
	}
}

func TestUserCreateAndAuthenticate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	users := NewUserService(f.store)

	u, err := users.Create(ctx, UserInput{Username: "fleetadmin", Password: "s3cret!", Roles: []string{"admin", "ADMIN"}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(u.Roles) != 1 || !u.HasRole(models.RoleAdmin) {
		t.Fatalf("roles = %v", u.Roles)
	}
	if u.Password == "s3cret!" {
		t.Fatalf("password stored in clear")
	}

	if _, err := users.Create(ctx, UserInput{Username: "fleetadmin", Password: "another"}); !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("duplicate username = %v", err)
	}
	if _, err := users.Create(ctx, UserInput{Username: "x", Password: "123456", Roles: []string{"OWNER"}}); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("bad role = %v", err)
	}

	if _, err := users.Authenticate(ctx, "fleetadmin", "s3cret!"); err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if _, err := users.Authenticate(ctx, "fleetadmin", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password = %v", err)
	}
	if _, err := users.Authenticate(ctx, "nobody", "s3cret!"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown user = %v", err)
	}
}

func TestEnsureAdminIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	users := NewUserService(f.store)

	created, err := users.EnsureAdmin(ctx, "root", "changeme")
	if err != nil || !created {
		t.Fatalf("first EnsureAdmin = %v, %v", created, err)
	}
	created, err = users.EnsureAdmin(ctx, "root", "different")
	if err != nil || created {
		t.Fatalf("second EnsureAdmin = %v, %v", created, err)
	}
	if _, err := users.Authenticate(ctx, "root", "changeme"); err != nil {
		t.Fatalf("first password no longer works: %v", err)
	}
	if _, err := users.EnsureAdmin(ctx, "weak", "123"); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("short password = %v", err)
	}
}

func TestRouteNameConflict(t *testing.T) {
	svc := NewRouteService(newFixture(t).store)
	ctx := context.Background()
	first, err := svc.Create(ctx, RouteInput{RouteName: "Colombo - Galle", Distance: 116})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	second, _ := svc.Create(ctx, RouteInput{RouteName: "Colombo - Negombo", Distance: 38})

	if _, err := svc.Create(ctx, RouteInput{RouteName: "Colombo - Galle"}); !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("duplicate create = %v", err)
	}
	if _, err := svc.Update(ctx, second.ID, RouteInput{RouteName: first.RouteName}); !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("rename onto existing = %v", err)
	}
	if _, err := svc.Update(ctx, first.ID, RouteInput{RouteName: first.RouteName, Distance: 120}); err != nil {
		t.Fatalf("update keeping name: %v", err)
	}
}

func TestBusAndFleetReports(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	busy := f.bus(t, "B050", f.driver(t, "driverV"))
	quiet := f.bus(t, "B051", nil)
	idle := f.bus(t, "B052", nil)
	route := f.route(t, "Southern Expressway")
	scBusy := f.schedule(t, busy, route, "2025-05-01", "07:00")
	scQuiet := f.schedule(t, quiet, route, "2025-05-01", "09:00")

	trips := NewTripService(f.store)
	for _, in := range []TripInput{
		{ScheduleNumber: scBusy.ScheduleNumber, Date: "2025-05-02", Income: 4000},
		{ScheduleNumber: scBusy.ScheduleNumber, Date: "2025-06-10", Income: 6000},
		{ScheduleNumber: scBusy.ScheduleNumber, Date: "2025-08-01", Income: 9999},
		{ScheduleNumber: scQuiet.ScheduleNumber, Date: "2025-05-20", Income: 1500},
	} {
		if _, err := trips.Create(ctx, in); err != nil {
			t.Fatalf("Create trip: %v", err)
		}
	}
	logs := NewMaintenanceService(f.store, f.notifications)
	for _, date := range []string{"2025-04-01", "2025-06-01"} {
		if _, err := logs.Create(ctx, MaintenanceInput{BusNumber: "B050", MaintenanceDate: date, MaintenanceType: "Service"}); err != nil {
			t.Fatalf("Create log: %v", err)
		}
	}
	reports := NewReportService(f.store)

	br, err := reports.BusReport(ctx, "B050", "2025-05-01", "2025-06-30")
	if err != nil {
		t.Fatalf("BusReport: %v", err)
	}
	if br.TotalTrips != 2 || br.TotalIncome != 10000 || br.Route != "Southern Expressway" || br.DriverName != "driverV" {
		t.Fatalf("bus report = %+v", br)
	}
	if br.LastServiceDate != "2025-06-01" {
		t.Fatalf("last service = %q", br.LastServiceDate)
	}
	if _, err := reports.BusReport(ctx, "NOPE", "2025-05-01", "2025-06-30"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("unknown bus = %v", err)
	}

	fr, err := reports.FleetReport(ctx, "2025-05-01", "2025-07-31")
	if err != nil {
		t.Fatalf("FleetReport: %v", err)
	}
	if fr.TotalTrips != 3 || fr.TotalIncome != 11500 {
		t.Fatalf("fleet totals = %d trips, %d income", fr.TotalTrips, fr.TotalIncome)
	}
	if len(fr.Monthly) != 3 || fr.Monthly[0].Month != "2025-05" || fr.Monthly[0].MonthName != "May 2025" {
		t.Fatalf("months = %+v", fr.Monthly)
	}
	if fr.Monthly[0].TotalIncome != 5500 || fr.Monthly[1].TotalIncome != 6000 || fr.Monthly[2].TotalTrips != 0 {
		t.Fatalf("monthly figures = %+v", fr.Monthly)
	}
	if len(fr.Buses) != 3 || fr.Buses[0].BusNumber != "B050" || fr.Buses[1].BusNumber != "B051" || fr.Buses[2].BusID != idle.ID {
		t.Fatalf("bus ranking = %+v", fr.Buses)
	}

	if _, err := reports.FleetReport(ctx, "2025-07-01", "2025-05-01"); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("reversed range = %v", err)
	}
}

func TestUserUpdateAndChangePassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	users := NewUserService(f.store)
	alice, err := users.Create(ctx, UserInput{Username: "alice", Password: "secret1", Roles: []string{"driver"}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	users.Create(ctx, UserInput{Username: "bob", Password: "secret2"})

	// self-service edits keep username and roles
	got, err := users.Update(ctx, alice.ID, UserUpdate{Name: "Alice P", Username: "root", Roles: []string{"admin"}}, false)
	if err != nil {
		t.Fatalf("self Update: %v", err)
	}
	if got.Name != "Alice P" || got.Username != "alice" || got.HasRole(models.RoleAdmin) {
		t.Fatalf("self update = %+v", got)
	}

	if _, err := users.Update(ctx, alice.ID, UserUpdate{Username: "bob"}, true); !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("rename onto bob = %v", err)
	}
	got, err = users.Update(ctx, alice.ID, UserUpdate{Username: "alice2", Roles: []string{"ADMIN", "driver"}}, true)
	if err != nil {
		t.Fatalf("admin Update: %v", err)
	}
	if got.Username != "alice2" || !got.HasRole(models.RoleAdmin) {
		t.Fatalf("admin update = %+v", got)
	}
	if _, err := users.Authenticate(ctx, "alice2", "secret1"); err != nil {
		t.Fatalf("password lost on update: %v", err)
	}

	if err := users.ChangePassword(ctx, alice.ID, "wrong-one", "newpass1"); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("wrong old password = %v", err)
	}
	if err := users.ChangePassword(ctx, alice.ID, "secret1", "  "); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("blank new password = %v", err)
	}
	if err := users.ChangePassword(ctx, alice.ID, "secret1", "newpass1"); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	if _, err := users.Authenticate(ctx, "alice2", "newpass1"); err != nil {
		t.Fatalf("new password rejected: %v", err)
	}
	if err := users.ChangePassword(ctx, 999, "", "newpass1"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("unknown user = %v", err)
	}
}

func TestDriverTripsAndMaintenanceLogs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mine := f.bus(t, "B070", f.driver(t, "driverX"))
	theirs := f.bus(t, "B071", f.driver(t, "driverY"))
	f.driver(t, "driverIdle")
	route := f.route(t, "Temple Road")
	early := f.schedule(t, mine, route, "2025-05-01", "06:00")
	late := f.schedule(t, mine, route, "2025-05-03", "06:00")
	foreign := f.schedule(t, theirs, route, "2025-05-01", "06:00")

	trips := NewTripService(f.store)
	for _, in := range []TripInput{
		{ScheduleNumber: early.ScheduleNumber, Date: "2025-05-01"},
		{ScheduleNumber: late.ScheduleNumber, Date: "2025-05-03"},
		{ScheduleNumber: foreign.ScheduleNumber, Date: "2025-05-01"},
	} {
		if _, err := trips.Create(ctx, in); err != nil {
			t.Fatalf("Create trip: %v", err)
		}
	}
	got, err := trips.ForDriver(ctx, "driverX")
	if err != nil {
		t.Fatalf("ForDriver: %v", err)
	}
	if len(got) != 2 || got[0].Date != "2025-05-03" || got[1].Date != "2025-05-01" {
		t.Fatalf("driver trips = %+v", got)
	}
	if none, err := trips.ForDriver(ctx, "driverIdle"); err != nil || len(none) != 0 {
		t.Fatalf("driver without bus = %v, %v", none, err)
	}

	logs := NewMaintenanceService(f.store, f.notifications)
	for _, number := range []string{"B070", "B071"} {
		if _, err := logs.Create(ctx, MaintenanceInput{BusNumber: number, MaintenanceDate: "2025-05-02", MaintenanceType: "Oil"}); err != nil {
			t.Fatalf("Create log: %v", err)
		}
	}
	entries, err := logs.ForDriver(ctx, "driverX")
	if err != nil || len(entries) != 1 || entries[0].BusNumber != "B070" {
		t.Fatalf("driver logs = %+v, %v", entries, err)
	}
	if _, err := logs.ForDriver(ctx, "ghost"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("unknown driver = %v", err)
	}
}
