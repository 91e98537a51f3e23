package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"fleet_tracker/internal/apperr"
	"fleet_tracker/internal/models"
	"fleet_tracker/internal/repository"
)

const (
	PeriodToday     = "today"
	PeriodThisMonth = "this_month"
	PeriodLastMonth = "last_month"
)

// Dashboard is the admin overview. Counts are totals; money figures cover From..To.
type Dashboard struct {
	Period          string  `json:"period"`
	From            string  `json:"from"`
	To              string  `json:"to"`
	Buses           int64   `json:"total_buses"`
	Drivers         int64   `json:"total_drivers"`
	Routes          int64   `json:"total_routes"`
	Schedules       int64   `json:"total_schedules"`
	Trips           int64   `json:"total_trips"`
	ActiveDrivers   int64   `json:"active_drivers"`
	Income          int64   `json:"total_income"`
	MaintenanceCost float64 `json:"total_maintenance_cost"`
	Profit          float64 `json:"profit"`
}

type ReportService struct {
	store repository.Store
	now   Clock
}

func NewReportService(store repository.Store) *ReportService {
	return &ReportService{store: store, now: time.Now}
}

// periodRange returns the inclusive YYYY-MM-DD bounds of period relative to now.
func periodRange(period string, now time.Time) (string, string, error) {
	y, m, d := now.Date()
	loc := now.Location()
	var from, to time.Time
	switch period {
	case PeriodToday:
		from = time.Date(y, m, d, 0, 0, 0, 0, loc)
		to = from
	case PeriodThisMonth:
		from = time.Date(y, m, 1, 0, 0, 0, 0, loc)
		to = from.AddDate(0, 1, -1)
	case PeriodLastMonth:
		from = time.Date(y, m-1, 1, 0, 0, 0, 0, loc)
		to = from.AddDate(0, 1, -1)
	default:
		return "", "", apperr.Validation("unknown period %q, want today, this_month or last_month", period)
	}
	return from.Format(dateLayout), to.Format(dateLayout), nil
}

// Dashboard gathers the fleet counters and the trip totals for period.
func (s *ReportService) Dashboard(ctx context.Context, period string) (*Dashboard, error) {
	period = strings.ToLower(strings.TrimSpace(period))
	if period == "" {
		period = PeriodToday
	}
	from, to, err := periodRange(period, s.now())
	if err != nil {
		return nil, err
	}
	out := &Dashboard{Period: period, From: from, To: to}

	counts := []struct {
		dst *int64
		fn  func() (int64, error)
	}{
		{&out.Buses, func() (int64, error) { return s.store.CountBuses(ctx) }},
		{&out.Drivers, func() (int64, error) { return s.store.CountUsers(ctx, models.RoleDriver) }},
		{&out.Routes, func() (int64, error) { return s.store.CountRoutes(ctx) }},
		{&out.Schedules, func() (int64, error) { return s.store.CountSchedules(ctx) }},
		{&out.Trips, func() (int64, error) { return s.store.CountTrips(ctx) }},
		{&out.ActiveDrivers, func() (int64, error) {
			return s.store.CountLocations(ctx, repository.LocationFilter{Statuses: activeStatuses})
		}},
		{&out.Income, func() (int64, error) { return s.store.SumTripIncome(ctx, from, to) }},
	}
	for _, c := range counts {
		n, err := c.fn()
		if err != nil {
			return nil, apperr.Persistence("dashboard", err)
		}
		*c.dst = n
	}
	if out.MaintenanceCost, err = s.store.SumMaintenanceCost(ctx, from, to); err != nil {
		return nil, apperr.Persistence("dashboard", err)
	}
	out.Profit = float64(out.Income) - out.MaintenanceCost
	return out, nil
}

// BusReport sums the trips run on one bus's schedules between From and To.
type BusReport struct {
	BusID           uint   `json:"bus_id"`
	BusNumber       string `json:"bus_number"`
	BusModel        string `json:"bus_model"`
	Route           string `json:"route"`
	TotalSeats      int    `json:"total_seats"`
	DriverName      string `json:"driver_name"`
	Status          string `json:"status"`
	LastServiceDate string `json:"last_service_date"`
	TotalTrips      int    `json:"total_trips"`
	TotalIncome     int64  `json:"total_income"`
	From            string `json:"from"`
	To              string `json:"to"`
}

type MonthlyIncome struct {
	Month       string `json:"month"` // YYYY-MM
	MonthName   string `json:"month_name"`
	TotalTrips  int    `json:"total_trips"`
	TotalIncome int64  `json:"total_income"`
}

type BusIncome struct {
	BusID       uint   `json:"bus_id"`
	BusNumber   string `json:"bus_number"`
	BusModel    string `json:"bus_model"`
	DriverName  string `json:"driver_name"`
	TotalTrips  int    `json:"total_trips"`
	TotalIncome int64  `json:"total_income"`
}

// FleetReport breaks fleet income down by month and by bus. Months with no
// trips are listed with zeros; buses are ordered by income, highest first.
type FleetReport struct {
	Monthly     []MonthlyIncome `json:"monthly_income"`
	Buses       []BusIncome     `json:"bus_income"`
	From        string          `json:"from"`
	To          string          `json:"to"`
	TotalTrips  int             `json:"total_trips"`
	TotalIncome int64           `json:"total_income"`
}

// monthOf returns the YYYY-MM prefix of a YYYY-MM-DD date.
func monthOf(date string) string {
	if len(date) < 7 {
		return ""
	}
	return date[:7]
}

func validRange(from, to string) error {
	if err := validDate("from", from); err != nil {
		return err
	}
	if err := validDate("to", to); err != nil {
		return err
	}
	if from > to {
		return apperr.Validation("from %s is after to %s", from, to)
	}
	return nil
}

// tripsBetween returns the trips dated within [from, to].
func (s *ReportService) tripsBetween(ctx context.Context, from, to string) ([]models.Trip, error) {
	all, err := s.store.ListTrips(ctx, "")
	if err != nil {
		return nil, err
	}
	out := make([]models.Trip, 0, len(all))
	for _, t := range all {
		if t.Date >= from && t.Date <= to {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *ReportService) driverName(ctx context.Context, bus *models.Bus) string {
	if bus.DriverID == nil {
		return ""
	}
	user, err := s.store.FindUserByID(ctx, *bus.DriverID)
	if err != nil {
		return ""
	}
	if user.Name != "" {
		return user.Name
	}
	return user.Username
}

func (s *ReportService) BusReport(ctx context.Context, busNumber, from, to string) (*BusReport, error) {
	if err := validRange(from, to); err != nil {
		return nil, err
	}
	bus, err := s.store.FindBusByNumber(ctx, busNumber)
	if err != nil {
		return nil, err
	}
	schedules, err := s.store.ListSchedulesByBus(ctx, bus.ID, "")
	if err != nil {
		return nil, apperr.Persistence("bus report", err)
	}
	trips, err := s.tripsBetween(ctx, from, to)
	if err != nil {
		return nil, apperr.Persistence("bus report", err)
	}

	out := &BusReport{
		BusID:      bus.ID,
		BusNumber:  bus.BusNumber,
		BusModel:   bus.Model,
		TotalSeats: bus.Capacity,
		DriverName: s.driverName(ctx, bus),
		Status:     bus.Status,
		From:       from,
		To:         to,
	}
	onBus := make(map[string]bool, len(schedules))
	for _, sc := range schedules {
		onBus[sc.ScheduleNumber] = true
	}
	if len(schedules) > 0 {
		if route, err := s.store.FindRouteByID(ctx, schedules[0].RouteID); err == nil {
			out.Route = route.RouteName
		}
	}
	for _, t := range trips {
		if onBus[t.ScheduleNumber] {
			out.TotalTrips++
			out.TotalIncome += int64(t.Income)
		}
	}
	if logs, err := s.store.ListMaintenanceLogs(ctx, bus.BusNumber); err == nil {
		for _, l := range logs {
			if l.MaintenanceDate > out.LastServiceDate {
				out.LastServiceDate = l.MaintenanceDate
			}
		}
	}
	return out, nil
}

func (s *ReportService) FleetReport(ctx context.Context, from, to string) (*FleetReport, error) {
	if err := validRange(from, to); err != nil {
		return nil, err
	}
	trips, err := s.tripsBetween(ctx, from, to)
	if err != nil {
		return nil, apperr.Persistence("fleet report", err)
	}
	buses, err := s.store.ListBuses(ctx, "")
	if err != nil {
		return nil, apperr.Persistence("fleet report", err)
	}
	schedules, err := s.store.ListSchedules(ctx, "")
	if err != nil {
		return nil, apperr.Persistence("fleet report", err)
	}

	out := &FleetReport{From: from, To: to, TotalTrips: len(trips)}

	// 1. one zeroed row per month in range
	start, _ := time.Parse(dateLayout, from)
	end, _ := time.Parse(dateLayout, to)
	index := map[string]int{}
	for m := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC); !m.After(end); m = m.AddDate(0, 1, 0) {
		key := m.Format("2006-01")
		index[key] = len(out.Monthly)
		out.Monthly = append(out.Monthly, MonthlyIncome{Month: key, MonthName: m.Format("January 2006")})
	}

	// 2. fold trips into their month and their bus
	busOf := make(map[string]uint, len(schedules))
	for _, sc := range schedules {
		if sc.BusID != nil {
			busOf[sc.ScheduleNumber] = *sc.BusID
		}
	}
	perBus := map[uint]*BusIncome{}
	for i := range buses {
		b := &buses[i]
		perBus[b.ID] = &BusIncome{BusID: b.ID, BusNumber: b.BusNumber, BusModel: b.Model, DriverName: s.driverName(ctx, b)}
	}
	for _, t := range trips {
		out.TotalIncome += int64(t.Income)
		if i, ok := index[monthOf(t.Date)]; ok {
			out.Monthly[i].TotalTrips++
			out.Monthly[i].TotalIncome += int64(t.Income)
		}
		if bi, ok := perBus[busOf[t.ScheduleNumber]]; ok {
			bi.TotalTrips++
			bi.TotalIncome += int64(t.Income)
		}
	}

	// 3. rank buses
	out.Buses = make([]BusIncome, 0, len(perBus))
	for _, b := range buses {
		out.Buses = append(out.Buses, *perBus[b.ID])
	}
	sort.SliceStable(out.Buses, func(i, j int) bool { return out.Buses[i].TotalIncome > out.Buses[j].TotalIncome })
	return out, nil
}
