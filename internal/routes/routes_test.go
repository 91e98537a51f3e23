package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"fleet_tracker/internal/middleware"
	"fleet_tracker/internal/models"
	"fleet_tracker/internal/realtime"
	"fleet_tracker/internal/repository"
	"fleet_tracker/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	t      *testing.T
	router *gin.Engine
	users  *services.UserService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := repository.NewMemoryStore()
	hub := realtime.NewHub(1024)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	notifications := services.NewNotificationService(store, hub)
	schedules := services.NewScheduleService(store, notifications, services.TripsOrphan)
	users := services.NewUserService(store)

	r := SetupRouter(Dependencies{
		Auth:           middleware.NewAuth("test-secret", time.Hour),
		Hub:            hub,
		AllowedOrigins: []string{"*"},
		RequestTimeout: 5 * time.Second,
		Users:          users,
		Buses:          services.NewBusService(store, schedules, notifications),
		Routes:         services.NewRouteService(store),
		Schedules:      schedules,
		Trips:          services.NewTripService(store),
		Maintenance:    services.NewMaintenanceService(store, notifications),
		Notifications:  notifications,
		Locations:      services.NewLocationService(store, hub),
		Reports:        services.NewReportService(store),
	})
	return &testServer{t: t, router: r, users: users}
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			s.t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) login(username, password string) string {
	s.t.Helper()
	w := s.do(http.MethodPost, "/auth/login", "", gin.H{"username": username, "password": password})
	if w.Code != http.StatusOK {
		s.t.Fatalf("login %s: %d %s", username, w.Code, w.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	decode(s.t, w, &resp)
	return resp.Token
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

func expect(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("status = %d, want %d: %s", w.Code, want, w.Body.String())
	}
}

type fleet struct {
	admin, driver  string
	busID, routeID uint
}

// seed creates the admin, logs in, and sets up driverA with bus B001 and route R1.
func (s *testServer) seed() fleet {
	s.t.Helper()
	if _, err := s.users.EnsureAdmin(context.Background(), "boss", "secret123"); err != nil {
		s.t.Fatalf("EnsureAdmin: %v", err)
	}
	admin := s.login("boss", "secret123")

	w := s.do(http.MethodPost, "/api/users", admin, gin.H{"username": "driverA", "password": "driverpass", "roles": []string{"driver"}})
	expect(s.t, w, http.StatusCreated)
	var user struct {
		Data models.User `json:"data"`
	}
	decode(s.t, w, &user)

	w = s.do(http.MethodPost, "/api/buses", admin, gin.H{"bus_number": "B001", "capacity": 50, "driver_id": user.Data.ID})
	expect(s.t, w, http.StatusCreated)
	var bus struct {
		Data models.Bus `json:"data"`
	}
	decode(s.t, w, &bus)

	w = s.do(http.MethodPost, "/api/routes", admin, gin.H{"route_name": "R1", "starting_point": "Colombo", "ending_point": "Kandy", "distance": 115})
	expect(s.t, w, http.StatusCreated)
	var route struct {
		Data models.Route `json:"data"`
	}
	decode(s.t, w, &route)

	return fleet{
		admin:   admin,
		driver:  s.login("driverA", "driverpass"),
		busID:   bus.Data.ID,
		routeID: route.Data.ID,
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	expect(t, s.do(http.MethodGet, "/health", "", nil), http.StatusOK)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	s := newTestServer(t)
	s.users.EnsureAdmin(context.Background(), "boss", "secret123")
	w := s.do(http.MethodPost, "/auth/login", "", gin.H{"username": "boss", "password": "wrong-one"})
	expect(t, w, http.StatusUnauthorized)
}

func TestBusMaintenanceFlow(t *testing.T) {
	s := newTestServer(t)
	f := s.seed()
	admin, driver, busID := f.admin, f.driver, f.busID

	for _, status := range []string{"", "ongoing"} {
		w := s.do(http.MethodPost, "/api/schedules", admin, gin.H{
			"bus_id": busID, "route_id": f.routeID, "departure_time": "08:00", "arrival_time": "11:00",
			"date": "2026-10-20", "status": status,
		})
		expect(t, w, http.StatusCreated)
	}

	// drivers may not change bus status
	expect(t, s.do(http.MethodPut, fmt.Sprintf("/api/buses/%d/status", busID), driver, gin.H{"status": "unavailable"}), http.StatusForbidden)
	expect(t, s.do(http.MethodPut, "/api/buses/999/status", admin, gin.H{"status": "unavailable"}), http.StatusNotFound)
	expect(t, s.do(http.MethodPut, fmt.Sprintf("/api/buses/%d/status", busID), admin, gin.H{"status": "broken"}), http.StatusBadRequest)
	expect(t, s.do(http.MethodPut, fmt.Sprintf("/api/buses/%d/status", busID), admin, gin.H{"status": "unavailable"}), http.StatusOK)

	w := s.do(http.MethodGet, "/api/schedules?status=needs_reassignment", admin, nil)
	expect(t, w, http.StatusOK)
	var schedules struct {
		Data []models.Schedule `json:"data"`
	}
	decode(t, w, &schedules)
	if len(schedules.Data) != 2 {
		t.Fatalf("reassigned schedules = %d, want 2", len(schedules.Data))
	}
	for _, sc := range schedules.Data {
		if sc.BusID != nil {
			t.Fatalf("schedule %s still on bus %d", sc.ScheduleNumber, *sc.BusID)
		}
	}

	var inbox struct {
		Data []models.Notification `json:"data"`
	}
	w = s.do(http.MethodGet, "/api/notifications", driver, nil)
	expect(t, w, http.StatusOK)
	decode(t, w, &inbox)
	if !hasTitle(inbox.Data, "Bus In Maintenance") {
		t.Fatalf("driver inbox = %+v", inbox.Data)
	}

	w = s.do(http.MethodGet, "/api/notifications", admin, nil)
	expect(t, w, http.StatusOK)
	decode(t, w, &inbox)
	found := false
	for _, n := range inbox.Data {
		if n.Type == models.NotificationAlert && strings.Contains(n.Message, "B001") {
			found = true
		}
	}
	if !found {
		t.Fatalf("admin inbox has no alert for B001: %+v", inbox.Data)
	}
}

func TestDriverLocationFlow(t *testing.T) {
	s := newTestServer(t)
	f := s.seed()
	admin, driver := f.admin, f.driver

	expect(t, s.do(http.MethodPut, "/api/locations", driver, gin.H{"latitude": 91, "longitude": 10}), http.StatusBadRequest)
	expect(t, s.do(http.MethodPut, "/api/locations", driver, gin.H{"longitude": 10}), http.StatusBadRequest)

	w := s.do(http.MethodPut, "/api/locations", driver, gin.H{"latitude": 45, "longitude": -122, "accuracy": 5})
	expect(t, w, http.StatusOK)
	var loc struct {
		Data models.DriverLocation `json:"data"`
	}
	decode(t, w, &loc)
	if loc.Data.BusNumber != "B001" || loc.Data.Status != "online" {
		t.Fatalf("location = %+v", loc.Data)
	}

	expect(t, s.do(http.MethodGet, "/api/locations/active", driver, nil), http.StatusForbidden)

	w = s.do(http.MethodGet, "/api/locations/active", admin, nil)
	expect(t, w, http.StatusOK)
	var active struct {
		Data []models.DriverLocation `json:"data"`
	}
	decode(t, w, &active)
	if len(active.Data) != 1 || active.Data[0].DriverUsername != "driverA" {
		t.Fatalf("active = %+v", active.Data)
	}

	w = s.do(http.MethodGet, "/api/locations/active/geojson", admin, nil)
	expect(t, w, http.StatusOK)
	if ct := w.Header().Get("Content-Type"); ct != "application/geo+json" {
		t.Fatalf("content type = %q", ct)
	}
	if !strings.Contains(w.Body.String(), "FeatureCollection") {
		t.Fatalf("geojson = %s", w.Body.String())
	}

	expect(t, s.do(http.MethodGet, "/api/locations/recent?minutes=abc", admin, nil), http.StatusBadRequest)

	expect(t, s.do(http.MethodPost, "/api/locations/offline", driver, nil), http.StatusOK)
	w = s.do(http.MethodGet, "/api/locations/active/count", admin, nil)
	expect(t, w, http.StatusOK)
	var count struct {
		Count int64 `json:"count"`
	}
	decode(t, w, &count)
	if count.Count != 0 {
		t.Fatalf("active count after offline = %d", count.Count)
	}
}

func TestNotificationInbox(t *testing.T) {
	s := newTestServer(t)
	f := s.seed()
	admin, driver := f.admin, f.driver

	w := s.do(http.MethodPost, "/api/notifications", admin, gin.H{"receiver": "driverA", "type": "warning", "title": "Slow down", "message": "Speeding reported"})
	expect(t, w, http.StatusCreated)
	expect(t, s.do(http.MethodPost, "/api/notifications", driver, gin.H{"receiver": "admin", "type": "info", "title": "hi"}), http.StatusForbidden)

	w = s.do(http.MethodGet, "/api/notifications/unread-count", driver, nil)
	expect(t, w, http.StatusOK)
	var count struct {
		Count int64 `json:"count"`
	}
	decode(t, w, &count)
	if count.Count != 1 {
		t.Fatalf("unread = %d, want 1", count.Count)
	}

	expect(t, s.do(http.MethodPut, "/api/notifications/read-all", driver, nil), http.StatusOK)
	w = s.do(http.MethodGet, "/api/notifications/unread-count", driver, nil)
	decode(t, w, &count)
	if count.Count != 0 {
		t.Fatalf("unread after read-all = %d", count.Count)
	}

	expect(t, s.do(http.MethodPut, "/api/notifications/missing/read", driver, nil), http.StatusNotFound)
}

func TestDashboardRequiresValidPeriod(t *testing.T) {
	s := newTestServer(t)
	f := s.seed()
	admin, driver := f.admin, f.driver

	expect(t, s.do(http.MethodGet, "/api/dashboard", driver, nil), http.StatusForbidden)
	expect(t, s.do(http.MethodGet, "/api/dashboard?period=decade", admin, nil), http.StatusBadRequest)

	w := s.do(http.MethodGet, "/api/dashboard?period=this_month", admin, nil)
	expect(t, w, http.StatusOK)
	var resp struct {
		Data services.Dashboard `json:"data"`
	}
	decode(t, w, &resp)
	if resp.Data.Buses != 1 || resp.Data.Routes != 1 || resp.Data.Drivers != 1 {
		t.Fatalf("dashboard = %+v", resp.Data)
	}
}

func TestWebSocketRejectsMissingToken(t *testing.T) {
	s := newTestServer(t)
	expect(t, s.do(http.MethodGet, "/ws/notifications", "", nil), http.StatusUnauthorized)
	expect(t, s.do(http.MethodGet, "/ws/notifications?token=garbage", "", nil), http.StatusUnauthorized)
}

func hasTitle(list []models.Notification, title string) bool {
	for _, n := range list {
		if n.Title == title {
			return true
		}
	}
	return false
}

// addDriver creates a driver without a bus and returns their token.
func (s *testServer) addDriver(admin, username string) string {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/users", admin, gin.H{"username": username, "password": "driverpass", "roles": []string{"driver"}})
	expect(s.t, w, http.StatusCreated)
	return s.login(username, "driverpass")
}

func (s *testServer) addSchedule(f fleet, date string) string {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/schedules", f.admin, gin.H{
		"bus_id": f.busID, "route_id": f.routeID, "departure_time": "08:00", "arrival_time": "11:00", "date": date,
	})
	expect(s.t, w, http.StatusCreated)
	var resp struct {
		Data models.Schedule `json:"data"`
	}
	decode(s.t, w, &resp)
	return resp.Data.ScheduleNumber
}

func unreadCount(s *testServer, token string) int64 {
	s.t.Helper()
	w := s.do(http.MethodGet, "/api/notifications/unread-count", token, nil)
	expect(s.t, w, http.StatusOK)
	var resp struct {
		Count int64 `json:"count"`
	}
	decode(s.t, w, &resp)
	return resp.Count
}

func TestNotificationOwnership(t *testing.T) {
	s := newTestServer(t)
	f := s.seed()
	other := s.addDriver(f.admin, "driverB")

	w := s.do(http.MethodPost, "/api/notifications", f.admin, gin.H{"receiver": "driverA", "type": "info", "title": "Shift", "message": "Early start"})
	expect(t, w, http.StatusCreated)
	var created struct {
		Data models.Notification `json:"data"`
	}
	decode(t, w, &created)
	path := "/api/notifications/" + created.Data.ID

	expect(t, s.do(http.MethodGet, path, other, nil), http.StatusNotFound)
	expect(t, s.do(http.MethodPut, path+"/read", other, nil), http.StatusNotFound)
	expect(t, s.do(http.MethodDelete, path, other, nil), http.StatusNotFound)

	w = s.do(http.MethodGet, path, f.driver, nil)
	expect(t, w, http.StatusOK)
	var got struct {
		Data models.Notification `json:"data"`
	}
	decode(t, w, &got)
	if got.Data.IsRead {
		t.Fatal("notification marked read by another driver")
	}

	expect(t, s.do(http.MethodGet, path, f.admin, nil), http.StatusOK)
	expect(t, s.do(http.MethodPut, path+"/read", f.driver, nil), http.StatusOK)
	expect(t, s.do(http.MethodDelete, path, f.admin, nil), http.StatusOK)
	expect(t, s.do(http.MethodGet, path, f.driver, nil), http.StatusNotFound)
}

func TestUppercaseAdminReceiverReachesAdminInbox(t *testing.T) {
	s := newTestServer(t)
	f := s.seed()

	before := unreadCount(s, f.admin)
	w := s.do(http.MethodPost, "/api/notifications", f.admin, gin.H{"receiver": "ADMIN", "type": "info", "title": "Depot closed"})
	expect(t, w, http.StatusCreated)
	var created struct {
		Data models.Notification `json:"data"`
	}
	decode(t, w, &created)
	if created.Data.Receiver != models.ReceiverAdmin {
		t.Fatalf("receiver = %q, want %q", created.Data.Receiver, models.ReceiverAdmin)
	}
	if got := unreadCount(s, f.admin); got != before+1 {
		t.Fatalf("admin unread = %d, want %d", got, before+1)
	}
}

func TestMaintenanceAlert(t *testing.T) {
	s := newTestServer(t)
	f := s.seed()

	body := gin.H{"driver_username": "driverA", "bus_number": "B001", "message": "Brake pads are worn"}
	expect(t, s.do(http.MethodPost, "/api/notifications/maintenance-alert", f.driver, body), http.StatusForbidden)
	expect(t, s.do(http.MethodPost, "/api/notifications/maintenance-alert", f.admin, gin.H{"driver_username": "driverA"}), http.StatusBadRequest)
	expect(t, s.do(http.MethodPost, "/api/notifications/maintenance-alert", f.admin, body), http.StatusCreated)

	w := s.do(http.MethodGet, "/api/notifications", f.driver, nil)
	expect(t, w, http.StatusOK)
	var inbox struct {
		Data []models.Notification `json:"data"`
	}
	decode(t, w, &inbox)
	if !hasTitle(inbox.Data, "Maintenance Required") {
		t.Fatalf("driver inbox = %+v", inbox.Data)
	}
}

func TestDriverScheduleStatus(t *testing.T) {
	s := newTestServer(t)
	f := s.seed()
	other := s.addDriver(f.admin, "driverB")
	number := s.addSchedule(f, "2026-10-20")

	edit := gin.H{"bus_id": f.busID, "route_id": f.routeID, "departure_time": "09:00", "arrival_time": "12:00", "date": "2026-10-20"}
	expect(t, s.do(http.MethodPut, "/api/schedules/"+number, f.driver, edit), http.StatusForbidden)
	edit["status"] = "sideways"
	expect(t, s.do(http.MethodPut, "/api/schedules/"+number, f.admin, edit), http.StatusBadRequest)

	status := "/api/schedules/" + number + "/status"
	expect(t, s.do(http.MethodPut, status, other, gin.H{"status": "ongoing"}), http.StatusNotFound)
	expect(t, s.do(http.MethodPut, status, f.driver, gin.H{"status": "cancelled"}), http.StatusBadRequest)
	expect(t, s.do(http.MethodPut, status, f.admin, gin.H{"status": "ongoing"}), http.StatusForbidden)

	w := s.do(http.MethodPut, status, f.driver, gin.H{"status": "ongoing"})
	expect(t, w, http.StatusOK)
	var resp struct {
		Data models.Schedule `json:"data"`
	}
	decode(t, w, &resp)
	if resp.Data.Status != "ongoing" {
		t.Fatalf("status = %q, want ongoing", resp.Data.Status)
	}
}

func TestCreateScheduleRejectsUnknownStatus(t *testing.T) {
	s := newTestServer(t)
	f := s.seed()
	w := s.do(http.MethodPost, "/api/schedules", f.admin, gin.H{
		"bus_id": f.busID, "route_id": f.routeID, "departure_time": "08:00", "arrival_time": "11:00",
		"date": "2026-10-20", "status": "garbage",
	})
	expect(t, w, http.StatusBadRequest)
}

func TestSelfService(t *testing.T) {
	s := newTestServer(t)
	f := s.seed()

	w := s.do(http.MethodGet, "/api/users/me", f.driver, nil)
	expect(t, w, http.StatusOK)
	var me struct {
		Data models.User `json:"data"`
	}
	decode(t, w, &me)
	if me.Data.Username != "driverA" {
		t.Fatalf("me = %+v", me.Data)
	}

	expect(t, s.do(http.MethodPut, fmt.Sprintf("/api/users/%d", me.Data.ID), f.driver, gin.H{"name": "A"}), http.StatusForbidden)
	expect(t, s.do(http.MethodPut, "/api/users/me/password", f.driver, gin.H{"new_password": "fresh-pass"}), http.StatusBadRequest)
	expect(t, s.do(http.MethodPut, "/api/users/me/password", f.driver, gin.H{"old_password": "nope", "new_password": "fresh-pass"}), http.StatusBadRequest)
	expect(t, s.do(http.MethodPut, "/api/users/me/password", f.driver, gin.H{"old_password": "driverpass", "new_password": "fresh-pass"}), http.StatusOK)

	s.login("driverA", "fresh-pass")
	w = s.do(http.MethodPost, "/auth/login", "", gin.H{"username": "driverA", "password": "driverpass"})
	expect(t, w, http.StatusUnauthorized)
}

func TestDriverHistoryAndReports(t *testing.T) {
	s := newTestServer(t)
	f := s.seed()
	first := s.addSchedule(f, "2026-10-20")
	s.addSchedule(f, "2026-10-21")

	w := s.do(http.MethodPost, "/api/trips", f.driver, gin.H{"schedule_number": first, "date": "2026-10-20", "passenger_count": 40, "income": 1500})
	expect(t, w, http.StatusCreated)

	w = s.do(http.MethodGet, "/api/trips/me", f.driver, nil)
	expect(t, w, http.StatusOK)
	var trips struct {
		Data []models.Trip `json:"data"`
	}
	decode(t, w, &trips)
	if len(trips.Data) != 1 || trips.Data[0].Income != 1500 {
		t.Fatalf("driver trips = %+v", trips.Data)
	}
	expect(t, s.do(http.MethodGet, "/api/maintenance/me", f.driver, nil), http.StatusOK)

	expect(t, s.do(http.MethodPost, "/api/buses", f.admin, gin.H{"bus_number": "B002", "capacity": 30}), http.StatusCreated)
	w = s.do(http.MethodGet, "/api/buses/without-driver", f.admin, nil)
	expect(t, w, http.StatusOK)
	var spare struct {
		Data []models.Bus `json:"data"`
	}
	decode(t, w, &spare)
	if len(spare.Data) != 1 || spare.Data[0].BusNumber != "B002" {
		t.Fatalf("buses without driver = %+v", spare.Data)
	}

	w = s.do(http.MethodGet, "/api/schedules?page=1&limit=1", f.admin, nil)
	expect(t, w, http.StatusOK)
	var page struct {
		Data       []models.Schedule `json:"data"`
		TotalCount int               `json:"total_count"`
		TotalPages int               `json:"total_pages"`
	}
	decode(t, w, &page)
	if len(page.Data) != 1 || page.TotalCount != 2 || page.TotalPages != 2 {
		t.Fatalf("page = %d rows, total %d, pages %d", len(page.Data), page.TotalCount, page.TotalPages)
	}

	expect(t, s.do(http.MethodGet, "/api/reports/buses?from=2026-10-31&to=2026-10-01", f.admin, nil), http.StatusBadRequest)
	expect(t, s.do(http.MethodGet, "/api/reports/buses?from=2026-10-01&to=2026-10-31", f.driver, nil), http.StatusForbidden)

	w = s.do(http.MethodGet, "/api/reports/buses?from=2026-10-01&to=2026-10-31", f.admin, nil)
	expect(t, w, http.StatusOK)
	var fleetReport struct {
		Data services.FleetReport `json:"data"`
	}
	decode(t, w, &fleetReport)
	if fleetReport.Data.TotalIncome != 1500 || fleetReport.Data.TotalTrips != 1 {
		t.Fatalf("fleet report = %+v", fleetReport.Data)
	}

	w = s.do(http.MethodGet, "/api/reports/buses/B001?from=2026-10-01&to=2026-10-31", f.admin, nil)
	expect(t, w, http.StatusOK)
	var busReport struct {
		Data services.BusReport `json:"data"`
	}
	decode(t, w, &busReport)
	if busReport.Data.TotalIncome != 1500 || busReport.Data.Route != "R1" {
		t.Fatalf("bus report = %+v", busReport.Data)
	}
}
