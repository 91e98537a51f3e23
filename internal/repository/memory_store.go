package repository

import (
	"context"
	"maps"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"fleet_tracker/internal/apperr"
	"fleet_tracker/internal/models"
)

// MemoryStore is an in-process Store. Transactions are serialised and run
// against a private copy; on commit only the rows the transaction changed are
// written back, so writes made outside it meanwhile survive.
type MemoryStore struct {
	txMu sync.Mutex
	mu   sync.Mutex
	now  func() time.Time

	data memoryData
	ids  *memoryCounters
}

type memoryData struct {
	buses         map[uint]models.Bus
	routes        map[uint]models.Route
	users         map[uint]models.User
	schedules     map[string]models.Schedule
	trips         map[string]models.Trip
	logs          map[string]models.MaintenanceLog
	notifications map[string]models.Notification
	locations     map[string]models.DriverLocation
}

// memoryCounters is shared between a store and its transactions. Like database
// sequences, values handed out are never given back on rollback.
type memoryCounters struct {
	mu        sync.Mutex
	lastID    uint
	sequences map[string]int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		now:  time.Now,
		data: newMemoryData(),
		ids:  &memoryCounters{sequences: map[string]int64{}},
	}
}

func newMemoryData() memoryData {
	return memoryData{
		buses:         map[uint]models.Bus{},
		routes:        map[uint]models.Route{},
		users:         map[uint]models.User{},
		schedules:     map[string]models.Schedule{},
		trips:         map[string]models.Trip{},
		logs:          map[string]models.MaintenanceLog{},
		notifications: map[string]models.Notification{},
		locations:     map[string]models.DriverLocation{},
	}
}

func (d memoryData) clone() memoryData {
	return memoryData{
		buses:         maps.Clone(d.buses),
		routes:        maps.Clone(d.routes),
		users:         maps.Clone(d.users),
		schedules:     maps.Clone(d.schedules),
		trips:         maps.Clone(d.trips),
		logs:          maps.Clone(d.logs),
		notifications: maps.Clone(d.notifications),
		locations:     maps.Clone(d.locations),
	}
}

// apply writes into d every row that changed between base and next.
func (d memoryData) apply(base, next memoryData) {
	applyRows(d.buses, base.buses, next.buses)
	applyRows(d.routes, base.routes, next.routes)
	applyRows(d.users, base.users, next.users)
	applyRows(d.schedules, base.schedules, next.schedules)
	applyRows(d.trips, base.trips, next.trips)
	applyRows(d.logs, base.logs, next.logs)
	applyRows(d.notifications, base.notifications, next.notifications)
	applyRows(d.locations, base.locations, next.locations)
}

func applyRows[K comparable, V any](live, base, next map[K]V) {
	for k, v := range next {
		if old, ok := base[k]; !ok || !reflect.DeepEqual(old, v) {
			live[k] = v
		}
	}
	for k := range base {
		if _, ok := next[k]; !ok {
			delete(live, k)
		}
	}
}

func (s *MemoryStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	base := s.data.clone()
	s.mu.Unlock()

	tx := &MemoryStore{now: s.now, data: base.clone(), ids: s.ids}
	if err := fn(tx); err != nil {
		return err
	}

	s.mu.Lock()
	s.data.apply(base, tx.data)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) NextSequence(ctx context.Context, name string) (int64, error) {
	s.ids.mu.Lock()
	defer s.ids.mu.Unlock()
	s.ids.sequences[name]++
	return s.ids.sequences[name], nil
}

func (s *MemoryStore) nextID() uint {
	s.ids.mu.Lock()
	defer s.ids.mu.Unlock()
	s.ids.lastID++
	return s.ids.lastID
}

func (s *MemoryStore) stamp(created, updated *time.Time) {
	now := s.now()
	if created != nil && created.IsZero() {
		*created = now
	}
	if updated != nil && updated.IsZero() {
		*updated = now
	}
}

func (s *MemoryStore) CreateBus(ctx context.Context, bus *models.Bus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.data.buses {
		if b.BusNumber == bus.BusNumber {
			return apperr.Conflict("bus number %q already exists", bus.BusNumber)
		}
	}
	bus.ID = s.nextID()
	s.stamp(&bus.CreatedAt, &bus.UpdatedAt)
	s.data.buses[bus.ID] = *bus
	return nil
}

func (s *MemoryStore) SaveBus(ctx context.Context, bus *models.Bus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, b := range s.data.buses {
		if id != bus.ID && b.BusNumber == bus.BusNumber {
			return apperr.Conflict("bus number %q already exists", bus.BusNumber)
		}
	}
	if bus.ID == 0 {
		bus.ID = s.nextID()
	}
	s.stamp(&bus.CreatedAt, nil)
	bus.UpdatedAt = s.now()
	s.data.buses[bus.ID] = *bus
	return nil
}

func (s *MemoryStore) FindBusByID(ctx context.Context, id uint) (*models.Bus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.data.buses[id]
	if !ok {
		return nil, apperr.NotFound("bus %d not found", id)
	}
	return &b, nil
}

func (s *MemoryStore) FindBusByNumber(ctx context.Context, busNumber string) (*models.Bus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.data.buses {
		if b.BusNumber == busNumber {
			return &b, nil
		}
	}
	return nil, apperr.NotFound("bus %s not found", busNumber)
}

func (s *MemoryStore) FindBusByDriver(ctx context.Context, driverID uint) (*models.Bus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var found *models.Bus
	for _, b := range s.data.buses {
		b := b // per-iteration copy; go.mod targets go1.21 (pre-1.22 loop semantics)
		if b.DriverID != nil && *b.DriverID == driverID && (found == nil || b.ID < found.ID) {
			found = &b
		}
	}
	if found == nil {
		return nil, apperr.NotFound("bus for driver %d not found", driverID)
	}
	return found, nil
}

func (s *MemoryStore) ListBuses(ctx context.Context, status string) ([]models.Bus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Bus{}
	for _, b := range s.data.buses {
		if status == "" || b.Status == status {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BusNumber < out[j].BusNumber })
	return out, nil
}

func (s *MemoryStore) DeleteBus(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data.buses[id]; !ok {
		return apperr.NotFound("bus %d not found", id)
	}
	delete(s.data.buses, id)
	return nil
}

func (s *MemoryStore) CountBuses(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.data.buses)), nil
}

func (s *MemoryStore) CreateRoute(ctx context.Context, route *models.Route) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.data.routes {
		if r.RouteName == route.RouteName {
			return apperr.Conflict("route name %q already exists", route.RouteName)
		}
	}
	route.ID = s.nextID()
	s.stamp(&route.CreatedAt, &route.UpdatedAt)
	s.data.routes[route.ID] = *route
	return nil
}

func (s *MemoryStore) SaveRoute(ctx context.Context, route *models.Route) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, r := range s.data.routes {
		if id != route.ID && r.RouteName == route.RouteName {
			return apperr.Conflict("route name %q already exists", route.RouteName)
		}
	}
	if route.ID == 0 {
		route.ID = s.nextID()
	}
	s.stamp(&route.CreatedAt, nil)
	route.UpdatedAt = s.now()
	s.data.routes[route.ID] = *route
	return nil
}

func (s *MemoryStore) FindRouteByID(ctx context.Context, id uint) (*models.Route, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.data.routes[id]
	if !ok {
		return nil, apperr.NotFound("route %d not found", id)
	}
	return &r, nil
}

func (s *MemoryStore) FindRouteByName(ctx context.Context, name string) (*models.Route, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.data.routes {
		if r.RouteName == name {
			return &r, nil
		}
	}
	return nil, apperr.NotFound("route %s not found", name)
}

func (s *MemoryStore) ListRoutes(ctx context.Context) ([]models.Route, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Route, 0, len(s.data.routes))
	for _, r := range s.data.routes {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RouteName < out[j].RouteName })
	return out, nil
}

func (s *MemoryStore) DeleteRoute(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data.routes[id]; !ok {
		return apperr.NotFound("route %d not found", id)
	}
	delete(s.data.routes, id)
	return nil
}

func (s *MemoryStore) CountRoutes(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.data.routes)), nil
}

func (s *MemoryStore) CreateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.data.users {
		if u.Username == user.Username {
			return apperr.Conflict("username %q already exists", user.Username)
		}
	}
	user.ID = s.nextID()
	s.stamp(&user.CreatedAt, &user.UpdatedAt)
	s.data.users[user.ID] = *user
	return nil
}

func (s *MemoryStore) SaveUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, u := range s.data.users {
		if id != user.ID && u.Username == user.Username {
			return apperr.Conflict("username %q already exists", user.Username)
		}
	}
	if user.ID == 0 {
		user.ID = s.nextID()
	}
	s.stamp(&user.CreatedAt, nil)
	user.UpdatedAt = s.now()
	s.data.users[user.ID] = *user
	return nil
}

func (s *MemoryStore) FindUserByID(ctx context.Context, id uint) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.data.users[id]
	if !ok {
		return nil, apperr.NotFound("user %d not found", id)
	}
	return &u, nil
}

func (s *MemoryStore) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.data.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, apperr.NotFound("user %s not found", username)
}

func (s *MemoryStore) ListUsers(ctx context.Context, role string) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.User{}
	for _, u := range s.data.users {
		if role == "" || u.HasRole(role) {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (s *MemoryStore) CountUsers(ctx context.Context, role string) (int64, error) {
	users, _ := s.ListUsers(ctx, role)
	return int64(len(users)), nil
}

func (s *MemoryStore) CreateSchedule(ctx context.Context, schedule *models.Schedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data.schedules[schedule.ScheduleNumber]; ok {
		return apperr.Conflict("schedule %s already exists", schedule.ScheduleNumber)
	}
	s.stamp(&schedule.CreatedAt, &schedule.UpdatedAt)
	s.data.schedules[schedule.ScheduleNumber] = *schedule
	return nil
}

func (s *MemoryStore) SaveSchedule(ctx context.Context, schedule *models.Schedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stamp(&schedule.CreatedAt, nil)
	schedule.UpdatedAt = s.now()
	s.data.schedules[schedule.ScheduleNumber] = *schedule
	return nil
}

func (s *MemoryStore) SaveSchedules(ctx context.Context, schedules []models.Schedule) error {
	for i := range schedules {
		if err := s.SaveSchedule(ctx, &schedules[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *MemoryStore) FindSchedule(ctx context.Context, scheduleNumber string) (*models.Schedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sc, ok := s.data.schedules[scheduleNumber]
	if !ok {
		return nil, apperr.NotFound("schedule %s not found", scheduleNumber)
	}
	return &sc, nil
}

func (s *MemoryStore) ListSchedules(ctx context.Context, status string) ([]models.Schedule, error) {
	return s.filterSchedules(func(sc models.Schedule) bool {
		return status == "" || strings.EqualFold(sc.Status, status)
	}), nil
}

func (s *MemoryStore) ListSchedulesByBus(ctx context.Context, busID uint, status string) ([]models.Schedule, error) {
	return s.filterSchedules(func(sc models.Schedule) bool {
		return sc.BusID != nil && *sc.BusID == busID &&
			(status == "" || strings.EqualFold(sc.Status, status))
	}), nil
}

func (s *MemoryStore) filterSchedules(keep func(models.Schedule) bool) []models.Schedule {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Schedule{}
	for _, sc := range s.data.schedules {
		if keep(sc) {
			out = append(out, sc)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		if out[i].DepartureTime != out[j].DepartureTime {
			return out[i].DepartureTime < out[j].DepartureTime
		}
		return out[i].ScheduleNumber < out[j].ScheduleNumber
	})
	return out
}

func (s *MemoryStore) DeleteSchedule(ctx context.Context, scheduleNumber string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data.schedules[scheduleNumber]; !ok {
		return apperr.NotFound("schedule %s not found", scheduleNumber)
	}
	delete(s.data.schedules, scheduleNumber)
	return nil
}

func (s *MemoryStore) CountSchedules(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.data.schedules)), nil
}

func (s *MemoryStore) CreateTrip(ctx context.Context, trip *models.Trip) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = trip.BeforeCreate(nil)
	s.stamp(&trip.CreatedAt, &trip.UpdatedAt)
	s.data.trips[trip.ID] = *trip
	return nil
}

func (s *MemoryStore) SaveTrip(ctx context.Context, trip *models.Trip) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = trip.BeforeCreate(nil)
	s.stamp(&trip.CreatedAt, nil)
	trip.UpdatedAt = s.now()
	s.data.trips[trip.ID] = *trip
	return nil
}

func (s *MemoryStore) FindTrip(ctx context.Context, id string) (*models.Trip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.data.trips[id]
	if !ok {
		return nil, apperr.NotFound("trip %s not found", id)
	}
	return &t, nil
}

func (s *MemoryStore) ListTrips(ctx context.Context, scheduleNumber string) ([]models.Trip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Trip{}
	for _, t := range s.data.trips {
		if scheduleNumber == "" || t.ScheduleNumber == scheduleNumber {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].ActualDepartureTime > out[j].ActualDepartureTime
	})
	return out, nil
}

func (s *MemoryStore) DeleteTrip(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data.trips[id]; !ok {
		return apperr.NotFound("trip %s not found", id)
	}
	delete(s.data.trips, id)
	return nil
}

func (s *MemoryStore) DeleteTripsBySchedule(ctx context.Context, scheduleNumber string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, t := range s.data.trips {
		if t.ScheduleNumber == scheduleNumber {
			delete(s.data.trips, id)
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) CountTrips(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.data.trips)), nil
}

func (s *MemoryStore) SumTripIncome(ctx context.Context, from, to string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total int64
	for _, t := range s.data.trips {
		if t.Date >= from && t.Date <= to {
			total += int64(t.Income)
		}
	}
	return total, nil
}

func (s *MemoryStore) CreateMaintenanceLog(ctx context.Context, log *models.MaintenanceLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = log.BeforeCreate(nil)
	s.stamp(&log.CreatedAt, &log.UpdatedAt)
	s.data.logs[log.ID] = *log
	return nil
}

func (s *MemoryStore) SaveMaintenanceLog(ctx context.Context, log *models.MaintenanceLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = log.BeforeCreate(nil)
	s.stamp(&log.CreatedAt, nil)
	log.UpdatedAt = s.now()
	s.data.logs[log.ID] = *log
	return nil
}

func (s *MemoryStore) FindMaintenanceLog(ctx context.Context, id string) (*models.MaintenanceLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.data.logs[id]
	if !ok {
		return nil, apperr.NotFound("maintenance log %s not found", id)
	}
	return &l, nil
}

func (s *MemoryStore) ListMaintenanceLogs(ctx context.Context, busNumber string) ([]models.MaintenanceLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.MaintenanceLog{}
	for _, l := range s.data.logs {
		if busNumber == "" || l.BusNumber == busNumber {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) DeleteMaintenanceLog(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data.logs[id]; !ok {
		return apperr.NotFound("maintenance log %s not found", id)
	}
	delete(s.data.logs, id)
	return nil
}

func (s *MemoryStore) SumMaintenanceCost(ctx context.Context, from, to string) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total float64
	for _, l := range s.data.logs {
		if l.MaintenanceDate >= from && l.MaintenanceDate <= to {
			total += l.Cost
		}
	}
	return total, nil
}

func (s *MemoryStore) CreateNotification(ctx context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = n.BeforeCreate(nil)
	s.stamp(&n.CreatedAt, nil)
	s.data.notifications[n.ID] = *n
	return nil
}

func (s *MemoryStore) SaveNotification(ctx context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = n.BeforeCreate(nil)
	s.stamp(&n.CreatedAt, nil)
	s.data.notifications[n.ID] = *n
	return nil
}

func (s *MemoryStore) FindNotification(ctx context.Context, id string) (*models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.data.notifications[id]
	if !ok {
		return nil, apperr.NotFound("notification %s not found", id)
	}
	return &n, nil
}

func (f NotificationFilter) matches(n models.Notification) bool {
	return (f.Receiver == "" || n.Receiver == f.Receiver) &&
		(f.Sender == "" || n.Sender == f.Sender) &&
		(f.Type == "" || n.Type == f.Type) &&
		(f.BusNumber == "" || n.BusNumber == f.BusNumber) &&
		(!f.UnreadOnly || !n.IsRead)
}

func (s *MemoryStore) ListNotifications(ctx context.Context, filter NotificationFilter) ([]models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Notification{}
	for _, n := range s.data.notifications {
		if filter.matches(n) {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) CountNotifications(ctx context.Context, filter NotificationFilter) (int64, error) {
	list, _ := s.ListNotifications(ctx, filter)
	return int64(len(list)), nil
}

func (s *MemoryStore) MarkAllRead(ctx context.Context, receiver string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, note := range s.data.notifications {
		if note.Receiver == receiver && !note.IsRead {
			note.IsRead = true
			s.data.notifications[id] = note
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) DeleteNotification(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data.notifications[id]; !ok {
		return apperr.NotFound("notification %s not found", id)
	}
	delete(s.data.notifications, id)
	return nil
}

func (s *MemoryStore) DeleteNotificationsByReceiver(ctx context.Context, receiver string) (int64, error) {
	return s.deleteNotificationsWhere(func(n models.Notification) bool { return n.Receiver == receiver }), nil
}

func (s *MemoryStore) DeleteNotificationsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.deleteNotificationsWhere(func(n models.Notification) bool { return n.CreatedAt.Before(cutoff) }), nil
}

func (s *MemoryStore) deleteNotificationsWhere(match func(models.Notification) bool) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, note := range s.data.notifications {
		if match(note) {
			delete(s.data.notifications, id)
			n++
		}
	}
	return n
}

func (s *MemoryStore) FindLocation(ctx context.Context, driverUsername string) (*models.DriverLocation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.data.locations[driverUsername]
	if !ok {
		return nil, apperr.NotFound("location for driver %s not found", driverUsername)
	}
	return &l, nil
}

func (s *MemoryStore) SaveLocation(ctx context.Context, loc *models.DriverLocation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = loc.BeforeCreate(nil)
	s.stamp(&loc.CreatedAt, &loc.UpdatedAt)
	s.data.locations[loc.DriverUsername] = *loc
	return nil
}

func (s *MemoryStore) UpsertLocation(ctx context.Context, loc *models.DriverLocation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.data.locations[loc.DriverUsername]; ok {
		loc.ID = existing.ID
		loc.CreatedAt = existing.CreatedAt
	}
	_ = loc.BeforeCreate(nil)
	s.stamp(&loc.CreatedAt, &loc.UpdatedAt)
	s.data.locations[loc.DriverUsername] = *loc
	return nil
}

func (f LocationFilter) matches(l models.DriverLocation) bool {
	if !f.UpdatedSince.IsZero() && l.UpdatedAt.Before(f.UpdatedSince) {
		return false
	}
	if len(f.Statuses) == 0 {
		return true
	}
	for _, st := range f.Statuses {
		if l.Status == st {
			return true
		}
	}
	return false
}

func (s *MemoryStore) ListLocations(ctx context.Context, filter LocationFilter) ([]models.DriverLocation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.DriverLocation{}
	for _, l := range s.data.locations {
		if filter.matches(l) {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (s *MemoryStore) CountLocations(ctx context.Context, filter LocationFilter) (int64, error) {
	list, _ := s.ListLocations(ctx, filter)
	return int64(len(list)), nil
}
