package routes

import (
	"net/http"
	"time"

	ginlog "github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"fleet_tracker/internal/controllers"
	"fleet_tracker/internal/middleware"
	"fleet_tracker/internal/models"
	"fleet_tracker/internal/realtime"
	"fleet_tracker/internal/services"
)

// Dependencies is everything the router hands to its controllers.
type Dependencies struct {
	Auth           *middleware.Auth
	Hub            *realtime.Hub
	AllowedOrigins []string
	RequestTimeout time.Duration

	Users         *services.UserService
	Buses         *services.BusService
	Routes        *services.RouteService
	Schedules     *services.ScheduleService
	Trips         *services.TripService
	Maintenance   *services.MaintenanceService
	Notifications *services.NotificationService
	Locations     *services.LocationService
	Reports       *services.ReportService
}

// SetupRouter builds the engine. It does not start listening.
func SetupRouter(d Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(
		ginlog.SetLogger(
			ginlog.WithWriter(logrus.StandardLogger().Out),
			ginlog.WithSkipPath([]string{"/health"}),
			ginlog.WithUTC(true),
		),
		gin.Recovery(),
		middleware.CORS(d.AllowedOrigins),
	)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	h := handlers{
		auth:          controllers.NewAuthController(d.Users, d.Auth),
		buses:         controllers.NewBusController(d.Buses),
		routes:        controllers.NewRouteController(d.Routes),
		schedules:     controllers.NewScheduleController(d.Schedules),
		trips:         controllers.NewTripController(d.Trips),
		maintenance:   controllers.NewMaintenanceController(d.Maintenance),
		notifications: controllers.NewNotificationController(d.Notifications),
		locations:     controllers.NewLocationController(d.Locations),
		dashboard:     controllers.NewDashboardController(d.Reports),
	}

	AuthRoutes(r, h.auth)
	WebSocketRoutes(r, controllers.NewWebSocketController(d.Hub, d.Auth, d.Locations, d.AllowedOrigins))

	api := r.Group("/api")
	api.Use(d.Auth.RequireAuth(), middleware.Timeout(d.RequestTimeout))
	SharedRoutes(api, h)

	admin := api.Group("")
	admin.Use(middleware.RequireRole(models.RoleAdmin))
	AdminRoutes(admin, h)

	driver := api.Group("")
	driver.Use(middleware.RequireRole(models.RoleDriver))
	DriverRoutes(driver, h)

	return r
}

type handlers struct {
	auth          *controllers.AuthController
	buses         *controllers.BusController
	routes        *controllers.RouteController
	schedules     *controllers.ScheduleController
	trips         *controllers.TripController
	maintenance   *controllers.MaintenanceController
	notifications *controllers.NotificationController
	locations     *controllers.LocationController
	dashboard     *controllers.DashboardController
}
