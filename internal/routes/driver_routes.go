package routes

import (
	"github.com/gin-gonic/gin"
)

// DriverRoutes registers the endpoints acting on the calling driver's own bus,
// schedules and position.
func DriverRoutes(driver *gin.RouterGroup, h handlers) {
	driver.GET("/buses/me", h.buses.Mine)

	schedules := driver.Group("/schedules/driver")
	{
		schedules.GET("/upcoming", h.schedules.DriverUpcoming)
		schedules.GET("/ongoing", h.schedules.DriverOngoing)
	}
	driver.PUT("/schedules/:number/status", h.schedules.DriverSetStatus)
	driver.GET("/trips/me", h.trips.Mine)
	driver.GET("/maintenance/me", h.maintenance.Mine)

	locations := driver.Group("/locations")
	{
		locations.PUT("", h.locations.Upsert)
		locations.POST("/offline", h.locations.Offline)
		locations.GET("/me", h.locations.Mine)
	}
}
