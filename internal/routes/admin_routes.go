package routes

import (
	"github.com/gin-gonic/gin"
)

// AdminRoutes registers the ADMIN-only endpoints.
func AdminRoutes(admin *gin.RouterGroup, h handlers) {
	users := admin.Group("/users")
	{
		users.POST("", h.auth.CreateUser)
		users.GET("", h.auth.ListUsers)
		users.GET("/drivers", h.auth.ListDrivers)
		users.GET("/:id", h.auth.GetUser)
		users.PUT("/:id", h.auth.UpdateUser)
		users.PUT("/:id/password", h.auth.ResetPassword)
	}

	buses := admin.Group("/buses")
	{
		buses.POST("", h.buses.Create)
		buses.GET("/without-driver", h.buses.WithoutDriver)
		buses.PUT("/:id", h.buses.Update)
		buses.DELETE("/:id", h.buses.Delete)
		buses.PUT("/:id/status", h.buses.SetStatus)
	}

	routes := admin.Group("/routes")
	{
		routes.POST("", h.routes.Create)
		routes.PUT("/:id", h.routes.Update)
		routes.DELETE("/:id", h.routes.Delete)
	}

	schedules := admin.Group("/schedules")
	{
		schedules.POST("", h.schedules.Create)
		schedules.PUT("/:number", h.schedules.Update)
		schedules.DELETE("/:number", h.schedules.Delete)
	}

	admin.DELETE("/trips/:id", h.trips.Delete)

	maintenance := admin.Group("/maintenance")
	{
		maintenance.POST("", h.maintenance.Create)
		maintenance.PUT("/:id", h.maintenance.Update)
		maintenance.DELETE("/:id", h.maintenance.Delete)
	}

	notifications := admin.Group("/notifications")
	{
		notifications.POST("", h.notifications.Create)
		notifications.POST("/broadcast", h.notifications.Broadcast)
		notifications.POST("/maintenance-alert", h.notifications.SendMaintenanceAlert)
		notifications.GET("/all", h.notifications.All)
	}

	locations := admin.Group("/locations")
	{
		locations.GET("", h.locations.All)
		locations.GET("/active", h.locations.Active)
		locations.GET("/active/count", h.locations.ActiveCount)
		locations.GET("/active/geojson", h.locations.ActiveGeoJSON)
		locations.GET("/recent", h.locations.Recent)
		locations.GET("/:username", h.locations.Get)
	}

	admin.GET("/dashboard", h.dashboard.Get)

	reports := admin.Group("/reports")
	{
		reports.GET("/buses", h.dashboard.FleetReport)
		reports.GET("/buses/:number", h.dashboard.BusReport)
	}
}
