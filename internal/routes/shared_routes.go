package routes

import (
	"github.com/gin-gonic/gin"
)

// SharedRoutes are open to any authenticated user.
func SharedRoutes(api *gin.RouterGroup, h handlers) {
	me := api.Group("/users/me")
	{
		me.GET("", h.auth.Me)
		me.PUT("", h.auth.UpdateMe)
		me.PUT("/password", h.auth.ChangeMyPassword)
	}

	buses := api.Group("/buses")
	{
		buses.GET("", h.buses.List)
		buses.GET("/available", h.buses.ListAvailable)
		buses.GET("/:id", h.buses.Get)
	}

	routes := api.Group("/routes")
	{
		routes.GET("", h.routes.List)
		routes.GET("/:id", h.routes.Get)
	}

	schedules := api.Group("/schedules")
	{
		schedules.GET("", h.schedules.List)
		schedules.GET("/:number", h.schedules.Get)
	}

	trips := api.Group("/trips")
	{
		trips.POST("", h.trips.Create)
		trips.GET("", h.trips.List)
		trips.GET("/:id", h.trips.Get)
		trips.PUT("/:id", h.trips.Update)
	}

	maintenance := api.Group("/maintenance")
	{
		maintenance.GET("", h.maintenance.List)
		maintenance.GET("/:id", h.maintenance.Get)
	}

	notifications := api.Group("/notifications")
	{
		notifications.GET("", h.notifications.Mine)
		notifications.GET("/unread", h.notifications.Unread)
		notifications.GET("/unread-count", h.notifications.UnreadCount)
		notifications.GET("/:id", h.notifications.Get)
		notifications.PUT("/read-all", h.notifications.MarkAllRead)
		notifications.PUT("/:id/read", h.notifications.MarkRead)
		notifications.DELETE("/:id", h.notifications.Delete)
		notifications.DELETE("", h.notifications.DeleteMine)
	}
}
