package routes

import (
	"github.com/gin-gonic/gin"

	"fleet_tracker/internal/controllers"
)

// WebSocketRoutes sits outside /api: the handshake authenticates with ?token=
// and the connection outlives any request timeout.
func WebSocketRoutes(r *gin.Engine, wc *controllers.WebSocketController) {
	ws := r.Group("/ws")
	{
		ws.GET("/notifications", wc.Connect)
	}
}
