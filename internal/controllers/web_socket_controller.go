package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"fleet_tracker/internal/middleware"
	"fleet_tracker/internal/models"
	"fleet_tracker/internal/realtime"
	"fleet_tracker/internal/services"
)

// ReplyTopic carries acknowledgements for frames a driver sends on its own socket.
const ReplyTopic = "location-ack"

const socketWriteTimeout = 10 * time.Second

type WebSocketController struct {
	hub       *realtime.Hub
	auth      *middleware.Auth
	locations *services.LocationService
	upgrader  websocket.Upgrader
}

func NewWebSocketController(hub *realtime.Hub, auth *middleware.Auth, locations *services.LocationService, origins []string) *WebSocketController {
	return &WebSocketController{
		hub:       hub,
		auth:      auth,
		locations: locations,
		upgrader:  realtime.NewUpgrader(origins),
	}
}

// topicsFor lists what a connection receives. Admins watch their inbox, broadcasts
// and every driver position; drivers get their own inbox and broadcasts.
func topicsFor(claims *middleware.Claims) []string {
	if claims.HasRole(models.RoleAdmin) {
		return []string{realtime.AdminTopic, realtime.BroadcastTopic, realtime.LocationsTopic}
	}
	return []string{realtime.DriverTopic(claims.Username), realtime.BroadcastTopic}
}

// Connect upgrades an authenticated request. Browsers cannot set headers on a
// websocket handshake, so the token comes from ?token=.
func (wc *WebSocketController) Connect(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}
	claims, err := wc.auth.ValidateToken(token)
	if err != nil {
		logrus.WithError(err).Warn("Websocket connection refused.")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	conn, err := wc.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Error("Failed to upgrade websocket connection.")
		return
	}

	client := realtime.NewClient(wc.hub, conn, claims.Username)
	if claims.HasRole(models.RoleDriver) {
		client.OnMessage(wc.driverFrame)
	}
	client.Serve(topicsFor(claims)...)
}

// driverFrame accepts a position sent over the socket the same way the REST
// endpoint does, and acknowledges it on ReplyTopic.
func (wc *WebSocketController) driverFrame(client *realtime.Client, data []byte) {
	var body locationInput
	if err := json.Unmarshal(data, &body); err != nil {
		client.Reply(ReplyTopic, gin.H{"error": "invalid location payload"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), socketWriteTimeout)
	defer cancel()

	loc, err := wc.locations.Upsert(ctx, client.Username, services.LocationUpdate{
		Latitude:  body.Latitude,
		Longitude: body.Longitude,
		Accuracy:  body.Accuracy,
		Status:    body.Status,
		BusNumber: body.BusNumber,
	})
	if err != nil {
		status := statusFor(err)
		msg := err.Error()
		if status >= http.StatusInternalServerError {
			logrus.WithError(err).WithField("username", client.Username).Error("Socket location update failed.")
			msg = http.StatusText(status)
		}
		client.Reply(ReplyTopic, gin.H{"error": msg})
		return
	}
	client.Reply(ReplyTopic, gin.H{"data": loc})
}
