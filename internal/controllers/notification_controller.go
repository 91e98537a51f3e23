package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"fleet_tracker/internal/middleware"
	"fleet_tracker/internal/models"
	"fleet_tracker/internal/repository"
	"fleet_tracker/internal/services"
)

type NotificationController struct {
	notifications *services.NotificationService
}

func NewNotificationController(notifications *services.NotificationService) *NotificationController {
	return &NotificationController{notifications: notifications}
}

type notificationInput struct {
	Receiver  string `json:"receiver" binding:"required"`
	Type      string `json:"type" binding:"required"`
	Title     string `json:"title" binding:"required"`
	Message   string `json:"message"`
	BusNumber string `json:"bus_number"`
}

type maintenanceAlertInput struct {
	DriverUsername string `json:"driver_username" binding:"required"`
	BusNumber      string `json:"bus_number" binding:"required"`
	Message        string `json:"message"`
}

type broadcastInput struct {
	Type    string `json:"type" binding:"required"`
	Title   string `json:"title" binding:"required"`
	Message string `json:"message"`
}

// Create sends a notification from the calling admin to one receiver.
func (nc *NotificationController) Create(c *gin.Context) {
	var body notificationInput
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	n, err := nc.notifications.Dispatch(c.Request.Context(), services.NotificationInput{
		Sender:    middleware.Username(c),
		Receiver:  body.Receiver,
		Type:      models.NotificationType(strings.ToUpper(body.Type)),
		Title:     body.Title,
		Message:   body.Message,
		BusNumber: body.BusNumber,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": n})
}

// Broadcast sends one notification to every user.
func (nc *NotificationController) Broadcast(c *gin.Context) {
	var body broadcastInput
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	n, err := nc.notifications.CreateBroadcast(c.Request.Context(), middleware.Username(c),
		models.NotificationType(strings.ToUpper(body.Type)), body.Title, body.Message)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": n})
}

// SendMaintenanceAlert lets an admin ask a driver to bring a bus in.
func (nc *NotificationController) SendMaintenanceAlert(c *gin.Context) {
	var body maintenanceAlertInput
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	n, err := nc.notifications.SendMaintenanceAlert(c.Request.Context(), body.DriverUsername, body.BusNumber, body.Message)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": n})
}

// Get returns one notification from the caller's inbox. Admins can read any.
func (nc *NotificationController) Get(c *gin.Context) {
	n, err := nc.notifications.Get(c.Request.Context(), c.Param("id"), owner(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": n})
}

// Mine lists the caller's inbox.
func (nc *NotificationController) Mine(c *gin.Context) {
	list, err := nc.notifications.ListForReceiver(c.Request.Context(), receiver(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}

func (nc *NotificationController) Unread(c *gin.Context) {
	list, err := nc.notifications.ListUnread(c.Request.Context(), receiver(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}

func (nc *NotificationController) UnreadCount(c *gin.Context) {
	n, err := nc.notifications.UnreadCount(c.Request.Context(), receiver(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": n})
}

// All is the admin view over every inbox, filtered by query parameters.
func (nc *NotificationController) All(c *gin.Context) {
	unread, _ := strconv.ParseBool(c.Query("unread"))
	list, err := nc.notifications.List(c.Request.Context(), repository.NotificationFilter{
		Receiver:   c.Query("receiver"),
		Sender:     c.Query("sender"),
		Type:       models.NotificationType(strings.ToUpper(c.Query("type"))),
		BusNumber:  c.Query("bus_number"),
		UnreadOnly: unread,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}

// MarkRead flags one notification as read. Drivers only reach their own inbox;
// anything else answers 404.
func (nc *NotificationController) MarkRead(c *gin.Context) {
	n, err := nc.notifications.MarkAsRead(c.Request.Context(), c.Param("id"), owner(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": n})
}

func (nc *NotificationController) MarkAllRead(c *gin.Context) {
	n, err := nc.notifications.MarkAllAsRead(c.Request.Context(), receiver(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": n})
}

func (nc *NotificationController) Delete(c *gin.Context) {
	if err := nc.notifications.Delete(c.Request.Context(), c.Param("id"), owner(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification deleted"})
}

func (nc *NotificationController) DeleteMine(c *gin.Context) {
	n, err := nc.notifications.DeleteAllForReceiver(c.Request.Context(), receiver(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": n})
}
