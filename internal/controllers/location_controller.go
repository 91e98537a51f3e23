package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"fleet_tracker/internal/middleware"
	"fleet_tracker/internal/services"
)

type LocationController struct {
	locations *services.LocationService
}

func NewLocationController(locations *services.LocationService) *LocationController {
	return &LocationController{locations: locations}
}

type locationInput struct {
	Latitude  *float64 `json:"latitude" binding:"required"`
	Longitude *float64 `json:"longitude" binding:"required"`
	Accuracy  *float64 `json:"accuracy"`
	Status    string   `json:"status"`
	BusNumber string   `json:"bus_number"`
}

// Upsert records the calling driver's position.
func (lc *LocationController) Upsert(c *gin.Context) {
	var body locationInput
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	loc, err := lc.locations.Upsert(c.Request.Context(), middleware.Username(c), services.LocationUpdate{
		Latitude:  body.Latitude,
		Longitude: body.Longitude,
		Accuracy:  body.Accuracy,
		Status:    body.Status,
		BusNumber: body.BusNumber,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": loc})
}

// Offline marks the calling driver as no longer reporting.
func (lc *LocationController) Offline(c *gin.Context) {
	if err := lc.locations.SetOffline(c.Request.Context(), middleware.Username(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Driver marked offline"})
}

func (lc *LocationController) Mine(c *gin.Context) {
	loc, err := lc.locations.Get(c.Request.Context(), middleware.Username(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": loc})
}

func (lc *LocationController) Get(c *gin.Context) {
	loc, err := lc.locations.Get(c.Request.Context(), c.Param("username"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": loc})
}

func (lc *LocationController) All(c *gin.Context) {
	list, err := lc.locations.All(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}

func (lc *LocationController) Active(c *gin.Context) {
	list, err := lc.locations.Active(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}

func (lc *LocationController) ActiveCount(c *gin.Context) {
	n, err := lc.locations.ActiveCount(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": n})
}

func (lc *LocationController) ActiveGeoJSON(c *gin.Context) {
	fc, err := lc.locations.ActiveGeoJSON(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	body, err := fc.MarshalJSON()
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/geo+json", body)
}

// Recent lists drivers updated in the last ?minutes= (default 5).
func (lc *LocationController) Recent(c *gin.Context) {
	minutes, err := strconv.Atoi(c.DefaultQuery("minutes", "5"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "minutes must be a number"})
		return
	}
	list, err := lc.locations.Recent(c.Request.Context(), minutes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}
