package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fleet_tracker/internal/middleware"
	"fleet_tracker/internal/services"
)

type MaintenanceController struct {
	logs *services.MaintenanceService
}

func NewMaintenanceController(logs *services.MaintenanceService) *MaintenanceController {
	return &MaintenanceController{logs: logs}
}

type maintenanceInput struct {
	BusNumber         string  `json:"bus_number" binding:"required"`
	MaintenanceDate   string  `json:"maintenance_date" binding:"required,datetime=2006-01-02"`
	MaintenanceType   string  `json:"maintenance_type" binding:"required"`
	Cost              float64 `json:"cost" binding:"gte=0"`
	MaintenanceStatus string  `json:"maintenance_status"`
	Notes             string  `json:"notes"`
}

func (in maintenanceInput) toService() services.MaintenanceInput {
	return services.MaintenanceInput{
		BusNumber:         in.BusNumber,
		MaintenanceDate:   in.MaintenanceDate,
		MaintenanceType:   in.MaintenanceType,
		Cost:              in.Cost,
		MaintenanceStatus: in.MaintenanceStatus,
		Notes:             in.Notes,
	}
}

func (mc *MaintenanceController) Create(c *gin.Context) {
	var body maintenanceInput
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	entry, err := mc.logs.Create(c.Request.Context(), body.toService())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": entry})
}

func (mc *MaintenanceController) Update(c *gin.Context) {
	var body maintenanceInput
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	entry, err := mc.logs.Update(c.Request.Context(), c.Param("id"), body.toService())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": entry})
}

func (mc *MaintenanceController) Get(c *gin.Context) {
	entry, err := mc.logs.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": entry})
}

// List accepts an optional ?bus_number= filter.
func (mc *MaintenanceController) List(c *gin.Context) {
	logs, err := mc.logs.List(c.Request.Context(), c.Query("bus_number"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": logs})
}

// Mine lists the maintenance log of the calling driver's bus.
func (mc *MaintenanceController) Mine(c *gin.Context) {
	logs, err := mc.logs.ForDriver(c.Request.Context(), middleware.Username(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": logs})
}

func (mc *MaintenanceController) Delete(c *gin.Context) {
	if err := mc.logs.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Maintenance log deleted"})
}
