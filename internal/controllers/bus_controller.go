package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fleet_tracker/internal/middleware"
	"fleet_tracker/internal/services"
)

type BusController struct {
	buses *services.BusService
}

func NewBusController(buses *services.BusService) *BusController {
	return &BusController{buses: buses}
}

type busInput struct {
	BusNumber string `json:"bus_number" binding:"required"`
	Capacity  int    `json:"capacity" binding:"gte=0"`
	Model     string `json:"model"`
	DriverID  *uint  `json:"driver_id"`
}

func (in busInput) toService() services.BusInput {
	return services.BusInput{BusNumber: in.BusNumber, Capacity: in.Capacity, Model: in.Model, DriverID: in.DriverID}
}

func (bc *BusController) Create(c *gin.Context) {
	var body busInput
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	bus, err := bc.buses.Create(c.Request.Context(), body.toService())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": bus})
}

func (bc *BusController) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var body busInput
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	bus, err := bc.buses.Update(c.Request.Context(), id, body.toService())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": bus})
}

func (bc *BusController) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	bus, err := bc.buses.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": bus})
}

func (bc *BusController) List(c *gin.Context) {
	buses, err := bc.buses.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": buses})
}

func (bc *BusController) ListAvailable(c *gin.Context) {
	buses, err := bc.buses.ListAvailable(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": buses})
}

// WithoutDriver lists buses still waiting for a driver.
func (bc *BusController) WithoutDriver(c *gin.Context) {
	buses, err := bc.buses.ListWithoutDriver(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": buses})
}

// Mine returns the bus assigned to the calling driver.
func (bc *BusController) Mine(c *gin.Context) {
	bus, err := bc.buses.ForDriver(c.Request.Context(), middleware.Username(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": bus})
}

func (bc *BusController) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := bc.buses.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Bus deleted"})
}

type busStatusInput struct {
	Status string `json:"status" binding:"required"`
}

// SetStatus moves a bus between available and unavailable. Taking a bus out of
// service pulls it off its schedules.
func (bc *BusController) SetStatus(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var body busStatusInput
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	changed, err := bc.buses.SetBusStatus(c.Request.Context(), id, body.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	if !changed {
		c.JSON(http.StatusNotFound, gin.H{"error": "Bus not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Bus status updated"})
}
