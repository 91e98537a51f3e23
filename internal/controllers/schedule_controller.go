package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fleet_tracker/internal/middleware"
	"fleet_tracker/internal/services"
)

type ScheduleController struct {
	schedules *services.ScheduleService
}

func NewScheduleController(schedules *services.ScheduleService) *ScheduleController {
	return &ScheduleController{schedules: schedules}
}

type scheduleInput struct {
	BusID         uint   `json:"bus_id" binding:"required"`
	RouteID       uint   `json:"route_id" binding:"required"`
	DepartureTime string `json:"departure_time" binding:"required,datetime=15:04"`
	ArrivalTime   string `json:"arrival_time" binding:"required,datetime=15:04"`
	Date          string `json:"date" binding:"required,datetime=2006-01-02"`
	Status        string `json:"status"`
}

func (in scheduleInput) toService() services.ScheduleInput {
	return services.ScheduleInput{
		BusID:         in.BusID,
		RouteID:       in.RouteID,
		DepartureTime: in.DepartureTime,
		ArrivalTime:   in.ArrivalTime,
		Date:          in.Date,
		Status:        in.Status,
	}
}

func (sc *ScheduleController) Create(c *gin.Context) {
	var body scheduleInput
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	schedule, err := sc.schedules.Create(c.Request.Context(), body.toService())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": schedule})
}

type scheduleStatusInput struct {
	Status string `json:"status" binding:"required"`
}

// Update is the admin edit: bus, route, times, date and status all at once.
func (sc *ScheduleController) Update(c *gin.Context) {
	var body scheduleInput
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	schedule, err := sc.schedules.Update(c.Request.Context(), c.Param("number"), body.toService())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": schedule})
}

func (sc *ScheduleController) Get(c *gin.Context) {
	schedule, err := sc.schedules.Get(c.Request.Context(), c.Param("number"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": schedule})
}

// List accepts an optional ?status= filter and ?page=&limit= paging.
func (sc *ScheduleController) List(c *gin.Context) {
	schedules, err := sc.schedules.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, schedules)
}

func (sc *ScheduleController) Delete(c *gin.Context) {
	if err := sc.schedules.Delete(c.Request.Context(), c.Param("number")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Schedule deleted"})
}

// DriverUpcoming lists pending schedules of the caller's bus.
func (sc *ScheduleController) DriverUpcoming(c *gin.Context) {
	schedules, err := sc.schedules.UpcomingForDriver(c.Request.Context(), middleware.Username(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": schedules})
}

func (sc *ScheduleController) DriverOngoing(c *gin.Context) {
	schedules, err := sc.schedules.OngoingForDriver(c.Request.Context(), middleware.Username(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": schedules})
}

// DriverSetStatus lets a driver start or finish a schedule of their own bus.
func (sc *ScheduleController) DriverSetStatus(c *gin.Context) {
	var body scheduleStatusInput
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	schedule, err := sc.schedules.SetStatusForDriver(c.Request.Context(), middleware.Username(c), c.Param("number"), body.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": schedule})
}
