package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fleet_tracker/internal/middleware"
	"fleet_tracker/internal/services"
)

type TripController struct {
	trips *services.TripService
}

func NewTripController(trips *services.TripService) *TripController {
	return &TripController{trips: trips}
}

type tripInput struct {
	ScheduleNumber      string `json:"schedule_number" binding:"required"`
	Date                string `json:"date" binding:"required,datetime=2006-01-02"`
	ActualDepartureTime string `json:"actual_departure_time" binding:"omitempty,datetime=15:04"`
	ActualArrivalTime   string `json:"actual_arrival_time" binding:"omitempty,datetime=15:04"`
	PassengerCount      int    `json:"passenger_count" binding:"gte=0"`
	Income              int    `json:"income" binding:"gte=0"`
}

func (in tripInput) toService() services.TripInput {
	return services.TripInput{
		ScheduleNumber:      in.ScheduleNumber,
		Date:                in.Date,
		ActualDepartureTime: in.ActualDepartureTime,
		ActualArrivalTime:   in.ActualArrivalTime,
		PassengerCount:      in.PassengerCount,
		Income:              in.Income,
	}
}

func (tc *TripController) Create(c *gin.Context) {
	var body tripInput
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	trip, err := tc.trips.Create(c.Request.Context(), body.toService())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": trip})
}

func (tc *TripController) Update(c *gin.Context) {
	var body tripInput
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	trip, err := tc.trips.Update(c.Request.Context(), c.Param("id"), body.toService())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": trip})
}

func (tc *TripController) Get(c *gin.Context) {
	trip, err := tc.trips.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": trip})
}

// List accepts an optional ?schedule_number= filter.
func (tc *TripController) List(c *gin.Context) {
	trips, err := tc.trips.List(c.Request.Context(), c.Query("schedule_number"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, trips)
}

// Mine lists the trips of the calling driver's bus.
func (tc *TripController) Mine(c *gin.Context) {
	trips, err := tc.trips.ForDriver(c.Request.Context(), middleware.Username(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, trips)
}

func (tc *TripController) Delete(c *gin.Context) {
	if err := tc.trips.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Trip deleted"})
}
