package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fleet_tracker/internal/services"
)

type DashboardController struct {
	reports *services.ReportService
}

func NewDashboardController(reports *services.ReportService) *DashboardController {
	return &DashboardController{reports: reports}
}

// Get takes ?period=today|this_month|last_month, default today.
func (dc *DashboardController) Get(c *gin.Context) {
	d, err := dc.reports.Dashboard(c.Request.Context(), c.Query("period"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": d})
}

// BusReport takes the bus number in the path and a ?from=&to= date range.
func (dc *DashboardController) BusReport(c *gin.Context) {
	r, err := dc.reports.BusReport(c.Request.Context(), c.Param("number"), c.Query("from"), c.Query("to"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": r})
}

// FleetReport takes a ?from=&to= date range.
func (dc *DashboardController) FleetReport(c *gin.Context) {
	r, err := dc.reports.FleetReport(c.Request.Context(), c.Query("from"), c.Query("to"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": r})
}
