package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fleet_tracker/internal/services"
)

type RouteController struct {
	routes *services.RouteService
}

func NewRouteController(routes *services.RouteService) *RouteController {
	return &RouteController{routes: routes}
}

type routeInput struct {
	RouteName     string  `json:"route_name" binding:"required"`
	StartingPoint string  `json:"starting_point"`
	EndingPoint   string  `json:"ending_point"`
	Distance      float64 `json:"distance" binding:"gte=0"`
}

func (in routeInput) toService() services.RouteInput {
	return services.RouteInput{
		RouteName:     in.RouteName,
		StartingPoint: in.StartingPoint,
		EndingPoint:   in.EndingPoint,
		Distance:      in.Distance,
	}
}

func (rc *RouteController) Create(c *gin.Context) {
	var body routeInput
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	route, err := rc.routes.Create(c.Request.Context(), body.toService())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": route})
}

func (rc *RouteController) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var body routeInput
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	route, err := rc.routes.Update(c.Request.Context(), id, body.toService())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": route})
}

func (rc *RouteController) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	route, err := rc.routes.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": route})
}

func (rc *RouteController) List(c *gin.Context) {
	routes, err := rc.routes.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": routes})
}

func (rc *RouteController) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := rc.routes.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Route deleted"})
}
