package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/enroll-admin-api/internal/service"
	"github.com/noah-isme/enroll-admin-api/pkg/response"
)

// StatsHandler exposes dashboard aggregate endpoints.
type StatsHandler struct {
	service *service.StatsService
}

// NewStatsHandler constructs a stats handler.
func NewStatsHandler(svc *service.StatsService) *StatsHandler {
	return &StatsHandler{service: svc}
}

// Totals returns per-collection record counts.
func (h *StatsHandler) Totals(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.Totals(c.Request.Context()))
}

// Occupancy returns seat usage and qualification aggregates.
func (h *StatsHandler) Occupancy(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.Occupancy(c.Request.Context()))
}
