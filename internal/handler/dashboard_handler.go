package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/jengzang/taste-records-go/internal/middleware"
	"github.com/jengzang/taste-records-go/internal/service"
	"github.com/jengzang/taste-records-go/pkg/response"
)

// DashboardHandler serves preference dashboards
type DashboardHandler struct {
	service *service.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(service *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Personal handles GET /api/v1/dashboard/me
func (h *DashboardHandler) Personal(c *gin.Context) {
	d, err := h.service.Personal(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, d)
}

// Aggregate handles GET /api/v1/dashboard/aggregate
func (h *DashboardHandler) Aggregate(c *gin.Context) {
	d, err := h.service.Aggregate(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, d)
}
