package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/jengzang/taste-records-go/internal/middleware"
	"github.com/jengzang/taste-records-go/internal/models"
	"github.com/jengzang/taste-records-go/internal/service"
	"github.com/jengzang/taste-records-go/pkg/response"
)

// StayHandler handles HTTP requests for stays
type StayHandler struct {
	service *service.StayService
}

// NewStayHandler creates a new stay handler
func NewStayHandler(service *service.StayService) *StayHandler {
	return &StayHandler{service: service}
}

// CreateStay handles POST /api/v1/stays
func (h *StayHandler) CreateStay(c *gin.Context) {
	var req models.CreateStayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	stay, err := h.service.CreateStay(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Created(c, stay)
}

// GetStays handles GET /api/v1/stays
func (h *StayHandler) GetStays(c *gin.Context) {
	var filter models.StayFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}
	filter.UserID = middleware.UserID(c)

	result, err := h.service.GetStays(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, result)
}

// GetStayByID handles GET /api/v1/stays/:id
func (h *StayHandler) GetStayByID(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	stay, err := h.service.GetStayByID(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, stay)
}
