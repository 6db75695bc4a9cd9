package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/jengzang/taste-records-go/internal/middleware"
	"github.com/jengzang/taste-records-go/internal/models"
	"github.com/jengzang/taste-records-go/internal/service"
	"github.com/jengzang/taste-records-go/pkg/response"
)

// TasteRecordHandler handles HTTP requests for taste records
type TasteRecordHandler struct {
	service *service.TasteRecordService
}

// NewTasteRecordHandler creates a new taste record handler
func NewTasteRecordHandler(service *service.TasteRecordService) *TasteRecordHandler {
	return &TasteRecordHandler{service: service}
}

// Create handles POST /api/v1/taste-records
func (h *TasteRecordHandler) Create(c *gin.Context) {
	var in models.TasteRecordInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	rec, err := h.service.Create(c.Request.Context(), middleware.UserID(c), in)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Created(c, rec)
}

// List handles GET /api/v1/taste-records
func (h *TasteRecordHandler) List(c *gin.Context) {
	var filter models.TasteRecordFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}
	filter.UserID = middleware.UserID(c)

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, result)
}

// Get handles GET /api/v1/taste-records/:id
func (h *TasteRecordHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	rec, err := h.service.Get(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, rec)
}

// Update handles PUT /api/v1/taste-records/:id
func (h *TasteRecordHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var in models.TasteRecordInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	rec, err := h.service.Update(c.Request.Context(), middleware.UserID(c), id, in)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, rec)
}

// Delete handles DELETE /api/v1/taste-records/:id
func (h *TasteRecordHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), middleware.UserID(c), id); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, gin.H{"id": id})
}

// Categories handles GET /api/v1/categories
func (h *TasteRecordHandler) Categories(c *gin.Context) {
	response.Success(c, models.Categories)
}
