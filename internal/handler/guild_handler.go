package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/jengzang/taste-records-go/internal/middleware"
	"github.com/jengzang/taste-records-go/internal/models"
	"github.com/jengzang/taste-records-go/internal/service"
	"github.com/jengzang/taste-records-go/pkg/response"
)

// GuildHandler handles HTTP requests for guilds and missions
type GuildHandler struct {
	service *service.GuildService
}

// NewGuildHandler creates a new guild handler
func NewGuildHandler(service *service.GuildService) *GuildHandler {
	return &GuildHandler{service: service}
}

// Create handles POST /api/v1/guilds
func (h *GuildHandler) Create(c *gin.Context) {
	var req models.CreateGuildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	g, err := h.service.Create(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Created(c, g)
}

// List handles GET /api/v1/guilds?mine=true
func (h *GuildHandler) List(c *gin.Context) {
	mine := c.Query("mine") == "true"
	guilds, err := h.service.List(c.Request.Context(), middleware.UserID(c), mine)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, guilds)
}

// Get handles GET /api/v1/guilds/:id
func (h *GuildHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	g, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, g)
}

// Join handles POST /api/v1/guilds/:id/join
func (h *GuildHandler) Join(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	g, err := h.service.Join(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, g)
}

// Leave handles POST /api/v1/guilds/:id/leave
func (h *GuildHandler) Leave(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Leave(c.Request.Context(), middleware.UserID(c), id); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, gin.H{"guildId": id})
}

// CreateMission handles POST /api/v1/guilds/:id/missions
func (h *GuildHandler) CreateMission(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req models.CreateMissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	m, err := h.service.CreateMission(c.Request.Context(), middleware.UserID(c), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Created(c, m)
}

// ListMissions handles GET /api/v1/guilds/:id/missions
func (h *GuildHandler) ListMissions(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	missions, err := h.service.ListMissions(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, missions)
}

// CompleteMission handles POST /api/v1/guilds/:id/missions/:missionId/complete
func (h *GuildHandler) CompleteMission(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	missionID, ok := paramID(c, "missionId")
	if !ok {
		return
	}

	m, err := h.service.CompleteMission(c.Request.Context(), middleware.UserID(c), id, missionID)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, m)
}
