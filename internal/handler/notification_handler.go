package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/jengzang/taste-records-go/internal/middleware"
	"github.com/jengzang/taste-records-go/internal/service"
	"github.com/jengzang/taste-records-go/pkg/response"
)

// NotificationHandler handles HTTP requests for notifications
type NotificationHandler struct {
	service *service.NotificationService
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(service *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// List handles GET /api/v1/notifications?unread=true
func (h *NotificationHandler) List(c *gin.Context) {
	items, unread, err := h.service.List(c.Request.Context(), middleware.UserID(c), c.Query("unread") == "true")
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, gin.H{
		"data":   items,
		"unread": unread,
	})
}

// MarkRead handles POST /api/v1/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.service.MarkRead(c.Request.Context(), middleware.UserID(c), id); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, gin.H{"id": id})
}

// MarkAllRead handles POST /api/v1/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	n, err := h.service.MarkAllRead(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, gin.H{"updated": n})
}
