package api

import (
	"log"
	"net/http"
	"strconv"

	"chatbridge/internal/dispatch"
	"chatbridge/internal/models"
	"chatbridge/internal/store"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	logs   *store.MessageLogStore
	sender dispatch.Sender
}

func NewDashboardHandler(logs *store.MessageLogStore, sender dispatch.Sender) *DashboardHandler {
	return &DashboardHandler{logs: logs, sender: sender}
}

// GetMessages lists audit log entries, newest first.
// Supports ?phone=, ?direction= and ?limit= filters.
func (h *DashboardHandler) GetMessages(c *gin.Context) {
	limit := 100
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	entries, err := h.logs.List(c.Request.Context(), c.Query("phone"), c.Query("direction"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, entries)
}

type SendRequest struct {
	To      string `json:"to" binding:"required"`
	Content string `json:"content" binding:"required"`
}

// SendMessage sends a manual outbound message and records it in the audit
// log like any reply the dispatcher sends.
func (h *DashboardHandler) SendMessage(c *gin.Context) {
	var req SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status := "sent"
	providerID, err := h.sender.SendMessage(c.Request.Context(), req.To, req.Content)
	if err != nil {
		log.Printf("Error sending manual message to %s: %v", req.To, err)
		status = "failed"
	}

	if logErr := h.logs.Append(c.Request.Context(), &models.MessageLog{
		Direction:   models.DirectionOut,
		PhoneNumber: req.To,
		Message:     req.Content,
		Status:      status,
		MessageID:   providerID,
	}); logErr != nil {
		log.Printf("Error logging manual message to %s: %v", req.To, logErr)
	}

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send message: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "Message sent", "message_id": providerID})
}
