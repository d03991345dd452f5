// Package handler exposes the chat and admin conversation endpoints.
package handler

import (
	"net/http"

	"receptionist_backend/internal/conversation/service"
	"receptionist_backend/internal/conversation/transport"
	"receptionist_backend/platform/httpkit"
	"receptionist_backend/platform/logger"
	"receptionist_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

// Handler handles conversation HTTP requests.
type Handler struct {
	svc *service.Service
	val *validator.Validator
	log *logger.Logger
}

// New creates a conversation handler.
func New(svc *service.Service, val *validator.Validator, log *logger.Logger) *Handler {
	return &Handler{svc: svc, val: val, log: log}
}

// Chat processes one visitor message.
func (h *Handler) Chat(c *gin.Context) {
	var req transport.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	result, err := h.svc.Turn(c.Request.Context(), service.TurnInput{
		ConversationID: req.ConversationID,
		Message:        req.Message,
	})
	if err != nil {
		h.log.WithConversationID(req.ConversationID).Error("turn failed", "error", err)
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, transport.ChatResponse{
		Reply:          result.Reply,
		Routing:        result.Routing,
		ConversationID: result.ConversationID,
		Profile:        result.Profile,
		LeadCaptured:   result.LeadCaptured,
	})
}

// Profiles returns all tracked conversation profiles, newest first.
func (h *Handler) Profiles(c *gin.Context) {
	profiles, err := h.svc.ListProfiles(c.Request.Context())
	if err != nil {
		h.log.Error("profile list failed", "error", err)
		httpkit.Error(c, http.StatusInternalServerError, "failed to list profiles", nil)
		return
	}
	httpkit.OK(c, gin.H{"data": profiles, "count": len(profiles)})
}

// Reset clears all conversations, messages, and profiles.
func (h *Handler) Reset(c *gin.Context) {
	if err := h.svc.Reset(c.Request.Context()); err != nil {
		h.log.Error("history reset failed", "error", err)
		httpkit.Error(c, http.StatusInternalServerError, "failed to reset history", nil)
		return
	}
	httpkit.OK(c, gin.H{"ok": true})
}
