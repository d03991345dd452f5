// Package handler exposes lead endpoints.
package handler

import (
	"net/http"

	"receptionist_backend/internal/leads/domain"
	"receptionist_backend/internal/leads/service"
	"receptionist_backend/internal/leads/transport"
	"receptionist_backend/platform/httpkit"
	"receptionist_backend/platform/logger"
	"receptionist_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

// Handler handles lead HTTP requests.
type Handler struct {
	svc *service.Service
	val *validator.Validator
	log *logger.Logger
}

// New creates a lead handler.
func New(svc *service.Service, val *validator.Validator, log *logger.Logger) *Handler {
	return &Handler{svc: svc, val: val, log: log}
}

// Create captures a lead submitted directly over HTTP.
func (h *Handler) Create(c *gin.Context) {
	var req transport.LeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	result, err := h.svc.CaptureDirect(c.Request.Context(), domain.Lead{
		ConversationID: req.ConversationID,
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		ContactMethod:  req.ContactMethod,
		PreferredTime:  req.PreferredTime,
		Intent:         req.Intent,
		Urgency:        req.Urgency,
		Summary:        req.Summary,
	})
	if err != nil {
		h.log.Error("lead capture failed", "error", err)
		httpkit.Error(c, http.StatusInternalServerError, "failed to save lead", nil)
		return
	}

	resp := transport.LeadResponse{OK: result.OK, Saved: result.Saved, Reason: result.Reason, Error: result.Error}
	if !result.OK {
		httpkit.JSON(c, http.StatusUnprocessableEntity, resp)
		return
	}
	httpkit.OK(c, resp)
}

// List returns all captured leads, newest first.
func (h *Handler) List(c *gin.Context) {
	leads, err := h.svc.List(c.Request.Context())
	if err != nil {
		h.log.Error("lead list failed", "error", err)
		httpkit.Error(c, http.StatusInternalServerError, "failed to list leads", nil)
		return
	}
	httpkit.OK(c, gin.H{"data": leads, "count": len(leads)})
}
