package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Wikid82/autosource/backend/internal/api/middleware"
	"github.com/Wikid82/autosource/backend/internal/services"
)

type AuditHandler struct {
	audit *services.AuditService
}

func NewAuditHandler(audit *services.AuditService) *AuditHandler {
	return &AuditHandler{audit: audit}
}

func (h *AuditHandler) List(c *gin.Context) {
	res, err := h.audit.List(c.Request.Context(), queryParams(c), middleware.Actor(c))
	if err != nil {
		respondError(c, "list_audit", err)
		return
	}
	c.JSON(http.StatusOK, res)
}
