package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Wikid82/autosource/backend/internal/api/middleware"
	"github.com/Wikid82/autosource/backend/internal/services"
	"github.com/Wikid82/autosource/backend/internal/util"
)

// LeadHandler serves public lead capture and the admin pipeline.
type LeadHandler struct {
	leads *services.LeadService
}

func NewLeadHandler(leads *services.LeadService) *LeadHandler {
	return &LeadHandler{leads: leads}
}

// RegisterPublicRoutes registers the form submission endpoint.
func (h *LeadHandler) RegisterPublicRoutes(router *gin.RouterGroup) {
	router.POST("/leads", h.Create)
}

// RegisterAdminRoutes registers the pipeline endpoints on an authenticated group.
func (h *LeadHandler) RegisterAdminRoutes(router *gin.RouterGroup) {
	router.GET("/leads", h.List)
	router.GET("/leads/stats", h.Stats)
	router.GET("/leads/:id", h.Get)
	router.PATCH("/leads/:id/status", h.UpdateStatus)
	router.DELETE("/leads/:id", h.Delete)
}

func (h *LeadHandler) Create(c *gin.Context) {
	var input services.LeadInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lead, err := h.leads.Create(c.Request.Context(), input)
	if err != nil {
		respondError(c, "create_lead", err)
		return
	}
	middleware.GetRequestLogger(c).WithField("lead_id", lead.ID).
		WithField("contact", util.MaskContact(lead.Contact)).Info("Lead captured")
	c.JSON(http.StatusCreated, gin.H{"id": lead.ID, "status": lead.Status})
}

func (h *LeadHandler) List(c *gin.Context) {
	res, err := h.leads.Query(c.Request.Context(), queryParams(c), middleware.Actor(c))
	if err != nil {
		respondError(c, "query_leads", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *LeadHandler) Get(c *gin.Context) {
	lead, err := h.leads.Get(c.Request.Context(), c.Param("id"), middleware.Actor(c))
	if err != nil {
		respondError(c, "get_lead", err)
		return
	}
	c.JSON(http.StatusOK, lead)
}

type leadStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *LeadHandler) UpdateStatus(c *gin.Context) {
	var req leadStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lead, err := h.leads.Transition(c.Request.Context(), c.Param("id"), req.Status, middleware.Actor(c))
	if err != nil {
		respondError(c, "update_lead_status", err)
		return
	}
	c.JSON(http.StatusOK, lead)
}

func (h *LeadHandler) Delete(c *gin.Context) {
	removed, err := h.leads.Delete(c.Request.Context(), c.Param("id"), middleware.Actor(c))
	if err != nil {
		respondError(c, "delete_lead", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Lead deleted", "lead": removed})
}

func (h *LeadHandler) Stats(c *gin.Context) {
	stats, err := h.leads.Stats(c.Request.Context(), middleware.Actor(c))
	if err != nil {
		respondError(c, "lead_stats", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
