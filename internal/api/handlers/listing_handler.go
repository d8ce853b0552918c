package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Wikid82/autosource/backend/internal/api/middleware"
	"github.com/Wikid82/autosource/backend/internal/catalog"
	"github.com/Wikid82/autosource/backend/internal/models"
	"github.com/Wikid82/autosource/backend/internal/services"
)

// ListingHandler serves the admin listings screen.
type ListingHandler struct {
	listings *services.ListingService
}

func NewListingHandler(listings *services.ListingService) *ListingHandler {
	return &ListingHandler{listings: listings}
}

func (h *ListingHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/listings", h.List)
	router.POST("/listings", h.Create)
	router.POST("/listings/bulk-status", h.BulkStatus)
	router.POST("/listings/import", h.Import)
	router.GET("/listings/:id", h.Get)
	router.PUT("/listings/:id", h.Update)
	router.DELETE("/listings/:id", h.Delete)
}

func (h *ListingHandler) List(c *gin.Context) {
	res, err := h.listings.Query(c.Request.Context(), services.ListingQueryRequest{
		Params: queryParams(c),
		Scope:  catalog.ScopeAdmin,
		Actor:  middleware.Actor(c),
	})
	if err != nil {
		respondError(c, "query_listings", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *ListingHandler) Get(c *gin.Context) {
	listing, err := h.listings.Get(c.Request.Context(), c.Param("id"), catalog.ScopeAdmin, middleware.Actor(c))
	if err != nil {
		respondError(c, "get_listing", err)
		return
	}
	c.JSON(http.StatusOK, listing)
}

func (h *ListingHandler) Create(c *gin.Context) {
	var input services.ListingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	listing, err := h.listings.Create(c.Request.Context(), input, middleware.Actor(c))
	if err != nil {
		respondError(c, "create_listing", err)
		return
	}
	c.JSON(http.StatusCreated, listing)
}

func (h *ListingHandler) Update(c *gin.Context) {
	var input services.ListingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	listing, err := h.listings.Update(c.Request.Context(), c.Param("id"), input, middleware.Actor(c))
	if err != nil {
		respondError(c, "update_listing", err)
		return
	}
	c.JSON(http.StatusOK, listing)
}

func (h *ListingHandler) Delete(c *gin.Context) {
	if err := h.listings.Delete(c.Request.Context(), c.Param("id"), middleware.Actor(c)); err != nil {
		respondError(c, "delete_listing", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Listing deleted"})
}

type bulkStatusRequest struct {
	IDs    []string             `json:"ids" binding:"required"`
	Status models.ListingStatus `json:"status" binding:"required"`
}

func (h *ListingHandler) BulkStatus(c *gin.Context) {
	var req bulkStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.listings.BulkUpdateStatus(c.Request.Context(), req.IDs, req.Status, middleware.Actor(c))
	if err != nil {
		respondError(c, "bulk_update_listing_status", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type importRequest struct {
	Listings []services.ListingInput `json:"listings" binding:"required"`
}

func (h *ListingHandler) Import(c *gin.Context) {
	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.listings.Import(c.Request.Context(), req.Listings, middleware.Actor(c))
	if err != nil {
		respondError(c, "import_listings", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"imported": len(created), "listings": created})
}
