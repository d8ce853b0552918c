package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Wikid82/autosource/backend/internal/catalog"
	"github.com/Wikid82/autosource/backend/internal/services"
)

// CatalogHandler serves the public stock page.
type CatalogHandler struct {
	listings *services.ListingService
}

func NewCatalogHandler(listings *services.ListingService) *CatalogHandler {
	return &CatalogHandler{listings: listings}
}

func (h *CatalogHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/catalog", h.List)
	router.GET("/catalog/:id", h.Get)
}

func (h *CatalogHandler) List(c *gin.Context) {
	res, err := h.listings.Query(c.Request.Context(), services.ListingQueryRequest{
		Params: queryParams(c),
		Scope:  catalog.ScopePublic,
	})
	if err != nil {
		respondError(c, "query_catalog", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *CatalogHandler) Get(c *gin.Context) {
	listing, err := h.listings.Get(c.Request.Context(), c.Param("id"), catalog.ScopePublic, "")
	if err != nil {
		respondError(c, "get_catalog_listing", err)
		return
	}
	c.JSON(http.StatusOK, listing)
}
