package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"real-estate-site/internal/catalog"
	"real-estate-site/internal/editor"
	"real-estate-site/internal/search"

	"github.com/gin-gonic/gin"
)

// PublicHandler serves the catalog pages consumed by the public site
type PublicHandler struct {
	catalog      *catalog.Catalog
	searchClient *search.SearchClient
}

// NewPublicHandler creates a new public handler
func NewPublicHandler(cat *catalog.Catalog, searchClient *search.SearchClient) *PublicHandler {
	return &PublicHandler{catalog: cat, searchClient: searchClient}
}

// ListProperties returns the full catalog, newest first
func (h *PublicHandler) ListProperties(c *gin.Context) {
	properties, err := h.catalog.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"properties": properties,
		"count":      len(properties),
	})
}

// GetFeatured returns the newest properties for the landing page
func (h *PublicHandler) GetFeatured(c *gin.Context) {
	limitStr := c.DefaultQuery("limit", "3")
	limit, _ := strconv.Atoi(limitStr)
	if limit <= 0 {
		limit = 3
	}

	properties, err := h.catalog.Featured(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"properties": properties,
		"count":      len(properties),
	})
}

// GetProperty returns a single property by id
func (h *PublicHandler) GetProperty(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid property id"})
		return
	}

	property, err := h.catalog.GetByID(id)
	if err != nil {
		if errors.Is(err, editor.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "property not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, property)
}

// SearchProperties performs a full-text search with optional price filters.
// Without a query or filters it falls back to the database catalog.
func (h *PublicHandler) SearchProperties(c *gin.Context) {
	query := c.Query("q")

	params := search.FilterParams{
		Query:  query,
		SortBy: c.Query("sort"),
	}
	if minStr := c.Query("min_price"); minStr != "" {
		if min, err := strconv.ParseFloat(minStr, 64); err == nil {
			params.MinPrice = &min
		}
	}
	if maxStr := c.Query("max_price"); maxStr != "" {
		if max, err := strconv.ParseFloat(maxStr, 64); err == nil {
			params.MaxPrice = &max
		}
	}
	if limitStr := c.Query("limit"); limitStr != "" {
		if limit, err := strconv.ParseInt(limitStr, 10, 64); err == nil && limit > 0 {
			params.Limit = limit
		}
	}

	if h.searchClient == nil || (query == "" && params.MinPrice == nil && params.MaxPrice == nil) {
		h.ListProperties(c)
		return
	}

	docs, err := h.searchClient.FilterSearch(params)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"properties": docs,
		"count":      len(docs),
	})
}
