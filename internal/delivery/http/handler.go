package http

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopscout/backend/internal/domain"
)

// ProductSearcher is what the handlers need from the product usecase
type ProductSearcher interface {
	SearchProducts(ctx context.Context, platform, query string) ([]domain.ProductRecord, error)
	Platforms() []domain.Platform
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	products ProductSearcher
}

// NewHandler creates a new HTTP handler. A nil searcher leaves the product
// endpoints answering 503.
func NewHandler(products ProductSearcher) *Handler {
	return &Handler{products: products}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "shopscout-backend",
		"version": "1.0.0",
	})
}

// SearchProducts handles GET /api/products/:platform/:query
func (h *Handler) SearchProducts(c *gin.Context) {
	if h.products == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Product search not configured",
		})
		return
	}

	platform := c.Param("platform")
	query := c.Param("query")

	records, err := h.products.SearchProducts(c.Request.Context(), platform, query)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidPlatform) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid platform"})
			return
		}
		log.Printf("[Handler] Search on %q failed: %v", platform, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Product search failed"})
		return
	}

	if records == nil {
		records = []domain.ProductRecord{}
	}
	c.JSON(http.StatusOK, records)
}

// ListPlatforms handles GET /api/platforms
func (h *Handler) ListPlatforms(c *gin.Context) {
	var platforms []domain.Platform
	if h.products != nil {
		platforms = h.products.Platforms()
	}
	if platforms == nil {
		platforms = []domain.Platform{}
	}
	c.JSON(http.StatusOK, gin.H{"platforms": platforms})
}
