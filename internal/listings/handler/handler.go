// Package handler exposes the listings feed over HTTP.
package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"receptionist_backend/internal/listings/feed"
	"receptionist_backend/platform/httpkit"
)

// Handler handles HTTP requests for listings.
type Handler struct {
	source *feed.Source
}

// New creates a new listings handler.
func New(source *feed.Source) *Handler {
	return &Handler{source: source}
}

// List returns the full feed, or a ranked subset when filters are present.
// GET /api/listings
func (h *Handler) List(c *gin.Context) {
	ctx := c.Request.Context()

	if len(c.Request.URL.Query()) == 0 {
		httpkit.OK(c, gin.H{"data": h.source.Load(ctx)})
		return
	}

	q := feed.Query{Location: c.Query("location")}
	if v, ok := intParam(c, "beds"); ok {
		q.Beds = &v
	}
	if v, ok := floatParam(c, "baths"); ok {
		q.Baths = &v
	}
	if v, ok := intParam(c, "sqft_target"); ok {
		q.SqftTarget = &v
	}
	if v, ok := intParam(c, "price_min"); ok {
		q.PriceMin = &v
	}
	if v, ok := intParam(c, "price_max"); ok {
		q.PriceMax = &v
	}
	if v, ok := floatParam(c, "acreage_min"); ok {
		q.AcreageMin = &v
	}
	if v, ok := floatParam(c, "acreage_max"); ok {
		q.AcreageMax = &v
	}
	if v, ok := intParam(c, "limit"); ok {
		q.Limit = v
	}

	items := h.source.Search(ctx, q)
	httpkit.JSON(c, http.StatusOK, gin.H{"data": items, "count": len(items)})
}

func intParam(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func floatParam(c *gin.Context, name string) (float64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
