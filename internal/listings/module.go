// Package listings provides the property listings bounded context module.
package listings

import (
	"github.com/redis/go-redis/v9"

	"receptionist_backend/internal/config"
	apphttp "receptionist_backend/internal/http"
	"receptionist_backend/internal/listings/feed"
	"receptionist_backend/internal/listings/handler"
	"receptionist_backend/platform/logger"
)

// Module is the listings bounded context module implementing http.Module.
type Module struct {
	source  *feed.Source
	handler *handler.Handler
}

// NewModule creates and initializes the listings module.
func NewModule(cfg *config.Config, rdb *redis.Client, log *logger.Logger) *Module {
	source := feed.NewSource(cfg.ListingsFeedURL, cfg.ListingsCacheTTL, rdb, log)
	return &Module{
		source:  source,
		handler: handler.New(source),
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "listings"
}

// Source returns the feed source for other modules (the chat tools).
func (m *Module) Source() *feed.Source {
	return m.source
}

// RegisterRoutes mounts listings routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.API.GET("/listings", m.handler.List)
}

var _ apphttp.Module = (*Module)(nil)
