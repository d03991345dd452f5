// Package conversation provides the chat bounded context module.
package conversation

import (
	"context"

	"receptionist_backend/internal/config"
	"receptionist_backend/internal/conversation/handler"
	"receptionist_backend/internal/conversation/repository"
	"receptionist_backend/internal/conversation/service"
	apphttp "receptionist_backend/internal/http"
	"receptionist_backend/platform/ai"
	"receptionist_backend/platform/logger"
	"receptionist_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the conversation bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	repo    *repository.Repo
}

var _ apphttp.Module = (*Module)(nil)
var _ apphttp.HealthChecker = (*Module)(nil)

// NewModule creates and initializes the conversation module. When chat
// history persistence is disabled, prior conversations are wiped at boot.
func NewModule(ctx context.Context, pool *pgxpool.Pool, provider ai.Provider, listings service.ListingsFeed, leads service.LeadSink, val *validator.Validator, cfg *config.Config, log *logger.Logger) (*Module, error) {
	repo := repository.New(pool)

	if !cfg.PersistChatHistory {
		if err := repo.ClearHistory(ctx); err != nil {
			return nil, err
		}
		log.Info("chat history cleared at startup")
	}

	svc := service.New(provider, repo, listings, leads, cfg.SystemPromptPath, log)
	h := handler.New(svc, val, log)

	return &Module{handler: h, repo: repo}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "conversation"
}

// Ping verifies database connectivity for the health endpoint.
func (m *Module) Ping(ctx context.Context) error {
	return m.repo.Ping(ctx)
}

// RegisterRoutes registers conversation routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.API.POST("/chat", m.handler.Chat)
	ctx.Admin.GET("/profiles", m.handler.Profiles)
	ctx.Admin.POST("/reset", m.handler.Reset)
}
