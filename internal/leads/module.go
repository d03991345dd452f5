// Package leads provides the lead capture bounded context module.
package leads

import (
	"context"

	"receptionist_backend/internal/config"
	"receptionist_backend/internal/email"
	"receptionist_backend/internal/events"
	apphttp "receptionist_backend/internal/http"
	"receptionist_backend/internal/leads/handler"
	"receptionist_backend/internal/leads/repository"
	"receptionist_backend/internal/leads/service"
	"receptionist_backend/internal/scheduler"
	"receptionist_backend/platform/logger"
	"receptionist_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
)

// Notifier sends a lead summary to the team inbox.
type Notifier interface {
	SendLeadNotification(ctx context.Context, n email.LeadNotification) error
}

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

var _ apphttp.Module = (*Module)(nil)

// NewModule creates and initializes the leads module with all its dependencies.
// The forwarder and notifier may be nil when the webhook or SMTP delivery is
// not configured.
func NewModule(pool *pgxpool.Pool, bus events.Bus, val *validator.Validator, cfg *config.Config, log *logger.Logger, profiles service.ConversationProfiles, forwarder scheduler.WebhookForwarder, notifier Notifier) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, bus, profiles, log)

	// Fan captured leads out to the webhook queue and the team inbox.
	bus.Subscribe(events.LeadCaptured{}.EventName(), events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		e, ok := event.(events.LeadCaptured)
		if !ok {
			return nil
		}

		g, gctx := errgroup.WithContext(ctx)

		if forwarder != nil && cfg.LeadsWebhookURL != "" {
			g.Go(func() error {
				if err := forwarder.EnqueueLeadWebhookForward(gctx, scheduler.LeadWebhookPayload{
					LeadID:         e.LeadID,
					ConversationID: e.ConversationID,
					Name:           e.Name,
					Email:          e.Email,
					Phone:          e.Phone,
					ContactMethod:  e.ContactMethod,
					PreferredTime:  e.PreferredTime,
					Intent:         e.Intent,
					Urgency:        e.Urgency,
					Summary:        e.Summary,
					Profile:        e.Profile,
				}); err != nil {
					log.Error("failed to enqueue lead webhook", "error", err, "lead_id", e.LeadID)
				}
				return nil
			})
		}

		if notifier != nil {
			g.Go(func() error {
				if err := notifier.SendLeadNotification(gctx, email.LeadNotification{
					Name:           e.Name,
					Email:          e.Email,
					Phone:          e.Phone,
					ContactMethod:  e.ContactMethod,
					Intent:         e.Intent,
					Urgency:        e.Urgency,
					Summary:        e.Summary,
					ConversationID: e.ConversationID,
				}); err != nil {
					log.Error("failed to send lead notification", "error", err, "lead_id", e.LeadID)
				}
				return nil
			})
		}

		return g.Wait()
	}))

	h := handler.New(svc, val, log)

	return &Module{handler: h, service: svc}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Service returns the lead service for use by the conversation module.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes registers lead routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.API.POST("/lead", m.handler.Create)
	ctx.Admin.GET("/leads", m.handler.List)
}
