// Package service implements lead capture.
package service

import (
	"context"
	"strings"

	"receptionist_backend/internal/conversation/stage"
	"receptionist_backend/internal/events"
	"receptionist_backend/internal/leads/domain"
	"receptionist_backend/platform/logger"
	"receptionist_backend/platform/phone"

	"github.com/google/uuid"
)

// Repository is the persistence surface the service needs.
type Repository interface {
	Save(ctx context.Context, lead domain.Lead) (int64, error)
	Exists(ctx context.Context, conversationID, email, phone string) (bool, error)
	List(ctx context.Context) ([]domain.Lead, error)
}

// ConversationProfiles is the slice of conversation persistence a direct
// lead submission needs.
type ConversationProfiles interface {
	EnsureConversation(ctx context.Context, conversationID string) error
	UpsertProfile(ctx context.Context, conversationID string, partial map[string]string) (map[string]string, error)
}

// Service captures and lists leads.
type Service struct {
	repo     Repository
	bus      events.Bus
	profiles ConversationProfiles
	log      *logger.Logger
}

// New creates the lead service.
func New(repo Repository, bus events.Bus, profiles ConversationProfiles, log *logger.Logger) *Service {
	return &Service{repo: repo, bus: bus, profiles: profiles, log: log}
}

// CaptureResult is the structured outcome of a capture attempt. Validation
// failures are results, not errors, so callers can turn them into follow-up
// questions.
type CaptureResult struct {
	OK     bool   `json:"ok"`
	Saved  bool   `json:"saved"`
	Error  string `json:"error,omitempty"`
	Reason string `json:"reason,omitempty"`
	LeadID int64  `json:"-"`
}

const (
	ErrMissingContact = "missing_contact"
	ErrMissingName    = "missing_name"
)

// Capture validates and persists a lead. A missing name or contact yields a
// tagged result; a repeat capture for the same conversation and contact is a
// no-op success. On save, a LeadCaptured event fans out to the webhook
// forwarder and email notifier.
func (s *Service) Capture(ctx context.Context, lead domain.Lead) (CaptureResult, error) {
	if lead.Email == "" && lead.Phone == "" {
		return CaptureResult{OK: false, Saved: false, Error: ErrMissingContact}, nil
	}
	if lead.Name == "" {
		return CaptureResult{OK: false, Saved: false, Error: ErrMissingName}, nil
	}

	if lead.Phone != "" {
		lead.Phone = phone.NormalizeE164(lead.Phone)
	}
	lead.ContactMethod = domain.NormalizeContactMethod(lead.ContactMethod, lead.Phone)
	if lead.Intent == "" {
		lead.Intent = "other"
	}
	if lead.Urgency == "" {
		lead.Urgency = "unknown"
	}

	duplicate, err := s.repo.Exists(ctx, lead.ConversationID, lead.Email, lead.Phone)
	if err != nil {
		return CaptureResult{}, err
	}
	if duplicate {
		return CaptureResult{OK: true, Saved: false, Reason: "duplicate"}, nil
	}

	id, err := s.repo.Save(ctx, lead)
	if err != nil {
		return CaptureResult{}, err
	}

	s.bus.Publish(ctx, events.LeadCaptured{
		BaseEvent:      events.NewBaseEvent(),
		LeadID:         id,
		ConversationID: lead.ConversationID,
		Name:           lead.Name,
		Email:          lead.Email,
		Phone:          lead.Phone,
		ContactMethod:  lead.ContactMethod,
		PreferredTime:  lead.PreferredTime,
		Intent:         lead.Intent,
		Urgency:        lead.Urgency,
		Summary:        lead.Summary,
		Profile:        lead.Profile,
	})
	s.log.Info("lead captured", "lead_id", id, "conversation_id", lead.ConversationID)

	return CaptureResult{OK: true, Saved: true, LeadID: id}, nil
}

// CaptureDirect handles a lead submitted outside the chat loop, such as a
// contact form. It ensures the conversation exists (generating an id when
// absent), merges the submitted fields into the conversation profile,
// recomputes the funnel stage, and captures the lead with the merged profile
// snapshot.
func (s *Service) CaptureDirect(ctx context.Context, lead domain.Lead) (CaptureResult, error) {
	if lead.ConversationID == "" {
		lead.ConversationID = uuid.NewString()
	}
	if err := s.profiles.EnsureConversation(ctx, lead.ConversationID); err != nil {
		return CaptureResult{}, err
	}

	merged, err := s.profiles.UpsertProfile(ctx, lead.ConversationID, map[string]string{
		"contact_name":  strings.TrimSpace(lead.Name),
		"contact_email": strings.TrimSpace(lead.Email),
		"contact_phone": strings.TrimSpace(lead.Phone),
		"intent":        strings.TrimSpace(lead.Intent),
		"urgency":       strings.TrimSpace(firstNonEmpty(lead.Urgency, "unknown")),
		"summary":       strings.TrimSpace(lead.Summary),
	})
	if err != nil {
		return CaptureResult{}, err
	}

	stageAfter, _ := stage.Compute(merged)
	merged, err = s.profiles.UpsertProfile(ctx, lead.ConversationID, map[string]string{"stage": stageAfter})
	if err != nil {
		return CaptureResult{}, err
	}

	lead.Profile = merged
	return s.Capture(ctx, lead)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// List returns all captured leads.
func (s *Service) List(ctx context.Context) ([]domain.Lead, error) {
	return s.repo.List(ctx)
}
