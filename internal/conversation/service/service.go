// Package service implements the conversation turn pipeline: fact
// extraction, stage tracking, the bounded tool-call loop, routing
// reconciliation, and reply shaping.
package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"receptionist_backend/internal/conversation/extract"
	"receptionist_backend/internal/conversation/repository"
	"receptionist_backend/internal/conversation/routing"
	"receptionist_backend/internal/conversation/stage"
	"receptionist_backend/internal/listings/feed"
	"receptionist_backend/platform/ai"
	"receptionist_backend/platform/apperr"
	"receptionist_backend/platform/logger"
)

const historyLimit = 30

// Reply overrides when a log_lead call failed validation mid-turn.
const (
	namePromptReply    = "Thanks—what’s the best full name to put on the order?"
	contactPromptReply = "Thanks—what’s the best email or phone number to confirm this?"
)

// Store is the conversation persistence surface the orchestrator needs.
type Store interface {
	ProfileStore
	EnsureConversation(ctx context.Context, conversationID string) error
	GetMessages(ctx context.Context, conversationID string, limit int) ([]repository.Message, error)
	LogMessage(ctx context.Context, conversationID, role, content string, routing map[string]string) error
	ListProfiles(ctx context.Context) ([]repository.ProfileRecord, error)
	ClearHistory(ctx context.Context) error
}

// ListingsFeed loads the current inventory for prompt context and serves
// tool searches.
type ListingsFeed interface {
	ListingsSource
	Load(ctx context.Context) []feed.Listing
}

// TurnInput is one incoming visitor message.
type TurnInput struct {
	ConversationID string
	Message        string
}

// TurnResult is the finished turn returned to the HTTP layer.
type TurnResult struct {
	Reply          string            `json:"reply"`
	Routing        map[string]string `json:"routing"`
	ConversationID string            `json:"conversation_id"`
	Profile        map[string]string `json:"profile"`
	LeadCaptured   bool              `json:"lead_captured"`
}

// Service orchestrates conversation turns.
type Service struct {
	provider         ai.Provider
	store            Store
	listings         ListingsFeed
	loop             conversationLoop
	systemPromptPath string
	log              *logger.Logger
}

// New creates the conversation service.
func New(provider ai.Provider, store Store, listings ListingsFeed, leads LeadSink, systemPromptPath string, log *logger.Logger) *Service {
	return &Service{
		provider: provider,
		store:    store,
		listings: listings,
		loop: conversationLoop{
			provider: provider,
			tools: dispatcher{
				listings: listings,
				leads:    leads,
				profiles: store,
				log:      log,
			},
			log: log,
		},
		systemPromptPath: systemPromptPath,
		log:              log,
	}
}

// Turn processes one visitor message end to end and returns the shaped
// reply with its canonical routing decision.
func (s *Service) Turn(ctx context.Context, input TurnInput) (TurnResult, error) {
	conversationID := input.ConversationID
	if conversationID == "" {
		conversationID = uuid.NewString()
	}
	if err := s.store.EnsureConversation(ctx, conversationID); err != nil {
		return TurnResult{}, err
	}

	history, err := s.store.GetMessages(ctx, conversationID, historyLimit)
	if err != nil {
		return TurnResult{}, err
	}
	assistantTurns := 0
	for _, msg := range history {
		if msg.Role == ai.RoleAssistant {
			assistantTurns++
		}
	}

	existingProfile, err := s.store.GetProfile(ctx, conversationID)
	if err != nil {
		return TurnResult{}, err
	}
	stageBefore, focusBefore := stage.Compute(existingProfile)
	extracted := extract.Fields(input.Message)
	allowSchedule := shouldOfferSchedule(stageBefore, input.Message, extracted, existingProfile)

	messages := s.assembleMessages(ctx, existingProfile, stageBefore, focusBefore, history, input.Message)

	useTools := s.provider.Name() != "fake"
	var rawText string
	var events []toolEvent
	if useTools {
		rawText, events, err = s.loop.run(ctx, messages, conversationID, existingProfile, append(primaryToolDefs(), routingToolDefs()...), ai.ToolChoice{})
	} else {
		rawText, err = s.provider.Generate(ctx, messages)
	}
	if err != nil {
		s.log.ProviderError(s.provider.Name(), "chat", err)
		return TurnResult{}, apperr.Wrap(apperr.KindUpstream, fmt.Sprintf("AI provider error: %v", err), err).WithOp("conversation.Turn")
	}

	if err := s.store.LogMessage(ctx, conversationID, ai.RoleUser, input.Message, nil); err != nil {
		return TurnResult{}, err
	}

	parsed := routing.ParseReply(rawText)
	toolRouting := routingFromEvents(events)
	if useTools && toolRouting == nil {
		if decision := s.loop.runRoutingSubCall(ctx, input.Message, parsed.Text); decision != nil {
			toolRouting = decision
			events = append(events, toolEvent{
				Name:      toolRecordRouting,
				Arguments: toInterfaceMap(decision.ToMap()),
				Result:    toInterfaceMap(decision.ToMap()),
			})
		}
	}
	final := routing.Resolve(toolRouting, parsed, input.Message, assistantTurns)

	partial := make(map[string]string, len(extracted)+4)
	for key, value := range extracted {
		partial[key] = value
	}
	if final.Intent != "" {
		partial["intent"] = final.Intent
	}
	if final.Urgency != "" {
		partial["urgency"] = final.Urgency
	}
	if final.Summary != "" {
		partial["summary"] = final.Summary
	}
	merged := make(map[string]string, len(existingProfile)+len(partial))
	for key, value := range existingProfile {
		merged[key] = value
	}
	for key, value := range partial {
		if value != "" {
			merged[key] = value
		}
	}
	stageAfter, focusAfter := stage.Compute(merged)
	partial["stage"] = stageAfter

	profile, err := s.store.UpsertProfile(ctx, conversationID, partial)
	if err != nil {
		return TurnResult{}, err
	}
	final.Stage = stageAfter

	contactAck := contactAcknowledgment(existingProfile, profile)
	cleanReply := postProcessReply(parsed.Text, contactAck)

	leadCaptured := false
	if event := lastLogLeadEvent(events); event != nil {
		ok, _ := event.Result["ok"].(bool)
		if !ok {
			switch event.Result["error"] {
			case "missing_name":
				cleanReply = namePromptReply
				final.NextStep = "ask_contact"
				final.LeadCapture = "yes"
			case "missing_contact":
				cleanReply = contactPromptReply
				final.NextStep = "ask_contact"
				final.LeadCapture = "yes"
			}
		} else {
			leadCaptured = true
			if cleanReply == "" {
				name := firstNonEmpty(argString(event.Arguments, "name"), "there")
				contact := firstNonEmpty(argString(event.Arguments, "phone"), argString(event.Arguments, "email"), "your contact info")
				cleanReply = fmt.Sprintf("Thanks %s. We'll contact you at %s. We look forward to seeing you soon!", name, contact)
			}
		}
	}
	if cleanReply == "" {
		cleanReply = stage.FallbackQuestion(focusAfter, allowSchedule)
	}

	routingMap := final.ToMap()
	if err := s.store.LogMessage(ctx, conversationID, ai.RoleAssistant, cleanReply, routingMap); err != nil {
		return TurnResult{}, err
	}

	return TurnResult{
		Reply:          cleanReply,
		Routing:        routingMap,
		ConversationID: conversationID,
		Profile:        profile,
		LeadCaptured:   leadCaptured,
	}, nil
}

// ListProfiles exposes tracked conversation profiles for the admin surface.
func (s *Service) ListProfiles(ctx context.Context) ([]repository.ProfileRecord, error) {
	return s.store.ListProfiles(ctx)
}

// Reset wipes all conversations, messages, and profiles.
func (s *Service) Reset(ctx context.Context) error {
	return s.store.ClearHistory(ctx)
}

func (s *Service) assembleMessages(ctx context.Context, profile map[string]string, stageName, focus string, history []repository.Message, userMessage string) []ai.Message {
	useTools := s.provider.Name() != "fake"

	messages := []ai.Message{{Role: ai.RoleSystem, Content: loadSystemPrompt(s.systemPromptPath)}}
	if useTools {
		messages = append(messages, ai.Message{Role: ai.RoleSystem, Content: toolingPrompt})
	}
	if siteContext := buildSiteContext(s.listings.Load(ctx)); siteContext != "" {
		messages = append(messages, ai.Message{Role: ai.RoleSystem, Content: siteContext})
	}
	messages = append(messages, ai.Message{Role: ai.RoleSystem, Content: buildProfilePrompt(profile, stageName, focus)})
	for _, msg := range history {
		messages = append(messages, ai.Message{Role: msg.Role, Content: msg.Content})
	}
	return append(messages, ai.Message{Role: ai.RoleUser, Content: userMessage})
}

func routingFromEvents(events []toolEvent) *routing.Decision {
	for _, event := range events {
		if event.Name != toolRecordRouting || event.Result == nil {
			continue
		}
		raw := make(map[string]string, len(event.Result))
		for key, value := range event.Result {
			if s, ok := value.(string); ok {
				raw[key] = s
			}
		}
		decision := routing.Sanitize(raw)
		return &decision
	}
	return nil
}

func lastLogLeadEvent(events []toolEvent) *toolEvent {
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Name == toolLogLead && events[i].Result != nil {
			return &events[i]
		}
	}
	return nil
}
