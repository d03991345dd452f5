package service

import (
	"context"
	"strings"
	"testing"

	"receptionist_backend/internal/conversation/repository"
	"receptionist_backend/internal/listings/feed"
	"receptionist_backend/platform/ai"
	"receptionist_backend/platform/logger"
)

type loggedMessage struct {
	role    string
	content string
	routing map[string]string
}

type memStore struct {
	memProfiles
	history map[string][]repository.Message
	logged  map[string][]loggedMessage
	cleared bool
}

func newMemStore() *memStore {
	return &memStore{
		history: map[string][]repository.Message{},
		logged:  map[string][]loggedMessage{},
	}
}

func (m *memStore) EnsureConversation(_ context.Context, _ string) error { return nil }

func (m *memStore) GetMessages(_ context.Context, id string, _ int) ([]repository.Message, error) {
	return m.history[id], nil
}

func (m *memStore) LogMessage(_ context.Context, id, role, content string, routing map[string]string) error {
	m.logged[id] = append(m.logged[id], loggedMessage{role: role, content: content, routing: routing})
	return nil
}

func (m *memStore) ListProfiles(_ context.Context) ([]repository.ProfileRecord, error) {
	var out []repository.ProfileRecord
	for id, profile := range m.profiles {
		out = append(out, repository.ProfileRecord{ConversationID: id, Profile: profile})
	}
	return out, nil
}

func (m *memStore) ClearHistory(_ context.Context) error {
	m.cleared = true
	return nil
}

func testService(t *testing.T, provider ai.Provider, store *memStore, sink *memLeadSink) *Service {
	t.Helper()
	log := logger.New("test")
	listings := feed.NewStaticSource(dispatchListings(t), log)
	return New(provider, store, listings, sink, "", log)
}

func TestTurnGuardrailsPromoteBuyerMessage(t *testing.T) {
	provider := &scriptedProvider{responses: []ai.Message{
		{Role: ai.RoleAssistant, Content: "Great. What price range should I keep in mind?"},
	}}
	store := newMemStore()
	svc := testService(t, provider, store, &memLeadSink{})

	result, err := svc.Turn(context.Background(), TurnInput{
		ConversationID: "conv-1",
		Message:        "My name is Jane Smith, jane@x.com, looking to buy this week",
	})
	if err != nil {
		t.Fatalf("Turn: %v", err)
	}

	if result.Routing["intent"] != "buy" {
		t.Errorf("intent = %q", result.Routing["intent"])
	}
	if result.Routing["lead_capture"] != "yes" {
		t.Errorf("lead_capture = %q", result.Routing["lead_capture"])
	}
	if result.Routing["next_step"] != "ask_contact" {
		t.Errorf("next_step = %q", result.Routing["next_step"])
	}
	if result.Routing["urgency"] != "this_week" {
		t.Errorf("urgency = %q", result.Routing["urgency"])
	}
	if result.Profile["contact_name"] != "Jane Smith" {
		t.Errorf("contact_name = %q", result.Profile["contact_name"])
	}
	if result.Profile["contact_email"] != "jane@x.com" {
		t.Errorf("contact_email = %q", result.Profile["contact_email"])
	}
	if !strings.HasPrefix(result.Reply, "Thanks—I’ve noted your email.") {
		t.Errorf("reply missing contact acknowledgment: %q", result.Reply)
	}
	if result.LeadCaptured {
		t.Error("no lead should be captured without a log_lead call")
	}

	logged := store.logged["conv-1"]
	if len(logged) != 2 {
		t.Fatalf("expected user and assistant messages logged, got %d", len(logged))
	}
	if logged[0].role != ai.RoleUser || logged[1].role != ai.RoleAssistant {
		t.Errorf("unexpected roles: %q, %q", logged[0].role, logged[1].role)
	}
	if logged[1].routing["stage"] != result.Routing["stage"] {
		t.Errorf("persisted routing stage = %q", logged[1].routing["stage"])
	}
}

func TestTurnThresholdForcesLeadCapture(t *testing.T) {
	provider := &scriptedProvider{responses: []ai.Message{
		{Role: ai.RoleAssistant, Content: "Understood. Is there anything specific you need?"},
	}}
	store := newMemStore()
	store.history["conv-1"] = []repository.Message{
		{Role: ai.RoleUser, Content: "hi"},
		{Role: ai.RoleAssistant, Content: "Hello! What brings you in?"},
		{Role: ai.RoleUser, Content: "just looking"},
		{Role: ai.RoleAssistant, Content: "Any particular area?"},
	}
	svc := testService(t, provider, store, &memLeadSink{})

	result, err := svc.Turn(context.Background(), TurnInput{ConversationID: "conv-1", Message: "ok thanks"})
	if err != nil {
		t.Fatalf("Turn: %v", err)
	}

	if result.Routing["lead_capture"] != "yes" {
		t.Errorf("lead_capture = %q", result.Routing["lead_capture"])
	}
	if result.Routing["summary"] != "Continuing conversation, prompting for contact info" {
		t.Errorf("summary = %q", result.Routing["summary"])
	}
	if result.Routing["next_step"] != "ask_contact" {
		t.Errorf("next_step = %q", result.Routing["next_step"])
	}
}

func TestTurnLeadValidationOverridesReply(t *testing.T) {
	provider := &scriptedProvider{responses: []ai.Message{
		{Role: ai.RoleAssistant, ToolCalls: []ai.ToolCall{
			{ID: "c1", Name: toolLogLead, Arguments: `{"email": "a@b.com"}`},
		}},
		{Role: ai.RoleAssistant, Content: "All set. Anything else I can do?"},
	}}
	store := newMemStore()
	sink := &memLeadSink{}
	svc := testService(t, provider, store, sink)

	result, err := svc.Turn(context.Background(), TurnInput{ConversationID: "conv-1", Message: "please save my info, a@b.com"})
	if err != nil {
		t.Fatalf("Turn: %v", err)
	}

	if result.Reply != namePromptReply {
		t.Errorf("reply = %q, want name prompt", result.Reply)
	}
	if result.Routing["next_step"] != "ask_contact" || result.Routing["lead_capture"] != "yes" {
		t.Errorf("routing = %v", result.Routing)
	}
	if result.LeadCaptured {
		t.Error("validation failure must not mark the lead captured")
	}
	if len(sink.captured) != 0 {
		t.Errorf("no lead should be saved, got %d", len(sink.captured))
	}
}

func TestTurnDuplicateLeadIsNoOp(t *testing.T) {
	provider := &scriptedProvider{responses: []ai.Message{
		{Role: ai.RoleAssistant, ToolCalls: []ai.ToolCall{
			{ID: "c1", Name: toolLogLead, Arguments: `{"name": "Jane Smith", "email": "jane@x.com"}`},
		}},
		{Role: ai.RoleAssistant, Content: "You are all set, Jane."},
	}}
	store := newMemStore()
	sink := &memLeadSink{existing: map[string]bool{"conv-1|jane@x.com": true}}
	svc := testService(t, provider, store, sink)

	result, err := svc.Turn(context.Background(), TurnInput{ConversationID: "conv-1", Message: "yes please log me again"})
	if err != nil {
		t.Fatalf("Turn: %v", err)
	}

	if !result.LeadCaptured {
		t.Error("duplicate capture still counts as captured for the caller")
	}
	if len(sink.captured) != 0 {
		t.Errorf("duplicate must not create a new lead, got %d", len(sink.captured))
	}
	if result.Reply != "You are all set, Jane." {
		t.Errorf("reply = %q", result.Reply)
	}
}

func TestTurnLeadSavedWithEmptyReply(t *testing.T) {
	provider := &scriptedProvider{responses: []ai.Message{
		{Role: ai.RoleAssistant, ToolCalls: []ai.ToolCall{
			{ID: "c1", Name: toolLogLead, Arguments: `{"name": "Jane Smith", "email": "jane@x.com"}`},
		}},
		{Role: ai.RoleAssistant, Content: ""},
	}}
	store := newMemStore()
	store.profiles = map[string]map[string]string{
		"conv-1": {"contact_name": "Jane Smith", "contact_email": "jane@x.com"},
	}
	sink := &memLeadSink{}
	svc := testService(t, provider, store, sink)

	result, err := svc.Turn(context.Background(), TurnInput{ConversationID: "conv-1", Message: "log me"})
	if err != nil {
		t.Fatalf("Turn: %v", err)
	}

	if !result.LeadCaptured {
		t.Error("lead should be captured")
	}
	want := "Thanks Jane Smith. We'll contact you at jane@x.com. We look forward to seeing you soon!"
	if result.Reply != want {
		t.Errorf("reply = %q, want %q", result.Reply, want)
	}
	if len(sink.captured) != 1 {
		t.Errorf("expected 1 captured lead, got %d", len(sink.captured))
	}
}

func TestTurnGeneratesConversationID(t *testing.T) {
	provider := &scriptedProvider{responses: []ai.Message{
		{Role: ai.RoleAssistant, Content: "Hello! What brings you in today?"},
	}}
	store := newMemStore()
	svc := testService(t, provider, store, &memLeadSink{})

	result, err := svc.Turn(context.Background(), TurnInput{Message: "hi"})
	if err != nil {
		t.Fatalf("Turn: %v", err)
	}
	if result.ConversationID == "" {
		t.Error("expected generated conversation id")
	}
}

func TestTurnEmptyReplyFallsBackToFocusQuestion(t *testing.T) {
	provider := &scriptedProvider{responses: []ai.Message{
		{Role: ai.RoleAssistant, Content: ""},
	}}
	store := newMemStore()
	svc := testService(t, provider, store, &memLeadSink{})

	result, err := svc.Turn(context.Background(), TurnInput{ConversationID: "conv-1", Message: "hmm"})
	if err != nil {
		t.Fatalf("Turn: %v", err)
	}
	if result.Reply == "" {
		t.Error("expected deterministic fallback question")
	}
	if !strings.HasSuffix(result.Reply, "?") {
		t.Errorf("fallback should be a question: %q", result.Reply)
	}
}
