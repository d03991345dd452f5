package service

import (
	"context"
	"testing"

	"receptionist_backend/internal/leads/domain"
	leadservice "receptionist_backend/internal/leads/service"
	"receptionist_backend/internal/listings/feed"
	"receptionist_backend/platform/ai"
	"receptionist_backend/platform/logger"
)

type memLeadSink struct {
	captured []domain.Lead
	existing map[string]bool
}

func (m *memLeadSink) Capture(_ context.Context, lead domain.Lead) (leadservice.CaptureResult, error) {
	if lead.Email == "" && lead.Phone == "" {
		return leadservice.CaptureResult{Error: leadservice.ErrMissingContact}, nil
	}
	if lead.Name == "" {
		return leadservice.CaptureResult{Error: leadservice.ErrMissingName}, nil
	}
	if m.existing[lead.ConversationID+"|"+lead.Email] {
		return leadservice.CaptureResult{OK: true, Saved: false, Reason: "duplicate"}, nil
	}
	if m.existing == nil {
		m.existing = map[string]bool{}
	}
	m.existing[lead.ConversationID+"|"+lead.Email] = true
	m.captured = append(m.captured, lead)
	return leadservice.CaptureResult{OK: true, Saved: true, LeadID: int64(len(m.captured))}, nil
}

type memProfiles struct {
	profiles map[string]map[string]string
}

func (m *memProfiles) GetProfile(_ context.Context, id string) (map[string]string, error) {
	out := map[string]string{}
	for k, v := range m.profiles[id] {
		out[k] = v
	}
	return out, nil
}

func (m *memProfiles) UpsertProfile(_ context.Context, id string, partial map[string]string) (map[string]string, error) {
	if m.profiles == nil {
		m.profiles = map[string]map[string]string{}
	}
	merged := m.profiles[id]
	if merged == nil {
		merged = map[string]string{}
	}
	for k, v := range partial {
		if v != "" {
			merged[k] = v
		}
	}
	m.profiles[id] = merged
	out := map[string]string{}
	for k, v := range merged {
		out[k] = v
	}
	return out, nil
}

func testDispatcher(t *testing.T, listings []feed.Listing) (*dispatcher, *memLeadSink, *memProfiles) {
	t.Helper()
	log := logger.New("test")
	sink := &memLeadSink{}
	profiles := &memProfiles{}
	return &dispatcher{
		listings: feed.NewStaticSource(listings, log),
		leads:    sink,
		profiles: profiles,
		log:      log,
	}, sink, profiles
}

func dispatchListings(t *testing.T) []feed.Listing {
	t.Helper()
	return []feed.Listing{
		{Address: "12 Oak St", City: "Austin", Beds: 3, Baths: 2, Sqft: 1800, Price: 450000, Status: "active"},
		{Address: "80 Pine Rd", City: "Austin", Beds: 4, Baths: 3, Sqft: 2400, Price: 600000, Status: "pending"},
		{Address: "5 Elm Ct", City: "Dallas", Beds: 2, Baths: 1, Sqft: 1100, Price: 300000, Status: "active"},
	}
}

func TestDispatchLookupListings(t *testing.T) {
	d, _, _ := testDispatcher(t, dispatchListings(t))

	result, err := d.dispatch(context.Background(), ai.ToolCall{
		ID:        "c1",
		Name:      toolLookupListings,
		Arguments: `{"beds": 3, "location": "Austin", "limit": 2}`,
	}, "conv-1", map[string]string{})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if result["found"] != true {
		t.Errorf("found = %v", result["found"])
	}
	if result["count"] != 2 {
		t.Errorf("count = %v", result["count"])
	}
}

func TestDispatchLookupListingsBadLimit(t *testing.T) {
	d, _, _ := testDispatcher(t, dispatchListings(t))

	result, err := d.dispatch(context.Background(), ai.ToolCall{
		ID:        "c1",
		Name:      toolLookupListings,
		Arguments: `{"limit": "plenty"}`,
	}, "conv-1", map[string]string{})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	// Unparseable limit falls back to the default cap of 4.
	if result["count"] != 3 {
		t.Errorf("count = %v, want all 3 listings", result["count"])
	}
}

func TestDispatchLogLeadValidation(t *testing.T) {
	tests := []struct {
		name      string
		arguments string
		wantErr   string
	}{
		{
			name:      "missing contact",
			arguments: `{"name": "Jane Smith"}`,
			wantErr:   "missing_contact",
		},
		{
			name:      "missing name",
			arguments: `{"email": "a@b.com"}`,
			wantErr:   "missing_name",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d, sink, _ := testDispatcher(t, nil)
			result, err := d.dispatch(context.Background(), ai.ToolCall{
				ID: "c1", Name: toolLogLead, Arguments: tc.arguments,
			}, "conv-1", map[string]string{})
			if err != nil {
				t.Fatalf("dispatch: %v", err)
			}
			if result["ok"] != false || result["error"] != tc.wantErr {
				t.Errorf("result = %v, want error %q", result, tc.wantErr)
			}
			if len(sink.captured) != 0 {
				t.Error("invalid lead must not be captured")
			}
		})
	}
}

func TestDispatchLogLeadSavesAndUpdatesProfile(t *testing.T) {
	d, sink, profiles := testDispatcher(t, nil)
	profile := map[string]string{"summary": "Wants a 3bd in Austin", "urgency": "this_week"}

	result, err := d.dispatch(context.Background(), ai.ToolCall{
		ID:        "c1",
		Name:      toolLogLead,
		Arguments: `{"name": "Jane Smith", "email": "jane@x.com", "interest": "12 Oak St"}`,
	}, "conv-1", profile)
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if result["ok"] != true || result["saved"] != true {
		t.Fatalf("result = %v", result)
	}
	if len(sink.captured) != 1 {
		t.Fatalf("expected 1 captured lead, got %d", len(sink.captured))
	}
	lead := sink.captured[0]
	if lead.Summary != "Wants a 3bd in Austin" {
		t.Errorf("summary not inherited from profile: %q", lead.Summary)
	}
	if lead.Urgency != "this_week" {
		t.Errorf("urgency = %q", lead.Urgency)
	}

	stored := profiles.profiles["conv-1"]
	if stored["contact_name"] != "Jane Smith" || stored["contact_email"] != "jane@x.com" {
		t.Errorf("profile not updated: %v", stored)
	}
	if stored["product_name"] != "12 Oak St" {
		t.Errorf("interest not merged: %v", stored)
	}
	if stored["stage"] == "" {
		t.Error("stage not recomputed after lead capture")
	}
}

func TestDispatchLogLeadDuplicate(t *testing.T) {
	d, sink, _ := testDispatcher(t, nil)
	args := `{"name": "Jane Smith", "email": "jane@x.com"}`

	if _, err := d.dispatch(context.Background(), ai.ToolCall{ID: "c1", Name: toolLogLead, Arguments: args}, "conv-1", map[string]string{}); err != nil {
		t.Fatalf("first dispatch: %v", err)
	}
	result, err := d.dispatch(context.Background(), ai.ToolCall{ID: "c2", Name: toolLogLead, Arguments: args}, "conv-1", map[string]string{})
	if err != nil {
		t.Fatalf("second dispatch: %v", err)
	}
	if result["ok"] != true || result["saved"] != false || result["reason"] != "duplicate" {
		t.Errorf("result = %v", result)
	}
	if len(sink.captured) != 1 {
		t.Errorf("duplicate must not create a second lead, got %d", len(sink.captured))
	}
}

func TestDispatchRecordRouting(t *testing.T) {
	d, _, _ := testDispatcher(t, nil)

	result, err := d.dispatch(context.Background(), ai.ToolCall{
		ID:        "c1",
		Name:      toolRecordRouting,
		Arguments: `{"intent": "BUY", "lead_capture": "yes", "urgency": "nonsense"}`,
	}, "conv-1", map[string]string{})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if result["intent"] != "buy" || result["lead_capture"] != "yes" || result["urgency"] != "unknown" {
		t.Errorf("routing not sanitized: %v", result)
	}
}

func TestDispatchUnknownTool(t *testing.T) {
	d, _, _ := testDispatcher(t, nil)

	result, err := d.dispatch(context.Background(), ai.ToolCall{ID: "c1", Name: "send_rocket"}, "conv-1", map[string]string{})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if result["ok"] != false || result["error"] != "unknown_tool" {
		t.Errorf("result = %v", result)
	}
}
