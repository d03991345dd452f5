package service

import (
	"context"
	"errors"
	"testing"

	"receptionist_backend/platform/ai"
	"receptionist_backend/platform/logger"
)

// scriptedProvider replays canned completions in order. Forced
// record_routing calls are answered from routingResponse instead.
type scriptedProvider struct {
	name            string
	responses       []ai.Message
	routingResponse *ai.Message
	err             error
	routingErr      error
	requests        int
	routingRequests int
}

func (p *scriptedProvider) Name() string {
	if p.name == "" {
		return "scripted"
	}
	return p.name
}

func (p *scriptedProvider) Generate(_ context.Context, _ []ai.Message) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	msg, _ := p.next()
	return msg.Content, nil
}

func (p *scriptedProvider) CreateChatCompletion(_ context.Context, _ []ai.Message, _ []ai.ToolDef, choice ai.ToolChoice) (ai.Message, error) {
	if choice.Forced() {
		p.routingRequests++
		if p.routingErr != nil {
			return ai.Message{}, p.routingErr
		}
		if p.routingResponse != nil {
			return *p.routingResponse, nil
		}
		return ai.Message{Role: ai.RoleAssistant}, nil
	}
	if p.err != nil {
		return ai.Message{}, p.err
	}
	msg, ok := p.next()
	if !ok {
		return ai.Message{Role: ai.RoleAssistant}, nil
	}
	return msg, nil
}

func (p *scriptedProvider) next() (ai.Message, bool) {
	if p.requests >= len(p.responses) {
		p.requests++
		return ai.Message{}, false
	}
	msg := p.responses[p.requests]
	p.requests++
	return msg, true
}

func testLoop(t *testing.T, provider ai.Provider) *conversationLoop {
	t.Helper()
	d, _, _ := testDispatcher(t, dispatchListings(t))
	return &conversationLoop{provider: provider, tools: *d, log: logger.New("test")}
}

func TestLoopPlainTextFirstRound(t *testing.T) {
	provider := &scriptedProvider{responses: []ai.Message{
		{Role: ai.RoleAssistant, Content: "What area are you looking in?"},
	}}
	l := testLoop(t, provider)

	text, events, err := l.run(context.Background(), nil, "conv-1", map[string]string{}, primaryToolDefs(), ai.ToolChoice{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if text != "What area are you looking in?" {
		t.Errorf("text = %q", text)
	}
	if len(events) != 0 {
		t.Errorf("expected no events, got %v", events)
	}
	if provider.requests != 1 {
		t.Errorf("requests = %d, want 1", provider.requests)
	}
}

func TestLoopDispatchesToolsThenReturnsText(t *testing.T) {
	provider := &scriptedProvider{responses: []ai.Message{
		{Role: ai.RoleAssistant, ToolCalls: []ai.ToolCall{
			{ID: "c1", Name: toolLookupListings, Arguments: `{"beds": 3}`},
		}},
		{Role: ai.RoleAssistant, Content: "12 Oak St looks like the best fit."},
	}}
	l := testLoop(t, provider)

	text, events, err := l.run(context.Background(), nil, "conv-1", map[string]string{}, primaryToolDefs(), ai.ToolChoice{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if text != "12 Oak St looks like the best fit." {
		t.Errorf("text = %q", text)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Name != toolLookupListings {
		t.Errorf("event name = %q", events[0].Name)
	}
	if events[0].Result["found"] != true {
		t.Errorf("result = %v", events[0].Result)
	}
}

func TestLoopFallsBackToEarlierText(t *testing.T) {
	provider := &scriptedProvider{responses: []ai.Message{
		{Role: ai.RoleAssistant, Content: "Checking our listings now.", ToolCalls: []ai.ToolCall{
			{ID: "c1", Name: toolLookupListings, Arguments: `{}`},
		}},
		{Role: ai.RoleAssistant, Content: ""},
	}}
	l := testLoop(t, provider)

	text, _, err := l.run(context.Background(), nil, "conv-1", map[string]string{}, primaryToolDefs(), ai.ToolChoice{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if text != "Checking our listings now." {
		t.Errorf("text = %q, want earlier round's text", text)
	}
}

func TestLoopRoundCap(t *testing.T) {
	call := ai.ToolCall{ID: "c1", Name: toolLookupListings, Arguments: `{}`}
	provider := &scriptedProvider{responses: []ai.Message{
		{Role: ai.RoleAssistant, ToolCalls: []ai.ToolCall{call}},
		{Role: ai.RoleAssistant, ToolCalls: []ai.ToolCall{call}},
		{Role: ai.RoleAssistant, ToolCalls: []ai.ToolCall{call}},
		{Role: ai.RoleAssistant, Content: "never reached"},
	}}
	l := testLoop(t, provider)

	text, events, err := l.run(context.Background(), nil, "conv-1", map[string]string{}, primaryToolDefs(), ai.ToolChoice{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if provider.requests != 3 {
		t.Errorf("requests = %d, want 3", provider.requests)
	}
	if len(events) != 3 {
		t.Errorf("events = %d, want 3", len(events))
	}
	if text != "" {
		t.Errorf("text = %q, want empty at cap", text)
	}
}

func TestLoopProviderErrorPropagates(t *testing.T) {
	provider := &scriptedProvider{err: errors.New("model unavailable")}
	l := testLoop(t, provider)

	_, _, err := l.run(context.Background(), nil, "conv-1", map[string]string{}, primaryToolDefs(), ai.ToolChoice{})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestRoutingSubCall(t *testing.T) {
	provider := &scriptedProvider{routingResponse: &ai.Message{
		Role: ai.RoleAssistant,
		ToolCalls: []ai.ToolCall{
			{ID: "r1", Name: toolRecordRouting, Arguments: `{"intent": "pricing", "lead_capture": "yes"}`},
		},
	}}
	l := testLoop(t, provider)

	decision := l.runRoutingSubCall(context.Background(), "how much is 12 Oak St", "It is listed at $450,000.")
	if decision == nil {
		t.Fatal("expected decision")
	}
	if decision.Intent != "pricing" || decision.LeadCapture != "yes" {
		t.Errorf("decision = %+v", decision)
	}
}

func TestRoutingSubCallDegradesOnError(t *testing.T) {
	provider := &scriptedProvider{routingErr: errors.New("timeout")}
	l := testLoop(t, provider)

	if decision := l.runRoutingSubCall(context.Background(), "hi", "Hello!"); decision != nil {
		t.Errorf("expected nil decision, got %+v", decision)
	}
}

func TestRoutingSubCallSkipsEmptyReply(t *testing.T) {
	provider := &scriptedProvider{}
	l := testLoop(t, provider)

	if decision := l.runRoutingSubCall(context.Background(), "hi", ""); decision != nil {
		t.Errorf("expected nil decision for empty reply, got %+v", decision)
	}
	if provider.routingRequests != 0 {
		t.Errorf("provider should not be called, got %d requests", provider.routingRequests)
	}
}

func TestStripLoopText(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "tool call markup removed",
			content: "On it. <tool_call>{\"name\":\"lookup_listings\"}</tool_call>",
			want:    "On it.",
		},
		{
			name:    "unterminated markup removed",
			content: "On it. <tool_call>{\"name\":",
			want:    "On it.",
		},
		{
			name:    "routing prefix line cut",
			content: "Here you go.\nrouting: intent=buy",
			want:    "Here you go.",
		},
		{
			name:    "trailing routing keys dropped",
			content: "Here you go.\nintent: buy\nlead_capture: yes",
			want:    "Here you go.",
		},
		{
			name:    "single trailing key kept",
			content: "Arrival time: 3pm works.",
			want:    "Arrival time: 3pm works.",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := stripLoopText(tc.content); got != tc.want {
				t.Errorf("stripLoopText(%q) = %q, want %q", tc.content, got, tc.want)
			}
		})
	}
}
