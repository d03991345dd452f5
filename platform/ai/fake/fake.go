// Package fake provides a rule-based stand-in provider for demos and tests
// when no model API key is configured.
package fake

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"receptionist_backend/platform/ai"
)

var genericReplies = []string{
	"Thanks for reaching out! I can help explain our listings or get you in touch with the right person.",
	"Happy to help. This line is just a placeholder while we gather your info for the team.",
	"Great question. I can collect a few details and have someone follow up shortly.",
}

var urgencyTerms = []struct {
	term  string
	label string
}{
	{"today", "today"},
	{"tonight", "today"},
	{"asap", "today"},
	{"this week", "this_week"},
	{"next week", "this_week"},
	{"tomorrow", "this_week"},
	{"soon", "soon"},
}

// Provider is a deterministic rule-based ai.Provider.
type Provider struct{}

// New creates the fake provider.
func New() *Provider { return &Provider{} }

func (p *Provider) Name() string { return "fake" }

type classification struct {
	intent      string
	leadCapture string
	nextStep    string
	urgency     string
	summary     string
	reply       string
}

func (p *Provider) classify(messages []ai.Message) classification {
	userMessage := ""
	assistantTurns := 0
	for _, m := range messages {
		switch m.Role {
		case ai.RoleUser:
			userMessage = m.Content
		case ai.RoleAssistant:
			assistantTurns++
		}
	}
	lowered := strings.ToLower(userMessage)

	out := classification{
		intent:      "question",
		leadCapture: "no",
		nextStep:    "ask_need",
		urgency:     deriveUrgency(lowered),
		summary:     "Visitor has a general question.",
	}

	switch {
	case strings.Contains(lowered, "book") || strings.Contains(lowered, "appointment"):
		out.intent = "book"
		out.leadCapture = "yes"
		out.nextStep = "ask_contact"
		out.summary = "Interested in booking."
		out.reply = "I can help reserve a spot. Let me grab a couple of quick details so the team can schedule you."
	case strings.Contains(lowered, "price") || strings.Contains(lowered, "cost") || strings.Contains(lowered, "quote"):
		out.intent = "pricing"
		out.leadCapture = "yes"
		out.nextStep = "ask_contact"
		out.summary = "Asking about pricing."
		out.reply = "Pricing depends on the property. I can pass this to the team—could you share the best contact info?"
	default:
		out.reply = genericReplies[assistantTurns%len(genericReplies)]
		if assistantTurns >= 2 {
			out.leadCapture = "yes"
			out.nextStep = "ask_contact"
			out.summary = "Need more details from visitor."
		}
	}

	return out
}

// Generate produces a canned reply followed by an inline routing block, the
// same shape a hosted model is prompted to emit.
func (p *Provider) Generate(_ context.Context, messages []ai.Message) (string, error) {
	c := p.classify(messages)
	stage := "discover"
	if c.leadCapture == "yes" {
		stage = "contact"
	}
	block := fmt.Sprintf(
		"<ROUTING>\nintent: %s\nlead_capture: %s\nurgency: %s\nstage: %s\nnext_step: %s\nsummary: %s\n</ROUTING>",
		c.intent, c.leadCapture, c.urgency, stage, c.nextStep, c.summary,
	)
	return c.reply + "\n\n" + block, nil
}

// CreateChatCompletion mirrors Generate unless a routing classification is
// forced, in which case it emits a record_routing tool call.
func (p *Provider) CreateChatCompletion(ctx context.Context, messages []ai.Message, _ []ai.ToolDef, choice ai.ToolChoice) (ai.Message, error) {
	if choice.Forced() && choice.Name == "record_routing" {
		c := p.classify(messages)
		args, err := json.Marshal(map[string]string{
			"intent":       c.intent,
			"lead_capture": c.leadCapture,
			"urgency":      c.urgency,
			"next_step":    c.nextStep,
			"summary":      c.summary,
		})
		if err != nil {
			return ai.Message{}, err
		}
		return ai.Message{
			Role: ai.RoleAssistant,
			ToolCalls: []ai.ToolCall{{
				ID:        "fake-routing-call",
				Name:      "record_routing",
				Arguments: string(args),
			}},
		}, nil
	}

	text, err := p.Generate(ctx, messages)
	if err != nil {
		return ai.Message{}, err
	}
	return ai.Message{Role: ai.RoleAssistant, Content: text}, nil
}

func deriveUrgency(lowered string) string {
	for _, entry := range urgencyTerms {
		if strings.Contains(lowered, entry.term) {
			return entry.label
		}
	}
	if strings.Contains(lowered, "week") {
		return "this_week"
	}
	if strings.Contains(lowered, "month") {
		return "soon"
	}
	return "unknown"
}
