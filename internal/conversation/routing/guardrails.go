package routing

import "strings"

// leadTerms mark messages with purchase or booking intent. Finding any of
// them forces a lead-capture prompt regardless of what the model decided.
var leadTerms = []string{
	"buy",
	"purchase",
	"pickup",
	"pick up",
	"appointment",
	"book",
	"visit",
	"price",
	"budget",
	"quote",
}

// highUrgencyTerms map message keywords to urgency buckets. Checked in order,
// first match wins.
var highUrgencyTerms = []struct {
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

// DeriveUrgency classifies message urgency from keywords alone.
func DeriveUrgency(message string) string {
	lowered := strings.ToLower(message)
	for _, entry := range highUrgencyTerms {
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
	return DefaultUrgency
}

// ApplyGuardrails adjusts a routing decision based on the raw user message
// and how far the conversation has progressed. This layer is the single
// source of truth for whether a lead-capture prompt must fire; the model's
// own classification never suppresses it.
func ApplyGuardrails(userMessage string, d Decision, assistantTurns int) Decision {
	text := strings.ToLower(userMessage)
	updated := d

	updated.Urgency = DeriveUrgency(userMessage)

	switch {
	case strings.Contains(text, "no budget") || strings.Contains(text, "whatever it costs"):
		updated.Intent = "buy"
		updated.LeadCapture = "yes"
		updated.Summary = "Premium lead with no budget limit"
		updated.NextStep = "ask_contact"
	case containsAny(text, leadTerms):
		switch {
		case strings.Contains(text, "price") || strings.Contains(text, "budget") || strings.Contains(text, "quote"):
			updated.Intent = "pricing"
		case strings.Contains(text, "book") || strings.Contains(text, "appointment") || strings.Contains(text, "visit"):
			updated.Intent = "book"
		default:
			updated.Intent = "buy"
		}
		updated.LeadCapture = "yes"
		if updated.Summary == "" {
			updated.Summary = "High intent inquiry"
		}
		updated.NextStep = "ask_contact"
	case assistantTurns >= 2 && updated.LeadCapture != "yes":
		updated.LeadCapture = "yes"
		if updated.Summary == "" {
			updated.Summary = "Continuing conversation, prompting for contact info"
		}
		updated.NextStep = "ask_contact"
	}

	return updated
}

func containsAny(text string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}
