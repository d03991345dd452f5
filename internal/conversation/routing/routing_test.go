package routing

import "testing"

func TestSanitizeDefaults(t *testing.T) {
	d := Sanitize(map[string]string{})
	want := Decision{
		Intent:      "other",
		LeadCapture: "no",
		Urgency:     "unknown",
		NextStep:    "ask_need",
		Stage:       "discover",
	}
	if d != want {
		t.Errorf("Sanitize(empty) = %+v, want %+v", d, want)
	}
}

func TestSanitizeCoercesInvalidValues(t *testing.T) {
	d := Sanitize(map[string]string{
		"intent":       "world domination",
		"lead_capture": "maybe",
		"urgency":      "yesterday",
		"next_step":    "ask_everything",
		"summary":      "  padded  ",
	})
	if d.Intent != "other" || d.LeadCapture != "no" || d.Urgency != "unknown" || d.NextStep != "ask_need" {
		t.Errorf("invalid values not coerced: %+v", d)
	}
	if d.Summary != "padded" {
		t.Errorf("summary = %q, want trimmed passthrough", d.Summary)
	}
}

func TestSanitizeNormalizesCase(t *testing.T) {
	d := Sanitize(map[string]string{
		"intent":       " BUY ",
		"lead_capture": "YES",
		"urgency":      "This_Week",
		"next_step":    "ASK_CONTACT",
	})
	if d.Intent != "buy" || d.LeadCapture != "yes" || d.Urgency != "this_week" || d.NextStep != "ask_contact" {
		t.Errorf("case not normalized: %+v", d)
	}
}

func TestSanitizeIdempotent(t *testing.T) {
	inputs := []map[string]string{
		{},
		{"intent": "book", "lead_capture": "yes", "urgency": "today", "next_step": "ask_schedule", "summary": "tour"},
		{"intent": "garbage", "urgency": "garbage"},
	}
	for _, raw := range inputs {
		once := Sanitize(raw)
		twice := Sanitize(once.ToMap())
		if once != twice {
			t.Errorf("Sanitize not idempotent: %+v vs %+v", once, twice)
		}
	}
}

func TestDeriveUrgency(t *testing.T) {
	tests := []struct {
		message string
		want    string
	}{
		{"need it today", "today"},
		{"tonight if possible", "today"},
		{"ASAP please", "today"},
		{"sometime this week", "this_week"},
		{"maybe next week", "this_week"},
		{"tomorrow afternoon", "this_week"},
		{"soon-ish", "soon"},
		{"in about a week", "this_week"},
		{"within a month", "soon"},
		{"no particular rush", "unknown"},
	}
	for _, tt := range tests {
		if got := DeriveUrgency(tt.message); got != tt.want {
			t.Errorf("DeriveUrgency(%q) = %q, want %q", tt.message, got, tt.want)
		}
	}
}

func TestGuardrailsNoBudgetWinsOverBook(t *testing.T) {
	d := ApplyGuardrails("I want to book but honestly no budget limit", Default(), 0)
	if d.Intent != "buy" {
		t.Errorf("intent = %q, want buy", d.Intent)
	}
	if d.LeadCapture != "yes" || d.NextStep != "ask_contact" {
		t.Errorf("lead capture not forced: %+v", d)
	}
	if d.Summary != "Premium lead with no budget limit" {
		t.Errorf("summary = %q", d.Summary)
	}
}

func TestGuardrailsLeadTermFamilies(t *testing.T) {
	tests := []struct {
		message    string
		wantIntent string
	}{
		{"what's the price on the colonial", "pricing"},
		{"can I book a visit", "book"},
		{"ready to buy", "buy"},
		{"want to schedule an appointment", "book"},
		{"send me a quote", "pricing"},
	}
	for _, tt := range tests {
		d := ApplyGuardrails(tt.message, Default(), 0)
		if d.Intent != tt.wantIntent {
			t.Errorf("ApplyGuardrails(%q) intent = %q, want %q", tt.message, d.Intent, tt.wantIntent)
		}
		if d.LeadCapture != "yes" || d.NextStep != "ask_contact" {
			t.Errorf("ApplyGuardrails(%q) did not force lead capture: %+v", tt.message, d)
		}
	}
}

func TestGuardrailsPreserveExistingSummary(t *testing.T) {
	base := Default()
	base.Summary = "already summarized"
	d := ApplyGuardrails("how much does it cost, any price range", base, 0)
	if d.Summary != "already summarized" {
		t.Errorf("summary overwritten: %q", d.Summary)
	}
}

func TestGuardrailsTurnThreshold(t *testing.T) {
	d := ApplyGuardrails("just chatting", Default(), 2)
	if d.LeadCapture != "yes" {
		t.Errorf("lead_capture = %q, want yes after two assistant turns", d.LeadCapture)
	}
	if d.Summary != "Continuing conversation, prompting for contact info" {
		t.Errorf("summary = %q", d.Summary)
	}
	if d.NextStep != "ask_contact" {
		t.Errorf("next_step = %q", d.NextStep)
	}

	early := ApplyGuardrails("just chatting", Default(), 1)
	if early.LeadCapture != "no" {
		t.Errorf("lead_capture = %q before threshold, want no", early.LeadCapture)
	}
}

func TestGuardrailsAlwaysRecomputeUrgency(t *testing.T) {
	base := Default()
	base.Urgency = "flexible"
	d := ApplyGuardrails("need this asap", base, 0)
	if d.Urgency != "today" {
		t.Errorf("urgency = %q, want today", d.Urgency)
	}
}
