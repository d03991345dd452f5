// Package routing holds the canonical per-turn classification and the rules
// that reconcile it from model output, tool calls, and deterministic
// guardrails.
package routing

import "strings"

// Decision is the canonical routing record for one turn. Every field except
// Summary is constrained to an enumerated set.
type Decision struct {
	Intent      string `json:"intent"`
	LeadCapture string `json:"lead_capture"`
	Urgency     string `json:"urgency"`
	NextStep    string `json:"next_step"`
	Stage       string `json:"stage"`
	Summary     string `json:"summary"`
}

const (
	DefaultIntent      = "other"
	DefaultLeadCapture = "no"
	DefaultUrgency     = "unknown"
	DefaultNextStep    = "ask_need"
	DefaultStage       = "discover"
)

var allowedIntents = map[string]bool{
	"buy": true, "book": true, "pricing": true, "question": true, "support": true, "other": true,
}

var allowedLeadCapture = map[string]bool{"yes": true, "no": true}

var allowedUrgency = map[string]bool{
	"today": true, "this_week": true, "soon": true, "flexible": true, "unknown": true,
}

var allowedNextSteps = map[string]bool{
	"ask_need": true, "ask_timeline": true, "ask_constraints": true, "ask_budget": true,
	"ask_contact": true, "ask_schedule": true, "confirm_submission": true,
}

// Default returns a fully populated Decision with every field at its
// documented fallback value.
func Default() Decision {
	return Decision{
		Intent:      DefaultIntent,
		LeadCapture: DefaultLeadCapture,
		Urgency:     DefaultUrgency,
		NextStep:    DefaultNextStep,
		Stage:       DefaultStage,
	}
}

// Sanitize coerces an arbitrary key/value map into a valid Decision. Values
// outside each enumerated set fall back to the field default. Idempotent.
func Sanitize(raw map[string]string) Decision {
	d := Decision{
		Intent:      normalize(raw["intent"], DefaultIntent),
		LeadCapture: normalize(raw["lead_capture"], DefaultLeadCapture),
		Urgency:     normalize(raw["urgency"], DefaultUrgency),
		NextStep:    normalize(raw["next_step"], DefaultNextStep),
		Stage:       normalize(raw["stage"], DefaultStage),
		Summary:     strings.TrimSpace(raw["summary"]),
	}
	if !allowedIntents[d.Intent] {
		d.Intent = DefaultIntent
	}
	if !allowedLeadCapture[d.LeadCapture] {
		d.LeadCapture = DefaultLeadCapture
	}
	if !allowedUrgency[d.Urgency] {
		d.Urgency = DefaultUrgency
	}
	if !allowedNextSteps[d.NextStep] {
		d.NextStep = DefaultNextStep
	}
	return d
}

// SanitizeArgs adapts decoded JSON tool arguments into Sanitize.
func SanitizeArgs(args map[string]interface{}) Decision {
	raw := make(map[string]string, len(args))
	for key, value := range args {
		if s, ok := value.(string); ok {
			raw[key] = s
		}
	}
	return Sanitize(raw)
}

// ToMap renders the decision for API responses and message persistence.
func (d Decision) ToMap() map[string]string {
	return map[string]string{
		"intent":       d.Intent,
		"lead_capture": d.LeadCapture,
		"urgency":      d.Urgency,
		"next_step":    d.NextStep,
		"stage":        d.Stage,
		"summary":      d.Summary,
	}
}

func normalize(value, fallback string) string {
	cleaned := strings.ToLower(strings.TrimSpace(value))
	if cleaned == "" {
		return fallback
	}
	return cleaned
}
