package events

// LeadCaptured is published when a visitor lead is durably saved.
type LeadCaptured struct {
	BaseEvent
	LeadID         int64             `json:"lead_id"`
	ConversationID string            `json:"conversation_id"`
	Name           string            `json:"name"`
	Email          string            `json:"email"`
	Phone          string            `json:"phone"`
	ContactMethod  string            `json:"contact_method"`
	PreferredTime  string            `json:"preferred_time"`
	Intent         string            `json:"intent"`
	Urgency        string            `json:"urgency"`
	Summary        string            `json:"summary"`
	Profile        map[string]string `json:"profile,omitempty"`
}

// EventName returns the unique event identifier.
func (LeadCaptured) EventName() string {
	return "leads.captured"
}
