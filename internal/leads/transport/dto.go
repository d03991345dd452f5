package transport

// LeadRequest is the payload for explicit lead submission.
type LeadRequest struct {
	ConversationID string `json:"conversation_id"`
	Name           string `json:"name" validate:"required,min=2,max=120"`
	Email          string `json:"email" validate:"omitempty,email"`
	Phone          string `json:"phone" validate:"omitempty,min=8,max=32"`
	ContactMethod  string `json:"contact_method" validate:"omitempty,oneof=email text call"`
	PreferredTime  string `json:"preferred_time" validate:"omitempty,max=120"`
	Intent         string `json:"intent" validate:"omitempty,oneof=buy rent sell book pricing question other"`
	Urgency        string `json:"urgency" validate:"omitempty,oneof=today this_week soon browsing unknown"`
	Summary        string `json:"summary" validate:"omitempty,max=500"`
}

// LeadResponse reports the outcome of a capture attempt.
type LeadResponse struct {
	OK     bool   `json:"ok"`
	Saved  bool   `json:"saved"`
	Reason string `json:"reason,omitempty"`
	Error  string `json:"error,omitempty"`
}
