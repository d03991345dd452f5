package transport

// ChatRequest is one visitor message. ConversationID is optional; a new
// conversation is started when absent.
type ChatRequest struct {
	ConversationID string `json:"conversation_id"`
	Message        string `json:"message" validate:"required,min=1,max=4000"`
}

// ChatResponse is the finished turn.
type ChatResponse struct {
	Reply          string            `json:"reply"`
	Routing        map[string]string `json:"routing"`
	ConversationID string            `json:"conversation_id"`
	Profile        map[string]string `json:"profile"`
	LeadCaptured   bool              `json:"lead_captured"`
}
