// Package domain holds the lead capture domain types.
package domain

import "time"

// Lead is a validated visitor contact record. Immutable after creation.
type Lead struct {
	ID             int64             `json:"id"`
	ConversationID string            `json:"conversation_id"`
	Name           string            `json:"name"`
	Email          string            `json:"email"`
	Phone          string            `json:"phone"`
	ContactMethod  string            `json:"contact_method"`
	PreferredTime  string            `json:"preferred_time"`
	Intent         string            `json:"intent"`
	Urgency        string            `json:"urgency"`
	Summary        string            `json:"summary"`
	Profile        map[string]string `json:"profile"`
	CreatedAt      time.Time         `json:"created_at"`
}

// ContactMethods are the accepted preferred-contact values. Anything else is
// replaced with text when a phone is known, email otherwise.
var ContactMethods = map[string]bool{
	"email": true,
	"text":  true,
	"call":  true,
}

// NormalizeContactMethod coerces the preferred contact method.
func NormalizeContactMethod(method, phone string) string {
	if ContactMethods[method] {
		return method
	}
	if phone != "" {
		return "text"
	}
	return "email"
}
