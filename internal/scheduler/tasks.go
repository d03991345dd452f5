// Package scheduler enqueues and processes background tasks via asynq.
package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskLeadWebhookForward = "leads.webhook.forward"

// LeadWebhookPayload carries a captured lead to the external webhook.
type LeadWebhookPayload struct {
	LeadID         int64             `json:"leadId"`
	ConversationID string            `json:"conversationId"`
	Name           string            `json:"name"`
	Email          string            `json:"email"`
	Phone          string            `json:"phone"`
	ContactMethod  string            `json:"contactMethod"`
	PreferredTime  string            `json:"preferredTime"`
	Intent         string            `json:"intent"`
	Urgency        string            `json:"urgency"`
	Summary        string            `json:"summary"`
	Profile        map[string]string `json:"profile,omitempty"`
}

func NewLeadWebhookForwardTask(payload LeadWebhookPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLeadWebhookForward, data), nil
}

func ParseLeadWebhookForwardPayload(task *asynq.Task) (LeadWebhookPayload, error) {
	var payload LeadWebhookPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return LeadWebhookPayload{}, err
	}
	return payload, nil
}
