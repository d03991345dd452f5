package service

import (
	"context"
	"strconv"
	"strings"

	"receptionist_backend/internal/conversation/routing"
	"receptionist_backend/internal/conversation/stage"
	"receptionist_backend/internal/leads/domain"
	leadservice "receptionist_backend/internal/leads/service"
	"receptionist_backend/internal/listings/feed"
	"receptionist_backend/platform/ai"
	"receptionist_backend/platform/logger"
)

// ListingsSource searches the listings feed for the lookup tool.
type ListingsSource interface {
	Search(ctx context.Context, q feed.Query) []feed.Listing
}

// LeadSink captures validated leads.
type LeadSink interface {
	Capture(ctx context.Context, lead domain.Lead) (leadservice.CaptureResult, error)
}

// ProfileStore is the slice of conversation persistence the dispatcher needs.
type ProfileStore interface {
	GetProfile(ctx context.Context, conversationID string) (map[string]string, error)
	UpsertProfile(ctx context.Context, conversationID string, partial map[string]string) (map[string]string, error)
}

// toolEvent records one tool invocation within a turn.
type toolEvent struct {
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments"`
	Result    map[string]interface{} `json:"result"`
}

// dispatcher routes a named tool call to its handler.
type dispatcher struct {
	listings ListingsSource
	leads    LeadSink
	profiles ProfileStore
	log      *logger.Logger
}

// dispatch executes one tool call. Validation failures come back inside the
// result map, never as errors; a returned error means persistence is broken.
func (d *dispatcher) dispatch(ctx context.Context, call ai.ToolCall, conversationID string, profile map[string]string) (map[string]interface{}, error) {
	args := safeJSONArgs(call.Arguments)
	switch call.Name {
	case toolLookupListings:
		return d.lookupListings(ctx, args), nil
	case toolLogLead:
		return d.logLead(ctx, args, conversationID, profile)
	case toolRecordRouting:
		decision := routing.SanitizeArgs(args)
		return toInterfaceMap(decision.ToMap()), nil
	default:
		d.log.Warn("unknown tool requested", "tool", call.Name)
		return map[string]interface{}{"ok": false, "error": "unknown_tool"}, nil
	}
}

func (d *dispatcher) lookupListings(ctx context.Context, args map[string]interface{}) map[string]interface{} {
	q := feed.Query{
		Beds:       argInt(args, "beds"),
		Baths:      argFloat(args, "baths"),
		SqftTarget: argInt(args, "sqft_target"),
		PriceMin:   argInt(args, "price_min"),
		PriceMax:   argInt(args, "price_max"),
		AcreageMin: argFloat(args, "acreage_min"),
		AcreageMax: argFloat(args, "acreage_max"),
		Location:   argString(args, "location"),
		Limit:      feed.DefaultLimit,
	}
	if limit := argInt(args, "limit"); limit != nil && *limit > 0 {
		q.Limit = *limit
	}
	items := d.listings.Search(ctx, q)
	return map[string]interface{}{
		"found": len(items) > 0,
		"count": len(items),
		"items": items,
	}
}

func (d *dispatcher) logLead(ctx context.Context, args map[string]interface{}, conversationID string, profile map[string]string) (map[string]interface{}, error) {
	name := strings.TrimSpace(argString(args, "name"))
	email := strings.TrimSpace(argString(args, "email"))
	phone := strings.TrimSpace(argString(args, "phone"))
	contactMethod := strings.ToLower(strings.TrimSpace(argString(args, "contact_method")))
	preferredTime := strings.TrimSpace(argString(args, "preferred_time"))
	intent := firstNonEmpty(argString(args, "intent"), profile["intent"], "other")
	urgency := firstNonEmpty(argString(args, "urgency"), profile["urgency"], "unknown")
	summary := firstNonEmpty(argString(args, "summary"), profile["summary"])
	requestedDate := firstNonEmpty(argString(args, "requested_date"), profile["requested_date"])
	interest := firstNonEmpty(argString(args, "interest"), profile["product_name"])

	updates := map[string]string{
		"contact_name":   name,
		"contact_email":  email,
		"contact_phone":  phone,
		"product_name":   interest,
		"requested_date": requestedDate,
		"intent":         intent,
		"urgency":        urgency,
		"summary":        summary,
	}
	merged := make(map[string]string, len(profile)+len(updates))
	for key, value := range profile {
		merged[key] = value
	}
	for key, value := range updates {
		if value != "" {
			merged[key] = value
		}
	}
	stageAfter, _ := stage.Compute(merged)
	merged["stage"] = stageAfter

	result, err := d.leads.Capture(ctx, domain.Lead{
		ConversationID: conversationID,
		Name:           name,
		Email:          email,
		Phone:          phone,
		ContactMethod:  contactMethod,
		PreferredTime:  preferredTime,
		Intent:         intent,
		Urgency:        urgency,
		Summary:        summary,
		Profile:        merged,
	})
	if err != nil {
		return nil, err
	}

	if result.Saved {
		if _, err := d.profiles.UpsertProfile(ctx, conversationID, merged); err != nil {
			return nil, err
		}
	}

	out := map[string]interface{}{"ok": result.OK, "saved": result.Saved}
	if result.Error != "" {
		out["error"] = result.Error
	}
	if result.Reason != "" {
		out["reason"] = result.Reason
	}
	return out, nil
}

func toInterfaceMap(m map[string]string) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for key, value := range m {
		out[key] = value
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func argString(args map[string]interface{}, key string) string {
	if s, ok := args[key].(string); ok {
		return s
	}
	return ""
}

func argInt(args map[string]interface{}, key string) *int {
	switch v := args[key].(type) {
	case float64:
		n := int(v)
		return &n
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return &n
		}
	}
	return nil
}

func argFloat(args map[string]interface{}, key string) *float64 {
	switch v := args[key].(type) {
	case float64:
		f := v
		return &f
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return &f
		}
	}
	return nil
}
