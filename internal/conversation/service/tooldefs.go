package service

import "receptionist_backend/platform/ai"

// Tool names the model may invoke.
const (
	toolLookupListings = "lookup_listings"
	toolLogLead        = "log_lead"
	toolRecordRouting  = "record_routing"
)

func primaryToolDefs() []ai.ToolDef {
	return []ai.ToolDef{
		{
			Name:        toolLookupListings,
			Description: "Search listings by beds/baths/sqft/price/acreage/location and return best matches.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"beds":        map[string]interface{}{"type": "integer"},
					"baths":       map[string]interface{}{"type": "number"},
					"sqft_target": map[string]interface{}{"type": "integer"},
					"price_min":   map[string]interface{}{"type": "integer"},
					"price_max":   map[string]interface{}{"type": "integer"},
					"acreage_min": map[string]interface{}{"type": "number"},
					"acreage_max": map[string]interface{}{"type": "number"},
					"location":    map[string]interface{}{"type": "string", "description": "city/state/zip/address keyword"},
					"limit":       map[string]interface{}{"type": "integer", "default": 4},
				},
				"required": []string{},
			},
		},
		{
			Name:        toolLogLead,
			Description: "Record visitor contact info and session summary.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"name":           map[string]interface{}{"type": "string"},
					"email":          map[string]interface{}{"type": "string"},
					"phone":          map[string]interface{}{"type": "string"},
					"contact_method": map[string]interface{}{"type": "string", "description": "email, text, or call"},
					"preferred_time": map[string]interface{}{"type": "string", "description": "Preferred time window"},
					"intent":         map[string]interface{}{"type": "string"},
					"urgency":        map[string]interface{}{"type": "string"},
					"summary":        map[string]interface{}{"type": "string"},
					"interest":       map[string]interface{}{"type": "string", "description": "listing address or name"},
				},
				"required": []string{},
			},
		},
	}
}

func routingToolDefs() []ai.ToolDef {
	return []ai.ToolDef{
		{
			Name:        toolRecordRouting,
			Description: "Capture routing metadata for the current assistant response.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"intent":       map[string]interface{}{"type": "string", "description": "buy, book, pricing, question, support, or other"},
					"lead_capture": map[string]interface{}{"type": "string", "description": "yes or no"},
					"urgency":      map[string]interface{}{"type": "string", "description": "today, this_week, soon, flexible, or unknown"},
					"next_step":    map[string]interface{}{"type": "string", "description": "ask_need, ask_timeline, ask_constraints, ask_budget, ask_contact, ask_schedule, or confirm_submission"},
					"summary":      map[string]interface{}{"type": "string"},
				},
				"required": []string{},
			},
		},
	}
}
