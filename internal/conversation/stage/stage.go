// Package stage derives the qualification stage and next question focus from
// a conversation profile. The checklist runs in a strict order: need,
// timeline, constraints, budget, contact, schedule.
package stage

// Checklist focus values in evaluation order.
const (
	FocusNeed        = "need"
	FocusTimeline    = "timeline"
	FocusConstraints = "constraints"
	FocusBudget      = "budget"
	FocusContact     = "contact"
	FocusSchedule    = "schedule"
	FocusConfirm     = "confirm"
)

// Descriptions guide the model toward the current focus.
var Descriptions = map[string]string{
	FocusNeed:        "Clarify what they need (product/service/issue) before moving on.",
	FocusTimeline:    "Confirm the timing or deadline before anything else.",
	FocusConstraints: "Ask about any requirements, location, or constraints.",
	FocusBudget:      "Ask if there is a budget or range to stay within.",
	FocusContact:     "Collect the visitor name plus email/phone so a teammate can follow up.",
	FocusSchedule:    "Offer current openings only if the visitor wants to book now.",
	FocusConfirm:     "Confirm next steps or offer to send a recap.",
}

// Questions are deterministic fallbacks when the model output must be replaced.
var Questions = map[string]string{
	FocusNeed:        "What do you need help with today?",
	FocusTimeline:    "When do you need this by?",
	FocusConstraints: "Are there any must-haves or constraints I should note?",
	FocusBudget:      "Is there a budget or range I should keep in mind?",
	FocusContact:     "What's the best name and email or phone number for the follow-up?",
	FocusSchedule:    "Would you like me to hold one of the current openings?",
	FocusConfirm:     "Shall I send a quick recap with next steps?",
}

// Compute returns (stage, focus) for the given profile. It is pure and total;
// the first unmet checklist item becomes the focus, and once everything is
// satisfied the profile sits in "schedule".
func Compute(profile map[string]string) (string, string) {
	urgency := profile["urgency"]
	if urgency == "" {
		urgency = "unknown"
	}
	timelineKnown := profile["requested_date"] != "" || urgency != "unknown"
	needKnown := profile["product_name"] != "" || profile["product_type"] != "" || profile["summary"] != ""
	constraintsKnown := profile["inventory_status"] != "" || profile["consult_type"] != ""
	budgetKnown := profile["budget"] != ""
	contactKnown := profile["contact_email"] != "" || profile["contact_phone"] != ""
	nameKnown := profile["contact_name"] != ""

	switch {
	case !needKnown:
		return "discover", FocusNeed
	case !timelineKnown:
		return "timeline", FocusTimeline
	case !constraintsKnown:
		return "constraints", FocusConstraints
	case !budgetKnown:
		return "budget", FocusBudget
	case !contactKnown || !nameKnown:
		return "contact", FocusContact
	default:
		return "schedule", FocusSchedule
	}
}

// FallbackQuestion picks the deterministic question for a focus. A schedule
// focus downgrades to the timeline question unless scheduling was invited.
func FallbackQuestion(focus string, allowSchedule bool) string {
	if focus == FocusSchedule && !allowSchedule {
		return Questions[FocusTimeline]
	}
	if q, ok := Questions[focus]; ok {
		return q
	}
	return Questions[FocusTimeline]
}
