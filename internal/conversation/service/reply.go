package service

import (
	"regexp"
	"strings"
)

var schedulingKeywords = []string{
	"schedule", "appointment", "available", "availability",
	"consult", "visit", "pickup", "pick up",
}

var fillerPhrases = []*regexp.Regexp{
	regexp.MustCompile(`(?i)looking forward to`),
	regexp.MustCompile(`(?i)let me know if you have any other questions`),
	regexp.MustCompile(`(?i)feel free to`),
	regexp.MustCompile(`(?i)happy to help`),
}

// shouldOfferSchedule reports whether the turn may pitch an opening instead
// of another qualifying question.
func shouldOfferSchedule(stageName, message string, extracted, profile map[string]string) bool {
	lowered := strings.ToLower(message)
	for _, keyword := range schedulingKeywords {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	if extracted["requested_date"] != "" {
		return true
	}
	urgency := extracted["urgency"]
	if urgency == "" {
		urgency = profile["urgency"]
	}
	if stageName == "schedule" || stageName == "confirm" {
		switch urgency {
		case "today", "this_week", "soon":
			return true
		}
	}
	return false
}

// contactAcknowledgment returns a short confirmation sentence when the turn
// added a new email or phone to the profile.
func contactAcknowledgment(oldProfile, newProfile map[string]string) string {
	var parts []string
	if newProfile["contact_email"] != "" && newProfile["contact_email"] != oldProfile["contact_email"] {
		parts = append(parts, "email")
	}
	if newProfile["contact_phone"] != "" && newProfile["contact_phone"] != oldProfile["contact_phone"] {
		parts = append(parts, "number")
	}
	if len(parts) == 0 {
		return ""
	}
	return "Thanks—I’ve noted your " + strings.Join(parts, " and ") + "."
}

func removeFillerPhrases(text string) string {
	cleaned := text
	for _, phrase := range fillerPhrases {
		cleaned = phrase.ReplaceAllString(cleaned, "")
	}
	return strings.Join(strings.Fields(cleaned), " ")
}

// postProcessReply prepends the contact acknowledgment and enforces the
// one-question-per-turn contract by truncating after the first question mark.
func postProcessReply(text, contactAck string) string {
	response := removeFillerPhrases(strings.TrimSpace(text))
	if contactAck != "" {
		response = strings.TrimSpace(contactAck + " " + response)
	}
	first := strings.Index(response, "?")
	if first != -1 && strings.Contains(response[first+1:], "?") {
		response = strings.TrimSpace(response[:first+1])
	}
	return response
}
