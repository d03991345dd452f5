package service

import (
	"fmt"
	"os"
	"strings"

	"receptionist_backend/internal/conversation/stage"
	"receptionist_backend/internal/listings/feed"
)

const defaultSystemPrompt = `You are an after-hours AI receptionist for a real-estate team. Non-negotiables:
- Never invent addresses, prices, beds/baths, acreage, or availability—only use details supplied in the [Listings] context.
- If the visitor wants a tour, first ask whether they are working with an agent and whether they have a pre-approval letter before offering to coordinate.
- If the visitor greets you, greet back and ask what brings them in today; do not assume a property or schedule.
- Keep replies concise (3 short sentences at most) and ask exactly one question per turn.
- Collect the best email/phone and preferred contact method before confirming anything.
- If data is missing, say you'll confirm with the team and collect contact + preferred time.
- Mention only properties that appear in [Listings]; otherwise say you'll confirm.`

const toolingPrompt = `For property specs or address requests, call lookup_listings with the provided beds/baths/sqft/price/acreage/location. Return best match first; if top is pending, include an active alternative.
When listing results include image URLs, emit image tokens <image1 src="URL" alt="ADDRESS"></image1> up to <image5>. Hyperlink the address if listing_url is present.
If no listing matches, ask for budget/bed/bath/sqft/location and offer team follow-up.
If asked for unrelated work, say you are the real-estate reception bot and steer back to property needs.
Before offering a tour, ask whether they are working with an agent and whether they have a pre-approval letter.
Never ask more than one question per turn—pick the highest-priority question only.
Do not call log_lead unless the current user message contains name AND email/phone AND a property/interest. If contact or property is missing, ask for exactly one missing item instead of calling the tool.
If a user asks for photos/images and the listing has no image URLs, say the demo feed has no photos for that address and offer to share when available.`

const routingToolPrompt = `You are a routing classifier.
Return ONLY a record_routing tool call based on the latest user message and the assistant reply.
Do not include any natural language.`

const fallbackAbout = "We provide an after-hours AI receptionist that answers FAQs about your real-estate listings and captures contact details for follow-up."

// loadSystemPrompt returns the system prompt, preferring an operator-supplied
// file when configured.
func loadSystemPrompt(path string) string {
	if path == "" {
		return defaultSystemPrompt
	}
	data, err := os.ReadFile(path)
	if err != nil || strings.TrimSpace(string(data)) == "" {
		return defaultSystemPrompt
	}
	return strings.TrimSpace(string(data))
}

// buildProfilePrompt renders the known profile facts and the next focus into
// a compact system message.
func buildProfilePrompt(profile map[string]string, stageName, focus string) string {
	var known []string
	if profile["contact_name"] != "" {
		known = append(known, "Name: "+profile["contact_name"])
	}
	if profile["product_name"] != "" {
		item := "Item: " + profile["product_name"]
		if profile["inventory_status"] != "" {
			item += " (" + profile["inventory_status"] + ")"
		}
		if profile["product_sku"] != "" {
			item += " [" + profile["product_sku"] + "]"
		}
		known = append(known, item)
	}
	if profile["requested_date"] != "" {
		known = append(known, "Timeline: "+profile["requested_date"])
	} else if profile["urgency"] != "" && profile["urgency"] != "unknown" {
		known = append(known, "Urgency: "+profile["urgency"])
	}
	if profile["consult_type"] != "" {
		known = append(known, "Type: "+profile["consult_type"])
	}
	if profile["budget"] != "" {
		known = append(known, "Budget: "+profile["budget"])
	}
	if profile["contact_email"] != "" || profile["contact_phone"] != "" {
		known = append(known, "Contact on file")
	}
	knownText := "None yet"
	if len(known) > 0 {
		knownText = strings.Join(known, ", ")
	}

	focusText, ok := stage.Descriptions[focus]
	if !ok {
		focusText = "Ask the next qualifying question."
	}
	return "[Profile Context]\n" +
		"Stage: " + stageName + "\n" +
		"Known: " + knownText + "\n" +
		"Next focus: " + focusText + "\n" +
		"Checklist (use only if relevant; do not interrogate): need, timing, constraints, budget, contact.\n" +
		"Guidelines: Ask exactly one question, keep replies to 3 short sentences at most, avoid filler closings, and stay within the listings data provided."
}

// buildSiteContext renders the read-only business facts and the current
// listings into a delimited system message.
func buildSiteContext(listings []feed.Listing) string {
	parts := []string{"[About]\n" + fallbackAbout}

	if len(listings) > 0 {
		if len(listings) > 10 {
			listings = listings[:10]
		}
		lines := make([]string, 0, len(listings))
		for _, l := range listings {
			lines = append(lines, fmt.Sprintf("- %s: %dbd/%.1fba | %d sqft | $%d | status=%s | acres=%.2f",
				l.Address, l.Beds, l.Baths, l.Sqft, l.Price, l.Status, l.Acres))
		}
		parts = append(parts, "[Listings]\n"+strings.Join(lines, "\n"))
	}

	inner := "Site info (read-only):\n" + strings.Join(parts, "\n\n")
	return "<SITEDATA>\n" + inner + "\n</SITEDATA>"
}
