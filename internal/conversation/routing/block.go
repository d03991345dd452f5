package routing

import (
	"regexp"
	"strings"
)

var (
	blockPattern    = regexp.MustCompile(`(?is)<ROUTING>(.*?)</ROUTING>`)
	toolCallStrip   = regexp.MustCompile(`(?is)<tool_call[^>]*>.*?(</tool_call>|$)`)
	keyValuePattern = regexp.MustCompile(`(?m)^\s*([^:\n]+):\s*(.*)$`)
)

// ParsedReply is the assistant text split from its inline routing block.
type ParsedReply struct {
	Text    string
	Routing Decision
	// HasBlock reports whether an inline routing block was found, so the
	// caller can distinguish parsed values from bare defaults.
	HasBlock bool
}

// ParseReply splits assistant output into clean text and the inline routing
// block the model may emit. Missing keys fall back to defaults, unrecognized
// keys are ignored, and stray tool-call markup is removed from the text.
func ParseReply(text string) ParsedReply {
	out := ParsedReply{Routing: Default()}

	clean := text
	if loc := blockPattern.FindStringSubmatchIndex(text); loc != nil {
		section := text[loc[2]:loc[3]]
		raw := map[string]string{}
		for _, m := range keyValuePattern.FindAllStringSubmatch(section, -1) {
			raw[strings.ToLower(strings.TrimSpace(m[1]))] = m[2]
		}
		out.Routing = Sanitize(raw)
		out.HasBlock = true
		clean = text[:loc[0]] + text[loc[1]:]
	}

	out.Text = stripToolCallArtifacts(strings.TrimSpace(clean))
	return out
}

func stripToolCallArtifacts(text string) string {
	if !strings.Contains(strings.ToLower(text), "<tool_call") {
		return text
	}
	cleaned := toolCallStrip.ReplaceAllString(text, "")
	if idx := strings.Index(strings.ToLower(cleaned), "<tool_call"); idx != -1 {
		cleaned = cleaned[:idx]
	}
	return strings.TrimSpace(cleaned)
}

// Resolve merges the three routing sources in documented precedence: a
// record_routing tool event wins, then the inline block, then defaults. The
// guardrail pass always runs last on the winner.
func Resolve(toolRouting *Decision, parsed ParsedReply, userMessage string, assistantTurns int) Decision {
	base := Default()
	switch {
	case toolRouting != nil:
		base = *toolRouting
	case parsed.HasBlock:
		base = parsed.Routing
	}
	return ApplyGuardrails(userMessage, base, assistantTurns)
}
