package routing

import (
	"strings"
	"testing"
)

func TestParseReplySplitsBlock(t *testing.T) {
	text := "Happy to line up a tour.\n\n<ROUTING>\nintent: book\nlead_capture: yes\nurgency: this_week\nstage: contact\nnext_step: ask_contact\nsummary: Wants a tour this week\n</ROUTING>"
	parsed := ParseReply(text)
	if !parsed.HasBlock {
		t.Fatal("HasBlock = false")
	}
	if parsed.Text != "Happy to line up a tour." {
		t.Errorf("text = %q", parsed.Text)
	}
	if parsed.Routing.Intent != "book" || parsed.Routing.Urgency != "this_week" {
		t.Errorf("routing = %+v", parsed.Routing)
	}
	if parsed.Routing.Summary != "Wants a tour this week" {
		t.Errorf("summary = %q", parsed.Routing.Summary)
	}
}

func TestParseReplyNoBlock(t *testing.T) {
	parsed := ParseReply("Just an answer.")
	if parsed.HasBlock {
		t.Error("HasBlock = true for plain text")
	}
	if parsed.Text != "Just an answer." {
		t.Errorf("text = %q", parsed.Text)
	}
	if parsed.Routing != Default() {
		t.Errorf("routing = %+v, want defaults", parsed.Routing)
	}
}

func TestParseReplyIgnoresUnknownKeysAndFillsDefaults(t *testing.T) {
	text := "Reply.\n<ROUTING>\nintent: pricing\nmood: cheerful\n</ROUTING>"
	parsed := ParseReply(text)
	if parsed.Routing.Intent != "pricing" {
		t.Errorf("intent = %q", parsed.Routing.Intent)
	}
	if parsed.Routing.LeadCapture != "no" || parsed.Routing.NextStep != "ask_need" {
		t.Errorf("missing keys not defaulted: %+v", parsed.Routing)
	}
}

func TestParseReplyStripsToolCallMarkup(t *testing.T) {
	text := "Let me check that.\n<tool_call>{\"name\":\"lookup_listings\",\"arguments\":\"{}\"}</tool_call>"
	parsed := ParseReply(text)
	if strings.Contains(parsed.Text, "tool_call") {
		t.Errorf("tool markup left in text: %q", parsed.Text)
	}
	if parsed.Text != "Let me check that." {
		t.Errorf("text = %q", parsed.Text)
	}
}

func TestParseReplyStripsUnterminatedToolCall(t *testing.T) {
	parsed := ParseReply("Checking now. <tool_call>{\"name\":")
	if parsed.Text != "Checking now." {
		t.Errorf("text = %q", parsed.Text)
	}
}

func TestResolvePrecedence(t *testing.T) {
	tool := Sanitize(map[string]string{"intent": "support", "summary": "from tool"})
	parsed := ParseReply("hi\n<ROUTING>\nintent: pricing\nsummary: from block\n</ROUTING>")

	// Tool event wins over the inline block.
	got := Resolve(&tool, parsed, "just saying hello", 0)
	if got.Intent != "support" || got.Summary != "from tool" {
		t.Errorf("tool routing did not win: %+v", got)
	}

	// No tool event: inline block wins.
	got = Resolve(nil, parsed, "just saying hello", 0)
	if got.Intent != "pricing" || got.Summary != "from block" {
		t.Errorf("block routing did not win: %+v", got)
	}

	// Neither: defaults plus guardrails.
	got = Resolve(nil, ParseReply("just saying hello"), "just saying hello", 0)
	if got.Intent != "other" || got.LeadCapture != "no" {
		t.Errorf("defaults not applied: %+v", got)
	}
}

func TestResolveGuardrailsRunLast(t *testing.T) {
	tool := Sanitize(map[string]string{"intent": "question", "lead_capture": "no"})
	got := Resolve(&tool, ParsedReply{}, "I want to buy no budget limit", 0)
	if got.Intent != "buy" || got.LeadCapture != "yes" {
		t.Errorf("guardrails did not override tool routing: %+v", got)
	}
}
