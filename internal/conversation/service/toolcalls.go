package service

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"receptionist_backend/platform/ai"
)

var toolCallJSONPattern = regexp.MustCompile(`(?is)<tool_call>\s*(.*?)\s*</tool_call>`)

// parseToolCalls normalizes tool invocations out of an assistant message.
// Structured calls win; otherwise inline <tool_call> text blocks are parsed,
// including unterminated ones some models emit.
func parseToolCalls(msg ai.Message) []ai.ToolCall {
	var calls []ai.ToolCall
	for _, call := range msg.ToolCalls {
		if call.Name == "" {
			continue
		}
		if call.ID == "" {
			call.ID = uuid.NewString()
		}
		calls = append(calls, call)
	}
	if len(calls) > 0 {
		return calls
	}

	for _, m := range toolCallJSONPattern.FindAllStringSubmatch(msg.Content, -1) {
		if call, ok := toolCallFromPayload(m[1]); ok {
			calls = append(calls, call)
		}
	}
	if len(calls) > 0 {
		return calls
	}
	for _, block := range unterminatedToolCallBlocks(msg.Content) {
		if call, ok := toolCallFromPayload(block); ok {
			calls = append(calls, call)
		}
	}
	return calls
}

func toolCallFromPayload(raw string) (ai.ToolCall, bool) {
	payload := extractToolCallPayload(raw)
	if payload == nil {
		return ai.ToolCall{}, false
	}
	name, _ := payload["name"].(string)
	if name == "" {
		return ai.ToolCall{}, false
	}
	return ai.ToolCall{
		ID:        uuid.NewString(),
		Name:      name,
		Arguments: argumentsAsString(payload["arguments"]),
	}, true
}

func argumentsAsString(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(data)
	}
}

// extractToolCallPayload pulls the outermost JSON object out of a raw block.
// Some models double the braces, so {{...}} is normalized before giving up.
func extractToolCallPayload(raw string) map[string]interface{} {
	text := strings.TrimSpace(raw)
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end <= start {
		return nil
	}
	candidate := strings.TrimSpace(text[start : end+1])
	if strings.HasPrefix(candidate, "{{") && strings.HasSuffix(candidate, "}}") {
		candidate = candidate[1 : len(candidate)-1]
	}

	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(candidate), &payload); err == nil {
		return payload
	}
	normalized := strings.ReplaceAll(strings.ReplaceAll(candidate, "{{", "{"), "}}", "}")
	if err := json.Unmarshal([]byte(normalized), &payload); err == nil {
		return payload
	}
	return nil
}

// unterminatedToolCallBlocks scans for <tool_call> openings with no closing
// tag, stopping each block at the next tool-call or routing marker.
func unterminatedToolCallBlocks(content string) []string {
	var blocks []string
	if content == "" {
		return blocks
	}
	lowered := strings.ToLower(content)
	const openTag, closeTag = "<tool_call>", "</tool_call>"
	start := 0
	for {
		idx := strings.Index(lowered[start:], openTag)
		if idx == -1 {
			break
		}
		after := start + idx + len(openTag)
		if end := strings.Index(lowered[after:], closeTag); end != -1 {
			blocks = append(blocks, content[after:after+end])
			start = after + end + len(closeTag)
			continue
		}
		stop := len(content)
		for _, marker := range []string{openTag, "<routing>"} {
			if pos := strings.Index(lowered[after:], marker); pos != -1 && after+pos < stop {
				stop = after + pos
			}
		}
		blocks = append(blocks, content[after:stop])
		start = stop
	}
	return blocks
}

// safeJSONArgs decodes tool arguments tolerantly. Unparseable payloads come
// back as {"_raw": ...} so dispatch proceeds with defaults instead of failing.
func safeJSONArgs(raw string) map[string]interface{} {
	if strings.TrimSpace(raw) == "" {
		return map[string]interface{}{}
	}
	var args map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &args); err != nil || args == nil {
		return map[string]interface{}{"_raw": raw}
	}
	return args
}
