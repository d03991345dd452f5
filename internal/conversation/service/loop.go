package service

import (
	"context"
	"encoding/json"
	"strings"

	"receptionist_backend/internal/conversation/routing"
	"receptionist_backend/platform/ai"
	"receptionist_backend/platform/logger"
)

// maxToolRounds bounds the tool-call exchange per turn.
const maxToolRounds = 3

type loopState int

const (
	stateAwaitingModel loopState = iota
	stateDispatchingTools
	stateDone
	stateExhausted
)

// conversationLoop drives the bounded tool-call exchange with the model.
type conversationLoop struct {
	provider ai.Provider
	tools    dispatcher
	log      *logger.Logger
}

// run exchanges up to maxToolRounds completions with the model, dispatching
// requested tools between rounds. When the model stops calling tools its text
// is returned; an empty final round falls back to the last non-empty text
// from an earlier round. Hitting the round cap returns whatever text the
// final round produced, which may be empty.
func (l *conversationLoop) run(ctx context.Context, messages []ai.Message, conversationID string, profile map[string]string, tools []ai.ToolDef, choice ai.ToolChoice) (string, []toolEvent, error) {
	working := make([]ai.Message, len(messages))
	copy(working, messages)

	var events []toolEvent
	var rawText, lastText string

	state := stateAwaitingModel
	for round := 0; state == stateAwaitingModel; round++ {
		if round >= maxToolRounds {
			state = stateExhausted
			break
		}

		msg, err := l.provider.CreateChatCompletion(ctx, working, tools, choice)
		if err != nil {
			return "", events, err
		}
		rawText = stripLoopText(msg.Content)
		calls := parseToolCalls(msg)
		if len(calls) == 0 {
			state = stateDone
			break
		}
		if rawText != "" {
			lastText = rawText
		}

		state = stateDispatchingTools
		working = append(working, ai.Message{
			Role:      ai.RoleAssistant,
			Content:   rawText,
			ToolCalls: calls,
		})
		for _, call := range calls {
			result, err := l.tools.dispatch(ctx, call, conversationID, profile)
			if err != nil {
				return "", events, err
			}
			ok := true
			if v, exists := result["ok"].(bool); exists {
				ok = v
			}
			l.log.ToolDispatched(conversationID, call.Name, ok)
			events = append(events, toolEvent{
				Name:      call.Name,
				Arguments: safeJSONArgs(call.Arguments),
				Result:    result,
			})
			payload, _ := json.Marshal(result)
			working = append(working, ai.Message{
				Role:       ai.RoleTool,
				Content:    string(payload),
				ToolCallID: call.ID,
				Name:       call.Name,
			})
		}
		state = stateAwaitingModel
	}

	if state == stateDone && rawText == "" && lastText != "" {
		return lastText, events, nil
	}
	return rawText, events, nil
}

// runRoutingSubCall asks the model to classify the finished turn with a
// forced record_routing call. Provider failures degrade to nil so the caller
// can fall back to inline-block routing.
func (l *conversationLoop) runRoutingSubCall(ctx context.Context, userMessage, assistantReply string) *routing.Decision {
	if assistantReply == "" {
		return nil
	}
	messages := []ai.Message{
		{Role: ai.RoleSystem, Content: routingToolPrompt},
		{Role: ai.RoleUser, Content: "User message:\n" + userMessage + "\n\nAssistant reply:\n" + assistantReply},
	}
	msg, err := l.provider.CreateChatCompletion(ctx, messages, routingToolDefs(), ai.ToolChoice{Name: toolRecordRouting})
	if err != nil {
		l.log.Warn("routing sub-call failed", "error", err)
		return nil
	}
	for _, call := range parseToolCalls(msg) {
		if call.Name != toolRecordRouting {
			continue
		}
		decision := routing.SanitizeArgs(safeJSONArgs(call.Arguments))
		return &decision
	}
	return nil
}

var loopRoutingKeys = map[string]bool{
	"intent": true, "lead_capture": true, "urgency": true,
	"stage": true, "next_step": true, "summary": true,
}

// stripLoopText removes tool-call markup and any trailing routing key lines
// the model leaked into its visible text.
func stripLoopText(content string) string {
	if content == "" {
		return ""
	}
	cleaned := toolCallJSONPattern.ReplaceAllString(content, "")
	if idx := strings.Index(strings.ToLower(cleaned), "<tool_call>"); idx != -1 {
		cleaned = cleaned[:idx]
	}
	lines := strings.Split(strings.TrimSpace(cleaned), "\n")
	if len(lines) == 1 && lines[0] == "" {
		return ""
	}
	for i, line := range lines {
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(line)), "routing:") {
			lines = lines[:i]
			break
		}
	}
	trailing := 0
	for i := len(lines) - 1; i >= 0; i-- {
		key := strings.ToLower(strings.TrimSpace(strings.SplitN(lines[i], ":", 2)[0]))
		if loopRoutingKeys[key] {
			trailing++
		} else {
			break
		}
	}
	if trailing >= 2 {
		lines = lines[:len(lines)-trailing]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
