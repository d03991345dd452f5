// Package ai defines the model provider contract used by the conversation
// core. Providers adapt a concrete LLM API to a neutral chat-completion shape
// so the orchestration logic stays identical regardless of backend.
package ai

import "context"

// Message roles on the wire.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// ToolCall is a model-issued request to invoke a named tool.
// Arguments is the raw JSON payload as produced by the model; callers are
// responsible for tolerant decoding.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolDef declares a tool the model may call. Parameters is a JSON schema
// object in the OpenAI function-calling dialect.
type ToolDef struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Parameters  map[string]interface{} `json:"parameters,omitempty"`
}

// ToolChoice pins the model to a single tool. The zero value means "auto".
type ToolChoice struct {
	Name string
}

// Forced reports whether the choice pins a specific tool.
func (tc ToolChoice) Forced() bool { return tc.Name != "" }

// Message is one chat message. For tool-result messages Role is RoleTool,
// ToolCallID references the originating call and Name carries the tool name.
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	Name       string     `json:"name,omitempty"`
}

// Provider is the capability the conversation core consumes.
//
// Generate is plain free-text completion. CreateChatCompletion is a single
// tool-augmented round: the returned assistant message may carry text, tool
// calls, or both. Providers must never interpret tool calls themselves.
type Provider interface {
	Name() string
	Generate(ctx context.Context, messages []Message) (string, error)
	CreateChatCompletion(ctx context.Context, messages []Message, tools []ToolDef, choice ToolChoice) (Message, error)
}
