package ai

import (
	"strings"

	"github.com/google/uuid"
)

// Role identifies who authored a Message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one immutable entry of a conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`

	// ToolCalls is only set on assistant messages.
	ToolCalls []ToolRequest `json:"tool_calls,omitempty"`

	// ToolCallID and ToolName correlate a tool-result message with its request.
	ToolCallID string `json:"tool_call_id,omitempty"`
	ToolName   string `json:"tool_name,omitempty"`
	IsError    bool   `json:"is_error,omitempty"`
}

// ToolRequest is one tool invocation asked for by the model.
type ToolRequest struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// ToolSpec is the catalog entry the model sees for one tool.
type ToolSpec struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Parameters  *Schema `json:"parameters"`
}

// Schema is the JSON Schema subset tools use to declare their arguments.
type Schema struct {
	Type        string             `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Required    []string           `json:"required,omitempty"`
	Enum        []string           `json:"enum,omitempty"`
}

func UserMessage(text string) Message {
	return Message{Role: RoleUser, Content: text}
}

func AssistantMessage(text string, calls ...ToolRequest) Message {
	return Message{Role: RoleAssistant, Content: text, ToolCalls: calls}
}

func ToolResultMessage(callID, toolName, content string, isError bool) Message {
	return Message{Role: RoleTool, Content: content, ToolCallID: callID, ToolName: toolName, IsError: isError}
}

// HasToolCalls reports whether the message asks for at least one tool.
func (m Message) HasToolCalls() bool {
	return len(m.ToolCalls) > 0
}

// NewCallID returns an invocation id for providers that do not assign one.
func NewCallID() string {
	return "call_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}

// ensureCallIDs fills missing ids and makes duplicates unique within one message.
func ensureCallIDs(calls []ToolRequest) []ToolRequest {
	seen := make(map[string]struct{}, len(calls))
	for i := range calls {
		if _, dup := seen[calls[i].ID]; calls[i].ID == "" || dup {
			calls[i].ID = NewCallID()
		}
		seen[calls[i].ID] = struct{}{}
		if calls[i].Arguments == nil {
			calls[i].Arguments = map[string]any{}
		}
	}
	return calls
}
