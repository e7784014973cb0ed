package models

// Message roles as they appear in conversation history.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message is one entry in a session's ordered history. History is
// append-only; a message is never mutated once appended.
type Message struct {
	Role      string     `json:"role"`
	Content   string     `json:"content"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"` // assistant messages only
	CallID    string     `json:"call_id,omitempty"`    // tool messages: originating call
	Name      string     `json:"name,omitempty"`       // tool messages: tool name
}

// ToolCall is a structured action request emitted by the model.
type ToolCall struct {
	ID        string                 `json:"id"`
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments"`
}

// ToolDef declares a callable action exposed to the model. Parameters is a
// JSON-Schema object describing the arguments.
type ToolDef struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters"`
}

// Reply is one model response: exactly one of Text or ToolCalls is
// populated.
type Reply struct {
	Text      string
	ToolCalls []ToolCall
}
