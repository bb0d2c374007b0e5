package contract

// Role classifies a caller. Staff is a strict superset of guest: every tool
// reachable by a guest is reachable by staff.
type Role string

const (
	RoleGuest Role = "guest"
	RoleStaff Role = "staff"
)

// Allows reports whether a caller with role r may use a tool that requires
// at least min.
func (r Role) Allows(min Role) bool {
	if r == RoleStaff {
		return true
	}
	return r == min
}

// Identity is the resolved caller record. Immutable for the exchange.
type Identity struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  Role   `json:"role"`
}

type MessageRole string

const (
	MessageRoleSystem    MessageRole = "system"
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
	MessageRoleTool      MessageRole = "tool"
)

// ToolCall is a single tool invocation requested by the model. Arguments is
// the raw JSON payload; decoding happens at the catalog boundary so malformed
// arguments degrade into a textual tool result instead of aborting the loop.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Message is one turn of an orchestrated exchange.
type Message struct {
	Role       MessageRole `json:"role"`
	Content    string      `json:"content"`
	ToolCalls  []ToolCall  `json:"tool_calls,omitempty"`
	ToolCallID string      `json:"tool_call_id,omitempty"`
	ToolName   string      `json:"tool_name,omitempty"`
}

func SystemMessage(content string) Message {
	return Message{Role: MessageRoleSystem, Content: content}
}

func UserMessage(content string) Message {
	return Message{Role: MessageRoleUser, Content: content}
}

func ToolMessage(callID, toolName, content string) Message {
	return Message{
		Role:       MessageRoleTool,
		Content:    content,
		ToolCallID: callID,
		ToolName:   toolName,
	}
}

// ToolSchema describes a callable tool for the model. Parameters is a JSON
// schema object.
type ToolSchema struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// ToolResult is the textual outcome of one tool call, fed back to the model
// as a tool message. A failed tool produces a result too; it never raises.
type ToolResult struct {
	CallID  string `json:"call_id"`
	Tool    string `json:"tool"`
	Content string `json:"content"`
}
