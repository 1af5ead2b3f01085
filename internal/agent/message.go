package agent

// Roles a working message can carry.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message is one entry in the working message list of a turn. ToolName
// and ToolCallID are set only on tool-role messages; the id ties a tool
// result back to the generation round that requested it.
type Message struct {
	Role       string
	Text       string
	ToolName   string
	ToolCallID string
}
