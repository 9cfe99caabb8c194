package types

import "encoding/json"

// ToolCall represents a request from the model to use a specific tool.
// The structure matches the OpenAI wire format.
type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function FunctionCall `json:"function"`
}

// FunctionCall carries the name and raw JSON arguments of a tool call.
type FunctionCall struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// ToolResult represents the result of executing a tool. It is sent back
// to the model as a tool message so it can incorporate the outcome.
type ToolResult struct {
	ToolCallID string `json:"tool_call_id"`
	Content    string `json:"content"`
}

// Message converts the result into a tool-role conversation message.
func (tr ToolResult) Message() Message {
	return Message{
		Role:       RoleTool,
		Content:    tr.Content,
		ToolCallID: tr.ToolCallID,
	}
}

// Tool describes a tool offered to the model in a completion request.
type Tool struct {
	Type     string   `json:"type"`
	Function Function `json:"function"`
}

// Function holds the schema the model sees for a callable function.
type Function struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Parameters  any    `json:"parameters"`
}
