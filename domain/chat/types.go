package chat

import (
	"encoding/json"

	"datalens/domain/core"
)

// Role identifies who produced a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RoleTool      Role = "tool"
)

// Conversation groups the messages exchanged about one dataset.
type Conversation struct {
	ID        core.ConversationID `json:"id"`
	DatasetID core.DatasetID      `json:"datasetId"`
	Title     string              `json:"title"`
	CreatedAt core.Timestamp      `json:"createdAt"`
	UpdatedAt core.Timestamp      `json:"updatedAt"`
}

// ToolCall records one tool invocation made while producing a reply.
type ToolCall struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Arguments  json.RawMessage `json:"arguments,omitempty"`
	Result     json.RawMessage `json:"result,omitempty"`
	Error      string          `json:"error,omitempty"`
	DurationMS int64           `json:"durationMs"`
}

// Message is a single conversation turn. Tool calls are attached to the
// assistant message that requested them.
type Message struct {
	ID        core.MessageID `json:"id"`
	Role      Role           `json:"role"`
	Content   string         `json:"content"`
	ToolCalls []ToolCall     `json:"tool_calls,omitempty"`
	CreatedAt core.Timestamp `json:"createdAt"`
}

// Stream chunk types, matching what the web client consumes over SSE.
const (
	ChunkContent  = "content"
	ChunkToolCall = "tool_call"
	ChunkError    = "error"
	ChunkDone     = "done"
)

// StreamChunk is one event of an in-flight reply. Tool chunks carry both the
// arguments the model supplied and the result the tool produced.
type StreamChunk struct {
	Type     string          `json:"type"`
	Content  string          `json:"content,omitempty"`
	Tool     string          `json:"tool,omitempty"`
	ToolArgs json.RawMessage `json:"tool_args,omitempty"`
	Result   json.RawMessage `json:"result,omitempty"`
	Status   string          `json:"status,omitempty"`
	Error    string          `json:"error,omitempty"`
}
