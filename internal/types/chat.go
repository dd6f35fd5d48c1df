package types

import "time"

type MessageRole string

const (
	RoleUser  MessageRole = "user"
	RoleModel MessageRole = "model"
)

// Source is a grounding citation attached to a model answer.
type Source struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

type ChatMessage struct {
	Role      MessageRole `json:"role"`
	Text      string      `json:"text"`
	Timestamp time.Time   `json:"timestamp"`
	Sources   []Source    `json:"sources,omitempty"`
}

// ChatReply is what the chat gateway hands back for one message.
type ChatReply struct {
	Text    string   `json:"text"`
	Sources []Source `json:"sources"`
}

// Request/Response types for chat API
type ChatRequest struct {
	Message string `json:"message"`
}

type ChatResponse struct {
	UserMessage  ChatMessage `json:"userMessage"`
	ModelMessage ChatMessage `json:"modelMessage"`
}
