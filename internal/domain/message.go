// Package domain defines the core domain models for the question-answering loop.
package domain

import "encoding/json"

// Role identifies the author of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ContentBlock is one unit of message content. The reasoning service
// returns a mix of text and tool_use blocks; tool results are sent back
// as tool_result blocks inside a user message.
type ContentBlock struct {
	Type      string          `json:"type"` // text, tool_use, tool_result
	Text      string          `json:"text,omitempty"`
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name,omitempty"`
	Input     json.RawMessage `json:"input,omitempty"`
	ToolUseID string          `json:"tool_use_id,omitempty"`
	Content   string          `json:"content,omitempty"`
}

const (
	BlockTypeText       = "text"
	BlockTypeToolUse    = "tool_use"
	BlockTypeToolResult = "tool_result"
)

// Message is one entry of the conversation history. History is append-only;
// messages are never mutated after being appended.
type Message struct {
	Role    Role           `json:"role"`
	Content []ContentBlock `json:"content"`
}

// NewUserText builds a user message containing a single text block.
func NewUserText(text string) Message {
	return Message{
		Role:    RoleUser,
		Content: []ContentBlock{{Type: BlockTypeText, Text: text}},
	}
}

// NewToolResults builds the user message carrying tool results back to the
// reasoning service. Results must be in the same order as the tool_use
// blocks they answer.
func NewToolResults(results []ContentBlock) Message {
	return Message{Role: RoleUser, Content: results}
}
