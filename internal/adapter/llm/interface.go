// Package llm provides the client for the external reasoning service.
package llm

import "context"

// ReasoningClient defines the single operation the orchestration loop and
// the query translator need from the reasoning service.
type ReasoningClient interface {
	// CreateMessage sends the conversation plus tool schemas and returns
	// the service's next message (free text and/or tool_use blocks).
	CreateMessage(ctx context.Context, req *MessageRequest) (*MessageResponse, error)
}

// Ensure Client implements ReasoningClient interface.
var _ ReasoningClient = (*Client)(nil)
