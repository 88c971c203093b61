package llm

import (
	"context"
	"sync"

	"github.com/seetohjy/hdb-insights/internal/domain"
)

// MockClient is a scripted ReasoningClient for tests. Each call consumes
// the next queued response or error, in order.
type MockClient struct {
	mu        sync.Mutex
	Responses []*MessageResponse
	Errs      []error
	Requests  []*MessageRequest
	calls     int
}

// Ensure MockClient implements ReasoningClient interface.
var _ ReasoningClient = (*MockClient)(nil)

// CreateMessage returns the next scripted response or error.
func (m *MockClient) CreateMessage(_ context.Context, req *MessageRequest) (*MessageResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Requests = append(m.Requests, req)
	i := m.calls
	m.calls++

	if i < len(m.Errs) && m.Errs[i] != nil {
		return nil, m.Errs[i]
	}
	if i < len(m.Responses) {
		return m.Responses[i], nil
	}
	// Ran out of script: behave like a final empty answer.
	return &MessageResponse{
		Role:       "assistant",
		StopReason: "end_turn",
		Content:    []domain.ContentBlock{{Type: domain.BlockTypeText, Text: ""}},
	}, nil
}

// Calls reports how many requests the mock has served.
func (m *MockClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// TextResponse builds a final text reply.
func TextResponse(text string) *MessageResponse {
	return &MessageResponse{
		Role:       "assistant",
		StopReason: "end_turn",
		Content:    []domain.ContentBlock{{Type: domain.BlockTypeText, Text: text}},
	}
}

// ToolUseResponse builds a reply requesting a single tool invocation.
func ToolUseResponse(id, name string, input []byte) *MessageResponse {
	return &MessageResponse{
		Role:       "assistant",
		StopReason: "tool_use",
		Content: []domain.ContentBlock{
			{Type: domain.BlockTypeToolUse, ID: id, Name: name, Input: input},
		},
	}
}
