package domain

import "encoding/json"

// EventType is the discriminant of a StreamEvent.
type EventType string

const (
	EventTypeStart            EventType = "start"
	EventTypeAssistantMessage EventType = "assistant_message"
	EventTypeToolCall         EventType = "tool_call"
	EventTypeToolResponse     EventType = "tool_response"
	EventTypeEnd              EventType = "end"
	EventTypeError            EventType = "error"
)

// StreamEvent is one unit of the ordered progress protocol pushed to the
// caller. Within a session the sequence is always
// start, (assistant_message | tool_call tool_response)*, (end | error).
type StreamEvent struct {
	Type      EventType       `json:"type"`
	Content   string          `json:"content,omitempty"`
	Name      string          `json:"name,omitempty"`
	Input     json.RawMessage `json:"input,omitempty"`
	Response  json.RawMessage `json:"response,omitempty"`
	Detail    string          `json:"detail,omitempty"`
	Retryable *bool           `json:"retryable,omitempty"`
}

func StartEvent() StreamEvent {
	return StreamEvent{Type: EventTypeStart}
}

func AssistantMessageEvent(content string) StreamEvent {
	return StreamEvent{Type: EventTypeAssistantMessage, Content: content}
}

func ToolCallEvent(name string, input json.RawMessage) StreamEvent {
	return StreamEvent{Type: EventTypeToolCall, Name: name, Input: input}
}

func ToolResponseEvent(name string, response json.RawMessage) StreamEvent {
	return StreamEvent{Type: EventTypeToolResponse, Name: name, Response: response}
}

func EndEvent() StreamEvent {
	return StreamEvent{Type: EventTypeEnd}
}

func ErrorEvent(detail string, retryable bool) StreamEvent {
	return StreamEvent{Type: EventTypeError, Detail: detail, Retryable: &retryable}
}
