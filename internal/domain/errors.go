package domain

import "fmt"

// FailureKind classifies a recoverable tool failure.
type FailureKind string

const (
	FailureKindValidation   FailureKind = "ValidationError"
	FailureKindInvalidInput FailureKind = "InvalidInput"
	FailureKindUnsafeQuery  FailureKind = "UnsafeQuery"
	FailureKindTranslation  FailureKind = "TranslationError"
	FailureKindExecution    FailureKind = "ExecutionError"
	FailureKindInference    FailureKind = "InferenceError"
)

// ToolFailure is the failure descriptor surfaced in a tool_response payload.
// Tool failures never terminate the session; they go back into the
// conversation so the reasoning service can revise its approach.
type ToolFailure struct {
	Kind   FailureKind `json:"kind"`
	Detail string      `json:"detail"`
}

func (f *ToolFailure) Error() string {
	return fmt.Sprintf("%s: %s", f.Kind, f.Detail)
}

// NewToolFailure builds a failure descriptor with a formatted detail.
func NewToolFailure(kind FailureKind, format string, args ...interface{}) *ToolFailure {
	return &ToolFailure{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// FailurePayload wraps a ToolFailure for serialization into a tool_response.
type FailurePayload struct {
	Error *ToolFailure `json:"error"`
}
