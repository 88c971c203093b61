// Package tools implements the callable capabilities exposed to the
// reasoning service: the database query tool and the price prediction
// tool. The set is closed; dispatch is an exhaustive match, not a
// runtime lookup.
package tools

import (
	"context"
	"encoding/json"

	"github.com/seetohjy/hdb-insights/internal/adapter/llm"
	"github.com/seetohjy/hdb-insights/internal/domain"
)

// Tool is a named, schema-constrained callable capability. Execute never
// returns a Go error: every failure is a recoverable ToolFailure that
// flows back into the conversation.
type Tool interface {
	Name() string
	Description() string
	InputSchema() json.RawMessage
	Execute(ctx context.Context, input json.RawMessage) (json.RawMessage, *domain.ToolFailure)
}

// Toolset is the closed set of tools available to the orchestration loop.
type Toolset struct {
	Query   *QueryTool
	Predict *PredictTool
}

// NewToolset builds the toolset.
func NewToolset(query *QueryTool, predict *PredictTool) *Toolset {
	return &Toolset{Query: query, Predict: predict}
}

// Definitions returns the tool schemas handed to the reasoning service.
func (ts *Toolset) Definitions() []llm.ToolDefinition {
	all := []Tool{ts.Query, ts.Predict}
	defs := make([]llm.ToolDefinition, 0, len(all))
	for _, t := range all {
		defs = append(defs, llm.ToolDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			InputSchema: t.InputSchema(),
		})
	}
	return defs
}

// Dispatch routes one invocation to the named tool. An unknown name is a
// recoverable validation failure so the reasoning service can correct
// itself on the next turn.
func (ts *Toolset) Dispatch(ctx context.Context, name string, input json.RawMessage) (json.RawMessage, *domain.ToolFailure) {
	switch name {
	case ts.Query.Name():
		return ts.Query.Execute(ctx, input)
	case ts.Predict.Name():
		return ts.Predict.Execute(ctx, input)
	default:
		return nil, domain.NewToolFailure(domain.FailureKindValidation, "unknown tool %q", name)
	}
}

// FailurePayload serializes a ToolFailure for a tool_response payload.
func FailurePayload(f *domain.ToolFailure) json.RawMessage {
	data, err := json.Marshal(domain.FailurePayload{Error: f})
	if err != nil {
		return json.RawMessage(`{"error":{"kind":"ExecutionError","detail":"failed to encode failure"}}`)
	}
	return data
}
