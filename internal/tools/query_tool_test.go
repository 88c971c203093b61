package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/seetohjy/hdb-insights/internal/adapter/llm"
	"github.com/seetohjy/hdb-insights/internal/domain"
	"github.com/seetohjy/hdb-insights/internal/policy"
)

// fakeStore records executed statements and returns a scripted result.
type fakeStore struct {
	rows    []map[string]interface{}
	err     error
	queries []string
}

func (f *fakeStore) SelectRows(_ context.Context, query string) ([]map[string]interface{}, error) {
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	return f.rows, nil
}

func newTestGuard(t *testing.T) *policy.Engine {
	t.Helper()
	guard, err := policy.NewEngine(context.Background(), policy.ReadOnlyPolicy)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	return guard
}

func queryInputJSON(q string) json.RawMessage {
	data, _ := json.Marshal(map[string]string{"natural_query": q})
	return data
}

func TestQueryToolSuccess(t *testing.T) {
	translator := &llm.MockClient{Responses: []*llm.MessageResponse{
		llm.TextResponse(`{"sql": "SELECT town, AVG(resale_price) AS avg_price FROM resale_prices GROUP BY town;", "explanation": "average price per town"}`),
	}}
	store := &fakeStore{rows: []map[string]interface{}{
		{"town": "ANG MO KIO", "avg_price": 420000.0},
	}}
	tool := NewQueryTool(translator, store, newTestGuard(t), "haiku", zap.NewNop())

	payload, failure := tool.Execute(context.Background(), queryInputJSON("average price per town"))
	if failure != nil {
		t.Fatalf("Execute failed: %v", failure)
	}

	var result domain.QueryResult
	if err := json.Unmarshal(payload, &result); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
	if len(result.Data) != 1 {
		t.Fatalf("expected 1 row, got %d", len(result.Data))
	}
	if result.Explanation != "average price per town" {
		t.Fatalf("unexpected explanation: %q", result.Explanation)
	}
	// The trailing semicolon is stripped before verification and execution.
	if result.SQL != "SELECT town, AVG(resale_price) AS avg_price FROM resale_prices GROUP BY town" {
		t.Fatalf("unexpected sql: %q", result.SQL)
	}
	if len(store.queries) != 1 || store.queries[0] != result.SQL {
		t.Fatalf("store saw queries %v", store.queries)
	}
}

func TestQueryToolParsesProseWrappedTranslation(t *testing.T) {
	translator := &llm.MockClient{Responses: []*llm.MessageResponse{
		llm.TextResponse("Here is the query:\n```json\n{\"sql\": \"SELECT count(*) FROM resale_prices\", \"explanation\": \"row count\"}\n```\n"),
	}}
	store := &fakeStore{rows: []map[string]interface{}{{"count": int64(12)}}}
	tool := NewQueryTool(translator, store, newTestGuard(t), "haiku", zap.NewNop())

	_, failure := tool.Execute(context.Background(), queryInputJSON("how many rows"))
	if failure != nil {
		t.Fatalf("Execute failed: %v", failure)
	}
	if len(store.queries) != 1 {
		t.Fatalf("expected 1 executed query, got %v", store.queries)
	}
}

func TestQueryToolRejectsUnsafeSQL(t *testing.T) {
	translator := &llm.MockClient{Responses: []*llm.MessageResponse{
		llm.TextResponse(`{"sql": "DROP TABLE resale_prices", "explanation": "oops"}`),
	}}
	store := &fakeStore{}
	tool := NewQueryTool(translator, store, newTestGuard(t), "haiku", zap.NewNop())

	_, failure := tool.Execute(context.Background(), queryInputJSON("drop everything"))
	if failure == nil {
		t.Fatalf("expected failure")
	}
	if failure.Kind != domain.FailureKindUnsafeQuery {
		t.Fatalf("expected UnsafeQuery, got %s", failure.Kind)
	}
	// The statement must never reach the database.
	if len(store.queries) != 0 {
		t.Fatalf("store was contacted: %v", store.queries)
	}
}

func TestQueryToolTranslationRequestFailure(t *testing.T) {
	translator := &llm.MockClient{Errs: []error{
		&llm.ServiceError{StatusCode: 503, Message: "overloaded", Transient: true},
	}}
	store := &fakeStore{}
	tool := NewQueryTool(translator, store, newTestGuard(t), "haiku", zap.NewNop())

	_, failure := tool.Execute(context.Background(), queryInputJSON("anything"))
	if failure == nil || failure.Kind != domain.FailureKindTranslation {
		t.Fatalf("expected TranslationError, got %v", failure)
	}
	if len(store.queries) != 0 {
		t.Fatalf("store was contacted: %v", store.queries)
	}
}

func TestQueryToolUnparseableTranslation(t *testing.T) {
	translator := &llm.MockClient{Responses: []*llm.MessageResponse{
		llm.TextResponse("I cannot produce SQL for that."),
	}}
	tool := NewQueryTool(translator, &fakeStore{}, newTestGuard(t), "haiku", zap.NewNop())

	_, failure := tool.Execute(context.Background(), queryInputJSON("anything"))
	if failure == nil || failure.Kind != domain.FailureKindTranslation {
		t.Fatalf("expected TranslationError, got %v", failure)
	}
}

func TestQueryToolValidatesInput(t *testing.T) {
	tool := NewQueryTool(&llm.MockClient{}, &fakeStore{}, newTestGuard(t), "haiku", zap.NewNop())

	_, failure := tool.Execute(context.Background(), json.RawMessage(`{"natural_query": "  "}`))
	if failure == nil || failure.Kind != domain.FailureKindValidation {
		t.Fatalf("expected ValidationError, got %v", failure)
	}

	_, failure = tool.Execute(context.Background(), json.RawMessage(`not json`))
	if failure == nil || failure.Kind != domain.FailureKindValidation {
		t.Fatalf("expected ValidationError, got %v", failure)
	}
}

func TestQueryToolExecutionFailure(t *testing.T) {
	translator := &llm.MockClient{Responses: []*llm.MessageResponse{
		llm.TextResponse(`{"sql": "SELECT missing_column FROM resale_prices", "explanation": "x"}`),
	}}
	store := &fakeStore{err: fmt.Errorf(`column "missing_column" does not exist`)}
	tool := NewQueryTool(translator, store, newTestGuard(t), "haiku", zap.NewNop())

	_, failure := tool.Execute(context.Background(), queryInputJSON("bad column"))
	if failure == nil || failure.Kind != domain.FailureKindExecution {
		t.Fatalf("expected ExecutionError, got %v", failure)
	}
}

func TestQueryToolSendsSchemaToTranslator(t *testing.T) {
	translator := &llm.MockClient{Responses: []*llm.MessageResponse{
		llm.TextResponse(`{"sql": "SELECT 1", "explanation": "x"}`),
	}}
	tool := NewQueryTool(translator, &fakeStore{}, newTestGuard(t), "haiku", zap.NewNop())

	_, failure := tool.Execute(context.Background(), queryInputJSON("anything"))
	if failure != nil {
		t.Fatalf("Execute failed: %v", failure)
	}
	if translator.Calls() != 1 {
		t.Fatalf("expected 1 translator call, got %d", translator.Calls())
	}
	req := translator.Requests[0]
	if req.Model != "haiku" {
		t.Fatalf("unexpected model: %q", req.Model)
	}
	if len(req.Tools) != 0 {
		t.Fatalf("translator requests must not carry tool definitions")
	}
	if len(req.Messages) != 1 || len(req.Messages[0].Content) != 1 {
		t.Fatalf("unexpected request shape: %+v", req.Messages)
	}
	prompt := req.Messages[0].Content[0].Text
	for _, want := range []string{"resale_prices", "completion_status", "anything"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt is missing %q", want)
		}
	}
}
