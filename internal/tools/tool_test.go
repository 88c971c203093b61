package tools

import (
	"context"
	"encoding/json"
	"testing"

	"go.uber.org/zap"

	"github.com/seetohjy/hdb-insights/internal/adapter/llm"
	"github.com/seetohjy/hdb-insights/internal/domain"
)

func newTestToolset(t *testing.T) *Toolset {
	t.Helper()
	query := NewQueryTool(&llm.MockClient{}, &fakeStore{}, newTestGuard(t), "haiku", zap.NewNop())
	predict := newTestPredictTool(&fakePredictor{price: 1})
	return NewToolset(query, predict)
}

func TestToolsetDefinitions(t *testing.T) {
	defs := newTestToolset(t).Definitions()
	if len(defs) != 2 {
		t.Fatalf("expected 2 definitions, got %d", len(defs))
	}
	if defs[0].Name != "query_database" || defs[1].Name != "predict_price" {
		t.Fatalf("unexpected names: %s, %s", defs[0].Name, defs[1].Name)
	}
	for _, def := range defs {
		if def.Description == "" {
			t.Fatalf("%s: empty description", def.Name)
		}
		var schema map[string]interface{}
		if err := json.Unmarshal(def.InputSchema, &schema); err != nil {
			t.Fatalf("%s: invalid schema: %v", def.Name, err)
		}
		if schema["type"] != "object" {
			t.Fatalf("%s: schema is not an object schema", def.Name)
		}
	}
}

func TestDispatchUnknownTool(t *testing.T) {
	ts := newTestToolset(t)

	_, failure := ts.Dispatch(context.Background(), "delete_database", json.RawMessage(`{}`))
	if failure == nil || failure.Kind != domain.FailureKindValidation {
		t.Fatalf("expected ValidationError, got %v", failure)
	}
}

func TestFailurePayloadShape(t *testing.T) {
	payload := FailurePayload(domain.NewToolFailure(domain.FailureKindUnsafeQuery, "query rejected"))

	var decoded domain.FailurePayload
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if decoded.Error == nil || decoded.Error.Kind != domain.FailureKindUnsafeQuery {
		t.Fatalf("unexpected payload: %s", payload)
	}
	if decoded.Error.Detail != "query rejected" {
		t.Fatalf("unexpected detail: %q", decoded.Error.Detail)
	}
}
