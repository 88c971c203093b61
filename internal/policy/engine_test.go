package policy

import (
	"context"
	"testing"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	engine, err := NewEngine(context.Background(), ReadOnlyPolicy)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	return engine
}

func TestEvaluateAllowsSelect(t *testing.T) {
	engine := newTestEngine(t)

	allowed, reasons, err := engine.Evaluate(context.Background(),
		"SELECT town, AVG(resale_price) FROM resale_prices GROUP BY town")
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if !allowed {
		t.Fatalf("expected allow, got reasons: %v", reasons)
	}
}

func TestEvaluateAllowsCTE(t *testing.T) {
	engine := newTestEngine(t)

	allowed, reasons, err := engine.Evaluate(context.Background(),
		"WITH recent AS (SELECT * FROM resale_prices WHERE month >= '2020-01') SELECT town FROM recent")
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if !allowed {
		t.Fatalf("expected allow, got reasons: %v", reasons)
	}
}

func TestEvaluateRejectsMutatingStatements(t *testing.T) {
	engine := newTestEngine(t)

	cases := []string{
		"DELETE FROM resale_prices",
		"DROP TABLE resale_prices",
		"INSERT INTO resale_prices VALUES (1)",
		"UPDATE resale_prices SET resale_price = 0",
		"TRUNCATE resale_prices",
		"delete from resale_prices where town = 'BEDOK'",
	}
	for _, sql := range cases {
		allowed, reasons, err := engine.Evaluate(context.Background(), sql)
		if err != nil {
			t.Fatalf("Evaluate(%q) failed: %v", sql, err)
		}
		if allowed {
			t.Fatalf("expected rejection for %q", sql)
		}
		if len(reasons) == 0 {
			t.Fatalf("expected reasons for %q", sql)
		}
	}
}

func TestEvaluateRejectsMutatingKeywordInsideSelect(t *testing.T) {
	engine := newTestEngine(t)

	allowed, _, err := engine.Evaluate(context.Background(),
		"SELECT 1; DROP TABLE resale_prices")
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if allowed {
		t.Fatalf("expected rejection for piggybacked statement")
	}
}

func TestEvaluateRejectsMultipleStatements(t *testing.T) {
	engine := newTestEngine(t)

	allowed, _, err := engine.Evaluate(context.Background(),
		"SELECT town FROM resale_prices; SELECT 1")
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if allowed {
		t.Fatalf("expected rejection for multiple statements")
	}
}

func TestEvaluateDoesNotRejectKeywordSubstrings(t *testing.T) {
	engine := newTestEngine(t)

	// "created_at" and "updated" contain mutating keywords as substrings
	// but must not trip the word-boundary match.
	allowed, reasons, err := engine.Evaluate(context.Background(),
		"SELECT created_at, updated_count FROM completion_status")
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if !allowed {
		t.Fatalf("expected allow, got reasons: %v", reasons)
	}
}
