// Package policy statically verifies generated SQL before it reaches the
// database. The gate fails closed: anything that is not a single SELECT
// statement is rejected.
package policy

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/rego"
)

// Engine evaluates generated SQL against the read-only rego policy.
type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngine prepares the policy engine with the given policy content.
func NewEngine(ctx context.Context, policyContent string) (*Engine, error) {
	r := rego.New(
		rego.Query("data.sqlguard.decision"),
		rego.Module("sqlguard.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}

	return &Engine{query: query}, nil
}

// Evaluate checks one SQL statement. It returns whether execution is
// allowed and, when it is not, the reasons for rejection. Any evaluation
// problem counts as a rejection.
func (e *Engine) Evaluate(ctx context.Context, sql string) (bool, []string, error) {
	results, err := e.query.Eval(ctx, rego.EvalInput(map[string]interface{}{"sql": sql}))
	if err != nil {
		return false, nil, fmt.Errorf("failed to evaluate policy: %w", err)
	}
	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return false, []string{"policy produced no decision"}, nil
	}

	decision, ok := results[0].Expressions[0].Value.(map[string]interface{})
	if !ok {
		return false, []string{"policy returned an unexpected decision shape"}, nil
	}

	allow, _ := decision["allow"].(bool)
	var reasons []string
	if raw, ok := decision["reasons"].([]interface{}); ok {
		for _, r := range raw {
			if s, ok := r.(string); ok {
				reasons = append(reasons, s)
			}
		}
	}
	return allow, reasons, nil
}

// ReadOnlyPolicy is the default SQL safety policy. A statement passes only
// when it begins with SELECT or WITH, contains a single statement, and has
// no data- or schema-modifying keywords anywhere.
const ReadOnlyPolicy = `
package sqlguard

import rego.v1

normalized := lower(trim_space(input.sql))

mutating_pattern := ` + "`" + `\b(insert|update|delete|drop|alter|truncate|create|grant|revoke|copy|merge|vacuum|call|lock|comment|reindex|refresh|do)\b` + "`" + `

deny contains "statement must begin with SELECT or WITH" if {
	not startswith(normalized, "select")
	not startswith(normalized, "with")
}

deny contains "multiple statements are not allowed" if {
	contains(normalized, ";")
}

deny contains "statement contains a data or schema modifying keyword" if {
	regex.match(mutating_pattern, normalized)
}

decision := {"allow": count(deny) == 0, "reasons": deny}
`
