package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/seetohjy/hdb-insights/internal/adapter/llm"
	"github.com/seetohjy/hdb-insights/internal/domain"
	"github.com/seetohjy/hdb-insights/internal/metrics"
	"github.com/seetohjy/hdb-insights/internal/policy"
	"github.com/seetohjy/hdb-insights/internal/store"
)

const queryToolName = "query_database"

const queryToolDescription = `Query the database with SQL to get information about HDB properties and prices.
This function has access to:
- resale price data from 1990 to 2025
- BTO completion status data split by town/estate/year

You can use this function to answer questions about HDB properties and prices, such as:
- Which HDB estates have the lowest number of BTO units completed in the past decade?
- What is the median price of HDB flats in different flat types?
`

var queryToolSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"natural_query": {
			"type": "string",
			"description": "Natural language query about HDB data"
		}
	},
	"required": ["natural_query"]
}`)

const translatePrompt = `You are a SQL query generator. Your task is to convert a natural language question into a SQL query that can be run on a PostgreSQL database.

Here is the database schema:
%s

Natural language question: %s

Please return ONLY a JSON object with the following fields:
1. "sql": The SQL query to run
2. "explanation": A brief explanation of what the query does in natural language

The query must be a single read-only SELECT statement with valid PostgreSQL syntax, using the table and column names from the schema.
Use appropriate joins, aggregations, filters, and sorting to answer the question effectively.`

// RowQuerier executes one verified statement against the dataset.
type RowQuerier interface {
	SelectRows(ctx context.Context, query string) ([]map[string]interface{}, error)
}

// QueryTool answers natural-language sub-questions by translating them to
// SQL, verifying the SQL is read-only, and executing it.
type QueryTool struct {
	client    llm.ReasoningClient
	store     RowQuerier
	guard     *policy.Engine
	model     string
	maxTokens int
	log       *zap.Logger
}

// NewQueryTool builds the database query tool.
func NewQueryTool(client llm.ReasoningClient, rows RowQuerier, guard *policy.Engine, model string, log *zap.Logger) *QueryTool {
	return &QueryTool{
		client:    client,
		store:     rows,
		guard:     guard,
		model:     model,
		maxTokens: 1000,
		log:       log,
	}
}

func (t *QueryTool) Name() string                 { return queryToolName }
func (t *QueryTool) Description() string          { return queryToolDescription }
func (t *QueryTool) InputSchema() json.RawMessage { return queryToolSchema }

type queryInput struct {
	NaturalQuery string `json:"natural_query"`
}

type translation struct {
	SQL         string `json:"sql"`
	Explanation string `json:"explanation"`
}

// Execute runs the translate -> verify -> execute pipeline. The generated
// statement is never executed unless the policy gate allows it.
func (t *QueryTool) Execute(ctx context.Context, input json.RawMessage) (json.RawMessage, *domain.ToolFailure) {
	result, failure := t.run(ctx, input)
	status := "ok"
	if failure != nil {
		status = string(failure.Kind)
	}
	metrics.ToolCallsTotal.WithLabelValues(queryToolName, status).Inc()
	return result, failure
}

func (t *QueryTool) run(ctx context.Context, input json.RawMessage) (json.RawMessage, *domain.ToolFailure) {
	var in queryInput
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, domain.NewToolFailure(domain.FailureKindValidation, "invalid input: %v", err)
	}
	if strings.TrimSpace(in.NaturalQuery) == "" {
		return nil, domain.NewToolFailure(domain.FailureKindValidation, "natural_query is required")
	}

	tr, failure := t.translate(ctx, in.NaturalQuery)
	if failure != nil {
		return nil, failure
	}

	sql := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(tr.SQL), ";"))
	if sql == "" {
		return nil, domain.NewToolFailure(domain.FailureKindTranslation, "translation produced an empty query")
	}

	allowed, reasons, err := t.guard.Evaluate(ctx, sql)
	if err != nil {
		// Fail closed: an unevaluable statement never runs.
		return nil, domain.NewToolFailure(domain.FailureKindUnsafeQuery, "policy evaluation failed: %v", err)
	}
	if !allowed {
		t.log.Warn("rejected generated query",
			zap.String("sql", sql),
			zap.Strings("reasons", reasons))
		return nil, domain.NewToolFailure(domain.FailureKindUnsafeQuery,
			"query rejected: %s", strings.Join(reasons, "; "))
	}

	rows, err := t.store.SelectRows(ctx, sql)
	if err != nil {
		return nil, domain.NewToolFailure(domain.FailureKindExecution, "query execution failed: %v", err)
	}
	metrics.QueryRows.Observe(float64(len(rows)))

	payload, err := json.Marshal(domain.QueryResult{
		Data:        rows,
		SQL:         sql,
		Explanation: tr.Explanation,
	})
	if err != nil {
		return nil, domain.NewToolFailure(domain.FailureKindExecution, "failed to encode result: %v", err)
	}
	return payload, nil
}

func (t *QueryTool) translate(ctx context.Context, question string) (*translation, *domain.ToolFailure) {
	temperature := 0.1
	req := &llm.MessageRequest{
		Model:       t.model,
		MaxTokens:   t.maxTokens,
		Temperature: &temperature,
		Messages: []domain.Message{
			domain.NewUserText(fmt.Sprintf(translatePrompt, store.SchemaDescription, question)),
		},
	}

	resp, err := t.client.CreateMessage(ctx, req)
	if err != nil {
		return nil, domain.NewToolFailure(domain.FailureKindTranslation, "translation request failed: %v", err)
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == domain.BlockTypeText && block.Text != "" {
			text = block.Text
			break
		}
	}
	if text == "" {
		return nil, domain.NewToolFailure(domain.FailureKindTranslation, "translation returned no text")
	}

	tr, err := parseTranslation(text)
	if err != nil {
		return nil, domain.NewToolFailure(domain.FailureKindTranslation, "unparseable translation: %v", err)
	}
	return tr, nil
}

// parseTranslation extracts the {"sql", "explanation"} object from the
// reply, tolerating surrounding prose or markdown fences.
func parseTranslation(text string) (*translation, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in reply")
	}
	var tr translation
	if err := json.Unmarshal([]byte(text[start:end+1]), &tr); err != nil {
		return nil, err
	}
	if tr.SQL == "" {
		return nil, fmt.Errorf("reply is missing the sql field")
	}
	return &tr, nil
}
