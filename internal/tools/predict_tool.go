package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/seetohjy/hdb-insights/internal/domain"
	"github.com/seetohjy/hdb-insights/internal/metrics"
)

const predictToolName = "predict_price"

const predictToolDescription = `Predict the resale price for a given HDB property.
This function uses a pre-trained gradient boosting model to predict the resale price for a given HDB property.
The model was trained on resale price data from 1990 to 2025, and is able to predict the resale price for a given HDB property.
Impute missing values for the function parameters (ie features) using reasonable defaults.
For example, if the storey_range is not provided, use the median storey range for the given flat_type.
`

var predictToolSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"town": {"type": "string"},
		"flat_type": {"type": "string"},
		"storey_range": {"type": "string"},
		"floor_area_sqm": {"type": "number"},
		"flat_model": {"type": "string"},
		"lease_commence_date": {"type": "integer"},
		"remaining_lease_years": {"type": "number"}
	},
	"required": ["town", "flat_type", "storey_range", "floor_area_sqm",
		"flat_model", "lease_commence_date"]
}`)

// Predictor runs inference on the loaded model artifact.
type Predictor interface {
	Predict(prop domain.Property, now time.Time) (float64, error)
}

// PredictTool validates a property description, applies the training-time
// feature transforms and returns the model's point estimate. Purely
// functional given the loaded artifact.
type PredictTool struct {
	model Predictor
	now   func() time.Time
	log   *zap.Logger
}

// NewPredictTool builds the price prediction tool.
func NewPredictTool(model Predictor, log *zap.Logger) *PredictTool {
	return &PredictTool{model: model, now: time.Now, log: log}
}

func (t *PredictTool) Name() string                 { return predictToolName }
func (t *PredictTool) Description() string          { return predictToolDescription }
func (t *PredictTool) InputSchema() json.RawMessage { return predictToolSchema }

// PredictionResponse is the tool's success payload: the estimate plus the
// normalized input it was computed from.
type PredictionResponse struct {
	PredictedPrice float64         `json:"predicted_price"`
	Property       domain.Property `json:"property"`
}

// Execute validates, normalizes and predicts.
func (t *PredictTool) Execute(ctx context.Context, input json.RawMessage) (json.RawMessage, *domain.ToolFailure) {
	result, failure := t.run(ctx, input)
	status := "ok"
	if failure != nil {
		status = string(failure.Kind)
	}
	metrics.ToolCallsTotal.WithLabelValues(predictToolName, status).Inc()
	return result, failure
}

func (t *PredictTool) run(_ context.Context, input json.RawMessage) (json.RawMessage, *domain.ToolFailure) {
	dec := json.NewDecoder(bytes.NewReader(input))
	dec.DisallowUnknownFields()
	var in domain.PredictionInput
	if err := dec.Decode(&in); err != nil {
		return nil, domain.NewToolFailure(domain.FailureKindInvalidInput, "invalid input: %v", err)
	}

	now := t.now()
	if err := in.Validate(now); err != nil {
		return nil, domain.NewToolFailure(domain.FailureKindInvalidInput, "%v", err)
	}

	prop := in.Normalize(now)
	price, err := t.model.Predict(prop, now)
	if err != nil {
		t.log.Error("inference failed", zap.Error(err))
		return nil, domain.NewToolFailure(domain.FailureKindInference, "inference failed: %v", err)
	}

	payload, err := json.Marshal(PredictionResponse{PredictedPrice: price, Property: prop})
	if err != nil {
		return nil, domain.NewToolFailure(domain.FailureKindInference, "failed to encode result: %v", err)
	}
	return payload, nil
}
