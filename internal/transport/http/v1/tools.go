package v1

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/seetohjy/hdb-insights/internal/domain"
	"github.com/seetohjy/hdb-insights/internal/tools"
)

// Query translates a natural-language question to SQL and runs it,
// bypassing the reasoning loop.
func (h *Handler) Query(c echo.Context) error {
	var req QuestionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if strings.TrimSpace(req.Question) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "question is required"})
	}

	input, _ := json.Marshal(map[string]string{"natural_query": req.Question})
	payload, failure := h.service.Tools().Query.Execute(c.Request().Context(), input)
	if failure != nil {
		return c.JSONBlob(failureStatus(failure), tools.FailurePayload(failure))
	}
	return c.JSONBlob(http.StatusOK, payload)
}

// PredictionRequest is the body of /predict. remaining_lease is optional;
// when omitted it is derived from the property age.
type PredictionRequest struct {
	Town              string   `json:"town"`
	FlatType          string   `json:"flat_type"`
	StoreyRange       string   `json:"storey_range"`
	FloorAreaSqm      float64  `json:"floor_area_sqm"`
	FlatModel         string   `json:"flat_model"`
	LeaseCommenceDate int      `json:"lease_commence_date"`
	RemainingLease    *float64 `json:"remaining_lease"`
}

// Predict runs a price prediction for the given property attributes.
func (h *Handler) Predict(c echo.Context) error {
	var req PredictionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	input, err := json.Marshal(domain.PredictionInput{
		Town:                req.Town,
		FlatType:            req.FlatType,
		StoreyRange:         req.StoreyRange,
		FloorAreaSqm:        req.FloorAreaSqm,
		FlatModel:           req.FlatModel,
		LeaseCommenceDate:   req.LeaseCommenceDate,
		RemainingLeaseYears: req.RemainingLease,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to encode input"})
	}

	payload, failure := h.service.Tools().Predict.Execute(c.Request().Context(), input)
	if failure != nil {
		return c.JSONBlob(failureStatus(failure), tools.FailurePayload(failure))
	}
	return c.JSONBlob(http.StatusOK, payload)
}

// failureStatus maps a tool failure kind to an HTTP status for the direct
// endpoints. Inside the reasoning loop the same failures stay recoverable.
func failureStatus(f *domain.ToolFailure) int {
	switch f.Kind {
	case domain.FailureKindValidation, domain.FailureKindInvalidInput, domain.FailureKindUnsafeQuery:
		return http.StatusBadRequest
	case domain.FailureKindTranslation:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
