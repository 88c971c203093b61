package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// PredictionInput is the raw property description supplied by the caller
// (or the reasoning service) for a price prediction.
type PredictionInput struct {
	Town                string   `json:"town"`
	FlatType            string   `json:"flat_type"`
	StoreyRange         string   `json:"storey_range"`
	FloorAreaSqm        float64  `json:"floor_area_sqm"`
	FlatModel           string   `json:"flat_model"`
	LeaseCommenceDate   int      `json:"lease_commence_date"`
	RemainingLeaseYears *float64 `json:"remaining_lease_years,omitempty"`
}

// Property is a validated, normalized property description. String fields
// are upper-cased to match the dataset encoding and the remaining lease is
// always populated.
type Property struct {
	Town                string  `json:"town"`
	FlatType            string  `json:"flat_type"`
	StoreyRange         string  `json:"storey_range"`
	FloorAreaSqm        float64 `json:"floor_area_sqm"`
	FlatModel           string  `json:"flat_model"`
	LeaseCommenceDate   int     `json:"lease_commence_date"`
	RemainingLeaseYears float64 `json:"remaining_lease_years"`
}

// knownFlatTypes is the closed set of flat type labels in the dataset.
var knownFlatTypes = map[string]bool{
	"1 ROOM":           true,
	"2 ROOM":           true,
	"3 ROOM":           true,
	"4 ROOM":           true,
	"5 ROOM":           true,
	"EXECUTIVE":        true,
	"MULTI-GENERATION": true,
	"MULTI GENERATION": true,
}

const standardLeaseYears = 99

// Validate checks field presence and ranges. It does not reject unknown
// towns or flat models; those map to the model's unknown bucket instead.
func (p PredictionInput) Validate(now time.Time) error {
	if strings.TrimSpace(p.Town) == "" {
		return fmt.Errorf("town is required")
	}
	if strings.TrimSpace(p.FlatType) == "" {
		return fmt.Errorf("flat_type is required")
	}
	if !knownFlatTypes[strings.ToUpper(strings.TrimSpace(p.FlatType))] {
		return fmt.Errorf("unknown flat_type %q", p.FlatType)
	}
	if _, _, err := ParseStoreyRange(p.StoreyRange); err != nil {
		return err
	}
	if p.FloorAreaSqm <= 0 || p.FloorAreaSqm > 500 {
		return fmt.Errorf("floor_area_sqm must be between 0 and 500, got %v", p.FloorAreaSqm)
	}
	if strings.TrimSpace(p.FlatModel) == "" {
		return fmt.Errorf("flat_model is required")
	}
	if p.LeaseCommenceDate < 1960 || p.LeaseCommenceDate > now.Year() {
		return fmt.Errorf("lease_commence_date must be between 1960 and %d, got %d", now.Year(), p.LeaseCommenceDate)
	}
	if p.RemainingLeaseYears != nil {
		if *p.RemainingLeaseYears < 0 || *p.RemainingLeaseYears > standardLeaseYears {
			return fmt.Errorf("remaining_lease_years must be between 0 and %d, got %v", standardLeaseYears, *p.RemainingLeaseYears)
		}
	}
	return nil
}

// Normalize upper-cases string fields and derives the remaining lease from
// the property age when the caller omitted it.
func (p PredictionInput) Normalize(now time.Time) Property {
	prop := Property{
		Town:              strings.ToUpper(strings.TrimSpace(p.Town)),
		FlatType:          strings.ToUpper(strings.TrimSpace(p.FlatType)),
		StoreyRange:       strings.ToUpper(strings.TrimSpace(p.StoreyRange)),
		FloorAreaSqm:      p.FloorAreaSqm,
		FlatModel:         strings.ToUpper(strings.TrimSpace(p.FlatModel)),
		LeaseCommenceDate: p.LeaseCommenceDate,
	}
	if p.RemainingLeaseYears != nil {
		prop.RemainingLeaseYears = *p.RemainingLeaseYears
	} else {
		prop.RemainingLeaseYears = float64(standardLeaseYears - (now.Year() - p.LeaseCommenceDate))
	}
	return prop
}

// PropertyAge returns the age in years at the given time.
func (p Property) PropertyAge(now time.Time) int {
	return now.Year() - p.LeaseCommenceDate
}

// StoreyMidpoint returns the numeric midpoint of the storey range.
func (p Property) StoreyMidpoint() (float64, error) {
	lo, hi, err := ParseStoreyRange(p.StoreyRange)
	if err != nil {
		return 0, err
	}
	return (lo + hi) / 2, nil
}

// ParseStoreyRange parses a storey descriptor such as "07 TO 09" into its
// numeric bounds.
func ParseStoreyRange(s string) (float64, float64, error) {
	parts := strings.Split(strings.ToUpper(strings.TrimSpace(s)), " TO ")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("storey_range must look like \"07 TO 09\", got %q", s)
	}
	lo, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid storey_range lower bound %q", parts[0])
	}
	hi, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid storey_range upper bound %q", parts[1])
	}
	if lo <= 0 || hi < lo {
		return 0, 0, fmt.Errorf("storey_range bounds out of order: %q", s)
	}
	return lo, hi, nil
}
