package model

import (
	"fmt"
	"time"

	"github.com/seetohjy/hdb-insights/internal/domain"
)

// unknownLevel is the explicit bucket for categorical values not seen at
// training time. When the vocabulary carries it, unseen values map there;
// otherwise the one-hot block stays all zero, matching the training
// encoder's ignore behavior.
const unknownLevel = "UNKNOWN"

// Predict runs inference for a normalized property at the given time and
// returns the estimated resale price. The transform must mirror the
// training pipeline exactly: standardized numerics, then one-hot blocks in
// vocabulary order.
func (m *Model) Predict(prop domain.Property, now time.Time) (float64, error) {
	vec, err := m.vector(prop, now)
	if err != nil {
		return 0, err
	}

	sum := m.art.BasePrediction
	for _, tree := range m.art.Trees {
		sum += m.art.LearningRate * tree.predict(vec)
	}
	return sum, nil
}

func (m *Model) vector(prop domain.Property, now time.Time) ([]float64, error) {
	vec := make([]float64, m.width)

	for i, name := range m.art.NumericFeatures {
		raw, err := numericValue(name, prop, now)
		if err != nil {
			return nil, err
		}
		vec[i] = (raw - m.art.Scaler.Mean[i]) / m.art.Scaler.Scale[i]
	}

	for _, feat := range m.art.CategoricalFeatures {
		value, err := categoricalValue(feat, prop, now)
		if err != nil {
			return nil, err
		}
		offset := m.catOffsets[feat]
		vocab := m.art.Categories[feat]
		idx := indexOf(vocab, value)
		if idx < 0 {
			idx = indexOf(vocab, unknownLevel)
		}
		if idx >= 0 {
			vec[offset+idx] = 1
		}
	}

	return vec, nil
}

func numericValue(name string, prop domain.Property, now time.Time) (float64, error) {
	switch name {
	case "floor_area_sqm":
		return prop.FloorAreaSqm, nil
	case "lease_commence_date":
		return float64(prop.LeaseCommenceDate), nil
	case "remaining_lease_years":
		return prop.RemainingLeaseYears, nil
	case "year":
		return float64(now.Year()), nil
	case "month_num":
		return float64(int(now.Month())), nil
	case "property_age":
		return float64(prop.PropertyAge(now)), nil
	case "storey_avg":
		return prop.StoreyMidpoint()
	default:
		return 0, fmt.Errorf("artifact references unknown numeric feature %q", name)
	}
}

func categoricalValue(name string, prop domain.Property, now time.Time) (string, error) {
	switch name {
	case "town":
		return prop.Town, nil
	case "flat_type":
		return prop.FlatType, nil
	case "flat_model":
		return prop.FlatModel, nil
	case "month_str":
		return now.Month().String(), nil
	default:
		return "", fmt.Errorf("artifact references unknown categorical feature %q", name)
	}
}

func (t Tree) predict(vec []float64) float64 {
	node := t.Nodes[0]
	for !node.Leaf {
		if vec[node.Feature] <= node.Threshold {
			node = t.Nodes[node.Left]
		} else {
			node = t.Nodes[node.Right]
		}
	}
	return node.Value
}

func indexOf(vocab []string, value string) int {
	for i, v := range vocab {
		if v == value {
			return i
		}
	}
	return -1
}
