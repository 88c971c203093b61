// Package model loads the trained resale price regressor and runs
// inference on it. The artifact is written by the offline training
// pipeline; this package only consumes it.
package model

import (
	"encoding/json"
	"fmt"
	"os"
)

// Artifact is the JSON-serialized regressor: feature layout, scaler
// parameters, categorical vocabularies and the boosted tree ensemble.
type Artifact struct {
	TrainedAt           string              `json:"trained_at"`
	Target              string              `json:"target"`
	NumericFeatures     []string            `json:"numeric_features"`
	CategoricalFeatures []string            `json:"categorical_features"`
	Scaler              Scaler              `json:"scaler"`
	Categories          map[string][]string `json:"categories"`
	BasePrediction      float64             `json:"base_prediction"`
	LearningRate        float64             `json:"learning_rate"`
	Trees               []Tree              `json:"trees"`
}

// Scaler holds per-numeric-feature standardization parameters, in
// NumericFeatures order.
type Scaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// Tree is one regression tree of the ensemble. Nodes[0] is the root.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// Node is a tree node. Leaf nodes carry Value; internal nodes route on
// Feature <= Threshold.
type Node struct {
	Leaf      bool    `json:"leaf"`
	Feature   int     `json:"feature,omitempty"`
	Threshold float64 `json:"threshold,omitempty"`
	Left      int     `json:"left,omitempty"`
	Right     int     `json:"right,omitempty"`
	Value     float64 `json:"value,omitempty"`
}

// Model is the loaded artifact plus derived layout information. It is
// immutable after construction and safe for concurrent use.
type Model struct {
	art   Artifact
	width int
	// offset of each categorical feature's one-hot block in the vector
	catOffsets map[string]int
}

// Load reads and validates a model artifact from disk. A missing or
// corrupt artifact is a startup error; the process must not come up
// without a usable model.
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model artifact %s: %w", path, err)
	}
	var art Artifact
	if err := json.Unmarshal(data, &art); err != nil {
		return nil, fmt.Errorf("failed to parse model artifact %s: %w", path, err)
	}
	return FromArtifact(art)
}

// FromArtifact validates an in-memory artifact and builds a Model.
func FromArtifact(art Artifact) (*Model, error) {
	n := len(art.NumericFeatures)
	if len(art.Scaler.Mean) != n || len(art.Scaler.Scale) != n {
		return nil, fmt.Errorf("scaler length %d/%d does not match %d numeric features",
			len(art.Scaler.Mean), len(art.Scaler.Scale), n)
	}
	for i, s := range art.Scaler.Scale {
		if s == 0 {
			return nil, fmt.Errorf("scaler scale is zero for feature %s", art.NumericFeatures[i])
		}
	}

	width := n
	catOffsets := make(map[string]int, len(art.CategoricalFeatures))
	for _, feat := range art.CategoricalFeatures {
		vocab, ok := art.Categories[feat]
		if !ok || len(vocab) == 0 {
			return nil, fmt.Errorf("no category vocabulary for feature %s", feat)
		}
		catOffsets[feat] = width
		width += len(vocab)
	}

	if len(art.Trees) == 0 {
		return nil, fmt.Errorf("artifact contains no trees")
	}
	for ti, tree := range art.Trees {
		if len(tree.Nodes) == 0 {
			return nil, fmt.Errorf("tree %d has no nodes", ti)
		}
		for ni, node := range tree.Nodes {
			if node.Leaf {
				continue
			}
			if node.Feature < 0 || node.Feature >= width {
				return nil, fmt.Errorf("tree %d node %d references feature %d outside vector width %d",
					ti, ni, node.Feature, width)
			}
			if node.Left < 0 || node.Left >= len(tree.Nodes) || node.Right < 0 || node.Right >= len(tree.Nodes) {
				return nil, fmt.Errorf("tree %d node %d has out-of-range children", ti, ni)
			}
		}
	}

	return &Model{art: art, width: width, catOffsets: catOffsets}, nil
}

// TrainedAt reports the artifact's training timestamp, for the info endpoint.
func (m *Model) TrainedAt() string {
	return m.art.TrainedAt
}
