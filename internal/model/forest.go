// Package model loads serialized classifiers with their manifests and
// evaluates them. Training itself happens outside this repo; the contract is
// the artifact pair <model_path>/<name>.model + <model_path>/<name>.json.
package model

import (
	"errors"
	"fmt"
)

// Node is one node of a decision tree. A node with Feature < 0 is a leaf and
// Value holds the positive-class probability; otherwise Value is unused and
// evaluation descends Left when x[Feature] <= Threshold, Right otherwise.
type Node struct {
	Feature   int     `json:"f"`
	Threshold float64 `json:"t"`
	Left      int     `json:"l"`
	Right     int     `json:"r"`
	Value     float64 `json:"v"`
}

// Tree is a single decision tree; Nodes[0] is the root.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// Forest is a serialized random-forest classifier. FeatureColumns records
// the exact column order the trees were fit against.
type Forest struct {
	FeatureColumns []string `json:"feature_columns"`
	Trees          []Tree   `json:"trees"`
}

// Validate checks structural integrity: non-empty, node indices in range,
// leaf probabilities in [0,1], feature indices within the column count.
func (f *Forest) Validate() error {
	if len(f.Trees) == 0 {
		return errors.New("forest has no trees")
	}
	if len(f.FeatureColumns) == 0 {
		return errors.New("forest has no feature columns")
	}
	for ti, tree := range f.Trees {
		if len(tree.Nodes) == 0 {
			return fmt.Errorf("tree %d has no nodes", ti)
		}
		for ni, n := range tree.Nodes {
			if n.Feature < 0 {
				if n.Value < 0 || n.Value > 1 {
					return fmt.Errorf("tree %d node %d: leaf value %v outside [0,1]", ti, ni, n.Value)
				}
				continue
			}
			if n.Feature >= len(f.FeatureColumns) {
				return fmt.Errorf("tree %d node %d: feature index %d out of range", ti, ni, n.Feature)
			}
			if n.Left < 0 || n.Left >= len(tree.Nodes) || n.Right < 0 || n.Right >= len(tree.Nodes) {
				return fmt.Errorf("tree %d node %d: child index out of range", ti, ni)
			}
		}
	}
	return nil
}

// PredictProba returns the positive-class probability for one feature vector:
// the mean of per-tree leaf probabilities.
func (f *Forest) PredictProba(x []float64) float64 {
	if len(f.Trees) == 0 {
		return 0
	}
	var sum float64
	for i := range f.Trees {
		sum += f.Trees[i].predict(x)
	}
	return sum / float64(len(f.Trees))
}

func (t *Tree) predict(x []float64) float64 {
	i := 0
	for {
		n := t.Nodes[i]
		if n.Feature < 0 {
			return n.Value
		}
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}
