package model

import (
	"math"
	"sort"
)

// ROCPoint is one point of a receiver operating characteristic curve,
// produced by thresholding at Threshold.
type ROCPoint struct {
	FPR       float64
	TPR       float64
	Threshold float64
}

// ROCCurve computes ROC points over the distinct predicted probabilities,
// from the most permissive threshold to the strictest. Points are ordered by
// ascending FPR, starting at (0,0) with threshold above every probability.
func ROCCurve(labels []bool, probs []float64) []ROCPoint {
	if len(labels) != len(probs) || len(labels) == 0 {
		return nil
	}

	type pair struct {
		prob  float64
		label bool
	}
	pairs := make([]pair, len(labels))
	for i := range labels {
		pairs[i] = pair{probs[i], labels[i]}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].prob > pairs[j].prob })

	var totalPos, totalNeg float64
	for _, p := range pairs {
		if p.label {
			totalPos++
		} else {
			totalNeg++
		}
	}
	if totalPos == 0 || totalNeg == 0 {
		return nil
	}

	curve := []ROCPoint{{FPR: 0, TPR: 0, Threshold: pairs[0].prob + 1}}
	var tp, fp float64
	for i, p := range pairs {
		if p.label {
			tp++
		} else {
			fp++
		}
		// Emit a point only after consuming all pairs at this probability.
		if i+1 < len(pairs) && pairs[i+1].prob == p.prob {
			continue
		}
		curve = append(curve, ROCPoint{
			FPR:       fp / totalNeg,
			TPR:       tp / totalPos,
			Threshold: p.prob,
		})
	}
	return curve
}

// AUC integrates a ROC curve with the trapezoidal rule.
func AUC(curve []ROCPoint) float64 {
	var area float64
	for i := 1; i < len(curve); i++ {
		dx := curve[i].FPR - curve[i-1].FPR
		area += dx * (curve[i].TPR + curve[i-1].TPR) / 2
	}
	return area
}

// YoudenJThreshold picks the threshold maximizing TPR - FPR. Ties resolve to
// the highest such threshold.
func YoudenJThreshold(curve []ROCPoint) float64 {
	best := math.Inf(-1)
	var threshold float64
	for _, p := range curve {
		j := p.TPR - p.FPR
		if j > best || (j == best && p.Threshold > threshold) {
			best = j
			threshold = p.Threshold
		}
	}
	return threshold
}

// ConfusionMatrix holds binary classification counts.
type ConfusionMatrix struct {
	TN, FP, FN, TP int
}

// Confusion tallies predictions against labels.
func Confusion(labels, preds []bool) ConfusionMatrix {
	var m ConfusionMatrix
	for i := range labels {
		switch {
		case labels[i] && preds[i]:
			m.TP++
		case labels[i] && !preds[i]:
			m.FN++
		case !labels[i] && preds[i]:
			m.FP++
		default:
			m.TN++
		}
	}
	return m
}

// Accuracy is the fraction of correct predictions.
func (m ConfusionMatrix) Accuracy() float64 {
	total := m.TP + m.TN + m.FP + m.FN
	if total == 0 {
		return 0
	}
	return float64(m.TP+m.TN) / float64(total)
}

// Precision is TP / (TP + FP); zero when nothing was predicted positive.
func (m ConfusionMatrix) Precision() float64 {
	if m.TP+m.FP == 0 {
		return 0
	}
	return float64(m.TP) / float64(m.TP+m.FP)
}

// Recall is TP / (TP + FN); zero when there are no positive labels.
func (m ConfusionMatrix) Recall() float64 {
	if m.TP+m.FN == 0 {
		return 0
	}
	return float64(m.TP) / float64(m.TP+m.FN)
}

// F1 is the harmonic mean of precision and recall.
func (m ConfusionMatrix) F1() float64 {
	p, r := m.Precision(), m.Recall()
	if p+r == 0 {
		return 0
	}
	return 2 * p * r / (p + r)
}
