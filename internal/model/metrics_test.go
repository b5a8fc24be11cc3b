package model

import (
	"math"
	"testing"
)

func TestROCCurve_PerfectClassifier(t *testing.T) {
	labels := []bool{true, true, false, false}
	probs := []float64{0.9, 0.8, 0.2, 0.1}

	curve := ROCCurve(labels, probs)
	if curve == nil {
		t.Fatal("nil curve")
	}

	if curve[0].FPR != 0 || curve[0].TPR != 0 {
		t.Errorf("curve must start at (0,0), got (%v,%v)", curve[0].FPR, curve[0].TPR)
	}
	last := curve[len(curve)-1]
	if last.FPR != 1 || last.TPR != 1 {
		t.Errorf("curve must end at (1,1), got (%v,%v)", last.FPR, last.TPR)
	}

	if auc := AUC(curve); auc != 1 {
		t.Errorf("perfect classifier AUC = %v, want 1", auc)
	}
}

func TestROCCurve_RandomClassifierAUC(t *testing.T) {
	// Identical probabilities collapse to a single point: the diagonal.
	labels := []bool{true, false, true, false}
	probs := []float64{0.5, 0.5, 0.5, 0.5}

	curve := ROCCurve(labels, probs)
	if auc := AUC(curve); math.Abs(auc-0.5) > 1e-9 {
		t.Errorf("AUC = %v, want 0.5", auc)
	}
}

func TestROCCurve_Degenerate(t *testing.T) {
	if ROCCurve([]bool{true, true}, []float64{0.1, 0.9}) != nil {
		t.Error("single-class labels must yield nil curve")
	}
	if ROCCurve([]bool{true}, []float64{0.1, 0.2}) != nil {
		t.Error("length mismatch must yield nil curve")
	}
}

func TestYoudenJThreshold(t *testing.T) {
	labels := []bool{true, true, false, false}
	probs := []float64{0.9, 0.8, 0.4, 0.1}

	curve := ROCCurve(labels, probs)
	got := YoudenJThreshold(curve)

	// TPR-FPR peaks (J=1) at threshold 0.8: both positives in, no negatives.
	if got != 0.8 {
		t.Errorf("threshold = %v, want 0.8", got)
	}
}

func TestConfusionAndScores(t *testing.T) {
	labels := []bool{true, true, true, false, false, false}
	preds := []bool{true, true, false, true, false, false}

	m := Confusion(labels, preds)
	if m.TP != 2 || m.FN != 1 || m.FP != 1 || m.TN != 2 {
		t.Fatalf("confusion = %+v", m)
	}

	if got := m.Accuracy(); math.Abs(got-4.0/6.0) > 1e-9 {
		t.Errorf("accuracy = %v", got)
	}
	if got := m.Precision(); math.Abs(got-2.0/3.0) > 1e-9 {
		t.Errorf("precision = %v", got)
	}
	if got := m.Recall(); math.Abs(got-2.0/3.0) > 1e-9 {
		t.Errorf("recall = %v", got)
	}
	if got := m.F1(); math.Abs(got-2.0/3.0) > 1e-9 {
		t.Errorf("f1 = %v", got)
	}
}

func TestConfusionScores_ZeroDenominators(t *testing.T) {
	var m ConfusionMatrix
	if m.Accuracy() != 0 || m.Precision() != 0 || m.Recall() != 0 || m.F1() != 0 {
		t.Error("empty matrix scores must be 0")
	}
}

func TestTrainTestSplit_Deterministic(t *testing.T) {
	train1, test1 := TrainTestSplit(100, 0.33, 13)
	train2, test2 := TrainTestSplit(100, 0.33, 13)

	if len(test1) != 33 {
		t.Fatalf("test size = %d, want 33", len(test1))
	}
	if len(train1)+len(test1) != 100 {
		t.Fatalf("split loses rows: %d + %d", len(train1), len(test1))
	}

	for i := range test1 {
		if test1[i] != test2[i] {
			t.Fatal("same seed must give the same test set")
		}
	}
	for i := range train1 {
		if train1[i] != train2[i] {
			t.Fatal("same seed must give the same train set")
		}
	}

	seen := make(map[int]bool, 100)
	for _, i := range append(append([]int{}, train1...), test1...) {
		if seen[i] {
			t.Fatalf("index %d appears twice", i)
		}
		seen[i] = true
	}
}

func TestTrainTestSplit_DifferentSeeds(t *testing.T) {
	_, test1 := TrainTestSplit(100, 0.33, 1)
	_, test2 := TrainTestSplit(100, 0.33, 2)

	same := true
	for i := range test1 {
		if test1[i] != test2[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different seeds produced identical splits")
	}
}
