package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"mql-predict/internal/features"
)

// Loader errors.
var (
	// ErrVersionMismatch means the model was trained against a different
	// feature catalog version than the running binary carries.
	ErrVersionMismatch = errors.New("feature catalog version mismatch")

	// ErrInvalidThreshold means the manifest threshold is outside (0,1).
	ErrInvalidThreshold = errors.New("decision threshold outside (0,1)")
)

// Manifest is the metadata written next to a trained classifier.
type Manifest struct {
	FeaturesVersion string   `json:"features_v"`
	MainThreshold   float64  `json:"main_threshold"`
	RocAUC          float64  `json:"roc_auc"`
	Accuracy        float64  `json:"accuracy"`
	Precision       float64  `json:"precision"`
	Recall          float64  `json:"recall"`
	FeatureColumns  []string `json:"feature_columns"`
}

// Load reads the classifier artifact and its manifest from
// <modelPath>/<name>.model and <modelPath>/<name>.json.
//
// A manifest whose features_v differs from features.Version is rejected with
// ErrVersionMismatch unless allowVersionMismatch is set, in which case a
// warning is logged and loading proceeds. The returned threshold is the
// manifest's main_threshold, validated to lie in (0,1).
func Load(modelPath, name string, allowVersionMismatch bool, logger *zap.Logger) (*Forest, float64, *Manifest, error) {
	manifestPath := filepath.Join(modelPath, name+".json")
	artifactPath := filepath.Join(modelPath, name+".model")

	manifest, err := readManifest(manifestPath)
	if err != nil {
		return nil, 0, nil, err
	}
	logger.Info("model manifest loaded",
		zap.String("path", manifestPath),
		zap.Float64("roc_auc", manifest.RocAUC),
		zap.Int("feature_columns", len(manifest.FeatureColumns)))

	if manifest.FeaturesVersion != features.Version {
		if !allowVersionMismatch {
			return nil, 0, nil, fmt.Errorf("%w: expected %s, manifest has %s",
				ErrVersionMismatch, features.Version, manifest.FeaturesVersion)
		}
		logger.Warn("ignoring feature catalog version mismatch",
			zap.String("expected", features.Version),
			zap.String("manifest", manifest.FeaturesVersion))
	}

	if manifest.MainThreshold <= 0 || manifest.MainThreshold >= 1 {
		return nil, 0, nil, fmt.Errorf("%w: %v", ErrInvalidThreshold, manifest.MainThreshold)
	}

	forest, err := ReadForest(artifactPath)
	if err != nil {
		return nil, 0, nil, err
	}

	// The artifact's own column list must agree with the manifest; a
	// divergence means the files come from different training runs.
	if len(forest.FeatureColumns) != len(manifest.FeatureColumns) {
		return nil, 0, nil, fmt.Errorf("artifact/manifest feature column count mismatch: %d vs %d",
			len(forest.FeatureColumns), len(manifest.FeatureColumns))
	}
	for i, c := range forest.FeatureColumns {
		if manifest.FeatureColumns[i] != c {
			return nil, 0, nil, fmt.Errorf("artifact/manifest feature column mismatch at %d: %q vs %q",
				i, c, manifest.FeatureColumns[i])
		}
	}

	logger.Info("classifier loaded", zap.String("path", artifactPath), zap.Int("trees", len(forest.Trees)))
	return forest, manifest.MainThreshold, manifest, nil
}

func readManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode model manifest %s: %w", path, err)
	}
	return &m, nil
}

// ReadForest reads and validates a serialized forest artifact.
func ReadForest(path string) (*Forest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model artifact: %w", err)
	}
	var f Forest
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode model artifact %s: %w", path, err)
	}
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("invalid model artifact %s: %w", path, err)
	}
	return &f, nil
}

// WriteManifest writes a manifest produced by evaluation next to its artifact.
func WriteManifest(path string, m *Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode model manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write model manifest: %w", err)
	}
	return nil
}
