package main

import (
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mql-predict/internal/dataset"
	"mql-predict/internal/features"
	"mql-predict/internal/model"
)

func evaluateCmd() *cobra.Command {
	var (
		datasetPath  string
		testFraction float64
		seed         int64
	)

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate a forest artifact on a held-out split and write its manifest",
		RunE: func(_ *cobra.Command, _ []string) error {
			logger, err := newLogger()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			mp, err := resolveModelPath()
			if err != nil {
				return err
			}

			forest, err := model.ReadForest(filepath.Join(mp, modelName+".model"))
			if err != nil {
				return err
			}
			schema, err := features.ResolveSchema(forest.FeatureColumns)
			if err != nil {
				return err
			}

			samples, err := dataset.ReadFile(datasetPath)
			if err != nil {
				return err
			}
			labels := dataset.Labels(samples)
			logger.Info("dataset loaded",
				zap.String("path", datasetPath),
				zap.Int("users", len(samples)))

			_, test := model.TrainTestSplit(len(samples), testFraction, seed)

			testLabels := make([]bool, len(test))
			probs := make([]float64, len(test))
			for i, idx := range test {
				testLabels[i] = labels[idx]
				probs[i] = forest.PredictProba(schema.Vector(samples[idx]))
			}

			curve := model.ROCCurve(testLabels, probs)
			auc := model.AUC(curve)
			threshold := model.YoudenJThreshold(curve)

			preds := make([]bool, len(probs))
			for i, p := range probs {
				preds[i] = p > threshold
			}
			cm := model.Confusion(testLabels, preds)

			manifest := &model.Manifest{
				FeaturesVersion: features.Version,
				MainThreshold:   threshold,
				RocAUC:          auc,
				Accuracy:        cm.Accuracy(),
				Precision:       cm.Precision(),
				Recall:          cm.Recall(),
				FeatureColumns:  forest.FeatureColumns,
			}
			manifestPath := filepath.Join(mp, modelName+".json")
			if err := model.WriteManifest(manifestPath, manifest); err != nil {
				return err
			}

			logger.Info("manifest written",
				zap.String("path", manifestPath),
				zap.Int("test_users", len(test)),
				zap.Float64("roc_auc", auc),
				zap.Float64("threshold", threshold),
				zap.Float64("accuracy", cm.Accuracy()),
				zap.Float64("precision", cm.Precision()),
				zap.Float64("recall", cm.Recall()))
			return nil
		},
	}

	cmd.Flags().StringVar(&datasetPath, "dataset", "mql_dataset.csv.gz", "training dataset path")
	cmd.Flags().Float64Var(&testFraction, "test-fraction", 0.33, "held-out fraction for evaluation")
	cmd.Flags().Int64Var(&seed, "seed", 13, "shuffle seed for the train/test split")
	return cmd
}
