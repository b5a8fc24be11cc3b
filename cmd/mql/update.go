package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mql-predict/internal/config"
	"mql-predict/internal/dataset"
	"mql-predict/internal/features"
	"mql-predict/internal/model"
	"mql-predict/internal/pipeline"
	"mql-predict/internal/scoring"
	"mql-predict/internal/storage/queue"
	"mql-predict/internal/storage/warehouse"
)

func updateCmd() *cobra.Command {
	var chunkSize int

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Score unhandled candidates and queue the predicted leads",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			logger, err := newLogger()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			logger.Info("launch update")

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			mp, err := resolveModelPath()
			if err != nil {
				return err
			}
			forest, threshold, manifest, err := model.Load(mp, modelName, cfg.IgnoreModelVersion, logger)
			if err != nil {
				return err
			}
			schema, err := features.ResolveSchema(manifest.FeatureColumns)
			if err != nil {
				return err
			}

			conn, err := warehouse.NewConn(ctx, cfg.WarehouseDSN)
			if err != nil {
				return err
			}
			defer conn.Close() //nolint:errcheck

			pool, err := queue.NewPool(ctx, cfg.QueueDSN)
			if err != nil {
				return err
			}
			defer pool.Close()

			scorer, err := scoring.NewScorer(scoring.Options{
				Assembler:  dataset.NewAssembler(warehouse.NewExtractStore(conn)),
				Schema:     schema,
				Classifier: forest,
				Threshold:  threshold,
				Logger:     logger,
			})
			if err != nil {
				return err
			}

			runner, err := pipeline.NewRunner(pipeline.RunnerOptions{
				Queue:     queue.NewStore(pool),
				Scorer:    scorer,
				ChunkSize: chunkSize,
				Logger:    logger,
			})
			if err != nil {
				return err
			}

			result, err := runner.Run(ctx)
			if err != nil {
				return err
			}

			for audience, ar := range result.Audiences {
				logger.Info("audience complete",
					zap.String("audience", string(audience)),
					zap.Int("candidates", ar.Candidates),
					zap.Int("leads", ar.Leads),
					zap.Int64("queued_leads", ar.QueuedLeads),
					zap.Int64("queued_deponators", ar.QueuedDeponators))
			}
			logger.Info("update complete")
			return nil
		},
	}

	cmd.Flags().IntVar(&chunkSize, "chunk-size", scoring.DefaultChunkSize, "candidates per warehouse batch")
	return cmd
}
