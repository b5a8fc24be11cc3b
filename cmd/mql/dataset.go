package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mql-predict/internal/config"
	"mql-predict/internal/dataset"
	"mql-predict/internal/storage"
	"mql-predict/internal/storage/queue"
	"mql-predict/internal/storage/warehouse"
)

func datasetCmd() *cobra.Command {
	var (
		out        string
		start, end string
		tagDays    int
		labelDays  int
	)

	cmd := &cobra.Command{
		Use:   "dataset",
		Short: "Build the labeled training dataset for a registration cohort",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			logger, err := newLogger()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			window, err := cohortWindow(start, end, tagDays, labelDays)
			if err != nil {
				return err
			}

			cfg, err := config.Load(configPath)
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

			builder := dataset.NewBuilder(warehouse.NewExtractStore(conn), queue.NewStore(pool), logger)
			samples, err := builder.Build(ctx, window)
			if err != nil {
				return err
			}

			if err := dataset.WriteFile(out, samples); err != nil {
				return err
			}
			logger.Info("dataset written",
				zap.String("path", out),
				zap.Int("users", len(samples)))
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "mql_dataset.csv.gz", "output file path")
	cmd.Flags().StringVar(&start, "start", "2017-12-01", "cohort registration window start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "2018-02-01", "cohort registration window end (YYYY-MM-DD)")
	cmd.Flags().IntVar(&tagDays, "tag-days", 1, "behavioral event cutoff, days after registration")
	cmd.Flags().IntVar(&labelDays, "label-days", 30, "deposit label window, days after registration")
	return cmd
}

func cohortWindow(start, end string, tagDays, labelDays int) (storage.CohortWindow, error) {
	startT, err := time.Parse("2006-01-02", start)
	if err != nil {
		return storage.CohortWindow{}, fmt.Errorf("parse --start: %w", err)
	}
	endT, err := time.Parse("2006-01-02", end)
	if err != nil {
		return storage.CohortWindow{}, fmt.Errorf("parse --end: %w", err)
	}
	if !endT.After(startT) {
		return storage.CohortWindow{}, fmt.Errorf("--end %s is not after --start %s", end, start)
	}

	return storage.CohortWindow{
		Start:           startT,
		End:             endT,
		TagCutoffDays:   tagDays,
		LabelWindowDays: labelDays,
	}, nil
}
