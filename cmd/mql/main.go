package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	configPath string
	modelPath  string
	modelName  string
	logLevel   string
)

func main() {
	root := &cobra.Command{
		Use:           "mql",
		Short:         "Marketing-qualified lead scoring for the adwords conversion queues",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to the INI config file")
	root.PersistentFlags().StringVar(&modelPath, "model-path", "", "directory with model artifacts (default: current directory)")
	root.PersistentFlags().StringVar(&modelName, "model", "random_forest_04", "model artifact name")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	_ = root.MarkPersistentFlagRequired("config")

	root.AddCommand(updateCmd(), datasetCmd(), evaluateCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "mql: %v\n", err)
		os.Exit(1)
	}
}

func newLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(logLevel)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", logLevel, err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	return cfg.Build()
}

func resolveModelPath() (string, error) {
	if modelPath != "" {
		return modelPath, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("resolve working directory: %w", err)
	}
	return wd, nil
}
