package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/absmach/fedlearn/checkpoint"
	"github.com/absmach/fedlearn/client"
	"github.com/absmach/fedlearn/pkg/dataset"
	"github.com/absmach/fedlearn/pkg/fl"
	"github.com/spf13/cobra"
)

const (
	dryRunBatchSize = 16
	dryRunValSteps  = 32
)

func NewDryRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dry-run",
		Short: "Run one local round",
		Long:  `Train and evaluate a fresh model on a few samples of the first partition, without a coordinator.`,
		Run: func(cmd *cobra.Command, _ []string) {
			cfg, err := LoadConfig()
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}
			cfg.Index = 0
			if err := cfg.Validate(); err != nil {
				logErrorCmd(*cmd, fmt.Errorf("invalid config: %w", err))

				return
			}

			reply, err := DryRun(cmd.Context(), cfg)
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logJSONCmd(*cmd, reply)
			logSuccessCmd(*cmd, "Dry run successful")
		},
	}

	cmd.Flags().StringVarP(&logLevel, "log-level", "l", logLevel, "Log level, overrides FL_CLIENT_LOG_LEVEL")

	return cmd
}

// DryRun fits and evaluates a fresh model on ToyLimit samples of partition 0.
// Checkpoints go to a temporary directory that is removed afterwards.
func DryRun(ctx context.Context, cfg client.Config) (map[fl.ReplyKind]fl.Reply, error) {
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	cfg.Index = 0
	train, test, err := loadPartition(cfg, logger)
	if err != nil {
		return nil, err
	}
	train = dataset.Head(train, client.ToyLimit)
	test = dataset.Head(test, client.ToyLimit)

	return dryRun(ctx, cfg, train, test, logger)
}

func dryRun(ctx context.Context, cfg client.Config, train, test dataset.Dataset, logger *slog.Logger) (map[fl.ReplyKind]fl.Reply, error) {
	factory, err := modelFactory(cfg, train)
	if err != nil {
		return nil, err
	}

	dir, err := os.MkdirTemp("", "fedclient-dry-run-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	tracker := checkpoint.NewTracker(checkpoint.Config{Dir: dir, Patience: cfg.Patience, Delta: cfg.Delta})
	trainer, err := client.NewTrainer(factory, train, client.TrainerConfig{
		ValidationSplit: cfg.ValidationSplit,
		Hyperparams:     hyperparams(cfg),
		Seed:            cfg.Seed,
	}, tracker, nil, logger)
	if err != nil {
		return nil, err
	}
	svc := client.NewService(cfg.InstanceID, trainer, client.NewEvaluator(factory, test, nil, logger), tracker, nil)

	params := factory().Parameters()
	replies := make(map[fl.ReplyKind]fl.Reply, 2)

	fit, err := svc.HandleInstruction(ctx, fl.Instruction{
		RoundID:    "dry-run",
		Parameters: params,
		Config:     map[string]any{fl.KeyBatchSize: dryRunBatchSize, fl.KeyLocalEpochs: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("dry run fit failed: %w", err)
	}
	fit.Parameters = nil
	replies[fl.KindFit] = fit

	eval, err := svc.HandleInstruction(ctx, fl.Instruction{
		RoundID:    "dry-run",
		Parameters: params,
		Config:     map[string]any{fl.KeyValSteps: dryRunValSteps},
	})
	if err != nil {
		return nil, fmt.Errorf("dry run evaluate failed: %w", err)
	}
	replies[fl.KindEvaluate] = eval

	return replies, nil
}
