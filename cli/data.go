package cli

import (
	"fmt"
	"log/slog"

	"github.com/absmach/fedlearn/client"
	"github.com/absmach/fedlearn/pkg/dataset"
	"github.com/absmach/fedlearn/pkg/model"
)

// loadPartition reads the configured dataset and returns the client's shard of it.
func loadPartition(cfg client.Config, logger *slog.Logger) (train, test dataset.Dataset, err error) {
	loader, err := dataset.NewLoader(cfg.DatasetFormat, cfg.DatasetPath, cfg.DatasetTestPath)
	if err != nil {
		return nil, nil, err
	}

	train, test, err = dataset.LoadPartition(loader, cfg.Index, cfg.NumPartitions)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load partition %d: %w", cfg.Index, err)
	}
	if cfg.Toy {
		train = dataset.Head(train, client.ToyLimit)
		test = dataset.Head(test, client.ToyLimit)
	}

	logger.Info("Loaded dataset partition",
		slog.Int("partition", cfg.Index),
		slog.Int("partitions", cfg.NumPartitions),
		slog.Int("train", train.Len()),
		slog.Int("test", test.Len()),
		slog.Bool("toy", cfg.Toy),
	)

	return train, test, nil
}

func modelFactory(cfg client.Config, train dataset.Dataset) (model.Factory, error) {
	features, err := dataset.FeatureCount(train)
	if err != nil {
		return nil, err
	}

	return model.SoftmaxFactory(features, cfg.Classes, cfg.Seed), nil
}

func hyperparams(cfg client.Config) model.Hyperparams {
	return model.Hyperparams{
		LearningRate: cfg.LearningRate,
		Momentum:     cfg.Momentum,
		WeightDecay:  cfg.WeightDecay,
	}
}
