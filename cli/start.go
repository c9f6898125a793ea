package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/0x6flab/namegenerator"
	"github.com/absmach/fedlearn"
	"github.com/absmach/fedlearn/checkpoint"
	"github.com/absmach/fedlearn/client"
	"github.com/absmach/fedlearn/client/api"
	"github.com/absmach/fedlearn/client/middleware"
	"github.com/absmach/fedlearn/pkg/experiment"
	"github.com/absmach/fedlearn/pkg/mqtt"
	"github.com/absmach/fedlearn/pkg/storage"
	"github.com/caarlos0/env/v11"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"
)

const (
	svcName   = "fedclient"
	envPrefix = "FL_CLIENT_"
	pathEnv   = ".env"

	shutdownTimeout = 5 * time.Second
)

var (
	logLevel   = ""
	configPath = ""
)

// LoadConfig reads the client configuration from a .env file, when present, and the
// environment.
func LoadConfig() (client.Config, error) {
	if _, err := os.Stat(pathEnv); err == nil {
		_ = godotenv.Load(pathEnv)
	}

	var cfg client.Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: envPrefix}); err != nil {
		return client.Config{}, fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.InstanceID == "" {
		cfg.InstanceID = uuid.NewString()
	}
	if cfg.Name == "" {
		cfg.Name = namegenerator.NewGenerator().Generate()
	}

	return cfg, nil
}

func newLogger(level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("failed to parse log level: %w", err)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: lvl,
	}))
	slog.SetDefault(logger)

	return logger, nil
}

func NewStartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start client",
		Long:  `Start a federated-learning client and wait for rounds from the coordinator.`,
		Run: func(cmd *cobra.Command, _ []string) {
			cfg, err := LoadConfig()
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}
			if configPath != "" {
				creds, err := fedlearn.LoadConfig(configPath)
				if err != nil {
					logErrorCmd(*cmd, err)

					return
				}
				cfg.ClientID = creds.Client.ClientID
				cfg.ClientKey = creds.Client.ClientKey
				cfg.ChannelID = creds.Client.ChannelID
			}
			if err := errors.Join(cfg.Validate(), cfg.ValidateBroker()); err != nil {
				logErrorCmd(*cmd, fmt.Errorf("invalid config: %w", err))

				return
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := Start(ctx, cfg); err != nil {
				logErrorCmd(*cmd, err)
			}
		},
	}

	cmd.Flags().StringVarP(&logLevel, "log-level", "l", logLevel, "Log level, overrides FL_CLIENT_LOG_LEVEL")
	cmd.Flags().StringVarP(&configPath, "config", "c", configPath, "TOML file with broker credentials")

	return cmd
}

// Start runs a client until ctx is done.
func Start(ctx context.Context, cfg client.Config) error {
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}

	train, test, err := loadPartition(cfg, logger)
	if err != nil {
		return err
	}
	factory, err := modelFactory(cfg, train)
	if err != nil {
		return err
	}

	var index *checkpoint.Index
	if cfg.IndexType != "" {
		db, err := storage.New(storage.Config{Type: cfg.IndexType, BadgerPath: cfg.IndexDir})
		if err != nil {
			return err
		}
		defer db.Close()
		index = checkpoint.NewIndex(db)
	}
	tracker := checkpoint.NewTracker(checkpoint.Config{
		Dir:      cfg.CheckpointDir(),
		Patience: cfg.Patience,
		Delta:    cfg.Delta,
		Index:    index,
	})

	name := cfg.Experiment
	if name == "" {
		name = experiment.Name(cfg.Index, cfg.Port, cfg.LearningRate, cfg.BatchSize)
	}
	promExp, err := experiment.NewPrometheus(name, prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}
	exp := experiment.Multi(experiment.NewLogger(name, logger), promExp)
	if err := exp.LogParams(ctx, map[string]any{
		"client_index":     cfg.Index,
		"port":             cfg.Port,
		"learning_rate":    cfg.LearningRate,
		"momentum":         cfg.Momentum,
		"weight_decay":     cfg.WeightDecay,
		"batch_size":       cfg.BatchSize,
		"validation_split": cfg.ValidationSplit,
		"patience":         cfg.Patience,
		"seed":             cfg.Seed,
	}); err != nil {
		logger.Warn("failed to log experiment parameters", slog.Any("error", err))
	}

	trainer, err := client.NewTrainer(factory, train, client.TrainerConfig{
		ValidationSplit: cfg.ValidationSplit,
		Hyperparams:     hyperparams(cfg),
		Seed:            cfg.Seed,
	}, tracker, exp, logger)
	if err != nil {
		return err
	}
	evaluator := client.NewEvaluator(factory, test, exp, logger)

	svc := client.NewService(cfg.InstanceID, trainer, evaluator, tracker, index)
	svc = middleware.Logging(logger, svc)
	svc = middleware.Tracing(otel.Tracer(svcName), svc)
	counter, latency := middleware.MakeMetrics("fedlearn", "client")
	svc = middleware.Metrics(counter, latency, svc)

	pubsub, err := mqtt.NewPubSub(mqtt.Config{
		URL:       cfg.MQTTAddress,
		QoS:       cfg.MQTTQoS,
		ID:        cfg.InstanceID,
		Username:  cfg.ClientID,
		Password:  cfg.ClientKey,
		ChannelID: cfg.ChannelID,
		Timeout:   cfg.MQTTTimeout,
	}, logger)
	if err != nil {
		return errors.Join(errors.New("failed to initialize mqtt client"), err)
	}
	defer func() {
		if err := pubsub.Disconnect(context.Background()); err != nil {
			logger.Warn("failed to disconnect from mqtt broker", slog.Any("error", err))
		}
	}()

	agent := client.NewAgent(svc, pubsub, client.AgentConfig{
		ChannelID:          cfg.ChannelID,
		ClientID:           cfg.InstanceID,
		Name:               cfg.Name,
		Partition:          cfg.Index,
		LivelinessInterval: cfg.LivelinessInterval,
	}, logger)

	hs := &http.Server{
		Addr:              net.JoinHostPort("", cfg.HTTPPort),
		Handler:           api.MakeHandler(svc, logger, cfg.InstanceID, prometheus.DefaultGatherer),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return agent.Run(ctx)
	})
	g.Go(func() error {
		logger.Info(fmt.Sprintf("%s ops API listening", svcName), slog.String("addr", hs.Addr))
		if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return hs.Shutdown(shutdownCtx)
	})

	logger.Info("Client started",
		slog.String("id", cfg.InstanceID),
		slog.String("name", cfg.Name),
		slog.String("experiment", name),
		slog.String("checkpoints", tracker.Dir()),
	)

	if err := g.Wait(); err != nil {
		return fmt.Errorf("%s exited with error: %w", svcName, err)
	}

	return nil
}
