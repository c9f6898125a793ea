package client

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"time"

	"github.com/absmach/fedlearn/pkg/dataset"
	"github.com/absmach/fedlearn/pkg/storage"
)

// Config is the environment configuration of a client process.
type Config struct {
	LogLevel           string        `env:"LOG_LEVEL"           envDefault:"info"`
	InstanceID         string        `env:"INSTANCE_ID"`
	Name               string        `env:"NAME"`
	Index              int           `env:"INDEX"               envDefault:"0"`
	Port               string        `env:"PORT"                envDefault:"8080"`
	ValidationSplit    float64       `env:"VALIDATION_SPLIT"    envDefault:"0.1"`
	Patience           int           `env:"PATIENCE"            envDefault:"5"`
	Delta              float64       `env:"DELTA"               envDefault:"0.0001"`
	CheckpointRoot     string        `env:"CHECKPOINT_ROOT"     envDefault:"."`
	IndexType          string        `env:"INDEX_TYPE"`
	IndexDir           string        `env:"INDEX_DIR"           envDefault:"./data"`
	DatasetFormat      string        `env:"DATASET_FORMAT"      envDefault:"csv"`
	DatasetPath        string        `env:"DATASET_PATH"`
	DatasetTestPath    string        `env:"DATASET_TEST_PATH"`
	NumPartitions      int           `env:"NUM_PARTITIONS"      envDefault:"10"`
	Toy                bool          `env:"TOY"                 envDefault:"false"`
	Classes            int           `env:"CLASSES"             envDefault:"10"`
	LearningRate       float64       `env:"LEARNING_RATE"       envDefault:"0.1"`
	Momentum           float64       `env:"MOMENTUM"            envDefault:"0.9"`
	WeightDecay        float64       `env:"WEIGHT_DECAY"        envDefault:"0.0001"`
	BatchSize          int           `env:"BATCH_SIZE"          envDefault:"16"`
	Seed               int64         `env:"SEED"                envDefault:"42"`
	Experiment         string        `env:"EXPERIMENT"`
	MQTTAddress        string        `env:"MQTT_ADDRESS"        envDefault:"tcp://localhost:1883"`
	MQTTQoS            uint8         `env:"MQTT_QOS"            envDefault:"2"`
	MQTTTimeout        time.Duration `env:"MQTT_TIMEOUT"        envDefault:"30s"`
	ClientID           string        `env:"CLIENT_ID"`
	ClientKey          string        `env:"CLIENT_KEY"`
	ChannelID          string        `env:"CHANNEL_ID"`
	LivelinessInterval time.Duration `env:"LIVELINESS_INTERVAL" envDefault:"10s"`
	HTTPPort           string        `env:"HTTP_PORT"           envDefault:"9090"`
}

// ToyLimit is the number of train and test samples kept in toy mode.
const ToyLimit = 10

// CheckpointDir is the directory the tracker of this client writes to.
func (c Config) CheckpointDir() string {
	return filepath.Join(c.CheckpointRoot, fmt.Sprintf("%s_client_%d_best_models", c.Port, c.Index))
}

// Validate checks the settings a training process needs. Broker credentials are
// checked separately since a dry run does not connect.
func (c Config) Validate() error {
	var errs []error
	if c.ValidationSplit < 0 || c.ValidationSplit >= 1 {
		errs = append(errs, fmt.Errorf("validation split must be in [0, 1), got %g", c.ValidationSplit))
	}
	if c.Patience < 1 {
		errs = append(errs, fmt.Errorf("patience must be >= 1, got %d", c.Patience))
	}
	if c.Delta < 0 {
		errs = append(errs, fmt.Errorf("delta must be >= 0, got %g", c.Delta))
	}
	if c.NumPartitions < 1 {
		errs = append(errs, fmt.Errorf("number of partitions must be >= 1, got %d", c.NumPartitions))
	}
	if c.Index < 0 || c.Index >= c.NumPartitions {
		errs = append(errs, fmt.Errorf("partition index %d is out of range [0, %d)", c.Index, c.NumPartitions))
	}
	if c.Classes < 2 {
		errs = append(errs, fmt.Errorf("classes must be >= 2, got %d", c.Classes))
	}
	if c.LearningRate <= 0 {
		errs = append(errs, fmt.Errorf("learning rate must be > 0, got %g", c.LearningRate))
	}
	if c.BatchSize < 1 {
		errs = append(errs, fmt.Errorf("batch size must be >= 1, got %d", c.BatchSize))
	}
	switch c.DatasetFormat {
	case dataset.FormatCSV, dataset.FormatCIFAR10:
	default:
		errs = append(errs, fmt.Errorf("%w: %q", dataset.ErrUnknownFormat, c.DatasetFormat))
	}
	switch c.IndexType {
	case "", storage.TypeMemory, storage.TypeBadger:
	default:
		errs = append(errs, fmt.Errorf("unsupported checkpoint index type %q", c.IndexType))
	}
	if c.DatasetPath == "" {
		errs = append(errs, errors.New("dataset path is required"))
	}

	return errors.Join(errs...)
}

// ValidateBroker checks the settings needed to reach the coordinator.
func (c Config) ValidateBroker() error {
	if c.MQTTAddress == "" {
		return errors.New("mqtt address is required")
	}
	if _, err := url.Parse(c.MQTTAddress); err != nil {
		return fmt.Errorf("mqtt address is not a valid URL: %w", err)
	}
	if c.ClientID == "" {
		return errors.New("client id is required")
	}
	if c.ClientKey == "" {
		return errors.New("client key is required")
	}
	if c.ChannelID == "" {
		return errors.New("channel id is required")
	}

	return nil
}
