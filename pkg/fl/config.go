package fl

import (
	"encoding/json"
	"fmt"
	"math"

	pkgerrors "github.com/absmach/fedlearn/pkg/errors"
)

const (
	KeyBatchSize   = "batch_size"
	KeyLocalEpochs = "local_epochs"
	KeyValSteps    = "val_steps"
	KeyServerRound = "server_round"
)

// RoundConfig is the typed view of the configuration map sent with every round.
// Fields the coordinator did not send stay at zero and are flagged in Has.
type RoundConfig struct {
	BatchSize   int
	LocalEpochs int
	ValSteps    int
	ServerRound int

	has map[string]bool
}

// ParseRoundConfig converts the coordinator's map into a RoundConfig. Values must be
// integral; JSON numbers decoded as float64 are accepted when they carry no fraction.
func ParseRoundConfig(raw map[string]any) (RoundConfig, error) {
	cfg := RoundConfig{has: make(map[string]bool)}
	fields := []struct {
		key string
		dst *int
	}{
		{KeyBatchSize, &cfg.BatchSize},
		{KeyLocalEpochs, &cfg.LocalEpochs},
		{KeyValSteps, &cfg.ValSteps},
		{KeyServerRound, &cfg.ServerRound},
	}
	for _, f := range fields {
		v, ok := raw[f.key]
		if !ok || v == nil {
			continue
		}
		n, err := toInt(v)
		if err != nil {
			return RoundConfig{}, fmt.Errorf("%w: %s: %w", pkgerrors.ErrInvalidConfig, f.key, err)
		}
		*f.dst = n
		cfg.has[f.key] = true
	}

	if cfg.Has(KeyServerRound) && cfg.ServerRound < 1 {
		return RoundConfig{}, fmt.Errorf("%w: %s must be >= 1, got %d: %w", pkgerrors.ErrInvalidConfig, KeyServerRound, cfg.ServerRound, errOutOfRange)
	}

	return cfg, nil
}

// Has reports whether the coordinator sent the given key.
func (c RoundConfig) Has(key string) bool {
	return c.has[key]
}

// IsFit reports whether the config describes a training round.
func (c RoundConfig) IsFit() bool {
	return c.Has(KeyLocalEpochs)
}

// IsEvaluate reports whether the config describes an evaluation round.
func (c RoundConfig) IsEvaluate() bool {
	return c.Has(KeyValSteps)
}

func (c RoundConfig) ValidateFit() error {
	if !c.Has(KeyBatchSize) {
		return fmt.Errorf("%w: %s: %w", pkgerrors.ErrInvalidConfig, KeyBatchSize, errMissingField)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("%w: %s must be > 0, got %d: %w", pkgerrors.ErrInvalidConfig, KeyBatchSize, c.BatchSize, errOutOfRange)
	}
	if !c.Has(KeyLocalEpochs) {
		return fmt.Errorf("%w: %s: %w", pkgerrors.ErrInvalidConfig, KeyLocalEpochs, errMissingField)
	}
	if c.LocalEpochs <= 0 {
		return fmt.Errorf("%w: %s must be > 0, got %d: %w", pkgerrors.ErrInvalidConfig, KeyLocalEpochs, c.LocalEpochs, errOutOfRange)
	}

	return nil
}

func (c RoundConfig) ValidateEvaluate() error {
	if !c.Has(KeyValSteps) {
		return fmt.Errorf("%w: %s: %w", pkgerrors.ErrInvalidConfig, KeyValSteps, errMissingField)
	}
	if c.ValSteps < 0 {
		return fmt.Errorf("%w: %s must be >= 0, got %d: %w", pkgerrors.ErrInvalidConfig, KeyValSteps, c.ValSteps, errOutOfRange)
	}

	return nil
}

// Kind returns the round kind the config selects.
func (c RoundConfig) Kind() (ReplyKind, error) {
	switch {
	case c.IsFit():
		return KindFit, nil
	case c.IsEvaluate():
		return KindEvaluate, nil
	default:
		return "", fmt.Errorf("%w: %w", pkgerrors.ErrInvalidConfig, errNoRoundKind)
	}
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case uint64:
		if n > math.MaxInt {
			return 0, errOutOfRange
		}

		return int(n), nil
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) || math.IsNaN(n) {
			return 0, errNotInteger
		}
		// float64(math.MaxInt) rounds up to 2^63, which is already out of range.
		if n >= float64(math.MaxInt) || n < float64(math.MinInt) {
			return 0, errOutOfRange
		}

		return int(n), nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, errNotInteger
		}

		return int(i), nil
	default:
		return 0, fmt.Errorf("%w: unsupported type %T", errNotInteger, v)
	}
}
