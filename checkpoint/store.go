package checkpoint

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	pkgerrors "github.com/absmach/fedlearn/pkg/errors"
	"github.com/absmach/fedlearn/pkg/fl"
	"github.com/fxamacker/cbor/v2"
)

// Extension is the file suffix of every checkpoint written by a Tracker.
const Extension = ".ckpt"

// Record is the on-disk content of a checkpoint.
type Record struct {
	Round      int             `cbor:"round"      json:"round"`
	Loss       float64         `cbor:"loss"       json:"loss"`
	Accuracy   float64         `cbor:"accuracy"   json:"accuracy"`
	Parameters fl.ParameterSet `cbor:"parameters" json:"parameters"`
	SavedAt    time.Time       `cbor:"saved_at"   json:"saved_at"`
}

// Summary describes a checkpoint without its parameters.
type Summary struct {
	Name     string    `cbor:"name"     json:"name"`
	Round    int       `cbor:"round"    json:"round"`
	Loss     float64   `cbor:"loss"     json:"loss"`
	Accuracy float64   `cbor:"accuracy" json:"accuracy"`
	SavedAt  time.Time `cbor:"saved_at" json:"saved_at"`
}

var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.EncOptions{Time: cbor.TimeRFC3339Nano}.EncMode()
	if err != nil {
		panic(err)
	}
}

// FileName formats the checkpoint name for a round, for example
// model_round3_acc0.85_loss0.42.ckpt.
func FileName(round int, acc, loss float64) string {
	return fmt.Sprintf("model_round%d_acc%.2f_loss%.2f%s", round, acc, loss, Extension)
}

func (r Record) Summary(name string) Summary {
	return Summary{
		Name:     name,
		Round:    r.Round,
		Loss:     r.Loss,
		Accuracy: r.Accuracy,
		SavedAt:  r.SavedAt,
	}
}

// Save writes rec to path, creating the parent directory if needed. The file is
// written to a temporary sibling and renamed, so a reader never sees a partial record
// and saving the same path twice leaves one complete file.
func Save(path string, rec Record) error {
	data, err := encMode.Marshal(rec)
	if err != nil {
		return fmt.Errorf("%w: encode checkpoint: %w", pkgerrors.ErrIOFailure, err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: create checkpoint directory: %w", pkgerrors.ErrIOFailure, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("%w: %w", pkgerrors.ErrIOFailure, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()

		return fmt.Errorf("%w: write checkpoint: %w", pkgerrors.ErrIOFailure, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %w", pkgerrors.ErrIOFailure, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("%w: %w", pkgerrors.ErrIOFailure, err)
	}

	return nil
}

func Load(path string) (Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Record{}, err
	}

	var rec Record
	if err := cbor.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("%w: decode %s: %w", pkgerrors.ErrInvalidData, filepath.Base(path), err)
	}

	return rec, nil
}

// List returns a summary of every checkpoint in dir ordered by round, then name. A
// missing directory holds no checkpoints.
func List(dir string) ([]Summary, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return []Summary{}, nil
	}
	if err != nil {
		return nil, err
	}

	summaries := []Summary{}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), Extension) || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		rec, err := Load(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, rec.Summary(e.Name()))
	}

	slices.SortFunc(summaries, func(a, b Summary) int {
		if a.Round != b.Round {
			return a.Round - b.Round
		}

		return strings.Compare(a.Name, b.Name)
	})

	return summaries, nil
}
