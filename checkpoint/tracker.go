// Package checkpoint tracks the best validation accuracy a client has reached, persists
// a snapshot of the model every time it improves and decides when training has stopped
// improving.
package checkpoint

import (
	"context"
	"math"
	"path/filepath"
	"sync"
	"time"

	"github.com/absmach/fedlearn/pkg/fl"
)

const (
	DefaultPatience = 5
	DefaultDelta    = 1e-4
)

// ParameterSource is anything that can snapshot its trainable weights.
type ParameterSource interface {
	Parameters() fl.ParameterSet
}

type Config struct {
	Dir      string
	Patience int
	Delta    float64
	// Index, when set, records a summary of every checkpoint written.
	Index *Index
}

// State is a point-in-time copy of the tracker. BestAccuracy is nil until the first
// result has been recorded.
type State struct {
	BestAccuracy   *float64 `json:"best_accuracy,omitempty"`
	NoImprovement  int      `json:"no_improvement"`
	Patience       int      `json:"patience"`
	Delta          float64  `json:"delta"`
	Dir            string   `json:"dir"`
	LastCheckpoint string   `json:"last_checkpoint,omitempty"`
	EarlyStop      bool     `json:"early_stop"`
}

type Tracker struct {
	mu       sync.Mutex
	dir      string
	patience int
	delta    float64
	index    *Index
	best     float64
	counter  int
	last     string
	now      func() time.Time
}

func NewTracker(cfg Config) *Tracker {
	return &Tracker{
		dir:      cfg.Dir,
		patience: cfg.Patience,
		delta:    cfg.Delta,
		index:    cfg.Index,
		best:     math.Inf(-1),
		now:      time.Now,
	}
}

// IsBestAccuracy reports whether acc beats the best accuracy by more than delta.
func (t *Tracker) IsBestAccuracy(acc float64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.improves(acc)
}

// RecordResult updates the tracker with one validation outcome. An improvement resets
// the no-improvement counter and writes a checkpoint named name into the tracker
// directory; anything else only increments the counter. A failed write is returned
// wrapped in ErrIOFailure after the state has been updated.
func (t *Tracker) RecordResult(ctx context.Context, src ParameterSource, round int, loss, acc float64, name string) (fl.Status, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.improves(acc) {
		t.counter++

		return t.status(), nil
	}

	t.best = acc
	t.counter = 0

	rec := Record{
		Round:      round,
		Loss:       loss,
		Accuracy:   acc,
		Parameters: src.Parameters(),
		SavedAt:    t.now().UTC(),
	}
	if err := Save(filepath.Join(t.dir, name), rec); err != nil {
		return t.status(), err
	}
	t.last = name

	if t.index != nil {
		if err := t.index.Put(ctx, rec.Summary(name)); err != nil {
			return t.status(), err
		}
	}

	return t.status(), nil
}

func (t *Tracker) ShouldStop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.counter >= t.patience
}

func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := State{
		NoImprovement:  t.counter,
		Patience:       t.patience,
		Delta:          t.delta,
		Dir:            t.dir,
		LastCheckpoint: t.last,
		EarlyStop:      t.counter >= t.patience,
	}
	if !math.IsInf(t.best, -1) {
		best := t.best
		s.BestAccuracy = &best
	}

	return s
}

func (t *Tracker) Dir() string {
	return t.dir
}

func (t *Tracker) improves(acc float64) bool {
	return acc > t.best+t.delta
}

func (t *Tracker) status() fl.Status {
	if t.counter >= t.patience {
		return fl.StatusEarlyStop
	}

	return fl.StatusContinue
}
