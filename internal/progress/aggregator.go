// Package progress folds engine progress events into a single run-level
// view that is safe to read from another goroutine.
package progress

import (
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/ytget/ytfetch/internal/model"
)

// Listener receives a snapshot after every mutation
type Listener func(model.ProgressState)

// Aggregator tracks progress of one orchestration run at a time
type Aggregator struct {
	mu       sync.RWMutex
	state    model.ProgressState
	seen     map[string]struct{}
	listener Listener
}

// NewAggregator creates an aggregator; listener may be nil
func NewAggregator(listener Listener) *Aggregator {
	a := &Aggregator{listener: listener}
	a.Reset(1)
	return a
}

// SetListener replaces the listener
func (a *Aggregator) SetListener(listener Listener) {
	a.mu.Lock()
	a.listener = listener
	a.mu.Unlock()
}

// Reset clears all state for a new run of total items
func (a *Aggregator) Reset(total int) {
	if total <= 0 {
		total = 1
	}
	a.mu.Lock()
	a.state = model.ProgressState{
		TotalCount:     total,
		CompletedFiles: []string{},
	}
	a.seen = make(map[string]struct{})
	a.mu.Unlock()
	a.notify()
}

// Downloading records progress of the item currently being fetched
func (a *Aggregator) Downloading(fileName, percent, speed, eta string) {
	a.mu.Lock()
	a.state.CurrentFileName = filepath.Base(fileName)
	a.state.CurrentItemFraction = ParsePercent(percent)
	a.state.SpeedLabel = speed
	a.state.ETALabel = eta
	a.recompute()
	a.mu.Unlock()
	a.notify()
}

// Finished records that fileName has been fully written
func (a *Aggregator) Finished(fileName string) {
	name := filepath.Base(fileName)

	a.mu.Lock()
	if _, dup := a.seen[name]; !dup && name != "" && name != "." {
		a.seen[name] = struct{}{}
		a.state.CompletedFiles = append(a.state.CompletedFiles, name)
		a.state.CompletedCount++
	}
	a.state.CurrentItemFraction = 0
	a.state.CurrentFileName = ""
	a.state.SpeedLabel = ""
	a.state.ETALabel = ""
	a.recompute()
	a.mu.Unlock()
	a.notify()
}

// Snapshot returns a copy of the current state
func (a *Aggregator) Snapshot() model.ProgressState {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.snapshotLocked()
}

func (a *Aggregator) snapshotLocked() model.ProgressState {
	s := a.state
	s.CompletedFiles = append([]string(nil), a.state.CompletedFiles...)
	return s
}

// recompute updates the overall fraction; caller holds the write lock
func (a *Aggregator) recompute() {
	overall := (float64(a.state.CompletedCount) + a.state.CurrentItemFraction) / float64(a.state.TotalCount)
	overall = min(max(overall, 0), 1)
	a.state.OverallFraction = max(a.state.OverallFraction, overall)
}

func (a *Aggregator) notify() {
	a.mu.RLock()
	listener := a.listener
	if listener == nil {
		a.mu.RUnlock()
		return
	}
	s := a.snapshotLocked()
	a.mu.RUnlock()
	listener(s)
}

// ParsePercent turns "42.5%" into 0.425. Malformed input yields 0 and the
// result is clamped to [0,1].
func ParsePercent(s string) float64 {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v != v {
		return 0
	}
	return min(max(v/100, 0), 1)
}
