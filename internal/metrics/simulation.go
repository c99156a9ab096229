// Package metrics collects latency and throughput figures for draft
// simulations.
package metrics

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/ramonehamilton/cube-drafter/internal/cube"
	"github.com/ramonehamilton/cube-drafter/internal/deckbuild"
	"github.com/ramonehamilton/cube-drafter/internal/draft"
)

// SimulationMetrics tracks pick and deck-build performance. It is safe for
// concurrent use by trial workers.
type SimulationMetrics struct {
	PickLatency  *Histogram
	BuildLatency *Histogram

	PicksMade       atomic.Uint64
	PickErrors      atomic.Uint64
	DraftsCompleted atomic.Uint64
	BuildsCompleted atomic.Uint64
	BuildAttempts   atomic.Uint64
	BuildFailures   atomic.Uint64

	mu        sync.RWMutex
	startTime time.Time
}

// NewSimulationMetrics creates a new metrics collector.
func NewSimulationMetrics() *SimulationMetrics {
	return &SimulationMetrics{
		PickLatency:  NewHistogram(defaultHistogramSize),
		BuildLatency: NewHistogram(defaultHistogramSize),
		startTime:    time.Now(),
	}
}

// RecordPick records one pick and how long the picker took.
func (m *SimulationMetrics) RecordPick(d time.Duration, err error) {
	m.PickLatency.Record(d)
	if err != nil {
		m.PickErrors.Add(1)
		return
	}
	m.PicksMade.Add(1)
}

// RecordDraft counts a finished draft.
func (m *SimulationMetrics) RecordDraft() {
	m.DraftsCompleted.Add(1)
}

// RecordBuild records a finished deck build. build may be nil when every
// color assignment failed; attempts then is the number tried.
func (m *SimulationMetrics) RecordBuild(d time.Duration, build *deckbuild.Build, attempts int) {
	m.BuildLatency.Record(d)
	if build == nil {
		m.BuildAttempts.Add(uint64(attempts))
		m.BuildFailures.Add(uint64(attempts))
		return
	}
	m.BuildsCompleted.Add(1)
	m.BuildAttempts.Add(uint64(build.Attempts))
	m.BuildFailures.Add(uint64(build.Failures))
}

// SimulationStats is a snapshot of SimulationMetrics.
type SimulationStats struct {
	PickLatency  LatencyStats `json:"pick_latency"`
	BuildLatency LatencyStats `json:"build_latency"`

	PicksMade       uint64  `json:"picks_made"`
	PickErrors      uint64  `json:"pick_errors"`
	DraftsCompleted uint64  `json:"drafts_completed"`
	BuildsCompleted uint64  `json:"builds_completed"`
	BuildAttempts   uint64  `json:"build_attempts"`
	BuildFailures   uint64  `json:"build_failures"`
	FailureRate     float64 `json:"failure_rate"` // percentage of build attempts

	Uptime string `json:"uptime"`
}

// GetStats returns a snapshot of the current statistics.
func (m *SimulationMetrics) GetStats() *SimulationStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	attempts := m.BuildAttempts.Load()
	failures := m.BuildFailures.Load()
	failureRate := 0.0
	if attempts > 0 {
		failureRate = float64(failures) / float64(attempts) * 100
	}

	return &SimulationStats{
		PickLatency:     m.PickLatency.Stats(),
		BuildLatency:    m.BuildLatency.Stats(),
		PicksMade:       m.PicksMade.Load(),
		PickErrors:      m.PickErrors.Load(),
		DraftsCompleted: m.DraftsCompleted.Load(),
		BuildsCompleted: m.BuildsCompleted.Load(),
		BuildAttempts:   attempts,
		BuildFailures:   failures,
		FailureRate:     failureRate,
		Uptime:          time.Since(m.startTime).Round(time.Second).String(),
	}
}

// Reset clears all metrics.
func (m *SimulationMetrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.PickLatency.Reset()
	m.BuildLatency.Reset()

	m.PicksMade.Store(0)
	m.PickErrors.Store(0)
	m.DraftsCompleted.Store(0)
	m.BuildsCompleted.Store(0)
	m.BuildAttempts.Store(0)
	m.BuildFailures.Store(0)

	m.startTime = time.Now()
}

type timedPicker struct {
	next    draft.Picker
	metrics *SimulationMetrics
}

// TimePicker wraps p so every pick is recorded in m.
func TimePicker(p draft.Picker, m *SimulationMetrics) draft.Picker {
	if m == nil {
		return p
	}
	return &timedPicker{next: p, metrics: m}
}

func (t *timedPicker) Pick(pack, owned []*cube.Card, info draft.Info) (*cube.Card, error) {
	start := time.Now()
	card, err := t.next.Pick(pack, owned, info)
	t.metrics.RecordPick(time.Since(start), err)
	return card, err
}
