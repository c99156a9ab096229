package metrics

import (
	"math"
	"sort"
	"sync"
	"time"
)

const defaultHistogramSize = 10000

// Histogram keeps a bounded window of duration samples in milliseconds.
type Histogram struct {
	mu      sync.RWMutex
	samples []float64
	maxSize int
}

// NewHistogram creates a histogram holding at most maxSize samples. Older
// samples are dropped in batches once it fills up.
func NewHistogram(maxSize int) *Histogram {
	if maxSize <= 0 {
		maxSize = defaultHistogramSize
	}
	return &Histogram{
		samples: make([]float64, 0, maxSize),
		maxSize: maxSize,
	}
}

// Record adds a duration sample.
func (h *Histogram) Record(d time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.samples = append(h.samples, float64(d.Microseconds())/1000.0)
	if len(h.samples) > h.maxSize {
		drop := h.maxSize / 5
		if drop == 0 {
			drop = 1
		}
		h.samples = append(h.samples[:0], h.samples[drop:]...)
	}
}

// Time records how long fn takes and returns its error.
func (h *Histogram) Time(fn func() error) error {
	start := time.Now()
	err := fn()
	h.Record(time.Since(start))
	return err
}

// Mean returns the average sample in milliseconds.
func (h *Histogram) Mean() float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.samples) == 0 {
		return 0
	}
	var sum float64
	for _, v := range h.samples {
		sum += v
	}
	return sum / float64(len(h.samples))
}

// Percentile returns the linearly interpolated sample at p (0-100).
func (h *Histogram) Percentile(p float64) float64 {
	h.mu.RLock()
	sorted := append([]float64(nil), h.samples...)
	h.mu.RUnlock()

	if len(sorted) == 0 {
		return 0
	}
	sort.Float64s(sorted)

	index := (p / 100.0) * float64(len(sorted)-1)
	lower := int(math.Floor(index))
	upper := int(math.Ceil(index))
	if lower == upper {
		return sorted[lower]
	}
	fraction := index - float64(lower)
	return sorted[lower]*(1-fraction) + sorted[upper]*fraction
}

// Min returns the smallest sample.
func (h *Histogram) Min() float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.samples) == 0 {
		return 0
	}
	m := h.samples[0]
	for _, v := range h.samples[1:] {
		m = math.Min(m, v)
	}
	return m
}

// Max returns the largest sample.
func (h *Histogram) Max() float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.samples) == 0 {
		return 0
	}
	m := h.samples[0]
	for _, v := range h.samples[1:] {
		m = math.Max(m, v)
	}
	return m
}

// Count returns the number of samples held.
func (h *Histogram) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.samples)
}

// Reset clears all samples.
func (h *Histogram) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.samples = h.samples[:0]
}

// LatencyStats summarizes a histogram in milliseconds.
type LatencyStats struct {
	Mean  float64 `json:"mean"`
	P50   float64 `json:"p50"`
	P95   float64 `json:"p95"`
	P99   float64 `json:"p99"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Count int     `json:"count"`
}

// Stats returns a snapshot of the histogram.
func (h *Histogram) Stats() LatencyStats {
	return LatencyStats{
		Mean:  h.Mean(),
		P50:   h.Percentile(50),
		P95:   h.Percentile(95),
		P99:   h.Percentile(99),
		Min:   h.Min(),
		Max:   h.Max(),
		Count: h.Count(),
	}
}
