package services

import (
	"sort"
	"sync"
	"time"
)

// latencyTracker stores recent analysis durations and computes percentiles
// for the periodic latency log line.
type latencyTracker struct {
	mu      sync.RWMutex
	samples []time.Duration
	maxSize int
}

func newLatencyTracker(maxSize int) *latencyTracker {
	if maxSize <= 0 {
		maxSize = 512
	}
	return &latencyTracker{maxSize: maxSize}
}

// observe records a new duration, dropping the oldest sample once full.
func (l *latencyTracker) observe(d time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.samples = append(l.samples, d)
	if len(l.samples) > l.maxSize {
		copy(l.samples[0:], l.samples[1:])
		l.samples = l.samples[:l.maxSize]
	}
}

// percentile returns the percentile (0-100) duration, or zero without samples.
func (l *latencyTracker) percentile(p float64) time.Duration {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if len(l.samples) == 0 {
		return 0
	}

	sorted := append([]time.Duration(nil), l.samples...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	index := int((p / 100.0) * float64(len(sorted)-1))
	if index < 0 {
		index = 0
	}
	if index >= len(sorted) {
		index = len(sorted) - 1
	}
	return sorted[index]
}

func (l *latencyTracker) count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.samples)
}
