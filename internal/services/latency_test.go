package services

import (
	"testing"
	"time"
)

func TestLatencyTrackerPercentile(t *testing.T) {
	tracker := newLatencyTracker(10)
	for i := 1; i <= 10; i++ {
		tracker.observe(time.Duration(i) * time.Millisecond)
	}

	if got := tracker.count(); got != 10 {
		t.Fatalf("expected 10 samples, got %d", got)
	}
	p50 := tracker.percentile(50)
	if p50 < 4*time.Millisecond || p50 > 6*time.Millisecond {
		t.Fatalf("unexpected p50: %v", p50)
	}
	if got := tracker.percentile(100); got != 10*time.Millisecond {
		t.Fatalf("unexpected p100: %v", got)
	}
}

func TestLatencyTrackerBoundsSamples(t *testing.T) {
	tracker := newLatencyTracker(5)
	for i := 1; i <= 20; i++ {
		tracker.observe(time.Duration(i) * time.Millisecond)
	}
	if got := tracker.count(); got != 5 {
		t.Fatalf("expected bounded samples, got %d", got)
	}
	// Oldest samples were dropped, so the minimum retained is 16ms.
	if got := tracker.percentile(0); got != 16*time.Millisecond {
		t.Fatalf("unexpected floor: %v", got)
	}
}

func TestLatencyTrackerEmpty(t *testing.T) {
	tracker := newLatencyTracker(5)
	if got := tracker.percentile(95); got != 0 {
		t.Fatalf("expected zero without samples, got %v", got)
	}
}
