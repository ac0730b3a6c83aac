// Package history tracks price observations per (product, source) series
// with a sliding retention window, and classifies price trends.
package history

import (
	"math"
	"sort"
	"sync"
	"time"

	"github.com/dealscope/dealscope/internal/model"
)

// DefaultWindow is the retention window for price history entries.
const DefaultWindow = 30 * 24 * time.Hour

// Trend classification thresholds, in percent change oldest→newest.
const (
	increasingThreshold = 5.0
	decreasingThreshold = -5.0
)

// Store records price observations and computes trends. Implementations
// must serialize Record/Trend per (productKey, source) series.
type Store interface {
	Record(productKey, source string, totalCost float64)
	RecordAt(productKey, source string, totalCost float64, at time.Time)
	Trend(productKey, source string) model.TrendResult
}

type seriesKey struct {
	product string
	source  string
}

type entry struct {
	totalCost float64
	at        time.Time
}

// MemoryStore is an in-memory Store with process lifetime. State is shared
// across pipeline runs; all access is mutex-serialized.
type MemoryStore struct {
	mu     sync.Mutex
	window time.Duration
	series map[seriesKey][]entry
	now    func() time.Time
}

// Option configures a MemoryStore.
type Option func(*MemoryStore)

// WithWindow overrides the retention window.
func WithWindow(w time.Duration) Option {
	return func(s *MemoryStore) {
		s.window = w
	}
}

// WithNow overrides the clock, for tests.
func WithNow(now func() time.Time) Option {
	return func(s *MemoryStore) {
		s.now = now
	}
}

// NewMemoryStore creates an empty store with the default 30-day window.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		window: DefaultWindow,
		series: make(map[seriesKey][]entry),
		now:    time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Record appends an observation stamped with the current time.
func (s *MemoryStore) Record(productKey, source string, totalCost float64) {
	s.RecordAt(productKey, source, totalCost, s.now())
}

// RecordAt appends an observation and synchronously evicts entries older
// than the retention window from the same series.
func (s *MemoryStore) RecordAt(productKey, source string, totalCost float64, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := seriesKey{product: productKey, source: source}
	entries := append(s.series[key], entry{totalCost: totalCost, at: at})

	cutoff := s.now().Add(-s.window)
	kept := entries[:0]
	for _, e := range entries {
		if e.at.After(cutoff) {
			kept = append(kept, e)
		}
	}
	s.series[key] = kept
}

// Trend classifies the series direction from its oldest and newest entries.
// Requires at least two data points; change percent over a zero oldest
// price is reported as 0.
func (s *MemoryStore) Trend(productKey, source string) model.TrendResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.series[seriesKey{product: productKey, source: source}]
	switch len(entries) {
	case 0:
		return model.TrendResult{Trend: model.TrendNoData}
	case 1:
		return model.TrendResult{Trend: model.TrendInsufficient}
	}

	sorted := make([]entry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].at.Before(sorted[j].at) })

	oldest := sorted[0].totalCost
	newest := sorted[len(sorted)-1].totalCost

	var changePercent float64
	if oldest > 0 {
		changePercent = (newest - oldest) / oldest * 100
	}

	trend := model.TrendStable
	switch {
	case changePercent > increasingThreshold:
		trend = model.TrendIncreasing
	case changePercent < decreasingThreshold:
		trend = model.TrendDecreasing
	}

	return model.TrendResult{
		Trend:         trend,
		ChangePercent: round2(changePercent),
		OldestPrice:   round2(oldest),
		NewestPrice:   round2(newest),
		DataPoints:    len(entries),
	}
}

// Len reports the number of retained entries for a series.
func (s *MemoryStore) Len(productKey, source string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.series[seriesKey{product: productKey, source: source}])
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
