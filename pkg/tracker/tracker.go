// Package tracker counts control-loop activity: commands applied or rejected
// and settings writes, keyed by name.
package tracker

import (
	"sort"
	"sync"
	"sync/atomic"
)

// Tracker is safe for concurrent use. The loop writes, render surfaces read.
type Tracker struct {
	mu    sync.RWMutex
	stats map[string]*Stats
}

// Stats holds the counters for one name.
// Fields are accessed atomically.
type Stats struct {
	Applied  int64
	Rejected int64
	Writes   int64
	Skipped  int64 // Flushes with nothing new to write
	Retries  int64
	Failures int64
}

// New creates a new Tracker.
func New() *Tracker {
	return &Tracker{
		stats: make(map[string]*Stats),
	}
}

// getStats returns the stats object for a name, creating it if needed.
func (t *Tracker) getStats(name string) *Stats {
	t.mu.RLock()
	s, ok := t.stats[name]
	t.mu.RUnlock()
	if ok {
		return s
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	// Double check
	if s, ok = t.stats[name]; ok {
		return s
	}
	s = &Stats{}
	t.stats[name] = s
	return s
}

// TrackApplied counts a command applied without error.
func (t *Tracker) TrackApplied(name string) {
	atomic.AddInt64(&t.getStats(name).Applied, 1)
}

func (t *Tracker) TrackRejected(name string) {
	atomic.AddInt64(&t.getStats(name).Rejected, 1)
}

func (t *Tracker) TrackWrite(name string) {
	atomic.AddInt64(&t.getStats(name).Writes, 1)
}

func (t *Tracker) TrackSkipped(name string) {
	atomic.AddInt64(&t.getStats(name).Skipped, 1)
}

func (t *Tracker) TrackRetry(name string) {
	atomic.AddInt64(&t.getStats(name).Retries, 1)
}

func (t *Tracker) TrackFailure(name string) {
	atomic.AddInt64(&t.getStats(name).Failures, 1)
}

// Snapshot returns a copy of the current stats.
func (t *Tracker) Snapshot() map[string]Stats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	result := make(map[string]Stats, len(t.stats))
	for k, v := range t.stats {
		result[k] = load(v)
	}
	return result
}

// Get returns the counters for one name; zero if never tracked.
func (t *Tracker) Get(name string) Stats {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if s, ok := t.stats[name]; ok {
		return load(s)
	}
	return Stats{}
}

// Names returns every tracked name, sorted.
func (t *Tracker) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	names := make([]string, 0, len(t.stats))
	for k := range t.stats {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func load(v *Stats) Stats {
	return Stats{
		Applied:  atomic.LoadInt64(&v.Applied),
		Rejected: atomic.LoadInt64(&v.Rejected),
		Writes:   atomic.LoadInt64(&v.Writes),
		Skipped:  atomic.LoadInt64(&v.Skipped),
		Retries:  atomic.LoadInt64(&v.Retries),
		Failures: atomic.LoadInt64(&v.Failures),
	}
}
