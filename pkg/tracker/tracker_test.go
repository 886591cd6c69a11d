package tracker

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTracker(t *testing.T) {
	tr := New()
	name := "hide_poi_at"

	assert.Empty(t, tr.Snapshot())
	assert.Equal(t, Stats{}, tr.Get(name))

	tr.TrackApplied(name)
	tr.TrackApplied(name)
	tr.TrackRejected(name)
	tr.TrackWrite("saver")
	tr.TrackSkipped("saver")
	tr.TrackRetry("saver")
	tr.TrackFailure("saver")

	stats := tr.Snapshot()
	assert.Equal(t, Stats{Applied: 2, Rejected: 1}, stats[name])
	assert.Equal(t, Stats{Writes: 1, Skipped: 1, Retries: 1, Failures: 1}, stats["saver"])
	assert.Equal(t, []string{"hide_poi_at", "saver"}, tr.Names())
}

func TestTracker_SnapshotIsCopy(t *testing.T) {
	tr := New()
	tr.TrackApplied("reset")

	snap := tr.Snapshot()
	tr.TrackApplied("reset")

	assert.Equal(t, int64(1), snap["reset"].Applied)
	assert.Equal(t, int64(2), tr.Get("reset").Applied)
}

func TestTracker_Concurrent(t *testing.T) {
	tr := New()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				tr.TrackWrite("saver")
				_ = tr.Snapshot()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(800), tr.Get("saver").Writes)
}
