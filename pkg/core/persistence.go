package core

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"time"

	"huntoverlay/pkg/settings"
	"huntoverlay/pkg/tracker"
)

// Writer stores an encoded settings document.
type Writer interface {
	Write(ctx context.Context, data []byte) error
}

// Saver batches settings writes. Schedule, Flush and the timer callback all run
// on the loop goroutine; the timer itself only posts the flush back to the loop.
type Saver struct {
	w      Writer
	delay  time.Duration
	notify func(error)

	snapshot func() settings.State
	post     func(func())
	stats    *tracker.Tracker

	timer     *time.Timer
	gen       uint64
	pending   bool
	lastSaved []byte
	logger    *slog.Logger
}

// NewSaver creates a saver that writes delay after the last Schedule.
// notify receives an *settings.IoError when a write fails twice; it may be nil.
func NewSaver(w Writer, delay time.Duration, notify func(error)) *Saver {
	if notify == nil {
		notify = func(error) {}
	}
	return &Saver{
		w:      w,
		delay:  delay,
		notify: notify,
		logger: slog.With("component", "saver"),
	}
}

// statsName keys save counters in the tracker.
const statsName = "saver"

// bind connects the saver to the state source, the loop queue and its counters.
func (s *Saver) bind(snapshot func() settings.State, post func(func()), stats *tracker.Tracker) {
	s.snapshot = snapshot
	s.post = post
	s.stats = stats
}

// Schedule requests a save. A newer schedule supersedes the pending timer.
func (s *Saver) Schedule() {
	s.pending = true
	if s.snapshot == nil {
		return
	}
	if s.delay <= 0 || s.post == nil {
		_ = s.Flush(context.Background())
		return
	}

	if s.timer != nil {
		s.timer.Stop()
	}
	s.gen++
	gen := s.gen
	s.timer = time.AfterFunc(s.delay, func() {
		s.post(func() {
			if gen != s.gen || !s.pending {
				return
			}
			_ = s.Flush(context.Background())
		})
	})
}

// Pending reports whether a scheduled save has not been written yet.
func (s *Saver) Pending() bool {
	return s.pending
}

// Stop cancels the timer without writing.
func (s *Saver) Stop() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.gen++
}

// Flush writes the current state now if it differs from the last written
// document. A failed write is retried once before it is reported.
func (s *Saver) Flush(ctx context.Context) error {
	if s.snapshot == nil {
		return nil
	}
	s.pending = false

	data, err := settings.Encode(s.snapshot())
	if err != nil {
		s.logger.Error("Failed to encode settings", "error", err)
		return err
	}
	if bytes.Equal(data, s.lastSaved) {
		s.stats.TrackSkipped(statsName)
		return nil
	}

	err = s.w.Write(ctx, data)
	if err != nil {
		s.logger.Warn("Settings write failed, retrying", "error", err)
		s.stats.TrackRetry(statsName)
		err = s.w.Write(ctx, data)
	}
	if err != nil {
		var ioErr *settings.IoError
		if !errors.As(err, &ioErr) {
			ioErr = &settings.IoError{Op: "write", Err: err}
		}
		s.logger.Error("Failed to save settings, changes are kept in memory", "error", ioErr)
		s.stats.TrackFailure(statsName)
		s.notify(ioErr)
		return ioErr
	}

	s.lastSaved = data
	s.stats.TrackWrite(statsName)
	s.logger.Debug("Settings saved", "size", len(data))
	return nil
}
