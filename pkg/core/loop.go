package core

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"

	"huntoverlay/pkg/hotkey"
	"huntoverlay/pkg/logging"
	"huntoverlay/pkg/model"
	"huntoverlay/pkg/tracker"
	"huntoverlay/pkg/viewmodel"
)

// ErrStopped is returned when submitting to a loop that has exited.
var ErrStopped = errors.New("control loop stopped")

const journalSize = 256

// Frame is an immutable snapshot for render surfaces. Readers must not modify it.
type Frame struct {
	Seq           uint64
	Renderables   []model.Renderable
	Hover         *model.Renderable
	Master        bool
	Visible       bool
	NumericSwitch bool
	ActiveMap     string
	Rect          model.Rect
	Scale         float64
	HiddenCount   int
	Keybinds      hotkey.Bindings
}

// JournalEntry records one applied command.
type JournalEntry struct {
	ID      uuid.UUID
	At      time.Time
	Command string
	Err     string
}

type item struct {
	cmd  Command
	fn   func()
	done chan error
}

// Loop is the single owner of the view model. Commands are applied one at a
// time in submission order; frames are published after each one.
type Loop struct {
	vm    *viewmodel.ViewModel
	saver *Saver
	queue chan item

	stopped  chan struct{}
	stopOnce sync.Once

	frame  atomic.Pointer[Frame]
	seq    uint64
	cursor orb.Point

	journalMu sync.Mutex
	journal   []JournalEntry
	stats     *tracker.Tracker

	logger *slog.Logger
}

// NewLoop creates a loop around vm. saver may be nil.
func NewLoop(vm *viewmodel.ViewModel, saver *Saver, queueSize int) *Loop {
	if queueSize <= 0 {
		queueSize = 64
	}
	l := &Loop{
		vm:      vm,
		saver:   saver,
		queue:   make(chan item, queueSize),
		stopped: make(chan struct{}),
		stats:   tracker.New(),
		logger:  slog.With("component", "loop"),
	}
	if saver != nil {
		saver.bind(vm.State, l.Post, l.stats)
	}
	l.publish()
	return l
}

// Run applies queued commands until ctx is cancelled. Commands already queued
// are applied, then any pending save is flushed before Run returns.
func (l *Loop) Run(ctx context.Context) error {
	defer l.stopOnce.Do(func() { close(l.stopped) })
	l.logger.Info("Control loop started")

	for {
		select {
		case <-ctx.Done():
			l.drain()
			return l.shutdown()
		case it := <-l.queue:
			l.handle(it)
		}
	}
}

func (l *Loop) drain() {
	for {
		select {
		case it := <-l.queue:
			l.handle(it)
		default:
			return
		}
	}
}

func (l *Loop) shutdown() error {
	if l.saver == nil {
		return nil
	}
	l.saver.Stop()
	if err := l.saver.Flush(context.Background()); err != nil {
		l.logger.Error("Final settings flush failed", "error", err)
		return err
	}
	l.logger.Info("Control loop stopped")
	return nil
}

// Submit queues cmd without waiting for it to be applied.
func (l *Loop) Submit(ctx context.Context, cmd Command) error {
	return l.enqueue(ctx, item{cmd: cmd})
}

// Do queues cmd and waits for its result.
func (l *Loop) Do(ctx context.Context, cmd Command) error {
	it := item{cmd: cmd, done: make(chan error, 1)}
	if err := l.enqueue(ctx, it); err != nil {
		return err
	}
	select {
	case err := <-it.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-l.stopped:
		// Run drains the queue before closing stopped, so the result may be ready.
		select {
		case err := <-it.done:
			return err
		default:
			return ErrStopped
		}
	}
}

// Post runs fn on the loop goroutine. It is dropped once the loop has stopped.
func (l *Loop) Post(fn func()) {
	select {
	case l.queue <- item{fn: fn}:
	case <-l.stopped:
	}
}

// MoveCursor updates the pointer position used for hover highlighting.
func (l *Loop) MoveCursor(p orb.Point) {
	l.Post(func() { l.cursor = p })
}

func (l *Loop) enqueue(ctx context.Context, it item) error {
	select {
	case <-l.stopped:
		return ErrStopped
	default:
	}
	select {
	case l.queue <- it:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.stopped:
		return ErrStopped
	}
}

// Apply runs cmd on the calling goroutine. Use it only while Run is not running,
// e.g. for replay.
func (l *Loop) Apply(cmd Command) error {
	return l.apply(cmd)
}

// Replay applies cmds in order and stops at the first error.
func (l *Loop) Replay(cmds ...Command) error {
	for _, c := range cmds {
		if err := l.apply(c); err != nil {
			return err
		}
	}
	return nil
}

func (l *Loop) handle(it item) {
	if it.fn != nil {
		it.fn()
		l.publish()
		return
	}
	err := l.apply(it.cmd)
	if it.done != nil {
		it.done <- err
	}
}

func (l *Loop) apply(cmd Command) error {
	err := cmd.Apply(l.vm)
	l.record(cmd, err)
	if err != nil {
		l.logger.Warn("Command rejected", "command", cmd.Name(), "error", err)
	}
	l.publish()
	return err
}

func (l *Loop) record(cmd Command, err error) {
	e := JournalEntry{ID: uuid.New(), At: time.Now(), Command: cmd.Name()}
	if err != nil {
		e.Err = err.Error()
		l.stats.TrackRejected(e.Command)
	} else {
		l.stats.TrackApplied(e.Command)
	}
	l.logger.Debug("Command applied", "id", e.ID, "command", e.Command, "args", cmd)

	l.journalMu.Lock()
	l.journal = append(l.journal, e)
	if len(l.journal) > journalSize {
		l.journal = l.journal[len(l.journal)-journalSize:]
	}
	l.journalMu.Unlock()
}

// Stats returns the command and save counters. Safe from any goroutine.
func (l *Loop) Stats() *tracker.Tracker {
	return l.stats
}

// Journal returns the most recent applied commands, oldest first.
func (l *Loop) Journal() []JournalEntry {
	l.journalMu.Lock()
	defer l.journalMu.Unlock()
	return append([]JournalEntry(nil), l.journal...)
}

func (l *Loop) publish() {
	l.seq++
	st := l.vm.State()
	f := &Frame{
		Seq:           l.seq,
		Renderables:   l.vm.RenderList(),
		Master:        st.Overlay.MasterEnabled,
		Visible:       st.Overlay.OverlayVisible,
		NumericSwitch: st.Overlay.NumericMapSwitchEnabled,
		ActiveMap:     st.Overlay.ActiveMapID,
		Rect:          l.vm.EffectiveRect(),
		Scale:         st.Overlay.GlobalScale,
		HiddenCount:   len(st.Hidden),
		Keybinds:      st.Keybinds,
	}
	if r, ok := l.vm.Hover(l.cursor); ok {
		f.Hover = &r
	}
	l.frame.Store(f)
	logging.Trace(l.logger, "Frame published", "seq", f.Seq, "markers", len(f.Renderables))
}

// Frame returns the latest published frame. Safe from any goroutine.
func (l *Loop) Frame() *Frame {
	return l.frame.Load()
}
