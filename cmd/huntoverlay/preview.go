package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/paulmach/orb"

	"huntoverlay/pkg/core"
	"huntoverlay/pkg/hotkey"
	"huntoverlay/pkg/logging"
	"huntoverlay/pkg/settings"
)

// newScreen is swapped for a simulation screen in tests.
var newScreen = tcell.NewScreen

const (
	previewTick = 33 * time.Millisecond
	statusRows  = 3

	noticeHighlight = 3 * time.Second
	markerRune      = '●'
)

// termKeys is a KeyState fed by terminal key events. Terminals report presses
// only, so a key counts as held until the next poll tick.
type termKeys struct {
	down map[int]bool
}

func newTermKeys() *termKeys {
	return &termKeys{down: make(map[int]bool)}
}

func (k *termKeys) Down(vk int) bool { return k.down[vk] }

// press records ev and reports whether it mapped to a virtual key.
func (k *termKeys) press(ev *tcell.EventKey) bool {
	vk := vkForKey(ev)
	if vk == 0 {
		return false
	}
	k.down[vk] = true
	mods := ev.Modifiers()
	if mods&tcell.ModCtrl != 0 {
		k.down[hotkey.VKControl] = true
	}
	if mods&tcell.ModAlt != 0 {
		k.down[hotkey.VKMenu] = true
	}
	if mods&tcell.ModShift != 0 {
		k.down[hotkey.VKShift] = true
	}
	return true
}

func (k *termKeys) release() {
	clear(k.down)
}

func vkForKey(ev *tcell.EventKey) int {
	key := ev.Key()
	switch {
	case key == tcell.KeyTab:
		return hotkey.VKTab
	case key == tcell.KeyEscape:
		return hotkey.VKEscape
	case key == tcell.KeyDelete:
		return hotkey.VKDelete
	case key >= tcell.KeyF1 && key <= tcell.KeyF12:
		return hotkey.VKF1 + int(key-tcell.KeyF1)
	case key == tcell.KeyRune:
		return vkForRune(ev.Rune())
	}
	return 0
}

func vkForRune(r rune) int {
	switch {
	case r == '`':
		return hotkey.VKBacktick
	case r == ' ':
		return hotkey.VKSpace
	case r >= '0' && r <= '9', r >= 'A' && r <= 'Z':
		return int(r)
	case r >= 'a' && r <= 'z':
		return int(r - 'a' + 'A')
	}
	return 0
}

// preview is a terminal stand-in for the click-through overlay window. It
// reads frames from the loop and submits commands; it never touches the view model.
type preview struct {
	a      *app
	screen tcell.Screen
	keys   *termKeys
	poller *hotkey.Poller
	cursor orb.Point

	capture    *hotkey.Capture
	captureFor hotkey.Action
	captureIdx int

	noticeSeq uint64
	noticeAt  time.Time

	logger *slog.Logger
}

func runPreview(ctx context.Context, a *app) error {
	screen, err := newScreen()
	if err != nil {
		return fmt.Errorf("failed to create terminal screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to init terminal screen: %w", err)
	}
	defer screen.Fini()
	screen.EnableMouse()

	p := &preview{
		a:      a,
		screen: screen,
		keys:   newTermKeys(),
		poller: hotkey.NewPoller(),
		logger: slog.With("component", "preview"),
	}

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	ticker := time.NewTicker(previewTick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			if !p.handleEvent(ctx, ev) {
				p.logger.Info("Preview closed")
				return nil
			}
		case <-ticker.C:
			p.tick(ctx)
			p.draw()
		}
	}
}

// handleEvent returns false when the preview should close.
func (p *preview) handleEvent(ctx context.Context, ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return p.handleKey(ctx, ev)
	case *tcell.EventMouse:
		x, y := ev.Position()
		p.cursor = p.cellToScreen(x, y)
		p.a.loop.MoveCursor(p.cursor)
	case *tcell.EventResize:
		p.screen.Sync()
	}
	return true
}

func (p *preview) handleKey(ctx context.Context, ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyCtrlC, tcell.KeyCtrlQ:
		return false
	case tcell.KeyCtrlB:
		p.startCapture()
		return true
	case tcell.KeyCtrlR:
		p.submit(ctx, core.ResetColors{})
		return true
	case tcell.KeyCtrlN:
		p.submit(ctx, core.SetNumericMapSwitch{On: !p.a.loop.Frame().NumericSwitch})
		return true
	case tcell.KeyRune:
		switch ev.Rune() {
		case '+', '=':
			p.submit(ctx, core.StepScale{Steps: 1})
			return true
		case '-', '_':
			p.submit(ctx, core.StepScale{Steps: -1})
			return true
		}
	}
	p.keys.press(ev)
	return true
}

// startCapture rebinds the next action in panel order.
func (p *preview) startCapture() {
	p.captureFor = hotkey.Actions[p.captureIdx%len(hotkey.Actions)]
	p.captureIdx++
	p.keys.release()
	p.capture = hotkey.NewCapture(p.keys)
}

func (p *preview) tick(ctx context.Context) {
	defer p.keys.release()

	if p.capture != nil {
		b, done, cancelled := p.capture.Poll(p.keys)
		if !done {
			return
		}
		p.capture = nil
		if cancelled {
			p.logger.Info("Key capture cancelled", "action", p.captureFor)
			return
		}
		p.submit(ctx, core.SetKeybind{Action: p.captureFor, Binding: b})
		return
	}

	f := p.a.loop.Frame()
	for _, act := range p.poller.Poll(f.Keybinds, p.keys) {
		cmd, err := core.CommandForAction(act, p.cursor)
		if err != nil {
			p.logger.Warn("No command for action", "action", act, "error", err)
			continue
		}
		p.submit(ctx, cmd)
	}
}

func (p *preview) submit(ctx context.Context, cmd core.Command) {
	if err := p.a.loop.Submit(ctx, cmd); err != nil && !errors.Is(err, context.Canceled) {
		p.logger.Warn("Command dropped", "command", cmd.Name(), "error", err)
	}
}

func (p *preview) mapArea() (cols, rows int) {
	cols, rows = p.screen.Size()
	rows -= statusRows
	if rows < 1 {
		rows = 1
	}
	return cols, rows
}

// cellToScreen maps a terminal cell to the centre of the screen area it covers.
func (p *preview) cellToScreen(x, y int) orb.Point {
	cols, rows := p.mapArea()
	if cols < 1 {
		cols = 1
	}
	return orb.Point{
		(float64(x) + 0.5) * float64(p.a.screenW) / float64(cols),
		(float64(y) + 0.5) * float64(p.a.screenH) / float64(rows),
	}
}

func (p *preview) screenToCell(pt orb.Point) (x, y int) {
	cols, rows := p.mapArea()
	x = int(pt[0] * float64(cols) / float64(p.a.screenW))
	y = int(pt[1] * float64(rows) / float64(p.a.screenH))
	return min(max(x, 0), cols-1), min(max(y, 0), rows-1)
}

func (p *preview) draw() {
	s := p.screen
	s.Clear()
	f := p.a.loop.Frame()
	cols, rows := p.mapArea()

	if f.Visible {
		for _, r := range f.Renderables {
			x, y := p.screenToCell(orb.Point{r.ScreenX, r.ScreenY})
			style := tcell.StyleDefault.Foreground(tcell.NewRGBColor(int32(r.Color.R), int32(r.Color.G), int32(r.Color.B)))
			if f.Hover != nil && f.Hover.Key() == r.Key() {
				style = style.Reverse(true)
			}
			s.SetContent(x, y, markerRune, nil, style)
		}
	} else {
		help := f.Keybinds.HelpText(p.a.aspect, settings.Version, p.a.dataDir)
		for i, line := range strings.Split(help, "\n") {
			if i >= rows {
				break
			}
			drawText(s, 0, i, line, tcell.StyleDefault)
		}
	}

	saves := p.a.loop.Stats().Get("saver")
	status := fmt.Sprintf("%s | scale %.2f | master %s | overlay %s | numeric %s | hidden %d | saved %d",
		p.mapName(f.ActiveMap), f.Scale, onOff(f.Master), onOff(f.Visible), onOff(f.NumericSwitch), f.HiddenCount, saves.Writes)
	if saves.Failures > 0 {
		status += fmt.Sprintf(" (%d failed)", saves.Failures)
	}
	drawText(s, 0, rows, status, tcell.StyleDefault.Bold(true))

	hint := "Ctrl+B rebind | +/- scale | Ctrl+N numeric switch | Ctrl+R reset colors | Ctrl+C quit"
	if p.capture != nil {
		hint = fmt.Sprintf("Press a key for %s (Esc cancels)", p.captureFor)
	}
	drawText(s, 0, rows+1, hint, tcell.StyleDefault.Dim(true))
	drawText(s, 0, rows+2, logging.GlobalLogCapture.GetLastLine(), p.noticeStyle())

	if cols > 0 {
		s.Show()
	}
}

// noticeStyle highlights the last log line for a few seconds after it changes.
func (p *preview) noticeStyle() tcell.Style {
	if seq := logging.GlobalLogCapture.Seq(); seq != p.noticeSeq {
		p.noticeSeq = seq
		p.noticeAt = time.Now()
	}
	if time.Since(p.noticeAt) < noticeHighlight {
		return tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	}
	return tcell.StyleDefault.Foreground(tcell.ColorYellow)
}

func (p *preview) mapName(id string) string {
	for _, m := range p.a.cfg.Maps {
		if m.ID == id {
			return m.Name
		}
	}
	return id
}

func drawText(s tcell.Screen, x, y int, text string, style tcell.Style) {
	for _, r := range text {
		s.SetContent(x, y, r, nil, style)
		x++
	}
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
