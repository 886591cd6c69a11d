package hotkey

// KeyState reports whether a virtual key is currently held.
type KeyState interface {
	Down(vk int) bool
}

// KeyStateFunc adapts a function to KeyState.
type KeyStateFunc func(vk int) bool

// Down implements KeyState.
func (f KeyStateFunc) Down(vk int) bool { return f(vk) }

// Pressed reports whether the binding for a is held right now.
func (b Bindings) Pressed(a Action, ks KeyState) bool {
	v, ok := b[a]
	if !ok || v.VK == 0 {
		return false
	}
	if a.UsesModifiers() {
		if v.Ctrl && !ks.Down(VKControl) {
			return false
		}
		if v.Alt && !ks.Down(VKMenu) {
			return false
		}
		if v.Shift && !ks.Down(VKShift) {
			return false
		}
	}
	return ks.Down(v.VK)
}

// Poller converts sampled key state into actions that fire once per press.
// It is not safe for concurrent use; poll it from one goroutine.
type Poller struct {
	prev map[Action]bool
}

// NewPoller creates a poller with every key considered released.
func NewPoller() *Poller {
	return &Poller{prev: make(map[Action]bool)}
}

// Poll samples ks and returns the actions whose binding went from released to held,
// in Actions order.
func (p *Poller) Poll(b Bindings, ks KeyState) []Action {
	var fired []Action
	for _, a := range Actions {
		now := b.Pressed(a, ks)
		if now && !p.prev[a] {
			fired = append(fired, a)
		}
		p.prev[a] = now
	}
	return fired
}

// Capture records the next non-modifier key press for rebinding.
type Capture struct {
	prev map[int]bool
}

// NewCapture starts a capture. Keys already held when it starts are ignored until released.
func NewCapture(ks KeyState) *Capture {
	c := &Capture{prev: make(map[int]bool)}
	for vk := 1; vk < 256; vk++ {
		if ks.Down(vk) {
			c.prev[vk] = true
		}
	}
	return c
}

// Poll returns the captured binding once a new key goes down. cancelled is true
// when Escape was pressed.
func (c *Capture) Poll(ks KeyState) (b Binding, done, cancelled bool) {
	if ks.Down(VKEscape) {
		return Binding{}, true, true
	}
	ctrl, alt, shift := ks.Down(VKControl), ks.Down(VKMenu), ks.Down(VKShift)

	down := make(map[int]bool)
	captured := 0
	for vk := 1; vk < 256; vk++ {
		if !ks.Down(vk) {
			continue
		}
		down[vk] = true
		if c.prev[vk] || captured != 0 {
			continue
		}
		switch vk {
		case VKControl, VKMenu, VKShift:
			continue
		}
		captured = vk
	}
	c.prev = down

	if captured == 0 {
		return Binding{}, false, false
	}
	return Binding{VK: captured, Ctrl: ctrl, Alt: alt, Shift: shift}, true, false
}
