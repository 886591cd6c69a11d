// Package hotkey models the configurable global hotkeys and turns a key-state
// source into discrete, edge-triggered actions.
package hotkey

import (
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
)

// Action names a bindable overlay command. The string is the persisted key.
type Action string

const (
	ToggleMaster  Action = "toggle_master"
	ToggleOverlay Action = "toggle_overlay"
	HideOverlay   Action = "hide_overlay"
	Map1          Action = "map_1"
	Map2          Action = "map_2"
	Map3          Action = "map_3"
	Map4          Action = "map_4"
	HideHovered   Action = "hide_hovered"
)

// Actions lists every action in panel order.
var Actions = []Action{ToggleMaster, ToggleOverlay, HideOverlay, Map1, Map2, Map3, Map4, HideHovered}

// Virtual key codes used by the defaults and the modifier checks.
const (
	VKTab      = 0x09
	VKShift    = 0x10
	VKControl  = 0x11
	VKMenu     = 0x12 // Alt
	VKEscape   = 0x1B
	VKSpace    = 0x20
	VKDelete   = 0x2E
	VK1        = 0x31
	VK2        = 0x32
	VK3        = 0x33
	VK4        = 0x34
	VKH        = 0x48
	VKF1       = 0x70
	VKF12      = 0x7B
	VKBacktick = 0xC0
)

// Valid reports whether a is a known action.
func (a Action) Valid() bool {
	for _, k := range Actions {
		if k == a {
			return true
		}
	}
	return false
}

// MapIndex returns the 1-based map slot of a numeric switch action.
func (a Action) MapIndex() (int, bool) {
	switch a {
	case Map1:
		return 1, true
	case Map2:
		return 2, true
	case Map3:
		return 3, true
	case Map4:
		return 4, true
	}
	return 0, false
}

// UsesModifiers reports whether the action's modifier flags are honoured.
// Only the destructive hide-under-cursor combo needs them.
func (a Action) UsesModifiers() bool {
	return a == HideHovered
}

// Binding is one key plus optional modifiers.
type Binding struct {
	VK    int  `json:"vk"`
	Ctrl  bool `json:"ctrl"`
	Alt   bool `json:"alt"`
	Shift bool `json:"shift"`
}

// Bindings maps every action to its key.
type Bindings map[Action]Binding

// Defaults returns the stock bindings.
func Defaults() Bindings {
	return Bindings{
		ToggleMaster:  {VK: VKBacktick},
		ToggleOverlay: {VK: VKTab},
		HideOverlay:   {VK: VKH},
		Map1:          {VK: VK1},
		Map2:          {VK: VK2},
		Map3:          {VK: VK3},
		Map4:          {VK: VK4},
		HideHovered:   {VK: VKDelete, Ctrl: true, Alt: true, Shift: true},
	}
}

// Clone returns an independent copy.
func (b Bindings) Clone() Bindings {
	out := make(Bindings, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}

// Normalize merges b over the defaults: unknown actions are dropped, missing or
// out-of-range keys fall back to the default, and modifiers are cleared where they
// are not honoured.
func Normalize(b Bindings) Bindings {
	out := Defaults()
	for a, v := range b {
		if !a.Valid() {
			continue
		}
		if v.VK <= 0 || v.VK > 0xFE {
			continue
		}
		if !a.UsesModifiers() {
			v.Ctrl, v.Alt, v.Shift = false, false, false
		}
		out[a] = v
	}
	return out
}

type rawBinding struct {
	VK    *int  `json:"vk"`
	Ctrl  *bool `json:"ctrl"`
	Alt   *bool `json:"alt"`
	Shift *bool `json:"shift"`
}

// UnmarshalJSON fills fields absent from the document from the defaults, so a
// partial hide_hovered entry keeps its default modifiers.
func (b *Bindings) UnmarshalJSON(data []byte) error {
	var raw map[string]rawBinding
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("keybinds: %w", err)
	}
	out := Defaults()
	for name, r := range raw {
		a := Action(name)
		if !a.Valid() {
			continue
		}
		v := out[a]
		if r.VK != nil {
			v.VK = *r.VK
		}
		if r.Ctrl != nil {
			v.Ctrl = *r.Ctrl
		}
		if r.Alt != nil {
			v.Alt = *r.Alt
		}
		if r.Shift != nil {
			v.Shift = *r.Shift
		}
		out[a] = v
	}
	*b = Normalize(out)
	return nil
}

// Label returns a short display name for a virtual key.
func Label(vk int) string {
	switch {
	case vk == VKTab:
		return "Tab"
	case vk == VKBacktick:
		return "`"
	case vk == VKDelete:
		return "Delete"
	case vk == VKShift:
		return "Shift"
	case vk == VKControl:
		return "Ctrl"
	case vk == VKMenu:
		return "Alt"
	case vk == VKEscape:
		return "Esc"
	case vk == VKSpace:
		return "Space"
	case vk >= 0x30 && vk <= 0x39, vk >= 0x41 && vk <= 0x5A:
		return string(rune(vk))
	case vk >= VKF1 && vk <= VKF12:
		return fmt.Sprintf("F%d", vk-VKF1+1)
	}
	return fmt.Sprintf("VK_%d", vk)
}

// Label renders the binding of a, including modifiers where they apply.
func (b Bindings) Label(a Action) string {
	v := b[a]
	if !a.UsesModifiers() {
		return Label(v.VK)
	}
	var parts []string
	if v.Ctrl {
		parts = append(parts, "Ctrl")
	}
	if v.Alt {
		parts = append(parts, "Alt")
	}
	if v.Shift {
		parts = append(parts, "Shift")
	}
	parts = append(parts, Label(v.VK))
	return strings.Join(parts, " + ")
}

// HelpText is the hotkey cheat sheet shown in the panel.
func (b Bindings) HelpText(aspect, version, dataDir string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%-12s Toggle master on or off\n", b.Label(ToggleMaster))
	fmt.Fprintf(&sb, "%-12s Show or hide overlay\n", b.Label(ToggleOverlay))
	fmt.Fprintf(&sb, "%-12s Hide overlay\n", b.Label(HideOverlay))
	fmt.Fprintf(&sb, "%s %s %s %s      Switch map (if enabled)\n",
		b.Label(Map1), b.Label(Map2), b.Label(Map3), b.Label(Map4))
	fmt.Fprintf(&sb, "%s   Hide hovered POI for current category only\n", b.Label(HideHovered))
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "Detected aspect: %s\n", aspect)
	fmt.Fprintf(&sb, "Config version: %s\n", version)
	fmt.Fprintf(&sb, "Files are stored at:\n%s\n", dataDir)
	return sb.String()
}
