// Package settings holds the mutable user state of the overlay and persists it.
package settings

import (
	"sort"

	"huntoverlay/pkg/hotkey"
	"huntoverlay/pkg/model"
)

// Version is written into every saved document.
const Version = "1.1.0"

// CategoryConfig is the user override for one category.
type CategoryConfig struct {
	Enabled bool         `json:"enabled"`
	Color   *model.Color `json:"color,omitempty"` // nil: use the style default
}

// OverlayConfig holds the global overlay settings.
type OverlayConfig struct {
	MasterEnabled           bool                  `json:"masterEnabled"`
	OverlayVisible          bool                  `json:"overlayVisible"`
	ActiveMapID             string                `json:"activeMapId"`
	NumericMapSwitchEnabled bool                  `json:"numericMapSwitchEnabled"`
	GlobalScale             float64               `json:"globalScale"`
	OverlayRect             model.Rect            `json:"overlayRect"`
	MapRects                map[string]model.Rect `json:"mapRects,omitempty"` // Per-map override of OverlayRect
	MinimizeToTray          bool                  `json:"minimizeToTray"`
}

// HiddenSet is the set of soft-hidden (id, category) pairs.
type HiddenSet map[model.HiddenKey]struct{}

// NewHiddenSet builds a set from keys.
func NewHiddenSet(keys ...model.HiddenKey) HiddenSet {
	h := make(HiddenSet, len(keys))
	for _, k := range keys {
		h[k] = struct{}{}
	}
	return h
}

func (h HiddenSet) Has(k model.HiddenKey) bool {
	_, ok := h[k]
	return ok
}

// Add inserts k and reports whether it was new.
func (h HiddenSet) Add(k model.HiddenKey) bool {
	if h.Has(k) {
		return false
	}
	h[k] = struct{}{}
	return true
}

// Remove deletes k and reports whether it was present.
func (h HiddenSet) Remove(k model.HiddenKey) bool {
	if !h.Has(k) {
		return false
	}
	delete(h, k)
	return true
}

// RemoveCategory deletes every entry of category and returns how many were removed.
func (h HiddenSet) RemoveCategory(category string) int {
	n := 0
	for k := range h {
		if k.Category == category {
			delete(h, k)
			n++
		}
	}
	return n
}

// Sorted returns the keys ordered by category, then id.
func (h HiddenSet) Sorted() []model.HiddenKey {
	keys := make([]model.HiddenKey, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	return keys
}

func (h HiddenSet) Clone() HiddenSet {
	out := make(HiddenSet, len(h))
	for k := range h {
		out[k] = struct{}{}
	}
	return out
}

// State is everything the user can change.
type State struct {
	Overlay    OverlayConfig
	Categories map[string]CategoryConfig
	Hidden     HiddenSet
	Keybinds   hotkey.Bindings
}

// Clone returns a deep copy.
func (s State) Clone() State {
	out := s
	if s.Overlay.MapRects != nil {
		out.Overlay.MapRects = make(map[string]model.Rect, len(s.Overlay.MapRects))
		for k, v := range s.Overlay.MapRects {
			out.Overlay.MapRects[k] = v
		}
	}
	if s.Categories != nil {
		out.Categories = make(map[string]CategoryConfig, len(s.Categories))
		for k, v := range s.Categories {
			if v.Color != nil {
				c := *v.Color
				v.Color = &c
			}
			out.Categories[k] = v
		}
	}
	if s.Hidden != nil {
		out.Hidden = s.Hidden.Clone()
	}
	if s.Keybinds != nil {
		out.Keybinds = s.Keybinds.Clone()
	}
	return out
}
