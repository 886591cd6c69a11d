package settings

import (
	"math"

	"huntoverlay/pkg/hotkey"
	"huntoverlay/pkg/model"
)

// Defaults describes the fresh state and the bounds used to normalise a loaded one.
type Defaults struct {
	Categories []string // Every category of the dataset
	MapIDs     []string // Release order; the first is the default map
	Rect       model.Rect
	Hidden     []model.HiddenKey
	ScaleMin   float64
	ScaleMax   float64
}

// State returns the documented default state.
func (d Defaults) State() State {
	st := State{
		Overlay: OverlayConfig{
			MasterEnabled:           true,
			OverlayVisible:          false,
			NumericMapSwitchEnabled: true,
			GlobalScale:             d.ClampScale(1.0),
			OverlayRect:             d.Rect,
			MapRects:                map[string]model.Rect{},
		},
		Categories: make(map[string]CategoryConfig, len(d.Categories)),
		Hidden:     make(HiddenSet),
		Keybinds:   hotkey.Defaults(),
	}
	if len(d.MapIDs) > 0 {
		st.Overlay.ActiveMapID = d.MapIDs[0]
	}
	for _, c := range d.Categories {
		st.Categories[c] = CategoryConfig{Enabled: true}
	}
	for _, k := range d.Hidden {
		if d.hasCategory(k.Category) {
			st.Hidden.Add(k)
		}
	}
	return st
}

// ClampScale bounds v into [ScaleMin, ScaleMax]. NaN becomes 1.0 before clamping.
func (d Defaults) ClampScale(v float64) float64 {
	if math.IsNaN(v) {
		v = 1.0
	}
	if d.ScaleMin > 0 && v < d.ScaleMin {
		return d.ScaleMin
	}
	if d.ScaleMax > 0 && v > d.ScaleMax {
		return d.ScaleMax
	}
	return v
}

// HasMap reports whether id is a configured map.
func (d Defaults) HasMap(id string) bool {
	for _, m := range d.MapIDs {
		if m == id {
			return true
		}
	}
	return false
}

func (d Defaults) hasCategory(c string) bool {
	for _, k := range d.Categories {
		if k == c {
			return true
		}
	}
	return false
}

// Normalize returns a copy of st with every out-of-range value repaired.
func (d Defaults) Normalize(st State) State {
	out := st.Clone()
	o := &out.Overlay

	o.GlobalScale = d.ClampScale(o.GlobalScale)
	if !d.HasMap(o.ActiveMapID) && len(d.MapIDs) > 0 {
		o.ActiveMapID = d.MapIDs[0]
	}
	if !o.OverlayRect.Valid() {
		o.OverlayRect = d.Rect
	}

	rects := make(map[string]model.Rect, len(o.MapRects))
	for id, r := range o.MapRects {
		if d.HasMap(id) && r.Valid() {
			rects[id] = r
		}
	}
	o.MapRects = rects

	cats := make(map[string]CategoryConfig, len(d.Categories))
	for _, c := range d.Categories {
		cfg, ok := out.Categories[c]
		if !ok {
			cfg = CategoryConfig{Enabled: true}
		}
		cats[c] = cfg
	}
	out.Categories = cats

	hidden := make(HiddenSet, len(out.Hidden))
	for k := range out.Hidden {
		if d.hasCategory(k.Category) {
			hidden.Add(k)
		}
	}
	out.Hidden = hidden

	out.Keybinds = hotkey.Normalize(out.Keybinds)
	return out
}
