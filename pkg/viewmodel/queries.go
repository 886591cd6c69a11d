package viewmodel

import (
	"huntoverlay/pkg/hotkey"
	"huntoverlay/pkg/model"
	"huntoverlay/pkg/settings"
)

// CategoryDefault is the per-category setting of a fresh configuration.
func CategoryDefault() settings.CategoryConfig {
	return settings.CategoryConfig{Enabled: true}
}

// CategoryView is what the settings panel shows for one category.
type CategoryView struct {
	Name         string
	Label        string
	Enabled      bool
	Color        model.Color // Effective fill
	DefaultColor model.Color
	Overridden   bool
	Union        []string
	OnMap        int // POIs of the active map drawn under this category, before hiding
	Hidden       int
}

// MapView is one selectable map.
type MapView struct {
	model.MapInfo
	Active bool
}

// State returns a deep copy of the current settings.
func (vm *ViewModel) State() settings.State {
	return vm.state.Clone()
}

// Keybinds returns a copy of the current bindings.
func (vm *ViewModel) Keybinds() hotkey.Bindings {
	return vm.state.Keybinds.Clone()
}

// Categories lists every category, sorted by name.
func (vm *ViewModel) Categories() []CategoryView {
	onMap := make(map[string]int)
	for _, p := range vm.ds.POIsOnMap(vm.state.Overlay.ActiveMapID) {
		for _, c := range vm.ds.RenderCategories(p.Category) {
			onMap[c]++
		}
	}
	hidden := make(map[string]int)
	for k := range vm.state.Hidden {
		hidden[k.Category]++
	}

	names := vm.ds.Categories()
	out := make([]CategoryView, 0, len(names))
	for _, name := range names {
		style, _ := vm.ds.Style(name)
		cfg := vm.state.Categories[name]
		v := CategoryView{
			Name:         name,
			Label:        style.Label,
			Enabled:      cfg.Enabled,
			Color:        style.Color,
			DefaultColor: style.Color,
			Overridden:   cfg.Color != nil,
			Union:        style.Union,
			OnMap:        onMap[name],
			Hidden:       hidden[name],
		}
		if cfg.Color != nil {
			v.Color = *cfg.Color
		}
		out = append(out, v)
	}
	return out
}

// Maps lists the configured maps in release order.
func (vm *ViewModel) Maps() []MapView {
	out := make([]MapView, 0, len(vm.opts.Maps))
	for _, m := range vm.opts.Maps {
		out = append(out, MapView{MapInfo: m, Active: m.ID == vm.state.Overlay.ActiveMapID})
	}
	return out
}

// ActiveMap returns the id of the selected map.
func (vm *ViewModel) ActiveMap() string {
	return vm.state.Overlay.ActiveMapID
}

// ScaleBounds returns the allowed global scale range.
func (vm *ViewModel) ScaleBounds() (lo, hi float64) {
	return vm.defaults.ScaleMin, vm.defaults.ScaleMax
}
