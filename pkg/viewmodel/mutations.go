package viewmodel

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"

	"huntoverlay/pkg/hotkey"
	"huntoverlay/pkg/model"
)

// SetCategoryEnabled shows or hides a whole category.
func (vm *ViewModel) SetCategoryEnabled(category string, enabled bool) error {
	cfg, ok := vm.state.Categories[category]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCategory, category)
	}
	cfg.Enabled = enabled
	vm.state.Categories[category] = cfg
	vm.changed()
	return nil
}

// SetCategoryColor overrides the fill of a category. nil restores the style default.
func (vm *ViewModel) SetCategoryColor(category string, c *model.Color) error {
	cfg, ok := vm.state.Categories[category]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCategory, category)
	}
	if c != nil {
		cp := *c
		c = &cp
	}
	cfg.Color = c
	vm.state.Categories[category] = cfg
	vm.changed()
	return nil
}

// HidePoiAt soft-hides the marker under p in the category it is drawn under.
// It reports the hidden key, or false when nothing is within the hit radius.
func (vm *ViewModel) HidePoiAt(p orb.Point) (model.HiddenKey, bool) {
	r, ok := vm.Hover(p)
	if !ok {
		return model.HiddenKey{}, false
	}
	key := r.Key()
	vm.state.Hidden.Add(key)
	vm.logger.Info("POI hidden", "id", key.ID, "category", key.Category)
	vm.changed()
	return key, true
}

// Unhide restores one hidden entry and reports whether it was hidden.
func (vm *ViewModel) Unhide(key model.HiddenKey) bool {
	if !vm.state.Hidden.Remove(key) {
		return false
	}
	vm.changed()
	return true
}

// ClearHidden restores every hidden entry of category, or all entries when category is empty.
func (vm *ViewModel) ClearHidden(category string) int {
	var n int
	if category == "" {
		n = len(vm.state.Hidden)
		clear(vm.state.Hidden)
	} else {
		n = vm.state.Hidden.RemoveCategory(category)
	}
	if n > 0 {
		vm.changed()
	}
	return n
}

// SetGlobalScale sets the marker scale, clamped to the configured bounds. It returns the applied value.
func (vm *ViewModel) SetGlobalScale(v float64) float64 {
	vm.state.Overlay.GlobalScale = vm.defaults.ClampScale(v)
	vm.changed()
	return vm.state.Overlay.GlobalScale
}

// StepScale moves the scale by steps increments and returns the applied value.
func (vm *ViewModel) StepScale(steps int) float64 {
	v := vm.state.Overlay.GlobalScale + float64(steps)*vm.opts.ScaleStep
	return vm.SetGlobalScale(math.Round(v*100) / 100)
}

// SetActiveMap selects the map whose POIs are drawn.
func (vm *ViewModel) SetActiveMap(mapID string) error {
	if !vm.defaults.HasMap(mapID) {
		return fmt.Errorf("%w: %s", ErrUnknownMap, mapID)
	}
	vm.state.Overlay.ActiveMapID = mapID
	vm.changed()
	return nil
}

// SwitchMapIndex selects the index-th map (1-based, release order). Numeric
// switching only applies while the overlay is shown and the option is on;
// otherwise it reports false without changing anything.
func (vm *ViewModel) SwitchMapIndex(index int) (bool, error) {
	o := vm.state.Overlay
	if !o.MasterEnabled || !o.OverlayVisible || !o.NumericMapSwitchEnabled {
		return false, nil
	}
	if index < 1 || index > len(vm.opts.Maps) {
		return false, fmt.Errorf("%w: index %d", ErrUnknownMap, index)
	}
	id := vm.opts.Maps[index-1].ID
	if id == o.ActiveMapID {
		return false, nil
	}
	if err := vm.SetActiveMap(id); err != nil {
		return false, err
	}
	return true, nil
}

// SetOverlayRect sets the global overlay rectangle.
func (vm *ViewModel) SetOverlayRect(r model.Rect) error {
	if !r.Valid() {
		return fmt.Errorf("%w: %vx%v", ErrInvalidRect, r.Width, r.Height)
	}
	vm.state.Overlay.OverlayRect = r
	vm.changed()
	return nil
}

// SetMapRect overrides the rectangle for one map. nil removes the override.
func (vm *ViewModel) SetMapRect(mapID string, r *model.Rect) error {
	if !vm.defaults.HasMap(mapID) {
		return fmt.Errorf("%w: %s", ErrUnknownMap, mapID)
	}
	if r == nil {
		delete(vm.state.Overlay.MapRects, mapID)
	} else {
		if !r.Valid() {
			return fmt.Errorf("%w: %vx%v", ErrInvalidRect, r.Width, r.Height)
		}
		vm.state.Overlay.MapRects[mapID] = *r
	}
	vm.changed()
	return nil
}

// ToggleMaster flips the master switch. Turning it off also hides the overlay.
func (vm *ViewModel) ToggleMaster() bool {
	vm.SetMasterEnabled(!vm.state.Overlay.MasterEnabled)
	return vm.state.Overlay.MasterEnabled
}

// SetMasterEnabled sets the master switch. Turning it off also hides the overlay.
func (vm *ViewModel) SetMasterEnabled(on bool) {
	o := &vm.state.Overlay
	o.MasterEnabled = on
	if !on {
		o.OverlayVisible = false
	}
	vm.changed()
}

// ToggleOverlay shows or hides the overlay. It does nothing while the master switch is off.
func (vm *ViewModel) ToggleOverlay() bool {
	return vm.SetOverlayVisible(!vm.state.Overlay.OverlayVisible)
}

// SetOverlayVisible shows or hides the overlay and returns the resulting visibility.
// Showing requires the master switch.
func (vm *ViewModel) SetOverlayVisible(visible bool) bool {
	o := &vm.state.Overlay
	if !o.MasterEnabled {
		return o.OverlayVisible
	}
	if o.OverlayVisible != visible {
		o.OverlayVisible = visible
		vm.changed()
	}
	return o.OverlayVisible
}

// HideOverlay hides the overlay if it is shown.
func (vm *ViewModel) HideOverlay() {
	if vm.state.Overlay.OverlayVisible {
		vm.state.Overlay.OverlayVisible = false
		vm.changed()
	}
}

// SetNumericMapSwitch enables or disables switching maps with the number keys.
func (vm *ViewModel) SetNumericMapSwitch(on bool) {
	vm.state.Overlay.NumericMapSwitchEnabled = on
	vm.changed()
}

// SetMinimizeToTray records the panel's tray preference.
func (vm *ViewModel) SetMinimizeToTray(on bool) {
	vm.state.Overlay.MinimizeToTray = on
	vm.changed()
}

// SetKeybind rebinds one action. Modifiers are dropped for actions that ignore them.
func (vm *ViewModel) SetKeybind(a hotkey.Action, b hotkey.Binding) error {
	if !a.Valid() {
		return fmt.Errorf("%w: %s", ErrUnknownAction, a)
	}
	binds := vm.state.Keybinds.Clone()
	binds[a] = b
	vm.state.Keybinds = hotkey.Normalize(binds)
	vm.changed()
	return nil
}

// ResetColors enables every category and drops every color override.
func (vm *ViewModel) ResetColors() {
	for name := range vm.state.Categories {
		vm.state.Categories[name] = CategoryDefault()
	}
	vm.changed()
}

// Reset replaces the whole state with the defaults.
func (vm *ViewModel) Reset() {
	vm.state = vm.defaults.State()
	vm.logger.Info("Settings reset to defaults")
	vm.changed()
}
