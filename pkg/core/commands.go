package core

import (
	"fmt"

	"github.com/paulmach/orb"

	"huntoverlay/pkg/hotkey"
	"huntoverlay/pkg/model"
	"huntoverlay/pkg/viewmodel"
)

// Command is one discrete user action applied to the view model on the loop goroutine.
type Command interface {
	Name() string
	Apply(vm *viewmodel.ViewModel) error
}

type SetCategoryEnabled struct {
	Category string
	Enabled  bool
}

func (c SetCategoryEnabled) Name() string { return "set_category_enabled" }
func (c SetCategoryEnabled) Apply(vm *viewmodel.ViewModel) error {
	return vm.SetCategoryEnabled(c.Category, c.Enabled)
}

// SetCategoryColor overrides a category color; a nil Color restores the default.
type SetCategoryColor struct {
	Category string
	Color    *model.Color
}

func (c SetCategoryColor) Name() string { return "set_category_color" }
func (c SetCategoryColor) Apply(vm *viewmodel.ViewModel) error {
	return vm.SetCategoryColor(c.Category, c.Color)
}

// HidePoiAt hides the marker under Point. A miss is not an error.
type HidePoiAt struct {
	Point orb.Point
}

func (c HidePoiAt) Name() string { return "hide_poi_at" }
func (c HidePoiAt) Apply(vm *viewmodel.ViewModel) error {
	vm.HidePoiAt(c.Point)
	return nil
}

type Unhide struct {
	Key model.HiddenKey
}

func (c Unhide) Name() string { return "unhide" }
func (c Unhide) Apply(vm *viewmodel.ViewModel) error {
	vm.Unhide(c.Key)
	return nil
}

// ClearHidden unhides a category, or everything when Category is empty.
type ClearHidden struct {
	Category string
}

func (c ClearHidden) Name() string { return "clear_hidden" }
func (c ClearHidden) Apply(vm *viewmodel.ViewModel) error {
	vm.ClearHidden(c.Category)
	return nil
}

type SetGlobalScale struct {
	Scale float64
}

func (c SetGlobalScale) Name() string { return "set_global_scale" }
func (c SetGlobalScale) Apply(vm *viewmodel.ViewModel) error {
	vm.SetGlobalScale(c.Scale)
	return nil
}

type StepScale struct {
	Steps int
}

func (c StepScale) Name() string { return "step_scale" }
func (c StepScale) Apply(vm *viewmodel.ViewModel) error {
	vm.StepScale(c.Steps)
	return nil
}

type SetActiveMap struct {
	MapID string
}

func (c SetActiveMap) Name() string { return "set_active_map" }
func (c SetActiveMap) Apply(vm *viewmodel.ViewModel) error {
	return vm.SetActiveMap(c.MapID)
}

// SwitchMap is the numeric hotkey switch (1-based). Gating is silent.
type SwitchMap struct {
	Index int
}

func (c SwitchMap) Name() string { return "switch_map" }
func (c SwitchMap) Apply(vm *viewmodel.ViewModel) error {
	_, err := vm.SwitchMapIndex(c.Index)
	return err
}

type SetOverlayRect struct {
	Rect model.Rect
}

func (c SetOverlayRect) Name() string { return "set_overlay_rect" }
func (c SetOverlayRect) Apply(vm *viewmodel.ViewModel) error {
	return vm.SetOverlayRect(c.Rect)
}

type SetMapRect struct {
	MapID string
	Rect  *model.Rect
}

func (c SetMapRect) Name() string { return "set_map_rect" }
func (c SetMapRect) Apply(vm *viewmodel.ViewModel) error {
	return vm.SetMapRect(c.MapID, c.Rect)
}

type ToggleMaster struct{}

func (ToggleMaster) Name() string { return "toggle_master" }
func (ToggleMaster) Apply(vm *viewmodel.ViewModel) error {
	vm.ToggleMaster()
	return nil
}

type SetMasterEnabled struct {
	On bool
}

func (c SetMasterEnabled) Name() string { return "set_master_enabled" }
func (c SetMasterEnabled) Apply(vm *viewmodel.ViewModel) error {
	vm.SetMasterEnabled(c.On)
	return nil
}

type ToggleOverlay struct{}

func (ToggleOverlay) Name() string { return "toggle_overlay" }
func (ToggleOverlay) Apply(vm *viewmodel.ViewModel) error {
	vm.ToggleOverlay()
	return nil
}

type SetOverlayVisible struct {
	Visible bool
}

func (c SetOverlayVisible) Name() string { return "set_overlay_visible" }
func (c SetOverlayVisible) Apply(vm *viewmodel.ViewModel) error {
	vm.SetOverlayVisible(c.Visible)
	return nil
}

type HideOverlay struct{}

func (HideOverlay) Name() string { return "hide_overlay" }
func (HideOverlay) Apply(vm *viewmodel.ViewModel) error {
	vm.HideOverlay()
	return nil
}

type SetNumericMapSwitch struct {
	On bool
}

func (c SetNumericMapSwitch) Name() string { return "set_numeric_map_switch" }
func (c SetNumericMapSwitch) Apply(vm *viewmodel.ViewModel) error {
	vm.SetNumericMapSwitch(c.On)
	return nil
}

type SetMinimizeToTray struct {
	On bool
}

func (c SetMinimizeToTray) Name() string { return "set_minimize_to_tray" }
func (c SetMinimizeToTray) Apply(vm *viewmodel.ViewModel) error {
	vm.SetMinimizeToTray(c.On)
	return nil
}

type SetKeybind struct {
	Action  hotkey.Action
	Binding hotkey.Binding
}

func (c SetKeybind) Name() string { return "set_keybind" }
func (c SetKeybind) Apply(vm *viewmodel.ViewModel) error {
	return vm.SetKeybind(c.Action, c.Binding)
}

type ResetColors struct{}

func (ResetColors) Name() string { return "reset_colors" }
func (ResetColors) Apply(vm *viewmodel.ViewModel) error {
	vm.ResetColors()
	return nil
}

type Reset struct{}

func (Reset) Name() string { return "reset" }
func (Reset) Apply(vm *viewmodel.ViewModel) error {
	vm.Reset()
	return nil
}

// CommandForAction maps a hotkey action onto its command. cursor is the pointer
// position used by the hide-under-cursor combo.
func CommandForAction(a hotkey.Action, cursor orb.Point) (Command, error) {
	if idx, ok := a.MapIndex(); ok {
		return SwitchMap{Index: idx}, nil
	}
	switch a {
	case hotkey.ToggleMaster:
		return ToggleMaster{}, nil
	case hotkey.ToggleOverlay:
		return ToggleOverlay{}, nil
	case hotkey.HideOverlay:
		return HideOverlay{}, nil
	case hotkey.HideHovered:
		return HidePoiAt{Point: cursor}, nil
	}
	return nil, fmt.Errorf("%w: %s", viewmodel.ErrUnknownAction, a)
}
