package viewmodel

import "errors"

var (
	// ErrUnknownCategory indicates a category absent from the style defaults.
	ErrUnknownCategory = errors.New("unknown category")
	// ErrUnknownMap indicates a map id that is not configured.
	ErrUnknownMap = errors.New("unknown map")
	// ErrInvalidRect indicates a rectangle without positive width and height.
	ErrInvalidRect = errors.New("invalid overlay rectangle")
	// ErrUnknownAction indicates a keybind for an action that does not exist.
	ErrUnknownAction = errors.New("unknown hotkey action")
)
