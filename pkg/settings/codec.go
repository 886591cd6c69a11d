package settings

import (
	"fmt"

	"github.com/bytedance/sonic"

	"huntoverlay/pkg/hotkey"
	"huntoverlay/pkg/model"
)

type document struct {
	Version string `json:"version"`
	OverlayConfig
	Categories map[string]CategoryConfig `json:"categories"`
	HiddenPOIs []model.HiddenKey         `json:"hiddenPois"`
	Keybinds   hotkey.Bindings           `json:"keybinds"`
}

// Pointer fields tell a missing value from a zero one.
type rawCategory struct {
	Enabled *bool        `json:"enabled"`
	Color   *model.Color `json:"color"`
}

type rawDocument struct {
	Version                 any                    `json:"version"`
	MasterEnabled           *bool                  `json:"masterEnabled"`
	OverlayVisible          *bool                  `json:"overlayVisible"`
	ActiveMapID             *string                `json:"activeMapId"`
	NumericMapSwitchEnabled *bool                  `json:"numericMapSwitchEnabled"`
	GlobalScale             *float64               `json:"globalScale"`
	OverlayRect             *model.Rect            `json:"overlayRect"`
	MapRects                map[string]model.Rect  `json:"mapRects"`
	MinimizeToTray          *bool                  `json:"minimizeToTray"`
	Categories              map[string]rawCategory `json:"categories"`
	HiddenPOIs              []model.HiddenKey      `json:"hiddenPois"`
	Keybinds                *hotkey.Bindings       `json:"keybinds"`
}

// Encode renders st as the persisted JSON document. Output is deterministic:
// map keys are sorted and the hidden list is ordered by category, then id.
func Encode(st State) ([]byte, error) {
	doc := document{
		Version:       Version,
		OverlayConfig: st.Overlay,
		Categories:    st.Categories,
		HiddenPOIs:    st.Hidden.Sorted(),
		Keybinds:      st.Keybinds,
	}
	data, err := sonic.ConfigStd.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode settings: %w", err)
	}
	return append(data, '\n'), nil
}

// Decode parses a persisted document. Fields missing from data are taken from
// the defaults and the result is normalised. The returned version is empty when
// the document carries none.
func Decode(data []byte, d Defaults) (State, string, error) {
	var raw rawDocument
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return State{}, "", err
	}

	st := d.State()
	o := &st.Overlay
	if raw.MasterEnabled != nil {
		o.MasterEnabled = *raw.MasterEnabled
	}
	if raw.OverlayVisible != nil {
		o.OverlayVisible = *raw.OverlayVisible
	}
	if raw.ActiveMapID != nil {
		o.ActiveMapID = *raw.ActiveMapID
	}
	if raw.NumericMapSwitchEnabled != nil {
		o.NumericMapSwitchEnabled = *raw.NumericMapSwitchEnabled
	}
	if raw.GlobalScale != nil {
		o.GlobalScale = *raw.GlobalScale
	}
	if raw.OverlayRect != nil {
		o.OverlayRect = *raw.OverlayRect
	}
	if raw.MapRects != nil {
		o.MapRects = raw.MapRects
	}
	if raw.MinimizeToTray != nil {
		o.MinimizeToTray = *raw.MinimizeToTray
	}

	for name, rc := range raw.Categories {
		cfg := CategoryConfig{Enabled: true, Color: rc.Color}
		if rc.Enabled != nil {
			cfg.Enabled = *rc.Enabled
		}
		st.Categories[name] = cfg
	}

	// An explicit list, even an empty one, replaces the seeded hidden entries.
	if raw.HiddenPOIs != nil {
		st.Hidden = NewHiddenSet(raw.HiddenPOIs...)
	}
	if raw.Keybinds != nil {
		st.Keybinds = *raw.Keybinds
	}

	var version string
	if raw.Version != nil {
		version = fmt.Sprint(raw.Version)
	}
	return d.Normalize(st), version, nil
}
