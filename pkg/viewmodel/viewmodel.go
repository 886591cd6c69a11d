// Package viewmodel merges the static dataset, the style defaults and the user
// settings into the list of markers the overlay draws.
//
// A ViewModel is owned by a single goroutine (the control loop) and is not
// safe for concurrent use.
package viewmodel

import (
	"log/slog"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"huntoverlay/pkg/dataset"
	"huntoverlay/pkg/logging"
	"huntoverlay/pkg/model"
	"huntoverlay/pkg/projection"
	"huntoverlay/pkg/settings"
)

// Options tunes projection and interaction.
type Options struct {
	ReferenceWidth float64 // Overlay width at which style radii apply unscaled
	HitRadius      float64 // Hover and hide tolerance in pixels
	ScaleStep      float64
	Maps           []model.MapInfo // Release order
}

// ViewModel holds the current state and a cached render list.
type ViewModel struct {
	ds       *dataset.Dataset
	defaults settings.Defaults
	opts     Options
	state    settings.State
	persist  func()
	logger   *slog.Logger

	cache []model.Renderable
	valid bool
}

// New creates a view model over a loaded dataset. state is normalised against
// defaults; persist is called after every mutation and may be nil.
func New(ds *dataset.Dataset, defaults settings.Defaults, state settings.State, opts Options, persist func()) *ViewModel {
	if persist == nil {
		persist = func() {}
	}
	if opts.ScaleStep <= 0 {
		opts.ScaleStep = 0.05
	}
	return &ViewModel{
		ds:       ds,
		defaults: defaults,
		opts:     opts,
		state:    defaults.Normalize(state),
		persist:  persist,
		logger:   slog.With("component", "viewmodel"),
	}
}

// changed drops the cached render list and schedules a save.
func (vm *ViewModel) changed() {
	vm.valid = false
	vm.persist()
}

// EffectiveRect is the rectangle of the active map: its override if set, else the global one.
func (vm *ViewModel) EffectiveRect() model.Rect {
	o := vm.state.Overlay
	if r, ok := o.MapRects[o.ActiveMapID]; ok {
		return r
	}
	return o.OverlayRect
}

// RenderList returns the markers to draw, ordered by category then id.
// Later entries are drawn on top. The slice is a copy.
func (vm *ViewModel) RenderList() []model.Renderable {
	if !vm.valid {
		vm.cache = vm.build()
		vm.valid = true
		logging.Trace(vm.logger, "Render list rebuilt", "count", len(vm.cache))
	}
	out := make([]model.Renderable, len(vm.cache))
	copy(out, vm.cache)
	return out
}

func (vm *ViewModel) build() []model.Renderable {
	o := vm.state.Overlay
	if !o.MasterEnabled || !o.OverlayVisible {
		return nil
	}

	rect := vm.EffectiveRect()
	var list []model.Renderable
	for _, p := range vm.ds.POIsOnMap(o.ActiveMapID) {
		pt := projection.ToScreen(p.X, p.Y, rect)
		for _, cat := range vm.ds.RenderCategories(p.Category) {
			cfg, ok := vm.state.Categories[cat]
			if !ok || !cfg.Enabled {
				continue
			}
			if vm.state.Hidden.Has(model.HiddenKey{ID: p.ID, Category: cat}) {
				continue
			}
			style, _ := vm.ds.Style(cat)
			color := style.Color
			if cfg.Color != nil {
				color = *cfg.Color
			}
			list = append(list, model.Renderable{
				ID:       p.ID,
				Category: cat,
				ScreenX:  pt[0],
				ScreenY:  pt[1],
				RadiusPx: projection.Radius(style.Radius, o.GlobalScale, rect, vm.opts.ReferenceWidth),
				Color:    color,
				Border:   style.Border,
			})
		}
	}

	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Category != list[j].Category {
			return list[i].Category < list[j].Category
		}
		return list[i].ID < list[j].ID
	})
	return list
}

// Hover returns the marker under p: the nearest one within the hit radius.
// On equal distance the later (topmost) entry wins.
func (vm *ViewModel) Hover(p orb.Point) (model.Renderable, bool) {
	list := vm.RenderList()
	best := -1
	bestDist := 0.0
	for i, r := range list {
		d := planar.Distance(p, orb.Point{r.ScreenX, r.ScreenY})
		if d > vm.opts.HitRadius {
			continue
		}
		if best < 0 || d <= bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return model.Renderable{}, false
	}
	return list[best], true
}
