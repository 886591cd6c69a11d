// Package dataset loads the static POI coordinates and the per-category style
// defaults. Both are read-only at runtime.
package dataset

import (
	"sort"

	"huntoverlay/pkg/model"
)

// Dataset is the validated, immutable content of the two data files.
type Dataset struct {
	pois       []model.POI
	styles     map[string]model.CategoryStyle
	categories []string
	byMap      map[string][]model.POI
}

func newDataset(pois []model.POI, styles map[string]model.CategoryStyle) *Dataset {
	d := &Dataset{
		pois:   pois,
		styles: styles,
		byMap:  make(map[string][]model.POI),
	}
	for c := range styles {
		d.categories = append(d.categories, c)
	}
	sort.Strings(d.categories)
	for _, p := range pois {
		d.byMap[p.MapID] = append(d.byMap[p.MapID], p)
	}
	return d
}

// POIs returns a copy of every POI in file order.
func (d *Dataset) POIs() []model.POI {
	out := make([]model.POI, len(d.pois))
	copy(out, d.pois)
	return out
}

// POIsOnMap returns a copy of the POIs placed on mapID.
func (d *Dataset) POIsOnMap(mapID string) []model.POI {
	src := d.byMap[mapID]
	out := make([]model.POI, len(src))
	copy(out, src)
	return out
}

// Styles returns a copy of the style defaults.
func (d *Dataset) Styles() map[string]model.CategoryStyle {
	out := make(map[string]model.CategoryStyle, len(d.styles))
	for k, v := range d.styles {
		v.Union = append([]string(nil), v.Union...)
		out[k] = v
	}
	return out
}

// Style returns the defaults of one category.
func (d *Dataset) Style(category string) (model.CategoryStyle, bool) {
	s, ok := d.styles[category]
	if ok {
		s.Union = append([]string(nil), s.Union...)
	}
	return s, ok
}

// Categories returns every category name, sorted.
func (d *Dataset) Categories() []string {
	return append([]string(nil), d.categories...)
}

// HasCategory reports whether the style defaults define category.
func (d *Dataset) HasCategory(category string) bool {
	_, ok := d.styles[category]
	return ok
}

// MapIDs returns the distinct map ids referenced by POIs, sorted.
func (d *Dataset) MapIDs() []string {
	ids := make([]string, 0, len(d.byMap))
	for id := range d.byMap {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// RenderCategories returns the categories a POI of the given source category is
// rendered under: its own plus every union category that includes it.
func (d *Dataset) RenderCategories(category string) []string {
	out := []string{category}
	for _, c := range d.categories {
		for _, src := range d.styles[c].Union {
			if src == category {
				out = append(out, c)
				break
			}
		}
	}
	return out
}
