package model

// GridSize is the edge length of the logical map grid every dataset coordinate lives on.
const GridSize = 4096.0

// POI is a fixed point of interest on one map.
type POI struct {
	ID       int64   `json:"id"`       // Unique within a category
	Category string  `json:"category"` // e.g. "armories"
	MapID    string  `json:"mapId"`    // e.g. "stillwater_bayou"
	X        float64 `json:"x"`        // Logical grid coordinate [0, GridSize]
	Y        float64 `json:"y"`
	Label    string  `json:"label,omitempty"`
}

// CategoryStyle holds the bundled default look of a category.
type CategoryStyle struct {
	Label  string  `json:"label"`
	Radius float64 `json:"radius"` // Marker radius at scale 1.0 and reference width
	Color  Color   `json:"color"`  // Default fill
	Border Color   `json:"border"`

	// Union lists the source categories of a derived category.
	// Every POI of a source category is rendered again under the derived one.
	Union []string `json:"union,omitempty"`
}

// IsUnion reports whether the category is derived from other categories.
func (s CategoryStyle) IsUnion() bool {
	return len(s.Union) > 0
}

// Rect is an axis-aligned screen rectangle in pixels.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"w"`
	Height float64 `json:"h"`
}

// Valid reports whether the rectangle has a usable (non-degenerate) area.
func (r Rect) Valid() bool {
	return r.Width > 0 && r.Height > 0
}

// HiddenKey identifies a soft-hidden POI under the category it was hidden in.
type HiddenKey struct {
	ID       int64  `json:"id"`
	Category string `json:"category"`
}

// Less orders keys by category, then id.
func (k HiddenKey) Less(o HiddenKey) bool {
	if k.Category != o.Category {
		return k.Category < o.Category
	}
	return k.ID < o.ID
}

// Renderable is a positioned, styled POI ready to be drawn.
type Renderable struct {
	ID       int64   `json:"id"`
	Category string  `json:"category"` // Category it is rendered under
	ScreenX  float64 `json:"screenX"`
	ScreenY  float64 `json:"screenY"`
	RadiusPx float64 `json:"radiusPx"`
	Color    Color   `json:"color"`
	Border   Color   `json:"border"`
}

// Key returns the hidden-set key for this renderable.
func (r Renderable) Key() HiddenKey {
	return HiddenKey{ID: r.ID, Category: r.Category}
}

// MapInfo names a selectable map.
type MapInfo struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}
