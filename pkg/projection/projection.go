// Package projection maps logical grid coordinates onto the calibrated overlay rectangle.
//
// Every function here is pure: the result depends only on the arguments.
package projection

import (
	"math"

	"github.com/paulmach/orb"

	"huntoverlay/pkg/model"
)

// Normalize converts logical coordinates into [0,1]x[0,1].
// Off-grid outliers are clamped to the boundary rather than rejected.
func Normalize(x, y float64) (u, v float64) {
	return clamp01(x / model.GridSize), clamp01(y / model.GridSize)
}

// ToScreen projects logical coordinates into absolute pixel coordinates inside rect.
func ToScreen(x, y float64, rect model.Rect) orb.Point {
	u, v := Normalize(x, y)
	return orb.Point{
		rect.X + u*rect.Width,
		rect.Y + v*rect.Height,
	}
}

// ToLogical is the inverse of ToScreen for points inside rect.
// A degenerate rect maps everything to the grid origin.
func ToLogical(p orb.Point, rect model.Rect) (x, y float64) {
	if !rect.Valid() {
		return 0, 0
	}
	u := clamp01((p[0] - rect.X) / rect.Width)
	v := clamp01((p[1] - rect.Y) / rect.Height)
	return u * model.GridSize, v * model.GridSize
}

// Radius returns the marker radius in pixels.
// The marker grows with the overlay width so it keeps its size relative to the map.
func Radius(styleRadius, scale float64, rect model.Rect, referenceWidth float64) float64 {
	if referenceWidth <= 0 {
		referenceWidth = rect.Width
	}
	if referenceWidth <= 0 {
		return 0
	}
	return styleRadius * scale * (rect.Width / referenceWidth)
}

// Bounds returns the rectangle as an orb.Bound (boundary inclusive).
func Bounds(rect model.Rect) orb.Bound {
	return orb.Bound{
		Min: orb.Point{rect.X, rect.Y},
		Max: orb.Point{rect.X + rect.Width, rect.Y + rect.Height},
	}
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
