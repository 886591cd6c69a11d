package projection

import "huntoverlay/pkg/model"

// Aspect bucket labels.
const (
	Aspect16x9 = "16:9"
	Aspect21x9 = "21:9"
	Aspect32x9 = "32:9"
)

// Ratio describes a rectangle as fractions of the screen size.
type Ratio struct {
	RX float64 `json:"rx" yaml:"rx"`
	RY float64 `json:"ry" yaml:"ry"`
	RW float64 `json:"rw" yaml:"rw"`
	RH float64 `json:"rh" yaml:"rh"`
}

// DefaultRatios are the calibrated in-game map rectangles per aspect bucket.
var DefaultRatios = map[string]Ratio{
	Aspect16x9: {RX: 0.30859375, RY: 0.14583333333333334, RW: 0.383984375, RH: 0.6833333333333333},
	Aspect21x9: {RX: 0.35625, RY: 0.14722222222222223, RW: 0.287109375, RH: 0.6814814814814815},
	Aspect32x9: {RX: 0.404296875, RY: 0.14722222222222223, RW: 0.191015625, RH: 0.6791666666666667},
}

// AspectLabel buckets a screen size: 32:9 from 3.20, 21:9 from 2.20, otherwise 16:9.
func AspectLabel(w, h int) string {
	if h <= 0 {
		return Aspect16x9
	}
	a := float64(w) / float64(h)
	switch {
	case a >= 3.20:
		return Aspect32x9
	case a >= 2.20:
		return Aspect21x9
	default:
		return Aspect16x9
	}
}

// Apply scales the ratio to a screen size. Width and height are at least one pixel.
func (r Ratio) Apply(w, h int) model.Rect {
	rect := model.Rect{
		X:      float64(int(r.RX * float64(w))),
		Y:      float64(int(r.RY * float64(h))),
		Width:  float64(int(r.RW * float64(w))),
		Height: float64(int(r.RH * float64(h))),
	}
	if rect.Width < 1 {
		rect.Width = 1
	}
	if rect.Height < 1 {
		rect.Height = 1
	}
	return rect
}

// AspectRect returns the default overlay rectangle for a screen size.
func AspectRect(w, h int) model.Rect {
	return DefaultRatios[AspectLabel(w, h)].Apply(w, h)
}
