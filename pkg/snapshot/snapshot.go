// Package snapshot rasterises a render list into an image, for visual
// regression tests and the -mode snapshot output.
package snapshot

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"huntoverlay/pkg/model"
)

// BorderWidth is the marker outline thickness in pixels.
const BorderWidth = 1.5

// kappa places cubic control points so four curves approximate a circle.
const kappa = 0.5522847498

// Options controls the canvas.
type Options struct {
	Width, Height int
	Background    color.RGBA
	Outline       *color.RGBA // Draws the overlay rectangle when set
	Caption       string      // Drawn in the top-left corner
	Highlight     *model.Renderable
}

// Render draws list in order, so later entries end up on top.
func Render(list []model.Renderable, rect model.Rect, opts Options) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: opts.Background}, image.Point{}, draw.Src)

	if opts.Outline != nil {
		strokeRect(img, rect, *opts.Outline)
	}

	z := vector.NewRasterizer(opts.Width, opts.Height)
	for _, r := range list {
		if r.RadiusPx <= 0 {
			continue
		}
		fillCircle(z, img, r.ScreenX, r.ScreenY, r.RadiusPx+BorderWidth, r.Border.RGBA())
		fillCircle(z, img, r.ScreenX, r.ScreenY, r.RadiusPx, r.Color.RGBA())
	}

	if h := opts.Highlight; h != nil {
		ring := color.RGBA{R: 255, G: 255, B: 255, A: 255}
		fillCircle(z, img, h.ScreenX, h.ScreenY, h.RadiusPx+BorderWidth+2, ring)
		fillCircle(z, img, h.ScreenX, h.ScreenY, h.RadiusPx+BorderWidth, h.Border.RGBA())
		fillCircle(z, img, h.ScreenX, h.ScreenY, h.RadiusPx, h.Color.RGBA())
	}

	if opts.Caption != "" {
		drawText(img, 4, 14, opts.Caption, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	}
	return img
}

func fillCircle(z *vector.Rasterizer, dst draw.Image, cx, cy, r float64, c color.RGBA) {
	b := dst.Bounds()
	z.Reset(b.Dx(), b.Dy())

	x, y, rr := float32(cx), float32(cy), float32(r)
	k := rr * kappa
	z.MoveTo(x+rr, y)
	z.CubeTo(x+rr, y+k, x+k, y+rr, x, y+rr)
	z.CubeTo(x-k, y+rr, x-rr, y+k, x-rr, y)
	z.CubeTo(x-rr, y-k, x-k, y-rr, x, y-rr)
	z.CubeTo(x+k, y-rr, x+rr, y-k, x+rr, y)
	z.ClosePath()

	z.DrawOp = draw.Over
	z.Draw(dst, b, &image.Uniform{C: c}, image.Point{})
}

func strokeRect(img *image.RGBA, rect model.Rect, c color.RGBA) {
	x0, y0 := int(rect.X), int(rect.Y)
	x1, y1 := int(rect.X+rect.Width), int(rect.Y+rect.Height)
	for x := x0; x <= x1; x++ {
		img.SetRGBA(x, y0, c)
		img.SetRGBA(x, y1, c)
	}
	for y := y0; y <= y1; y++ {
		img.SetRGBA(x0, y, c)
		img.SetRGBA(x1, y, c)
	}
}

func drawText(img *image.RGBA, x, y int, text string, c color.RGBA) {
	d := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{C: c},
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}

// EncodePNG writes img as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// WritePNG writes img to path, creating the directory if needed.
func WritePNG(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	if err := EncodePNG(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
