// Display layout and display-to-source coordinate mapping
package core

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// DefaultViewport is used when the viewport has not been laid out yet.
var DefaultViewport = image.Point{X: 800, Y: 600}

// Layout describes where a buffer is drawn inside a viewport.
// It is derived on every render and never persisted.
type Layout struct {
	Scale   float64
	DispW   int
	DispH   int
	OffsetX int
	OffsetY int
}

// DisplayRect is the area covered by the image in viewport coordinates.
func (l Layout) DisplayRect() image.Rectangle {
	return image.Rect(l.OffsetX, l.OffsetY, l.OffsetX+l.DispW, l.OffsetY+l.DispH)
}

// ComputeLayout fits source into viewport. Images that fit are shown at native
// size; larger ones are scaled down isotropically. Both cases are centered.
func ComputeLayout(source, viewport image.Point) Layout {
	if viewport.X <= 0 || viewport.Y <= 0 {
		viewport = DefaultViewport
	}
	if source.X <= 0 || source.Y <= 0 {
		return Layout{Scale: 1, OffsetX: viewport.X / 2, OffsetY: viewport.Y / 2}
	}

	dispW, dispH := source.X, source.Y
	if source.X > viewport.X || source.Y > viewport.Y {
		// Compare aspect ratios without floating point: sw/sh > vw/vh.
		if source.X*viewport.Y > viewport.X*source.Y {
			dispW = viewport.X
			dispH = viewport.X * source.Y / source.X
		} else {
			dispH = viewport.Y
			dispW = viewport.Y * source.X / source.Y
		}
		dispW = max(dispW, 1)
		dispH = max(dispH, 1)
	}

	return Layout{
		Scale:   float64(dispW) / float64(source.X),
		DispW:   dispW,
		DispH:   dispH,
		OffsetX: (viewport.X - dispW) / 2,
		OffsetY: (viewport.Y - dispH) / 2,
	}
}

// MapDisplayRectToSource converts a viewport rectangle into source pixel space.
// The rectangle is clipped to the displayed image first; anything one pixel
// wide or less, on screen or in the source, is rejected with ErrInvalidSelection.
func MapDisplayRectToSource(rect image.Rectangle, layout Layout, source image.Point) (image.Rectangle, error) {
	if layout.DispW <= 0 || layout.DispH <= 0 || source.X <= 0 || source.Y <= 0 {
		return image.Rectangle{}, fmt.Errorf("%w: nothing displayed", ErrInvalidSelection)
	}

	r := rect.Canon()
	dx0 := clampInt(r.Min.X-layout.OffsetX, 0, layout.DispW)
	dy0 := clampInt(r.Min.Y-layout.OffsetY, 0, layout.DispH)
	dx1 := clampInt(r.Max.X-layout.OffsetX, 0, layout.DispW)
	dy1 := clampInt(r.Max.Y-layout.OffsetY, 0, layout.DispH)
	if dx1-dx0 <= 1 || dy1-dy0 <= 1 {
		return image.Rectangle{}, fmt.Errorf("%w: selection %v too small", ErrInvalidSelection, r)
	}

	scaleX := float64(source.X) / float64(layout.DispW)
	scaleY := float64(source.Y) / float64(layout.DispH)
	px0 := clampInt(int(float64(dx0)*scaleX), 0, source.X-1)
	py0 := clampInt(int(float64(dy0)*scaleY), 0, source.Y-1)
	px1 := clampInt(int(float64(dx1)*scaleX), 0, source.X)
	py1 := clampInt(int(float64(dy1)*scaleY), 0, source.Y)
	if px1-px0 <= 1 || py1-py0 <= 1 {
		return image.Rectangle{}, fmt.Errorf("%w: mapped region %dx%d too small", ErrInvalidSelection, px1-px0, py1-py0)
	}

	return image.Rect(px0, py0, px1, py1), nil
}

// RenderDisplay produces the image drawn in the viewport: the buffer itself at
// native size, or a Lanczos downscale when the layout shrinks it.
func RenderDisplay(buf *PixelBuffer, layout Layout) image.Image {
	img := buf.ToImage()
	if layout.DispW == buf.Width() && layout.DispH == buf.Height() {
		return img
	}
	return imaging.Resize(img, layout.DispW, layout.DispH, imaging.Lanczos)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
